package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectSuspicious(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		pattern string
	}{
		{"sql union", "1 UNION SELECT password", "sql"},
		{"sql drop", "x'; DROP TABLE applications", "sql"},
		{"script tag", "<script>alert(1)</script>", "script-tag"},
		{"javascript uri", "JavaScript:alert(1)", "javascript-uri"},
		{"inline handler", `<img src=x onerror="x">`, "inline-handler"},
		{"inline handler spaced", `<svg ONLOAD = x>`, "inline-handler"},
		{"shell chain", "a && b", "shell-metachars"},
		{"shell command", "hello; rm -rf /", "shell-command"},
		{"traversal", "../../etc/passwd", "path-traversal"},
		{"repetition", strings.Repeat("a", 16), "repetition"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			finding, found := DetectSuspicious(map[string]string{"skills": tt.value})
			assert.True(t, found)
			assert.Equal(t, "skills", finding.Field)
			assert.Equal(t, tt.pattern, finding.Pattern)
		})
	}
}

func TestDetectSuspiciousAllowsOrdinaryText(t *testing.T) {
	fields := map[string]string{
		"firstName":  "Asha",
		"skills":     "Go, Python and a bit of Figma. I have built two small web apps.",
		"motivation": "I would like to learn from seniors and help run the annual hackathon.",
		"phone":      "+91 98765 43210",
		"year":       "2nd Year",
	}
	_, found := DetectSuspicious(fields)
	assert.False(t, found)

	_, found = DetectSuspicious(map[string]string{
		"skills":     "Rates: online = cheaper, one=two, only =1",
		"motivation": "I ran the onboarding=week sessions last year",
	})
	assert.False(t, found, "attribute-like text outside a tag is ordinary prose")

	_, found = DetectSuspicious(map[string]string{"skills": strings.Repeat("a", 15)})
	assert.False(t, found, "runs up to the limit are allowed")
}

func TestDetectSuspiciousReportsFirstFieldByName(t *testing.T) {
	finding, found := DetectSuspicious(map[string]string{
		"skills":    "../x",
		"firstName": "javascript:void(0)",
	})
	assert.True(t, found)
	assert.Equal(t, "firstName", finding.Field)
}

func TestExcerpt(t *testing.T) {
	long := strings.Repeat("é", 80)
	finding, found := DetectSuspicious(map[string]string{"motivation": "../" + long})
	assert.True(t, found)
	assert.LessOrEqual(t, len(finding.Excerpt), 100)
	assert.True(t, strings.HasPrefix(finding.Excerpt, "../"))
	assert.NotContains(t, finding.Excerpt, "�")
}
