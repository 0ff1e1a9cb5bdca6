package security

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Finding describes the first suspicious pattern found in a submission.
type Finding struct {
	Field   string
	Pattern string
	// Excerpt is at most the first 100 bytes of the offending value.
	Excerpt string
}

type pattern struct {
	name string
	re   *regexp.Regexp
}

var suspiciousPatterns = []pattern{
	{"sql", regexp.MustCompile(`(?i)\b(SELECT\s+.+?\s+FROM|INSERT\s+INTO|UPDATE\s+\w+\s+SET|DELETE\s+FROM|DROP\s+(TABLE|DATABASE)|UNION\s+(ALL\s+)?SELECT|EXEC(UTE)?\s*\()`)},
	{"script-tag", regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)},
	{"javascript-uri", regexp.MustCompile(`(?i)javascript:`)},
	{"inline-handler", regexp.MustCompile(`(?i)<[^>]*\bon\w+\s*=`)},
	{"shell-metachars", regexp.MustCompile("(\\||&|;|`|\\$\\(){2,}")},
	{"shell-command", regexp.MustCompile(`(?i);\s*(rm|del|format|shutdown|reboot)\b`)},
	{"path-traversal", regexp.MustCompile(`\.\./`)},
}

// maxRepeat is the longest run of a single rune tolerated before a value looks like spam.
const maxRepeat = 15

// DetectSuspicious scans every field value (in field-name order) and reports the first
// match of an injection, traversal or spam pattern.
func DetectSuspicious(fields map[string]string) (Finding, bool) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value := fields[name]
		for _, p := range suspiciousPatterns {
			if p.re.MatchString(value) {
				return Finding{Field: name, Pattern: p.name, Excerpt: excerpt(value)}, true
			}
		}
		if hasRepeatedRun(value, maxRepeat+1) {
			return Finding{Field: name, Pattern: "repetition", Excerpt: excerpt(value)}, true
		}
	}
	return Finding{}, false
}

// hasRepeatedRun reports whether s contains the same rune n or more times in a row.
// Go's regexp has no backreferences, so this replaces the usual (.)\1{n,} pattern.
func hasRepeatedRun(s string, n int) bool {
	var prev rune = utf8.RuneError
	run := 0
	for _, r := range s {
		if r == prev {
			run++
		} else {
			prev = r
			run = 1
		}
		if run >= n {
			return true
		}
	}
	return false
}

func excerpt(s string) string {
	if len(s) <= 100 {
		return s
	}
	cut := 100
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return strings.ToValidUTF8(s[:cut], "")
}
