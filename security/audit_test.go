package security

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordingLogger) Warn(msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprint(append([]any{msg}, args...)...))
}

func TestAuditLogRecord(t *testing.T) {
	logger := &recordingLogger{}
	a := NewAuditLog(10, logger)

	details := map[string]string{"client": "10.0.0.1"}
	a.Record(EventBotDetected, details)
	details["client"] = "changed"

	events := a.Events()
	require.Len(t, events, 1)
	assert.Equal(t, EventBotDetected, events[0].Type)
	assert.Equal(t, "10.0.0.1", events[0].Details["client"], "details are copied")
	assert.False(t, events[0].Time.IsZero())

	require.Len(t, logger.lines, 1)
	assert.Contains(t, logger.lines[0], EventBotDetected)
}

func TestAuditLogCapacity(t *testing.T) {
	a := NewAuditLog(3, nil)
	for i := 0; i < 5; i++ {
		a.Record(EventValidationError, map[string]string{"n": fmt.Sprint(i)})
	}

	events := a.Events()
	require.Len(t, events, 3)
	assert.Equal(t, "2", events[0].Details["n"])
	assert.Equal(t, "4", events[2].Details["n"])
}

func TestAuditLogDefaultCapacity(t *testing.T) {
	a := NewAuditLog(0, nil)
	assert.Equal(t, DefaultAuditCapacity, a.capacity)
}
