package security

import (
	"sync"
	"time"
)

// Security event types.
const (
	EventRateLimitExceeded  = "RATE_LIMIT_EXCEEDED"
	EventSuspiciousActivity = "SUSPICIOUS_ACTIVITY"
	EventBotDetected        = "BOT_DETECTED"
	EventValidationError    = "VALIDATION_ERROR"
)

// DefaultAuditCapacity is how many events an AuditLog keeps.
const DefaultAuditCapacity = 100

// Event is one recorded security event.
type Event struct {
	Time    time.Time         `json:"timestamp"`
	Type    string            `json:"type"`
	Details map[string]string `json:"details,omitempty"`
}

// Logger is the subset of a structured logger the audit log writes to.
type Logger interface {
	Warn(msg string, args ...any)
}

// AuditLog keeps the most recent security events and mirrors each one to a logger.
type AuditLog struct {
	mu       sync.Mutex
	events   []Event
	capacity int
	logger   Logger
	now      func() time.Time
}

// NewAuditLog creates an AuditLog holding at most capacity events. logger may be nil.
func NewAuditLog(capacity int, logger Logger) *AuditLog {
	if capacity <= 0 {
		capacity = DefaultAuditCapacity
	}
	return &AuditLog{capacity: capacity, logger: logger, now: time.Now}
}

// Record appends an event, evicting the oldest once the log is full.
func (a *AuditLog) Record(eventType string, details map[string]string) {
	ev := Event{Time: a.now().UTC(), Type: eventType, Details: make(map[string]string, len(details))}
	for k, v := range details {
		ev.Details[k] = v
	}

	a.mu.Lock()
	a.events = append(a.events, ev)
	if over := len(a.events) - a.capacity; over > 0 {
		a.events = append(a.events[:0:0], a.events[over:]...)
	}
	a.mu.Unlock()

	if a.logger != nil {
		args := []any{"type", eventType}
		for k, v := range details {
			args = append(args, k, v)
		}
		a.logger.Warn("Security event", args...)
	}
}

// Events returns a copy of the recorded events, oldest first.
func (a *AuditLog) Events() []Event {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Event, len(a.events))
	copy(out, a.events)
	return out
}
