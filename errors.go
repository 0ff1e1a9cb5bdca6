// errors.go
package recruitprefs

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var (
	ErrInvalidInput       = errors.New("invalid input parameters")
	ErrEmptyCatalog       = errors.New("catalog has no options")
	ErrInvalidOption      = errors.New("invalid catalog option")
	ErrDuplicateOption    = errors.New("duplicate catalog option")
	ErrUnknownOption      = errors.New("option not in catalog")
	ErrInvalidMode        = errors.New("invalid selection mode")
	ErrDuplicateSelection = errors.New("duplicate selection")
	ErrNotFound           = errors.New("application not found")
	ErrValidation         = errors.New("application failed validation")
	ErrRateLimited        = errors.New("too many submission attempts")
	ErrBotDetected        = errors.New("automated submission detected")
	ErrSuspiciousInput    = errors.New("suspicious input detected")
	ErrMissingPreference  = errors.New("primary department preference required")
	ErrSessionNotFound    = errors.New("selector session not found")
	ErrStorageUnavailable = errors.New("storage backend unavailable")
	ErrCacheUnavailable   = errors.New("cache backend unavailable")
	ErrSerialization      = errors.New("serialization failed")
	ErrEncryptionRequired = errors.New("application is encrypted but no encryption key is configured")
)

// ConflictError is returned by PreferenceSelector.Select when the secondary slot would
// end up holding the option already chosen as primary. State is never changed when it
// is returned.
type ConflictError struct {
	Reason   string
	OptionID string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %q is already the primary preference", e.Reason, e.OptionID)
}

// Unwrap lets callers match the conflict with errors.Is(err, ErrDuplicateSelection).
func (e *ConflictError) Unwrap() error {
	return ErrDuplicateSelection
}

// UserMessage is the text shown to applicants.
func (e *ConflictError) UserMessage() string {
	return "Please choose a different department for your second preference."
}

// ValidationError carries one user-facing message per rejected form field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(names, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// RateLimitError is returned when a client exceeded its submission allowance.
type RateLimitError struct {
	RetryAfter time.Duration
	// Reason is "window" when the hourly allowance is spent, "cooldown" when attempts
	// came too close together.
	Reason string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s (%s, retry after %s)", ErrRateLimited.Error(), e.Reason, e.RetryAfter.Round(time.Second))
}

func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}
