// Package recruitprefs defines interfaces for storage, caching, logging and the other
// collaborators of the submission Manager.
package recruitprefs

import (
	"context"
	"time"

	"github.com/CreativeUnicorns/recruitprefs/security"
)

// Storage defines the methods required for an application storage backend.
type Storage interface {
	Get(ctx context.Context, id string) (*Application, error)
	Set(ctx context.Context, app *Application) error
	Delete(ctx context.Context, id string) error
	// ListByDepartment returns applications naming departmentID as primary or secondary
	// preference, oldest first.
	ListByDepartment(ctx context.Context, departmentID string) ([]*Application, error)
	GetAll(ctx context.Context) ([]*Application, error)
	Close() error
}

// Cache defines the methods required for a caching backend.
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Logger defines the methods required for logging.
// The args should be alternating key-value pairs, similar to slog.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// EncryptionManager encrypts individual field values. The associated data binds a
// ciphertext to its owner so values cannot be swapped between records.
type EncryptionManager interface {
	Encrypt(plaintext, associatedData string) (string, error)
	Decrypt(ciphertext, associatedData string) (string, error)
}

// RateLimiter decides whether a client may submit now.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (security.Decision, error)
}

// Notifier is told about every accepted application. Failures never reject a submission.
type Notifier interface {
	ApplicationReceived(ctx context.Context, app *Application, primary, secondary *Option) error
}
