// Package recruitprefs defines the core types used in department selection and application intake.
package recruitprefs

import (
	"fmt"
	"time"
)

// Option is a single immutable catalog entry, typically a department applicants can pick.
// Options are compared by ID only.
type Option struct {
	// ID is the unique identifier of the option (e.g., "technical").
	ID string `json:"id" yaml:"id"`
	// Name is the display name shown to applicants.
	Name string `json:"name" yaml:"name"`
	// Description is a short text describing the option.
	Description string `json:"description" yaml:"description"`
}

// Mode indicates which slot the next selection populates.
type Mode int

const (
	// ModePrimary routes selections to the primary slot. It is the zero value.
	ModePrimary Mode = iota
	// ModeSecondary routes selections to the secondary slot.
	ModeSecondary
)

func (m Mode) String() string {
	switch m {
	case ModePrimary:
		return "primary"
	case ModeSecondary:
		return "secondary"
	default:
		return "unknown"
	}
}

// Valid reports whether m is one of the defined modes.
func (m Mode) Valid() bool {
	return m == ModePrimary || m == ModeSecondary
}

// ParseMode converts "primary" or "secondary" into a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "primary":
		return ModePrimary, nil
	case "secondary":
		return ModeSecondary, nil
	default:
		return ModePrimary, fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// SelectionState is a snapshot of both preference slots. A nil slot is empty.
// Snapshots handed out by PreferenceSelector never alias its internal state.
type SelectionState struct {
	Primary   *Option `json:"primary"`
	Secondary *Option `json:"secondary"`
}

// PrimaryID returns the primary option ID, or "" when the slot is empty.
func (s SelectionState) PrimaryID() string {
	if s.Primary == nil {
		return ""
	}
	return s.Primary.ID
}

// SecondaryID returns the secondary option ID, or "" when the slot is empty.
func (s SelectionState) SecondaryID() string {
	if s.Secondary == nil {
		return ""
	}
	return s.Secondary.ID
}

// IsEmpty reports whether neither slot is set.
func (s SelectionState) IsEmpty() bool {
	return s.Primary == nil && s.Secondary == nil
}

func (s SelectionState) clone() SelectionState {
	var out SelectionState
	if s.Primary != nil {
		p := *s.Primary
		out.Primary = &p
	}
	if s.Secondary != nil {
		sec := *s.Secondary
		out.Secondary = &sec
	}
	return out
}

// ApplicationForm is the raw applicant input as received from the form.
// Validation rules are expressed as validator tags; see validation.go for the custom ones.
type ApplicationForm struct {
	FirstName    string `json:"firstName" validate:"required,min=2,max=50,personname"`
	LastName     string `json:"lastName" validate:"required,min=2,max=50,personname"`
	Email        string `json:"email" validate:"required,max=254,email,mailbox"`
	Phone        string `json:"phone" validate:"required,phone"`
	RegNumber    string `json:"regNumber" validate:"required,regnumber"`
	Year         string `json:"year" validate:"max=20"`
	Skills       string `json:"skills" validate:"required,min=10,max=1000"`
	Motivation   string `json:"motivation" validate:"required,min=20,max=2000"`
	Contribution string `json:"contribution" validate:"max=2000"`
	// Website is a honeypot: it is hidden from humans and must stay empty.
	Website string `json:"website"`
}

// Submission bundles everything the Manager needs to accept an application.
type Submission struct {
	Form      ApplicationForm
	Selection SelectionState
	// ClientID identifies the submitter for rate limiting (usually the remote IP).
	ClientID string
	// Source tags where the submission came from (e.g., "web").
	Source string
}

// Application is an accepted, persisted application.
type Application struct {
	ID           string `json:"application_id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	RegNumber    string `json:"reg_number"`
	Year         string `json:"year,omitempty"`
	Skills       string `json:"skills"`
	Motivation   string `json:"motivation"`
	Contribution string `json:"contribution,omitempty"`
	// PrimaryDepartment is the ID of the primary preference; always set.
	PrimaryDepartment string `json:"primary_department"`
	// SecondaryDepartment is the ID of the secondary preference, or "" for none.
	// Storage backends persist "" as NULL.
	SecondaryDepartment string    `json:"secondary_department,omitempty"`
	Source              string    `json:"source,omitempty"`
	SubmittedAt         time.Time `json:"submitted_at"`
	// Encrypted reports whether the contact fields hold ciphertext.
	Encrypted bool `json:"encrypted,omitempty"`
}

// Config holds the internal configuration for a Manager instance.
// It is populated by applying ManagerOptions when a new Manager is created with New().
type Config struct {
	storage    Storage
	cache      Cache
	logger     Logger
	encryption EncryptionManager
	limiter    RateLimiter
	notifier   Notifier
	catalog    *Catalog
	now        func() time.Time
	cacheTTL   time.Duration
}

// ManagerOption configures a Manager instance.
type ManagerOption func(*Config)

// WithStorage sets the Storage implementation used to persist applications.
// This is a mandatory option for a functional Manager.
func WithStorage(s Storage) ManagerOption {
	return func(c *Config) {
		c.storage = s
	}
}

// WithCache sets an optional Cache placed in front of Storage for application lookups.
func WithCache(cache Cache) ManagerOption {
	return func(c *Config) {
		c.cache = cache
	}
}

// WithLogger sets the Logger used by the Manager.
func WithLogger(l Logger) ManagerOption {
	return func(c *Config) {
		c.logger = l
	}
}

// WithEncryption enables encryption of contact fields (email, phone, registration number) at rest.
func WithEncryption(e EncryptionManager) ManagerOption {
	return func(c *Config) {
		c.encryption = e
	}
}

// WithRateLimiter sets the limiter consulted before every submission.
func WithRateLimiter(l RateLimiter) ManagerOption {
	return func(c *Config) {
		c.limiter = l
	}
}

// WithNotifier sets the Notifier told about every accepted application.
func WithNotifier(n Notifier) ManagerOption {
	return func(c *Config) {
		c.notifier = n
	}
}

// WithCatalog sets the department catalog. Defaults to DefaultDepartments().
func WithCatalog(cat *Catalog) ManagerOption {
	return func(c *Config) {
		c.catalog = cat
	}
}

// WithClock overrides time.Now, mostly for tests.
func WithClock(now func() time.Time) ManagerOption {
	return func(c *Config) {
		c.now = now
	}
}
