// manager.go
package recruitprefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/CreativeUnicorns/recruitprefs/security"
)

// Manager accepts application submissions and serves stored applications.
type Manager struct {
	config *Config
	audit  *security.AuditLog
}

// DepartmentCount tallies how many applications name a department.
type DepartmentCount struct {
	Option    Option `json:"department"`
	Primary   int    `json:"primary"`
	Secondary int    `json:"secondary"`
}

// New creates a Manager. Without WithCatalog it serves DefaultDepartments().
func New(opts ...ManagerOption) *Manager {
	cfg := &Config{
		logger:   newDefaultLogger(),
		catalog:  DefaultDepartments(),
		now:      time.Now,
		cacheTTL: 24 * time.Hour,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return &Manager{
		config: cfg,
		audit:  security.NewAuditLog(security.DefaultAuditCapacity, cfg.logger),
	}
}

// Catalog returns the department catalog.
func (m *Manager) Catalog() *Catalog {
	return m.config.catalog
}

// NewSelector returns an empty PreferenceSelector over the manager's catalog.
func (m *Manager) NewSelector() (*PreferenceSelector, error) {
	return NewPreferenceSelector(m.config.catalog)
}

// SecurityEvents returns the most recent rejected-submission events, oldest first.
func (m *Manager) SecurityEvents() []security.Event {
	return m.audit.Events()
}

// Submit runs a submission through rate limiting, bot and abuse checks, sanitization,
// validation and selection checks, then persists it. The returned Application carries
// plaintext fields even when storage holds ciphertext.
func (m *Manager) Submit(ctx context.Context, sub Submission) (*Application, error) {
	if m.config.storage == nil {
		return nil, ErrStorageUnavailable
	}

	clientID := strings.TrimSpace(sub.ClientID)
	if clientID == "" {
		clientID = "anonymous"
	}

	if err := m.checkRateLimit(ctx, clientID); err != nil {
		return nil, err
	}

	if strings.TrimSpace(sub.Form.Website) != "" {
		m.audit.Record(security.EventBotDetected, map[string]string{"client": clientID})
		return nil, ErrBotDetected
	}

	if finding, found := security.DetectSuspicious(formFields(sub.Form)); found {
		m.audit.Record(security.EventSuspiciousActivity, map[string]string{
			"client":  clientID,
			"field":   finding.Field,
			"pattern": finding.Pattern,
		})
		return nil, fmt.Errorf("%w: field %s", ErrSuspiciousInput, finding.Field)
	}

	form := SanitizeForm(sub.Form)
	if err := ValidateForm(form); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			names := make([]string, 0, len(verr.Fields))
			for name := range verr.Fields {
				names = append(names, name)
			}
			sort.Strings(names)
			m.audit.Record(security.EventValidationError, map[string]string{
				"client": clientID,
				"fields": strings.Join(names, ","),
			})
		}
		return nil, err
	}

	if err := validateSelection(sub.Selection, m.config.catalog); err != nil {
		return nil, err
	}

	now := m.config.now().UTC()
	id, err := security.NewApplicationID(now)
	if err != nil {
		return nil, err
	}

	source := sub.Source
	if source == "" {
		source = "web"
	}

	app := &Application{
		ID:                  id,
		FirstName:           form.FirstName,
		LastName:            form.LastName,
		Email:               form.Email,
		Phone:               form.Phone,
		RegNumber:           form.RegNumber,
		Year:                form.Year,
		Skills:              form.Skills,
		Motivation:          form.Motivation,
		Contribution:        form.Contribution,
		PrimaryDepartment:   sub.Selection.PrimaryID(),
		SecondaryDepartment: sub.Selection.SecondaryID(),
		Source:              source,
		SubmittedAt:         now,
	}

	stored, err := m.seal(app)
	if err != nil {
		return nil, err
	}

	if err := m.config.storage.Set(ctx, stored); err != nil {
		m.config.logger.Error("Failed to store application", "application_id", id, "error", err)
		return nil, fmt.Errorf("failed to store application: %w", err)
	}

	if m.config.cache != nil {
		m.setToCache(ctx, stored)
	}

	m.config.logger.Info("Application accepted",
		"application_id", id,
		"primary", app.PrimaryDepartment,
		"secondary", app.SecondaryDepartment,
		"name", RedactName(app.FirstName),
		"email", RedactEmail(app.Email),
	)

	if m.config.notifier != nil {
		primary, _ := m.config.catalog.Lookup(app.PrimaryDepartment)
		var secondary *Option
		if opt, ok := m.config.catalog.Lookup(app.SecondaryDepartment); ok {
			secondary = &opt
		}
		if err := m.config.notifier.ApplicationReceived(ctx, app, &primary, secondary); err != nil {
			m.config.logger.Warn("Failed to notify about application", "application_id", id, "error", err)
		}
	}

	return app, nil
}

func (m *Manager) checkRateLimit(ctx context.Context, clientID string) error {
	if m.config.limiter == nil {
		return nil
	}

	decision, err := m.config.limiter.Allow(ctx, clientID)
	if err != nil {
		// Fail open: a broken limiter must not block applicants.
		m.config.logger.Error("Rate limiter unavailable", "error", err)
		return nil
	}
	if decision.Allowed {
		return nil
	}

	m.audit.Record(security.EventRateLimitExceeded, map[string]string{
		"client": clientID,
		"reason": decision.Reason,
	})
	return &RateLimitError{RetryAfter: decision.RetryAfter, Reason: decision.Reason}
}

// Get returns the application with id, or ErrNotFound.
func (m *Manager) Get(ctx context.Context, id string) (*Application, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}
	if m.config.storage == nil {
		return nil, ErrStorageUnavailable
	}

	if m.config.cache != nil {
		if app, err := m.getFromCache(ctx, id); err == nil {
			return m.open(app)
		}
	}

	app, err := m.config.storage.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if m.config.cache != nil {
		m.setToCache(ctx, app)
	}

	return m.open(app)
}

// ListByDepartment returns applications naming departmentID as either preference.
func (m *Manager) ListByDepartment(ctx context.Context, departmentID string) ([]*Application, error) {
	if departmentID == "" {
		return nil, ErrInvalidInput
	}
	if !m.config.catalog.Contains(departmentID) {
		return nil, ErrUnknownOption
	}
	if m.config.storage == nil {
		return nil, ErrStorageUnavailable
	}

	apps, err := m.config.storage.ListByDepartment(ctx, departmentID)
	if err != nil {
		return nil, err
	}
	return m.openAll(apps)
}

// GetAll returns every stored application, oldest first.
func (m *Manager) GetAll(ctx context.Context) ([]*Application, error) {
	if m.config.storage == nil {
		return nil, ErrStorageUnavailable
	}
	apps, err := m.config.storage.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return m.openAll(apps)
}

// CountByDepartment tallies primary and secondary preferences in catalog order.
func (m *Manager) CountByDepartment(ctx context.Context) ([]DepartmentCount, error) {
	if m.config.storage == nil {
		return nil, ErrStorageUnavailable
	}
	apps, err := m.config.storage.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	options := m.config.catalog.Options()
	counts := make([]DepartmentCount, len(options))
	pos := make(map[string]int, len(options))
	for i, opt := range options {
		counts[i].Option = opt
		pos[opt.ID] = i
	}
	for _, app := range apps {
		if i, ok := pos[app.PrimaryDepartment]; ok {
			counts[i].Primary++
		}
		if i, ok := pos[app.SecondaryDepartment]; ok {
			counts[i].Secondary++
		}
	}
	return counts, nil
}

// Delete removes an application.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidInput
	}
	if m.config.storage == nil {
		return ErrStorageUnavailable
	}

	if err := m.config.storage.Delete(ctx, id); err != nil {
		return err
	}

	if m.config.cache != nil {
		m.deleteFromCache(ctx, id)
	}

	return nil
}

// seal returns a copy of app with contact fields encrypted, or app itself when
// encryption is disabled.
func (m *Manager) seal(app *Application) (*Application, error) {
	if m.config.encryption == nil {
		return app, nil
	}

	out := *app
	for _, f := range []*string{&out.Email, &out.Phone, &out.RegNumber} {
		enc, err := m.config.encryption.Encrypt(*f, app.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt application %s: %w", app.ID, err)
		}
		*f = enc
	}
	out.Encrypted = true
	return &out, nil
}

func (m *Manager) open(app *Application) (*Application, error) {
	if !app.Encrypted {
		return app, nil
	}
	if m.config.encryption == nil {
		return nil, ErrEncryptionRequired
	}

	out := *app
	for _, f := range []*string{&out.Email, &out.Phone, &out.RegNumber} {
		dec, err := m.config.encryption.Decrypt(*f, app.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt application %s: %w", app.ID, err)
		}
		*f = dec
	}
	out.Encrypted = false
	return &out, nil
}

func (m *Manager) openAll(apps []*Application) ([]*Application, error) {
	out := make([]*Application, 0, len(apps))
	for _, app := range apps {
		opened, err := m.open(app)
		if err != nil {
			return nil, err
		}
		out = append(out, opened)
	}
	return out, nil
}

func cacheKey(id string) string {
	return "app:" + id
}

func (m *Manager) getFromCache(ctx context.Context, id string) (*Application, error) {
	data, err := m.config.cache.Get(ctx, cacheKey(id))
	if err != nil {
		return nil, err
	}

	var raw []byte
	switch v := data.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return nil, fmt.Errorf("%w: unexpected cached type %T", ErrSerialization, data)
	}

	var app Application
	if err := json.Unmarshal(raw, &app); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return &app, nil
}

func (m *Manager) setToCache(ctx context.Context, app *Application) {
	data, err := json.Marshal(app)
	if err != nil {
		m.config.logger.Error("Failed to marshal application for cache", "error", err)
		return
	}

	if err := m.config.cache.Set(ctx, cacheKey(app.ID), data, m.config.cacheTTL); err != nil {
		m.config.logger.Error("Failed to cache application", "error", err)
	}
}

func (m *Manager) deleteFromCache(ctx context.Context, id string) {
	if err := m.config.cache.Delete(ctx, cacheKey(id)); err != nil {
		m.config.logger.Error("Failed to delete application from cache", "error", err)
	}
}

// formFields exposes the raw form values for abuse detection, keyed by JSON field name.
func formFields(f ApplicationForm) map[string]string {
	return map[string]string{
		"firstName":    f.FirstName,
		"lastName":     f.LastName,
		"email":        f.Email,
		"phone":        f.Phone,
		"regNumber":    f.RegNumber,
		"year":         f.Year,
		"skills":       f.Skills,
		"motivation":   f.Motivation,
		"contribution": f.Contribution,
	}
}
