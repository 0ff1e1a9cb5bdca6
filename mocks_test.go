package recruitprefs

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/CreativeUnicorns/recruitprefs/security"
)

// MockStorage implements the Storage interface for testing
type MockStorage struct {
	mu     sync.RWMutex
	data   map[string]*Application
	closed bool
	// setErr and getAllErr force failures for error-path tests.
	setErr    error
	getAllErr error
	gets      int
}

func NewMockStorage() *MockStorage {
	return &MockStorage{
		data: make(map[string]*Application),
	}
}

func (m *MockStorage) Get(ctx context.Context, id string) (*Application, error) {
	_, _ = ctx.Deadline()
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gets++
	if m.closed {
		return nil, ErrStorageUnavailable
	}
	app, ok := m.data[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *app
	return &cp, nil
}

func (m *MockStorage) Set(ctx context.Context, app *Application) error {
	_, _ = ctx.Deadline()
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStorageUnavailable
	}
	if m.setErr != nil {
		return m.setErr
	}
	cp := *app
	m.data[app.ID] = &cp
	return nil
}

func (m *MockStorage) Delete(ctx context.Context, id string) error {
	_, _ = ctx.Deadline()
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStorageUnavailable
	}
	if _, ok := m.data[id]; !ok {
		return ErrNotFound
	}
	delete(m.data, id)
	return nil
}

func (m *MockStorage) ListByDepartment(ctx context.Context, departmentID string) ([]*Application, error) {
	all, err := m.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*Application, 0, len(all))
	for _, app := range all {
		if app.PrimaryDepartment == departmentID || app.SecondaryDepartment == departmentID {
			out = append(out, app)
		}
	}
	return out, nil
}

func (m *MockStorage) GetAll(ctx context.Context) ([]*Application, error) {
	_, _ = ctx.Deadline()
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStorageUnavailable
	}
	if m.getAllErr != nil {
		return nil, m.getAllErr
	}
	out := make([]*Application, 0, len(m.data))
	for _, app := range m.data {
		cp := *app
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].SubmittedAt.Before(out[j].SubmittedAt)
	})
	return out, nil
}

func (m *MockStorage) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *MockStorage) raw(id string) *Application {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data[id]
}

func (m *MockStorage) getCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gets
}

// mockCacheEntry holds a value and an error for a cache key.
// This allows tests to pre-configure specific return values and errors for MockCache.Get.
type mockCacheEntry struct {
	value interface{}
	err   error
}

// MockCache implements the Cache interface for testing
type MockCache struct {
	mu     sync.RWMutex
	data   map[string]mockCacheEntry
	closed bool
}

// NewMockCache creates a new MockCache for testing.
func NewMockCache() *MockCache {
	return &MockCache{
		data: make(map[string]mockCacheEntry),
	}
}

func (m *MockCache) Get(ctx context.Context, key string) (interface{}, error) {
	_, _ = ctx.Deadline()
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrCacheUnavailable
	}
	entry, exists := m.data[key]
	if !exists {
		return nil, ErrNotFound
	}
	return entry.value, entry.err
}

func (m *MockCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	_, _ = ctx.Deadline()
	_ = ttl

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrCacheUnavailable
	}
	m.data[key] = mockCacheEntry{value: value}
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	_, _ = ctx.Deadline()
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrCacheUnavailable
	}
	delete(m.data, key)
	return nil
}

func (m *MockCache) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// put stores a raw entry, bypassing Set, so tests can plant bad values.
func (m *MockCache) put(key string, value interface{}, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = mockCacheEntry{value: value, err: err}
}

func (m *MockCache) has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[key]
	return ok
}

// MockLogger implements the Logger interface for testing
type MockLogger struct {
	mu       sync.Mutex
	Messages []string
}

func (m *MockLogger) Debug(msg string, args ...any) { m.record("DEBUG", msg, args...) }
func (m *MockLogger) Info(msg string, args ...any)  { m.record("INFO", msg, args...) }
func (m *MockLogger) Warn(msg string, args ...any)  { m.record("WARN", msg, args...) }
func (m *MockLogger) Error(msg string, args ...any) { m.record("ERROR", msg, args...) }

func (m *MockLogger) record(level, msg string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, formatMessage(level, msg, args...))
}

// Joined returns every recorded line separated by newlines.
func (m *MockLogger) Joined() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return strings.Join(m.Messages, "\n")
}

func formatMessage(level, msg string, args ...any) string {
	if len(args) > 0 {
		return fmt.Sprintf("%s: %s %v", level, msg, args)
	}
	return fmt.Sprintf("%s: %s", level, msg)
}

// MockLimiter returns queued decisions in order, then allows everything.
type MockLimiter struct {
	mu        sync.Mutex
	decisions []security.Decision
	err       error
	keys      []string
}

func (m *MockLimiter) Allow(_ context.Context, key string) (security.Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.keys = append(m.keys, key)
	if m.err != nil {
		return security.Decision{}, m.err
	}
	if len(m.decisions) == 0 {
		return security.Decision{Allowed: true}, nil
	}
	d := m.decisions[0]
	m.decisions = m.decisions[1:]
	return d, nil
}

// MockNotifier records every notification.
type MockNotifier struct {
	mu        sync.Mutex
	err       error
	apps      []*Application
	primary   []*Option
	secondary []*Option
}

func (m *MockNotifier) ApplicationReceived(_ context.Context, app *Application, primary, secondary *Option) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apps = append(m.apps, app)
	m.primary = append(m.primary, primary)
	m.secondary = append(m.secondary, secondary)
	return m.err
}

func (m *MockNotifier) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.apps)
}
