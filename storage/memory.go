package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/CreativeUnicorns/recruitprefs"
)

// MemoryStorage implements the Storage interface using an in-memory map.
// Nothing survives a restart; use it for tests and local development.
type MemoryStorage struct {
	mu   sync.RWMutex
	apps map[string]*recruitprefs.Application
}

// NewMemoryStorage creates a new instance of MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		apps: make(map[string]*recruitprefs.Application),
	}
}

// Get retrieves an application by ID.
// It returns recruitprefs.ErrNotFound if the application does not exist.
func (s *MemoryStorage) Get(_ context.Context, id string) (*recruitprefs.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	app, ok := s.apps[id]
	if !ok {
		return nil, recruitprefs.ErrNotFound
	}

	appCopy := *app
	return &appCopy, nil
}

// Set stores a copy of app, replacing any application with the same ID.
func (s *MemoryStorage) Set(_ context.Context, app *recruitprefs.Application) error {
	if err := validateApplication(app); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	appCopy := *app
	s.apps[app.ID] = &appCopy
	return nil
}

// Delete removes an application.
// It returns recruitprefs.ErrNotFound if the application does not exist.
func (s *MemoryStorage) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.apps[id]; !ok {
		return recruitprefs.ErrNotFound
	}
	delete(s.apps, id)
	return nil
}

// ListByDepartment returns applications naming departmentID as either preference, oldest first.
func (s *MemoryStorage) ListByDepartment(_ context.Context, departmentID string) ([]*recruitprefs.Application, error) {
	return s.collect(func(app *recruitprefs.Application) bool {
		return app.PrimaryDepartment == departmentID || app.SecondaryDepartment == departmentID
	}), nil
}

// GetAll returns every application, oldest first.
func (s *MemoryStorage) GetAll(_ context.Context) ([]*recruitprefs.Application, error) {
	return s.collect(func(*recruitprefs.Application) bool { return true }), nil
}

func (s *MemoryStorage) collect(match func(*recruitprefs.Application) bool) []*recruitprefs.Application {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*recruitprefs.Application, 0)
	for _, app := range s.apps {
		if match(app) {
			appCopy := *app
			result = append(result, &appCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].SubmittedAt.Equal(result[j].SubmittedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].SubmittedAt.Before(result[j].SubmittedAt)
	})
	return result
}

// Close is a no-op for MemoryStorage as there are no external resources to release.
func (s *MemoryStorage) Close() error {
	return nil
}
