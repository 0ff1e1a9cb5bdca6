package recruitprefs

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session pairs one applicant's selector with the event bus of the page hosting it.
type Session struct {
	ID        string
	Selector  *PreferenceSelector
	Events    *Bus
	CreatedAt time.Time

	mu       sync.Mutex
	lastSeen time.Time
	unbind   func()
}

// Reset raises EventResetSelector on the session bus, clearing its selector.
func (s *Session) Reset() {
	s.Events.Emit(EventResetSelector)
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Sessions is a registry of live selector sessions. Sessions idle for longer than the
// TTL are evicted by a background sweep until Close is called.
type Sessions struct {
	mu       sync.RWMutex
	catalog  *Catalog
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]*Session
	stop     chan struct{}
	stopOnce sync.Once
	onEvict  func(*Session)
}

// SessionsOption customizes a Sessions registry.
type SessionsOption func(*Sessions)

// WithSessionClock overrides time.Now.
func WithSessionClock(now func() time.Time) SessionsOption {
	return func(s *Sessions) {
		s.now = now
	}
}

// WithEvictHook registers fn to run after a session is evicted or deleted.
func WithEvictHook(fn func(*Session)) SessionsOption {
	return func(s *Sessions) {
		s.onEvict = fn
	}
}

// NewSessions creates a registry over catalog. A zero ttl disables the background sweep.
func NewSessions(catalog *Catalog, ttl time.Duration, opts ...SessionsOption) (*Sessions, error) {
	if catalog == nil || catalog.Len() == 0 {
		return nil, ErrEmptyCatalog
	}

	s := &Sessions{
		catalog:  catalog,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*Session),
		stop:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	if ttl > 0 {
		go s.gc(sweepInterval(ttl))
	}
	return s, nil
}

func sweepInterval(ttl time.Duration) time.Duration {
	interval := ttl / 4
	if interval > time.Minute {
		interval = time.Minute
	}
	if interval < time.Second {
		interval = time.Second
	}
	return interval
}

// Create starts a new session with an empty selector bound to a fresh bus.
func (s *Sessions) Create() *Session {
	// The catalog was validated by NewSessions, so the selector cannot fail.
	selector, _ := NewPreferenceSelector(s.catalog)
	bus := NewBus()
	now := s.now()

	sess := &Session{
		ID:        uuid.NewString(),
		Selector:  selector,
		Events:    bus,
		CreatedAt: now,
		lastSeen:  now,
	}
	sess.unbind = selector.BindReset(bus)

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess
}

// Get returns a live session and marks it as recently used.
func (s *Sessions) Get(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.touch(s.now())
	return sess, nil
}

// Delete removes a session. Deleting an unknown session is not an error.
func (s *Sessions) Delete(id string) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if ok {
		s.release(sess)
	}
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep evicts sessions idle for at least the TTL and returns how many were removed.
func (s *Sessions) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}

	now := s.now()
	var expired []*Session
	s.mu.Lock()
	for id, sess := range s.sessions {
		if now.Sub(sess.idleSince()) >= s.ttl {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		s.release(sess)
	}
	return len(expired)
}

// Close stops the background sweep and drops every session.
func (s *Sessions) Close() error {
	s.stopOnce.Do(func() {
		close(s.stop)
	})

	s.mu.Lock()
	all := s.sessions
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()

	for _, sess := range all {
		s.release(sess)
	}
	return nil
}

func (s *Sessions) release(sess *Session) {
	if sess.unbind != nil {
		sess.unbind()
	}
	if s.onEvict != nil {
		s.onEvict(sess)
	}
}

func (s *Sessions) gc(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Sweep()
		case <-s.stop:
			return
		}
	}
}
