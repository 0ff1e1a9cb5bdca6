package security

import (
	"context"
	"sync"
	"time"
)

// Reasons reported in a denied Decision.
const (
	ReasonWindow   = "window"
	ReasonCooldown = "cooldown"
)

// Decision is the outcome of a rate limit check.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
	Reason     string
}

// LimiterConfig bounds how often one client may submit.
type LimiterConfig struct {
	// MaxAttempts is the number of attempts allowed per Window.
	MaxAttempts int
	Window      time.Duration
	// Cooldown is the minimum gap between two allowed attempts. Zero disables it.
	Cooldown time.Duration
}

// DefaultLimiterConfig allows five attempts per hour, at least thirty seconds apart.
func DefaultLimiterConfig() LimiterConfig {
	return LimiterConfig{
		MaxAttempts: 5,
		Window:      time.Hour,
		Cooldown:    30 * time.Second,
	}
}

type window struct {
	count int
	start time.Time
	last  time.Time
}

// DefaultCleanupInterval is how often a MemoryLimiter drops elapsed windows.
const DefaultCleanupInterval = time.Minute

// MemoryLimiter is a fixed-window limiter kept in process memory. A background
// goroutine drops elapsed windows until Close is called.
type MemoryLimiter struct {
	mu       sync.Mutex
	cfg      LimiterConfig
	now      func() time.Time
	windows  map[string]*window
	interval time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

// LimiterOption customizes a MemoryLimiter.
type LimiterOption func(*MemoryLimiter)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) LimiterOption {
	return func(l *MemoryLimiter) {
		l.now = now
	}
}

// WithCleanupInterval sets how often elapsed windows are dropped.
func WithCleanupInterval(d time.Duration) LimiterOption {
	return func(l *MemoryLimiter) {
		if d > 0 {
			l.interval = d
		}
	}
}

// NewMemoryLimiter creates a MemoryLimiter. Non-positive limits fall back to the defaults.
func NewMemoryLimiter(cfg LimiterConfig, opts ...LimiterOption) *MemoryLimiter {
	def := DefaultLimiterConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}

	l := &MemoryLimiter{
		cfg:      cfg,
		now:      time.Now,
		windows:  make(map[string]*window),
		interval: DefaultCleanupInterval,
		stop:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	go l.gc()
	return l
}

// Allow records an attempt for key if it is within limits.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.cfg.Window {
		w = &window{start: now}
		l.windows[key] = w
	}

	if w.count >= l.cfg.MaxAttempts {
		return Decision{RetryAfter: w.start.Add(l.cfg.Window).Sub(now), Reason: ReasonWindow}, nil
	}

	if l.cfg.Cooldown > 0 && !w.last.IsZero() {
		if since := now.Sub(w.last); since < l.cfg.Cooldown {
			return Decision{RetryAfter: l.cfg.Cooldown - since, Reason: ReasonCooldown}, nil
		}
	}

	w.count++
	w.last = now
	return Decision{Allowed: true}, nil
}

// Cleanup drops windows that have fully elapsed and returns how many were removed.
func (l *MemoryLimiter) Cleanup() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for key, w := range l.windows {
		if now.Sub(w.start) >= l.cfg.Window {
			delete(l.windows, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked clients.
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (l *MemoryLimiter) Close() error {
	l.stopOnce.Do(func() {
		close(l.stop)
	})
	return nil
}

func (l *MemoryLimiter) gc() {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.Cleanup()
		case <-l.stop:
			return
		}
	}
}
