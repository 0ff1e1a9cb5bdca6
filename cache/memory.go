package cache

import (
	"context"
	"sync"
	"time"

	"github.com/CreativeUnicorns/recruitprefs"
)

// DefaultCleanupInterval is how often expired items are purged.
const DefaultCleanupInterval = time.Minute

// item represents a single cache item with a value and an expiration time.
type item struct {
	value      interface{}
	expiration time.Time
}

func (it item) expired(now time.Time) bool {
	return !it.expiration.IsZero() && now.After(it.expiration)
}

// MemoryCache implements the Cache interface using an in-memory store.
type MemoryCache struct {
	mu       sync.RWMutex
	items    map[string]item
	now      func() time.Time
	interval time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

// MemoryCacheOption customizes a MemoryCache.
type MemoryCacheOption func(*MemoryCache)

// WithCleanupInterval sets how often the background sweep runs.
func WithCleanupInterval(d time.Duration) MemoryCacheOption {
	return func(c *MemoryCache) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithClock overrides time.Now for expiry decisions.
func WithClock(now func() time.Time) MemoryCacheOption {
	return func(c *MemoryCache) {
		c.now = now
	}
}

// NewMemoryCache initializes a new MemoryCache instance.
// It starts a garbage collection goroutine that runs until Close.
func NewMemoryCache(opts ...MemoryCacheOption) *MemoryCache {
	cache := &MemoryCache{
		items:    make(map[string]item),
		now:      time.Now,
		interval: DefaultCleanupInterval,
		stop:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(cache)
	}
	go cache.gc()
	return cache
}

// Get retrieves a value by key.
// Missing and expired keys both return recruitprefs.ErrNotFound.
func (c *MemoryCache) Get(_ context.Context, key string) (interface{}, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	it, exists := c.items[key]
	if !exists || it.expired(c.now()) {
		return nil, recruitprefs.ErrNotFound
	}

	return it.value, nil
}

// Set stores a value with an optional TTL. A ttl of zero never expires.
func (c *MemoryCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expiration time.Time
	if ttl > 0 {
		expiration = c.now().Add(ttl)
	}

	c.items[key] = item{
		value:      value,
		expiration: expiration,
	}

	return nil
}

// Delete removes a key from the memory cache.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
	return nil
}

// Len returns the number of stored items, including expired ones not yet purged.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Close stops the gc goroutine and clears all items. It is safe to call more than once.
func (c *MemoryCache) Close() error {
	c.stopOnce.Do(func() {
		close(c.stop)
	})

	c.mu.Lock()
	c.items = make(map[string]item)
	c.mu.Unlock()
	return nil
}

// purge removes expired items and returns how many were dropped.
func (c *MemoryCache) purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	n := 0
	for key, it := range c.items {
		if it.expired(now) {
			delete(c.items, key)
			n++
		}
	}
	return n
}

func (c *MemoryCache) gc() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.purge()
		case <-c.stop:
			return
		}
	}
}
