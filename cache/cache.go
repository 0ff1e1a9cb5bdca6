// Package cache provides in-memory and Redis-backed caches for stored applications.
package cache

import "github.com/CreativeUnicorns/recruitprefs"

var (
	_ recruitprefs.Cache = (*MemoryCache)(nil)
	_ recruitprefs.Cache = (*RedisCache)(nil)
)
