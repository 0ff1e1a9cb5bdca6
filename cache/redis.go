// cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/CreativeUnicorns/recruitprefs"
)

// DefaultKeyPrefix namespaces every key written by RedisCache.
const DefaultKeyPrefix = "recruitprefs:"

// RedisCache stores values as raw bytes in Redis. Get always returns []byte; callers
// decode what they stored.
type RedisCache struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisCache connects to addr and verifies the connection with PING.
func NewRedisCache(addr string, password string, db int) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: failed to connect to redis: %v", recruitprefs.ErrCacheUnavailable, err)
	}

	return NewRedisCacheWithClient(client, DefaultKeyPrefix), nil
}

// NewRedisCacheWithClient wraps an existing client. Closing the cache closes the client.
func NewRedisCacheWithClient(client redis.UniversalClient, prefix string) *RedisCache {
	return &RedisCache{
		client: client,
		prefix: prefix,
	}
}

// Client exposes the underlying client so other components can share the connection.
func (c *RedisCache) Client() redis.UniversalClient {
	return c.client
}

// Get returns the stored bytes, or recruitprefs.ErrNotFound.
func (c *RedisCache) Get(ctx context.Context, key string) (interface{}, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, recruitprefs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get from redis: %v", recruitprefs.ErrCacheUnavailable, err)
	}
	return data, nil
}

// Set stores value with ttl. []byte and string values are stored verbatim; anything
// else is JSON encoded.
func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("%w: failed to marshal value: %v", recruitprefs.ErrSerialization, err)
		}
		data = encoded
	}

	if err := c.client.Set(ctx, c.prefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: failed to set in redis: %v", recruitprefs.ErrCacheUnavailable, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		return fmt.Errorf("%w: failed to delete from redis: %v", recruitprefs.ErrCacheUnavailable, err)
	}
	return nil
}

// Close closes the underlying client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
