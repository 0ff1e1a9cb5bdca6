package security

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter shares rate limit state between service instances through Redis.
// The attempt counter lives in "<prefix>window:<key>" and expires with the window;
// the cooldown is a "<prefix>cooldown:<key>" marker set with NX.
type RedisLimiter struct {
	client redis.Cmdable
	cfg    LimiterConfig
	prefix string
}

// NewRedisLimiter creates a RedisLimiter. An empty prefix defaults to "ratelimit:".
func NewRedisLimiter(client redis.Cmdable, cfg LimiterConfig, prefix string) *RedisLimiter {
	def := DefaultLimiterConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if prefix == "" {
		prefix = "ratelimit:"
	}
	return &RedisLimiter{client: client, cfg: cfg, prefix: prefix}
}

// Allow records an attempt for key if it is within limits.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	windowKey := l.prefix + "window:" + key
	cooldownKey := l.prefix + "cooldown:" + key

	count, err := l.client.Get(ctx, windowKey).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return Decision{}, fmt.Errorf("ratelimit: failed to read window for %q: %w", key, err)
	}
	if count >= l.cfg.MaxAttempts {
		return Decision{RetryAfter: l.ttl(ctx, windowKey), Reason: ReasonWindow}, nil
	}

	if l.cfg.Cooldown > 0 {
		acquired, err := l.client.SetNX(ctx, cooldownKey, 1, l.cfg.Cooldown).Result()
		if err != nil {
			return Decision{}, fmt.Errorf("ratelimit: failed to set cooldown for %q: %w", key, err)
		}
		if !acquired {
			return Decision{RetryAfter: l.ttl(ctx, cooldownKey), Reason: ReasonCooldown}, nil
		}
	}

	n, err := l.client.Incr(ctx, windowKey).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("ratelimit: failed to count attempt for %q: %w", key, err)
	}
	if n == 1 {
		if err := l.client.PExpire(ctx, windowKey, l.cfg.Window).Err(); err != nil {
			return Decision{}, fmt.Errorf("ratelimit: failed to expire window for %q: %w", key, err)
		}
	}
	return Decision{Allowed: true}, nil
}

func (l *RedisLimiter) ttl(ctx context.Context, key string) time.Duration {
	d, err := l.client.PTTL(ctx, key).Result()
	if err != nil || d < 0 {
		return 0
	}
	return d
}
