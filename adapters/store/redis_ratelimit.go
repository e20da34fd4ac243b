package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/layer-3/walletlink/core"
	"github.com/layer-3/walletlink/ports"
)

const rateLimitKeyPrefix = "ratelimit:"

// RedisRateLimiter is a fixed-window limiter on a single Redis counter
// (INCR + EXPIRE). The increment is never rolled back on rejection, so the
// contract stays a single atomic increment-and-compare even across instances.
type RedisRateLimiter struct {
	client *redis.Client
	max    int64
	window time.Duration
}

// NewRedisRateLimiter creates a new Redis rate limiter
func NewRedisRateLimiter(client *redis.Client, max int64, window time.Duration) ports.RateLimiter {
	return &RedisRateLimiter{
		client: client,
		max:    max,
		window: window,
	}
}

// Allow counts one attempt for the identity and reports whether it is within
// the window threshold
func (l *RedisRateLimiter) Allow(ctx context.Context, identity core.Identity) (ports.RateLimitResult, error) {
	key := rateLimitKeyPrefix + identity.Key()

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	ttl := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return ports.RateLimitResult{}, storeErr("ratelimit incr", err)
	}

	// First hit in the window opens it
	if incr.Val() == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return ports.RateLimitResult{}, storeErr("ratelimit expire", err)
		}
		ttl = l.client.TTL(ctx, key)
	}

	hits := incr.Val()
	remaining := l.max - hits
	if remaining < 0 {
		remaining = 0
	}

	result := ports.RateLimitResult{
		Allowed:   hits <= l.max,
		Remaining: remaining,
	}
	if !result.Allowed {
		result.RetryAfter = ttl.Val()
		if result.RetryAfter < 0 {
			result.RetryAfter = l.window
		}
	}

	return result, nil
}
