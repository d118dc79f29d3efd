package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter counts hits per key in fixed windows.
type RateLimiter interface {
	// Allow records one hit for id under resource and reports whether it is
	// within limit for the current window.
	Allow(ctx context.Context, resource, id string, limit int, window time.Duration) (bool, error)
}

type redisRateLimiter struct {
	client *redis.Client
}

// NewRedisRateLimiter returns a fixed-window limiter on INCR/EXPIRE.
func NewRedisRateLimiter(client *redis.Client) RateLimiter {
	return &redisRateLimiter{client: client}
}

const rateLimitKeyPrefix = "rl:"

func (r *redisRateLimiter) Allow(ctx context.Context, resource, id string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 {
		return true, nil
	}
	key := fmt.Sprintf("%s%s:%s", rateLimitKeyPrefix, resource, id)

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	// NX keeps the window anchored at the first hit.
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, fmt.Errorf("rate limit check failed for %s: %w", key, err)
	}
	return incr.Val() <= int64(limit), nil
}
