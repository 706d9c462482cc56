package redis

import (
	"context"
	"fmt"
	"time"
)

// RateLimiter bounds how often a key may pass within a window. Used to
// keep one user from flooding the generation queue.
type RateLimiter struct {
	client RedisClient
}

func NewRateLimiter(client RedisClient) *RateLimiter {
	return &RateLimiter{client: client}
}

func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := r.client.Incr(ctx, key)
	if err != nil {
		return false, err
	}

	if count == 1 {
		if err := r.client.Expire(ctx, key, window); err != nil {
			return false, err
		}
	}

	return count <= int64(limit), nil
}

func SubmitKey(userID string) string {
	return fmt.Sprintf("rate_limit:%s:diet_generate", userID)
}
