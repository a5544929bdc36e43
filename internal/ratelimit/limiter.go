package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter is a fixed-window request counter per client IP and purpose, backed by Redis.
type Limiter struct {
	client      *redis.Client
	maxAttempts int64
	window      time.Duration
}

func NewLimiter(client *redis.Client, maxAttempts int, window time.Duration) *Limiter {
	return &Limiter{
		client:      client,
		maxAttempts: int64(maxAttempts),
		window:      window,
	}
}

func getIPKey(ip, purpose string) string {
	return fmt.Sprintf("ratelimit:%s:%s", purpose, ip)
}

// CheckIPRateLimitWithPurpose reports whether ip has used up its attempts for
// purpose in the current window.
func (l *Limiter) CheckIPRateLimitWithPurpose(ctx context.Context, ip, purpose string) (bool, error) {
	count, err := l.client.Get(ctx, getIPKey(ip, purpose)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read rate limit counter: %w", err)
	}
	return count >= l.maxAttempts, nil
}

// RecordIPRequestWithPurpose counts one request. The first request of a
// window starts its expiry.
func (l *Limiter) RecordIPRequestWithPurpose(ctx context.Context, ip, purpose string) error {
	key := getIPKey(ip, purpose)

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to increment rate limit counter: %w", err)
	}

	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}
	return nil
}
