package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLimiter(t *testing.T, maxAttempts int, window time.Duration) (*Limiter, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewLimiter(client, maxAttempts, window), mr
}

func TestLimiter_BlocksAfterMaxAttempts(t *testing.T) {
	limiter, mr := setupLimiter(t, 3, time.Minute)
	ctx := context.Background()

	for i := range 3 {
		exceeded, err := limiter.CheckIPRateLimitWithPurpose(ctx, "10.0.0.1", "login")
		require.NoError(t, err)
		assert.False(t, exceeded, "attempt %d", i+1)
		require.NoError(t, limiter.RecordIPRequestWithPurpose(ctx, "10.0.0.1", "login"))
	}

	exceeded, err := limiter.CheckIPRateLimitWithPurpose(ctx, "10.0.0.1", "login")
	require.NoError(t, err)
	assert.True(t, exceeded)

	count, err := mr.Get("ratelimit:login:10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "3", count)
}

func TestLimiter_KeysArePerIPAndPurpose(t *testing.T) {
	limiter, mr := setupLimiter(t, 1, time.Minute)
	ctx := context.Background()

	require.NoError(t, limiter.RecordIPRequestWithPurpose(ctx, "10.0.0.1", "login"))

	exceeded, err := limiter.CheckIPRateLimitWithPurpose(ctx, "10.0.0.1", "register")
	require.NoError(t, err)
	assert.False(t, exceeded)

	exceeded, err = limiter.CheckIPRateLimitWithPurpose(ctx, "10.0.0.2", "login")
	require.NoError(t, err)
	assert.False(t, exceeded)
	assert.False(t, mr.Exists("ratelimit:login:10.0.0.2"))
}

func TestLimiter_WindowExpires(t *testing.T) {
	limiter, mr := setupLimiter(t, 1, time.Minute)
	ctx := context.Background()

	require.NoError(t, limiter.RecordIPRequestWithPurpose(ctx, "10.0.0.1", "login"))
	require.NoError(t, limiter.RecordIPRequestWithPurpose(ctx, "10.0.0.1", "login"))
	assert.Equal(t, time.Minute, mr.TTL("ratelimit:login:10.0.0.1"), "later hits do not extend the window")

	exceeded, err := limiter.CheckIPRateLimitWithPurpose(ctx, "10.0.0.1", "login")
	require.NoError(t, err)
	assert.True(t, exceeded)

	mr.FastForward(time.Minute + time.Second)

	exceeded, err = limiter.CheckIPRateLimitWithPurpose(ctx, "10.0.0.1", "login")
	require.NoError(t, err)
	assert.False(t, exceeded)
}

func TestLimiter_RedisUnavailable(t *testing.T) {
	limiter, mr := setupLimiter(t, 1, time.Minute)
	mr.Close()

	_, err := limiter.CheckIPRateLimitWithPurpose(context.Background(), "10.0.0.1", "login")
	assert.Error(t, err)
	assert.Error(t, limiter.RecordIPRequestWithPurpose(context.Background(), "10.0.0.1", "login"))
}
