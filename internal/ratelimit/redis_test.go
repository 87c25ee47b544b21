package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newRedisLimiter(t *testing.T, limit int, window time.Duration) (*RedisLimiter, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLimiter(client, "test", limit, window, zap.NewNop()), srv
}

func TestRedisLimiterSlidingWindow(t *testing.T) {
	l, _ := newRedisLimiter(t, 2, time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	first := l.Allow(ctx, "ip")
	assert.True(t, first.Allowed)
	assert.Equal(t, 1, first.Remaining)

	now = now.Add(30 * time.Second)
	second := l.Allow(ctx, "ip")
	assert.True(t, second.Allowed)
	assert.Equal(t, 0, second.Remaining)

	third := l.Allow(ctx, "ip")
	assert.False(t, third.Allowed)
	assert.WithinDuration(t, time.Date(2024, 1, 1, 12, 1, 0, 0, time.UTC), third.ResetAt, time.Millisecond, "capacity returns when the oldest hit leaves the window")

	now = now.Add(31 * time.Second)
	assert.True(t, l.Allow(ctx, "ip").Allowed, "the first hit has slid out of the window")
}

func TestRedisLimiterKeysExpire(t *testing.T) {
	l, srv := newRedisLimiter(t, 5, time.Minute)
	l.Allow(context.Background(), "ip")

	require.True(t, srv.Exists("ratelimit:test:ip"))
	assert.Equal(t, time.Minute, srv.TTL("ratelimit:test:ip"))
}

func TestRedisLimiterFailsOpen(t *testing.T) {
	l, srv := newRedisLimiter(t, 1, time.Minute)
	core, logs := observer.New(zap.WarnLevel)
	l.logger = zap.New(core)
	srv.Close()

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow(context.Background(), "ip").Allowed)
	}
	assert.Equal(t, 3, logs.FilterMessage("rate limiter unavailable; allowing request").Len())
}
