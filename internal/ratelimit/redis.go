package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisLimiter keeps a sliding window of hit timestamps per key in a sorted set,
// so the limit is shared by every instance talking to the same Redis. Redis
// errors fail open.
type RedisLimiter struct {
	client    redis.Cmdable
	limit     int
	window    time.Duration
	keyPrefix string
	logger    *zap.Logger
	now       func() time.Time
}

// NewRedisLimiter allows limit hits per key in any trailing window. prefix
// namespaces keys so several limiters can share one Redis database.
func NewRedisLimiter(client redis.Cmdable, prefix string, limit int, windowSize time.Duration, logger *zap.Logger) *RedisLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisLimiter{
		client:    client,
		limit:     limit,
		window:    windowSize,
		keyPrefix: "ratelimit:" + prefix + ":",
		logger:    logger,
		now:       time.Now,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) Result {
	now := l.now()
	windowStart := now.Add(-l.window)
	redisKey := l.keyPrefix + key

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "-inf", strconv.FormatInt(windowStart.UnixNano(), 10))
	card := pipe.ZCard(ctx, redisKey)
	member := strconv.FormatInt(now.UnixNano(), 10) + "-" + uuid.NewString()
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixNano()), Member: member})
	pipe.PExpire(ctx, redisKey, l.window)
	oldest := pipe.ZRangeWithScores(ctx, redisKey, 0, 0)

	if _, err := pipe.Exec(ctx); err != nil {
		l.logger.Warn("rate limiter unavailable; allowing request", zap.String("key", redisKey), zap.Error(err))
		return Result{Allowed: true, Limit: l.limit, Remaining: l.limit, ResetAt: now.Add(l.window)}
	}

	count := int(card.Val()) + 1
	resetAt := now.Add(l.window)
	if z := oldest.Val(); len(z) > 0 {
		resetAt = time.Unix(0, int64(z[0].Score)).Add(l.window)
	}

	if count > l.limit {
		// rejected hits do not consume capacity
		if err := l.client.ZRem(ctx, redisKey, member).Err(); err != nil {
			l.logger.Warn("rate limiter cleanup failed", zap.String("key", redisKey), zap.Error(err))
		}
	}

	remaining := l.limit - count
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Allowed:   count <= l.limit,
		Limit:     l.limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
}
