// Copyright (c) 2026 Schemely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisTimeout bounds each counter round trip so a slow Redis cannot stall logins.
const redisTimeout = 250 * time.Millisecond

// Redis is a [Limiter] backed by shared INCR/EXPIRE counters.
// Requires Redis 7.0 or later for EXPIRE NX.
type Redis struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// NewRedis wraps an open client. Keys are namespaced with prefix.
func NewRedis(client *redis.Client, prefix string, logger *slog.Logger) *Redis {
	return &Redis{client: client, prefix: prefix, logger: logger}
}

// Allow implements [Limiter].
func (limiter *Redis) Allow(ctx context.Context, key string, limit int, span time.Duration) Decision {
	if limit <= 0 {
		return Decision{Allowed: true}
	}
	if span <= 0 {
		span = DefaultWindow
	}

	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	redisKey := limiter.prefix + key

	// One MULTI/EXEC, so a counter never outlives its window.
	// EXPIRE NX only arms a key that has no TTL yet.
	var (
		incr *redis.IntCmd
		ttl  *redis.DurationCmd
	)
	_, err := limiter.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.ExpireNX(ctx, redisKey, span)
		ttl = pipe.TTL(ctx, redisKey)
		return nil
	})
	if err != nil {
		limiter.logError(ctx, "incr_expire", err)
		return Decision{Allowed: true}
	}

	counter := incr.Val()
	remaining := ttl.Val()
	if remaining <= 0 {
		remaining = span
	}

	return Decision{
		Allowed: int(counter) <= limit,
		Count:   int(counter),
		ResetAt: time.Now().Add(remaining),
	}
}

// Close is a no-op: the client is owned by the caller.
func (limiter *Redis) Close() error {
	return nil
}

func (limiter *Redis) logError(ctx context.Context, op string, err error) {
	if limiter.logger == nil {
		return
	}
	limiter.logger.WarnContext(ctx, "rate_limiter_redis_error",
		slog.String("op", op),
		slog.Any("error", err),
	)
}
