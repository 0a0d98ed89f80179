// Package ratelimit provides a Redis-based sliding window rate limiter.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	domain "github.com/example/task-manager/domain/ratelimit"
	"github.com/redis/go-redis/v9"
)

// SlidingWindowLimiter implements a sliding window rate limiter using Redis.
// It tracks request timestamps in a sorted set and counts the entries that
// fall within the sliding window.
type SlidingWindowLimiter struct {
	client *redis.Client
	config domain.Config
	prefix string
}

// NewSlidingWindowLimiter creates a new sliding window rate limiter.
func NewSlidingWindowLimiter(client *redis.Client, config domain.Config, prefix string) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		client: client,
		config: config,
		prefix: prefix,
	}
}

// allowScript performs the check-and-record atomically:
// drop entries outside the window, count the rest, and either record the
// request or compute how long the caller must wait.
var allowScript = redis.NewScript(`
	local key = KEYS[1]
	local counter_key = KEYS[2]
	local now = tonumber(ARGV[1])
	local window_start = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local window_size_ms = tonumber(ARGV[4])

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)

	local count = redis.call('ZCARD', key)

	if count < limit then
		-- Atomic counter keeps member IDs unique within the same millisecond
		local counter = redis.call('INCR', counter_key)
		redis.call('ZADD', key, now, now .. ':' .. counter)
		redis.call('PEXPIRE', key, window_size_ms)
		redis.call('PEXPIRE', counter_key, window_size_ms)
		return {1, limit - count - 1, 0}
	else
		local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
		local retry_after = 0
		if #oldest >= 2 then
			retry_after = oldest[2] + window_size_ms - now
		end
		return {0, 0, retry_after}
	end
`)

// Allow checks if a request identified by key is allowed under the limit,
// recording it when it is.
func (l *SlidingWindowLimiter) Allow(ctx context.Context, key string) (*domain.Result, error) {
	now := time.Now()
	windowStart := now.Add(-l.config.WindowSize)
	redisKey := l.prefix + key
	counterKey := redisKey + ":counter"

	result, err := allowScript.Run(ctx, l.client, []string{redisKey, counterKey},
		now.UnixMilli(),
		windowStart.UnixMilli(),
		l.config.RequestsPerWindow,
		l.config.WindowSize.Milliseconds(),
	).Slice()
	if err != nil {
		return nil, fmt.Errorf("failed to run rate limit script: %w", err)
	}

	if len(result) < 3 {
		return nil, fmt.Errorf("unexpected result length: %d", len(result))
	}

	allowedVal, ok := result[0].(int64)
	if !ok {
		return nil, fmt.Errorf("unexpected type for allowed: %T", result[0])
	}
	remainingVal, ok := result[1].(int64)
	if !ok {
		return nil, fmt.Errorf("unexpected type for remaining: %T", result[1])
	}
	retryAfterMs, ok := result[2].(int64)
	if !ok {
		return nil, fmt.Errorf("unexpected type for retry_after: %T", result[2])
	}

	res := &domain.Result{
		Allowed:   allowedVal == 1,
		Remaining: int(remainingVal),
		ResetAt:   now.Add(l.config.WindowSize),
	}

	if !res.Allowed && retryAfterMs > 0 {
		res.RetryAfter = time.Duration(retryAfterMs) * time.Millisecond
	}

	return res, nil
}

// Config returns the limiter's configuration.
func (l *SlidingWindowLimiter) Config() domain.Config {
	return l.config
}
