// Package ratelimit provides domain types for request rate limiting.
package ratelimit

import (
	"context"
	"time"
)

// Config holds rate limiting configuration for a single window.
type Config struct {
	// RequestsPerWindow is the maximum number of requests allowed in the window.
	RequestsPerWindow int
	// WindowSize is the duration of the sliding window.
	WindowSize time.Duration
}

// Result represents the outcome of a rate limit check.
type Result struct {
	// Allowed indicates whether the request is allowed.
	Allowed bool
	// Remaining is the number of requests remaining in the current window.
	Remaining int
	// RetryAfter is the duration to wait before retrying (only set when not allowed).
	RetryAfter time.Duration
	// ResetAt is when the current window resets.
	ResetAt time.Time
}

// Limiter is the interface for rate limiting implementations.
type Limiter interface {
	// Allow checks if a request identified by key is allowed under the rate limit.
	Allow(ctx context.Context, key string) (*Result, error)
}

// MiddlewareConfig configures the rate limiting middleware.
type MiddlewareConfig struct {
	// IPConfig limits unauthenticated requests by client IP.
	IPConfig Config
	// UserConfig limits authenticated requests by user ID.
	UserConfig Config
	// KeyPrefix is the prefix for all rate limit keys in Redis.
	KeyPrefix string
}

// DefaultMiddlewareConfig returns the default middleware configuration:
// 30 requests per minute for anonymous clients (registration and login
// are expensive bcrypt calls) and 300 per minute for authenticated users.
func DefaultMiddlewareConfig() MiddlewareConfig {
	return MiddlewareConfig{
		IPConfig: Config{
			RequestsPerWindow: 30,
			WindowSize:        time.Minute,
		},
		UserConfig: Config{
			RequestsPerWindow: 300,
			WindowSize:        time.Minute,
		},
		KeyPrefix: "ratelimit:",
	}
}
