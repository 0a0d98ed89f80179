package ratelimit

import (
	"context"
	"fmt"
	"log"

	domain "github.com/example/task-manager/domain/ratelimit"
	"github.com/go-monolith/mono"
	"github.com/redis/go-redis/v9"
)

// RateLimitModule provides Redis-backed rate limiting middleware.
type RateLimitModule struct {
	client     *redis.Client
	middleware *Middleware
	config     domain.MiddlewareConfig
	redisAddr  string
}

// Compile-time interface checks.
var _ mono.Module = (*RateLimitModule)(nil)
var _ mono.HealthCheckableModule = (*RateLimitModule)(nil)

// NewModule creates a new rate limiting module with the default limits.
func NewModule(redisAddr string) *RateLimitModule {
	return &RateLimitModule{
		redisAddr: redisAddr,
		config:    domain.DefaultMiddlewareConfig(),
	}
}

// NewModuleWithConfig creates a new rate limiting module with custom limits.
func NewModuleWithConfig(redisAddr string, config domain.MiddlewareConfig) *RateLimitModule {
	return &RateLimitModule{
		redisAddr: redisAddr,
		config:    config,
	}
}

// Name returns the module name.
func (m *RateLimitModule) Name() string {
	return "ratelimit"
}

// Start connects to Redis and creates the middleware.
func (m *RateLimitModule) Start(ctx context.Context) error {
	m.client = redis.NewClient(&redis.Options{
		Addr: m.redisAddr,
	})

	if err := m.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	m.middleware = NewMiddleware(m.client, m.config)

	log.Printf("[ratelimit] Module started (redis: %s)", m.redisAddr)
	return nil
}

// Stop closes the Redis connection.
func (m *RateLimitModule) Stop(_ context.Context) error {
	if m.client != nil {
		if err := m.client.Close(); err != nil {
			log.Printf("[ratelimit] Error closing Redis connection: %v", err)
		}
	}
	log.Println("[ratelimit] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *RateLimitModule) Health(ctx context.Context) mono.HealthStatus {
	if m.client == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "redis client not initialized",
		}
	}

	if err := m.client.Ping(ctx).Err(); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("redis ping failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"redis": m.redisAddr,
		},
	}
}

// GetMiddleware returns the rate limiting middleware. It is nil until the
// module has started.
func (m *RateLimitModule) GetMiddleware() *Middleware {
	return m.middleware
}
