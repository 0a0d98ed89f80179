package ratelimit

import (
	"fmt"
	"strconv"

	domain "github.com/example/task-manager/domain/ratelimit"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Middleware provides rate limiting middleware for Fiber.
type Middleware struct {
	ipLimiter   *SlidingWindowLimiter
	userLimiter *SlidingWindowLimiter
	config      domain.MiddlewareConfig
}

// NewMiddleware creates a new rate limiting middleware.
func NewMiddleware(client *redis.Client, config domain.MiddlewareConfig) *Middleware {
	return &Middleware{
		ipLimiter:   NewSlidingWindowLimiter(client, config.IPConfig, config.KeyPrefix+"ip:"),
		userLimiter: NewSlidingWindowLimiter(client, config.UserConfig, config.KeyPrefix+"user:"),
		config:      config,
	}
}

// IPRateLimit returns middleware that limits requests by client IP. It is
// applied to the unauthenticated endpoints, where bcrypt makes every
// request expensive.
func (m *Middleware) IPRateLimit() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := c.IP()
		if ip == "" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":   "Forbidden",
				"message": "Unable to determine client IP address",
			})
		}

		result, err := m.ipLimiter.Allow(c.Context(), ip)
		if err != nil {
			// On limiter error, allow the request but flag it
			c.Set("X-RateLimit-Error", err.Error())
			return c.Next()
		}

		setRateLimitHeaders(c, result, m.config.IPConfig.RequestsPerWindow)

		if !result.Allowed {
			return sendRateLimitExceeded(c, result)
		}

		return c.Next()
	}
}

// UserRateLimit returns middleware that limits requests by user ID. It
// expects the user ID in c.Locals("user_id"), set by the auth middleware,
// and falls back to IP-based limiting when it is missing.
func (m *Middleware) UserRateLimit() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("user_id").(string)
		if !ok || userID == "" {
			return m.IPRateLimit()(c)
		}

		result, err := m.userLimiter.Allow(c.Context(), userID)
		if err != nil {
			c.Set("X-RateLimit-Error", err.Error())
			return c.Next()
		}

		setRateLimitHeaders(c, result, m.config.UserConfig.RequestsPerWindow)

		if !result.Allowed {
			return sendRateLimitExceeded(c, result)
		}

		return c.Next()
	}
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func setRateLimitHeaders(c *fiber.Ctx, result *domain.Result, limit int) {
	c.Set("X-RateLimit-Limit", strconv.Itoa(limit))
	c.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	c.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

// sendRateLimitExceeded sends a 429 Too Many Requests response.
func sendRateLimitExceeded(c *fiber.Ctx, result *domain.Result) error {
	retryAfter := int(result.RetryAfter.Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}

	c.Set("Retry-After", strconv.Itoa(retryAfter))

	return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
		"error":       "Too Many Requests",
		"message":     fmt.Sprintf("Rate limit exceeded. Please retry after %d seconds.", retryAfter),
		"retry_after": retryAfter,
	})
}
