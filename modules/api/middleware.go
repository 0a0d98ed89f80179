package api

import (
	"errors"
	"strings"

	"github.com/example/task-manager/modules/auth"
	"github.com/gofiber/fiber/v2"
)

const (
	// UserContextKey is the key used to store user claims in the Fiber context.
	UserContextKey = "user"
	// UserIDContextKey is the key used to store the user ID in the Fiber
	// context; the rate limiter reads it.
	UserIDContextKey = "user_id"
)

// AuthMiddleware creates a middleware that validates bearer access tokens
// and stores the resulting claims in the request context.
func AuthMiddleware(authAdapter auth.AuthPort) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: "Authorization header is required",
			})
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: "Invalid authorization header format. Use: Bearer <token>",
			})
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: "Token is required",
			})
		}

		claims, err := authAdapter.ValidateToken(c.UserContext(), token)
		if err != nil {
			message := "Invalid token"
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				message = "Token has expired"
			case errors.Is(err, auth.ErrWrongTokenType):
				message = "Access token required"
			}
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: message,
			})
		}

		c.Locals(UserContextKey, claims)
		c.Locals(UserIDContextKey, claims.UserID)

		return c.Next()
	}
}
