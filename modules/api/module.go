// Package api exposes the HTTP surface of the application.
package api

import (
	"context"
	"fmt"
	"log"

	"github.com/example/task-manager/modules/auth"
	"github.com/example/task-manager/modules/ratelimit"
	"github.com/example/task-manager/modules/task"
	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// APIModule is the HTTP API module. It depends on the auth and task
// modules and optionally uses the rate limiter and activity feed when
// they are wired in.
type APIModule struct {
	app           *fiber.App
	port          int
	authContainer mono.ServiceContainer
	authAdapter   auth.AuthPort
	taskAdapter   task.TaskPort
	rateLimiter   *ratelimit.RateLimitModule
	activity      ActivityFeed
}

// Compile-time interface checks.
var _ mono.Module = (*APIModule)(nil)
var _ mono.DependentModule = (*APIModule)(nil)
var _ mono.HealthCheckableModule = (*APIModule)(nil)

// NewModule creates a new APIModule that listens on the given port.
func NewModule(port int) *APIModule {
	return &APIModule{
		port: port,
	}
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *APIModule) Dependencies() []string {
	return []string{"auth", "task"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "auth":
		m.authContainer = container
		m.authAdapter = auth.NewAuthAdapter(container)
	case "task":
		m.taskAdapter = task.NewTaskAdapter(container)
	}
}

// SetRateLimitModule wires in the optional Redis rate limiter. Without it
// the API serves requests unthrottled.
func (m *APIModule) SetRateLimitModule(rl *ratelimit.RateLimitModule) {
	m.rateLimiter = rl
}

// SetActivityFeed wires in the activity feed backing GET /activity.
func (m *APIModule) SetActivityFeed(feed ActivityFeed) {
	m.activity = feed
}

// Start initializes the Fiber HTTP server.
func (m *APIModule) Start(_ context.Context) error {
	if m.authContainer == nil {
		return fmt.Errorf("auth dependency not set")
	}
	if m.taskAdapter == nil {
		return fmt.Errorf("task dependency not set")
	}

	m.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler,
	})

	m.app.Use(recover.New())
	m.app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	m.app.Use(cors.New())

	m.setupRoutes()

	go func() {
		if err := m.app.Listen(fmt.Sprintf(":%d", m.port)); err != nil {
			log.Printf("[api] HTTP server error: %v", err)
		}
	}()

	log.Printf("[api] HTTP server started on :%d", m.port)
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *APIModule) Stop(_ context.Context) error {
	if m.app == nil {
		return nil
	}
	log.Println("[api] Shutting down HTTP server...")
	return m.app.Shutdown()
}

// Health returns the health status of the module.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"port": m.port,
		},
	}
}

// setupRoutes configures all API routes.
func (m *APIModule) setupRoutes() {
	handlers := NewHandlers(m.authContainer, m.authAdapter, m.taskAdapter, m.activity)

	m.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"module": "api",
		})
	})

	v1 := m.app.Group("/api/v1")

	// Public auth routes, IP-limited: registration and login burn a
	// bcrypt hash per request.
	authRoutes := v1.Group("/auth")
	if m.rateLimiter != nil {
		authRoutes.Use(m.rateLimiter.GetMiddleware().IPRateLimit())
	}
	authRoutes.Post("/register", handlers.Register)
	authRoutes.Post("/login", handlers.Login)
	authRoutes.Post("/refresh", handlers.Refresh)

	// Protected routes
	protected := v1.Group("")
	protected.Use(AuthMiddleware(m.authAdapter))
	if m.rateLimiter != nil {
		protected.Use(m.rateLimiter.GetMiddleware().UserRateLimit())
	}

	protected.Get("/users/me", handlers.Profile)
	protected.Put("/users/me", handlers.UpdateProfile)
	protected.Post("/users/me/password", handlers.ChangePassword)
	protected.Delete("/users/me", handlers.DeleteAccount)

	protected.Post("/tasks", handlers.CreateTask)
	protected.Get("/tasks", handlers.ListTasks)
	protected.Get("/tasks/stats", handlers.TaskStats)
	protected.Get("/tasks/:id", handlers.GetTask)
	protected.Put("/tasks/:id", handlers.UpdateTask)
	protected.Patch("/tasks/:id/status", handlers.SetTaskStatus)
	protected.Delete("/tasks/:id", handlers.DeleteTask)

	if m.activity != nil {
		protected.Get("/activity", handlers.Activity)
	}
}

// customErrorHandler handles Fiber errors.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   "server_error",
		Message: message,
	})
}
