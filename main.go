package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/example/task-manager/modules/api"
	"github.com/example/task-manager/modules/auth"
	"github.com/example/task-manager/modules/notify"
	"github.com/example/task-manager/modules/ratelimit"
	"github.com/example/task-manager/modules/task"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("=== Task Manager ===")

	dbPath := getEnv("TASKMANAGER_DB_PATH", "taskmanager.db")
	httpPort := getEnvInt("HTTP_PORT", 3000)
	redisAddr := os.Getenv("REDIS_ADDR")

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	notifyModule := notify.NewModule()
	apiModule := api.NewModule(httpPort)
	apiModule.SetActivityFeed(notifyModule)

	// Rate limiting is active only when Redis is configured; without it
	// the API serves requests unthrottled.
	if redisAddr != "" {
		rl := ratelimit.NewModule(redisAddr)
		apiModule.SetRateLimitModule(rl)
		app.Register(rl)
	} else {
		log.Println("REDIS_ADDR not set, rate limiting disabled")
	}

	// Order: independent modules first, then modules with dependencies
	app.Register(auth.NewModule(dbPath))
	app.Register(notifyModule)
	app.Register(task.NewModule(dbPath))
	app.Register(apiModule)

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(httpPort)

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo(port int) {
	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%d):", port)
	log.Println("  POST   /api/v1/auth/register      - Register a new user")
	log.Println("  POST   /api/v1/auth/login         - Login and receive tokens")
	log.Println("  POST   /api/v1/auth/refresh       - Refresh the token pair")
	log.Println("  GET    /api/v1/users/me           - Current user's profile")
	log.Println("  PUT    /api/v1/users/me           - Update profile")
	log.Println("  POST   /api/v1/users/me/password  - Change password")
	log.Println("  DELETE /api/v1/users/me           - Delete account")
	log.Println("  POST   /api/v1/tasks              - Create a task")
	log.Println("  GET    /api/v1/tasks              - List tasks (filters, pagination)")
	log.Println("  GET    /api/v1/tasks/stats        - Aggregate task statistics")
	log.Println("  GET    /api/v1/tasks/:id          - Get a task by ID")
	log.Println("  PUT    /api/v1/tasks/:id          - Update a task")
	log.Println("  PATCH  /api/v1/tasks/:id/status   - Update only the status")
	log.Println("  DELETE /api/v1/tasks/:id          - Delete a task")
	log.Println("  GET    /api/v1/activity           - Recent activity feed")
	log.Println("  GET    /health                    - Health check")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Printf("Warning: invalid %s value %q, using default %d", key, value, fallback)
	}
	return fallback
}
