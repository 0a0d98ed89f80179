package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	domain "github.com/example/task-manager/domain/task"
	"github.com/example/task-manager/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TaskModule provides per-user task management services.
type TaskModule struct {
	db       *gorm.DB
	service  *TaskService
	eventBus mono.EventBus
	dbPath   string
}

// Compile-time interface checks.
var _ mono.Module = (*TaskModule)(nil)
var _ mono.ServiceProviderModule = (*TaskModule)(nil)
var _ mono.EventEmitterModule = (*TaskModule)(nil)
var _ mono.HealthCheckableModule = (*TaskModule)(nil)

// NewModule creates a new TaskModule.
func NewModule(dbPath string) *TaskModule {
	return &TaskModule{
		dbPath: dbPath,
	}
}

// Name returns the module name.
func (m *TaskModule) Name() string {
	return "task"
}

// SetEventBus receives the application event bus before Start.
func (m *TaskModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module publishes.
func (m *TaskModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TaskCreatedV1.ToBase(),
		events.TaskCompletedV1.ToBase(),
		events.TaskDeletedV1.ToBase(),
	}
}

// Start opens the database, migrates the task schema, and wires the service.
func (m *TaskModule) Start(_ context.Context) error {
	db, err := gorm.Open(sqlite.Open(m.dbPath), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	m.db = db

	if err := db.AutoMigrate(&domain.Task{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	m.service = NewTaskService(NewTaskRepository(db), m.eventBus)

	log.Printf("[task] Module started (database: %s)", m.dbPath)
	return nil
}

// Stop shuts down the module.
func (m *TaskModule) Stop(_ context.Context) error {
	if m.db != nil {
		sqlDB, err := m.db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
	log.Println("[task] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *TaskModule) Health(_ context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "database not initialized",
		}
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("failed to get database connection: %v", err),
		}
	}

	if err := sqlDB.Ping(); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"database": m.dbPath,
		},
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *TaskModule) RegisterServices(container mono.ServiceContainer) error {
	services := map[string]func() error{
		"create-task": func() error {
			return helper.RegisterTypedRequestReplyService(
				container, "create-task", json.Unmarshal, json.Marshal, m.handleCreate)
		},
		"get-task": func() error {
			return helper.RegisterTypedRequestReplyService(
				container, "get-task", json.Unmarshal, json.Marshal, m.handleGet)
		},
		"list-tasks": func() error {
			return helper.RegisterTypedRequestReplyService(
				container, "list-tasks", json.Unmarshal, json.Marshal, m.handleList)
		},
		"update-task": func() error {
			return helper.RegisterTypedRequestReplyService(
				container, "update-task", json.Unmarshal, json.Marshal, m.handleUpdate)
		},
		"set-task-status": func() error {
			return helper.RegisterTypedRequestReplyService(
				container, "set-task-status", json.Unmarshal, json.Marshal, m.handleSetStatus)
		},
		"delete-task": func() error {
			return helper.RegisterTypedRequestReplyService(
				container, "delete-task", json.Unmarshal, json.Marshal, m.handleDelete)
		},
		"task-stats": func() error {
			return helper.RegisterTypedRequestReplyService(
				container, "task-stats", json.Unmarshal, json.Marshal, m.handleStats)
		},
	}

	for name, register := range services {
		if err := register(); err != nil {
			return fmt.Errorf("failed to register %s service: %w", name, err)
		}
	}

	log.Printf("[task] Registered services: create-task, get-task, list-tasks, update-task, set-task-status, delete-task, task-stats")
	return nil
}

func (m *TaskModule) handleCreate(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	task, err := m.service.Create(ctx, req)
	if err != nil {
		return TaskResponse{}, err
	}
	return toTaskResponse(task), nil
}

func (m *TaskModule) handleGet(ctx context.Context, req GetTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	task, err := m.service.Get(ctx, req.UserID, req.TaskID)
	if err != nil {
		return TaskResponse{}, err
	}
	return toTaskResponse(task), nil
}

func (m *TaskModule) handleList(ctx context.Context, req ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	tasks, total, err := m.service.List(ctx, req)
	if err != nil {
		return ListTasksResponse{}, err
	}

	resp := ListTasksResponse{
		Tasks: make([]TaskResponse, 0, len(tasks)),
		Total: total,
	}
	for _, t := range tasks {
		resp.Tasks = append(resp.Tasks, toTaskResponse(t))
	}
	return resp, nil
}

func (m *TaskModule) handleUpdate(ctx context.Context, req UpdateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	task, err := m.service.Update(ctx, req)
	if err != nil {
		return TaskResponse{}, err
	}
	return toTaskResponse(task), nil
}

func (m *TaskModule) handleSetStatus(ctx context.Context, req SetStatusRequest, _ *mono.Msg) (TaskResponse, error) {
	task, err := m.service.SetStatus(ctx, req.UserID, req.TaskID, req.Status)
	if err != nil {
		return TaskResponse{}, err
	}
	return toTaskResponse(task), nil
}

func (m *TaskModule) handleDelete(ctx context.Context, req DeleteTaskRequest, _ *mono.Msg) (DeleteTaskResponse, error) {
	if err := m.service.Delete(ctx, req.UserID, req.TaskID); err != nil {
		return DeleteTaskResponse{}, err
	}
	return DeleteTaskResponse{Deleted: true}, nil
}

func (m *TaskModule) handleStats(ctx context.Context, req StatsRequest, _ *mono.Msg) (StatsResponse, error) {
	stats, err := m.service.Stats(ctx, req.UserID)
	if err != nil {
		return StatsResponse{}, err
	}

	return StatsResponse{
		Total:          stats.Total,
		Todo:           stats.Todo,
		InProgress:     stats.InProgress,
		Completed:      stats.Completed,
		ByPriority:     stats.ByPriority,
		Overdue:        stats.Overdue,
		CompletionRate: stats.CompletionRate,
	}, nil
}
