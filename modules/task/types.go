package task

import (
	"context"
	"time"

	domain "github.com/example/task-manager/domain/task"
)

// CreateTaskRequest is the request for creating a task.
type CreateTaskRequest struct {
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// GetTaskRequest is the request for getting a single task.
type GetTaskRequest struct {
	UserID string `json:"user_id"`
	TaskID string `json:"task_id"`
}

// ListTasksRequest is the request for listing a user's tasks.
type ListTasksRequest struct {
	UserID    string     `json:"user_id"`
	Status    string     `json:"status,omitempty"`
	Priority  string     `json:"priority,omitempty"`
	DueAfter  *time.Time `json:"due_after,omitempty"`
	DueBefore *time.Time `json:"due_before,omitempty"`
	Offset    int        `json:"offset"`
	Limit     int        `json:"limit"`
}

// ListTasksResponse is the response for listing tasks.
type ListTasksResponse struct {
	Tasks []TaskResponse `json:"tasks"`
	Total int64          `json:"total"`
}

// UpdateTaskRequest is the request for a partial task update.
// Nil fields are left unchanged.
type UpdateTaskRequest struct {
	UserID      string     `json:"user_id"`
	TaskID      string     `json:"task_id"`
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *string    `json:"status,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// SetStatusRequest is the request for updating only a task's status.
type SetStatusRequest struct {
	UserID string `json:"user_id"`
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

// DeleteTaskRequest is the request for deleting a task.
type DeleteTaskRequest struct {
	UserID string `json:"user_id"`
	TaskID string `json:"task_id"`
}

// DeleteTaskResponse is the response for deleting a task.
type DeleteTaskResponse struct {
	Deleted bool `json:"deleted"`
}

// StatsRequest is the request for a user's aggregate task statistics.
type StatsRequest struct {
	UserID string `json:"user_id"`
}

// StatsResponse is the response carrying aggregate task statistics.
type StatsResponse struct {
	Total          int64            `json:"total"`
	Todo           int64            `json:"todo"`
	InProgress     int64            `json:"in_progress"`
	Completed      int64            `json:"completed"`
	ByPriority     map[string]int64 `json:"by_priority"`
	Overdue        int64            `json:"overdue"`
	CompletionRate float64          `json:"completion_rate"`
}

// TaskResponse is the response for a single task.
type TaskResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	UserID      string     `json:"user_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// TaskPort defines the interface driving adapters (the HTTP API) use to
// interact with the task domain.
type TaskPort interface {
	CreateTask(ctx context.Context, req CreateTaskRequest) (*TaskResponse, error)
	GetTask(ctx context.Context, userID, taskID string) (*TaskResponse, error)
	ListTasks(ctx context.Context, req ListTasksRequest) (*ListTasksResponse, error)
	UpdateTask(ctx context.Context, req UpdateTaskRequest) (*TaskResponse, error)
	SetStatus(ctx context.Context, userID, taskID, status string) (*TaskResponse, error)
	DeleteTask(ctx context.Context, userID, taskID string) error
	Stats(ctx context.Context, userID string) (*StatsResponse, error)
}

func toTaskResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		Priority:    string(task.Priority),
		DueDate:     task.DueDate,
		UserID:      task.UserID,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
		CompletedAt: task.CompletedAt,
	}
}
