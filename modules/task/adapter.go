package task

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// TaskAdapter implements TaskPort over the service container.
type TaskAdapter struct {
	container mono.ServiceContainer
}

// NewTaskAdapter creates a new TaskAdapter.
func NewTaskAdapter(container mono.ServiceContainer) *TaskAdapter {
	return &TaskAdapter{
		container: container,
	}
}

// CreateTask creates a task owned by the requesting user.
func (a *TaskAdapter) CreateTask(ctx context.Context, req CreateTaskRequest) (*TaskResponse, error) {
	var resp TaskResponse
	if err := call(a, ctx, "create-task", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetTask retrieves one of the user's tasks by ID.
func (a *TaskAdapter) GetTask(ctx context.Context, userID, taskID string) (*TaskResponse, error) {
	req := GetTaskRequest{UserID: userID, TaskID: taskID}
	var resp TaskResponse
	if err := call(a, ctx, "get-task", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListTasks lists the user's tasks with optional filters and pagination.
func (a *TaskAdapter) ListTasks(ctx context.Context, req ListTasksRequest) (*ListTasksResponse, error) {
	var resp ListTasksResponse
	if err := call(a, ctx, "list-tasks", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateTask applies a partial update to one of the user's tasks.
func (a *TaskAdapter) UpdateTask(ctx context.Context, req UpdateTaskRequest) (*TaskResponse, error) {
	var resp TaskResponse
	if err := call(a, ctx, "update-task", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SetStatus updates only the status of one of the user's tasks.
func (a *TaskAdapter) SetStatus(ctx context.Context, userID, taskID, status string) (*TaskResponse, error) {
	req := SetStatusRequest{UserID: userID, TaskID: taskID, Status: status}
	var resp TaskResponse
	if err := call(a, ctx, "set-task-status", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteTask removes one of the user's tasks.
func (a *TaskAdapter) DeleteTask(ctx context.Context, userID, taskID string) error {
	req := DeleteTaskRequest{UserID: userID, TaskID: taskID}
	var resp DeleteTaskResponse
	return call(a, ctx, "delete-task", &req, &resp)
}

// Stats returns aggregate statistics over the user's tasks.
func (a *TaskAdapter) Stats(ctx context.Context, userID string) (*StatsResponse, error) {
	req := StatsRequest{UserID: userID}
	var resp StatsResponse
	if err := call(a, ctx, "task-stats", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// call invokes a request-reply service and maps serialized sentinel errors
// back onto typed ones so callers can match them with errors.Is.
func call[Req any, Resp any](a *TaskAdapter, ctx context.Context, service string, req *Req, resp *Resp) error {
	err := helper.CallRequestReplyService(
		ctx,
		a.container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		resp,
	)
	if err == nil {
		return nil
	}

	for _, sentinel := range []error{
		ErrNotFound,
		ErrEmptyTitle,
		ErrTitleTooLong,
		ErrDescriptionTooLong,
		ErrInvalidStatus,
		ErrInvalidPriority,
	} {
		if strings.Contains(err.Error(), sentinel.Error()) {
			return sentinel
		}
	}
	return fmt.Errorf("%s request failed: %w", service, err)
}
