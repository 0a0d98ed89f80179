package task

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/example/task-manager/domain/task"
)

func setupTestService(t *testing.T) *TaskService {
	t.Helper()

	// Events are disabled in tests; publishing is best-effort anyway.
	return NewTaskService(NewTaskRepository(setupTestDB(t)), nil)
}

func TestTaskService_CreateDefaults(t *testing.T) {
	service := setupTestService(t)
	ctx := context.Background()

	task, err := service.Create(ctx, CreateTaskRequest{
		UserID: "user-1",
		Title:  "  Buy groceries  ",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if task.ID == "" {
		t.Error("Create() returned task with empty ID")
	}
	if task.Title != "Buy groceries" {
		t.Errorf("task.Title = %q, want trimmed title", task.Title)
	}
	if task.Status != domain.StatusTodo {
		t.Errorf("task.Status = %v, want %v", task.Status, domain.StatusTodo)
	}
	if task.Priority != domain.PriorityMedium {
		t.Errorf("task.Priority = %v, want %v", task.Priority, domain.PriorityMedium)
	}
	if task.CompletedAt != nil {
		t.Errorf("task.CompletedAt = %v, want nil", task.CompletedAt)
	}
}

func TestTaskService_CreateCompletedSetsTimestamp(t *testing.T) {
	service := setupTestService(t)

	task, err := service.Create(context.Background(), CreateTaskRequest{
		UserID: "user-1",
		Title:  "Already done",
		Status: string(domain.StatusCompleted),
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if task.CompletedAt == nil {
		t.Error("task.CompletedAt = nil, want set for task created completada")
	}
}

func TestTaskService_CreateValidation(t *testing.T) {
	service := setupTestService(t)
	ctx := context.Background()

	longTitle := make([]byte, 201)
	for i := range longTitle {
		longTitle[i] = 'x'
	}

	tests := []struct {
		name    string
		req     CreateTaskRequest
		wantErr error
	}{
		{
			name:    "empty title",
			req:     CreateTaskRequest{UserID: "user-1", Title: "   "},
			wantErr: ErrEmptyTitle,
		},
		{
			name:    "title too long",
			req:     CreateTaskRequest{UserID: "user-1", Title: string(longTitle)},
			wantErr: ErrTitleTooLong,
		},
		{
			name:    "invalid status",
			req:     CreateTaskRequest{UserID: "user-1", Title: "ok", Status: "done"},
			wantErr: ErrInvalidStatus,
		},
		{
			name:    "invalid priority",
			req:     CreateTaskRequest{UserID: "user-1", Title: "ok", Priority: "urgent"},
			wantErr: ErrInvalidPriority,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Create(ctx, tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Create() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTaskService_UpdateStatusTransitions(t *testing.T) {
	service := setupTestService(t)
	ctx := context.Background()

	task, err := service.Create(ctx, CreateTaskRequest{UserID: "user-1", Title: "Transition me"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	completed := string(domain.StatusCompleted)
	updated, err := service.Update(ctx, UpdateTaskRequest{
		UserID: "user-1",
		TaskID: task.ID,
		Status: &completed,
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.CompletedAt == nil {
		t.Fatal("updated.CompletedAt = nil after completing, want set")
	}

	inProgress := string(domain.StatusInProgress)
	updated, err = service.Update(ctx, UpdateTaskRequest{
		UserID: "user-1",
		TaskID: task.ID,
		Status: &inProgress,
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.CompletedAt != nil {
		t.Errorf("updated.CompletedAt = %v after reopening, want nil", updated.CompletedAt)
	}
}

func TestTaskService_UpdatePartial(t *testing.T) {
	service := setupTestService(t)
	ctx := context.Background()

	task, err := service.Create(ctx, CreateTaskRequest{
		UserID:      "user-1",
		Title:       "Original",
		Description: "Original description",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	newTitle := "Renamed"
	updated, err := service.Update(ctx, UpdateTaskRequest{
		UserID: "user-1",
		TaskID: task.ID,
		Title:  &newTitle,
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if updated.Title != "Renamed" {
		t.Errorf("updated.Title = %v, want Renamed", updated.Title)
	}
	if updated.Description != "Original description" {
		t.Errorf("updated.Description = %v, untouched field was modified", updated.Description)
	}
	if updated.Status != domain.StatusTodo {
		t.Errorf("updated.Status = %v, untouched field was modified", updated.Status)
	}
}

func TestTaskService_SetStatus(t *testing.T) {
	service := setupTestService(t)
	ctx := context.Background()

	task, err := service.Create(ctx, CreateTaskRequest{UserID: "user-1", Title: "Status only"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	updated, err := service.SetStatus(ctx, "user-1", task.ID, string(domain.StatusCompleted))
	if err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}
	if updated.Status != domain.StatusCompleted {
		t.Errorf("updated.Status = %v, want %v", updated.Status, domain.StatusCompleted)
	}
	if updated.CompletedAt == nil {
		t.Error("updated.CompletedAt = nil, want set")
	}

	if _, err := service.SetStatus(ctx, "user-1", task.ID, "bogus"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("SetStatus(bogus) error = %v, want %v", err, ErrInvalidStatus)
	}
}

func TestTaskService_ListValidatesFilters(t *testing.T) {
	service := setupTestService(t)
	ctx := context.Background()

	if _, _, err := service.List(ctx, ListTasksRequest{UserID: "user-1", Status: "nope"}); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("List(bad status) error = %v, want %v", err, ErrInvalidStatus)
	}
	if _, _, err := service.List(ctx, ListTasksRequest{UserID: "user-1", Priority: "nope"}); !errors.Is(err, ErrInvalidPriority) {
		t.Errorf("List(bad priority) error = %v, want %v", err, ErrInvalidPriority)
	}
}

func TestTaskService_ListPaginationTotal(t *testing.T) {
	service := setupTestService(t)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		if _, err := service.Create(ctx, CreateTaskRequest{UserID: "user-1", Title: "Task"}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		time.Sleep(time.Millisecond)
	}

	tasks, total, err := service.List(ctx, ListTasksRequest{UserID: "user-1", Limit: 3})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(tasks) != 3 {
		t.Errorf("List(limit=3) returned %d tasks, want 3", len(tasks))
	}
	// Total reflects all matches, not just the page.
	if total != 7 {
		t.Errorf("total = %d, want 7", total)
	}
}

func TestTaskService_DeleteAndNotFound(t *testing.T) {
	service := setupTestService(t)
	ctx := context.Background()

	task, err := service.Create(ctx, CreateTaskRequest{UserID: "user-1", Title: "Delete me"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := service.Delete(ctx, "user-1", task.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := service.Get(ctx, "user-1", task.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(deleted) error = %v, want %v", err, ErrNotFound)
	}
	if err := service.Delete(ctx, "user-1", task.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete(deleted) error = %v, want %v", err, ErrNotFound)
	}
}

func TestTaskService_Stats(t *testing.T) {
	service := setupTestService(t)
	ctx := context.Background()

	for _, status := range []string{
		string(domain.StatusTodo),
		string(domain.StatusCompleted),
		string(domain.StatusCompleted),
	} {
		if _, err := service.Create(ctx, CreateTaskRequest{
			UserID: "user-1",
			Title:  "Task",
			Status: status,
		}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	stats, err := service.Stats(ctx, "user-1")
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}

	if stats.Total != 3 {
		t.Errorf("stats.Total = %d, want 3", stats.Total)
	}
	if stats.Completed != 2 {
		t.Errorf("stats.Completed = %d, want 2", stats.Completed)
	}
}
