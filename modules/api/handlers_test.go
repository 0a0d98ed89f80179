package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	userdomain "github.com/example/task-manager/domain/user"
	"github.com/example/task-manager/modules/notify"
	"github.com/example/task-manager/modules/task"
	"github.com/gofiber/fiber/v2"
)

// mockTaskPort implements task.TaskPort for testing.
type mockTaskPort struct {
	createTaskFunc func(ctx context.Context, req task.CreateTaskRequest) (*task.TaskResponse, error)
	getTaskFunc    func(ctx context.Context, userID, taskID string) (*task.TaskResponse, error)
	listTasksFunc  func(ctx context.Context, req task.ListTasksRequest) (*task.ListTasksResponse, error)
	updateTaskFunc func(ctx context.Context, req task.UpdateTaskRequest) (*task.TaskResponse, error)
	setStatusFunc  func(ctx context.Context, userID, taskID, status string) (*task.TaskResponse, error)
	deleteTaskFunc func(ctx context.Context, userID, taskID string) error
	statsFunc      func(ctx context.Context, userID string) (*task.StatsResponse, error)
}

func (m *mockTaskPort) CreateTask(ctx context.Context, req task.CreateTaskRequest) (*task.TaskResponse, error) {
	return m.createTaskFunc(ctx, req)
}

func (m *mockTaskPort) GetTask(ctx context.Context, userID, taskID string) (*task.TaskResponse, error) {
	return m.getTaskFunc(ctx, userID, taskID)
}

func (m *mockTaskPort) ListTasks(ctx context.Context, req task.ListTasksRequest) (*task.ListTasksResponse, error) {
	return m.listTasksFunc(ctx, req)
}

func (m *mockTaskPort) UpdateTask(ctx context.Context, req task.UpdateTaskRequest) (*task.TaskResponse, error) {
	return m.updateTaskFunc(ctx, req)
}

func (m *mockTaskPort) SetStatus(ctx context.Context, userID, taskID, status string) (*task.TaskResponse, error) {
	return m.setStatusFunc(ctx, userID, taskID, status)
}

func (m *mockTaskPort) DeleteTask(ctx context.Context, userID, taskID string) error {
	return m.deleteTaskFunc(ctx, userID, taskID)
}

func (m *mockTaskPort) Stats(ctx context.Context, userID string) (*task.StatsResponse, error) {
	return m.statsFunc(ctx, userID)
}

// mockActivityFeed implements ActivityFeed for testing.
type mockActivityFeed struct {
	entries []notify.ActivityEntry
}

func (m *mockActivityFeed) ActivityFor(userID string) []notify.ActivityEntry {
	result := make([]notify.ActivityEntry, 0)
	for _, e := range m.entries {
		if e.UserID == userID {
			result = append(result, e)
		}
	}
	return result
}

// newTestApp builds a Fiber app with task routes behind a stub auth layer
// that injects fixed claims.
func newTestApp(tasks task.TaskPort, feed ActivityFeed) *fiber.App {
	handlers := NewHandlers(nil, nil, tasks, feed)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(UserContextKey, &userdomain.Claims{UserID: "user-1", Email: "a@example.com"})
		c.Locals(UserIDContextKey, "user-1")
		return c.Next()
	})

	app.Post("/api/v1/tasks", handlers.CreateTask)
	app.Get("/api/v1/tasks", handlers.ListTasks)
	app.Get("/api/v1/tasks/stats", handlers.TaskStats)
	app.Get("/api/v1/tasks/:id", handlers.GetTask)
	app.Put("/api/v1/tasks/:id", handlers.UpdateTask)
	app.Patch("/api/v1/tasks/:id/status", handlers.SetTaskStatus)
	app.Delete("/api/v1/tasks/:id", handlers.DeleteTask)
	app.Get("/api/v1/activity", handlers.Activity)

	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, payload any) (*http.Response, string) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}

	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}

	return resp, string(raw)
}

func TestCreateTaskHandler(t *testing.T) {
	var captured task.CreateTaskRequest
	mock := &mockTaskPort{
		createTaskFunc: func(_ context.Context, req task.CreateTaskRequest) (*task.TaskResponse, error) {
			captured = req
			return &task.TaskResponse{
				ID:       "task-1",
				Title:    req.Title,
				Status:   "por_hacer",
				Priority: "media",
				UserID:   req.UserID,
			}, nil
		},
	}
	app := newTestApp(mock, nil)

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/tasks", fiber.Map{
		"title": "New task",
	})

	if resp.StatusCode != http.StatusCreated {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}
	if !strings.Contains(body, "task-1") {
		t.Errorf("body = %s, want it to contain the created task", body)
	}
	// The owner is the authenticated user, never the request body.
	if captured.UserID != "user-1" {
		t.Errorf("captured.UserID = %v, want user-1", captured.UserID)
	}
}

func TestCreateTaskHandler_ValidationError(t *testing.T) {
	mock := &mockTaskPort{
		createTaskFunc: func(_ context.Context, _ task.CreateTaskRequest) (*task.TaskResponse, error) {
			return nil, task.ErrEmptyTitle
		},
	}
	app := newTestApp(mock, nil)

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/tasks", fiber.Map{"title": ""})

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnprocessableEntity)
	}
	if !strings.Contains(body, "validation_error") {
		t.Errorf("body = %s, want validation_error", body)
	}
}

func TestGetTaskHandler_NotFound(t *testing.T) {
	mock := &mockTaskPort{
		getTaskFunc: func(_ context.Context, _, _ string) (*task.TaskResponse, error) {
			return nil, task.ErrNotFound
		},
	}
	app := newTestApp(mock, nil)

	resp, body := doJSON(t, app, http.MethodGet, "/api/v1/tasks/missing-id", nil)

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
	if !strings.Contains(body, "not_found") {
		t.Errorf("body = %s, want not_found", body)
	}
}

func TestListTasksHandler_QueryParsing(t *testing.T) {
	var captured task.ListTasksRequest
	mock := &mockTaskPort{
		listTasksFunc: func(_ context.Context, req task.ListTasksRequest) (*task.ListTasksResponse, error) {
			captured = req
			return &task.ListTasksResponse{Tasks: []task.TaskResponse{}, Total: 0}, nil
		},
	}
	app := newTestApp(mock, nil)

	resp, _ := doJSON(t, app, http.MethodGet,
		"/api/v1/tasks?status=por_hacer&priority=alta&offset=10&limit=5&due_before=2026-12-31T00:00:00Z", nil)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if captured.Status != "por_hacer" || captured.Priority != "alta" {
		t.Errorf("captured filters = %v/%v, want por_hacer/alta", captured.Status, captured.Priority)
	}
	if captured.Offset != 10 || captured.Limit != 5 {
		t.Errorf("captured pagination = %d/%d, want 10/5", captured.Offset, captured.Limit)
	}
	if captured.DueBefore == nil {
		t.Error("captured.DueBefore = nil, want parsed timestamp")
	}
}

func TestListTasksHandler_BadTimestamp(t *testing.T) {
	app := newTestApp(&mockTaskPort{}, nil)

	resp, body := doJSON(t, app, http.MethodGet, "/api/v1/tasks?due_after=not-a-date", nil)

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
	if !strings.Contains(body, "due_after") {
		t.Errorf("body = %s, want mention of due_after", body)
	}
}

func TestSetTaskStatusHandler(t *testing.T) {
	mock := &mockTaskPort{
		setStatusFunc: func(_ context.Context, userID, taskID, status string) (*task.TaskResponse, error) {
			return &task.TaskResponse{ID: taskID, Status: status, UserID: userID}, nil
		},
	}
	app := newTestApp(mock, nil)

	resp, body := doJSON(t, app, http.MethodPatch, "/api/v1/tasks/task-9/status", fiber.Map{
		"status": "completada",
	})

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if !strings.Contains(body, "completada") {
		t.Errorf("body = %s, want completada", body)
	}
}

func TestDeleteTaskHandler(t *testing.T) {
	mock := &mockTaskPort{
		deleteTaskFunc: func(_ context.Context, _, _ string) error {
			return nil
		},
	}
	app := newTestApp(mock, nil)

	resp, _ := doJSON(t, app, http.MethodDelete, "/api/v1/tasks/task-1", nil)

	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}
}

func TestTaskStatsHandler(t *testing.T) {
	mock := &mockTaskPort{
		statsFunc: func(_ context.Context, _ string) (*task.StatsResponse, error) {
			return &task.StatsResponse{
				Total:          4,
				Completed:      1,
				CompletionRate: 25,
				ByPriority:     map[string]int64{"alta": 2, "media": 1, "baja": 1},
			}, nil
		},
	}
	app := newTestApp(mock, nil)

	resp, body := doJSON(t, app, http.MethodGet, "/api/v1/tasks/stats", nil)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if !strings.Contains(body, `"completion_rate":25`) {
		t.Errorf("body = %s, want completion_rate 25", body)
	}
}

func TestActivityHandler_FiltersByUser(t *testing.T) {
	feed := &mockActivityFeed{
		entries: []notify.ActivityEntry{
			{TaskID: "t-1", UserID: "user-1", Type: "task_created", Timestamp: time.Now()},
			{TaskID: "t-2", UserID: "user-2", Type: "task_created", Timestamp: time.Now()},
		},
	}
	app := newTestApp(&mockTaskPort{}, feed)

	resp, body := doJSON(t, app, http.MethodGet, "/api/v1/activity", nil)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if !strings.Contains(body, "t-1") {
		t.Errorf("body = %s, want the user's own entry", body)
	}
	if strings.Contains(body, "t-2") {
		t.Errorf("body = %s, must not leak another user's entry", body)
	}
}
