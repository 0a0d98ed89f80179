package task

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	domain "github.com/example/task-manager/domain/task"
	"github.com/example/task-manager/events"
	"github.com/go-monolith/mono"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// TaskService enforces ownership and validation on top of the repository.
// It carries no state of its own beyond the stats singleflight group.
type TaskService struct {
	repo     *TaskRepository
	eventBus mono.EventBus
	sfGroup  singleflight.Group // collapses concurrent stats queries per user
}

// NewTaskService creates a new TaskService.
func NewTaskService(repo *TaskRepository, eventBus mono.EventBus) *TaskService {
	return &TaskService{
		repo:     repo,
		eventBus: eventBus,
	}
}

// Create validates the fields and inserts a new task owned by the user.
// Status defaults to por_hacer and priority to media when omitted.
func (s *TaskService) Create(ctx context.Context, req CreateTaskRequest) (*domain.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if len(title) > maxTitleLen {
		return nil, ErrTitleTooLong
	}
	if len(req.Description) > maxDescriptionLen {
		return nil, ErrDescriptionTooLong
	}

	status := domain.StatusTodo
	if req.Status != "" {
		status = domain.Status(req.Status)
		if !status.Valid() {
			return nil, ErrInvalidStatus
		}
	}

	priority := domain.PriorityMedium
	if req.Priority != "" {
		priority = domain.Priority(req.Priority)
		if !priority.Valid() {
			return nil, ErrInvalidPriority
		}
	}

	now := time.Now()
	task := &domain.Task{
		ID:          uuid.New().String(),
		Title:       title,
		Description: req.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     req.DueDate,
		UserID:      req.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if status == domain.StatusCompleted {
		task.CompletedAt = &now
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, err
	}

	s.publishCreated(task)
	return task, nil
}

// Get returns the user's task or ErrNotFound.
func (s *TaskService) Get(ctx context.Context, userID, taskID string) (*domain.Task, error) {
	return s.repo.Find(ctx, userID, taskID)
}

// List returns the user's tasks matching the filter, newest first, along
// with the total match count for pagination.
func (s *TaskService) List(ctx context.Context, req ListTasksRequest) ([]*domain.Task, int64, error) {
	filter := Filter{
		DueAfter:  req.DueAfter,
		DueBefore: req.DueBefore,
	}

	if req.Status != "" {
		status := domain.Status(req.Status)
		if !status.Valid() {
			return nil, 0, ErrInvalidStatus
		}
		filter.Status = status
	}
	if req.Priority != "" {
		priority := domain.Priority(req.Priority)
		if !priority.Valid() {
			return nil, 0, ErrInvalidPriority
		}
		filter.Priority = priority
	}

	offset := req.Offset
	if offset < 0 {
		offset = 0
	}
	limit := req.Limit
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	tasks, err := s.repo.List(ctx, req.UserID, filter, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.repo.Count(ctx, req.UserID, filter)
	if err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update applies a partial update to the user's task. A status transition
// to completada sets the completion timestamp; a transition away clears it.
func (s *TaskService) Update(ctx context.Context, req UpdateTaskRequest) (*domain.Task, error) {
	changes := map[string]any{}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, ErrEmptyTitle
		}
		if len(title) > maxTitleLen {
			return nil, ErrTitleTooLong
		}
		changes["title"] = title
	}
	if req.Description != nil {
		if len(*req.Description) > maxDescriptionLen {
			return nil, ErrDescriptionTooLong
		}
		changes["description"] = *req.Description
	}
	if req.Priority != nil {
		priority := domain.Priority(*req.Priority)
		if !priority.Valid() {
			return nil, ErrInvalidPriority
		}
		changes["priority"] = priority
	}
	if req.DueDate != nil {
		changes["due_date"] = *req.DueDate
	}

	var completed bool
	if req.Status != nil {
		status := domain.Status(*req.Status)
		if !status.Valid() {
			return nil, ErrInvalidStatus
		}
		changes["status"] = status
		if status == domain.StatusCompleted {
			completed = true
			changes["completed_at"] = time.Now()
		} else {
			changes["completed_at"] = nil
		}
	}

	if len(changes) > 0 {
		changes["updated_at"] = time.Now()
	}

	task, err := s.repo.Update(ctx, req.UserID, req.TaskID, changes)
	if err != nil {
		return nil, err
	}

	if completed {
		s.publishCompleted(task)
	}
	return task, nil
}

// SetStatus updates only the task's status, deriving the completion
// timestamp the same way Update does.
func (s *TaskService) SetStatus(ctx context.Context, userID, taskID, status string) (*domain.Task, error) {
	return s.Update(ctx, UpdateTaskRequest{
		UserID: userID,
		TaskID: taskID,
		Status: &status,
	})
}

// Delete removes the user's task.
func (s *TaskService) Delete(ctx context.Context, userID, taskID string) error {
	if err := s.repo.Delete(ctx, userID, taskID); err != nil {
		return err
	}

	s.publishDeleted(userID, taskID)
	return nil
}

// Stats aggregates the user's tasks. Concurrent identical queries are
// collapsed so a burst of dashboard refreshes costs one aggregation.
func (s *TaskService) Stats(ctx context.Context, userID string) (*domain.Stats, error) {
	val, err, _ := s.sfGroup.Do("stats:"+userID, func() (any, error) {
		return s.repo.Stats(ctx, userID)
	})
	if err != nil {
		return nil, err
	}

	stats, ok := val.(*domain.Stats)
	if !ok {
		return nil, fmt.Errorf("unexpected stats result type %T", val)
	}
	return stats, nil
}

// Event publishing is best-effort; a failed publish never fails the
// operation that triggered it.

func (s *TaskService) publishCreated(task *domain.Task) {
	if s.eventBus == nil {
		return
	}
	event := events.TaskCreatedEvent{
		TaskID:    task.ID,
		Title:     task.Title,
		Priority:  string(task.Priority),
		UserID:    task.UserID,
		CreatedAt: task.CreatedAt,
	}
	if err := events.TaskCreatedV1.Publish(s.eventBus, event, nil); err != nil {
		log.Printf("[task] Warning: failed to publish TaskCreated event for task %s: %v", task.ID, err)
	}
}

func (s *TaskService) publishCompleted(task *domain.Task) {
	if s.eventBus == nil || task.CompletedAt == nil {
		return
	}
	event := events.TaskCompletedEvent{
		TaskID:      task.ID,
		Title:       task.Title,
		UserID:      task.UserID,
		CompletedAt: *task.CompletedAt,
	}
	if err := events.TaskCompletedV1.Publish(s.eventBus, event, nil); err != nil {
		log.Printf("[task] Warning: failed to publish TaskCompleted event for task %s: %v", task.ID, err)
	}
}

func (s *TaskService) publishDeleted(userID, taskID string) {
	if s.eventBus == nil {
		return
	}
	event := events.TaskDeletedEvent{
		TaskID:    taskID,
		UserID:    userID,
		DeletedAt: time.Now(),
	}
	if err := events.TaskDeletedV1.Publish(s.eventBus, event, nil); err != nil {
		log.Printf("[task] Warning: failed to publish TaskDeleted event for task %s: %v", taskID, err)
	}
}
