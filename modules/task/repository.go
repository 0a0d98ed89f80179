package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/example/task-manager/domain/task"
	"gorm.io/gorm"
)

// Filter narrows a task listing. Zero values mean "no constraint".
type Filter struct {
	Status    domain.Status
	Priority  domain.Priority
	DueAfter  *time.Time
	DueBefore *time.Time
}

// TaskRepository handles task persistence using GORM. Every operation is
// scoped by the owning user's ID, so one user's tasks are invisible to
// another.
type TaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{
		db: db,
	}
}

// Create inserts a new task.
func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// Find returns the task with the given ID if it belongs to userID.
func (r *TaskRepository) Find(ctx context.Context, userID, taskID string) (*domain.Task, error) {
	var task domain.Task
	err := r.db.WithContext(ctx).First(&task, "id = ? AND user_id = ?", taskID, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return &task, nil
}

// List returns the user's tasks, newest-created first, optionally filtered
// by status, priority, and due-date range.
func (r *TaskRepository) List(ctx context.Context, userID string, filter Filter, offset, limit int) ([]*domain.Task, error) {
	query := r.scoped(ctx, userID, filter)

	var tasks []*domain.Task
	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// Count returns the number of the user's tasks matching the filter.
func (r *TaskRepository) Count(ctx context.Context, userID string, filter Filter) (int64, error) {
	var count int64
	if err := r.scoped(ctx, userID, filter).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return count, nil
}

// Update applies the given column changes to the user's task and returns
// the updated row.
func (r *TaskRepository) Update(ctx context.Context, userID, taskID string, changes map[string]any) (*domain.Task, error) {
	if len(changes) == 0 {
		return r.Find(ctx, userID, taskID)
	}

	result := r.db.WithContext(ctx).Model(&domain.Task{}).
		Where("id = ? AND user_id = ?", taskID, userID).
		Updates(changes)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	return r.Find(ctx, userID, taskID)
}

// Delete removes the user's task. Hard delete, per the domain lifecycle.
func (r *TaskRepository) Delete(ctx context.Context, userID, taskID string) error {
	result := r.db.WithContext(ctx).Delete(&domain.Task{}, "id = ? AND user_id = ?", taskID, userID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats aggregates the user's tasks at query time. No materialized view is
// kept; the counts are always current.
func (r *TaskRepository) Stats(ctx context.Context, userID string) (*domain.Stats, error) {
	type bucket struct {
		Key   string
		Count int64
	}

	stats := &domain.Stats{
		ByPriority: map[string]int64{
			string(domain.PriorityLow):    0,
			string(domain.PriorityMedium): 0,
			string(domain.PriorityHigh):   0,
		},
	}

	var byStatus []bucket
	err := r.db.WithContext(ctx).Model(&domain.Task{}).
		Select("status AS key, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&byStatus).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate by status: %w", err)
	}

	for _, b := range byStatus {
		stats.Total += b.Count
		switch domain.Status(b.Key) {
		case domain.StatusTodo:
			stats.Todo = b.Count
		case domain.StatusInProgress:
			stats.InProgress = b.Count
		case domain.StatusCompleted:
			stats.Completed = b.Count
		}
	}

	var byPriority []bucket
	err = r.db.WithContext(ctx).Model(&domain.Task{}).
		Select("priority AS key, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("priority").
		Scan(&byPriority).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate by priority: %w", err)
	}

	for _, b := range byPriority {
		stats.ByPriority[b.Key] = b.Count
	}

	err = r.db.WithContext(ctx).Model(&domain.Task{}).
		Where("user_id = ? AND due_date IS NOT NULL AND due_date < ? AND status <> ?",
			userID, time.Now(), domain.StatusCompleted).
		Count(&stats.Overdue).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count overdue tasks: %w", err)
	}

	if stats.Total > 0 {
		stats.CompletionRate = float64(stats.Completed) / float64(stats.Total) * 100
	}

	return stats, nil
}

func (r *TaskRepository) scoped(ctx context.Context, userID string, filter Filter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&domain.Task{}).Where("user_id = ?", userID)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}
	if filter.DueAfter != nil {
		query = query.Where("due_date >= ?", *filter.DueAfter)
	}
	if filter.DueBefore != nil {
		query = query.Where("due_date <= ?", *filter.DueBefore)
	}

	return query
}
