package task

import "time"

// Status represents the state of a task.
type Status string

const (
	StatusTodo       Status = "por_hacer"
	StatusInProgress Status = "en_progreso"
	StatusCompleted  Status = "completada"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Priority represents the urgency of a task.
type Priority string

const (
	PriorityLow    Priority = "baja"
	PriorityMedium Priority = "media"
	PriorityHigh   Priority = "alta"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is the core domain entity representing a todo item.
// Every task belongs to exactly one user; all queries are scoped by UserID.
type Task struct {
	ID          string     `gorm:"primaryKey;type:text" json:"id"`
	Title       string     `gorm:"not null;type:text" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Status      Status     `gorm:"not null;type:text;index;index:idx_tasks_user_status,priority:2" json:"status"`
	Priority    Priority   `gorm:"not null;type:text;index" json:"priority"`
	DueDate     *time.Time `gorm:"index" json:"due_date,omitempty"`
	UserID      string     `gorm:"not null;type:text;index;index:idx_tasks_user_status,priority:1" json:"user_id"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// TableName returns the table name for the Task entity.
func (Task) TableName() string {
	return "tasks"
}

// Stats aggregates a user's tasks at query time.
type Stats struct {
	Total          int64            `json:"total"`
	Todo           int64            `json:"todo"`
	InProgress     int64            `json:"in_progress"`
	Completed      int64            `json:"completed"`
	ByPriority     map[string]int64 `json:"by_priority"`
	Overdue        int64            `json:"overdue"`
	CompletionRate float64          `json:"completion_rate"`
}
