// Package notify records an activity feed from task domain events.
package notify

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/example/task-manager/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// ActivityEntry is a single recorded activity for a user.
type ActivityEntry struct {
	TaskID    string    `json:"task_id"`
	UserID    string    `json:"user_id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// maxEntries bounds the in-memory feed; the oldest entries are dropped.
const maxEntries = 1000

// NotifyModule consumes task events and keeps a bounded in-memory
// activity feed per user. The feed is served through the HTTP API.
type NotifyModule struct {
	entries []ActivityEntry
	mu      sync.RWMutex
}

var _ mono.Module = (*NotifyModule)(nil)
var _ mono.EventConsumerModule = (*NotifyModule)(nil)

// NewModule creates a new NotifyModule.
func NewModule() *NotifyModule {
	return &NotifyModule{
		entries: make([]ActivityEntry, 0),
	}
}

// Name returns the module name.
func (m *NotifyModule) Name() string {
	return "notify"
}

// RegisterEventConsumers subscribes to the task domain events.
func (m *NotifyModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCreatedV1, m.handleTaskCreated, m); err != nil {
		return fmt.Errorf("failed to register TaskCreated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCompletedV1, m.handleTaskCompleted, m); err != nil {
		return fmt.Errorf("failed to register TaskCompleted consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskDeletedV1, m.handleTaskDeleted, m); err != nil {
		return fmt.Errorf("failed to register TaskDeleted consumer: %w", err)
	}

	log.Printf("[notify] Registered event consumers: TaskCreated, TaskCompleted, TaskDeleted")
	return nil
}

func (m *NotifyModule) handleTaskCreated(_ context.Context, event events.TaskCreatedEvent, _ *mono.Msg) error {
	m.record(ActivityEntry{
		TaskID:    event.TaskID,
		UserID:    event.UserID,
		Type:      "task_created",
		Message:   fmt.Sprintf("Task '%s' created with priority %s", event.Title, event.Priority),
		Timestamp: event.CreatedAt,
	})
	return nil
}

func (m *NotifyModule) handleTaskCompleted(_ context.Context, event events.TaskCompletedEvent, _ *mono.Msg) error {
	m.record(ActivityEntry{
		TaskID:    event.TaskID,
		UserID:    event.UserID,
		Type:      "task_completed",
		Message:   fmt.Sprintf("Task '%s' completed", event.Title),
		Timestamp: event.CompletedAt,
	})
	return nil
}

func (m *NotifyModule) handleTaskDeleted(_ context.Context, event events.TaskDeletedEvent, _ *mono.Msg) error {
	m.record(ActivityEntry{
		TaskID:    event.TaskID,
		UserID:    event.UserID,
		Type:      "task_deleted",
		Message:   "Task deleted",
		Timestamp: event.DeletedAt,
	})
	return nil
}

func (m *NotifyModule) record(entry ActivityEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = append(m.entries, entry)
	if len(m.entries) > maxEntries {
		m.entries = m.entries[len(m.entries)-maxEntries:]
	}
}

// ActivityFor returns the recorded activity for one user, newest first.
func (m *NotifyModule) ActivityFor(userID string) []ActivityEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]ActivityEntry, 0)
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].UserID == userID {
			result = append(result, m.entries[i])
		}
	}
	return result
}

// Start starts the module.
func (m *NotifyModule) Start(_ context.Context) error {
	log.Println("[notify] Module started - listening for task events")
	return nil
}

// Stop stops the module.
func (m *NotifyModule) Stop(_ context.Context) error {
	log.Println("[notify] Module stopped")
	return nil
}
