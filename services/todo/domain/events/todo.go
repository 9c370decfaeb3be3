package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/todoreminder/services/todo/domain/models"
)

// TopicTodoChanged carries every create, update and delete of a to-do.
const TopicTodoChanged = "todo.changed"

// TodoChangedVersion is the current payload schema version.
const TodoChangedVersion = 1

// Kind says what happened to the to-do.
type Kind string

const (
	KindCreated Kind = "created"
	KindUpdated Kind = "updated"
	KindDeleted Kind = "deleted"
)

// TodoChangedEvent is published by the item store after a successful write.
// Title and ScheduledAt are empty for KindDeleted.
type TodoChangedEvent struct {
	EventID     uuid.UUID `json:"event_id"`
	Version     int       `json:"version"`
	Kind        Kind      `json:"kind"`
	UserID      string    `json:"user_id"`
	TodoID      string    `json:"todo_id"`
	Title       string    `json:"title,omitempty"`
	ScheduledAt time.Time `json:"scheduled_at,omitzero"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// NewTodoChanged builds the event for a write of t.
func NewTodoChanged(kind Kind, t *models.Todo, now time.Time) TodoChangedEvent {
	evt := TodoChangedEvent{
		EventID:    uuid.New(),
		Version:    TodoChangedVersion,
		Kind:       kind,
		UserID:     t.UserID,
		TodoID:     t.ID,
		OccurredAt: now.UTC(),
	}
	if kind != KindDeleted {
		evt.Title = t.Title.String()
		evt.ScheduledAt = t.ScheduledAt
	}
	return evt
}

// NewTodoDeleted builds the event for removing todoID.
func NewTodoDeleted(userID, todoID string, now time.Time) TodoChangedEvent {
	return NewTodoChanged(KindDeleted, &models.Todo{ID: todoID, UserID: userID}, now)
}
