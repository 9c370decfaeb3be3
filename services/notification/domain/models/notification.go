package models

import (
	"time"

	todomodels "github.com/ghuser/todoreminder/services/todo/domain/models"
)

// Notification is one pending, one-shot reminder. ItemID is the to-do id and
// identifies the notification within the user's set.
type Notification struct {
	UserID    string
	ItemID    string
	Title     string
	TriggerAt time.Time
}

// FromTodo derives the notification a to-do should have. The trigger is
// truncated to whole seconds.
func FromTodo(t *todomodels.Todo) Notification {
	return Notification{
		UserID:    t.UserID,
		ItemID:    t.ID,
		Title:     t.Title.String(),
		TriggerAt: t.ScheduledAt.UTC().Truncate(time.Second),
	}
}

// Same reports whether n and o would show the same text at the same moment.
func (n Notification) Same(o Notification) bool {
	return n.Title == o.Title && n.TriggerAt.Equal(o.TriggerAt)
}

// Elapsed reports whether the trigger is not after now.
func (n Notification) Elapsed(now time.Time) bool {
	return !n.TriggerAt.After(now)
}
