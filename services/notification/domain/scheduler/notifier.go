// Package scheduler keeps each user's pending reminders in one-to-one
// correspondence with their live to-dos.
//
// Callers hand Reconcile the full, authoritative to-do list; afterwards the
// Notifier holds exactly one notification per future to-do, keyed by its id,
// and none for ids that are gone. ScheduleOne and CancelOne cover single
// creates, edits and deletes without a full pass.
package scheduler

import (
	"context"

	"github.com/ghuser/todoreminder/services/notification/domain/models"
)

// Notifier is the host notification API. Every operation is scoped to one
// user and keyed by item id.
type Notifier interface {
	// Schedule creates the notification for n.ItemID or replaces the existing
	// one in a single step.
	Schedule(ctx context.Context, n models.Notification) error
	// Cancel removes the pending notification for itemID. A missing one is
	// not an error.
	Cancel(ctx context.Context, userID, itemID string) error
	CancelAll(ctx context.Context, userID string) error
	Pending(ctx context.Context, userID string) ([]models.Notification, error)
}
