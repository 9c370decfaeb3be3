// Package temporal delivers reminders with one durable-timer workflow per
// notification, as an alternative to polling Redis.
package temporal

import (
	"context"
	"time"

	"go.temporal.io/sdk/activity"
	sdktemporal "go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/ghuser/todoreminder/services/notification/domain"
	"github.com/ghuser/todoreminder/services/notification/domain/models"
)

const deliverTimeout = 30 * time.Second

// ReminderInput is the workflow and activity argument.
type ReminderInput struct {
	UserID    string    `json:"user_id"`
	ItemID    string    `json:"item_id"`
	Title     string    `json:"title"`
	TriggerAt time.Time `json:"trigger_at"`
}

func inputFrom(n models.Notification) ReminderInput {
	return ReminderInput{UserID: n.UserID, ItemID: n.ItemID, Title: n.Title, TriggerAt: n.TriggerAt}
}

func (in ReminderInput) notification() models.Notification {
	return models.Notification{UserID: in.UserID, ItemID: in.ItemID, Title: in.Title, TriggerAt: in.TriggerAt}
}

// WorkflowID is the id of the reminder workflow for one to-do. Starting a
// workflow with the same id replaces the running one.
func WorkflowID(userID, itemID string) string {
	return "reminder/" + userID + "/" + itemID
}

// ReminderWorkflow sleeps until the trigger and then delivers once.
// Cancelling the workflow while it sleeps drops the reminder.
func ReminderWorkflow(ctx workflow.Context, in ReminderInput) error {
	if wait := in.TriggerAt.Sub(workflow.Now(ctx)); wait > 0 {
		if err := workflow.Sleep(ctx, wait); err != nil {
			return err
		}
	}

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: deliverTimeout,
		RetryPolicy:         &sdktemporal.RetryPolicy{MaximumAttempts: 1},
	})
	var a *Activities
	return workflow.ExecuteActivity(ctx, a.Deliver, in).Get(ctx, nil)
}

// Registry is the pending-set bookkeeping the delivery activity clears.
// Release removes the entry only while it still fires at n.TriggerAt.
type Registry interface {
	Release(ctx context.Context, n models.Notification) (bool, error)
}

// Activities holds the dependencies of the reminder activities.
type Activities struct {
	Sender   domain.Sender
	Registry Registry
}

// Deliver sends the reminder and removes it from the registry, whether or
// not the send succeeded. A registry entry rescheduled to another time
// belongs to a newer run and is kept.
func (a *Activities) Deliver(ctx context.Context, in ReminderInput) error {
	log := activity.GetLogger(ctx)
	n := in.notification()

	sendErr := a.Sender.Send(ctx, n)
	if released, err := a.Registry.Release(ctx, n); err != nil {
		log.Warn("failed to clear delivered reminder", "user_id", n.UserID, "item_id", n.ItemID, "error", err)
	} else if !released {
		log.Info("registry entry was rescheduled, keeping it", "user_id", n.UserID, "item_id", n.ItemID)
	}
	if sendErr != nil {
		log.Error("reminder delivery failed", "user_id", n.UserID, "item_id", n.ItemID, "error", sendErr)
		return sendErr
	}
	return nil
}
