package temporal

import (
	"context"
	"errors"
	"fmt"

	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/ghuser/todoreminder/pkg/logger"
	"github.com/ghuser/todoreminder/services/notification/domain/models"
	"github.com/ghuser/todoreminder/services/notification/domain/scheduler"
)

// WorkflowClient is the part of client.Client the Notifier uses.
type WorkflowClient interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
	CancelWorkflow(ctx context.Context, workflowID string, runID string) error
}

// Notifier implements scheduler.Notifier with reminder workflows. The
// registry stays the source of truth for Pending; Temporal only owns the
// timers.
type Notifier struct {
	client    WorkflowClient
	registry  scheduler.Notifier
	taskQueue string
	log       logger.Logger
}

// NewNotifier returns a Notifier starting workflows on taskQueue.
func NewNotifier(c WorkflowClient, registry scheduler.Notifier, taskQueue string, log logger.Logger) *Notifier {
	return &Notifier{client: c, registry: registry, taskQueue: taskQueue, log: log.With("component", "temporal_notifier")}
}

// Schedule starts the reminder workflow, terminating a running one with the
// same id, and then records n. The timer is started first so a failed start
// never leaves a registry entry that a diff pass would treat as pending.
func (t *Notifier) Schedule(ctx context.Context, n models.Notification) error {
	opts := client.StartWorkflowOptions{
		ID:                       WorkflowID(n.UserID, n.ItemID),
		TaskQueue:                t.taskQueue,
		WorkflowIDConflictPolicy: enumspb.WORKFLOW_ID_CONFLICT_POLICY_TERMINATE_EXISTING,
		WorkflowIDReusePolicy:    enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
	}
	run, err := t.client.ExecuteWorkflow(ctx, opts, ReminderWorkflow, inputFrom(n))
	if err != nil {
		return fmt.Errorf("start reminder workflow: %w", err)
	}
	t.log.DebugContext(ctx, "reminder workflow started", "workflow_id", run.GetID(), "run_id", run.GetRunID())

	return t.registry.Schedule(ctx, n)
}

// Cancel cancels the workflow and drops the registry entry. A workflow that
// already finished or never existed is not an error.
func (t *Notifier) Cancel(ctx context.Context, userID, itemID string) error {
	if err := t.cancelWorkflow(ctx, userID, itemID); err != nil {
		return err
	}
	return t.registry.Cancel(ctx, userID, itemID)
}

// CancelAll cancels the workflow of every registered notification of userID.
func (t *Notifier) CancelAll(ctx context.Context, userID string) error {
	pending, err := t.registry.Pending(ctx, userID)
	if err != nil {
		return err
	}
	var errs []error
	for _, n := range pending {
		if err := t.cancelWorkflow(ctx, userID, n.ItemID); err != nil {
			errs = append(errs, err)
		}
	}
	if err := t.registry.CancelAll(ctx, userID); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Pending reads the registry.
func (t *Notifier) Pending(ctx context.Context, userID string) ([]models.Notification, error) {
	return t.registry.Pending(ctx, userID)
}

func (t *Notifier) cancelWorkflow(ctx context.Context, userID, itemID string) error {
	err := t.client.CancelWorkflow(ctx, WorkflowID(userID, itemID), "")
	var notFound *serviceerror.NotFound
	if err != nil && !errors.As(err, &notFound) {
		return fmt.Errorf("cancel reminder workflow: %w", err)
	}
	return nil
}
