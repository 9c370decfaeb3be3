package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/ghuser/todoreminder/pkg/logger"
	"github.com/ghuser/todoreminder/services/notification/domain"
	"github.com/ghuser/todoreminder/services/notification/domain/models"
	todomodels "github.com/ghuser/todoreminder/services/todo/domain/models"
)

const instrumentationName = "github.com/ghuser/todoreminder/services/notification/domain/scheduler"

// Mode selects how Reconcile brings the Notifier in line.
type Mode string

const (
	// ModeDiff reads the pending set and only touches ids that changed.
	ModeDiff Mode = "diff"
	// ModeReplace cancels everything, then schedules every item.
	ModeReplace Mode = "replace"
)

// DefaultConcurrency bounds in-flight Notifier calls when Options leaves it unset.
const DefaultConcurrency = 8

// Options configures a Scheduler. Zero values pick ModeDiff,
// DefaultConcurrency and the wall clock.
type Options struct {
	Mode        Mode
	Concurrency int
	Now         func() time.Time
}

// Warning is a non-fatal, per-item failure of a reconciliation pass.
type Warning struct {
	ItemID string
	Err    error
}

func (w Warning) Error() string {
	if w.ItemID == "" {
		return w.Err.Error()
	}
	return fmt.Sprintf("item %s: %v", w.ItemID, w.Err)
}

func (w Warning) Unwrap() error { return w.Err }

// Report describes one Reconcile pass. Mode is the mode actually used, which
// is ModeReplace when a diff pass could not read the pending set.
type Report struct {
	UserID    string
	Mode      Mode
	Scheduled []string
	Cancelled []string
	Unchanged []string
	// Elapsed lists to-dos whose time has passed; none of them is pending.
	Elapsed  []string
	Warnings []Warning
}

// Err joins the warnings, or returns nil when there are none.
func (r Report) Err() error {
	if len(r.Warnings) == 0 {
		return nil
	}
	errs := make([]error, len(r.Warnings))
	for i, w := range r.Warnings {
		errs[i] = w
	}
	return errors.Join(errs...)
}

// Scheduler reconciles pending notifications against to-do snapshots. It
// holds no item state: every pass works only on the slice it is given.
type Scheduler struct {
	notifier Notifier
	log      logger.Logger
	mode     Mode
	limit    int
	now      func() time.Time
	tracer   trace.Tracer

	scheduled metric.Int64Counter
	cancelled metric.Int64Counter
	failed    metric.Int64Counter
	duration  metric.Float64Histogram
}

// New returns a Scheduler driving notifier.
func New(notifier Notifier, log logger.Logger, opts Options) *Scheduler {
	if opts.Mode == "" {
		opts.Mode = ModeDiff
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	meter := otel.Meter(instrumentationName)
	scheduled, _ := meter.Int64Counter("reminders.scheduled",
		metric.WithDescription("Notifications created or replaced"))
	cancelled, _ := meter.Int64Counter("reminders.cancelled",
		metric.WithDescription("Notifications cancelled"))
	failed, _ := meter.Int64Counter("reminders.failed",
		metric.WithDescription("Notifier calls that returned an error"))
	duration, _ := meter.Float64Histogram("reminders.reconcile.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Wall time of one reconciliation pass"))

	return &Scheduler{
		notifier:  notifier,
		log:       log.With("component", "scheduler"),
		mode:      opts.Mode,
		limit:     opts.Concurrency,
		now:       opts.Now,
		tracer:    otel.Tracer(instrumentationName),
		scheduled: scheduled,
		cancelled: cancelled,
		failed:    failed,
		duration:  duration,
	}
}

// Mode returns the configured reconciliation mode.
func (s *Scheduler) Mode() Mode {
	return s.mode
}

// Reconcile makes the user's pending set match items. Per-item failures are
// logged and returned as warnings; they never stop the pass. Calling it
// twice with the same items leaves the pending set unchanged.
func (s *Scheduler) Reconcile(ctx context.Context, userID string, items []*todomodels.Todo) Report {
	ctx, span := s.tracer.Start(ctx, "scheduler.Reconcile", trace.WithAttributes(
		attribute.String("user_id", userID),
		attribute.Int("items", len(items)),
	))
	defer span.End()
	start := time.Now()

	report := Report{UserID: userID, Mode: s.mode}
	desired := s.desired(ctx, userID, items, &report)

	var pending []models.Notification
	if report.Mode == ModeDiff {
		var err error
		pending, err = s.notifier.Pending(ctx, userID)
		if err != nil {
			s.log.WarnContext(ctx, "reading pending notifications failed, falling back to replace",
				"user_id", userID, "error", err)
			report.Warnings = append(report.Warnings, Warning{Err: fmt.Errorf("pending: %w", err)})
			report.Mode = ModeReplace
		}
	}

	var plan ReconcilePlan
	if report.Mode == ModeReplace {
		if err := s.notifier.CancelAll(ctx, userID); err != nil {
			s.failed.Add(ctx, 1, metric.WithAttributes(attribute.String("op", "cancel_all")))
			s.log.WarnContext(ctx, "cancel all failed", "user_id", userID, "error", err)
			report.Warnings = append(report.Warnings, Warning{Err: fmt.Errorf("cancel all: %w", err)})
		}
		plan = Plan(desired, nil)
	} else {
		plan = Plan(desired, pending)
	}
	report.Unchanged = plan.Unchanged

	s.apply(ctx, userID, plan, &report)

	span.SetAttributes(
		attribute.String("mode", string(report.Mode)),
		attribute.Int("scheduled", len(report.Scheduled)),
		attribute.Int("cancelled", len(report.Cancelled)),
		attribute.Int("warnings", len(report.Warnings)),
	)
	if len(report.Warnings) > 0 {
		span.SetStatus(codes.Error, "reconcile finished with warnings")
	}
	s.log.InfoContext(ctx, "reconciled notifications",
		"user_id", userID,
		"mode", report.Mode,
		"scheduled", len(report.Scheduled),
		"cancelled", len(report.Cancelled),
		"unchanged", len(report.Unchanged),
		"elapsed", len(report.Elapsed),
		"warnings", len(report.Warnings),
	)
	s.duration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("mode", string(report.Mode))))
	return report
}

// desired turns items into the notifications that should be pending.
// For a repeated id the last occurrence wins; elapsed to-dos are left out.
func (s *Scheduler) desired(ctx context.Context, userID string, items []*todomodels.Todo, report *Report) []models.Notification {
	now := s.now()
	byID := make(map[string]models.Notification, len(items))
	order := make([]string, 0, len(items))

	for _, item := range items {
		if item == nil || item.ID == "" {
			report.Warnings = append(report.Warnings, Warning{Err: fmt.Errorf("%w: missing item id", domain.ErrInvalidNotification)})
			continue
		}
		n := models.FromTodo(item)
		n.UserID = userID
		if _, dup := byID[n.ItemID]; dup {
			s.log.WarnContext(ctx, "duplicate item id in snapshot, keeping the last", "user_id", userID, "item_id", n.ItemID)
			report.Warnings = append(report.Warnings, Warning{ItemID: n.ItemID, Err: errors.New("duplicate item id")})
		} else {
			order = append(order, n.ItemID)
		}
		byID[n.ItemID] = n
	}

	out := make([]models.Notification, 0, len(order))
	for _, id := range order {
		n := byID[id]
		if n.Elapsed(now) {
			s.log.DebugContext(ctx, "skipping elapsed reminder", "user_id", userID, "item_id", id, "trigger_at", n.TriggerAt)
			report.Elapsed = append(report.Elapsed, id)
			report.Warnings = append(report.Warnings, Warning{ItemID: id, Err: domain.ErrTriggerElapsed})
			continue
		}
		out = append(out, n)
	}
	return out
}

// apply runs every cancel and schedule of plan as an independent task. Tasks
// finish in any order; each records its own outcome.
func (s *Scheduler) apply(ctx context.Context, userID string, plan ReconcilePlan, report *Report) {
	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(s.limit)

	record := func(list *[]string, id string, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			report.Warnings = append(report.Warnings, Warning{ItemID: id, Err: err})
			return
		}
		*list = append(*list, id)
	}

	for _, id := range plan.Cancel {
		g.Go(func() error {
			record(&report.Cancelled, id, s.cancel(ctx, userID, id))
			return nil
		})
	}
	for _, n := range plan.Schedule {
		g.Go(func() error {
			record(&report.Scheduled, n.ItemID, s.schedule(ctx, n))
			return nil
		})
	}
	_ = g.Wait()

	sort.Strings(report.Scheduled)
	sort.Strings(report.Cancelled)
	sort.Slice(report.Warnings, func(i, j int) bool { return report.Warnings[i].ItemID < report.Warnings[j].ItemID })
}

// ScheduleOne schedules item's notification, replacing any pending one for
// the same id. An elapsed item returns ErrTriggerElapsed and cancels the
// stale notification, if any.
func (s *Scheduler) ScheduleOne(ctx context.Context, item *todomodels.Todo) error {
	if item == nil || item.ID == "" || item.UserID == "" {
		return fmt.Errorf("%w: missing user or item id", domain.ErrInvalidNotification)
	}
	ctx, span := s.tracer.Start(ctx, "scheduler.ScheduleOne", trace.WithAttributes(
		attribute.String("user_id", item.UserID),
		attribute.String("item_id", item.ID),
	))
	defer span.End()

	n := models.FromTodo(item)
	if n.Elapsed(s.now()) {
		s.log.WarnContext(ctx, "not scheduling elapsed reminder", "user_id", n.UserID, "item_id", n.ItemID, "trigger_at", n.TriggerAt)
		if err := s.cancel(ctx, n.UserID, n.ItemID); err != nil {
			return err
		}
		return fmt.Errorf("item %s: %w", n.ItemID, domain.ErrTriggerElapsed)
	}
	if err := s.schedule(ctx, n); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// CancelOne removes the pending notification for id. It is a no-op when
// none exists.
func (s *Scheduler) CancelOne(ctx context.Context, userID, id string) error {
	ctx, span := s.tracer.Start(ctx, "scheduler.CancelOne", trace.WithAttributes(
		attribute.String("user_id", userID),
		attribute.String("item_id", id),
	))
	defer span.End()

	if err := s.cancel(ctx, userID, id); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (s *Scheduler) schedule(ctx context.Context, n models.Notification) error {
	if err := s.notifier.Schedule(ctx, n); err != nil {
		s.failed.Add(ctx, 1, metric.WithAttributes(attribute.String("op", "schedule")))
		s.log.WarnContext(ctx, "scheduling notification failed", "user_id", n.UserID, "item_id", n.ItemID, "error", err)
		return fmt.Errorf("schedule: %w", err)
	}
	s.scheduled.Add(ctx, 1)
	s.log.DebugContext(ctx, "notification scheduled", "user_id", n.UserID, "item_id", n.ItemID, "trigger_at", n.TriggerAt)
	return nil
}

func (s *Scheduler) cancel(ctx context.Context, userID, id string) error {
	if err := s.notifier.Cancel(ctx, userID, id); err != nil {
		s.failed.Add(ctx, 1, metric.WithAttributes(attribute.String("op", "cancel")))
		s.log.WarnContext(ctx, "cancelling notification failed", "user_id", userID, "item_id", id, "error", err)
		return fmt.Errorf("cancel: %w", err)
	}
	s.cancelled.Add(ctx, 1)
	return nil
}
