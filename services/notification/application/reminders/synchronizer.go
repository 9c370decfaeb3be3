// Package reminders keeps the notification scheduler in step with the item
// store, both on every to-do change and in periodic background passes.
package reminders

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ghuser/todoreminder/pkg/cache"
	"github.com/ghuser/todoreminder/pkg/logger"
	"github.com/ghuser/todoreminder/services/notification/domain"
	"github.com/ghuser/todoreminder/services/notification/domain/scheduler"
	tododomain "github.com/ghuser/todoreminder/services/todo/domain"
	todoevents "github.com/ghuser/todoreminder/services/todo/domain/events"
	todomodels "github.com/ghuser/todoreminder/services/todo/domain/models"
	"github.com/ghuser/todoreminder/services/todo/domain/repositories"
)

// Scheduler is the reconciliation surface the Synchronizer drives.
// *scheduler.Scheduler satisfies it.
type Scheduler interface {
	Reconcile(ctx context.Context, userID string, items []*todomodels.Todo) scheduler.Report
	ScheduleOne(ctx context.Context, item *todomodels.Todo) error
	CancelOne(ctx context.Context, userID, id string) error
}

// SnapshotStore remembers the list each user was last reconciled against.
// Get returns redis.Nil when nothing is stored.
type SnapshotStore interface {
	Get(ctx context.Context, userID string) (*cache.Snapshot, error)
	Set(ctx context.Context, userID string, snap *cache.Snapshot) error
	Invalidate(ctx context.Context, userID string) error
}

// UserLister enumerates users for a background pass.
type UserLister interface {
	UserIDs(ctx context.Context) ([]string, error)
}

// Synchronizer feeds item store state into the Scheduler.
type Synchronizer struct {
	items     repositories.TodoRepository
	scheduler Scheduler
	snapshots SnapshotStore
	extra     []UserLister
	log       logger.Logger
	now       func() time.Time
}

// NewSynchronizer returns a Synchronizer. Background passes visit every user
// the item store knows plus every user reported by extra, so reminders of a
// user whose last to-do was deleted still get cleared.
func NewSynchronizer(items repositories.TodoRepository, sched Scheduler, snapshots SnapshotStore, log logger.Logger, extra ...UserLister) *Synchronizer {
	return &Synchronizer{
		items:     items,
		scheduler: sched,
		snapshots: snapshots,
		extra:     extra,
		log:       log.With("component", "reminder_sync"),
		now:       time.Now,
	}
}

// HandleEvent applies one todo.changed event. The event only says which
// to-do to look at: its current state is read back from the item store, so
// redelivered or reordered events converge on the same result. A store
// error is returned for the event bus to retry.
func (s *Synchronizer) HandleEvent(ctx context.Context, evt todoevents.TodoChangedEvent) error {
	ctx = logger.WithAttrs(ctx, "user_id", evt.UserID, "todo_id", evt.TodoID)
	log := s.log.With("kind", evt.Kind)

	todo, err := s.items.Get(ctx, evt.UserID, evt.TodoID)
	switch {
	case errors.Is(err, tododomain.ErrTodoNotFound):
		if err := s.scheduler.CancelOne(ctx, evt.UserID, evt.TodoID); err != nil {
			return err
		}
	case err != nil:
		log.WarnContext(ctx, "item store unavailable, reminder left as is", "error", err)
		return err
	default:
		err := s.scheduler.ScheduleOne(ctx, todo)
		if errors.Is(err, domain.ErrTriggerElapsed) {
			log.InfoContext(ctx, "to-do is already due, no reminder scheduled")
		} else if err != nil {
			return err
		}
	}

	if err := s.snapshots.Invalidate(ctx, evt.UserID); err != nil {
		log.WarnContext(ctx, "snapshot invalidation failed", "error", err)
	}
	return nil
}

// Refresh fetches the user's to-dos and reconciles when they differ from the
// last reconciled snapshot. It reports whether new data arrived. On a store
// error the scheduler is not touched and the error is returned.
func (s *Synchronizer) Refresh(ctx context.Context, userID string) (bool, error) {
	items, err := s.items.FetchAll(ctx, userID)
	if err != nil {
		return false, err
	}
	items = todomodels.SortByScheduledAt(items)

	snap, err := s.snapshots.Get(ctx, userID)
	switch {
	case err == nil:
		if todomodels.ItemsEqual(fromSnapshot(snap), items) {
			return false, nil
		}
	case errors.Is(err, redis.Nil):
	default:
		s.log.WarnContext(ctx, "snapshot read failed, reconciling", "user_id", userID, "error", err)
	}

	report := s.scheduler.Reconcile(ctx, userID, items)

	if failed(report) {
		// Leave no snapshot so the next pass reconciles again.
		if err := s.snapshots.Invalidate(ctx, userID); err != nil {
			s.log.WarnContext(ctx, "snapshot invalidation failed", "user_id", userID, "error", err)
		}
		return true, nil
	}
	if err := s.snapshots.Set(ctx, userID, toSnapshot(items, s.now())); err != nil {
		s.log.WarnContext(ctx, "snapshot write failed", "user_id", userID, "error", err)
	}
	return true, nil
}

// ResyncStats summarizes one background pass.
type ResyncStats struct {
	Users   int
	Changed int
	Failed  int
}

// ResyncOnce refreshes every known user. Per-user failures are logged and
// counted; only a failure to list users is returned.
func (s *Synchronizer) ResyncOnce(ctx context.Context) (ResyncStats, error) {
	users, err := s.userIDs(ctx)
	if err != nil {
		return ResyncStats{}, err
	}

	stats := ResyncStats{Users: len(users)}
	for _, userID := range users {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}
		changed, err := s.Refresh(ctx, userID)
		if err != nil {
			stats.Failed++
			s.log.WarnContext(ctx, "refresh failed", "user_id", userID, "error", err)
			continue
		}
		if changed {
			stats.Changed++
		}
	}
	return stats, nil
}

// RunResync runs ResyncOnce at start and then every interval until ctx is
// cancelled.
func (s *Synchronizer) RunResync(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		stats, err := s.ResyncOnce(ctx)
		if err != nil && ctx.Err() == nil {
			s.log.ErrorContext(ctx, "resync failed", "error", err)
		} else if err == nil {
			s.log.InfoContext(ctx, "resync finished",
				"users", stats.Users, "changed", stats.Changed, "failed", stats.Failed)
		}

		select {
		case <-ctx.Done():
			s.log.Info("resync stopping")
			return
		case <-ticker.C:
		}
	}
}

func (s *Synchronizer) userIDs(ctx context.Context) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	add := func(ids []string) {
		for _, id := range ids {
			if id != "" && !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}

	ids, err := s.items.UserIDs(ctx)
	if err != nil {
		return nil, err
	}
	add(ids)
	for _, l := range s.extra {
		ids, err := l.UserIDs(ctx)
		if err != nil {
			s.log.WarnContext(ctx, "listing users with pending reminders failed", "error", err)
			continue
		}
		add(ids)
	}
	return out, nil
}

// failed reports whether any warning other than an elapsed trigger occurred.
func failed(r scheduler.Report) bool {
	for _, w := range r.Warnings {
		if !errors.Is(w, domain.ErrTriggerElapsed) {
			return true
		}
	}
	return false
}

func toSnapshot(items []*todomodels.Todo, now time.Time) *cache.Snapshot {
	snap := &cache.Snapshot{Items: make([]cache.CachedTodo, len(items)), FetchedAt: now}
	for i, t := range items {
		snap.Items[i] = cache.CachedTodo{
			ID:          t.ID,
			Title:       t.Title.String(),
			ScheduledAt: t.ScheduledAt,
			ImageURL:    t.ImageURL,
			Latitude:    t.Location.Latitude,
			Longitude:   t.Location.Longitude,
		}
	}
	return snap
}

func fromSnapshot(snap *cache.Snapshot) []*todomodels.Todo {
	items := make([]*todomodels.Todo, len(snap.Items))
	for i, c := range snap.Items {
		items[i] = &todomodels.Todo{
			ID:          c.ID,
			Title:       todomodels.Title(c.Title),
			ScheduledAt: c.ScheduledAt,
			ImageURL:    c.ImageURL,
			Location:    todomodels.Location{Latitude: c.Latitude, Longitude: c.Longitude},
		}
	}
	return items
}
