package services

import (
	"fmt"

	"github.com/ghuser/todoreminder/pkg/app"
	"github.com/ghuser/todoreminder/pkg/cache"
	"github.com/ghuser/todoreminder/pkg/config"
	"github.com/ghuser/todoreminder/services/notification/application/dispatch"
	"github.com/ghuser/todoreminder/services/notification/application/reminders"
	"github.com/ghuser/todoreminder/services/notification/domain"
	"github.com/ghuser/todoreminder/services/notification/domain/scheduler"
	"github.com/ghuser/todoreminder/services/notification/infrastructure/redis"
	"github.com/ghuser/todoreminder/services/notification/infrastructure/temporal"
	"github.com/ghuser/todoreminder/services/todo/domain/repositories"
)

// Services is the application-layer service container for this bounded context.
type Services struct {
	Scheduler    *scheduler.Scheduler
	Synchronizer *reminders.Synchronizer
	Pending      *redis.PendingStore

	// Dispatcher delivers due reminders when DISPATCH_BACKEND=redis; nil otherwise.
	Dispatcher *dispatch.Dispatcher
	// Activities back the reminder workflow when DISPATCH_BACKEND=temporal; nil otherwise.
	Activities *temporal.Activities
}

// New wires the reminder pipeline over items. Reminders go out through send,
// either from the Redis dispatcher or from Temporal activities.
func New(a *app.Application, items repositories.TodoRepository, send domain.Sender) (*Services, error) {
	cfg := a.Config
	pending := redis.NewPendingStore(a.Redis)
	svcs := &Services{Pending: pending}

	var notifier scheduler.Notifier = pending
	switch cfg.DispatchBackend {
	case config.DispatchTemporal:
		if a.TemporalClient == nil {
			return nil, fmt.Errorf("notification: DISPATCH_BACKEND=temporal needs a temporal client")
		}
		notifier = temporal.NewNotifier(a.TemporalClient.Client, pending, a.TemporalClient.TaskQueue, a.Logger)
		svcs.Activities = &temporal.Activities{Sender: send, Registry: pending}
	default:
		svcs.Dispatcher = dispatch.NewDispatcher(pending, send, a.Logger, cfg.DispatchInterval, cfg.DispatchBatch)
	}

	svcs.Scheduler = scheduler.New(notifier, a.Logger, scheduler.Options{
		Mode:        scheduler.Mode(cfg.ReconcileMode),
		Concurrency: cfg.ReconcileConcurrency,
	})
	svcs.Synchronizer = reminders.NewSynchronizer(items, svcs.Scheduler, cache.NewSnapshotCache(a.Redis), a.Logger, pending)
	return svcs, nil
}
