// Package dispatch delivers reminders whose trigger time has come.
package dispatch

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/ghuser/todoreminder/pkg/logger"
	"github.com/ghuser/todoreminder/pkg/telemetry"
	"github.com/ghuser/todoreminder/services/notification/domain"
	"github.com/ghuser/todoreminder/services/notification/domain/models"
)

// Claimer hands out due notifications. A claimed notification is removed
// from the pending set and given to exactly one caller.
type Claimer interface {
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]models.Notification, error)
}

// Dispatcher polls a Claimer and passes each claimed notification to a
// Sender. Failed deliveries are logged and dropped, never retried.
type Dispatcher struct {
	claimer  Claimer
	sender   domain.Sender
	log      logger.Logger
	interval time.Duration
	batch    int
	now      func() time.Time

	delivered metric.Int64Counter
	lag       metric.Float64Histogram
}

// NewDispatcher returns a Dispatcher claiming up to batch notifications
// every interval.
func NewDispatcher(claimer Claimer, sender domain.Sender, log logger.Logger, interval time.Duration, batch int) *Dispatcher {
	meter := otel.Meter("github.com/ghuser/todoreminder/services/notification/application/dispatch")
	delivered, _ := meter.Int64Counter("reminders.delivered", metric.WithDescription("Due reminders handed to the sender"))
	lag, _ := meter.Float64Histogram("reminders.delivery.lag",
		metric.WithUnit("s"),
		metric.WithDescription("Time between a reminder's trigger and its delivery attempt"))
	return &Dispatcher{
		claimer:   claimer,
		sender:    sender,
		log:       log.With("component", "dispatcher"),
		interval:  interval,
		batch:     batch,
		now:       time.Now,
		delivered: delivered,
		lag:       lag,
	}
}

// Run dispatches until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.log.Info("dispatcher started", "interval", d.interval, "batch", d.batch)
	for {
		select {
		case <-ctx.Done():
			d.log.Info("dispatcher stopping")
			return
		case <-ticker.C:
			d.Tick(ctx)
		}
	}
}

// Tick claims and sends due notifications until a claim returns less than
// a full batch. It returns how many were sent successfully.
func (d *Dispatcher) Tick(ctx context.Context) int {
	sent := 0
	for ctx.Err() == nil {
		due, err := d.claimer.ClaimDue(ctx, d.now(), d.batch)
		if err != nil {
			d.log.ErrorContext(ctx, "claiming due reminders failed", "error", err)
			return sent
		}
		for _, n := range due {
			d.lag.Record(ctx, d.now().Sub(n.TriggerAt).Seconds())
			if err := d.sender.Send(ctx, n); err != nil {
				d.delivered.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "failed")))
				d.log.ErrorContext(ctx, "reminder delivery failed",
					"user_id", n.UserID, "item_id", n.ItemID, "error", err)
				telemetry.CaptureError(err, map[string]string{"component": "dispatch"})
				continue
			}
			d.delivered.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "sent")))
			sent++
		}
		if len(due) < d.batch {
			return sent
		}
	}
	return sent
}
