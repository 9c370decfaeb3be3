// Package subscribers connects the reminder pipeline to todo.changed events.
package subscribers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/ghuser/todoreminder/pkg/events"
	"github.com/ghuser/todoreminder/pkg/logger"
	"github.com/ghuser/todoreminder/pkg/telemetry"
	todoevents "github.com/ghuser/todoreminder/services/todo/domain/events"
)

// EventHandler applies one to-do change to the pending reminders.
// *reminders.Synchronizer satisfies it.
type EventHandler interface {
	HandleEvent(ctx context.Context, evt todoevents.TodoChangedEvent) error
}

// Subscriber is the subscribing half of the EventBus.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string, handler events.Handler) (<-chan error, error)
}

// Register subscribes h to todo.changed and drains subscriber errors into
// the log until the bus closes the channel.
func Register(ctx context.Context, bus Subscriber, h EventHandler, log logger.Logger) error {
	errCh, err := bus.Subscribe(ctx, todoevents.TopicTodoChanged, HandleTodoChanged(h, log))
	if err != nil {
		return err
	}

	go func() {
		for err := range errCh {
			log.ErrorContext(ctx, "subscriber error",
				"topic", todoevents.TopicTodoChanged,
				"error", err,
			)
			telemetry.CaptureError(err, map[string]string{"topic": todoevents.TopicTodoChanged})
		}
	}()

	log.Info("event subscribers registered", "topics", []string{todoevents.TopicTodoChanged})
	return nil
}

// HandleTodoChanged decodes todo.changed messages for h. Payloads that
// cannot be decoded, or carry a newer schema version, are logged and acked:
// retrying them cannot succeed.
func HandleTodoChanged(h EventHandler, log logger.Logger) events.Handler {
	return func(ctx context.Context, msg *message.Message) error {
		var evt todoevents.TodoChangedEvent
		if err := json.Unmarshal(msg.Payload, &evt); err != nil {
			log.ErrorContext(ctx, "dropping malformed todo.changed event",
				"message_uuid", msg.UUID, "error", err)
			return nil
		}
		if evt.Version > todoevents.TodoChangedVersion {
			log.ErrorContext(ctx, "dropping todo.changed event with unknown version",
				"event_id", evt.EventID, "version", evt.Version)
			return nil
		}
		if err := h.HandleEvent(ctx, evt); err != nil {
			return fmt.Errorf("handle %s event for todo %s: %w", evt.Kind, evt.TodoID, err)
		}
		return nil
	}
}
