// Package sender delivers due reminders.
package sender

import (
	"context"

	"github.com/ghuser/todoreminder/pkg/logger"
	"github.com/ghuser/todoreminder/services/notification/domain/models"
)

// LogSender writes each reminder to the log. It is the default when no
// LINE channel token is configured.
type LogSender struct {
	log logger.Logger
}

// NewLogSender returns a LogSender.
func NewLogSender(log logger.Logger) *LogSender {
	return &LogSender{log: log.With("component", "log_sender")}
}

func (s *LogSender) Send(ctx context.Context, n models.Notification) error {
	s.log.InfoContext(ctx, "reminder due",
		"user_id", n.UserID,
		"item_id", n.ItemID,
		"title", n.Title,
		"trigger_at", n.TriggerAt,
	)
	return nil
}
