package domain

import (
	"context"

	"github.com/ghuser/todoreminder/services/notification/domain/models"
)

// Sender delivers a due notification to its user.
type Sender interface {
	Send(ctx context.Context, n models.Notification) error
}
