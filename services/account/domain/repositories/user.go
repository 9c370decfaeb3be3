package repositories

import (
	"context"

	"github.com/ghuser/todoreminder/services/account/domain/models"
)

// UserRepository persists accounts.
type UserRepository interface {
	// Create stores u and assigns its ID. Returns ErrEmailTaken for a
	// duplicate address.
	Create(ctx context.Context, u *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	SetLineUserID(ctx context.Context, id, lineUserID string) error
}
