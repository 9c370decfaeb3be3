package repositories

import (
	"context"

	"github.com/ghuser/todoreminder/services/todo/domain/models"
)

// TodoRepository is the item store. Every write publishes a
// todo.changed event once it has succeeded.
type TodoRepository interface {
	// FetchAll returns the user's to-dos ordered by scheduled time.
	FetchAll(ctx context.Context, userID string) ([]*models.Todo, error)

	// Get returns ErrTodoNotFound when id does not belong to userID.
	Get(ctx context.Context, userID, id string) (*models.Todo, error)

	// Create stores todo under a fresh store-assigned id, sets todo.ID and
	// returns it.
	Create(ctx context.Context, userID string, todo *models.Todo) (string, error)

	// Update replaces every field of the stored to-do id.
	// Returns ErrTodoNotFound when it does not exist.
	Update(ctx context.Context, userID, id string, todo *models.Todo) error

	// Delete returns ErrTodoNotFound when id does not exist.
	Delete(ctx context.Context, userID, id string) error

	// UserIDs lists every user owning at least one to-do.
	UserIDs(ctx context.Context) ([]string, error)
}
