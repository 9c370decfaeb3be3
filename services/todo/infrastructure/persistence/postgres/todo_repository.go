package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/todoreminder/pkg/database"
	"github.com/ghuser/todoreminder/pkg/events"
	tododomain "github.com/ghuser/todoreminder/services/todo/domain"
	domainevents "github.com/ghuser/todoreminder/services/todo/domain/events"
	"github.com/ghuser/todoreminder/services/todo/domain/models"
	"github.com/ghuser/todoreminder/services/todo/infrastructure/persistence/postgres/db"
)

// TodoRepository implements repositories.TodoRepository against PostgreSQL.
// Each write and its todo.changed event commit in one transaction.
type TodoRepository struct {
	db  *database.Database
	bus *events.EventBus
}

// NewTodoRepository returns a TodoRepository on the given pool. A nil bus
// disables event publishing.
func NewTodoRepository(database *database.Database, bus *events.EventBus) *TodoRepository {
	return &TodoRepository{db: database, bus: bus}
}

// FetchAll returns the user's to-dos ordered by scheduled time.
func (r *TodoRepository) FetchAll(ctx context.Context, userID string) ([]*models.Todo, error) {
	rows, err := db.New(r.db.DB()).ListTodosByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("query todos: %w", err)
	}
	items := make([]*models.Todo, len(rows))
	for i, row := range rows {
		items[i] = rowToTodo(row)
	}
	return items, nil
}

// Get returns ErrTodoNotFound for unknown or malformed ids.
func (r *TodoRepository) Get(ctx context.Context, userID, id string) (*models.Todo, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, tododomain.ErrTodoNotFound
	}
	row, err := db.New(r.db.DB()).GetTodo(ctx, db.GetTodoParams{ID: uid, UserID: userID})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, tododomain.ErrTodoNotFound
		}
		return nil, fmt.Errorf("query todo: %w", err)
	}
	return rowToTodo(row), nil
}

// Create inserts todo under a new UUID and publishes a created event.
func (r *TodoRepository) Create(ctx context.Context, userID string, todo *models.Todo) (string, error) {
	id := uuid.New()
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := db.New(tx).InsertTodo(ctx, db.InsertTodoParams{
			ID:          id,
			UserID:      userID,
			Title:       todo.Title.String(),
			ScheduledAt: todo.ScheduledAt,
			ImageUrl:    todo.ImageURL,
			Latitude:    todo.Location.Latitude,
			Longitude:   todo.Location.Longitude,
		}); err != nil {
			return fmt.Errorf("insert todo: %w", err)
		}

		saved := *todo
		saved.ID = id.String()
		saved.UserID = userID
		return r.publish(ctx, tx, domainevents.NewTodoChanged(domainevents.KindCreated, &saved, time.Now()))
	})
	if err != nil {
		return "", err
	}
	todo.ID = id.String()
	todo.UserID = userID
	return todo.ID, nil
}

// Update replaces the stored fields of id and publishes an updated event.
func (r *TodoRepository) Update(ctx context.Context, userID, id string, todo *models.Todo) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return tododomain.ErrTodoNotFound
	}
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		n, err := db.New(tx).UpdateTodo(ctx, db.UpdateTodoParams{
			ID:          uid,
			UserID:      userID,
			Title:       todo.Title.String(),
			ScheduledAt: todo.ScheduledAt,
			ImageUrl:    todo.ImageURL,
			Latitude:    todo.Location.Latitude,
			Longitude:   todo.Location.Longitude,
		})
		if err != nil {
			return fmt.Errorf("update todo: %w", err)
		}
		if n == 0 {
			return tododomain.ErrTodoNotFound
		}

		saved := *todo
		saved.ID = id
		saved.UserID = userID
		return r.publish(ctx, tx, domainevents.NewTodoChanged(domainevents.KindUpdated, &saved, time.Now()))
	})
}

// Delete removes id and publishes a deleted event.
func (r *TodoRepository) Delete(ctx context.Context, userID, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return tododomain.ErrTodoNotFound
	}
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		n, err := db.New(tx).DeleteTodo(ctx, db.DeleteTodoParams{ID: uid, UserID: userID})
		if err != nil {
			return fmt.Errorf("delete todo: %w", err)
		}
		if n == 0 {
			return tododomain.ErrTodoNotFound
		}
		return r.publish(ctx, tx, domainevents.NewTodoDeleted(userID, id, time.Now()))
	})
}

// UserIDs lists every user with at least one stored to-do.
func (r *TodoRepository) UserIDs(ctx context.Context) ([]string, error) {
	ids, err := db.New(r.db.DB()).ListTodoUserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("query todo owners: %w", err)
	}
	return ids, nil
}

func (r *TodoRepository) publish(ctx context.Context, tx *sql.Tx, evt domainevents.TodoChangedEvent) error {
	if r.bus == nil {
		return nil
	}
	msg, err := events.NewMessage(evt.EventID.String(), evt.Version, evt)
	if err != nil {
		return err
	}
	if err := r.bus.PublishTx(ctx, tx, domainevents.TopicTodoChanged, msg); err != nil {
		return fmt.Errorf("publish todo %s: %w", evt.Kind, err)
	}
	return nil
}

func rowToTodo(row db.TodoItem) *models.Todo {
	return &models.Todo{
		ID:          row.ID.String(),
		UserID:      row.UserID,
		Title:       models.Title(row.Title),
		ScheduledAt: row.ScheduledAt.UTC(),
		ImageURL:    row.ImageUrl,
		Location: models.Location{
			Latitude:  row.Latitude,
			Longitude: row.Longitude,
		},
	}
}
