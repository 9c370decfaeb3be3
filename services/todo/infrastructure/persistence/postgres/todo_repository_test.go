package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/todoreminder/pkg/database"
	"github.com/ghuser/todoreminder/pkg/logger"
	tododomain "github.com/ghuser/todoreminder/services/todo/domain"
	"github.com/ghuser/todoreminder/services/todo/domain/models"
	"github.com/ghuser/todoreminder/services/todo/infrastructure/persistence/postgres/db"
)

func TestRowToTodo(t *testing.T) {
	id := uuid.New()
	at := time.Date(2030, 7, 1, 18, 0, 0, 0, time.FixedZone("KST", 9*3600))
	got := rowToTodo(db.TodoItem{
		ID:          id,
		UserID:      "u1",
		Title:       "Buy milk",
		ScheduledAt: at,
		ImageUrl:    "gs://bucket/u1/a.jpg",
		Latitude:    35.1,
		Longitude:   129.0,
	})

	want := &models.Todo{
		ID:          id.String(),
		UserID:      "u1",
		Title:       "Buy milk",
		ScheduledAt: at,
		ImageURL:    "gs://bucket/u1/a.jpg",
		Location:    models.Location{Latitude: 35.1, Longitude: 129.0},
	}
	if !got.Equal(want) || got.UserID != "u1" {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
	if got.ScheduledAt.Location() != time.UTC {
		t.Fatalf("expected UTC, got %v", got.ScheduledAt.Location())
	}
}

// Integration tests need a migrated database in DATABASE_URL.
func TestTodoRepositoryIntegration(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set; skipping integration tests")
	}
	ctx := context.Background()
	pool, err := database.NewPool(ctx, url, logger.Nop())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer pool.Close() //nolint:errcheck

	repo := NewTodoRepository(pool, nil)
	userID := "it-" + uuid.NewString()
	at := time.Now().UTC().Add(time.Hour).Truncate(time.Second)

	later := models.NewTodo(userID, "Call mom", at.Add(time.Hour), "", models.DefaultLocation)
	sooner := models.NewTodo(userID, "Buy milk", at, "", models.DefaultLocation)
	for _, td := range []*models.Todo{later, sooner} {
		if _, err := repo.Create(ctx, userID, td); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	items, err := repo.FetchAll(ctx, userID)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(items) != 2 || items[0].ID != sooner.ID || items[1].ID != later.ID {
		t.Fatalf("expected [sooner later], got %v", models.IDs(items))
	}

	sooner.Title = "Buy oat milk"
	if err := repo.Update(ctx, userID, sooner.ID, sooner); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := repo.Get(ctx, userID, sooner.ID)
	if err != nil || got.Title != "Buy oat milk" {
		t.Fatalf("get after update: %+v, %v", got, err)
	}

	if _, err := repo.Get(ctx, "someone-else", sooner.ID); !errors.Is(err, tododomain.ErrTodoNotFound) {
		t.Fatalf("expected not found for other user, got %v", err)
	}
	if err := repo.Delete(ctx, userID, "not-a-uuid"); !errors.Is(err, tododomain.ErrTodoNotFound) {
		t.Fatalf("expected not found for malformed id, got %v", err)
	}

	for _, td := range []*models.Todo{later, sooner} {
		if err := repo.Delete(ctx, userID, td.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
	}
	if err := repo.Delete(ctx, userID, sooner.ID); !errors.Is(err, tododomain.ErrTodoNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}
