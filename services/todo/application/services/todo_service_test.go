package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ghuser/todoreminder/services/todo/domain"
	"github.com/ghuser/todoreminder/services/todo/domain/models"
)

type fakeRepo struct {
	items  map[string]*models.Todo
	nextID int
	calls  int
	err    error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: map[string]*models.Todo{}}
}

func (f *fakeRepo) FetchAll(_ context.Context, userID string) ([]*models.Todo, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.Todo
	for _, t := range f.items {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeRepo) Get(_ context.Context, userID, id string) (*models.Todo, error) {
	f.calls++
	t, ok := f.items[id]
	if !ok || t.UserID != userID {
		return nil, domain.ErrTodoNotFound
	}
	return t, nil
}

func (f *fakeRepo) Create(_ context.Context, userID string, t *models.Todo) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	f.nextID++
	t.ID = fmt.Sprintf("t%d", f.nextID)
	t.UserID = userID
	f.items[t.ID] = t
	return t.ID, nil
}

func (f *fakeRepo) Update(_ context.Context, userID, id string, t *models.Todo) error {
	f.calls++
	if old, ok := f.items[id]; !ok || old.UserID != userID {
		return domain.ErrTodoNotFound
	}
	f.items[id] = t
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, userID, id string) error {
	f.calls++
	if old, ok := f.items[id]; !ok || old.UserID != userID {
		return domain.ErrTodoNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeRepo) UserIDs(context.Context) ([]string, error) { return nil, nil }

var now = time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)

func newTestService(repo *fakeRepo) *TodoService {
	svc := NewTodoService(repo)
	svc.now = func() time.Time { return now }
	return svc
}

func ptr(f float64) *float64 { return &f }

func TestTodoServiceCreate(t *testing.T) {
	tests := []struct {
		name    string
		in      TodoInput
		wantErr error
		wantLoc models.Location
	}{
		{
			name:    "defaults location",
			in:      TodoInput{Title: "  Buy milk ", ScheduledAt: now.Add(time.Hour)},
			wantLoc: models.DefaultLocation,
		},
		{
			name:    "explicit location",
			in:      TodoInput{Title: "Swim", ScheduledAt: now.Add(time.Hour), Latitude: ptr(35.1), Longitude: ptr(129.0)},
			wantLoc: models.Location{Latitude: 35.1, Longitude: 129.0},
		},
		{name: "blank title", in: TodoInput{Title: "   ", ScheduledAt: now.Add(time.Hour)}, wantErr: domain.ErrInvalidTitle},
		{name: "past", in: TodoInput{Title: "x", ScheduledAt: now.Add(-time.Minute)}, wantErr: domain.ErrScheduleInPast},
		{name: "now is not future", in: TodoInput{Title: "x", ScheduledAt: now}, wantErr: domain.ErrScheduleInPast},
		{name: "bad latitude", in: TodoInput{Title: "x", ScheduledAt: now.Add(time.Hour), Latitude: ptr(120), Longitude: ptr(0)}, wantErr: domain.ErrInvalidLocation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo()
			todo, err := newTestService(repo).Create(context.Background(), "u1", tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if repo.calls != 0 {
					t.Fatalf("store must not be called on validation failure, got %d calls", repo.calls)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if todo.ID == "" {
				t.Fatal("expected store-assigned id")
			}
			if todo.Location != tt.wantLoc {
				t.Fatalf("expected location %v, got %v", tt.wantLoc, todo.Location)
			}
			if todo.Title != models.Title(strings.TrimSpace(tt.in.Title)) {
				t.Fatalf("expected trimmed title, got %q", todo.Title)
			}
		})
	}
}


func TestTodoServiceUpdate(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, "u1", TodoInput{Title: "Draft", ScheduledAt: now.Add(time.Hour)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.Update(ctx, "u1", created.ID, TodoInput{Title: "Final", ScheduledAt: now.Add(2 * time.Hour)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != created.ID || updated.Title != "Final" {
		t.Fatalf("unexpected update result %+v", updated)
	}

	if _, err := svc.Update(ctx, "u2", created.ID, TodoInput{Title: "Steal", ScheduledAt: now.Add(time.Hour)}); !errors.Is(err, domain.ErrTodoNotFound) {
		t.Fatalf("expected not found for another user, got %v", err)
	}
	if _, err := svc.Update(ctx, "u1", created.ID, TodoInput{Title: "Late", ScheduledAt: now.Add(-time.Hour)}); !errors.Is(err, domain.ErrScheduleInPast) {
		t.Fatalf("expected past schedule rejected on edit, got %v", err)
	}
}

func TestTodoServiceListSorted(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	for _, offset := range []time.Duration{3 * time.Hour, time.Hour, 2 * time.Hour} {
		if _, err := svc.Create(ctx, "u1", TodoInput{Title: "x", ScheduledAt: now.Add(offset)}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	items, err := svc.List(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for i := 1; i < len(items); i++ {
		if items[i].ScheduledAt.Before(items[i-1].ScheduledAt) {
			t.Fatalf("items not sorted: %v", models.IDs(items))
		}
	}
}

func TestTodoServiceStoreError(t *testing.T) {
	repo := newFakeRepo()
	repo.err = errors.New("unavailable")

	_, err := newTestService(repo).List(context.Background(), "u1")
	if !errors.Is(err, repo.err) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestTodoServiceDelete(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	created, _ := svc.Create(ctx, "u1", TodoInput{Title: "x", ScheduledAt: now.Add(time.Hour)})
	if err := svc.Delete(ctx, "u1", created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(ctx, "u1", created.ID); !errors.Is(err, domain.ErrTodoNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
