package models

import (
	"testing"
	"time"
)

var base = time.Date(2030, 7, 1, 9, 0, 0, 0, time.UTC)

func todo(id, title string, at time.Time) *Todo {
	return &Todo{ID: id, UserID: "u1", Title: Title(title), ScheduledAt: at, Location: DefaultLocation}
}

func TestNewTodo_TruncatesToSeconds(t *testing.T) {
	at := base.Add(750 * time.Millisecond)
	got := NewTodo("u1", "Buy milk", at, "", DefaultLocation)

	if !got.ScheduledAt.Equal(base) {
		t.Fatalf("expected %v, got %v", base, got.ScheduledAt)
	}
	if got.ID != "" {
		t.Fatalf("expected unsaved todo to have no id, got %q", got.ID)
	}
}

func TestTodo_Equal(t *testing.T) {
	a := todo("a", "Buy milk", base)

	tests := []struct {
		name   string
		mutate func(*Todo)
		want   bool
	}{
		{"identical", func(*Todo) {}, true},
		{"same instant other zone", func(o *Todo) { o.ScheduledAt = base.In(time.FixedZone("KST", 9*3600)) }, true},
		{"different owner ignored", func(o *Todo) { o.UserID = "u2" }, true},
		{"different id", func(o *Todo) { o.ID = "b" }, false},
		{"different title", func(o *Todo) { o.Title = "Buy bread" }, false},
		{"different time", func(o *Todo) { o.ScheduledAt = base.Add(time.Second) }, false},
		{"different image", func(o *Todo) { o.ImageURL = "gs://b/a.jpg" }, false},
		{"different latitude", func(o *Todo) { o.Location.Latitude = 0 }, false},
		{"different longitude", func(o *Todo) { o.Location.Longitude = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := *a
			tt.mutate(&b)
			if got := a.Equal(&b); got != tt.want {
				t.Fatalf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("nil handling", func(t *testing.T) {
		var n *Todo
		if !n.Equal(nil) {
			t.Fatal("nil must equal nil")
		}
		if a.Equal(nil) || n.Equal(a) {
			t.Fatal("nil must not equal a value")
		}
	})
}

func TestItemsEqual(t *testing.T) {
	a := todo("a", "Buy milk", base)
	b := todo("b", "Call mom", base.Add(time.Hour))

	tests := []struct {
		name string
		x, y []*Todo
		want bool
	}{
		{"both empty", nil, []*Todo{}, true},
		{"same order", []*Todo{a, b}, []*Todo{a, b}, true},
		{"order matters", []*Todo{a, b}, []*Todo{b, a}, false},
		{"different length", []*Todo{a}, []*Todo{a, b}, false},
		{"field change", []*Todo{a}, []*Todo{todo("a", "Buy oat milk", base)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ItemsEqual(tt.x, tt.y); got != tt.want {
				t.Fatalf("ItemsEqual() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSortByScheduledAt(t *testing.T) {
	late := todo("late", "x", base.Add(2*time.Hour))
	early := todo("early", "x", base)
	tieB := todo("b", "x", base.Add(time.Hour))
	tieA := todo("a", "x", base.Add(time.Hour))
	in := []*Todo{late, tieB, early, tieA}

	got := IDs(SortByScheduledAt(in))
	want := []string{"early", "a", "b", "late"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if in[0] != late {
		t.Fatal("SortByScheduledAt must not reorder its input")
	}
}
