package models

import (
	"sort"
	"time"
)

// Todo is the aggregate of this bounded context: one reminder-bearing to-do
// owned by a user.
type Todo struct {
	// ID is assigned by the item store on create and never reused.
	ID          string
	UserID      string
	Title       Title
	ScheduledAt time.Time
	// ImageURL references an image held elsewhere; empty when none.
	ImageURL string
	Location Location
}

// NewTodo builds an unsaved Todo. scheduledAt is truncated to whole seconds,
// the precision reminders fire at.
func NewTodo(userID string, title Title, scheduledAt time.Time, imageURL string, loc Location) *Todo {
	return &Todo{
		UserID:      userID,
		Title:       title,
		ScheduledAt: scheduledAt.UTC().Truncate(time.Second),
		ImageURL:    imageURL,
		Location:    loc,
	}
}

// Equal compares id, title, scheduled time, image and coordinate.
func (t *Todo) Equal(o *Todo) bool {
	if t == nil || o == nil {
		return t == o
	}
	return t.ID == o.ID &&
		t.Title == o.Title &&
		t.ScheduledAt.Equal(o.ScheduledAt) &&
		t.ImageURL == o.ImageURL &&
		t.Location == o.Location
}

// ItemsEqual reports whether a and b hold equal to-dos in the same order.
func ItemsEqual(a, b []*Todo) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// SortByScheduledAt returns a copy of items ordered by ascending scheduled
// time, ties broken by id.
func SortByScheduledAt(items []*Todo) []*Todo {
	out := make([]*Todo, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].ScheduledAt.Equal(out[j].ScheduledAt) {
			return out[i].ScheduledAt.Before(out[j].ScheduledAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// IDs returns the ids of items in order.
func IDs(items []*Todo) []string {
	ids := make([]string, len(items))
	for i, t := range items {
		ids[i] = t.ID
	}
	return ids
}
