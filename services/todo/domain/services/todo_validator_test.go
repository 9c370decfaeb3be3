package services

import (
	"errors"
	"testing"
	"time"

	"github.com/ghuser/todoreminder/services/todo/domain"
	"github.com/ghuser/todoreminder/services/todo/domain/models"
)

func TestValidateTitle(t *testing.T) {
	tests := []struct {
		name    string
		input   models.Title
		wantErr bool
	}{
		{"plain", "Buy milk", false},
		{"punctuation", "Pay rent (May) - 50%!", false},
		{"hangul", "우유 사기", false},
		{"double space allowed", "Buy  milk", false},
		{"only whitespace", "   ", true},
		{"leading whitespace", " Buy milk", true},
		{"trailing whitespace", "Buy milk ", true},
		{"tab", "Buy\tmilk", true},
		{"newline", "Buy\nmilk", true},
		{"null byte", "Buy milk\x00", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTitle(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateTitle(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, domain.ErrInvalidTitle) {
				t.Fatalf("expected ErrInvalidTitle, got %v", err)
			}
		})
	}
}

func TestValidateTodoForSave(t *testing.T) {
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	valid := func() *models.Todo {
		return &models.Todo{
			UserID:      "u1",
			Title:       "Buy milk",
			ScheduledAt: now.Add(time.Minute),
			Location:    models.DefaultLocation,
		}
	}

	tests := []struct {
		name    string
		todo    func() *models.Todo
		wantErr error
	}{
		{"valid", valid, nil},
		{"one second ahead", func() *models.Todo { t := valid(); t.ScheduledAt = now.Add(time.Second); return t }, nil},
		{"nil", func() *models.Todo { return nil }, domain.ErrInvalidTodo},
		{"missing owner", func() *models.Todo { t := valid(); t.UserID = ""; return t }, domain.ErrInvalidTodo},
		{"blank title", func() *models.Todo { t := valid(); t.Title = " "; return t }, domain.ErrInvalidTitle},
		{"scheduled now", func() *models.Todo { t := valid(); t.ScheduledAt = now; return t }, domain.ErrScheduleInPast},
		{"scheduled in past", func() *models.Todo { t := valid(); t.ScheduledAt = now.Add(-time.Hour); return t }, domain.ErrScheduleInPast},
		{"bad latitude", func() *models.Todo { t := valid(); t.Location.Latitude = 120; return t }, domain.ErrInvalidLocation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTodoForSave(tt.todo(), now)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
