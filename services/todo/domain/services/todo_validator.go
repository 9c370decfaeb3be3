// Package services contains stateless domain services for the todo bounded context.
package services

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/ghuser/todoreminder/services/todo/domain"
	"github.com/ghuser/todoreminder/services/todo/domain/models"
)

// ValidateTitle applies the business rules on top of the Title constructor:
// not blank, no leading or trailing whitespace, no control characters.
func ValidateTitle(title models.Title) error {
	s := title.String()

	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: must not be blank", domain.ErrInvalidTitle)
	}
	if s != strings.TrimSpace(s) {
		return fmt.Errorf("%w: must not have leading or trailing whitespace", domain.ErrInvalidTitle)
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: must not contain control characters", domain.ErrInvalidTitle)
		}
	}
	return nil
}

// ValidateTodoForSave checks a to-do before it is created or edited. The
// scheduled time must be strictly after now.
func ValidateTodoForSave(todo *models.Todo, now time.Time) error {
	if todo == nil {
		return fmt.Errorf("%w: todo cannot be nil", domain.ErrInvalidTodo)
	}
	if todo.UserID == "" {
		return fmt.Errorf("%w: user_id must be set", domain.ErrInvalidTodo)
	}
	if err := ValidateTitle(todo.Title); err != nil {
		return err
	}
	if !todo.ScheduledAt.After(now) {
		return fmt.Errorf("%w: %s is not after %s", domain.ErrScheduleInPast,
			todo.ScheduledAt.Format(time.RFC3339), now.UTC().Format(time.RFC3339))
	}
	if err := todo.Location.Validate(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidLocation, err)
	}
	return nil
}
