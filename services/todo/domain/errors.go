package domain

import "errors"

// Sentinel errors for the todo domain. Use errors.Is() to check these.
var (
	// ErrTodoNotFound indicates the to-do does not exist for the caller.
	ErrTodoNotFound = errors.New("todo not found")

	// ErrInvalidTodo indicates a malformed aggregate, e.g. a missing owner.
	ErrInvalidTodo = errors.New("invalid todo")

	// ErrInvalidTitle indicates the title violates domain constraints.
	ErrInvalidTitle = errors.New("invalid title")

	// ErrScheduleInPast indicates scheduled_at is not strictly in the future.
	ErrScheduleInPast = errors.New("scheduled time must be in the future")

	// ErrInvalidLocation indicates a coordinate outside the valid range.
	ErrInvalidLocation = errors.New("invalid location")
)
