package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ghuser/todoreminder/services/todo/domain"
	"github.com/ghuser/todoreminder/services/todo/domain/models"
	"github.com/ghuser/todoreminder/services/todo/domain/repositories"
	domainsvcs "github.com/ghuser/todoreminder/services/todo/domain/services"
)

// TodoInput is the editable part of a to-do as submitted by the client.
// Nil coordinates fall back to models.DefaultLocation.
type TodoInput struct {
	Title       string
	ScheduledAt time.Time
	ImageURL    string
	Latitude    *float64
	Longitude   *float64
}

// TodoService validates to-dos and hands them to the item store. Validation
// failures never reach the store, and so never reach the reminder scheduler.
type TodoService struct {
	repo repositories.TodoRepository
	now  func() time.Time
}

// NewTodoService returns a TodoService using the wall clock.
func NewTodoService(repo repositories.TodoRepository) *TodoService {
	return &TodoService{repo: repo, now: time.Now}
}

// Create validates in and stores a new to-do for userID.
func (s *TodoService) Create(ctx context.Context, userID string, in TodoInput) (*models.Todo, error) {
	todo, err := s.build(userID, in)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.Create(ctx, userID, todo); err != nil {
		return nil, fmt.Errorf("create todo: %w", err)
	}
	return todo, nil
}

// Update validates in and replaces the to-do id. Edits follow the same rules
// as creation, so the new time must also be in the future.
func (s *TodoService) Update(ctx context.Context, userID, id string, in TodoInput) (*models.Todo, error) {
	todo, err := s.build(userID, in)
	if err != nil {
		return nil, err
	}
	todo.ID = id
	if err := s.repo.Update(ctx, userID, id, todo); err != nil {
		return nil, fmt.Errorf("update todo: %w", err)
	}
	return todo, nil
}

// Delete removes the to-do id.
func (s *TodoService) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	return nil
}

// Get returns one to-do of userID.
func (s *TodoService) Get(ctx context.Context, userID, id string) (*models.Todo, error) {
	todo, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("get todo: %w", err)
	}
	return todo, nil
}

// List returns the user's to-dos in display order (ascending scheduled time).
func (s *TodoService) List(ctx context.Context, userID string) ([]*models.Todo, error) {
	items, err := s.repo.FetchAll(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return models.SortByScheduledAt(items), nil
}

func (s *TodoService) build(userID string, in TodoInput) (*models.Todo, error) {
	title, err := models.NewTitle(strings.TrimSpace(in.Title))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidTitle, err)
	}
	loc, err := models.NewLocation(in.Latitude, in.Longitude)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidLocation, err)
	}
	todo := models.NewTodo(userID, title, in.ScheduledAt, strings.TrimSpace(in.ImageURL), loc)
	if err := domainsvcs.ValidateTodoForSave(todo, s.now()); err != nil {
		return nil, err
	}
	return todo, nil
}
