package handlers

import (
	"time"

	appsvcs "github.com/ghuser/todoreminder/services/todo/application/services"
	"github.com/ghuser/todoreminder/services/todo/domain/models"
)

// TodoRequest is the request body for POST /todos and PUT /todos/{id}.
// Latitude and longitude are optional; omitting both uses the default location.
type TodoRequest struct {
	Title       string    `json:"title"                validate:"required,notblank,printable,max=255" example:"Buy milk"`
	ScheduledAt time.Time `json:"date"                 validate:"required,future"           example:"2030-01-15T10:30:00Z"`
	ImageURL    string    `json:"imageURL,omitempty"   validate:"omitempty,max=2048"        example:"images/u1/4f1c.jpg"`
	Latitude    *float64  `json:"latitude,omitempty"   validate:"omitempty,gte=-90,lte=90"  example:"37.5665"`
	Longitude   *float64  `json:"longitude,omitempty"  validate:"omitempty,gte=-180,lte=180" example:"126.978"`
} // @name TodoRequest

func (r *TodoRequest) input() appsvcs.TodoInput {
	return appsvcs.TodoInput{
		Title:       r.Title,
		ScheduledAt: r.ScheduledAt,
		ImageURL:    r.ImageURL,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
	}
}

// TodoResponse is one to-do as returned by the API, using the same field
// names the item store persists.
type TodoResponse struct {
	ID          string    `json:"id"        example:"123e4567-e89b-12d3-a456-426614174000"`
	Title       string    `json:"title"     example:"Buy milk"`
	ScheduledAt time.Time `json:"date"      example:"2030-01-15T10:30:00Z"`
	ImageURL    string    `json:"imageURL"  example:"images/u1/4f1c.jpg"`
	Latitude    float64   `json:"latitude"  example:"37.5665"`
	Longitude   float64   `json:"longitude" example:"126.978"`
} // @name TodoResponse

// TodoListResponse wraps GET /todos results, ordered by date.
type TodoListResponse struct {
	Items []TodoResponse `json:"items"`
} // @name TodoListResponse

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error string `json:"error" example:"todo not found"`
} // @name ErrorResponse

func toResponse(t *models.Todo) TodoResponse {
	return TodoResponse{
		ID:          t.ID,
		Title:       t.Title.String(),
		ScheduledAt: t.ScheduledAt,
		ImageURL:    t.ImageURL,
		Latitude:    t.Location.Latitude,
		Longitude:   t.Location.Longitude,
	}
}
