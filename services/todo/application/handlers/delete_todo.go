package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/todoreminder/pkg/auth"
	"github.com/ghuser/todoreminder/pkg/errhttp"
	"github.com/ghuser/todoreminder/pkg/httpx"
	appsvcs "github.com/ghuser/todoreminder/services/todo/application/services"
)

// DeleteTodoHandler handles DELETE /todos/{id} requests.
type DeleteTodoHandler struct {
	svc *appsvcs.Services
}

// NewDeleteTodoHandler returns a DeleteTodoHandler backed by the given services.
func NewDeleteTodoHandler(svc *appsvcs.Services) *DeleteTodoHandler {
	return &DeleteTodoHandler{svc: svc}
}

// Execute deletes a to-do and, through the todo.changed event, its reminder.
//
//	@Summary	Delete to-do
//	@Tags		todos
//	@Param		id	path	string	true	"To-do ID"
//	@Success	204
//	@Failure	401	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/todos/{id} [delete]
func (h *DeleteTodoHandler) Execute(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromCtx(r.Context())
	if err != nil {
		httpx.JSON(w, http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
		return
	}

	if err := h.svc.Todo.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.NoContent(w)
}
