package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/todoreminder/pkg/auth"
	"github.com/ghuser/todoreminder/pkg/errhttp"
	"github.com/ghuser/todoreminder/pkg/httpx"
	appsvcs "github.com/ghuser/todoreminder/services/todo/application/services"
)

// GetTodoHandler handles GET /todos/{id} requests.
type GetTodoHandler struct {
	svc *appsvcs.Services
}

// NewGetTodoHandler returns a GetTodoHandler backed by the given services.
func NewGetTodoHandler(svc *appsvcs.Services) *GetTodoHandler {
	return &GetTodoHandler{svc: svc}
}

// Execute returns one to-do.
//
//	@Summary	Get to-do
//	@Tags		todos
//	@Produce	json
//	@Param		id	path		string	true	"To-do ID"
//	@Success	200	{object}	TodoResponse
//	@Failure	401	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/todos/{id} [get]
func (h *GetTodoHandler) Execute(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromCtx(r.Context())
	if err != nil {
		httpx.JSON(w, http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
		return
	}

	todo, err := h.svc.Todo.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(todo))
}
