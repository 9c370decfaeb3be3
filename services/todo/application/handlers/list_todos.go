package handlers

import (
	"net/http"

	"github.com/ghuser/todoreminder/pkg/auth"
	"github.com/ghuser/todoreminder/pkg/errhttp"
	"github.com/ghuser/todoreminder/pkg/httpx"
	appsvcs "github.com/ghuser/todoreminder/services/todo/application/services"
)

// ListTodosHandler handles GET /todos requests.
type ListTodosHandler struct {
	svc *appsvcs.Services
}

// NewListTodosHandler returns a ListTodosHandler backed by the given services.
func NewListTodosHandler(svc *appsvcs.Services) *ListTodosHandler {
	return &ListTodosHandler{svc: svc}
}

// Execute lists the caller's to-dos.
//
//	@Summary		List to-dos
//	@Description	Returns the caller's to-dos ordered by date, earliest first
//	@Tags			todos
//	@Produce		json
//	@Success		200	{object}	TodoListResponse
//	@Failure		401	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/todos [get]
func (h *ListTodosHandler) Execute(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromCtx(r.Context())
	if err != nil {
		httpx.JSON(w, http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
		return
	}

	items, err := h.svc.Todo.List(r.Context(), userID)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	resp := TodoListResponse{Items: make([]TodoResponse, len(items))}
	for i, t := range items {
		resp.Items[i] = toResponse(t)
	}
	httpx.JSON(w, http.StatusOK, resp)
}
