package handlers

import (
	"net/http"

	"github.com/ghuser/todoreminder/pkg/auth"
	"github.com/ghuser/todoreminder/pkg/errhttp"
	"github.com/ghuser/todoreminder/pkg/httpx"
	pkgvalidator "github.com/ghuser/todoreminder/pkg/validator"
	appsvcs "github.com/ghuser/todoreminder/services/todo/application/services"
)

// PostTodoHandler handles POST /todos requests.
type PostTodoHandler struct {
	svc *appsvcs.Services
}

// NewPostTodoHandler returns a PostTodoHandler backed by the given services.
func NewPostTodoHandler(svc *appsvcs.Services) *PostTodoHandler {
	return &PostTodoHandler{svc: svc}
}

// Execute creates a to-do. Its reminder is scheduled asynchronously from
// the todo.changed event.
//
//	@Summary		Create to-do
//	@Description	Creates a to-do; date must be in the future
//	@Tags			todos
//	@Accept			json
//	@Produce		json
//	@Param			request	body		TodoRequest	true	"To-do"
//	@Success		201		{object}	TodoResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/todos [post]
func (h *PostTodoHandler) Execute(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromCtx(r.Context())
	if err != nil {
		httpx.JSON(w, http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
		return
	}

	req, ok := pkgvalidator.ValidateRequest[TodoRequest](w, r)
	if !ok {
		return
	}

	todo, err := h.svc.Todo.Create(r.Context(), userID, req.input())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.Created(w, "/api/todos/"+todo.ID, toResponse(todo))
}
