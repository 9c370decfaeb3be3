package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/todoreminder/pkg/auth"
	"github.com/ghuser/todoreminder/pkg/errhttp"
	"github.com/ghuser/todoreminder/pkg/httpx"
	pkgvalidator "github.com/ghuser/todoreminder/pkg/validator"
	appsvcs "github.com/ghuser/todoreminder/services/todo/application/services"
)

// PutTodoHandler handles PUT /todos/{id} requests.
type PutTodoHandler struct {
	svc *appsvcs.Services
}

// NewPutTodoHandler returns a PutTodoHandler backed by the given services.
func NewPutTodoHandler(svc *appsvcs.Services) *PutTodoHandler {
	return &PutTodoHandler{svc: svc}
}

// Execute replaces a to-do. The pending reminder is replaced, not duplicated.
//
//	@Summary	Update to-do
//	@Tags		todos
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string		true	"To-do ID"
//	@Param		request	body		TodoRequest	true	"To-do"
//	@Success	200		{object}	TodoResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	401		{object}	ErrorResponse
//	@Failure	404		{object}	ErrorResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/todos/{id} [put]
func (h *PutTodoHandler) Execute(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromCtx(r.Context())
	if err != nil {
		httpx.JSON(w, http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
		return
	}

	req, ok := pkgvalidator.ValidateRequest[TodoRequest](w, r)
	if !ok {
		return
	}

	todo, err := h.svc.Todo.Update(r.Context(), userID, chi.URLParam(r, "id"), req.input())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(todo))
}
