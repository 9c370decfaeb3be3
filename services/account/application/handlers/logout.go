package handlers

import (
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/ghuser/todoreminder/pkg/auth"
	"github.com/ghuser/todoreminder/pkg/httpx"
	"github.com/ghuser/todoreminder/pkg/logger"
)

// LogoutHandler handles POST /account/logout requests.
type LogoutHandler struct {
	store sessions.Store
	log   logger.Logger
}

func NewLogoutHandler(store sessions.Store, log logger.Logger) *LogoutHandler {
	return &LogoutHandler{store: store, log: log}
}

// Execute ends the caller's session.
//
//	@Summary	Log out
//	@Tags		account
//	@Success	204
//	@Failure	401	{object}	ErrorResponse
//	@Router		/account/logout [post]
func (h *LogoutHandler) Execute(w http.ResponseWriter, r *http.Request) {
	if err := auth.EndSession(w, r, h.store); err != nil {
		h.log.ErrorContext(r.Context(), "failed to end session", "error", err)
		httpx.JSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	httpx.NoContent(w)
}
