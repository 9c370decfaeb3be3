package handlers

import (
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/ghuser/todoreminder/pkg/auth"
	"github.com/ghuser/todoreminder/pkg/errhttp"
	"github.com/ghuser/todoreminder/pkg/httpx"
	"github.com/ghuser/todoreminder/pkg/logger"
	pkgvalidator "github.com/ghuser/todoreminder/pkg/validator"
	appsvcs "github.com/ghuser/todoreminder/services/account/application/services"
)

// LoginHandler handles POST /account/login requests.
type LoginHandler struct {
	svc   *appsvcs.Services
	store sessions.Store
	log   logger.Logger
}

// NewLoginHandler returns a LoginHandler.
func NewLoginHandler(svc *appsvcs.Services, store sessions.Store, log logger.Logger) *LoginHandler {
	return &LoginHandler{svc: svc, store: store, log: log}
}

// Execute verifies credentials and starts a session.
//
//	@Summary		Log in
//	@Tags			account
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CredentialsRequest	true	"Credentials"
//	@Success		200		{object}	AccountResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Router			/account/login [post]
func (h *LoginHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[CredentialsRequest](w, r)
	if !ok {
		return
	}

	u, err := h.svc.Account.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	if err := auth.StartSession(w, r, h.store, u.ID); err != nil {
		h.log.ErrorContext(r.Context(), "failed to start session", "error", err)
		httpx.JSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(u))
}
