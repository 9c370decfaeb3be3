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

// SignupHandler handles POST /account/signup requests.
type SignupHandler struct {
	svc   *appsvcs.Services
	store sessions.Store
	log   logger.Logger
}

// NewSignupHandler returns a SignupHandler.
func NewSignupHandler(svc *appsvcs.Services, store sessions.Store, log logger.Logger) *SignupHandler {
	return &SignupHandler{svc: svc, store: store, log: log}
}

// Execute creates an account and signs it in.
//
//	@Summary		Sign up
//	@Tags			account
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CredentialsRequest	true	"Credentials"
//	@Success		201		{object}	AccountResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Router			/account/signup [post]
func (h *SignupHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[CredentialsRequest](w, r)
	if !ok {
		return
	}

	u, err := h.svc.Account.Signup(r.Context(), req.Email, req.Password)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	if err := auth.StartSession(w, r, h.store, u.ID); err != nil {
		h.log.ErrorContext(r.Context(), "failed to start session", "error", err)
		httpx.JSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	h.log.InfoContext(r.Context(), "account created", "user_id", u.ID)
	httpx.JSON(w, http.StatusCreated, toResponse(u))
}
