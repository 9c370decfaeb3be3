package handlers

import (
	"net/http"

	"github.com/ghuser/todoreminder/pkg/auth"
	"github.com/ghuser/todoreminder/pkg/errhttp"
	"github.com/ghuser/todoreminder/pkg/httpx"
	pkgvalidator "github.com/ghuser/todoreminder/pkg/validator"
	appsvcs "github.com/ghuser/todoreminder/services/account/application/services"
)

// PutLineHandler handles PUT /account/line requests.
type PutLineHandler struct {
	svc *appsvcs.Services
}

func NewPutLineHandler(svc *appsvcs.Services) *PutLineHandler {
	return &PutLineHandler{svc: svc}
}

// Execute links the LINE user reminders are pushed to.
//
//	@Summary	Link LINE account
//	@Tags		account
//	@Accept		json
//	@Param		request	body	LinkLineRequest	true	"LINE user"
//	@Success	204
//	@Failure	400	{object}	ErrorResponse
//	@Failure	401	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/account/line [put]
func (h *PutLineHandler) Execute(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromCtx(r.Context())
	if err != nil {
		httpx.JSON(w, http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
		return
	}

	req, ok := pkgvalidator.ValidateRequest[LinkLineRequest](w, r)
	if !ok {
		return
	}

	if err := h.svc.Account.LinkLine(r.Context(), userID, req.LineUserID); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.NoContent(w)
}
