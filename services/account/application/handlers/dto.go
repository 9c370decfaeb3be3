package handlers

import "github.com/ghuser/todoreminder/services/account/domain/models"

// CredentialsRequest is the body of POST /account/signup and POST /account/login.
type CredentialsRequest struct {
	Email    string `json:"email"    validate:"required,email,max=254" example:"user@example.com"`
	Password string `json:"password" validate:"required,min=6,max=72"  example:"secret123"`
} // @name CredentialsRequest

// LinkLineRequest is the body of PUT /account/line. An empty id unlinks.
type LinkLineRequest struct {
	LineUserID string `json:"line_user_id" validate:"omitempty,startswith=U,max=64" example:"U4af4980629..."`
} // @name LinkLineRequest

// AccountResponse describes the signed-in account.
type AccountResponse struct {
	ID         string `json:"id"                     example:"123e4567-e89b-12d3-a456-426614174000"`
	Email      string `json:"email"                  example:"user@example.com"`
	LineLinked bool   `json:"line_linked"            example:"false"`
} // @name AccountResponse

// ErrorResponse is returned for failed requests.
type ErrorResponse struct {
	Error string `json:"error" example:"invalid email or password"`
} // @name AccountErrorResponse

func toResponse(u *models.User) AccountResponse {
	return AccountResponse{ID: u.ID, Email: u.Email, LineLinked: u.LineUserID != ""}
}
