// Package errhttp maps domain sentinel errors to HTTP status codes.
package errhttp

import (
	"context"
	"errors"
	"net/http"

	"github.com/ghuser/todoreminder/pkg/auth"
	"github.com/ghuser/todoreminder/pkg/httpx"
	accountdomain "github.com/ghuser/todoreminder/services/account/domain"
	tododomain "github.com/ghuser/todoreminder/services/todo/domain"
)

// statuses is matched in order with errors.Is; the first hit wins.
// Add a row for each new sentinel a handler can return.
var statuses = []struct {
	err    error
	status int
}{
	{auth.ErrUserIDNotFound, http.StatusUnauthorized},
	{accountdomain.ErrInvalidCredentials, http.StatusUnauthorized},
	{tododomain.ErrTodoNotFound, http.StatusNotFound},
	{accountdomain.ErrUserNotFound, http.StatusNotFound},
	{accountdomain.ErrEmailTaken, http.StatusConflict},
	{tododomain.ErrInvalidTitle, http.StatusUnprocessableEntity},
	{tododomain.ErrScheduleInPast, http.StatusUnprocessableEntity},
	{tododomain.ErrInvalidLocation, http.StatusUnprocessableEntity},
	{tododomain.ErrInvalidTodo, http.StatusUnprocessableEntity},
	{context.DeadlineExceeded, http.StatusServiceUnavailable},
}

// Status returns the HTTP status for err, 500 when nothing matches.
func Status(err error) int {
	for _, s := range statuses {
		if errors.Is(err, s.err) {
			return s.status
		}
	}
	return http.StatusInternalServerError
}

// WriteError writes err as a JSON error with the status from Status. The
// message of a 5xx is replaced so storage details do not reach the client.
func WriteError(w http.ResponseWriter, err error) {
	status := Status(err)
	httpx.JSONError(w, status, httpx.SafeError(err, status, true))
}
