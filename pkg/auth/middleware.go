package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/ghuser/todoreminder/pkg/httpx"
	"github.com/ghuser/todoreminder/pkg/logger"
)

const (
	sessionName      = "todoreminder_session"
	sessionUserIDKey = "user_id"
)

// RequireAuth rejects requests without a session carrying a user id with
// 401, and otherwise puts the user id in the request context for
// UserIDFromCtx.
func RequireAuth(store sessions.Store, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := store.Get(r, sessionName)
			if err != nil {
				log.WarnContext(r.Context(), "invalid session cookie", "error", err)
				httpx.JSONError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			userID, ok := session.Values[sessionUserIDKey].(string)
			if !ok || userID == "" {
				log.WarnContext(r.Context(), "session missing user_id")
				httpx.JSONError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			ctx := logger.WithAttrs(WithUserID(r.Context(), userID), "user_id", userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// regenerator is implemented by stores that can reissue a session id.
type regenerator interface {
	Regenerate(ctx context.Context, session *sessions.Session) error
}

// StartSession binds userID to the caller's session and writes the cookie.
// Stores implementing Regenerate get a fresh session id first.
func StartSession(w http.ResponseWriter, r *http.Request, store sessions.Store, userID string) error {
	session, err := store.Get(r, sessionName)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if rg, ok := store.(regenerator); ok {
		if err := rg.Regenerate(r.Context(), session); err != nil {
			return fmt.Errorf("regenerate session: %w", err)
		}
	}
	session.Values[sessionUserIDKey] = userID
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// EndSession deletes the caller's session and expires the cookie.
func EndSession(w http.ResponseWriter, r *http.Request, store sessions.Store) error {
	session, err := store.Get(r, sessionName)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
