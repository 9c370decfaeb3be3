package auth

import (
	"context"
	"errors"
)

type userIDKey struct{}

// ErrUserIDNotFound means the request carries no authenticated user.
// errhttp maps it to 401.
var ErrUserIDNotFound = errors.New("user_id not found in context")

// UserIDFromCtx returns the authenticated user id set by RequireAuth.
func UserIDFromCtx(ctx context.Context) (string, error) {
	if userID, ok := ctx.Value(userIDKey{}).(string); ok && userID != "" {
		return userID, nil
	}
	return "", ErrUserIDNotFound
}

// WithUserID returns a copy of ctx carrying userID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}
