package models

import (
	"strings"
	"time"
)

// User is an account that owns to-dos.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	// LineUserID is the LINE recipient reminders are pushed to; empty until linked.
	LineUserID string
	CreatedAt  time.Time
}

// NormalizeEmail trims and lower-cases an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
