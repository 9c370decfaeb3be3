package domain

import "errors"

// Sentinel errors for the account domain. Use errors.Is() to check these.
var (
	// ErrEmailTaken indicates another account already uses the e-mail address.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned for an unknown e-mail or a wrong
	// password, without saying which.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUserNotFound indicates the account does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrLineNotLinked indicates the account has no LINE recipient to push to.
	ErrLineNotLinked = errors.New("line account not linked")
)
