package domain

import "errors"

// Sentinel errors for the notification domain. Use errors.Is() to check these.
var (
	// ErrTriggerElapsed is reported for a to-do whose scheduled time is not
	// after now. No notification is scheduled for it.
	ErrTriggerElapsed = errors.New("trigger time has already passed")

	// ErrInvalidNotification indicates a notification without an owner or id.
	ErrInvalidNotification = errors.New("invalid notification")
)
