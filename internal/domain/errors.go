package domain

import "errors"

// Sentinel errors shared by services, repositories and the HTTP layer.
var (
	ErrNotFound              = errors.New("not found")
	ErrValidation            = errors.New("validation failed")
	ErrCapacityExceeded      = errors.New("event is at full capacity")
	ErrDuplicateRegistration = errors.New("already registered for this event")
	ErrInvalidInput          = errors.New("invalid input")
)
