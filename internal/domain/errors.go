package domain

import "errors"

// Sentinel errors shared across services and repositories.
var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidInput      = errors.New("invalid input")
	ErrAlreadyRegistered = errors.New("already registered for this event")
	ErrEventFull         = errors.New("event is full")
	ErrDuplicateTicket   = errors.New("ticket number already exists")
)

// RegistrationDeniedError is returned when an eligibility check rejects a
// registration attempt. Reason is the user-facing message (e.g. "Event is full").
type RegistrationDeniedError struct {
	Reason string
}

func (e *RegistrationDeniedError) Error() string {
	return e.Reason
}
