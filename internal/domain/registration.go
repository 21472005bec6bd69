package domain

import (
	"context"
	"errors"
	"time"
)

// RegistrationStatus is the lifecycle status of a registration.
type RegistrationStatus string

const (
	RegStatusPending   RegistrationStatus = "pending"
	RegStatusApproved  RegistrationStatus = "approved"
	RegStatusRejected  RegistrationStatus = "rejected"
	RegStatusCancelled RegistrationStatus = "cancelled"
	RegStatusAttended  RegistrationStatus = "attended"
	RegStatusNoShow    RegistrationStatus = "no_show"
)

// Errors for registration state transitions and attendance tracking.
var (
	ErrInvalidTransition = errors.New("invalid registration status transition")
	ErrNotCheckedIn      = errors.New("attendee has not checked in")
	ErrAlreadyCheckedIn  = errors.New("attendee is already checked in")
)

// regTransitions holds the allowed status transitions. Rejected, cancelled,
// attended and no_show are terminal.
var regTransitions = map[RegistrationStatus][]RegistrationStatus{
	RegStatusPending:  {RegStatusApproved, RegStatusRejected, RegStatusCancelled},
	RegStatusApproved: {RegStatusCancelled, RegStatusAttended, RegStatusNoShow},
}

// Attendance tracks on-site check-in and check-out for a registration.
type Attendance struct {
	CheckedIn       bool       `json:"checked_in"`
	CheckedInAt     *time.Time `json:"checked_in_at,omitempty"`
	CheckedOut      bool       `json:"checked_out"`
	CheckedOutAt    *time.Time `json:"checked_out_at,omitempty"`
	DurationMinutes int        `json:"duration_minutes"`
}

// Payment records the payment state attached to a registration. Processing
// itself happens outside this system.
type Payment struct {
	Required bool       `json:"required"`
	Amount   float64    `json:"amount"`
	Currency string     `json:"currency"`
	Paid     bool       `json:"paid"`
	PaidAt   *time.Time `json:"paid_at,omitempty"`
}

// Registration represents a user's registration for an event. At most one
// registration exists per (event, user) pair; the ticket number is unique
// across all registrations.
// swagger:model Registration
type Registration struct {
	ID               string             `json:"id"`
	EventID          string             `json:"event_id"`
	UserID           string             `json:"user_id"`
	TicketNumber     string             `json:"ticket_number"`
	Status           RegistrationStatus `json:"status"`
	RegistrationData map[string]any     `json:"registration_data,omitempty"`
	Attendance       Attendance         `json:"attendance"`
	Payment          Payment            `json:"payment"`
	ConfirmationSent bool               `json:"confirmation_sent"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// NewRegistration returns a new Registration. ID is typically set by the repository on create.
func NewRegistration(eventID, userID, ticketNumber string, status RegistrationStatus, data map[string]any, createdAt, updatedAt time.Time) *Registration {
	return &Registration{
		EventID:          eventID,
		UserID:           userID,
		TicketNumber:     ticketNumber,
		Status:           status,
		RegistrationData: data,
		CreatedAt:        createdAt,
		UpdatedAt:        updatedAt,
	}
}

// CanTransition reports whether the registration may move to the given status.
func (r *Registration) CanTransition(to RegistrationStatus) bool {
	for _, allowed := range regTransitions[r.Status] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Transition moves the registration to the given status, or returns
// ErrInvalidTransition if the state machine forbids it.
func (r *Registration) Transition(to RegistrationStatus) error {
	if !r.CanTransition(to) {
		return ErrInvalidTransition
	}
	r.Status = to
	return nil
}

// CheckIn marks the attendee as checked in at the given time. A second
// check-in is rejected with ErrAlreadyCheckedIn.
func (r *Registration) CheckIn(now time.Time) error {
	if r.Attendance.CheckedIn {
		return ErrAlreadyCheckedIn
	}
	r.Attendance.CheckedIn = true
	r.Attendance.CheckedInAt = &now
	return nil
}

// CheckOut marks the attendee as checked out and computes the attendance
// duration as whole minutes between check-in and check-out. It fails with
// ErrNotCheckedIn, mutating nothing, if the attendee never checked in.
func (r *Registration) CheckOut(now time.Time) error {
	if !r.Attendance.CheckedIn || r.Attendance.CheckedInAt == nil {
		return ErrNotCheckedIn
	}
	r.Attendance.CheckedOut = true
	r.Attendance.CheckedOutAt = &now
	r.Attendance.DurationMinutes = int(now.Sub(*r.Attendance.CheckedInAt) / time.Minute)
	return nil
}

// RegistrationRepository defines storage operations for registrations.
//
// Create must claim a spot on the event and insert the registration in a
// single transaction: the increment succeeds only while current_attendees is
// below max_attendees (ErrEventFull otherwise), and a duplicate (event, user)
// pair or ticket number rolls the claim back (ErrAlreadyRegistered /
// ErrDuplicateTicket).
type RegistrationRepository interface {
	Create(ctx context.Context, reg *Registration) error
	GetByID(ctx context.Context, id string) (*Registration, error)
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*Registration, error)
	ListByEventID(ctx context.Context, eventID string, params PaginationParams) ([]*Registration, int, error)
	ListByUserID(ctx context.Context, userID string) ([]*Registration, error)
	UpdateStatus(ctx context.Context, id string, status RegistrationStatus) error
	// CancelAndRelease sets the status to cancelled and decrements the event
	// counter in one transaction. Used only when the release-on-cancel policy
	// is enabled.
	CancelAndRelease(ctx context.Context, id string) error
	UpdateAttendance(ctx context.Context, id string, att Attendance) error
	SetConfirmationSent(ctx context.Context, id string, sent bool) error
	// Delete removes the registration and decrements the event counter in one
	// transaction (hard delete; cancellation does not go through here).
	Delete(ctx context.Context, id string) error
}

// RegistrationWithEvent bundles a registration with its related event.
type RegistrationWithEvent struct {
	Registration *Registration `json:"registration"`
	Event        *Event        `json:"event"`
}

// RegistrationService defines the registration workflow operations.
type RegistrationService interface {
	// Register runs the full workflow: eligibility, duplicate guard, ticket
	// issuance, transactional capacity claim, and best-effort confirmation email.
	Register(ctx context.Context, eventID, userID string, data map[string]any) (*Registration, error)
	// Cancel flips the caller's registration to cancelled. Whether the spot is
	// released is a service-level policy.
	Cancel(ctx context.Context, eventID, userID string) (*Registration, error)
	// Remove hard-deletes a registration and releases its spot. Organizer or admin only.
	Remove(ctx context.Context, eventID, registrationID, callerID string) error
	Approve(ctx context.Context, eventID, registrationID, callerID string) (*Registration, error)
	Reject(ctx context.Context, eventID, registrationID, callerID string) (*Registration, error)
	CheckIn(ctx context.Context, eventID, registrationID, callerID string) (*Registration, error)
	CheckOut(ctx context.Context, eventID, registrationID, callerID string) (*Registration, error)
	ListEventRegistrations(ctx context.Context, eventID, callerID string, params PaginationParams) ([]*Registration, int, error)
	ListMyRegistrations(ctx context.Context, userID string) ([]*RegistrationWithEvent, error)
}
