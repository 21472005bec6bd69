package domain

import (
	"context"
	"time"
)

// EventStatus is the lifecycle status of an event.
type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusPublished EventStatus = "published"
	EventStatusCancelled EventStatus = "cancelled"
	EventStatusCompleted EventStatus = "completed"
	EventStatusPostponed EventStatus = "postponed"
)

// ValidEventStatus reports whether s is a known event status.
func ValidEventStatus(s EventStatus) bool {
	switch s {
	case EventStatusDraft, EventStatusPublished, EventStatusCancelled, EventStatusCompleted, EventStatusPostponed:
		return true
	}
	return false
}

// Registration window states derived from an event's capacity and policy fields.
const (
	RegistrationStatusClosed         = "closed"
	RegistrationStatusDeadlinePassed = "deadline_passed"
	RegistrationStatusFull           = "full"
	RegistrationStatusOpen           = "open"
)

// Event represents a community event with a registration capacity.
// CurrentAttendees is maintained exclusively by the registration subsystem.
// swagger:model Event
type Event struct {
	ID                   string      `json:"id"`
	Title                string      `json:"title"`
	Description          string      `json:"description"`
	OrganizerID          string      `json:"organizer_id"`
	StartsAt             time.Time   `json:"starts_at"`
	MaxAttendees         int         `json:"max_attendees"`
	CurrentAttendees     int         `json:"current_attendees"`
	Status               EventStatus `json:"status"`
	RegistrationOpen     bool        `json:"registration_open"`
	RegistrationDeadline *time.Time  `json:"registration_deadline,omitempty"`
	RequiresApproval     bool        `json:"requires_approval"`
	CreatedAt            time.Time   `json:"created_at"`
	UpdatedAt            time.Time   `json:"updated_at"`
}

// NewEvent returns a new Event with the given fields. ID is typically set by the repository on create.
func NewEvent(title, description, organizerID string, startsAt time.Time, maxAttendees int, status EventStatus, createdAt, updatedAt time.Time) *Event {
	return &Event{
		Title:            title,
		Description:      description,
		OrganizerID:      organizerID,
		StartsAt:         startsAt,
		MaxAttendees:     maxAttendees,
		Status:           status,
		RegistrationOpen: true,
		CreatedAt:        createdAt,
		UpdatedAt:        updatedAt,
	}
}

// AvailableSpots returns the remaining registration capacity.
func (e *Event) AvailableSpots() int {
	return e.MaxAttendees - e.CurrentAttendees
}

// RegistrationStatus derives the registration window state at the given time.
// Precedence: closed, deadline_passed, full, open.
func (e *Event) RegistrationStatus(now time.Time) string {
	if !e.RegistrationOpen {
		return RegistrationStatusClosed
	}
	if e.RegistrationDeadline != nil && now.After(*e.RegistrationDeadline) {
		return RegistrationStatusDeadlinePassed
	}
	if e.AvailableSpots() <= 0 {
		return RegistrationStatusFull
	}
	return RegistrationStatusOpen
}

// CheckEligibility is the read-only gate for registration attempts. The first
// failing check wins; on failure it returns a RegistrationDeniedError with the
// user-facing reason.
func (e *Event) CheckEligibility(now time.Time) error {
	if !e.RegistrationOpen {
		return &RegistrationDeniedError{Reason: "Registration is closed"}
	}
	if e.RegistrationDeadline != nil && now.After(*e.RegistrationDeadline) {
		return &RegistrationDeniedError{Reason: "Registration deadline has passed"}
	}
	if e.AvailableSpots() <= 0 {
		return &RegistrationDeniedError{Reason: "Event is full"}
	}
	if e.Status != EventStatusPublished {
		return &RegistrationDeniedError{Reason: "Event is not published"}
	}
	return nil
}

// UpdateEventParams enumerates the mutable event fields. Nil means "leave unchanged".
type UpdateEventParams struct {
	Title                *string
	Description          *string
	StartsAt             *time.Time
	MaxAttendees         *int
	RegistrationOpen     *bool
	RegistrationDeadline *time.Time
	RequiresApproval     *bool
}

// EventFilter narrows event listings.
type EventFilter struct {
	Status      EventStatus
	OrganizerID string
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context, filter EventFilter, params PaginationParams) ([]*Event, int, error)
	Update(ctx context.Context, eventID string, params UpdateEventParams) (*Event, error)
	SetStatus(ctx context.Context, eventID string, status EventStatus) (*Event, error)
	// Delete removes the event; its registrations are removed by cascade.
	Delete(ctx context.Context, id string) error
}

// EventService defines organizer-facing event operations.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event) error
	GetEvent(ctx context.Context, eventID string) (*Event, error)
	ListPublishedEvents(ctx context.Context, params PaginationParams) ([]*Event, int, error)
	ListMyEvents(ctx context.Context, organizerID string, params PaginationParams) ([]*Event, int, error)
	UpdateEvent(ctx context.Context, eventID, callerID string, params UpdateEventParams) (*Event, error)
	ChangeEventStatus(ctx context.Context, eventID, callerID string, status EventStatus) (*Event, error)
	DeleteEvent(ctx context.Context, eventID, callerID string) error
}
