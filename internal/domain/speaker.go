package domain

import (
	"context"
	"errors"
	"time"
)

// ErrAlreadyApplied is returned when a user submits a second speaker
// application for the same event.
var ErrAlreadyApplied = errors.New("already applied to speak at this event")

// SpeakerApplicationStatus is the review status of a speaker application.
type SpeakerApplicationStatus string

const (
	SpeakerStatusPending  SpeakerApplicationStatus = "pending"
	SpeakerStatusApproved SpeakerApplicationStatus = "approved"
	SpeakerStatusRejected SpeakerApplicationStatus = "rejected"
)

// SpeakerApplication represents a user's proposal to speak at an event.
// At most one application exists per (event, user) pair.
// swagger:model SpeakerApplication
type SpeakerApplication struct {
	ID        string                   `json:"id"`
	EventID   string                   `json:"event_id"`
	UserID    string                   `json:"user_id"`
	Topic     string                   `json:"topic"`
	Abstract  string                   `json:"abstract"`
	Bio       string                   `json:"bio"`
	Status    SpeakerApplicationStatus `json:"status"`
	CreatedAt time.Time                `json:"created_at"`
	UpdatedAt time.Time                `json:"updated_at"`
}

// NewSpeakerApplication returns a new pending SpeakerApplication. ID is typically set by the repository on create.
func NewSpeakerApplication(eventID, userID, topic, abstract, bio string, createdAt, updatedAt time.Time) *SpeakerApplication {
	return &SpeakerApplication{
		EventID:   eventID,
		UserID:    userID,
		Topic:     topic,
		Abstract:  abstract,
		Bio:       bio,
		Status:    SpeakerStatusPending,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// SpeakerApplicationRepository defines storage operations for speaker applications.
type SpeakerApplicationRepository interface {
	Create(ctx context.Context, app *SpeakerApplication) error
	GetByID(ctx context.Context, id string) (*SpeakerApplication, error)
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*SpeakerApplication, error)
	ListByEventID(ctx context.Context, eventID string, params PaginationParams) ([]*SpeakerApplication, int, error)
	UpdateStatus(ctx context.Context, id string, status SpeakerApplicationStatus) (*SpeakerApplication, error)
}

// SpeakerService defines speaker application operations.
type SpeakerService interface {
	Apply(ctx context.Context, eventID, userID, topic, abstract, bio string) (*SpeakerApplication, error)
	Review(ctx context.Context, eventID, applicationID, callerID string, approve bool) (*SpeakerApplication, error)
	ListApplications(ctx context.Context, eventID, callerID string, params PaginationParams) ([]*SpeakerApplication, int, error)
}
