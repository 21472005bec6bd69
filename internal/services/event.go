package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/TrizenCodeBase/TrizenCommunityBackend-sub000/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	roleRepo       domain.RoleRepository
	contextTimeout time.Duration
}

// NewEventService creates an EventService with the given repositories.
func NewEventService(eventRepo domain.EventRepository, roleRepo domain.RoleRepository, timeout time.Duration) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		roleRepo:       roleRepo,
		contextTimeout: timeout,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event.Title = strings.TrimSpace(event.Title)
	if event.Title == "" {
		return fmt.Errorf("%w: event title is required", domain.ErrInvalidInput)
	}
	if event.OrganizerID == "" {
		return fmt.Errorf("%w: event organizer is required", domain.ErrInvalidInput)
	}
	if event.MaxAttendees <= 0 {
		return fmt.Errorf("%w: max_attendees must be a positive integer", domain.ErrInvalidInput)
	}
	if event.Status == "" {
		event.Status = domain.EventStatusDraft
	}
	if event.Status != domain.EventStatusDraft && event.Status != domain.EventStatusPublished {
		return fmt.Errorf("%w: new events must be draft or published", domain.ErrInvalidInput)
	}
	event.CurrentAttendees = 0
	event.CreatedAt = time.Now()
	event.UpdatedAt = time.Now()

	return s.eventRepo.Create(ctx, event)
}

func (s *eventService) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) ListPublishedEvents(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, total, err := s.eventRepo.List(ctx, domain.EventFilter{Status: domain.EventStatusPublished}, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, total, nil
}

func (s *eventService) ListMyEvents(ctx context.Context, organizerID string, params domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, total, err := s.eventRepo.List(ctx, domain.EventFilter{OrganizerID: organizerID}, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, total, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, eventID, callerID string, params domain.UpdateEventParams) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if err := s.requireManager(ctx, event, callerID); err != nil {
		return nil, err
	}
	if params.MaxAttendees != nil {
		if *params.MaxAttendees <= 0 {
			return nil, fmt.Errorf("%w: max_attendees must be a positive integer", domain.ErrInvalidInput)
		}
		// Capacity may never be lowered beneath the current attendee count.
		if *params.MaxAttendees < event.CurrentAttendees {
			return nil, fmt.Errorf("%w: max_attendees cannot be below current attendees (%d)", domain.ErrInvalidInput, event.CurrentAttendees)
		}
	}
	updated, err := s.eventRepo.Update(ctx, eventID, params)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return updated, nil
}

func (s *eventService) ChangeEventStatus(ctx context.Context, eventID, callerID string, status domain.EventStatus) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !domain.ValidEventStatus(status) {
		return nil, fmt.Errorf("%w: unknown event status %q", domain.ErrInvalidInput, status)
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if err := s.requireManager(ctx, event, callerID); err != nil {
		return nil, err
	}
	updated, err := s.eventRepo.SetStatus(ctx, eventID, status)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("set event status: %w", err)
	}
	return updated, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, eventID, callerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if err := s.requireManager(ctx, event, callerID); err != nil {
		return err
	}
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

// requireManager allows the event organizer and admins.
func (s *eventService) requireManager(ctx context.Context, event *domain.Event, callerID string) error {
	if event.OrganizerID == callerID {
		return nil
	}
	roles, err := s.roleRepo.ListByUserID(ctx, callerID)
	if err != nil {
		return fmt.Errorf("list roles: %w", err)
	}
	for _, r := range roles {
		if r.Code == domain.RoleAdmin {
			return nil
		}
	}
	return domain.ErrForbidden
}
