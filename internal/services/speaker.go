package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/TrizenCodeBase/TrizenCommunityBackend-sub000/internal/domain"
)

type speakerService struct {
	eventRepo      domain.EventRepository
	appRepo        domain.SpeakerApplicationRepository
	roleRepo       domain.RoleRepository
	contextTimeout time.Duration
}

// NewSpeakerService creates a SpeakerService with the given repositories.
func NewSpeakerService(eventRepo domain.EventRepository, appRepo domain.SpeakerApplicationRepository, roleRepo domain.RoleRepository, timeout time.Duration) domain.SpeakerService {
	return &speakerService{
		eventRepo:      eventRepo,
		appRepo:        appRepo,
		roleRepo:       roleRepo,
		contextTimeout: timeout,
	}
}

func (s *speakerService) Apply(ctx context.Context, eventID, userID, topic, abstract, bio string) (*domain.SpeakerApplication, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, fmt.Errorf("%w: topic is required", domain.ErrInvalidInput)
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.Status != domain.EventStatusPublished && event.Status != domain.EventStatusDraft {
		return nil, fmt.Errorf("%w: event is not accepting speaker applications", domain.ErrInvalidInput)
	}

	if _, err := s.appRepo.GetByEventAndUser(ctx, eventID, userID); err == nil {
		return nil, domain.ErrAlreadyApplied
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get speaker application: %w", err)
	}

	now := time.Now()
	app := domain.NewSpeakerApplication(eventID, userID, topic, strings.TrimSpace(abstract), strings.TrimSpace(bio), now, now)
	if err := s.appRepo.Create(ctx, app); err != nil {
		if errors.Is(err, domain.ErrAlreadyApplied) {
			return nil, domain.ErrAlreadyApplied
		}
		return nil, fmt.Errorf("create speaker application: %w", err)
	}
	return app, nil
}

func (s *speakerService) Review(ctx context.Context, eventID, applicationID, callerID string, approve bool) (*domain.SpeakerApplication, error) {
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
	app, err := s.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get speaker application: %w", err)
	}
	if app.EventID != eventID {
		return nil, domain.ErrNotFound
	}
	if app.Status != domain.SpeakerStatusPending {
		return nil, fmt.Errorf("%w: application has already been reviewed", domain.ErrInvalidInput)
	}
	status := domain.SpeakerStatusRejected
	if approve {
		status = domain.SpeakerStatusApproved
	}
	updated, err := s.appRepo.UpdateStatus(ctx, applicationID, status)
	if err != nil {
		return nil, fmt.Errorf("update speaker application: %w", err)
	}
	return updated, nil
}

func (s *speakerService) ListApplications(ctx context.Context, eventID, callerID string, params domain.PaginationParams) ([]*domain.SpeakerApplication, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, 0, domain.ErrNotFound
		}
		return nil, 0, fmt.Errorf("get event: %w", err)
	}
	if err := s.requireManager(ctx, event, callerID); err != nil {
		return nil, 0, err
	}
	apps, total, err := s.appRepo.ListByEventID(ctx, eventID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list speaker applications: %w", err)
	}
	if apps == nil {
		apps = []*domain.SpeakerApplication{}
	}
	return apps, total, nil
}

func (s *speakerService) requireManager(ctx context.Context, event *domain.Event, callerID string) error {
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
