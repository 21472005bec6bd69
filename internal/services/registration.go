package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/TrizenCodeBase/TrizenCommunityBackend-sub000/internal/domain"
)

type registrationService struct {
	eventRepo           domain.EventRepository
	regRepo             domain.RegistrationRepository
	userRepo            domain.UserRepository
	roleRepo            domain.RoleRepository
	emailService        domain.EmailService
	tickets             *TicketIssuer
	logger              *slog.Logger
	releaseSpotOnCancel bool
	contextTimeout      time.Duration
}

// NewRegistrationService creates a RegistrationService.
//
// releaseSpotOnCancel controls whether cancelling a registration frees the
// event spot. The historical behavior is to keep cancelled registrations
// counted against capacity, so the default configuration is false.
func NewRegistrationService(
	eventRepo domain.EventRepository,
	regRepo domain.RegistrationRepository,
	userRepo domain.UserRepository,
	roleRepo domain.RoleRepository,
	emailService domain.EmailService,
	logger *slog.Logger,
	releaseSpotOnCancel bool,
	timeout time.Duration,
) domain.RegistrationService {
	return &registrationService{
		eventRepo:           eventRepo,
		regRepo:             regRepo,
		userRepo:            userRepo,
		roleRepo:            roleRepo,
		emailService:        emailService,
		tickets:             NewTicketIssuer(),
		logger:              logger,
		releaseSpotOnCancel: releaseSpotOnCancel,
		contextTimeout:      timeout,
	}
}

func (s *registrationService) Register(ctx context.Context, eventID, userID string, data map[string]any) (*domain.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	if err := event.CheckEligibility(time.Now()); err != nil {
		return nil, err
	}

	// Read-then-write duplicate guard; the unique index on (event_id, user_id)
	// is the backstop against concurrent attempts.
	if _, err := s.regRepo.GetByEventAndUser(ctx, eventID, userID); err == nil {
		return nil, domain.ErrAlreadyRegistered
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get registration: %w", err)
	}

	status := domain.RegStatusApproved
	if event.RequiresApproval {
		status = domain.RegStatusPending
	}

	reg, err := s.createWithTicketRetry(ctx, eventID, userID, status, data)
	if err != nil {
		if errors.Is(err, domain.ErrEventFull) {
			return nil, &domain.RegistrationDeniedError{Reason: "Event is full"}
		}
		if errors.Is(err, domain.ErrAlreadyRegistered) {
			return nil, domain.ErrAlreadyRegistered
		}
		return nil, err
	}

	s.sendRegistrationEmail(ctx, event, reg)
	return reg, nil
}

// createWithTicketRetry creates the registration, regenerating the ticket
// number once if the unique index reports a ticket collision.
func (s *registrationService) createWithTicketRetry(ctx context.Context, eventID, userID string, status domain.RegistrationStatus, data map[string]any) (*domain.Registration, error) {
	for attempt := 0; attempt < 2; attempt++ {
		ticket, err := s.tickets.Next()
		if err != nil {
			return nil, fmt.Errorf("generate ticket number: %w", err)
		}
		now := time.Now()
		reg := domain.NewRegistration(eventID, userID, ticket, status, data, now, now)
		if err := s.regRepo.Create(ctx, reg); err != nil {
			if errors.Is(err, domain.ErrDuplicateTicket) && attempt == 0 {
				continue
			}
			if errors.Is(err, domain.ErrEventFull) || errors.Is(err, domain.ErrAlreadyRegistered) {
				return nil, err
			}
			return nil, fmt.Errorf("create registration: %w", err)
		}
		return reg, nil
	}
	return nil, domain.ErrDuplicateTicket
}

// sendRegistrationEmail sends the confirmation or pending-approval email.
// Failures are logged and never propagated to the registration response.
func (s *registrationService) sendRegistrationEmail(ctx context.Context, event *domain.Event, reg *domain.Registration) {
	if s.emailService == nil {
		return
	}
	user, err := s.userRepo.GetByID(ctx, reg.UserID)
	if err != nil || user == nil {
		s.logger.WarnContext(ctx, "registration email skipped: user lookup failed", "registration_id", reg.ID, "err", err)
		return
	}
	data := &domain.RegistrationEmailData{
		Email:        user.Email,
		FirstName:    user.Name,
		EventTitle:   event.Title,
		TicketNumber: reg.TicketNumber,
	}
	if reg.Status == domain.RegStatusPending {
		err = s.emailService.SendRegistrationPending(ctx, data)
	} else {
		err = s.emailService.SendRegistrationConfirmation(ctx, data)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "registration email failed", "registration_id", reg.ID, "err", err)
		return
	}
	if err := s.regRepo.SetConfirmationSent(ctx, reg.ID, true); err != nil {
		s.logger.WarnContext(ctx, "failed to record confirmation_sent", "registration_id", reg.ID, "err", err)
		return
	}
	reg.ConfirmationSent = true
}

func (s *registrationService) Cancel(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	reg, err := s.regRepo.GetByEventAndUser(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	if err := reg.Transition(domain.RegStatusCancelled); err != nil {
		return nil, err
	}
	if s.releaseSpotOnCancel {
		if err := s.regRepo.CancelAndRelease(ctx, reg.ID); err != nil {
			return nil, fmt.Errorf("cancel registration: %w", err)
		}
	} else {
		if err := s.regRepo.UpdateStatus(ctx, reg.ID, domain.RegStatusCancelled); err != nil {
			return nil, fmt.Errorf("cancel registration: %w", err)
		}
	}
	return reg, nil
}

func (s *registrationService) Remove(ctx context.Context, eventID, registrationID, callerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	reg, err := s.getManagedRegistration(ctx, eventID, registrationID, callerID)
	if err != nil {
		return err
	}
	if err := s.regRepo.Delete(ctx, reg.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete registration: %w", err)
	}
	return nil
}

func (s *registrationService) Approve(ctx context.Context, eventID, registrationID, callerID string) (*domain.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	reg, err := s.getManagedRegistration(ctx, eventID, registrationID, callerID)
	if err != nil {
		return nil, err
	}
	if err := reg.Transition(domain.RegStatusApproved); err != nil {
		return nil, err
	}
	if err := s.regRepo.UpdateStatus(ctx, reg.ID, domain.RegStatusApproved); err != nil {
		return nil, fmt.Errorf("approve registration: %w", err)
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err == nil {
		s.sendRegistrationEmail(ctx, event, reg)
	}
	return reg, nil
}

func (s *registrationService) Reject(ctx context.Context, eventID, registrationID, callerID string) (*domain.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	reg, err := s.getManagedRegistration(ctx, eventID, registrationID, callerID)
	if err != nil {
		return nil, err
	}
	if err := reg.Transition(domain.RegStatusRejected); err != nil {
		return nil, err
	}
	if err := s.regRepo.UpdateStatus(ctx, reg.ID, domain.RegStatusRejected); err != nil {
		return nil, fmt.Errorf("reject registration: %w", err)
	}
	return reg, nil
}

func (s *registrationService) CheckIn(ctx context.Context, eventID, registrationID, callerID string) (*domain.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	reg, err := s.getManagedRegistration(ctx, eventID, registrationID, callerID)
	if err != nil {
		return nil, err
	}
	if err := reg.CheckIn(time.Now()); err != nil {
		return nil, err
	}
	if err := s.regRepo.UpdateAttendance(ctx, reg.ID, reg.Attendance); err != nil {
		return nil, fmt.Errorf("update attendance: %w", err)
	}
	return reg, nil
}

func (s *registrationService) CheckOut(ctx context.Context, eventID, registrationID, callerID string) (*domain.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	reg, err := s.getManagedRegistration(ctx, eventID, registrationID, callerID)
	if err != nil {
		return nil, err
	}
	if err := reg.CheckOut(time.Now()); err != nil {
		return nil, err
	}
	if err := s.regRepo.UpdateAttendance(ctx, reg.ID, reg.Attendance); err != nil {
		return nil, fmt.Errorf("update attendance: %w", err)
	}
	return reg, nil
}

func (s *registrationService) ListEventRegistrations(ctx context.Context, eventID, callerID string, params domain.PaginationParams) ([]*domain.Registration, int, error) {
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
	regs, total, err := s.regRepo.ListByEventID(ctx, eventID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list registrations: %w", err)
	}
	if regs == nil {
		regs = []*domain.Registration{}
	}
	return regs, total, nil
}

func (s *registrationService) ListMyRegistrations(ctx context.Context, userID string) ([]*domain.RegistrationWithEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	regs, err := s.regRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}

	eventsByID := make(map[string]*domain.Event)
	result := make([]*domain.RegistrationWithEvent, 0, len(regs))
	for _, reg := range regs {
		ev, ok := eventsByID[reg.EventID]
		if !ok {
			ev, err = s.eventRepo.GetByID(ctx, reg.EventID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					// Event deleted but registration remains; skip this entry.
					continue
				}
				return nil, fmt.Errorf("get event for registration: %w", err)
			}
			eventsByID[reg.EventID] = ev
		}
		result = append(result, &domain.RegistrationWithEvent{
			Registration: reg,
			Event:        ev,
		})
	}
	return result, nil
}

// getManagedRegistration loads the registration and verifies that it belongs
// to the event and that the caller may manage it.
func (s *registrationService) getManagedRegistration(ctx context.Context, eventID, registrationID, callerID string) (*domain.Registration, error) {
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
	reg, err := s.regRepo.GetByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	if reg.EventID != eventID {
		return nil, domain.ErrNotFound
	}
	return reg, nil
}

// requireManager allows the event organizer and admins.
func (s *registrationService) requireManager(ctx context.Context, event *domain.Event, callerID string) error {
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
