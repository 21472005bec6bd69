package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/TrizenCodeBase/TrizenCommunityBackend-sub000/internal/delivery/http/helpers"
	"github.com/TrizenCodeBase/TrizenCommunityBackend-sub000/internal/delivery/http/middleware"
	"github.com/TrizenCodeBase/TrizenCommunityBackend-sub000/internal/domain"
)

// RegisterRequest is the request body for POST /events/{eventID}/register.
// RegistrationData carries free-form answers to the organizer's questions.
type RegisterRequest struct {
	RegistrationData map[string]any `json:"registration_data"`
}

// Validate implements Validator.
func (r RegisterRequest) Validate() []string {
	return nil
}

// RegistrationSuccessResponse is the success response envelope for single-registration endpoints.
type RegistrationSuccessResponse struct {
	Success bool                 `json:"success"`
	Message string               `json:"message"`
	Data    *domain.Registration `json:"data"`
}

// ListRegistrationsResponse is the data payload for GET /events/{eventID}/registrations (200).
type ListRegistrationsResponse struct {
	Items      []*domain.Registration `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListRegistrationsSuccessResponse is the success response envelope for GET /events/{eventID}/registrations (200).
type ListRegistrationsSuccessResponse struct {
	Success bool                      `json:"success"`
	Message string                    `json:"message"`
	Data    ListRegistrationsResponse `json:"data"`
}

// MyRegistrationsSuccessResponse is the success response envelope for GET /users/me/registrations (200).
type MyRegistrationsSuccessResponse struct {
	Success bool                            `json:"success"`
	Message string                          `json:"message"`
	Data    []*domain.RegistrationWithEvent `json:"data"`
}

type RegistrationController struct {
	Logger  *slog.Logger
	Service domain.RegistrationService
}

func NewRegistrationController(logger *slog.Logger, svc domain.RegistrationService) *RegistrationController {
	return &RegistrationController{
		Logger:  logger,
		Service: svc,
	}
}

// writeRegistrationError maps workflow errors to HTTP responses. Eligibility
// denials and workflow conflicts are 400 with the user-facing reason.
func (c *RegistrationController) writeRegistrationError(w http.ResponseWriter, r *http.Request, err error) {
	var denied *domain.RegistrationDeniedError
	switch {
	case errors.As(err, &denied):
		helpers.WriteJSONError(w, http.StatusBadRequest, denied.Reason)
	case errors.Is(err, domain.ErrAlreadyRegistered):
		helpers.WriteJSONError(w, http.StatusBadRequest, "You are already registered for this event")
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrNotCheckedIn),
		errors.Is(err, domain.ErrAlreadyCheckedIn),
		errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, "forbidden")
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, "internal error")
	}
}

// Register godoc
// @Summary Register for an event
// @Description Registers the authenticated user for the event. The event must be published, open for registration, before its deadline, and have spots left. A unique ticket number is issued and a confirmation email is sent.
// @Tags registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body RegisterRequest true "Optional registration data"
// @Success 201 {object} controllers.RegistrationSuccessResponse "data contains the registration with ticket number"
// @Failure 400 {object} helpers.APIResponse "registration denied (closed, deadline passed, full, not published, or duplicate)"
// @Failure 401 {object} helpers.APIResponse "unauthorized"
// @Failure 404 {object} helpers.APIResponse "event not found"
// @Failure 500 {object} helpers.APIResponse "internal error"
// @Router /events/{eventID}/register [post]
func (c *RegistrationController) Register(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, "invalid eventID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req RegisterRequest
	if r.ContentLength > 0 {
		if !helpers.DecodeAndValidate(w, r, &req) {
			return
		}
	}
	reg, err := c.Service.Register(r.Context(), eventID, userID, req.RegistrationData)
	if err != nil {
		c.writeRegistrationError(w, r, err)
		return
	}
	message := "Successfully registered for event"
	if reg.Status == domain.RegStatusPending {
		message = "Registration submitted and pending approval"
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, message, reg)
}

// CancelRegistration godoc
// @Summary Cancel my registration
// @Description Cancels the authenticated user's registration for the event. Only pending or approved registrations can be cancelled.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.RegistrationSuccessResponse "data contains the cancelled registration"
// @Failure 400 {object} helpers.APIResponse "registration cannot be cancelled in its current status"
// @Failure 401 {object} helpers.APIResponse "unauthorized"
// @Failure 404 {object} helpers.APIResponse "registration not found"
// @Failure 500 {object} helpers.APIResponse "internal error"
// @Router /events/{eventID}/register [delete]
func (c *RegistrationController) CancelRegistration(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, "invalid eventID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	reg, err := c.Service.Cancel(r.Context(), eventID, userID)
	if err != nil {
		c.writeRegistrationError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "Registration cancelled successfully", reg)
}

// ListEventRegistrations godoc
// @Summary List registrations for an event
// @Description Returns a paginated list of registrations for the event. Only the organizer or an admin can list.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListRegistrationsSuccessResponse "data contains items and pagination"
// @Failure 401 {object} helpers.APIResponse "unauthorized"
// @Failure 403 {object} helpers.APIResponse "forbidden (not organizer or admin)"
// @Failure 404 {object} helpers.APIResponse "event not found"
// @Failure 500 {object} helpers.APIResponse "internal error"
// @Router /events/{eventID}/registrations [get]
func (c *RegistrationController) ListEventRegistrations(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, "invalid eventID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	params := helpers.ParsePagination(r)
	regs, total, err := c.Service.ListEventRegistrations(r.Context(), eventID, userID, params)
	if err != nil {
		c.writeRegistrationError(w, r, err)
		return
	}
	meta := helpers.NewPaginationMeta(params.Page, params.PageSize, total)
	helpers.WriteJSONSuccess(w, http.StatusOK, "OK", ListRegistrationsResponse{Items: regs, Pagination: meta})
}

// ListMyRegistrations godoc
// @Summary List my registrations
// @Description Returns the authenticated user's registrations with their events.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.MyRegistrationsSuccessResponse "data is an array of registrations with events"
// @Failure 401 {object} helpers.APIResponse "unauthorized"
// @Failure 500 {object} helpers.APIResponse "internal error"
// @Router /users/me/registrations [get]
func (c *RegistrationController) ListMyRegistrations(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	regs, err := c.Service.ListMyRegistrations(r.Context(), userID)
	if err != nil {
		c.writeRegistrationError(w, r, err)
		return
	}
	if regs == nil {
		regs = []*domain.RegistrationWithEvent{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "OK", regs)
}

// managedAction runs one of the organizer-side registration actions that share
// the eventID/registrationID path shape and response handling.
func (c *RegistrationController) managedAction(
	w http.ResponseWriter,
	r *http.Request,
	message string,
	action func(eventID, registrationID, callerID string) (*domain.Registration, error),
) {
	eventID := r.PathValue("eventID")
	registrationID := r.PathValue("registrationID")
	if !uuidRegex.MatchString(eventID) || !uuidRegex.MatchString(registrationID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, "invalid eventID or registrationID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	reg, err := action(eventID, registrationID, userID)
	if err != nil {
		c.writeRegistrationError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, message, reg)
}

// ApproveRegistration godoc
// @Summary Approve a pending registration
// @Description Moves a pending registration to approved and sends the confirmation email. Only the organizer or an admin can approve.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param registrationID path string true "Registration ID (UUID)"
// @Success 200 {object} controllers.RegistrationSuccessResponse "data contains the approved registration"
// @Failure 400 {object} helpers.APIResponse "registration is not pending"
// @Failure 401 {object} helpers.APIResponse "unauthorized"
// @Failure 403 {object} helpers.APIResponse "forbidden (not organizer or admin)"
// @Failure 404 {object} helpers.APIResponse "event or registration not found"
// @Failure 500 {object} helpers.APIResponse "internal error"
// @Router /events/{eventID}/registrations/{registrationID}/approve [post]
func (c *RegistrationController) ApproveRegistration(w http.ResponseWriter, r *http.Request) {
	c.managedAction(w, r, "Registration approved", func(eventID, registrationID, callerID string) (*domain.Registration, error) {
		return c.Service.Approve(r.Context(), eventID, registrationID, callerID)
	})
}

// RejectRegistration godoc
// @Summary Reject a pending registration
// @Description Moves a pending registration to rejected. Only the organizer or an admin can reject.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param registrationID path string true "Registration ID (UUID)"
// @Success 200 {object} controllers.RegistrationSuccessResponse "data contains the rejected registration"
// @Failure 400 {object} helpers.APIResponse "registration is not pending"
// @Failure 401 {object} helpers.APIResponse "unauthorized"
// @Failure 403 {object} helpers.APIResponse "forbidden (not organizer or admin)"
// @Failure 404 {object} helpers.APIResponse "event or registration not found"
// @Failure 500 {object} helpers.APIResponse "internal error"
// @Router /events/{eventID}/registrations/{registrationID}/reject [post]
func (c *RegistrationController) RejectRegistration(w http.ResponseWriter, r *http.Request) {
	c.managedAction(w, r, "Registration rejected", func(eventID, registrationID, callerID string) (*domain.Registration, error) {
		return c.Service.Reject(r.Context(), eventID, registrationID, callerID)
	})
}

// CheckInRegistration godoc
// @Summary Check an attendee in
// @Description Records the attendee's check-in time. A second check-in is rejected. Only the organizer or an admin can check in.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param registrationID path string true "Registration ID (UUID)"
// @Success 200 {object} controllers.RegistrationSuccessResponse "data contains the registration with attendance"
// @Failure 400 {object} helpers.APIResponse "attendee is already checked in"
// @Failure 401 {object} helpers.APIResponse "unauthorized"
// @Failure 403 {object} helpers.APIResponse "forbidden (not organizer or admin)"
// @Failure 404 {object} helpers.APIResponse "event or registration not found"
// @Failure 500 {object} helpers.APIResponse "internal error"
// @Router /events/{eventID}/registrations/{registrationID}/checkin [post]
func (c *RegistrationController) CheckInRegistration(w http.ResponseWriter, r *http.Request) {
	c.managedAction(w, r, "Checked in successfully", func(eventID, registrationID, callerID string) (*domain.Registration, error) {
		return c.Service.CheckIn(r.Context(), eventID, registrationID, callerID)
	})
}

// CheckOutRegistration godoc
// @Summary Check an attendee out
// @Description Records the attendee's check-out time and computes the attendance duration in whole minutes. Fails if the attendee never checked in. Only the organizer or an admin can check out.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param registrationID path string true "Registration ID (UUID)"
// @Success 200 {object} controllers.RegistrationSuccessResponse "data contains the registration with attendance"
// @Failure 400 {object} helpers.APIResponse "attendee has not checked in"
// @Failure 401 {object} helpers.APIResponse "unauthorized"
// @Failure 403 {object} helpers.APIResponse "forbidden (not organizer or admin)"
// @Failure 404 {object} helpers.APIResponse "event or registration not found"
// @Failure 500 {object} helpers.APIResponse "internal error"
// @Router /events/{eventID}/registrations/{registrationID}/checkout [post]
func (c *RegistrationController) CheckOutRegistration(w http.ResponseWriter, r *http.Request) {
	c.managedAction(w, r, "Checked out successfully", func(eventID, registrationID, callerID string) (*domain.Registration, error) {
		return c.Service.CheckOut(r.Context(), eventID, registrationID, callerID)
	})
}

// RemoveRegistrationResponse is the data payload for DELETE /events/{eventID}/registrations/{registrationID} (200).
type RemoveRegistrationResponse struct {
	Status string `json:"status"`
}

// RemoveRegistration godoc
// @Summary Remove a registration
// @Description Hard-deletes a registration and releases its spot. Only the organizer or an admin can remove.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param registrationID path string true "Registration ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains status"
// @Failure 401 {object} helpers.APIResponse "unauthorized"
// @Failure 403 {object} helpers.APIResponse "forbidden (not organizer or admin)"
// @Failure 404 {object} helpers.APIResponse "event or registration not found"
// @Failure 500 {object} helpers.APIResponse "internal error"
// @Router /events/{eventID}/registrations/{registrationID} [delete]
func (c *RegistrationController) RemoveRegistration(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	registrationID := r.PathValue("registrationID")
	if !uuidRegex.MatchString(eventID) || !uuidRegex.MatchString(registrationID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, "invalid eventID or registrationID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.Remove(r.Context(), eventID, registrationID, userID); err != nil {
		c.writeRegistrationError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "Registration removed successfully", RemoveRegistrationResponse{Status: "removed"})
}
