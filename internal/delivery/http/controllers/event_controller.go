package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"github.com/TrizenCodeBase/TrizenCommunityBackend-sub000/internal/delivery/http/helpers"
	"github.com/TrizenCodeBase/TrizenCommunityBackend-sub000/internal/delivery/http/middleware"
	"github.com/TrizenCodeBase/TrizenCommunityBackend-sub000/internal/domain"
)

// uuidRegex matches a canonical UUID string (8-4-4-4-12 hex).
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// CreateEventRequest is the request body for POST /events.
type CreateEventRequest struct {
	Title                string     `json:"title"`
	Description          string     `json:"description"`
	StartsAt             time.Time  `json:"starts_at"`
	MaxAttendees         int        `json:"max_attendees"`
	Status               string     `json:"status"`
	RegistrationDeadline *time.Time `json:"registration_deadline"`
	RequiresApproval     bool       `json:"requires_approval"`
}

// Validate implements Validator. Returns error messages for required and format rules.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if c.Title == "" {
		errs = append(errs, "title is required")
	}
	if c.MaxAttendees <= 0 {
		errs = append(errs, "max_attendees must be a positive integer")
	}
	if c.Status != "" && c.Status != string(domain.EventStatusDraft) && c.Status != string(domain.EventStatusPublished) {
		errs = append(errs, "status must be draft or published")
	}
	return errs
}

// UpdateEventRequest is the request body for PATCH /events/{eventID}. All fields optional; omitted fields are unchanged.
type UpdateEventRequest struct {
	Title                *string    `json:"title"`
	Description          *string    `json:"description"`
	StartsAt             *time.Time `json:"starts_at"`
	MaxAttendees         *int       `json:"max_attendees"`
	RegistrationOpen     *bool      `json:"registration_open"`
	RegistrationDeadline *time.Time `json:"registration_deadline"`
	RequiresApproval     *bool      `json:"requires_approval"`
}

// Validate implements Validator.
func (u UpdateEventRequest) Validate() []string {
	var errs []string
	if u.Title != nil && *u.Title == "" {
		errs = append(errs, "title cannot be empty")
	}
	if u.MaxAttendees != nil && *u.MaxAttendees <= 0 {
		errs = append(errs, "max_attendees must be a positive integer")
	}
	return errs
}

// ChangeEventStatusRequest is the request body for PATCH /events/{eventID}/status.
type ChangeEventStatusRequest struct {
	Status string `json:"status"`
}

// Validate implements Validator.
func (c ChangeEventStatusRequest) Validate() []string {
	if c.Status == "" {
		return []string{"status is required"}
	}
	if !domain.ValidEventStatus(domain.EventStatus(c.Status)) {
		return []string{"unknown event status"}
	}
	return nil
}

// EventView is an event payload extended with the derived registration window state.
type EventView struct {
	*domain.Event
	RegistrationStatus string `json:"registration_status"`
	AvailableSpots     int    `json:"available_spots"`
}

func newEventView(e *domain.Event, now time.Time) EventView {
	return EventView{
		Event:              e,
		RegistrationStatus: e.RegistrationStatus(now),
		AvailableSpots:     e.AvailableSpots(),
	}
}

// ListEventsResponse is the data payload for paginated event listings (200).
type ListEventsResponse struct {
	Items      []EventView            `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// EventSuccessResponse is the success response envelope for single-event endpoints.
type EventSuccessResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Data    EventView `json:"data"`
}

// ListEventsSuccessResponse is the success response envelope for event listings (200).
type ListEventsSuccessResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Data    ListEventsResponse `json:"data"`
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateEvent godoc
// @Summary Create a new event
// @Description Creates an event owned by the authenticated user. Status may be draft (default) or published; current_attendees always starts at zero.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateEventRequest true "Event details"
// @Success 201 {object} controllers.EventSuccessResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "invalid input"
// @Failure 401 {object} helpers.APIResponse "unauthorized"
// @Failure 500 {object} helpers.APIResponse "internal error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	now := time.Now()
	event := domain.NewEvent(req.Title, req.Description, userID, req.StartsAt, req.MaxAttendees, domain.EventStatus(req.Status), now, now)
	event.RegistrationDeadline = req.RegistrationDeadline
	event.RequiresApproval = req.RequiresApproval
	if err := c.Service.CreateEvent(r.Context(), event); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, "Event created successfully", newEventView(event, now))
}

// GetEvent godoc
// @Summary Get an event by ID
// @Description Returns the event with its derived registration window state (closed, deadline_passed, full, or open) and remaining spots.
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the event"
// @Failure 404 {object} helpers.APIResponse "event not found"
// @Failure 500 {object} helpers.APIResponse "internal error"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, "invalid eventID")
		return
	}
	event, err := c.Service.GetEvent(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, "event not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "OK", newEventView(event, time.Now()))
}

// ListEvents godoc
// @Summary List published events
// @Description Returns a paginated list of published events. Use page and page_size query params.
// @Tags events
// @Produce json
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListEventsSuccessResponse "data contains items and pagination"
// @Failure 500 {object} helpers.APIResponse "internal error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	params := helpers.ParsePagination(r)
	events, total, err := c.Service.ListPublishedEvents(r.Context(), params)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	now := time.Now()
	views := make([]EventView, 0, len(events))
	for _, e := range events {
		views = append(views, newEventView(e, now))
	}
	meta := helpers.NewPaginationMeta(params.Page, params.PageSize, total)
	helpers.WriteJSONSuccess(w, http.StatusOK, "OK", ListEventsResponse{Items: views, Pagination: meta})
}

// ListMyEvents godoc
// @Summary List events organized by the current user
// @Description Returns a paginated list of events where the authenticated user is the organizer. Requires Bearer token.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListEventsSuccessResponse "data contains items and pagination"
// @Failure 401 {object} helpers.APIResponse "unauthorized"
// @Failure 500 {object} helpers.APIResponse "internal error"
// @Router /events/me [get]
func (c *EventController) ListMyEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	params := helpers.ParsePagination(r)
	events, total, err := c.Service.ListMyEvents(r.Context(), userID, params)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	now := time.Now()
	views := make([]EventView, 0, len(events))
	for _, e := range events {
		views = append(views, newEventView(e, now))
	}
	meta := helpers.NewPaginationMeta(params.Page, params.PageSize, total)
	helpers.WriteJSONSuccess(w, http.StatusOK, "OK", ListEventsResponse{Items: views, Pagination: meta})
}

// UpdateEvent godoc
// @Summary Update event details
// @Description Updates event fields. Only the organizer or an admin can update. Capacity cannot be lowered below the current attendee count. Omitted fields are unchanged.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body UpdateEventRequest true "Fields to update (all optional)"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "invalid input"
// @Failure 401 {object} helpers.APIResponse "unauthorized"
// @Failure 403 {object} helpers.APIResponse "forbidden (not organizer or admin)"
// @Failure 404 {object} helpers.APIResponse "event not found"
// @Failure 500 {object} helpers.APIResponse "internal error"
// @Router /events/{eventID} [patch]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, "invalid eventID")
		return
	}
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	params := domain.UpdateEventParams{
		Title:                req.Title,
		Description:          req.Description,
		StartsAt:             req.StartsAt,
		MaxAttendees:         req.MaxAttendees,
		RegistrationOpen:     req.RegistrationOpen,
		RegistrationDeadline: req.RegistrationDeadline,
		RequiresApproval:     req.RequiresApproval,
	}
	event, err := c.Service.UpdateEvent(r.Context(), eventID, userID, params)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, "event not found")
			return
		}
		if errors.Is(err, domain.ErrForbidden) {
			helpers.WriteJSONError(w, http.StatusForbidden, "forbidden")
			return
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "Event updated successfully", newEventView(event, time.Now()))
}

// ChangeEventStatus godoc
// @Summary Change the event lifecycle status
// @Description Moves the event to draft, published, cancelled, completed, or postponed. Only the organizer or an admin can change the status.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body ChangeEventStatusRequest true "New status"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "invalid input"
// @Failure 401 {object} helpers.APIResponse "unauthorized"
// @Failure 403 {object} helpers.APIResponse "forbidden (not organizer or admin)"
// @Failure 404 {object} helpers.APIResponse "event not found"
// @Failure 500 {object} helpers.APIResponse "internal error"
// @Router /events/{eventID}/status [patch]
func (c *EventController) ChangeEventStatus(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, "invalid eventID")
		return
	}
	var req ChangeEventStatusRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	event, err := c.Service.ChangeEventStatus(r.Context(), eventID, userID, domain.EventStatus(req.Status))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, "event not found")
			return
		}
		if errors.Is(err, domain.ErrForbidden) {
			helpers.WriteJSONError(w, http.StatusForbidden, "forbidden")
			return
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "Event status updated successfully", newEventView(event, time.Now()))
}

// DeleteEventResponse is the data payload for DELETE /events/{eventID} (200).
type DeleteEventResponse struct {
	Status string `json:"status"`
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Deletes the event and all its registrations. Only the organizer or an admin can delete.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains status"
// @Failure 401 {object} helpers.APIResponse "unauthorized"
// @Failure 403 {object} helpers.APIResponse "forbidden (not organizer or admin)"
// @Failure 404 {object} helpers.APIResponse "event not found"
// @Failure 500 {object} helpers.APIResponse "internal error"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
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
	if err := c.Service.DeleteEvent(r.Context(), eventID, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, "event not found")
			return
		}
		if errors.Is(err, domain.ErrForbidden) {
			helpers.WriteJSONError(w, http.StatusForbidden, "forbidden")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "Event deleted successfully", DeleteEventResponse{Status: "deleted"})
}
