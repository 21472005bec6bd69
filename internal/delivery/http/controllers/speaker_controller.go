package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/TrizenCodeBase/TrizenCommunityBackend-sub000/internal/delivery/http/helpers"
	"github.com/TrizenCodeBase/TrizenCommunityBackend-sub000/internal/delivery/http/middleware"
	"github.com/TrizenCodeBase/TrizenCommunityBackend-sub000/internal/domain"
)

// ApplyToSpeakRequest is the request body for POST /events/{eventID}/speakers/apply.
type ApplyToSpeakRequest struct {
	Topic    string `json:"topic"`
	Abstract string `json:"abstract"`
	Bio      string `json:"bio"`
}

// Validate implements Validator.
func (a ApplyToSpeakRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(a.Topic) == "" {
		errs = append(errs, "topic is required")
	}
	return errs
}

// ReviewSpeakerApplicationRequest is the request body for POST /events/{eventID}/speakers/{applicationID}/review.
type ReviewSpeakerApplicationRequest struct {
	Approve *bool `json:"approve"`
}

// Validate implements Validator.
func (r ReviewSpeakerApplicationRequest) Validate() []string {
	if r.Approve == nil {
		return []string{"approve is required"}
	}
	return nil
}

// SpeakerApplicationSuccessResponse is the success response envelope for single-application endpoints.
type SpeakerApplicationSuccessResponse struct {
	Success bool                       `json:"success"`
	Message string                     `json:"message"`
	Data    *domain.SpeakerApplication `json:"data"`
}

// ListSpeakerApplicationsResponse is the data payload for GET /events/{eventID}/speakers (200).
type ListSpeakerApplicationsResponse struct {
	Items      []*domain.SpeakerApplication `json:"items"`
	Pagination helpers.PaginationMeta       `json:"pagination"`
}

// ListSpeakerApplicationsSuccessResponse is the success response envelope for GET /events/{eventID}/speakers (200).
type ListSpeakerApplicationsSuccessResponse struct {
	Success bool                            `json:"success"`
	Message string                          `json:"message"`
	Data    ListSpeakerApplicationsResponse `json:"data"`
}

type SpeakerController struct {
	Logger  *slog.Logger
	Service domain.SpeakerService
}

func NewSpeakerController(logger *slog.Logger, svc domain.SpeakerService) *SpeakerController {
	return &SpeakerController{
		Logger:  logger,
		Service: svc,
	}
}

// Apply godoc
// @Summary Apply to speak at an event
// @Description Submits a speaker application for the event. One application per user per event.
// @Tags speakers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body ApplyToSpeakRequest true "Application details"
// @Success 201 {object} controllers.SpeakerApplicationSuccessResponse "data contains the application"
// @Failure 400 {object} helpers.APIResponse "invalid input or already applied"
// @Failure 401 {object} helpers.APIResponse "unauthorized"
// @Failure 404 {object} helpers.APIResponse "event not found"
// @Failure 500 {object} helpers.APIResponse "internal error"
// @Router /events/{eventID}/speakers/apply [post]
func (c *SpeakerController) Apply(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, "invalid eventID")
		return
	}
	var req ApplyToSpeakRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	app, err := c.Service.Apply(r.Context(), eventID, userID, req.Topic, req.Abstract, req.Bio)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, "event not found")
			return
		}
		if errors.Is(err, domain.ErrAlreadyApplied) || errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, "Speaker application submitted", app)
}

// Review godoc
// @Summary Review a speaker application
// @Description Approves or rejects a pending speaker application. Only the organizer or an admin can review.
// @Tags speakers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param applicationID path string true "Application ID (UUID)"
// @Param body body ReviewSpeakerApplicationRequest true "Review decision"
// @Success 200 {object} controllers.SpeakerApplicationSuccessResponse "data contains the reviewed application"
// @Failure 400 {object} helpers.APIResponse "application is not pending"
// @Failure 401 {object} helpers.APIResponse "unauthorized"
// @Failure 403 {object} helpers.APIResponse "forbidden (not organizer or admin)"
// @Failure 404 {object} helpers.APIResponse "event or application not found"
// @Failure 500 {object} helpers.APIResponse "internal error"
// @Router /events/{eventID}/speakers/{applicationID}/review [post]
func (c *SpeakerController) Review(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	applicationID := r.PathValue("applicationID")
	if !uuidRegex.MatchString(eventID) || !uuidRegex.MatchString(applicationID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, "invalid eventID or applicationID")
		return
	}
	var req ReviewSpeakerApplicationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	app, err := c.Service.Review(r.Context(), eventID, applicationID, userID, *req.Approve)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, "event or application not found")
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
	message := "Speaker application rejected"
	if app.Status == domain.SpeakerStatusApproved {
		message = "Speaker application approved"
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, message, app)
}

// ListApplications godoc
// @Summary List speaker applications for an event
// @Description Returns a paginated list of speaker applications. Only the organizer or an admin can list.
// @Tags speakers
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListSpeakerApplicationsSuccessResponse "data contains items and pagination"
// @Failure 401 {object} helpers.APIResponse "unauthorized"
// @Failure 403 {object} helpers.APIResponse "forbidden (not organizer or admin)"
// @Failure 404 {object} helpers.APIResponse "event not found"
// @Failure 500 {object} helpers.APIResponse "internal error"
// @Router /events/{eventID}/speakers [get]
func (c *SpeakerController) ListApplications(w http.ResponseWriter, r *http.Request) {
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
	apps, total, err := c.Service.ListApplications(r.Context(), eventID, userID, params)
	if err != nil {
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
	if apps == nil {
		apps = []*domain.SpeakerApplication{}
	}
	meta := helpers.NewPaginationMeta(params.Page, params.PageSize, total)
	helpers.WriteJSONSuccess(w, http.StatusOK, "OK", ListSpeakerApplicationsResponse{Items: apps, Pagination: meta})
}
