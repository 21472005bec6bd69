package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TrizenCodeBase/TrizenCommunityBackend-sub000/internal/delivery/http/helpers"
	"github.com/TrizenCodeBase/TrizenCommunityBackend-sub000/internal/delivery/http/middleware"
	"github.com/TrizenCodeBase/TrizenCommunityBackend-sub000/internal/domain"
)

const (
	testEventID        = "11111111-1111-1111-1111-111111111111"
	testRegistrationID = "22222222-2222-2222-2222-222222222222"
	testUserID         = "33333333-3333-3333-3333-333333333333"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// mockRegistrationService implements domain.RegistrationService for handler tests.
type mockRegistrationService struct {
	registration *domain.Registration
	err          error

	lastEventID        string
	lastUserID         string
	lastRegistrationID string
	lastData           map[string]any
}

func (m *mockRegistrationService) Register(ctx context.Context, eventID, userID string, data map[string]any) (*domain.Registration, error) {
	m.lastEventID, m.lastUserID, m.lastData = eventID, userID, data
	return m.registration, m.err
}

func (m *mockRegistrationService) Cancel(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	m.lastEventID, m.lastUserID = eventID, userID
	return m.registration, m.err
}

func (m *mockRegistrationService) Remove(ctx context.Context, eventID, registrationID, callerID string) error {
	m.lastEventID, m.lastRegistrationID, m.lastUserID = eventID, registrationID, callerID
	return m.err
}

func (m *mockRegistrationService) Approve(ctx context.Context, eventID, registrationID, callerID string) (*domain.Registration, error) {
	m.lastEventID, m.lastRegistrationID, m.lastUserID = eventID, registrationID, callerID
	return m.registration, m.err
}

func (m *mockRegistrationService) Reject(ctx context.Context, eventID, registrationID, callerID string) (*domain.Registration, error) {
	m.lastEventID, m.lastRegistrationID, m.lastUserID = eventID, registrationID, callerID
	return m.registration, m.err
}

func (m *mockRegistrationService) CheckIn(ctx context.Context, eventID, registrationID, callerID string) (*domain.Registration, error) {
	m.lastEventID, m.lastRegistrationID, m.lastUserID = eventID, registrationID, callerID
	return m.registration, m.err
}

func (m *mockRegistrationService) CheckOut(ctx context.Context, eventID, registrationID, callerID string) (*domain.Registration, error) {
	m.lastEventID, m.lastRegistrationID, m.lastUserID = eventID, registrationID, callerID
	return m.registration, m.err
}

func (m *mockRegistrationService) ListEventRegistrations(ctx context.Context, eventID, callerID string, params domain.PaginationParams) ([]*domain.Registration, int, error) {
	m.lastEventID, m.lastUserID = eventID, callerID
	if m.err != nil {
		return nil, 0, m.err
	}
	if m.registration == nil {
		return []*domain.Registration{}, 0, nil
	}
	return []*domain.Registration{m.registration}, 1, nil
}

func (m *mockRegistrationService) ListMyRegistrations(ctx context.Context, userID string) ([]*domain.RegistrationWithEvent, error) {
	m.lastUserID = userID
	if m.err != nil {
		return nil, m.err
	}
	return []*domain.RegistrationWithEvent{}, nil
}

func authedRequest(method, target string, body []byte) *http.Request {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	return req.WithContext(middleware.SetUserID(req.Context(), testUserID))
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) helpers.APIResponse {
	t.Helper()
	var resp helpers.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestRegistrationController_Register(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &mockRegistrationService{
			registration: &domain.Registration{ID: testRegistrationID, EventID: testEventID, UserID: testUserID, TicketNumber: "TKT-ABC123-XY9Z", Status: domain.RegStatusApproved},
		}
		ctrl := NewRegistrationController(testLogger, svc)

		body, _ := json.Marshal(RegisterRequest{RegistrationData: map[string]any{"tshirt": "M"}})
		req := authedRequest(http.MethodPost, "/events/"+testEventID+"/register", body)
		req.SetPathValue("eventID", testEventID)
		w := httptest.NewRecorder()

		ctrl.Register(w, req)

		require.Equal(t, http.StatusCreated, w.Code)
		resp := decodeEnvelope(t, w)
		assert.True(t, resp.Success)
		assert.Equal(t, "Successfully registered for event", resp.Message)
		assert.Equal(t, testEventID, svc.lastEventID)
		assert.Equal(t, testUserID, svc.lastUserID)
		assert.Equal(t, map[string]any{"tshirt": "M"}, svc.lastData)
	})

	t.Run("pending message", func(t *testing.T) {
		svc := &mockRegistrationService{
			registration: &domain.Registration{ID: testRegistrationID, Status: domain.RegStatusPending},
		}
		ctrl := NewRegistrationController(testLogger, svc)

		req := authedRequest(http.MethodPost, "/events/"+testEventID+"/register", nil)
		req.SetPathValue("eventID", testEventID)
		w := httptest.NewRecorder()

		ctrl.Register(w, req)

		require.Equal(t, http.StatusCreated, w.Code)
		resp := decodeEnvelope(t, w)
		assert.Equal(t, "Registration submitted and pending approval", resp.Message)
	})

	t.Run("denied reason is surfaced", func(t *testing.T) {
		svc := &mockRegistrationService{err: &domain.RegistrationDeniedError{Reason: "Event is full"}}
		ctrl := NewRegistrationController(testLogger, svc)

		req := authedRequest(http.MethodPost, "/events/"+testEventID+"/register", nil)
		req.SetPathValue("eventID", testEventID)
		w := httptest.NewRecorder()

		ctrl.Register(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeEnvelope(t, w)
		assert.False(t, resp.Success)
		assert.Equal(t, "Event is full", resp.Message)
	})

	t.Run("duplicate registration", func(t *testing.T) {
		svc := &mockRegistrationService{err: domain.ErrAlreadyRegistered}
		ctrl := NewRegistrationController(testLogger, svc)

		req := authedRequest(http.MethodPost, "/events/"+testEventID+"/register", nil)
		req.SetPathValue("eventID", testEventID)
		w := httptest.NewRecorder()

		ctrl.Register(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "You are already registered for this event", decodeEnvelope(t, w).Message)
	})

	t.Run("unknown event", func(t *testing.T) {
		svc := &mockRegistrationService{err: domain.ErrNotFound}
		ctrl := NewRegistrationController(testLogger, svc)

		req := authedRequest(http.MethodPost, "/events/"+testEventID+"/register", nil)
		req.SetPathValue("eventID", testEventID)
		w := httptest.NewRecorder()

		ctrl.Register(w, req)

		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid event id", func(t *testing.T) {
		ctrl := NewRegistrationController(testLogger, &mockRegistrationService{})

		req := authedRequest(http.MethodPost, "/events/not-a-uuid/register", nil)
		req.SetPathValue("eventID", "not-a-uuid")
		w := httptest.NewRecorder()

		ctrl.Register(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		ctrl := NewRegistrationController(testLogger, &mockRegistrationService{})

		req := httptest.NewRequest(http.MethodPost, "/events/"+testEventID+"/register", nil)
		req.SetPathValue("eventID", testEventID)
		w := httptest.NewRecorder()

		ctrl.Register(w, req)

		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown body fields are rejected", func(t *testing.T) {
		ctrl := NewRegistrationController(testLogger, &mockRegistrationService{})

		req := authedRequest(http.MethodPost, "/events/"+testEventID+"/register", []byte(`{"bogus_field": true}`))
		req.SetPathValue("eventID", testEventID)
		w := httptest.NewRecorder()

		ctrl.Register(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRegistrationController_CancelRegistration(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &mockRegistrationService{
			registration: &domain.Registration{ID: testRegistrationID, Status: domain.RegStatusCancelled},
		}
		ctrl := NewRegistrationController(testLogger, svc)

		req := authedRequest(http.MethodDelete, "/events/"+testEventID+"/register", nil)
		req.SetPathValue("eventID", testEventID)
		w := httptest.NewRecorder()

		ctrl.CancelRegistration(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Registration cancelled successfully", decodeEnvelope(t, w).Message)
	})

	t.Run("already cancelled", func(t *testing.T) {
		svc := &mockRegistrationService{err: domain.ErrInvalidTransition}
		ctrl := NewRegistrationController(testLogger, svc)

		req := authedRequest(http.MethodDelete, "/events/"+testEventID+"/register", nil)
		req.SetPathValue("eventID", testEventID)
		w := httptest.NewRecorder()

		ctrl.CancelRegistration(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRegistrationController_ManagedActions(t *testing.T) {
	actions := []struct {
		name    string
		invoke  func(ctrl *RegistrationController, w http.ResponseWriter, r *http.Request)
		message string
	}{
		{"approve", func(ctrl *RegistrationController, w http.ResponseWriter, r *http.Request) { ctrl.ApproveRegistration(w, r) }, "Registration approved"},
		{"reject", func(ctrl *RegistrationController, w http.ResponseWriter, r *http.Request) { ctrl.RejectRegistration(w, r) }, "Registration rejected"},
		{"checkin", func(ctrl *RegistrationController, w http.ResponseWriter, r *http.Request) { ctrl.CheckInRegistration(w, r) }, "Checked in successfully"},
		{"checkout", func(ctrl *RegistrationController, w http.ResponseWriter, r *http.Request) { ctrl.CheckOutRegistration(w, r) }, "Checked out successfully"},
	}

	for _, action := range actions {
		t.Run(action.name, func(t *testing.T) {
			svc := &mockRegistrationService{
				registration: &domain.Registration{ID: testRegistrationID},
			}
			ctrl := NewRegistrationController(testLogger, svc)

			req := authedRequest(http.MethodPost, "/events/"+testEventID+"/registrations/"+testRegistrationID+"/"+action.name, nil)
			req.SetPathValue("eventID", testEventID)
			req.SetPathValue("registrationID", testRegistrationID)
			w := httptest.NewRecorder()

			action.invoke(ctrl, w, req)

			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, action.message, decodeEnvelope(t, w).Message)
			assert.Equal(t, testEventID, svc.lastEventID)
			assert.Equal(t, testRegistrationID, svc.lastRegistrationID)
			assert.Equal(t, testUserID, svc.lastUserID)
		})
	}

	t.Run("forbidden caller", func(t *testing.T) {
		svc := &mockRegistrationService{err: domain.ErrForbidden}
		ctrl := NewRegistrationController(testLogger, svc)

		req := authedRequest(http.MethodPost, "/events/"+testEventID+"/registrations/"+testRegistrationID+"/approve", nil)
		req.SetPathValue("eventID", testEventID)
		req.SetPathValue("registrationID", testRegistrationID)
		w := httptest.NewRecorder()

		ctrl.ApproveRegistration(w, req)

		require.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("invalid registration id", func(t *testing.T) {
		ctrl := NewRegistrationController(testLogger, &mockRegistrationService{})

		req := authedRequest(http.MethodPost, "/events/"+testEventID+"/registrations/oops/approve", nil)
		req.SetPathValue("eventID", testEventID)
		req.SetPathValue("registrationID", "oops")
		w := httptest.NewRecorder()

		ctrl.ApproveRegistration(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRegistrationController_ListEventRegistrations(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &mockRegistrationService{
			registration: &domain.Registration{ID: testRegistrationID, EventID: testEventID},
		}
		ctrl := NewRegistrationController(testLogger, svc)

		req := authedRequest(http.MethodGet, "/events/"+testEventID+"/registrations?page=1&page_size=10", nil)
		req.SetPathValue("eventID", testEventID)
		w := httptest.NewRecorder()

		ctrl.ListEventRegistrations(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeEnvelope(t, w)
		assert.True(t, resp.Success)
	})

	t.Run("service error", func(t *testing.T) {
		svc := &mockRegistrationService{err: errors.New("boom")}
		ctrl := NewRegistrationController(testLogger, svc)

		req := authedRequest(http.MethodGet, "/events/"+testEventID+"/registrations", nil)
		req.SetPathValue("eventID", testEventID)
		w := httptest.NewRecorder()

		ctrl.ListEventRegistrations(w, req)

		require.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestRegistrationController_ListMyRegistrations(t *testing.T) {
	svc := &mockRegistrationService{}
	ctrl := NewRegistrationController(testLogger, svc)

	req := authedRequest(http.MethodGet, "/users/me/registrations", nil)
	w := httptest.NewRecorder()

	ctrl.ListMyRegistrations(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, testUserID, svc.lastUserID)
}

func TestRegistrationController_RemoveRegistration(t *testing.T) {
	svc := &mockRegistrationService{}
	ctrl := NewRegistrationController(testLogger, svc)

	req := authedRequest(http.MethodDelete, "/events/"+testEventID+"/registrations/"+testRegistrationID, nil)
	req.SetPathValue("eventID", testEventID)
	req.SetPathValue("registrationID", testRegistrationID)
	w := httptest.NewRecorder()

	ctrl.RemoveRegistration(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Registration removed successfully", decodeEnvelope(t, w).Message)
}
