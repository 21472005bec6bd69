package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TrizenCodeBase/TrizenCommunityBackend-sub000/internal/domain"
)

func newEventTestService() (domain.EventService, *fakeEventRepo, *fakeRoleRepo) {
	events := newFakeEventRepo()
	roles := newFakeRoleRepo()
	svc := NewEventService(events, roles, 5*time.Second)
	return svc, events, roles
}

func draftEvent(organizerID string, maxAttendees int) *domain.Event {
	now := time.Now()
	return domain.NewEvent("Go Conf", "Annual conference", organizerID, now.Add(72*time.Hour), maxAttendees, domain.EventStatusDraft, now, now)
}

func TestEventService_CreateEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		svc, events, _ := newEventTestService()
		e := draftEvent("org-1", 100)
		e.CurrentAttendees = 7 // must be ignored

		require.NoError(t, svc.CreateEvent(ctx, e))
		assert.NotEmpty(t, e.ID)
		assert.Equal(t, 0, e.CurrentAttendees)

		stored, err := events.GetByID(ctx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, "Go Conf", stored.Title)
	})

	t.Run("defaults to draft", func(t *testing.T) {
		svc, _, _ := newEventTestService()
		e := draftEvent("org-1", 100)
		e.Status = ""
		require.NoError(t, svc.CreateEvent(ctx, e))
		assert.Equal(t, domain.EventStatusDraft, e.Status)
	})

	t.Run("validation", func(t *testing.T) {
		tests := []struct {
			name  string
			setup func(e *domain.Event)
		}{
			{"blank title", func(e *domain.Event) { e.Title = "   " }},
			{"missing organizer", func(e *domain.Event) { e.OrganizerID = "" }},
			{"zero capacity", func(e *domain.Event) { e.MaxAttendees = 0 }},
			{"negative capacity", func(e *domain.Event) { e.MaxAttendees = -5 }},
			{"cannot create as cancelled", func(e *domain.Event) { e.Status = domain.EventStatusCancelled }},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				svc, _, _ := newEventTestService()
				e := draftEvent("org-1", 100)
				tt.setup(e)
				require.ErrorIs(t, svc.CreateEvent(ctx, e), domain.ErrInvalidInput)
			})
		}
	})
}

func TestEventService_GetEvent(t *testing.T) {
	ctx := context.Background()
	svc, events, _ := newEventTestService()

	e := draftEvent("org-1", 100)
	require.NoError(t, events.Create(ctx, e))

	got, err := svc.GetEvent(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.ID, got.ID)

	_, err = svc.GetEvent(ctx, "ev-missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEventService_ListPublishedEvents(t *testing.T) {
	ctx := context.Background()
	svc, events, _ := newEventTestService()

	draft := draftEvent("org-1", 100)
	require.NoError(t, events.Create(ctx, draft))
	published := draftEvent("org-2", 50)
	published.Status = domain.EventStatusPublished
	require.NoError(t, events.Create(ctx, published))

	list, total, err := svc.ListPublishedEvents(ctx, domain.PaginationParams{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, published.ID, list[0].ID)
}

func TestEventService_ListMyEvents(t *testing.T) {
	ctx := context.Background()
	svc, events, _ := newEventTestService()

	mine := draftEvent("org-1", 100)
	require.NoError(t, events.Create(ctx, mine))
	other := draftEvent("org-2", 50)
	require.NoError(t, events.Create(ctx, other))

	list, total, err := svc.ListMyEvents(ctx, "org-1", domain.PaginationParams{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)
}

func TestEventService_UpdateEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("organizer can patch", func(t *testing.T) {
		svc, events, _ := newEventTestService()
		e := draftEvent("org-1", 100)
		require.NoError(t, events.Create(ctx, e))

		title := "Go Conf 2026"
		updated, err := svc.UpdateEvent(ctx, e.ID, "org-1", domain.UpdateEventParams{Title: &title})
		require.NoError(t, err)
		assert.Equal(t, "Go Conf 2026", updated.Title)
	})

	t.Run("admin can patch someone else's event", func(t *testing.T) {
		svc, events, roles := newEventTestService()
		e := draftEvent("org-1", 100)
		require.NoError(t, events.Create(ctx, e))
		roles.rolesByUser["admin-1"] = []*domain.Role{{ID: "role-admin", Code: domain.RoleAdmin}}

		title := "Go Conf 2026"
		_, err := svc.UpdateEvent(ctx, e.ID, "admin-1", domain.UpdateEventParams{Title: &title})
		require.NoError(t, err)
	})

	t.Run("outsider is forbidden", func(t *testing.T) {
		svc, events, _ := newEventTestService()
		e := draftEvent("org-1", 100)
		require.NoError(t, events.Create(ctx, e))

		title := "hijacked"
		_, err := svc.UpdateEvent(ctx, e.ID, "someone-else", domain.UpdateEventParams{Title: &title})
		require.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("capacity cannot drop below current attendees", func(t *testing.T) {
		svc, events, _ := newEventTestService()
		e := draftEvent("org-1", 100)
		e.CurrentAttendees = 40
		require.NoError(t, events.Create(ctx, e))

		lower := 30
		_, err := svc.UpdateEvent(ctx, e.ID, "org-1", domain.UpdateEventParams{MaxAttendees: &lower})
		require.ErrorIs(t, err, domain.ErrInvalidInput)

		equal := 40
		_, err = svc.UpdateEvent(ctx, e.ID, "org-1", domain.UpdateEventParams{MaxAttendees: &equal})
		require.NoError(t, err)
	})

	t.Run("unknown event", func(t *testing.T) {
		svc, _, _ := newEventTestService()
		title := "anything"
		_, err := svc.UpdateEvent(ctx, "ev-missing", "org-1", domain.UpdateEventParams{Title: &title})
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestEventService_ChangeEventStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("publish", func(t *testing.T) {
		svc, events, _ := newEventTestService()
		e := draftEvent("org-1", 100)
		require.NoError(t, events.Create(ctx, e))

		updated, err := svc.ChangeEventStatus(ctx, e.ID, "org-1", domain.EventStatusPublished)
		require.NoError(t, err)
		assert.Equal(t, domain.EventStatusPublished, updated.Status)
	})

	t.Run("unknown status", func(t *testing.T) {
		svc, events, _ := newEventTestService()
		e := draftEvent("org-1", 100)
		require.NoError(t, events.Create(ctx, e))

		_, err := svc.ChangeEventStatus(ctx, e.ID, "org-1", "archived")
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("outsider is forbidden", func(t *testing.T) {
		svc, events, _ := newEventTestService()
		e := draftEvent("org-1", 100)
		require.NoError(t, events.Create(ctx, e))

		_, err := svc.ChangeEventStatus(ctx, e.ID, "someone-else", domain.EventStatusCancelled)
		require.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestEventService_DeleteEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("organizer deletes", func(t *testing.T) {
		svc, events, _ := newEventTestService()
		e := draftEvent("org-1", 100)
		require.NoError(t, events.Create(ctx, e))

		require.NoError(t, svc.DeleteEvent(ctx, e.ID, "org-1"))
		_, err := events.GetByID(ctx, e.ID)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("outsider is forbidden", func(t *testing.T) {
		svc, events, _ := newEventTestService()
		e := draftEvent("org-1", 100)
		require.NoError(t, events.Create(ctx, e))

		require.ErrorIs(t, svc.DeleteEvent(ctx, e.ID, "someone-else"), domain.ErrForbidden)
	})

	t.Run("unknown event", func(t *testing.T) {
		svc, _, _ := newEventTestService()
		require.ErrorIs(t, svc.DeleteEvent(ctx, "ev-missing", "org-1"), domain.ErrNotFound)
	})
}
