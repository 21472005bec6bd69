package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TrizenCodeBase/TrizenCommunityBackend-sub000/internal/domain"
)

var registrationRows = []string{
	"id", "event_id", "user_id", "ticket_number", "status", "registration_data",
	"checked_in", "checked_in_at", "checked_out", "checked_out_at", "duration_minutes",
	"payment_required", "payment_amount", "payment_currency", "payment_paid", "payment_paid_at",
	"confirmation_sent", "created_at", "updated_at",
}

func registrationRow(id string) *sqlmock.Rows {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(registrationRows).AddRow(
		id, "ev-1", "user-1", "TKT-ABC123-XY9Z", "approved", []byte(`{"tshirt":"M"}`),
		false, nil, false, nil, 0,
		false, 0.0, "", false, nil,
		true, now, now,
	)
}

func newTestRegistration() *domain.Registration {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	return domain.NewRegistration("ev-1", "user-1", "TKT-ABC123-XY9Z", domain.RegStatusApproved, map[string]any{"tshirt": "M"}, now, now)
}

func TestRegistrationRepository_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr error
		wantID  string
	}{
		{
			name: "success claims a spot and inserts",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`UPDATE events\s+SET current_attendees = current_attendees \+ 1`).
					WithArgs("ev-1").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectQuery(`INSERT INTO registrations`).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("reg-uuid-1"))
				mock.ExpectCommit()
			},
			wantID: "reg-uuid-1",
		},
		{
			name: "no capacity left",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`UPDATE events\s+SET current_attendees = current_attendees \+ 1`).
					WithArgs("ev-1").
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectRollback()
			},
			wantErr: domain.ErrEventFull,
		},
		{
			name: "duplicate user registration rolls the claim back",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`UPDATE events\s+SET current_attendees = current_attendees \+ 1`).
					WithArgs("ev-1").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectQuery(`INSERT INTO registrations`).
					WillReturnError(&pq.Error{Code: "23505", Constraint: "registrations_event_id_user_id_key"})
				mock.ExpectRollback()
			},
			wantErr: domain.ErrAlreadyRegistered,
		},
		{
			name: "duplicate ticket number",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`UPDATE events\s+SET current_attendees = current_attendees \+ 1`).
					WithArgs("ev-1").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectQuery(`INSERT INTO registrations`).
					WillReturnError(&pq.Error{Code: "23505", Constraint: "registrations_ticket_number_key"})
				mock.ExpectRollback()
			},
			wantErr: domain.ErrDuplicateTicket,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewRegistrationRepository(db)
			reg := newTestRegistration()
			err = repo.Create(ctx, reg)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, reg.ID)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRegistrationRepository_GetByEventAndUser(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT .+ FROM registrations WHERE event_id = \$1 AND user_id = \$2`).
			WithArgs("ev-1", "user-1").
			WillReturnRows(registrationRow("reg-1"))

		repo := NewRegistrationRepository(db)
		reg, err := repo.GetByEventAndUser(ctx, "ev-1", "user-1")
		require.NoError(t, err)
		assert.Equal(t, "reg-1", reg.ID)
		assert.Equal(t, "TKT-ABC123-XY9Z", reg.TicketNumber)
		assert.Equal(t, map[string]any{"tshirt": "M"}, reg.RegistrationData)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT .+ FROM registrations WHERE event_id = \$1 AND user_id = \$2`).
			WithArgs("ev-1", "user-2").
			WillReturnError(sql.ErrNoRows)

		repo := NewRegistrationRepository(db)
		_, err = repo.GetByEventAndUser(ctx, "ev-1", "user-2")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestRegistrationRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`UPDATE registrations SET status = \$1, updated_at = NOW\(\) WHERE id = \$2`).
			WithArgs(domain.RegStatusCancelled, "reg-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewRegistrationRepository(db)
		require.NoError(t, repo.UpdateStatus(ctx, "reg-1", domain.RegStatusCancelled))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing registration", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`UPDATE registrations SET status = \$1, updated_at = NOW\(\) WHERE id = \$2`).
			WithArgs(domain.RegStatusCancelled, "reg-missing").
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := NewRegistrationRepository(db)
		require.ErrorIs(t, repo.UpdateStatus(ctx, "reg-missing", domain.RegStatusCancelled), domain.ErrNotFound)
	})
}

func TestRegistrationRepository_CancelAndRelease(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE registrations SET status = \$1, updated_at = NOW\(\)\s+WHERE id = \$2\s+RETURNING event_id`).
		WithArgs(domain.RegStatusCancelled, "reg-1").
		WillReturnRows(sqlmock.NewRows([]string{"event_id"}).AddRow("ev-1"))
	mock.ExpectExec(`UPDATE events\s+SET current_attendees = GREATEST\(current_attendees - 1, 0\)`).
		WithArgs("ev-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewRegistrationRepository(db)
	require.NoError(t, repo.CancelAndRelease(ctx, "reg-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("releases the spot", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`DELETE FROM registrations WHERE id = \$1 RETURNING event_id`).
			WithArgs("reg-1").
			WillReturnRows(sqlmock.NewRows([]string{"event_id"}).AddRow("ev-1"))
		mock.ExpectExec(`UPDATE events\s+SET current_attendees = GREATEST\(current_attendees - 1, 0\)`).
			WithArgs("ev-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		repo := NewRegistrationRepository(db)
		require.NoError(t, repo.Delete(ctx, "reg-1"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`DELETE FROM registrations WHERE id = \$1 RETURNING event_id`).
			WithArgs("reg-missing").
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		repo := NewRegistrationRepository(db)
		require.ErrorIs(t, repo.Delete(ctx, "reg-missing"), domain.ErrNotFound)
	})
}
