package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/TrizenCodeBase/TrizenCommunityBackend-sub000/internal/domain"
)

const registrationColumns = `id, event_id, user_id, ticket_number, status, registration_data,
	checked_in, checked_in_at, checked_out, checked_out_at, duration_minutes,
	payment_required, payment_amount, payment_currency, payment_paid, payment_paid_at,
	confirmation_sent, created_at, updated_at`

// claimSpotQuery increments the event's attendee counter only while capacity
// remains. Zero rows affected means the event is full.
const claimSpotQuery = `
	UPDATE events
	SET current_attendees = current_attendees + 1, updated_at = NOW()
	WHERE id = $1 AND current_attendees < max_attendees
`

// releaseSpotQuery decrements the counter, floored at zero.
const releaseSpotQuery = `
	UPDATE events
	SET current_attendees = GREATEST(current_attendees - 1, 0), updated_at = NOW()
	WHERE id = $1
`

type registrationRepository struct {
	DB *sql.DB
}

func NewRegistrationRepository(db *sql.DB) domain.RegistrationRepository {
	return &registrationRepository{
		DB: db,
	}
}

func scanRegistration(row interface{ Scan(...any) error }) (*domain.Registration, error) {
	reg := &domain.Registration{}
	var dataRaw []byte
	var checkedInAt, checkedOutAt, paidAt sql.NullTime
	err := row.Scan(
		&reg.ID, &reg.EventID, &reg.UserID, &reg.TicketNumber, &reg.Status, &dataRaw,
		&reg.Attendance.CheckedIn, &checkedInAt, &reg.Attendance.CheckedOut, &checkedOutAt, &reg.Attendance.DurationMinutes,
		&reg.Payment.Required, &reg.Payment.Amount, &reg.Payment.Currency, &reg.Payment.Paid, &paidAt,
		&reg.ConfirmationSent, &reg.CreatedAt, &reg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if checkedInAt.Valid {
		reg.Attendance.CheckedInAt = &checkedInAt.Time
	}
	if checkedOutAt.Valid {
		reg.Attendance.CheckedOutAt = &checkedOutAt.Time
	}
	if paidAt.Valid {
		reg.Payment.PaidAt = &paidAt.Time
	}
	if len(dataRaw) > 0 {
		if err := json.Unmarshal(dataRaw, &reg.RegistrationData); err != nil {
			return nil, fmt.Errorf("decode registration_data: %w", err)
		}
	}
	return reg, nil
}

// Create claims a spot on the event and inserts the registration in a single
// transaction. A duplicate (event, user) pair maps to ErrAlreadyRegistered and
// a duplicate ticket number to ErrDuplicateTicket; in both cases the claimed
// spot is rolled back.
func (r *registrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, claimSpotQuery, reg.EventID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrEventFull
	}

	dataJSON, err := json.Marshal(reg.RegistrationData)
	if err != nil {
		return fmt.Errorf("encode registration_data: %w", err)
	}

	query := `
		INSERT INTO registrations (event_id, user_id, ticket_number, status, registration_data,
			payment_required, payment_amount, payment_currency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	err = tx.QueryRowContext(ctx, query,
		reg.EventID, reg.UserID, reg.TicketNumber, reg.Status, dataJSON,
		reg.Payment.Required, reg.Payment.Amount, reg.Payment.Currency, reg.CreatedAt, reg.UpdatedAt,
	).Scan(&reg.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			if strings.Contains(pqErr.Constraint, "ticket_number") {
				return domain.ErrDuplicateTicket
			}
			return domain.ErrAlreadyRegistered
		}
		return err
	}

	return tx.Commit()
}

func (r *registrationRepository) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE id = $1`
	reg, err := scanRegistration(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *registrationRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE event_id = $1 AND user_id = $2`
	reg, err := scanRegistration(r.DB.QueryRowContext(ctx, query, eventID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *registrationRepository) ListByEventID(ctx context.Context, eventID string, params domain.PaginationParams) ([]*domain.Registration, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM registrations WHERE event_id = $1`, eventID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + registrationColumns + `
		FROM registrations
		WHERE event_id = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	regs := make([]*domain.Registration, 0)
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, 0, err
		}
		regs = append(regs, reg)
	}
	return regs, total, rows.Err()
}

func (r *registrationRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Registration, error) {
	query := `SELECT ` + registrationColumns + `
		FROM registrations
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	regs := make([]*domain.Registration, 0)
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

func (r *registrationRepository) UpdateStatus(ctx context.Context, id string, status domain.RegistrationStatus) error {
	query := `UPDATE registrations SET status = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.DB.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CancelAndRelease flips the status to cancelled and releases the claimed
// spot in one transaction.
func (r *registrationRepository) CancelAndRelease(ctx context.Context, id string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var eventID string
	err = tx.QueryRowContext(ctx, `
		UPDATE registrations SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING event_id
	`, domain.RegStatusCancelled, id).Scan(&eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	if _, err := tx.ExecContext(ctx, releaseSpotQuery, eventID); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *registrationRepository) UpdateAttendance(ctx context.Context, id string, att domain.Attendance) error {
	query := `
		UPDATE registrations
		SET checked_in = $1, checked_in_at = $2, checked_out = $3, checked_out_at = $4,
			duration_minutes = $5, updated_at = NOW()
		WHERE id = $6
	`
	var checkedInAt, checkedOutAt any
	if att.CheckedInAt != nil {
		checkedInAt = *att.CheckedInAt
	}
	if att.CheckedOutAt != nil {
		checkedOutAt = *att.CheckedOutAt
	}
	result, err := r.DB.ExecContext(ctx, query, att.CheckedIn, checkedInAt, att.CheckedOut, checkedOutAt, att.DurationMinutes, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *registrationRepository) SetConfirmationSent(ctx context.Context, id string, sent bool) error {
	query := `UPDATE registrations SET confirmation_sent = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.DB.ExecContext(ctx, query, sent, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete hard-deletes the registration and releases its spot in one transaction.
func (r *registrationRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var eventID string
	err = tx.QueryRowContext(ctx, `DELETE FROM registrations WHERE id = $1 RETURNING event_id`, id).Scan(&eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	if _, err := tx.ExecContext(ctx, releaseSpotQuery, eventID); err != nil {
		return err
	}
	return tx.Commit()
}
