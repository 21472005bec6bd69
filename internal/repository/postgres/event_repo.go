package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/TrizenCodeBase/TrizenCommunityBackend-sub000/internal/domain"
)

const eventColumns = `id, title, description, organizer_id, starts_at, max_attendees, current_attendees,
	status, registration_open, registration_deadline, requires_approval, created_at, updated_at`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func scanEvent(row interface{ Scan(...any) error }) (*domain.Event, error) {
	e := &domain.Event{}
	var deadlineNull sql.NullTime
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.OrganizerID, &e.StartsAt, &e.MaxAttendees, &e.CurrentAttendees,
		&e.Status, &e.RegistrationOpen, &deadlineNull, &e.RequiresApproval, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if deadlineNull.Valid {
		e.RegistrationDeadline = &deadlineNull.Time
	}
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, description, organizer_id, starts_at, max_attendees, current_attendees,
			status, registration_open, registration_deadline, requires_approval, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`
	var deadline any
	if e.RegistrationDeadline != nil {
		deadline = *e.RegistrationDeadline
	}
	return r.DB.QueryRowContext(ctx, query,
		e.Title, e.Description, e.OrganizerID, e.StartsAt, e.MaxAttendees, e.CurrentAttendees,
		e.Status, e.RegistrationOpen, deadline, e.RequiresApproval, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) List(ctx context.Context, filter domain.EventFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	whereClauses := []string{}
	args := []interface{}{}
	n := 1
	if filter.Status != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("status = $%d", n))
		args = append(args, filter.Status)
		n++
	}
	if filter.OrganizerID != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("organizer_id = $%d", n))
		args = append(args, filter.OrganizerID)
		n++
	}
	where := ""
	if len(whereClauses) > 0 {
		where = " WHERE " + strings.Join(whereClauses, " AND ")
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT `+eventColumns+` FROM events%s ORDER BY starts_at ASC LIMIT $%d OFFSET $%d`, where, n, n+1)
	args = append(args, params.PageSize, params.Offset())
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, e)
	}
	return events, total, rows.Err()
}

func (r *eventRepository) Update(ctx context.Context, eventID string, params domain.UpdateEventParams) (*domain.Event, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []interface{}{}
	n := 1
	if params.Title != nil {
		setClauses = append(setClauses, fmt.Sprintf("title = $%d", n))
		args = append(args, *params.Title)
		n++
	}
	if params.Description != nil {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", n))
		args = append(args, *params.Description)
		n++
	}
	if params.StartsAt != nil {
		setClauses = append(setClauses, fmt.Sprintf("starts_at = $%d", n))
		args = append(args, *params.StartsAt)
		n++
	}
	if params.MaxAttendees != nil {
		setClauses = append(setClauses, fmt.Sprintf("max_attendees = $%d", n))
		args = append(args, *params.MaxAttendees)
		n++
	}
	if params.RegistrationOpen != nil {
		setClauses = append(setClauses, fmt.Sprintf("registration_open = $%d", n))
		args = append(args, *params.RegistrationOpen)
		n++
	}
	if params.RegistrationDeadline != nil {
		setClauses = append(setClauses, fmt.Sprintf("registration_deadline = $%d", n))
		args = append(args, *params.RegistrationDeadline)
		n++
	}
	if params.RequiresApproval != nil {
		setClauses = append(setClauses, fmt.Sprintf("requires_approval = $%d", n))
		args = append(args, *params.RequiresApproval)
		n++
	}
	if n == 1 {
		// No fields to update; just fetch current row
		return r.GetByID(ctx, eventID)
	}
	args = append(args, eventID)
	query := fmt.Sprintf(`
		UPDATE events SET %s
		WHERE id = $%d
		RETURNING `+eventColumns+`
	`, strings.Join(setClauses, ", "), n)
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) SetStatus(ctx context.Context, eventID string, status domain.EventStatus) (*domain.Event, error) {
	query := `
		UPDATE events SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + eventColumns + `
	`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, status, eventID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	// Registrations are removed by the ON DELETE CASCADE foreign key.
	query := `DELETE FROM events WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
