package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/TrizenCodeBase/TrizenCommunityBackend-sub000/internal/domain"
)

const speakerAppColumns = `id, event_id, user_id, topic, abstract, bio, status, created_at, updated_at`

type speakerApplicationRepository struct {
	DB *sql.DB
}

func NewSpeakerApplicationRepository(db *sql.DB) domain.SpeakerApplicationRepository {
	return &speakerApplicationRepository{DB: db}
}

func scanSpeakerApplication(row interface{ Scan(...any) error }) (*domain.SpeakerApplication, error) {
	app := &domain.SpeakerApplication{}
	err := row.Scan(&app.ID, &app.EventID, &app.UserID, &app.Topic, &app.Abstract, &app.Bio, &app.Status, &app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return app, nil
}

func (r *speakerApplicationRepository) Create(ctx context.Context, app *domain.SpeakerApplication) error {
	query := `
		INSERT INTO speaker_applications (event_id, user_id, topic, abstract, bio, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, app.EventID, app.UserID, app.Topic, app.Abstract, app.Bio, app.Status, app.CreatedAt, app.UpdatedAt).Scan(&app.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return domain.ErrAlreadyApplied
		}
		return err
	}
	return nil
}

func (r *speakerApplicationRepository) GetByID(ctx context.Context, id string) (*domain.SpeakerApplication, error) {
	query := `SELECT ` + speakerAppColumns + ` FROM speaker_applications WHERE id = $1`
	app, err := scanSpeakerApplication(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return app, nil
}

func (r *speakerApplicationRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.SpeakerApplication, error) {
	query := `SELECT ` + speakerAppColumns + ` FROM speaker_applications WHERE event_id = $1 AND user_id = $2`
	app, err := scanSpeakerApplication(r.DB.QueryRowContext(ctx, query, eventID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return app, nil
}

func (r *speakerApplicationRepository) ListByEventID(ctx context.Context, eventID string, params domain.PaginationParams) ([]*domain.SpeakerApplication, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM speaker_applications WHERE event_id = $1`, eventID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + speakerAppColumns + `
		FROM speaker_applications
		WHERE event_id = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	apps := make([]*domain.SpeakerApplication, 0)
	for rows.Next() {
		app, err := scanSpeakerApplication(rows)
		if err != nil {
			return nil, 0, err
		}
		apps = append(apps, app)
	}
	return apps, total, rows.Err()
}

func (r *speakerApplicationRepository) UpdateStatus(ctx context.Context, id string, status domain.SpeakerApplicationStatus) (*domain.SpeakerApplication, error) {
	query := `
		UPDATE speaker_applications SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + speakerAppColumns + `
	`
	app, err := scanSpeakerApplication(r.DB.QueryRowContext(ctx, query, status, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return app, nil
}
