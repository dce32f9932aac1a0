package postgres

import (
	"context"
	"fmt"

	"fursa-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type applicationRepo struct {
	db *pgxpool.Pool
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *pgxpool.Pool) domain.ApplicationRepository {
	return &applicationRepo{db: db}
}

// Every read joins the job so the embedded snapshot is always current.
const applicationSelect = `
	SELECT a.id, a.user_id, a.cover_letter, a.resume, a.applied_on,
		j.id, j.title, j.company, j.location
	FROM applications a
	JOIN jobs j ON j.id = a.job_id`

// CreateIfAbsent relies on the (user_id, job_id) unique constraint, so two
// concurrent submissions for the same pair produce exactly one row.
func (r *applicationRepo) CreateIfAbsent(ctx context.Context, userID, jobID int64, coverLetter, resume string) (*domain.Application, bool, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO applications (user_id, job_id, cover_letter, resume)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT ON CONSTRAINT `+constraintAppUserJob+` DO NOTHING
		RETURNING id`,
		userID, jobID, coverLetter, resume,
	).Scan(&id)

	switch {
	case err == nil:
		app, err := r.GetByID(ctx, id)
		return app, true, err
	case isNoRows(err):
		app, err := r.getByUserAndJob(ctx, userID, jobID)
		return app, false, err
	case isForeignKeyViolation(err):
		return nil, false, domain.ErrNotFound
	default:
		return nil, false, fmt.Errorf("insert application: %w", err)
	}
}

func (r *applicationRepo) GetByID(ctx context.Context, id int64) (*domain.Application, error) {
	return r.scanOne(r.db.QueryRow(ctx, applicationSelect+` WHERE a.id = $1`, id))
}

func (r *applicationRepo) getByUserAndJob(ctx context.Context, userID, jobID int64) (*domain.Application, error) {
	return r.scanOne(r.db.QueryRow(ctx, applicationSelect+` WHERE a.user_id = $1 AND a.job_id = $2`, userID, jobID))
}

func (r *applicationRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Application, error) {
	rows, err := r.db.Query(ctx, applicationSelect+` WHERE a.user_id = $1 ORDER BY a.applied_on DESC, a.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Application, error) {
		var a domain.Application
		err := row.Scan(&a.ID, &a.UserID, &a.CoverLetter, &a.Resume, &a.AppliedOn,
			&a.Job.ID, &a.Job.Title, &a.Job.Company, &a.Job.Location)
		return a, err
	})
}

func (r *applicationRepo) scanOne(row pgx.Row) (*domain.Application, error) {
	var a domain.Application
	err := row.Scan(&a.ID, &a.UserID, &a.CoverLetter, &a.Resume, &a.AppliedOn,
		&a.Job.ID, &a.Job.Title, &a.Job.Company, &a.Job.Location)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}
