package postgres

import (
	"context"

	"fursa-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type jobRepo struct {
	db *pgxpool.Pool
}

func NewJobRepository(db *pgxpool.Pool) domain.JobRepository {
	return &jobRepo{db: db}
}

const jobColumns = `id, title, company, description, requirements, location, created_at`

func (r *jobRepo) List(ctx context.Context) ([]domain.Job, error) {
	rows, err := r.db.Query(ctx, `SELECT `+jobColumns+` FROM jobs ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[domain.Job])
}

func (r *jobRepo) GetByID(ctx context.Context, id int64) (*domain.Job, error) {
	rows, err := r.db.Query(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	job, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByPos[domain.Job])
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return job, nil
}

// Create is used by the seed command; jobs are not writable through the API.
func (r *jobRepo) Create(ctx context.Context, job *domain.Job) error {
	query := `
		INSERT INTO jobs (title, company, description, requirements, location)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		job.Title, job.Company, job.Description, job.Requirements, job.Location,
	).Scan(&job.ID, &job.CreatedAt)
}
