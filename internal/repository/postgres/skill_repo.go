package postgres

import (
	"context"

	"fursa-backend/internal/domain"
	"fursa-backend/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type skillRepo struct {
	db *pgxpool.Pool
}

func NewSkillRepository(db *pgxpool.Pool) domain.SkillRepository {
	return &skillRepo{db: db}
}

func duplicateSkill() error {
	return apperror.Conflict("name", "skill with this name already exists.")
}

func (r *skillRepo) List(ctx context.Context) ([]domain.Skill, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM skills ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[domain.Skill])
}

func (r *skillRepo) GetByID(ctx context.Context, id int64) (*domain.Skill, error) {
	var s domain.Skill
	err := r.db.QueryRow(ctx, `SELECT id, name FROM skills WHERE id = $1`, id).Scan(&s.ID, &s.Name)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *skillRepo) GetByNames(ctx context.Context, names []string) ([]domain.Skill, error) {
	if len(names) == 0 {
		return []domain.Skill{}, nil
	}
	rows, err := r.db.Query(ctx, `SELECT id, name FROM skills WHERE name = ANY($1::varchar[]) ORDER BY id`, names)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[domain.Skill])
}

func (r *skillRepo) Create(ctx context.Context, skill *domain.Skill) error {
	err := r.db.QueryRow(ctx, `INSERT INTO skills (name) VALUES ($1) RETURNING id`, skill.Name).Scan(&skill.ID)
	if isUniqueViolation(err, constraintSkillsName) {
		return duplicateSkill()
	}
	return err
}

func (r *skillRepo) Update(ctx context.Context, skill *domain.Skill) error {
	tag, err := r.db.Exec(ctx, `UPDATE skills SET name = $2 WHERE id = $1`, skill.ID, skill.Name)
	if err != nil {
		if isUniqueViolation(err, constraintSkillsName) {
			return duplicateSkill()
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *skillRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM skills WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
