package postgres

import (
	"context"
	"fmt"

	"fursa-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type profileRepo struct {
	db *pgxpool.Pool
}

func NewProfileRepository(db *pgxpool.Pool) domain.ProfileRepository {
	return &profileRepo{db: db}
}

// GetByUserID returns the user's profile with its skills ordered by name.
func (r *profileRepo) GetByUserID(ctx context.Context, userID int64) (*domain.Profile, error) {
	var p domain.Profile
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, name, bio, profile_image, resume
		FROM profiles WHERE user_id = $1`, userID,
	).Scan(&p.ID, &p.UserID, &p.Name, &p.Bio, &p.ProfileImage, &p.Resume)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT s.id, s.name
		FROM profile_skills ps
		JOIN skills s ON s.id = ps.skill_id
		WHERE ps.profile_id = $1
		ORDER BY s.name`, p.ID)
	if err != nil {
		return nil, err
	}
	p.Skills, err = pgx.CollectRows(rows, pgx.RowToStructByPos[domain.Skill])
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Update writes the supplied fields and, when SkillIDs is set, replaces the skill set.
func (r *profileRepo) Update(ctx context.Context, profileID int64, changes domain.ProfileChanges) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE profiles SET
			name = COALESCE($2::varchar, name),
			bio = COALESCE($3::text, bio),
			profile_image = COALESCE($4::text, profile_image),
			resume = COALESCE($5::text, resume)
		WHERE id = $1`,
		profileID, changes.Name, changes.Bio, changes.ProfileImage, changes.Resume,
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	if changes.SkillIDs != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM profile_skills WHERE profile_id = $1`, profileID); err != nil {
			return fmt.Errorf("clear profile skills: %w", err)
		}
		if ids := *changes.SkillIDs; len(ids) > 0 {
			_, err := tx.Exec(ctx, `
				INSERT INTO profile_skills (profile_id, skill_id)
				SELECT $1, unnest($2::bigint[])
				ON CONFLICT DO NOTHING`, profileID, ids)
			if err != nil {
				if isForeignKeyViolation(err) {
					return domain.ErrNotFound
				}
				return fmt.Errorf("set profile skills: %w", err)
			}
		}
	}

	return tx.Commit(ctx)
}

func (r *profileRepo) UpdateImage(ctx context.Context, userID int64, ref string) error {
	tag, err := r.db.Exec(ctx, `UPDATE profiles SET profile_image = $2 WHERE user_id = $1`, userID, ref)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
