package usecase

import (
	"context"
	"errors"
	"strings"

	"fursa-backend/internal/domain"
	"fursa-backend/pkg/apperror"
	"fursa-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type skillUsecase struct {
	repo     domain.SkillRepository
	validate *validator.Validate
}

func NewSkillUsecase(repo domain.SkillRepository, validate *validator.Validate) domain.SkillUsecase {
	return &skillUsecase{repo: repo, validate: validate}
}

func (u *skillUsecase) List(ctx context.Context) ([]domain.Skill, error) {
	skills, err := u.repo.List(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return skills, nil
}

func (u *skillUsecase) Get(ctx context.Context, id int64) (*domain.Skill, error) {
	s, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, skillError(err)
	}
	return s, nil
}

func (u *skillUsecase) Create(ctx context.Context, in domain.SkillInput) (*domain.Skill, error) {
	if err := u.check(&in); err != nil {
		return nil, err
	}
	s := &domain.Skill{Name: in.Name}
	if err := u.repo.Create(ctx, s); err != nil {
		return nil, skillError(err)
	}
	return s, nil
}

func (u *skillUsecase) Update(ctx context.Context, id int64, in domain.SkillInput) (*domain.Skill, error) {
	if err := u.check(&in); err != nil {
		return nil, err
	}
	s := &domain.Skill{ID: id, Name: in.Name}
	if err := u.repo.Update(ctx, s); err != nil {
		return nil, skillError(err)
	}
	return s, nil
}

func (u *skillUsecase) Delete(ctx context.Context, id int64) error {
	if err := u.repo.Delete(ctx, id); err != nil {
		return skillError(err)
	}
	return nil
}

func (u *skillUsecase) check(in *domain.SkillInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if err := u.validate.Struct(in); err != nil {
		return apperror.Validation("Validation failed", validation.FieldErrors(err))
	}
	return nil
}

func skillError(err error) error {
	var appErr *apperror.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, domain.ErrNotFound):
		return apperror.NotFound("Not found.")
	default:
		return apperror.Internal(err)
	}
}
