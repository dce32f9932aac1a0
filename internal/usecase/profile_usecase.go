package usecase

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"fursa-backend/internal/domain"
	"fursa-backend/pkg/apperror"
	"fursa-backend/pkg/security"
	"fursa-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

const (
	profileImagePrefix = "profile_images"
	resumePrefix       = "resumes"
)

type profileUsecase struct {
	profileRepo domain.ProfileRepository
	skillRepo   domain.SkillRepository
	uploader    *Uploader
	validate    *validator.Validate
	whitelist   map[string]struct{}
}

// NewProfileUsecase builds the profile usecase. Skills outside whitelist are rejected.
func NewProfileUsecase(
	profileRepo domain.ProfileRepository,
	skillRepo domain.SkillRepository,
	uploader *Uploader,
	validate *validator.Validate,
	whitelist []string,
) domain.ProfileUsecase {
	allowed := make(map[string]struct{}, len(whitelist))
	for _, name := range whitelist {
		allowed[name] = struct{}{}
	}
	return &profileUsecase{
		profileRepo: profileRepo,
		skillRepo:   skillRepo,
		uploader:    uploader,
		validate:    validate,
		whitelist:   allowed,
	}
}

func (u *profileUsecase) ListOwn(ctx context.Context, userID int64) ([]domain.Profile, error) {
	p, err := u.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return []domain.Profile{}, nil
		}
		return nil, apperror.Internal(err)
	}
	return []domain.Profile{*p}, nil
}

// GetOwn answers 404 for any id that is not the caller's profile.
func (u *profileUsecase) GetOwn(ctx context.Context, userID, profileID int64) (*domain.Profile, error) {
	p, err := u.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Not found.")
		}
		return nil, apperror.Internal(err)
	}
	if p.ID != profileID {
		return nil, apperror.NotFound("Not found.")
	}
	return p, nil
}

func (u *profileUsecase) Update(ctx context.Context, userID, profileID int64, in domain.ProfileUpdate, full bool) (*domain.Profile, error) {
	current, err := u.GetOwn(ctx, userID, profileID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		in.Name = &name
	}
	if full && in.Name == nil {
		return nil, apperror.FieldError("name", "This field is required.")
	}
	if err := u.validate.Struct(in); err != nil {
		return nil, apperror.Validation("Validation failed", validation.FieldErrors(err))
	}

	changes := domain.ProfileChanges{Name: in.Name, Bio: in.Bio}

	if in.Skills != nil {
		ids, err := u.resolveSkills(ctx, *in.Skills)
		if err != nil {
			return nil, err
		}
		changes.SkillIDs = &ids
	}

	// Files go last so that a rejected update stores nothing
	var stored []string
	if in.ProfileImage != nil {
		ref, err := u.uploader.Save(ctx, in.ProfileImage, security.KindImage, profileImagePrefix, "profile_image")
		if err != nil {
			return nil, err
		}
		stored = append(stored, ref)
		changes.ProfileImage = &ref
	}
	if in.Resume != nil {
		ref, err := u.uploader.Save(ctx, in.Resume, security.KindDocument, resumePrefix, "resume")
		if err != nil {
			u.uploader.Discard(ctx, stored...)
			return nil, err
		}
		stored = append(stored, ref)
		changes.Resume = &ref
	}

	if err := u.profileRepo.Update(ctx, current.ID, changes); err != nil {
		u.uploader.Discard(ctx, stored...)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Not found.")
		}
		return nil, apperror.Internal(err)
	}

	if changes.ProfileImage != nil && current.ProfileImage != nil {
		u.uploader.Discard(ctx, *current.ProfileImage)
	}
	if changes.Resume != nil && current.Resume != nil {
		u.uploader.Discard(ctx, *current.Resume)
	}

	updated, err := u.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return updated, nil
}

// resolveSkills maps names to skill ids. Any name outside the whitelist or
// missing from the skills table rejects the whole set.
func (u *profileUsecase) resolveSkills(ctx context.Context, names []string) ([]int64, error) {
	seen := make(map[string]struct{}, len(names))
	unique := make([]string, 0, len(names))
	var invalid []string
	for _, name := range names {
		name = strings.TrimSpace(name)
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		if _, ok := u.whitelist[name]; !ok {
			invalid = append(invalid, fmt.Sprintf("%s is not a valid skill.", name))
			continue
		}
		unique = append(unique, name)
	}
	if len(invalid) > 0 {
		return nil, apperror.Validation(invalid[0], apperror.FieldErrors{"skills": invalid})
	}

	found, err := u.skillRepo.GetByNames(ctx, unique)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	byName := make(map[string]int64, len(found))
	for _, s := range found {
		byName[s.Name] = s.ID
	}

	ids := make([]int64, 0, len(unique))
	for _, name := range unique {
		id, ok := byName[name]
		if !ok {
			invalid = append(invalid, fmt.Sprintf("%s is not a valid skill.", name))
			continue
		}
		ids = append(ids, id)
	}
	if len(invalid) > 0 {
		return nil, apperror.Validation(invalid[0], apperror.FieldErrors{"skills": invalid})
	}
	return ids, nil
}

func (u *profileUsecase) UploadImage(ctx context.Context, userID int64, file *multipart.FileHeader) (string, error) {
	if file == nil {
		return "", apperror.FieldError("profileImage", "No image file provided.")
	}

	current, err := u.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", apperror.NotFound("User profile not found.")
		}
		return "", apperror.Internal(err)
	}

	ref, err := u.uploader.Save(ctx, file, security.KindImage, profileImagePrefix, "profileImage")
	if err != nil {
		return "", err
	}

	if err := u.profileRepo.UpdateImage(ctx, userID, ref); err != nil {
		u.uploader.Discard(ctx, ref)
		if errors.Is(err, domain.ErrNotFound) {
			return "", apperror.NotFound("User profile not found.")
		}
		return "", apperror.Internal(err)
	}

	if current.ProfileImage != nil {
		u.uploader.Discard(ctx, *current.ProfileImage)
	}
	return ref, nil
}
