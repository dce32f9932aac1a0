package domain

import (
	"context"
	"mime/multipart"
)

// Profile is the single profile owned by a user.
type Profile struct {
	ID           int64   `json:"id"`
	UserID       int64   `json:"user"`
	Name         string  `json:"name"`
	Bio          string  `json:"bio"`
	Skills       []Skill `json:"skills"`
	ProfileImage *string `json:"profile_image"`
	Resume       *string `json:"resume"`
}

// ProfileUpdate carries the fields supplied by a PUT or PATCH. Nil means "not supplied".
// Skills, when supplied, replaces the whole set.
type ProfileUpdate struct {
	Name   *string   `validate:"omitempty,max=100"`
	Bio    *string   `validate:"omitempty,max=5000"`
	Skills *[]string `validate:"omitempty,dive,required,max=50"`

	ProfileImage *multipart.FileHeader `validate:"-"`
	Resume       *multipart.FileHeader `validate:"-"`
}

// ProfileChanges is what the repository persists after files have been stored.
type ProfileChanges struct {
	Name         *string
	Bio          *string
	SkillIDs     *[]int64
	ProfileImage *string
	Resume       *string
}

type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*Profile, error)
	Update(ctx context.Context, profileID int64, changes ProfileChanges) error
	UpdateImage(ctx context.Context, userID int64, ref string) error
}

type ProfileUsecase interface {
	ListOwn(ctx context.Context, userID int64) ([]Profile, error)
	GetOwn(ctx context.Context, userID, profileID int64) (*Profile, error)
	// Update applies a partial update; full requires name to be present.
	Update(ctx context.Context, userID, profileID int64, in ProfileUpdate, full bool) (*Profile, error)
	UploadImage(ctx context.Context, userID int64, file *multipart.FileHeader) (string, error)
}
