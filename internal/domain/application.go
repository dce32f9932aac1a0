package domain

import (
	"context"
	"mime/multipart"
	"time"
)

// Application is a user's submission to a job. At most one exists per (user, job).
type Application struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user"`
	Job         JobSummary `json:"job"`
	CoverLetter string     `json:"cover_letter"`
	Resume      string     `json:"resume"`
	AppliedOn   time.Time  `json:"applied_on"`
}

type ApplyInput struct {
	JobID       *int64                `validate:"-"`
	CoverLetter string                `validate:"max=10000"`
	Resume      *multipart.FileHeader `validate:"-"`
}

type ApplicationRepository interface {
	// CreateIfAbsent inserts the application unless (user, job) already exists.
	// created reports whether a new row was written; app is the stored application either way.
	CreateIfAbsent(ctx context.Context, userID, jobID int64, coverLetter, resume string) (app *Application, created bool, err error)
	GetByID(ctx context.Context, id int64) (*Application, error)
	ListByUser(ctx context.Context, userID int64) ([]Application, error)
}

type ApplicationUsecase interface {
	// Apply returns the new application with created=true, or the existing one with created=false.
	Apply(ctx context.Context, userID int64, in ApplyInput) (app *Application, created bool, err error)
	ListOwn(ctx context.Context, userID int64) ([]Application, error)
	GetOwn(ctx context.Context, userID, id int64) (*Application, error)
	// ExportOwn renders the user's applications as a spreadsheet ("xlsx" or "csv").
	ExportOwn(ctx context.Context, userID int64, format string) (data []byte, filename string, err error)
}
