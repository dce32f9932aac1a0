package domain

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by repositories when no row matches.
var ErrNotFound = errors.New("resource not found")

type Job struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Company      string    `json:"company"`
	Description  string    `json:"description"`
	Requirements string    `json:"requirements"`
	Location     string    `json:"location"`
	CreatedAt    time.Time `json:"created_at"`
}

// JobSummary is the job snapshot embedded in an application.
type JobSummary struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Company  string `json:"company"`
	Location string `json:"location"`
}

type JobRepository interface {
	List(ctx context.Context) ([]Job, error)
	GetByID(ctx context.Context, id int64) (*Job, error)
	Create(ctx context.Context, job *Job) error
}

type JobUsecase interface {
	ListJobs(ctx context.Context) ([]Job, error)
	GetJob(ctx context.Context, id int64) (*Job, error)
}
