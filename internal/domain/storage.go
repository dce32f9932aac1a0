package domain

import (
	"context"
	"io"
)

// FileStorage persists uploaded files and returns a public reference (URL).
type FileStorage interface {
	Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, ref string) error
}

