package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"fursa-backend/internal/domain"
	"fursa-backend/pkg/apperror"
	"fursa-backend/pkg/logger"
	"fursa-backend/pkg/security"
	"fursa-backend/pkg/security/antivirus"
	"fursa-backend/pkg/storage"
)

// Uploader validates uploaded files and hands them to the configured storage.
// Images are re-encoded as JPEG; documents are stored as received.
type Uploader struct {
	storage  domain.FileStorage
	maxBytes int64
	scanner  antivirus.Scanner // optional
}

func NewUploader(fs domain.FileStorage, maxBytes int64) *Uploader {
	if maxBytes <= 0 {
		maxBytes = 5 << 20
	}
	return &Uploader{storage: fs, maxBytes: maxBytes}
}

// WithScanner enables malware scanning of every upload before it is stored.
func (u *Uploader) WithScanner(s antivirus.Scanner) *Uploader {
	u.scanner = s
	return u
}

// Save stores fh under prefix. Validation failures are reported against field.
func (u *Uploader) Save(ctx context.Context, fh *multipart.FileHeader, kind security.FileKind, prefix, field string) (string, error) {
	if fh.Size > u.maxBytes {
		return "", apperror.FieldError(field, fmt.Sprintf("File too large. Maximum size is %d MB.", u.maxBytes>>20))
	}

	f, err := fh.Open()
	if err != nil {
		return "", apperror.FieldError(field, "Unable to read the uploaded file.")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, u.maxBytes+1))
	if err != nil {
		return "", apperror.FieldError(field, "Unable to read the uploaded file.")
	}
	if int64(len(data)) > u.maxBytes {
		return "", apperror.FieldError(field, fmt.Sprintf("File too large. Maximum size is %d MB.", u.maxBytes>>20))
	}
	if len(data) == 0 {
		return "", apperror.FieldError(field, "The submitted file is empty.")
	}

	result := security.ValidateFile(kind, fh.Filename, data, "")
	if !result.Valid {
		logger.Log.Warn("Upload rejected", "field", field, "filename", fh.Filename, "reason", result.Error)
		if kind == security.KindImage {
			return "", apperror.FieldError(field, "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
		}
		return "", apperror.FieldError(field, "Unsupported file type. Allowed: pdf, doc, docx, txt.")
	}

	if u.scanner != nil {
		scan := u.scanner.Scan(ctx, fh.Filename, bytes.NewReader(data))
		if scan.Error != nil {
			logger.Log.Error("Malware scan failed", "scanner", scan.ScannerName, "error", scan.Error)
			return "", apperror.New(http.StatusServiceUnavailable, "File scanning is unavailable. Please try again later.", scan.Error)
		}
		if scan.Infected {
			security.DefaultLogger().LogMalwareDetected(ctx, fh.Filename, scan.ThreatName, scan.ScannerName)
			return "", apperror.FieldError(field, "The uploaded file was rejected.")
		}
	}

	contentType := result.DetectedMIME
	key := storage.Key(prefix, fh.Filename, "")
	if kind == security.KindImage {
		compressed, err := storage.CompressImage(data, storage.DefaultMaxDimension, storage.DefaultJPEGQuality)
		if err != nil {
			return "", apperror.FieldError(field, "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
		}
		logger.Log.Debug("Image compressed", "before", len(data), "after", len(compressed))
		data = compressed
		contentType = "image/jpeg"
		key = storage.Key(prefix, fh.Filename, ".jpg")
	}

	ref, err := u.storage.Save(ctx, key, bytes.NewReader(data), int64(len(data)), contentType)
	if err != nil {
		return "", apperror.Internal(err)
	}
	return ref, nil
}

// Discard removes stored files, logging failures.
func (u *Uploader) Discard(ctx context.Context, refs ...string) {
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		if err := u.storage.Delete(ctx, ref); err != nil {
			logger.Log.Warn("Failed to delete stored file", "ref", ref, "error", err)
		}
	}
}
