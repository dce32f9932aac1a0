package usecase_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"fursa-backend/internal/usecase"
	"fursa-backend/pkg/security"
	"fursa-backend/pkg/security/antivirus"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stubScanner struct {
	result antivirus.ScanResult
	seen   []byte
}

func (s *stubScanner) Scan(ctx context.Context, filename string, data io.Reader) antivirus.ScanResult {
	s.seen, _ = io.ReadAll(data)
	return s.result
}

func (s *stubScanner) Name() string                       { return "stub" }
func (s *stubScanner) Available(ctx context.Context) bool { return true }

func TestUploaderScanning(t *testing.T) {
	ctx := context.Background()
	resume := []byte("%PDF-1.7\n%resume body")

	t.Run("clean file is stored", func(t *testing.T) {
		store := new(MockStorage)
		scanner := &stubScanner{}
		up := usecase.NewUploader(store, 1<<20).WithScanner(scanner)
		store.On("Save", ctx, mock.Anything, mock.Anything, int64(len(resume)), mock.Anything).Return("/media/resumes/cv.pdf", nil)

		ref, err := up.Save(ctx, fileHeader(t, "cv.pdf", resume), security.KindDocument, "resumes", "resume")
		require.NoError(t, err)
		assert.Equal(t, "/media/resumes/cv.pdf", ref)
		assert.Equal(t, resume, scanner.seen)
	})

	t.Run("infected file is rejected against the field", func(t *testing.T) {
		store := new(MockStorage)
		up := usecase.NewUploader(store, 1<<20).WithScanner(&stubScanner{
			result: antivirus.ScanResult{Infected: true, ThreatName: "Eicar-Signature", ScannerName: "stub"},
		})

		_, err := up.Save(ctx, fileHeader(t, "cv.pdf", resume), security.KindDocument, "resumes", "resume")
		assert.Contains(t, asAppError(t, err).Fields, "resume")
		store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("scanner failure is a 503", func(t *testing.T) {
		store := new(MockStorage)
		up := usecase.NewUploader(store, 1<<20).WithScanner(&stubScanner{
			result: antivirus.ScanResult{Infected: true, ScannerName: "stub", Error: errors.New("connection refused")},
		})

		_, err := up.Save(ctx, fileHeader(t, "cv.pdf", resume), security.KindDocument, "resumes", "resume")
		assert.Equal(t, http.StatusServiceUnavailable, asAppError(t, err).Code)
	})
}
