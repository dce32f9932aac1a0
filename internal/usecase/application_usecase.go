package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"time"

	"fursa-backend/internal/domain"
	"fursa-backend/pkg/apperror"
	"fursa-backend/pkg/security"
	"fursa-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
	"github.com/xuri/excelize/v2"
)

const (
	ExportFormatXLSX = "xlsx"
	ExportFormatCSV  = "csv"
)

type applicationUsecase struct {
	appRepo  domain.ApplicationRepository
	jobRepo  domain.JobRepository
	uploader *Uploader
	validate *validator.Validate
}

// NewApplicationUsecase creates a new application usecase
func NewApplicationUsecase(
	appRepo domain.ApplicationRepository,
	jobRepo domain.JobRepository,
	uploader *Uploader,
	validate *validator.Validate,
) domain.ApplicationUsecase {
	return &applicationUsecase{
		appRepo:  appRepo,
		jobRepo:  jobRepo,
		uploader: uploader,
		validate: validate,
	}
}

// Apply submits an application. A second submission for the same job returns
// the stored application with created=false instead of an error.
func (u *applicationUsecase) Apply(ctx context.Context, userID int64, in domain.ApplyInput) (*domain.Application, bool, error) {
	if in.JobID == nil || *in.JobID == 0 {
		return nil, false, apperror.FieldError("job", "Job ID is required.")
	}
	if err := u.validate.Struct(in); err != nil {
		return nil, false, apperror.Validation("Validation failed", validation.FieldErrors(err))
	}

	if _, err := u.jobRepo.GetByID(ctx, *in.JobID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, false, apperror.NotFound("Job not found.")
		}
		return nil, false, apperror.Internal(err)
	}

	var resume string
	if in.Resume != nil {
		ref, err := u.uploader.Save(ctx, in.Resume, security.KindDocument, resumePrefix, "resume")
		if err != nil {
			return nil, false, err
		}
		resume = ref
	}

	app, created, err := u.appRepo.CreateIfAbsent(ctx, userID, *in.JobID, in.CoverLetter, resume)
	if err != nil {
		u.uploader.Discard(ctx, resume)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, false, apperror.NotFound("Job not found.")
		}
		return nil, false, apperror.Internal(err)
	}
	if !created {
		u.uploader.Discard(ctx, resume)
	}
	return app, created, nil
}

func (u *applicationUsecase) ListOwn(ctx context.Context, userID int64) ([]domain.Application, error) {
	apps, err := u.appRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if apps == nil {
		apps = []domain.Application{}
	}
	return apps, nil
}

// GetOwn answers 404 for applications that belong to someone else.
func (u *applicationUsecase) GetOwn(ctx context.Context, userID, id int64) (*domain.Application, error) {
	app, err := u.appRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Not found.")
		}
		return nil, apperror.Internal(err)
	}
	if app.UserID != userID {
		return nil, apperror.NotFound("Not found.")
	}
	return app, nil
}

var exportHeaders = []string{"ID", "JOB TITLE", "COMPANY", "LOCATION", "APPLIED ON", "COVER LETTER", "RESUME"}

func exportRow(a domain.Application) []string {
	return []string{
		strconv.FormatInt(a.ID, 10),
		a.Job.Title,
		a.Job.Company,
		a.Job.Location,
		a.AppliedOn.UTC().Format(time.RFC3339),
		a.CoverLetter,
		a.Resume,
	}
}

func (u *applicationUsecase) ExportOwn(ctx context.Context, userID int64, format string) ([]byte, string, error) {
	if format != ExportFormatXLSX && format != ExportFormatCSV {
		return nil, "", apperror.FieldError("format", "Unsupported export format. Use xlsx or csv.")
	}

	apps, err := u.ListOwn(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	var data []byte
	if format == ExportFormatCSV {
		data, err = exportCSV(apps)
	} else {
		data, err = exportExcel(apps)
	}
	if err != nil {
		return nil, "", apperror.Internal(err)
	}

	filename := fmt.Sprintf("applications_%s.%s", time.Now().Format("20060102_150405"), format)
	return data, filename, nil
}

func exportExcel(apps []domain.Application) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Applications"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, h)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1E3A5F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	endCell, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	f.SetCellStyle(sheetName, "A1", endCell, headerStyle)

	for rowIdx, a := range apps {
		for colIdx, value := range exportRow(a) {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	for i := range exportHeaders {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 24)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func exportCSV(apps []domain.Application) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeaders); err != nil {
		return nil, err
	}
	for _, a := range apps {
		if err := w.Write(exportRow(a)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
