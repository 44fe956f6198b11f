package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/AyaSox/Recruitment-system-sub000/internal/models"
	appErrors "github.com/AyaSox/Recruitment-system-sub000/pkg/errors"
	"github.com/AyaSox/Recruitment-system-sub000/pkg/export"
)

// ExportFormat selects the rendered output type.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

// ExportResult carries rendered bytes plus transport metadata.
type ExportResult struct {
	FileName    string
	ContentType string
	Data        []byte
}

type exportApplicationRepository interface {
	List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, int, error)
}

type exportJobRepository interface {
	FindByID(ctx context.Context, id string) (*models.Job, error)
}

// ExportService renders recruiter-facing application reports.
type ExportService struct {
	apps   exportApplicationRepository
	jobs   exportJobRepository
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	logger *zap.Logger
}

// NewExportService constructs the export service.
func NewExportService(apps exportApplicationRepository, jobs exportJobRepository, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		apps:   apps,
		jobs:   jobs,
		csv:    export.NewCSVExporter(),
		pdf:    export.NewPDFExporter(),
		logger: logger,
	}
}

// exportPageSize bounds each database read; the export itself covers the
// entire matching set.
const exportPageSize = 500

// Applications renders the applications matching the filter as CSV or PDF.
func (s *ExportService) Applications(ctx context.Context, filter models.ApplicationFilter, format ExportFormat) (*ExportResult, error) {
	filter.Page = 1
	filter.PageSize = exportPageSize
	var apps []models.Application
	for {
		page, total, err := s.apps.List(ctx, filter)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load applications for export")
		}
		apps = append(apps, page...)
		if len(page) == 0 || len(apps) >= total {
			break
		}
		filter.Page++
	}

	title := "Applications"
	if filter.JobID != "" {
		if job, err := s.jobs.FindByID(ctx, filter.JobID); err == nil {
			title = fmt.Sprintf("Applications for %s", job.Title)
		}
	}

	dataset := export.Dataset{
		Headers: []string{"ID", "Job", "Applicant", "Status", "Applied At", "Last Update"},
	}
	for _, app := range apps {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"ID":          app.ID,
			"Job":         app.JobID,
			"Applicant":   app.ApplicantID,
			"Status":      string(app.Status),
			"Applied At":  app.AppliedAt.Format(time.RFC3339),
			"Last Update": app.StatusUpdatedAt.Format(time.RFC3339),
		})
	}

	stamp := time.Now().UTC().Format("20060102-150405")
	switch format {
	case FormatCSV:
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return &ExportResult{
			FileName:    fmt.Sprintf("applications-%s.csv", stamp),
			ContentType: "text/csv",
			Data:        data,
		}, nil
	case FormatPDF:
		data, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return &ExportResult{
			FileName:    fmt.Sprintf("applications-%s.pdf", stamp),
			ContentType: "application/pdf",
			Data:        data,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}
