package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AyaSox/Recruitment-system-sub000/internal/models"
	appErrors "github.com/AyaSox/Recruitment-system-sub000/pkg/errors"
)

func newExportFixture() (*ExportService, *mockApplicationRepo) {
	apps := &mockApplicationRepo{apps: map[string]models.Application{
		"app-1": {
			ID:              "app-1",
			JobID:           "job-1",
			ApplicantID:     "user-1",
			Status:          models.StatusScreening,
			AppliedAt:       time.Now().Add(-48 * time.Hour),
			StatusUpdatedAt: time.Now(),
		},
	}}
	jobs := &mockJobRepo{jobs: map[string]models.Job{
		"job-1": {ID: "job-1", Title: "Backend Engineer"},
	}}
	return NewExportService(apps, jobs, zap.NewNop()), apps
}

func TestExportApplicationsCSV(t *testing.T) {
	svc, _ := newExportFixture()

	result, err := svc.Applications(context.Background(), models.ApplicationFilter{JobID: "job-1"}, FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.True(t, strings.HasSuffix(result.FileName, ".csv"))

	body := string(result.Data)
	assert.Contains(t, body, "ID,Job,Applicant,Status")
	assert.Contains(t, body, "app-1")
	assert.Contains(t, body, "Screening")
}

func TestExportApplicationsPDF(t *testing.T) {
	svc, _ := newExportFixture()

	result, err := svc.Applications(context.Background(), models.ApplicationFilter{}, FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasPrefix(string(result.Data), "%PDF"))
}

// pagedApplicationRepo serves its fixture set one page at a time, the way
// the real repository honors Page and PageSize.
type pagedApplicationRepo struct {
	all   []models.Application
	calls int
}

func (m *pagedApplicationRepo) List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, int, error) {
	m.calls++
	start := (filter.Page - 1) * filter.PageSize
	if start >= len(m.all) {
		return nil, len(m.all), nil
	}
	end := start + filter.PageSize
	if end > len(m.all) {
		end = len(m.all)
	}
	return m.all[start:end], len(m.all), nil
}

func TestExportApplicationsCoversAllPages(t *testing.T) {
	total := exportPageSize*2 + 37
	repo := &pagedApplicationRepo{all: make([]models.Application, 0, total)}
	for i := 0; i < total; i++ {
		repo.all = append(repo.all, models.Application{
			ID:              fmt.Sprintf("app-%04d", i),
			JobID:           "job-1",
			ApplicantID:     fmt.Sprintf("user-%04d", i),
			Status:          models.StatusApplied,
			AppliedAt:       time.Now().Add(-time.Hour),
			StatusUpdatedAt: time.Now(),
		})
	}
	svc := NewExportService(repo, &mockJobRepo{jobs: map[string]models.Job{
		"job-1": {ID: "job-1", Title: "Backend Engineer"},
	}}, zap.NewNop())

	result, err := svc.Applications(context.Background(), models.ApplicationFilter{JobID: "job-1"}, FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, 3, repo.calls)

	lines := strings.Split(strings.TrimRight(string(result.Data), "\n"), "\n")
	require.Len(t, lines, total+1)
	assert.Contains(t, lines[len(lines)-1], fmt.Sprintf("app-%04d", total-1))
}

func TestExportUnsupportedFormat(t *testing.T) {
	svc, _ := newExportFixture()

	_, err := svc.Applications(context.Background(), models.ApplicationFilter{}, ExportFormat("xml"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
