package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AyaSox/Recruitment-system-sub000/internal/models"
	appErrors "github.com/AyaSox/Recruitment-system-sub000/pkg/errors"
)

type mockJobCRUDRepo struct {
	jobs       map[string]models.Job
	appCounts  map[string]int
	deleted    []string
	published  map[string]bool
	lastFilter models.JobFilter
}

func newMockJobCRUDRepo() *mockJobCRUDRepo {
	return &mockJobCRUDRepo{
		jobs:      make(map[string]models.Job),
		appCounts: make(map[string]int),
		published: make(map[string]bool),
	}
}

func (m *mockJobCRUDRepo) FindByID(ctx context.Context, id string) (*models.Job, error) {
	if j, ok := m.jobs[id]; ok {
		copied := j
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockJobCRUDRepo) List(ctx context.Context, filter models.JobFilter) ([]models.Job, int, error) {
	m.lastFilter = filter
	out := make([]models.Job, 0, len(m.jobs))
	for _, j := range m.jobs {
		out = append(out, j)
	}
	return out, len(out), nil
}

func (m *mockJobCRUDRepo) Create(ctx context.Context, job *models.Job) error {
	if job.ID == "" {
		job.ID = "generated"
	}
	job.PostedDate = time.Now().UTC()
	m.jobs[job.ID] = *job
	return nil
}

func (m *mockJobCRUDRepo) Update(ctx context.Context, job *models.Job) error {
	m.jobs[job.ID] = *job
	return nil
}

func (m *mockJobCRUDRepo) SetPublished(ctx context.Context, id string, published bool) error {
	j := m.jobs[id]
	j.IsPublished = published
	if published {
		j.IsApproved = true
	}
	m.jobs[id] = j
	m.published[id] = published
	return nil
}

func (m *mockJobCRUDRepo) CountApplications(ctx context.Context, id string) (int, error) {
	return m.appCounts[id], nil
}

func (m *mockJobCRUDRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.jobs, id)
	return nil
}

func newJobFixture() (*JobService, *mockJobCRUDRepo, *mockAuditRepo) {
	repo := newMockJobCRUDRepo()
	auditRepo := &mockAuditRepo{}
	audit := NewAuditService(auditRepo, zap.NewNop())
	svc := NewJobService(repo, audit, nil, validator.New(), zap.NewNop())
	return svc, repo, auditRepo
}

func validJobRequest() CreateJobRequest {
	return CreateJobRequest{
		Title:          "Backend Engineer",
		Description:    "Build and run services.",
		Location:       "Cape Town",
		Department:     "Engineering",
		EmploymentType: "Full-time",
		ClosingDate:    time.Now().Add(30 * 24 * time.Hour),
	}
}

func TestJobCreatePublishesImmediately(t *testing.T) {
	svc, repo, auditRepo := newJobFixture()

	job, err := svc.Create(context.Background(), recruiterActor(), validJobRequest())
	require.NoError(t, err)
	assert.True(t, job.IsPublished)
	assert.True(t, job.IsApproved)
	assert.Equal(t, "recruiter-1", job.CreatedBy)
	assert.Len(t, repo.jobs, 1)

	require.Len(t, auditRepo.entries, 1)
	assert.Equal(t, models.AuditActionCreate, auditRepo.entries[0].Action)
}

func TestJobCreateRejectsPastClosingDate(t *testing.T) {
	svc, _, _ := newJobFixture()

	req := validJobRequest()
	req.ClosingDate = time.Now().Add(-time.Hour)
	_, err := svc.Create(context.Background(), recruiterActor(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestJobUpdateAuditsBeforeAndAfter(t *testing.T) {
	svc, _, auditRepo := newJobFixture()
	job, err := svc.Create(context.Background(), recruiterActor(), validJobRequest())
	require.NoError(t, err)
	auditRepo.entries = nil

	updated, err := svc.Update(context.Background(), recruiterActor(), job.ID, UpdateJobRequest{
		Title:          "Senior Backend Engineer",
		Description:    job.Description,
		Location:       job.Location,
		Department:     job.Department,
		EmploymentType: job.EmploymentType,
		ClosingDate:    job.ClosingDate,
	})
	require.NoError(t, err)
	assert.Equal(t, "Senior Backend Engineer", updated.Title)

	require.Len(t, auditRepo.entries, 1)
	entry := auditRepo.entries[0]
	assert.Equal(t, models.AuditActionUpdate, entry.Action)
	assert.Contains(t, string(entry.OldValues), "Backend Engineer")
	assert.Contains(t, string(entry.NewValues), "Senior Backend Engineer")
}

func TestJobDeleteGuardedByApplications(t *testing.T) {
	svc, repo, _ := newJobFixture()
	job, err := svc.Create(context.Background(), recruiterActor(), validJobRequest())
	require.NoError(t, err)
	repo.appCounts[job.ID] = 2

	err = svc.Delete(context.Background(), recruiterActor(), job.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.deleted)
}

func TestJobDeleteWithoutApplications(t *testing.T) {
	svc, repo, auditRepo := newJobFixture()
	job, err := svc.Create(context.Background(), recruiterActor(), validJobRequest())
	require.NoError(t, err)
	auditRepo.entries = nil

	require.NoError(t, svc.Delete(context.Background(), recruiterActor(), job.ID))
	assert.Equal(t, []string{job.ID}, repo.deleted)
	require.Len(t, auditRepo.entries, 1)
	assert.Equal(t, models.AuditActionDelete, auditRepo.entries[0].Action)
}

func TestJobUnpublishKeepsApproval(t *testing.T) {
	svc, repo, auditRepo := newJobFixture()
	job, err := svc.Create(context.Background(), recruiterActor(), validJobRequest())
	require.NoError(t, err)
	auditRepo.entries = nil

	updated, err := svc.SetPublished(context.Background(), recruiterActor(), job.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.IsPublished)
	assert.True(t, repo.jobs[job.ID].IsApproved)
	require.Len(t, auditRepo.entries, 1)
	assert.Equal(t, models.AuditActionUnpublish, auditRepo.entries[0].Action)
}

func TestJobUpdateForeignRecruiterForbidden(t *testing.T) {
	svc, repo, auditRepo := newJobFixture()
	job, err := svc.Create(context.Background(), recruiterActor(), validJobRequest())
	require.NoError(t, err)
	auditRepo.entries = nil

	otherID := "recruiter-2"
	other := models.AuditActor{ID: &otherID, Name: "Omar Recruiter", Role: models.RoleRecruiter}
	_, err = svc.Update(context.Background(), other, job.ID, UpdateJobRequest{
		Title:          "Hijacked",
		Description:    job.Description,
		Location:       job.Location,
		Department:     job.Department,
		EmploymentType: job.EmploymentType,
		ClosingDate:    job.ClosingDate,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Equal(t, "Backend Engineer", repo.jobs[job.ID].Title)
	assert.Empty(t, auditRepo.entries)
}

func TestJobDeleteForeignRecruiterForbidden(t *testing.T) {
	svc, repo, _ := newJobFixture()
	job, err := svc.Create(context.Background(), recruiterActor(), validJobRequest())
	require.NoError(t, err)

	otherID := "recruiter-2"
	other := models.AuditActor{ID: &otherID, Name: "Omar Recruiter", Role: models.RoleRecruiter}
	err = svc.Delete(context.Background(), other, job.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.deleted)
}

func TestJobUnpublishForeignRecruiterForbidden(t *testing.T) {
	svc, repo, _ := newJobFixture()
	job, err := svc.Create(context.Background(), recruiterActor(), validJobRequest())
	require.NoError(t, err)

	otherID := "recruiter-2"
	other := models.AuditActor{ID: &otherID, Name: "Omar Recruiter", Role: models.RoleRecruiter}
	_, err = svc.SetPublished(context.Background(), other, job.ID, false)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.True(t, repo.jobs[job.ID].IsPublished)
}

func TestJobAdminManagesForeignPosting(t *testing.T) {
	svc, repo, _ := newJobFixture()
	job, err := svc.Create(context.Background(), recruiterActor(), validJobRequest())
	require.NoError(t, err)

	adminID := "admin-1"
	admin := models.AuditActor{ID: &adminID, Name: "Ada Admin", Role: models.RoleAdmin}
	updated, err := svc.Update(context.Background(), admin, job.ID, UpdateJobRequest{
		Title:          "Backend Engineer (Remote)",
		Description:    job.Description,
		Location:       job.Location,
		Department:     job.Department,
		EmploymentType: job.EmploymentType,
		ClosingDate:    job.ClosingDate,
	})
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer (Remote)", updated.Title)

	require.NoError(t, svc.Delete(context.Background(), admin, job.ID))
	assert.Equal(t, []string{job.ID}, repo.deleted)
}

func TestJobGetNotFound(t *testing.T) {
	svc, _, _ := newJobFixture()

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
