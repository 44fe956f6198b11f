package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/AyaSox/Recruitment-system-sub000/internal/models"
	appErrors "github.com/AyaSox/Recruitment-system-sub000/pkg/errors"
)

type jobRepository interface {
	FindByID(ctx context.Context, id string) (*models.Job, error)
	List(ctx context.Context, filter models.JobFilter) ([]models.Job, int, error)
	Create(ctx context.Context, job *models.Job) error
	Update(ctx context.Context, job *models.Job) error
	SetPublished(ctx context.Context, id string, published bool) error
	CountApplications(ctx context.Context, id string) (int, error)
	Delete(ctx context.Context, id string) error
}

// CreateJobRequest holds payload for creating job postings.
type CreateJobRequest struct {
	Title           string    `json:"title" validate:"required"`
	Description     string    `json:"description" validate:"required"`
	Location        string    `json:"location" validate:"required"`
	Department      string    `json:"department" validate:"required"`
	EmploymentType  string    `json:"employment_type" validate:"required"`
	ExperienceLevel string    `json:"experience_level"`
	SalaryMin       *float64  `json:"salary_min"`
	SalaryMax       *float64  `json:"salary_max"`
	SalaryCurrency  string    `json:"salary_currency"`
	ClosingDate     time.Time `json:"closing_date" validate:"required"`
}

// UpdateJobRequest holds payload for updating job postings.
type UpdateJobRequest struct {
	Title           string    `json:"title" validate:"required"`
	Description     string    `json:"description" validate:"required"`
	Location        string    `json:"location" validate:"required"`
	Department      string    `json:"department" validate:"required"`
	EmploymentType  string    `json:"employment_type" validate:"required"`
	ExperienceLevel string    `json:"experience_level"`
	SalaryMin       *float64  `json:"salary_min"`
	SalaryMax       *float64  `json:"salary_max"`
	SalaryCurrency  string    `json:"salary_currency"`
	ClosingDate     time.Time `json:"closing_date" validate:"required"`
}

// JobService handles job posting use-cases.
type JobService struct {
	repo      jobRepository
	audit     *AuditService
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewJobService constructs the job service.
func NewJobService(repo jobRepository, audit *AuditService, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *JobService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JobService{repo: repo, audit: audit, cache: cache, validator: validate, logger: logger}
}

// List returns job postings and pagination metadata. Unauthenticated
// callers only ever see published postings; the handler forces the filter.
func (s *JobService) List(ctx context.Context, filter models.JobFilter) ([]models.Job, *models.Pagination, error) {
	jobs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list jobs")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return jobs, pagination, nil
}

// Get returns a single job posting.
func (s *JobService) Get(ctx context.Context, id string) (*models.Job, error) {
	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load job")
	}
	return job, nil
}

// Create registers a new job posting. New postings go live immediately:
// they are published and approved on creation.
func (s *JobService) Create(ctx context.Context, actor models.AuditActor, req CreateJobRequest) (*models.Job, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid job payload")
	}
	if !req.ClosingDate.After(time.Now()) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "closing date must be in the future")
	}

	job := &models.Job{
		Title:           req.Title,
		Description:     req.Description,
		Location:        req.Location,
		Department:      req.Department,
		EmploymentType:  req.EmploymentType,
		ExperienceLevel: req.ExperienceLevel,
		SalaryMin:       req.SalaryMin,
		SalaryMax:       req.SalaryMax,
		SalaryCurrency:  req.SalaryCurrency,
		ClosingDate:     req.ClosingDate,
		IsPublished:     true,
		IsApproved:      true,
	}
	if actor.ID != nil {
		job.CreatedBy = *actor.ID
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create job")
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, AuditRecord{
			Actor:      actor,
			Action:     models.AuditActionCreate,
			Resource:   "job",
			ResourceID: job.ID,
			NewValues:  job,
			Details:    fmt.Sprintf("created job %q", job.Title),
		})
	}
	return job, nil
}

// canManage reports whether the actor may modify the posting. Admins and
// the system actor always may; recruiters only manage their own postings.
func canManage(job *models.Job, actor models.AuditActor) bool {
	if actor.Role == models.RoleAdmin || actor.ID == nil {
		return true
	}
	return *actor.ID == job.CreatedBy
}

// Update modifies an existing posting. Owner or admin only. The audit
// entry carries before and after snapshots.
func (s *JobService) Update(ctx context.Context, actor models.AuditActor, id string, req UpdateJobRequest) (*models.Job, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid job payload")
	}

	job, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManage(job, actor) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the posting owner or an admin may modify it")
	}
	before := *job

	job.Title = req.Title
	job.Description = req.Description
	job.Location = req.Location
	job.Department = req.Department
	job.EmploymentType = req.EmploymentType
	job.ExperienceLevel = req.ExperienceLevel
	job.SalaryMin = req.SalaryMin
	job.SalaryMax = req.SalaryMax
	job.SalaryCurrency = req.SalaryCurrency
	job.ClosingDate = req.ClosingDate

	if err := s.repo.Update(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update job")
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, AuditRecord{
			Actor:      actor,
			Action:     models.AuditActionUpdate,
			Resource:   "job",
			ResourceID: job.ID,
			OldValues:  before,
			NewValues:  job,
			Details:    fmt.Sprintf("updated job %q", job.Title),
		})
	}
	return job, nil
}

// SetPublished publishes or unpublishes a posting. Owner or admin only.
// Publishing also marks the posting approved.
func (s *JobService) SetPublished(ctx context.Context, actor models.AuditActor, id string, published bool) (*models.Job, error) {
	job, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManage(job, actor) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the posting owner or an admin may modify it")
	}

	if err := s.repo.SetPublished(ctx, id, published); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to change publish state")
	}
	job.IsPublished = published
	if published {
		job.IsApproved = true
	}

	action := models.AuditActionPublish
	if !published {
		action = models.AuditActionUnpublish
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, AuditRecord{
			Actor:      actor,
			Action:     action,
			Resource:   "job",
			ResourceID: job.ID,
			Details:    fmt.Sprintf("%s job %q", map[bool]string{true: "published", false: "unpublished"}[published], job.Title),
		})
	}
	return job, nil
}

// Delete removes a posting. Owner or admin only. Postings with any
// applications cannot be deleted; unpublish them instead.
func (s *JobService) Delete(ctx context.Context, actor models.AuditActor, id string) error {
	job, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !canManage(job, actor) {
		return appErrors.Clone(appErrors.ErrForbidden, "only the posting owner or an admin may modify it")
	}

	count, err := s.repo.CountApplications(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count applications")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "job has applications and cannot be deleted; unpublish it instead")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete job")
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, AuditRecord{
			Actor:      actor,
			Action:     models.AuditActionDelete,
			Resource:   "job",
			ResourceID: id,
			OldValues:  job,
			Details:    fmt.Sprintf("deleted job %q", job.Title),
		})
	}
	return nil
}
