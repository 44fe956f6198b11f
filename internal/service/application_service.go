package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AyaSox/Recruitment-system-sub000/internal/models"
	"github.com/AyaSox/Recruitment-system-sub000/internal/repository"
	"github.com/AyaSox/Recruitment-system-sub000/internal/upload"
	appErrors "github.com/AyaSox/Recruitment-system-sub000/pkg/errors"
	"github.com/AyaSox/Recruitment-system-sub000/pkg/jobs"
)

type applicationRepository interface {
	FindByID(ctx context.Context, id string) (*models.Application, error)
	ExistsForApplicant(ctx context.Context, jobID, applicantID string) (bool, error)
	List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, int, error)
	Create(ctx context.Context, app *models.Application) error
	UpdateStatus(ctx context.Context, app *models.Application) error
}

type applicationJobRepository interface {
	FindByID(ctx context.Context, id string) (*models.Job, error)
}

type applicantRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

type resumeStore interface {
	Save(filename string, data []byte) (string, error)
	Delete(filename string) error
}

type mailEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// GuestApplyRequest is the no-account application payload. The resume
// travels alongside the form fields.
type GuestApplyRequest struct {
	JobID      string `json:"job_id" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	FullName   string `json:"full_name" validate:"required"`
	Phone      string `json:"phone"`
	Skills     string `json:"skills"`
	Message    string `json:"message"`
	ResumeName string `json:"-"`
	ResumeMIME string `json:"-"`
	Resume     []byte `json:"-"`
}

// ApplyRequest is the authenticated application payload.
type ApplyRequest struct {
	JobID      string `json:"job_id" validate:"required"`
	Skills     string `json:"skills"`
	Message    string `json:"message"`
	ResumeName string `json:"-"`
	ResumeMIME string `json:"-"`
	Resume     []byte `json:"-"`
}

// UpdateStatusRequest moves an application through the funnel. Version is
// the token the caller last read; a stale token is rejected.
type UpdateStatusRequest struct {
	Status         string `json:"status" validate:"required"`
	RecruiterNotes string `json:"recruiter_notes"`
	Version        int    `json:"version" validate:"required,min=1"`
}

// ApplicationService drives the application funnel.
type ApplicationService struct {
	repo       applicationRepository
	jobRepo    applicationJobRepository
	userRepo   applicantRepository
	audit      *AuditService
	cache      *CacheService
	metrics    *MetricsService
	validator  *validator.Validate
	upload     *upload.Validator
	storage    resumeStore
	mailQueue  mailEnqueuer
	logger     *zap.Logger
}

// NewApplicationService constructs the funnel service.
func NewApplicationService(
	repo applicationRepository,
	jobRepo applicationJobRepository,
	userRepo applicantRepository,
	audit *AuditService,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	uploadValidator *upload.Validator,
	store resumeStore,
	mailQueue mailEnqueuer,
	logger *zap.Logger,
) *ApplicationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApplicationService{
		repo:      repo,
		jobRepo:   jobRepo,
		userRepo:  userRepo,
		audit:     audit,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		upload:    uploadValidator,
		storage:   store,
		mailQueue: mailQueue,
		logger:    logger,
	}
}

// ApplyGuest accepts an application without an account. An unknown email
// provisions a guest identity; a known one reuses it, guest or not.
func (s *ApplicationService) ApplyGuest(ctx context.Context, req GuestApplyRequest, ip, userAgent string) (*models.Application, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid application payload")
	}

	job, err := s.openJob(ctx, req.JobID)
	if err != nil {
		return nil, err
	}

	applicant, err := s.userRepo.FindByEmail(ctx, strings.ToLower(req.Email))
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up applicant")
		}
		applicant = &models.User{
			ID:       uuid.NewString(),
			Email:    strings.ToLower(req.Email),
			FullName: req.FullName,
			Phone:    req.Phone,
			Role:     models.RoleApplicant,
			Guest:    true,
			Active:   true,
		}
		if err := s.userRepo.Create(ctx, applicant); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to provision applicant")
		}
	}

	return s.apply(ctx, job, applicant, req.Skills, req.Message, req.Phone, req.ResumeName, req.ResumeMIME, req.Resume, ip, userAgent)
}

// Apply accepts an application from an authenticated applicant.
func (s *ApplicationService) Apply(ctx context.Context, actor models.AuditActor, req ApplyRequest, ip, userAgent string) (*models.Application, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid application payload")
	}
	if actor.ID == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "applicant identity required")
	}

	job, err := s.openJob(ctx, req.JobID)
	if err != nil {
		return nil, err
	}

	applicant, err := s.userRepo.FindByID(ctx, *actor.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "applicant account no longer exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load applicant")
	}

	return s.apply(ctx, job, applicant, req.Skills, req.Message, applicant.Phone, req.ResumeName, req.ResumeMIME, req.Resume, ip, userAgent)
}

func (s *ApplicationService) apply(ctx context.Context, job *models.Job, applicant *models.User, skills, message, phone, resumeName, resumeMIME string, resume []byte, ip, userAgent string) (*models.Application, error) {
	exists, err := s.repo.ExistsForApplicant(ctx, job.ID, applicant.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check for duplicates")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicateApplication, "you have already applied for this job")
	}

	var resumePath string
	if len(resume) > 0 {
		if s.upload != nil {
			result := s.upload.Validate(resumeName, int64(len(resume)), resumeMIME, resume, upload.FileTypeResume)
			if !result.Valid {
				return nil, appErrors.Clone(appErrors.ErrValidation, strings.Join(result.Errors, "; "))
			}
		}
		stored := fmt.Sprintf("resumes/%s%s", uuid.NewString(), strings.ToLower(filepath.Ext(resumeName)))
		if resumePath, err = s.storage.Save(stored, resume); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store resume")
		}
	}

	app := &models.Application{
		JobID:          job.ID,
		ApplicantID:    applicant.ID,
		Status:         models.StatusApplied,
		ResumePath:     resumePath,
		ApplicantNotes: message,
		Skills:         skills,
		Phone:          phone,
	}
	if err := s.repo.Create(ctx, app); err != nil {
		if resumePath != "" {
			if cleanupErr := s.storage.Delete(resumePath); cleanupErr != nil {
				s.logger.Warn("failed to remove orphaned resume", zap.String("path", resumePath), zap.Error(cleanupErr))
			}
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create application")
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, AuditRecord{
			Actor:      models.AuditActor{ID: &applicant.ID, Name: applicant.FullName, Email: applicant.Email},
			Action:     models.AuditActionApply,
			Resource:   "application",
			ResourceID: app.ID,
			NewValues:  app,
			Details:    fmt.Sprintf("%s applied for %q", applicant.FullName, job.Title),
			IP:         ip,
			UserAgent:  userAgent,
		})
	}

	s.invalidateStats(ctx, job.ID)
	s.enqueueMail(jobs.Job{
		ID:   uuid.NewString(),
		Type: JobApplicationReceived,
		Payload: MailPayload{
			To:            applicant.Email,
			ApplicantName: applicant.FullName,
			JobTitle:      job.Title,
		},
	})

	return app, nil
}

// Get returns a single application.
func (s *ApplicationService) Get(ctx context.Context, id string) (*models.Application, error) {
	app, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	return app, nil
}

// List returns applications matching the filter with pagination metadata.
func (s *ApplicationService) List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, *models.Pagination, error) {
	apps, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return apps, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// UpdateStatus moves an application through the funnel. The status write
// and its audit entry are synchronous; the applicant email is queued after
// both and never blocks the caller. An audit failure is logged but does
// not roll back the status write.
func (s *ApplicationService) UpdateStatus(ctx context.Context, actor models.AuditActor, id string, req UpdateStatusRequest) (*models.Application, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}

	target, err := models.ParseApplicationStatus(req.Status)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	app, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !app.Status.CanTransitionTo(target) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition,
			fmt.Sprintf("cannot move application from %s to %s", app.Status, target))
	}

	before := map[string]interface{}{
		"status":          app.Status,
		"recruiter_notes": app.RecruiterNotes,
	}
	previous := app.Status

	app.Status = target
	app.RecruiterNotes = req.RecruiterNotes
	app.Version = req.Version
	if err := s.repo.UpdateStatus(ctx, app); err != nil {
		if errors.Is(err, repository.ErrVersionMismatch) {
			return nil, appErrors.Clone(appErrors.ErrVersionConflict, "application was updated by someone else; reload and retry")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update status")
	}
	app.StatusUpdatedAt = time.Now().UTC()

	applicant, job := s.loadNotificationTargets(ctx, app)

	details := fmt.Sprintf("status moved from %s to %s", previous, target)
	if applicant != nil && job != nil {
		details = fmt.Sprintf("%s's application for %q moved from %s to %s", applicant.FullName, job.Title, previous, target)
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, AuditRecord{
			Actor:      actor,
			Action:     models.AuditActionStatusChange,
			Resource:   "application",
			ResourceID: app.ID,
			OldValues:  before,
			NewValues:  map[string]interface{}{"status": app.Status, "recruiter_notes": app.RecruiterNotes},
			Details:    details,
		})
	}

	s.metrics.RecordStatusTransition(target)
	s.invalidateStats(ctx, app.JobID)

	if applicant != nil && job != nil {
		s.enqueueMail(jobs.Job{
			ID:   uuid.NewString(),
			Type: JobStatusUpdate,
			Payload: MailPayload{
				To:            applicant.Email,
				ApplicantName: applicant.FullName,
				JobTitle:      job.Title,
				Status:        string(target),
			},
		})
	}

	return app, nil
}

// Withdraw lets an applicant pull their own application out of the funnel.
func (s *ApplicationService) Withdraw(ctx context.Context, actor models.AuditActor, id string) (*models.Application, error) {
	app, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.ID == nil || app.ApplicantID != *actor.ID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "application belongs to another applicant")
	}
	return s.UpdateStatus(ctx, actor, id, UpdateStatusRequest{
		Status:  string(models.StatusWithdrawn),
		Version: app.Version,
	})
}

func (s *ApplicationService) openJob(ctx context.Context, jobID string) (*models.Job, error) {
	job, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load job")
	}
	if !job.Open(time.Now()) {
		return nil, appErrors.Clone(appErrors.ErrJobNotAvailable, "this job is no longer accepting applications")
	}
	return job, nil
}

func (s *ApplicationService) loadNotificationTargets(ctx context.Context, app *models.Application) (*models.User, *models.Job) {
	applicant, err := s.userRepo.FindByID(ctx, app.ApplicantID)
	if err != nil {
		s.logger.Warn("failed to load applicant for notification", zap.String("application_id", app.ID), zap.Error(err))
		return nil, nil
	}
	job, err := s.jobRepo.FindByID(ctx, app.JobID)
	if err != nil {
		s.logger.Warn("failed to load job for notification", zap.String("application_id", app.ID), zap.Error(err))
		return applicant, nil
	}
	return applicant, job
}

func (s *ApplicationService) invalidateStats(ctx context.Context, jobID string) {
	if s.cache == nil || !s.cache.Enabled() {
		return
	}
	if err := s.cache.Invalidate(ctx, "stats:*"); err != nil {
		s.logger.Warn("failed to invalidate stats cache", zap.String("job_id", jobID), zap.Error(err))
	}
}

func (s *ApplicationService) enqueueMail(job jobs.Job) {
	if s.mailQueue == nil {
		return
	}
	if err := s.mailQueue.Enqueue(job); err != nil {
		s.logger.Warn("failed to enqueue notification", zap.String("job_type", job.Type), zap.Error(err))
	}
}
