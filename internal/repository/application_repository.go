package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/AyaSox/Recruitment-system-sub000/internal/models"
)

// ErrVersionMismatch signals a lost optimistic-concurrency race on update.
var ErrVersionMismatch = fmt.Errorf("application version mismatch")

// ApplicationRepository provides database access for applications.
type ApplicationRepository struct {
	db *sqlx.DB
}

// NewApplicationRepository creates a new instance of ApplicationRepository.
func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

const applicationColumns = `id, job_id, applicant_id, status, status_updated_at, applied_at, resume_path, applicant_notes, recruiter_notes, skills, phone, version, created_at, updated_at`

// FindByID returns an application by identifier.
func (r *ApplicationRepository) FindByID(ctx context.Context, id string) (*models.Application, error) {
	query := fmt.Sprintf(`SELECT %s FROM applications WHERE id = $1 LIMIT 1`, applicationColumns)
	var app models.Application
	if err := r.db.GetContext(ctx, &app, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find application by id: %w", err)
	}
	return &app, nil
}

// ExistsForApplicant reports whether an application exists for the job/applicant pair.
func (r *ApplicationRepository) ExistsForApplicant(ctx context.Context, jobID, applicantID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM applications WHERE job_id = $1 AND applicant_id = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, jobID, applicantID); err != nil {
		return false, fmt.Errorf("check application existence: %w", err)
	}
	return exists, nil
}

// List returns applications based on filters with total count.
func (r *ApplicationRepository) List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, int, error) {
	baseQuery := `FROM applications WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.JobID != "" {
		conditions = append(conditions, fmt.Sprintf("job_id = $%d", len(args)+1))
		args = append(args, filter.JobID)
	}
	if filter.ApplicantID != "" {
		conditions = append(conditions, fmt.Sprintf("applicant_id = $%d", len(args)+1))
		args = append(args, filter.ApplicantID)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY applied_at DESC LIMIT %d OFFSET %d", applicationColumns, baseQuery, pageSize, offset)

	var apps []models.Application
	if err := r.db.SelectContext(ctx, &apps, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list applications: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}

	return apps, total, nil
}

// Create inserts a new application.
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if app.CreatedAt.IsZero() {
		app.CreatedAt = now
	}
	if app.AppliedAt.IsZero() {
		app.AppliedAt = now
	}
	if app.StatusUpdatedAt.IsZero() {
		app.StatusUpdatedAt = now
	}
	if app.Version == 0 {
		app.Version = 1
	}
	app.UpdatedAt = now

	const query = `INSERT INTO applications (id, job_id, applicant_id, status, status_updated_at, applied_at, resume_path, applicant_notes, recruiter_notes, skills, phone, version, created_at, updated_at) VALUES (:id, :job_id, :applicant_id, :status, :status_updated_at, :applied_at, :resume_path, :applicant_notes, :recruiter_notes, :skills, :phone, :version, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, app); err != nil {
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

// UpdateStatus writes the new status, recruiter notes and timestamps guarded
// by the optimistic version token. A zero-row update means a concurrent
// writer won; ErrVersionMismatch is returned instead of silently losing it.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, app *models.Application) error {
	const query = `UPDATE applications SET status = $2, recruiter_notes = $3, status_updated_at = $4, updated_at = $4, version = version + 1 WHERE id = $1 AND version = $5`
	result, err := r.db.ExecContext(ctx, query, app.ID, app.Status, app.RecruiterNotes, time.Now().UTC(), app.Version)
	if err != nil {
		return fmt.Errorf("update application status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update application status rows: %w", err)
	}
	if affected == 0 {
		return ErrVersionMismatch
	}
	app.Version++
	return nil
}

// StatusCounts aggregates applications per status. An empty jobID yields the
// system-wide funnel.
func (r *ApplicationRepository) StatusCounts(ctx context.Context, jobID string) ([]models.StatusCount, error) {
	var counts []models.StatusCount
	if jobID == "" {
		const query = `SELECT status, COUNT(*) AS count FROM applications GROUP BY status ORDER BY status`
		if err := r.db.SelectContext(ctx, &counts, query); err != nil {
			return nil, fmt.Errorf("aggregate status counts: %w", err)
		}
		return counts, nil
	}
	const query = `SELECT status, COUNT(*) AS count FROM applications WHERE job_id = $1 GROUP BY status ORDER BY status`
	if err := r.db.SelectContext(ctx, &counts, query, jobID); err != nil {
		return nil, fmt.Errorf("aggregate status counts for job: %w", err)
	}
	return counts, nil
}
