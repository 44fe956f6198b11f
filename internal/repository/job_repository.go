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

// JobRepository provides database access for job postings.
type JobRepository struct {
	db *sqlx.DB
}

// NewJobRepository creates a new instance of JobRepository.
func NewJobRepository(db *sqlx.DB) *JobRepository {
	return &JobRepository{db: db}
}

const jobColumns = `id, title, description, location, department, employment_type, experience_level, salary_min, salary_max, salary_currency, closing_date, posted_date, is_published, is_approved, created_by, created_at, updated_at`

// FindByID returns a job by identifier.
func (r *JobRepository) FindByID(ctx context.Context, id string) (*models.Job, error) {
	query := fmt.Sprintf(`SELECT %s FROM jobs WHERE id = $1 LIMIT 1`, jobColumns)
	var job models.Job
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find job by id: %w", err)
	}
	return &job, nil
}

// List returns jobs based on filters with total count.
func (r *JobRepository) List(ctx context.Context, filter models.JobFilter) ([]models.Job, int, error) {
	baseQuery := `FROM jobs WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("department = $%d", len(args)+1))
		args = append(args, filter.Department)
	}
	if filter.Location != "" {
		conditions = append(conditions, fmt.Sprintf("location = $%d", len(args)+1))
		args = append(args, filter.Location)
	}
	if filter.Published != nil {
		conditions = append(conditions, fmt.Sprintf("is_published = $%d", len(args)+1))
		args = append(args, *filter.Published)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(title) LIKE $%d OR LOWER(description) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "posted_date"
	}
	allowedSorts := map[string]bool{
		"title":        true,
		"posted_date":  true,
		"closing_date": true,
		"department":   true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "posted_date"
	}

	sortOrder := strings.ToUpper(filter.SortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "DESC"
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

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", jobColumns, baseQuery, sortBy, sortOrder, pageSize, offset)

	var jobs []models.Job
	if err := r.db.SelectContext(ctx, &jobs, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list jobs: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count jobs: %w", err)
	}

	return jobs, total, nil
}

// Create inserts a new job posting.
func (r *JobRepository) Create(ctx context.Context, job *models.Job) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	if job.PostedDate.IsZero() {
		job.PostedDate = now
	}
	job.UpdatedAt = now

	const query = `INSERT INTO jobs (id, title, description, location, department, employment_type, experience_level, salary_min, salary_max, salary_currency, closing_date, posted_date, is_published, is_approved, created_by, created_at, updated_at) VALUES (:id, :title, :description, :location, :department, :employment_type, :experience_level, :salary_min, :salary_max, :salary_currency, :closing_date, :posted_date, :is_published, :is_approved, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

// Update updates mutable fields of a job posting.
func (r *JobRepository) Update(ctx context.Context, job *models.Job) error {
	job.UpdatedAt = time.Now().UTC()
	const query = `UPDATE jobs SET title = :title, description = :description, location = :location, department = :department, employment_type = :employment_type, experience_level = :experience_level, salary_min = :salary_min, salary_max = :salary_max, salary_currency = :salary_currency, closing_date = :closing_date, is_published = :is_published, is_approved = :is_approved, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	return nil
}

// SetPublished flips the publish flags. Publishing force-approves the job.
func (r *JobRepository) SetPublished(ctx context.Context, id string, published bool) error {
	const query = `UPDATE jobs SET is_published = $2, is_approved = CASE WHEN $2 THEN TRUE ELSE is_approved END, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, published, time.Now().UTC()); err != nil {
		return fmt.Errorf("set job published: %w", err)
	}
	return nil
}

// CountApplications returns how many applications reference the job.
func (r *JobRepository) CountApplications(ctx context.Context, id string) (int, error) {
	const query = `SELECT COUNT(*) FROM applications WHERE job_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, id); err != nil {
		return 0, fmt.Errorf("count job applications: %w", err)
	}
	return count, nil
}

// Delete removes a job posting. Callers must enforce the no-applications guard.
func (r *JobRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM jobs WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	return nil
}
