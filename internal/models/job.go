package models

import "time"

// Job represents a job posting.
type Job struct {
	ID              string    `db:"id" json:"id"`
	Title           string    `db:"title" json:"title"`
	Description     string    `db:"description" json:"description"`
	Location        string    `db:"location" json:"location"`
	Department      string    `db:"department" json:"department"`
	EmploymentType  string    `db:"employment_type" json:"employment_type"`
	ExperienceLevel string    `db:"experience_level" json:"experience_level"`
	SalaryMin       *float64  `db:"salary_min" json:"salary_min,omitempty"`
	SalaryMax       *float64  `db:"salary_max" json:"salary_max,omitempty"`
	SalaryCurrency  string    `db:"salary_currency" json:"salary_currency,omitempty"`
	ClosingDate     time.Time `db:"closing_date" json:"closing_date"`
	PostedDate      time.Time `db:"posted_date" json:"posted_date"`
	IsPublished     bool      `db:"is_published" json:"is_published"`
	IsApproved      bool      `db:"is_approved" json:"is_approved"`
	CreatedBy       string    `db:"created_by" json:"created_by"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// Open reports whether the job currently accepts applications.
func (j *Job) Open(now time.Time) bool {
	return j.IsPublished && j.ClosingDate.After(now)
}

// JobFilter captures filtering criteria for listing jobs.
type JobFilter struct {
	Department string
	Location   string
	Published  *bool
	Search     string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
