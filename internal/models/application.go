package models

import (
	"fmt"
	"strings"
	"time"
)

// ApplicationStatus is the closed set of funnel stages.
type ApplicationStatus string

const (
	StatusApplied   ApplicationStatus = "Applied"
	StatusScreening ApplicationStatus = "Screening"
	StatusInterview ApplicationStatus = "Interview"
	StatusOffer     ApplicationStatus = "Offer"
	StatusHired     ApplicationStatus = "Hired"
	StatusRejected  ApplicationStatus = "Rejected"
	StatusWithdrawn ApplicationStatus = "Withdrawn"
)

// allowedTransitions defines the funnel graph. Rejected and Withdrawn are
// reachable from every non-terminal stage; Hired, Rejected and Withdrawn
// are terminal.
var allowedTransitions = map[ApplicationStatus][]ApplicationStatus{
	StatusApplied:   {StatusScreening, StatusInterview, StatusRejected, StatusWithdrawn},
	StatusScreening: {StatusInterview, StatusOffer, StatusRejected, StatusWithdrawn},
	StatusInterview: {StatusOffer, StatusRejected, StatusWithdrawn},
	StatusOffer:     {StatusHired, StatusRejected, StatusWithdrawn},
	StatusHired:     {},
	StatusRejected:  {},
	StatusWithdrawn: {},
}

// ParseApplicationStatus maps free input onto the closed status set.
func ParseApplicationStatus(raw string) (ApplicationStatus, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("empty application status")
	}
	candidate := ApplicationStatus(strings.ToUpper(trimmed[:1]) + strings.ToLower(trimmed[1:]))
	if _, ok := allowedTransitions[candidate]; !ok {
		return "", fmt.Errorf("unknown application status %q", raw)
	}
	return candidate, nil
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the status has no outgoing transitions.
func (s ApplicationStatus) Terminal() bool {
	return len(allowedTransitions[s]) == 0
}

// AllStatuses returns the closed status vocabulary in funnel order.
func AllStatuses() []ApplicationStatus {
	return []ApplicationStatus{
		StatusApplied,
		StatusScreening,
		StatusInterview,
		StatusOffer,
		StatusHired,
		StatusRejected,
		StatusWithdrawn,
	}
}

// Application represents a candidate's application to a job. Version is an
// optimistic concurrency token: status updates carry the version they read
// and fail on mismatch instead of silently losing a concurrent write.
type Application struct {
	ID              string            `db:"id" json:"id"`
	JobID           string            `db:"job_id" json:"job_id"`
	ApplicantID     string            `db:"applicant_id" json:"applicant_id"`
	Status          ApplicationStatus `db:"status" json:"status"`
	StatusUpdatedAt time.Time         `db:"status_updated_at" json:"status_updated_at"`
	AppliedAt       time.Time         `db:"applied_at" json:"applied_at"`
	ResumePath      string            `db:"resume_path" json:"resume_path,omitempty"`
	ApplicantNotes  string            `db:"applicant_notes" json:"applicant_notes,omitempty"`
	RecruiterNotes  string            `db:"recruiter_notes" json:"recruiter_notes,omitempty"`
	Skills          string            `db:"skills" json:"skills,omitempty"`
	Phone           string            `db:"phone" json:"phone,omitempty"`
	Version         int               `db:"version" json:"version"`
	CreatedAt       time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time         `db:"updated_at" json:"updated_at"`
}

// ApplicationFilter captures filtering criteria for listing applications.
type ApplicationFilter struct {
	JobID       string
	ApplicantID string
	Status      *ApplicationStatus
	Page        int
	PageSize    int
}

// StatusCount is one bucket of the funnel statistics aggregation.
type StatusCount struct {
	Status ApplicationStatus `db:"status" json:"status"`
	Count  int               `db:"count" json:"count"`
}
