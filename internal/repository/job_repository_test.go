package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AyaSox/Recruitment-system-sub000/internal/models"
)

func jobRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "title", "description", "location", "department", "employment_type", "experience_level", "salary_min", "salary_max", "salary_currency", "closing_date", "posted_date", "is_published", "is_approved", "created_by", "created_at", "updated_at"}).
		AddRow("job-1", "Backend Engineer", "Build services", "Cape Town", "Engineering", "Full-time", "Mid", nil, nil, "ZAR", now.Add(30*24*time.Hour), now, true, true, "user-1", now, now)
}

func TestJobFindByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewJobRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM jobs WHERE id").
		WithArgs("job-1").
		WillReturnRows(jobRows(time.Now()))

	job, err := repo.FindByID(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", job.Title)
	assert.True(t, job.IsPublished)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobListWithFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewJobRepository(db)

	published := true
	mock.ExpectQuery("SELECT (.+) FROM jobs").WillReturnRows(jobRows(time.Now()))
	mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	jobs, total, err := repo.List(context.Background(), models.JobFilter{
		Department: "Engineering",
		Published:  &published,
		Page:       1,
		PageSize:   20,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, jobs, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobCreateSetsPostedDate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewJobRepository(db)

	mock.ExpectExec("INSERT INTO jobs").WillReturnResult(sqlmock.NewResult(1, 1))

	job := &models.Job{Title: "QA Analyst", Description: "Test things", Location: "Remote", Department: "Engineering", CreatedBy: "user-1"}
	err := repo.Create(context.Background(), job)
	require.NoError(t, err)
	assert.NotEmpty(t, job.ID)
	assert.False(t, job.PostedDate.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobSetPublishedAlsoApproves(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewJobRepository(db)

	mock.ExpectExec("UPDATE jobs SET is_published").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SetPublished(context.Background(), "job-1", true)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobCountApplications(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewJobRepository(db)

	mock.ExpectQuery("SELECT COUNT(.+) FROM applications").
		WithArgs("job-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountApplications(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobDelete(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewJobRepository(db)

	mock.ExpectExec("DELETE FROM jobs").
		WithArgs("job-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Delete(context.Background(), "job-1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
