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

func TestApplicationExistsForApplicant(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("job-1", "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsForApplicant(context.Background(), "job-1", "user-1")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationCreateDefaults(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectExec("INSERT INTO applications").WillReturnResult(sqlmock.NewResult(1, 1))

	app := &models.Application{JobID: "job-1", ApplicantID: "user-1", Status: models.StatusApplied}
	err := repo.Create(context.Background(), app)
	require.NoError(t, err)
	assert.NotEmpty(t, app.ID)
	assert.Equal(t, 1, app.Version)
	assert.False(t, app.AppliedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusIncrementsVersion(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectExec("UPDATE applications SET status").
		WillReturnResult(sqlmock.NewResult(0, 1))

	app := &models.Application{ID: "app-1", Status: models.StatusScreening, Version: 3}
	err := repo.UpdateStatus(context.Background(), app)
	require.NoError(t, err)
	assert.Equal(t, 4, app.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusVersionMismatch(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectExec("UPDATE applications SET status").
		WillReturnResult(sqlmock.NewResult(0, 0))

	app := &models.Application{ID: "app-1", Status: models.StatusScreening, Version: 2}
	err := repo.UpdateStatus(context.Background(), app)
	assert.ErrorIs(t, err, ErrVersionMismatch)
	assert.Equal(t, 2, app.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatusCountsSystemWide(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	rows := sqlmock.NewRows([]string{"status", "count"}).
		AddRow("Applied", 4).
		AddRow("Hired", 1)
	mock.ExpectQuery("SELECT status, COUNT").WillReturnRows(rows)

	counts, err := repo.StatusCounts(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, models.StatusApplied, counts[0].Status)
	assert.Equal(t, 4, counts[0].Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationList(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "job_id", "applicant_id", "status", "status_updated_at", "applied_at", "resume_path", "applicant_notes", "recruiter_notes", "skills", "phone", "version", "created_at", "updated_at"}).
		AddRow("app-1", "job-1", "user-1", "Applied", now, now, "resumes/app-1.pdf", "", "", "", "", 1, now, now)
	mock.ExpectQuery("SELECT (.+) FROM applications").WillReturnRows(rows)
	mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	apps, total, err := repo.List(context.Background(), models.ApplicationFilter{JobID: "job-1", Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, apps, 1)
	assert.Equal(t, models.StatusApplied, apps[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
