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

func TestAuditCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAuditRepository(db)

	mock.ExpectExec("INSERT INTO audit_logs").WillReturnResult(sqlmock.NewResult(1, 1))

	entry := &models.AuditLog{
		UserName: models.SystemActorName,
		Action:   models.AuditActionStatusChange,
		Resource: "application",
	}
	err := repo.Create(context.Background(), entry)
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditListFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAuditRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "user_name", "user_email", "action", "resource", "resource_id", "old_values", "new_values", "details", "ip_address", "user_agent", "created_at"}).
		AddRow("log-1", nil, "System", "", "STATUS_CHANGE", "application", "app-1", nil, nil, "Applied -> Screening", "localhost", "", now)
	mock.ExpectQuery("SELECT (.+) FROM audit_logs").WillReturnRows(rows)
	mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	entries, total, err := repo.List(context.Background(), models.AuditFilter{Resource: "application", Page: 1, PageSize: 50})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, entries, 1)
	assert.Equal(t, "System", entries[0].UserName)
	assert.NoError(t, mock.ExpectationsWereMet())
}
