package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AyaSox/Recruitment-system-sub000/internal/models"
)

type mockStatsRepo struct {
	counts []models.StatusCount
	calls  int
}

func (m *mockStatsRepo) StatusCounts(ctx context.Context, jobID string) ([]models.StatusCount, error) {
	m.calls++
	return m.counts, nil
}

func TestFunnelCountsZeroFillsStatuses(t *testing.T) {
	repo := &mockStatsRepo{counts: []models.StatusCount{
		{Status: models.StatusApplied, Count: 4},
		{Status: models.StatusHired, Count: 1},
	}}
	svc := NewStatsService(repo, nil, 0, zap.NewNop())

	stats, err := svc.FunnelCounts(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Total)
	assert.Len(t, stats.ByStatus, len(models.AllStatuses()))

	byStatus := make(map[models.ApplicationStatus]int)
	for _, c := range stats.ByStatus {
		byStatus[c.Status] = c.Count
	}
	assert.Equal(t, 4, byStatus[models.StatusApplied])
	assert.Equal(t, 1, byStatus[models.StatusHired])
	assert.Equal(t, 0, byStatus[models.StatusRejected])
	assert.Equal(t, 0, byStatus[models.StatusInterview])
}

func TestFunnelCountsPerJobKey(t *testing.T) {
	assert.Equal(t, "stats:funnel", statsKey(""))
	assert.Equal(t, "stats:job:job-1", statsKey("job-1"))
}

func TestFunnelCountsHitsRepoWithoutCache(t *testing.T) {
	repo := &mockStatsRepo{}
	svc := NewStatsService(repo, nil, 0, zap.NewNop())

	_, err := svc.FunnelCounts(context.Background(), "job-1")
	require.NoError(t, err)
	_, err = svc.FunnelCounts(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)
}
