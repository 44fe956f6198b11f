package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/AyaSox/Recruitment-system-sub000/internal/models"
	appErrors "github.com/AyaSox/Recruitment-system-sub000/pkg/errors"
)

type statsRepository interface {
	StatusCounts(ctx context.Context, jobID string) ([]models.StatusCount, error)
}

// FunnelStats is the aggregated view returned by the statistics endpoint.
// Every status appears, zero-filled when no application holds it.
type FunnelStats struct {
	JobID       string               `json:"job_id,omitempty"`
	Total       int                  `json:"total"`
	ByStatus    []models.StatusCount `json:"by_status"`
	GeneratedAt time.Time            `json:"generated_at"`
}

// StatsService aggregates funnel statistics with a short-TTL cache in
// front of the database.
type StatsService struct {
	repo   statsRepository
	cache  *CacheService
	ttl    time.Duration
	logger *zap.Logger
}

// NewStatsService constructs the statistics service.
func NewStatsService(repo statsRepository, cache *CacheService, ttl time.Duration, logger *zap.Logger) *StatsService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

// FunnelCounts returns per-status application counts. An empty jobID
// aggregates the whole system. Results are cached; any status write
// invalidates the stats keyspace.
func (s *StatsService) FunnelCounts(ctx context.Context, jobID string) (*FunnelStats, error) {
	key := statsKey(jobID)

	var cached FunnelStats
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	counts, err := s.repo.StatusCounts(ctx, jobID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate funnel statistics")
	}

	stats := &FunnelStats{
		JobID:       jobID,
		ByStatus:    zeroFill(counts),
		GeneratedAt: time.Now().UTC(),
	}
	for _, c := range counts {
		stats.Total += c.Count
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, stats, s.ttl); err != nil {
			s.logger.Warn("failed to cache funnel statistics", zap.String("key", key), zap.Error(err))
		}
	}
	return stats, nil
}

func statsKey(jobID string) string {
	if jobID == "" {
		return "stats:funnel"
	}
	return fmt.Sprintf("stats:job:%s", jobID)
}

func zeroFill(counts []models.StatusCount) []models.StatusCount {
	byStatus := make(map[models.ApplicationStatus]int, len(counts))
	for _, c := range counts {
		byStatus[c.Status] = c.Count
	}
	out := make([]models.StatusCount, 0, len(models.AllStatuses()))
	for _, status := range models.AllStatuses() {
		out = append(out, models.StatusCount{Status: status, Count: byStatus[status]})
	}
	return out
}
