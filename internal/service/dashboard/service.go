package dashboard

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/ehr-api/internal/model"
	"github.com/jwalitptl/ehr-api/internal/repository"
	"github.com/jwalitptl/ehr-api/internal/service"
	"github.com/jwalitptl/ehr-api/pkg/metrics"
)

type DashboardService interface {
	Stats(ctx context.Context) (*model.DashboardStats, error)
}

type Config struct {
	// CacheTTL keeps computed stats for this long; zero disables caching.
	// Writes through the patient, record and prescription services clear
	// the cache early.
	CacheTTL time.Duration
}

type Service struct {
	repo    repository.DashboardRepository
	cache   *cache.Cache
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewService(repo repository.DashboardRepository, config Config, m *metrics.Metrics) *Service {
	s := &Service{
		repo:    repo,
		metrics: m,
		now:     time.Now,
	}
	if config.CacheTTL > 0 {
		s.cache = cache.New(config.CacheTTL, 2*config.CacheTTL)
	}
	return s
}

// WithClock replaces the clock that decides "today"
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Stats returns the counters as of the server's current local date.
// Entries are keyed by date so a cached value never crosses midnight.
func (s *Service) Stats(ctx context.Context) (*model.DashboardStats, error) {
	today := model.NewDate(s.now())
	key := today.String()

	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			s.record("hit")
			stats := *cached.(*model.DashboardStats)
			return &stats, nil
		}
		s.record("miss")
	}

	stats, err := s.repo.Stats(ctx, today)
	if err != nil {
		return nil, service.StorageError("dashboard stats", err)
	}

	if s.cache != nil {
		copied := *stats
		s.cache.SetDefault(key, &copied)
	}

	log.Debug().
		Str("date", key).
		Int64("total_patients", stats.TotalPatients).
		Int64("pending_prescriptions", stats.PendingPrescriptions).
		Msg("dashboard stats computed")

	return stats, nil
}

// Invalidate drops every cached entry
func (s *Service) Invalidate() {
	if s.cache != nil {
		s.cache.Flush()
	}
}

func (s *Service) record(result string) {
	if s.metrics != nil {
		s.metrics.DashboardCache.WithLabelValues(result).Inc()
	}
}
