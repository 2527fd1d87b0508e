package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/ehr-api/internal/model"
	apperrors "github.com/jwalitptl/ehr-api/pkg/errors"
	"github.com/jwalitptl/ehr-api/pkg/metrics"
)

type fakeDashboardRepo struct {
	stats model.DashboardStats
	days  []string
	err   error
}

func (r *fakeDashboardRepo) Stats(ctx context.Context, today model.Date) (*model.DashboardStats, error) {
	r.days = append(r.days, today.String())
	if r.err != nil {
		return nil, r.err
	}
	stats := r.stats
	return &stats, nil
}

func TestStats_Cached(t *testing.T) {
	repo := &fakeDashboardRepo{stats: model.DashboardStats{TotalPatients: 3, PendingPrescriptions: 2}}
	m := metrics.New("test")
	now := time.Date(2025, 1, 15, 23, 59, 0, 0, time.UTC)
	svc := NewService(repo, Config{CacheTTL: time.Hour}, m).WithClock(func() time.Time { return now })
	ctx := context.Background()

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalPatients)

	// callers get copies, never the cached value
	stats.TotalPatients = 100
	repo.stats.TotalPatients = 4

	stats, err = svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalPatients)
	assert.Equal(t, []string{"2025-01-15"}, repo.days)

	// a new day is a new cache key
	now = now.Add(2 * time.Minute)
	stats, err = svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.TotalPatients)
	assert.Equal(t, []string{"2025-01-15", "2025-01-16"}, repo.days)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.DashboardCache.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DashboardCache.WithLabelValues("miss")))
}

func TestStats_Invalidate(t *testing.T) {
	repo := &fakeDashboardRepo{stats: model.DashboardStats{PendingPrescriptions: 2}}
	svc := NewService(repo, Config{CacheTTL: time.Hour}, nil)
	ctx := context.Background()

	_, err := svc.Stats(ctx)
	require.NoError(t, err)

	repo.stats.PendingPrescriptions = 3
	svc.Invalidate()

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.PendingPrescriptions)
	assert.Len(t, repo.days, 2)
}

func TestStats_NoCache(t *testing.T) {
	repo := &fakeDashboardRepo{}
	svc := NewService(repo, Config{}, nil)

	for i := 0; i < 3; i++ {
		_, err := svc.Stats(context.Background())
		require.NoError(t, err)
	}
	assert.Len(t, repo.days, 3)
}

func TestStats_Error(t *testing.T) {
	repo := &fakeDashboardRepo{err: errors.New("connection refused")}
	svc := NewService(repo, Config{CacheTTL: time.Minute}, nil)

	_, err := svc.Stats(context.Background())
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrInternal, appErr.Code)

	// failures are not cached
	repo.err = nil
	_, err = svc.Stats(context.Background())
	assert.NoError(t, err)
}
