package postgres

import (
	"context"
	"fmt"

	"github.com/jwalitptl/ehr-api/internal/model"
	"github.com/jwalitptl/ehr-api/internal/repository"
)

// statsQuery computes all four counters as scalar subqueries of a single
// statement, so they are read from one snapshot. The lab results window is
// bounded by today on both ends; records dated in the future are not
// counted.
const statsQuery = `
	SELECT
		(SELECT COUNT(*) FROM patients) AS total_patients,
		(SELECT COUNT(*) FROM medical_records WHERE visit_date = $1) AS today_appointments,
		(SELECT COUNT(*) FROM prescriptions WHERE is_dispensed = FALSE) AS pending_prescriptions,
		(SELECT COUNT(*) FROM medical_records
			WHERE visit_date BETWEEN $2 AND $1 AND treatment IS NOT NULL) AS lab_results_ready
`

type dashboardRepository struct {
	BaseRepository
}

func NewDashboardRepository(base BaseRepository) repository.DashboardRepository {
	return &dashboardRepository{base}
}

func (r *dashboardRepository) Stats(ctx context.Context, today model.Date) (stats *model.DashboardStats, err error) {
	defer r.observe("dashboard.stats")(&err)

	windowStart := today.AddDays(-model.LabResultWindowDays)

	stats = &model.DashboardStats{}
	if err = r.GetDB().GetContext(ctx, stats, statsQuery, today, windowStart); err != nil {
		return nil, fmt.Errorf("failed to compute dashboard stats: %w", err)
	}
	return stats, nil
}
