package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/ehr-api/pkg/metrics"
)

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	db      *sqlx.DB
	metrics *metrics.Metrics
}

// NewBaseRepository creates a new base repository. m may be nil.
func NewBaseRepository(db *sqlx.DB, m *metrics.Metrics) BaseRepository {
	return BaseRepository{db: db, metrics: m}
}

// GetDB returns the database instance
func (r *BaseRepository) GetDB() *sqlx.DB {
	return r.db
}

// observe starts timing a database operation. Call the returned func
// with the operation's named error on return:
//
//	defer r.observe("patient.create")(&err)
func (r *BaseRepository) observe(operation string) func(*error) {
	start := time.Now()
	return func(errp *error) {
		if r.metrics == nil {
			return
		}
		status := "ok"
		if errp != nil && *errp != nil {
			status = "error"
		}
		r.metrics.DatabaseOperations.WithLabelValues(operation, status).Inc()
		r.metrics.DatabaseLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}

// execAffecting runs a write that must touch exactly one row
func (r *BaseRepository) execAffecting(ctx context.Context, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return translate(err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return errNotFound
	}
	return nil
}
