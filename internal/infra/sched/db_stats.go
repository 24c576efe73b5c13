package sched

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"ielts-payme-billing/internal/infra/metrics"
)

// PoolStatter is satisfied by *pgxpool.Pool.
type PoolStatter interface {
	Stat() *pgxpool.Stat
}

// ReportDBStats publishes connection pool gauges every interval until ctx ends.
func ReportDBStats(ctx context.Context, pool PoolStatter, interval time.Duration) error {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	report := func(context.Context) {
		s := pool.Stat()
		metrics.SetDBPoolStats(s.TotalConns(), s.IdleConns(), s.AcquiredConns())
	}
	report(ctx)
	return loop(ctx, interval, report)
}
