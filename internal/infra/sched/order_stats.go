package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"ielts-payme-billing/internal/domain/model"
	"ielts-payme-billing/internal/domain/ports/repository"
	"ielts-payme-billing/internal/infra/metrics"
)

// OrderCounter is satisfied by the order repository.
type OrderCounter interface {
	CountByStatus(ctx context.Context, tx repository.Tx) (map[model.OrderStatus]int, error)
}

// ReportOrderStats publishes the orders_by_status gauge every interval until ctx ends.
func ReportOrderStats(ctx context.Context, orders OrderCounter, interval time.Duration, logger *zerolog.Logger) error {
	if interval <= 0 {
		interval = time.Minute
	}
	report := func(ctx context.Context) {
		counts, err := orders.CountByStatus(ctx, repository.NoTX)
		if err != nil {
			logger.Warn().Err(err).Msg("count orders by status failed")
			return
		}
		out := make(map[string]int, len(counts))
		for status, n := range counts {
			out[string(status)] = n
		}
		metrics.SetOrdersByStatus(out)
	}
	report(ctx)
	return loop(ctx, interval, report)
}
