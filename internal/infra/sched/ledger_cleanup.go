package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"ielts-payme-billing/internal/infra/metrics"
	"ielts-payme-billing/internal/usecase"
)

const jobLedgerCleanup = "ledger_cleanup"

// LedgerCleanup deletes cancelled transactions older than the retention window.
type LedgerCleanup struct {
	uc        usecase.LedgerUseCase
	locker    Locker
	interval  time.Duration
	retention time.Duration
	now       func() time.Time
	log       *zerolog.Logger
}

func NewLedgerCleanup(uc usecase.LedgerUseCase, locker Locker, interval, retention time.Duration, logger *zerolog.Logger) *LedgerCleanup {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	if retention <= 0 {
		retention = 90 * 24 * time.Hour
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "LedgerCleanup").Logger()
	return &LedgerCleanup{uc: uc, locker: locker, interval: interval, retention: retention, now: time.Now, log: &l}
}

func (w *LedgerCleanup) Run(ctx context.Context) error {
	w.log.Info().Dur("retention", w.retention).Msg("Starting ledger cleanup")
	err := loop(ctx, w.interval, func(ctx context.Context) {
		runExclusive(ctx, w.locker, "lock:job:"+jobLedgerCleanup, w.interval, w.log, w.tick)
	})
	w.log.Info().Msg("Stopping ledger cleanup")
	return err
}

func (w *LedgerCleanup) tick(ctx context.Context) {
	n, err := w.uc.CleanupCancelled(ctx, w.now().Add(-w.retention))
	if err != nil {
		metrics.IncJob(jobLedgerCleanup, "failed")
		w.log.Error().Err(err).Msg("ledger cleanup failed")
		return
	}
	metrics.AddJob(jobLedgerCleanup, "ok", int(n))
	if n > 0 {
		w.log.Info().Int64("deleted", n).Msg("cancelled transactions removed")
	}
}
