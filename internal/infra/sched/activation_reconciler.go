package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"ielts-payme-billing/internal/infra/metrics"
	"ielts-payme-billing/internal/usecase"
)

const jobActivationReconciler = "activation_reconciler"

// ActivationReconciler periodically retries subscription activation for PAID
// orders whose post-commit activation never completed.
type ActivationReconciler struct {
	uc         usecase.ActivationUseCase
	locker     Locker
	interval   time.Duration // how often to scan
	staleAfter time.Duration // how long a paid order may stay unactivated
	batch      int
	now        func() time.Time
	log        *zerolog.Logger
}

func NewActivationReconciler(uc usecase.ActivationUseCase, locker Locker, interval, staleAfter time.Duration, batch int, logger *zerolog.Logger) *ActivationReconciler {
	if interval <= 0 {
		interval = time.Minute
	}
	if staleAfter <= 0 {
		staleAfter = 5 * time.Minute
	}
	if batch <= 0 {
		batch = 100
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "ActivationReconciler").Logger()
	return &ActivationReconciler{uc: uc, locker: locker, interval: interval, staleAfter: staleAfter, batch: batch, now: time.Now, log: &l}
}

func (w *ActivationReconciler) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting activation reconciler")
	err := loop(ctx, w.interval, func(ctx context.Context) {
		runExclusive(ctx, w.locker, "lock:job:"+jobActivationReconciler, w.interval, w.log, w.tick)
	})
	w.log.Info().Msg("Stopping activation reconciler")
	return err
}

func (w *ActivationReconciler) tick(ctx context.Context) {
	n, err := w.uc.ReconcilePaidOrders(ctx, w.now().Add(-w.staleAfter), w.batch)
	if err != nil {
		metrics.IncJob(jobActivationReconciler, "failed")
		w.log.Error().Err(err).Msg("reconcile paid orders failed")
		return
	}
	metrics.AddJob(jobActivationReconciler, "ok", n)
	if n > 0 {
		w.log.Info().Int("count", n).Msg("activated stale paid orders")
	}
}
