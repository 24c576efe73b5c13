package events

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"ielts-payme-billing/internal/domain/ports/adapter"
	"ielts-payme-billing/internal/infra/metrics"
	"ielts-payme-billing/internal/infra/worker"
)

const jobPaymentEvents = "payment_events"

// Submitter is satisfied by *worker.Pool.
type Submitter interface {
	Submit(task worker.Task) error
}

// AsyncPublisher hands events to a worker pool so the Payme callback never
// waits on the broker. Publish only fails when the queue rejects the event.
type AsyncPublisher struct {
	next    adapter.PaymentEventPublisher
	pool    Submitter
	timeout time.Duration
	log     *zerolog.Logger
}

func NewAsyncPublisher(next adapter.PaymentEventPublisher, pool Submitter, timeout time.Duration, logger *zerolog.Logger) *AsyncPublisher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "AsyncPublisher").Logger()
	return &AsyncPublisher{next: next, pool: pool, timeout: timeout, log: &l}
}

func (a *AsyncPublisher) Publish(_ context.Context, ev adapter.PaymentEvent) error {
	err := a.pool.Submit(func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
		defer cancel()
		if err := a.next.Publish(ctx, ev); err != nil {
			metrics.IncJob(jobPaymentEvents, "failed")
			a.log.Error().Err(err).Str("event_id", ev.ID).Str("order_id", ev.OrderID).Msg("payment event lost")
			return err
		}
		metrics.IncJob(jobPaymentEvents, "ok")
		return nil
	})
	if err != nil {
		metrics.IncJob(jobPaymentEvents, "dropped")
		return err
	}
	return nil
}

// Close closes the downstream publisher. Stop the pool first so queued events
// are flushed.
func (a *AsyncPublisher) Close() error {
	return a.next.Close()
}
