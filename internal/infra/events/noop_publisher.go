package events

import (
	"context"

	"github.com/rs/zerolog"

	"ielts-payme-billing/internal/domain/ports/adapter"
)

// NoopPublisher logs events at debug level. Used when Kafka is not configured.
type NoopPublisher struct {
	log *zerolog.Logger
}

func NewNoopPublisher(logger *zerolog.Logger) *NoopPublisher {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &NoopPublisher{log: logger}
}

func (n *NoopPublisher) Publish(_ context.Context, ev adapter.PaymentEvent) error {
	n.log.Debug().Str("event", string(ev.Type)).Str("order_id", ev.OrderID).Msg("payment event (noop)")
	return nil
}

func (n *NoopPublisher) Close() error { return nil }
