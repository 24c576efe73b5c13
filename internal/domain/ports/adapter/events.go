package adapter

import (
	"context"
	"time"
)

type PaymentEventType string

const (
	PaymentEventPerformed PaymentEventType = "payment.performed"
	PaymentEventCancelled PaymentEventType = "payment.cancelled"
)

// PaymentEvent is published after a transaction reaches a terminal state.
type PaymentEvent struct {
	ID            string           `json:"id"`
	Type          PaymentEventType `json:"type"`
	TransactionID string           `json:"transaction_id"`
	OrderID       string           `json:"order_id"`
	UserID        string           `json:"user_id"`
	PlanID        string           `json:"plan_id"`
	Amount        int64            `json:"amount"`
	State         int              `json:"state"`
	Reason        *int             `json:"reason,omitempty"`
	OccurredAt    time.Time        `json:"occurred_at"`
}

// PaymentEventPublisher is best effort: a failed publish never fails the
// payment that produced it.
type PaymentEventPublisher interface {
	Publish(ctx context.Context, ev PaymentEvent) error
	Close() error
}
