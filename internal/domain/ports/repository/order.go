package repository

import (
	"context"
	"time"

	"ielts-payme-billing/internal/domain/model"
)

// -----------------------------
// Orders
// -----------------------------

type OrderRepository interface {
	// Save inserts a new order. Returns domain.ErrAlreadyExists on a duplicate id.
	Save(ctx context.Context, tx Tx, o *model.Order) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Order, error)
	// UpdateStatus moves the order to status. A non-nil txID links the Payme
	// transaction; at is stamped into completed_at/cancelled_at for PAID/CANCELLED.
	UpdateStatus(ctx context.Context, tx Tx, id string, status model.OrderStatus, txID *string, at time.Time) error
	MarkActivated(ctx context.Context, tx Tx, id string, at time.Time) error
	ListPaidNotActivated(ctx context.Context, tx Tx, olderThan time.Time, limit int) ([]*model.Order, error)
	CountByStatus(ctx context.Context, tx Tx) (map[model.OrderStatus]int, error)
}
