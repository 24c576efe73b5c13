package repository

import (
	"context"
	"time"

	"ielts-payme-billing/internal/domain/model"
)

// -----------------------------
// Payme transactions
// -----------------------------

type TransactionRepository interface {
	// Create inserts t. Returns domain.ErrAlreadyExists when the Payme id is
	// known and domain.ErrActiveTransactionExists when the order already has a
	// transaction in CREATED or PERFORMED.
	Create(ctx context.Context, tx Tx, t *model.Transaction) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Transaction, error)
	FindActiveByOrder(ctx context.Context, tx Tx, orderID string) (*model.Transaction, error)

	// MarkPerformed moves a CREATED transaction to PERFORMED. It reports false
	// when the row was not in CREATED anymore.
	MarkPerformed(ctx context.Context, tx Tx, id string, at time.Time) (bool, error)
	// MarkCancelled moves a transaction in state from to state to. It reports
	// false when the row was not in state from anymore.
	MarkCancelled(ctx context.Context, tx Tx, id string, from, to model.TransactionState, at time.Time, reason int) (bool, error)

	// ListByCreateTime returns transactions whose create_time lies in
	// [from, to] (epoch ms, inclusive), ascending.
	ListByCreateTime(ctx context.Context, tx Tx, from, to int64) ([]*model.Transaction, error)
	DeleteCancelledBefore(ctx context.Context, tx Tx, cutoff time.Time) (int64, error)
}
