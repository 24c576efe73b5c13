package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"ielts-payme-billing/internal/domain"
	"ielts-payme-billing/internal/domain/model"
	"ielts-payme-billing/internal/domain/ports/repository"
)

var _ repository.PaymentHistoryRepository = (*paymentHistoryRepo)(nil)

type paymentHistoryRepo struct{ pool *pgxpool.Pool }

func NewPaymentHistoryRepo(pool *pgxpool.Pool) *paymentHistoryRepo {
	return &paymentHistoryRepo{pool: pool}
}

// Record relies on the unique order_id to make a second call a no-op.
func (r *paymentHistoryRepo) Record(ctx context.Context, tx repository.Tx, rec *model.PaymentRecord) (bool, error) {
	const q = `
INSERT INTO payment_history (id, user_id, plan_id, order_id, amount, paid_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (order_id) DO NOTHING;`
	cmd, err := execSQL(ctx, r.pool, tx, q, rec.ID, rec.UserID, rec.PlanID, rec.OrderID, rec.Amount, rec.PaidAt)
	if err != nil {
		return false, mapErr(err)
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *paymentHistoryRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.PaymentRecord, error) {
	const q = `
SELECT id, user_id, plan_id, order_id, amount, paid_at
  FROM payment_history
 WHERE user_id=$1
 ORDER BY paid_at DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var out []*model.PaymentRecord
	for rows.Next() {
		p := new(model.PaymentRecord)
		if err := rows.Scan(&p.ID, &p.UserID, &p.PlanID, &p.OrderID, &p.Amount, &p.PaidAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
