package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"ielts-payme-billing/internal/domain"
	"ielts-payme-billing/internal/domain/model"
	"ielts-payme-billing/internal/domain/ports/repository"
)

var _ repository.OrderRepository = (*orderRepo)(nil)

type orderRepo struct{ pool *pgxpool.Pool }

func NewOrderRepo(pool *pgxpool.Pool) *orderRepo {
	return &orderRepo{pool: pool}
}

const orderColumns = `id, user_id, plan_id, payment_method, amount, amount_in_tiyin, status, transaction_id,
  description, return_url, created_at, updated_at, completed_at, cancelled_at, activated_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	o := &model.Order{}
	var method, status string
	if err := row.Scan(&o.ID, &o.UserID, &o.PlanID, &method, &o.Amount, &o.AmountInTiyin, &status, &o.TransactionID,
		&o.Description, &o.ReturnURL, &o.CreatedAt, &o.UpdatedAt, &o.CompletedAt, &o.CancelledAt, &o.ActivatedAt); err != nil {
		return nil, err
	}
	o.PaymentMethod = model.PaymentMethod(method)
	o.Status = model.OrderStatus(status)
	return o, nil
}

func (r *orderRepo) Save(ctx context.Context, tx repository.Tx, o *model.Order) error {
	const q = `
INSERT INTO orders (` + orderColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15);`

	_, err := execSQL(ctx, r.pool, tx, q, o.ID, o.UserID, o.PlanID, string(o.PaymentMethod), o.Amount, o.AmountInTiyin,
		string(o.Status), o.TransactionID, o.Description, o.ReturnURL, o.CreatedAt, o.UpdatedAt,
		o.CompletedAt, o.CancelledAt, o.ActivatedAt)
	if err != nil {
		if uniqueViolation(err) != "" {
			return domain.ErrAlreadyExists
		}
		return mapErr(err)
	}
	return nil
}

func (r *orderRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Order, error) {
	q := forUpdate(`SELECT `+orderColumns+` FROM orders WHERE id=$1`, tx) + ";"
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	o, err := scanOrder(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return o, nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.OrderStatus, txID *string, at time.Time) error {
	const q = `
UPDATE orders
   SET status         = $2,
       transaction_id = COALESCE($3, transaction_id),
       updated_at     = $4,
       completed_at   = CASE WHEN $2 = 'PAID' THEN $4 ELSE completed_at END,
       cancelled_at   = CASE WHEN $2 = 'CANCELLED' THEN $4 ELSE cancelled_at END
 WHERE id = $1;`

	cmd, err := execSQL(ctx, r.pool, tx, q, id, string(status), txID, at)
	if err != nil {
		return mapErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *orderRepo) MarkActivated(ctx context.Context, tx repository.Tx, id string, at time.Time) error {
	const q = `UPDATE orders SET activated_at=$2, updated_at=$2 WHERE id=$1 AND activated_at IS NULL;`
	if _, err := execSQL(ctx, r.pool, tx, q, id, at); err != nil {
		return mapErr(err)
	}
	return nil
}

func (r *orderRepo) ListPaidNotActivated(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `
SELECT ` + orderColumns + `
  FROM orders
 WHERE status='PAID' AND activated_at IS NULL AND completed_at < $1
 ORDER BY completed_at ASC
 LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, olderThan, limit)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var out []*model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}

func (r *orderRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.OrderStatus]int, error) {
	const q = `SELECT status, COUNT(1) FROM orders GROUP BY status;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := make(map[model.OrderStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out[model.OrderStatus(status)] = n
	}
	return out, rows.Err()
}
