package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"ielts-payme-billing/internal/domain"
	"ielts-payme-billing/internal/domain/model"
	"ielts-payme-billing/internal/domain/ports/repository"
)

var _ repository.TransactionRepository = (*transactionRepo)(nil)

// Constraint names from deploy/postgres/init.sql.
const (
	constraintTransactionPK    = "payme_transactions_pkey"
	constraintActiveOrderTxIdx = "uq_payme_transactions_active_order"
)

type transactionRepo struct{ pool *pgxpool.Pool }

func NewTransactionRepo(pool *pgxpool.Pool) *transactionRepo {
	return &transactionRepo{pool: pool}
}

const transactionColumns = `id, local_id, payme_time, amount, account, order_id, user_id, plan_id, state, reason,
  create_time, perform_time, cancel_time, created_at, updated_at`

func scanTransaction(row pgx.Row) (*model.Transaction, error) {
	t := &model.Transaction{}
	var account []byte
	var state int
	if err := row.Scan(&t.ID, &t.LocalID, &t.PaymeTime, &t.Amount, &account, &t.OrderID, &t.UserID, &t.PlanID, &state, &t.Reason,
		&t.CreateTime, &t.PerformTime, &t.CancelTime, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.State = model.TransactionState(state)
	if len(account) > 0 {
		if err := json.Unmarshal(account, &t.Account); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
	}
	return t, nil
}

func (r *transactionRepo) Create(ctx context.Context, tx repository.Tx, t *model.Transaction) error {
	account, err := json.Marshal(t.Account)
	if err != nil {
		return domain.ErrInvalidArgument
	}
	const q = `
INSERT INTO payme_transactions (` + transactionColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15);`

	_, err = execSQL(ctx, r.pool, tx, q, t.ID, t.LocalID, t.PaymeTime, t.Amount, account, t.OrderID, t.UserID, t.PlanID,
		int(t.State), t.Reason, t.CreateTime, t.PerformTime, t.CancelTime, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		switch uniqueViolation(err) {
		case "":
			return mapErr(err)
		case constraintTransactionPK:
			return domain.ErrAlreadyExists
		case constraintActiveOrderTxIdx:
			return domain.ErrActiveTransactionExists
		default:
			return mapErr(err)
		}
	}
	return nil
}

func (r *transactionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Transaction, error) {
	q := forUpdate(`SELECT `+transactionColumns+` FROM payme_transactions WHERE id=$1`, tx) + ";"
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	t, err := scanTransaction(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return t, nil
}

func (r *transactionRepo) FindActiveByOrder(ctx context.Context, tx repository.Tx, orderID string) (*model.Transaction, error) {
	const q = `SELECT ` + transactionColumns + ` FROM payme_transactions WHERE order_id=$1 AND state IN (1,2) LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, orderID)
	if err != nil {
		return nil, err
	}
	t, err := scanTransaction(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return t, nil
}

// MarkPerformed is a compare-and-set on state=CREATED.
func (r *transactionRepo) MarkPerformed(ctx context.Context, tx repository.Tx, id string, at time.Time) (bool, error) {
	const q = `
UPDATE payme_transactions
   SET state = 2, perform_time = $2, updated_at = $2
 WHERE id = $1 AND state = 1;`
	cmd, err := execSQL(ctx, r.pool, tx, q, id, at)
	if err != nil {
		return false, mapErr(err)
	}
	return cmd.RowsAffected() == 1, nil
}

// MarkCancelled is a compare-and-set on state=from.
func (r *transactionRepo) MarkCancelled(ctx context.Context, tx repository.Tx, id string, from, to model.TransactionState, at time.Time, reason int) (bool, error) {
	if !to.Cancelled() {
		return false, domain.ErrInvalidArgument
	}
	const q = `
UPDATE payme_transactions
   SET state = $3, reason = $4, cancel_time = $5, updated_at = $5
 WHERE id = $1 AND state = $2;`
	cmd, err := execSQL(ctx, r.pool, tx, q, id, int(from), int(to), reason, at)
	if err != nil {
		return false, mapErr(err)
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *transactionRepo) ListByCreateTime(ctx context.Context, tx repository.Tx, from, to int64) ([]*model.Transaction, error) {
	const q = `
SELECT ` + transactionColumns + `
  FROM payme_transactions
 WHERE create_time >= $1 AND create_time <= $2
 ORDER BY create_time ASC, id ASC;`
	rows, err := queryRows(ctx, r.pool, tx, q, time.UnixMilli(from).UTC(), time.UnixMilli(to).UTC())
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var out []*model.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}

func (r *transactionRepo) DeleteCancelledBefore(ctx context.Context, tx repository.Tx, cutoff time.Time) (int64, error) {
	const q = `DELETE FROM payme_transactions WHERE state IN (-1,-2) AND cancel_time < $1;`
	cmd, err := execSQL(ctx, r.pool, tx, q, cutoff)
	if err != nil {
		return 0, mapErr(err)
	}
	return cmd.RowsAffected(), nil
}
