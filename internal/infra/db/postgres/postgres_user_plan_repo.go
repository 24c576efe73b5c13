package postgres

import (
	"context"
	"hash/fnv"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"ielts-payme-billing/internal/domain"
	"ielts-payme-billing/internal/domain/model"
	"ielts-payme-billing/internal/domain/ports/repository"
)

var _ repository.UserPlanRepository = (*userPlanRepo)(nil)

type userPlanRepo struct{ pool *pgxpool.Pool }

func NewUserPlanRepo(pool *pgxpool.Pool) *userPlanRepo {
	return &userPlanRepo{pool: pool}
}

// LockUser takes a transaction-scoped advisory lock keyed by the user id.
func (r *userPlanRepo) LockUser(ctx context.Context, tx repository.Tx, userID string) error {
	if _, ok := tx.(pgx.Tx); !ok {
		return domain.ErrInvalidExecContext
	}
	_, err := execSQL(ctx, r.pool, tx, `SELECT pg_advisory_xact_lock($1);`, hashToInt64(userID))
	return mapErr(err)
}

func (r *userPlanRepo) FindByUser(ctx context.Context, tx repository.Tx, userID string) (*model.UserPlan, error) {
	q := forUpdate(`SELECT user_id, plan_id, is_premium, expires_at, updated_at FROM user_plans WHERE user_id=$1`, tx) + ";"
	row, err := pickRow(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, err
	}
	var up model.UserPlan
	if err := row.Scan(&up.UserID, &up.PlanID, &up.IsPremium, &up.ExpiresAt, &up.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &up, nil
}

func (r *userPlanRepo) Save(ctx context.Context, tx repository.Tx, up *model.UserPlan) error {
	const q = `
INSERT INTO user_plans (user_id, plan_id, is_premium, expires_at, updated_at)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (user_id) DO UPDATE SET
  plan_id=$2, is_premium=$3, expires_at=$4, updated_at=$5;`
	_, err := execSQL(ctx, r.pool, tx, q, up.UserID, up.PlanID, up.IsPremium, up.ExpiresAt, up.UpdatedAt)
	return mapErr(err)
}

func (r *userPlanRepo) RevertIfPlan(ctx context.Context, tx repository.Tx, userID, planID, freePlanID string, now time.Time) (bool, error) {
	const q = `
UPDATE user_plans
   SET plan_id=$3, is_premium=false, expires_at=NULL, updated_at=$4
 WHERE user_id=$1 AND plan_id=$2;`
	cmd, err := execSQL(ctx, r.pool, tx, q, userID, planID, freePlanID, now)
	if err != nil {
		return false, mapErr(err)
	}
	return cmd.RowsAffected() == 1, nil
}

func hashToInt64(s string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return int64(h.Sum64())
}
