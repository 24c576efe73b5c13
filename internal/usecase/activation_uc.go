// File: internal/usecase/activation_uc.go
package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"ielts-payme-billing/internal/domain"
	"ielts-payme-billing/internal/domain/model"
	"ielts-payme-billing/internal/domain/ports/adapter"
	"ielts-payme-billing/internal/domain/ports/repository"
)

// Compile-time checks
var (
	_ adapter.SubscriptionActivator = (*activationUC)(nil)
	_ ActivationUseCase             = (*activationUC)(nil)
)

type ActivationUseCase interface {
	adapter.SubscriptionActivator
	// ReconcilePaidOrders retries activation for PAID orders that were never
	// activated and are older than olderThan. Returns how many were activated.
	ReconcilePaidOrders(ctx context.Context, olderThan time.Time, limit int) (int, error)
	CurrentPlan(ctx context.Context, userID string) (*model.UserPlan, error)
	// PaymentHistory lists the user's recorded payments, newest first.
	PaymentHistory(ctx context.Context, userID string) ([]*model.PaymentRecord, error)
}

type activationUC struct {
	plans      repository.PlanRepository
	userPlans  repository.UserPlanRepository
	history    repository.PaymentHistoryRepository
	orders     repository.OrderRepository
	tm         repository.TransactionManager
	freePlanID string
	now        func() time.Time
	log        *zerolog.Logger
}

func NewActivationUseCase(
	plans repository.PlanRepository,
	userPlans repository.UserPlanRepository,
	history repository.PaymentHistoryRepository,
	orders repository.OrderRepository,
	tm repository.TransactionManager,
	freePlanID string,
	logger *zerolog.Logger,
) *activationUC {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "activation").Logger()
	return &activationUC{
		plans:      plans,
		userPlans:  userPlans,
		history:    history,
		orders:     orders,
		tm:         tm,
		freePlanID: freePlanID,
		now:        time.Now,
		log:        &l,
	}
}

// ActivatePaidPlan records the payment and extends the user's plan. Paying for
// the plan the user already holds extends from the current expiry; any other
// plan starts now. A repeated call for the same order changes nothing.
func (u *activationUC) ActivatePaidPlan(ctx context.Context, userID, planID string, paidAmount int64, orderID string) error {
	plan, err := u.plans.FindByID(ctx, repository.NoTX, planID)
	if err != nil {
		return err
	}
	if plan.IsFree {
		return domain.ErrPlanNotPurchasable
	}

	var applied bool
	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := u.userPlans.LockUser(ctx, tx, userID); err != nil {
			return err
		}
		now := model.Millis(u.now())
		inserted, err := u.history.Record(ctx, tx, &model.PaymentRecord{
			ID:      uuid.NewString(),
			UserID:  userID,
			PlanID:  plan.ID,
			OrderID: orderID,
			Amount:  paidAmount,
			PaidAt:  now,
		})
		if err != nil || !inserted {
			return err
		}

		cur, err := u.userPlans.FindByUser(ctx, tx, userID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		start := now
		if cur.Active(now) && cur.PlanID == plan.ID {
			start = *cur.ExpiresAt
		}
		expires := start.Add(plan.Duration())
		applied = true
		return u.userPlans.Save(ctx, tx, &model.UserPlan{
			UserID:    userID,
			PlanID:    plan.ID,
			IsPremium: true,
			ExpiresAt: &expires,
			UpdatedAt: now,
		})
	})
	if err != nil {
		return err
	}
	if applied {
		u.log.Info().Str("user_id", userID).Str("plan_id", plan.ID).Str("order_id", orderID).Msg("paid plan activated")
	} else {
		u.log.Debug().Str("order_id", orderID).Msg("order already activated")
	}
	return nil
}

func (u *activationUC) RevertToFreePlan(ctx context.Context, userID, planID string) (bool, error) {
	var reverted bool
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := u.userPlans.LockUser(ctx, tx, userID); err != nil {
			return err
		}
		ok, err := u.userPlans.RevertIfPlan(ctx, tx, userID, planID, u.freePlanID, model.Millis(u.now()))
		reverted = ok
		return err
	})
	if err != nil {
		return false, err
	}
	if reverted {
		u.log.Info().Str("user_id", userID).Str("plan_id", planID).Msg("reverted to free plan")
	}
	return reverted, nil
}

func (u *activationUC) ReconcilePaidOrders(ctx context.Context, olderThan time.Time, limit int) (int, error) {
	orders, err := u.orders.ListPaidNotActivated(ctx, repository.NoTX, olderThan, limit)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	n := 0
	for _, o := range orders {
		if ctx.Err() != nil {
			return n, ctx.Err()
		}
		if err := u.ActivatePaidPlan(ctx, o.UserID, o.PlanID, o.AmountInTiyin, o.ID); err != nil {
			u.log.Warn().Err(err).Str("order_id", o.ID).Msg("reconcile activation failed")
			continue
		}
		if err := u.orders.MarkActivated(ctx, repository.NoTX, o.ID, model.Millis(u.now())); err != nil {
			u.log.Warn().Err(err).Str("order_id", o.ID).Msg("failed to mark order activated")
			continue
		}
		n++
	}
	return n, nil
}

func (u *activationUC) CurrentPlan(ctx context.Context, userID string) (*model.UserPlan, error) {
	return u.userPlans.FindByUser(ctx, repository.NoTX, userID)
}

func (u *activationUC) PaymentHistory(ctx context.Context, userID string) ([]*model.PaymentRecord, error) {
	if userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return u.history.ListByUser(ctx, repository.NoTX, userID)
}
