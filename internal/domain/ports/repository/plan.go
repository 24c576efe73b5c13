package repository

import (
	"context"
	"time"

	"ielts-payme-billing/internal/domain/model"
)

// -----------------------------
// Plans
// -----------------------------

type PlanRepository interface {
	Save(ctx context.Context, tx Tx, p *model.Plan) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Plan, error)
	ListAll(ctx context.Context, tx Tx) ([]*model.Plan, error)
}

// -----------------------------
// User plans
// -----------------------------

type UserPlanRepository interface {
	// LockUser serializes plan changes for one user until tx ends.
	LockUser(ctx context.Context, tx Tx, userID string) error
	FindByUser(ctx context.Context, tx Tx, userID string) (*model.UserPlan, error)
	Save(ctx context.Context, tx Tx, up *model.UserPlan) error
	// RevertIfPlan moves the user to freePlanID only while their current plan
	// is planID. Reports whether a row changed.
	RevertIfPlan(ctx context.Context, tx Tx, userID, planID, freePlanID string, now time.Time) (bool, error)
}

// -----------------------------
// Payment history
// -----------------------------

type PaymentHistoryRepository interface {
	// Record stores rec once per order. Reports false when the order was
	// already recorded.
	Record(ctx context.Context, tx Tx, rec *model.PaymentRecord) (bool, error)
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.PaymentRecord, error)
}
