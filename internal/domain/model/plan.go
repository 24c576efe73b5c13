package model

import (
	"time"

	"ielts-payme-billing/internal/domain"
)

// Plan is a read-only catalog entry; the catalog itself is managed elsewhere.
type Plan struct {
	ID           string
	Name         string
	PriceUZS     int64
	DurationDays int
	IsFree       bool
	CreatedAt    time.Time
}

func (p *Plan) IsZero() bool { return p == nil || p.ID == "" }

// Duration is the entitlement period a purchase of p grants.
func (p *Plan) Duration() time.Duration {
	return time.Duration(p.DurationDays) * 24 * time.Hour
}

// NewPlan validates and constructs a plan.
func NewPlan(id, name string, priceUZS int64, durationDays int, isFree bool) (*Plan, error) {
	if id == "" || name == "" || durationDays < 0 || priceUZS < 0 || (!isFree && priceUZS == 0) {
		return nil, domain.ErrInvalidArgument
	}
	return &Plan{
		ID:           id,
		Name:         name,
		PriceUZS:     priceUZS,
		DurationDays: durationDays,
		IsFree:       isFree,
		CreatedAt:    time.Now(),
	}, nil
}

// UserPlan is the user's current entitlement.
type UserPlan struct {
	UserID    string
	PlanID    string
	IsPremium bool
	ExpiresAt *time.Time // nil for the free plan
	UpdatedAt time.Time
}

// Active reports whether the entitlement is still running at now.
func (u *UserPlan) Active(now time.Time) bool {
	return u != nil && u.ExpiresAt != nil && u.ExpiresAt.After(now)
}

// PaymentRecord is one row of a user's payment history. OrderID is unique,
// which makes activation idempotent per order.
type PaymentRecord struct {
	ID      string
	UserID  string
	PlanID  string
	OrderID string
	Amount  int64 // tiyin
	PaidAt  time.Time
}
