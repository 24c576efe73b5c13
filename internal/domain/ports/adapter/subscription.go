package adapter

import "context"

// SubscriptionActivator grants and revokes paid plans. Implementations must be
// idempotent per orderID: a second activation for the same order is a no-op.
type SubscriptionActivator interface {
	ActivatePaidPlan(ctx context.Context, userID, planID string, paidAmount int64, orderID string) error
	// RevertToFreePlan moves the user back to the free plan only while their
	// current plan is planID. Reports whether anything changed.
	RevertToFreePlan(ctx context.Context, userID, planID string) (bool, error)
}
