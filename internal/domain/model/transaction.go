package model

import "time"

// TransactionState mirrors Payme's own transaction state numbers.
type TransactionState int

const (
	TransactionStateCreated                 TransactionState = 1
	TransactionStatePerformed               TransactionState = 2
	TransactionStateCancelled               TransactionState = -1
	TransactionStateCancelledAfterPerformed TransactionState = -2
)

func (s TransactionState) Cancelled() bool {
	return s == TransactionStateCancelled || s == TransactionStateCancelledAfterPerformed
}

// Payme cancellation reasons.
const (
	CancelReasonReceiverNotFound = 1
	CancelReasonDebitFailed      = 2
	CancelReasonExecutionFailed  = 3
	CancelReasonTimeout          = 4
	CancelReasonRefund           = 5
	CancelReasonUnknown          = 10
)

// Transaction is the local mirror of a Payme transaction.
type Transaction struct {
	ID          string // Payme id, 24 chars
	LocalID     string // our receipt id, returned as "transaction"
	PaymeTime   int64  // Payme-supplied creation time, epoch ms
	Amount      int64  // tiyin
	Account     map[string]any
	OrderID     string // denormalized account.orderId
	UserID      string
	PlanID      string
	State       TransactionState
	Reason      *int
	CreateTime  time.Time
	PerformTime *time.Time
	CancelTime  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CancelTarget returns the state a cancellation with the given reason moves a
// transaction into. A refund always ends in CANCELLED_AFTER_PERFORMED.
func CancelTarget(from TransactionState, reason int) TransactionState {
	if reason == CancelReasonRefund || from == TransactionStatePerformed {
		return TransactionStateCancelledAfterPerformed
	}
	return TransactionStateCancelled
}

// Millis truncates t to millisecond precision and drops the monotonic reading,
// so a value survives a store round trip unchanged.
func Millis(t time.Time) time.Time {
	return time.UnixMilli(t.UnixMilli()).UTC()
}

// UnixMillis is the wire form of an optional timestamp: 0 when unset.
func UnixMillis(t *time.Time) int64 {
	if t == nil {
		return 0
	}
	return t.UnixMilli()
}
