package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrOperationFailed    = errors.New("operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid executor context")
	ErrRateLimited        = errors.New("rate limit exceeded")
	ErrForbidden          = errors.New("forbidden")
	ErrUnsupportedMethod  = errors.New("unsupported payment method")
	ErrPlanNotPurchasable = errors.New("plan is not purchasable")
	ErrIllegalOrderStatus = errors.New("illegal order status transition")

	// ErrActiveTransactionExists is returned by the ledger when an order already
	// has a transaction in CREATED or PERFORMED state.
	ErrActiveTransactionExists = errors.New("order already has an active transaction")
)
