package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"ielts-payme-billing/internal/domain"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"   // created by the user, no transaction yet
	OrderStatusCreated   OrderStatus = "CREATED"   // Payme created a transaction for it
	OrderStatusPaid      OrderStatus = "PAID"      // transaction performed
	OrderStatusCancelled OrderStatus = "CANCELLED" // transaction cancelled (before or after perform)
	OrderStatusFailed    OrderStatus = "FAILED"
	OrderStatusRefunded  OrderStatus = "REFUNDED"
)

type PaymentMethod string

const (
	PaymentMethodPayme  PaymentMethod = "PAYME"
	PaymentMethodClick  PaymentMethod = "CLICK"
	PaymentMethodUzum   PaymentMethod = "UZUM"
	PaymentMethodStripe PaymentMethod = "STRIPE"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodPayme, PaymentMethodClick, PaymentMethodUzum, PaymentMethodStripe:
		return true
	}
	return false
}

// TiyinPerSum is the number of minor units in one UZS.
const TiyinPerSum = 100

const orderIDPrefix = "order_"

// Order is the merchant-side purchase intent a Payme transaction pays for.
type Order struct {
	ID            string // order_{userId}_{planId}_{epochMs}
	UserID        string
	PlanID        string
	PaymentMethod PaymentMethod
	Amount        int64 // UZS
	AmountInTiyin int64
	Status        OrderStatus
	TransactionID *string // Payme transaction id once one is linked
	Description   string
	ReturnURL     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	CompletedAt   *time.Time
	CancelledAt   *time.Time
	ActivatedAt   *time.Time // set once the paid plan was granted
}

// NewOrderID builds the conventional order id. User ids must not contain '_'.
func NewOrderID(userID, planID string, at time.Time) string {
	return fmt.Sprintf("%s%s_%s_%d", orderIDPrefix, userID, planID, at.UnixMilli())
}

// ParseOrderID splits an order id built by NewOrderID.
func ParseOrderID(id string) (userID, planID string, createdMs int64, err error) {
	if !strings.HasPrefix(id, orderIDPrefix) {
		return "", "", 0, domain.ErrInvalidArgument
	}
	rest := strings.TrimPrefix(id, orderIDPrefix)
	last := strings.LastIndexByte(rest, '_')
	if last <= 0 {
		return "", "", 0, domain.ErrInvalidArgument
	}
	createdMs, err = strconv.ParseInt(rest[last+1:], 10, 64)
	if err != nil || createdMs <= 0 {
		return "", "", 0, domain.ErrInvalidArgument
	}
	userID, planID, ok := strings.Cut(rest[:last], "_")
	if !ok || userID == "" || planID == "" {
		return "", "", 0, domain.ErrInvalidArgument
	}
	return userID, planID, createdMs, nil
}

// NewOrder validates and constructs a PENDING order for the given plan price.
func NewOrder(userID, planID string, method PaymentMethod, amount int64, description, returnURL string, now time.Time) (*Order, error) {
	if userID == "" || planID == "" || strings.Contains(userID, "_") || amount <= 0 || !method.Valid() {
		return nil, domain.ErrInvalidArgument
	}
	now = Millis(now)
	return &Order{
		ID:            NewOrderID(userID, planID, now),
		UserID:        userID,
		PlanID:        planID,
		PaymentMethod: method,
		Amount:        amount,
		AmountInTiyin: amount * TiyinPerSum,
		Status:        OrderStatusPending,
		Description:   description,
		ReturnURL:     returnURL,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Payable reports whether Payme may still create or perform a transaction for the order.
func (o *Order) Payable() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusCreated
}
