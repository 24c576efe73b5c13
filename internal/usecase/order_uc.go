// File: internal/usecase/order_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"ielts-payme-billing/internal/domain"
	"ielts-payme-billing/internal/domain/model"
	"ielts-payme-billing/internal/domain/ports/adapter"
	"ielts-payme-billing/internal/domain/ports/repository"
	"ielts-payme-billing/internal/infra/metrics"
)

// Compile-time check
var _ OrderUseCase = (*orderUC)(nil)

type OrderUseCase interface {
	// CreateOrder persists a PENDING order for the plan and returns it together
	// with the provider checkout URL.
	CreateOrder(ctx context.Context, userID, planID string, method model.PaymentMethod, returnURL string) (*model.Order, string, error)
	FindByOrderID(ctx context.Context, orderID string) (*model.Order, error)
	// UpdateOrderStatus is the administrative path. Only PENDING orders may be
	// moved, and only to FAILED or CANCELLED; the Payme flow owns the rest.
	UpdateOrderStatus(ctx context.Context, orderID string, status model.OrderStatus) (*model.Order, error)
}

type orderUC struct {
	orders           repository.OrderRepository
	plans            repository.PlanRepository
	tm               repository.TransactionManager
	checkout         adapter.CheckoutLinkBuilder
	defaultReturnURL string
	now              func() time.Time
	log              *zerolog.Logger
}

func NewOrderUseCase(
	orders repository.OrderRepository,
	plans repository.PlanRepository,
	tm repository.TransactionManager,
	checkout adapter.CheckoutLinkBuilder,
	defaultReturnURL string,
	logger *zerolog.Logger,
) *orderUC {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "orders").Logger()
	return &orderUC{
		orders:           orders,
		plans:            plans,
		tm:               tm,
		checkout:         checkout,
		defaultReturnURL: defaultReturnURL,
		now:              time.Now,
		log:              &l,
	}
}

func (u *orderUC) CreateOrder(ctx context.Context, userID, planID string, method model.PaymentMethod, returnURL string) (*model.Order, string, error) {
	if method == "" {
		method = model.PaymentMethodPayme
	}
	if !method.Valid() {
		return nil, "", domain.ErrInvalidArgument
	}
	if method != model.PaymentMethodPayme {
		return nil, "", domain.ErrUnsupportedMethod
	}

	plan, err := u.plans.FindByID(ctx, repository.NoTX, planID)
	if err != nil {
		return nil, "", err
	}
	if plan.IsFree || plan.PriceUZS <= 0 {
		return nil, "", domain.ErrPlanNotPurchasable
	}
	if returnURL == "" {
		returnURL = u.defaultReturnURL
	}

	order, err := model.NewOrder(userID, plan.ID, method, plan.PriceUZS, plan.Name, returnURL, u.now())
	if err != nil {
		return nil, "", err
	}
	if err := u.orders.Save(ctx, repository.NoTX, order); err != nil {
		return nil, "", err
	}
	metrics.IncOrderCreated(string(method))

	link, err := u.checkout.CheckoutURL(order)
	if err != nil {
		return nil, "", fmt.Errorf("build checkout url: %w", err)
	}
	u.log.Info().Str("order_id", order.ID).Str("plan_id", plan.ID).Int64("amount", order.Amount).Msg("order created")
	return order, link, nil
}

func (u *orderUC) FindByOrderID(ctx context.Context, orderID string) (*model.Order, error) {
	if orderID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return u.orders.FindByID(ctx, repository.NoTX, orderID)
}

func (u *orderUC) UpdateOrderStatus(ctx context.Context, orderID string, status model.OrderStatus) (*model.Order, error) {
	if status != model.OrderStatusFailed && status != model.OrderStatusCancelled {
		return nil, domain.ErrIllegalOrderStatus
	}

	var updated *model.Order
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		o, err := u.orders.FindByID(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if o.Status != model.OrderStatusPending {
			return domain.ErrIllegalOrderStatus
		}
		now := model.Millis(u.now())
		if err := u.orders.UpdateStatus(ctx, tx, o.ID, status, nil, now); err != nil {
			return err
		}
		o.Status = status
		o.UpdatedAt = now
		if status == model.OrderStatusCancelled {
			o.CancelledAt = &now
		}
		updated = o
		return nil
	})
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, domain.ErrIllegalOrderStatus) {
			u.log.Error().Err(err).Str("order_id", orderID).Msg("order status update failed")
		}
		return nil, err
	}
	u.log.Info().Str("order_id", orderID).Str("status", string(status)).Msg("order status updated by admin")
	return updated, nil
}
