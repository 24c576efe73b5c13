//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ielts-payme-billing/internal/domain"
	"ielts-payme-billing/internal/domain/model"
	"ielts-payme-billing/internal/usecase"
)

type orderUCTestDeps struct {
	orders   *MockOrderRepo
	plans    *MockPlanRepo
	tm       *MockTxManager
	checkout *MockCheckout
	uc       usecase.OrderUseCase
}

func newOrderUCDeps() *orderUCTestDeps {
	d := &orderUCTestDeps{
		orders:   NewMockOrderRepo(),
		plans:    NewMockPlanRepo(),
		tm:       NewMockTxManager(),
		checkout: &MockCheckout{},
	}
	ctx := context.Background()
	d.plans.Save(ctx, nil, &model.Plan{ID: "pro", Name: "Pro", PriceUZS: 3000, DurationDays: 30})
	d.plans.Save(ctx, nil, &model.Plan{ID: "free", Name: "Free", IsFree: true})
	d.uc = usecase.NewOrderUseCase(d.orders, d.plans, d.tm, d.checkout, "https://app.test/billing/return", newTestLogger())
	return d
}

func TestOrderUseCase_CreateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("should persist a pending order and return the checkout url", func(t *testing.T) {
		d := newOrderUCDeps()
		o, link, err := d.uc.CreateOrder(ctx, "u1", "pro", model.PaymentMethodPayme, "")
		if err != nil {
			t.Fatalf("expected no error, but got %v", err)
		}
		if !strings.HasPrefix(o.ID, "order_u1_pro_") {
			t.Errorf("unexpected order id %q", o.ID)
		}
		if o.AmountInTiyin != 300000 || o.Status != model.OrderStatusPending {
			t.Errorf("unexpected order: %+v", o)
		}
		if o.ReturnURL != "https://app.test/billing/return" {
			t.Errorf("expected default return url, got %q", o.ReturnURL)
		}
		if link != "https://checkout.test/"+o.ID {
			t.Errorf("unexpected checkout link %q", link)
		}
		if _, err := d.orders.FindByID(ctx, nil, o.ID); err != nil {
			t.Errorf("expected order to be stored, got %v", err)
		}
	})

	t.Run("should default to Payme when no method is given", func(t *testing.T) {
		d := newOrderUCDeps()
		o, _, err := d.uc.CreateOrder(ctx, "u1", "pro", "", "https://x.test/r")
		if err != nil {
			t.Fatalf("expected no error, but got %v", err)
		}
		if o.PaymentMethod != model.PaymentMethodPayme || o.ReturnURL != "https://x.test/r" {
			t.Errorf("unexpected order: %+v", o)
		}
	})

	t.Run("should reject other providers and free plans", func(t *testing.T) {
		d := newOrderUCDeps()
		if _, _, err := d.uc.CreateOrder(ctx, "u1", "pro", model.PaymentMethodClick, ""); !errors.Is(err, domain.ErrUnsupportedMethod) {
			t.Errorf("expected ErrUnsupportedMethod, got %v", err)
		}
		if _, _, err := d.uc.CreateOrder(ctx, "u1", "pro", model.PaymentMethod("CASH"), ""); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
		if _, _, err := d.uc.CreateOrder(ctx, "u1", "free", model.PaymentMethodPayme, ""); !errors.Is(err, domain.ErrPlanNotPurchasable) {
			t.Errorf("expected ErrPlanNotPurchasable, got %v", err)
		}
		if _, _, err := d.uc.CreateOrder(ctx, "u1", "ghost", model.PaymentMethodPayme, ""); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("should surface checkout link failures", func(t *testing.T) {
		d := newOrderUCDeps()
		d.checkout.CheckoutURLFunc = func(o *model.Order) (string, error) { return "", errors.New("no merchant") }
		if _, _, err := d.uc.CreateOrder(ctx, "u1", "pro", model.PaymentMethodPayme, ""); err == nil {
			t.Error("expected an error")
		}
	})
}

func TestOrderUseCase_UpdateOrderStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("should fail a pending order", func(t *testing.T) {
		d := newOrderUCDeps()
		o, _, _ := d.uc.CreateOrder(ctx, "u1", "pro", model.PaymentMethodPayme, "")
		updated, err := d.uc.UpdateOrderStatus(ctx, o.ID, model.OrderStatusFailed)
		if err != nil {
			t.Fatalf("expected no error, but got %v", err)
		}
		if updated.Status != model.OrderStatusFailed {
			t.Errorf("expected FAILED, got %s", updated.Status)
		}
		stored, _ := d.uc.FindByOrderID(ctx, o.ID)
		if stored.Status != model.OrderStatusFailed {
			t.Errorf("expected stored status FAILED, got %s", stored.Status)
		}
	})

	t.Run("should refuse statuses owned by the payment flow", func(t *testing.T) {
		d := newOrderUCDeps()
		o, _, _ := d.uc.CreateOrder(ctx, "u1", "pro", model.PaymentMethodPayme, "")
		for _, st := range []model.OrderStatus{model.OrderStatusPaid, model.OrderStatusCreated, model.OrderStatusRefunded} {
			if _, err := d.uc.UpdateOrderStatus(ctx, o.ID, st); !errors.Is(err, domain.ErrIllegalOrderStatus) {
				t.Errorf("%s: expected ErrIllegalOrderStatus, got %v", st, err)
			}
		}
	})

	t.Run("should refuse orders that already left PENDING", func(t *testing.T) {
		d := newOrderUCDeps()
		o, _, _ := d.uc.CreateOrder(ctx, "u1", "pro", model.PaymentMethodPayme, "")
		_ = d.orders.UpdateStatus(ctx, nil, o.ID, model.OrderStatusPaid, nil, o.CreatedAt)
		if _, err := d.uc.UpdateOrderStatus(ctx, o.ID, model.OrderStatusCancelled); !errors.Is(err, domain.ErrIllegalOrderStatus) {
			t.Errorf("expected ErrIllegalOrderStatus, got %v", err)
		}
	})

	t.Run("should report unknown orders", func(t *testing.T) {
		d := newOrderUCDeps()
		if _, err := d.uc.UpdateOrderStatus(ctx, "order_x_y_1", model.OrderStatusFailed); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if _, err := d.uc.FindByOrderID(ctx, ""); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}
