package apiv1

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ielts-payme-billing/internal/domain"
	"ielts-payme-billing/internal/domain/model"
	"ielts-payme-billing/internal/infra/logging"
	"ielts-payme-billing/internal/infra/redis"
	"ielts-payme-billing/internal/infra/security"
)

type OrderView struct {
	OrderID       string  `json:"order_id"`
	UserID        string  `json:"user_id"`
	PlanID        string  `json:"plan_id"`
	PaymentMethod string  `json:"payment_method"`
	Amount        int64   `json:"amount"`
	AmountInTiyin int64   `json:"amount_in_tiyin"`
	Status        string  `json:"status"`
	TransactionID *string `json:"transaction_id,omitempty"`
	Description   string  `json:"description,omitempty"`
	CreatedAt     int64   `json:"created_at"`
	UpdatedAt     int64   `json:"updated_at"`
	CompletedAt   int64   `json:"completed_at,omitempty"`
	CancelledAt   int64   `json:"cancelled_at,omitempty"`
}

func toOrderView(o *model.Order) OrderView {
	return OrderView{
		OrderID:       o.ID,
		UserID:        o.UserID,
		PlanID:        o.PlanID,
		PaymentMethod: string(o.PaymentMethod),
		Amount:        o.Amount,
		AmountInTiyin: o.AmountInTiyin,
		Status:        string(o.Status),
		TransactionID: o.TransactionID,
		Description:   o.Description,
		CreatedAt:     o.CreatedAt.UnixMilli(),
		UpdatedAt:     o.UpdatedAt.UnixMilli(),
		CompletedAt:   model.UnixMillis(o.CompletedAt),
		CancelledAt:   model.UnixMillis(o.CancelledAt),
	}
}

type createOrderRequest struct {
	PlanID        string `json:"plan_id"`
	PaymentMethod string `json:"payment_method"`
	ReturnURL     string `json:"return_url"`
}

type createOrderResponse struct {
	Order       OrderView `json:"order"`
	CheckoutURL string    `json:"checkout_url"`
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	var req createOrderRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.PlanID == "" {
		writeError(w, http.StatusBadRequest, "plan_id is required")
		return
	}

	if s.Limiter != nil && s.opts.OrdersPerMinute > 0 {
		ok, err := s.Limiter.Allow(r.Context(), redis.OrderCreateKey(claims.Subject), s.opts.OrdersPerMinute, time.Minute)
		if err != nil {
			// fail open
			l := logging.With(r.Context(), s.log)
			l.Warn().Err(err).Msg("rate limiter unavailable")
		} else if !ok {
			s.fail(w, r, domain.ErrRateLimited)
			return
		}
	}

	order, link, err := s.Orders.CreateOrder(r.Context(), claims.Subject, req.PlanID, model.PaymentMethod(req.PaymentMethod), req.ReturnURL)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createOrderResponse{Order: toOrderView(order), CheckoutURL: link})
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	orderID := chi.URLParam(r, "orderId")
	r = r.WithContext(logging.WithOrderID(r.Context(), orderID))
	order, err := s.Orders.FindByOrderID(r.Context(), orderID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	// other users' orders are reported as missing
	if order.UserID != claims.Subject && claims.Role != security.RoleAdmin {
		s.fail(w, r, domain.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toOrderView(order))
}

type planView struct {
	UserID    string `json:"user_id"`
	PlanID    string `json:"plan_id"`
	IsPremium bool   `json:"is_premium"`
	ExpiresAt int64  `json:"expires_at,omitempty"`
	Active    bool   `json:"active"`
}

func (s *Server) handleCurrentPlan(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	up, err := s.Activation.CurrentPlan(r.Context(), claims.Subject)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, planView{
		UserID:    up.UserID,
		PlanID:    up.PlanID,
		IsPremium: up.IsPremium,
		ExpiresAt: model.UnixMillis(up.ExpiresAt),
		Active:    up.Active(time.Now()),
	})
}

type paymentView struct {
	OrderID string `json:"order_id"`
	PlanID  string `json:"plan_id"`
	Amount  int64  `json:"amount"` // tiyin
	PaidAt  int64  `json:"paid_at"`
}

func (s *Server) handlePaymentHistory(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	recs, err := s.Activation.PaymentHistory(r.Context(), claims.Subject)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]paymentView, 0, len(recs))
	for _, rec := range recs {
		out = append(out, paymentView{
			OrderID: rec.OrderID,
			PlanID:  rec.PlanID,
			Amount:  rec.Amount,
			PaidAt:  rec.PaidAt.UnixMilli(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}
