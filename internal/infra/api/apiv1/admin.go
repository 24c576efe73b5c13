package apiv1

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"ielts-payme-billing/internal/domain"
	"ielts-payme-billing/internal/domain/model"
	"ielts-payme-billing/internal/infra/logging"
)

// parseCutoff accepts RFC 3339 or epoch milliseconds.
func parseCutoff(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, domain.ErrInvalidArgument
	}
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		if ms <= 0 {
			return time.Time{}, domain.ErrInvalidArgument
		}
		return time.UnixMilli(ms).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, domain.ErrInvalidArgument
	}
	return t, nil
}

func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	cutoff, err := parseCutoff(r.URL.Query().Get("before"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "before must be RFC3339 or epoch milliseconds")
		return
	}
	n, err := s.Ledger.CleanupCancelled(r.Context(), cutoff)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

type orderStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleAdminOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req orderStatusRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)).Decode(&req); err != nil || req.Status == "" {
		writeError(w, http.StatusBadRequest, "status is required")
		return
	}
	orderID := chi.URLParam(r, "orderId")
	r = r.WithContext(logging.WithOrderID(r.Context(), orderID))
	order, err := s.Orders.UpdateOrderStatus(r.Context(), orderID, model.OrderStatus(req.Status))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderView(order))
}
