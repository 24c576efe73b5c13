// Package apiv1 serves the Payme merchant callback and the order API.
package apiv1

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"ielts-payme-billing/internal/domain"
	"ielts-payme-billing/internal/infra/logging"
	"ielts-payme-billing/internal/infra/security"
	"ielts-payme-billing/internal/usecase"
)

// PaymeAuthenticator checks the credentials on a Payme callback.
type PaymeAuthenticator interface {
	Authenticate(h http.Header, rawBody []byte) *domain.RPCError
}

// TokenVerifier extracts bearer claims from a request.
type TokenVerifier interface {
	FromRequest(r *http.Request) (*security.Claims, error)
}

// Limiter is a keyed fixed-window counter.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type Deps struct {
	Payme      usecase.PaymeUseCase
	Orders     usecase.OrderUseCase
	Activation usecase.ActivationUseCase
	Ledger     usecase.LedgerUseCase
	Guard      PaymeAuthenticator
	Tokens     TokenVerifier
	Limiter    Limiter // nil disables rate limiting
}

type Options struct {
	PaymePath       string
	MaxBodyBytes    int64
	OrdersPerMinute int
	Dev             bool // log unredacted credentials on auth failures
}

type Server struct {
	Deps
	opts Options
	log  *zerolog.Logger
}

func NewServer(deps Deps, opts Options, logger *zerolog.Logger) *Server {
	if opts.PaymePath == "" {
		opts.PaymePath = "/api/v1/payme"
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "api").Logger()
	return &Server{Deps: deps, opts: opts, log: &l}
}

// RegisterAPIV1 mounts every route on r using absolute paths.
func RegisterAPIV1(r chi.Router, s *Server) {
	r.HandleFunc(s.opts.PaymePath, s.handlePayme)

	r.Group(func(r chi.Router) {
		r.Use(s.requireRole(security.RoleUser, security.RoleAdmin))
		r.Post("/api/v1/orders", s.handleCreateOrder)
		r.Get("/api/v1/orders/{orderId}", s.handleGetOrder)
		r.Get("/api/v1/me/plan", s.handleCurrentPlan)
		r.Get("/api/v1/me/payments", s.handlePaymentHistory)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.requireRole(security.RoleAdmin))
		r.Post("/api/v1/admin/transactions/cleanup", s.handleCleanup)
		r.Patch("/api/v1/admin/orders/{orderId}/status", s.handleAdminOrderStatus)
	})
}

type claimsKey struct{}

func (s *Server) requireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := s.Tokens.FromRequest(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			allowed := false
			for _, role := range roles {
				if claims.Role == role {
					allowed = true
					break
				}
			}
			if !allowed {
				s.fail(w, r, domain.ErrForbidden)
				return
			}
			ctx := context.WithValue(r.Context(), claimsKey{}, claims)
			ctx = logging.WithUserID(ctx, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func claimsFrom(ctx context.Context) *security.Claims {
	c, _ := ctx.Value(claimsKey{}).(*security.Claims)
	return c
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// statusFor maps domain errors onto HTTP statuses for the REST endpoints.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnsupportedMethod), errors.Is(err, domain.ErrPlanNotPurchasable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrIllegalOrderStatus), errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		l := logging.With(r.Context(), s.log)
		l.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}
