//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"ielts-payme-billing/internal/domain"
	"ielts-payme-billing/internal/domain/model"
	"ielts-payme-billing/internal/domain/ports/adapter"
	"ielts-payme-billing/internal/domain/ports/repository"
)

// =============================
// Repositories
// =============================

// ---- In-memory OrderRepository ----

type statusChange struct {
	OrderID string
	Status  model.OrderStatus
	TxID    *string
}

type MockOrderRepo struct {
	mu      sync.Mutex
	data    map[string]*model.Order
	Changes []statusChange

	FindByIDFunc     func(ctx context.Context, id string) (*model.Order, error)
	UpdateStatusFunc func(ctx context.Context, id string, status model.OrderStatus) error
}

var _ repository.OrderRepository = (*MockOrderRepo)(nil)

func NewMockOrderRepo() *MockOrderRepo {
	return &MockOrderRepo{data: map[string]*model.Order{}}
}

func (r *MockOrderRepo) Save(ctx context.Context, tx repository.Tx, o *model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[o.ID]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *o
	r.data[o.ID] = &cp
	return nil
}

func (r *MockOrderRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Order, error) {
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.data[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *MockOrderRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.OrderStatus, txID *string, at time.Time) error {
	if r.UpdateStatusFunc != nil {
		return r.UpdateStatusFunc(ctx, id, status)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.data[id]
	if !ok {
		return domain.ErrNotFound
	}
	o.Status = status
	if txID != nil {
		v := *txID
		o.TransactionID = &v
	}
	o.UpdatedAt = at
	switch status {
	case model.OrderStatusPaid:
		o.CompletedAt = &at
	case model.OrderStatusCancelled:
		o.CancelledAt = &at
	}
	r.Changes = append(r.Changes, statusChange{OrderID: id, Status: status, TxID: txID})
	return nil
}

func (r *MockOrderRepo) MarkActivated(ctx context.Context, tx repository.Tx, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.data[id]
	if !ok {
		return domain.ErrNotFound
	}
	if o.ActivatedAt == nil {
		o.ActivatedAt = &at
	}
	return nil
}

func (r *MockOrderRepo) ListPaidNotActivated(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Order
	for _, o := range r.data {
		if o.Status == model.OrderStatusPaid && o.ActivatedAt == nil && o.CompletedAt != nil && o.CompletedAt.Before(olderThan) {
			cp := *o
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MockOrderRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.OrderStatus]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[model.OrderStatus]int{}
	for _, o := range r.data {
		out[o.Status]++
	}
	return out, nil
}

// PaidTransitions counts how many times the order was moved to PAID.
func (r *MockOrderRepo) PaidTransitions(orderID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.Changes {
		if c.OrderID == orderID && c.Status == model.OrderStatusPaid {
			n++
		}
	}
	return n
}

// ---- In-memory TransactionRepository ----

// MockTransactionRepo enforces the same uniqueness rules as the Postgres
// schema: unique Payme id and one CREATED/PERFORMED transaction per order.
type MockTransactionRepo struct {
	mu   sync.Mutex
	data map[string]*model.Transaction

	FindByIDFunc      func(ctx context.Context, id string) (*model.Transaction, error)
	MarkPerformedFunc func(ctx context.Context, id string, at time.Time) (bool, error)
	ListFunc          func(ctx context.Context, from, to int64) ([]*model.Transaction, error)
}

var _ repository.TransactionRepository = (*MockTransactionRepo)(nil)

func NewMockTransactionRepo() *MockTransactionRepo {
	return &MockTransactionRepo{data: map[string]*model.Transaction{}}
}

func cloneTx(t *model.Transaction) *model.Transaction {
	cp := *t
	if t.PerformTime != nil {
		v := *t.PerformTime
		cp.PerformTime = &v
	}
	if t.CancelTime != nil {
		v := *t.CancelTime
		cp.CancelTime = &v
	}
	if t.Reason != nil {
		v := *t.Reason
		cp.Reason = &v
	}
	return &cp
}

func (r *MockTransactionRepo) Create(ctx context.Context, tx repository.Tx, t *model.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[t.ID]; ok {
		return domain.ErrAlreadyExists
	}
	for _, other := range r.data {
		if other.OrderID == t.OrderID && !other.State.Cancelled() {
			return domain.ErrActiveTransactionExists
		}
	}
	r.data[t.ID] = cloneTx(t)
	return nil
}

func (r *MockTransactionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Transaction, error) {
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.data[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneTx(t), nil
}

func (r *MockTransactionRepo) FindActiveByOrder(ctx context.Context, tx repository.Tx, orderID string) (*model.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.data {
		if t.OrderID == orderID && !t.State.Cancelled() {
			return cloneTx(t), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MockTransactionRepo) MarkPerformed(ctx context.Context, tx repository.Tx, id string, at time.Time) (bool, error) {
	if r.MarkPerformedFunc != nil {
		return r.MarkPerformedFunc(ctx, id, at)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.data[id]
	if !ok || t.State != model.TransactionStateCreated {
		return false, nil
	}
	t.State = model.TransactionStatePerformed
	t.PerformTime = &at
	t.UpdatedAt = at
	return true, nil
}

func (r *MockTransactionRepo) MarkCancelled(ctx context.Context, tx repository.Tx, id string, from, to model.TransactionState, at time.Time, reason int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.data[id]
	if !ok || t.State != from {
		return false, nil
	}
	t.State = to
	t.CancelTime = &at
	t.Reason = &reason
	t.UpdatedAt = at
	return true, nil
}

func (r *MockTransactionRepo) ListByCreateTime(ctx context.Context, tx repository.Tx, from, to int64) ([]*model.Transaction, error) {
	if r.ListFunc != nil {
		return r.ListFunc(ctx, from, to)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Transaction
	for _, t := range r.data {
		ms := t.CreateTime.UnixMilli()
		if ms >= from && ms <= to {
			out = append(out, cloneTx(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreateTime.Before(out[j].CreateTime) })
	return out, nil
}

func (r *MockTransactionRepo) DeleteCancelledBefore(ctx context.Context, tx repository.Tx, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, t := range r.data {
		if t.State.Cancelled() && t.CreateTime.Before(cutoff) {
			delete(r.data, id)
			n++
		}
	}
	return n, nil
}

// Put stores t as-is, bypassing the uniqueness rules.
func (r *MockTransactionRepo) Put(t *model.Transaction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[t.ID] = cloneTx(t)
}

func (r *MockTransactionRepo) CountByOrder(orderID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.data {
		if t.OrderID == orderID {
			n++
		}
	}
	return n
}

// ---- In-memory PlanRepository ----

type MockPlanRepo struct {
	mu   sync.Mutex
	data map[string]*model.Plan

	FindByIDFunc func(ctx context.Context, id string) (*model.Plan, error)
}

var _ repository.PlanRepository = (*MockPlanRepo)(nil)

func NewMockPlanRepo() *MockPlanRepo {
	return &MockPlanRepo{data: map[string]*model.Plan{}}
}

func (r *MockPlanRepo) Save(ctx context.Context, tx repository.Tx, p *model.Plan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.data[p.ID] = &cp
	return nil
}

func (r *MockPlanRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Plan, error) {
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.data[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockPlanRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Plan, 0, len(r.data))
	for _, p := range r.data {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ---- In-memory UserPlanRepository ----

type MockUserPlanRepo struct {
	mu    sync.Mutex
	data  map[string]*model.UserPlan
	Locks []string
}

var _ repository.UserPlanRepository = (*MockUserPlanRepo)(nil)

func NewMockUserPlanRepo() *MockUserPlanRepo {
	return &MockUserPlanRepo{data: map[string]*model.UserPlan{}}
}

func (r *MockUserPlanRepo) LockUser(ctx context.Context, tx repository.Tx, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Locks = append(r.Locks, userID)
	return nil
}

func (r *MockUserPlanRepo) FindByUser(ctx context.Context, tx repository.Tx, userID string) (*model.UserPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	up, ok := r.data[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *up
	return &cp, nil
}

func (r *MockUserPlanRepo) Save(ctx context.Context, tx repository.Tx, up *model.UserPlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *up
	r.data[up.UserID] = &cp
	return nil
}

func (r *MockUserPlanRepo) RevertIfPlan(ctx context.Context, tx repository.Tx, userID, planID, freePlanID string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	up, ok := r.data[userID]
	if !ok || up.PlanID != planID {
		return false, nil
	}
	up.PlanID = freePlanID
	up.IsPremium = false
	up.ExpiresAt = nil
	up.UpdatedAt = now
	return true, nil
}

// ---- In-memory PaymentHistoryRepository ----

type MockPaymentHistoryRepo struct {
	mu      sync.Mutex
	byOrder map[string]*model.PaymentRecord
}

var _ repository.PaymentHistoryRepository = (*MockPaymentHistoryRepo)(nil)

func NewMockPaymentHistoryRepo() *MockPaymentHistoryRepo {
	return &MockPaymentHistoryRepo{byOrder: map[string]*model.PaymentRecord{}}
}

func (r *MockPaymentHistoryRepo) Record(ctx context.Context, tx repository.Tx, rec *model.PaymentRecord) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byOrder[rec.OrderID]; ok {
		return false, nil
	}
	cp := *rec
	r.byOrder[rec.OrderID] = &cp
	return true, nil
}

func (r *MockPaymentHistoryRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.PaymentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.PaymentRecord
	for _, rec := range r.byOrder {
		if rec.UserID == userID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ---- Mock TransactionManager ----

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

// WithTx runs fn immediately with NoTX unless WithTxFunc is set.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}

// =============================
// Adapters
// =============================

// ---- Mock SubscriptionActivator ----

type activationCall struct {
	UserID, PlanID, OrderID string
	Amount                  int64
}

type MockActivator struct {
	mu          sync.Mutex
	Activations []activationCall
	Reverts     []activationCall

	ActivateFunc func(ctx context.Context, userID, planID string, amount int64, orderID string) error
	RevertFunc   func(ctx context.Context, userID, planID string) (bool, error)
}

var _ adapter.SubscriptionActivator = (*MockActivator)(nil)

func (m *MockActivator) ActivatePaidPlan(ctx context.Context, userID, planID string, paidAmount int64, orderID string) error {
	m.mu.Lock()
	m.Activations = append(m.Activations, activationCall{UserID: userID, PlanID: planID, OrderID: orderID, Amount: paidAmount})
	m.mu.Unlock()
	if m.ActivateFunc != nil {
		return m.ActivateFunc(ctx, userID, planID, paidAmount, orderID)
	}
	return nil
}

func (m *MockActivator) RevertToFreePlan(ctx context.Context, userID, planID string) (bool, error) {
	m.mu.Lock()
	m.Reverts = append(m.Reverts, activationCall{UserID: userID, PlanID: planID})
	m.mu.Unlock()
	if m.RevertFunc != nil {
		return m.RevertFunc(ctx, userID, planID)
	}
	return true, nil
}

func (m *MockActivator) counts() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Activations), len(m.Reverts)
}

// ---- Mock PaymentEventPublisher ----

type MockPublisher struct {
	mu     sync.Mutex
	Events []adapter.PaymentEvent

	PublishFunc func(ctx context.Context, ev adapter.PaymentEvent) error
}

var _ adapter.PaymentEventPublisher = (*MockPublisher)(nil)

func (m *MockPublisher) Publish(ctx context.Context, ev adapter.PaymentEvent) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, ev)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, ev)
	return nil
}

func (m *MockPublisher) Close() error { return nil }

func (m *MockPublisher) types() []adapter.PaymentEventType {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]adapter.PaymentEventType, 0, len(m.Events))
	for _, ev := range m.Events {
		out = append(out, ev.Type)
	}
	return out
}

// ---- Mock CheckoutLinkBuilder ----

type MockCheckout struct {
	CheckoutURLFunc func(o *model.Order) (string, error)
}

var _ adapter.CheckoutLinkBuilder = (*MockCheckout)(nil)

func (m *MockCheckout) Name() string { return "payme" }

func (m *MockCheckout) CheckoutURL(o *model.Order) (string, error) {
	if m.CheckoutURLFunc != nil {
		return m.CheckoutURLFunc(o)
	}
	return "https://checkout.test/" + o.ID, nil
}

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}
