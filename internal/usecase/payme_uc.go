// File: internal/usecase/payme_uc.go
package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"ielts-payme-billing/internal/domain"
	"ielts-payme-billing/internal/domain/model"
	"ielts-payme-billing/internal/domain/ports/adapter"
	"ielts-payme-billing/internal/domain/ports/repository"
	"ielts-payme-billing/internal/infra/metrics"
)

// Payme merchant API methods.
const (
	MethodCheckPerformTransaction = "CheckPerformTransaction"
	MethodCreateTransaction       = "CreateTransaction"
	MethodPerformTransaction      = "PerformTransaction"
	MethodCancelTransaction       = "CancelTransaction"
	MethodCheckTransaction        = "CheckTransaction"
	MethodGetStatement            = "GetStatement"
	MethodChangePassword          = "ChangePassword"
)

const (
	defaultMinAmount         = 1000
	defaultMaxAmount         = 100000000
	defaultActivationTimeout = 10 * time.Second
	maxStatementRange        = 366 * 24 * time.Hour
	cancelAttempts           = 3
)

// Compile-time check
var _ PaymeUseCase = (*paymeUC)(nil)

// PaymeUseCase is the Payme merchant protocol state machine. Handle never
// returns a Go error: every failure is already mapped to a Payme code.
type PaymeUseCase interface {
	Handle(ctx context.Context, method string, params json.RawMessage) (any, *domain.RPCError)
}

// PaymeOptions tunes order validation and the post-payment side effects.
type PaymeOptions struct {
	MinAmount         int64 // tiyin
	MaxAmount         int64 // tiyin
	InvalidOrderIDs   []string
	ActivationTimeout time.Duration

	// Fiscal receipt item fields returned by CheckPerformTransaction.
	ReceiptCode        string
	ReceiptPackageCode string
	ReceiptVatPercent  int
}

type paymeUC struct {
	orders    repository.OrderRepository
	txs       repository.TransactionRepository
	tm        repository.TransactionManager
	activator adapter.SubscriptionActivator
	events    adapter.PaymentEventPublisher
	opts      PaymeOptions
	invalid   map[string]struct{}
	now       func() time.Time
	log       *zerolog.Logger
}

func NewPaymeUseCase(
	orders repository.OrderRepository,
	txs repository.TransactionRepository,
	tm repository.TransactionManager,
	activator adapter.SubscriptionActivator,
	events adapter.PaymentEventPublisher,
	opts PaymeOptions,
	logger *zerolog.Logger,
) *paymeUC {
	if opts.MinAmount <= 0 {
		opts.MinAmount = defaultMinAmount
	}
	if opts.MaxAmount <= 0 {
		opts.MaxAmount = defaultMaxAmount
	}
	if opts.ActivationTimeout <= 0 {
		opts.ActivationTimeout = defaultActivationTimeout
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	invalid := make(map[string]struct{}, len(opts.InvalidOrderIDs))
	for _, id := range opts.InvalidOrderIDs {
		invalid[id] = struct{}{}
	}
	l := logger.With().Str("component", "payme").Logger()
	return &paymeUC{
		orders:    orders,
		txs:       txs,
		tm:        tm,
		activator: activator,
		events:    events,
		opts:      opts,
		invalid:   invalid,
		now:       time.Now,
		log:       &l,
	}
}

func (u *paymeUC) Handle(ctx context.Context, method string, params json.RawMessage) (result any, rerr *domain.RPCError) {
	start := time.Now()
	defer func() {
		outcome := "ok"
		if rerr != nil {
			outcome = "error"
		}
		metrics.ObservePaymeRPC(method, outcome, time.Since(start))
	}()

	switch method {
	case MethodCheckPerformTransaction:
		return u.checkPerformTransaction(ctx, params)
	case MethodCreateTransaction:
		return u.createTransaction(ctx, params)
	case MethodPerformTransaction:
		return u.performTransaction(ctx, params)
	case MethodCancelTransaction:
		return u.cancelTransaction(ctx, params)
	case MethodCheckTransaction:
		return u.checkTransaction(ctx, params)
	case MethodGetStatement:
		return u.getStatement(ctx, params)
	case MethodChangePassword:
		return nil, domain.ErrAuthorization()
	default:
		return nil, domain.NewRPCError(domain.CodeMethodNotFound, "Method not found").WithData(method)
	}
}

// -----------------------------
// Params and results
// -----------------------------

type checkPerformParams struct {
	Amount  json.Number    `json:"amount"`
	Account map[string]any `json:"account"`
}

type createParams struct {
	ID      string         `json:"id"`
	Time    json.Number    `json:"time"`
	Amount  json.Number    `json:"amount"`
	Account map[string]any `json:"account"`
}

type idParams struct {
	ID     string `json:"id"`
	Reason *int   `json:"reason"`
}

type statementParams struct {
	From json.Number `json:"from"`
	To   json.Number `json:"to"`
}

type receiptItem struct {
	Title       string `json:"title"`
	Price       int64  `json:"price"`
	Count       int    `json:"count"`
	Code        string `json:"code,omitempty"`
	PackageCode string `json:"package_code,omitempty"`
	VatPercent  int    `json:"vat_percent"`
}

type receiptDetail struct {
	ReceiptType int           `json:"receipt_type"`
	Items       []receiptItem `json:"items"`
}

type CheckPerformResult struct {
	Allow  bool           `json:"allow"`
	Detail *receiptDetail `json:"detail,omitempty"`
}

type CreateResult struct {
	CreateTime  int64  `json:"create_time"`
	Transaction string `json:"transaction"`
	State       int    `json:"state"`
}

type PerformResult struct {
	Transaction string `json:"transaction"`
	PerformTime int64  `json:"perform_time"`
	State       int    `json:"state"`
}

type CancelResult struct {
	Transaction string `json:"transaction"`
	CancelTime  int64  `json:"cancel_time"`
	State       int    `json:"state"`
}

type CheckResult struct {
	CreateTime  int64  `json:"create_time"`
	PerformTime int64  `json:"perform_time"`
	CancelTime  int64  `json:"cancel_time"`
	Transaction string `json:"transaction"`
	State       int    `json:"state"`
	Reason      *int   `json:"reason"`
}

type StatementEntry struct {
	ID          string         `json:"id"`
	Time        int64          `json:"time"`
	Amount      int64          `json:"amount"`
	Account     map[string]any `json:"account"`
	CreateTime  int64          `json:"create_time"`
	PerformTime int64          `json:"perform_time"`
	CancelTime  int64          `json:"cancel_time"`
	Transaction string         `json:"transaction"`
	State       int            `json:"state"`
	Reason      *int           `json:"reason"`
}

type StatementResult struct {
	Transactions []StatementEntry `json:"transactions"`
}

func decodeParams(raw json.RawMessage, dst any) *domain.RPCError {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return domain.NewRPCError(domain.CodeInvalidRequest, "Invalid params")
	}
	return nil
}

// parseInt accepts integral JSON numbers only, including forms like 1e5.
func parseInt(n json.Number) (int64, bool) {
	if n == "" {
		return 0, false
	}
	if v, err := n.Int64(); err == nil {
		return v, true
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// -----------------------------
// Validation shared by CheckPerform and Create
// -----------------------------

var (
	errInvalidAccount = domain.NewRPCError(domain.CodeInvalidAccount, "Invalid account").WithData("orderId")
	errOrderNotFound  = domain.NewRPCError(domain.CodeInvalidAccount, "Order not found").WithData("orderId")
	errInvalidAmount  = domain.NewRPCError(domain.CodeInvalidAmount, "Invalid amount").WithData("amount")
	errTxNotFound     = domain.NewRPCError(domain.CodeTransactionNotFound, "Транзакция не найдена")
	errCannotPerform  = domain.NewRPCError(domain.CodeCannotPerform, "Cannot perform operation")
	errUnexpected     = domain.NewRPCError(domain.CodeUnexpectedState, "Unexpected transaction state")
	errInProgress     = domain.NewRPCError(domain.CodeTransactionInProgress, "Another transaction is already processing this order").WithData("orderId")
)

// errOrderClosed aborts the create transaction when the locked order no longer accepts payments.
var errOrderClosed = errors.New("order no longer payable")

func (u *paymeUC) validateOrder(ctx context.Context, account map[string]any, amount json.Number) (*model.Order, *domain.RPCError) {
	raw, ok := account["orderId"]
	if !ok {
		return nil, domain.NewRPCError(domain.CodeInvalidAccount, "Order id is required").WithData("orderId")
	}
	orderID, ok := raw.(string)
	if !ok || orderID == "" {
		return nil, errInvalidAccount
	}
	if _, bad := u.invalid[orderID]; bad {
		return nil, errInvalidAccount
	}
	if _, _, _, err := model.ParseOrderID(orderID); err != nil {
		return nil, errInvalidAccount
	}

	order, err := u.orders.FindByID(ctx, repository.NoTX, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, errOrderNotFound
		}
		return nil, u.systemError(err, "find order")
	}

	n, ok := parseInt(amount)
	if !ok || n < u.opts.MinAmount || n > u.opts.MaxAmount || n != order.AmountInTiyin {
		return nil, errInvalidAmount
	}

	if rerr := orderStatusError(order.Status); rerr != nil {
		return nil, rerr
	}
	return order, nil
}

// orderStatusError is nil while the order can still take a payment.
func orderStatusError(status model.OrderStatus) *domain.RPCError {
	switch status {
	case model.OrderStatusPending, model.OrderStatusCreated:
		return nil
	case model.OrderStatusPaid:
		return domain.NewRPCError(domain.CodeOrderAlreadyPaid, "Order already paid").WithData("orderId")
	case model.OrderStatusCancelled:
		return domain.NewRPCError(domain.CodeOrderCancelled, "Order cancelled").WithData("orderId")
	case model.OrderStatusFailed:
		return domain.NewRPCError(domain.CodeOrderFailed, "Order failed").WithData("orderId")
	case model.OrderStatusRefunded:
		return domain.NewRPCError(domain.CodeOrderRefunded, "Order refunded").WithData("orderId")
	default:
		return domain.NewRPCError(domain.CodeInvalidOrderStatus, "Invalid order status").WithData("orderId")
	}
}

// replayCreate answers a repeated CreateTransaction. The stored transaction is
// only returned when the request names the same order and amount.
func replayCreate(t *model.Transaction, account map[string]any, amount json.Number) (any, *domain.RPCError) {
	if orderID, _ := account["orderId"].(string); orderID != t.OrderID {
		return nil, errInvalidAccount
	}
	if n, ok := parseInt(amount); !ok || n != t.Amount {
		return nil, errInvalidAmount
	}
	return createResult(t), nil
}

func (u *paymeUC) systemError(err error, op string) *domain.RPCError {
	u.log.Error().Err(err).Str("op", op).Msg("store failure")
	return domain.NewRPCError(domain.CodeSystemError, "System error")
}

// -----------------------------
// Methods
// -----------------------------

func (u *paymeUC) checkPerformTransaction(ctx context.Context, raw json.RawMessage) (any, *domain.RPCError) {
	var p checkPerformParams
	if rerr := decodeParams(raw, &p); rerr != nil {
		return nil, rerr
	}
	order, rerr := u.validateOrder(ctx, p.Account, p.Amount)
	if rerr != nil {
		return nil, rerr
	}
	title := order.Description
	if title == "" {
		title = order.PlanID
	}
	return CheckPerformResult{
		Allow: true,
		Detail: &receiptDetail{
			ReceiptType: 0,
			Items: []receiptItem{{
				Title:       title,
				Price:       order.AmountInTiyin,
				Count:       1,
				Code:        u.opts.ReceiptCode,
				PackageCode: u.opts.ReceiptPackageCode,
				VatPercent:  u.opts.ReceiptVatPercent,
			}},
		},
	}, nil
}

func (u *paymeUC) createTransaction(ctx context.Context, raw json.RawMessage) (any, *domain.RPCError) {
	var p createParams
	if rerr := decodeParams(raw, &p); rerr != nil {
		return nil, rerr
	}
	if p.ID == "" {
		return nil, domain.NewRPCError(domain.CodeInvalidRequest, "Transaction id is required").WithData("id")
	}
	paymeTime, ok := parseInt(p.Time)
	if !ok {
		return nil, domain.NewRPCError(domain.CodeInvalidRequest, "Invalid time").WithData("time")
	}

	existing, err := u.txs.FindByID(ctx, repository.NoTX, p.ID)
	switch {
	case err == nil:
		return replayCreate(existing, p.Account, p.Amount)
	case !errors.Is(err, domain.ErrNotFound):
		return nil, u.systemError(err, "find transaction")
	}

	order, rerr := u.validateOrder(ctx, p.Account, p.Amount)
	if rerr != nil {
		return nil, rerr
	}

	now := model.Millis(u.now())
	t := &model.Transaction{
		ID:         p.ID,
		LocalID:    uuid.NewString(),
		PaymeTime:  paymeTime,
		Amount:     order.AmountInTiyin,
		Account:    p.Account,
		OrderID:    order.ID,
		UserID:     order.UserID,
		PlanID:     order.PlanID,
		State:      model.TransactionStateCreated,
		CreateTime: now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	var statusErr *domain.RPCError
	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		// Row lock on the order; an admin status change may have landed since validation.
		locked, err := u.orders.FindByID(ctx, tx, order.ID)
		if err != nil {
			return err
		}
		if statusErr = orderStatusError(locked.Status); statusErr != nil {
			return errOrderClosed
		}
		if err := u.txs.Create(ctx, tx, t); err != nil {
			return err
		}
		return u.orders.UpdateStatus(ctx, tx, order.ID, model.OrderStatusCreated, &t.ID, now)
	})
	switch {
	case err == nil:
	case errors.Is(err, errOrderClosed):
		u.log.Info().Str("order_id", order.ID).Str("transaction_id", p.ID).Int("code", statusErr.Code).Msg("order closed before transaction could be created")
		return nil, statusErr
	case errors.Is(err, domain.ErrActiveTransactionExists):
		ev := u.log.Info().Str("order_id", order.ID).Str("transaction_id", p.ID)
		if holder, ferr := u.txs.FindActiveByOrder(ctx, repository.NoTX, order.ID); ferr == nil {
			ev = ev.Str("active_transaction_id", holder.ID)
		}
		ev.Msg("rejected second active transaction")
		return nil, errInProgress
	case errors.Is(err, domain.ErrAlreadyExists):
		// Same Payme id inserted concurrently: replay the winner.
		winner, ferr := u.txs.FindByID(ctx, repository.NoTX, p.ID)
		if ferr != nil {
			return nil, u.systemError(ferr, "reread transaction")
		}
		return replayCreate(winner, p.Account, p.Amount)
	default:
		return nil, u.systemError(err, "create transaction")
	}

	metrics.IncPaymeTransaction("created")
	u.log.Info().Str("order_id", order.ID).Str("transaction_id", t.ID).Int64("amount", t.Amount).Msg("transaction created")
	return createResult(t), nil
}

func (u *paymeUC) performTransaction(ctx context.Context, raw json.RawMessage) (any, *domain.RPCError) {
	var p idParams
	if rerr := decodeParams(raw, &p); rerr != nil {
		return nil, rerr
	}
	t, rerr := u.findTransaction(ctx, p.ID)
	if rerr != nil {
		return nil, rerr
	}
	if rerr := performable(t); rerr != nil {
		return nil, rerr
	}
	if t.State == model.TransactionStatePerformed {
		return performResult(t), nil
	}

	now := model.Millis(u.now())
	var won bool
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		ok, err := u.txs.MarkPerformed(ctx, tx, t.ID, now)
		if err != nil || !ok {
			return err
		}
		won = true
		return u.orders.UpdateStatus(ctx, tx, t.OrderID, model.OrderStatusPaid, &t.ID, now)
	})
	if err != nil {
		return nil, u.systemError(err, "perform transaction")
	}
	if !won {
		cur, rerr := u.findTransaction(ctx, t.ID)
		if rerr != nil {
			return nil, rerr
		}
		if rerr := performable(cur); rerr != nil {
			return nil, rerr
		}
		if cur.State != model.TransactionStatePerformed {
			return nil, errUnexpected
		}
		return performResult(cur), nil
	}

	t.State = model.TransactionStatePerformed
	t.PerformTime = &now
	metrics.IncPaymeTransaction("performed")
	metrics.AddPaymentRevenue(t.Amount)
	u.log.Info().Str("order_id", t.OrderID).Str("transaction_id", t.ID).Msg("transaction performed")

	u.publish(ctx, adapter.PaymentEventPerformed, t)
	u.activate(ctx, t, now)
	return performResult(t), nil
}

// performable rejects states a perform can neither run on nor replay.
func performable(t *model.Transaction) *domain.RPCError {
	switch t.State {
	case model.TransactionStateCreated, model.TransactionStatePerformed:
		return nil
	case model.TransactionStateCancelled, model.TransactionStateCancelledAfterPerformed:
		return errCannotPerform
	default:
		return errUnexpected
	}
}

func (u *paymeUC) activate(ctx context.Context, t *model.Transaction, now time.Time) {
	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), u.opts.ActivationTimeout)
	defer cancel()

	log := u.log.With().Str("user_id", t.UserID).Str("order_id", t.OrderID).Str("transaction_id", t.ID).Logger()
	if err := u.activator.ActivatePaidPlan(actx, t.UserID, t.PlanID, t.Amount, t.OrderID); err != nil {
		metrics.IncSubscriptionActivation("failed")
		log.Error().Err(err).Msg("paid plan activation failed, left for the reconciler")
		return
	}
	metrics.IncSubscriptionActivation("succeeded")
	if err := u.orders.MarkActivated(actx, repository.NoTX, t.OrderID, now); err != nil {
		log.Warn().Err(err).Msg("failed to mark order activated")
	}
}

func (u *paymeUC) cancelTransaction(ctx context.Context, raw json.RawMessage) (any, *domain.RPCError) {
	var p idParams
	if rerr := decodeParams(raw, &p); rerr != nil {
		return nil, rerr
	}
	if p.Reason == nil {
		return nil, domain.NewRPCError(domain.CodeInvalidRequest, "Reason is required").WithData("reason")
	}
	reason := *p.Reason

	t, rerr := u.findTransaction(ctx, p.ID)
	if rerr != nil {
		return nil, rerr
	}

	for attempt := 0; attempt < cancelAttempts; attempt++ {
		if t.State.Cancelled() {
			return cancelResult(t), nil
		}
		from := t.State
		if from != model.TransactionStateCreated && from != model.TransactionStatePerformed {
			return nil, errUnexpected
		}
		to := model.CancelTarget(from, reason)
		now := model.Millis(u.now())

		var won bool
		err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
			ok, err := u.txs.MarkCancelled(ctx, tx, t.ID, from, to, now, reason)
			if err != nil || !ok {
				return err
			}
			won = true
			return u.orders.UpdateStatus(ctx, tx, t.OrderID, model.OrderStatusCancelled, &t.ID, now)
		})
		if err != nil {
			return nil, u.systemError(err, "cancel transaction")
		}
		if won {
			t.State = to
			t.CancelTime = &now
			t.Reason = &reason
			metrics.IncPaymeTransaction("cancelled")
			u.log.Info().Str("order_id", t.OrderID).Str("transaction_id", t.ID).
				Int("reason", reason).Int("state", int(to)).Msg("transaction cancelled")

			u.publish(ctx, adapter.PaymentEventCancelled, t)
			if from == model.TransactionStatePerformed {
				u.revert(ctx, t)
			}
			return cancelResult(t), nil
		}

		// Lost the conditional update; continue from whatever the winner left.
		if t, rerr = u.findTransaction(ctx, p.ID); rerr != nil {
			return nil, rerr
		}
	}
	if t.State.Cancelled() {
		return cancelResult(t), nil
	}
	return nil, errUnexpected
}

func (u *paymeUC) revert(ctx context.Context, t *model.Transaction) {
	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), u.opts.ActivationTimeout)
	defer cancel()

	log := u.log.With().Str("user_id", t.UserID).Str("order_id", t.OrderID).Str("transaction_id", t.ID).Logger()
	reverted, err := u.activator.RevertToFreePlan(actx, t.UserID, t.PlanID)
	if err != nil {
		log.Error().Err(err).Msg("revert to free plan failed")
		return
	}
	if !reverted {
		log.Info().Str("plan_id", t.PlanID).Msg("user no longer on the refunded plan, nothing reverted")
	}
}

func (u *paymeUC) checkTransaction(ctx context.Context, raw json.RawMessage) (any, *domain.RPCError) {
	var p idParams
	if rerr := decodeParams(raw, &p); rerr != nil {
		return nil, rerr
	}
	t, rerr := u.findTransaction(ctx, p.ID)
	if rerr != nil {
		return nil, rerr
	}
	return CheckResult{
		CreateTime:  t.CreateTime.UnixMilli(),
		PerformTime: model.UnixMillis(t.PerformTime),
		CancelTime:  model.UnixMillis(t.CancelTime),
		Transaction: t.LocalID,
		State:       int(t.State),
		Reason:      t.Reason,
	}, nil
}

func (u *paymeUC) getStatement(ctx context.Context, raw json.RawMessage) (any, *domain.RPCError) {
	var p statementParams
	if rerr := decodeParams(raw, &p); rerr != nil {
		return nil, rerr
	}
	from, okFrom := parseInt(p.From)
	to, okTo := parseInt(p.To)
	if !okFrom || !okTo || from < 0 || from > to || to-from > maxStatementRange.Milliseconds() {
		return nil, domain.NewRPCError(domain.CodeInvalidRequest, "Invalid statement range").WithData("from")
	}

	list, err := u.txs.ListByCreateTime(ctx, repository.NoTX, from, to)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, u.systemError(err, "list transactions")
	}
	res := StatementResult{Transactions: make([]StatementEntry, 0, len(list))}
	for _, t := range list {
		res.Transactions = append(res.Transactions, StatementEntry{
			ID:          t.ID,
			Time:        t.PaymeTime,
			Amount:      t.Amount,
			Account:     t.Account,
			CreateTime:  t.CreateTime.UnixMilli(),
			PerformTime: model.UnixMillis(t.PerformTime),
			CancelTime:  model.UnixMillis(t.CancelTime),
			Transaction: t.LocalID,
			State:       int(t.State),
			Reason:      t.Reason,
		})
	}
	return res, nil
}

// -----------------------------
// Helpers
// -----------------------------

func (u *paymeUC) findTransaction(ctx context.Context, id string) (*model.Transaction, *domain.RPCError) {
	if id == "" {
		return nil, domain.NewRPCError(domain.CodeInvalidRequest, "Transaction id is required").WithData("id")
	}
	t, err := u.txs.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, errTxNotFound
		}
		return nil, u.systemError(err, "find transaction")
	}
	return t, nil
}

func (u *paymeUC) publish(ctx context.Context, typ adapter.PaymentEventType, t *model.Transaction) {
	if u.events == nil {
		return
	}
	ev := adapter.PaymentEvent{
		ID:            ulid.Make().String(),
		Type:          typ,
		TransactionID: t.ID,
		OrderID:       t.OrderID,
		UserID:        t.UserID,
		PlanID:        t.PlanID,
		Amount:        t.Amount,
		State:         int(t.State),
		Reason:        t.Reason,
		OccurredAt:    u.now().UTC(),
	}
	if err := u.events.Publish(context.WithoutCancel(ctx), ev); err != nil {
		u.log.Warn().Err(err).Str("event", string(typ)).Str("transaction_id", t.ID).Msg("failed to publish payment event")
	}
}

func createResult(t *model.Transaction) CreateResult {
	return CreateResult{
		CreateTime:  t.CreateTime.UnixMilli(),
		Transaction: t.LocalID,
		State:       int(t.State),
	}
}

func performResult(t *model.Transaction) PerformResult {
	return PerformResult{
		Transaction: t.LocalID,
		PerformTime: model.UnixMillis(t.PerformTime),
		State:       int(t.State),
	}
}

func cancelResult(t *model.Transaction) CancelResult {
	return CancelResult{
		Transaction: t.LocalID,
		CancelTime:  model.UnixMillis(t.CancelTime),
		State:       int(t.State),
	}
}
