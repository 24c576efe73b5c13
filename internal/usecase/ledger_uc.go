// File: internal/usecase/ledger_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"ielts-payme-billing/internal/domain"
	"ielts-payme-billing/internal/domain/ports/repository"
)

// Compile-time check
var _ LedgerUseCase = (*ledgerUC)(nil)

type LedgerUseCase interface {
	// CleanupCancelled deletes transactions cancelled before cutoff.
	CleanupCancelled(ctx context.Context, cutoff time.Time) (int64, error)
}

type ledgerUC struct {
	txs repository.TransactionRepository
	now func() time.Time
	log *zerolog.Logger
}

func NewLedgerUseCase(txs repository.TransactionRepository, logger *zerolog.Logger) *ledgerUC {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "ledger").Logger()
	return &ledgerUC{txs: txs, now: time.Now, log: &l}
}

func (u *ledgerUC) CleanupCancelled(ctx context.Context, cutoff time.Time) (int64, error) {
	if cutoff.IsZero() || cutoff.After(u.now()) {
		return 0, domain.ErrInvalidArgument
	}
	n, err := u.txs.DeleteCancelledBefore(ctx, repository.NoTX, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		u.log.Info().Int64("deleted", n).Time("cutoff", cutoff).Msg("cancelled transactions removed")
	}
	return n, nil
}
