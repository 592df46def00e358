package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/metrics"
)

// balanceResolver answers balance queries from the journal log. The cached
// balance on each account is only a fast path for "now".
type balanceResolver struct {
	BaseService
	store portsrepo.LedgerStore
}

// NewBalanceResolver creates a new balance resolver.
func NewBalanceResolver(store portsrepo.LedgerStore, options ...ServiceOption) portssvc.BalanceResolverSvc {
	cfg := newServiceConfig(options)
	return &balanceResolver{BaseService: BaseService{clock: cfg.clock}, store: store}
}

var _ portssvc.BalanceResolverSvc = (*balanceResolver)(nil)

// BalanceAsOf replays every non-reversed entry dated on or before cutoff.
func (s *balanceResolver) BalanceAsOf(ctx context.Context, accountID string, cutoff time.Time) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := s.store.View(ctx, func(tx portsrepo.ReadTx) error {
		if _, err := tx.FindAccountByID(accountID); err != nil {
			return err
		}
		balance = newBookView(tx).balanceAsOf(accountID, cutoff)
		return nil
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to resolve balance", slog.String("account_id", accountID))
		return decimal.Zero, err
	}
	s.LogDebug(ctx, "Balance resolved",
		slog.String("account_id", accountID),
		slog.Time("cutoff", cutoff),
		slog.String("balance", balance.String()))
	return balance, nil
}

// CurrentBalance returns the cached balance.
func (s *balanceResolver) CurrentBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := s.store.View(ctx, func(tx portsrepo.ReadTx) error {
		acc, err := tx.FindAccountByID(accountID)
		if err != nil {
			return err
		}
		balance = acc.Balance
		return nil
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to read cached balance", slog.String("account_id", accountID))
		return decimal.Zero, err
	}
	return balance, nil
}

// VerifyCache compares every cached balance with a full replay.
func (s *balanceResolver) VerifyCache(ctx context.Context) (*domain.CacheVerification, error) {
	result := &domain.CacheVerification{}
	err := s.store.View(ctx, func(tx portsrepo.ReadTx) error {
		view := newBookView(tx)
		result.CheckedAccounts = len(view.accounts)
		result.Warnings = view.cacheWarnings()
		return nil
	})
	if err != nil {
		return nil, err
	}
	result.Consistent = len(result.Warnings) == 0
	s.reportWarnings(ctx, result.Warnings)
	s.LogInfo(ctx, "Cached balances verified",
		slog.Int("checked", result.CheckedAccounts),
		slog.Bool("consistent", result.Consistent))
	return result, nil
}

// RebuildCache overwrites cached balances with a full replay and reports what changed.
func (s *balanceResolver) RebuildCache(ctx context.Context) (*domain.CacheVerification, error) {
	result := &domain.CacheVerification{}
	err := s.store.Update(ctx, func(tx portsrepo.Tx) error {
		view := newBookView(tx)
		result.CheckedAccounts = len(view.accounts)
		result.Warnings = view.cacheWarnings()
		for _, w := range result.Warnings {
			if err := tx.SetBalance(w.AccountID, w.Expected); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to rebuild cached balances")
		return nil, err
	}
	result.Consistent = len(result.Warnings) == 0
	s.reportWarnings(ctx, result.Warnings)
	s.LogInfo(ctx, "Cached balances rebuilt", slog.Int("corrected", len(result.Warnings)))
	return result, nil
}

func (s *balanceResolver) reportWarnings(ctx context.Context, warnings []domain.ConsistencyWarning) {
	for _, w := range warnings {
		metrics.ConsistencyWarnings.WithLabelValues(w.Code).Inc()
		s.LogWarn(ctx, w.Message,
			slog.String("account_id", w.AccountID),
			slog.String("expected", w.Expected.String()),
			slog.String("actual", w.Actual.String()))
	}
}
