package services

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BalanceResolverSvc computes balances from the journal log.
type BalanceResolverSvc interface {
	// BalanceAsOf replays every non-reversed entry dated on or before cutoff.
	BalanceAsOf(ctx context.Context, accountID string, cutoff time.Time) (decimal.Decimal, error)

	// CurrentBalance returns the cached balance.
	CurrentBalance(ctx context.Context, accountID string) (decimal.Decimal, error)

	// VerifyCache compares every cached balance with a full replay.
	VerifyCache(ctx context.Context) (*domain.CacheVerification, error)

	// RebuildCache overwrites cached balances with a full replay and reports what changed.
	RebuildCache(ctx context.Context) (*domain.CacheVerification, error)
}
