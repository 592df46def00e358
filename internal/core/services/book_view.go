package services

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_core/internal/utils/accounting"
)

// bookView is a read-only copy of the chart and the journal taken inside one
// store view. All historical figures are folds over its replayable entries.
type bookView struct {
	accounts []domain.Account // ordered by code
	byID     map[string]domain.Account
	entries  []domain.JournalEntry // every entry, ordered by date then sequence
}

func newBookView(tx portsrepo.ReadTx) *bookView {
	accounts := tx.ListAccounts()
	byID := make(map[string]domain.Account, len(accounts))
	for _, a := range accounts {
		byID[a.AccountID] = a
	}
	entries := tx.ListEntries()
	sortEntries(entries)
	return &bookView{accounts: accounts, byID: byID, entries: entries}
}

// activeAccounts returns the active accounts, optionally limited to some types.
func (v *bookView) activeAccounts(types ...domain.AccountType) []domain.Account {
	var out []domain.Account
	for _, a := range v.accounts {
		if !a.IsActive {
			continue
		}
		if len(types) > 0 && !containsType(types, a.AccountType) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// inactiveBalanceWarnings flags inactive accounts that still hold a balance.
// Reports leave them out, so their amounts are missing from the totals.
func (v *bookView) inactiveBalanceWarnings(balances map[string]decimal.Decimal) []domain.ConsistencyWarning {
	var out []domain.ConsistencyWarning
	for _, a := range v.accounts {
		balance := balances[a.AccountID]
		if a.IsActive || balance.IsZero() {
			continue
		}
		out = append(out, domain.ConsistencyWarning{
			Code:       domain.WarnInactiveAccountBalance,
			Message:    "inactive account " + a.Code + " carries a balance excluded from the report",
			AccountID:  a.AccountID,
			Expected:   decimal.Zero,
			Actual:     balance,
			Difference: balance,
		})
	}
	return out
}

func containsType(types []domain.AccountType, t domain.AccountType) bool {
	for _, x := range types {
		if x == t {
			return true
		}
	}
	return false
}

// fold adds the signed deltas of every replayable entry accepted by include.
func (v *bookView) fold(include func(e domain.JournalEntry) bool) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(v.byID))
	for _, e := range v.entries {
		if !e.Replayable() || !include(e) {
			continue
		}
		for _, l := range e.Lines {
			acc, ok := v.byID[l.AccountID]
			if !ok {
				continue
			}
			delta, err := accounting.SignedDelta(l, acc.AccountType)
			if err != nil {
				continue
			}
			out[l.AccountID] = out[l.AccountID].Add(delta)
		}
	}
	return out
}

// balancesAsOf replays every replayable entry dated on or before cutoff.
func (v *bookView) balancesAsOf(cutoff time.Time) map[string]decimal.Decimal {
	return v.fold(func(e domain.JournalEntry) bool { return !e.Date.After(cutoff) })
}

// balanceAsOf is balancesAsOf for a single account.
func (v *bookView) balanceAsOf(accountID string, cutoff time.Time) decimal.Decimal {
	return v.balancesAsOf(cutoff)[accountID]
}

// periodDeltas sums replayable activity dated within [start, end].
func (v *bookView) periodDeltas(start, end time.Time) map[string]decimal.Decimal {
	return v.fold(func(e domain.JournalEntry) bool {
		return !e.Date.Before(start) && !e.Date.After(end)
	})
}

// cacheWarnings compares every cached balance with a full replay.
func (v *bookView) cacheWarnings() []domain.ConsistencyWarning {
	replayed := v.balancesAsOf(domain.EndOfTime)
	var warnings []domain.ConsistencyWarning
	for _, a := range v.accounts {
		expected := replayed[a.AccountID]
		if expected.Equal(a.Balance) {
			continue
		}
		warnings = append(warnings, domain.ConsistencyWarning{
			Code:       domain.WarnCachedBalanceMismatch,
			Message:    "cached balance of " + a.Code + " differs from journal replay",
			AccountID:  a.AccountID,
			Expected:   expected,
			Actual:     a.Balance,
			Difference: a.Balance.Sub(expected),
		})
	}
	return warnings
}
