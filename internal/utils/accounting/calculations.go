package accounting

import (
	"fmt"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SignedDelta returns the change a line makes to an account's balance.
// DEBIT to ASSET/COGS/EXPENSE -> Positive (+)
// CREDIT to LIABILITY/EQUITY/REVENUE -> Positive (+)
func SignedDelta(line domain.JournalLine, accountType domain.AccountType) (decimal.Decimal, error) {
	if !accountType.IsValid() {
		return decimal.Zero, fmt.Errorf("unknown account type '%s' encountered for account ID %s", accountType, line.AccountID)
	}
	if accountType.IsDebitNormal() {
		return line.Debit.Sub(line.Credit), nil
	}
	return line.Credit.Sub(line.Debit), nil
}

// WithinTolerance reports whether a and b differ by less than domain.BalanceTolerance.
func WithinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(domain.BalanceTolerance)
}

// ValidateLines checks the structural rules every journal line must satisfy.
func ValidateLines(lines []domain.JournalLine) error {
	if len(lines) < 2 {
		return fmt.Errorf("%w: journal must have at least two lines", apperrors.ErrValidation)
	}
	for i, l := range lines {
		if l.AccountID == "" {
			return fmt.Errorf("%w: line %d has no account", apperrors.ErrValidation, i)
		}
		if l.Debit.IsNegative() || l.Credit.IsNegative() {
			return fmt.Errorf("%w: line %d has a negative amount", apperrors.ErrValidation, i)
		}
		if l.Debit.IsZero() && l.Credit.IsZero() {
			return fmt.Errorf("%w: line %d has neither debit nor credit", apperrors.ErrValidation, i)
		}
	}
	return nil
}

// ValidateEntryBalance checks that the debit and credit totals of lines agree.
func ValidateEntryBalance(lines []domain.JournalLine) error {
	debit, credit := decimal.Zero, decimal.Zero
	for _, l := range lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	if !WithinTolerance(debit, credit) {
		return &apperrors.UnbalancedEntryError{DebitTotal: debit, CreditTotal: credit}
	}
	return nil
}

// BalanceChanges folds lines into per-account balance deltas.
func BalanceChanges(lines []domain.JournalLine, accountTypes map[string]domain.AccountType) (map[string]decimal.Decimal, error) {
	changes := make(map[string]decimal.Decimal, len(lines))
	for _, l := range lines {
		accountType, ok := accountTypes[l.AccountID]
		if !ok {
			return nil, fmt.Errorf("%w: account type not found for account ID %s", apperrors.ErrNotFound, l.AccountID)
		}
		delta, err := SignedDelta(l, accountType)
		if err != nil {
			return nil, err
		}
		changes[l.AccountID] = changes[l.AccountID].Add(delta)
	}
	return changes, nil
}
