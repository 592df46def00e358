package accounting

import (
	"errors"
	"testing"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSignedDelta(t *testing.T) {
	tests := []struct {
		name        string
		line        domain.JournalLine
		accountType domain.AccountType
		want        string
	}{
		{"debit asset", domain.DebitLine("a", d("10")), domain.Asset, "10"},
		{"credit asset", domain.CreditLine("a", d("10")), domain.Asset, "-10"},
		{"debit cogs", domain.DebitLine("a", d("3")), domain.COGS, "3"},
		{"debit expense", domain.DebitLine("a", d("4")), domain.Expense, "4"},
		{"credit liability", domain.CreditLine("a", d("5")), domain.Liability, "5"},
		{"debit equity", domain.DebitLine("a", d("5")), domain.Equity, "-5"},
		{"credit revenue", domain.CreditLine("a", d("7.25")), domain.Revenue, "7.25"},
		{"both sides asset", domain.JournalLine{AccountID: "a", Debit: d("8"), Credit: d("3")}, domain.Asset, "5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SignedDelta(tt.line, tt.accountType)
			require.NoError(t, err)
			assert.True(t, d(tt.want).Equal(got), "got %s", got)
		})
	}

	_, err := SignedDelta(domain.DebitLine("a", d("1")), domain.AccountType("BOGUS"))
	assert.Error(t, err)
}

func TestValidateEntryBalance(t *testing.T) {
	balanced := []domain.JournalLine{domain.DebitLine("a", d("100")), domain.CreditLine("b", d("60")), domain.CreditLine("c", d("40"))}
	assert.NoError(t, ValidateEntryBalance(balanced))

	withinTolerance := []domain.JournalLine{domain.DebitLine("a", d("100.00005")), domain.CreditLine("b", d("100"))}
	assert.NoError(t, ValidateEntryBalance(withinTolerance))

	unbalanced := []domain.JournalLine{domain.DebitLine("a", d("100")), domain.CreditLine("b", d("99.99"))}
	err := ValidateEntryBalance(unbalanced)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	var ue *apperrors.UnbalancedEntryError
	require.True(t, errors.As(err, &ue))
	assert.True(t, d("100").Equal(ue.DebitTotal))
	assert.True(t, d("99.99").Equal(ue.CreditTotal))
}

func TestValidateLines(t *testing.T) {
	tests := []struct {
		name    string
		lines   []domain.JournalLine
		wantErr bool
	}{
		{"ok", []domain.JournalLine{domain.DebitLine("a", d("1")), domain.CreditLine("b", d("1"))}, false},
		{"single line", []domain.JournalLine{domain.DebitLine("a", d("1"))}, true},
		{"negative", []domain.JournalLine{domain.DebitLine("a", d("-1")), domain.CreditLine("b", d("-1"))}, true},
		{"zero line", []domain.JournalLine{domain.DebitLine("a", d("0")), domain.CreditLine("b", d("0"))}, true},
		{"missing account", []domain.JournalLine{domain.DebitLine("", d("1")), domain.CreditLine("b", d("1"))}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLines(tt.lines)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBalanceChanges(t *testing.T) {
	types := map[string]domain.AccountType{"cash": domain.Asset, "rev": domain.Revenue}
	lines := []domain.JournalLine{
		domain.DebitLine("cash", d("150")),
		domain.CreditLine("rev", d("100")),
		domain.CreditLine("rev", d("50")),
	}
	changes, err := BalanceChanges(lines, types)
	require.NoError(t, err)
	assert.True(t, d("150").Equal(changes["cash"]))
	assert.True(t, d("150").Equal(changes["rev"]))

	_, err = BalanceChanges([]domain.JournalLine{domain.DebitLine("missing", d("1"))}, types)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
