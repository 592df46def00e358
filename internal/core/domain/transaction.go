package domain

import "github.com/shopspring/decimal"

// TransactionType indicates which side of a journal line carries the amount.
type TransactionType string

const (
	Debit  TransactionType = "DEBIT"
	Credit TransactionType = "CREDIT"
)

// JournalLine is a single line of a journal entry affecting one account.
// Both sides are non-negative; normally only one of them is non-zero.
type JournalLine struct {
	AccountID string          `json:"accountID"`
	Debit     decimal.Decimal `json:"debit" swaggertype:"string"`
	Credit    decimal.Decimal `json:"credit" swaggertype:"string"`
	Notes     string          `json:"notes,omitempty"`
}

// DebitLine builds a line with only a debit amount.
func DebitLine(accountID string, amount decimal.Decimal) JournalLine {
	return JournalLine{AccountID: accountID, Debit: amount, Credit: decimal.Zero}
}

// CreditLine builds a line with only a credit amount.
func CreditLine(accountID string, amount decimal.Decimal) JournalLine {
	return JournalLine{AccountID: accountID, Debit: decimal.Zero, Credit: amount}
}

// Swapped returns the line with debit and credit exchanged.
func (l JournalLine) Swapped() JournalLine {
	return JournalLine{AccountID: l.AccountID, Debit: l.Credit, Credit: l.Debit, Notes: l.Notes}
}

// Side reports the dominant side of the line.
func (l JournalLine) Side() TransactionType {
	if l.Debit.GreaterThanOrEqual(l.Credit) {
		return Debit
	}
	return Credit
}
