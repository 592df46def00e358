package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReferenceType classifies the business event that produced a journal entry.
type ReferenceType string

const (
	RefPurchase        ReferenceType = "purchase"
	RefSale            ReferenceType = "sale"
	RefSalesInvoice    ReferenceType = "sales_invoice"
	RefPurchaseInvoice ReferenceType = "purchase_invoice"
	RefPayment         ReferenceType = "payment"
	RefAdjustment      ReferenceType = "adjustment"
	RefOpeningBalance  ReferenceType = "opening_balance"
)

// IsSales reports whether entries of this type count as sales activity for tax reporting.
func (r ReferenceType) IsSales() bool {
	return r == RefSale || r == RefSalesInvoice
}

// JournalDraft is the caller-supplied content of a new journal entry.
type JournalDraft struct {
	Date          time.Time
	Description   string
	Reference     string
	ReferenceType ReferenceType
	Lines         []JournalLine
	IsAutomatic   bool
	Subtotal      decimal.Decimal
	TaxAmount     decimal.Decimal
	ReversalOf    string
}

// JournalEntry is an immutable, balanced record in the journal log.
// Only IsReversed and ReversedBy change after it is appended.
type JournalEntry struct {
	EntryID       string          `json:"entryID"`
	Sequence      int64           `json:"sequence"`
	Date          time.Time       `json:"date"` // Business date
	Description   string          `json:"description"`
	Reference     string          `json:"reference,omitempty"`
	ReferenceType ReferenceType   `json:"referenceType,omitempty"`
	Lines         []JournalLine   `json:"lines"`
	IsAutomatic   bool            `json:"isAutomatic"`
	IsReversed    bool            `json:"isReversed"`
	ReversedBy    string          `json:"reversedBy,omitempty"`
	ReversalOf    string          `json:"reversalOf,omitempty"`
	Subtotal      decimal.Decimal `json:"subtotal" swaggertype:"string"`
	TaxAmount     decimal.Decimal `json:"taxAmount" swaggertype:"string"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// Totals returns the debit and credit sums of the entry.
func (e JournalEntry) Totals() (decimal.Decimal, decimal.Decimal) {
	debit, credit := decimal.Zero, decimal.Zero
	for _, l := range e.Lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit
}

// Replayable reports whether the entry contributes to replayed balances.
// A reversed original and its reversal cancel out and are both skipped.
func (e JournalEntry) Replayable() bool {
	return !e.IsReversed && e.ReversalOf == ""
}

// Touches reports whether any line references accountID.
func (e JournalEntry) Touches(accountID string) bool {
	for _, l := range e.Lines {
		if l.AccountID == accountID {
			return true
		}
	}
	return false
}
