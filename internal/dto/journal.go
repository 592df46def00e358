package dto

import (
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalLineRequest is one line of a manual journal entry.
type JournalLineRequest struct {
	AccountID string          `json:"accountID" binding:"required"`
	Debit     decimal.Decimal `json:"debit" binding:"gte=0" swaggertype:"string"`
	Credit    decimal.Decimal `json:"credit" binding:"gte=0" swaggertype:"string"`
	Notes     string          `json:"notes"`
}

// CreateJournalRequest defines the data needed to post a manual journal entry.
type CreateJournalRequest struct {
	Date          time.Time            `json:"date" binding:"required"`
	Description   string               `json:"description" binding:"required"`
	Reference     string               `json:"reference"`
	ReferenceType domain.ReferenceType `json:"referenceType" binding:"omitempty,oneof=purchase sale payment adjustment"`
	Lines         []JournalLineRequest `json:"lines" binding:"required,min=2,dive"`
}

// ToDraft converts the request into a manual journal draft.
func (r CreateJournalRequest) ToDraft() domain.JournalDraft {
	lines := make([]domain.JournalLine, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = domain.JournalLine{AccountID: l.AccountID, Debit: l.Debit, Credit: l.Credit, Notes: l.Notes}
	}
	refType := r.ReferenceType
	if refType == "" {
		refType = domain.RefAdjustment
	}
	return domain.JournalDraft{
		Date:          r.Date,
		Description:   r.Description,
		Reference:     r.Reference,
		ReferenceType: refType,
		Lines:         lines,
	}
}

// ReverseJournalRequest carries the reason recorded on a reversal.
type ReverseJournalRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// RecordSaleRequest records a settled point-of-sale sale.
type RecordSaleRequest struct {
	Subtotal    decimal.Decimal      `json:"subtotal" binding:"gt=0" swaggertype:"string"`
	TaxAmount   decimal.Decimal      `json:"taxAmount" binding:"gte=0" swaggertype:"string"`
	COGS        decimal.Decimal      `json:"cogs" binding:"gte=0" swaggertype:"string"` // Inventory cost relieved by the sale
	Method      domain.PaymentMethod `json:"method" binding:"required,oneof=cash bank transfer card"`
	Date        time.Time            `json:"date" binding:"required"`
	Reference   string               `json:"reference"`
	Description string               `json:"description"`
}

// RecordPurchaseRequest records a purchase, either paid immediately or owed to a vendor.
type RecordPurchaseRequest struct {
	Amount         decimal.Decimal      `json:"amount" binding:"gt=0" swaggertype:"string"` // Net of tax
	TaxAmount      decimal.Decimal      `json:"taxAmount" binding:"gte=0" swaggertype:"string"`
	Paid           bool                 `json:"paid"`
	Method         domain.PaymentMethod `json:"method" binding:"omitempty,oneof=cash bank transfer card"` // Required when Paid
	DebitAccountID string               `json:"debitAccountID"`                                           // Defaults to inventory
	Date           time.Time            `json:"date" binding:"required"`
	Reference      string               `json:"reference"`
	Description    string               `json:"description"`
}

// JournalLineResponse is one line of a journal entry response.
type JournalLineResponse struct {
	AccountID string          `json:"accountID"`
	Debit     decimal.Decimal `json:"debit" swaggertype:"string"`
	Credit    decimal.Decimal `json:"credit" swaggertype:"string"`
	Notes     string          `json:"notes,omitempty"`
}

// JournalEntryResponse defines the data returned for a journal entry.
type JournalEntryResponse struct {
	EntryID       string                `json:"entryID"`
	Sequence      int64                 `json:"sequence"`
	Date          time.Time             `json:"date"`
	Description   string                `json:"description"`
	Reference     string                `json:"reference,omitempty"`
	ReferenceType domain.ReferenceType  `json:"referenceType,omitempty"`
	IsAutomatic   bool                  `json:"isAutomatic"`
	IsReversed    bool                  `json:"isReversed"`
	ReversedBy    string                `json:"reversedBy,omitempty"`
	ReversalOf    string                `json:"reversalOf,omitempty"`
	TotalDebit    decimal.Decimal       `json:"totalDebit" swaggertype:"string"`
	TotalCredit   decimal.Decimal       `json:"totalCredit" swaggertype:"string"`
	Lines         []JournalLineResponse `json:"lines"`
	CreatedAt     time.Time             `json:"createdAt"`
}

// ToJournalEntryResponse converts a domain.JournalEntry to JournalEntryResponse DTO.
func ToJournalEntryResponse(e *domain.JournalEntry) JournalEntryResponse {
	debit, credit := e.Totals()
	lines := make([]JournalLineResponse, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = JournalLineResponse{AccountID: l.AccountID, Debit: l.Debit, Credit: l.Credit, Notes: l.Notes}
	}
	return JournalEntryResponse{
		EntryID:       e.EntryID,
		Sequence:      e.Sequence,
		Date:          e.Date,
		Description:   e.Description,
		Reference:     e.Reference,
		ReferenceType: e.ReferenceType,
		IsAutomatic:   e.IsAutomatic,
		IsReversed:    e.IsReversed,
		ReversedBy:    e.ReversedBy,
		ReversalOf:    e.ReversalOf,
		TotalDebit:    debit,
		TotalCredit:   credit,
		Lines:         lines,
		CreatedAt:     e.CreatedAt,
	}
}

// ToJournalEntryResponses converts a slice of domain.JournalEntry to []JournalEntryResponse.
func ToJournalEntryResponses(entries []domain.JournalEntry) []JournalEntryResponse {
	res := make([]JournalEntryResponse, len(entries))
	for i, e := range entries {
		res[i] = ToJournalEntryResponse(&e)
	}
	return res
}

// ListEntriesParams defines query parameters for listing journal entries.
type ListEntriesParams struct {
	Limit     int     `form:"limit,default=20" binding:"min=1,max=500"`
	NextToken *string `form:"nextToken"`
}

// ListEntriesResponse wraps a page of journal entries.
type ListEntriesResponse struct {
	Entries   []JournalEntryResponse `json:"entries"`
	NextToken *string                `json:"nextToken,omitempty"`
}
