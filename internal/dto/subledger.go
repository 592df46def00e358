package dto

import (
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateCounterpartyRequest defines the data needed to create a customer or vendor.
type CreateCounterpartyRequest struct {
	Name      string `json:"name" binding:"required,max=255"`
	Email     string `json:"email" binding:"omitempty,email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	TaxNumber string `json:"taxNumber"`
}

// CounterpartyResponse is a customer or vendor with its derived balance.
type CounterpartyResponse struct {
	domain.Counterparty
	Balance decimal.Decimal `json:"balance" swaggertype:"string"`
}

// InvoiceItemRequest is one billed line of an invoice draft.
type InvoiceItemRequest struct {
	Description string          `json:"description" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"gt=0" swaggertype:"string"`
	UnitPrice   decimal.Decimal `json:"unitPrice" binding:"gte=0" swaggertype:"string"`
}

// CreateInvoiceRequest defines the data needed to create an invoice.
// The subtotal is taken from Items when present, otherwise from Subtotal.
// The tax is derived from TaxRateID when set, otherwise taken from TaxAmount.
type CreateInvoiceRequest struct {
	Type           domain.InvoiceType   `json:"type" binding:"required,oneof=SALE PURCHASE"`
	CounterpartyID string               `json:"counterpartyID" binding:"required"`
	Number         string               `json:"number"`
	Items          []InvoiceItemRequest `json:"items" binding:"omitempty,dive"`
	Subtotal       decimal.Decimal      `json:"subtotal" binding:"gte=0" swaggertype:"string"`
	TaxAmount      decimal.Decimal      `json:"taxAmount" binding:"gte=0" swaggertype:"string"`
	TaxRateID      string               `json:"taxRateID"`
	IssueDate      time.Time            `json:"issueDate" binding:"required"`
	DueDate        time.Time            `json:"dueDate" binding:"required"`
	DebitAccountID string               `json:"debitAccountID"` // Purchase invoices; defaults to inventory
	Draft          bool                 `json:"draft"`          // Drafts are not posted
	Notes          string               `json:"notes"`
}

// ListInvoicesParams defines query parameters for listing invoices.
type ListInvoicesParams struct {
	Type           string `form:"type" binding:"omitempty,oneof=SALE PURCHASE"`
	Status         string `form:"status" binding:"omitempty,oneof=DRAFT ISSUED PARTIALLY_PAID PAID CANCELLED"`
	CounterpartyID string `form:"counterpartyID"`
}

// RecordPaymentRequest defines the data needed to record a payment against an invoice.
type RecordPaymentRequest struct {
	InvoiceID   string               `json:"invoiceID" binding:"required"`
	Amount      decimal.Decimal      `json:"amount" binding:"gt=0" swaggertype:"string"`
	Method      domain.PaymentMethod `json:"method" binding:"required,oneof=cash bank transfer card"`
	PaymentDate time.Time            `json:"paymentDate" binding:"required"`
	Notes       string               `json:"notes"`
}
