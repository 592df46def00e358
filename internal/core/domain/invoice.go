package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceType distinguishes receivables from payables.
type InvoiceType string

const (
	InvoiceSale     InvoiceType = "SALE"
	InvoicePurchase InvoiceType = "PURCHASE"
)

// IsValid reports whether t is a known invoice type.
func (t InvoiceType) IsValid() bool {
	return t == InvoiceSale || t == InvoicePurchase
}

// NumberPrefix is the prefix of generated invoice numbers.
func (t InvoiceType) NumberPrefix() string {
	if t == InvoicePurchase {
		return "BILL"
	}
	return "INV"
}

// FormatNumber renders the n-th generated number of an invoice type, e.g. INV-00042.
func (t InvoiceType) FormatNumber(n int64) string {
	return fmt.Sprintf("%s-%05d", t.NumberPrefix(), n)
}

// ParseNumber returns the sequence of a generated number, or false when
// number was not produced by FormatNumber for this type.
func (t InvoiceType) ParseNumber(number string) (int64, bool) {
	digits, ok := strings.CutPrefix(number, t.NumberPrefix()+"-")
	if !ok || digits == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// InvoiceStatus is the lifecycle state of an invoice.
type InvoiceStatus string

const (
	InvoiceDraft         InvoiceStatus = "DRAFT"
	InvoiceIssued        InvoiceStatus = "ISSUED"
	InvoicePartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	InvoicePaid          InvoiceStatus = "PAID"
	InvoiceCancelled     InvoiceStatus = "CANCELLED"
)

// StatusForPaid derives the status of a posted invoice from its paid amount.
func StatusForPaid(paid, total decimal.Decimal) InvoiceStatus {
	switch {
	case paid.LessThanOrEqual(decimal.Zero):
		return InvoiceIssued
	case paid.LessThan(total):
		return InvoicePartiallyPaid
	default:
		return InvoicePaid
	}
}

// InvoiceItem is one billed line of an invoice.
type InvoiceItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity" swaggertype:"string"`
	UnitPrice   decimal.Decimal `json:"unitPrice" swaggertype:"string"`
	Amount      decimal.Decimal `json:"amount" swaggertype:"string"`
}

// Invoice is a receivable (SALE) or payable (PURCHASE) document.
type Invoice struct {
	InvoiceID      string          `json:"invoiceID"`
	Number         string          `json:"number"`
	Type           InvoiceType     `json:"type"`
	Status         InvoiceStatus   `json:"status"`
	CounterpartyID string          `json:"counterpartyID"`
	Items          []InvoiceItem   `json:"items,omitempty"`
	TaxRateID      string          `json:"taxRateID,omitempty"`
	Subtotal       decimal.Decimal `json:"subtotal" swaggertype:"string"`
	TaxAmount      decimal.Decimal `json:"taxAmount" swaggertype:"string"`
	TotalAmount    decimal.Decimal `json:"totalAmount" swaggertype:"string"`
	PaidAmount     decimal.Decimal `json:"paidAmount" swaggertype:"string"`
	IssueDate      time.Time       `json:"issueDate"`
	DueDate        time.Time       `json:"dueDate"`
	DebitAccountID string          `json:"debitAccountID,omitempty"` // Purchase invoices only
	JournalEntryID string          `json:"journalEntryID,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	AuditFields
}

// Outstanding returns the unpaid part of the invoice total.
func (i Invoice) Outstanding() decimal.Decimal {
	return i.TotalAmount.Sub(i.PaidAmount)
}

// IsPosted reports whether the invoice has been posted to the ledger.
func (i Invoice) IsPosted() bool {
	return i.JournalEntryID != ""
}

// IsOpen reports whether the invoice can still receive payments.
func (i Invoice) IsOpen() bool {
	return i.Status == InvoiceIssued || i.Status == InvoicePartiallyPaid
}

// PaymentMethod is how a payment was settled.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentBank     PaymentMethod = "bank"
	PaymentTransfer PaymentMethod = "transfer"
	PaymentCard     PaymentMethod = "card"
)

// IsValid reports whether m is a known payment method.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCash, PaymentBank, PaymentTransfer, PaymentCard:
		return true
	}
	return false
}

// Payment is an immutable settlement against one invoice.
type Payment struct {
	PaymentID      string          `json:"paymentID"`
	InvoiceID      string          `json:"invoiceID"`
	Amount         decimal.Decimal `json:"amount" swaggertype:"string"`
	PaymentDate    time.Time       `json:"paymentDate"`
	Method         PaymentMethod   `json:"method"`
	JournalEntryID string          `json:"journalEntryID"`
	Notes          string          `json:"notes,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// CounterpartyKind distinguishes customers from vendors.
type CounterpartyKind string

const (
	Customer CounterpartyKind = "customer"
	Vendor   CounterpartyKind = "vendor"
)

// IsValid reports whether k is a known counterparty kind.
func (k CounterpartyKind) IsValid() bool {
	return k == Customer || k == Vendor
}

// InvoiceType returns the invoice type a counterparty of this kind is billed with.
func (k CounterpartyKind) InvoiceType() InvoiceType {
	if k == Vendor {
		return InvoicePurchase
	}
	return InvoiceSale
}

// Counterparty is a customer or vendor. Its balance is derived from unpaid invoices.
type Counterparty struct {
	CounterpartyID string           `json:"counterpartyID"`
	Kind           CounterpartyKind `json:"kind"`
	Name           string           `json:"name"`
	Email          string           `json:"email,omitempty"`
	Phone          string           `json:"phone,omitempty"`
	Address        string           `json:"address,omitempty"`
	TaxNumber      string           `json:"taxNumber,omitempty"`
	AuditFields
}
