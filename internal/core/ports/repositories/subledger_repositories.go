package repositories

import (
	"github.com/SscSPs/ledger_core/internal/core/domain"
)

// CounterpartyReader defines read operations for customers and vendors.
type CounterpartyReader interface {
	FindCounterpartyByID(counterpartyID string) (*domain.Counterparty, error)
	// ListCounterparties returns counterparties of a kind ordered by name. An empty kind lists all.
	ListCounterparties(kind domain.CounterpartyKind) []domain.Counterparty
}

// CounterpartyWriter defines write operations for customers and vendors.
type CounterpartyWriter interface {
	SaveCounterparty(counterparty domain.Counterparty) error
	DeleteCounterparty(counterpartyID string) error
}

// InvoiceFilter narrows ListInvoices. Zero values match everything.
type InvoiceFilter struct {
	Type           domain.InvoiceType
	Status         domain.InvoiceStatus
	CounterpartyID string
}

// InvoiceReader defines read operations for invoices.
type InvoiceReader interface {
	FindInvoiceByID(invoiceID string) (*domain.Invoice, error)
	// ListInvoices returns matching invoices ordered by issue date.
	ListInvoices(filter InvoiceFilter) []domain.Invoice
	// InvoiceSequences returns the last number handed out per invoice type.
	InvoiceSequences() map[domain.InvoiceType]int64
}

// InvoiceWriter defines write operations for invoices.
type InvoiceWriter interface {
	// SaveInvoice inserts or replaces an invoice.
	SaveInvoice(invoice domain.Invoice) error
	DeleteInvoice(invoiceID string) error
	// NextInvoiceSequence advances and returns the number counter of an invoice type.
	// Counters never move backwards, even when invoices are deleted.
	NextInvoiceSequence(t domain.InvoiceType) (int64, error)
}

// PaymentReader defines read operations for payments.
type PaymentReader interface {
	// ListPayments returns payments for an invoice in recording order. An empty id lists all.
	ListPayments(invoiceID string) []domain.Payment
}

// PaymentWriter defines write operations for payments. Payments are never edited.
type PaymentWriter interface {
	SavePayment(payment domain.Payment) error
}

// TaxReader defines read operations for tax configuration.
type TaxReader interface {
	FindTaxRateByID(taxRateID string) (*domain.TaxRate, error)
	ListTaxRates() []domain.TaxRate
	GetTaxSettings() domain.TaxSettings
}

// TaxWriter defines write operations for tax configuration.
type TaxWriter interface {
	SaveTaxRate(rate domain.TaxRate) error
	SaveTaxSettings(settings domain.TaxSettings) error
}
