package services

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/shopspring/decimal"
)

// CounterpartySvc manages customers and vendors.
type CounterpartySvc interface {
	CreateCustomer(ctx context.Context, req dto.CreateCounterpartyRequest) (*domain.Counterparty, error)
	CreateVendor(ctx context.Context, req dto.CreateCounterpartyRequest) (*domain.Counterparty, error)
	GetCounterparty(ctx context.Context, counterpartyID string) (*domain.Counterparty, error)
	ListCounterparties(ctx context.Context, kind domain.CounterpartyKind) ([]domain.Counterparty, error)
	// CounterpartyBalance sums the outstanding amounts of the counterparty's open invoices.
	CounterpartyBalance(ctx context.Context, counterpartyID string) (decimal.Decimal, error)
	// DeleteCounterparty removes a counterparty no invoice references.
	DeleteCounterparty(ctx context.Context, counterpartyID string) error
}

// InvoiceSvc manages receivable and payable invoices.
type InvoiceSvc interface {
	// CreateInvoice creates a draft, or an issued invoice posted in the same transaction.
	CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest) (*domain.Invoice, error)
	GetInvoice(ctx context.Context, invoiceID string) (*domain.Invoice, error)
	ListInvoices(ctx context.Context, params dto.ListInvoicesParams) ([]domain.Invoice, error)
	// IssueInvoice moves a draft to issued and posts it.
	IssueInvoice(ctx context.Context, invoiceID string) (*domain.Invoice, error)
	// CancelInvoice reverses the posting of an unpaid invoice and marks it cancelled.
	CancelInvoice(ctx context.Context, invoiceID string, reason string) (*domain.Invoice, error)
	// DeleteInvoice removes an unpaid invoice, reversing its posting first.
	DeleteInvoice(ctx context.Context, invoiceID string) error
}

// PaymentSvc records settlements against invoices.
type PaymentSvc interface {
	RecordPayment(ctx context.Context, req dto.RecordPaymentRequest) (*domain.Payment, error)
	ListPayments(ctx context.Context, invoiceID string) ([]domain.Payment, error)
}

// AgingSvc buckets unpaid invoices by days overdue.
type AgingSvc interface {
	AgingReport(ctx context.Context, invoiceType domain.InvoiceType, asOf *time.Time) (*domain.AgingReport, error)
}

// SubledgerSvcFacade combines the receivables and payables services.
type SubledgerSvcFacade interface {
	CounterpartySvc
	InvoiceSvc
	PaymentSvc
	AgingSvc
}
