package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/SscSPs/ledger_core/internal/metrics"
)

// subledgerService manages counterparties, invoices and payments. Invoices and
// payments reach the ledger only through the journal service's postings.
type subledgerService struct {
	BaseService
	store    portsrepo.LedgerStore
	journal  *journalService
	postings domain.PostingAccounts
}

// NewSubledgerService creates a new receivables and payables service.
func NewSubledgerService(store portsrepo.LedgerStore, options ...ServiceOption) portssvc.SubledgerSvcFacade {
	cfg := newServiceConfig(options)
	return newSubledgerService(store, newJournalService(store, cfg), cfg)
}

func newSubledgerService(store portsrepo.LedgerStore, journal *journalService, cfg serviceConfig) *subledgerService {
	return &subledgerService{
		BaseService: BaseService{clock: cfg.clock},
		store:       store,
		journal:     journal,
		postings:    cfg.postings,
	}
}

var _ portssvc.SubledgerSvcFacade = (*subledgerService)(nil)

// --- counterparties ---

// CreateCustomer creates a counterparty billed with sale invoices.
func (s *subledgerService) CreateCustomer(ctx context.Context, req dto.CreateCounterpartyRequest) (*domain.Counterparty, error) {
	return s.createCounterparty(ctx, domain.Customer, req)
}

// CreateVendor creates a counterparty billed with purchase invoices.
func (s *subledgerService) CreateVendor(ctx context.Context, req dto.CreateCounterpartyRequest) (*domain.Counterparty, error) {
	return s.createCounterparty(ctx, domain.Vendor, req)
}

func (s *subledgerService) createCounterparty(ctx context.Context, kind domain.CounterpartyKind, req dto.CreateCounterpartyRequest) (*domain.Counterparty, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	now := s.now()
	counterparty := domain.Counterparty{
		CounterpartyID: uuid.NewString(),
		Kind:           kind,
		Name:           strings.TrimSpace(req.Name),
		Email:          req.Email,
		Phone:          req.Phone,
		Address:        req.Address,
		TaxNumber:      req.TaxNumber,
		AuditFields:    domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}
	err := s.store.Update(ctx, func(tx portsrepo.Tx) error {
		return tx.SaveCounterparty(counterparty)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to save counterparty", slog.String("kind", string(kind)))
		return nil, err
	}
	s.LogInfo(ctx, "Counterparty created",
		slog.String("counterparty_id", counterparty.CounterpartyID),
		slog.String("kind", string(kind)))
	return &counterparty, nil
}

// GetCounterparty retrieves a customer or vendor by id.
func (s *subledgerService) GetCounterparty(ctx context.Context, counterpartyID string) (*domain.Counterparty, error) {
	var counterparty *domain.Counterparty
	err := s.store.View(ctx, func(tx portsrepo.ReadTx) error {
		var err error
		counterparty, err = tx.FindCounterpartyByID(counterpartyID)
		return err
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to find counterparty", slog.String("counterparty_id", counterpartyID))
		return nil, err
	}
	return counterparty, nil
}

// ListCounterparties lists counterparties of one kind, or all when kind is empty.
func (s *subledgerService) ListCounterparties(ctx context.Context, kind domain.CounterpartyKind) ([]domain.Counterparty, error) {
	if kind != "" && !kind.IsValid() {
		return nil, apperrors.Validationf("unknown counterparty kind %q", kind)
	}
	var counterparties []domain.Counterparty
	err := s.store.View(ctx, func(tx portsrepo.ReadTx) error {
		counterparties = tx.ListCounterparties(kind)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.LogDebug(ctx, "Counterparties listed", slog.Int("count", len(counterparties)))
	return counterparties, nil
}

// CounterpartyBalance sums the outstanding amounts of the counterparty's open invoices.
func (s *subledgerService) CounterpartyBalance(ctx context.Context, counterpartyID string) (decimal.Decimal, error) {
	balance := decimal.Zero
	err := s.store.View(ctx, func(tx portsrepo.ReadTx) error {
		if _, err := tx.FindCounterpartyByID(counterpartyID); err != nil {
			return err
		}
		for _, inv := range tx.ListInvoices(portsrepo.InvoiceFilter{CounterpartyID: counterpartyID}) {
			if inv.IsOpen() {
				balance = balance.Add(inv.Outstanding())
			}
		}
		return nil
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to compute counterparty balance", slog.String("counterparty_id", counterpartyID))
		return decimal.Zero, err
	}
	return balance, nil
}

// DeleteCounterparty removes a counterparty no invoice references.
func (s *subledgerService) DeleteCounterparty(ctx context.Context, counterpartyID string) error {
	err := s.store.Update(ctx, func(tx portsrepo.Tx) error {
		if _, err := tx.FindCounterpartyByID(counterpartyID); err != nil {
			return err
		}
		if n := len(tx.ListInvoices(portsrepo.InvoiceFilter{CounterpartyID: counterpartyID})); n > 0 {
			return fmt.Errorf("%w: %d invoice(s)", apperrors.ErrHasOpenInvoices, n)
		}
		return tx.DeleteCounterparty(counterpartyID)
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to delete counterparty", slog.String("counterparty_id", counterpartyID))
		return err
	}
	s.LogInfo(ctx, "Counterparty deleted", slog.String("counterparty_id", counterpartyID))
	return nil
}

// --- invoices ---

// CreateInvoice creates a draft, or an issued invoice posted in the same transaction.
func (s *subledgerService) CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest) (*domain.Invoice, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if req.DueDate.Before(req.IssueDate) {
		return nil, apperrors.Validationf("due date is before issue date")
	}

	now := s.now()
	invoice := domain.Invoice{
		InvoiceID:      uuid.NewString(),
		Number:         strings.TrimSpace(req.Number),
		Type:           req.Type,
		Status:         domain.InvoiceDraft,
		CounterpartyID: req.CounterpartyID,
		TaxRateID:      req.TaxRateID,
		PaidAmount:     decimal.Zero,
		IssueDate:      req.IssueDate.UTC(),
		DueDate:        req.DueDate.UTC(),
		DebitAccountID: req.DebitAccountID,
		Notes:          req.Notes,
		AuditFields:    domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}
	subtotal := req.Subtotal
	if len(req.Items) > 0 {
		subtotal = decimal.Zero
		for _, item := range req.Items {
			amount := item.Quantity.Mul(item.UnitPrice).Round(2)
			invoice.Items = append(invoice.Items, domain.InvoiceItem{
				Description: item.Description,
				Quantity:    item.Quantity,
				UnitPrice:   item.UnitPrice,
				Amount:      amount,
			})
			subtotal = subtotal.Add(amount)
		}
	}

	var entry *domain.JournalEntry
	err := s.store.Update(ctx, func(tx portsrepo.Tx) error {
		counterparty, err := tx.FindCounterpartyByID(req.CounterpartyID)
		if err != nil {
			return err
		}
		if counterparty.Kind.InvoiceType() != req.Type {
			return apperrors.Validationf("a %s cannot receive %s invoices", counterparty.Kind, req.Type)
		}

		invoice.Subtotal, invoice.TaxAmount = subtotal, req.TaxAmount
		if req.TaxRateID != "" {
			rate, err := tx.FindTaxRateByID(req.TaxRateID)
			if err != nil {
				return err
			}
			if !rate.IsActive {
				return apperrors.Validationf("tax rate %s is inactive", rate.Name)
			}
			split := domain.ComputeTax(subtotal, rate.Rate, tx.GetTaxSettings().Inclusive)
			invoice.Subtotal, invoice.TaxAmount = split.Subtotal, split.Tax
		}
		invoice.TotalAmount = invoice.Subtotal.Add(invoice.TaxAmount)
		if !invoice.TotalAmount.IsPositive() {
			return apperrors.Validationf("invoice total must be positive")
		}
		if invoice.Number == "" {
			if invoice.Number, err = nextInvoiceNumber(tx, invoice.Type); err != nil {
				return err
			}
		} else if invoiceNumberTaken(tx, invoice.Type, invoice.Number) {
			return fmt.Errorf("%w: invoice number %s", apperrors.ErrDuplicate, invoice.Number)
		}

		if !req.Draft {
			posted, err := s.postInvoice(tx, &invoice)
			if err != nil {
				return err
			}
			entry = &posted
		}
		return tx.SaveInvoice(invoice)
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to create invoice",
			slog.String("type", string(req.Type)),
			slog.String("counterparty_id", req.CounterpartyID))
		return nil, err
	}
	if entry != nil {
		s.journal.observePosted(ctx, *entry)
	}
	s.LogInfo(ctx, "Invoice created",
		slog.String("invoice_id", invoice.InvoiceID),
		slog.String("number", invoice.Number),
		slog.String("status", string(invoice.Status)),
		slog.String("total", invoice.TotalAmount.String()))
	return &invoice, nil
}

// nextInvoiceNumber draws from the type's counter, skipping numbers that
// were entered by hand.
func nextInvoiceNumber(tx portsrepo.Tx, t domain.InvoiceType) (string, error) {
	for {
		n, err := tx.NextInvoiceSequence(t)
		if err != nil {
			return "", err
		}
		if number := t.FormatNumber(n); !invoiceNumberTaken(tx, t, number) {
			return number, nil
		}
	}
}

func invoiceNumberTaken(tx portsrepo.ReadTx, t domain.InvoiceType, number string) bool {
	return slices.ContainsFunc(tx.ListInvoices(portsrepo.InvoiceFilter{Type: t}), func(inv domain.Invoice) bool {
		return strings.EqualFold(inv.Number, number)
	})
}

// postInvoice posts the invoice's journal entry and moves it to its posted status.
//
//	SALE:     Dr receivable total / Cr revenue subtotal, Cr tax account tax
//	PURCHASE: Dr debit account subtotal, Dr tax account tax / Cr payable total
func (s *subledgerService) postInvoice(tx portsrepo.Tx, invoice *domain.Invoice) (domain.JournalEntry, error) {
	var taxAccountID string
	if invoice.TaxAmount.IsPositive() {
		var err error
		if taxAccountID, err = s.taxAccount(tx, invoice.TaxRateID); err != nil {
			return domain.JournalEntry{}, err
		}
	}

	draft := domain.JournalDraft{
		Date:        invoice.IssueDate,
		Reference:   invoice.InvoiceID,
		IsAutomatic: true,
		Subtotal:    invoice.Subtotal,
		TaxAmount:   invoice.TaxAmount,
	}
	switch invoice.Type {
	case domain.InvoiceSale:
		ids, err := resolvePostings(tx, map[string]string{"receivable": s.postings.Receivable, "revenue": s.postings.Revenue})
		if err != nil {
			return domain.JournalEntry{}, err
		}
		draft.Description = "Sales invoice " + invoice.Number
		draft.ReferenceType = domain.RefSalesInvoice
		draft.Lines = []domain.JournalLine{domain.DebitLine(ids["receivable"], invoice.TotalAmount)}
		if invoice.Subtotal.IsPositive() {
			draft.Lines = append(draft.Lines, domain.CreditLine(ids["revenue"], invoice.Subtotal))
		}
		if taxAccountID != "" {
			draft.Lines = append(draft.Lines, domain.CreditLine(taxAccountID, invoice.TaxAmount))
		}
	case domain.InvoicePurchase:
		payableID, err := resolvePosting(tx, s.postings.Payable, "payable")
		if err != nil {
			return domain.JournalEntry{}, err
		}
		debitID := invoice.DebitAccountID
		if debitID == "" {
			if debitID, err = resolvePosting(tx, s.postings.Inventory, "inventory"); err != nil {
				return domain.JournalEntry{}, err
			}
		}
		draft.Description = "Purchase invoice " + invoice.Number
		draft.ReferenceType = domain.RefPurchaseInvoice
		if invoice.Subtotal.IsPositive() {
			draft.Lines = append(draft.Lines, domain.DebitLine(debitID, invoice.Subtotal))
		}
		if taxAccountID != "" {
			draft.Lines = append(draft.Lines, domain.DebitLine(taxAccountID, invoice.TaxAmount))
		}
		draft.Lines = append(draft.Lines, domain.CreditLine(payableID, invoice.TotalAmount))
	default:
		return domain.JournalEntry{}, apperrors.Validationf("unknown invoice type %q", invoice.Type)
	}

	entry, err := s.journal.postInTx(tx, draft)
	if err != nil {
		return domain.JournalEntry{}, err
	}
	invoice.JournalEntryID = entry.EntryID
	invoice.Status = domain.StatusForPaid(invoice.PaidAmount, invoice.TotalAmount)
	return entry, nil
}

// taxAccount returns the liability account of a tax rate, or the tax payable posting account.
func (s *subledgerService) taxAccount(tx portsrepo.ReadTx, taxRateID string) (string, error) {
	if taxRateID != "" {
		rate, err := tx.FindTaxRateByID(taxRateID)
		if err != nil {
			return "", err
		}
		if rate.AccountID != "" {
			return rate.AccountID, nil
		}
	}
	return resolvePosting(tx, s.postings.TaxPayable, "tax_payable")
}

// GetInvoice retrieves an invoice by id.
func (s *subledgerService) GetInvoice(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	var invoice *domain.Invoice
	err := s.store.View(ctx, func(tx portsrepo.ReadTx) error {
		var err error
		invoice, err = tx.FindInvoiceByID(invoiceID)
		return err
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to find invoice", slog.String("invoice_id", invoiceID))
		return nil, err
	}
	return invoice, nil
}

// ListInvoices lists invoices matching the optional type, status and counterparty filters.
func (s *subledgerService) ListInvoices(ctx context.Context, params dto.ListInvoicesParams) ([]domain.Invoice, error) {
	if err := validateRequest(params); err != nil {
		return nil, err
	}
	filter := portsrepo.InvoiceFilter{
		Type:           domain.InvoiceType(params.Type),
		Status:         domain.InvoiceStatus(params.Status),
		CounterpartyID: params.CounterpartyID,
	}
	var invoices []domain.Invoice
	err := s.store.View(ctx, func(tx portsrepo.ReadTx) error {
		invoices = tx.ListInvoices(filter)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.LogDebug(ctx, "Invoices listed", slog.Int("count", len(invoices)))
	return invoices, nil
}

// IssueInvoice moves a draft to issued and posts it.
func (s *subledgerService) IssueInvoice(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	var (
		invoice *domain.Invoice
		entry   domain.JournalEntry
	)
	err := s.store.Update(ctx, func(tx portsrepo.Tx) error {
		var err error
		if invoice, err = tx.FindInvoiceByID(invoiceID); err != nil {
			return err
		}
		if invoice.Status != domain.InvoiceDraft {
			return fmt.Errorf("%w: invoice %s is %s, not a draft", apperrors.ErrConflict, invoice.Number, invoice.Status)
		}
		if entry, err = s.postInvoice(tx, invoice); err != nil {
			return err
		}
		invoice.LastUpdatedAt = s.now()
		return tx.SaveInvoice(*invoice)
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to issue invoice", slog.String("invoice_id", invoiceID))
		return nil, err
	}
	s.journal.observePosted(ctx, entry)
	s.LogInfo(ctx, "Invoice issued",
		slog.String("invoice_id", invoiceID),
		slog.String("entry_id", entry.EntryID))
	return invoice, nil
}

// CancelInvoice reverses the posting of an unpaid invoice and marks it cancelled.
func (s *subledgerService) CancelInvoice(ctx context.Context, invoiceID string, reason string) (*domain.Invoice, error) {
	if strings.TrimSpace(reason) == "" {
		reason = "invoice cancelled"
	}
	var invoice *domain.Invoice
	err := s.store.Update(ctx, func(tx portsrepo.Tx) error {
		var err error
		if invoice, err = tx.FindInvoiceByID(invoiceID); err != nil {
			return err
		}
		if invoice.Status == domain.InvoiceCancelled {
			return fmt.Errorf("%w: %s is already cancelled", apperrors.ErrInvoiceNotOpen, invoice.Number)
		}
		if invoice.PaidAmount.IsPositive() {
			return fmt.Errorf("%w: %s", apperrors.ErrHasPayments, invoice.Number)
		}
		if invoice.IsPosted() {
			if _, err := s.journal.reverseInTx(tx, invoice.JournalEntryID, reason); err != nil {
				return err
			}
		}
		invoice.Status = domain.InvoiceCancelled
		invoice.LastUpdatedAt = s.now()
		return tx.SaveInvoice(*invoice)
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to cancel invoice", slog.String("invoice_id", invoiceID))
		return nil, err
	}
	if invoice.IsPosted() {
		metrics.JournalEntriesReversed.Inc()
	}
	s.LogInfo(ctx, "Invoice cancelled", slog.String("invoice_id", invoiceID))
	return invoice, nil
}

// DeleteInvoice removes an unpaid invoice, reversing its posting first.
func (s *subledgerService) DeleteInvoice(ctx context.Context, invoiceID string) error {
	reversed := false
	err := s.store.Update(ctx, func(tx portsrepo.Tx) error {
		invoice, err := tx.FindInvoiceByID(invoiceID)
		if err != nil {
			return err
		}
		if invoice.PaidAmount.IsPositive() || len(tx.ListPayments(invoiceID)) > 0 {
			return fmt.Errorf("%w: %s", apperrors.ErrHasPayments, invoice.Number)
		}
		if invoice.IsPosted() {
			entry, err := tx.FindEntryByID(invoice.JournalEntryID)
			if err != nil {
				return err
			}
			if !entry.IsReversed {
				if _, err := s.journal.reverseInTx(tx, entry.EntryID, "invoice deleted"); err != nil {
					return err
				}
				reversed = true
			}
		}
		return tx.DeleteInvoice(invoiceID)
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to delete invoice", slog.String("invoice_id", invoiceID))
		return err
	}
	if reversed {
		metrics.JournalEntriesReversed.Inc()
	}
	s.LogInfo(ctx, "Invoice deleted", slog.String("invoice_id", invoiceID), slog.Bool("reversed", reversed))
	return nil
}

// --- payments ---

// RecordPayment settles part or all of an open invoice and posts the cash movement.
//
//	SALE:     Dr cash/bank / Cr receivable
//	PURCHASE: Dr payable / Cr cash/bank
func (s *subledgerService) RecordPayment(ctx context.Context, req dto.RecordPaymentRequest) (*domain.Payment, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var (
		payment domain.Payment
		invoice *domain.Invoice
		entry   domain.JournalEntry
	)
	err := s.store.Update(ctx, func(tx portsrepo.Tx) error {
		var err error
		if invoice, err = tx.FindInvoiceByID(req.InvoiceID); err != nil {
			return err
		}
		if !invoice.IsOpen() {
			return fmt.Errorf("%w: %s is %s", apperrors.ErrInvoiceNotOpen, invoice.Number, invoice.Status)
		}
		if truncateDay(req.PaymentDate).Before(truncateDay(invoice.IssueDate)) {
			return apperrors.Validationf("payment date %s is before the issue date of %s",
				req.PaymentDate.UTC().Format(time.DateOnly), invoice.Number)
		}
		if outstanding := invoice.Outstanding(); req.Amount.GreaterThan(outstanding) {
			return fmt.Errorf("%w: paying %s against %s outstanding", apperrors.ErrOverpayment, req.Amount.String(), outstanding.String())
		}

		settlementID, err := resolvePosting(tx, settlementCode(s.postings, req.Method), "settlement")
		if err != nil {
			return err
		}
		draft := domain.JournalDraft{
			Date:          req.PaymentDate.UTC(),
			Description:   "Payment for invoice " + invoice.Number,
			Reference:     invoice.InvoiceID,
			ReferenceType: domain.RefPayment,
			IsAutomatic:   true,
		}
		if invoice.Type == domain.InvoiceSale {
			receivableID, err := resolvePosting(tx, s.postings.Receivable, "receivable")
			if err != nil {
				return err
			}
			draft.Lines = []domain.JournalLine{
				domain.DebitLine(settlementID, req.Amount),
				domain.CreditLine(receivableID, req.Amount),
			}
		} else {
			payableID, err := resolvePosting(tx, s.postings.Payable, "payable")
			if err != nil {
				return err
			}
			draft.Lines = []domain.JournalLine{
				domain.DebitLine(payableID, req.Amount),
				domain.CreditLine(settlementID, req.Amount),
			}
		}
		if entry, err = s.journal.postInTx(tx, draft); err != nil {
			return err
		}

		now := s.now()
		payment = domain.Payment{
			PaymentID:      uuid.NewString(),
			InvoiceID:      invoice.InvoiceID,
			Amount:         req.Amount,
			PaymentDate:    req.PaymentDate.UTC(),
			Method:         req.Method,
			JournalEntryID: entry.EntryID,
			Notes:          req.Notes,
			CreatedAt:      now,
		}
		if err := tx.SavePayment(payment); err != nil {
			return err
		}
		invoice.PaidAmount = invoice.PaidAmount.Add(req.Amount)
		invoice.Status = domain.StatusForPaid(invoice.PaidAmount, invoice.TotalAmount)
		invoice.LastUpdatedAt = now
		return tx.SaveInvoice(*invoice)
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to record payment",
			slog.String("invoice_id", req.InvoiceID),
			slog.String("amount", req.Amount.String()))
		return nil, err
	}

	metrics.PaymentsRecorded.WithLabelValues(string(invoice.Type)).Inc()
	s.journal.observePosted(ctx, entry)
	s.LogInfo(ctx, "Payment recorded",
		slog.String("payment_id", payment.PaymentID),
		slog.String("invoice_id", invoice.InvoiceID),
		slog.String("status", string(invoice.Status)))
	return &payment, nil
}

// ListPayments lists the payments of one invoice, or all payments when invoiceID is empty.
func (s *subledgerService) ListPayments(ctx context.Context, invoiceID string) ([]domain.Payment, error) {
	var payments []domain.Payment
	err := s.store.View(ctx, func(tx portsrepo.ReadTx) error {
		if invoiceID != "" {
			if _, err := tx.FindInvoiceByID(invoiceID); err != nil {
				return err
			}
		}
		payments = tx.ListPayments(invoiceID)
		return nil
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to list payments", slog.String("invoice_id", invoiceID))
		return nil, err
	}
	return payments, nil
}

// --- aging ---

// AgingReport buckets the amounts outstanding on asOf by whole days past their
// due date. Payments dated after asOf are ignored, so a past asOf reproduces
// the aging as it stood then. Invoices not yet due are left out entirely.
func (s *subledgerService) AgingReport(ctx context.Context, invoiceType domain.InvoiceType, asOf *time.Time) (*domain.AgingReport, error) {
	defer metrics.ObserveReport("aging")()
	if !invoiceType.IsValid() {
		return nil, apperrors.Validationf("unknown invoice type %q", invoiceType)
	}
	cutoff := s.now()
	if asOf != nil {
		cutoff = asOf.UTC()
	}
	cutoffDay := truncateDay(cutoff)

	report := &domain.AgingReport{
		Type:     invoiceType,
		AsOf:     cutoff,
		Invoices: []domain.AgingLine{},
	}
	err := s.store.View(ctx, func(tx portsrepo.ReadTx) error {
		for _, inv := range tx.ListInvoices(portsrepo.InvoiceFilter{Type: invoiceType}) {
			if !postedBy(inv, cutoffDay) {
				continue
			}
			outstanding := inv.TotalAmount.Sub(paidBy(tx, inv.InvoiceID, cutoffDay))
			if !outstanding.IsPositive() {
				continue
			}
			days := daysBetween(inv.DueDate, cutoff)
			if days < 0 {
				continue
			}
			line := domain.AgingLine{
				InvoiceID:      inv.InvoiceID,
				Number:         inv.Number,
				CounterpartyID: inv.CounterpartyID,
				DueDate:        inv.DueDate,
				DaysOverdue:    days,
				Outstanding:    outstanding,
				Bucket:         domain.BucketFor(days),
			}
			if cp, err := tx.FindCounterpartyByID(inv.CounterpartyID); err == nil {
				line.CounterpartyName = cp.Name
			}
			report.Buckets.Add(line.Bucket, outstanding)
			report.Total = report.Total.Add(outstanding)
			report.Invoices = append(report.Invoices, line)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Aging report generated successfully",
		slog.String("type", string(invoiceType)),
		slog.Int("invoice_count", len(report.Invoices)),
		slog.String("total", report.Total.String()))
	return report, nil
}

// postedBy reports whether inv was on the ledger at the end of day. A
// cancellation reverses the posting on its own date, so cancelled invoices
// never count.
func postedBy(inv domain.Invoice, day time.Time) bool {
	return inv.IsPosted() && inv.Status != domain.InvoiceCancelled && !truncateDay(inv.IssueDate).After(day)
}

// paidBy sums the payments on an invoice dated on or before day.
func paidBy(tx portsrepo.ReadTx, invoiceID string, day time.Time) decimal.Decimal {
	paid := decimal.Zero
	for _, p := range tx.ListPayments(invoiceID) {
		if !truncateDay(p.PaymentDate).After(day) {
			paid = paid.Add(p.Amount)
		}
	}
	return paid
}

// daysBetween counts calendar days from due to asOf in UTC.
func daysBetween(due, asOf time.Time) int {
	d := truncateDay(due)
	a := truncateDay(asOf)
	return int(a.Sub(d).Hours() / 24)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
