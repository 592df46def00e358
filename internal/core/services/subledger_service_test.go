package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/dto"
)

type SubledgerServiceTestSuite struct {
	LedgerTestSuite
	customer *domain.Counterparty
	vendor   *domain.Counterparty
}

func (s *SubledgerServiceTestSuite) SetupTest() {
	s.LedgerTestSuite.SetupTest()
	var err error
	s.customer, err = s.svc.Subledger.CreateCustomer(s.ctx, dto.CreateCounterpartyRequest{Name: "Acme Retail", Email: "ap@acme.test"})
	s.Require().NoError(err)
	s.vendor, err = s.svc.Subledger.CreateVendor(s.ctx, dto.CreateCounterpartyRequest{Name: "Bolt Supplies"})
	s.Require().NoError(err)
}

func (s *SubledgerServiceTestSuite) saleInvoice(total string, issue, due time.Time) *domain.Invoice {
	inv, err := s.svc.Subledger.CreateInvoice(s.ctx, dto.CreateInvoiceRequest{
		Type:           domain.InvoiceSale,
		CounterpartyID: s.customer.CounterpartyID,
		Subtotal:       amt(total),
		IssueDate:      issue,
		DueDate:        due,
	})
	s.Require().NoError(err)
	return inv
}

func (s *SubledgerServiceTestSuite) pay(invoiceID, amount string, method domain.PaymentMethod, date time.Time) (*domain.Payment, error) {
	return s.svc.Subledger.RecordPayment(s.ctx, dto.RecordPaymentRequest{
		InvoiceID:   invoiceID,
		Amount:      amt(amount),
		Method:      method,
		PaymentDate: date,
	})
}

func (s *SubledgerServiceTestSuite) status(invoiceID string) domain.InvoiceStatus {
	inv, err := s.svc.Subledger.GetInvoice(s.ctx, invoiceID)
	s.Require().NoError(err)
	return inv.Status
}

func (s *SubledgerServiceTestSuite) TestEndToEnd_InvoicePaidInTwoPayments() {
	inv := s.saleInvoice("1000", day(1, 1), day(1, 31))
	s.Equal(domain.InvoiceIssued, inv.Status)
	s.Equal("INV-00001", inv.Number)
	s.NotEmpty(inv.JournalEntryID)
	s.assertAmount("1000", s.cached("1-103"))
	s.assertAmount("1000", s.cached("4-101"))

	aging, err := s.svc.Subledger.AgingReport(s.ctx, domain.InvoiceSale, nil)
	s.Require().NoError(err)
	s.Require().Len(aging.Invoices, 1)
	s.Equal(59, aging.Invoices[0].DaysOverdue)
	s.assertAmount("1000", aging.Buckets.Days31To60)

	_, err = s.pay(inv.InvoiceID, "400", domain.PaymentCash, day(2, 1))
	s.Require().NoError(err)
	s.Equal(domain.InvoicePartiallyPaid, s.status(inv.InvoiceID))

	balance, err := s.svc.Subledger.CounterpartyBalance(s.ctx, s.customer.CounterpartyID)
	s.Require().NoError(err)
	s.assertAmount("600", balance)

	_, err = s.pay(inv.InvoiceID, "600", domain.PaymentTransfer, day(2, 2))
	s.Require().NoError(err)
	s.Equal(domain.InvoicePaid, s.status(inv.InvoiceID))

	s.assertAmount("0", s.cached("1-103"))
	s.assertAmount("400", s.cached("1-101"))
	s.assertAmount("600", s.cached("1-102"))

	aging, err = s.svc.Subledger.AgingReport(s.ctx, domain.InvoiceSale, nil)
	s.Require().NoError(err)
	s.Empty(aging.Invoices)
	s.assertAmount("0", aging.Total)

	payments, err := s.svc.Subledger.ListPayments(s.ctx, inv.InvoiceID)
	s.Require().NoError(err)
	s.Len(payments, 2)

	entries, err := s.svc.Journal.FindByReference(s.ctx, inv.InvoiceID)
	s.Require().NoError(err)
	s.Len(entries, 3)

	_, err = s.pay(inv.InvoiceID, "1", domain.PaymentCash, day(2, 3))
	s.ErrorIs(err, apperrors.ErrInvoiceNotOpen)
}

func (s *SubledgerServiceTestSuite) TestRecordPayment_OverpaymentRejected() {
	inv := s.saleInvoice("100", day(1, 1), day(1, 31))

	_, err := s.pay(inv.InvoiceID, "150", domain.PaymentCash, day(1, 15))
	s.ErrorIs(err, apperrors.ErrOverpayment)
	s.ErrorIs(err, apperrors.ErrValidation)

	got, err := s.svc.Subledger.GetInvoice(s.ctx, inv.InvoiceID)
	s.Require().NoError(err)
	s.assertAmount("0", got.PaidAmount)
	s.assertAmount("0", s.cached("1-101"))
	payments, err := s.svc.Subledger.ListPayments(s.ctx, inv.InvoiceID)
	s.Require().NoError(err)
	s.Empty(payments)

	_, err = s.pay("missing", "10", domain.PaymentCash, day(1, 15))
	s.ErrorIs(err, apperrors.ErrInvoiceNotFound)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *SubledgerServiceTestSuite) TestAgingReport_Buckets() {
	tomorrow := testNow.AddDate(0, 0, 1)
	s.saleInvoice("10", day(3, 1), tomorrow)
	s.saleInvoice("20", time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), testNow.AddDate(0, 0, -91))
	s.saleInvoice("30", day(3, 1), testNow)

	report, err := s.svc.Subledger.AgingReport(s.ctx, domain.InvoiceSale, nil)
	s.Require().NoError(err)
	s.Require().Len(report.Invoices, 2)
	s.assertAmount("50", report.Total)
	s.assertAmount("30", report.Buckets.Days0To30)
	s.assertAmount("0", report.Buckets.Days31To60)
	s.assertAmount("0", report.Buckets.Days61To90)
	s.assertAmount("20", report.Buckets.Over90)
	for _, line := range report.Invoices {
		s.NotEqual("10", line.Outstanding.String())
		s.Equal("Acme Retail", line.CounterpartyName)
	}

	payables, err := s.svc.Subledger.AgingReport(s.ctx, domain.InvoicePurchase, nil)
	s.Require().NoError(err)
	s.Empty(payables.Invoices)

	_, err = s.svc.Subledger.AgingReport(s.ctx, "receivable", nil)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *SubledgerServiceTestSuite) TestPurchaseInvoice_ItemsAndTaxRate() {
	rate, err := s.svc.Tax.CreateTaxRate(s.ctx, dto.CreateTaxRateRequest{Name: "VAT", Rate: amt("0.1")})
	s.Require().NoError(err)

	inv, err := s.svc.Subledger.CreateInvoice(s.ctx, dto.CreateInvoiceRequest{
		Type:           domain.InvoicePurchase,
		CounterpartyID: s.vendor.CounterpartyID,
		Items: []dto.InvoiceItemRequest{
			{Description: "bolts", Quantity: amt("2"), UnitPrice: amt("50")},
		},
		TaxRateID: rate.TaxRateID,
		IssueDate: day(1, 1),
		DueDate:   day(1, 31),
	})
	s.Require().NoError(err)
	s.Equal("BILL-00001", inv.Number)
	s.assertAmount("100", inv.Subtotal)
	s.assertAmount("10", inv.TaxAmount)
	s.assertAmount("110", inv.TotalAmount)
	s.assertAmount("110", s.cached("2-101"))
	s.assertAmount("100", s.cached("1-104"))
	s.assertAmount("-10", s.cached("2-102"))

	_, err = s.pay(inv.InvoiceID, "110", domain.PaymentBank, day(1, 20))
	s.Require().NoError(err)
	s.assertAmount("0", s.cached("2-101"))
	s.assertAmount("-110", s.cached("1-102"))
}

func (s *SubledgerServiceTestSuite) TestInvoice_InclusiveTaxSplitsTotal() {
	rate, err := s.svc.Tax.CreateTaxRate(s.ctx, dto.CreateTaxRateRequest{Name: "VAT", Rate: amt("0.1")})
	s.Require().NoError(err)
	inclusive := true
	_, err = s.svc.Tax.UpdateTaxSettings(s.ctx, dto.UpdateTaxSettingsRequest{Inclusive: &inclusive})
	s.Require().NoError(err)

	inv, err := s.svc.Subledger.CreateInvoice(s.ctx, dto.CreateInvoiceRequest{
		Type:           domain.InvoiceSale,
		CounterpartyID: s.customer.CounterpartyID,
		Subtotal:       amt("110"),
		TaxRateID:      rate.TaxRateID,
		IssueDate:      day(1, 1),
		DueDate:        day(1, 31),
	})
	s.Require().NoError(err)
	s.assertAmount("100", inv.Subtotal)
	s.assertAmount("10", inv.TaxAmount)
	s.assertAmount("110", inv.TotalAmount)
	s.assertAmount("10", s.cached("2-102"))
}

func (s *SubledgerServiceTestSuite) TestDraftThenIssue() {
	inv, err := s.svc.Subledger.CreateInvoice(s.ctx, dto.CreateInvoiceRequest{
		Type:           domain.InvoiceSale,
		CounterpartyID: s.customer.CounterpartyID,
		Subtotal:       amt("250"),
		IssueDate:      day(1, 1),
		DueDate:        day(1, 31),
		Draft:          true,
	})
	s.Require().NoError(err)
	s.Equal(domain.InvoiceDraft, inv.Status)
	s.Empty(inv.JournalEntryID)
	s.assertAmount("0", s.cached("1-103"))

	_, err = s.pay(inv.InvoiceID, "10", domain.PaymentCash, day(1, 2))
	s.ErrorIs(err, apperrors.ErrInvoiceNotOpen)

	issued, err := s.svc.Subledger.IssueInvoice(s.ctx, inv.InvoiceID)
	s.Require().NoError(err)
	s.Equal(domain.InvoiceIssued, issued.Status)
	s.NotEmpty(issued.JournalEntryID)
	s.assertAmount("250", s.cached("1-103"))

	_, err = s.svc.Subledger.IssueInvoice(s.ctx, inv.InvoiceID)
	s.ErrorIs(err, apperrors.ErrConflict)

	drafts, err := s.svc.Subledger.ListInvoices(s.ctx, dto.ListInvoicesParams{Status: string(domain.InvoiceDraft)})
	s.Require().NoError(err)
	s.Empty(drafts)
}

func (s *SubledgerServiceTestSuite) TestCancelInvoice() {
	inv := s.saleInvoice("300", day(1, 1), day(1, 31))

	cancelled, err := s.svc.Subledger.CancelInvoice(s.ctx, inv.InvoiceID, "")
	s.Require().NoError(err)
	s.Equal(domain.InvoiceCancelled, cancelled.Status)
	s.assertAmount("0", s.cached("1-103"))
	s.assertAmount("0", s.cached("4-101"))

	_, err = s.pay(inv.InvoiceID, "10", domain.PaymentCash, day(1, 2))
	s.ErrorIs(err, apperrors.ErrInvoiceNotOpen)
	_, err = s.svc.Subledger.CancelInvoice(s.ctx, inv.InvoiceID, "")
	s.ErrorIs(err, apperrors.ErrInvoiceNotOpen)

	paid := s.saleInvoice("300", day(1, 1), day(1, 31))
	_, err = s.pay(paid.InvoiceID, "100", domain.PaymentCash, day(1, 2))
	s.Require().NoError(err)
	_, err = s.svc.Subledger.CancelInvoice(s.ctx, paid.InvoiceID, "")
	s.ErrorIs(err, apperrors.ErrHasPayments)
}

func (s *SubledgerServiceTestSuite) TestDeleteInvoiceAndCounterparty() {
	inv := s.saleInvoice("300", day(1, 1), day(1, 31))
	paid := s.saleInvoice("50", day(1, 1), day(1, 31))
	_, err := s.pay(paid.InvoiceID, "50", domain.PaymentCash, day(1, 2))
	s.Require().NoError(err)

	err = s.svc.Subledger.DeleteInvoice(s.ctx, paid.InvoiceID)
	s.ErrorIs(err, apperrors.ErrHasPayments)

	s.Require().NoError(s.svc.Subledger.DeleteInvoice(s.ctx, inv.InvoiceID))
	_, err = s.svc.Subledger.GetInvoice(s.ctx, inv.InvoiceID)
	s.ErrorIs(err, apperrors.ErrInvoiceNotFound)
	s.assertAmount("50", s.cached("4-101"))

	err = s.svc.Subledger.DeleteCounterparty(s.ctx, s.customer.CounterpartyID)
	s.ErrorIs(err, apperrors.ErrHasOpenInvoices)
	s.ErrorIs(err, apperrors.ErrConflict)

	s.Require().NoError(s.svc.Subledger.DeleteCounterparty(s.ctx, s.vendor.CounterpartyID))
	vendors, err := s.svc.Subledger.ListCounterparties(s.ctx, domain.Vendor)
	s.Require().NoError(err)
	s.Empty(vendors)
}

func (s *SubledgerServiceTestSuite) TestCreateInvoice_Validation() {
	_, err := s.svc.Subledger.CreateInvoice(s.ctx, dto.CreateInvoiceRequest{
		Type:           domain.InvoiceSale,
		CounterpartyID: s.vendor.CounterpartyID,
		Subtotal:       amt("10"),
		IssueDate:      day(1, 1),
		DueDate:        day(1, 31),
	})
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.svc.Subledger.CreateInvoice(s.ctx, dto.CreateInvoiceRequest{
		Type:           domain.InvoiceSale,
		CounterpartyID: s.customer.CounterpartyID,
		Subtotal:       amt("10"),
		IssueDate:      day(2, 1),
		DueDate:        day(1, 31),
	})
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.svc.Subledger.CreateInvoice(s.ctx, dto.CreateInvoiceRequest{
		Type:           domain.InvoiceSale,
		CounterpartyID: "missing",
		Subtotal:       amt("10"),
		IssueDate:      day(1, 1),
		DueDate:        day(1, 31),
	})
	s.ErrorIs(err, apperrors.ErrNotFound)

	invoices, err := s.svc.Subledger.ListInvoices(s.ctx, dto.ListInvoicesParams{})
	s.Require().NoError(err)
	s.Empty(invoices)
}

func (s *SubledgerServiceTestSuite) TestInvoiceNumbers_NeverReused() {
	first := s.saleInvoice("100", day(1, 1), day(1, 31))
	second := s.saleInvoice("200", day(1, 2), day(1, 31))
	s.Equal("INV-00001", first.Number)
	s.Equal("INV-00002", second.Number)

	s.Require().NoError(s.svc.Subledger.DeleteInvoice(s.ctx, first.InvoiceID))
	third := s.saleInvoice("300", day(1, 3), day(1, 31))
	s.Equal("INV-00003", third.Number)

	manual, err := s.svc.Subledger.CreateInvoice(s.ctx, dto.CreateInvoiceRequest{
		Type:           domain.InvoiceSale,
		Number:         "INV-00004",
		CounterpartyID: s.customer.CounterpartyID,
		Subtotal:       amt("10"),
		IssueDate:      day(1, 4),
		DueDate:        day(1, 31),
	})
	s.Require().NoError(err)
	s.Equal("INV-00004", manual.Number)
	s.Equal("INV-00005", s.saleInvoice("40", day(1, 5), day(1, 31)).Number)

	bill, err := s.svc.Subledger.CreateInvoice(s.ctx, dto.CreateInvoiceRequest{
		Type:           domain.InvoicePurchase,
		CounterpartyID: s.vendor.CounterpartyID,
		Subtotal:       amt("10"),
		IssueDate:      day(1, 4),
		DueDate:        day(1, 31),
	})
	s.Require().NoError(err)
	s.Equal("BILL-00001", bill.Number)

	invoices, err := s.svc.Subledger.ListInvoices(s.ctx, dto.ListInvoicesParams{})
	s.Require().NoError(err)
	seen := make(map[string]bool)
	for _, inv := range invoices {
		s.False(seen[inv.Number], "number %s used twice", inv.Number)
		seen[inv.Number] = true
	}
}

func (s *SubledgerServiceTestSuite) TestCreateInvoice_DuplicateNumberRejected() {
	s.saleInvoice("100", day(1, 1), day(1, 31))

	_, err := s.svc.Subledger.CreateInvoice(s.ctx, dto.CreateInvoiceRequest{
		Type:           domain.InvoiceSale,
		Number:         "INV-00001",
		CounterpartyID: s.customer.CounterpartyID,
		Subtotal:       amt("10"),
		IssueDate:      day(1, 2),
		DueDate:        day(1, 31),
	})
	s.ErrorIs(err, apperrors.ErrDuplicate)
	s.assertAmount("100", s.cached("1-103"))

	invoices, err := s.svc.Subledger.ListInvoices(s.ctx, dto.ListInvoicesParams{})
	s.Require().NoError(err)
	s.Len(invoices, 1)
}

func (s *SubledgerServiceTestSuite) TestRecordPayment_BeforeIssueDateRejected() {
	inv := s.saleInvoice("100", day(1, 10), day(2, 10))

	_, err := s.pay(inv.InvoiceID, "50", domain.PaymentCash, day(1, 9))
	s.ErrorIs(err, apperrors.ErrValidation)
	s.assertAmount("0", s.cached("1-101"))
	s.Equal(domain.InvoiceIssued, s.status(inv.InvoiceID))

	_, err = s.pay(inv.InvoiceID, "50", domain.PaymentCash, day(1, 10))
	s.NoError(err, "same-day payment is allowed")
}

func (s *SubledgerServiceTestSuite) TestAgingReport_AsOfPastDate() {
	inv := s.saleInvoice("1000", day(1, 1), day(1, 31))
	_, err := s.pay(inv.InvoiceID, "400", domain.PaymentCash, day(2, 10))
	s.Require().NoError(err)
	_, err = s.pay(inv.InvoiceID, "600", domain.PaymentBank, day(3, 10))
	s.Require().NoError(err)
	s.saleInvoice("70", day(2, 20), day(2, 25))
	cancelled := s.saleInvoice("500", day(1, 1), day(1, 15))
	_, err = s.svc.Subledger.CancelInvoice(s.ctx, cancelled.InvoiceID, "")
	s.Require().NoError(err)

	asOf := day(2, 15)
	report, err := s.svc.Subledger.AgingReport(s.ctx, domain.InvoiceSale, &asOf)
	s.Require().NoError(err)
	s.Require().Len(report.Invoices, 1, "invoices issued after asOf and cancelled invoices are left out")
	s.Equal(inv.InvoiceID, report.Invoices[0].InvoiceID)
	s.Equal(15, report.Invoices[0].DaysOverdue)
	s.assertAmount("600", report.Invoices[0].Outstanding)
	s.assertAmount("600", report.Buckets.Days0To30)
	s.assertAmount("600", report.Total)

	earlier := day(2, 5)
	report, err = s.svc.Subledger.AgingReport(s.ctx, domain.InvoiceSale, &earlier)
	s.Require().NoError(err)
	s.Require().Len(report.Invoices, 1)
	s.assertAmount("1000", report.Invoices[0].Outstanding)

	current, err := s.svc.Subledger.AgingReport(s.ctx, domain.InvoiceSale, nil)
	s.Require().NoError(err)
	s.Require().Len(current.Invoices, 1)
	s.assertAmount("70", current.Total)
}

func TestSubledgerService(t *testing.T) {
	suite.Run(t, new(SubledgerServiceTestSuite))
}
