package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/SscSPs/ledger_core/internal/metrics"
	"github.com/SscSPs/ledger_core/internal/utils/accounting"
)

var hundred = decimal.NewFromInt(100)

// reportingService implements the ReportingService interface. Every report is
// built from one bookView, so it reflects a single point of the mutation history.
type reportingService struct {
	BaseService
	store portsrepo.LedgerStore
}

// NewReportingService creates a new reporting service with the provided options
func NewReportingService(store portsrepo.LedgerStore, options ...ServiceOption) portssvc.ReportingService {
	cfg := newServiceConfig(options)
	return &reportingService{BaseService: BaseService{clock: cfg.clock}, store: store}
}

// Ensure reportingService implements the ReportingService interface
var _ portssvc.ReportingService = (*reportingService)(nil)

func (s *reportingService) view(ctx context.Context) (*bookView, error) {
	var v *bookView
	err := s.store.View(ctx, func(tx portsrepo.ReadTx) error {
		v = newBookView(tx)
		return nil
	})
	return v, err
}

func (s *reportingService) cutoff(asOf *time.Time) time.Time {
	if asOf == nil {
		return s.now()
	}
	return *asOf
}

func validatePeriod(period dto.PeriodParams) error {
	if period.StartDate.IsZero() || period.EndDate.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", apperrors.ErrValidation)
	}
	if period.EndDate.Before(period.StartDate) {
		return fmt.Errorf("%w: end date is before start date", apperrors.ErrValidation)
	}
	return nil
}

// GeneralLedger builds running-balance views of one or all active accounts.
func (s *reportingService) GeneralLedger(ctx context.Context, params dto.GeneralLedgerParams) ([]domain.AccountLedger, error) {
	defer metrics.ObserveReport("general_ledger")()
	if params.StartDate != nil && params.EndDate != nil && params.EndDate.Before(*params.StartDate) {
		return nil, fmt.Errorf("%w: end date is before start date", apperrors.ErrValidation)
	}

	v, err := s.view(ctx)
	if err != nil {
		return nil, err
	}

	var accounts []domain.Account
	if params.AccountID != "" {
		acc, ok := v.byID[params.AccountID]
		if !ok {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, params.AccountID)
		}
		accounts = []domain.Account{acc}
	} else {
		accounts = v.activeAccounts()
	}

	opening := map[string]decimal.Decimal{}
	if params.StartDate != nil {
		opening = v.balancesAsOf(params.StartDate.Add(-time.Nanosecond))
	}
	inWindow := func(e domain.JournalEntry) bool {
		if params.StartDate != nil && e.Date.Before(*params.StartDate) {
			return false
		}
		if params.EndDate != nil && e.Date.After(*params.EndDate) {
			return false
		}
		return true
	}

	ledgers := make([]domain.AccountLedger, 0, len(accounts))
	for _, acc := range accounts {
		ledger := domain.AccountLedger{
			AccountID:      acc.AccountID,
			Code:           acc.Code,
			Name:           acc.Name,
			AccountType:    acc.AccountType,
			OpeningBalance: opening[acc.AccountID],
			Lines:          []domain.LedgerLine{},
			TotalDebit:     decimal.Zero,
			TotalCredit:    decimal.Zero,
		}
		running := ledger.OpeningBalance
		for _, e := range v.entries {
			if !e.Replayable() || !e.Touches(acc.AccountID) || !inWindow(e) {
				continue
			}
			combined := domain.JournalLine{AccountID: acc.AccountID, Debit: decimal.Zero, Credit: decimal.Zero}
			for _, l := range e.Lines {
				if l.AccountID == acc.AccountID {
					combined.Debit = combined.Debit.Add(l.Debit)
					combined.Credit = combined.Credit.Add(l.Credit)
				}
			}
			delta, err := accounting.SignedDelta(combined, acc.AccountType)
			if err != nil {
				return nil, err
			}
			running = running.Add(delta)
			ledger.TotalDebit = ledger.TotalDebit.Add(combined.Debit)
			ledger.TotalCredit = ledger.TotalCredit.Add(combined.Credit)
			ledger.Lines = append(ledger.Lines, domain.LedgerLine{
				EntryID:     e.EntryID,
				Date:        e.Date,
				Description: e.Description,
				Reference:   e.Reference,
				Debit:       combined.Debit,
				Credit:      combined.Credit,
				Balance:     running,
			})
		}
		ledger.ClosingBalance = running
		ledgers = append(ledgers, ledger)
	}

	s.LogDebug(ctx, "General ledger generated", slog.Int("account_count", len(ledgers)))
	return ledgers, nil
}

// TrialBalance lists every active account with a non-zero balance in its
// normal-side column, or in the opposite column when the balance is abnormal.
func (s *reportingService) TrialBalance(ctx context.Context, asOf *time.Time) (*domain.TrialBalanceReport, error) {
	defer metrics.ObserveReport("trial_balance")()
	cutoff := s.cutoff(asOf)
	v, err := s.view(ctx)
	if err != nil {
		return nil, err
	}

	balances := v.balancesAsOf(cutoff)
	report := &domain.TrialBalanceReport{
		AsOf:        cutoff,
		Rows:        []domain.TrialBalanceRow{},
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	for _, acc := range v.activeAccounts() {
		balance := balances[acc.AccountID]
		if balance.IsZero() {
			continue
		}
		row := domain.TrialBalanceRow{
			AccountID:   acc.AccountID,
			Code:        acc.Code,
			AccountName: acc.Name,
			AccountType: acc.AccountType,
			Debit:       decimal.Zero,
			Credit:      decimal.Zero,
		}
		if acc.AccountType.IsDebitNormal() == balance.IsPositive() {
			row.Debit = balance.Abs()
		} else {
			row.Credit = balance.Abs()
		}
		report.TotalDebit = report.TotalDebit.Add(row.Debit)
		report.TotalCredit = report.TotalCredit.Add(row.Credit)
		report.Rows = append(report.Rows, row)
	}
	report.Balanced = accounting.WithinTolerance(report.TotalDebit, report.TotalCredit)

	report.Warnings = v.inactiveBalanceWarnings(balances)
	if !report.Balanced {
		report.Warnings = append(report.Warnings, domain.ConsistencyWarning{
			Code:       domain.WarnTrialBalanceUnbalanced,
			Message:    "total debits differ from total credits",
			Expected:   report.TotalDebit,
			Actual:     report.TotalCredit,
			Difference: report.TotalDebit.Sub(report.TotalCredit),
		})
		s.LogWarn(ctx, "Trial balance does not balance",
			slog.String("total_debit", report.TotalDebit.String()),
			slog.String("total_credit", report.TotalCredit.String()))
	}
	s.countWarnings(report.Warnings)
	s.LogInfo(ctx, "Trial balance report generated successfully",
		slog.String("asOf", cutoff.Format(time.RFC3339)),
		slog.Int("row_count", len(report.Rows)))
	return report, nil
}

func (s *reportingService) countWarnings(warnings []domain.ConsistencyWarning) {
	for _, w := range warnings {
		metrics.ConsistencyWarnings.WithLabelValues(w.Code).Inc()
	}
}

// BalanceSheet splits assets and liabilities by their current flag and checks
// that assets equal liabilities plus equity. A mismatch is reported as a warning.
func (s *reportingService) BalanceSheet(ctx context.Context, asOf *time.Time) (*domain.BalanceSheetReport, error) {
	defer metrics.ObserveReport("balance_sheet")()
	cutoff := s.cutoff(asOf)
	v, err := s.view(ctx)
	if err != nil {
		return nil, err
	}

	balances := v.balancesAsOf(cutoff)
	report := &domain.BalanceSheetReport{
		AsOf:                  cutoff,
		CurrentAssets:         []domain.AccountAmount{},
		NonCurrentAssets:      []domain.AccountAmount{},
		CurrentLiabilities:    []domain.AccountAmount{},
		NonCurrentLiabilities: []domain.AccountAmount{},
		Equity:                []domain.AccountAmount{},
	}

	equity := decimal.Zero
	for _, acc := range v.activeAccounts() {
		balance := balances[acc.AccountID]
		if balance.IsZero() {
			continue
		}
		line := domain.AccountAmount{AccountID: acc.AccountID, Code: acc.Code, Name: acc.Name, Amount: balance}
		switch acc.AccountType {
		case domain.Asset:
			if acc.IsCurrent {
				report.CurrentAssets = append(report.CurrentAssets, line)
				report.TotalCurrentAssets = report.TotalCurrentAssets.Add(balance)
			} else {
				report.NonCurrentAssets = append(report.NonCurrentAssets, line)
				report.TotalNonCurrentAssets = report.TotalNonCurrentAssets.Add(balance)
			}
		case domain.Liability:
			if acc.IsCurrent {
				report.CurrentLiabilities = append(report.CurrentLiabilities, line)
				report.TotalCurrentLiabilities = report.TotalCurrentLiabilities.Add(balance)
			} else {
				report.NonCurrentLiabilities = append(report.NonCurrentLiabilities, line)
				report.TotalNonCurrentLiabilities = report.TotalNonCurrentLiabilities.Add(balance)
			}
		case domain.Equity:
			report.Equity = append(report.Equity, line)
			equity = equity.Add(balance)
		case domain.Revenue:
			report.UnclosedEarnings = report.UnclosedEarnings.Add(balance)
		case domain.COGS, domain.Expense:
			report.UnclosedEarnings = report.UnclosedEarnings.Sub(balance)
		}
	}

	report.TotalAssets = report.TotalCurrentAssets.Add(report.TotalNonCurrentAssets)
	report.TotalLiabilities = report.TotalCurrentLiabilities.Add(report.TotalNonCurrentLiabilities)
	report.TotalEquity = equity.Add(report.UnclosedEarnings)

	liabilitiesAndEquity := report.TotalLiabilities.Add(report.TotalEquity)
	report.Balanced = accounting.WithinTolerance(report.TotalAssets, liabilitiesAndEquity)
	inactive := v.inactiveBalanceWarnings(balances)
	report.Warnings = append(report.Warnings, inactive...)
	s.countWarnings(inactive)
	if !report.Balanced {
		w := domain.ConsistencyWarning{
			Code:       domain.WarnBalanceSheetUnbalanced,
			Message:    "total assets differ from liabilities plus equity",
			Expected:   report.TotalAssets,
			Actual:     liabilitiesAndEquity,
			Difference: report.TotalAssets.Sub(liabilitiesAndEquity),
		}
		report.Warnings = append(report.Warnings, w)
		metrics.ConsistencyWarnings.WithLabelValues(w.Code).Inc()
		s.LogWarn(ctx, "Balance sheet does not balance", slog.String("difference", w.Difference.String()))
	}

	s.LogInfo(ctx, "Balance sheet report generated successfully",
		slog.String("asOf", cutoff.Format(time.RFC3339)),
		slog.Bool("balanced", report.Balanced))
	return report, nil
}

// IncomeStatement reports revenue, COGS and expenses as period deltas over [start, end].
func (s *reportingService) IncomeStatement(ctx context.Context, period dto.PeriodParams) (*domain.IncomeStatement, error) {
	defer metrics.ObserveReport("income_statement")()
	if err := validatePeriod(period); err != nil {
		return nil, err
	}
	v, err := s.view(ctx)
	if err != nil {
		return nil, err
	}

	report := buildIncomeStatement(v, period.StartDate, period.EndDate)
	s.LogInfo(ctx, "Income statement generated successfully",
		slog.String("from", period.StartDate.Format(time.RFC3339)),
		slog.String("to", period.EndDate.Format(time.RFC3339)),
		slog.String("net_income", report.NetIncome.String()))
	return report, nil
}

func buildIncomeStatement(v *bookView, start, end time.Time) *domain.IncomeStatement {
	deltas := v.periodDeltas(start, end)
	report := &domain.IncomeStatement{
		StartDate: start,
		EndDate:   end,
		Revenue:   []domain.AccountAmount{},
		COGS:      []domain.AccountAmount{},
		Expenses:  []domain.AccountAmount{},
	}
	for _, acc := range v.activeAccounts(domain.Revenue, domain.COGS, domain.Expense) {
		amount := deltas[acc.AccountID]
		switch acc.AccountType {
		case domain.Revenue:
			report.TotalRevenue = report.TotalRevenue.Add(amount)
		case domain.COGS:
			report.TotalCOGS = report.TotalCOGS.Add(amount)
		case domain.Expense:
			report.TotalExpenses = report.TotalExpenses.Add(amount)
		}
		if amount.IsZero() {
			continue
		}
		line := domain.AccountAmount{AccountID: acc.AccountID, Code: acc.Code, Name: acc.Name, Amount: amount}
		switch acc.AccountType {
		case domain.Revenue:
			report.Revenue = append(report.Revenue, line)
		case domain.COGS:
			report.COGS = append(report.COGS, line)
		case domain.Expense:
			report.Expenses = append(report.Expenses, line)
		}
	}
	report.GrossProfit = report.TotalRevenue.Sub(report.TotalCOGS)
	report.NetIncome = report.GrossProfit.Sub(report.TotalExpenses)
	if !report.TotalRevenue.IsZero() {
		report.GrossMargin = report.GrossProfit.Div(report.TotalRevenue).Mul(hundred).Round(2)
		report.NetMargin = report.NetIncome.Div(report.TotalRevenue).Mul(hundred).Round(2)
	}
	return report
}

// CashFlowStatement uses the indirect method: net income adjusted by balance
// changes of non-cash accounts, reconciled against the change in cash.
func (s *reportingService) CashFlowStatement(ctx context.Context, period dto.PeriodParams) (*domain.CashFlowStatement, error) {
	defer metrics.ObserveReport("cash_flow")()
	if err := validatePeriod(period); err != nil {
		return nil, err
	}
	v, err := s.view(ctx)
	if err != nil {
		return nil, err
	}

	income := buildIncomeStatement(v, period.StartDate, period.EndDate)
	opening := v.balancesAsOf(period.StartDate.Add(-time.Nanosecond))
	closing := v.balancesAsOf(period.EndDate)

	report := &domain.CashFlowStatement{
		StartDate:            period.StartDate,
		EndDate:              period.EndDate,
		NetIncome:            income.NetIncome,
		OperatingAdjustments: []domain.AccountAmount{},
		Investing:            []domain.AccountAmount{},
		Financing:            []domain.AccountAmount{},
	}
	for _, acc := range v.activeAccounts(domain.Asset, domain.Liability, domain.Equity) {
		if acc.AccountType == domain.Asset && acc.IsCash {
			report.BeginningCash = report.BeginningCash.Add(opening[acc.AccountID])
			report.EndingCash = report.EndingCash.Add(closing[acc.AccountID])
			continue
		}
		change := closing[acc.AccountID].Sub(opening[acc.AccountID])
		if change.IsZero() {
			continue
		}
		// An asset increase uses cash; a liability or equity increase provides it.
		effect := change
		if acc.AccountType == domain.Asset {
			effect = change.Neg()
		}
		line := domain.AccountAmount{AccountID: acc.AccountID, Code: acc.Code, Name: acc.Name, Amount: effect}
		switch {
		case acc.AccountType == domain.Equity:
			report.Financing = append(report.Financing, line)
			report.NetFinancing = report.NetFinancing.Add(effect)
		case acc.IsCurrent:
			report.OperatingAdjustments = append(report.OperatingAdjustments, line)
			report.NetOperating = report.NetOperating.Add(effect)
		case acc.AccountType == domain.Asset:
			report.Investing = append(report.Investing, line)
			report.NetInvesting = report.NetInvesting.Add(effect)
		default:
			report.Financing = append(report.Financing, line)
			report.NetFinancing = report.NetFinancing.Add(effect)
		}
	}
	report.NetOperating = report.NetOperating.Add(report.NetIncome)
	report.NetCashFlow = report.NetOperating.Add(report.NetInvesting).Add(report.NetFinancing)

	cashChange := report.EndingCash.Sub(report.BeginningCash)
	report.Discrepancy = report.NetCashFlow.Sub(cashChange)
	if !accounting.WithinTolerance(report.Discrepancy, decimal.Zero) {
		w := domain.ConsistencyWarning{
			Code:       domain.WarnCashFlowDiscrepancy,
			Message:    "net cash flow differs from the change in cash balances",
			Expected:   cashChange,
			Actual:     report.NetCashFlow,
			Difference: report.Discrepancy,
		}
		report.Warnings = append(report.Warnings, w)
		metrics.ConsistencyWarnings.WithLabelValues(w.Code).Inc()
		s.LogWarn(ctx, "Cash flow statement does not reconcile", slog.String("discrepancy", w.Difference.String()))
	}

	s.LogInfo(ctx, "Cash flow statement generated successfully",
		slog.String("from", period.StartDate.Format(time.RFC3339)),
		slog.String("to", period.EndDate.Format(time.RFC3339)),
		slog.String("net_cash_flow", report.NetCashFlow.String()))
	return report, nil
}

// TaxReport partitions sales entries in the period into taxable and non-taxable.
func (s *reportingService) TaxReport(ctx context.Context, period dto.PeriodParams) (*domain.TaxReport, error) {
	defer metrics.ObserveReport("tax")()
	if err := validatePeriod(period); err != nil {
		return nil, err
	}
	v, err := s.view(ctx)
	if err != nil {
		return nil, err
	}

	report := &domain.TaxReport{
		StartDate:    period.StartDate,
		EndDate:      period.EndDate,
		Transactions: []domain.TaxReportLine{},
	}
	for _, e := range v.entries {
		if !e.Replayable() || !e.ReferenceType.IsSales() {
			continue
		}
		if e.Date.Before(period.StartDate) || e.Date.After(period.EndDate) {
			continue
		}
		subtotal := e.Subtotal
		if subtotal.IsZero() {
			subtotal = v.revenueCredited(e)
		}
		line := domain.TaxReportLine{
			EntryID:       e.EntryID,
			Date:          e.Date,
			Description:   e.Description,
			Reference:     e.Reference,
			ReferenceType: e.ReferenceType,
			Subtotal:      subtotal,
			TaxAmount:     e.TaxAmount,
			Taxable:       e.TaxAmount.IsPositive(),
		}
		if !subtotal.IsZero() {
			line.EffectiveRate = e.TaxAmount.Div(subtotal).Round(4)
		}
		if line.Taxable {
			report.TaxableSales = report.TaxableSales.Add(subtotal)
			report.TaxCollected = report.TaxCollected.Add(e.TaxAmount)
		} else {
			report.NonTaxableSales = report.NonTaxableSales.Add(subtotal)
		}
		report.Transactions = append(report.Transactions, line)
	}
	report.TotalSales = report.TaxableSales.Add(report.NonTaxableSales)

	s.LogInfo(ctx, "Tax report generated successfully",
		slog.Int("transaction_count", len(report.Transactions)),
		slog.String("tax_collected", report.TaxCollected.String()))
	return report, nil
}

// revenueCredited sums net credits to revenue accounts in an entry.
func (v *bookView) revenueCredited(e domain.JournalEntry) decimal.Decimal {
	total := decimal.Zero
	for _, l := range e.Lines {
		if acc, ok := v.byID[l.AccountID]; ok && acc.AccountType == domain.Revenue {
			total = total.Add(l.Credit.Sub(l.Debit))
		}
	}
	return total
}
