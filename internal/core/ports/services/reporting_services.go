package services

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/dto"
)

// ReportingService defines operations for generating financial reports.
// A nil asOf means now.
type ReportingService interface {
	// GeneralLedger builds running-balance views of one or all active accounts.
	GeneralLedger(ctx context.Context, params dto.GeneralLedgerParams) ([]domain.AccountLedger, error)

	// TrialBalance generates a trial balance report as of a specific date
	TrialBalance(ctx context.Context, asOf *time.Time) (*domain.TrialBalanceReport, error)

	// BalanceSheet generates a balance sheet report as of a specific date
	BalanceSheet(ctx context.Context, asOf *time.Time) (*domain.BalanceSheetReport, error)

	// IncomeStatement reports period activity of revenue, COGS and expense accounts.
	IncomeStatement(ctx context.Context, period dto.PeriodParams) (*domain.IncomeStatement, error)

	// CashFlowStatement builds an indirect-method cash flow statement for the period.
	CashFlowStatement(ctx context.Context, period dto.PeriodParams) (*domain.CashFlowStatement, error)

	// TaxReport summarises tax on sales entries within the period.
	TaxReport(ctx context.Context, period dto.PeriodParams) (*domain.TaxReport, error)
}
