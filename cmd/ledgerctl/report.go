package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/SscSPs/ledger_core/internal/utils"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

var reportKinds = []string{
	"trial-balance", "balance-sheet", "income-statement", "cash-flow", "tax", "aging", "general-ledger",
}

type reportFlags struct {
	asOf      string
	start     string
	end       string
	agingType string
	accountID string
	asJSON    bool
}

func newReportCmd(a *app) *cobra.Command {
	f := &reportFlags{}
	cmd := &cobra.Command{
		Use:       "report <" + strings.Join(reportKinds, "|") + ">",
		Short:     "Print a financial report",
		ValidArgs: reportKinds,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		Example: `  ledgerctl report trial-balance --as-of 2026-03-31
  ledgerctl report income-statement --start 2026-01-01 --end 2026-03-31
  ledgerctl report aging --type payable --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(cmd); err != nil {
				return err
			}
			report, err := a.runReport(cmd, args[0], f)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if f.asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			return printReport(out, report)
		},
	}
	cmd.Flags().StringVar(&f.asOf, "as-of", "", "Report date for point-in-time reports (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&f.start, "start", "", "Period start (YYYY-MM-DD, default first of the end month)")
	cmd.Flags().StringVar(&f.end, "end", "", "Period end, inclusive (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&f.agingType, "type", "receivable", "Aging report type: receivable or payable")
	cmd.Flags().StringVar(&f.accountID, "account", "", "General ledger account ID (default all active accounts)")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "Print the report as JSON")
	return cmd
}

func (a *app) runReport(cmd *cobra.Command, kind string, f *reportFlags) (any, error) {
	ctx := cmd.Context()
	switch kind {
	case "trial-balance":
		asOf, err := parseDate(f.asOf, true)
		if err != nil {
			return nil, err
		}
		return a.svc.Reporting.TrialBalance(ctx, asOf)
	case "balance-sheet":
		asOf, err := parseDate(f.asOf, true)
		if err != nil {
			return nil, err
		}
		return a.svc.Reporting.BalanceSheet(ctx, asOf)
	case "income-statement", "cash-flow", "tax":
		period, err := parsePeriod(f.start, f.end, time.Now())
		if err != nil {
			return nil, err
		}
		switch kind {
		case "income-statement":
			return a.svc.Reporting.IncomeStatement(ctx, period)
		case "cash-flow":
			return a.svc.Reporting.CashFlowStatement(ctx, period)
		default:
			return a.svc.Reporting.TaxReport(ctx, period)
		}
	case "aging":
		invoiceType, err := parseAgingType(f.agingType)
		if err != nil {
			return nil, err
		}
		asOf, err := parseDate(f.asOf, false)
		if err != nil {
			return nil, err
		}
		return a.svc.Subledger.AgingReport(ctx, invoiceType, asOf)
	case "general-ledger":
		start, err := parseDate(f.start, false)
		if err != nil {
			return nil, err
		}
		end, err := parseDate(f.end, true)
		if err != nil {
			return nil, err
		}
		return a.svc.Reporting.GeneralLedger(ctx, dto.GeneralLedgerParams{AccountID: f.accountID, StartDate: start, EndDate: end})
	}
	return nil, fmt.Errorf("unknown report %q", kind)
}

// parseDate reads an optional YYYY-MM-DD flag, as the end of that day when endOfDay is set.
func parseDate(raw string, endOfDay bool) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, use YYYY-MM-DD: %w", raw, err)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func parsePeriod(start, end string, now time.Time) (dto.PeriodParams, error) {
	e, err := parseDate(end, true)
	if err != nil {
		return dto.PeriodParams{}, err
	}
	if e == nil {
		today, _ := parseDate(now.UTC().Format(dateLayout), true)
		e = today
	}
	s, err := parseDate(start, false)
	if err != nil {
		return dto.PeriodParams{}, err
	}
	if s == nil {
		first := time.Date(e.Year(), e.Month(), 1, 0, 0, 0, 0, time.UTC)
		s = &first
	}
	return dto.PeriodParams{StartDate: *s, EndDate: *e}, nil
}

func parseAgingType(raw string) (domain.InvoiceType, error) {
	switch strings.ToLower(raw) {
	case "receivable", "receivables", "sale":
		return domain.InvoiceSale, nil
	case "payable", "payables", "purchase":
		return domain.InvoicePurchase, nil
	}
	return "", fmt.Errorf("unknown aging type %q, use receivable or payable", raw)
}

func printReport(out io.Writer, report any) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	switch r := report.(type) {
	case *domain.TrialBalanceReport:
		fmt.Fprintf(w, "Trial Balance as of %s\t\t\t\n", r.AsOf.Format(dateLayout))
		fmt.Fprintln(w, "Code\tAccount\tDebit\tCredit\t")
		for _, row := range r.Rows {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n", row.Code, row.AccountName, amountOrBlank(row.Debit), amountOrBlank(row.Credit))
		}
		fmt.Fprintf(w, "\tTotal\t%s\t%s\t\n", utils.FormatAccounting(r.TotalDebit), utils.FormatAccounting(r.TotalCredit))
		fmt.Fprintf(w, "\tBalanced\t%t\t\t\n", r.Balanced)
		printWarnings(w, r.Warnings)
	case *domain.BalanceSheetReport:
		fmt.Fprintf(w, "Balance Sheet as of %s\t\t\n", r.AsOf.Format(dateLayout))
		section(w, "Current assets", r.CurrentAssets, r.TotalCurrentAssets)
		section(w, "Non-current assets", r.NonCurrentAssets, r.TotalNonCurrentAssets)
		fmt.Fprintf(w, "\tTotal assets\t%s\t\n", utils.FormatAccounting(r.TotalAssets))
		section(w, "Current liabilities", r.CurrentLiabilities, r.TotalCurrentLiabilities)
		section(w, "Non-current liabilities", r.NonCurrentLiabilities, r.TotalNonCurrentLiabilities)
		fmt.Fprintf(w, "\tTotal liabilities\t%s\t\n", utils.FormatAccounting(r.TotalLiabilities))
		section(w, "Equity", r.Equity, r.TotalEquity)
		fmt.Fprintf(w, "\tof which unclosed earnings\t%s\t\n", utils.FormatAccounting(r.UnclosedEarnings))
		fmt.Fprintf(w, "\tBalanced\t%t\t\n", r.Balanced)
		printWarnings(w, r.Warnings)
	case *domain.IncomeStatement:
		fmt.Fprintf(w, "Income Statement %s to %s\t\t\n", r.StartDate.Format(dateLayout), r.EndDate.Format(dateLayout))
		section(w, "Revenue", r.Revenue, r.TotalRevenue)
		section(w, "Cost of goods sold", r.COGS, r.TotalCOGS)
		fmt.Fprintf(w, "\tGross profit\t%s\t\n", utils.FormatAccounting(r.GrossProfit))
		section(w, "Expenses", r.Expenses, r.TotalExpenses)
		fmt.Fprintf(w, "\tNet income\t%s\t\n", utils.FormatAccounting(r.NetIncome))
		fmt.Fprintf(w, "\tGross margin %%\t%s\t\n", r.GrossMargin.StringFixed(2))
		fmt.Fprintf(w, "\tNet margin %%\t%s\t\n", r.NetMargin.StringFixed(2))
	case *domain.CashFlowStatement:
		fmt.Fprintf(w, "Cash Flow %s to %s\t\t\n", r.StartDate.Format(dateLayout), r.EndDate.Format(dateLayout))
		fmt.Fprintf(w, "\tNet income\t%s\t\n", utils.FormatAccounting(r.NetIncome))
		section(w, "Operating adjustments", r.OperatingAdjustments, r.NetOperating)
		section(w, "Investing", r.Investing, r.NetInvesting)
		section(w, "Financing", r.Financing, r.NetFinancing)
		fmt.Fprintf(w, "\tNet cash flow\t%s\t\n", utils.FormatAccounting(r.NetCashFlow))
		fmt.Fprintf(w, "\tBeginning cash\t%s\t\n", utils.FormatAccounting(r.BeginningCash))
		fmt.Fprintf(w, "\tEnding cash\t%s\t\n", utils.FormatAccounting(r.EndingCash))
		if !r.Discrepancy.IsZero() {
			fmt.Fprintf(w, "\tDiscrepancy\t%s\t\n", utils.FormatAccounting(r.Discrepancy))
		}
		printWarnings(w, r.Warnings)
	case *domain.TaxReport:
		fmt.Fprintf(w, "Tax Report %s to %s\t\t\t\t\n", r.StartDate.Format(dateLayout), r.EndDate.Format(dateLayout))
		fmt.Fprintln(w, "Date\tReference\tSubtotal\tTax\tRate\t")
		for _, l := range r.Transactions {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n", l.Date.Format(dateLayout), l.Reference,
				utils.FormatAccounting(l.Subtotal), utils.FormatAccounting(l.TaxAmount), l.EffectiveRate.StringFixed(4))
		}
		fmt.Fprintf(w, "\tTaxable sales\t%s\t\t\t\n", utils.FormatAccounting(r.TaxableSales))
		fmt.Fprintf(w, "\tNon-taxable sales\t%s\t\t\t\n", utils.FormatAccounting(r.NonTaxableSales))
		fmt.Fprintf(w, "\tTax collected\t\t%s\t\t\n", utils.FormatAccounting(r.TaxCollected))
	case *domain.AgingReport:
		fmt.Fprintf(w, "Aging (%s) as of %s\t\t\t\t\n", r.Type, r.AsOf.Format(dateLayout))
		fmt.Fprintln(w, "Invoice\tCounterparty\tDays overdue\tBucket\tOutstanding\t")
		for _, l := range r.Invoices {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t\n", l.Number, l.CounterpartyName, l.DaysOverdue, l.Bucket, utils.FormatAccounting(l.Outstanding))
		}
		fmt.Fprintf(w, "\t\t\t%s\t%s\t\n", domain.Bucket0To30, utils.FormatAccounting(r.Buckets.Days0To30))
		fmt.Fprintf(w, "\t\t\t%s\t%s\t\n", domain.Bucket31To60, utils.FormatAccounting(r.Buckets.Days31To60))
		fmt.Fprintf(w, "\t\t\t%s\t%s\t\n", domain.Bucket61To90, utils.FormatAccounting(r.Buckets.Days61To90))
		fmt.Fprintf(w, "\t\t\t%s\t%s\t\n", domain.BucketOver90, utils.FormatAccounting(r.Buckets.Over90))
		fmt.Fprintf(w, "\t\t\tTotal\t%s\t\n", utils.FormatAccounting(r.Total))
	case []domain.AccountLedger:
		for _, l := range r {
			fmt.Fprintf(w, "%s %s\t\t\t\t\n", l.Code, l.Name)
			fmt.Fprintf(w, "\tOpening\t\t\t%s\t\n", utils.FormatAccounting(l.OpeningBalance))
			for _, line := range l.Lines {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n", line.Date.Format(dateLayout), line.Description,
					amountOrBlank(line.Debit), amountOrBlank(line.Credit), utils.FormatAccounting(line.Balance))
			}
			fmt.Fprintf(w, "\tClosing\t%s\t%s\t%s\t\n", utils.FormatAccounting(l.TotalDebit),
				utils.FormatAccounting(l.TotalCredit), utils.FormatAccounting(l.ClosingBalance))
		}
	default:
		return fmt.Errorf("no text layout for %T", report)
	}
	return w.Flush()
}

func section(w io.Writer, title string, rows []domain.AccountAmount, total decimal.Decimal) {
	fmt.Fprintf(w, "%s\t\t\t\n", title)
	for _, row := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t\n", row.Code, row.Name, utils.FormatAccounting(row.Amount))
	}
	fmt.Fprintf(w, "\tTotal %s\t%s\t\n", strings.ToLower(title), utils.FormatAccounting(total))
}

func printWarnings(w io.Writer, warnings []domain.ConsistencyWarning) {
	for _, warn := range warnings {
		fmt.Fprintf(w, "WARN\t%s\t%s\t\n", warn.Code, warn.Message)
	}
}

func amountOrBlank(amount decimal.Decimal) string {
	if amount.IsZero() {
		return ""
	}
	return utils.FormatAccounting(amount)
}
