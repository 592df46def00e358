package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ConsistencyWarning reports a reconciliation mismatch. It is attached to
// results rather than returned as an error.
type ConsistencyWarning struct {
	Code       string          `json:"code"`
	Message    string          `json:"message"`
	AccountID  string          `json:"accountID,omitempty"`
	Expected   decimal.Decimal `json:"expected" swaggertype:"string"`
	Actual     decimal.Decimal `json:"actual" swaggertype:"string"`
	Difference decimal.Decimal `json:"difference" swaggertype:"string"`
}

const (
	WarnBalanceSheetUnbalanced = "BALANCE_SHEET_UNBALANCED"
	WarnCashFlowDiscrepancy    = "CASH_FLOW_DISCREPANCY"
	WarnCachedBalanceMismatch  = "CACHED_BALANCE_MISMATCH"
	WarnTrialBalanceUnbalanced = "TRIAL_BALANCE_UNBALANCED"
	WarnInactiveAccountBalance = "INACTIVE_ACCOUNT_BALANCE"
)

// LedgerLine is one entry's effect on an account in a general ledger view.
type LedgerLine struct {
	EntryID     string          `json:"entryID"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Reference   string          `json:"reference,omitempty"`
	Debit       decimal.Decimal `json:"debit" swaggertype:"string"`
	Credit      decimal.Decimal `json:"credit" swaggertype:"string"`
	Balance     decimal.Decimal `json:"balance" swaggertype:"string"` // Running balance after this line
}

// AccountLedger is the general ledger view of one account over a window.
type AccountLedger struct {
	AccountID      string          `json:"accountID"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	AccountType    AccountType     `json:"accountType"`
	OpeningBalance decimal.Decimal `json:"openingBalance" swaggertype:"string"`
	Lines          []LedgerLine    `json:"lines"`
	TotalDebit     decimal.Decimal `json:"totalDebit" swaggertype:"string"`
	TotalCredit    decimal.Decimal `json:"totalCredit" swaggertype:"string"`
	ClosingBalance decimal.Decimal `json:"closingBalance" swaggertype:"string"`
}

// TrialBalanceRow represents a single row in a trial balance report
type TrialBalanceRow struct {
	AccountID   string          `json:"accountID"`
	Code        string          `json:"code"`
	AccountName string          `json:"accountName"`
	AccountType AccountType     `json:"accountType"`
	Debit       decimal.Decimal `json:"debit" swaggertype:"string"`
	Credit      decimal.Decimal `json:"credit" swaggertype:"string"`
}

// TrialBalanceReport lists every active account with a non-zero balance.
type TrialBalanceReport struct {
	AsOf        time.Time            `json:"asOf"`
	Rows        []TrialBalanceRow    `json:"rows"`
	TotalDebit  decimal.Decimal      `json:"totalDebit" swaggertype:"string"`
	TotalCredit decimal.Decimal      `json:"totalCredit" swaggertype:"string"`
	Balanced    bool                 `json:"balanced"`
	Warnings    []ConsistencyWarning `json:"warnings,omitempty"`
}

// AccountAmount represents an account with its net amount for financial reports
type AccountAmount struct {
	AccountID string          `json:"accountID"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount" swaggertype:"string"`
}

// BalanceSheetReport represents a balance sheet report
type BalanceSheetReport struct {
	AsOf                       time.Time            `json:"asOf"`
	CurrentAssets              []AccountAmount      `json:"currentAssets"`
	NonCurrentAssets           []AccountAmount      `json:"nonCurrentAssets"`
	CurrentLiabilities         []AccountAmount      `json:"currentLiabilities"`
	NonCurrentLiabilities      []AccountAmount      `json:"nonCurrentLiabilities"`
	Equity                     []AccountAmount      `json:"equity"`
	UnclosedEarnings           decimal.Decimal      `json:"unclosedEarnings" swaggertype:"string"`
	TotalCurrentAssets         decimal.Decimal      `json:"totalCurrentAssets" swaggertype:"string"`
	TotalNonCurrentAssets      decimal.Decimal      `json:"totalNonCurrentAssets" swaggertype:"string"`
	TotalAssets                decimal.Decimal      `json:"totalAssets" swaggertype:"string"`
	TotalCurrentLiabilities    decimal.Decimal      `json:"totalCurrentLiabilities" swaggertype:"string"`
	TotalNonCurrentLiabilities decimal.Decimal      `json:"totalNonCurrentLiabilities" swaggertype:"string"`
	TotalLiabilities           decimal.Decimal      `json:"totalLiabilities" swaggertype:"string"`
	TotalEquity                decimal.Decimal      `json:"totalEquity" swaggertype:"string"`
	Balanced                   bool                 `json:"balanced"`
	Warnings                   []ConsistencyWarning `json:"warnings,omitempty"`
}

// IncomeStatement reports period activity of revenue, COGS and expense accounts.
type IncomeStatement struct {
	StartDate     time.Time       `json:"startDate"`
	EndDate       time.Time       `json:"endDate"`
	Revenue       []AccountAmount `json:"revenue"`
	COGS          []AccountAmount `json:"cogs"`
	Expenses      []AccountAmount `json:"expenses"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue" swaggertype:"string"`
	TotalCOGS     decimal.Decimal `json:"totalCOGS" swaggertype:"string"`
	TotalExpenses decimal.Decimal `json:"totalExpenses" swaggertype:"string"`
	GrossProfit   decimal.Decimal `json:"grossProfit" swaggertype:"string"`
	NetIncome     decimal.Decimal `json:"netIncome" swaggertype:"string"`
	GrossMargin   decimal.Decimal `json:"grossMargin" swaggertype:"string"` // Percent of revenue
	NetMargin     decimal.Decimal `json:"netMargin" swaggertype:"string"`   // Percent of revenue
}

// CashFlowStatement is an indirect-method cash flow statement.
type CashFlowStatement struct {
	StartDate            time.Time            `json:"startDate"`
	EndDate              time.Time            `json:"endDate"`
	NetIncome            decimal.Decimal      `json:"netIncome" swaggertype:"string"`
	OperatingAdjustments []AccountAmount      `json:"operatingAdjustments"`
	NetOperating         decimal.Decimal      `json:"netOperating" swaggertype:"string"`
	Investing            []AccountAmount      `json:"investing"`
	NetInvesting         decimal.Decimal      `json:"netInvesting" swaggertype:"string"`
	Financing            []AccountAmount      `json:"financing"`
	NetFinancing         decimal.Decimal      `json:"netFinancing" swaggertype:"string"`
	NetCashFlow          decimal.Decimal      `json:"netCashFlow" swaggertype:"string"`
	BeginningCash        decimal.Decimal      `json:"beginningCash" swaggertype:"string"`
	EndingCash           decimal.Decimal      `json:"endingCash" swaggertype:"string"`
	Discrepancy          decimal.Decimal      `json:"discrepancy" swaggertype:"string"` // NetCashFlow - (EndingCash - BeginningCash)
	Warnings             []ConsistencyWarning `json:"warnings,omitempty"`
}

// TaxReportLine is one sales entry in a tax report.
type TaxReportLine struct {
	EntryID       string          `json:"entryID"`
	Date          time.Time       `json:"date"`
	Description   string          `json:"description"`
	Reference     string          `json:"reference,omitempty"`
	ReferenceType ReferenceType   `json:"referenceType"`
	Subtotal      decimal.Decimal `json:"subtotal" swaggertype:"string"`
	TaxAmount     decimal.Decimal `json:"taxAmount" swaggertype:"string"`
	EffectiveRate decimal.Decimal `json:"effectiveRate" swaggertype:"string"` // TaxAmount / Subtotal
	Taxable       bool            `json:"taxable"`
}

// TaxReport summarises tax collected on sales within a window.
type TaxReport struct {
	StartDate       time.Time       `json:"startDate"`
	EndDate         time.Time       `json:"endDate"`
	TaxableSales    decimal.Decimal `json:"taxableSales" swaggertype:"string"`
	NonTaxableSales decimal.Decimal `json:"nonTaxableSales" swaggertype:"string"`
	TotalSales      decimal.Decimal `json:"totalSales" swaggertype:"string"`
	TaxCollected    decimal.Decimal `json:"taxCollected" swaggertype:"string"`
	Transactions    []TaxReportLine `json:"transactions"`
}

// AgingBucket names a days-overdue range.
type AgingBucket string

const (
	Bucket0To30  AgingBucket = "0-30"
	Bucket31To60 AgingBucket = "31-60"
	Bucket61To90 AgingBucket = "61-90"
	BucketOver90 AgingBucket = ">90"
)

// BucketFor returns the aging bucket for a non-negative number of days overdue.
func BucketFor(daysOverdue int) AgingBucket {
	switch {
	case daysOverdue <= 30:
		return Bucket0To30
	case daysOverdue <= 60:
		return Bucket31To60
	case daysOverdue <= 90:
		return Bucket61To90
	default:
		return BucketOver90
	}
}

// AgingBuckets holds the outstanding total per bucket.
type AgingBuckets struct {
	Days0To30  decimal.Decimal `json:"days0To30" swaggertype:"string"`
	Days31To60 decimal.Decimal `json:"days31To60" swaggertype:"string"`
	Days61To90 decimal.Decimal `json:"days61To90" swaggertype:"string"`
	Over90     decimal.Decimal `json:"over90" swaggertype:"string"`
}

// Add adds amount to bucket b.
func (a *AgingBuckets) Add(b AgingBucket, amount decimal.Decimal) {
	switch b {
	case Bucket0To30:
		a.Days0To30 = a.Days0To30.Add(amount)
	case Bucket31To60:
		a.Days31To60 = a.Days31To60.Add(amount)
	case Bucket61To90:
		a.Days61To90 = a.Days61To90.Add(amount)
	default:
		a.Over90 = a.Over90.Add(amount)
	}
}

// AgingLine is one overdue invoice in an aging report.
type AgingLine struct {
	InvoiceID        string          `json:"invoiceID"`
	Number           string          `json:"number"`
	CounterpartyID   string          `json:"counterpartyID"`
	CounterpartyName string          `json:"counterpartyName"`
	DueDate          time.Time       `json:"dueDate"`
	DaysOverdue      int             `json:"daysOverdue"`
	Outstanding      decimal.Decimal `json:"outstanding" swaggertype:"string"`
	Bucket           AgingBucket     `json:"bucket"`
}

// AgingReport buckets unpaid invoices of one type by days overdue.
type AgingReport struct {
	Type     InvoiceType     `json:"type"`
	AsOf     time.Time       `json:"asOf"`
	Buckets  AgingBuckets    `json:"buckets"`
	Total    decimal.Decimal `json:"total" swaggertype:"string"`
	Invoices []AgingLine     `json:"invoices"`
}

// CacheVerification is the result of comparing cached balances with a replay.
type CacheVerification struct {
	CheckedAccounts int                  `json:"checkedAccounts"`
	Consistent      bool                 `json:"consistent"`
	Warnings        []ConsistencyWarning `json:"warnings,omitempty"`
}
