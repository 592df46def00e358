package domain

// ChartAccount describes one account of a seeded chart.
type ChartAccount struct {
	Code        string
	Name        string
	AccountType AccountType
	IsCurrent   bool
	IsCash      bool
}

// DefaultChart is the chart of accounts a new ledger is seeded with.
var DefaultChart = []ChartAccount{
	{Code: "1-101", Name: "Cash", AccountType: Asset, IsCurrent: true, IsCash: true},
	{Code: "1-102", Name: "Bank", AccountType: Asset, IsCurrent: true, IsCash: true},
	{Code: "1-103", Name: "Accounts Receivable", AccountType: Asset, IsCurrent: true},
	{Code: "1-104", Name: "Inventory", AccountType: Asset, IsCurrent: true},
	{Code: "1-105", Name: "Prepaid Expenses", AccountType: Asset, IsCurrent: true},
	{Code: "1-201", Name: "Equipment", AccountType: Asset},
	{Code: "2-101", Name: "Accounts Payable", AccountType: Liability, IsCurrent: true},
	{Code: "2-102", Name: "Tax Payable", AccountType: Liability, IsCurrent: true},
	{Code: "2-103", Name: "Accrued Liabilities", AccountType: Liability, IsCurrent: true},
	{Code: "2-201", Name: "Long-term Loans", AccountType: Liability},
	{Code: "3-101", Name: "Owner's Capital", AccountType: Equity},
	{Code: "3-102", Name: "Retained Earnings", AccountType: Equity},
	{Code: "3-103", Name: "Opening Balance Equity", AccountType: Equity},
	{Code: "4-101", Name: "Sales Revenue", AccountType: Revenue},
	{Code: "4-102", Name: "Other Income", AccountType: Revenue},
	{Code: "5-101", Name: "Cost of Goods Sold", AccountType: COGS},
	{Code: "6-101", Name: "Rent Expense", AccountType: Expense},
	{Code: "6-102", Name: "Utilities Expense", AccountType: Expense},
	{Code: "6-103", Name: "Salaries Expense", AccountType: Expense},
	{Code: "6-104", Name: "General Expense", AccountType: Expense},
}

// PostingAccounts maps the roles used by automatic postings to account codes.
type PostingAccounts struct {
	Cash          string `mapstructure:"cash"`
	Bank          string `mapstructure:"bank"`
	Receivable    string `mapstructure:"receivable"`
	Payable       string `mapstructure:"payable"`
	Inventory     string `mapstructure:"inventory"`
	TaxPayable    string `mapstructure:"tax_payable"`
	Revenue       string `mapstructure:"revenue"`
	COGS          string `mapstructure:"cogs"`
	OpeningEquity string `mapstructure:"opening_equity"`
}

// DefaultPostingAccounts returns the posting roles for DefaultChart.
func DefaultPostingAccounts() PostingAccounts {
	return PostingAccounts{
		Cash:          "1-101",
		Bank:          "1-102",
		Receivable:    "1-103",
		Payable:       "2-101",
		Inventory:     "1-104",
		TaxPayable:    "2-102",
		Revenue:       "4-101",
		COGS:          "5-101",
		OpeningEquity: "3-103",
	}
}

// OpeningEquityChartAccount returns the chart row for the opening balance equity code.
func OpeningEquityChartAccount(code string) ChartAccount {
	for _, a := range DefaultChart {
		if a.Code == code {
			return a
		}
	}
	return ChartAccount{Code: code, Name: "Opening Balance Equity", AccountType: Equity}
}
