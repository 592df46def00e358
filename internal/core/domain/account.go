package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	COGS      AccountType = "COGS"
	Expense   AccountType = "EXPENSE"
)

// AccountTypes lists every account type in chart order.
var AccountTypes = []AccountType{Asset, Liability, Equity, Revenue, COGS, Expense}

// IsValid reports whether t is one of the known account types.
func (t AccountType) IsValid() bool {
	switch t {
	case Asset, Liability, Equity, Revenue, COGS, Expense:
		return true
	}
	return false
}

// IsDebitNormal reports whether debits increase accounts of this type.
func (t AccountType) IsDebitNormal() bool {
	return t == Asset || t == COGS || t == Expense
}

// IsIncomeStatement reports whether the type belongs on the income statement.
func (t AccountType) IsIncomeStatement() bool {
	return t == Revenue || t == COGS || t == Expense
}

// Account represents a financial account within the core domain.
// Balance is a cache of the journal replay as of now and is never authoritative
// for historical queries.
type Account struct {
	AccountID   string          `json:"accountID"`
	Code        string          `json:"code"` // Natural business key, e.g. "1-101"
	Name        string          `json:"name"`
	AccountType AccountType     `json:"accountType"`
	Description string          `json:"description"`
	IsActive    bool            `json:"isActive"`  // Soft delete flag
	IsCurrent   bool            `json:"isCurrent"` // Current vs non-current on the balance sheet
	IsCash      bool            `json:"isCash"`    // Counted as cash in the cash flow statement
	Balance     decimal.Decimal `json:"balance" swaggertype:"string"`
	AuditFields
}
