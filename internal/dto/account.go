package dto

import (
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to create a new account.
type CreateAccountRequest struct {
	Code           string             `json:"code" binding:"required,max=32"`
	Name           string             `json:"name" binding:"required,max=255"`
	AccountType    domain.AccountType `json:"accountType" binding:"required,oneof=ASSET LIABILITY EQUITY REVENUE COGS EXPENSE"`
	Description    string             `json:"description"`
	IsCurrent      bool               `json:"isCurrent"`
	IsCash         bool               `json:"isCash"`
	OpeningBalance decimal.Decimal    `json:"openingBalance" swaggertype:"string"` // Optional; posted against opening balance equity
	OpeningDate    *time.Time         `json:"openingDate"`                         // Defaults to now
}

// AccountResponse defines the data returned for an account.
// Mirrors domain.Account.
type AccountResponse struct {
	AccountID     string             `json:"accountID"`
	Code          string             `json:"code"`
	Name          string             `json:"name"`
	AccountType   domain.AccountType `json:"accountType"`
	Description   string             `json:"description"`
	IsActive      bool               `json:"isActive"`
	IsCurrent     bool               `json:"isCurrent"`
	IsCash        bool               `json:"isCash"`
	Balance       decimal.Decimal    `json:"balance" swaggertype:"string"`
	CreatedAt     time.Time          `json:"createdAt"`
	LastUpdatedAt time.Time          `json:"lastUpdatedAt"`
}

// UpdateAccountRequest defines the data allowed for updating an account.
// Use pointers to distinguish between zero-value updates and fields not provided.
type UpdateAccountRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=255"`
	Description *string `json:"description"`
	IsCurrent   *bool   `json:"isCurrent"`
	IsCash      *bool   `json:"isCash"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:     acc.AccountID,
		Code:          acc.Code,
		Name:          acc.Name,
		AccountType:   acc.AccountType,
		Description:   acc.Description,
		IsActive:      acc.IsActive,
		IsCurrent:     acc.IsCurrent,
		IsCash:        acc.IsCash,
		Balance:       acc.Balance,
		CreatedAt:     acc.CreatedAt,
		LastUpdatedAt: acc.LastUpdatedAt,
	}
}

// ToListAccountResponse converts a slice of domain.Account to a slice of AccountResponse DTOs
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i, acc := range accounts {
		res[i] = ToAccountResponse(&acc)
	}
	return res
}

// AccountBalanceResponse defines the data returned for an account balance query.
type AccountBalanceResponse struct {
	AccountID string          `json:"accountID"`
	AsOf      *time.Time      `json:"asOf,omitempty"` // Nil for the cached current balance
	Balance   decimal.Decimal `json:"balance" swaggertype:"string"`
}

// ListAccountsParams defines query parameters for listing accounts.
type ListAccountsParams struct {
	Type            string `form:"type" binding:"omitempty,oneof=ASSET LIABILITY EQUITY REVENUE COGS EXPENSE"`
	IncludeInactive bool   `form:"includeInactive"`
}
