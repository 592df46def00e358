package services

import (
	"context"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/dto"
)

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// GetAccountByID retrieves a specific account by its unique identifier.
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// GetAccountByCode retrieves an account by its human code.
	GetAccountByCode(ctx context.Context, code string) (*domain.Account, error)

	// ListByType returns the active accounts of one type ordered by code.
	ListByType(ctx context.Context, accountType domain.AccountType) ([]domain.Account, error)

	// ListAccounts returns the chart of accounts ordered by code.
	ListAccounts(ctx context.Context, includeInactive bool) ([]domain.Account, error)
}

// AccountWriterSvc defines write operations for account data
type AccountWriterSvc interface {
	// AddAccount creates an account. A non-zero opening balance is posted against opening balance equity.
	AddAccount(ctx context.Context, req dto.CreateAccountRequest) (*domain.Account, error)

	// UpdateAccount updates an existing account's descriptive fields and flags.
	UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest) (*domain.Account, error)

	// DeactivateAccount marks an account as inactive. It is always allowed.
	DeactivateAccount(ctx context.Context, accountID string) error

	// ActivateAccount marks an inactive account as active again.
	ActivateAccount(ctx context.Context, accountID string) error

	// DeleteAccount removes an account that no journal entry references.
	DeleteAccount(ctx context.Context, accountID string) error

	// SeedDefaultChart creates any missing account of the default chart and returns the ones created.
	SeedDefaultChart(ctx context.Context) ([]domain.Account, error)
}

// AccountSvcFacade combines all account-related service interfaces
// This is a facade for clients that need access to all operations
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
