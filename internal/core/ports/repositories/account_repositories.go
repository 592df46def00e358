package repositories

import (
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(accountID string) (*domain.Account, error)

	// FindAccountByCode retrieves an account by its human code.
	FindAccountByCode(code string) (*domain.Account, error)

	// ListAccounts returns every account, active or not, ordered by code.
	ListAccounts() []domain.Account
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	// SaveAccount persists a new account. It fails with ErrDuplicateCode if the code is taken.
	SaveAccount(account domain.Account) error

	// UpdateAccount updates an existing account's descriptive fields and flags.
	UpdateAccount(account domain.Account) error

	// DeleteAccount removes an account permanently.
	DeleteAccount(accountID string) error

	// ApplyBalanceChanges adds each delta to the cached balance of its account.
	ApplyBalanceChanges(balanceChanges map[string]decimal.Decimal, now time.Time) error

	// SetBalance overwrites the cached balance of an account.
	SetBalance(accountID string, balance decimal.Decimal) error
}
