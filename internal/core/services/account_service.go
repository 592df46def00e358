package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/dto"
)

// accountService owns the chart of accounts.
type accountService struct {
	BaseService
	store    portsrepo.LedgerStore
	journal  *journalService
	postings domain.PostingAccounts
}

// NewAccountService creates a new account service with the provided options
func NewAccountService(store portsrepo.LedgerStore, options ...ServiceOption) portssvc.AccountSvcFacade {
	cfg := newServiceConfig(options)
	return newAccountService(store, newJournalService(store, cfg), cfg)
}

func newAccountService(store portsrepo.LedgerStore, journal *journalService, cfg serviceConfig) *accountService {
	return &accountService{
		BaseService: BaseService{clock: cfg.clock},
		store:       store,
		journal:     journal,
		postings:    cfg.postings,
	}
}

// Ensure accountService implements the AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// AddAccount creates an account. A non-zero opening balance is posted in the same
// transaction against the opening balance equity account, created on demand.
func (s *accountService) AddAccount(ctx context.Context, req dto.CreateAccountRequest) (*domain.Account, error) {
	if err := validateRequest(req); err != nil {
		s.logFailure(ctx, err, "Invalid create account request")
		return nil, err
	}

	now := s.now()
	account := domain.Account{
		AccountID:   uuid.NewString(),
		Code:        strings.TrimSpace(req.Code),
		Name:        strings.TrimSpace(req.Name),
		AccountType: req.AccountType,
		Description: req.Description,
		IsActive:    true,
		IsCurrent:   req.IsCurrent,
		IsCash:      req.IsCash,
		Balance:     decimal.Zero,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}

	var created *domain.Account
	err := s.store.Update(ctx, func(tx portsrepo.Tx) error {
		if err := tx.SaveAccount(account); err != nil {
			return err
		}
		if !req.OpeningBalance.IsZero() {
			openingDate := now
			if req.OpeningDate != nil {
				openingDate = *req.OpeningDate
			}
			if err := s.postOpeningBalance(tx, account, req.OpeningBalance, openingDate); err != nil {
				return err
			}
		}
		var err error
		created, err = tx.FindAccountByID(account.AccountID)
		return err
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to create account", slog.String("code", account.Code))
		return nil, err
	}

	s.LogInfo(ctx, "Account created successfully",
		slog.String("account_id", created.AccountID),
		slog.String("code", created.Code),
		slog.String("opening_balance", req.OpeningBalance.String()))
	return created, nil
}

// postOpeningBalance posts amount onto the account's normal side, balanced by opening balance equity.
func (s *accountService) postOpeningBalance(tx portsrepo.Tx, account domain.Account, amount decimal.Decimal, date time.Time) error {
	equityID, err := s.ensureOpeningEquity(tx)
	if err != nil {
		return err
	}
	if equityID == account.AccountID {
		return fmt.Errorf("%w: opening balance equity cannot carry its own opening balance", apperrors.ErrValidation)
	}

	abs := amount.Abs()
	accountLine, equityLine := domain.DebitLine(account.AccountID, abs), domain.CreditLine(equityID, abs)
	// A positive amount increases the account, so it goes on the normal side.
	if account.AccountType.IsDebitNormal() != amount.IsPositive() {
		accountLine, equityLine = accountLine.Swapped(), equityLine.Swapped()
	}

	_, err = s.journal.postInTx(tx, domain.JournalDraft{
		Date:          date,
		Description:   fmt.Sprintf("Opening balance for %s %s", account.Code, account.Name),
		Reference:     account.AccountID,
		ReferenceType: domain.RefOpeningBalance,
		Lines:         []domain.JournalLine{accountLine, equityLine},
		IsAutomatic:   true,
	})
	return err
}

func (s *accountService) ensureOpeningEquity(tx portsrepo.Tx) (string, error) {
	acc, err := tx.FindAccountByCode(s.postings.OpeningEquity)
	if err == nil {
		return acc.AccountID, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return "", err
	}
	row := domain.OpeningEquityChartAccount(s.postings.OpeningEquity)
	equity := s.fromChart(row)
	if err := tx.SaveAccount(equity); err != nil {
		return "", err
	}
	return equity.AccountID, nil
}

func (s *accountService) fromChart(row domain.ChartAccount) domain.Account {
	now := s.now()
	return domain.Account{
		AccountID:   uuid.NewString(),
		Code:        row.Code,
		Name:        row.Name,
		AccountType: row.AccountType,
		IsActive:    true,
		IsCurrent:   row.IsCurrent,
		IsCash:      row.IsCash,
		Balance:     decimal.Zero,
		AuditFields: domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}
}

// SeedDefaultChart creates any missing account of the default chart.
func (s *accountService) SeedDefaultChart(ctx context.Context) ([]domain.Account, error) {
	var created []domain.Account
	err := s.store.Update(ctx, func(tx portsrepo.Tx) error {
		for _, row := range domain.DefaultChart {
			if _, err := tx.FindAccountByCode(row.Code); err == nil {
				continue
			}
			acc := s.fromChart(row)
			if err := tx.SaveAccount(acc); err != nil {
				return err
			}
			created = append(created, acc)
		}
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to seed default chart of accounts")
		return nil, err
	}
	s.LogInfo(ctx, "Default chart of accounts seeded", slog.Int("created", len(created)))
	return created, nil
}

// GetAccountByID retrieves a specific account by its unique identifier.
func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	var acc *domain.Account
	err := s.store.View(ctx, func(tx portsrepo.ReadTx) error {
		var err error
		acc, err = tx.FindAccountByID(accountID)
		return err
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to find account", slog.String("account_id", accountID))
		return nil, err
	}
	return acc, nil
}

// GetAccountByCode retrieves an account by its human code.
func (s *accountService) GetAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	var acc *domain.Account
	err := s.store.View(ctx, func(tx portsrepo.ReadTx) error {
		var err error
		acc, err = tx.FindAccountByCode(code)
		return err
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to find account by code", slog.String("code", code))
		return nil, err
	}
	return acc, nil
}

// ListByType returns the active accounts of one type ordered by code.
func (s *accountService) ListByType(ctx context.Context, accountType domain.AccountType) ([]domain.Account, error) {
	if !accountType.IsValid() {
		return nil, fmt.Errorf("%w: unknown account type %q", apperrors.ErrValidation, accountType)
	}
	var out []domain.Account
	err := s.store.View(ctx, func(tx portsrepo.ReadTx) error {
		for _, acc := range tx.ListAccounts() {
			if acc.IsActive && acc.AccountType == accountType {
				out = append(out, acc)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.LogDebug(ctx, "Accounts listed by type", slog.String("type", string(accountType)), slog.Int("count", len(out)))
	return out, nil
}

// ListAccounts returns the chart of accounts ordered by code.
func (s *accountService) ListAccounts(ctx context.Context, includeInactive bool) ([]domain.Account, error) {
	var out []domain.Account
	err := s.store.View(ctx, func(tx portsrepo.ReadTx) error {
		for _, acc := range tx.ListAccounts() {
			if includeInactive || acc.IsActive {
				out = append(out, acc)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateAccount updates an existing account's descriptive fields and flags.
func (s *accountService) UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest) (*domain.Account, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	var updated *domain.Account
	err := s.store.Update(ctx, func(tx portsrepo.Tx) error {
		acc, err := tx.FindAccountByID(accountID)
		if err != nil {
			return err
		}
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return fmt.Errorf("%w: account name cannot be empty", apperrors.ErrValidation)
			}
			acc.Name = name
		}
		if req.Description != nil {
			acc.Description = *req.Description
		}
		if req.IsCurrent != nil {
			acc.IsCurrent = *req.IsCurrent
		}
		if req.IsCash != nil {
			acc.IsCash = *req.IsCash
		}
		acc.LastUpdatedAt = s.now()
		if err := tx.UpdateAccount(*acc); err != nil {
			return err
		}
		updated, err = tx.FindAccountByID(accountID)
		return err
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to update account", slog.String("account_id", accountID))
		return nil, err
	}
	s.LogInfo(ctx, "Account updated successfully", slog.String("account_id", accountID))
	return updated, nil
}

// DeactivateAccount marks an account as inactive. History is kept.
func (s *accountService) DeactivateAccount(ctx context.Context, accountID string) error {
	return s.setActive(ctx, accountID, false)
}

// ActivateAccount marks an inactive account as active again.
func (s *accountService) ActivateAccount(ctx context.Context, accountID string) error {
	return s.setActive(ctx, accountID, true)
}

func (s *accountService) setActive(ctx context.Context, accountID string, active bool) error {
	var balance decimal.Decimal
	err := s.store.Update(ctx, func(tx portsrepo.Tx) error {
		acc, err := tx.FindAccountByID(accountID)
		if err != nil {
			return err
		}
		balance = acc.Balance
		acc.IsActive = active
		acc.LastUpdatedAt = s.now()
		return tx.UpdateAccount(*acc)
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to change account status", slog.String("account_id", accountID), slog.Bool("active", active))
		return err
	}
	if !active && !balance.IsZero() {
		s.LogWarn(ctx, "Deactivated account still carries a balance; it is excluded from reports",
			slog.String("account_id", accountID),
			slog.String("balance", balance.String()))
	}
	s.LogInfo(ctx, "Account status changed", slog.String("account_id", accountID), slog.Bool("active", active))
	return nil
}

// DeleteAccount removes an account that no journal entry or tax rate references.
func (s *accountService) DeleteAccount(ctx context.Context, accountID string) error {
	err := s.store.Update(ctx, func(tx portsrepo.Tx) error {
		if _, err := tx.FindAccountByID(accountID); err != nil {
			return err
		}
		if n := tx.CountEntriesForAccount(accountID); n > 0 {
			return fmt.Errorf("%w: %d journal entries reference account %s", apperrors.ErrAccountHasHistory, n, accountID)
		}
		for _, rate := range tx.ListTaxRates() {
			if rate.AccountID == accountID {
				return fmt.Errorf("%w: tax rate %s posts to account %s", apperrors.ErrConflict, rate.Name, accountID)
			}
		}
		return tx.DeleteAccount(accountID)
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to delete account", slog.String("account_id", accountID))
		return err
	}
	s.LogInfo(ctx, "Account deleted", slog.String("account_id", accountID))
	return nil
}
