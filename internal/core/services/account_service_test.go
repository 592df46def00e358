package services_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/dto"
)

type AccountServiceTestSuite struct {
	LedgerTestSuite
}

func (s *AccountServiceTestSuite) TestSeedDefaultChart_Idempotent() {
	created, err := s.svc.Account.SeedDefaultChart(s.ctx)
	s.Require().NoError(err)
	s.Empty(created)

	accounts, err := s.svc.Account.ListAccounts(s.ctx, true)
	s.Require().NoError(err)
	s.Len(accounts, len(domain.DefaultChart))
	s.Equal("1-101", accounts[0].Code)
	s.True(accounts[0].IsCash)
	s.True(accounts[0].IsCurrent)
}

func (s *AccountServiceTestSuite) TestAddAccount_Success() {
	acc, err := s.svc.Account.AddAccount(s.ctx, dto.CreateAccountRequest{
		Code:        "1-106",
		Name:        " Petty Cash ",
		AccountType: domain.Asset,
		IsCurrent:   true,
		IsCash:      true,
	})
	s.Require().NoError(err)
	s.Equal("Petty Cash", acc.Name)
	s.True(acc.IsActive)
	s.assertAmount("0", acc.Balance)
	s.Equal(testNow, acc.CreatedAt)
}

func (s *AccountServiceTestSuite) TestAddAccount_DuplicateCode() {
	_, err := s.svc.Account.AddAccount(s.ctx, dto.CreateAccountRequest{Code: "1-101", Name: "Other Cash", AccountType: domain.Asset})
	s.ErrorIs(err, apperrors.ErrDuplicateCode)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *AccountServiceTestSuite) TestAddAccount_InvalidType() {
	_, err := s.svc.Account.AddAccount(s.ctx, dto.CreateAccountRequest{Code: "9-999", Name: "Odd", AccountType: "INCOME"})
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *AccountServiceTestSuite) TestAddAccount_OpeningBalancePostsAgainstEquity() {
	opening := day(1, 1)
	loan, err := s.svc.Account.AddAccount(s.ctx, dto.CreateAccountRequest{
		Code:           "2-202",
		Name:           "Vehicle Loan",
		AccountType:    domain.Liability,
		OpeningBalance: amt("5000"),
		OpeningDate:    &opening,
	})
	s.Require().NoError(err)
	s.assertAmount("5000", loan.Balance)
	s.assertAmount("-5000", s.cached("3-103"))

	entries, err := s.svc.Journal.FindByReference(s.ctx, loan.AccountID)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(domain.RefOpeningBalance, entries[0].ReferenceType)
	s.Equal(opening, entries[0].Date)

	overdraft, err := s.svc.Account.AddAccount(s.ctx, dto.CreateAccountRequest{
		Code:           "1-107",
		Name:           "Overdrawn Account",
		AccountType:    domain.Asset,
		OpeningBalance: amt("-200"),
	})
	s.Require().NoError(err)
	s.assertAmount("-200", overdraft.Balance)
	s.assertAmount("-5200", s.cached("3-103"))

	sheet, err := s.svc.Reporting.BalanceSheet(s.ctx, nil)
	s.Require().NoError(err)
	s.True(sheet.Balanced)
}

func (s *AccountServiceTestSuite) TestUpdateAccount() {
	name := "Main Bank"
	isCash := false
	updated, err := s.svc.Account.UpdateAccount(s.ctx, s.id("1-102"), dto.UpdateAccountRequest{Name: &name, IsCash: &isCash})
	s.Require().NoError(err)
	s.Equal("Main Bank", updated.Name)
	s.False(updated.IsCash)
	s.True(updated.IsCurrent)

	empty := "  "
	_, err = s.svc.Account.UpdateAccount(s.ctx, s.id("1-102"), dto.UpdateAccountRequest{Name: &empty})
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.svc.Account.UpdateAccount(s.ctx, "missing", dto.UpdateAccountRequest{Name: &name})
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *AccountServiceTestSuite) TestDeactivateAndActivate() {
	id := s.id("6-104")
	s.Require().NoError(s.svc.Account.DeactivateAccount(s.ctx, id))

	expenses, err := s.svc.Account.ListByType(s.ctx, domain.Expense)
	s.Require().NoError(err)
	s.Len(expenses, 3)
	active, err := s.svc.Account.ListAccounts(s.ctx, false)
	s.Require().NoError(err)
	s.Len(active, len(domain.DefaultChart)-1)

	s.Require().NoError(s.svc.Account.ActivateAccount(s.ctx, id))
	expenses, err = s.svc.Account.ListByType(s.ctx, domain.Expense)
	s.Require().NoError(err)
	s.Len(expenses, 4)

	_, err = s.svc.Account.ListByType(s.ctx, "INCOME")
	s.ErrorIs(err, apperrors.ErrValidation)
	s.ErrorIs(s.svc.Account.DeactivateAccount(s.ctx, "missing"), apperrors.ErrNotFound)
}

func (s *AccountServiceTestSuite) TestDeleteAccount() {
	s.post(day(1, 5), "1-101", "3-101", "10")

	err := s.svc.Account.DeleteAccount(s.ctx, s.id("1-101"))
	s.ErrorIs(err, apperrors.ErrAccountHasHistory)
	s.ErrorIs(err, apperrors.ErrConflict)

	_, err = s.svc.Tax.CreateTaxRate(s.ctx, dto.CreateTaxRateRequest{Name: "GST", Rate: amt("0.1")})
	s.Require().NoError(err)
	s.ErrorIs(s.svc.Account.DeleteAccount(s.ctx, s.id("2-102")), apperrors.ErrConflict)

	unused := s.id("6-102")
	s.Require().NoError(s.svc.Account.DeleteAccount(s.ctx, unused))
	_, err = s.svc.Account.GetAccountByID(s.ctx, unused)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func TestAccountService(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}
