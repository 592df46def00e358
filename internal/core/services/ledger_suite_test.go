package services_test

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/SscSPs/ledger_core/internal/adapters/memory"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/core/services"
)

var testNow = time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)

func day(month time.Month, d int) time.Time {
	return time.Date(2026, month, d, 10, 0, 0, 0, time.UTC)
}

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func amt(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// LedgerTestSuite runs every test against a fresh in-memory ledger seeded
// with the default chart of accounts.
type LedgerTestSuite struct {
	suite.Suite
	ctx   context.Context
	store *memory.Store
	svc   *portssvc.ServiceContainer
}

func (s *LedgerTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.NewStore()
	s.svc = services.NewServiceContainer(s.store, services.WithClock(func() time.Time { return testNow }))
	_, err := s.svc.Account.SeedDefaultChart(s.ctx)
	s.Require().NoError(err)
}

// id returns the account id behind a chart code.
func (s *LedgerTestSuite) id(code string) string {
	acc, err := s.svc.Account.GetAccountByCode(s.ctx, code)
	s.Require().NoError(err)
	return acc.AccountID
}

// cached returns the cached balance of the account with the given code.
func (s *LedgerTestSuite) cached(code string) decimal.Decimal {
	acc, err := s.svc.Account.GetAccountByCode(s.ctx, code)
	s.Require().NoError(err)
	return acc.Balance
}

func (s *LedgerTestSuite) assertAmount(expected string, actual decimal.Decimal, msgAndArgs ...any) {
	s.Truef(amt(expected).Equal(actual), "expected %s, got %s %v", expected, actual.String(), msgAndArgs)
}

// post posts a two-line entry: debit one code, credit another.
func (s *LedgerTestSuite) post(date time.Time, debitCode, creditCode string, amount string) *domain.JournalEntry {
	entry, err := s.svc.Journal.Post(s.ctx, domain.JournalDraft{
		Date:          date,
		Description:   "test posting",
		ReferenceType: domain.RefAdjustment,
		Lines: []domain.JournalLine{
			domain.DebitLine(s.id(debitCode), amt(amount)),
			domain.CreditLine(s.id(creditCode), amt(amount)),
		},
	})
	s.Require().NoError(err)
	return entry
}

// randomDraft builds a draft over active chart accounts. When unbalanced is
// set the debit side is inflated by one cent.
func (s *LedgerTestSuite) randomDraft(r *rand.Rand, ids []string, unbalanced bool) domain.JournalDraft {
	draft := domain.JournalDraft{
		Date:          day(time.Month(1+r.IntN(3)), 1+r.IntN(28)),
		Description:   "random",
		ReferenceType: domain.RefAdjustment,
	}
	total := decimal.Zero
	for n := 1 + r.IntN(3); n > 0; n-- {
		a := decimal.New(r.Int64N(100000)+1, -2)
		total = total.Add(a)
		draft.Lines = append(draft.Lines, domain.DebitLine(ids[r.IntN(len(ids))], a))
	}
	if unbalanced {
		draft.Lines[0].Debit = draft.Lines[0].Debit.Add(decimal.New(1, -2))
	}
	first := total
	if total.GreaterThan(decimal.New(1, -2)) && r.IntN(2) == 0 {
		first = total.Div(decimal.NewFromInt(2)).Round(2)
		draft.Lines = append(draft.Lines, domain.CreditLine(ids[r.IntN(len(ids))], total.Sub(first)))
	}
	draft.Lines = append(draft.Lines, domain.CreditLine(ids[r.IntN(len(ids))], first))
	return draft
}

func (s *LedgerTestSuite) chartIDs() []string {
	accounts, err := s.svc.Account.ListAccounts(s.ctx, false)
	s.Require().NoError(err)
	ids := make([]string, len(accounts))
	for i, a := range accounts {
		ids[i] = a.AccountID
	}
	return ids
}
