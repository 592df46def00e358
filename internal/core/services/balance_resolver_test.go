package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/SscSPs/ledger_core/internal/adapters/memory"
	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_core/internal/core/services"
)

type BalanceResolverTestSuite struct {
	LedgerTestSuite
}

func (s *BalanceResolverTestSuite) TestBalanceAsOf_Historical() {
	s.post(day(1, 5), "1-101", "3-101", "100")
	s.post(day(2, 5), "6-101", "1-101", "30")
	s.post(day(3, 5), "1-101", "4-101", "70")

	cash := s.id("1-101")
	cases := []struct {
		cutoff   string
		expected string
	}{
		{"2026-01-04T00:00:00Z", "0"},
		{"2026-01-05T10:00:00Z", "100"}, // inclusive of entries dated exactly at the cutoff
		{"2026-02-28T00:00:00Z", "70"},
		{"2026-03-31T00:00:00Z", "140"},
	}
	for _, tc := range cases {
		cutoff := mustTime(tc.cutoff)
		balance, err := s.svc.Balance.BalanceAsOf(s.ctx, cash, cutoff)
		s.Require().NoError(err)
		s.assertAmount(tc.expected, balance, tc.cutoff)
	}

	_, err := s.svc.Balance.BalanceAsOf(s.ctx, "missing", testNow)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *BalanceResolverTestSuite) TestVerifyAndRebuildCache() {
	s.post(day(1, 5), "1-101", "3-101", "100")

	check, err := s.svc.Balance.VerifyCache(s.ctx)
	s.Require().NoError(err)
	s.True(check.Consistent)
	s.Equal(len(domain.DefaultChart), check.CheckedAccounts)

	cash := s.id("1-101")
	err = s.store.Update(s.ctx, func(tx portsrepo.Tx) error {
		return tx.SetBalance(cash, decimal.NewFromInt(7))
	})
	s.Require().NoError(err)

	check, err = s.svc.Balance.VerifyCache(s.ctx)
	s.Require().NoError(err)
	s.False(check.Consistent)
	s.Require().Len(check.Warnings, 1)
	w := check.Warnings[0]
	s.Equal(domain.WarnCachedBalanceMismatch, w.Code)
	s.Equal(cash, w.AccountID)
	s.assertAmount("100", w.Expected)
	s.assertAmount("7", w.Actual)
	s.assertAmount("-93", w.Difference)

	rebuilt, err := s.svc.Balance.RebuildCache(s.ctx)
	s.Require().NoError(err)
	s.Len(rebuilt.Warnings, 1)

	current, err := s.svc.Balance.CurrentBalance(s.ctx, cash)
	s.Require().NoError(err)
	s.assertAmount("100", current)

	check, err = s.svc.Balance.VerifyCache(s.ctx)
	s.Require().NoError(err)
	s.True(check.Consistent)
}

func (s *BalanceResolverTestSuite) TestConcurrentPostingAndReads() {
	cash, equity := s.id("1-101"), s.id("3-101")
	const posts = 100
	ten := amt("10")

	var wg sync.WaitGroup
	done := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(done)
		for i := 0; i < posts; i++ {
			entry, err := s.svc.Journal.Post(s.ctx, domain.JournalDraft{
				Date:          day(1, 1+i%28),
				Description:   "concurrent posting",
				ReferenceType: domain.RefAdjustment,
				Lines:         []domain.JournalLine{domain.DebitLine(cash, ten), domain.CreditLine(equity, ten)},
			})
			if !s.NoError(err) {
				return
			}
			if i%10 == 0 {
				_, err = s.svc.Journal.Reverse(s.ctx, entry.EntryID, "undo")
				s.NoError(err)
			}
		}
	}()

	for r := 0; r < 3; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cutoff := day(12, 31)
			for {
				select {
				case <-done:
					return
				default:
				}
				tb, err := s.svc.Reporting.TrialBalance(s.ctx, nil)
				if s.NoError(err) {
					s.True(tb.TotalDebit.Equal(tb.TotalCredit), "debits %s credits %s", tb.TotalDebit, tb.TotalCredit)
					s.True(tb.Balanced)
				}
				balance, err := s.svc.Balance.BalanceAsOf(s.ctx, cash, cutoff)
				if s.NoError(err) {
					s.False(balance.IsNegative())
					s.True(balance.Mod(ten).IsZero(), "partial posting visible: %s", balance)
				}
			}
		}()
	}
	wg.Wait()

	check, err := s.svc.Balance.VerifyCache(s.ctx)
	s.Require().NoError(err)
	s.True(check.Consistent)
	s.assertAmount("900", s.cached("1-101"))
	s.assertAmount("900", s.cached("3-101"))
}

func TestBalanceResolver(t *testing.T) {
	suite.Run(t, new(BalanceResolverTestSuite))
}

// BenchmarkBalanceAsOf measures replay cost over a long journal.
func BenchmarkBalanceAsOf(b *testing.B) {
	ctx := context.Background()
	svc := services.NewServiceContainer(memory.NewStore(), services.WithClock(func() time.Time { return testNow }))
	if _, err := svc.Account.SeedDefaultChart(ctx); err != nil {
		b.Fatal(err)
	}
	cash, err := svc.Account.GetAccountByCode(ctx, "1-101")
	if err != nil {
		b.Fatal(err)
	}
	revenue, err := svc.Account.GetAccountByCode(ctx, "4-101")
	if err != nil {
		b.Fatal(err)
	}
	for i := 0; i < 5000; i++ {
		_, err := svc.Journal.Post(ctx, domain.JournalDraft{
			Date:        day(time.Month(1+i%3), 1+i%28),
			Description: "bench",
			Lines: []domain.JournalLine{
				domain.DebitLine(cash.AccountID, amt("1.25")),
				domain.CreditLine(revenue.AccountID, amt("1.25")),
			},
		})
		if err != nil {
			b.Fatal(err)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := svc.Balance.BalanceAsOf(ctx, cash.AccountID, testNow); err != nil {
			b.Fatal(err)
		}
	}
}
