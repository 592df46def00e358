package services_test

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/dto"
)

type JournalServiceTestSuite struct {
	LedgerTestSuite
}

func (s *JournalServiceTestSuite) TestPost_Success() {
	entry := s.post(day(1, 5), "1-101", "3-101", "100")

	s.Equal(int64(1), entry.Sequence)
	s.NotEmpty(entry.EntryID)
	s.assertAmount("100", s.cached("1-101"))
	s.assertAmount("100", s.cached("3-101"))
}

func (s *JournalServiceTestSuite) TestPost_UnbalancedRejected() {
	_, err := s.svc.Journal.Post(s.ctx, domain.JournalDraft{
		Date:        day(1, 5),
		Description: "unbalanced",
		Lines: []domain.JournalLine{
			domain.DebitLine(s.id("1-101"), amt("100")),
			domain.CreditLine(s.id("3-101"), amt("99.99")),
		},
	})

	var unbalanced *apperrors.UnbalancedEntryError
	s.Require().True(errors.As(err, &unbalanced))
	s.ErrorIs(err, apperrors.ErrValidation)
	s.assertAmount("100", unbalanced.DebitTotal)
	s.assertAmount("99.99", unbalanced.CreditTotal)
	s.assertAmount("0", s.cached("1-101"))

	page, err := s.svc.Journal.ListEntries(s.ctx, dto.ListEntriesParams{Limit: 10})
	s.Require().NoError(err)
	s.Empty(page.Entries)
}

func (s *JournalServiceTestSuite) TestPost_Rejections() {
	cash, capital := s.id("1-101"), s.id("3-101")
	lines := []domain.JournalLine{domain.DebitLine(cash, amt("10")), domain.CreditLine(capital, amt("10"))}

	cases := []struct {
		name  string
		draft domain.JournalDraft
		kind  error
	}{
		{"missing description", domain.JournalDraft{Date: day(1, 1), Lines: lines}, apperrors.ErrValidation},
		{"missing date", domain.JournalDraft{Description: "x", Lines: lines}, apperrors.ErrValidation},
		{"single line", domain.JournalDraft{Date: day(1, 1), Description: "x", Lines: lines[:1]}, apperrors.ErrValidation},
		{"negative amount", domain.JournalDraft{Date: day(1, 1), Description: "x", Lines: []domain.JournalLine{
			domain.DebitLine(cash, amt("-10")), domain.CreditLine(capital, amt("-10")),
		}}, apperrors.ErrValidation},
		{"unknown account", domain.JournalDraft{Date: day(1, 1), Description: "x", Lines: []domain.JournalLine{
			domain.DebitLine("missing", amt("10")), domain.CreditLine(capital, amt("10")),
		}}, apperrors.ErrNotFound},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			_, err := s.svc.Journal.Post(s.ctx, tc.draft)
			s.ErrorIs(err, tc.kind)
		})
	}
	s.assertAmount("0", s.cached("1-101"))
}

func (s *JournalServiceTestSuite) TestPost_InactiveAccountRejected() {
	s.Require().NoError(s.svc.Account.DeactivateAccount(s.ctx, s.id("1-105")))

	_, err := s.svc.Journal.Post(s.ctx, domain.JournalDraft{
		Date:        day(1, 5),
		Description: "prepay",
		Lines: []domain.JournalLine{
			domain.DebitLine(s.id("1-105"), amt("10")),
			domain.CreditLine(s.id("1-101"), amt("10")),
		},
	})
	s.ErrorIs(err, apperrors.ErrAccountInactive)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *JournalServiceTestSuite) TestReverse_RoundTrip() {
	before := day(1, 31)
	s.post(day(1, 10), "1-101", "3-101", "500")
	entry := s.post(day(2, 1), "6-101", "1-101", "120")

	reversal, err := s.svc.Journal.Reverse(s.ctx, entry.EntryID, "wrong month")
	s.Require().NoError(err)
	s.Equal(entry.EntryID, reversal.ReversalOf)
	s.Equal(entry.Date, reversal.Date)
	s.Equal("Reversal of Journal: test posting (wrong month)", reversal.Description)

	for _, code := range []string{"1-101", "6-101"} {
		was, err := s.svc.Balance.BalanceAsOf(s.ctx, s.id(code), before)
		s.Require().NoError(err)
		now, err := s.svc.Balance.BalanceAsOf(s.ctx, s.id(code), testNow)
		s.Require().NoError(err)
		s.True(was.Equal(now), "balance of %s changed after round trip", code)
		s.True(now.Equal(s.cached(code)))
	}

	original, err := s.svc.Journal.GetEntry(s.ctx, entry.EntryID)
	s.Require().NoError(err)
	s.True(original.IsReversed)
	s.Equal(reversal.EntryID, original.ReversedBy)

	_, err = s.svc.Journal.Reverse(s.ctx, entry.EntryID, "again")
	s.ErrorIs(err, apperrors.ErrAlreadyReversed)
	s.ErrorIs(err, apperrors.ErrConflict)

	_, err = s.svc.Journal.Reverse(s.ctx, reversal.EntryID, "undo the undo")
	s.ErrorIs(err, apperrors.ErrReversalEntry)
}

func (s *JournalServiceTestSuite) TestRecordSaleAndPurchase() {
	purchase, err := s.svc.Journal.RecordPurchase(s.ctx, dto.RecordPurchaseRequest{
		Amount: amt("100"),
		Paid:   true,
		Method: domain.PaymentCash,
		Date:   day(1, 5),
	})
	s.Require().NoError(err)
	s.Equal(domain.RefPurchase, purchase.ReferenceType)
	s.assertAmount("-100", s.cached("1-101"))
	s.assertAmount("100", s.cached("1-104"))

	sale, err := s.svc.Journal.RecordSale(s.ctx, dto.RecordSaleRequest{
		Subtotal:  amt("150"),
		TaxAmount: amt("15"),
		COGS:      amt("100"),
		Method:    domain.PaymentCash,
		Date:      day(1, 6),
		Reference: "POS-1",
	})
	s.Require().NoError(err)
	s.Len(sale.Lines, 5)
	s.assertAmount("65", s.cached("1-101"))
	s.assertAmount("150", s.cached("4-101"))
	s.assertAmount("15", s.cached("2-102"))
	s.assertAmount("100", s.cached("5-101"))
	s.assertAmount("0", s.cached("1-104"))

	found, err := s.svc.Journal.FindByReference(s.ctx, "POS-1")
	s.Require().NoError(err)
	s.Len(found, 1)

	_, err = s.svc.Journal.RecordPurchase(s.ctx, dto.RecordPurchaseRequest{Amount: amt("5"), Paid: true, Date: day(1, 7)})
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *JournalServiceTestSuite) TestRecordPurchase_OnCredit() {
	_, err := s.svc.Journal.RecordPurchase(s.ctx, dto.RecordPurchaseRequest{
		Amount:    amt("200"),
		TaxAmount: amt("20"),
		Date:      day(1, 5),
	})
	s.Require().NoError(err)
	s.assertAmount("220", s.cached("2-101"))
	s.assertAmount("200", s.cached("1-104"))
	s.assertAmount("-20", s.cached("2-102"))
	s.assertAmount("0", s.cached("1-101"))
}

func (s *JournalServiceTestSuite) TestListEntries_Pagination() {
	// Posted out of date order; pages follow business date.
	for _, d := range []int{5, 1, 4, 2, 3} {
		s.post(day(1, d), "1-101", "3-101", "1")
	}

	var dates []int
	var token *string
	for pages := 0; ; pages++ {
		s.Require().Less(pages, 5)
		page, err := s.svc.Journal.ListEntries(s.ctx, dto.ListEntriesParams{Limit: 2, NextToken: token})
		s.Require().NoError(err)
		for _, e := range page.Entries {
			dates = append(dates, e.Date.Day())
		}
		if page.NextToken == nil {
			break
		}
		token = page.NextToken
	}
	s.Equal([]int{1, 2, 3, 4, 5}, dates)

	bad := "not-a-token"
	_, err := s.svc.Journal.ListEntries(s.ctx, dto.ListEntriesParams{Limit: 2, NextToken: &bad})
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *JournalServiceTestSuite) TestProperty_UnbalancedDraftsNeverMutate() {
	r := rand.New(rand.NewPCG(7, 11))
	ids := s.chartIDs()
	for i := 0; i < 20; i++ {
		_, err := s.svc.Journal.Post(s.ctx, s.randomDraft(r, ids, false))
		s.Require().NoError(err)
	}
	before, err := s.svc.Snapshot.Snapshot(s.ctx)
	s.Require().NoError(err)

	for i := 0; i < 200; i++ {
		_, err := s.svc.Journal.Post(s.ctx, s.randomDraft(r, ids, true))
		var unbalanced *apperrors.UnbalancedEntryError
		s.Require().True(errors.As(err, &unbalanced), "draft %d was accepted", i)
	}

	after, err := s.svc.Snapshot.Snapshot(s.ctx)
	s.Require().NoError(err)
	s.Equal(before, after)
}

func (s *JournalServiceTestSuite) TestProperty_CacheMatchesReplay() {
	r := rand.New(rand.NewPCG(42, 1))
	ids := s.chartIDs()
	var posted []string
	for i := 0; i < 300; i++ {
		entry, err := s.svc.Journal.Post(s.ctx, s.randomDraft(r, ids, false))
		s.Require().NoError(err)
		debit, credit := entry.Totals()
		s.Require().True(debit.Equal(credit))
		posted = append(posted, entry.EntryID)
		if r.IntN(10) == 0 {
			victim := posted[r.IntN(len(posted))]
			_, err := s.svc.Journal.Reverse(s.ctx, victim, "random")
			if err != nil {
				s.Require().ErrorIs(err, apperrors.ErrAlreadyReversed)
			}
		}
	}

	for _, id := range ids {
		replayed, err := s.svc.Balance.BalanceAsOf(s.ctx, id, testNow)
		s.Require().NoError(err)
		cached, err := s.svc.Balance.CurrentBalance(s.ctx, id)
		s.Require().NoError(err)
		s.True(replayed.Equal(cached), "account %s: replay %s, cache %s", id, replayed, cached)
	}
	check, err := s.svc.Balance.VerifyCache(s.ctx)
	s.Require().NoError(err)
	s.True(check.Consistent)
}

func TestJournalService(t *testing.T) {
	suite.Run(t, new(JournalServiceTestSuite))
}
