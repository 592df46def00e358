package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedAccounts(t *testing.T, s *Store) {
	t.Helper()
	err := s.Update(context.Background(), func(tx repositories.Tx) error {
		if err := tx.SaveAccount(domain.Account{AccountID: "cash", Code: "1-101", AccountType: domain.Asset, IsActive: true}); err != nil {
			return err
		}
		return tx.SaveAccount(domain.Account{AccountID: "rev", Code: "4-101", AccountType: domain.Revenue, IsActive: true})
	})
	require.NoError(t, err)
}

func TestStore_UpdateRollsBackOnError(t *testing.T) {
	s := NewStore()
	seedAccounts(t, s)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Update(ctx, func(tx repositories.Tx) error {
		if _, err := tx.AppendEntry(domain.JournalEntry{EntryID: "e1"}); err != nil {
			return err
		}
		if err := tx.ApplyBalanceChanges(map[string]decimal.Decimal{"cash": decimal.NewFromInt(10)}, time.Now()); err != nil {
			return err
		}
		if err := tx.SaveAccount(domain.Account{AccountID: "x", Code: "9-999"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_ = s.View(ctx, func(tx repositories.ReadTx) error {
		assert.Empty(t, tx.ListEntries())
		cash, err := tx.FindAccountByID("cash")
		require.NoError(t, err)
		assert.True(t, cash.Balance.IsZero())
		_, err = tx.FindAccountByCode("9-999")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		return nil
	})

	// Sequence numbers are not consumed by a rolled back append.
	err = s.Update(ctx, func(tx repositories.Tx) error {
		e, err := tx.AppendEntry(domain.JournalEntry{EntryID: "e2"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), e.Sequence)
		return nil
	})
	require.NoError(t, err)
}

func TestStore_UpdateRollsBackOnPanic(t *testing.T) {
	s := NewStore()
	seedAccounts(t, s)
	ctx := context.Background()

	assert.Panics(t, func() {
		_ = s.Update(ctx, func(tx repositories.Tx) error {
			_ = tx.SetBalance("cash", decimal.NewFromInt(99))
			panic("mid-update")
		})
	})

	_ = s.View(ctx, func(tx repositories.ReadTx) error {
		cash, _ := tx.FindAccountByID("cash")
		assert.True(t, cash.Balance.IsZero())
		return nil
	})
}

func TestStore_ViewIsReadOnly(t *testing.T) {
	s := NewStore()
	seedAccounts(t, s)

	err := s.View(context.Background(), func(tx repositories.ReadTx) error {
		w, ok := tx.(repositories.Tx)
		require.True(t, ok)
		return w.SetBalance("cash", decimal.NewFromInt(1))
	})
	assert.ErrorIs(t, err, apperrors.ErrInternal)
}

func TestStore_DuplicateCode(t *testing.T) {
	s := NewStore()
	seedAccounts(t, s)

	err := s.Update(context.Background(), func(tx repositories.Tx) error {
		return tx.SaveAccount(domain.Account{AccountID: "other", Code: "1-101"})
	})
	assert.ErrorIs(t, err, apperrors.ErrDuplicateCode)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestStore_EntriesAreCopies(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	lines := []domain.JournalLine{domain.DebitLine("cash", decimal.NewFromInt(5)), domain.CreditLine("rev", decimal.NewFromInt(5))}
	require.NoError(t, s.Update(ctx, func(tx repositories.Tx) error {
		_, err := tx.AppendEntry(domain.JournalEntry{EntryID: "e1", Lines: lines})
		return err
	}))
	lines[0].AccountID = "mutated"

	_ = s.View(ctx, func(tx repositories.ReadTx) error {
		e, err := tx.FindEntryByID("e1")
		require.NoError(t, err)
		assert.Equal(t, "cash", e.Lines[0].AccountID)
		e.Lines[0].AccountID = "mutated-again"
		again, _ := tx.FindEntryByID("e1")
		assert.Equal(t, "cash", again.Lines[0].AccountID)
		return nil
	})
}

func TestStore_Load(t *testing.T) {
	s := NewStore()
	seedAccounts(t, s)
	snap := &domain.Snapshot{
		Accounts:       []domain.Account{{AccountID: "bank", Code: "1-102", AccountType: domain.Asset}},
		JournalEntries: []domain.JournalEntry{{EntryID: "e7", Sequence: 7}},
		TaxSettings:    domain.TaxSettings{Inclusive: true},
	}
	ctx := context.Background()
	require.NoError(t, s.Load(ctx, snap))

	require.NoError(t, s.Update(ctx, func(tx repositories.Tx) error {
		_, err := tx.FindAccountByID("cash")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.True(t, tx.GetTaxSettings().Inclusive)
		e, err := tx.AppendEntry(domain.JournalEntry{EntryID: "e8"})
		require.NoError(t, err)
		assert.Equal(t, int64(8), e.Sequence)
		return nil
	}))
}

func TestStore_CancelledContext(t *testing.T) {
	s := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.View(ctx, func(tx repositories.ReadTx) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStore_InvoiceSequence(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	next := func() int64 {
		var n int64
		require.NoError(t, s.Update(ctx, func(tx repositories.Tx) error {
			var err error
			n, err = tx.NextInvoiceSequence(domain.InvoiceSale)
			return err
		}))
		return n
	}

	assert.Equal(t, int64(1), next())
	assert.Equal(t, int64(2), next())

	boom := errors.New("boom")
	err := s.Update(ctx, func(tx repositories.Tx) error {
		n, err := tx.NextInvoiceSequence(domain.InvoiceSale)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, int64(3), next(), "a rolled back number is handed out again")

	_ = s.View(ctx, func(tx repositories.ReadTx) error {
		assert.Equal(t, map[domain.InvoiceType]int64{domain.InvoiceSale: 3}, tx.InvoiceSequences())
		return nil
	})

	require.NoError(t, s.Load(ctx, &domain.Snapshot{
		InvoiceSequences: map[domain.InvoiceType]int64{domain.InvoicePurchase: 41},
	}))
	require.NoError(t, s.Update(ctx, func(tx repositories.Tx) error {
		n, err := tx.NextInvoiceSequence(domain.InvoicePurchase)
		assert.Equal(t, int64(42), n)
		return err
	}))
}

func TestStore_ConcurrentWritesAndReads(t *testing.T) {
	s := NewStore()
	seedAccounts(t, s)
	ctx := context.Background()
	const writes = 200
	amount := decimal.NewFromInt(5)

	var wg sync.WaitGroup
	done := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(done)
		for i := 0; i < writes; i++ {
			err := s.Update(ctx, func(tx repositories.Tx) error {
				if _, err := tx.AppendEntry(domain.JournalEntry{EntryID: fmt.Sprintf("e%d", i), Lines: []domain.JournalLine{
					domain.DebitLine("cash", amount),
					domain.CreditLine("rev", amount),
				}}); err != nil {
					return err
				}
				// Applied in two steps so a torn read would see them apart.
				if err := tx.ApplyBalanceChanges(map[string]decimal.Decimal{"cash": amount}, time.Now()); err != nil {
					return err
				}
				return tx.ApplyBalanceChanges(map[string]decimal.Decimal{"rev": amount.Neg()}, time.Now())
			})
			assert.NoError(t, err)
		}
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				_ = s.View(ctx, func(tx repositories.ReadTx) error {
					cash, err := tx.FindAccountByID("cash")
					if !assert.NoError(t, err) {
						return err
					}
					rev, err := tx.FindAccountByID("rev")
					if !assert.NoError(t, err) {
						return err
					}
					assert.True(t, cash.Balance.Add(rev.Balance).IsZero(), "cash %s rev %s", cash.Balance, rev.Balance)
					entries := tx.ListEntries()
					assert.True(t, cash.Balance.Equal(amount.Mul(decimal.NewFromInt(int64(len(entries))))))
					return nil
				})
			}
		}()
	}
	wg.Wait()

	_ = s.View(ctx, func(tx repositories.ReadTx) error {
		assert.Len(t, tx.ListEntries(), writes)
		cash, _ := tx.FindAccountByID("cash")
		assert.True(t, cash.Balance.Equal(decimal.NewFromInt(5*writes)))
		return nil
	})
}
