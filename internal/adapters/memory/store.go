package memory

import (
	"context"
	"sync"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/core/ports/repositories"
)

// Store is an in-memory ledger with a single writer and many readers.
// Each Store is an independent ledger.
type Store struct {
	mu    sync.RWMutex
	state *state
}

var _ repositories.LedgerStore = (*Store)(nil)

// NewStore creates an empty ledger store.
func NewStore() *Store {
	return &Store{state: newState()}
}

// View runs fn under the read lock, so fn sees no partially applied update.
func (s *Store) View(ctx context.Context, fn func(tx repositories.ReadTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&txn{state: s.state})
}

// Update runs fn under the write lock. Every write is recorded in an undo log
// which is replayed backwards if fn fails or panics.
func (s *Store) Update(ctx context.Context, fn func(tx repositories.Tx) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &txn{state: s.state, writable: true}
	defer func() {
		if r := recover(); r != nil {
			tx.rollback()
			panic(r)
		}
	}()
	if err = fn(tx); err != nil {
		tx.rollback()
		return err
	}
	tx.undo = nil
	return nil
}

// Load replaces the whole state with the snapshot contents.
func (s *Store) Load(ctx context.Context, snapshot *domain.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	next := newState()
	for _, a := range snapshot.Accounts {
		next.accounts[a.AccountID] = a
		next.codes[a.Code] = a.AccountID
	}
	for _, e := range snapshot.JournalEntries {
		e = cloneEntry(e)
		next.entryIndex[e.EntryID] = len(next.entries)
		next.entries = append(next.entries, e)
		if e.Sequence > next.lastSequence {
			next.lastSequence = e.Sequence
		}
	}
	for _, c := range snapshot.Counterparties {
		next.counterparties[c.CounterpartyID] = c
	}
	for _, inv := range snapshot.Invoices {
		next.invoices[inv.InvoiceID] = cloneInvoice(inv)
	}
	for t, n := range snapshot.InvoiceSequences {
		next.invoiceSeq[t] = n
	}
	next.payments = append(next.payments, snapshot.Payments...)
	for _, r := range snapshot.TaxRates {
		next.taxRates[r.TaxRateID] = r
	}
	next.taxSettings = snapshot.TaxSettings

	s.mu.Lock()
	s.state = next
	s.mu.Unlock()
	return nil
}

type state struct {
	accounts       map[string]domain.Account
	codes          map[string]string
	entries        []domain.JournalEntry
	entryIndex     map[string]int
	lastSequence   int64
	counterparties map[string]domain.Counterparty
	invoices       map[string]domain.Invoice
	invoiceSeq     map[domain.InvoiceType]int64
	payments       []domain.Payment
	taxRates       map[string]domain.TaxRate
	taxSettings    domain.TaxSettings
}

func newState() *state {
	return &state{
		accounts:       make(map[string]domain.Account),
		codes:          make(map[string]string),
		entryIndex:     make(map[string]int),
		counterparties: make(map[string]domain.Counterparty),
		invoices:       make(map[string]domain.Invoice),
		invoiceSeq:     make(map[domain.InvoiceType]int64),
		taxRates:       make(map[string]domain.TaxRate),
	}
}

func cloneEntry(e domain.JournalEntry) domain.JournalEntry {
	lines := make([]domain.JournalLine, len(e.Lines))
	copy(lines, e.Lines)
	e.Lines = lines
	return e
}

func cloneInvoice(inv domain.Invoice) domain.Invoice {
	if inv.Items != nil {
		items := make([]domain.InvoiceItem, len(inv.Items))
		copy(items, inv.Items)
		inv.Items = items
	}
	return inv
}
