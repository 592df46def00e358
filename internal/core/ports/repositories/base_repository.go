package repositories

import (
	"context"

	"github.com/SscSPs/ledger_core/internal/core/domain"
)

// ReadTx is a snapshot-consistent read view of one ledger.
type ReadTx interface {
	AccountReader
	JournalReader
	CounterpartyReader
	InvoiceReader
	PaymentReader
	TaxReader
}

// Tx is an exclusive read-write view of one ledger. Writes made through a Tx
// become visible to readers only when the enclosing Update returns nil.
type Tx interface {
	ReadTx
	AccountWriter
	JournalWriter
	CounterpartyWriter
	InvoiceWriter
	PaymentWriter
	TaxWriter
}

// LedgerStore is the transaction manager over one ledger's state.
type LedgerStore interface {
	// View runs fn against a consistent read view.
	View(ctx context.Context, fn func(tx ReadTx) error) error

	// Update runs fn exclusively. If fn returns an error or panics, every write it made is undone.
	Update(ctx context.Context, fn func(tx Tx) error) error

	// Load replaces the whole state with the snapshot contents.
	Load(ctx context.Context, snapshot *domain.Snapshot) error
}
