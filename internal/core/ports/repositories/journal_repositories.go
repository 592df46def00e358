package repositories

import (
	"github.com/SscSPs/ledger_core/internal/core/domain"
)

// JournalReader defines read operations for journal data
type JournalReader interface {
	// FindEntryByID retrieves a specific journal entry by its unique identifier.
	FindEntryByID(entryID string) (*domain.JournalEntry, error)

	// ListEntries returns the full journal log in append order.
	ListEntries() []domain.JournalEntry

	// FindEntriesByReference returns the entries tagged with a business event id in append order.
	FindEntriesByReference(reference string) []domain.JournalEntry

	// CountEntriesForAccount counts entries with at least one line on the account.
	CountEntriesForAccount(accountID string) int
}

// JournalWriter defines write operations for journal data.
// The log is append-only; the reversal flag is the only mutable part of an entry.
type JournalWriter interface {
	// AppendEntry appends an entry to the log and returns it with its sequence number assigned.
	AppendEntry(entry domain.JournalEntry) (domain.JournalEntry, error)

	// MarkReversed flags an entry as reversed by another entry.
	MarkReversed(entryID string, reversedBy string) error
}
