package services

import (
	"context"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/dto"
)

// JournalReaderSvc defines read operations for journal data
type JournalReaderSvc interface {
	// GetEntry retrieves a specific journal entry by its ID.
	GetEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// ListEntries returns a page of entries in (date, sequence) order.
	ListEntries(ctx context.Context, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error)

	// FindByReference returns every entry tagged with a business event id, in creation order.
	FindByReference(ctx context.Context, reference string) ([]domain.JournalEntry, error)
}

// JournalWriterSvc defines write operations for journal data
type JournalWriterSvc interface {
	// Post validates a draft and atomically appends it and updates cached balances.
	Post(ctx context.Context, draft domain.JournalDraft) (*domain.JournalEntry, error)

	// Reverse posts the mirror image of an entry and flags the original.
	Reverse(ctx context.Context, entryID string, reason string) (*domain.JournalEntry, error)

	// RecordSale records a settled sale as one automatic entry.
	RecordSale(ctx context.Context, req dto.RecordSaleRequest) (*domain.JournalEntry, error)

	// RecordPurchase records a paid or owed purchase as one automatic entry.
	RecordPurchase(ctx context.Context, req dto.RecordPurchaseRequest) (*domain.JournalEntry, error)
}

// JournalSvcFacade combines all journal-related service interfaces
// This is a facade for clients that need access to all operations
type JournalSvcFacade interface {
	JournalReaderSvc
	JournalWriterSvc
}
