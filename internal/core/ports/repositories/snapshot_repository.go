package repositories

import (
	"context"

	"github.com/SscSPs/ledger_core/internal/core/domain"
)

// SnapshotRepository persists full ledger snapshots keyed by ledger id.
type SnapshotRepository interface {
	// SaveSnapshot stores the snapshot, replacing any earlier one for the ledger.
	SaveSnapshot(ctx context.Context, ledgerID string, snapshot domain.Snapshot) error

	// LoadSnapshot returns the latest snapshot, or an ErrNotFound error if none exists.
	LoadSnapshot(ctx context.Context, ledgerID string) (*domain.Snapshot, error)
}
