package services

import (
	"context"

	"github.com/SscSPs/ledger_core/internal/core/domain"
)

// SnapshotSvc exports and imports the full ledger state.
type SnapshotSvc interface {
	// Snapshot returns a consistent copy of the full state.
	Snapshot(ctx context.Context) (*domain.Snapshot, error)

	// Load validates a snapshot, replaces the state with it and rebuilds cached balances.
	Load(ctx context.Context, snapshot *domain.Snapshot) error

	// Save writes a snapshot to the configured repository.
	Save(ctx context.Context) error

	// Restore loads the latest snapshot from the configured repository.
	Restore(ctx context.Context) error
}
