package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of *pgxpool.Pool the repositories use.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	upsertSnapshotQuery = `
		INSERT INTO ledger_snapshots (ledger_id, version, taken_at, state, saved_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (ledger_id) DO UPDATE
		SET version = EXCLUDED.version, taken_at = EXCLUDED.taken_at, state = EXCLUDED.state, saved_at = NOW();`

	selectSnapshotQuery = `SELECT state FROM ledger_snapshots WHERE ledger_id = $1;`
)

// PgxSnapshotRepository stores one JSONB snapshot row per ledger.
type PgxSnapshotRepository struct {
	db DBTX
}

// NewSnapshotRepository creates a snapshot repository on a pool or any DBTX.
func NewSnapshotRepository(db DBTX) *PgxSnapshotRepository {
	return &PgxSnapshotRepository{db: db}
}

var _ portsrepo.SnapshotRepository = (*PgxSnapshotRepository)(nil)

// SaveSnapshot upserts the snapshot row of the ledger.
func (r *PgxSnapshotRepository) SaveSnapshot(ctx context.Context, ledgerID string, snapshot domain.Snapshot) error {
	state, err := json.Marshal(snapshot)
	if err != nil {
		return apperrors.NewAppError(500, "failed to encode snapshot", err)
	}

	if _, err := r.db.Exec(ctx, upsertSnapshotQuery, ledgerID, snapshot.Version, snapshot.TakenAt, state); err != nil {
		return apperrors.NewAppError(500, "failed to save snapshot", err)
	}
	return nil
}

// LoadSnapshot reads the snapshot row of the ledger.
func (r *PgxSnapshotRepository) LoadSnapshot(ctx context.Context, ledgerID string) (*domain.Snapshot, error) {
	var state []byte
	err := r.db.QueryRow(ctx, selectSnapshotQuery, ledgerID).Scan(&state)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no snapshot for ledger %s", apperrors.ErrNotFound, ledgerID)
		}
		return nil, apperrors.NewAppError(500, "failed to load snapshot", err)
	}

	var snapshot domain.Snapshot
	if err := json.Unmarshal(state, &snapshot); err != nil {
		return nil, apperrors.NewAppError(500, "failed to decode snapshot", err)
	}
	return &snapshot, nil
}
