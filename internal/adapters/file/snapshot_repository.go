package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
)

// SnapshotRepository keeps one ledger's snapshot in a single JSON file. The
// file has the same shape as the API's snapshot export.
type SnapshotRepository struct {
	path string
}

// NewSnapshotRepository returns a repository backed by path.
func NewSnapshotRepository(path string) *SnapshotRepository {
	return &SnapshotRepository{path: path}
}

var _ portsrepo.SnapshotRepository = (*SnapshotRepository)(nil)

// SaveSnapshot writes to a temporary file and renames it over the target so a
// crash never leaves a half-written snapshot.
func (r *SnapshotRepository) SaveSnapshot(ctx context.Context, ledgerID string, snapshot domain.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return apperrors.NewAppError(500, "failed to encode snapshot", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return apperrors.NewAppError(500, "failed to create snapshot file", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return apperrors.NewAppError(500, "failed to write snapshot file", err)
	}
	if err := tmp.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to write snapshot file", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return apperrors.NewAppError(500, fmt.Sprintf("failed to replace snapshot of ledger %s", ledgerID), err)
	}
	return nil
}

// LoadSnapshot reads the file. A missing file is ErrNotFound.
func (r *SnapshotRepository) LoadSnapshot(ctx context.Context, ledgerID string) (*domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: no snapshot for ledger %s at %s", apperrors.ErrNotFound, ledgerID, r.path)
		}
		return nil, apperrors.NewAppError(500, "failed to read snapshot file", err)
	}

	var snapshot domain.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, apperrors.NewAppError(500, "failed to decode snapshot file", err)
	}
	return &snapshot, nil
}
