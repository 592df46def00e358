package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/metrics"
	"github.com/SscSPs/ledger_core/internal/utils/accounting"
)

var errNoSnapshotRepository = errors.New("no snapshot repository configured")

// snapshotService exports and imports the full state of one ledger.
type snapshotService struct {
	BaseService
	store    portsrepo.LedgerStore
	balances *balanceResolver
	repo     portsrepo.SnapshotRepository
	ledgerID string
}

// NewSnapshotService creates a snapshot service. Save and Restore need WithSnapshotRepository.
func NewSnapshotService(store portsrepo.LedgerStore, options ...ServiceOption) portssvc.SnapshotSvc {
	cfg := newServiceConfig(options)
	return newSnapshotService(store, cfg)
}

func newSnapshotService(store portsrepo.LedgerStore, cfg serviceConfig) *snapshotService {
	base := BaseService{clock: cfg.clock}
	return &snapshotService{
		BaseService: base,
		store:       store,
		balances:    &balanceResolver{BaseService: base, store: store},
		repo:        cfg.snapshotRepo,
		ledgerID:    cfg.ledgerID,
	}
}

var _ portssvc.SnapshotSvc = (*snapshotService)(nil)

// Snapshot returns a consistent copy of the full state.
func (s *snapshotService) Snapshot(ctx context.Context) (*domain.Snapshot, error) {
	snapshot := &domain.Snapshot{Version: domain.SnapshotVersion, TakenAt: s.now()}
	err := s.store.View(ctx, func(tx portsrepo.ReadTx) error {
		snapshot.Accounts = tx.ListAccounts()
		snapshot.JournalEntries = tx.ListEntries()
		snapshot.Counterparties = tx.ListCounterparties("")
		snapshot.Invoices = tx.ListInvoices(portsrepo.InvoiceFilter{})
		snapshot.Payments = tx.ListPayments("")
		snapshot.TaxRates = tx.ListTaxRates()
		snapshot.TaxSettings = tx.GetTaxSettings()
		snapshot.InvoiceSequences = tx.InvoiceSequences()
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to take snapshot")
		return nil, err
	}
	s.LogDebug(ctx, "Snapshot taken",
		slog.Int("accounts", len(snapshot.Accounts)),
		slog.Int("entries", len(snapshot.JournalEntries)))
	return snapshot, nil
}

// Load validates a snapshot, replaces the state with it and rebuilds cached balances.
func (s *snapshotService) Load(ctx context.Context, snapshot *domain.Snapshot) error {
	if err := validateSnapshot(snapshot); err != nil {
		s.LogWarn(ctx, "Snapshot rejected", slog.String("error", err.Error()))
		return err
	}
	if err := s.store.Load(ctx, withInvoiceSequences(snapshot)); err != nil {
		s.LogError(ctx, err, "Failed to load snapshot")
		return err
	}
	result, err := s.balances.RebuildCache(ctx)
	if err != nil {
		return err
	}
	s.LogInfo(ctx, "Snapshot loaded",
		slog.Int("accounts", len(snapshot.Accounts)),
		slog.Int("entries", len(snapshot.JournalEntries)),
		slog.Int("corrected_balances", len(result.Warnings)))
	return nil
}

// Save writes a snapshot to the configured repository.
func (s *snapshotService) Save(ctx context.Context) error {
	if s.repo == nil {
		return apperrors.NewAppError(500, "snapshot save failed", errNoSnapshotRepository)
	}
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}
	if err := s.repo.SaveSnapshot(ctx, s.ledgerID, *snapshot); err != nil {
		metrics.SnapshotsSaved.WithLabelValues("failure").Inc()
		s.LogError(ctx, err, "Failed to save snapshot", slog.String("ledger_id", s.ledgerID))
		return err
	}
	metrics.SnapshotsSaved.WithLabelValues("success").Inc()
	s.LogInfo(ctx, "Snapshot saved",
		slog.String("ledger_id", s.ledgerID),
		slog.Int("entries", len(snapshot.JournalEntries)))
	return nil
}

// Restore loads the latest snapshot from the configured repository.
func (s *snapshotService) Restore(ctx context.Context) error {
	if s.repo == nil {
		return apperrors.NewAppError(500, "snapshot restore failed", errNoSnapshotRepository)
	}
	snapshot, err := s.repo.LoadSnapshot(ctx, s.ledgerID)
	if err != nil {
		s.logFailure(ctx, err, "Failed to read snapshot", slog.String("ledger_id", s.ledgerID))
		return err
	}
	return s.Load(ctx, snapshot)
}

// withInvoiceSequences returns the snapshot with every invoice counter at least
// as high as the largest generated number it contains. Snapshots written before
// counters were persisted carry none.
func withInvoiceSequences(snapshot *domain.Snapshot) *domain.Snapshot {
	seq := maps.Clone(snapshot.InvoiceSequences)
	if seq == nil {
		seq = make(map[domain.InvoiceType]int64)
	}
	for _, inv := range snapshot.Invoices {
		if n, ok := inv.Type.ParseNumber(inv.Number); ok && n > seq[inv.Type] {
			seq[inv.Type] = n
		}
	}
	out := *snapshot
	out.InvoiceSequences = seq
	return &out
}

// validateSnapshot checks the structure a store relies on: unique ids and
// codes, balanced entries on known accounts and resolvable references.
func validateSnapshot(snapshot *domain.Snapshot) error {
	if snapshot == nil {
		return apperrors.Validationf("snapshot is empty")
	}
	if snapshot.Version > domain.SnapshotVersion {
		return apperrors.Validationf("snapshot version %d is newer than supported version %d", snapshot.Version, domain.SnapshotVersion)
	}

	accountTypes := make(map[string]domain.AccountType, len(snapshot.Accounts))
	codes := make(map[string]struct{}, len(snapshot.Accounts))
	for _, a := range snapshot.Accounts {
		if !a.AccountType.IsValid() {
			return apperrors.Validationf("account %s has unknown type %q", a.Code, a.AccountType)
		}
		if _, dup := accountTypes[a.AccountID]; dup {
			return apperrors.Validationf("duplicate account id %s", a.AccountID)
		}
		if _, dup := codes[a.Code]; dup {
			return fmt.Errorf("%w: %s", apperrors.ErrDuplicateCode, a.Code)
		}
		accountTypes[a.AccountID] = a.AccountType
		codes[a.Code] = struct{}{}
	}

	entries := make(map[string]struct{}, len(snapshot.JournalEntries))
	for _, e := range snapshot.JournalEntries {
		if _, dup := entries[e.EntryID]; dup {
			return apperrors.Validationf("duplicate journal entry id %s", e.EntryID)
		}
		entries[e.EntryID] = struct{}{}
		if err := accounting.ValidateLines(e.Lines); err != nil {
			return fmt.Errorf("journal entry %s: %w", e.EntryID, err)
		}
		for _, l := range e.Lines {
			if _, ok := accountTypes[l.AccountID]; !ok {
				return apperrors.Validationf("journal entry %s references unknown account %s", e.EntryID, l.AccountID)
			}
		}
		if err := accounting.ValidateEntryBalance(e.Lines); err != nil {
			return fmt.Errorf("journal entry %s: %w", e.EntryID, err)
		}
	}
	for _, e := range snapshot.JournalEntries {
		for _, link := range []string{e.ReversalOf, e.ReversedBy} {
			if _, ok := entries[link]; link != "" && !ok {
				return apperrors.Validationf("journal entry %s links to unknown entry %s", e.EntryID, link)
			}
		}
	}

	counterparties := make(map[string]struct{}, len(snapshot.Counterparties))
	for _, c := range snapshot.Counterparties {
		counterparties[c.CounterpartyID] = struct{}{}
	}
	invoices := make(map[string]struct{}, len(snapshot.Invoices))
	for _, inv := range snapshot.Invoices {
		if _, ok := counterparties[inv.CounterpartyID]; !ok {
			return apperrors.Validationf("invoice %s references unknown counterparty %s", inv.Number, inv.CounterpartyID)
		}
		if inv.PaidAmount.GreaterThan(inv.TotalAmount) {
			return apperrors.Validationf("invoice %s is paid beyond its total", inv.Number)
		}
		invoices[inv.InvoiceID] = struct{}{}
	}
	for _, p := range snapshot.Payments {
		if _, ok := invoices[p.InvoiceID]; !ok {
			return apperrors.Validationf("payment %s references unknown invoice %s", p.PaymentID, p.InvoiceID)
		}
	}
	return nil
}
