package services

import (
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
)

// NewServiceContainer wires every ledger service over one store. The services
// share a single journal engine so all postings go through the same path.
func NewServiceContainer(store portsrepo.LedgerStore, options ...ServiceOption) *portssvc.ServiceContainer {
	cfg := newServiceConfig(options)
	base := BaseService{clock: cfg.clock}

	journal := newJournalService(store, cfg)
	snapshots := newSnapshotService(store, cfg)

	return &portssvc.ServiceContainer{
		Account:   newAccountService(store, journal, cfg),
		Journal:   journal,
		Balance:   snapshots.balances,
		Reporting: &reportingService{BaseService: base, store: store},
		Subledger: newSubledgerService(store, journal, cfg),
		Tax:       &taxService{BaseService: base, store: store, postings: cfg.postings},
		Snapshot:  snapshots,
	}
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.AccountSvcFacade   = (*accountService)(nil)
	_ portssvc.SubledgerSvcFacade = (*subledgerService)(nil)
)
