package services

import (
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
)

// serviceConfig carries the dependencies shared by every service.
type serviceConfig struct {
	clock        func() time.Time
	postings     domain.PostingAccounts
	snapshotRepo portsrepo.SnapshotRepository
	ledgerID     string
}

// ServiceOption is a functional option for configuring the ledger services
type ServiceOption func(*serviceConfig)

// WithClock overrides the wall clock used for audit fields and default report dates.
func WithClock(clock func() time.Time) ServiceOption {
	return func(c *serviceConfig) {
		c.clock = clock
	}
}

// WithPostingAccounts overrides the account codes used by automatic postings.
func WithPostingAccounts(postings domain.PostingAccounts) ServiceOption {
	return func(c *serviceConfig) {
		c.postings = postings
	}
}

// WithSnapshotRepository sets where snapshots of this ledger are saved.
func WithSnapshotRepository(repo portsrepo.SnapshotRepository, ledgerID string) ServiceOption {
	return func(c *serviceConfig) {
		c.snapshotRepo = repo
		c.ledgerID = ledgerID
	}
}

func newServiceConfig(options []ServiceOption) serviceConfig {
	cfg := serviceConfig{
		postings: domain.DefaultPostingAccounts(),
		ledgerID: "default",
	}
	for _, option := range options {
		option(&cfg)
	}
	return cfg
}
