package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/go-co-op/gocron/v2"
)

const (
	autosaveJobName    = "snapshot-autosave"
	verifyCacheJobName = "balance-cache-verify"
)

// Config sets the job intervals. A zero interval disables that job.
type Config struct {
	SnapshotInterval time.Duration
	VerifyInterval   time.Duration
}

// Scheduler runs the ledger's background jobs.
type Scheduler struct {
	scheduler gocron.Scheduler
	snapshots portssvc.SnapshotSvc
	balances  portssvc.BalanceResolverSvc
	logger    *slog.Logger
	jobs      map[string]gocron.Job
	mu        sync.RWMutex
}

// NewScheduler creates the scheduler and registers the enabled jobs. Jobs do
// not run until Start.
func NewScheduler(snapshots portssvc.SnapshotSvc, balances portssvc.BalanceResolverSvc, cfg Config, logger *slog.Logger) (*Scheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	s := &Scheduler{
		scheduler: scheduler,
		snapshots: snapshots,
		balances:  balances,
		logger:    logger,
		jobs:      make(map[string]gocron.Job),
	}

	if cfg.SnapshotInterval > 0 {
		if err := s.addJob(autosaveJobName, cfg.SnapshotInterval, s.autosave); err != nil {
			return nil, err
		}
	}
	if cfg.VerifyInterval > 0 {
		if err := s.addJob(verifyCacheJobName, cfg.VerifyInterval, s.verifyCache); err != nil {
			return nil, err
		}
	}

	logger.Info("Registered background jobs", slog.Int("count", len(s.jobs)))
	return s, nil
}

func (s *Scheduler) addJob(name string, interval time.Duration, task func(context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(task, context.Background()),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create %s job: %w", name, err)
	}
	s.jobs[name] = job
	return nil
}

// Start starts the scheduler.
func (s *Scheduler) Start() {
	s.logger.Info("Starting background job scheduler")
	s.scheduler.Start()
}

// Stop waits for running jobs and stops the scheduler.
func (s *Scheduler) Stop() error {
	s.logger.Info("Stopping background job scheduler")
	return s.scheduler.Shutdown()
}

// JobNames returns the names of the registered jobs.
func (s *Scheduler) JobNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	return names
}

func (s *Scheduler) autosave(ctx context.Context) error {
	if err := s.snapshots.Save(ctx); err != nil {
		s.logger.Error("Snapshot autosave failed", slog.String("error", err.Error()))
		return err
	}
	s.logger.Debug("Snapshot autosaved")
	return nil
}

// verifyCache reports cache drift. It does not repair it; RebuildCache is an
// explicit operator action.
func (s *Scheduler) verifyCache(ctx context.Context) error {
	result, err := s.balances.VerifyCache(ctx)
	if err != nil {
		s.logger.Error("Balance cache verification failed", slog.String("error", err.Error()))
		return err
	}
	if !result.Consistent {
		s.logger.Warn("Cached balances differ from journal replay",
			slog.Int("checked_accounts", result.CheckedAccounts),
			slog.Int("mismatches", len(result.Warnings)))
		return nil
	}
	s.logger.Debug("Cached balances verified", slog.Int("checked_accounts", result.CheckedAccounts))
	return nil
}
