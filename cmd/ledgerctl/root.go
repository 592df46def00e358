package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/SscSPs/ledger_core/internal/adapters/file"
	"github.com/SscSPs/ledger_core/internal/adapters/memory"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/core/services"
	"github.com/SscSPs/ledger_core/internal/platform/config"
	"github.com/spf13/cobra"
)

// app is the ledger a command works on, loaded from a snapshot file.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	path   string
	svc    *portssvc.ServiceContainer
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var logLevel string

	root := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Offline tools for a ledger snapshot file",
		Long: `ledgerctl works on a ledger saved as a JSON snapshot file, the same
format the API exports from GET /api/v1/ledger/snapshot.

Posting account codes and the tax mode are read from the environment
(and .env) exactly like the API server.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var level slog.Level
			if err := level.UnmarshalText([]byte(strings.ToUpper(logLevel))); err != nil {
				return fmt.Errorf("invalid log level %q: %w", logLevel, err)
			}
			a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			a.cfg = cfg
			a.svc = services.NewServiceContainer(memory.NewStore(),
				services.WithPostingAccounts(cfg.Postings),
				services.WithSnapshotRepository(file.NewSnapshotRepository(a.path), cfg.LedgerID),
			)
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&a.path, "file", "f", "ledger.json", "Ledger snapshot file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(newInitCmd(a), newReportCmd(a), newVerifyCmd(a))
	return root
}

// open restores the ledger from the snapshot file.
func (a *app) open(cmd *cobra.Command) error {
	if err := a.svc.Snapshot.Restore(cmd.Context()); err != nil {
		return fmt.Errorf("failed to open ledger %s: %w", a.path, err)
	}
	a.logger.Debug("Ledger opened", slog.String("file", a.path))
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
