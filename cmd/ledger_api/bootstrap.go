package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/SscSPs/ledger_core/internal/platform/config"
)

// bootstrapLedger restores the last saved snapshot. A ledger with nothing
// saved yet gets the default chart and the configured tax mode.
func bootstrapLedger(
	ctx context.Context,
	cfg *config.Config,
	snapshots portssvc.SnapshotSvc,
	accounts portssvc.AccountSvcFacade,
	tax portssvc.TaxSvc,
	logger *slog.Logger,
) error {
	if cfg.DatabaseURL != "" {
		err := snapshots.Restore(ctx)
		if err == nil {
			logger.Info("Ledger restored from snapshot", slog.String("ledger_id", cfg.LedgerID))
			return nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		logger.Info("No snapshot found, starting a fresh ledger", slog.String("ledger_id", cfg.LedgerID))
	}

	seeded, err := accounts.SeedDefaultChart(ctx)
	if err != nil {
		return err
	}
	inclusive := cfg.TaxInclusive
	if _, err := tax.UpdateTaxSettings(ctx, dto.UpdateTaxSettingsRequest{Inclusive: &inclusive}); err != nil {
		return err
	}
	logger.Info("Default chart of accounts seeded", slog.Int("accounts", len(seeded)))
	return nil
}
