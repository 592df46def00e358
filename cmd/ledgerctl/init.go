package main

import (
	"fmt"
	"log/slog"

	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/spf13/cobra"
)

func newInitCmd(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a new ledger file with the default chart of accounts",
		Example: `  # New ledger in ./ledger.json
  ledgerctl init

  # Replace an existing file
  ledgerctl init -f books/2026.json --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if fileExists(a.path) && !force {
				return fmt.Errorf("%s already exists, use --force to replace it", a.path)
			}
			ctx := cmd.Context()
			accounts, err := a.svc.Account.SeedDefaultChart(ctx)
			if err != nil {
				return err
			}
			inclusive := a.cfg.TaxInclusive
			if _, err := a.svc.Tax.UpdateTaxSettings(ctx, dto.UpdateTaxSettingsRequest{Inclusive: &inclusive}); err != nil {
				return err
			}
			if err := a.svc.Snapshot.Save(ctx); err != nil {
				return err
			}
			a.logger.Info("Ledger initialized", slog.String("file", a.path), slog.Int("accounts", len(accounts)))
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s with %d accounts\n", a.path, len(accounts))
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing ledger file")
	return cmd
}
