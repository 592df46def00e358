package main

import (
	"errors"
	"fmt"

	"github.com/SscSPs/ledger_core/internal/utils"
	"github.com/spf13/cobra"
)

var errLedgerInconsistent = errors.New("ledger is inconsistent")

func newVerifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check cached balances against a journal replay and the trial balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(cmd); err != nil {
				return err
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			check, err := a.svc.Balance.VerifyCache(ctx)
			if err != nil {
				return err
			}
			for _, w := range check.Warnings {
				fmt.Fprintf(out, "WARN %s: %s (cached %s, replayed %s)\n", w.Code, w.Message,
					utils.FormatAccounting(w.Actual), utils.FormatAccounting(w.Expected))
			}
			tb, err := a.svc.Reporting.TrialBalance(ctx, nil)
			if err != nil {
				return err
			}
			for _, w := range tb.Warnings {
				fmt.Fprintf(out, "WARN %s: %s\n", w.Code, w.Message)
			}

			fmt.Fprintf(out, "Accounts checked: %d\n", check.CheckedAccounts)
			fmt.Fprintf(out, "Trial balance: debits %s, credits %s\n",
				utils.FormatAccounting(tb.TotalDebit), utils.FormatAccounting(tb.TotalCredit))
			if !check.Consistent || !tb.Balanced {
				return errLedgerInconsistent
			}
			fmt.Fprintln(out, "OK")
			return nil
		},
	}
}
