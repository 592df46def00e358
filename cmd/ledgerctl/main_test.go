package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/SscSPs/ledger_core/internal/adapters/file"
	"github.com/SscSPs/ledger_core/internal/adapters/memory"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// postCapital books an owner contribution straight into the snapshot file.
func postCapital(t *testing.T, path string, amount int64) {
	t.Helper()
	ctx := context.Background()
	svc := services.NewServiceContainer(memory.NewStore(),
		services.WithSnapshotRepository(file.NewSnapshotRepository(path), "default"))
	require.NoError(t, svc.Snapshot.Restore(ctx))

	cash, err := svc.Account.GetAccountByCode(ctx, "1-101")
	require.NoError(t, err)
	capital, err := svc.Account.GetAccountByCode(ctx, "3-101")
	require.NoError(t, err)
	_, err = svc.Journal.Post(ctx, domain.JournalDraft{
		Date:          time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC),
		Description:   "Owner contribution",
		ReferenceType: domain.RefAdjustment,
		Lines: []domain.JournalLine{
			domain.DebitLine(cash.AccountID, decimal.NewFromInt(amount)),
			domain.CreditLine(capital.AccountID, decimal.NewFromInt(amount)),
		},
	})
	require.NoError(t, err)
	require.NoError(t, svc.Snapshot.Save(ctx))
}

func TestInitCreatesLedgerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")

	out, err := runCLI(t, "init", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "accounts")
	assert.FileExists(t, path)

	_, err = runCLI(t, "init", "-f", path)
	assert.ErrorContains(t, err, "already exists")

	_, err = runCLI(t, "init", "-f", path, "--force")
	assert.NoError(t, err)
}

func TestReportTrialBalanceJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	_, err := runCLI(t, "init", "-f", path)
	require.NoError(t, err)
	postCapital(t, path, 5000)

	out, err := runCLI(t, "report", "trial-balance", "-f", path, "--as-of", "2026-01-31", "--json")
	require.NoError(t, err)

	var tb domain.TrialBalanceReport
	require.NoError(t, json.Unmarshal([]byte(out), &tb))
	assert.True(t, tb.Balanced)
	assert.Len(t, tb.Rows, 2)
	assert.True(t, tb.TotalDebit.Equal(decimal.NewFromInt(5000)))
}

func TestReportTextLayouts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	_, err := runCLI(t, "init", "-f", path)
	require.NoError(t, err)
	postCapital(t, path, 1234)

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"trial-balance"}, "1,234.00"},
		{[]string{"balance-sheet", "--as-of", "2026-01-31"}, "Total assets"},
		{[]string{"income-statement", "--start", "2026-01-01", "--end", "2026-01-31"}, "Net income"},
		{[]string{"cash-flow", "--start", "2026-01-01", "--end", "2026-01-31"}, "Ending cash"},
		{[]string{"tax", "--start", "2026-01-01", "--end", "2026-01-31"}, "Tax collected"},
		{[]string{"aging", "--type", "payable"}, "PURCHASE"},
		{[]string{"general-ledger", "--end", "2026-01-31"}, "Owner contribution"},
	}
	for _, tt := range tests {
		t.Run(tt.args[0], func(t *testing.T) {
			out, err := runCLI(t, append([]string{"report", "-f", path}, tt.args...)...)
			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestReportRejectsBadInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	_, err := runCLI(t, "init", "-f", path)
	require.NoError(t, err)

	_, err = runCLI(t, "report", "profit", "-f", path)
	assert.Error(t, err)

	_, err = runCLI(t, "report", "trial-balance", "-f", path, "--as-of", "31/01/2026")
	assert.ErrorContains(t, err, "YYYY-MM-DD")

	_, err = runCLI(t, "report", "aging", "-f", path, "--type", "sideways")
	assert.ErrorContains(t, err, "unknown aging type")

	_, err = runCLI(t, "report", "trial-balance", "-f", filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "failed to open ledger")
}

func TestVerify(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	_, err := runCLI(t, "init", "-f", path)
	require.NoError(t, err)
	postCapital(t, path, 100)

	out, err := runCLI(t, "verify", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "OK")
}

func TestInactiveBalanceIsReported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	_, err := runCLI(t, "init", "-f", path)
	require.NoError(t, err)
	postCapital(t, path, 100)

	ctx := context.Background()
	svc := services.NewServiceContainer(memory.NewStore(),
		services.WithSnapshotRepository(file.NewSnapshotRepository(path), "default"))
	require.NoError(t, svc.Snapshot.Restore(ctx))
	cash, err := svc.Account.GetAccountByCode(ctx, "1-101")
	require.NoError(t, err)
	require.NoError(t, svc.Account.DeactivateAccount(ctx, cash.AccountID))
	require.NoError(t, svc.Snapshot.Save(ctx))

	out, err := runCLI(t, "report", "trial-balance", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, domain.WarnInactiveAccountBalance)
	assert.Contains(t, out, domain.WarnTrialBalanceUnbalanced)

	out, err = runCLI(t, "verify", "-f", path)
	assert.ErrorIs(t, err, errLedgerInconsistent)
	assert.Contains(t, out, domain.WarnInactiveAccountBalance)
}

func TestParsePeriodDefaults(t *testing.T) {
	now := time.Date(2026, 3, 17, 15, 0, 0, 0, time.UTC)

	period, err := parsePeriod("", "", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), period.StartDate)
	assert.Equal(t, time.Date(2026, 3, 17, 23, 59, 59, 999999999, time.UTC), period.EndDate)

	period, err = parsePeriod("2026-01-01", "2026-02-28", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), period.StartDate)
	assert.Equal(t, 28, period.EndDate.Day())
}
