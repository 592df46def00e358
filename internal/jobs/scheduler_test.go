package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSnapshotSvc struct {
	mock.Mock
}

func (m *mockSnapshotSvc) Snapshot(ctx context.Context) (*domain.Snapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Snapshot), args.Error(1)
}
func (m *mockSnapshotSvc) Load(ctx context.Context, snapshot *domain.Snapshot) error {
	return m.Called(ctx, snapshot).Error(0)
}
func (m *mockSnapshotSvc) Save(ctx context.Context) error    { return m.Called(ctx).Error(0) }
func (m *mockSnapshotSvc) Restore(ctx context.Context) error { return m.Called(ctx).Error(0) }

type mockBalanceSvc struct {
	mock.Mock
}

func (m *mockBalanceSvc) BalanceAsOf(ctx context.Context, accountID string, cutoff time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID, cutoff)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
func (m *mockBalanceSvc) CurrentBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
func (m *mockBalanceSvc) VerifyCache(ctx context.Context) (*domain.CacheVerification, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CacheVerification), args.Error(1)
}
func (m *mockBalanceSvc) RebuildCache(ctx context.Context) (*domain.CacheVerification, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CacheVerification), args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewScheduler_RegistersEnabledJobs(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want []string
	}{
		{"both", Config{SnapshotInterval: time.Minute, VerifyInterval: time.Hour}, []string{autosaveJobName, verifyCacheJobName}},
		{"autosave only", Config{SnapshotInterval: time.Minute}, []string{autosaveJobName}},
		{"none", Config{}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewScheduler(new(mockSnapshotSvc), new(mockBalanceSvc), tt.cfg, discardLogger())
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, s.JobNames())
			require.NoError(t, s.Stop())
		})
	}
}

func TestAutosave(t *testing.T) {
	snapshots := new(mockSnapshotSvc)
	s := &Scheduler{snapshots: snapshots, logger: discardLogger()}

	snapshots.On("Save", mock.Anything).Return(nil).Once()
	assert.NoError(t, s.autosave(context.Background()))

	snapshots.On("Save", mock.Anything).Return(errors.New("disk full")).Once()
	assert.Error(t, s.autosave(context.Background()))

	snapshots.AssertExpectations(t)
}

func TestVerifyCache(t *testing.T) {
	balances := new(mockBalanceSvc)
	s := &Scheduler{balances: balances, logger: discardLogger()}

	balances.On("VerifyCache", mock.Anything).Return(&domain.CacheVerification{
		CheckedAccounts: 3,
		Warnings:        []domain.ConsistencyWarning{{Code: domain.WarnCachedBalanceMismatch}},
	}, nil).Once()
	assert.NoError(t, s.verifyCache(context.Background()), "drift is reported, not failed")

	balances.On("VerifyCache", mock.Anything).Return(nil, errors.New("store closed")).Once()
	assert.Error(t, s.verifyCache(context.Background()))

	balances.AssertExpectations(t)
	balances.AssertNotCalled(t, "RebuildCache", mock.Anything)
}

func TestScheduler_RunsAutosave(t *testing.T) {
	snapshots := new(mockSnapshotSvc)
	saved := make(chan struct{}, 10)
	snapshots.On("Save", mock.Anything).Return(nil).Run(func(mock.Arguments) {
		select {
		case saved <- struct{}{}:
		default:
		}
	})

	s, err := NewScheduler(snapshots, new(mockBalanceSvc), Config{SnapshotInterval: 20 * time.Millisecond}, discardLogger())
	require.NoError(t, err)
	s.Start()
	defer func() { require.NoError(t, s.Stop()) }()

	select {
	case <-saved:
	case <-time.After(2 * time.Second):
		t.Fatal("autosave did not run")
	}
}
