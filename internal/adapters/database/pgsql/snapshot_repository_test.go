package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type SnapshotRepoTestSuite struct {
	suite.Suite
	mock pgxmock.PgxPoolIface
	repo *PgxSnapshotRepository
	ctx  context.Context
}

func (s *SnapshotRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	require.NoError(s.T(), err)
	s.mock = mock
	s.repo = NewSnapshotRepository(mock)
	s.ctx = context.Background()
}

func (s *SnapshotRepoTestSuite) TearDownTest() {
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
	s.mock.Close()
}

func TestSnapshotRepoTestSuite(t *testing.T) {
	suite.Run(t, new(SnapshotRepoTestSuite))
}

func sampleSnapshot() domain.Snapshot {
	takenAt := time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)
	return domain.Snapshot{
		Version: domain.SnapshotVersion,
		TakenAt: takenAt,
		Accounts: []domain.Account{
			{AccountID: "acc-cash", Code: "1-101", Name: "Cash", AccountType: domain.Asset, IsActive: true, IsCurrent: true, IsCash: true, Balance: decimal.NewFromInt(150)},
			{AccountID: "acc-rev", Code: "4-101", Name: "Sales Revenue", AccountType: domain.Revenue, IsActive: true, Balance: decimal.NewFromInt(-150)},
		},
		JournalEntries: []domain.JournalEntry{
			{
				EntryID:       "je-1",
				Sequence:      1,
				Date:          takenAt,
				Description:   "Cash sale",
				ReferenceType: domain.RefSale,
				Lines: []domain.JournalLine{
					{AccountID: "acc-cash", Debit: decimal.NewFromInt(150), Credit: decimal.Zero},
					{AccountID: "acc-rev", Debit: decimal.Zero, Credit: decimal.NewFromInt(150)},
				},
			},
		},
		TaxSettings: domain.TaxSettings{Inclusive: true},
	}
}

func (s *SnapshotRepoTestSuite) TestSaveSnapshot_Upserts() {
	snap := sampleSnapshot()

	s.mock.ExpectExec(regexp.QuoteMeta(upsertSnapshotQuery)).
		WithArgs("default", snap.Version, snap.TakenAt, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.repo.SaveSnapshot(s.ctx, "default", snap)
	s.NoError(err)
}

func (s *SnapshotRepoTestSuite) TestSaveSnapshot_DatabaseError() {
	snap := sampleSnapshot()

	s.mock.ExpectExec(regexp.QuoteMeta(upsertSnapshotQuery)).
		WithArgs("default", snap.Version, snap.TakenAt, pgxmock.AnyArg()).
		WillReturnError(errors.New("connection reset"))

	err := s.repo.SaveSnapshot(s.ctx, "default", snap)
	s.Require().Error(err)
	var appErr *apperrors.AppError
	s.True(errors.As(err, &appErr))
	s.Equal(500, appErr.Code)
}

func (s *SnapshotRepoTestSuite) TestLoadSnapshot_DecodesState() {
	snap := sampleSnapshot()
	state, err := json.Marshal(snap)
	s.Require().NoError(err)

	s.mock.ExpectQuery(regexp.QuoteMeta(selectSnapshotQuery)).
		WithArgs("default").
		WillReturnRows(pgxmock.NewRows([]string{"state"}).AddRow(state))

	got, err := s.repo.LoadSnapshot(s.ctx, "default")
	s.Require().NoError(err)
	s.Equal(domain.SnapshotVersion, got.Version)
	s.True(snap.TakenAt.Equal(got.TakenAt))
	s.Require().Len(got.Accounts, 2)
	s.True(got.Accounts[0].Balance.Equal(decimal.NewFromInt(150)))
	s.Require().Len(got.JournalEntries, 1)
	s.Equal("je-1", got.JournalEntries[0].EntryID)
	s.True(got.JournalEntries[0].Lines[1].Credit.Equal(decimal.NewFromInt(150)))
	s.True(got.TaxSettings.Inclusive)
}

func (s *SnapshotRepoTestSuite) TestLoadSnapshot_NotFound() {
	s.mock.ExpectQuery(regexp.QuoteMeta(selectSnapshotQuery)).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.repo.LoadSnapshot(s.ctx, "missing")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *SnapshotRepoTestSuite) TestLoadSnapshot_CorruptState() {
	s.mock.ExpectQuery(regexp.QuoteMeta(selectSnapshotQuery)).
		WithArgs("default").
		WillReturnRows(pgxmock.NewRows([]string{"state"}).AddRow([]byte("{not json")))

	_, err := s.repo.LoadSnapshot(s.ctx, "default")
	s.Require().Error(err)
	s.NotErrorIs(err, apperrors.ErrNotFound)
}
