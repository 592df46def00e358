package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/SscSPs/ledger_core/internal/handlers"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock AccountService ---
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) GetAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) ListByType(ctx context.Context, accountType domain.AccountType) ([]domain.Account, error) {
	args := m.Called(ctx, accountType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}
func (m *MockAccountService) ListAccounts(ctx context.Context, includeInactive bool) ([]domain.Account, error) {
	args := m.Called(ctx, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}
func (m *MockAccountService) AddAccount(ctx context.Context, req dto.CreateAccountRequest) (*domain.Account, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest) (*domain.Account, error) {
	args := m.Called(ctx, accountID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) DeactivateAccount(ctx context.Context, accountID string) error {
	return m.Called(ctx, accountID).Error(0)
}
func (m *MockAccountService) ActivateAccount(ctx context.Context, accountID string) error {
	return m.Called(ctx, accountID).Error(0)
}
func (m *MockAccountService) DeleteAccount(ctx context.Context, accountID string) error {
	return m.Called(ctx, accountID).Error(0)
}
func (m *MockAccountService) SeedDefaultChart(ctx context.Context) ([]domain.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

// --- Mock BalanceResolver ---
type MockBalanceService struct {
	mock.Mock
}

func (m *MockBalanceService) BalanceAsOf(ctx context.Context, accountID string, cutoff time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID, cutoff)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
func (m *MockBalanceService) CurrentBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
func (m *MockBalanceService) VerifyCache(ctx context.Context) (*domain.CacheVerification, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CacheVerification), args.Error(1)
}
func (m *MockBalanceService) RebuildCache(ctx context.Context) (*domain.CacheVerification, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CacheVerification), args.Error(1)
}

var _ portssvc.BalanceResolverSvc = (*MockBalanceService)(nil)

// --- Test Suite ---
type AccountHandlerTestSuite struct {
	suite.Suite
	router             *gin.Engine
	mockAccountService *MockAccountService
	mockBalanceService *MockBalanceService
}

func (suite *AccountHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()

	suite.mockAccountService = new(MockAccountService)
	suite.mockBalanceService = new(MockBalanceService)

	v1 := suite.router.Group("/api/v1")
	handlers.RegisterAccountRoutes(v1, suite.mockAccountService, suite.mockBalanceService)
}

func (suite *AccountHandlerTestSuite) do(method, url string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// --- Test Cases ---

func (suite *AccountHandlerTestSuite) TestCreateAccount_Success() {
	accountID := uuid.NewString()
	suite.mockAccountService.On("AddAccount", mock.Anything, mock.MatchedBy(func(r dto.CreateAccountRequest) bool {
		return r.Code == "1-301" && r.AccountType == domain.Asset && r.IsCurrent
	})).Return(&domain.Account{
		AccountID:   accountID,
		Code:        "1-301",
		Name:        "Petty Cash",
		AccountType: domain.Asset,
		IsActive:    true,
		IsCurrent:   true,
	}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/accounts", gin.H{
		"code": "1-301", "name": "Petty Cash", "accountType": "ASSET", "isCurrent": true,
	})

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.AccountResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(accountID, resp.AccountID)
	suite.True(resp.IsActive)
	suite.mockAccountService.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestCreateAccount_InvalidBody() {
	w := suite.do(http.MethodPost, "/api/v1/accounts", gin.H{"name": "No code", "accountType": "ASSET"})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockAccountService.AssertNotCalled(suite.T(), "AddAccount", mock.Anything, mock.Anything)
}

func (suite *AccountHandlerTestSuite) TestCreateAccount_DuplicateCode() {
	suite.mockAccountService.On("AddAccount", mock.Anything, mock.Anything).
		Return(nil, apperrors.ErrDuplicateCode).Once()

	w := suite.do(http.MethodPost, "/api/v1/accounts", gin.H{"code": "1-101", "name": "Cash again", "accountType": "ASSET"})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), apperrors.ErrDuplicateCode.Error())
}

func (suite *AccountHandlerTestSuite) TestGetAccount_NotFound() {
	suite.mockAccountService.On("GetAccountByID", mock.Anything, "missing").
		Return(nil, apperrors.ErrNotFound).Once()

	w := suite.do(http.MethodGet, "/api/v1/accounts/missing", nil)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *AccountHandlerTestSuite) TestListAccounts_ByType() {
	suite.mockAccountService.On("ListByType", mock.Anything, domain.Revenue).
		Return([]domain.Account{{AccountID: "r1", Code: "4-101", AccountType: domain.Revenue}}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/accounts?type=REVENUE", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp []dto.AccountResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp, 1)
	suite.mockAccountService.AssertNotCalled(suite.T(), "ListAccounts", mock.Anything, mock.Anything)
}

func (suite *AccountHandlerTestSuite) TestListAccounts_InternalErrorHidesDetail() {
	suite.mockAccountService.On("ListAccounts", mock.Anything, true).
		Return(nil, errors.New("store exploded")).Once()

	w := suite.do(http.MethodGet, "/api/v1/accounts?includeInactive=true", nil)

	suite.Equal(http.StatusInternalServerError, w.Code)
	suite.NotContains(w.Body.String(), "exploded")
}

func (suite *AccountHandlerTestSuite) TestGetAccountBalance_AsOfIsInclusiveOfTheDay() {
	endOfJan := time.Date(2026, 1, 31, 23, 59, 59, 999999999, time.UTC)
	suite.mockBalanceService.On("BalanceAsOf", mock.Anything, "acc-1", endOfJan).
		Return(decimal.NewFromInt(700), nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/accounts/acc-1/balance?asOf=2026-01-31", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.AccountBalanceResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.True(resp.Balance.Equal(decimal.NewFromInt(700)))
	suite.Require().NotNil(resp.AsOf)
	suite.mockBalanceService.AssertNotCalled(suite.T(), "CurrentBalance", mock.Anything, mock.Anything)
}

func (suite *AccountHandlerTestSuite) TestGetAccountBalance_Current() {
	suite.mockBalanceService.On("CurrentBalance", mock.Anything, "acc-1").
		Return(decimal.RequireFromString("12.50"), nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/accounts/acc-1/balance", nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.mockBalanceService.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestGetAccountBalance_BadDate() {
	w := suite.do(http.MethodGet, "/api/v1/accounts/acc-1/balance?asOf=31-01-2026", nil)

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *AccountHandlerTestSuite) TestDeleteAccount_WithHistoryConflicts() {
	suite.mockAccountService.On("DeleteAccount", mock.Anything, "acc-1").
		Return(apperrors.ErrAccountHasHistory).Once()

	w := suite.do(http.MethodDelete, "/api/v1/accounts/acc-1", nil)

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *AccountHandlerTestSuite) TestDeactivateAndActivate() {
	suite.mockAccountService.On("DeactivateAccount", mock.Anything, "acc-1").Return(nil).Once()
	suite.mockAccountService.On("ActivateAccount", mock.Anything, "acc-1").Return(nil).Once()

	suite.Equal(http.StatusNoContent, suite.do(http.MethodPost, "/api/v1/accounts/acc-1/deactivate", nil).Code)
	suite.Equal(http.StatusNoContent, suite.do(http.MethodPost, "/api/v1/accounts/acc-1/activate", nil).Code)
	suite.mockAccountService.AssertExpectations(suite.T())
}

// --- Run Test Suite ---
func TestAccountHandler(t *testing.T) {
	suite.Run(t, new(AccountHandlerTestSuite))
}
