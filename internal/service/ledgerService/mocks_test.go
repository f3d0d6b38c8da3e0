package ledgerService

import (
	"context"

	"papertrade/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockRepository is a mock implementation of Repository. WithinTransaction
// runs the callback against the same mock, mirroring the tx-in-context
// behavior of the real repository.
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) WithinTransaction(ctx context.Context, tFunc func(ctx context.Context) error) error {
	args := m.Called(ctx, tFunc)
	if err := args.Error(0); err != nil {
		return err
	}
	return tFunc(ctx)
}

func (m *MockRepository) InsertUser(ctx context.Context, username, passHash string) (int64, error) {
	args := m.Called(ctx, username, passHash)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) GetUser(ctx context.Context, userID int64) (model.User, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockRepository) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockRepository) GetUserForUpdate(ctx context.Context, userID int64) (model.User, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockRepository) UpdateUserCash(ctx context.Context, userID int64, cash decimal.Decimal) error {
	args := m.Called(ctx, userID, cash)
	return args.Error(0)
}

func (m *MockRepository) UpdateUsername(ctx context.Context, userID int64, username string) error {
	args := m.Called(ctx, userID, username)
	return args.Error(0)
}

func (m *MockRepository) UpdatePassHash(ctx context.Context, userID int64, passHash string) error {
	args := m.Called(ctx, userID, passHash)
	return args.Error(0)
}

func (m *MockRepository) GetPositionForUpdate(ctx context.Context, userID int64, symbol string) (model.Position, error) {
	args := m.Called(ctx, userID, symbol)
	return args.Get(0).(model.Position), args.Error(1)
}

func (m *MockRepository) GetPositions(ctx context.Context, userID int64) ([]model.Position, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Position), args.Error(1)
}

func (m *MockRepository) AddPositionShares(ctx context.Context, userID int64, symbol string, shares int) error {
	args := m.Called(ctx, userID, symbol, shares)
	return args.Error(0)
}

func (m *MockRepository) UpdatePositionShares(ctx context.Context, userID int64, symbol string, shares int) error {
	args := m.Called(ctx, userID, symbol, shares)
	return args.Error(0)
}

func (m *MockRepository) DeletePosition(ctx context.Context, userID int64, symbol string) error {
	args := m.Called(ctx, userID, symbol)
	return args.Error(0)
}

func (m *MockRepository) GetHeldSymbols(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRepository) InsertTransaction(ctx context.Context, transaction model.Transaction) (int64, error) {
	args := m.Called(ctx, transaction)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) GetTransactions(ctx context.Context, userID int64) ([]model.Transaction, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Transaction), args.Error(1)
}

// MockCache is a mock implementation of Cache
type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetQuote(ctx context.Context, symbol string) (model.Quote, error) {
	args := m.Called(ctx, symbol)
	return args.Get(0).(model.Quote), args.Error(1)
}

func (m *MockCache) GetQuotes(ctx context.Context, symbols []string) (map[string]model.Quote, error) {
	args := m.Called(ctx, symbols)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]model.Quote), args.Error(1)
}

func (m *MockCache) SetQuotes(ctx context.Context, quotes []model.Quote) error {
	args := m.Called(ctx, quotes)
	return args.Error(0)
}

// MockQuoteApi is a mock implementation of QuoteApi
type MockQuoteApi struct {
	mock.Mock
}

func (m *MockQuoteApi) GetQuote(ctx context.Context, symbol string) (model.Quote, error) {
	args := m.Called(ctx, symbol)
	return args.Get(0).(model.Quote), args.Error(1)
}

func (m *MockQuoteApi) GetQuotes(ctx context.Context, symbols []string) (map[string]model.Quote, error) {
	args := m.Called(ctx, symbols)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]model.Quote), args.Error(1)
}

// MockReportGenerator is a mock implementation of ReportGenerator
type MockReportGenerator struct {
	mock.Mock
}

func (m *MockReportGenerator) Generate(ctx context.Context, statement model.Statement) ([]byte, string, error) {
	args := m.Called(ctx, statement)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}
