package ledgerService

import (
	"context"
	"errors"
	"sync"
	"testing"

	"papertrade/data/repository"
	"papertrade/internal/externalApi"
	"papertrade/internal/model"
	"papertrade/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

var errCacheMiss = errors.New("cache miss")

func newTestService() (*LedgerService, *MockRepository, *MockCache, *MockQuoteApi, *MockReportGenerator) {
	repo := new(MockRepository)
	cache := new(MockCache)
	quoteApi := new(MockQuoteApi)
	reportGen := new(MockReportGenerator)
	return New(repo, cache, quoteApi, reportGen), repo, cache, quoteApi, reportGen
}

func decimalEq(expected int64) interface{} {
	return mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(decimal.NewFromInt(expected))
	})
}

func TestRegister_Success(t *testing.T) {
	svc, repo, _, _, _ := newTestService()
	ctx := context.Background()

	repo.On("WithinTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
	repo.On("InsertUser", ctx, "alice", mock.AnythingOfType("string")).Return(int64(1), nil)
	repo.On("UpdateUserCash", ctx, int64(1), decimalEq(10000)).Return(nil)
	repo.On("InsertTransaction", ctx, mock.MatchedBy(func(tr model.Transaction) bool {
		return tr.UserID == 1 &&
			tr.Action == model.ActionBonus &&
			tr.Symbol == "" &&
			tr.Shares == 0 &&
			tr.Price.Equal(decimal.NewFromInt(10000))
	})).Return(int64(1), nil)

	user, err := svc.Register(ctx, "alice", "hunter2", "hunter2")

	assert.NoError(t, err)
	assert.Equal(t, int64(1), user.UserID)
	assert.Equal(t, "alice", user.Username)
	assert.True(t, user.Cash.Equal(decimal.NewFromInt(10000)))
	repo.AssertExpectations(t)
}

func TestRegister_UsernameTaken(t *testing.T) {
	svc, repo, _, _, _ := newTestService()
	ctx := context.Background()

	repo.On("WithinTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
	repo.On("InsertUser", ctx, "alice", mock.AnythingOfType("string")).Return(int64(0), repository.ErrAlreadyExists)

	_, err := svc.Register(ctx, "alice", "hunter2", "hunter2")

	assert.ErrorIs(t, err, service.ErrUsernameTaken)
	repo.AssertNotCalled(t, "InsertTransaction", mock.Anything, mock.Anything)
}

func TestRegister_Validation(t *testing.T) {
	svc, _, _, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "", "hunter2", "hunter2")
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = svc.Register(ctx, "alice", "", "")
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = svc.Register(ctx, "alice", "hunter2", "hunter3")
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestAuthenticate(t *testing.T) {
	svc, repo, _, _, _ := newTestService()
	ctx := context.Background()

	passHash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	assert.NoError(t, err)

	stored := model.User{UserID: 1, Username: "alice", PassHash: string(passHash), Cash: decimal.NewFromInt(10000)}
	repo.On("GetUserByUsername", ctx, "alice").Return(stored, nil)
	repo.On("GetUserByUsername", ctx, "nobody").Return(model.User{}, repository.ErrNotFound)

	user, err := svc.Authenticate(ctx, "alice", "hunter2")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), user.UserID)

	_, err = svc.Authenticate(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, service.ErrAuth)

	_, err = svc.Authenticate(ctx, "nobody", "hunter2")
	assert.ErrorIs(t, err, service.ErrAuth)

	_, err = svc.Authenticate(ctx, "", "hunter2")
	assert.ErrorIs(t, err, service.ErrAuth)
}

func TestQuote_CacheMissPrimesFromApi(t *testing.T) {
	svc, _, cache, quoteApi, _ := newTestService()
	ctx := context.Background()

	apple := model.Quote{Symbol: "AAPL", Name: "Apple Inc", Price: decimal.NewFromInt(50)}
	cache.On("GetQuote", ctx, "AAPL").Return(model.Quote{}, errCacheMiss)
	quoteApi.On("GetQuote", ctx, "AAPL").Return(apple, nil)
	cache.On("SetQuotes", mock.Anything, []model.Quote{apple}).Return(nil).Maybe()

	quote, err := svc.Quote(ctx, "AAPL")

	assert.NoError(t, err)
	assert.Equal(t, apple, quote)
}

func TestQuote_UnknownSymbol(t *testing.T) {
	svc, _, cache, quoteApi, _ := newTestService()
	ctx := context.Background()

	cache.On("GetQuote", ctx, "NOPE").Return(model.Quote{}, errCacheMiss)
	quoteApi.On("GetQuote", ctx, "NOPE").Return(model.Quote{}, externalApi.ErrNotFound)

	_, err := svc.Quote(ctx, "NOPE")
	assert.ErrorIs(t, err, service.ErrUnknownSymbol)
}

func TestQuote_NonPositivePrice(t *testing.T) {
	svc, _, cache, _, _ := newTestService()
	ctx := context.Background()

	cache.On("GetQuote", ctx, "ZERO").Return(model.Quote{Symbol: "ZERO", Price: decimal.Zero}, nil)

	_, err := svc.Quote(ctx, "ZERO")
	assert.ErrorIs(t, err, service.ErrUnknownSymbol)
}

func TestQuote_EmptySymbol(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	_, err := svc.Quote(context.Background(), "")
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestDeposit_Success(t *testing.T) {
	svc, repo, _, _, _ := newTestService()
	ctx := context.Background()

	repo.On("WithinTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
	repo.On("GetUserForUpdate", ctx, int64(1)).Return(model.User{UserID: 1, Cash: decimal.NewFromInt(10000)}, nil)
	repo.On("UpdateUserCash", ctx, int64(1), decimalEq(10250)).Return(nil)
	repo.On("InsertTransaction", ctx, mock.MatchedBy(func(tr model.Transaction) bool {
		return tr.Action == model.ActionDeposit && tr.Price.Equal(decimal.NewFromInt(250))
	})).Return(int64(2), nil)

	cash, err := svc.Deposit(ctx, 1, 250)

	assert.NoError(t, err)
	assert.True(t, cash.Equal(decimal.NewFromInt(10250)))
	repo.AssertExpectations(t)
}

func TestDeposit_Validation(t *testing.T) {
	svc, _, _, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Deposit(ctx, 1, 0)
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = svc.Deposit(ctx, 1, -50)
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestWithdraw_RecordsNegativeAmount(t *testing.T) {
	svc, repo, _, _, _ := newTestService()
	ctx := context.Background()

	repo.On("WithinTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
	repo.On("GetUserForUpdate", ctx, int64(1)).Return(model.User{UserID: 1, Cash: decimal.NewFromInt(10000)}, nil)
	repo.On("UpdateUserCash", ctx, int64(1), decimalEq(9750)).Return(nil)
	repo.On("InsertTransaction", ctx, mock.MatchedBy(func(tr model.Transaction) bool {
		return tr.Action == model.ActionWithdraw && tr.Price.Equal(decimal.NewFromInt(-250))
	})).Return(int64(2), nil)

	cash, err := svc.Withdraw(ctx, 1, 250)

	assert.NoError(t, err)
	assert.True(t, cash.Equal(decimal.NewFromInt(9750)))
	repo.AssertExpectations(t)
}

func TestWithdraw_InsufficientFunds(t *testing.T) {
	svc, repo, _, _, _ := newTestService()
	ctx := context.Background()

	repo.On("WithinTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
	repo.On("GetUserForUpdate", ctx, int64(1)).Return(model.User{UserID: 1, Cash: decimal.NewFromInt(9500)}, nil)

	_, err := svc.Withdraw(ctx, 1, 20000)

	assert.ErrorIs(t, err, service.ErrInsufficientFunds)
	repo.AssertNotCalled(t, "UpdateUserCash", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "InsertTransaction", mock.Anything, mock.Anything)
}

func TestBuy_Success(t *testing.T) {
	svc, repo, cache, _, _ := newTestService()
	ctx := context.Background()

	cache.On("GetQuote", ctx, "AAPL").Return(model.Quote{Symbol: "AAPL", Name: "Apple Inc", Price: decimal.NewFromInt(50)}, nil)

	repo.On("WithinTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
	repo.On("GetUserForUpdate", ctx, int64(1)).Return(model.User{UserID: 1, Cash: decimal.NewFromInt(10000)}, nil)
	repo.On("InsertTransaction", ctx, mock.MatchedBy(func(tr model.Transaction) bool {
		return tr.UserID == 1 &&
			tr.Symbol == "AAPL" &&
			tr.Action == model.ActionBuy &&
			tr.Shares == 10 &&
			tr.Price.Equal(decimal.NewFromInt(50))
	})).Return(int64(2), nil)
	repo.On("AddPositionShares", ctx, int64(1), "AAPL", 10).Return(nil)
	repo.On("UpdateUserCash", ctx, int64(1), decimalEq(9500)).Return(nil)

	result, err := svc.Buy(ctx, 1, "AAPL", 10)

	assert.NoError(t, err)
	assert.Equal(t, "AAPL", result.Symbol)
	assert.Equal(t, 10, result.Shares)
	assert.True(t, result.Total.Equal(decimal.NewFromInt(500)))
	assert.True(t, result.Cash.Equal(decimal.NewFromInt(9500)))
	repo.AssertExpectations(t)
}

func TestBuy_InsufficientFunds(t *testing.T) {
	svc, repo, cache, _, _ := newTestService()
	ctx := context.Background()

	cache.On("GetQuote", ctx, "AAPL").Return(model.Quote{Symbol: "AAPL", Name: "Apple Inc", Price: decimal.NewFromInt(50)}, nil)

	repo.On("WithinTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
	repo.On("GetUserForUpdate", ctx, int64(1)).Return(model.User{UserID: 1, Cash: decimal.NewFromInt(100)}, nil)

	_, err := svc.Buy(ctx, 1, "AAPL", 3)

	assert.ErrorIs(t, err, service.ErrInsufficientFunds)
	repo.AssertNotCalled(t, "InsertTransaction", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "AddPositionShares", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "UpdateUserCash", mock.Anything, mock.Anything, mock.Anything)
}

func TestBuy_Validation(t *testing.T) {
	svc, _, _, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Buy(ctx, 1, "AAPL", 0)
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = svc.Buy(ctx, 1, "AAPL", -3)
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestSell_ToZeroDeletesPosition(t *testing.T) {
	svc, repo, cache, _, _ := newTestService()
	ctx := context.Background()

	cache.On("GetQuote", ctx, "AAPL").Return(model.Quote{Symbol: "AAPL", Name: "Apple Inc", Price: decimal.NewFromInt(60)}, nil)

	repo.On("WithinTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
	repo.On("GetUserForUpdate", ctx, int64(1)).Return(model.User{UserID: 1, Cash: decimal.NewFromInt(9500)}, nil)
	repo.On("GetPositionForUpdate", ctx, int64(1), "AAPL").Return(model.Position{UserID: 1, Symbol: "AAPL", Shares: 10}, nil)
	repo.On("InsertTransaction", ctx, mock.MatchedBy(func(tr model.Transaction) bool {
		return tr.Action == model.ActionSell && tr.Shares == 10 && tr.Price.Equal(decimal.NewFromInt(60))
	})).Return(int64(3), nil)
	repo.On("DeletePosition", ctx, int64(1), "AAPL").Return(nil)
	repo.On("UpdateUserCash", ctx, int64(1), decimalEq(10100)).Return(nil)

	result, err := svc.Sell(ctx, 1, "AAPL", 10)

	assert.NoError(t, err)
	assert.True(t, result.Cash.Equal(decimal.NewFromInt(10100)))
	repo.AssertNotCalled(t, "UpdatePositionShares", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestSell_PartialKeepsPosition(t *testing.T) {
	svc, repo, cache, _, _ := newTestService()
	ctx := context.Background()

	cache.On("GetQuote", ctx, "AAPL").Return(model.Quote{Symbol: "AAPL", Name: "Apple Inc", Price: decimal.NewFromInt(60)}, nil)

	repo.On("WithinTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
	repo.On("GetUserForUpdate", ctx, int64(1)).Return(model.User{UserID: 1, Cash: decimal.NewFromInt(9500)}, nil)
	repo.On("GetPositionForUpdate", ctx, int64(1), "AAPL").Return(model.Position{UserID: 1, Symbol: "AAPL", Shares: 10}, nil)
	repo.On("InsertTransaction", ctx, mock.Anything).Return(int64(3), nil)
	repo.On("UpdatePositionShares", ctx, int64(1), "AAPL", 6).Return(nil)
	repo.On("UpdateUserCash", ctx, int64(1), decimalEq(9740)).Return(nil)

	_, err := svc.Sell(ctx, 1, "AAPL", 4)

	assert.NoError(t, err)
	repo.AssertNotCalled(t, "DeletePosition", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestSell_NotOwned(t *testing.T) {
	svc, repo, cache, _, _ := newTestService()
	ctx := context.Background()

	cache.On("GetQuote", ctx, "MSFT").Return(model.Quote{Symbol: "MSFT", Name: "Microsoft", Price: decimal.NewFromInt(300)}, nil)

	repo.On("WithinTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
	repo.On("GetUserForUpdate", ctx, int64(1)).Return(model.User{UserID: 1, Cash: decimal.NewFromInt(9500)}, nil)
	repo.On("GetPositionForUpdate", ctx, int64(1), "MSFT").Return(model.Position{}, repository.ErrNotFound)

	_, err := svc.Sell(ctx, 1, "MSFT", 1)

	assert.ErrorIs(t, err, service.ErrNotOwned)
	repo.AssertNotCalled(t, "InsertTransaction", mock.Anything, mock.Anything)
}

func TestSell_InsufficientShares(t *testing.T) {
	svc, repo, cache, _, _ := newTestService()
	ctx := context.Background()

	cache.On("GetQuote", ctx, "AAPL").Return(model.Quote{Symbol: "AAPL", Name: "Apple Inc", Price: decimal.NewFromInt(60)}, nil)

	repo.On("WithinTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
	repo.On("GetUserForUpdate", ctx, int64(1)).Return(model.User{UserID: 1, Cash: decimal.NewFromInt(9500)}, nil)
	repo.On("GetPositionForUpdate", ctx, int64(1), "AAPL").Return(model.Position{UserID: 1, Symbol: "AAPL", Shares: 3}, nil)

	_, err := svc.Sell(ctx, 1, "AAPL", 10)

	assert.ErrorIs(t, err, service.ErrInsufficientShares)
	repo.AssertNotCalled(t, "InsertTransaction", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "UpdateUserCash", mock.Anything, mock.Anything, mock.Anything)
}

func TestPortfolioSnapshot(t *testing.T) {
	svc, repo, cache, _, _ := newTestService()
	ctx := context.Background()

	repo.On("GetUser", ctx, int64(1)).Return(model.User{UserID: 1, Username: "alice", Cash: decimal.NewFromInt(9500)}, nil)
	repo.On("GetPositions", ctx, int64(1)).Return([]model.Position{
		{UserID: 1, Symbol: "AAPL", Shares: 10},
		{UserID: 1, Symbol: "MSFT", Shares: 2},
	}, nil)
	cache.On("GetQuotes", ctx, []string{"AAPL", "MSFT"}).Return(map[string]model.Quote{
		"AAPL": {Symbol: "AAPL", Name: "Apple Inc", Price: decimal.NewFromInt(50)},
		"MSFT": {Symbol: "MSFT", Name: "Microsoft", Price: decimal.NewFromInt(300)},
	}, nil)

	snapshot, err := svc.PortfolioSnapshot(ctx, 1)

	assert.NoError(t, err)
	assert.Len(t, snapshot.Positions, 2)
	assert.True(t, snapshot.Positions[0].Subtotal.Equal(decimal.NewFromInt(500)))
	assert.True(t, snapshot.Positions[1].Subtotal.Equal(decimal.NewFromInt(600)))
	assert.True(t, snapshot.Cash.Equal(decimal.NewFromInt(9500)))
	assert.True(t, snapshot.Total.Equal(decimal.NewFromInt(1100)))
	assert.True(t, snapshot.Equity.Equal(decimal.NewFromInt(10600)))

	// a read-only view, asking twice changes nothing
	again, err := svc.PortfolioSnapshot(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, snapshot, again)
}

func TestPortfolioSnapshot_Empty(t *testing.T) {
	svc, repo, _, _, _ := newTestService()
	ctx := context.Background()

	repo.On("GetUser", ctx, int64(1)).Return(model.User{UserID: 1, Cash: decimal.NewFromInt(10000)}, nil)
	repo.On("GetPositions", ctx, int64(1)).Return([]model.Position{}, nil)

	snapshot, err := svc.PortfolioSnapshot(ctx, 1)

	assert.NoError(t, err)
	assert.Empty(t, snapshot.Positions)
	assert.True(t, snapshot.Total.Equal(decimal.Zero))
	assert.True(t, snapshot.Equity.Equal(decimal.NewFromInt(10000)))
}

func TestPortfolioSnapshot_UnpricedSymbolAborts(t *testing.T) {
	svc, repo, cache, quoteApi, _ := newTestService()
	ctx := context.Background()

	repo.On("GetUser", ctx, int64(1)).Return(model.User{UserID: 1, Cash: decimal.NewFromInt(9500)}, nil)
	repo.On("GetPositions", ctx, int64(1)).Return([]model.Position{
		{UserID: 1, Symbol: "GONE", Shares: 5},
	}, nil)
	cache.On("GetQuotes", ctx, []string{"GONE"}).Return(map[string]model.Quote{}, nil)
	quoteApi.On("GetQuotes", ctx, []string{"GONE"}).Return(map[string]model.Quote{}, nil)

	_, err := svc.PortfolioSnapshot(ctx, 1)

	assert.ErrorIs(t, err, service.ErrUnknownSymbol)
}

func TestHistory(t *testing.T) {
	svc, repo, _, _, _ := newTestService()
	ctx := context.Background()

	transactions := []model.Transaction{
		{TransactionID: 1, UserID: 1, Action: model.ActionBonus, Price: decimal.NewFromInt(10000)},
		{TransactionID: 2, UserID: 1, Symbol: "AAPL", Action: model.ActionBuy, Shares: 10, Price: decimal.NewFromInt(50)},
	}
	repo.On("GetTransactions", ctx, int64(1)).Return(transactions, nil)

	got, err := svc.History(ctx, 1)

	assert.NoError(t, err)
	assert.Equal(t, transactions, got)
}

func TestChangeUsername(t *testing.T) {
	svc, repo, _, _, _ := newTestService()
	ctx := context.Background()

	passHash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	assert.NoError(t, err)

	repo.On("GetUser", ctx, int64(1)).Return(model.User{UserID: 1, Username: "alice", PassHash: string(passHash)}, nil)
	repo.On("UpdateUsername", ctx, int64(1), "alice2").Return(nil)

	assert.NoError(t, svc.ChangeUsername(ctx, 1, "alice", "hunter2", "alice2"))

	err = svc.ChangeUsername(ctx, 1, "bob", "hunter2", "alice2")
	assert.ErrorIs(t, err, service.ErrAuth)

	err = svc.ChangeUsername(ctx, 1, "alice", "wrong", "alice2")
	assert.ErrorIs(t, err, service.ErrAuth)
}

func TestChangeUsername_Taken(t *testing.T) {
	svc, repo, _, _, _ := newTestService()
	ctx := context.Background()

	passHash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	assert.NoError(t, err)

	repo.On("GetUser", ctx, int64(1)).Return(model.User{UserID: 1, Username: "alice", PassHash: string(passHash)}, nil)
	repo.On("UpdateUsername", ctx, int64(1), "bob").Return(repository.ErrAlreadyExists)

	err = svc.ChangeUsername(ctx, 1, "alice", "hunter2", "bob")
	assert.ErrorIs(t, err, service.ErrUsernameTaken)
}

func TestChangePassword(t *testing.T) {
	svc, repo, _, _, _ := newTestService()
	ctx := context.Background()

	passHash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	assert.NoError(t, err)

	repo.On("GetUser", ctx, int64(1)).Return(model.User{UserID: 1, Username: "alice", PassHash: string(passHash)}, nil)
	repo.On("UpdatePassHash", ctx, int64(1), mock.AnythingOfType("string")).Return(nil)

	assert.NoError(t, svc.ChangePassword(ctx, 1, "hunter2", "newpass", "newpass"))

	err = svc.ChangePassword(ctx, 1, "hunter2", "newpass", "different")
	assert.ErrorIs(t, err, service.ErrValidation)

	err = svc.ChangePassword(ctx, 1, "wrong", "newpass", "newpass")
	assert.ErrorIs(t, err, service.ErrAuth)
}

func TestStatement(t *testing.T) {
	svc, repo, cache, _, reportGen := newTestService()
	ctx := context.Background()

	repo.On("GetUser", ctx, int64(1)).Return(model.User{UserID: 1, Username: "alice", Cash: decimal.NewFromInt(9500)}, nil)
	repo.On("GetPositions", ctx, int64(1)).Return([]model.Position{{UserID: 1, Symbol: "AAPL", Shares: 10}}, nil)
	cache.On("GetQuotes", ctx, []string{"AAPL"}).Return(map[string]model.Quote{
		"AAPL": {Symbol: "AAPL", Name: "Apple Inc", Price: decimal.NewFromInt(50)},
	}, nil)
	repo.On("GetTransactions", ctx, int64(1)).Return([]model.Transaction{}, nil)
	reportGen.On("Generate", ctx, mock.MatchedBy(func(st model.Statement) bool {
		return st.Username == "alice" && len(st.Snapshot.Positions) == 1
	})).Return([]byte("report"), ".xlsx", nil)

	fileBytes, ext, err := svc.Statement(ctx, 1)

	assert.NoError(t, err)
	assert.Equal(t, []byte("report"), fileBytes)
	assert.Equal(t, ".xlsx", ext)
}

func TestRefreshQuoteCache(t *testing.T) {
	svc, repo, cache, quoteApi, _ := newTestService()
	ctx := context.Background()

	apple := model.Quote{Symbol: "AAPL", Name: "Apple Inc", Price: decimal.NewFromInt(50)}
	repo.On("GetHeldSymbols", ctx).Return([]string{"AAPL"}, nil)
	quoteApi.On("GetQuotes", ctx, []string{"AAPL"}).Return(map[string]model.Quote{"AAPL": apple}, nil)
	cache.On("SetQuotes", ctx, []model.Quote{apple}).Return(nil)

	assert.NoError(t, svc.RefreshQuoteCache(ctx))
	cache.AssertExpectations(t)
}

func TestRefreshQuoteCache_NoHoldings(t *testing.T) {
	svc, repo, cache, quoteApi, _ := newTestService()
	ctx := context.Background()

	repo.On("GetHeldSymbols", ctx).Return([]string{}, nil)

	assert.NoError(t, svc.RefreshQuoteCache(ctx))
	quoteApi.AssertNotCalled(t, "GetQuotes", mock.Anything, mock.Anything)
	cache.AssertNotCalled(t, "SetQuotes", mock.Anything, mock.Anything)
}

// memoryRepository backs the concurrency test below with an in-memory ledger.
// WithinTransaction takes a single lock, so concurrent mutations serialize the
// same way row locking serializes them in postgres.
type memoryRepository struct {
	mu           sync.Mutex
	user         model.User
	positions    map[string]int
	transactions []model.Transaction
}

func newMemoryRepository(user model.User) *memoryRepository {
	return &memoryRepository{user: user, positions: map[string]int{}}
}

func (r *memoryRepository) WithinTransaction(ctx context.Context, tFunc func(ctx context.Context) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return tFunc(ctx)
}

func (r *memoryRepository) InsertUser(ctx context.Context, username, passHash string) (int64, error) {
	return 0, errors.New("not implemented")
}

func (r *memoryRepository) GetUser(ctx context.Context, userID int64) (model.User, error) {
	return r.user, nil
}

func (r *memoryRepository) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	return r.user, nil
}

func (r *memoryRepository) GetUserForUpdate(ctx context.Context, userID int64) (model.User, error) {
	return r.user, nil
}

func (r *memoryRepository) UpdateUserCash(ctx context.Context, userID int64, cash decimal.Decimal) error {
	r.user.Cash = cash
	return nil
}

func (r *memoryRepository) UpdateUsername(ctx context.Context, userID int64, username string) error {
	r.user.Username = username
	return nil
}

func (r *memoryRepository) UpdatePassHash(ctx context.Context, userID int64, passHash string) error {
	r.user.PassHash = passHash
	return nil
}

func (r *memoryRepository) GetPositionForUpdate(ctx context.Context, userID int64, symbol string) (model.Position, error) {
	shares, ok := r.positions[symbol]
	if !ok {
		return model.Position{}, repository.ErrNotFound
	}
	return model.Position{UserID: userID, Symbol: symbol, Shares: shares}, nil
}

func (r *memoryRepository) GetPositions(ctx context.Context, userID int64) ([]model.Position, error) {
	positions := make([]model.Position, 0, len(r.positions))
	for symbol, shares := range r.positions {
		positions = append(positions, model.Position{UserID: userID, Symbol: symbol, Shares: shares})
	}
	return positions, nil
}

func (r *memoryRepository) AddPositionShares(ctx context.Context, userID int64, symbol string, shares int) error {
	r.positions[symbol] += shares
	return nil
}

func (r *memoryRepository) UpdatePositionShares(ctx context.Context, userID int64, symbol string, shares int) error {
	r.positions[symbol] = shares
	return nil
}

func (r *memoryRepository) DeletePosition(ctx context.Context, userID int64, symbol string) error {
	delete(r.positions, symbol)
	return nil
}

func (r *memoryRepository) GetHeldSymbols(ctx context.Context) ([]string, error) {
	symbols := make([]string, 0, len(r.positions))
	for symbol := range r.positions {
		symbols = append(symbols, symbol)
	}
	return symbols, nil
}

func (r *memoryRepository) InsertTransaction(ctx context.Context, transaction model.Transaction) (int64, error) {
	transaction.TransactionID = int64(len(r.transactions) + 1)
	r.transactions = append(r.transactions, transaction)
	return transaction.TransactionID, nil
}

func (r *memoryRepository) GetTransactions(ctx context.Context, userID int64) ([]model.Transaction, error) {
	return r.transactions, nil
}

// Two simultaneous buys against a balance that covers only one of them: the
// cash check runs inside the transaction, so exactly one buy goes through and
// the balance never goes negative.
func TestBuy_ConcurrentDoubleSpend(t *testing.T) {
	repo := newMemoryRepository(model.User{UserID: 1, Username: "alice", Cash: decimal.NewFromInt(100)})
	cache := new(MockCache)
	quoteApi := new(MockQuoteApi)

	cache.On("GetQuote", mock.Anything, "SNAP").Return(model.Quote{Symbol: "SNAP", Name: "Snap Inc", Price: decimal.NewFromInt(60)}, nil)

	svc := New(repo, cache, quoteApi, new(MockReportGenerator))

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Buy(context.Background(), 1, "SNAP", 1)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var rejected, accepted int
	for err := range errs {
		if errors.Is(err, service.ErrInsufficientFunds) {
			rejected++
		} else if err == nil {
			accepted++
		} else {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, accepted)
	assert.Equal(t, 1, rejected)
	assert.True(t, repo.user.Cash.Equal(decimal.NewFromInt(40)))
	assert.Equal(t, 1, repo.positions["SNAP"])
	assert.Len(t, repo.transactions, 1)
}
