package ledgerService

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"papertrade/data/repository"
	"papertrade/internal/externalApi"
	"papertrade/internal/model"
	"papertrade/internal/service"
	"papertrade/utils"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// startingBonus is credited once at registration, as a single transaction
// recorded together with the new user row.
const startingBonus = 10000

type QuoteApi interface {
	GetQuote(ctx context.Context, symbol string) (model.Quote, error)
	GetQuotes(ctx context.Context, symbols []string) (map[string]model.Quote, error)
}

type Cache interface {
	GetQuote(ctx context.Context, symbol string) (model.Quote, error)
	GetQuotes(ctx context.Context, symbols []string) (map[string]model.Quote, error)
	SetQuotes(ctx context.Context, quotes []model.Quote) error
}

type Repository interface {
	WithinTransaction(ctx context.Context, tFunc func(ctx context.Context) error) error
	InsertUser(ctx context.Context, username, passHash string) (userID int64, err error)
	GetUser(ctx context.Context, userID int64) (model.User, error)
	GetUserByUsername(ctx context.Context, username string) (model.User, error)
	GetUserForUpdate(ctx context.Context, userID int64) (model.User, error)
	UpdateUserCash(ctx context.Context, userID int64, cash decimal.Decimal) error
	UpdateUsername(ctx context.Context, userID int64, username string) error
	UpdatePassHash(ctx context.Context, userID int64, passHash string) error
	GetPositionForUpdate(ctx context.Context, userID int64, symbol string) (model.Position, error)
	GetPositions(ctx context.Context, userID int64) ([]model.Position, error)
	AddPositionShares(ctx context.Context, userID int64, symbol string, shares int) error
	UpdatePositionShares(ctx context.Context, userID int64, symbol string, shares int) error
	DeletePosition(ctx context.Context, userID int64, symbol string) error
	GetHeldSymbols(ctx context.Context) ([]string, error)
	InsertTransaction(ctx context.Context, transaction model.Transaction) (transactionID int64, err error)
	GetTransactions(ctx context.Context, userID int64) ([]model.Transaction, error)
}

type ReportGenerator interface {
	Generate(ctx context.Context, statement model.Statement) (fileBytes []byte, fileExtension string, err error)
}

// LedgerService owns the user/position/transaction state. Every mutation
// runs inside a single repository transaction with the affected rows locked,
// so two concurrent requests for the same user serialize instead of
// overwriting each other.
type LedgerService struct {
	repo      Repository
	cache     Cache
	quoteApi  QuoteApi
	reportGen ReportGenerator
}

func New(repo Repository, cache Cache, quoteApi QuoteApi, reportGen ReportGenerator) *LedgerService {
	return &LedgerService{
		repo:      repo,
		cache:     cache,
		quoteApi:  quoteApi,
		reportGen: reportGen,
	}
}

func (s *LedgerService) Register(ctx context.Context, username, password, confirm string) (user model.User, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "LedgerService.Register"

	slog.Debug("Register start", slog.String("rqID", rqID), slog.String("op", op), slog.String("username", username))
	defer func() {
		slog.Debug("Register finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("username", username))
	}()

	if username == "" || password == "" {
		return model.User{}, service.ErrValidation
	}
	if password != confirm {
		return model.User{}, service.ErrValidation
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("got error from bcrypt.GenerateFromPassword", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.User{}, err
	}

	bonus := decimal.NewFromInt(startingBonus)

	err = s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		userID, err := s.repo.InsertUser(ctx, username, string(passHash))
		if err != nil {
			if errors.Is(err, repository.ErrAlreadyExists) {
				return service.ErrUsernameTaken
			}
			return err
		}

		if err := s.repo.UpdateUserCash(ctx, userID, bonus); err != nil {
			return err
		}

		_, err = s.repo.InsertTransaction(ctx, model.Transaction{
			UserID:   userID,
			Action:   model.ActionBonus,
			Price:    bonus,
			DtCreate: time.Now(),
		})
		if err != nil {
			return err
		}

		user = model.User{UserID: userID, Username: username, Cash: bonus}
		return nil
	})
	if err != nil {
		if !errors.Is(err, service.ErrUsernameTaken) {
			slog.Error("registration failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
		return model.User{}, err
	}

	return user, nil
}

func (s *LedgerService) Authenticate(ctx context.Context, username, password string) (user model.User, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "LedgerService.Authenticate"

	slog.Debug("Authenticate start", slog.String("rqID", rqID), slog.String("op", op), slog.String("username", username))
	defer func() {
		slog.Debug("Authenticate finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("username", username))
	}()

	if username == "" || password == "" {
		return model.User{}, service.ErrAuth
	}

	user, err = s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, service.ErrAuth
		}
		slog.Error("got error from repo.GetUserByUsername", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PassHash), []byte(password)); err != nil {
		return model.User{}, service.ErrAuth
	}

	return user, nil
}

// getQuote resolves a symbol through the cache first, then the provider, and
// primes the cache on a provider hit. A symbol the provider does not know,
// or one quoted at a non-positive price, is ErrUnknownSymbol.
func (s *LedgerService) getQuote(ctx context.Context, symbol string) (model.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "LedgerService.getQuote"

	quote, err := s.cache.GetQuote(ctx, symbol)
	if err != nil {
		quote, err = s.quoteApi.GetQuote(ctx, symbol)
		if err != nil {
			if errors.Is(err, externalApi.ErrNotFound) {
				slog.Warn("symbol not found in quoteApi", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))
				return model.Quote{}, service.ErrUnknownSymbol
			}
			slog.Error("can't get quote from quoteApi", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
			return model.Quote{}, err
		}

		go s.cache.SetQuotes(context.WithoutCancel(ctx), []model.Quote{quote})
	}

	if quote.Price.LessThanOrEqual(decimal.Zero) {
		return model.Quote{}, service.ErrUnknownSymbol
	}

	return quote, nil
}

func (s *LedgerService) Quote(ctx context.Context, symbol string) (quote model.Quote, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "LedgerService.Quote"

	slog.Debug("Quote start", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))
	defer func() {
		slog.Debug("Quote finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))
	}()

	if symbol == "" {
		return model.Quote{}, service.ErrValidation
	}

	return s.getQuote(ctx, symbol)
}

func (s *LedgerService) Deposit(ctx context.Context, userID int64, amount int64) (cash decimal.Decimal, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "LedgerService.Deposit"

	slog.Debug("Deposit start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID), slog.Int64("amount", amount))
	defer func() {
		slog.Debug("Deposit finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	}()

	if amount <= 0 {
		return decimal.Decimal{}, service.ErrValidation
	}

	err = s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		user, err := s.repo.GetUserForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		cash = user.Cash.Add(decimal.NewFromInt(amount))
		if err := s.repo.UpdateUserCash(ctx, userID, cash); err != nil {
			return err
		}

		_, err = s.repo.InsertTransaction(ctx, model.Transaction{
			UserID:   userID,
			Action:   model.ActionDeposit,
			Price:    decimal.NewFromInt(amount),
			DtCreate: time.Now(),
		})
		return err
	})
	if err != nil {
		slog.Error("deposit failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return decimal.Decimal{}, err
	}

	return cash, nil
}

func (s *LedgerService) Withdraw(ctx context.Context, userID int64, amount int64) (cash decimal.Decimal, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "LedgerService.Withdraw"

	slog.Debug("Withdraw start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID), slog.Int64("amount", amount))
	defer func() {
		slog.Debug("Withdraw finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	}()

	if amount <= 0 {
		return decimal.Decimal{}, service.ErrValidation
	}

	err = s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		user, err := s.repo.GetUserForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		withdrawal := decimal.NewFromInt(amount)
		if user.Cash.LessThan(withdrawal) {
			return service.ErrInsufficientFunds
		}

		cash = user.Cash.Sub(withdrawal)
		if err := s.repo.UpdateUserCash(ctx, userID, cash); err != nil {
			return err
		}

		_, err = s.repo.InsertTransaction(ctx, model.Transaction{
			UserID:   userID,
			Action:   model.ActionWithdraw,
			Price:    withdrawal.Neg(),
			DtCreate: time.Now(),
		})
		return err
	})
	if err != nil {
		if !errors.Is(err, service.ErrInsufficientFunds) {
			slog.Error("withdraw failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
		return decimal.Decimal{}, err
	}

	return cash, nil
}

func (s *LedgerService) Buy(ctx context.Context, userID int64, symbol string, shares int) (result model.TradeResult, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "LedgerService.Buy"

	slog.Debug("Buy start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID), slog.String("symbol", symbol), slog.Int("shares", shares))
	defer func() {
		slog.Debug("Buy finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID), slog.String("symbol", symbol))
	}()

	if shares <= 0 {
		return model.TradeResult{}, service.ErrValidation
	}

	quote, err := s.getQuote(ctx, symbol)
	if err != nil {
		return model.TradeResult{}, err
	}

	cost := quote.Price.Mul(decimal.NewFromInt(int64(shares)))

	err = s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		user, err := s.repo.GetUserForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		if user.Cash.LessThan(cost) {
			return service.ErrInsufficientFunds
		}

		_, err = s.repo.InsertTransaction(ctx, model.Transaction{
			UserID:   userID,
			Symbol:   quote.Symbol,
			Action:   model.ActionBuy,
			Shares:   shares,
			Price:    quote.Price,
			DtCreate: time.Now(),
		})
		if err != nil {
			return err
		}

		if err := s.repo.AddPositionShares(ctx, userID, quote.Symbol, shares); err != nil {
			return err
		}

		cash := user.Cash.Sub(cost)
		if err := s.repo.UpdateUserCash(ctx, userID, cash); err != nil {
			return err
		}

		result = model.TradeResult{
			Symbol: quote.Symbol,
			Name:   quote.Name,
			Shares: shares,
			Price:  quote.Price,
			Total:  cost,
			Cash:   cash,
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, service.ErrInsufficientFunds) {
			slog.Error("buy failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
		return model.TradeResult{}, err
	}

	return result, nil
}

func (s *LedgerService) Sell(ctx context.Context, userID int64, symbol string, shares int) (result model.TradeResult, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "LedgerService.Sell"

	slog.Debug("Sell start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID), slog.String("symbol", symbol), slog.Int("shares", shares))
	defer func() {
		slog.Debug("Sell finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID), slog.String("symbol", symbol))
	}()

	if shares <= 0 {
		return model.TradeResult{}, service.ErrValidation
	}

	quote, err := s.getQuote(ctx, symbol)
	if err != nil {
		return model.TradeResult{}, err
	}

	proceeds := quote.Price.Mul(decimal.NewFromInt(int64(shares)))

	err = s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		user, err := s.repo.GetUserForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		position, err := s.repo.GetPositionForUpdate(ctx, userID, quote.Symbol)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return service.ErrNotOwned
			}
			return err
		}

		if position.Shares < shares {
			return service.ErrInsufficientShares
		}

		_, err = s.repo.InsertTransaction(ctx, model.Transaction{
			UserID:   userID,
			Symbol:   quote.Symbol,
			Action:   model.ActionSell,
			Shares:   shares,
			Price:    quote.Price,
			DtCreate: time.Now(),
		})
		if err != nil {
			return err
		}

		// a position sold down to zero disappears from the portfolio
		remaining := position.Shares - shares
		if remaining == 0 {
			err = s.repo.DeletePosition(ctx, userID, quote.Symbol)
		} else {
			err = s.repo.UpdatePositionShares(ctx, userID, quote.Symbol, remaining)
		}
		if err != nil {
			return err
		}

		cash := user.Cash.Add(proceeds)
		if err := s.repo.UpdateUserCash(ctx, userID, cash); err != nil {
			return err
		}

		result = model.TradeResult{
			Symbol: quote.Symbol,
			Name:   quote.Name,
			Shares: shares,
			Price:  quote.Price,
			Total:  proceeds,
			Cash:   cash,
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, service.ErrNotOwned) && !errors.Is(err, service.ErrInsufficientShares) {
			slog.Error("sell failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
		return model.TradeResult{}, err
	}

	return result, nil
}

// getQuotes resolves every symbol or fails: missing symbols abort the caller
// rather than producing a partial result.
func (s *LedgerService) getQuotes(ctx context.Context, symbols []string) (map[string]model.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "LedgerService.getQuotes"

	if len(symbols) == 0 {
		return map[string]model.Quote{}, nil
	}

	quotes, err := s.cache.GetQuotes(ctx, symbols)
	if err != nil {
		slog.Warn("can't get quotes from cache", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		quotes = map[string]model.Quote{}
	}

	missing := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		if _, ok := quotes[symbol]; !ok {
			missing = append(missing, symbol)
		}
	}

	if len(missing) > 0 {
		fetched, err := s.quoteApi.GetQuotes(ctx, missing)
		if err != nil {
			return nil, err
		}

		fresh := make([]model.Quote, 0, len(fetched))
		for symbol, quote := range fetched {
			quotes[symbol] = quote
			fresh = append(fresh, quote)
		}
		if len(fresh) > 0 {
			go s.cache.SetQuotes(context.WithoutCancel(ctx), fresh)
		}
	}

	for _, symbol := range symbols {
		if _, ok := quotes[symbol]; !ok {
			slog.Warn("held symbol can't be priced", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))
			return nil, service.ErrUnknownSymbol
		}
	}

	return quotes, nil
}

func (s *LedgerService) PortfolioSnapshot(ctx context.Context, userID int64) (snapshot model.PortfolioSnapshot, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "LedgerService.PortfolioSnapshot"

	slog.Debug("PortfolioSnapshot start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	defer func() {
		slog.Debug("PortfolioSnapshot finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	}()

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		slog.Error("got error from repo.GetUser", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.PortfolioSnapshot{}, err
	}

	positions, err := s.repo.GetPositions(ctx, userID)
	if err != nil {
		slog.Error("got error from repo.GetPositions", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.PortfolioSnapshot{}, err
	}

	symbols := make([]string, 0, len(positions))
	for _, position := range positions {
		symbols = append(symbols, position.Symbol)
	}

	quotes, err := s.getQuotes(ctx, symbols)
	if err != nil {
		return model.PortfolioSnapshot{}, err
	}

	snapshot = model.PortfolioSnapshot{
		Positions: make([]model.PositionView, 0, len(positions)),
		Cash:      user.Cash,
		Total:     decimal.Zero,
	}

	for _, position := range positions {
		quote := quotes[position.Symbol]
		subtotal := quote.Price.Mul(decimal.NewFromInt(int64(position.Shares)))

		snapshot.Positions = append(snapshot.Positions, model.PositionView{
			Symbol:   position.Symbol,
			Name:     quote.Name,
			Shares:   position.Shares,
			Price:    quote.Price,
			Subtotal: subtotal,
		})
		snapshot.Total = snapshot.Total.Add(subtotal)
	}

	snapshot.Equity = snapshot.Cash.Add(snapshot.Total)

	return snapshot, nil
}

func (s *LedgerService) History(ctx context.Context, userID int64) (transactions []model.Transaction, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "LedgerService.History"

	slog.Debug("History start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	defer func() {
		slog.Debug("History finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	}()

	transactions, err = s.repo.GetTransactions(ctx, userID)
	if err != nil {
		slog.Error("got error from repo.GetTransactions", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	return transactions, nil
}

// ChangeUsername re-verifies the caller's current username and password
// before renaming. The username confirmation is redundant next to the
// session identity but kept for compatibility with the original flow.
func (s *LedgerService) ChangeUsername(ctx context.Context, userID int64, currentUsername, password, newUsername string) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "LedgerService.ChangeUsername"

	slog.Debug("ChangeUsername start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	defer func() {
		slog.Debug("ChangeUsername finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	}()

	if currentUsername == "" || password == "" || newUsername == "" {
		return service.ErrValidation
	}

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		slog.Error("got error from repo.GetUser", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	if user.Username != currentUsername {
		return service.ErrAuth
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PassHash), []byte(password)); err != nil {
		return service.ErrAuth
	}

	err = s.repo.UpdateUsername(ctx, userID, newUsername)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return service.ErrUsernameTaken
		}
		slog.Error("got error from repo.UpdateUsername", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return nil
}

func (s *LedgerService) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword, confirm string) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "LedgerService.ChangePassword"

	slog.Debug("ChangePassword start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	defer func() {
		slog.Debug("ChangePassword finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	}()

	if currentPassword == "" || newPassword == "" {
		return service.ErrValidation
	}
	if newPassword != confirm {
		return service.ErrValidation
	}

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		slog.Error("got error from repo.GetUser", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PassHash), []byte(currentPassword)); err != nil {
		return service.ErrAuth
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("got error from bcrypt.GenerateFromPassword", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	err = s.repo.UpdatePassHash(ctx, userID, string(passHash))
	if err != nil {
		slog.Error("got error from repo.UpdatePassHash", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return nil
}

// Statement builds the downloadable account statement: current holdings
// priced at live quotes plus the full transaction history.
func (s *LedgerService) Statement(ctx context.Context, userID int64) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "LedgerService.Statement"

	slog.Debug("Statement start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	defer func() {
		slog.Debug("Statement finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	}()

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		slog.Error("got error from repo.GetUser", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	snapshot, err := s.PortfolioSnapshot(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	transactions, err := s.History(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	return s.reportGen.Generate(ctx, model.Statement{
		Username:     user.Username,
		Snapshot:     snapshot,
		Transactions: transactions,
	})
}

// RefreshQuoteCache primes the quote cache for every held symbol. Runs on a
// schedule so portfolio views mostly hit the cache.
func (s *LedgerService) RefreshQuoteCache(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "LedgerService.RefreshQuoteCache"

	symbols, err := s.repo.GetHeldSymbols(ctx)
	if err != nil {
		slog.Error("got error from repo.GetHeldSymbols", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	if len(symbols) == 0 {
		return nil
	}

	quotes, err := s.quoteApi.GetQuotes(ctx, symbols)
	if err != nil {
		slog.Error("got error from quoteApi.GetQuotes", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	fresh := make([]model.Quote, 0, len(quotes))
	for _, quote := range quotes {
		fresh = append(fresh, quote)
	}

	return s.cache.SetQuotes(ctx, fresh)
}
