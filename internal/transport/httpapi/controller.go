package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"papertrade/config"
	"papertrade/internal/model"
	"papertrade/internal/service"
	"papertrade/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const internalErrMsg = "internal error"

type LedgerService interface {
	Register(ctx context.Context, username, password, confirm string) (model.User, error)
	Authenticate(ctx context.Context, username, password string) (model.User, error)
	Quote(ctx context.Context, symbol string) (model.Quote, error)
	Deposit(ctx context.Context, userID int64, amount int64) (decimal.Decimal, error)
	Withdraw(ctx context.Context, userID int64, amount int64) (decimal.Decimal, error)
	Buy(ctx context.Context, userID int64, symbol string, shares int) (model.TradeResult, error)
	Sell(ctx context.Context, userID int64, symbol string, shares int) (model.TradeResult, error)
	PortfolioSnapshot(ctx context.Context, userID int64) (model.PortfolioSnapshot, error)
	History(ctx context.Context, userID int64) ([]model.Transaction, error)
	ChangeUsername(ctx context.Context, userID int64, currentUsername, password, newUsername string) error
	ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword, confirm string) error
	Statement(ctx context.Context, userID int64) (fileBytes []byte, fileExtension string, err error)
}

type Session interface {
	SetSession(ctx context.Context, token string, userID int64) error
	DeleteSession(ctx context.Context, token string) error
}

type Controller struct {
	cfg           *config.Config
	ledgerService LedgerService
	session       Session
}

func NewController(cfg *config.Config, ledgerService LedgerService, session Session) *Controller {
	return &Controller{
		cfg:           cfg,
		ledgerService: ledgerService,
		session:       session,
	}
}

func userIDFromGin(c *gin.Context) int64 {
	return c.GetInt64("userID")
}

// respondServiceError maps the service error taxonomy onto HTTP statuses.
// Anything outside the taxonomy is a storage or provider failure.
func respondServiceError(c *gin.Context, rqID string, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrAuth):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInsufficientFunds):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUnknownSymbol):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUsernameTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotOwned), errors.Is(err, service.ErrInsufficientShares):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		slog.Error("unexpected service error", slog.String("rqID", rqID), slog.String("err", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": internalErrMsg})
	}
}

func (ctrl *Controller) startSession(ctx context.Context, c *gin.Context, userID int64) error {
	token := uuid.NewString()
	if err := ctrl.session.SetSession(ctx, token, userID); err != nil {
		return err
	}

	maxAge := int(ctrl.cfg.SessionExpiration.Seconds())
	c.SetCookie(SessionCookie, token, maxAge, "/", "", false, true)
	return nil
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Confirm  string `json:"confirm"`
}

func (ctrl *Controller) Register(c *gin.Context) {
	ctx := utils.CreateCtxFromGin(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := ctrl.ledgerService.Register(ctx, req.Username, req.Password, req.Confirm)
	if err != nil {
		respondServiceError(c, rqID, err)
		return
	}

	if err := ctrl.startSession(ctx, c, user.UserID); err != nil {
		slog.Error("got error from session.SetSession", slog.String("rqID", rqID), slog.String("err", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": internalErrMsg})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"username": user.Username,
		"cash":     user.Cash,
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (ctrl *Controller) Login(c *gin.Context) {
	ctx := utils.CreateCtxFromGin(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := ctrl.ledgerService.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		respondServiceError(c, rqID, err)
		return
	}

	if err := ctrl.startSession(ctx, c, user.UserID); err != nil {
		slog.Error("got error from session.SetSession", slog.String("rqID", rqID), slog.String("err", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": internalErrMsg})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"username": user.Username,
		"cash":     user.Cash,
	})
}

func (ctrl *Controller) Logout(c *gin.Context) {
	ctx := utils.CreateCtxFromGin(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	if token, err := c.Cookie(SessionCookie); err == nil {
		if err := ctrl.session.DeleteSession(ctx, token); err != nil {
			slog.Error("got error from session.DeleteSession", slog.String("rqID", rqID), slog.String("err", err.Error()))
		}
	}

	c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (ctrl *Controller) Quote(c *gin.Context) {
	ctx := utils.CreateCtxFromGin(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	quote, err := ctrl.ledgerService.Quote(ctx, c.Query("symbol"))
	if err != nil {
		respondServiceError(c, rqID, err)
		return
	}

	c.JSON(http.StatusOK, quote)
}

type tradeRequest struct {
	Symbol string `json:"symbol"`
	Shares int    `json:"shares"`
}

func (ctrl *Controller) Buy(c *gin.Context) {
	ctx := utils.CreateCtxFromGin(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	var req tradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := ctrl.ledgerService.Buy(ctx, userIDFromGin(c), req.Symbol, req.Shares)
	if err != nil {
		respondServiceError(c, rqID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"symbol": result.Symbol,
		"name":   result.Name,
		"shares": result.Shares,
		"price":  result.Price,
		"total":  result.Total,
		"cash":   result.Cash,
	})
}

func (ctrl *Controller) Sell(c *gin.Context) {
	ctx := utils.CreateCtxFromGin(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	var req tradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := ctrl.ledgerService.Sell(ctx, userIDFromGin(c), req.Symbol, req.Shares)
	if err != nil {
		respondServiceError(c, rqID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"symbol": result.Symbol,
		"name":   result.Name,
		"shares": result.Shares,
		"price":  result.Price,
		"total":  result.Total,
		"cash":   result.Cash,
	})
}

type cashRequest struct {
	Amount int64 `json:"amount"`
}

func (ctrl *Controller) Deposit(c *gin.Context) {
	ctx := utils.CreateCtxFromGin(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	var req cashRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cash, err := ctrl.ledgerService.Deposit(ctx, userIDFromGin(c), req.Amount)
	if err != nil {
		respondServiceError(c, rqID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"cash": cash})
}

func (ctrl *Controller) Withdraw(c *gin.Context) {
	ctx := utils.CreateCtxFromGin(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	var req cashRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cash, err := ctrl.ledgerService.Withdraw(ctx, userIDFromGin(c), req.Amount)
	if err != nil {
		respondServiceError(c, rqID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"cash": cash})
}

func (ctrl *Controller) Portfolio(c *gin.Context) {
	ctx := utils.CreateCtxFromGin(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	snapshot, err := ctrl.ledgerService.PortfolioSnapshot(ctx, userIDFromGin(c))
	if err != nil {
		respondServiceError(c, rqID, err)
		return
	}

	positions := make([]gin.H, 0, len(snapshot.Positions))
	for _, position := range snapshot.Positions {
		positions = append(positions, gin.H{
			"symbol":   position.Symbol,
			"name":     position.Name,
			"shares":   position.Shares,
			"price":    position.Price,
			"subtotal": position.Subtotal,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"positions": positions,
		"cash":      snapshot.Cash,
		"total":     snapshot.Total,
		"equity":    snapshot.Equity,
	})
}

func (ctrl *Controller) History(c *gin.Context) {
	ctx := utils.CreateCtxFromGin(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	transactions, err := ctrl.ledgerService.History(ctx, userIDFromGin(c))
	if err != nil {
		respondServiceError(c, rqID, err)
		return
	}

	history := make([]gin.H, 0, len(transactions))
	for _, transaction := range transactions {
		entry := gin.H{
			"action": transaction.Action,
			"price":  transaction.Price,
			"time":   transaction.DtCreate,
		}
		if transaction.Symbol != "" {
			entry["symbol"] = transaction.Symbol
		}
		if transaction.Shares != 0 {
			entry["shares"] = transaction.Shares
		}
		history = append(history, entry)
	}

	c.JSON(http.StatusOK, gin.H{
		"transactions": history,
		"count":        len(history),
	})
}

func (ctrl *Controller) Statement(c *gin.Context) {
	ctx := utils.CreateCtxFromGin(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	fileBytes, fileExtension, err := ctrl.ledgerService.Statement(ctx, userIDFromGin(c))
	if err != nil {
		respondServiceError(c, rqID, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="statement%s"`, fileExtension))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", fileBytes)
}

type changeUsernameRequest struct {
	CurrentUsername string `json:"current_username"`
	Password        string `json:"password"`
	NewUsername     string `json:"new_username"`
}

func (ctrl *Controller) ChangeUsername(c *gin.Context) {
	ctx := utils.CreateCtxFromGin(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	var req changeUsernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := ctrl.ledgerService.ChangeUsername(ctx, userIDFromGin(c), req.CurrentUsername, req.Password, req.NewUsername)
	if err != nil {
		respondServiceError(c, rqID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"username": req.NewUsername})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	Confirm         string `json:"confirm"`
}

func (ctrl *Controller) ChangePassword(c *gin.Context) {
	ctx := utils.CreateCtxFromGin(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := ctrl.ledgerService.ChangePassword(ctx, userIDFromGin(c), req.CurrentPassword, req.NewPassword, req.Confirm)
	if err != nil {
		respondServiceError(c, rqID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password changed"})
}
