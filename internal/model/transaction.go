package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Action string

const (
	ActionBuy      Action = "Buy"
	ActionSell     Action = "Sell"
	ActionDeposit  Action = "Deposit"
	ActionWithdraw Action = "Withdraw"
	ActionBonus    Action = "Account Opening Bonus"
)

// Transaction is an append-only ledger record. Symbol and Shares are unset
// for pure cash movements (deposit, withdraw, opening bonus).
type Transaction struct {
	TransactionID int64
	UserID        int64
	Symbol        string
	Action        Action
	Shares        int
	Price         decimal.Decimal
	DtCreate      time.Time
}
