package model

import "github.com/shopspring/decimal"

// TradeResult confirms an executed buy or sell.
type TradeResult struct {
	Symbol string
	Name   string
	Shares int
	Price  decimal.Decimal
	Total  decimal.Decimal
	Cash   decimal.Decimal
}

// Statement is the input for the downloadable account statement.
type Statement struct {
	Username     string
	Snapshot     PortfolioSnapshot
	Transactions []Transaction
}
