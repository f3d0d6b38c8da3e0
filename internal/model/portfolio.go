package model

import "github.com/shopspring/decimal"

// Position is a single (user, symbol) holding.
type Position struct {
	UserID int64
	Symbol string
	Shares int
}

// PositionView is a position enriched with a live price.
type PositionView struct {
	Symbol   string
	Name     string
	Shares   int
	Price    decimal.Decimal
	Subtotal decimal.Decimal
}

// PortfolioSnapshot is the index view: every holding priced at the current
// quote, plus cash and equity (cash + market value of all positions).
type PortfolioSnapshot struct {
	Positions []PositionView
	Cash      decimal.Decimal
	Total     decimal.Decimal
	Equity    decimal.Decimal
}
