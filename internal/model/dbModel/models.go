package dbModel

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	UserID   int64           `db:"user_id"`
	Username string          `db:"username"`
	PassHash string          `db:"pass_hash"`
	Cash     decimal.Decimal `db:"cash"`
}

type Position struct {
	UserID int64  `db:"user_id"`
	Symbol string `db:"symbol"`
	Shares int    `db:"shares"`
}

type Transaction struct {
	TransactionID int64           `db:"transaction_id"`
	UserID        int64           `db:"user_id"`
	Symbol        sql.NullString  `db:"symbol"`
	Action        string          `db:"action"`
	Shares        sql.NullInt64   `db:"shares"`
	Price         decimal.Decimal `db:"price"`
	DtCreate      time.Time       `db:"dt_create"`
}
