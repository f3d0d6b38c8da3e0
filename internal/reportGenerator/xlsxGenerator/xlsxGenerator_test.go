package xlsxGenerator

import (
	"bytes"
	"context"
	"testing"
	"time"

	"papertrade/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/xuri/excelize/v2"
)

func TestGenerate(t *testing.T) {
	statement := model.Statement{
		Username: "alice",
		Snapshot: model.PortfolioSnapshot{
			Positions: []model.PositionView{
				{Symbol: "AAPL", Name: "Apple Inc", Shares: 10, Price: decimal.NewFromInt(50), Subtotal: decimal.NewFromInt(500)},
			},
			Cash:   decimal.NewFromInt(9500),
			Total:  decimal.NewFromInt(500),
			Equity: decimal.NewFromInt(10000),
		},
		Transactions: []model.Transaction{
			{TransactionID: 1, UserID: 1, Action: model.ActionBonus, Price: decimal.NewFromInt(10000), DtCreate: time.Now()},
			{TransactionID: 2, UserID: 1, Symbol: "AAPL", Action: model.ActionBuy, Shares: 10, Price: decimal.NewFromInt(50), DtCreate: time.Now()},
		},
	}

	fileBytes, ext, err := New().Generate(context.Background(), statement)

	assert.NoError(t, err)
	assert.Equal(t, ".xlsx", ext)
	assert.NotEmpty(t, fileBytes)

	f, err := excelize.OpenReader(bytes.NewReader(fileBytes))
	assert.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue(sheetName, "A1")
	assert.NoError(t, err)
	assert.Equal(t, "Portfolio: alice", title)

	symbol, err := f.GetCellValue(sheetName, "A3")
	assert.NoError(t, err)
	assert.Equal(t, "AAPL", symbol)

	cashLabel, err := f.GetCellValue(sheetName, "A4")
	assert.NoError(t, err)
	assert.Equal(t, "cash", cashLabel)
}
