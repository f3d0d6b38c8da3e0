package xlsxGenerator

import (
	"context"
	"fmt"
	"log/slog"

	"papertrade/internal/model"
	"papertrade/utils"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Statement"

type XLSXGenerator struct{}

func New() *XLSXGenerator {
	return &XLSXGenerator{}
}

// Generate renders an account statement workbook: holdings with live prices
// on top, the full transaction history below.
func (g *XLSXGenerator) Generate(ctx context.Context, statement model.Statement) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XLSXGenerator.Generate"

	slog.Debug("Generate start", slog.String("rqID", rqID), slog.String("op", op))

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("got error while closing file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, "", err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Font: &excelize.Font{
			Bold: true,
			Size: 11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{"#cfe2f3"},
		},
	})
	if err != nil {
		return nil, "", err
	}

	if err := f.MergeCell(sheetName, "A1", "E1"); err != nil {
		return nil, "", err
	}
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("Portfolio: %s", statement.Username))
	if err := f.SetCellStyle(sheetName, "A1", "A1", headerStyle); err != nil {
		return nil, "", err
	}

	_ = f.SetCellStr(sheetName, "A2", "symbol")
	_ = f.SetCellStr(sheetName, "B2", "name")
	_ = f.SetCellStr(sheetName, "C2", "shares")
	_ = f.SetCellStr(sheetName, "D2", "price")
	_ = f.SetCellStr(sheetName, "E2", "subtotal")

	for i, position := range statement.Snapshot.Positions {
		row := i + 3
		_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", row), position.Symbol)
		_ = f.SetCellStr(sheetName, fmt.Sprintf("B%d", row), position.Name)
		_ = f.SetCellInt(sheetName, fmt.Sprintf("C%d", row), int64(position.Shares))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), position.Price.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), position.Subtotal.InexactFloat64())
	}

	rowNum := len(statement.Snapshot.Positions) + 3
	_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", rowNum), "cash")
	_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", rowNum), statement.Snapshot.Cash.InexactFloat64())
	rowNum++
	_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", rowNum), "equity")
	_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", rowNum), statement.Snapshot.Equity.InexactFloat64())

	// history
	rowNum += 2

	if err := f.MergeCell(sheetName, fmt.Sprintf("A%d", rowNum), fmt.Sprintf("E%d", rowNum)); err != nil {
		return nil, "", err
	}
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", rowNum), "Transaction history")
	if err := f.SetCellStyle(sheetName, fmt.Sprintf("A%d", rowNum), fmt.Sprintf("A%d", rowNum), headerStyle); err != nil {
		return nil, "", err
	}

	rowNum++
	_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", rowNum), "action")
	_ = f.SetCellStr(sheetName, fmt.Sprintf("B%d", rowNum), "symbol")
	_ = f.SetCellStr(sheetName, fmt.Sprintf("C%d", rowNum), "shares")
	_ = f.SetCellStr(sheetName, fmt.Sprintf("D%d", rowNum), "price")
	_ = f.SetCellStr(sheetName, fmt.Sprintf("E%d", rowNum), "date")

	for _, transaction := range statement.Transactions {
		rowNum++
		_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", rowNum), string(transaction.Action))
		_ = f.SetCellStr(sheetName, fmt.Sprintf("B%d", rowNum), transaction.Symbol)
		if transaction.Shares != 0 {
			_ = f.SetCellInt(sheetName, fmt.Sprintf("C%d", rowNum), int64(transaction.Shares))
		}
		_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", rowNum), transaction.Price.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", rowNum), transaction.DtCreate)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("got error while saving file to bytes buffer", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("Generate completed", slog.String("rqID", rqID), slog.String("op", op))

	return buf.Bytes(), ".xlsx", nil
}
