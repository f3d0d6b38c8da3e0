package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"papertrade/internal/converter/dbConverter"
	"papertrade/internal/model"
	"papertrade/internal/model/dbModel"
	"papertrade/utils"
)

func (r *Postgres) InsertTransaction(ctx context.Context, transaction model.Transaction) (transactionID int64, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.InsertTransaction"
	query := `
		INSERT INTO transactions(user_id, symbol, action, shares, price, dt_create)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING transaction_id
	`

	slog.Debug(
		"InsertTransaction start",
		slog.String("rqID", rqID),
		slog.String("op", op),
		slog.Any("transaction", transaction),
		slog.String("query", query),
	)
	defer func() {
		if err != nil {
			slog.Error("InsertTransaction failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertTransaction completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	var symbol sql.NullString
	if transaction.Symbol != "" {
		symbol = sql.NullString{String: transaction.Symbol, Valid: true}
	}

	var shares sql.NullInt64
	if transaction.Shares != 0 {
		shares = sql.NullInt64{Int64: int64(transaction.Shares), Valid: true}
	}

	err = r.txOrDb(ctx).QueryRowContext(
		ctx,
		query,
		transaction.UserID,
		symbol,
		string(transaction.Action),
		shares,
		transaction.Price,
		transaction.DtCreate,
	).Scan(&transactionID)

	if err != nil {
		return 0, err
	}
	return transactionID, nil
}

func (r *Postgres) GetTransactions(ctx context.Context, userID int64) (transactions []model.Transaction, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetTransactions"
	query := `
		SELECT transaction_id, user_id, symbol, action, shares, price, dt_create
		FROM transactions
		WHERE user_id = $1
		ORDER BY dt_create, transaction_id
		`

	slog.Debug("GetTransactions start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetTransactions failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetTransactions completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	rows, err := r.txOrDb(ctx).QueryxContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	for rows.Next() {
		var transaction dbModel.Transaction
		err = rows.StructScan(&transaction)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, dbConverter.ConvertTransaction(transaction))
	}

	return transactions, nil
}
