package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"papertrade/data/repository"
	"papertrade/internal/converter/dbConverter"
	"papertrade/internal/model"
	"papertrade/internal/model/dbModel"
	"papertrade/utils"
)

// GetPositionForUpdate locks the position row for the rest of the
// surrounding transaction. Must be called inside WithinTransaction.
func (r *Postgres) GetPositionForUpdate(ctx context.Context, userID int64, symbol string) (position model.Position, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		SELECT user_id, symbol, shares
		FROM positions
		WHERE user_id = $1
		AND symbol = $2
		FOR UPDATE
		`

	slog.Debug("GetPositionForUpdate start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetPositionForUpdate failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetPositionForUpdate completed", slog.String("rqID", rqID))
		}
	}()

	dbPosition := dbModel.Position{}
	err = r.txOrDb(ctx).QueryRowxContext(ctx, query, userID, symbol).StructScan(&dbPosition)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Position{}, repository.ErrNotFound
		}
		return model.Position{}, err
	}

	return dbConverter.ConvertPosition(dbPosition), nil
}

func (r *Postgres) GetPositions(ctx context.Context, userID int64) (positions []model.Position, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		SELECT user_id, symbol, shares
		FROM positions
		WHERE user_id = $1
		ORDER BY symbol
		`

	slog.Debug("GetPositions start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetPositions failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetPositions completed", slog.String("rqID", rqID))
		}
	}()

	rows, err := r.txOrDb(ctx).QueryxContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	for rows.Next() {
		var position dbModel.Position
		err = rows.StructScan(&position)
		if err != nil {
			return nil, err
		}
		positions = append(positions, dbConverter.ConvertPosition(position))
	}

	return positions, nil
}

// AddPositionShares upserts the (user, symbol) line: inserts it with the
// given share count, or adds to an existing one.
func (r *Postgres) AddPositionShares(ctx context.Context, userID int64, symbol string, shares int) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		INSERT INTO positions(user_id, symbol, shares)
		VALUES($1, $2, $3)
		ON CONFLICT (user_id, symbol)
		DO UPDATE SET shares = positions.shares + $3
		`

	slog.Debug("AddPositionShares start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("AddPositionShares failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("AddPositionShares completed", slog.String("rqID", rqID))
		}
	}()

	_, err = r.txOrDb(ctx).ExecContext(ctx, query, userID, symbol, shares)
	if err != nil {
		return err
	}

	return nil
}

func (r *Postgres) UpdatePositionShares(ctx context.Context, userID int64, symbol string, shares int) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		UPDATE positions
		SET shares = $1
		WHERE user_id = $2
		AND symbol = $3
		`

	slog.Debug("UpdatePositionShares start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("UpdatePositionShares failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("UpdatePositionShares completed", slog.String("rqID", rqID))
		}
	}()

	_, err = r.txOrDb(ctx).ExecContext(ctx, query, shares, userID, symbol)
	if err != nil {
		return err
	}

	return nil
}

func (r *Postgres) DeletePosition(ctx context.Context, userID int64, symbol string) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		DELETE FROM positions
		WHERE user_id = $1
		AND symbol = $2
		`

	slog.Debug("DeletePosition start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("DeletePosition failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("DeletePosition completed", slog.String("rqID", rqID))
		}
	}()

	_, err = r.txOrDb(ctx).ExecContext(ctx, query, userID, symbol)
	if err != nil {
		return err
	}

	return nil
}

func (r *Postgres) GetHeldSymbols(ctx context.Context) (symbols []string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `SELECT DISTINCT symbol FROM positions ORDER BY symbol`

	slog.Debug("GetHeldSymbols start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetHeldSymbols failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetHeldSymbols completed", slog.String("rqID", rqID))
		}
	}()

	rows, err := r.txOrDb(ctx).QueryxContext(ctx, query)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	for rows.Next() {
		var symbol string
		err = rows.Scan(&symbol)
		if err != nil {
			return nil, err
		}
		symbols = append(symbols, symbol)
	}

	return symbols, nil
}
