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

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

func (r *Postgres) InsertUser(ctx context.Context, username, passHash string) (userID int64, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `INSERT INTO users(username, pass_hash) VALUES($1, $2) RETURNING user_id`

	slog.Debug("InsertUser start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("InsertUser failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertUser completed", slog.String("rqID", rqID))
		}
	}()

	err = r.txOrDb(ctx).QueryRowContext(ctx, query, username, passHash).Scan(&userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation
				return 0, repository.ErrAlreadyExists
			}
		}
		return 0, err
	}

	return userID, nil
}

func (r *Postgres) GetUserByUsername(ctx context.Context, username string) (user model.User, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `SELECT user_id, username, pass_hash, cash FROM users WHERE username = $1`

	slog.Debug("GetUserByUsername start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetUserByUsername failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetUserByUsername completed", slog.String("rqID", rqID))
		}
	}()

	dbUser := dbModel.User{}
	err = r.txOrDb(ctx).QueryRowxContext(ctx, query, username).StructScan(&dbUser)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, repository.ErrNotFound
		}
		return model.User{}, err
	}

	return dbConverter.ConvertUser(dbUser), nil
}

func (r *Postgres) GetUser(ctx context.Context, userID int64) (user model.User, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `SELECT user_id, username, pass_hash, cash FROM users WHERE user_id = $1`

	slog.Debug("GetUser start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetUser failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetUser completed", slog.String("rqID", rqID))
		}
	}()

	dbUser := dbModel.User{}
	err = r.txOrDb(ctx).QueryRowxContext(ctx, query, userID).StructScan(&dbUser)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, repository.ErrNotFound
		}
		return model.User{}, err
	}

	return dbConverter.ConvertUser(dbUser), nil
}

// GetUserForUpdate locks the user row for the rest of the surrounding
// transaction. Must be called inside WithinTransaction.
func (r *Postgres) GetUserForUpdate(ctx context.Context, userID int64) (user model.User, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `SELECT user_id, username, pass_hash, cash FROM users WHERE user_id = $1 FOR UPDATE`

	slog.Debug("GetUserForUpdate start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetUserForUpdate failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetUserForUpdate completed", slog.String("rqID", rqID))
		}
	}()

	dbUser := dbModel.User{}
	err = r.txOrDb(ctx).QueryRowxContext(ctx, query, userID).StructScan(&dbUser)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, repository.ErrNotFound
		}
		return model.User{}, err
	}

	return dbConverter.ConvertUser(dbUser), nil
}

func (r *Postgres) UpdateUserCash(ctx context.Context, userID int64, cash decimal.Decimal) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `UPDATE users SET cash = $1 WHERE user_id = $2`

	slog.Debug("UpdateUserCash start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("UpdateUserCash failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("UpdateUserCash completed", slog.String("rqID", rqID))
		}
	}()

	_, err = r.txOrDb(ctx).ExecContext(ctx, query, cash, userID)
	if err != nil {
		return err
	}

	return nil
}

func (r *Postgres) UpdateUsername(ctx context.Context, userID int64, username string) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `UPDATE users SET username = $1 WHERE user_id = $2`

	slog.Debug("UpdateUsername start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("UpdateUsername failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("UpdateUsername completed", slog.String("rqID", rqID))
		}
	}()

	_, err = r.txOrDb(ctx).ExecContext(ctx, query, username, userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation
				return repository.ErrAlreadyExists
			}
		}
		return err
	}

	return nil
}

func (r *Postgres) UpdatePassHash(ctx context.Context, userID int64, passHash string) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `UPDATE users SET pass_hash = $1 WHERE user_id = $2`

	slog.Debug("UpdatePassHash start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("UpdatePassHash failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("UpdatePassHash completed", slog.String("rqID", rqID))
		}
	}()

	_, err = r.txOrDb(ctx).ExecContext(ctx, query, passHash, userID)
	if err != nil {
		return err
	}

	return nil
}
