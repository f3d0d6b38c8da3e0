package dbConverter

import (
	"papertrade/internal/model"
	"papertrade/internal/model/dbModel"
)

func ConvertUser(dbUser dbModel.User) model.User {
	return model.User{
		UserID:   dbUser.UserID,
		Username: dbUser.Username,
		PassHash: dbUser.PassHash,
		Cash:     dbUser.Cash,
	}
}

func ConvertPosition(dbPosition dbModel.Position) model.Position {
	return model.Position{
		UserID: dbPosition.UserID,
		Symbol: dbPosition.Symbol,
		Shares: dbPosition.Shares,
	}
}

func ConvertTransaction(dbTransaction dbModel.Transaction) model.Transaction {
	t := model.Transaction{
		TransactionID: dbTransaction.TransactionID,
		UserID:        dbTransaction.UserID,
		Action:        model.Action(dbTransaction.Action),
		Price:         dbTransaction.Price,
		DtCreate:      dbTransaction.DtCreate,
	}
	if dbTransaction.Symbol.Valid {
		t.Symbol = dbTransaction.Symbol.String
	}
	if dbTransaction.Shares.Valid {
		t.Shares = int(dbTransaction.Shares.Int64)
	}
	return t
}
