package service

import "errors"

// Every error here is a definitive business-rule rejection surfaced to the
// user. Anything else coming out of the service is a storage or provider
// failure and aborts the operation without partial effect.
var (
	ErrValidation         = errors.New("invalid input")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrAuth               = errors.New("invalid username or password")
	ErrUnknownSymbol      = errors.New("unknown symbol")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInsufficientShares = errors.New("insufficient shares")
	ErrNotOwned           = errors.New("stock not owned")
)
