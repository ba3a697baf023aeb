package service

import "errors"

var (
	ErrInsufficientFunds    = errors.New("error insufficient funds")
	ErrInsufficientQuantity = errors.New("error insufficient quantity")
	ErrUnknownHolding       = errors.New("error unknown holding")
	ErrInvalidAmount        = errors.New("error invalid amount")
	ErrPortfolioNotFound    = errors.New("error portfolio not found")
	ErrManagerStopped       = errors.New("error portfolio manager stopped")
	ErrInvalidAsset         = errors.New("error invalid asset")
	ErrNotWatched           = errors.New("error not in watchlist")
)
