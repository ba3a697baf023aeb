package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type WatchlistItem struct {
	AssetClass    AssetClass
	Symbol        string
	Name          string
	Price         decimal.Decimal
	Change        decimal.Decimal
	ChangePercent decimal.Decimal
	AddedAt       time.Time
	LastUpdated   time.Time
}

func (w WatchlistItem) Key() AssetKey {
	return AssetKey{Class: w.AssetClass, Symbol: w.Symbol}
}
