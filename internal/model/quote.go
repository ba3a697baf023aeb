package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Quote struct {
	AssetClass    AssetClass
	Symbol        string
	Price         decimal.Decimal
	Change        decimal.Decimal
	ChangePercent decimal.Decimal
	PreviousClose decimal.Decimal
	Open          decimal.Decimal
	High          decimal.Decimal
	Low           decimal.Decimal
	Volume        decimal.Decimal
	UpdatedAt     time.Time
}

func (q Quote) Key() AssetKey {
	return AssetKey{Class: q.AssetClass, Symbol: q.Symbol}
}

type SearchResult struct {
	AssetClass AssetClass
	Symbol     string
	Name       string
	Region     string
}
