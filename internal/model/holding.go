package model

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type Holding struct {
	AssetClass  AssetClass
	Symbol      string
	Name        string
	Quantity    decimal.Decimal
	AverageCost decimal.Decimal
	LastPrice   decimal.Decimal
	LastUpdated time.Time
}

func (h Holding) Key() AssetKey {
	return AssetKey{Class: h.AssetClass, Symbol: h.Symbol}
}

func (h Holding) CurrentValue() decimal.Decimal {
	return h.Quantity.Mul(h.LastPrice)
}

func (h Holding) CostBasis() decimal.Decimal {
	return h.Quantity.Mul(h.AverageCost)
}

func (h Holding) UnrealizedPL() decimal.Decimal {
	return h.CurrentValue().Sub(h.CostBasis())
}

// UnrealizedPLPercent is zero when the cost basis is zero.
func (h Holding) UnrealizedPLPercent() decimal.Decimal {
	costBasis := h.CostBasis()
	if costBasis.IsZero() {
		return decimal.Zero
	}
	return h.UnrealizedPL().Div(costBasis).Mul(hundred)
}
