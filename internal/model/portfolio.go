package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PortfolioView is a detached copy of a portfolio's state. Mutating it has no
// effect on the owning manager.
type PortfolioView struct {
	ID           string
	Name         string
	CashBalance  decimal.Decimal
	Holdings     []Holding
	Transactions []Transaction
	Snapshots    []Snapshot
	CreatedAt    time.Time
	LastUpdated  time.Time
	Totals
}

func (v PortfolioView) Holding(key AssetKey) (Holding, bool) {
	for _, h := range v.Holdings {
		if h.Key() == key {
			return h, true
		}
	}
	return Holding{}, false
}

type PortfolioSummary struct {
	ID            string
	Name          string
	CashBalance   decimal.Decimal
	HoldingsCount int
	Totals
}

func (v PortfolioView) Summary() PortfolioSummary {
	return PortfolioSummary{
		ID:            v.ID,
		Name:          v.Name,
		CashBalance:   v.CashBalance,
		HoldingsCount: len(v.Holdings),
		Totals:        v.Totals,
	}
}
