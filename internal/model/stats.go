package model

import "github.com/shopspring/decimal"

const NotAvailable = "N/A"

type PerformanceStats struct {
	TotalTrades          int
	WinningTrades        int
	LosingTrades         int
	WinRate              decimal.Decimal
	MaxDrawdown          decimal.Decimal
	VolatilityRatio      decimal.Decimal
	YTDReturn            decimal.Decimal
	TotalROI             decimal.Decimal
	CashPercentage       decimal.Decimal
	BestPerformingAsset  string
	WorstPerformingAsset string
	TopHolding           string
}
