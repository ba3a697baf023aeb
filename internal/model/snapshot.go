package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Snapshot struct {
	Timestamp     time.Time
	TotalValue    decimal.Decimal
	TotalInvested decimal.Decimal
	TotalROI      decimal.Decimal
}

type Totals struct {
	TotalValue    decimal.Decimal
	TotalInvested decimal.Decimal
	TotalROI      decimal.Decimal
}
