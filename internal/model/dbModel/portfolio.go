package dbModel

import (
	"time"

	"github.com/shopspring/decimal"
)

const SchemaVersion = 1

type PortfoliosDocument struct {
	Version    int         `json:"version"`
	SavedAt    time.Time   `json:"saved_at"`
	Portfolios []Portfolio `json:"portfolios"`
}

type Portfolio struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	CashBalance   decimal.Decimal `json:"cash_balance"`
	Holdings      []Holding       `json:"holdings"`
	Transactions  []Transaction   `json:"transactions"`
	Snapshots     []Snapshot      `json:"snapshots"`
	CreatedAt     time.Time       `json:"created_at"`
	LastUpdated   time.Time       `json:"last_updated"`
	TotalValue    decimal.Decimal `json:"total_value"`
	TotalInvested decimal.Decimal `json:"total_invested"`
	TotalROI      decimal.Decimal `json:"total_roi"`
}

type Holding struct {
	AssetClass  string          `json:"asset_class"`
	Symbol      string          `json:"symbol"`
	Name        string          `json:"name,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	AverageCost decimal.Decimal `json:"average_cost"`
	LastPrice   decimal.Decimal `json:"last_price"`
	LastUpdated time.Time       `json:"last_updated"`
}

type Transaction struct {
	ID          string           `json:"id"`
	Seq         uint64           `json:"seq"`
	Kind        string           `json:"kind"`
	AssetClass  string           `json:"asset_class,omitempty"`
	Symbol      string           `json:"symbol,omitempty"`
	Name        string           `json:"name,omitempty"`
	Quantity    *decimal.Decimal `json:"quantity,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	TotalAmount decimal.Decimal  `json:"total_amount"`
	Timestamp   time.Time        `json:"timestamp"`
}

type Snapshot struct {
	Timestamp     time.Time       `json:"timestamp"`
	TotalValue    decimal.Decimal `json:"total_value"`
	TotalInvested decimal.Decimal `json:"total_invested"`
	TotalROI      decimal.Decimal `json:"total_roi"`
}
