package dbModel

import (
	"time"

	"github.com/shopspring/decimal"
)

type WatchlistDocument struct {
	Version int             `json:"version"`
	SavedAt time.Time       `json:"saved_at"`
	Items   []WatchlistItem `json:"items"`
}

type WatchlistItem struct {
	AssetClass    string          `json:"asset_class"`
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name,omitempty"`
	Price         decimal.Decimal `json:"price"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent decimal.Decimal `json:"change_percent"`
	AddedAt       time.Time       `json:"added_at"`
	LastUpdated   time.Time       `json:"last_updated"`
}
