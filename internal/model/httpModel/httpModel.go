package httpModel

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreatePortfolioRequest struct {
	Name           string          `json:"name"`
	InitialDeposit decimal.Decimal `json:"initialDeposit"`
}

type AmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type TradeRequest struct {
	AssetClass string          `json:"assetClass"`
	Symbol     string          `json:"symbol"`
	Name       string          `json:"name,omitempty"`
	Quantity   decimal.Decimal `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
}

type WatchRequest struct {
	AssetClass string `json:"assetClass"`
	Symbol     string `json:"symbol"`
	Name       string `json:"name,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type Totals struct {
	TotalValue    decimal.Decimal `json:"totalValue"`
	TotalInvested decimal.Decimal `json:"totalInvested"`
	TotalROI      decimal.Decimal `json:"totalRoi"`
}

type PortfolioSummary struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Active        bool            `json:"active"`
	CashBalance   decimal.Decimal `json:"cashBalance"`
	HoldingsCount int             `json:"holdingsCount"`
	Totals
}

type Portfolio struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	CashBalance decimal.Decimal `json:"cashBalance"`
	Holdings    []Holding       `json:"holdings"`
	Snapshots   []Snapshot      `json:"snapshots"`
	CreatedAt   time.Time       `json:"createdAt"`
	LastUpdated time.Time       `json:"lastUpdated"`
	Totals
}

type Holding struct {
	AssetClass          string          `json:"assetClass"`
	Symbol              string          `json:"symbol"`
	Name                string          `json:"name"`
	Quantity            decimal.Decimal `json:"quantity"`
	AverageCost         decimal.Decimal `json:"averageCost"`
	LastPrice           decimal.Decimal `json:"lastPrice"`
	CurrentValue        decimal.Decimal `json:"currentValue"`
	UnrealizedPL        decimal.Decimal `json:"unrealizedPl"`
	UnrealizedPLPercent decimal.Decimal `json:"unrealizedPlPercent"`
	LastUpdated         time.Time       `json:"lastUpdated"`
}

type Snapshot struct {
	Timestamp time.Time `json:"timestamp"`
	Totals
}

type Transaction struct {
	ID          string           `json:"id"`
	Seq         uint64           `json:"seq"`
	Kind        string           `json:"kind"`
	AssetClass  string           `json:"assetClass,omitempty"`
	Symbol      string           `json:"symbol,omitempty"`
	Name        string           `json:"name,omitempty"`
	Quantity    *decimal.Decimal `json:"quantity,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	TotalAmount decimal.Decimal  `json:"totalAmount"`
	Timestamp   time.Time        `json:"timestamp"`
}

type Stats struct {
	TotalTrades          int             `json:"totalTrades"`
	WinningTrades        int             `json:"winningTrades"`
	LosingTrades         int             `json:"losingTrades"`
	WinRate              decimal.Decimal `json:"winRate"`
	MaxDrawdown          decimal.Decimal `json:"maxDrawdown"`
	VolatilityRatio      decimal.Decimal `json:"volatilityRatio"`
	YTDReturn            decimal.Decimal `json:"ytdReturn"`
	TotalROI             decimal.Decimal `json:"totalRoi"`
	CashPercentage       decimal.Decimal `json:"cashPercentage"`
	BestPerformingAsset  string          `json:"bestPerformingAsset"`
	WorstPerformingAsset string          `json:"worstPerformingAsset"`
	TopHolding           string          `json:"topHolding"`
}

type WatchlistItem struct {
	AssetClass    string          `json:"assetClass"`
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent decimal.Decimal `json:"changePercent"`
	AddedAt       time.Time       `json:"addedAt"`
	LastUpdated   time.Time       `json:"lastUpdated"`
}

type SearchResult struct {
	AssetClass string `json:"assetClass"`
	Symbol     string `json:"symbol"`
	Name       string `json:"name"`
	Region     string `json:"region,omitempty"`
}

// Event is pushed to websocket subscribers.
type Event struct {
	Type string    `json:"type"`
	At   time.Time `json:"at"`
}
