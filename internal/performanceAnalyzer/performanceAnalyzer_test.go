package performanceAnalyzer

import (
	"math"
	"testing"
	"time"

	"github.com/KotFed0t/invest_tracker/internal/ledger"
	"github.com/KotFed0t/invest_tracker/internal/model"
	"github.com/shopspring/decimal"
)

var now = time.Date(2025, 8, 20, 15, 0, 0, 0, time.UTC)

func holding(symbol string, qty, avg, last int64) model.Holding {
	return model.Holding{
		AssetClass:  model.AssetClassStock,
		Symbol:      symbol,
		Quantity:    decimal.NewFromInt(qty),
		AverageCost: decimal.NewFromInt(avg),
		LastPrice:   decimal.NewFromInt(last),
	}
}

func trade(seq uint64, kind model.TransactionKind, symbol string, qty, price int64, at time.Time) model.Transaction {
	q := decimal.NewFromInt(qty)
	p := decimal.NewFromInt(price)
	return model.Transaction{
		Seq:         seq,
		Kind:        kind,
		AssetClass:  model.AssetClassStock,
		Symbol:      symbol,
		Quantity:    q,
		Price:       p,
		TotalAmount: q.Mul(p),
		Timestamp:   at,
	}
}

func TestEmptyPortfolio(t *testing.T) {
	stats := Analyze(Input{Now: now, RiskFreeRate: DefaultRiskFreeRate})

	if !stats.MaxDrawdown.IsZero() {
		t.Errorf("MaxDrawdown = %s, want 0", stats.MaxDrawdown)
	}
	if !stats.VolatilityRatio.IsZero() {
		t.Errorf("VolatilityRatio = %s, want 0", stats.VolatilityRatio)
	}
	if !stats.WinRate.IsZero() {
		t.Errorf("WinRate = %s, want 0", stats.WinRate)
	}
	if !stats.CashPercentage.Equal(decimal.NewFromInt(100)) {
		t.Errorf("CashPercentage = %s, want 100", stats.CashPercentage)
	}
	for name, got := range map[string]string{
		"BestPerformingAsset":  stats.BestPerformingAsset,
		"WorstPerformingAsset": stats.WorstPerformingAsset,
		"TopHolding":           stats.TopHolding,
	} {
		if got != model.NotAvailable {
			t.Errorf("%s = %q, want %q", name, got, model.NotAvailable)
		}
	}
}

func TestMaxDrawdown(t *testing.T) {
	tests := []struct {
		name     string
		holdings []model.Holding
		want     string
	}{
		{name: "all gains", holdings: []model.Holding{holding("A", 1, 100, 120)}, want: "0"},
		{name: "deepest loss", holdings: []model.Holding{
			holding("A", 1, 100, 90),
			holding("B", 1, 100, 75),
			holding("C", 1, 100, 130),
		}, want: "-25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MaxDrawdown(tt.holdings)
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("MaxDrawdown() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestVolatilityRatio(t *testing.T) {
	t.Run("single holding has zero deviation", func(t *testing.T) {
		got := VolatilityRatio([]model.Holding{holding("A", 1, 100, 150)}, DefaultRiskFreeRate)
		if !got.IsZero() {
			t.Errorf("VolatilityRatio() = %s, want 0", got)
		}
	})

	t.Run("population standard deviation", func(t *testing.T) {
		// returns 10 and 30: mean 20, population stddev 10
		holdings := []model.Holding{
			holding("A", 1, 100, 110),
			holding("B", 1, 100, 130),
		}

		got := VolatilityRatio(holdings, DefaultRiskFreeRate).InexactFloat64()

		if math.Abs(got-1.8) > 1e-9 {
			t.Errorf("VolatilityRatio() = %v, want 1.8", got)
		}
	})
}

func TestWinRateScenario(t *testing.T) {
	l := ledger.New(
		trade(1, model.TransactionBuy, "AAPL", 10, 100, now.Add(-time.Hour)),
		trade(2, model.TransactionSell, "AAPL", 10, 110, now),
	)

	stats := Analyze(Input{Ledger: l, Now: now, RiskFreeRate: DefaultRiskFreeRate})

	if stats.TotalTrades != 2 || stats.WinningTrades != 1 {
		t.Errorf("trades = %d/%d, want 1/2", stats.WinningTrades, stats.TotalTrades)
	}
	if !stats.WinRate.Equal(decimal.NewFromInt(50)) {
		t.Errorf("WinRate = %s, want 50", stats.WinRate)
	}
}

func TestYTDReturn(t *testing.T) {
	totalROI := decimal.NewFromInt(7)

	t.Run("falls back without buys this year", func(t *testing.T) {
		l := ledger.New(trade(1, model.TransactionBuy, "AAPL", 1, 100, now.AddDate(-1, 0, 0)))

		if got := YTDReturn(l, now, totalROI); !got.Equal(totalROI) {
			t.Errorf("YTDReturn() = %s, want %s", got, totalROI)
		}
	})

	t.Run("uses current year trades", func(t *testing.T) {
		l := ledger.New(
			trade(1, model.TransactionBuy, "AAPL", 10, 100, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)),
			trade(2, model.TransactionSell, "AAPL", 10, 125, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)),
		)

		if got := YTDReturn(l, now, totalROI); !got.Equal(decimal.NewFromInt(25)) {
			t.Errorf("YTDReturn() = %s, want 25", got)
		}
	})
}

func TestAssetRanking(t *testing.T) {
	holdings := []model.Holding{
		holding("AAPL", 10, 100, 110), // +10%, value 1100
		holding("TSLA", 1, 200, 300),  // +50%, value 300
		holding("MSFT", 5, 300, 240),  // -20%, value 1200
	}

	if got := BestPerformingAsset(holdings); got != "TSLA" {
		t.Errorf("BestPerformingAsset() = %s, want TSLA", got)
	}
	if got := WorstPerformingAsset(holdings); got != "MSFT" {
		t.Errorf("WorstPerformingAsset() = %s, want MSFT", got)
	}
	if got := TopHolding(holdings); got != "MSFT" {
		t.Errorf("TopHolding() = %s, want MSFT", got)
	}
}

func TestCashPercentage(t *testing.T) {
	got := CashPercentage(decimal.NewFromInt(250), decimal.NewFromInt(1000))
	if !got.Equal(decimal.NewFromInt(25)) {
		t.Errorf("CashPercentage() = %s, want 25", got)
	}
}
