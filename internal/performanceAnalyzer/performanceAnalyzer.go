// Package performanceAnalyzer derives return and risk figures from a
// portfolio's holdings and ledger. Every function is pure and degrades to a
// neutral value on empty input.
//
// Drawdown and the volatility ratio are cross-sectional over the current
// holdings, not walks over the snapshot history.
package performanceAnalyzer

import (
	"math"
	"time"

	"github.com/KotFed0t/invest_tracker/internal/ledger"
	"github.com/KotFed0t/invest_tracker/internal/model"
	"github.com/shopspring/decimal"
)

const DefaultRiskFreeRate = 2.0

var hundred = decimal.NewFromInt(100)

// MaxDrawdown is the deepest unrealized loss percentage among holdings, or 0.
func MaxDrawdown(holdings []model.Holding) decimal.Decimal {
	worst := decimal.Zero
	for _, h := range holdings {
		pct := h.UnrealizedPLPercent()
		if pct.LessThan(worst) {
			worst = pct
		}
	}
	return worst
}

// VolatilityRatio is (mean - riskFree) / stddev over the holdings' unrealized
// PL percentages, using the population standard deviation.
func VolatilityRatio(holdings []model.Holding, riskFreeRate float64) decimal.Decimal {
	if len(holdings) == 0 {
		return decimal.Zero
	}

	returns := make([]float64, 0, len(holdings))
	sum := 0.0
	for _, h := range holdings {
		r := h.UnrealizedPLPercent().InexactFloat64()
		returns = append(returns, r)
		sum += r
	}
	mean := sum / float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	stdDev := math.Sqrt(variance / float64(len(returns)))
	if stdDev == 0 || math.IsNaN(stdDev) {
		return decimal.Zero
	}

	return decimal.NewFromFloat((mean - riskFreeRate) / stdDev)
}

func WinRate(counts ledger.TradeCounts) decimal.Decimal {
	if counts.Total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(counts.Winning)).
		Div(decimal.NewFromInt(int64(counts.Total))).
		Mul(hundred)
}

// YTDReturn is the ledger ROI over the calendar year containing now, falling
// back to totalROI when nothing was bought that year.
func YTDReturn(l *ledger.Ledger, now time.Time, totalROI decimal.Decimal) decimal.Decimal {
	start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	roi, ok := l.PeriodROI(start, start.AddDate(1, 0, 0))
	if !ok {
		return totalROI
	}
	return roi
}

func BestPerformingAsset(holdings []model.Holding) string {
	return pick(holdings, func(candidate, current model.Holding) bool {
		return candidate.UnrealizedPLPercent().GreaterThan(current.UnrealizedPLPercent())
	})
}

func WorstPerformingAsset(holdings []model.Holding) string {
	return pick(holdings, func(candidate, current model.Holding) bool {
		return candidate.UnrealizedPLPercent().LessThan(current.UnrealizedPLPercent())
	})
}

func TopHolding(holdings []model.Holding) string {
	return pick(holdings, func(candidate, current model.Holding) bool {
		return candidate.CurrentValue().GreaterThan(current.CurrentValue())
	})
}

// pick returns the symbol of the first holding no other holding beats.
func pick(holdings []model.Holding, better func(candidate, current model.Holding) bool) string {
	if len(holdings) == 0 {
		return model.NotAvailable
	}
	best := holdings[0]
	for _, h := range holdings[1:] {
		if better(h, best) {
			best = h
		}
	}
	return best.Symbol
}

// CashPercentage is 100 for a portfolio with no value.
func CashPercentage(cash, totalValue decimal.Decimal) decimal.Decimal {
	if !totalValue.IsPositive() {
		return hundred
	}
	return cash.Div(totalValue).Mul(hundred)
}

type Input struct {
	Cash         decimal.Decimal
	Totals       model.Totals
	Holdings     []model.Holding
	Ledger       *ledger.Ledger
	Now          time.Time
	RiskFreeRate float64
}

func Analyze(in Input) model.PerformanceStats {
	l := in.Ledger
	if l == nil {
		l = ledger.New()
	}
	counts := l.TradeCounts()

	return model.PerformanceStats{
		TotalTrades:          counts.Total,
		WinningTrades:        counts.Winning,
		LosingTrades:         counts.Losing,
		WinRate:              WinRate(counts),
		MaxDrawdown:          MaxDrawdown(in.Holdings),
		VolatilityRatio:      VolatilityRatio(in.Holdings, in.RiskFreeRate),
		YTDReturn:            YTDReturn(l, in.Now, in.Totals.TotalROI),
		TotalROI:             in.Totals.TotalROI,
		CashPercentage:       CashPercentage(in.Cash, in.Totals.TotalValue),
		BestPerformingAsset:  BestPerformingAsset(in.Holdings),
		WorstPerformingAsset: WorstPerformingAsset(in.Holdings),
		TopHolding:           TopHolding(in.Holdings),
	}
}

// AnalyzeView computes stats for a detached portfolio copy.
func AnalyzeView(v model.PortfolioView, now time.Time, riskFreeRate float64) model.PerformanceStats {
	return Analyze(Input{
		Cash:         v.CashBalance,
		Totals:       v.Totals,
		Holdings:     v.Holdings,
		Ledger:       ledger.New(v.Transactions...),
		Now:          now,
		RiskFreeRate: riskFreeRate,
	})
}
