// Package markdownRenderer formats a portfolio report as GitHub-flavored
// markdown and converts it to HTML.
package markdownRenderer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/KotFed0t/invest_tracker/internal/model"
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const (
	currency        = money.USD
	recentTxsToShow = 10
	dateLayout      = "2006-01-02 15:04"
)

// Money formats an amount in dollars, rounded half away from zero to cents.
func Money(amount decimal.Decimal) string {
	cur := money.GetCurrency(currency)
	fraction := int32(cur.Fraction)
	return money.New(amount.Round(fraction).Shift(fraction).IntPart(), currency).Display()
}

// Price keeps full precision for sub-dollar prices, which are common for
// crypto assets.
func Price(amount decimal.Decimal) string {
	if amount.Abs().LessThan(decimal.NewFromInt(1)) && !amount.IsZero() {
		return "$" + amount.String()
	}
	return Money(amount)
}

func Percent(p decimal.Decimal) string {
	return p.StringFixed(2) + "%"
}

func Render(report model.PortfolioReport) string {
	p := report.Portfolio
	s := report.Stats
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", escape(p.Name))
	fmt.Fprintf(&b, "_Generated %s_\n\n", report.GeneratedAt.Format(dateLayout))

	b.WriteString("| | |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Cash | %s |\n", Money(p.CashBalance))
	fmt.Fprintf(&b, "| Total value | %s |\n", Money(p.TotalValue))
	fmt.Fprintf(&b, "| Invested | %s |\n", Money(p.TotalInvested))
	fmt.Fprintf(&b, "| ROI | %s |\n\n", Percent(p.TotalROI))

	b.WriteString("## Holdings\n\n")
	if len(p.Holdings) == 0 {
		b.WriteString("No open positions.\n\n")
	} else {
		b.WriteString("| Symbol | Name | Class | Quantity | Avg cost | Price | Value | P/L | P/L % |\n")
		b.WriteString("|---|---|---|---:|---:|---:|---:|---:|---:|\n")
		for _, h := range p.Holdings {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
				h.Symbol,
				escape(h.Name),
				h.AssetClass,
				h.Quantity.String(),
				Price(h.AverageCost),
				Price(h.LastPrice),
				Money(h.CurrentValue()),
				Money(h.UnrealizedPL()),
				Percent(h.UnrealizedPLPercent()),
			)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Performance\n\n")
	fmt.Fprintf(&b, "- Trades: %d (%d winning, %d losing)\n", s.TotalTrades, s.WinningTrades, s.LosingTrades)
	fmt.Fprintf(&b, "- Win rate: %s\n", Percent(s.WinRate))
	fmt.Fprintf(&b, "- YTD return: %s\n", Percent(s.YTDReturn))
	fmt.Fprintf(&b, "- Max drawdown: %s\n", Percent(s.MaxDrawdown))
	fmt.Fprintf(&b, "- Volatility ratio: %s\n", s.VolatilityRatio.StringFixed(2))
	fmt.Fprintf(&b, "- Cash: %s\n", Percent(s.CashPercentage))
	fmt.Fprintf(&b, "- Best: %s, worst: %s, top holding: %s\n\n", s.BestPerformingAsset, s.WorstPerformingAsset, s.TopHolding)

	b.WriteString("## Recent transactions\n\n")
	txs := p.Transactions
	if len(txs) == 0 {
		b.WriteString("No transactions yet.\n")
		return b.String()
	}
	if len(txs) > recentTxsToShow {
		txs = txs[len(txs)-recentTxsToShow:]
	}
	b.WriteString("| Date | Kind | Asset | Quantity | Price | Total |\n")
	b.WriteString("|---|---|---|---:|---:|---:|\n")
	for i := len(txs) - 1; i >= 0; i-- {
		tx := txs[i]
		asset, qty, price := "", "", ""
		if tx.IsTrade() {
			asset = tx.Symbol
			qty = tx.Quantity.String()
			price = Price(tx.Price)
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			tx.Timestamp.Format(dateLayout), tx.Kind, asset, qty, price, Money(tx.TotalAmount))
	}

	return b.String()
}

var htmlRenderer = goldmark.New(goldmark.WithExtensions(extension.GFM))

// HTML converts rendered markdown to an HTML fragment.
func HTML(markdown string) ([]byte, error) {
	var buf bytes.Buffer
	if err := htmlRenderer.Convert([]byte(markdown), &buf); err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}
	return buf.Bytes(), nil
}

func escape(s string) string {
	return strings.NewReplacer("|", "\\|", "\n", " ").Replace(s)
}
