package valuationEngine

import (
	"context"

	"github.com/KotFed0t/invest_tracker/internal/model"
	"github.com/KotFed0t/invest_tracker/internal/portfolio"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// PriceFeed answers from cached quotes. Implementations must not block on the
// network; a miss is reported as an error and the stale price is kept.
type PriceFeed interface {
	GetStockQuote(ctx context.Context, symbol string) (model.Quote, error)
	GetCryptoQuote(ctx context.Context, id string) (model.Quote, error)
}

type ValuationEngine struct {
	feed         PriceFeed
	cryptoID     func(symbol string) string
	maxSnapshots int
}

// New builds an engine. feed may be nil, in which case revaluation only
// recomputes totals. maxSnapshots <= 0 keeps the full history.
func New(feed PriceFeed, cryptoID func(symbol string) string, maxSnapshots int) *ValuationEngine {
	if cryptoID == nil {
		cryptoID = func(symbol string) string { return symbol }
	}
	return &ValuationEngine{feed: feed, cryptoID: cryptoID, maxSnapshots: maxSnapshots}
}

// Revalue refreshes holding prices from the feed, recomputes totals and
// appends a snapshot.
func (e *ValuationEngine) Revalue(ctx context.Context, p *portfolio.Portfolio) model.Totals {
	if e.feed != nil {
		for _, key := range p.Holdings.Keys() {
			quote, err := e.quote(ctx, key)
			if err != nil {
				continue
			}
			p.Holdings.UpdatePrice(key.Class, key.Symbol, quote.Price)
		}
	}

	return e.Commit(p)
}

// Commit recomputes totals from current prices without consulting the feed,
// then appends a snapshot.
func (e *ValuationEngine) Commit(p *portfolio.Portfolio) model.Totals {
	now := p.Now()
	totals := Totals(p)

	p.Totals = totals
	p.LastUpdated = now
	p.AppendSnapshot(model.Snapshot{
		Timestamp:     now,
		TotalValue:    totals.TotalValue,
		TotalInvested: totals.TotalInvested,
		TotalROI:      totals.TotalROI,
	}, e.maxSnapshots)

	return totals
}

func (e *ValuationEngine) quote(ctx context.Context, key model.AssetKey) (model.Quote, error) {
	if key.Class == model.AssetClassCrypto {
		return e.feed.GetCryptoQuote(ctx, e.cryptoID(key.Symbol))
	}
	return e.feed.GetStockQuote(ctx, key.Symbol)
}

// Totals derives value, invested amount and ROI from cash and holdings.
// Everything is recomputed, never accumulated.
func Totals(p *portfolio.Portfolio) model.Totals {
	value := p.Cash
	invested := decimal.Zero
	for _, h := range p.Holdings.List() {
		value = value.Add(h.CurrentValue())
		invested = invested.Add(h.CostBasis())
	}

	roi := decimal.Zero
	if invested.IsPositive() {
		roi = value.Sub(invested).Div(invested).Mul(hundred)
	}

	return model.Totals{
		TotalValue:    value,
		TotalInvested: invested,
		TotalROI:      roi,
	}
}
