package valuationEngine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/KotFed0t/invest_tracker/internal/model"
	"github.com/KotFed0t/invest_tracker/internal/portfolio"
	"github.com/shopspring/decimal"
)

var errMiss = errors.New("miss")

type stubFeed struct {
	stocks map[string]string
	crypto map[string]string
	calls  []string
}

func (f *stubFeed) GetStockQuote(_ context.Context, symbol string) (model.Quote, error) {
	f.calls = append(f.calls, "stock:"+symbol)
	price, ok := f.stocks[symbol]
	if !ok {
		return model.Quote{}, errMiss
	}
	return model.Quote{Symbol: symbol, Price: decimal.RequireFromString(price)}, nil
}

func (f *stubFeed) GetCryptoQuote(_ context.Context, id string) (model.Quote, error) {
	f.calls = append(f.calls, "crypto:"+id)
	price, ok := f.crypto[id]
	if !ok {
		return model.Quote{}, errMiss
	}
	return model.Quote{Symbol: id, Price: decimal.RequireFromString(price)}, nil
}

func fixedClock() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newPortfolio() *portfolio.Portfolio {
	p := portfolio.New("p-1", "Main", fixedClock)
	p.Cash = d("100.10")
	p.Holdings.ApplyBuy(model.AssetClassStock, "AAPL", "Apple Inc.", d("10"), d("100"))
	p.Holdings.ApplyBuy(model.AssetClassStock, "MSFT", "Microsoft Corporation", d("2"), d("300"))
	p.Holdings.ApplyBuy(model.AssetClassCrypto, "BTC", "Bitcoin", d("0.1"), d("30000"))
	return p
}

func TestRevalue(t *testing.T) {
	feed := &stubFeed{
		stocks: map[string]string{"AAPL": "110"},
		crypto: map[string]string{"bitcoin": "33333.33"},
	}
	e := New(feed, func(symbol string) string {
		if symbol == "BTC" {
			return "bitcoin"
		}
		return symbol
	}, 0)
	p := newPortfolio()

	totals := e.Revalue(context.Background(), p)

	// 100.10 + 10*110 + 2*300 (stale) + 0.1*33333.33
	wantValue := d("5133.433")
	if !totals.TotalValue.Equal(wantValue) {
		t.Errorf("TotalValue = %s, want %s", totals.TotalValue, wantValue)
	}
	if !totals.TotalInvested.Equal(d("4600")) {
		t.Errorf("TotalInvested = %s, want 4600", totals.TotalInvested)
	}

	sum := p.Cash
	for _, h := range p.Holdings.List() {
		sum = sum.Add(h.CurrentValue())
	}
	if !sum.Equal(totals.TotalValue) {
		t.Errorf("cash + holdings = %s, TotalValue = %s", sum, totals.TotalValue)
	}

	if len(p.Snapshots) != 2 {
		t.Fatalf("len(Snapshots) = %d, want 2", len(p.Snapshots))
	}
	last := p.Snapshots[1]
	if !last.TotalValue.Equal(wantValue) || !last.Timestamp.Equal(fixedClock()) {
		t.Errorf("snapshot = %+v, want value %s at %v", last, wantValue, fixedClock())
	}

	msft, _ := p.Holdings.Get(model.AssetKey{Class: model.AssetClassStock, Symbol: "MSFT"})
	if !msft.LastPrice.Equal(d("300")) {
		t.Errorf("MSFT LastPrice = %s, want stale 300", msft.LastPrice)
	}
}

func TestRevalueWithoutFeed(t *testing.T) {
	e := New(nil, nil, 0)
	p := portfolio.New("p-1", "Main", fixedClock)

	totals := e.Revalue(context.Background(), p)

	if !totals.TotalValue.IsZero() || !totals.TotalROI.IsZero() {
		t.Errorf("totals = %+v, want zero", totals)
	}
}

func TestTotalsROI(t *testing.T) {
	p := portfolio.New("p-1", "Main", fixedClock)
	p.Holdings.ApplyBuy(model.AssetClassStock, "AAPL", "", d("10"), d("100"))
	p.Holdings.UpdatePrice(model.AssetClassStock, "AAPL", d("110"))

	totals := Totals(p)

	if !totals.TotalROI.Equal(d("10")) {
		t.Errorf("TotalROI = %s, want 10", totals.TotalROI)
	}
}

func TestSnapshotRetention(t *testing.T) {
	e := New(nil, nil, 2)
	p := portfolio.New("p-1", "Main", fixedClock)

	for i := 0; i < 5; i++ {
		e.Commit(p)
	}

	if len(p.Snapshots) != 2 {
		t.Errorf("len(Snapshots) = %d, want 2", len(p.Snapshots))
	}
}
