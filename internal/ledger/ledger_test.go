package ledger

import (
	"strconv"
	"testing"
	"time"

	"github.com/KotFed0t/invest_tracker/internal/model"
	"github.com/shopspring/decimal"
)

var t0 = time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

type txBuilder struct {
	seq uint64
}

func (b *txBuilder) trade(kind model.TransactionKind, symbol string, qty, price int64, at time.Time) model.Transaction {
	b.seq++
	q := decimal.NewFromInt(qty)
	p := decimal.NewFromInt(price)
	return model.Transaction{
		ID:          "tx-" + strconv.FormatUint(b.seq, 10),
		Seq:         b.seq,
		Kind:        kind,
		AssetClass:  model.AssetClassStock,
		Symbol:      symbol,
		Quantity:    q,
		Price:       p,
		TotalAmount: q.Mul(p),
		Timestamp:   at,
	}
}

func (b *txBuilder) cash(kind model.TransactionKind, amount int64, at time.Time) model.Transaction {
	b.seq++
	return model.Transaction{
		ID:          "tx-" + strconv.FormatUint(b.seq, 10),
		Seq:         b.seq,
		Kind:        kind,
		TotalAmount: decimal.NewFromInt(amount),
		Timestamp:   at,
	}
}

func TestRecordOrdering(t *testing.T) {
	var b txBuilder
	l := New()

	first := b.cash(model.TransactionDeposit, 100, t0)
	second := b.cash(model.TransactionDeposit, 200, t0)
	late := b.cash(model.TransactionDeposit, 300, t0.Add(time.Hour))
	early := b.cash(model.TransactionDeposit, 400, t0.Add(-time.Hour))

	l.Record(first)
	l.Record(second)
	l.Record(late)
	l.Record(early)

	got := l.All()
	wantIDs := []string{early.ID, first.ID, second.ID, late.ID}
	if len(got) != len(wantIDs) {
		t.Fatalf("len = %d, want %d", len(got), len(wantIDs))
	}
	for i, id := range wantIDs {
		if got[i].ID != id {
			t.Errorf("All()[%d].ID = %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestFilter(t *testing.T) {
	var b txBuilder
	l := New(
		b.cash(model.TransactionDeposit, 1000, t0),
		b.trade(model.TransactionBuy, "AAPL", 1, 100, t0.Add(time.Minute)),
		b.trade(model.TransactionBuy, "MSFT", 1, 300, t0.Add(2*time.Minute)),
		b.trade(model.TransactionSell, "AAPL", 1, 110, t0.Add(3*time.Minute)),
		b.cash(model.TransactionWithdrawal, 50, t0.Add(4*time.Minute)),
	)

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{name: "everything", filter: Filter{}, want: 5},
		{name: "buys", filter: Filter{Kinds: []model.TransactionKind{model.TransactionBuy}}, want: 2},
		{name: "symbol", filter: Filter{Symbol: "AAPL"}, want: 2},
		{name: "kind and symbol", filter: Filter{Kinds: []model.TransactionKind{model.TransactionSell}, Symbol: "AAPL"}, want: 1},
		{name: "range half open", filter: Filter{From: t0.Add(time.Minute), To: t0.Add(3 * time.Minute)}, want: 2},
		{name: "cash movements", filter: Filter{Kinds: []model.TransactionKind{model.TransactionDeposit, model.TransactionWithdrawal}}, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := l.Filter(tt.filter)
			if len(got) != tt.want {
				t.Errorf("Filter() returned %d transactions, want %d", len(got), tt.want)
			}
			for i := 1; i < len(got); i++ {
				if got[i].Before(got[i-1]) {
					t.Errorf("Filter() result not in ledger order at %d", i)
				}
			}
		})
	}
}

func TestTradeCounts(t *testing.T) {
	t.Run("buy then profitable sell", func(t *testing.T) {
		var b txBuilder
		l := New(
			b.trade(model.TransactionBuy, "AAPL", 10, 100, t0),
			b.trade(model.TransactionSell, "AAPL", 10, 110, t0.Add(time.Minute)),
		)

		got := l.TradeCounts()
		want := TradeCounts{Total: 2, Winning: 1, Losing: 1}
		if got != want {
			t.Errorf("TradeCounts() = %+v, want %+v", got, want)
		}
	})

	t.Run("compares with last buy only", func(t *testing.T) {
		var b txBuilder
		l := New(
			b.trade(model.TransactionBuy, "AAPL", 1, 50, t0),
			b.trade(model.TransactionBuy, "AAPL", 1, 120, t0.Add(time.Minute)),
			b.trade(model.TransactionSell, "AAPL", 1, 110, t0.Add(2*time.Minute)),
		)

		got := l.TradeCounts()
		want := TradeCounts{Total: 3, Winning: 0, Losing: 3}
		if got != want {
			t.Errorf("TradeCounts() = %+v, want %+v", got, want)
		}
	})

	t.Run("buys of other symbols are ignored", func(t *testing.T) {
		var b txBuilder
		l := New(
			b.trade(model.TransactionBuy, "AAPL", 1, 100, t0),
			b.trade(model.TransactionBuy, "MSFT", 1, 500, t0.Add(time.Minute)),
			b.trade(model.TransactionSell, "AAPL", 1, 101, t0.Add(2*time.Minute)),
		)

		if got := l.TradeCounts().Winning; got != 1 {
			t.Errorf("Winning = %d, want 1", got)
		}
	})

	t.Run("sell without prior buy is losing", func(t *testing.T) {
		var b txBuilder
		l := New(
			b.trade(model.TransactionSell, "AAPL", 1, 101, t0),
			b.trade(model.TransactionBuy, "AAPL", 1, 10, t0.Add(time.Minute)),
		)

		got := l.TradeCounts()
		want := TradeCounts{Total: 2, Winning: 0, Losing: 2}
		if got != want {
			t.Errorf("TradeCounts() = %+v, want %+v", got, want)
		}
	})

	t.Run("cash movements are not trades", func(t *testing.T) {
		var b txBuilder
		l := New(b.cash(model.TransactionDeposit, 10, t0))

		if got := l.TradeCounts(); got != (TradeCounts{}) {
			t.Errorf("TradeCounts() = %+v, want zero", got)
		}
	})
}

func TestPeriodROI(t *testing.T) {
	var b txBuilder
	l := New(
		b.trade(model.TransactionBuy, "AAPL", 10, 100, t0),
		b.trade(model.TransactionSell, "AAPL", 5, 120, t0.Add(time.Hour)),
		b.trade(model.TransactionBuy, "AAPL", 10, 100, t0.AddDate(-1, 0, 0)),
	)

	yearStart := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := yearStart.AddDate(1, 0, 0)

	roi, ok := l.PeriodROI(yearStart, yearEnd)
	if !ok {
		t.Fatal("PeriodROI() ok = false, want true")
	}
	// (600 - 1000) / 1000 * 100
	if !roi.Equal(decimal.NewFromInt(-40)) {
		t.Errorf("PeriodROI() = %s, want -40", roi)
	}

	_, ok = l.PeriodROI(yearEnd, yearEnd.AddDate(1, 0, 0))
	if ok {
		t.Error("PeriodROI() for empty period ok = true, want false")
	}
}
