package holdingStore

import (
	"errors"
	"testing"
	"time"

	"github.com/KotFed0t/invest_tracker/internal/model"
	"github.com/KotFed0t/invest_tracker/internal/service"
	"github.com/shopspring/decimal"
)

func fixedClock() time.Time {
	return time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestApplyBuy(t *testing.T) {
	t.Run("creates holding at trade price", func(t *testing.T) {
		s := New(fixedClock)

		s.ApplyBuy(model.AssetClassStock, "AAPL", "Apple Inc.", d("10"), d("100"))

		h, ok := s.Get(model.AssetKey{Class: model.AssetClassStock, Symbol: "AAPL"})
		if !ok {
			t.Fatal("holding AAPL not found")
		}
		if !h.Quantity.Equal(d("10")) {
			t.Errorf("Quantity = %s, want 10", h.Quantity)
		}
		if !h.AverageCost.Equal(d("100")) {
			t.Errorf("AverageCost = %s, want 100", h.AverageCost)
		}
		if !h.LastPrice.Equal(d("100")) {
			t.Errorf("LastPrice = %s, want 100", h.LastPrice)
		}
		if !h.LastUpdated.Equal(fixedClock()) {
			t.Errorf("LastUpdated = %v, want %v", h.LastUpdated, fixedClock())
		}
	})

	t.Run("weighted average is independent of order", func(t *testing.T) {
		lots := []struct{ qty, price string }{
			{"3", "120"},
			{"7", "95.5"},
			{"0.25", "1000"},
			{"12", "80"},
		}

		forward := New(fixedClock)
		for _, lot := range lots {
			forward.ApplyBuy(model.AssetClassCrypto, "ETH", "", d(lot.qty), d(lot.price))
		}

		backward := New(fixedClock)
		for i := len(lots) - 1; i >= 0; i-- {
			backward.ApplyBuy(model.AssetClassCrypto, "ETH", "", d(lots[i].qty), d(lots[i].price))
		}

		totalQty := decimal.Zero
		totalCost := decimal.Zero
		for _, lot := range lots {
			totalQty = totalQty.Add(d(lot.qty))
			totalCost = totalCost.Add(d(lot.qty).Mul(d(lot.price)))
		}
		want := totalCost.Div(totalQty).Round(10)

		key := model.AssetKey{Class: model.AssetClassCrypto, Symbol: "ETH"}
		f, _ := forward.Get(key)
		b, _ := backward.Get(key)

		if !f.AverageCost.Round(10).Equal(want) {
			t.Errorf("forward AverageCost = %s, want %s", f.AverageCost.Round(10), want)
		}
		if !b.AverageCost.Round(10).Equal(want) {
			t.Errorf("backward AverageCost = %s, want %s", b.AverageCost.Round(10), want)
		}
		if !f.Quantity.Equal(totalQty) || !b.Quantity.Equal(totalQty) {
			t.Errorf("Quantity = %s / %s, want %s", f.Quantity, b.Quantity, totalQty)
		}
	})

	t.Run("average with repeating decimals is exactly order independent", func(t *testing.T) {
		key := model.AssetKey{Class: model.AssetClassStock, Symbol: "MSFT"}
		ascending := New(fixedClock)
		for _, n := range []string{"1", "2", "3"} {
			ascending.ApplyBuy(key.Class, key.Symbol, "", d(n), d(n))
		}
		descending := New(fixedClock)
		for _, n := range []string{"3", "2", "1"} {
			descending.ApplyBuy(key.Class, key.Symbol, "", d(n), d(n))
		}

		a, _ := ascending.Get(key)
		b, _ := descending.Get(key)
		if !a.AverageCost.Equal(b.AverageCost) {
			t.Errorf("AverageCost ascending = %s, descending = %s", a.AverageCost, b.AverageCost)
		}
		if want := d("14").Div(d("6")); !a.AverageCost.Equal(want) {
			t.Errorf("AverageCost = %s, want %s", a.AverageCost, want)
		}
	})

	t.Run("buy after partial sell keeps cost of remaining lots", func(t *testing.T) {
		key := model.AssetKey{Class: model.AssetClassStock, Symbol: "IBM"}
		s := New(fixedClock)
		s.ApplyBuy(key.Class, key.Symbol, "", d("4"), d("10"))
		if err := s.ApplySell(key.Class, key.Symbol, d("2"), d("50")); err != nil {
			t.Fatalf("ApplySell: %v", err)
		}
		s.ApplyBuy(key.Class, key.Symbol, "", d("2"), d("20"))

		h, _ := s.Get(key)
		if !h.AverageCost.Equal(d("15")) {
			t.Errorf("AverageCost = %s, want 15", h.AverageCost)
		}
	})

	t.Run("same symbol in different classes are distinct", func(t *testing.T) {
		s := New(fixedClock)

		s.ApplyBuy(model.AssetClassStock, "SOL", "", d("1"), d("10"))
		s.ApplyBuy(model.AssetClassCrypto, "SOL", "", d("1"), d("150"))

		if s.Len() != 2 {
			t.Errorf("Len() = %d, want 2", s.Len())
		}
	})
}

func TestApplySell(t *testing.T) {
	key := model.AssetKey{Class: model.AssetClassStock, Symbol: "AAPL"}

	tests := []struct {
		name      string
		sellQty   string
		wantErr   error
		wantQty   string
		wantExist bool
	}{
		{name: "partial sell keeps average cost", sellQty: "4", wantQty: "6", wantExist: true},
		{name: "full sell removes holding", sellQty: "10", wantExist: false},
		{name: "oversell is declined", sellQty: "10.0001", wantErr: service.ErrInsufficientQuantity, wantQty: "10", wantExist: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			s := New(fixedClock)
			s.ApplyBuy(model.AssetClassStock, "AAPL", "Apple Inc.", d("10"), d("100"))

			// Execute
			err := s.ApplySell(model.AssetClassStock, "AAPL", d(tt.sellQty), d("110"))

			// Assert
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ApplySell() error = %v, want %v", err, tt.wantErr)
			}
			h, ok := s.Get(key)
			if ok != tt.wantExist {
				t.Fatalf("holding exists = %v, want %v", ok, tt.wantExist)
			}
			if !ok {
				return
			}
			if !h.Quantity.Equal(d(tt.wantQty)) {
				t.Errorf("Quantity = %s, want %s", h.Quantity, tt.wantQty)
			}
			if !h.AverageCost.Equal(d("100")) {
				t.Errorf("AverageCost = %s, want 100", h.AverageCost)
			}
		})
	}

	t.Run("unknown holding", func(t *testing.T) {
		s := New(fixedClock)

		err := s.ApplySell(model.AssetClassCrypto, "BTC", d("1"), d("1"))

		if !errors.Is(err, service.ErrInsufficientQuantity) {
			t.Errorf("error = %v, want ErrInsufficientQuantity", err)
		}
		if !errors.Is(err, service.ErrUnknownHolding) {
			t.Errorf("error = %v, want ErrUnknownHolding", err)
		}
	})

	t.Run("fractional sells leave no dust", func(t *testing.T) {
		s := New(fixedClock)
		s.ApplyBuy(model.AssetClassCrypto, "BTC", "Bitcoin", d("0.3"), d("60000"))

		for i := 0; i < 3; i++ {
			if err := s.ApplySell(model.AssetClassCrypto, "BTC", d("0.1"), d("61000")); err != nil {
				t.Fatalf("ApplySell() #%d error = %v", i, err)
			}
		}

		if s.Len() != 0 {
			t.Errorf("Len() = %d, want 0", s.Len())
		}
	})

	t.Run("sell then buy back restores holding", func(t *testing.T) {
		s := New(fixedClock)
		s.ApplyBuy(model.AssetClassStock, "AAPL", "Apple Inc.", d("10"), d("100"))

		if err := s.ApplySell(model.AssetClassStock, "AAPL", d("10"), d("100")); err != nil {
			t.Fatalf("ApplySell() error = %v", err)
		}
		s.ApplyBuy(model.AssetClassStock, "AAPL", "Apple Inc.", d("10"), d("100"))

		h, _ := s.Get(key)
		if !h.Quantity.Equal(d("10")) || !h.AverageCost.Equal(d("100")) {
			t.Errorf("holding = {qty %s, avg %s}, want {qty 10, avg 100}", h.Quantity, h.AverageCost)
		}
	})
}

func TestUpdatePrice(t *testing.T) {
	s := New(fixedClock)
	s.ApplyBuy(model.AssetClassStock, "AAPL", "Apple Inc.", d("10"), d("100"))

	if !s.UpdatePrice(model.AssetClassStock, "AAPL", d("110")) {
		t.Error("UpdatePrice(AAPL) = false, want true")
	}
	if s.UpdatePrice(model.AssetClassStock, "MSFT", d("300")) {
		t.Error("UpdatePrice(MSFT) = true, want false")
	}

	h, _ := s.Get(model.AssetKey{Class: model.AssetClassStock, Symbol: "AAPL"})
	if !h.UnrealizedPL().Equal(d("100")) {
		t.Errorf("UnrealizedPL = %s, want 100", h.UnrealizedPL())
	}
	if !h.UnrealizedPLPercent().Equal(d("10")) {
		t.Errorf("UnrealizedPLPercent = %s, want 10", h.UnrealizedPLPercent())
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestListAndClone(t *testing.T) {
	s := New(fixedClock)
	s.ApplyBuy(model.AssetClassStock, "TSLA", "", d("1"), d("200"))
	s.ApplyBuy(model.AssetClassCrypto, "ETH", "", d("1"), d("3000"))
	s.ApplyBuy(model.AssetClassStock, "AAPL", "", d("1"), d("100"))

	got := s.Keys()
	want := []model.AssetKey{
		{Class: model.AssetClassCrypto, Symbol: "ETH"},
		{Class: model.AssetClassStock, Symbol: "AAPL"},
		{Class: model.AssetClassStock, Symbol: "TSLA"},
	}
	if len(got) != len(want) {
		t.Fatalf("Keys() len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Keys()[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	c := s.Clone()
	c.UpdatePrice(model.AssetClassStock, "AAPL", d("1"))
	orig, _ := s.Get(want[1])
	if !orig.LastPrice.Equal(d("100")) {
		t.Errorf("original LastPrice = %s after clone mutation, want 100", orig.LastPrice)
	}
}
