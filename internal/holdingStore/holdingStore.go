package holdingStore

import (
	"fmt"
	"sort"
	"time"

	"github.com/KotFed0t/invest_tracker/internal/model"
	"github.com/KotFed0t/invest_tracker/internal/service"
	"github.com/shopspring/decimal"
)

// HoldingStore keeps the open positions of one portfolio. It is not safe for
// concurrent use; the owning portfolio manager serializes access.
type HoldingStore struct {
	holdings map[model.AssetKey]*model.Holding
	// exact total cost per position; AverageCost is derived from it
	costs map[model.AssetKey]decimal.Decimal
	clock func() time.Time
}

func New(clock func() time.Time) *HoldingStore {
	if clock == nil {
		clock = time.Now
	}
	return &HoldingStore{
		holdings: make(map[model.AssetKey]*model.Holding),
		costs:    make(map[model.AssetKey]decimal.Decimal),
		clock:    clock,
	}
}

// Restore rebuilds a store from persisted holdings. Entries with a
// non-positive quantity are dropped.
func Restore(clock func() time.Time, holdings []model.Holding) *HoldingStore {
	s := New(clock)
	for _, h := range holdings {
		if !h.Quantity.IsPositive() {
			continue
		}
		h := h
		s.holdings[h.Key()] = &h
		s.costs[h.Key()] = h.CostBasis()
	}
	return s
}

// ApplyBuy adds quantity at price, recomputing the volume-weighted average cost.
// The trade price becomes the last known price.
func (s *HoldingStore) ApplyBuy(class model.AssetClass, symbol, name string, quantity, price decimal.Decimal) {
	key := model.AssetKey{Class: class, Symbol: symbol}
	now := s.clock()

	h, ok := s.holdings[key]
	if !ok {
		s.holdings[key] = &model.Holding{
			AssetClass:  class,
			Symbol:      symbol,
			Name:        name,
			Quantity:    quantity,
			AverageCost: price,
			LastPrice:   price,
			LastUpdated: now,
		}
		s.costs[key] = quantity.Mul(price)
		return
	}

	cost := s.costs[key].Add(quantity.Mul(price))
	h.Quantity = h.Quantity.Add(quantity)
	h.AverageCost = cost.Div(h.Quantity)
	s.costs[key] = cost
	h.LastPrice = price
	h.LastUpdated = now
	if name != "" {
		h.Name = name
	}
}

// ApplySell reduces the position, removing it when the quantity reaches exactly
// zero. The average cost is never changed by a sell.
func (s *HoldingStore) ApplySell(class model.AssetClass, symbol string, quantity, price decimal.Decimal) error {
	key := model.AssetKey{Class: class, Symbol: symbol}

	h, ok := s.holdings[key]
	if !ok {
		return fmt.Errorf("%w: %w %s", service.ErrInsufficientQuantity, service.ErrUnknownHolding, key)
	}

	if quantity.GreaterThan(h.Quantity) {
		return fmt.Errorf("%w: want %s, hold %s of %s", service.ErrInsufficientQuantity, quantity, h.Quantity, key)
	}

	h.Quantity = h.Quantity.Sub(quantity)
	if h.Quantity.IsZero() {
		delete(s.holdings, key)
		delete(s.costs, key)
		return nil
	}
	s.costs[key] = h.Quantity.Mul(h.AverageCost)

	h.LastPrice = price
	h.LastUpdated = s.clock()

	return nil
}

// UpdatePrice sets the last price of a held position. Unknown keys are ignored.
func (s *HoldingStore) UpdatePrice(class model.AssetClass, symbol string, price decimal.Decimal) bool {
	h, ok := s.holdings[model.AssetKey{Class: class, Symbol: symbol}]
	if !ok {
		return false
	}
	h.LastPrice = price
	h.LastUpdated = s.clock()
	return true
}

func (s *HoldingStore) Get(key model.AssetKey) (model.Holding, bool) {
	h, ok := s.holdings[key]
	if !ok {
		return model.Holding{}, false
	}
	return *h, true
}

func (s *HoldingStore) Len() int {
	return len(s.holdings)
}

// List returns copies of all holdings ordered by asset class, then symbol.
func (s *HoldingStore) List() []model.Holding {
	res := make([]model.Holding, 0, len(s.holdings))
	for _, h := range s.holdings {
		res = append(res, *h)
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].AssetClass != res[j].AssetClass {
			return res[i].AssetClass < res[j].AssetClass
		}
		return res[i].Symbol < res[j].Symbol
	})
	return res
}

func (s *HoldingStore) Keys() []model.AssetKey {
	holdings := s.List()
	keys := make([]model.AssetKey, 0, len(holdings))
	for _, h := range holdings {
		keys = append(keys, h.Key())
	}
	return keys
}

// Clone returns a deep copy sharing only the clock.
func (s *HoldingStore) Clone() *HoldingStore {
	c := Restore(s.clock, s.List())
	for key, cost := range s.costs {
		c.costs[key] = cost
	}
	return c
}
