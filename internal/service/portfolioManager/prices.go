package portfolioManager

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/invest_tracker/internal/model"
	"github.com/KotFed0t/invest_tracker/internal/service"
	"github.com/KotFed0t/invest_tracker/utils"
	"github.com/shopspring/decimal"
)

// UpdatePriceFromFeed applies a fresh price to every portfolio holding the
// asset and to the watchlist.
func (m *PortfolioManager) UpdatePriceFromFeed(ctx context.Context, symbol string, class model.AssetClass, price decimal.Decimal) error {
	key, err := validateAsset(class, symbol)
	if err != nil {
		return err
	}
	if price.IsNegative() {
		return fmt.Errorf("%w: price %s", service.ErrInvalidAmount, price)
	}

	return m.ApplyQuotes(ctx, []model.Quote{{
		AssetClass: key.Class,
		Symbol:     key.Symbol,
		Price:      price,
		UpdatedAt:  m.opts.Clock(),
	}})
}

// ApplyQuotes pushes a batch of quotes into state. Only touched portfolios
// are revalued and at most one notification is emitted for the batch.
func (m *PortfolioManager) ApplyQuotes(ctx context.Context, quotes []model.Quote) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioManager.ApplyQuotes"

	slog.Debug("ApplyQuotes start", slog.String("rqID", rqID), slog.String("op", op), slog.Int("quotes", len(quotes)))

	var updated int
	err := m.do(ctx, func() error {
		touched := make(map[string]bool)
		watchlistChanged := false

		for _, q := range quotes {
			key := model.NewAssetKey(q.AssetClass, q.Symbol)
			if !key.Class.Valid() || key.Symbol == "" || q.Price.IsNegative() {
				continue
			}
			for _, id := range m.order {
				if m.portfolios[id].Holdings.UpdatePrice(key.Class, key.Symbol, q.Price) {
					touched[id] = true
				}
			}
			if m.applyWatchlistQuote(key, q) {
				watchlistChanged = true
			}
		}

		for _, id := range m.order {
			if touched[id] {
				m.engine.Commit(m.portfolios[id])
			}
		}
		updated = len(touched)
		if updated > 0 || watchlistChanged {
			m.committed(ctx)
		}
		return nil
	})
	if err != nil {
		slog.Error("ApplyQuotes failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("ApplyQuotes finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int("portfolios", updated))
	return nil
}

// Revalue is the periodic tick: every portfolio pulls cached prices and
// records a snapshot.
func (m *PortfolioManager) Revalue(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioManager.Revalue"

	slog.Debug("Revalue start", slog.String("rqID", rqID), slog.String("op", op))

	err := m.do(ctx, func() error {
		for _, id := range m.order {
			m.engine.Revalue(ctx, m.portfolios[id])
		}
		m.committed(ctx)
		return nil
	})
	if err != nil {
		slog.Error("Revalue failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("Revalue finished", slog.String("rqID", rqID), slog.String("op", op))
	return nil
}

// RefreshPrices fetches quotes for every held and watched asset. Network
// calls run outside the command loop; results are applied as one batch.
func (m *PortfolioManager) RefreshPrices(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioManager.RefreshPrices"

	if m.feed == nil {
		return nil
	}

	var targets []model.AssetKey
	err := m.do(ctx, func() error {
		targets = m.refreshTargets()
		return nil
	})
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		slog.Debug("nothing to refresh", slog.String("rqID", rqID), slog.String("op", op))
		return nil
	}

	slog.Debug("RefreshPrices start", slog.String("rqID", rqID), slog.String("op", op), slog.Int("targets", len(targets)))

	quotes, fetchErr := m.feed.Refresh(ctx, targets)
	if fetchErr != nil {
		slog.Warn("some quotes failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", fetchErr.Error()))
	}
	if len(quotes) == 0 {
		return fetchErr
	}

	if err := m.ApplyQuotes(ctx, quotes); err != nil {
		return err
	}

	slog.Debug("RefreshPrices finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int("quotes", len(quotes)))
	return nil
}

func (m *PortfolioManager) refreshTargets() []model.AssetKey {
	seen := make(map[model.AssetKey]bool)
	var targets []model.AssetKey
	add := func(key model.AssetKey) {
		if !seen[key] {
			seen[key] = true
			targets = append(targets, key)
		}
	}
	for _, id := range m.order {
		for _, key := range m.portfolios[id].Holdings.Keys() {
			add(key)
		}
	}
	for _, item := range m.watchlist {
		add(item.Key())
	}
	return targets
}
