package portfolioManager

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/invest_tracker/internal/model"
	"github.com/KotFed0t/invest_tracker/internal/service"
	"github.com/KotFed0t/invest_tracker/utils"
)

func (m *PortfolioManager) GetWatchlist(ctx context.Context) ([]model.WatchlistItem, error) {
	var items []model.WatchlistItem
	err := m.do(ctx, func() error {
		items = append([]model.WatchlistItem(nil), m.watchlist...)
		return nil
	})
	return items, err
}

// AddToWatchlist is idempotent per asset key. The last cached quote, if any,
// seeds the item's price.
func (m *PortfolioManager) AddToWatchlist(ctx context.Context, class model.AssetClass, symbol, name string) (model.WatchlistItem, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioManager.AddToWatchlist"

	key, err := validateAsset(class, symbol)
	if err != nil {
		return model.WatchlistItem{}, err
	}
	if name == "" {
		name = key.Symbol
	}

	quote, hasQuote := m.cachedQuote(ctx, key)

	var item model.WatchlistItem
	err = m.do(ctx, func() error {
		for _, existing := range m.watchlist {
			if existing.Key() == key {
				item = existing
				return nil
			}
		}

		now := m.opts.Clock()
		item = model.WatchlistItem{
			AssetClass:  key.Class,
			Symbol:      key.Symbol,
			Name:        name,
			AddedAt:     now,
			LastUpdated: now,
		}
		if hasQuote {
			item.Price = quote.Price
			item.Change = quote.Change
			item.ChangePercent = quote.ChangePercent
		}
		m.watchlist = append(m.watchlist, item)
		m.committed(ctx)
		return nil
	})
	if err != nil {
		slog.Error("AddToWatchlist failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.WatchlistItem{}, err
	}

	slog.Debug("AddToWatchlist finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("asset", key.String()))
	return item, nil
}

func (m *PortfolioManager) RemoveFromWatchlist(ctx context.Context, class model.AssetClass, symbol string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioManager.RemoveFromWatchlist"

	key, err := validateAsset(class, symbol)
	if err != nil {
		return err
	}

	err = m.do(ctx, func() error {
		for i, existing := range m.watchlist {
			if existing.Key() == key {
				m.watchlist = append(m.watchlist[:i], m.watchlist[i+1:]...)
				m.committed(ctx)
				return nil
			}
		}
		return fmt.Errorf("%w: %s", service.ErrNotWatched, key)
	})
	if err != nil {
		slog.Error("RemoveFromWatchlist failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("RemoveFromWatchlist finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("asset", key.String()))
	return nil
}

func (m *PortfolioManager) applyWatchlistQuote(key model.AssetKey, q model.Quote) bool {
	changed := false
	for i := range m.watchlist {
		item := &m.watchlist[i]
		if item.Key() != key {
			continue
		}
		item.Price = q.Price
		item.Change = q.Change
		item.ChangePercent = q.ChangePercent
		item.LastUpdated = m.opts.Clock()
		changed = true
	}
	return changed
}

func (m *PortfolioManager) cachedQuote(ctx context.Context, key model.AssetKey) (model.Quote, bool) {
	if m.feed == nil {
		return model.Quote{}, false
	}
	var (
		quote model.Quote
		err   error
	)
	if key.Class == model.AssetClassCrypto {
		quote, err = m.feed.GetCryptoQuote(ctx, m.opts.CryptoID(key.Symbol))
	} else {
		quote, err = m.feed.GetStockQuote(ctx, key.Symbol)
	}
	return quote, err == nil
}
