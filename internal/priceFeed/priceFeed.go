package priceFeed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/KotFed0t/invest_tracker/internal/externalApi"
	"github.com/KotFed0t/invest_tracker/internal/model"
	"github.com/KotFed0t/invest_tracker/utils"
	"golang.org/x/sync/errgroup"
)

type StockApi interface {
	GetStockQuote(ctx context.Context, symbol string) (model.Quote, error)
	SearchSymbols(ctx context.Context, query string) ([]model.SearchResult, error)
}

type CryptoApi interface {
	GetCryptoQuote(ctx context.Context, id string) (model.Quote, error)
	SearchCoins(ctx context.Context, query string) ([]model.SearchResult, error)
}

type Cache interface {
	SetQuotes(ctx context.Context, quotes []model.Quote) error
	GetQuote(ctx context.Context, key model.AssetKey) (model.Quote, error)
}

// PriceFeed answers quote lookups from last-known values only. Refresh and
// Warm are the only calls that leave the process.
type PriceFeed struct {
	stockApi    StockApi
	cryptoApi   CryptoApi
	cache       Cache
	concurrency int

	mu     sync.RWMutex
	quotes map[model.AssetKey]model.Quote
}

// New creates a feed. cache may be nil.
func New(stockApi StockApi, cryptoApi CryptoApi, cache Cache, concurrency int) *PriceFeed {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &PriceFeed{
		stockApi:    stockApi,
		cryptoApi:   cryptoApi,
		cache:       cache,
		concurrency: concurrency,
		quotes:      make(map[model.AssetKey]model.Quote),
	}
}

func (f *PriceFeed) GetStockQuote(_ context.Context, symbol string) (model.Quote, error) {
	return f.lookup(model.AssetKey{Class: model.AssetClassStock, Symbol: symbol})
}

// GetCryptoQuote looks up by feed id, see CryptoID.
func (f *PriceFeed) GetCryptoQuote(_ context.Context, id string) (model.Quote, error) {
	return f.lookup(model.AssetKey{Class: model.AssetClassCrypto, Symbol: id})
}

func (f *PriceFeed) lookup(key model.AssetKey) (model.Quote, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	quote, ok := f.quotes[key]
	if !ok {
		return model.Quote{}, fmt.Errorf("%w: %s", externalApi.ErrNotFound, key)
	}
	return quote, nil
}

func (f *PriceFeed) store(key model.AssetKey, quote model.Quote) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quotes[key] = quote
}

// feedKey is where a target's quote lives in the cache: stocks by ticker,
// crypto by feed id.
func feedKey(target model.AssetKey) model.AssetKey {
	if target.Class == model.AssetClassCrypto {
		return model.AssetKey{Class: model.AssetClassCrypto, Symbol: CryptoID(target.Symbol)}
	}
	return target
}

// Warm seeds the in-memory quotes from the shared cache.
func (f *PriceFeed) Warm(ctx context.Context, targets []model.AssetKey) int {
	if f.cache == nil {
		return 0
	}
	warmed := 0
	for _, target := range targets {
		key := feedKey(target)
		quote, err := f.cache.GetQuote(ctx, key)
		if err != nil {
			continue
		}
		f.store(key, quote)
		warmed++
	}
	return warmed
}

// Refresh fetches fresh quotes for targets concurrently. Failed symbols do not
// stop the others; their errors are joined into the returned error. The
// returned quotes carry the target's own symbol.
func (f *PriceFeed) Refresh(ctx context.Context, targets []model.AssetKey) ([]model.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PriceFeed.Refresh"

	slog.Debug("Refresh start", slog.String("rqID", rqID), slog.String("op", op), slog.Int("targets", len(targets)))

	var (
		mu       sync.Mutex
		fetched  = make([]model.Quote, 0, len(targets))
		cachable = make([]model.Quote, 0, len(targets))
		errs     []error
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)

	for _, target := range dedupe(targets) {
		target := target
		g.Go(func() error {
			key := feedKey(target)
			quote, err := f.fetch(gCtx, key)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", target, err))
				return nil
			}

			quote.AssetClass = key.Class
			quote.Symbol = key.Symbol
			f.store(key, quote)
			cachable = append(cachable, quote)

			quote.Symbol = target.Symbol
			fetched = append(fetched, quote)
			return nil
		})
	}
	_ = g.Wait()

	if f.cache != nil && len(cachable) > 0 {
		if err := f.cache.SetQuotes(ctx, cachable); err != nil {
			slog.Error("failed to cache quotes", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}

	slog.Debug("Refresh finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int("fetched", len(fetched)), slog.Int("failed", len(errs)))

	return fetched, errors.Join(errs...)
}

func (f *PriceFeed) fetch(ctx context.Context, key model.AssetKey) (model.Quote, error) {
	if key.Class == model.AssetClassCrypto {
		return f.cryptoApi.GetCryptoQuote(ctx, key.Symbol)
	}
	return f.stockApi.GetStockQuote(ctx, key.Symbol)
}

func dedupe(targets []model.AssetKey) []model.AssetKey {
	seen := make(map[model.AssetKey]struct{}, len(targets))
	res := make([]model.AssetKey, 0, len(targets))
	for _, t := range targets {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		res = append(res, t)
	}
	return res
}

// SearchSymbol queries the matching api and falls back to a built-in list when
// the api fails or finds nothing.
func (f *PriceFeed) SearchSymbol(ctx context.Context, query string, class model.AssetClass) ([]model.SearchResult, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PriceFeed.SearchSymbol"

	var (
		res      []model.SearchResult
		err      error
		fallback []model.SearchResult
	)

	switch class {
	case model.AssetClassStock:
		res, err = f.stockApi.SearchSymbols(ctx, query)
		fallback = fallbackStocks
	case model.AssetClassCrypto:
		res, err = f.cryptoApi.SearchCoins(ctx, query)
		fallback = fallbackCryptos
	default:
		return nil, fmt.Errorf("unknown asset class %q", class)
	}

	if err != nil {
		slog.Warn("search api failed, using fallback list", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}
	if err != nil || len(res) == 0 {
		return filterFallback(fallback, query), nil
	}

	return res, nil
}
