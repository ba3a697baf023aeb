package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/KotFed0t/invest_tracker/config"
	"github.com/KotFed0t/invest_tracker/data"
	"github.com/KotFed0t/invest_tracker/data/cache"
	"github.com/KotFed0t/invest_tracker/data/repository/memoryRepository"
	"github.com/KotFed0t/invest_tracker/data/repository/redisRepository"
	"github.com/KotFed0t/invest_tracker/data/repository/sqlRepository"
	"github.com/KotFed0t/invest_tracker/internal/externalApi/alphaVantageApi"
	"github.com/KotFed0t/invest_tracker/internal/externalApi/coinGeckoApi"
	"github.com/KotFed0t/invest_tracker/internal/model"
	"github.com/KotFed0t/invest_tracker/internal/persistence"
	"github.com/KotFed0t/invest_tracker/internal/priceFeed"
	"github.com/KotFed0t/invest_tracker/internal/service/portfolioManager"
)

// app holds what every subcommand needs. close releases connections.
type app struct {
	store   *persistence.Store
	feed    *priceFeed.PriceFeed
	closers []io.Closer
}

func newApp(cfg *config.Config) (*app, error) {
	a := &app{}

	blobs, err := a.openBlobs(cfg)
	if err != nil {
		return nil, err
	}

	var cipher *persistence.Cipher
	if cfg.Storage.EncryptionKey != "" {
		cipher, err = persistence.NewCipher(cfg.Storage.EncryptionKey)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("storage encryption key: %w", err)
		}
	}

	a.store = persistence.New(blobs, cipher)
	a.feed = a.newPriceFeed(cfg)

	return a, nil
}

func (a *app) openBlobs(cfg *config.Config) (persistence.BlobStore, error) {
	switch cfg.Storage.Driver {
	case "memory":
		return memoryRepository.New(), nil
	case "sqlite":
		db := data.NewSqliteClient(cfg)
		a.closers = append(a.closers, db)
		return sqlRepository.New(db), nil
	case "postgres":
		db := data.NewPostgresClient(cfg)
		a.closers = append(a.closers, db)
		return sqlRepository.New(db), nil
	case "redis":
		client := data.NewRedisClient(cfg)
		a.closers = append(a.closers, client)
		return redisRepository.New(client, cfg), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func (a *app) newPriceFeed(cfg *config.Config) *priceFeed.PriceFeed {
	var quoteCache priceFeed.Cache
	if cfg.Redis.Host != "" {
		client := data.NewRedisClient(cfg)
		a.closers = append(a.closers, client)
		quoteCache = cache.NewRedisCache(client, cfg)
	}

	return priceFeed.New(alphaVantageApi.New(cfg), coinGeckoApi.New(cfg), quoteCache, cfg.Jobs.RefreshConcurrency)
}

// startManager runs a manager until ctx is done and restores the saved state
// into it. writer may be nil for read-only commands.
func (a *app) startManager(ctx context.Context, cfg *config.Config, writer portfolioManager.StateWriter) (*portfolioManager.PortfolioManager, error) {
	manager := portfolioManager.New(portfolioManager.OptionsFromConfig(cfg), a.feed, writer)
	go manager.Run(ctx)

	views, err := a.store.LoadPortfolios(ctx)
	if err != nil {
		return nil, fmt.Errorf("load portfolios: %w", err)
	}
	watchlist, err := a.store.LoadWatchlist(ctx)
	if err != nil {
		return nil, fmt.Errorf("load watchlist: %w", err)
	}

	warmed := a.feed.Warm(ctx, heldAssets(views, watchlist))

	if err = manager.Restore(ctx, views, watchlist); err != nil {
		return nil, fmt.Errorf("restore state: %w", err)
	}

	slog.Info("state restored", slog.Int("portfolios", len(views)), slog.Int("watchlist", len(watchlist)), slog.Int("warmedQuotes", warmed))
	return manager, nil
}

func heldAssets(views []model.PortfolioView, watchlist []model.WatchlistItem) []model.AssetKey {
	var keys []model.AssetKey
	for _, v := range views {
		for _, h := range v.Holdings {
			keys = append(keys, h.Key())
		}
	}
	for _, item := range watchlist {
		keys = append(keys, item.Key())
	}
	return keys
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			slog.Error("failed to close connection", slog.String("err", err.Error()))
		}
	}
	a.closers = nil
}
