package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/KotFed0t/invest_tracker/data/repository"
	"github.com/KotFed0t/invest_tracker/internal/converter/dbConverter"
	"github.com/KotFed0t/invest_tracker/internal/model"
	"github.com/KotFed0t/invest_tracker/internal/model/dbModel"
	"github.com/KotFed0t/invest_tracker/utils"
)

const (
	portfoliosKey = "portfolios"
	watchlistKey  = "watchlist"
)

// BlobStore is an opaque bytes-in, bytes-out key-value store.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	SetMany(ctx context.Context, entries map[string][]byte) error
}

// State is everything the manager persists in one write.
type State struct {
	Portfolios []model.PortfolioView
	Watchlist  []model.WatchlistItem
}

type Store struct {
	blobs  BlobStore
	cipher *Cipher
	clock  func() time.Time
}

// New wraps blobs. cipher may be nil.
func New(blobs BlobStore, cipher *Cipher) *Store {
	return &Store{blobs: blobs, cipher: cipher, clock: time.Now}
}

// LoadPortfolios returns nil without error when nothing was saved yet.
func (s *Store) LoadPortfolios(ctx context.Context) ([]model.PortfolioView, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Store.LoadPortfolios"

	doc := dbModel.PortfoliosDocument{}
	found, err := s.load(ctx, portfoliosKey, &doc)
	if err != nil {
		slog.Error("failed to load portfolios", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}
	if !found {
		return nil, nil
	}

	res := make([]model.PortfolioView, 0, len(doc.Portfolios))
	for _, p := range doc.Portfolios {
		res = append(res, dbConverter.ConvertPortfolio(p))
	}

	slog.Debug("portfolios loaded", slog.String("rqID", rqID), slog.String("op", op), slog.Int("count", len(res)))

	return res, nil
}

func (s *Store) LoadWatchlist(ctx context.Context) ([]model.WatchlistItem, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Store.LoadWatchlist"

	doc := dbModel.WatchlistDocument{}
	found, err := s.load(ctx, watchlistKey, &doc)
	if err != nil {
		slog.Error("failed to load watchlist", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}
	if !found {
		return nil, nil
	}

	res := make([]model.WatchlistItem, 0, len(doc.Items))
	for _, item := range doc.Items {
		res = append(res, dbConverter.ConvertWatchlistItem(item))
	}

	return res, nil
}

func (s *Store) SaveAll(ctx context.Context, portfolios []model.PortfolioView) error {
	blob, err := s.encodePortfolios(portfolios)
	if err != nil {
		return err
	}
	return s.blobs.Set(ctx, portfoliosKey, blob)
}

func (s *Store) SaveWatchlist(ctx context.Context, items []model.WatchlistItem) error {
	blob, err := s.encodeWatchlist(items)
	if err != nil {
		return err
	}
	return s.blobs.Set(ctx, watchlistKey, blob)
}

// Save writes portfolios and watchlist together.
func (s *Store) Save(ctx context.Context, state State) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Store.Save"

	portfolios, err := s.encodePortfolios(state.Portfolios)
	if err != nil {
		return err
	}
	watchlist, err := s.encodeWatchlist(state.Watchlist)
	if err != nil {
		return err
	}

	err = s.blobs.SetMany(ctx, map[string][]byte{
		portfoliosKey: portfolios,
		watchlistKey:  watchlist,
	})
	if err != nil {
		slog.Error("failed to save state", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("state saved", slog.String("rqID", rqID), slog.String("op", op), slog.Int("portfolios", len(state.Portfolios)))

	return nil
}

func (s *Store) encodePortfolios(portfolios []model.PortfolioView) ([]byte, error) {
	doc := dbModel.PortfoliosDocument{
		Version:    dbModel.SchemaVersion,
		SavedAt:    s.clock().UTC(),
		Portfolios: make([]dbModel.Portfolio, 0, len(portfolios)),
	}
	for _, p := range portfolios {
		doc.Portfolios = append(doc.Portfolios, dbConverter.ToDbPortfolio(p))
	}
	return s.encode(doc)
}

func (s *Store) encodeWatchlist(items []model.WatchlistItem) ([]byte, error) {
	doc := dbModel.WatchlistDocument{
		Version: dbModel.SchemaVersion,
		SavedAt: s.clock().UTC(),
		Items:   make([]dbModel.WatchlistItem, 0, len(items)),
	}
	for _, item := range items {
		doc.Items = append(doc.Items, dbConverter.ToDbWatchlistItem(item))
	}
	return s.encode(doc)
}

func (s *Store) encode(doc any) ([]byte, error) {
	plain, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	return s.cipher.Seal(plain)
}

func (s *Store) load(ctx context.Context, key string, dest any) (bool, error) {
	blob, err := s.blobs.Get(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}

	plain, err := s.cipher.Open(blob)
	if err != nil {
		return false, fmt.Errorf("open %s: %w", key, err)
	}

	if err = json.Unmarshal(plain, dest); err != nil {
		return false, fmt.Errorf("unmarshal %s: %w", key, err)
	}

	return true, nil
}
