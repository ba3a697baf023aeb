package httpApi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/KotFed0t/invest_tracker/internal/converter/httpConverter"
	"github.com/KotFed0t/invest_tracker/internal/ledger"
	"github.com/KotFed0t/invest_tracker/internal/model"
	"github.com/KotFed0t/invest_tracker/internal/model/httpModel"
	"github.com/KotFed0t/invest_tracker/internal/reportGenerator/markdownRenderer"
	"github.com/KotFed0t/invest_tracker/internal/service"
	"github.com/KotFed0t/invest_tracker/utils"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// activePortfolio in a path selects the currently active portfolio.
const activePortfolio = "active"

const maxBodyBytes = 1 << 20

type PortfolioManager interface {
	ListPortfolios(ctx context.Context) ([]model.PortfolioSummary, error)
	ActiveID(ctx context.Context) (string, error)
	CreatePortfolio(ctx context.Context, name string, initialDeposit decimal.Decimal) (model.PortfolioView, error)
	GetPortfolio(ctx context.Context, id string) (model.PortfolioView, error)
	SwitchPortfolio(ctx context.Context, id string) error
	DeletePortfolio(ctx context.Context, id string) error
	ResetPortfolio(ctx context.Context, id string) (model.PortfolioView, error)
	Deposit(ctx context.Context, portfolioID string, amount decimal.Decimal) (model.Transaction, error)
	Withdraw(ctx context.Context, portfolioID string, amount decimal.Decimal) (model.Transaction, error)
	Buy(ctx context.Context, portfolioID string, class model.AssetClass, symbol, name string, quantity, price decimal.Decimal) (model.Transaction, error)
	Sell(ctx context.Context, portfolioID string, class model.AssetClass, symbol string, quantity, price decimal.Decimal) (model.Transaction, error)
	Stats(ctx context.Context, portfolioID string) (model.PerformanceStats, error)
	Transactions(ctx context.Context, portfolioID string, filter ledger.Filter) ([]model.Transaction, error)
	GetWatchlist(ctx context.Context) ([]model.WatchlistItem, error)
	AddToWatchlist(ctx context.Context, class model.AssetClass, symbol, name string) (model.WatchlistItem, error)
	RemoveFromWatchlist(ctx context.Context, class model.AssetClass, symbol string) error
	Subscribe() (<-chan struct{}, func())
}

type ReportService interface {
	Summary(ctx context.Context, portfolioID string) (string, error)
	Export(ctx context.Context, ids ...string) (fileBytes []byte, filename string, err error)
}

type SymbolSearcher interface {
	SearchSymbol(ctx context.Context, query string, class model.AssetClass) ([]model.SearchResult, error)
}

type Controller struct {
	manager      PortfolioManager
	reports      ReportService
	searcher     SymbolSearcher
	events       eventsConfig
	allowOrigins []string
}

func NewController(manager PortfolioManager, reports ReportService, searcher SymbolSearcher, allowedOrigins []string) *Controller {
	return &Controller{
		manager:      manager,
		reports:      reports,
		searcher:     searcher,
		events:       defaultEventsConfig,
		allowOrigins: allowedOrigins,
	}
}

func (ctrl *Controller) Health(w http.ResponseWriter, r *http.Request) {
	if _, err := ctrl.manager.ActiveID(r.Context()); err != nil {
		ctrl.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (ctrl *Controller) ListPortfolios(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	summaries, err := ctrl.manager.ListPortfolios(ctx)
	if err != nil {
		ctrl.respondErr(w, r, err)
		return
	}
	activeID, err := ctrl.manager.ActiveID(ctx)
	if err != nil {
		ctrl.respondErr(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, httpConverter.PortfolioSummaries(summaries, activeID))
}

func (ctrl *Controller) CreatePortfolio(w http.ResponseWriter, r *http.Request) {
	var req httpModel.CreatePortfolioRequest
	if !ctrl.decode(w, r, &req) {
		return
	}

	view, err := ctrl.manager.CreatePortfolio(r.Context(), req.Name, req.InitialDeposit)
	if err != nil {
		ctrl.respondErr(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, httpConverter.Portfolio(view))
}

func (ctrl *Controller) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	view, err := ctrl.manager.GetPortfolio(r.Context(), portfolioID(r))
	if err != nil {
		ctrl.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, httpConverter.Portfolio(view))
}

func (ctrl *Controller) SwitchPortfolio(w http.ResponseWriter, r *http.Request) {
	if err := ctrl.manager.SwitchPortfolio(r.Context(), chi.URLParam(r, "id")); err != nil {
		ctrl.respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (ctrl *Controller) DeletePortfolio(w http.ResponseWriter, r *http.Request) {
	if err := ctrl.manager.DeletePortfolio(r.Context(), chi.URLParam(r, "id")); err != nil {
		ctrl.respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (ctrl *Controller) ResetPortfolio(w http.ResponseWriter, r *http.Request) {
	view, err := ctrl.manager.ResetPortfolio(r.Context(), portfolioID(r))
	if err != nil {
		ctrl.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, httpConverter.Portfolio(view))
}

func (ctrl *Controller) Deposit(w http.ResponseWriter, r *http.Request) {
	var req httpModel.AmountRequest
	if !ctrl.decode(w, r, &req) {
		return
	}
	tx, err := ctrl.manager.Deposit(r.Context(), portfolioID(r), req.Amount)
	ctrl.respondTx(w, r, tx, err)
}

func (ctrl *Controller) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req httpModel.AmountRequest
	if !ctrl.decode(w, r, &req) {
		return
	}
	tx, err := ctrl.manager.Withdraw(r.Context(), portfolioID(r), req.Amount)
	ctrl.respondTx(w, r, tx, err)
}

func (ctrl *Controller) Buy(w http.ResponseWriter, r *http.Request) {
	var req httpModel.TradeRequest
	if !ctrl.decode(w, r, &req) {
		return
	}
	class, ok := ctrl.assetClass(w, r, req.AssetClass)
	if !ok {
		return
	}
	tx, err := ctrl.manager.Buy(r.Context(), portfolioID(r), class, req.Symbol, req.Name, req.Quantity, req.Price)
	ctrl.respondTx(w, r, tx, err)
}

func (ctrl *Controller) Sell(w http.ResponseWriter, r *http.Request) {
	var req httpModel.TradeRequest
	if !ctrl.decode(w, r, &req) {
		return
	}
	class, ok := ctrl.assetClass(w, r, req.AssetClass)
	if !ok {
		return
	}
	tx, err := ctrl.manager.Sell(r.Context(), portfolioID(r), class, req.Symbol, req.Quantity, req.Price)
	ctrl.respondTx(w, r, tx, err)
}

func (ctrl *Controller) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := ctrl.manager.Stats(r.Context(), portfolioID(r))
	if err != nil {
		ctrl.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, httpConverter.Stats(stats))
}

// Transactions supports kind (comma separated), class, symbol, and from/to
// as RFC 3339 timestamps.
func (ctrl *Controller) Transactions(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid filter", err.Error())
		return
	}

	txs, err := ctrl.manager.Transactions(r.Context(), portfolioID(r), filter)
	if err != nil {
		ctrl.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, httpConverter.Transactions(txs))
}

// Summary renders markdown, or HTML with ?format=html.
func (ctrl *Controller) Summary(w http.ResponseWriter, r *http.Request) {
	md, err := ctrl.reports.Summary(r.Context(), portfolioID(r))
	if err != nil {
		ctrl.respondErr(w, r, err)
		return
	}

	if r.URL.Query().Get("format") != "html" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, _ = w.Write([]byte(md))
		return
	}

	html, err := markdownRenderer.HTML(md)
	if err != nil {
		ctrl.respondErr(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(html)
}

func (ctrl *Controller) Report(w http.ResponseWriter, r *http.Request) {
	data, filename, err := ctrl.reports.Export(r.Context(), portfolioID(r))
	if err != nil {
		ctrl.respondErr(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, _ = w.Write(data)
}

func (ctrl *Controller) GetWatchlist(w http.ResponseWriter, r *http.Request) {
	items, err := ctrl.manager.GetWatchlist(r.Context())
	if err != nil {
		ctrl.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, httpConverter.Watchlist(items))
}

func (ctrl *Controller) AddToWatchlist(w http.ResponseWriter, r *http.Request) {
	var req httpModel.WatchRequest
	if !ctrl.decode(w, r, &req) {
		return
	}
	class, ok := ctrl.assetClass(w, r, req.AssetClass)
	if !ok {
		return
	}

	item, err := ctrl.manager.AddToWatchlist(r.Context(), class, req.Symbol, req.Name)
	if err != nil {
		ctrl.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, httpConverter.WatchlistItem(item))
}

// RemoveFromWatchlist takes class and symbol as query parameters.
func (ctrl *Controller) RemoveFromWatchlist(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	class, ok := ctrl.assetClass(w, r, q.Get("class"))
	if !ok {
		return
	}

	if err := ctrl.manager.RemoveFromWatchlist(r.Context(), class, q.Get("symbol")); err != nil {
		ctrl.respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (ctrl *Controller) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := strings.TrimSpace(q.Get("q"))
	if query == "" {
		respondError(w, http.StatusBadRequest, "missing query", "")
		return
	}

	class := model.AssetClassStock
	if raw := q.Get("class"); raw != "" {
		var ok bool
		if class, ok = ctrl.assetClass(w, r, raw); !ok {
			return
		}
	}

	results, err := ctrl.searcher.SearchSymbol(r.Context(), query, class)
	if err != nil {
		ctrl.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, httpConverter.SearchResults(results))
}

func portfolioID(r *http.Request) string {
	id := chi.URLParam(r, "id")
	if id == activePortfolio {
		return ""
	}
	return id
}

func parseFilter(r *http.Request) (ledger.Filter, error) {
	q := r.URL.Query()
	var filter ledger.Filter

	if raw := q.Get("kind"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			kind := model.TransactionKind(strings.ToLower(strings.TrimSpace(part)))
			if !kind.Valid() {
				return ledger.Filter{}, fmt.Errorf("unknown kind %q", part)
			}
			filter.Kinds = append(filter.Kinds, kind)
		}
	}
	if raw := q.Get("class"); raw != "" {
		class, err := model.ParseAssetClass(raw)
		if err != nil {
			return ledger.Filter{}, err
		}
		filter.AssetClass = class
	}
	filter.Symbol = model.NormalizeSymbol(q.Get("symbol"))

	var err error
	if filter.From, err = parseTime(q.Get("from")); err != nil {
		return ledger.Filter{}, fmt.Errorf("from: %w", err)
	}
	if filter.To, err = parseTime(q.Get("to")); err != nil {
		return ledger.Filter{}, fmt.Errorf("to: %w", err)
	}
	return filter, nil
}

func parseTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func (ctrl *Controller) assetClass(w http.ResponseWriter, r *http.Request, raw string) (model.AssetClass, bool) {
	class, err := model.ParseAssetClass(raw)
	if err != nil {
		ctrl.respondErr(w, r, fmt.Errorf("%w: %w", service.ErrInvalidAsset, err))
		return "", false
	}
	return class, true
}

func (ctrl *Controller) decode(w http.ResponseWriter, r *http.Request, dest any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}
	return true
}

func (ctrl *Controller) respondTx(w http.ResponseWriter, r *http.Request, tx model.Transaction, err error) {
	if err != nil {
		ctrl.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, httpConverter.Transaction(tx))
}

// respondErr maps domain errors to status codes.
func (ctrl *Controller) respondErr(w http.ResponseWriter, r *http.Request, err error) {
	rqID := utils.GetRequestIDFromCtx(r.Context())

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrInvalidAmount), errors.Is(err, service.ErrInvalidAsset):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrPortfolioNotFound), errors.Is(err, service.ErrNotWatched):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrInsufficientQuantity):
		status = http.StatusConflict
	case errors.Is(err, service.ErrInsufficientFunds):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrManagerStopped), errors.Is(err, context.Canceled):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		slog.Error("request failed", slog.String("rqID", rqID), slog.String("path", r.URL.Path), slog.String("err", err.Error()))
		respondError(w, status, "internal error", "")
		return
	}

	slog.Debug("request declined", slog.String("rqID", rqID), slog.Int("status", status), slog.String("err", err.Error()))
	respondError(w, status, http.StatusText(status), err.Error())
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode response", slog.String("err", err.Error()))
		}
	}
}

func respondError(w http.ResponseWriter, status int, message, details string) {
	respondJSON(w, status, httpModel.ErrorResponse{Error: message, Details: details})
}
