package alphaVantageApi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/KotFed0t/invest_tracker/config"
	"github.com/KotFed0t/invest_tracker/internal/externalApi"
	"github.com/KotFed0t/invest_tracker/internal/model"
	"github.com/KotFed0t/invest_tracker/internal/model/alphaVantageModel"
	"github.com/KotFed0t/invest_tracker/utils"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

const queryPath = "/query"

type AlphaVantageApi struct {
	client *resty.Client
	apiKey string
	clock  func() time.Time
}

func New(cfg *config.Config) *AlphaVantageApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.AlphaVantage.Url)
	return &AlphaVantageApi{client: client, apiKey: cfg.API.AlphaVantage.Key, clock: time.Now}
}

func (a *AlphaVantageApi) GetStockQuote(ctx context.Context, symbol string) (model.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "AlphaVantageApi.GetStockQuote"
	params := map[string]string{
		"function": "GLOBAL_QUOTE",
		"symbol":   symbol,
		"apikey":   a.apiKey,
	}

	slog.Debug("GetStockQuote start", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))

	body, err := a.get(ctx, params)
	if err != nil {
		slog.Error("error while dialing AlphaVantage", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Quote{}, err
	}

	resp := alphaVantageModel.GlobalQuoteResponse{}
	if err = json.Unmarshal(body, &resp); err != nil {
		slog.Error("can't unmarshall response into GlobalQuoteResponse", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Quote{}, fmt.Errorf("%w: %w", externalApi.ErrBadResponse, err)
	}

	if resp.Note != "" || resp.Information != "" {
		return model.Quote{}, fmt.Errorf("%w: %s%s", externalApi.ErrRateLimited, resp.Note, resp.Information)
	}

	if resp.GlobalQuote.Symbol == "" || resp.GlobalQuote.Price == "" {
		return model.Quote{}, fmt.Errorf("%w: stock %s", externalApi.ErrNotFound, symbol)
	}

	quote, err := a.convertGlobalQuote(resp.GlobalQuote)
	if err != nil {
		slog.Error("can't parse global quote", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Quote{}, err
	}

	slog.Debug("GetStockQuote completed", slog.String("rqID", rqID), slog.String("op", op), slog.String("price", quote.Price.String()))

	return quote, nil
}

func (a *AlphaVantageApi) SearchSymbols(ctx context.Context, query string) ([]model.SearchResult, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "AlphaVantageApi.SearchSymbols"
	params := map[string]string{
		"function": "SYMBOL_SEARCH",
		"keywords": query,
		"apikey":   a.apiKey,
	}

	slog.Debug("SearchSymbols start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))

	body, err := a.get(ctx, params)
	if err != nil {
		slog.Error("error while dialing AlphaVantage", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	resp := alphaVantageModel.SymbolSearchResponse{}
	if err = json.Unmarshal(body, &resp); err != nil {
		slog.Error("can't unmarshall response into SymbolSearchResponse", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, fmt.Errorf("%w: %w", externalApi.ErrBadResponse, err)
	}

	if resp.Note != "" || resp.Information != "" {
		return nil, fmt.Errorf("%w: %s%s", externalApi.ErrRateLimited, resp.Note, resp.Information)
	}

	res := make([]model.SearchResult, 0, len(resp.BestMatches))
	for _, m := range resp.BestMatches {
		res = append(res, model.SearchResult{
			AssetClass: model.AssetClassStock,
			Symbol:     m.Symbol,
			Name:       m.Name,
			Region:     m.Region,
		})
	}

	slog.Debug("SearchSymbols completed", slog.String("rqID", rqID), slog.String("op", op), slog.Int("found", len(res)))

	return res, nil
}

func (a *AlphaVantageApi) get(ctx context.Context, params map[string]string) ([]byte, error) {
	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParams(params).
		Get(queryPath)
	if err != nil {
		return nil, err
	}

	if resp.IsError() {
		return nil, fmt.Errorf("%w: status %d", externalApi.ErrBadResponse, resp.StatusCode())
	}

	return resp.Body(), nil
}

func (a *AlphaVantageApi) convertGlobalQuote(raw alphaVantageModel.GlobalQuote) (model.Quote, error) {
	price, err := decimal.NewFromString(raw.Price)
	if err != nil {
		return model.Quote{}, fmt.Errorf("%w: price %q", externalApi.ErrBadResponse, raw.Price)
	}

	return model.Quote{
		AssetClass:    model.AssetClassStock,
		Symbol:        raw.Symbol,
		Price:         price,
		Change:        parseOptional(raw.Change),
		ChangePercent: parseOptional(strings.TrimSuffix(raw.ChangePercent, "%")),
		PreviousClose: parseOptional(raw.PreviousClose),
		Open:          parseOptional(raw.Open),
		High:          parseOptional(raw.High),
		Low:           parseOptional(raw.Low),
		Volume:        parseOptional(raw.Volume),
		UpdatedAt:     a.clock(),
	}, nil
}

func parseOptional(s string) decimal.Decimal {
	v, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return v
}
