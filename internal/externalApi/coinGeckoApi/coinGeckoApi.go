package coinGeckoApi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/KotFed0t/invest_tracker/config"
	"github.com/KotFed0t/invest_tracker/internal/externalApi"
	"github.com/KotFed0t/invest_tracker/internal/model"
	"github.com/KotFed0t/invest_tracker/internal/model/coinGeckoModel"
	"github.com/KotFed0t/invest_tracker/utils"
	"github.com/PaesslerAG/jsonpath"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

const searchLimit = 10

type CoinGeckoApi struct {
	client *resty.Client
	clock  func() time.Time
}

func New(cfg *config.Config) *CoinGeckoApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.CoinGecko.Url)
	return &CoinGeckoApi{client: client, clock: time.Now}
}

// GetCryptoQuote returns the USD price and 24h change of a coin by feed id,
// e.g. "bitcoin".
func (a *CoinGeckoApi) GetCryptoQuote(ctx context.Context, id string) (model.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "CoinGeckoApi.GetCryptoQuote"
	params := map[string]string{
		"ids":                 id,
		"vs_currencies":       "usd",
		"include_24hr_change": "true",
		"include_24hr_vol":    "true",
	}

	slog.Debug("GetCryptoQuote start", slog.String("rqID", rqID), slog.String("op", op), slog.String("id", id))

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParams(params).
		Get("/simple/price")
	if err != nil {
		slog.Error("error while dialing CoinGecko", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Quote{}, err
	}

	if resp.StatusCode() == 429 {
		return model.Quote{}, externalApi.ErrRateLimited
	}
	if resp.IsError() {
		return model.Quote{}, fmt.Errorf("%w: status %d", externalApi.ErrBadResponse, resp.StatusCode())
	}

	var doc any
	decoder := json.NewDecoder(bytes.NewReader(resp.Body()))
	decoder.UseNumber()
	if err = decoder.Decode(&doc); err != nil {
		slog.Error("can't decode simple price response", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Quote{}, fmt.Errorf("%w: %w", externalApi.ErrBadResponse, err)
	}

	price, err := lookupDecimal(doc, fmt.Sprintf(`$[%q].usd`, id))
	if err != nil {
		return model.Quote{}, fmt.Errorf("%w: coin %s", externalApi.ErrNotFound, id)
	}

	quote := model.Quote{
		AssetClass: model.AssetClassCrypto,
		Symbol:     id,
		Price:      price,
		UpdatedAt:  a.clock(),
	}

	// optional fields, absent for illiquid coins
	if pct, err := lookupDecimal(doc, fmt.Sprintf(`$[%q].usd_24h_change`, id)); err == nil {
		quote.ChangePercent = pct
		// price = prev * (1 + pct/100)
		factor := decimal.NewFromInt(1).Add(pct.Div(decimal.NewFromInt(100)))
		if factor.IsPositive() {
			prev := price.Div(factor)
			quote.PreviousClose = prev
			quote.Change = price.Sub(prev)
		}
	}
	if vol, err := lookupDecimal(doc, fmt.Sprintf(`$[%q].usd_24h_vol`, id)); err == nil {
		quote.Volume = vol
	}

	slog.Debug("GetCryptoQuote completed", slog.String("rqID", rqID), slog.String("op", op), slog.String("price", price.String()))

	return quote, nil
}

func (a *CoinGeckoApi) SearchCoins(ctx context.Context, query string) ([]model.SearchResult, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "CoinGeckoApi.SearchCoins"

	slog.Debug("SearchCoins start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParam("query", query).
		Get("/search")
	if err != nil {
		slog.Error("error while dialing CoinGecko", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	if resp.IsError() {
		return nil, fmt.Errorf("%w: status %d", externalApi.ErrBadResponse, resp.StatusCode())
	}

	searchResp := coinGeckoModel.SearchResponse{}
	if err = json.Unmarshal(resp.Body(), &searchResp); err != nil {
		slog.Error("can't unmarshall response into SearchResponse", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, fmt.Errorf("%w: %w", externalApi.ErrBadResponse, err)
	}

	coins := searchResp.Coins
	if len(coins) > searchLimit {
		coins = coins[:searchLimit]
	}

	res := make([]model.SearchResult, 0, len(coins))
	for _, c := range coins {
		res = append(res, model.SearchResult{
			AssetClass: model.AssetClassCrypto,
			Symbol:     strings.ToUpper(c.Symbol),
			Name:       c.Name,
		})
	}

	slog.Debug("SearchCoins completed", slog.String("rqID", rqID), slog.String("op", op), slog.Int("found", len(res)))

	return res, nil
}

func lookupDecimal(doc any, path string) (decimal.Decimal, error) {
	val, err := jsonpath.Get(path, doc)
	if err != nil {
		return decimal.Zero, err
	}
	// jsonpath may wrap a single match in a list
	if list, ok := val.([]any); ok {
		if len(list) == 0 {
			return decimal.Zero, externalApi.ErrNotFound
		}
		val = list[0]
	}

	switch v := val.(type) {
	case json.Number:
		return decimal.NewFromString(v.String())
	case float64:
		return decimal.NewFromFloat(v), nil
	default:
		return decimal.Zero, fmt.Errorf("%w: %s is %T", externalApi.ErrBadResponse, path, val)
	}
}
