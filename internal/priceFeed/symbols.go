package priceFeed

import (
	"strings"

	"github.com/KotFed0t/invest_tracker/internal/model"
)

var cryptoIDs = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"ADA":   "cardano",
	"SOL":   "solana",
	"DOT":   "polkadot",
	"LTC":   "litecoin",
	"XRP":   "ripple",
	"DOGE":  "dogecoin",
	"SHIB":  "shiba-inu",
	"MATIC": "matic-network",
}

// CryptoID maps a ticker to its feed id. Unknown tickers are lower-cased.
func CryptoID(symbol string) string {
	symbol = model.NormalizeSymbol(symbol)
	if id, ok := cryptoIDs[symbol]; ok {
		return id
	}
	return strings.ToLower(symbol)
}

var fallbackStocks = []model.SearchResult{
	{AssetClass: model.AssetClassStock, Symbol: "AAPL", Name: "Apple Inc."},
	{AssetClass: model.AssetClassStock, Symbol: "TSLA", Name: "Tesla Inc."},
	{AssetClass: model.AssetClassStock, Symbol: "GOOGL", Name: "Alphabet Inc."},
	{AssetClass: model.AssetClassStock, Symbol: "MSFT", Name: "Microsoft Corporation"},
	{AssetClass: model.AssetClassStock, Symbol: "AMZN", Name: "Amazon.com Inc."},
	{AssetClass: model.AssetClassStock, Symbol: "META", Name: "Meta Platforms Inc."},
	{AssetClass: model.AssetClassStock, Symbol: "NVDA", Name: "NVIDIA Corporation"},
	{AssetClass: model.AssetClassStock, Symbol: "NFLX", Name: "Netflix Inc."},
	{AssetClass: model.AssetClassStock, Symbol: "SWPPX", Name: "Schwab S&P 500 Index Fund"},
	{AssetClass: model.AssetClassStock, Symbol: "VOO", Name: "Vanguard S&P 500 ETF"},
	{AssetClass: model.AssetClassStock, Symbol: "SPY", Name: "SPDR S&P 500 ETF Trust"},
	{AssetClass: model.AssetClassStock, Symbol: "QQQ", Name: "Invesco QQQ Trust"},
	{AssetClass: model.AssetClassStock, Symbol: "VTI", Name: "Vanguard Total Stock Market ETF"},
	{AssetClass: model.AssetClassStock, Symbol: "VEA", Name: "Vanguard FTSE Developed Markets ETF"},
	{AssetClass: model.AssetClassStock, Symbol: "VWO", Name: "Vanguard FTSE Emerging Markets ETF"},
}

var fallbackCryptos = []model.SearchResult{
	{AssetClass: model.AssetClassCrypto, Symbol: "BTC", Name: "Bitcoin"},
	{AssetClass: model.AssetClassCrypto, Symbol: "ETH", Name: "Ethereum"},
	{AssetClass: model.AssetClassCrypto, Symbol: "ADA", Name: "Cardano"},
	{AssetClass: model.AssetClassCrypto, Symbol: "SOL", Name: "Solana"},
	{AssetClass: model.AssetClassCrypto, Symbol: "DOT", Name: "Polkadot"},
	{AssetClass: model.AssetClassCrypto, Symbol: "LTC", Name: "Litecoin"},
	{AssetClass: model.AssetClassCrypto, Symbol: "XRP", Name: "Ripple"},
	{AssetClass: model.AssetClassCrypto, Symbol: "DOGE", Name: "Dogecoin"},
	{AssetClass: model.AssetClassCrypto, Symbol: "SHIB", Name: "Shiba Inu"},
	{AssetClass: model.AssetClassCrypto, Symbol: "MATIC", Name: "Polygon"},
	{AssetClass: model.AssetClassCrypto, Symbol: "LINK", Name: "Chainlink"},
	{AssetClass: model.AssetClassCrypto, Symbol: "UNI", Name: "Uniswap"},
	{AssetClass: model.AssetClassCrypto, Symbol: "AVAX", Name: "Avalanche"},
	{AssetClass: model.AssetClassCrypto, Symbol: "ATOM", Name: "Cosmos"},
	{AssetClass: model.AssetClassCrypto, Symbol: "FTM", Name: "Fantom"},
}

func filterFallback(list []model.SearchResult, query string) []model.SearchResult {
	query = strings.ToLower(strings.TrimSpace(query))
	res := make([]model.SearchResult, 0)
	for _, item := range list {
		if query == "" ||
			strings.Contains(strings.ToLower(item.Symbol), query) ||
			strings.Contains(strings.ToLower(item.Name), query) {
			res = append(res, item)
		}
	}
	return res
}
