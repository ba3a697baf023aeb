package coinGeckoModel

type SearchResponse struct {
	Coins []Coin `json:"coins"`
}

type Coin struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	MarketCapRank int    `json:"market_cap_rank"`
}
