package alphaVantageModel

type GlobalQuoteResponse struct {
	GlobalQuote GlobalQuote `json:"Global Quote"`
	Note        string      `json:"Note"`
	Information string      `json:"Information"`
	ErrMessage  string      `json:"Error Message"`
}

type GlobalQuote struct {
	Symbol           string `json:"01. symbol"`
	Open             string `json:"02. open"`
	High             string `json:"03. high"`
	Low              string `json:"04. low"`
	Price            string `json:"05. price"`
	Volume           string `json:"06. volume"`
	LatestTradingDay string `json:"07. latest trading day"`
	PreviousClose    string `json:"08. previous close"`
	Change           string `json:"09. change"`
	ChangePercent    string `json:"10. change percent"`
}

type SymbolSearchResponse struct {
	BestMatches []SymbolMatch `json:"bestMatches"`
	Note        string        `json:"Note"`
	Information string        `json:"Information"`
}

type SymbolMatch struct {
	Symbol   string `json:"1. symbol"`
	Name     string `json:"2. name"`
	Type     string `json:"3. type"`
	Region   string `json:"4. region"`
	Currency string `json:"8. currency"`
}
