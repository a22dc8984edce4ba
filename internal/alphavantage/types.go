package alphavantage

// envelope holds the notice fields AlphaVantage returns in place of data.
// "Note" and "Information" both carry rate-limit and quota notices.
type envelope struct {
	ErrorMessage string `json:"Error Message"`
	Note         string `json:"Note"`
	Information  string `json:"Information"`
}

// GlobalQuoteResponse represents the AlphaVantage GLOBAL_QUOTE response
type GlobalQuoteResponse struct {
	envelope
	GlobalQuote GlobalQuote `json:"Global Quote"`
}

// GlobalQuote represents the quote object inside a GLOBAL_QUOTE response
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

// SymbolSearchResponse represents the AlphaVantage SYMBOL_SEARCH response
type SymbolSearchResponse struct {
	envelope
	BestMatches []SymbolMatch `json:"bestMatches"`
}

// SymbolMatch represents a single SYMBOL_SEARCH match
type SymbolMatch struct {
	Symbol      string `json:"1. symbol"`
	Name        string `json:"2. name"`
	Type        string `json:"3. type"`
	Region      string `json:"4. region"`
	MarketOpen  string `json:"5. marketOpen"`
	MarketClose string `json:"6. marketClose"`
	Timezone    string `json:"7. timezone"`
	Currency    string `json:"8. currency"`
	MatchScore  string `json:"9. matchScore"`
}
