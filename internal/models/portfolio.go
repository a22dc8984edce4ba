package models

import "time"

// Portfolio is a named, ordered collection of holdings stored as one document
// in the user's portfolio collection. ID is assigned by the document store and
// is not part of the stored document body.
type Portfolio struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Stocks    []Holding `json:"stocks"`
	CreatedAt string    `json:"createdAt"`

	// Rev counts holdings writes. A snapshot carrying a lower Rev than the
	// local copy predates a local write and does not replace it.
	Rev int `json:"rev,omitempty"`
}

// Holding is a snapshot of a quote taken when it was added to a portfolio.
// Numeric fields keep the display formatting applied at fetch time.
type Holding struct {
	Symbol         string `json:"symbol"`
	CompanyName    string `json:"companyName"`
	Price          string `json:"price"`
	Change         string `json:"change"`
	ChangePercent  string `json:"changePercent"`
	Open           string `json:"open"`
	High           string `json:"high"`
	Low            string `json:"low"`
	Volume         string `json:"volume"`
	LastTradingDay string `json:"lastTradingDay"`
	PERatio        string `json:"peRatio"`
	DividendYield  string `json:"dividendYield"`
	LastUpdated    string `json:"lastUpdated"`
}

// Quote is a transient lookup result. Placeholders lists the JSON names of
// fields that hold filler values rather than provider data.
type Quote struct {
	Holding
	Placeholders []string `json:"placeholders,omitempty"`
}

// Suggestion is a symbol search candidate
type Suggestion struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// User is an identity issued by the auth provider
type User struct {
	ID        string    `json:"id"`
	Anonymous bool      `json:"anonymous"`
	CreatedAt time.Time `json:"created_at"`
}
