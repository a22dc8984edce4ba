package models

// ViewState is the full render state of one user's portfolio view
type ViewState struct {
	UserID string `json:"user_id"`

	SymbolInput     string       `json:"symbol_input"`
	Quote           *Quote       `json:"quote,omitempty"`
	Suggestions     []Suggestion `json:"suggestions"`
	ShowSuggestions bool         `json:"show_suggestions"`
	FetchingQuote   bool         `json:"fetching_quote"`

	Portfolios        []Portfolio `json:"portfolios"`
	ActivePortfolioID string      `json:"active_portfolio_id,omitempty"`
	StoreReady        bool        `json:"store_ready"`
	PortfolioBusy     bool        `json:"portfolio_busy"`

	NewPortfolioName string `json:"new_portfolio_name"`
	ShowCreateForm   bool   `json:"show_create_form"`

	Error          string `json:"error,omitempty"`
	StoreError     string `json:"store_error,omitempty"`
	BootstrapError string `json:"bootstrap_error,omitempty"`
}

// ActionResponse is returned by every view-model action endpoint
type ActionResponse struct {
	State    ViewState `json:"state"`
	Warnings []Warning `json:"warnings,omitempty"`
}

// SessionResponse is returned by POST /session
type SessionResponse struct {
	UserID    string `json:"user_id"`
	Token     string `json:"token"`
	Anonymous bool   `json:"anonymous"`
}

// SymbolInputRequest represents the request body for PUT /input
type SymbolInputRequest struct {
	Symbol string `json:"symbol"`
}

// SelectSuggestionRequest represents the request body for POST /suggestions/select
type SelectSuggestionRequest struct {
	Symbol string `json:"symbol" binding:"required"`
}

// CreatePortfolioRequest represents the request body for creating a portfolio
type CreatePortfolioRequest struct {
	Name string `json:"name"`
}

// CreateFormRequest represents the request body for PUT /portfolios/form
type CreateFormRequest struct {
	Open bool   `json:"open"`
	Name string `json:"name"`
}

// SelectPortfolioRequest represents the request body for PUT /portfolios/active
type SelectPortfolioRequest struct {
	ID string `json:"id" binding:"required"`
}

// ReorderRequest represents the request body for POST /holdings/reorder
type ReorderRequest struct {
	Dragged string `json:"dragged" binding:"required"`
	Target  string `json:"target" binding:"required"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
