package alphavantage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Alphavantage is a Stock and ETF API that fetches data including pricing data
// It is a subscription service, but provides free API access
// https://www.alphavantage.co/documentation/
const defaultBaseURL = "https://www.alphavantage.co/query"

// placeholderKey is the value shipped in sample configs in place of a real key
const placeholderKey = "YOUR_ALPHA_VANTAGE_API_KEY"

// ErrNoData is returned when a quote response carries an empty quote object
var ErrNoData = errors.New("no quote data returned")

// APIError is a message AlphaVantage returned in place of data.
type APIError struct {
	Message     string
	RateLimited bool
}

func (e *APIError) Error() string {
	return e.Message
}

func (e envelope) err() error {
	if e.ErrorMessage != "" {
		return &APIError{Message: e.ErrorMessage}
	}
	if e.Note != "" {
		return &APIError{Message: e.Note, RateLimited: true}
	}
	if e.Information != "" {
		return &APIError{Message: e.Information, RateLimited: true}
	}
	return nil
}

// Client is an HTTP client for the AlphaVantage API
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new AlphaVantage client
func NewClient(apiKey string) *Client {
	return NewClientWithBaseURL(apiKey, defaultBaseURL)
}

// NewClientWithBaseURL creates a new AlphaVantage client with a custom base URL (for testing)
func NewClientWithBaseURL(apiKey, baseURL string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// HasKey reports whether a usable API key is configured
func (c *Client) HasKey() bool {
	return c.apiKey != "" && c.apiKey != placeholderKey
}

// GetQuote fetches a real-time quote for a symbol
func (c *Client) GetQuote(ctx context.Context, symbol string) (*GlobalQuote, error) {
	params := url.Values{}
	params.Set("function", "GLOBAL_QUOTE")
	params.Set("symbol", symbol)
	params.Set("apikey", c.apiKey)

	var quoteResp GlobalQuoteResponse
	if err := c.getJSON(ctx, params, &quoteResp); err != nil {
		return nil, err
	}
	if err := quoteResp.err(); err != nil {
		return nil, err
	}
	if quoteResp.GlobalQuote == (GlobalQuote{}) {
		return nil, ErrNoData
	}

	return &quoteResp.GlobalQuote, nil
}

// SearchSymbols fetches ranked symbol matches for a keyword prefix
func (c *Client) SearchSymbols(ctx context.Context, keywords string) ([]SymbolMatch, error) {
	params := url.Values{}
	params.Set("function", "SYMBOL_SEARCH")
	params.Set("keywords", keywords)
	params.Set("apikey", c.apiKey)

	var searchResp SymbolSearchResponse
	if err := c.getJSON(ctx, params, &searchResp); err != nil {
		return nil, err
	}
	if err := searchResp.err(); err != nil {
		return nil, err
	}

	return searchResp.BestMatches, nil
}

func (c *Client) getJSON(ctx context.Context, params url.Values, out any) error {
	resp, err := c.doRequest(ctx, params)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

func (c *Client) doRequest(ctx context.Context, params url.Values) (*http.Response, error) {
	reqURL := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	return resp, nil
}
