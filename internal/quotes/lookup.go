package quotes

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/epeers/stocktrack/internal/alphavantage"
	"github.com/epeers/stocktrack/internal/cache"
	"github.com/epeers/stocktrack/internal/models"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// MaxSuggestions caps the number of symbol search results kept per query
const MaxSuggestions = 5

// PlaceholderValue fills quote fields the GLOBAL_QUOTE endpoint does not provide
const PlaceholderValue = "N/A"

var (
	ErrEmptySymbol   = errors.New("empty symbol")
	ErrMissingAPIKey = errors.New("missing API key")
	ErrNoData        = errors.New("no live data")
)

// QuoteClient is the market data API used by Lookup
type QuoteClient interface {
	HasKey() bool
	GetQuote(ctx context.Context, symbol string) (*alphavantage.GlobalQuote, error)
	SearchSymbols(ctx context.Context, keywords string) ([]alphavantage.SymbolMatch, error)
}

// Lookup fetches normalized quotes and symbol suggestions
type Lookup struct {
	client QuoteClient
	cache  *cache.MemoryCache
	group  singleflight.Group
	now    func() time.Time
}

// NewLookup creates a new Lookup. memCache may be nil to disable suggestion caching.
func NewLookup(client QuoteClient, memCache *cache.MemoryCache) *Lookup {
	return &Lookup{
		client: client,
		cache:  memCache,
		now:    time.Now,
	}
}

// FetchQuote fetches one quote for symbol. suggestions is the caller's
// current suggestion list, used to resolve the company name.
// Concurrent requests for the same symbol share one API call. The shared call
// outlives any single caller's cancellation; each caller stops waiting when
// its own ctx is done.
func (l *Lookup) FetchQuote(ctx context.Context, symbol string, suggestions []models.Suggestion) (*models.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, ErrEmptySymbol
	}
	if !l.client.HasKey() {
		return nil, ErrMissingAPIKey
	}

	shared := l.group.DoChan(symbol, func() (any, error) {
		return l.client.GetQuote(context.WithoutCancel(ctx), symbol)
	})
	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-shared:
	}

	v, err := res.Val, res.Err
	if err != nil {
		if errors.Is(err, alphavantage.ErrNoData) {
			return nil, fmt.Errorf("%w for symbol: %s", ErrNoData, symbol)
		}
		return nil, err
	}

	raw := v.(*alphavantage.GlobalQuote)
	quote, err := parseQuote(raw, l.now())
	if err != nil {
		return nil, err
	}
	if quote.Symbol == "" {
		quote.Symbol = symbol
	}
	quote.CompanyName = companyName(quote.Symbol, suggestions)
	return quote, nil
}

// FetchSuggestions returns up to MaxSuggestions matches for query. Failures of
// any kind yield an empty list; suggestions never surface an error.
func (l *Lookup) FetchSuggestions(ctx context.Context, query string) []models.Suggestion {
	if len(query) < 1 || !l.client.HasKey() {
		return nil
	}

	if l.cache != nil {
		if cached, ok := l.cache.GetSuggestions(query); ok {
			return cached
		}
	}

	matches, err := l.client.SearchSymbols(ctx, query)
	if err != nil {
		log.WithField("query", query).Debugf("symbol search failed: %v", err)
		return nil
	}

	if len(matches) > MaxSuggestions {
		matches = matches[:MaxSuggestions]
	}
	suggestions := make([]models.Suggestion, 0, len(matches))
	for _, m := range matches {
		suggestions = append(suggestions, models.Suggestion{Symbol: m.Symbol, Name: m.Name})
	}

	if l.cache != nil {
		l.cache.SetSuggestions(query, suggestions)
	}
	return suggestions
}

// companyName resolves a display name from the suggestion list, falling back to "<SYMBOL> Inc."
func companyName(symbol string, suggestions []models.Suggestion) string {
	for _, s := range suggestions {
		if s.Symbol == symbol {
			return s.Name
		}
	}
	return symbol + " Inc."
}

func parseQuote(q *alphavantage.GlobalQuote, fetchedAt time.Time) (*models.Quote, error) {
	price, err := fixed2("price", q.Price)
	if err != nil {
		return nil, err
	}
	change, err := fixed2("change", q.Change)
	if err != nil {
		return nil, err
	}
	changePercent, err := fixed2("change percent", strings.Replace(q.ChangePercent, "%", "", 1))
	if err != nil {
		return nil, err
	}
	open, err := fixed2("open", q.Open)
	if err != nil {
		return nil, err
	}
	high, err := fixed2("high", q.High)
	if err != nil {
		return nil, err
	}
	low, err := fixed2("low", q.Low)
	if err != nil {
		return nil, err
	}
	volume, err := strconv.ParseInt(strings.TrimSpace(q.Volume), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid volume %q: %w", q.Volume, err)
	}

	return &models.Quote{
		Holding: models.Holding{
			Symbol:         q.Symbol,
			Price:          price,
			Change:         change,
			ChangePercent:  changePercent,
			Open:           open,
			High:           high,
			Low:            low,
			Volume:         humanize.Comma(volume),
			LastTradingDay: q.LatestTradingDay,
			PERatio:        PlaceholderValue,
			DividendYield:  PlaceholderValue,
			LastUpdated:    fetchedAt.Format(time.RFC3339),
		},
		Placeholders: []string{"peRatio", "dividendYield"},
	}, nil
}

// fixed2 formats a provider decimal string with exactly two fractional digits
func fixed2(field, s string) (string, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("invalid %s %q: %w", field, s, err)
	}
	return d.StringFixed(2), nil
}
