package services

import (
	"reflect"
	"testing"

	"github.com/epeers/stocktrack/internal/models"
)

func holdingsOf(symbols ...string) []models.Holding {
	out := make([]models.Holding, 0, len(symbols))
	for _, s := range symbols {
		out = append(out, models.Holding{Symbol: s})
	}
	return out
}

func symbolsOf(holdings []models.Holding) []string {
	out := make([]string, 0, len(holdings))
	for _, h := range holdings {
		out = append(out, h.Symbol)
	}
	return out
}

func TestReorderHoldings(t *testing.T) {
	tests := []struct {
		name    string
		dragged string
		target  string
		want    []string
		changed bool
	}{
		{"forward one", "AAPL", "MSFT", []string{"MSFT", "AAPL", "GOOG"}, true},
		{"to front", "GOOG", "AAPL", []string{"GOOG", "AAPL", "MSFT"}, true},
		{"to end", "AAPL", "GOOG", []string{"MSFT", "GOOG", "AAPL"}, true},
		{"back one", "MSFT", "AAPL", []string{"MSFT", "AAPL", "GOOG"}, true},
		{"same symbol", "MSFT", "MSFT", []string{"AAPL", "MSFT", "GOOG"}, false},
		{"missing dragged", "TSLA", "MSFT", []string{"AAPL", "MSFT", "GOOG"}, false},
		{"missing target", "AAPL", "TSLA", []string{"AAPL", "MSFT", "GOOG"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := holdingsOf("AAPL", "MSFT", "GOOG")
			got, changed := ReorderHoldings(in, tt.dragged, tt.target)
			if changed != tt.changed {
				t.Errorf("expected changed=%v, got %v", tt.changed, changed)
			}
			if !reflect.DeepEqual(symbolsOf(got), tt.want) {
				t.Errorf("expected %v, got %v", tt.want, symbolsOf(got))
			}
			if !reflect.DeepEqual(symbolsOf(in), []string{"AAPL", "MSFT", "GOOG"}) {
				t.Errorf("input was modified: %v", symbolsOf(in))
			}
		})
	}
}

func TestRemoveSymbol(t *testing.T) {
	got := RemoveSymbol(holdingsOf("AAPL", "MSFT", "AAPL"), "AAPL")
	if !reflect.DeepEqual(symbolsOf(got), []string{"MSFT"}) {
		t.Errorf("expected [MSFT], got %v", symbolsOf(got))
	}

	if got := RemoveSymbol(nil, "AAPL"); len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
}

func TestAppendHolding(t *testing.T) {
	in := holdingsOf("AAPL")
	got := AppendHolding(in, models.Holding{Symbol: "MSFT"})

	if !ContainsSymbol(got, "MSFT") || ContainsSymbol(in, "MSFT") {
		t.Errorf("expected MSFT appended to a copy, got in=%v out=%v", symbolsOf(in), symbolsOf(got))
	}
}
