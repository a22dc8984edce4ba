package services

import (
	"github.com/epeers/stocktrack/internal/models"
)

// ContainsSymbol reports whether holdings already hold symbol
func ContainsSymbol(holdings []models.Holding, symbol string) bool {
	return indexOf(holdings, symbol) >= 0
}

// AppendHolding returns a new slice with h appended
func AppendHolding(holdings []models.Holding, h models.Holding) []models.Holding {
	out := make([]models.Holding, 0, len(holdings)+1)
	out = append(out, holdings...)
	return append(out, h)
}

// RemoveSymbol returns a new slice without any holding of symbol
func RemoveSymbol(holdings []models.Holding, symbol string) []models.Holding {
	out := make([]models.Holding, 0, len(holdings))
	for _, h := range holdings {
		if h.Symbol != symbol {
			out = append(out, h)
		}
	}
	return out
}

// ReorderHoldings moves dragged to the position target occupied. It returns
// false, and the input unchanged, when the symbols are equal or either is missing.
//
// [AAPL MSFT GOOG] with dragged=AAPL, target=MSFT gives [MSFT AAPL GOOG].
func ReorderHoldings(holdings []models.Holding, dragged, target string) ([]models.Holding, bool) {
	if dragged == target {
		return holdings, false
	}
	from := indexOf(holdings, dragged)
	to := indexOf(holdings, target)
	if from < 0 || to < 0 {
		return holdings, false
	}

	out := make([]models.Holding, 0, len(holdings))
	out = append(out, holdings[:from]...)
	out = append(out, holdings[from+1:]...)

	// insert at target's original index in the shortened slice
	moved := holdings[from]
	out = append(out, models.Holding{})
	copy(out[to+1:], out[to:])
	out[to] = moved
	return out, true
}

func indexOf(holdings []models.Holding, symbol string) int {
	for i, h := range holdings {
		if h.Symbol == symbol {
			return i
		}
	}
	return -1
}
