package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/epeers/stocktrack/internal/models"
)

type warningContextKey struct{}

// WarningCollector gathers the non-fatal findings of one action request
type WarningCollector struct {
	mu       sync.Mutex
	warnings []models.Warning
}

// NewWarningContext attaches an empty collector to ctx. The handler keeps the
// collector and copies its warnings into the ActionResponse.
func NewWarningContext(ctx context.Context) (context.Context, *WarningCollector) {
	wc := &WarningCollector{}
	return context.WithValue(ctx, warningContextKey{}, wc), wc
}

// AddWarning records w on the collector carried by ctx, if any
func AddWarning(ctx context.Context, w models.Warning) {
	wc, ok := ctx.Value(warningContextKey{}).(*WarningCollector)
	if !ok || wc == nil {
		return
	}
	wc.mu.Lock()
	wc.warnings = append(wc.warnings, w)
	wc.mu.Unlock()
}

// AddPlaceholderWarnings records one W2001 warning per quote field that was
// filled with a placeholder instead of provider data.
func AddPlaceholderWarnings(ctx context.Context, quote *models.Quote) {
	if quote == nil {
		return
	}
	for _, field := range quote.Placeholders {
		AddWarning(ctx, models.Warning{
			Code:    models.WarnPlaceholderField,
			Message: fmt.Sprintf("%s for %s is a placeholder, not provider data", field, quote.Symbol),
		})
	}
}

// GetWarnings returns a copy of the collected warnings
func (wc *WarningCollector) GetWarnings() []models.Warning {
	wc.mu.Lock()
	defer wc.mu.Unlock()
	if len(wc.warnings) == 0 {
		return nil
	}
	return append([]models.Warning(nil), wc.warnings...)
}
