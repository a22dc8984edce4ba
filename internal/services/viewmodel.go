package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/epeers/stocktrack/internal/models"
	"github.com/epeers/stocktrack/internal/quotes"
	"github.com/epeers/stocktrack/internal/store"
	log "github.com/sirupsen/logrus"
)

var (
	ErrValidation  = errors.New("validation failed")
	ErrConflict    = errors.New("conflict")
	ErrNotFound    = errors.New("not found")
	ErrRemote      = errors.New("remote operation failed")
	ErrUnavailable = errors.New("unavailable")
)

const (
	msgEmptySymbol      = "Please enter a stock symbol."
	msgMissingKey       = "Alpha Vantage API Key is missing. Please set AV_KEY."
	msgNeedQuote        = "Please fetch stock data and ensure an active portfolio is selected."
	msgEmptyName        = "Portfolio name cannot be empty."
	msgLastPortfolio    = "Cannot delete the last portfolio. Please create a new one before deleting this."
	msgStoreLoading     = "Portfolios are still loading. Please try again in a moment."
	msgUnknownPortfolio = "Portfolio not found."
)

// ActionError is a user-facing action failure. Kind is one of the sentinel
// errors above and decides the HTTP status.
type ActionError struct {
	Kind    error
	Message string
}

func (e *ActionError) Error() string { return e.Message }
func (e *ActionError) Unwrap() error { return e.Kind }

func actionErr(kind error, format string, args ...any) *ActionError {
	return &ActionError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// QuoteLookup fetches quotes and symbol suggestions
type QuoteLookup interface {
	FetchQuote(ctx context.Context, symbol string, suggestions []models.Suggestion) (*models.Quote, error)
	FetchSuggestions(ctx context.Context, query string) []models.Suggestion
}

// PortfolioStore is the mirrored portfolio collection of one user
type PortfolioStore interface {
	OnChange(fn func())
	Ready() bool
	Portfolios() []models.Portfolio
	SelectedID() string
	Select(id string)
	Busy() bool
	Err() string
	CreatePortfolio(ctx context.Context, name string) (string, error)
	DeletePortfolio(ctx context.Context, id string) error
	UpdateHoldings(ctx context.Context, id string, edit func([]models.Holding) ([]models.Holding, error)) error
}

// ViewModel is the server-side state of one user's portfolio view. Every
// action mutates it under one mutex and pushes the resulting ViewState to
// subscribers.
type ViewModel struct {
	ctx        context.Context
	userID     string
	lookup     QuoteLookup
	portfolios PortfolioStore
	debouncer  *quotes.Debouncer

	mu               sync.Mutex
	symbolInput      string
	quote            *models.Quote
	suggestions      []models.Suggestion
	showSuggestions  bool
	fetchingQuote    bool
	quoteGen         uint64
	newPortfolioName string
	showCreateForm   bool
	errMsg           string
	storeErr         string
	bootstrapErr     string

	subsMu sync.Mutex
	subs   map[chan models.ViewState]struct{}
	closed bool
}

// NewViewModel creates a ViewModel. ctx bounds background work such as
// debounced suggestion lookups.
func NewViewModel(ctx context.Context, userID string, lookup QuoteLookup, portfolios PortfolioStore, debouncer *quotes.Debouncer) *ViewModel {
	vm := &ViewModel{
		ctx:        ctx,
		userID:     userID,
		lookup:     lookup,
		portfolios: portfolios,
		debouncer:  debouncer,
		subs:       make(map[chan models.ViewState]struct{}),
	}
	portfolios.OnChange(vm.publish)
	return vm
}

// State returns the current view state
func (vm *ViewModel) State() models.ViewState {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.stateLocked()
}

func (vm *ViewModel) stateLocked() models.ViewState {
	st := models.ViewState{
		UserID:            vm.userID,
		SymbolInput:       vm.symbolInput,
		Suggestions:       append([]models.Suggestion{}, vm.suggestions...),
		ShowSuggestions:   vm.showSuggestions,
		FetchingQuote:     vm.fetchingQuote,
		Portfolios:        vm.portfolios.Portfolios(),
		ActivePortfolioID: vm.portfolios.SelectedID(),
		StoreReady:        vm.portfolios.Ready(),
		PortfolioBusy:     vm.portfolios.Busy(),
		NewPortfolioName:  vm.newPortfolioName,
		ShowCreateForm:    vm.showCreateForm,
		Error:             vm.errMsg,
		StoreError:        vm.storeErr,
		BootstrapError:    vm.bootstrapErr,
	}
	if st.StoreError == "" {
		st.StoreError = vm.portfolios.Err()
	}
	if vm.quote != nil {
		q := *vm.quote
		st.Quote = &q
	}
	return st
}

// SetSymbolInput updates the search input and schedules a debounced suggestion lookup
func (vm *ViewModel) SetSymbolInput(text string) {
	vm.mu.Lock()
	vm.symbolInput = text
	vm.mu.Unlock()
	vm.publish()

	vm.debouncer.Trigger(func(gen uint64) {
		suggestions := vm.lookup.FetchSuggestions(vm.ctx, text)
		vm.mu.Lock()
		if !vm.debouncer.Current(gen) {
			vm.mu.Unlock()
			return
		}
		vm.suggestions = suggestions
		vm.showSuggestions = len(suggestions) > 0
		vm.mu.Unlock()
		vm.publish()
	})
}

// SelectSuggestion fills the input with symbol and clears the suggestion list
func (vm *ViewModel) SelectSuggestion(symbol string) {
	vm.debouncer.Cancel()
	vm.mu.Lock()
	vm.symbolInput = symbol
	vm.suggestions = nil
	vm.showSuggestions = false
	vm.mu.Unlock()
	vm.publish()
}

// DismissSuggestions hides the suggestion list without clearing it
func (vm *ViewModel) DismissSuggestions() {
	vm.mu.Lock()
	vm.showSuggestions = false
	vm.mu.Unlock()
	vm.publish()
}

// FetchQuote looks up the symbol in the input. The previous quote and error are
// cleared first; a result superseded by a newer fetch is discarded.
func (vm *ViewModel) FetchQuote(ctx context.Context) error {
	defer TrackTime(vm.userID, "FetchQuote", time.Now())

	vm.mu.Lock()
	vm.quote = nil
	vm.errMsg = ""
	vm.showSuggestions = false
	symbol := strings.TrimSpace(vm.symbolInput)
	if symbol == "" {
		vm.errMsg = msgEmptySymbol
		vm.mu.Unlock()
		vm.publish()
		return actionErr(ErrValidation, msgEmptySymbol)
	}
	vm.quoteGen++
	gen := vm.quoteGen
	vm.fetchingQuote = true
	suggestions := append([]models.Suggestion(nil), vm.suggestions...)
	vm.mu.Unlock()
	vm.publish()

	quote, err := vm.lookup.FetchQuote(ctx, symbol, suggestions)

	vm.mu.Lock()
	if gen != vm.quoteGen {
		vm.mu.Unlock()
		return nil
	}
	vm.fetchingQuote = false

	var result *ActionError
	if err != nil {
		result = quoteError(symbol, err)
		vm.errMsg = result.Message
	} else {
		vm.quote = quote
		AddPlaceholderWarnings(ctx, quote)
	}
	vm.mu.Unlock()
	vm.publish()

	if result != nil {
		return result
	}
	return nil
}

func quoteError(symbol string, err error) *ActionError {
	switch {
	case errors.Is(err, quotes.ErrEmptySymbol):
		return actionErr(ErrValidation, msgEmptySymbol)
	case errors.Is(err, quotes.ErrMissingAPIKey):
		return actionErr(ErrUnavailable, msgMissingKey)
	case errors.Is(err, quotes.ErrNoData):
		return actionErr(ErrNotFound, "No live data found for symbol: %s. Please check the symbol or try again later.", strings.ToUpper(symbol))
	default:
		log.Errorf("Error fetching stock data for %s: %v", symbol, err)
		return actionErr(ErrRemote, "Could not fetch data: %v. Please try again, or check your API key/rate limits.", err)
	}
}

// AddToPortfolio appends the displayed quote to the selected portfolio
func (vm *ViewModel) AddToPortfolio(ctx context.Context) error {
	defer TrackTime(vm.userID, "AddToPortfolio", time.Now())

	vm.mu.Lock()
	quote := vm.quote
	id := vm.portfolios.SelectedID()
	if quote == nil || !vm.portfolios.Ready() || id == "" {
		return vm.failLocked(actionErr(ErrValidation, msgNeedQuote))
	}
	vm.errMsg = ""
	vm.mu.Unlock()
	vm.publish()

	holding := quote.Holding
	err := vm.portfolios.UpdateHoldings(ctx, id, func(current []models.Holding) ([]models.Holding, error) {
		if ContainsSymbol(current, holding.Symbol) {
			return nil, actionErr(ErrConflict, "%s is already in the active portfolio.", holding.Symbol)
		}
		return AppendHolding(current, holding), nil
	})
	return vm.storeResult(err, "Failed to add stock to portfolio")
}

// RemoveFromPortfolio removes every holding of symbol from the selected portfolio
func (vm *ViewModel) RemoveFromPortfolio(ctx context.Context, symbol string) error {
	defer TrackTime(vm.userID, "RemoveFromPortfolio", time.Now())

	id := vm.portfolios.SelectedID()
	if id == "" || !vm.portfolios.Ready() {
		return nil
	}
	vm.clearError()

	err := vm.portfolios.UpdateHoldings(ctx, id, func(current []models.Holding) ([]models.Holding, error) {
		return RemoveSymbol(current, symbol), nil
	})
	return vm.storeResult(err, "Failed to remove stock")
}

// Reorder moves dragged to target's position in the selected portfolio.
// Equal or unknown symbols are a no-op.
func (vm *ViewModel) Reorder(ctx context.Context, dragged, target string) error {
	defer TrackTime(vm.userID, "Reorder", time.Now())

	id := vm.portfolios.SelectedID()
	if id == "" || dragged == target {
		return nil
	}

	err := vm.portfolios.UpdateHoldings(ctx, id, func(current []models.Holding) ([]models.Holding, error) {
		reordered, ok := ReorderHoldings(current, dragged, target)
		if !ok {
			return nil, store.ErrNoChange
		}
		return reordered, nil
	})
	if err == nil {
		vm.clearError()
	}
	return vm.storeResult(err, "Failed to reorder portfolio")
}

// SelectPortfolio makes id the active portfolio
func (vm *ViewModel) SelectPortfolio(id string) {
	vm.portfolios.Select(id)
}

// SetCreateForm opens or closes the create-portfolio form and records the typed name
func (vm *ViewModel) SetCreateForm(open bool, name string) {
	vm.mu.Lock()
	vm.showCreateForm = open
	vm.newPortfolioName = name
	vm.mu.Unlock()
	vm.publish()
}

// CreatePortfolio creates and selects a portfolio. An empty name falls back to
// the name typed into the create form.
func (vm *ViewModel) CreatePortfolio(ctx context.Context, name string) error {
	defer TrackTime(vm.userID, "CreatePortfolio", time.Now())

	vm.mu.Lock()
	if name == "" {
		name = vm.newPortfolioName
	}
	vm.newPortfolioName = name
	if strings.TrimSpace(name) == "" {
		return vm.failLocked(actionErr(ErrValidation, msgEmptyName))
	}
	vm.errMsg = ""
	vm.mu.Unlock()
	vm.publish()

	_, err := vm.portfolios.CreatePortfolio(ctx, name)
	if err == nil {
		vm.mu.Lock()
		vm.newPortfolioName = ""
		vm.showCreateForm = false
		vm.mu.Unlock()
	}
	return vm.storeResult(err, "Failed to create portfolio")
}

// DeletePortfolio deletes a portfolio. The last one cannot be deleted.
func (vm *ViewModel) DeletePortfolio(ctx context.Context, id string) error {
	defer TrackTime(vm.userID, "DeletePortfolio", time.Now())

	vm.clearError()
	err := vm.portfolios.DeletePortfolio(ctx, id)
	return vm.storeResult(err, "Failed to delete portfolio")
}

// Subscribe delivers the current state immediately and again after every
// change. Only the newest undelivered state is kept. The channel is closed
// when ctx is done or the view-model is closed.
func (vm *ViewModel) Subscribe(ctx context.Context) <-chan models.ViewState {
	ch := make(chan models.ViewState, 1)

	vm.subsMu.Lock()
	if vm.closed {
		vm.subsMu.Unlock()
		close(ch)
		return ch
	}
	vm.subs[ch] = struct{}{}
	vm.subsMu.Unlock()

	vm.send(ch, vm.State())

	go func() {
		<-ctx.Done()
		vm.unsubscribe(ch)
	}()
	return ch
}

// Subscribers returns the number of open state subscriptions
func (vm *ViewModel) Subscribers() int {
	vm.subsMu.Lock()
	defer vm.subsMu.Unlock()
	return len(vm.subs)
}

// SetBootstrapError records a fatal session error
func (vm *ViewModel) SetBootstrapError(msg string) {
	vm.mu.Lock()
	vm.bootstrapErr = msg
	vm.mu.Unlock()
	vm.publish()
}

// BootstrapError returns the fatal session error, if any
func (vm *ViewModel) BootstrapError() string {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.bootstrapErr
}

// Close stops background work and closes all subscriber channels
func (vm *ViewModel) Close() {
	vm.debouncer.Stop()

	vm.subsMu.Lock()
	defer vm.subsMu.Unlock()
	vm.closed = true
	for ch := range vm.subs {
		delete(vm.subs, ch)
		close(ch)
	}
}

func (vm *ViewModel) unsubscribe(ch chan models.ViewState) {
	vm.subsMu.Lock()
	defer vm.subsMu.Unlock()
	if _, ok := vm.subs[ch]; ok {
		delete(vm.subs, ch)
		close(ch)
	}
}

func (vm *ViewModel) publish() {
	st := vm.State()
	vm.subsMu.Lock()
	defer vm.subsMu.Unlock()
	for ch := range vm.subs {
		deliver(ch, st)
	}
}

func (vm *ViewModel) send(ch chan models.ViewState, st models.ViewState) {
	vm.subsMu.Lock()
	defer vm.subsMu.Unlock()
	if _, ok := vm.subs[ch]; ok {
		deliver(ch, st)
	}
}

// deliver replaces any unread state in ch with st. Must be called with subsMu held.
func deliver(ch chan models.ViewState, st models.ViewState) {
	select {
	case ch <- st:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- st:
	default:
	}
}

func (vm *ViewModel) clearError() {
	vm.mu.Lock()
	vm.errMsg = ""
	vm.mu.Unlock()
	vm.publish()
}

// failLocked records an inline error, releases vm.mu and publishes
func (vm *ViewModel) failLocked(err *ActionError) error {
	vm.errMsg = err.Message
	vm.mu.Unlock()
	vm.publish()
	return err
}

// storeResult maps a store call outcome onto view state and the returned error
func (vm *ViewModel) storeResult(err error, failurePrefix string) error {
	if err == nil {
		vm.publish()
		return nil
	}

	var result *ActionError
	switch {
	case errors.As(err, &result):
	case errors.Is(err, store.ErrEmptyName):
		result = actionErr(ErrValidation, msgEmptyName)
	case errors.Is(err, store.ErrLastPortfolio):
		result = actionErr(ErrConflict, msgLastPortfolio)
	case errors.Is(err, store.ErrNotReady):
		result = actionErr(ErrUnavailable, msgStoreLoading)
	case errors.Is(err, store.ErrPortfolioNotFound):
		result = actionErr(ErrNotFound, msgUnknownPortfolio)
	default:
		log.Errorf("%s: %v", failurePrefix, err)
		msg := fmt.Sprintf("%s: %v", failurePrefix, err)
		vm.mu.Lock()
		vm.storeErr = msg
		vm.mu.Unlock()
		vm.publish()
		return actionErr(ErrRemote, "%s", msg)
	}

	vm.mu.Lock()
	vm.errMsg = result.Message
	vm.mu.Unlock()
	vm.publish()
	return result
}
