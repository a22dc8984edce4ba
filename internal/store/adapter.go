package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/epeers/stocktrack/internal/models"
	"github.com/epeers/stocktrack/internal/repository"
	log "github.com/sirupsen/logrus"
)

// DefaultPortfolioName is the name of the portfolio created for an empty collection
const DefaultPortfolioName = "My First Portfolio"

var (
	ErrEmptyName         = errors.New("portfolio name cannot be empty")
	ErrLastPortfolio     = errors.New("cannot delete the last portfolio")
	ErrPortfolioNotFound = errors.New("portfolio not found")
	ErrNotReady          = errors.New("portfolio store not ready")

	// ErrNoChange is returned by an UpdateHoldings edit to skip the write
	ErrNoChange = errors.New("no change")
)

// DocumentStore is the collection store the adapter mirrors
type DocumentStore interface {
	Subscribe(ctx context.Context, path string) (<-chan repository.Snapshot, error)
	Add(ctx context.Context, path string, data map[string]any) (string, error)
	Delete(ctx context.Context, path, id string) error
	MergeUpdate(ctx context.Context, path, id string, partial map[string]any) error
}

// Adapter mirrors one user's portfolio collection and writes changes back to it.
// The mirror is replaced wholesale by every snapshot; successful writes are
// applied to it immediately so follow-up edits see them before the snapshot lands.
// Holdings writes bump the portfolio's rev so a snapshot read before the write
// cannot roll the mirror back.
type Adapter struct {
	docs DocumentStore
	path string
	now  func() time.Time

	mu              sync.Mutex
	ready           bool
	portfolios      []models.Portfolio
	selectedID      string
	err             string
	creatingDefault bool
	onChange        func()

	busy  atomic.Int32
	locks keyedMutex

	// deleteMu keeps the last-portfolio check and the delete together
	deleteMu sync.Mutex
}

// NewAdapter creates an Adapter for the collection at path
func NewAdapter(docs DocumentStore, path string) *Adapter {
	return &Adapter{
		docs: docs,
		path: path,
		now:  time.Now,
	}
}

// OnChange registers fn to be called after every change to the mirror,
// selection, busy flag or error. fn must not block.
func (a *Adapter) OnChange(fn func()) {
	a.mu.Lock()
	a.onChange = fn
	a.mu.Unlock()
}

// Run subscribes to the collection and applies snapshots until ctx is done.
// A subscription failure is returned immediately.
func (a *Adapter) Run(ctx context.Context) error {
	snapshots, err := a.docs.Subscribe(ctx, a.path)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", a.path, err)
	}
	for snap := range snapshots {
		a.HandleSnapshot(ctx, snap)
	}
	return nil
}

// HandleSnapshot replaces the mirror with snap and applies the selection policy.
// An empty collection gets exactly one default portfolio.
func (a *Adapter) HandleSnapshot(ctx context.Context, snap repository.Snapshot) {
	if snap.Err != nil {
		log.Errorf("Error fetching portfolios for %s: %v", a.path, snap.Err)
		a.mu.Lock()
		a.err = fmt.Sprintf("Failed to load portfolios: %v", snap.Err)
		a.mu.Unlock()
		a.notify()
		return
	}

	portfolios := decodePortfolios(snap.Documents)

	a.mu.Lock()
	a.portfolios = keepNewerLocal(portfolios, a.portfolios)
	portfolios = a.portfolios
	a.ready = true
	createDefault := false
	if len(portfolios) > 0 {
		a.creatingDefault = false
		if !containsPortfolio(portfolios, a.selectedID) {
			a.selectedID = portfolios[0].ID
		}
	} else if !a.creatingDefault {
		a.creatingDefault = true
		createDefault = true
	}
	a.mu.Unlock()
	a.notify()

	if createDefault {
		a.createDefault(ctx)
	}
}

func (a *Adapter) createDefault(ctx context.Context) {
	id, err := a.add(ctx, DefaultPortfolioName)
	a.mu.Lock()
	if err != nil {
		log.Errorf("Error creating default portfolio: %v", err)
		a.err = fmt.Sprintf("Failed to create default portfolio: %v", err)
		a.creatingDefault = false
	} else {
		a.selectedID = id
	}
	a.mu.Unlock()
	a.notify()
}

// Ready reports whether the first snapshot has arrived
func (a *Adapter) Ready() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ready
}

// Portfolios returns a copy of the mirrored collection in snapshot order
func (a *Adapter) Portfolios() []models.Portfolio {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]models.Portfolio, len(a.portfolios))
	for i, p := range a.portfolios {
		out[i] = clonePortfolio(p)
	}
	return out
}

// Portfolio returns a copy of one mirrored portfolio
func (a *Adapter) Portfolio(id string) (models.Portfolio, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, p := range a.portfolios {
		if p.ID == id {
			return clonePortfolio(p), true
		}
	}
	return models.Portfolio{}, false
}

// SelectedID returns the selected portfolio id, or "" when none is selected
func (a *Adapter) SelectedID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.selectedID
}

// Select makes id the selected portfolio. Ids absent from the mirror are
// accepted; the next snapshot falls back to the first portfolio.
func (a *Adapter) Select(id string) {
	a.mu.Lock()
	a.selectedID = id
	a.mu.Unlock()
	a.notify()
}

// Busy reports whether any store write is outstanding
func (a *Adapter) Busy() bool {
	return a.busy.Load() > 0
}

// Err returns the last load or default-creation failure message
func (a *Adapter) Err() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

// CreatePortfolio adds an empty portfolio named name and selects it
func (a *Adapter) CreatePortfolio(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	if !a.Ready() {
		return "", ErrNotReady
	}

	id, err := a.add(ctx, name)
	if err != nil {
		return "", err
	}
	a.Select(id)
	return id, nil
}

func (a *Adapter) add(ctx context.Context, name string) (string, error) {
	defer a.track()()
	id, err := a.docs.Add(ctx, a.path, map[string]any{
		"name":      name,
		"stocks":    []models.Holding{},
		"createdAt": a.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to add portfolio: %w", err)
	}
	return id, nil
}

// DeletePortfolio removes a portfolio. The last remaining portfolio cannot be deleted.
// Deletes run one at a time so two of them cannot empty the collection.
func (a *Adapter) DeletePortfolio(ctx context.Context, id string) error {
	a.deleteMu.Lock()
	defer a.deleteMu.Unlock()

	a.mu.Lock()
	count := len(a.portfolios)
	found := containsPortfolio(a.portfolios, id)
	ready := a.ready
	a.mu.Unlock()

	switch {
	case !ready:
		return ErrNotReady
	case count == 1:
		return ErrLastPortfolio
	case !found:
		return ErrPortfolioNotFound
	}

	unlock := a.locks.lock(id)
	defer unlock()
	defer a.track()()

	err := a.docs.Delete(ctx, a.path, id)
	if err != nil && !errors.Is(err, repository.ErrDocumentNotFound) {
		return fmt.Errorf("failed to delete portfolio: %w", err)
	}

	a.mu.Lock()
	for i, p := range a.portfolios {
		if p.ID == id {
			a.portfolios = append(a.portfolios[:i:i], a.portfolios[i+1:]...)
			break
		}
	}
	if !containsPortfolio(a.portfolios, a.selectedID) && len(a.portfolios) > 0 {
		a.selectedID = a.portfolios[0].ID
	}
	a.mu.Unlock()
	a.notify()

	if err != nil {
		// already removed by another writer
		return ErrPortfolioNotFound
	}
	return nil
}

// SetHoldings replaces the stocks of one portfolio, leaving its other fields untouched
func (a *Adapter) SetHoldings(ctx context.Context, id string, holdings []models.Holding) error {
	return a.UpdateHoldings(ctx, id, func([]models.Holding) ([]models.Holding, error) {
		return holdings, nil
	})
}

// UpdateHoldings applies edit to the current stocks of one portfolio and writes
// the result. Edits to the same portfolio run one at a time, each seeing the
// result of the previous one. An edit returning an error aborts without a
// write; ErrNoChange aborts silently.
func (a *Adapter) UpdateHoldings(ctx context.Context, id string, edit func([]models.Holding) ([]models.Holding, error)) error {
	unlock := a.locks.lock(id)
	defer unlock()

	current, ok := a.Portfolio(id)
	if !ok {
		return ErrPortfolioNotFound
	}

	updated, err := edit(current.Stocks)
	if errors.Is(err, ErrNoChange) {
		return nil
	}
	if err != nil {
		return err
	}
	if updated == nil {
		updated = []models.Holding{}
	}

	defer a.track()()
	rev := current.Rev + 1
	if err := a.docs.MergeUpdate(ctx, a.path, id, map[string]any{"stocks": updated, "rev": rev}); err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			return ErrPortfolioNotFound
		}
		return fmt.Errorf("failed to update holdings: %w", err)
	}

	a.mu.Lock()
	for i := range a.portfolios {
		if a.portfolios[i].ID == id {
			a.portfolios[i].Stocks = append([]models.Holding(nil), updated...)
			a.portfolios[i].Rev = rev
			break
		}
	}
	a.mu.Unlock()
	a.notify()
	return nil
}

// track marks a write as outstanding until the returned func is called
func (a *Adapter) track() func() {
	a.busy.Add(1)
	a.notify()
	return func() {
		a.busy.Add(-1)
		a.notify()
	}
}

func (a *Adapter) notify() {
	a.mu.Lock()
	fn := a.onChange
	a.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func decodePortfolios(docs []repository.Document) []models.Portfolio {
	portfolios := make([]models.Portfolio, 0, len(docs))
	for _, d := range docs {
		var p models.Portfolio
		if err := json.Unmarshal(d.Data, &p); err != nil {
			log.WithField("document_id", d.ID).Errorf("skipping malformed portfolio: %v", err)
			continue
		}
		p.ID = d.ID
		if p.Stocks == nil {
			p.Stocks = []models.Holding{}
		}
		portfolios = append(portfolios, p)
	}
	return portfolios
}

// keepNewerLocal keeps local holdings for portfolios whose snapshot copy is older
func keepNewerLocal(incoming, local []models.Portfolio) []models.Portfolio {
	revs := make(map[string]models.Portfolio, len(local))
	for _, p := range local {
		revs[p.ID] = p
	}
	for i, p := range incoming {
		if l, ok := revs[p.ID]; ok && l.Rev > p.Rev {
			incoming[i].Stocks = l.Stocks
			incoming[i].Rev = l.Rev
		}
	}
	return incoming
}

func containsPortfolio(portfolios []models.Portfolio, id string) bool {
	if id == "" {
		return false
	}
	for _, p := range portfolios {
		if p.ID == id {
			return true
		}
	}
	return false
}

func clonePortfolio(p models.Portfolio) models.Portfolio {
	p.Stocks = append([]models.Holding{}, p.Stocks...)
	return p
}

// keyedMutex serializes work per key
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
