package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/epeers/stocktrack/internal/quotes"
	"github.com/epeers/stocktrack/internal/repository"
	"github.com/epeers/stocktrack/internal/store"
	log "github.com/sirupsen/logrus"
)

const (
	// WorkspaceIdleTTL is how long a workspace with no event subscribers
	// survives after its last request
	WorkspaceIdleTTL = 30 * time.Minute

	// WorkspaceSweepInterval is how often Reap looks for idle or failed workspaces
	WorkspaceSweepInterval = time.Minute
)

// Registry owns one ViewModel per signed-in user, each backed by a store
// adapter subscribed to that user's portfolio collection.
type Registry struct {
	ctx             context.Context
	docs            store.DocumentStore
	lookup          QuoteLookup
	appID           string
	suggestionDelay time.Duration
	now             func() time.Time

	mu    sync.Mutex
	views map[string]*workspace
}

type workspace struct {
	vm       *ViewModel
	cancel   context.CancelFunc
	lastUsed time.Time
	failed   atomic.Bool
}

// NewRegistry creates a Registry. Workspaces stop when ctx is done.
func NewRegistry(ctx context.Context, docs store.DocumentStore, lookup QuoteLookup, appID string, suggestionDelay time.Duration) *Registry {
	return &Registry{
		ctx:             ctx,
		docs:            docs,
		lookup:          lookup,
		appID:           appID,
		suggestionDelay: suggestionDelay,
		now:             time.Now,
		views:           make(map[string]*workspace),
	}
}

// Get returns the user's ViewModel, starting its portfolio subscription on first use
func (r *Registry) Get(userID string) *ViewModel {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ws, ok := r.views[userID]; ok {
		ws.lastUsed = r.now()
		return ws.vm
	}
	return r.startLocked(userID)
}

// Open is Get for a new session: a workspace whose subscription failed is
// replaced so the subscription is retried.
func (r *Registry) Open(userID string) *ViewModel {
	r.mu.Lock()
	ws, ok := r.views[userID]
	failed := ok && ws.failed.Load()
	if failed {
		delete(r.views, userID)
	}
	r.mu.Unlock()

	if failed {
		log.WithField("user_id", userID).Info("restarting failed portfolio workspace")
		ws.cancel()
		ws.vm.Close()
	}
	return r.Get(userID)
}

func (r *Registry) startLocked(userID string) *ViewModel {
	ctx, cancel := context.WithCancel(r.ctx)
	path := repository.PortfolioCollectionPath(r.appID, userID)
	adapter := store.NewAdapter(r.docs, path)
	vm := NewViewModel(ctx, userID, r.lookup, adapter, quotes.NewDebouncer(r.suggestionDelay))
	ws := &workspace{vm: vm, cancel: cancel, lastUsed: r.now()}
	r.views[userID] = ws

	go func() {
		if err := adapter.Run(ctx); err != nil {
			log.WithField("user_id", userID).Errorf("portfolio subscription failed: %v", err)
			ws.failed.Store(true)
			vm.SetBootstrapError(fmt.Sprintf("Failed to load portfolios: %v", err))
		}
	}()

	log.WithField("user_id", userID).Debug("started portfolio workspace")
	return vm
}

// Sweep stops failed workspaces and those with no event subscribers that
// have not been used for idle. It returns how many were stopped.
func (r *Registry) Sweep(idle time.Duration) int {
	now := r.now()
	var stale []*workspace

	r.mu.Lock()
	for userID, ws := range r.views {
		switch {
		case ws.failed.Load():
		case ws.vm.Subscribers() > 0:
			ws.lastUsed = now
			continue
		case now.Sub(ws.lastUsed) <= idle:
			continue
		}
		delete(r.views, userID)
		stale = append(stale, ws)
	}
	r.mu.Unlock()

	for _, ws := range stale {
		ws.cancel()
		ws.vm.Close()
	}
	if len(stale) > 0 {
		log.Debugf("stopped %d idle portfolio workspaces", len(stale))
	}
	return len(stale)
}

// Reap runs Sweep every interval until ctx is done
func (r *Registry) Reap(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(idle)
		}
	}
}

// Drop stops a user's workspace and closes its subscribers
func (r *Registry) Drop(userID string) {
	r.mu.Lock()
	ws, ok := r.views[userID]
	delete(r.views, userID)
	r.mu.Unlock()

	if ok {
		ws.cancel()
		ws.vm.Close()
	}
}

// Close stops every workspace
func (r *Registry) Close() {
	r.mu.Lock()
	views := r.views
	r.views = make(map[string]*workspace)
	r.mu.Unlock()

	for _, ws := range views {
		ws.cancel()
		ws.vm.Close()
	}
}
