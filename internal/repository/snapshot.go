package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
)

// PortfolioCollectionPath returns the per-user portfolio collection path
func PortfolioCollectionPath(appID, userID string) string {
	return fmt.Sprintf("artifacts/%s/users/%s/portfolios", appID, userID)
}

// Document is one schemaless record in a collection
type Document struct {
	ID        string          `json:"id"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"created_at"`
}

// Snapshot is the full content of a collection at one point in time.
// Err is set instead of Documents when the collection could not be read.
type Snapshot struct {
	Path      string
	Documents []Document
	Err       error
}

// Hub fans collection snapshots out to subscribers. Each subscriber channel
// holds at most one pending snapshot; a newer snapshot replaces an unread one.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[chan Snapshot]struct{}
}

// NewHub creates an empty Hub
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan Snapshot]struct{})}
}

// Add registers a new subscriber channel for path
func (h *Hub) Add(path string) chan Snapshot {
	ch := make(chan Snapshot, 1)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[path] == nil {
		h.subs[path] = make(map[chan Snapshot]struct{})
	}
	h.subs[path][ch] = struct{}{}
	return ch
}

// Remove unregisters and closes ch. Removing twice is a no-op.
func (h *Hub) Remove(path string, ch chan Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[path][ch]; !ok {
		return
	}
	delete(h.subs[path], ch)
	if len(h.subs[path]) == 0 {
		delete(h.subs, path)
	}
	close(ch)
}

// Watched reports whether path has any subscriber
func (h *Hub) Watched(path string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[path]) > 0
}

// Paths returns every path with at least one subscriber
func (h *Hub) Paths() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	paths := make([]string, 0, len(h.subs))
	for p := range h.subs {
		paths = append(paths, p)
	}
	return paths
}

// Publish delivers snap to every subscriber of snap.Path
func (h *Hub) Publish(snap Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[snap.Path] {
		deliver(ch, snap)
	}
}

// Send delivers snap to one subscriber if it is still registered
func (h *Hub) Send(ch chan Snapshot, snap Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[snap.Path][ch]; ok {
		deliver(ch, snap)
	}
}

// deliver sends snap to a single subscriber. Must be called with Hub.mu held.
func deliver(ch chan Snapshot, snap Snapshot) {
	select {
	case ch <- snap:
		return
	default:
	}
	// drop the stale pending snapshot
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- snap:
	default:
	}
}
