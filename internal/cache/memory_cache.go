package cache

import (
	"strings"
	"sync"
	"time"

	"github.com/epeers/stocktrack/internal/models"
)

// MemoryCache provides an in-memory cache for symbol search results.
// AlphaVantage's free tier allows only a handful of calls per minute, so
// repeated prefixes are served from here.
type MemoryCache struct {
	suggestions map[string]suggestionEntry
	mu          sync.RWMutex
	ttl         time.Duration
	now         func() time.Time
}

type suggestionEntry struct {
	data      []models.Suggestion
	fetchedAt time.Time
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		suggestions: make(map[string]suggestionEntry),
		ttl:         ttl,
		now:         time.Now,
	}
}

// suggestionKey normalizes a query so "aa" and "AA " share an entry
func suggestionKey(query string) string {
	return strings.ToUpper(strings.TrimSpace(query))
}

// GetSuggestions retrieves cached suggestions if fresh
func (c *MemoryCache) GetSuggestions(query string) ([]models.Suggestion, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.suggestions[suggestionKey(query)]
	if !exists {
		return nil, false
	}
	if c.now().Sub(entry.fetchedAt) > c.ttl {
		return nil, false
	}
	out := make([]models.Suggestion, len(entry.data))
	copy(out, entry.data)
	return out, true
}

// SetSuggestions caches suggestions for a query. Expired entries are dropped
// on the way in, so the cache only holds queries seen within one ttl.
func (c *MemoryCache) SetSuggestions(query string, data []models.Suggestion) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, entry := range c.suggestions {
		if now.Sub(entry.fetchedAt) > c.ttl {
			delete(c.suggestions, key)
		}
	}

	stored := make([]models.Suggestion, len(data))
	copy(stored, data)
	c.suggestions[suggestionKey(query)] = suggestionEntry{
		data:      stored,
		fetchedAt: now,
	}
}
