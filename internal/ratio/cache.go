package ratio

import (
	"sync"

	"github.com/jayakeshav/vizlab/internal/model"
)

// Key identifies one derived ratio within a session.
type Key struct {
	Device      string
	Workload    string
	Run         string
	Numerator   string
	Denominator string
}

// Cache retains derived ratios for the duration of a session. A hit returns
// the stored entry verbatim; entries never expire and are dropped only by
// Reset. The expected key space per session is small, so there is no
// eviction.
type Cache struct {
	mu      sync.Mutex
	entries map[Key]*model.RatioEntry
}

// NewCache creates an empty ratio cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[Key]*model.RatioEntry)}
}

// Get returns the cached entry for a key, if present.
func (c *Cache) Get(k Key) (*model.RatioEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[k]
	return e, ok
}

// Put stores a derived entry.
func (c *Cache) Put(k Key, e *model.RatioEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[k] = e
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Reset drops every cached entry.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[Key]*model.RatioEntry)
}
