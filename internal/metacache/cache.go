// Package metacache is the process-local cache of provider summaries,
// keyed by anime id. Entries are expendable: the cache is never
// persisted and is safe to clear at any time.
package metacache

import (
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/example/anitrack/internal/jikan"
)

const DefaultTTL = time.Hour

type item struct {
	summary   jikan.Summary
	expiresAt time.Time
}

// Cache is an in-memory TTL map with optional NATS key-level
// invalidation, in the same shape as a response cache: Get misses are
// never errors, only absence.
type Cache struct {
	mu    sync.RWMutex
	items map[string]item
	ttl   time.Duration
}

// New creates a Cache and wires up NATS invalidation when nc is non-nil.
// A message body of "ALL" (or empty) clears everything, anything else
// evicts that anime id.
func New(ttl time.Duration, nc *nats.Conn, subj string) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{
		items: make(map[string]item),
		ttl:   ttl,
	}
	if nc != nil && subj != "" {
		_, _ = nc.Subscribe(subj, func(m *nats.Msg) {
			key := string(m.Data)
			if key == "" || strings.EqualFold(key, "ALL") {
				c.Clear()
				return
			}
			c.Invalidate(key)
		})
	}
	return c
}

func (c *Cache) Get(animeID string) (jikan.Summary, bool) {
	c.mu.RLock()
	it, ok := c.items[animeID]
	c.mu.RUnlock()
	if !ok {
		return jikan.Summary{}, false
	}
	if time.Now().After(it.expiresAt) {
		c.mu.Lock()
		if cur, ok2 := c.items[animeID]; ok2 && time.Now().After(cur.expiresAt) {
			delete(c.items, animeID)
		}
		c.mu.Unlock()
		return jikan.Summary{}, false
	}
	return it.summary, true
}

// Put stores a summary under animeID. ttl <= 0 uses the cache default.
func (c *Cache) Put(animeID string, s jikan.Summary, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.ttl
	}
	c.mu.Lock()
	c.items[animeID] = item{summary: s, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
}

func (c *Cache) Invalidate(animeID string) {
	c.mu.Lock()
	delete(c.items, animeID)
	c.mu.Unlock()
}

func (c *Cache) Clear() {
	c.mu.Lock()
	c.items = make(map[string]item)
	c.mu.Unlock()
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
