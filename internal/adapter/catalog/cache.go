package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/couchcryptid/burn-severity-etl/internal/domain"
	"github.com/couchcryptid/burn-severity-etl/internal/observability"
)

// CachedCatalog wraps an ImageryCatalog with an in-memory LRU cache.
// Re-running an analysis, or running two analyses over the same fire, skips
// the archive scan entirely.
type CachedCatalog struct {
	inner   domain.ImageryCatalog
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedCatalog creates a cache decorator around a catalog.
func NewCachedCatalog(inner domain.ImageryCatalog, maxEntries int, metrics *observability.Metrics) *CachedCatalog {
	return &CachedCatalog{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedCatalog) FetchCollection(ctx context.Context, sensor string, start, end time.Time, aoi domain.AreaOfInterest) (domain.ImageCollection, error) {
	key := fmt.Sprintf("%s|%d|%d|%v", sensor, start.Unix(), end.Unix(), aoi.Vertices())
	if col, ok := c.cache.get(key); ok {
		c.metrics.CatalogCache.WithLabelValues("hit").Inc()
		return col, nil
	}
	c.metrics.CatalogCache.WithLabelValues("miss").Inc()

	col, err := c.inner.FetchCollection(ctx, sensor, start, end, aoi)
	if err != nil {
		return col, err
	}
	// Only cache non-empty collections so a window queried before its scenes
	// were ingested can be retried.
	if !col.Empty() {
		c.cache.put(key, col)
	}
	return col, nil
}

// lruCache is a simple thread-safe LRU cache for ImageCollections.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value domain.ImageCollection
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (domain.ImageCollection, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return domain.ImageCollection{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value domain.ImageCollection) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
