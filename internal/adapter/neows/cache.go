package neows

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/neo-hazard-etl/internal/domain"
	"github.com/couchcryptid/neo-hazard-etl/internal/observability"
)

// CachedOrbitSource wraps an OrbitalDataSource with an in-memory LRU cache
// whose entries expire after a fixed TTL.
type CachedOrbitSource struct {
	inner   domain.OrbitalDataSource
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedOrbitSource creates a cache decorator around a source.
func NewCachedOrbitSource(inner domain.OrbitalDataSource, maxEntries int, ttl time.Duration, clock clockwork.Clock, metrics *observability.Metrics) *CachedOrbitSource {
	return &CachedOrbitSource{
		inner:   inner,
		cache:   newLRUCache(maxEntries, ttl, clock),
		metrics: metrics,
	}
}

func (c *CachedOrbitSource) LookupOrbit(ctx context.Context, id string) (domain.OrbitalData, error) {
	od, status := c.cache.get(id)
	c.metrics.OrbitCache.WithLabelValues(status).Inc()
	if status == cacheHit {
		return od, nil
	}

	od, err := c.inner.LookupOrbit(ctx, id)
	if err != nil {
		return od, err
	}
	// Empty results are not cached so objects whose elements are published later get picked up.
	if !od.IsEmpty() {
		c.cache.put(id, od)
	}
	return od, nil
}

const (
	cacheHit     = "hit"
	cacheMiss    = "miss"
	cacheExpired = "expired"
)

// lruCache is a thread-safe LRU cache of orbital elements with TTL expiry.
type lruCache struct {
	maxEntries int
	ttl        time.Duration
	clock      clockwork.Clock
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key       string
	value     domain.OrbitalData
	expiresAt time.Time
	prev      *entry
	next      *entry
}

func newLRUCache(maxEntries int, ttl time.Duration, clock clockwork.Clock) *lruCache {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &lruCache{
		maxEntries: maxEntries,
		ttl:        ttl,
		clock:      clock,
		entries:    make(map[string]*entry),
	}
}

// get returns the cached value and whether it was a hit, a miss or expired.
// Expired entries are dropped.
func (c *lruCache) get(key string) (domain.OrbitalData, string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return domain.OrbitalData{}, cacheMiss
	}
	if !c.clock.Now().Before(e.expiresAt) {
		delete(c.entries, key)
		c.remove(e)
		return domain.OrbitalData{}, cacheExpired
	}
	c.moveToFront(e)
	return e.value, cacheHit
}

func (c *lruCache) put(key string, value domain.OrbitalData) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.clock.Now().Add(c.ttl)
	if e, ok := c.entries[key]; ok {
		e.value = value
		e.expiresAt = expiresAt
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value, expiresAt: expiresAt}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
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
