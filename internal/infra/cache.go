// Package infra holds shared in-process infrastructure for the server.
package infra

import (
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Cache size limits to prevent unbounded memory growth
const (
	DefaultMaxCacheEntries = 1000            // Maximum number of cache entries
	DefaultCacheTTL        = 10 * time.Minute
	DefaultCacheCleanup    = 5 * time.Minute // How often to run cache cleanup
)

// entry holds cached data with expiration and LRU tracking
type entry[V any] struct {
	data       V
	expiresAt  time.Time
	accessedAt time.Time // For LRU eviction
	mu         sync.Mutex
}

func (e *entry[V]) touch(now time.Time) {
	e.mu.Lock()
	e.accessedAt = now
	e.mu.Unlock()
}

func (e *entry[V]) lastAccess() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.accessedAt
}

// Stats is a point-in-time view of cache activity.
type Stats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
	Size      int64 `json:"size"`
}

// Cache is an LRU cache with TTL support, safe for concurrent use.
type Cache[V any] struct {
	entries    sync.Map // key (string) -> *entry[V]
	count      int64    // Atomic counter for cache size
	maxEntries int64
	mu         sync.Mutex // Serialises eviction

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64

	// Graceful shutdown
	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewCache creates a cache holding at most maxEntries values and starts its
// cleanup loop. Call Close to stop it.
func NewCache[V any](maxEntries int) *Cache[V] {
	return newCache[V](maxEntries, DefaultCacheCleanup)
}

func newCache[V any](maxEntries int, cleanupEvery time.Duration) *Cache[V] {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxCacheEntries
	}
	c := &Cache[V]{
		maxEntries: int64(maxEntries),
		stopCh:     make(chan struct{}),
		done:       make(chan struct{}),
	}
	go c.cleanupLoop(cleanupEvery)
	return c
}

// Get retrieves a cached value if it exists and hasn't expired
func (c *Cache[V]) Get(key string) (V, bool) {
	if v, ok := c.entries.Load(key); ok {
		ce := v.(*entry[V])
		now := time.Now()
		if now.Before(ce.expiresAt) {
			ce.touch(now)
			c.hits.Add(1)
			return ce.data, true
		}
		// Expired
		if c.entries.CompareAndDelete(key, ce) {
			atomic.AddInt64(&c.count, -1)
		}
	}
	c.misses.Add(1)
	var zero V
	return zero, false
}

// Set stores a value in the cache with the specified TTL. Inserting past
// the size limit evicts the least recently used entries first.
func (c *Cache[V]) Set(key string, data V, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	now := time.Now()

	_, existed := c.entries.Swap(key, &entry[V]{
		data:       data,
		expiresAt:  now.Add(ttl),
		accessedAt: now,
	})
	if existed {
		return
	}

	if n := atomic.AddInt64(&c.count, 1); n > c.maxEntries {
		c.evictLRU(int(n - c.maxEntries + c.maxEntries/10))
	}
}

// GetOrCompute returns the cached value for key, calling compute and caching
// its result on a miss. Errors are not cached.
func (c *Cache[V]) GetOrCompute(key string, ttl time.Duration, compute func() (V, error)) (V, bool, error) {
	if v, ok := c.Get(key); ok {
		return v, true, nil
	}
	v, err := compute()
	if err != nil {
		return v, false, err
	}
	c.Set(key, v, ttl)
	return v, false, nil
}

// Delete removes a key from the cache
func (c *Cache[V]) Delete(key string) {
	if _, existed := c.entries.LoadAndDelete(key); existed {
		atomic.AddInt64(&c.count, -1)
	}
}

// DeletePrefix removes all cache entries with keys starting with prefix
func (c *Cache[V]) DeletePrefix(prefix string) {
	var deleted int64
	c.entries.Range(func(key, _ any) bool {
		if strings.HasPrefix(key.(string), prefix) {
			if _, ok := c.entries.LoadAndDelete(key); ok {
				deleted++
			}
		}
		return true
	})
	if deleted > 0 {
		atomic.AddInt64(&c.count, -deleted)
	}
}

// Size returns the current number of entries in the cache
func (c *Cache[V]) Size() int64 {
	return atomic.LoadInt64(&c.count)
}

// Stats returns hit, miss and eviction counters.
func (c *Cache[V]) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Size:      c.Size(),
	}
}

// Close stops the background cleanup goroutine and waits for it to exit.
func (c *Cache[V]) Close() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
	})
	<-c.done
}

// cleanupLoop periodically cleans up expired entries
func (c *Cache[V]) cleanupLoop(every time.Duration) {
	defer close(c.done)
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

// cleanup removes expired entries and evicts LRU entries if over limit
func (c *Cache[V]) cleanup() {
	now := time.Now()
	var expired int64

	c.entries.Range(func(key, value any) bool {
		ce := value.(*entry[V])
		if now.After(ce.expiresAt) && c.entries.CompareAndDelete(key, ce) {
			expired++
		}
		return true
	})
	if expired > 0 {
		atomic.AddInt64(&c.count, -expired)
	}

	if n := atomic.LoadInt64(&c.count); n > c.maxEntries {
		c.evictLRU(int(n - c.maxEntries + c.maxEntries/10)) // Evict 10% extra
	}
}

// evictLRU removes the least recently used entries
func (c *Cache[V]) evictLRU(count int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	type candidate struct {
		key        string
		accessedAt time.Time
	}
	var entries []candidate

	c.entries.Range(func(key, value any) bool {
		entries = append(entries, candidate{
			key:        key.(string),
			accessedAt: value.(*entry[V]).lastAccess(),
		})
		return true
	})

	// Oldest first
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].accessedAt.Before(entries[j].accessedAt)
	})

	var evicted int64
	for _, e := range entries {
		if evicted >= int64(count) {
			break
		}
		if _, ok := c.entries.LoadAndDelete(e.key); ok {
			evicted++
		}
	}

	if evicted > 0 {
		atomic.AddInt64(&c.count, -evicted)
		c.evictions.Add(evicted)
	}
}
