package infra

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// CacheEntry holds a cached value with expiration. A zero ExpiresAt never
// expires.
type CacheEntry struct {
	Value     any
	ExpiresAt time.Time
	seq       uint64
}

func (e CacheEntry) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// CacheStats reports cache counters.
type CacheStats struct {
	Entries   int    `json:"entries"`
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
}

// Cache is a thread-safe in-memory cache with a TTL and an optional bound on
// the number of entries. When the bound is reached, expired entries are
// dropped first and then the oldest insertion.
//
// GetOrLoad is write-once per key: concurrent loads of the same key share a
// single call and a live entry is never replaced by a later load.
type Cache struct {
	mu         sync.RWMutex
	entries    map[string]CacheEntry
	ttl        time.Duration
	maxEntries int
	seq        uint64
	stats      CacheStats
	group      singleflight.Group
	now        func() time.Time
}

// NewCache creates an unbounded cache with the given default TTL. A
// non-positive TTL keeps entries for the life of the process.
func NewCache(ttl time.Duration) *Cache {
	return NewBoundedCache(ttl, 0)
}

// NewBoundedCache creates a cache holding at most maxEntries entries
// (0 means unbounded).
func NewBoundedCache(ttl time.Duration, maxEntries int) *Cache {
	return &Cache{
		entries:    make(map[string]CacheEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// SetClock replaces the time source. Used by tests.
func (c *Cache) SetClock(now func() time.Time) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}

// Get retrieves a value from the cache. Returns nil, false if not found or expired.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok || entry.expired(c.now()) {
		c.stats.Misses++
		return nil, false
	}
	c.stats.Hits++
	return entry.Value, true
}

// Set stores a value in the cache with the default TTL.
func (c *Cache) Set(key string, value any) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value in the cache with a custom TTL, replacing any
// existing entry.
func (c *Cache) SetWithTTL(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	c.storeLocked(key, value, ttl)
	c.mu.Unlock()
}

// Add stores value only if key has no live entry. It returns the value that
// is cached after the call and whether this call stored it.
func (c *Cache) Add(key string, value any) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.entries[key]; ok && !entry.expired(c.now()) {
		return entry.Value, false
	}
	c.storeLocked(key, value, c.ttl)
	return value, true
}

// GetOrLoad returns the cached value for key, calling load on a miss.
// cached is true when the value came from the cache. Load errors are not
// cached.
func (c *Cache) GetOrLoad(key string, load func() (any, error)) (value any, cached bool, err error) {
	if v, ok := c.Get(key); ok {
		return v, true, nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		v, err := load()
		if err != nil {
			return nil, err
		}
		stored, _ := c.Add(key, v)
		return stored, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v, false, nil
}

// Invalidate removes a key from the cache.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Flush removes all entries from the cache.
func (c *Cache) Flush() {
	c.mu.Lock()
	c.entries = make(map[string]CacheEntry)
	c.mu.Unlock()
}

// Cleanup removes expired entries and returns how many were removed.
func (c *Cache) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.removeExpiredLocked(c.now())
}

// Len returns the number of entries, including expired ones not yet removed.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.stats
	s.Entries = len(c.entries)
	return s
}

// storeLocked writes an entry, evicting first if the cache is full.
// Must be called with mu held.
func (c *Cache) storeLocked(key string, value any, ttl time.Duration) {
	now := c.now()
	if _, exists := c.entries[key]; !exists {
		c.evictLocked(now)
	}
	var expires time.Time
	if ttl > 0 {
		expires = now.Add(ttl)
	}
	c.seq++
	c.entries[key] = CacheEntry{Value: value, ExpiresAt: expires, seq: c.seq}
}

// evictLocked makes room for one new entry. Must be called with mu held.
func (c *Cache) evictLocked(now time.Time) {
	if c.maxEntries <= 0 || len(c.entries) < c.maxEntries {
		return
	}
	c.removeExpiredLocked(now)
	for len(c.entries) >= c.maxEntries {
		var oldestKey string
		oldestSeq := ^uint64(0)
		for k, e := range c.entries {
			if e.seq < oldestSeq {
				oldestKey, oldestSeq = k, e.seq
			}
		}
		delete(c.entries, oldestKey)
		c.stats.Evictions++
	}
}

func (c *Cache) removeExpiredLocked(now time.Time) int {
	removed := 0
	for k, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, k)
			removed++
		}
	}
	c.stats.Evictions += uint64(removed)
	return removed
}
