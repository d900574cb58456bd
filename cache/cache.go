// Package cache memoizes won races by lookup key and candidate adapter set.
// Only winners are stored; failed races may be transient and must stay
// retryable.
package cache

import (
	"container/list"
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/brdata-dev/brlookup/providers"
	"github.com/brdata-dev/brlookup/race"
)

// Resolver is the orchestrator surface the cache fills misses through.
type Resolver interface {
	Resolve(ctx context.Context, key providers.Key, names []string, timeout time.Duration) (*race.Outcome, error)
}

type cacheEntry struct {
	key        string
	outcome    *race.Outcome
	insertedAt time.Time
	element    *list.Element
}

func (e *cacheEntry) isExpired(ttl time.Duration) bool {
	return ttl > 0 && time.Since(e.insertedAt) > ttl
}

// Cache is a bounded in-memory LRU with optional TTL. Thread-safe.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]*cacheEntry
	lruList  *list.List
	capacity int
	ttl      time.Duration
	hits     uint64
	misses   uint64
}

// New creates a cache bounded to capacity entries. A zero or negative ttl
// disables expiry.
func New(capacity int, ttl time.Duration) (*Cache, error) {
	if capacity <= 0 {
		return nil, errors.New("cache capacity must be positive")
	}
	return &Cache{
		entries:  make(map[string]*cacheEntry),
		lruList:  list.New(),
		capacity: capacity,
		ttl:      ttl,
	}, nil
}

// Capacity returns the configured entry bound.
func (c *Cache) Capacity() int { return c.capacity }

// Len returns the current number of cached outcomes.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns cumulative hit and miss counts.
func (c *Cache) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// entryKey combines the normalized lookup key with the sorted candidate set,
// so the same key raced against different adapter sets caches separately.
func entryKey(key providers.Key, names []string) string {
	sorted := make([]string, len(names))
	copy(sorted, names)
	sort.Strings(sorted)
	return string(key.Kind()) + ":" + key.String() + ":" + strings.Join(sorted, ",")
}

// Get returns a cached outcome for the key and adapter set, if present and
// fresh.
func (c *Cache) Get(key providers.Key, names []string) (*race.Outcome, bool) {
	k := entryKey(key, names)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[k]
	if !ok {
		c.misses++
		return nil, false
	}
	if entry.isExpired(c.ttl) {
		c.removeLocked(entry)
		c.misses++
		return nil, false
	}

	c.lruList.MoveToFront(entry.element)
	c.hits++
	return entry.outcome, true
}

// Put stores a won outcome, evicting the least recently used entry when at
// capacity.
func (c *Cache) Put(key providers.Key, names []string, outcome *race.Outcome) {
	if outcome == nil || outcome.Entity == nil {
		return
	}
	k := entryKey(key, names)

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.entries[k]; ok {
		existing.outcome = outcome
		existing.insertedAt = time.Now()
		c.lruList.MoveToFront(existing.element)
		return
	}

	for len(c.entries) >= c.capacity {
		oldest := c.lruList.Back()
		if oldest == nil {
			break
		}
		c.removeLocked(oldest.Value.(*cacheEntry))
	}

	entry := &cacheEntry{key: k, outcome: outcome, insertedAt: time.Now()}
	entry.element = c.lruList.PushFront(entry)
	c.entries[k] = entry
}

// GetOrResolve returns a cached outcome without dispatching, or races the
// adapters on a miss and stores the winner. AllFailed outcomes are never
// cached.
func (c *Cache) GetOrResolve(ctx context.Context, r Resolver, key providers.Key, names []string, timeout time.Duration) (*race.Outcome, bool, error) {
	if outcome, ok := c.Get(key, names); ok {
		return outcome, true, nil
	}

	outcome, err := r.Resolve(ctx, key, names, timeout)
	if err != nil {
		return nil, false, err
	}
	c.Put(key, names, outcome)
	return outcome, false, nil
}

// Purge drops every entry. Counters are kept.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
	c.lruList.Init()
}

func (c *Cache) removeLocked(entry *cacheEntry) {
	c.lruList.Remove(entry.element)
	delete(c.entries, entry.key)
}
