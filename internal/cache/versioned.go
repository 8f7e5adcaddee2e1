package cache

import (
	"sync"
	"time"

	"github.com/feral-file/ff-token-sweeper/internal/adapter"
)

// Entry is an immutable cached value stamped with its store time and the
// cache version it was written under
type Entry[V any] struct {
	Data     V
	StoredAt time.Time
	Version  int64
}

// Versioned is an in-memory keyed cache with a TTL and a global version
// counter. Bumping the version invalidates every entry at once without
// enumerating keys. Entries are replaced on write, never mutated.
type Versioned[K comparable, V any] struct {
	ttl   time.Duration
	clock adapter.Clock

	mu      sync.RWMutex
	version int64
	entries map[K]Entry[V]
}

// NewVersioned creates a cache whose entries are fresh for ttl
func NewVersioned[K comparable, V any](ttl time.Duration, clock adapter.Clock) *Versioned[K, V] {
	return &Versioned[K, V]{
		ttl:     ttl,
		clock:   clock,
		version: 1,
		entries: make(map[K]Entry[V]),
	}
}

// Get returns the value for key only if it is fresh: stored under the
// current version and younger than the TTL
func (c *Versioned[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	version := c.version
	c.mu.RUnlock()

	if !ok || entry.Version != version || c.clock.Since(entry.StoredAt) >= c.ttl {
		var zero V
		return zero, false
	}
	return entry.Data, true
}

// Current returns the entry for key if it was stored under the current
// version, regardless of age
func (c *Versioned[K, V]) Current(key K) (Entry[V], bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || entry.Version != c.version {
		return Entry[V]{}, false
	}
	return entry, true
}

// Peek returns whatever entry is stored for key, ignoring TTL and version
func (c *Versioned[K, V]) Peek(key K) (Entry[V], bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	return entry, ok
}

// Put replaces the entry for key, stamping it with the current version
func (c *Versioned[K, V]) Put(key K, value V) Entry[V] {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := Entry[V]{
		Data:     value,
		StoredAt: c.clock.Now(),
		Version:  c.version,
	}
	c.entries[key] = entry
	return entry
}

// Version returns the current version
func (c *Versioned[K, V]) Version() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// InvalidateAll bumps the version so every existing entry reads as a miss
// and returns the new version
func (c *Versioned[K, V]) InvalidateAll() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.version++
	return c.version
}
