// Package cache provides the precompiled expression cache: a fixed-capacity mapping
// from source text to compiled entries with strict FIFO eviction. An entry is usually
// an ops.Operation, or a unit wrapping one.
//
// # Example
//
//	c := cache.New[ops.Operation](512)
//	op, err := c.GetOrCompile("a.Length > 3", compile)
package cache

import (
	"sync"
)

// DefaultCapacity is used when New is given a capacity of zero or less.
const DefaultCapacity = 256

type slot[V any] struct {
	key   string
	entry V
	used  bool
}

type settings struct {
	lockless bool
}

// Option configures a Cache.
type Option func(*settings)

// WithoutLocking disables internal locking for single-goroutine hosts.
func WithoutLocking() Option {
	return func(s *settings) { s.lockless = true }
}

type noLock struct{}

func (noLock) Lock()   {}
func (noLock) Unlock() {}

// Cache is a ring of slots plus an index by key. Entries are evicted in insertion
// order by an advancing write cursor, never by recency. Setting a key that is already
// present replaces its entry in place without moving it in the eviction order.
//
// Unless built WithoutLocking, a Cache is safe for concurrent use: Get, Set, and Clear
// are mutually exclusive under one lock.
type Cache[V any] struct {
	mu     sync.Locker
	slots  []slot[V]
	index  map[string]int
	cursor int
}

// New creates a cache holding at most capacity entries.
func New[V any](capacity int, opts ...Option) *Cache[V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	var cfg settings
	for _, opt := range opts {
		opt(&cfg)
	}
	c := &Cache[V]{
		mu:    &sync.Mutex{},
		slots: make([]slot[V], capacity),
		index: make(map[string]int, capacity),
	}
	if cfg.lockless {
		c.mu = noLock{}
	}
	return c
}

// Get returns the entry compiled for key.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, ok := c.index[key]
	if !ok {
		var zero V
		return zero, false
	}
	return c.slots[i].entry, true
}

// Set stores entry under key, evicting the oldest entry when the cache is full.
func (c *Cache[V]) Set(key string, entry V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i, ok := c.index[key]; ok {
		c.slots[i].entry = entry
		return
	}

	s := &c.slots[c.cursor]
	if s.used {
		delete(c.index, s.key)
	}
	*s = slot[V]{key: key, entry: entry, used: true}
	c.index[key] = c.cursor
	c.cursor = (c.cursor + 1) % len(c.slots)
}

// GetOrCompile returns the cached entry for key, or compiles, stores and returns it.
// Failed compilations are not cached.
func (c *Cache[V]) GetOrCompile(key string, compile func() (V, error)) (V, error) {
	if entry, ok := c.Get(key); ok {
		return entry, nil
	}
	entry, err := compile()
	if err != nil {
		var zero V
		return zero, err
	}
	c.Set(key, entry)
	return entry, nil
}

// Clear removes every entry and rewinds the write cursor.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.slots)
	clear(c.index)
	c.cursor = 0
}

// Len returns the number of live entries.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.index)
}

// Capacity returns the fixed number of slots.
func (c *Cache[V]) Capacity() int {
	return len(c.slots)
}
