package atomiccowcache

import (
	"sync"
	"sync/atomic"
)

// Cache lazily generates values for keys and serves them without locking once
// generated. Every miss copies the map, so it suits small, read-mostly key
// sets such as per-operation metric attributes.
type Cache[K comparable, V any] struct {
	gen func(K) V

	entries   atomic.Pointer[map[K]V]
	writeLock sync.Mutex
}

func NewCache[K comparable, V any](gen func(K) V) *Cache[K, V] {
	c := &Cache[K, V]{
		gen: gen,
	}
	entries := make(map[K]V)
	c.entries.Store(&entries)
	return c
}

func (c *Cache[K, V]) Get(k K) V {
	if v, ok := (*c.entries.Load())[k]; ok {
		return v
	}

	c.writeLock.Lock()
	defer c.writeLock.Unlock()

	current := *c.entries.Load()
	if v, ok := current[k]; ok {
		return v
	}

	v := c.gen(k)

	updated := make(map[K]V, len(current)+1)
	for ek, ev := range current {
		updated[ek] = ev
	}
	updated[k] = v
	c.entries.Store(&updated)

	return v
}

func (c *Cache[K, V]) Len() int {
	return len(*c.entries.Load())
}
