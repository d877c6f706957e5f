// Package lru is a thread-safe least-recently-used cache with a bounded
// number of entries.
package lru

import "sync"

// Cache maps keys to values, dropping the least recently used entry once it
// holds more than its maximum.
type Cache[K comparable, V any] struct {
	maxEntries int
	onEvict    func(K, V)

	mu      sync.Mutex
	entries map[K]*entry[K, V]
	head    *entry[K, V] // most recently used
	tail    *entry[K, V] // least recently used
}

type entry[K comparable, V any] struct {
	key   K
	value V
	prev  *entry[K, V]
	next  *entry[K, V]
}

// New creates a cache holding at most maxEntries (minimum 1). onEvict, if
// set, receives every entry dropped for capacity or by Purge. It runs after
// the cache lock is released, so it may call back into the cache.
func New[K comparable, V any](maxEntries int, onEvict func(K, V)) *Cache[K, V] {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &Cache[K, V]{
		maxEntries: maxEntries,
		onEvict:    onEvict,
		entries:    make(map[K]*entry[K, V]),
	}
}

// Get returns the value for key and marks it most recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.moveToFront(e)
	return e.value, true
}

// Add stores value under key as the most recently used entry. If key was
// present, its previous value is returned with replaced set; a replaced value
// does not go through onEvict.
func (c *Cache[K, V]) Add(key K, value V) (prev V, replaced bool) {
	c.mu.Lock()

	if e, ok := c.entries[key]; ok {
		prev, replaced = e.value, true
		e.value = value
		c.moveToFront(e)
		c.mu.Unlock()
		return prev, replaced
	}

	e := &entry[K, V]{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	var evicted *entry[K, V]
	if len(c.entries) > c.maxEntries {
		evicted = c.removeTail()
	}
	c.mu.Unlock()

	if evicted != nil && c.onEvict != nil {
		c.onEvict(evicted.key, evicted.value)
	}
	return prev, false
}

// Len returns the number of entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Purge drops every entry, least recently used first.
func (c *Cache[K, V]) Purge() {
	c.mu.Lock()
	var dropped []*entry[K, V]
	for e := c.tail; e != nil; e = e.prev {
		dropped = append(dropped, e)
	}
	c.entries = make(map[K]*entry[K, V])
	c.head, c.tail = nil, nil
	c.mu.Unlock()

	if c.onEvict == nil {
		return
	}
	for _, e := range dropped {
		c.onEvict(e.key, e.value)
	}
}

func (c *Cache[K, V]) moveToFront(e *entry[K, V]) {
	if e == c.head {
		return
	}
	c.unlink(e)
	c.addToFront(e)
}

func (c *Cache[K, V]) addToFront(e *entry[K, V]) {
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

func (c *Cache[K, V]) unlink(e *entry[K, V]) {
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

func (c *Cache[K, V]) removeTail() *entry[K, V] {
	t := c.tail
	if t == nil {
		return nil
	}
	delete(c.entries, t.key)
	c.unlink(t)
	return t
}
