// Package cache provides a thread-safe LRU cache for compiled path
// expressions.
//
// An evaluator built with WithCaching or WithCache holds one and
// returns it from Evaluator.Cache. Neither the evaluator nor
// treepath.Parse reads from or writes to it; entries are stored and
// fetched only through this package's own methods.
//
// # Example
//
//	c := cache.New(1024)
//	path, err := c.GetOrCompile("/a/b[c]", compile)
package cache

import (
	"sync"

	"github.com/sandrolain/treepath/pkg/types"
)

// node is one slot in the cache's intrusive doubly-linked recency
// list. head is the most recently touched node, tail the least.
type node struct {
	key        string
	path       *types.CompiledPath
	prev, next *node
}

// Cache is a thread-safe LRU (Least Recently Used) cache for compiled
// path expressions. Once capacity is reached, inserting a new key
// evicts the tail of the recency list.
//
// Every access that changes recency (Get, Set) touches the same
// structure, so a single Mutex guards it; there is no separate
// read-only fast path to reason about.
type Cache struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*node
	head     *node
	tail     *node
}

// New creates a new LRU cache with the given capacity.
// capacity must be > 0; if <= 0, a default of 256 is used.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = 256
	}
	return &Cache{
		capacity: capacity,
		items:    make(map[string]*node, capacity),
	}
}

// unlink removes n from the recency list without touching items.
func (c *Cache) unlink(n *node) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		c.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		c.tail = n.prev
	}
	n.prev, n.next = nil, nil
}

// pushFront makes n the most recently used entry.
func (c *Cache) pushFront(n *node) {
	n.prev, n.next = nil, c.head
	if c.head != nil {
		c.head.prev = n
	}
	c.head = n
	if c.tail == nil {
		c.tail = n
	}
}

func (c *Cache) touch(n *node) {
	if c.head == n {
		return
	}
	c.unlink(n)
	c.pushFront(n)
}

// Get retrieves a compiled path from the cache and marks it most
// recently used. Returns (nil, false) if not present.
func (c *Cache) Get(key string) (*types.CompiledPath, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.items[key]
	if !ok {
		return nil, false
	}
	c.touch(n)
	return n.path, true
}

// Set inserts or replaces a compiled path in the cache. If at
// capacity and inserting a new key, the least recently used entry is
// evicted first.
func (c *Cache) Set(key string, path *types.CompiledPath) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.items[key]; ok {
		n.path = path
		c.touch(n)
		return
	}

	if len(c.items) >= c.capacity {
		if c.tail != nil {
			delete(c.items, c.tail.key)
			c.unlink(c.tail)
		}
	}

	n := &node{key: key, path: path}
	c.pushFront(n)
	c.items[key] = n
}

// GetOrCompile retrieves the path for key from the cache, or calls
// compile to build it, caches the result, and returns it. A key that
// is already cached is returned without calling compile. The lock is
// not held while compile runs, so concurrent misses on the same key
// each call compile; errors are not cached.
func (c *Cache) GetOrCompile(key string, compile func() (*types.CompiledPath, error)) (*types.CompiledPath, error) {
	if path, ok := c.Get(key); ok {
		return path, nil
	}
	path, err := compile()
	if err != nil {
		return nil, err
	}
	c.Set(key, path)
	return path, nil
}

// Len returns the number of entries currently in the cache.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Capacity returns the maximum number of entries the cache can hold.
func (c *Cache) Capacity() int {
	return c.capacity
}

// Invalidate removes a single entry from the cache.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n, ok := c.items[key]; ok {
		c.unlink(n)
		delete(c.items, key)
	}
}

// Clear removes all entries from the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*node, c.capacity)
	c.head = nil
	c.tail = nil
}
