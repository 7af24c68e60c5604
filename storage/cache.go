package storage

import (
	"container/list"
	"sync"
)

// sizedLRU is a byte-budgeted LRU cache generic over its value type, used
// both for encoded subpartition blobs ([]byte) and decoded execution
// buffers (column.Buffer), per spec.md §4.6's "bounded in-memory byte cache"
// language applying to both layers.
type sizedLRU[V any] struct {
	mu       sync.Mutex
	maxBytes int64
	curBytes int64
	sizeOf   func(V) int64
	ll       *list.List
	index    map[uint64]*list.Element

	hits      int64
	misses    int64
	evictions int64
}

type lruEntry[V any] struct {
	key   uint64
	value V
	size  int64
}

func newSizedLRU[V any](maxBytes int64, sizeOf func(V) int64) *sizedLRU[V] {
	return &sizedLRU[V]{
		maxBytes: maxBytes,
		sizeOf:   sizeOf,
		ll:       list.New(),
		index:    make(map[uint64]*list.Element),
	}
}

// Get returns the cached value for key, promoting it to most-recently-used.
func (c *sizedLRU[V]) Get(key uint64) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.index[key]
	if !ok {
		c.misses++

		var zero V

		return zero, false
	}

	c.ll.MoveToFront(el)
	c.hits++

	return el.Value.(*lruEntry[V]).value, true
}

// Put inserts or refreshes key, evicting least-recently-used entries until
// the budget is satisfied. A zero value is stored like any other; Remove
// purges an entry without waiting for LRU eviction.
func (c *sizedLRU[V]) Put(key uint64, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	size := c.sizeOf(value)

	if el, ok := c.index[key]; ok {
		c.curBytes -= el.Value.(*lruEntry[V]).size
		el.Value.(*lruEntry[V]).value = value
		el.Value.(*lruEntry[V]).size = size
		c.curBytes += size
		c.ll.MoveToFront(el)
		c.evictIfNeeded()

		return
	}

	el := c.ll.PushFront(&lruEntry[V]{key: key, value: value, size: size})
	c.index[key] = el
	c.curBytes += size
	c.evictIfNeeded()
}

// Remove purges key entirely, used for explicit cache invalidation.
func (c *sizedLRU[V]) Remove(key uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.index[key]
	if !ok {
		return
	}

	c.ll.Remove(el)
	delete(c.index, key)
	c.curBytes -= el.Value.(*lruEntry[V]).size
}

func (c *sizedLRU[V]) evictIfNeeded() {
	for c.curBytes > c.maxBytes && c.ll.Len() > 0 {
		back := c.ll.Back()
		if back == nil {
			break
		}
		entry := back.Value.(*lruEntry[V])
		c.ll.Remove(back)
		delete(c.index, entry.key)
		c.curBytes -= entry.size
		c.evictions++
	}
}

// CacheStats reports a cache's current size and hit/miss/eviction counters
// (spec.md §6 Executor API: "stats() -> {memory, cache hit rate, ...}").
type CacheStats struct {
	Bytes     int64
	Entries   int
	Hits      int64
	Misses    int64
	Evictions int64
}

func (c *sizedLRU[V]) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return CacheStats{
		Bytes:     c.curBytes,
		Entries:   c.ll.Len(),
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}

func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}

	return float64(s.Hits) / float64(total)
}

// byteCache is a sizedLRU of raw byte blobs, sized by their own length.
type byteCache = sizedLRU[[]byte]

func newByteCache(maxBytes int64) *byteCache {
	return newSizedLRU(maxBytes, func(b []byte) int64 { return int64(len(b)) })
}
