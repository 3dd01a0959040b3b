package odb

import (
	"sync"
	"sync/atomic"

	"github.com/pierrec/lz4/v4"

	"github.com/Sumatoshi-tech/treediff/pkg/gitobj"
)

// DefaultCacheSize is the default maximum memory footprint of the object
// cache (64 MB of compressed payloads).
const DefaultCacheSize = 64 * 1024 * 1024

// CachedStore wraps a Store with a size-bounded LRU cache. Payloads are kept
// LZ4 block-compressed; tree objects compress well because of their
// repetitive mode and hash layout.
type CachedStore struct {
	inner Store

	mu          sync.Mutex
	entries     map[gitobj.Hash]*cacheEntry
	head        *cacheEntry // Most recently used.
	tail        *cacheEntry // Least recently used.
	maxSize     int64
	currentSize int64

	// Metrics (atomic for lock-free reads).
	hits   atomic.Int64
	misses atomic.Int64
}

// cacheEntry is a doubly-linked list node for LRU tracking.
type cacheEntry struct {
	hash       gitobj.Hash
	kind       Kind
	data       []byte // Compressed unless rawSize == len(data).
	rawSize    int    // Uncompressed payload length.
	prev, next *cacheEntry
}

// NewCachedStore wraps inner with an LRU cache of at most maxSize bytes of
// stored (compressed) payload.
func NewCachedStore(inner Store, maxSize int64) *CachedStore {
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}

	return &CachedStore{
		inner:   inner,
		entries: make(map[gitobj.Hash]*cacheEntry),
		maxSize: maxSize,
	}
}

// Object serves hash from the cache when possible, falling back to the inner
// store and caching the result. The payload is written into buf either way.
func (c *CachedStore) Object(hash gitobj.Hash, buf *[]byte) (Object, error) {
	if obj, ok := c.cached(hash, buf); ok {
		return obj, nil
	}

	obj, err := c.inner.Object(hash, buf)
	if err != nil {
		return Object{}, err
	}

	c.store(hash, obj)

	return obj, nil
}

// Stats returns cache performance counters.
func (c *CachedStore) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return CacheStats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Entries:     len(c.entries),
		CurrentSize: c.currentSize,
		MaxSize:     c.maxSize,
	}
}

// CacheStats holds cache performance metrics.
type CacheStats struct {
	Hits        int64
	Misses      int64
	Entries     int
	CurrentSize int64
	MaxSize     int64
}

func (c *CachedStore) cached(hash gitobj.Hash, buf *[]byte) (Object, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[hash]
	if !ok {
		c.misses.Add(1)

		return Object{}, false
	}

	c.hits.Add(1)
	c.moveToFront(entry)

	data := grow(*buf, entry.rawSize)
	*buf = data

	if len(entry.data) == entry.rawSize {
		copy(data, entry.data)

		return Object{Kind: entry.kind, Data: data}, true
	}

	if _, err := lz4.UncompressBlock(entry.data, data); err != nil {
		// A block that no longer decompresses is dropped and refetched.
		c.remove(entry)

		return Object{}, false
	}

	return Object{Kind: entry.kind, Data: data}, true
}

func (c *CachedStore) store(hash gitobj.Hash, obj Object) {
	stored := compressPayload(obj.Data)
	size := int64(len(stored))

	// Never cache payloads larger than the entire cache.
	if size > c.maxSize {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[hash]; ok {
		c.moveToFront(entry)

		return
	}

	for c.currentSize+size > c.maxSize && c.tail != nil {
		c.remove(c.tail)
	}

	entry := &cacheEntry{
		hash:    hash,
		kind:    obj.Kind,
		data:    stored,
		rawSize: len(obj.Data),
	}

	c.entries[hash] = entry
	c.currentSize += size
	c.addToFront(entry)
}

// compressPayload LZ4-compresses data, keeping a raw copy when compression
// does not shrink it.
func compressPayload(data []byte) []byte {
	compressed := make([]byte, lz4.CompressBlockBound(len(data)))

	written, err := lz4.CompressBlock(data, compressed, nil)
	if err != nil || written == 0 || written >= len(data) {
		return append([]byte(nil), data...)
	}

	return compressed[:written:written]
}

// grow returns data resized to n bytes, reallocating only when capacity is
// insufficient.
func grow(data []byte, n int) []byte {
	if cap(data) < n {
		return make([]byte, n)
	}

	return data[:n]
}

func (c *CachedStore) moveToFront(entry *cacheEntry) {
	if c.head == entry {
		return
	}

	c.unlink(entry)
	c.addToFront(entry)
}

func (c *CachedStore) addToFront(entry *cacheEntry) {
	entry.prev = nil
	entry.next = c.head

	if c.head != nil {
		c.head.prev = entry
	}

	c.head = entry

	if c.tail == nil {
		c.tail = entry
	}
}

func (c *CachedStore) remove(entry *cacheEntry) {
	c.unlink(entry)
	delete(c.entries, entry.hash)
	c.currentSize -= int64(len(entry.data))
}

func (c *CachedStore) unlink(entry *cacheEntry) {
	if entry.prev != nil {
		entry.prev.next = entry.next
	} else if c.head == entry {
		c.head = entry.next
	}

	if entry.next != nil {
		entry.next.prev = entry.prev
	} else if c.tail == entry {
		c.tail = entry.prev
	}

	entry.prev, entry.next = nil, nil
}
