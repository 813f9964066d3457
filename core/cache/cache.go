// Package cache provides capacity-bounded LRU caches owned by the
// component that uses them, including a cache of computed alignments.
package cache

import (
	"encoding/hex"
	"math"
	"strconv"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/zeebo/blake3"

	"github.com/FocuswithJustin/textalign/core/align"
)

// Cache is a generic LRU cache interface.
type Cache[K comparable, V any] interface {
	// Get retrieves a value from the cache.
	Get(key K) (V, bool)

	// Put stores a value in the cache.
	Put(key K, value V)

	// Remove removes a value from the cache.
	Remove(key K)

	// Clear removes all entries from the cache.
	Clear()

	// Len returns the number of entries in the cache.
	Len() int

	// Stats returns cache statistics.
	Stats() Stats
}

// Stats contains cache statistics.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int
	MaxSize   int
}

// Config contains cache configuration options.
type Config struct {
	// MaxSize is the maximum number of entries (0 = unlimited).
	MaxSize int

	// TTL is the time-to-live for entries (0 = no expiration). Expired
	// entries are dropped lazily when next read.
	TTL time.Duration

	// OnEvict is called whenever an entry leaves the cache.
	OnEvict func(key, value any)
}

// DefaultConfig returns a default cache configuration.
func DefaultConfig() Config {
	return Config{
		MaxSize: 256,
	}
}

// entry is a cached value with its expiry time (zero = never).
type entry[V any] struct {
	value   V
	expires time.Time
}

// lruCache adapts a golang-lru cache to Cache and keeps statistics.
// Entries past their TTL are dropped when next read; no background
// goroutine is started.
type lruCache[K comparable, V any] struct {
	mu      sync.Mutex
	store   *lru.Cache[K, entry[V]]
	maxSize int
	ttl     time.Duration
	now     func() time.Time
	stats   Stats
}

// NewLRUCache creates a new LRU cache with the given configuration.
func NewLRUCache[K comparable, V any](config Config) (Cache[K, V], error) {
	if config.MaxSize < 0 {
		config.MaxSize = 0
	}
	capacity := config.MaxSize
	if capacity == 0 {
		capacity = math.MaxInt
	}

	var onEvict func(K, entry[V])
	if config.OnEvict != nil {
		onEvict = func(k K, e entry[V]) { config.OnEvict(k, e.value) }
	}

	s, err := lru.NewWithEvict[K, entry[V]](capacity, onEvict)
	if err != nil {
		return nil, err
	}
	return &lruCache[K, V]{
		store:   s,
		maxSize: config.MaxSize,
		ttl:     config.TTL,
		now:     time.Now,
	}, nil
}

// Get retrieves a value from the cache.
func (c *lruCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.store.Get(key)
	if ok && !e.expires.IsZero() && !c.now().Before(e.expires) {
		c.store.Remove(key)
		ok = false
	}
	if !ok {
		c.stats.Misses++
		var zero V
		return zero, false
	}
	c.stats.Hits++
	return e.value, true
}

// Put stores a value in the cache.
func (c *lruCache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := entry[V]{value: value}
	if c.ttl > 0 {
		e.expires = c.now().Add(c.ttl)
	}
	if evicted := c.store.Add(key, e); evicted {
		c.stats.Evictions++
	}
}

// Remove removes a value from the cache.
func (c *lruCache[K, V]) Remove(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Remove(key)
}

// Clear removes all entries from the cache.
func (c *lruCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Purge()
}

// Len returns the number of entries in the cache.
func (c *lruCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Len()
}

// Stats returns cache statistics.
func (c *lruCache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.stats
	s.Size = c.store.Len()
	s.MaxSize = c.maxSize
	return s
}

// PairKey returns the BLAKE3 hex digest identifying an alignment of base
// and alternate under config.
func PairKey(base, alternate string, config align.Config) string {
	h := blake3.New()
	writeField(h, base)
	writeField(h, alternate)
	for _, esc := range config.Escapes {
		writeField(h, esc)
	}
	writeField(h, strconv.FormatBool(config.AllowLengthMismatch))
	return hex.EncodeToString(h.Sum(nil))
}

// writeField writes a length-prefixed field so that field boundaries are
// part of the digest.
func writeField(h *blake3.Hasher, s string) {
	_, _ = h.WriteString(strconv.Itoa(len(s)))
	_, _ = h.WriteString(":")
	_, _ = h.WriteString(s)
}

// AlignerCache memoizes alignments of rendering pairs.
type AlignerCache struct {
	cache  Cache[string, *align.Aligner]
	config align.Config
}

// NewAlignerCache creates a cache that aligns with alignConfig.
func NewAlignerCache(config Config, alignConfig align.Config) (*AlignerCache, error) {
	c, err := NewLRUCache[string, *align.Aligner](config)
	if err != nil {
		return nil, err
	}
	return &AlignerCache{cache: c, config: alignConfig}, nil
}

// Align returns the cached alignment of base and alternate, computing and
// storing it on a miss.
func (c *AlignerCache) Align(base, alternate string) *align.Aligner {
	key := PairKey(base, alternate, c.config)
	if a, ok := c.cache.Get(key); ok {
		return a
	}
	a := align.NewWithConfig(base, alternate, c.config)
	c.cache.Put(key, a)
	return a
}

// Clear removes all cached alignments.
func (c *AlignerCache) Clear() {
	c.cache.Clear()
}

// Len returns the number of cached alignments.
func (c *AlignerCache) Len() int {
	return c.cache.Len()
}

// Stats returns cache statistics.
func (c *AlignerCache) Stats() Stats {
	return c.cache.Stats()
}
