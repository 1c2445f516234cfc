package detection

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"sync"
	"time"
)

// Cache defaults.
const (
	DefaultCacheSize = 10000
	DefaultCacheTTL  = 7 * 24 * time.Hour
)

type cacheEntry struct {
	result     Result
	insertedAt time.Time
}

// Cache memoizes detection results keyed by a content hash of the
// normalized text. Eviction is insertion-order FIFO, not LRU: reads never
// reorder entries. Expired entries are treated as misses on read rather
// than swept eagerly. Safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	order   []string // insertion order, oldest first
	size    int
	ttl     time.Duration
	now     func() time.Time
}

// NewCache creates a cache bounded to size entries with the given TTL.
// Non-positive arguments fall back to the defaults.
func NewCache(size int, ttl time.Duration) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		entries: make(map[string]cacheEntry, size),
		size:    size,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Key normalizes text (lowercase, trim) and hashes it. MD5 is fine here:
// the hash is a cache key, not a security boundary.
func Key(text string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(text))))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached result for key, or ok=false on a miss. Entries
// past the TTL are misses even if still resident.
func (c *Cache) Get(key string) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return Result{}, false
	}
	if c.now().Sub(entry.insertedAt) > c.ttl {
		return Result{}, false
	}
	return entry.result, true
}

// Put stores a result. When the capacity bound is exceeded the single
// oldest-inserted entry is evicted.
func (c *Cache) Put(key string, result Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		c.order = append(c.order, key)
	}
	c.entries[key] = cacheEntry{result: result, insertedAt: c.now()}

	for len(c.entries) > c.size {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}

// Len reports the number of resident entries, including any not yet
// observed to be expired.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
