// Package cache provides an in-process LRU cache with per-entry expiry.
package cache

// Cache is the behaviour callers depend on.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Size() int
}

// Stats counts lookups since the cache was created.
type Stats struct {
	Hits      int
	Misses    int
	Evictions int
}

var _ Cache[string] = (*LRUCache[string])(nil)
