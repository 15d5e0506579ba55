// Package cache holds the small in-process caches used in front of slow
// stores.
package cache

// Cache defines a generic cache interface
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	// Clear drops every entry.
	Clear()
	Size() int
}

// Stats counts lookups since the cache was created.
type Stats struct {
	Hits   int
	Misses int
}
