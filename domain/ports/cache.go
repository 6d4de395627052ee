package ports

import "context"

// LoadFunc produces the value to cache on a miss
type LoadFunc func(ctx context.Context) (any, error)

// ReadCache caches single-entity reads per collection.
type ReadCache interface {
	// Fetch fills dest from the cache, or calls load, caches its result and
	// fills dest with it. Errors from load are returned unchanged.
	Fetch(ctx context.Context, collection, id string, dest any, load LoadFunc) error

	// Invalidate drops every cached entry of collection
	Invalidate(ctx context.Context, collection string) error
}
