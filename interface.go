package flywheel

import (
	"context"
	"iter"
)

// KeyConstraint is an interface for key constraints.
type KeyConstraint interface {
	comparable
}

// ValueConstraint is an interface for value constraints.
type ValueConstraint interface {
	any
}

// Backend is an interface for fetching data from a backing store in batches.
// The load keys identify what to request; the produced pairs are keyed by
// cache key, which may differ from the load keys (a single load key may
// produce many cache keys, e.g. a query returning multiple rows).
type Backend[L KeyConstraint, C KeyConstraint, R ValueConstraint] interface {
	// Fetch retrieves data for the given load keys.
	// It returns a finite, single-pass sequence of (cache key, result)
	// pairs; the engine drains it exactly once per batch.
	// The sequence may omit any subset of the requested keys and may
	// produce pairs in any order. Having no data for a load key is not
	// an error; Fetch must not fail just because a key is absent.
	Fetch(ctx context.Context, loadKeys []L) (iter.Seq2[C, R], error)
}

// BackendFunc is a function type that implements the Backend interface.
type BackendFunc[L KeyConstraint, C KeyConstraint, R ValueConstraint] func(ctx context.Context, loadKeys []L) (iter.Seq2[C, R], error)

// Fetch calls the function.
func (f BackendFunc[L, C, R]) Fetch(ctx context.Context, loadKeys []L) (iter.Seq2[C, R], error) {
	return f(ctx, loadKeys)
}

// Cache is a mutable associative store from cache key to result.
// Entries are never evicted; once present, a key's value is stable unless
// explicitly replaced.
type Cache[K KeyConstraint, V ValueConstraint] interface {
	// Get retrieves the value stored under the key.
	// The second return value reports whether the key was present.
	Get(key K) (V, bool)

	// Set stores a value under the key, overwriting any existing value.
	Set(key K, value V)
}

// MapCache is a trivial map-backed Cache.
// It is the default cache of every Provider.
type MapCache[K KeyConstraint, V ValueConstraint] map[K]V

var _ Cache[uint8, struct{}] = (MapCache[uint8, struct{}])(nil)

// NewMapCache creates an empty MapCache.
func NewMapCache[K KeyConstraint, V ValueConstraint]() MapCache[K, V] {
	return MapCache[K, V]{}
}

// Get retrieves the value stored under the key.
func (m MapCache[K, V]) Get(key K) (V, bool) {
	v, ok := m[key]
	return v, ok
}

// Set stores a value under the key.
func (m MapCache[K, V]) Set(key K, value V) {
	m[key] = value
}

// DataProvider is the contract shared by Provider, Aggregator and
// Delegate. Because all three expose the same two operations, they can be
// nested or substituted for one another transparently.
type DataProvider[V any, R ValueConstraint] interface {
	// Register declares the values that will be looked up later, so the
	// provider can plan the bulk queries it needs to run against the
	// backend. Registering a value more than once is safe.
	Register(values ...V) error

	// Get returns the result for the given value, triggering a batch
	// fetch on the first miss.
	Get(ctx context.Context, value V) (R, error)
}

// MutableDataProvider is a DataProvider whose cache can be modified by
// external code. Values set this way override values returned by the
// backend.
type MutableDataProvider[V any, R ValueConstraint] interface {
	DataProvider[V, R]

	// Set stores the result for the given value directly in the cache.
	// Backend fetches will not overwrite it.
	Set(value V, result R) error
}

// LoadKeyFunc derives the backend load key for a value.
// The second return value reports whether a load key exists; a value
// without a load key can never be loaded and always yields the empty
// result.
type LoadKeyFunc[V any, L KeyConstraint] func(value V) (L, bool)

// CacheKeyFunc derives the cache key under which the result for a value
// is stored. The second return value reports whether a cache key exists;
// a value without a cache key always yields the empty result.
type CacheKeyFunc[V any, C KeyConstraint] func(value V) (C, bool)
