package flywheel

import (
	"context"
	"fmt"
	"sync"

	"github.com/karupanerura/flywheel/errctx"
	"github.com/karupanerura/flywheel/internal/panicutil"
)

// Provider is the base batch-loading data provider.
//
// Values are registered up front; the first Get that misses the cache
// triggers a single backend fetch for every pending load key, and the
// results are parceled out from the cache on subsequent lookups. Cache
// keys the backend leaves out are back-filled with the empty result, so
// a registered value never hangs or fails just because the backend has
// no data for it.
//
// A Provider is safe for concurrent use. All operations share one mutex,
// which is held across the backend fetch; overlapping lookups therefore
// serialize and at most one fetch per provider is in flight at a time.
type Provider[V any, L KeyConstraint, C KeyConstraint, R ValueConstraint] struct {
	backend     Backend[L, C, R]
	loadKey     LoadKeyFunc[V, L]
	cacheKey    CacheKeyFunc[V, C]
	emptyResult func() R
	selectKeys  func(hint L, pending []L) []L
	cache       Cache[C, R]

	// writeGuard filters backend-sourced cache writes. It is installed
	// by NewMutableProvider to protect overridden entries; nil means
	// every write is allowed.
	writeGuard func(C) bool

	mu               sync.Mutex
	pendingLoadKeys  map[L]struct{}
	pendingCacheKeys map[L]map[C]struct{}
}

var _ DataProvider[uint8, struct{}] = (*Provider[uint8, uint8, uint8, struct{}])(nil)

// NewProvider creates a Provider whose cache keys equal its load keys.
func NewProvider[V any, K KeyConstraint, R ValueConstraint](backend Backend[K, K, R], loadKey LoadKeyFunc[V, K], opts ...Option[V, K, K, R]) *Provider[V, K, K, R] {
	return NewProviderWithCacheKey[V, K, K, R](backend, loadKey, CacheKeyFunc[V, K](loadKey), opts...)
}

// NewKeyProvider creates a Provider whose values are the load keys
// themselves. It is the common case of wrapping a bulk query keyed by
// the same identifier the caller looks up with, e.g. users by id.
func NewKeyProvider[K KeyConstraint, R ValueConstraint](backend Backend[K, K, R], opts ...Option[K, K, K, R]) *Provider[K, K, K, R] {
	identity := func(value K) (K, bool) { return value, true }
	return NewProviderWithCacheKey[K, K, K, R](backend, identity, identity, opts...)
}

// NewProviderWithCacheKey creates a Provider with independent load-key
// and cache-key derivations. A single load key may populate many cache
// keys, e.g. when the backend returns a collection of rows per query.
func NewProviderWithCacheKey[V any, L KeyConstraint, C KeyConstraint, R ValueConstraint](backend Backend[L, C, R], loadKey LoadKeyFunc[V, L], cacheKey CacheKeyFunc[V, C], opts ...Option[V, L, C, R]) *Provider[V, L, C, R] {
	p := &Provider[V, L, C, R]{
		backend:          backend,
		loadKey:          loadKey,
		cacheKey:         cacheKey,
		pendingLoadKeys:  map[L]struct{}{},
		pendingCacheKeys: map[L]map[C]struct{}{},
	}
	for _, opt := range opts {
		opt.apply(p)
	}
	if p.emptyResult == nil {
		p.emptyResult = func() R {
			var zero R
			return zero
		}
	}
	if p.selectKeys == nil {
		p.selectKeys = func(_ L, pending []L) []L { return pending }
	}
	if p.cache == nil {
		p.cache = NewMapCache[C, R]()
	}
	return p
}

// Register declares the values that will be looked up later, so the
// provider can plan the bulk query it needs to run against the backend.
//
// Values without a load key or cache key are skipped: the former can
// never be loaded, and the latter could never be retrieved. Values whose
// cache key is already cached are skipped as well, so repeated
// registration is idempotent. Register never fails; the error return
// exists to satisfy DataProvider.
func (p *Provider[V, L, C, R]) Register(values ...V) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, value := range values {
		loadKey, ok := p.loadKey(value)
		if !ok {
			continue
		}
		cacheKey, ok := p.cacheKey(value)
		if !ok {
			continue
		}
		if _, cached := p.cache.Get(cacheKey); cached {
			continue
		}

		p.pendingLoadKeys[loadKey] = struct{}{}
		if p.pendingCacheKeys[loadKey] == nil {
			p.pendingCacheKeys[loadKey] = map[C]struct{}{}
		}
		p.pendingCacheKeys[loadKey][cacheKey] = struct{}{}
	}
	return nil
}

// Get returns the result for the given value.
//
// Values without a cache key or load key yield the empty result. A cache
// hit is returned directly. On a miss, the value's load key must have
// been registered; otherwise Get fails with *UnregisteredKeyError. A
// registered miss triggers one backend fetch covering all pending load
// keys, after which the result is read from the cache.
//
// Backend failures propagate as-is and leave the pending state
// untouched, so a later Get retries the same batch.
func (p *Provider[V, L, C, R]) Get(ctx context.Context, value V) (R, error) {
	cacheKey, ok := p.cacheKey(value)
	if !ok {
		return p.emptyResult(), nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if cached, ok := p.cache.Get(cacheKey); ok {
		return cached, nil
	}

	loadKey, ok := p.loadKey(value)
	if !ok {
		return p.emptyResult(), nil
	}

	if _, registered := p.pendingLoadKeys[loadKey]; !registered {
		var zero R
		return zero, errctx.With(
			&UnregisteredKeyError{Value: value, LoadKey: loadKey, CacheKey: cacheKey},
			errctx.Fields{"value": value, "loadKey": loadKey, "cacheKey": cacheKey},
		)
	}

	if err := p.loadData(ctx, loadKey); err != nil {
		var zero R
		return zero, err
	}

	cached, ok := p.cache.Get(cacheKey)
	if !ok {
		// The batch fetch guarantees every cache key queued under a
		// fetched load key exists afterwards, so this can only happen if
		// a key-selection strategy excluded the requested load key.
		panic(fmt.Sprintf("flywheel: cache key %v missing after batch load", cacheKey))
	}
	return cached, nil
}

// WarmCache eagerly fetches data for every pending load key.
//
// The provider loads data from the backend on demand, so calling this is
// never required; it is mostly useful for debugging and for forcing the
// batch fetch at a known point in time.
func (p *Provider[V, L, C, R]) WarmCache(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.pendingLoadKeys) == 0 {
		return nil
	}
	return p.loadBatch(ctx, p.pendingKeys())
}

// loadData bulk-loads data from the backend in the event of a cache
// miss. The hint is the load key that triggered the miss; the configured
// key-selection strategy decides which pending keys accompany it.
func (p *Provider[V, L, C, R]) loadData(ctx context.Context, hint L) error {
	loadKeys := p.selectKeys(hint, p.pendingKeys())
	if len(loadKeys) == 0 {
		return nil
	}
	return p.loadBatch(ctx, loadKeys)
}

// loadBatch fetches the given load keys from the backend and fills the
// cache. Ordering within a batch: backend results are written first,
// then missing cache keys are back-filled with the empty result, then
// the fetched keys leave the pending sets.
func (p *Provider[V, L, C, R]) loadBatch(ctx context.Context, loadKeys []L) error {
	type pair struct {
		cacheKey C
		result   R
	}

	// Drain the sequence before touching any state so that a failed or
	// panicking backend leaves the provider exactly as it was.
	var pairs []pair
	if err := panicutil.Call(func() error {
		seq, err := p.backend.Fetch(ctx, loadKeys)
		if err != nil {
			return err
		}
		for cacheKey, result := range seq {
			pairs = append(pairs, pair{cacheKey: cacheKey, result: result})
		}
		return nil
	}); err != nil {
		return err
	}

	for _, pr := range pairs {
		p.addToCache(pr.cacheKey, pr.result)
	}

	for _, loadKey := range loadKeys {
		for cacheKey := range p.pendingCacheKeys[loadKey] {
			if _, ok := p.cache.Get(cacheKey); !ok {
				p.addToCache(cacheKey, p.emptyResult())
			}
		}
		delete(p.pendingCacheKeys, loadKey)
	}

	for _, loadKey := range loadKeys {
		delete(p.pendingLoadKeys, loadKey)
	}
	return nil
}

// addToCache writes a backend-sourced value into the cache, unless the
// write guard suppresses it.
func (p *Provider[V, L, C, R]) addToCache(cacheKey C, result R) {
	if p.writeGuard != nil && !p.writeGuard(cacheKey) {
		return
	}
	p.cache.Set(cacheKey, result)
}

// pendingKeys snapshots the pending load-key set.
func (p *Provider[V, L, C, R]) pendingKeys() []L {
	keys := make([]L, 0, len(p.pendingLoadKeys))
	for key := range p.pendingLoadKeys {
		keys = append(keys, key)
	}
	return keys
}
