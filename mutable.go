package flywheel

// MutableProvider is a Provider whose cache can be modified by external
// code. Values set through it override values returned by the backend:
// once a cache key has been overridden, no backend fetch may overwrite
// it, though the caller can re-override it any number of times.
//
// MutableProvider decorates the wrapped Provider rather than replacing
// it; the wrapped Provider must not be shared with other decorators.
type MutableProvider[V any, L KeyConstraint, C KeyConstraint, R ValueConstraint] struct {
	*Provider[V, L, C, R]

	overridden map[C]struct{}
}

var _ MutableDataProvider[uint8, struct{}] = (*MutableProvider[uint8, uint8, uint8, struct{}])(nil)

// NewMutableProvider wraps a Provider, adding override support.
// It installs a write guard on the wrapped Provider so that
// backend-sourced writes are suppressed for overridden cache keys.
func NewMutableProvider[V any, L KeyConstraint, C KeyConstraint, R ValueConstraint](p *Provider[V, L, C, R]) *MutableProvider[V, L, C, R] {
	m := &MutableProvider[V, L, C, R]{
		Provider:   p,
		overridden: map[C]struct{}{},
	}
	p.writeGuard = m.allowWrite
	return m
}

// Set stores the result for the given value directly in the cache.
//
// Values without a load key or cache key are ignored. The cache key no
// longer needs back-filling once it is set explicitly, so it leaves the
// pending cache-key set; if its load key has no other cache keys
// waiting, the load key leaves the pending set too and no fetch will be
// issued for it. Set never fails; the error return exists to satisfy
// MutableDataProvider.
func (m *MutableProvider[V, L, C, R]) Set(value V, result R) error {
	loadKey, ok := m.loadKey(value)
	if !ok {
		return nil
	}
	cacheKey, ok := m.cacheKey(value)
	if !ok {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if pending := m.pendingCacheKeys[loadKey]; pending != nil {
		delete(pending, cacheKey)
		if len(pending) == 0 {
			delete(m.pendingCacheKeys, loadKey)
			delete(m.pendingLoadKeys, loadKey)
		}
	}

	// Re-arm the protection so repeated overrides are always honored.
	delete(m.overridden, cacheKey)
	m.cache.Set(cacheKey, result)
	m.overridden[cacheKey] = struct{}{}
	return nil
}

// allowWrite reports whether a backend-sourced write for the cache key
// is allowed. Overridden keys reject the write.
func (m *MutableProvider[V, L, C, R]) allowWrite(cacheKey C) bool {
	_, ok := m.overridden[cacheKey]
	return !ok
}
