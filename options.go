package flywheel

// Option is the interface for Provider options.
type Option[V any, L KeyConstraint, C KeyConstraint, R ValueConstraint] interface {
	apply(*Provider[V, L, C, R])
}

type optionFunc[V any, L KeyConstraint, C KeyConstraint, R ValueConstraint] func(*Provider[V, L, C, R])

func (f optionFunc[V, L, C, R]) apply(p *Provider[V, L, C, R]) {
	f(p)
}

// WithEmptyResult sets the factory for the empty result, the value
// returned when no data exists or can exist for a key. The factory is
// invoked per occurrence, so mutable results are not shared between
// cache entries. The default produces the zero value of R.
func WithEmptyResult[V any, L KeyConstraint, C KeyConstraint, R ValueConstraint](emptyResult func() R) Option[V, L, C, R] {
	return optionFunc[V, L, C, R](func(p *Provider[V, L, C, R]) {
		p.emptyResult = emptyResult
	})
}

// WithKeySelection sets the strategy that decides which load keys a
// batch fetch sends to the backend. The hint is the load key that
// triggered the fetch; pending holds every load key registered but not
// yet fetched. The default selects all pending keys, maximizing
// batching.
//
// A strategy that excludes the hint from its selection breaks the
// provider's contract: the lookup that triggered the fetch would find
// its cache key still missing afterwards.
func WithKeySelection[V any, L KeyConstraint, C KeyConstraint, R ValueConstraint](selectKeys func(hint L, pending []L) []L) Option[V, L, C, R] {
	return optionFunc[V, L, C, R](func(p *Provider[V, L, C, R]) {
		p.selectKeys = selectKeys
	})
}

// WithCache sets the cache the provider stores results in.
// The default is an empty MapCache.
func WithCache[V any, L KeyConstraint, C KeyConstraint, R ValueConstraint](cache Cache[C, R]) Option[V, L, C, R] {
	return optionFunc[V, L, C, R](func(p *Provider[V, L, C, R]) {
		p.cache = cache
	})
}
