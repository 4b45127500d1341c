package flywheel

import (
	"context"
	"sync"

	"github.com/karupanerura/flywheel/errctx"
)

// AggregateFunc merges the results collected from the providers a value
// routed to. The results map is keyed by provider key and may hold only
// a subset of the providers, depending on the routing function.
type AggregateFunc[V any, K KeyConstraint, R ValueConstraint] func(value V, results map[K]R) (R, error)

// Aggregator is a data provider that fans each lookup out to several
// named providers and merges their results.
//
// Routing is data-dependent: a value may route to zero, one or many
// providers, and only the providers a value routes to are queried or
// receive its registration. The provider map is built lazily, once, on
// first access.
type Aggregator[V any, K KeyConstraint, R ValueConstraint] struct {
	providers   func() map[K]DataProvider[V, R]
	routingKeys func(value V) []K
	aggregate   AggregateFunc[V, K, R]
}

var _ DataProvider[uint8, struct{}] = (*Aggregator[uint8, uint8, struct{}])(nil)

// NewAggregator creates an Aggregator.
//
// The providers factory is invoked at most once, on first use, and its
// result is reused for the aggregator's lifetime. The aggregate function
// defines the merge policy (concatenation, precedence, structural merge,
// whatever the caller needs).
func NewAggregator[V any, K KeyConstraint, R ValueConstraint](providers func() map[K]DataProvider[V, R], aggregate AggregateFunc[V, K, R], opts ...AggregatorOption[V, K, R]) *Aggregator[V, K, R] {
	a := &Aggregator[V, K, R]{
		providers: sync.OnceValue(providers),
		aggregate: aggregate,
	}
	for _, opt := range opts {
		opt.apply(a)
	}
	return a
}

// AggregatorOption is the interface for Aggregator options.
type AggregatorOption[V any, K KeyConstraint, R ValueConstraint] interface {
	apply(*Aggregator[V, K, R])
}

type aggregatorOptionFunc[V any, K KeyConstraint, R ValueConstraint] func(*Aggregator[V, K, R])

func (f aggregatorOptionFunc[V, K, R]) apply(a *Aggregator[V, K, R]) {
	f(a)
}

// WithRoutingKeys sets the function that decides which providers handle
// a value. The returned keys must correspond to keys of the provider
// map. The default routes every value to all providers.
func WithRoutingKeys[V any, K KeyConstraint, R ValueConstraint](routingKeys func(value V) []K) AggregatorOption[V, K, R] {
	return aggregatorOptionFunc[V, K, R](func(a *Aggregator[V, K, R]) {
		a.routingKeys = routingKeys
	})
}

// Register groups the values by routing key and forwards each group to
// the corresponding provider's Register. A routing key with no provider
// fails with *MissingProviderError.
func (a *Aggregator[V, K, R]) Register(values ...V) error {
	providers := a.providers()

	var order []K
	groups := map[K][]V{}
	for _, value := range values {
		for _, key := range a.genRoutingKeys(providers, value) {
			if _, ok := providers[key]; !ok {
				return a.missingProvider(key, value)
			}
			if _, ok := groups[key]; !ok {
				order = append(order, key)
			}
			groups[key] = append(groups[key], value)
		}
	}

	for _, key := range order {
		if err := providers[key].Register(groups[key]...); err != nil {
			return err
		}
	}
	return nil
}

// Get queries every provider the value routes to, then merges the
// collected results with the aggregate function.
func (a *Aggregator[V, K, R]) Get(ctx context.Context, value V) (R, error) {
	providers := a.providers()

	results := map[K]R{}
	for _, key := range a.genRoutingKeys(providers, value) {
		provider, ok := providers[key]
		if !ok {
			var zero R
			return zero, a.missingProvider(key, value)
		}

		result, err := provider.Get(ctx, value)
		if err != nil {
			var zero R
			return zero, err
		}
		results[key] = result
	}

	return a.aggregate(value, results)
}

// genRoutingKeys returns the provider keys that should handle the value.
func (a *Aggregator[V, K, R]) genRoutingKeys(providers map[K]DataProvider[V, R], value V) []K {
	if a.routingKeys != nil {
		return a.routingKeys(value)
	}

	keys := make([]K, 0, len(providers))
	for key := range providers {
		keys = append(keys, key)
	}
	return keys
}

func (a *Aggregator[V, K, R]) missingProvider(key K, value V) error {
	return errctx.With(
		&MissingProviderError{RoutingKey: key},
		errctx.Fields{"routingKey": key, "value": value},
	)
}
