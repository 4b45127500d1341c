package flywheel

import (
	"context"
	"sync"

	"github.com/karupanerura/flywheel/errctx"
	"github.com/karupanerura/flywheel/lazymap"
)

// DelegateKeyFunc derives the delegate key that decides which
// sub-provider handles a value.
type DelegateKeyFunc[V any, D KeyConstraint] func(value V) D

// ProviderFactory creates the sub-provider for a delegate key. It must
// fail for invalid delegate keys; that error is how "no provider is
// configured for this key" surfaces from the delegate.
type ProviderFactory[V any, D KeyConstraint, R ValueConstraint] func(delegateKey D) (DataProvider[V, R], error)

// Delegate is a data provider that routes each value to exactly one of a
// keyed collection of sub-providers. Sub-providers are created lazily by
// the factory, exactly once per delegate key, and live as long as the
// delegate.
type Delegate[V any, D KeyConstraint, R ValueConstraint] struct {
	delegateKey DelegateKeyFunc[V, D]

	mu        sync.Mutex
	providers *lazymap.Map[D, DataProvider[V, R]]
}

var _ DataProvider[uint8, struct{}] = (*Delegate[uint8, uint8, struct{}])(nil)

// NewDelegate creates a Delegate.
func NewDelegate[V any, D KeyConstraint, R ValueConstraint](delegateKey DelegateKeyFunc[V, D], factory ProviderFactory[V, D, R]) *Delegate[V, D, R] {
	return &Delegate[V, D, R]{
		delegateKey: delegateKey,
		providers:   lazymap.New[D, DataProvider[V, R]](factory),
	}
}

// Register groups the values by delegate key and forwards each group to
// the corresponding sub-provider's Register, creating the sub-provider
// if needed. Factory errors propagate.
func (d *Delegate[V, D, R]) Register(values ...V) error {
	var order []D
	groups := map[D][]V{}
	for _, value := range values {
		key := d.delegateKey(value)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], value)
	}

	for _, key := range order {
		provider, err := d.provider(key)
		if err != nil {
			return err
		}
		if err := provider.Register(groups[key]...); err != nil {
			return err
		}
	}
	return nil
}

// Get resolves the sub-provider for the value and forwards the lookup,
// creating the sub-provider if needed. Factory errors propagate.
func (d *Delegate[V, D, R]) Get(ctx context.Context, value V) (R, error) {
	provider, err := d.provider(d.delegateKey(value))
	if err != nil {
		var zero R
		return zero, err
	}
	return provider.Get(ctx, value)
}

// provider returns the sub-provider for the delegate key, creating it on
// first access.
func (d *Delegate[V, D, R]) provider(key D) (DataProvider[V, R], error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.providers.Get(key)
}

// MutableDelegate is a Delegate that forwards overrides to its
// sub-providers.
type MutableDelegate[V any, D KeyConstraint, R ValueConstraint] struct {
	*Delegate[V, D, R]
}

var _ MutableDataProvider[uint8, struct{}] = (*MutableDelegate[uint8, uint8, struct{}])(nil)

// NewMutableDelegate creates a MutableDelegate.
func NewMutableDelegate[V any, D KeyConstraint, R ValueConstraint](delegateKey DelegateKeyFunc[V, D], factory ProviderFactory[V, D, R]) *MutableDelegate[V, D, R] {
	return &MutableDelegate[V, D, R]{
		Delegate: NewDelegate(delegateKey, factory),
	}
}

// Set forwards the override to the sub-provider the value routes to.
// If that sub-provider does not implement MutableDataProvider, Set fails
// with *UnsupportedOverrideError and the sub-provider's cache is left
// unchanged.
func (d *MutableDelegate[V, D, R]) Set(value V, result R) error {
	delegateKey := d.delegateKey(value)
	provider, err := d.provider(delegateKey)
	if err != nil {
		return err
	}

	mutable, ok := provider.(MutableDataProvider[V, R])
	if !ok {
		return errctx.With(
			&UnsupportedOverrideError{Provider: provider, DelegateKey: delegateKey, Value: value},
			errctx.Fields{"provider": provider, "delegateKey": delegateKey, "value": value},
		)
	}
	return mutable.Set(value, result)
}
