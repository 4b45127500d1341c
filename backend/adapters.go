package backend

import (
	"context"
	"iter"
	"maps"

	"github.com/karupanerura/flywheel"
	"github.com/karupanerura/flywheel/internal/iterutil"
)

// MapFunc is a fetch function returning a map, adapted to the Backend
// interface. It suits backends that naturally produce keyed results,
// such as a query returning rows indexed by primary key.
type MapFunc[L flywheel.KeyConstraint, C flywheel.KeyConstraint, R flywheel.ValueConstraint] func(ctx context.Context, loadKeys []L) (map[C]R, error)

var _ flywheel.Backend[uint8, uint8, struct{}] = (MapFunc[uint8, uint8, struct{}])(nil)

// Fetch calls the function and yields the entries of the returned map.
func (f MapFunc[L, C, R]) Fetch(ctx context.Context, loadKeys []L) (iter.Seq2[C, R], error) {
	m, err := f(ctx, loadKeys)
	if err != nil {
		return nil, err
	}
	return maps.All(m), nil
}

// Static is an in-memory map backend. It returns data only for the
// requested load keys that appear in the map, which makes it easy to
// simulate a backend that silently drops keys. It is generally only
// used in tests.
type Static[K flywheel.KeyConstraint, R flywheel.ValueConstraint] map[K]R

var _ flywheel.Backend[uint8, uint8, struct{}] = (Static[uint8, struct{}])(nil)

// Fetch yields (key, value) pairs for the requested keys present in the
// map.
func (s Static[K, R]) Fetch(_ context.Context, loadKeys []K) (iter.Seq2[K, R], error) {
	return iter.Seq2[K, R](func(yield func(K, R) bool) {
		for _, key := range loadKeys {
			if value, ok := s[key]; ok {
				if !yield(key, value) {
					return
				}
			}
		}
	}), nil
}

// Dispatcher routes each load key to a named fetch strategy through a
// registered table. A load key whose strategy name is not registered
// produces no data; that is absence, not a fault. Errors from any
// strategy propagate.
type Dispatcher[L flywheel.KeyConstraint, C flywheel.KeyConstraint, R flywheel.ValueConstraint] struct {
	// Resolve maps a load key to the name of the strategy that fetches
	// it.
	Resolve func(loadKey L) string

	// Strategies is the table of named fetch strategies.
	Strategies map[string]flywheel.Backend[L, C, R]
}

var _ flywheel.Backend[uint8, uint8, struct{}] = (*Dispatcher[uint8, uint8, struct{}])(nil)

// Fetch groups the load keys by strategy, fetches each group from its
// strategy, and yields the combined pairs.
func (d *Dispatcher[L, C, R]) Fetch(ctx context.Context, loadKeys []L) (iter.Seq2[C, R], error) {
	var order []string
	groups := map[string][]L{}
	for _, key := range loadKeys {
		name := d.Resolve(key)
		if _, ok := d.Strategies[name]; !ok {
			continue
		}
		if _, ok := groups[name]; !ok {
			order = append(order, name)
		}
		groups[name] = append(groups[name], key)
	}
	if len(order) == 0 {
		return iterutil.Empty2[C, R](), nil
	}

	seqs := make([]iter.Seq2[C, R], len(order))
	for i, name := range order {
		seq, err := d.Strategies[name].Fetch(ctx, groups[name])
		if err != nil {
			return nil, err
		}
		seqs[i] = seq
	}
	return iterutil.Concat2(seqs...), nil
}
