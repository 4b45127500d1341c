package lazymap

import "fmt"

// MissingKeyError is returned by Get when the key is absent and the map
// has no factory to create it with.
type MissingKeyError struct {
	// Key is the key that was looked up.
	Key any
}

// Error returns the error message.
func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("lazymap: no entry for key %v and no factory configured", e.Key)
}

// Map is a keyed container that populates itself on demand: reading an
// absent key invokes the factory with that key, stores the result, and
// returns it. The factory runs at most once per key. Extra arguments
// beyond the key are closure captures of the factory.
//
// Map is not safe for concurrent use.
type Map[K comparable, V any] struct {
	factory func(key K) (V, error)
	entries map[K]V
}

// New creates a Map with the given factory.
// A nil factory is allowed; Get then fails for absent keys with
// *MissingKeyError.
func New[K comparable, V any](factory func(key K) (V, error)) *Map[K, V] {
	return &Map[K, V]{
		factory: factory,
		entries: map[K]V{},
	}
}

// Get returns the value stored under the key, creating it with the
// factory on first access. A factory error propagates and nothing is
// stored, so a later Get retries the creation.
func (m *Map[K, V]) Get(key K) (V, error) {
	if value, ok := m.entries[key]; ok {
		return value, nil
	}
	if m.factory == nil {
		var zero V
		return zero, &MissingKeyError{Key: key}
	}

	value, err := m.factory(key)
	if err != nil {
		var zero V
		return zero, err
	}
	m.entries[key] = value
	return value, nil
}

// Set stores a value under the key, overwriting any existing value.
func (m *Map[K, V]) Set(key K, value V) {
	m.entries[key] = value
}

// Len returns the number of stored entries.
func (m *Map[K, V]) Len() int {
	return len(m.entries)
}
