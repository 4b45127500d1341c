package flywheel

import "fmt"

// UnregisteredKeyError is returned by Get when the value's load key was
// never registered. Allowing lookups to load unregistered keys implicitly
// would undermine batching, so the caller must declare the full batch up
// front via Register.
type UnregisteredKeyError struct {
	// Value is the value passed to Get.
	Value any

	// LoadKey is the load key derived from the value.
	LoadKey any

	// CacheKey is the cache key derived from the value.
	CacheKey any
}

// Error returns the error message.
func (e *UnregisteredKeyError) Error() string {
	return fmt.Sprintf("flywheel: value %v was not registered before lookup", e.Value)
}

// MissingProviderError is returned by an Aggregator when a routing key
// does not resolve to any configured data provider.
type MissingProviderError struct {
	// RoutingKey is the key that could not be resolved.
	RoutingKey any
}

// Error returns the error message.
func (e *MissingProviderError) Error() string {
	return fmt.Sprintf("flywheel: no data provider for routing key %v", e.RoutingKey)
}

// UnsupportedOverrideError is returned by a MutableDelegate when an
// override is attempted against a sub-provider that does not implement
// MutableDataProvider. Overriding a backend-only provider never silently
// succeeds or silently no-ops.
type UnsupportedOverrideError struct {
	// Provider is the sub-provider that rejected the override.
	Provider any

	// DelegateKey is the delegate key the value routed to.
	DelegateKey any

	// Value is the value passed to Set.
	Value any
}

// Error returns the error message.
func (e *UnsupportedOverrideError) Error() string {
	return fmt.Sprintf("flywheel: provider %T does not support overrides", e.Provider)
}
