// Package flywheel implements the flywheel batch-loading pattern:
// register the lookup values you are going to need, defer fetching until
// the first cache miss, fetch everything pending in a single backend
// call, and serve every subsequent lookup from an in-memory cache.
//
// The engine is backend-agnostic. A Backend may wrap a database query,
// an external API call, or a pure function; the engine only cares that
// it accepts a batch of load keys and produces (cache key, result)
// pairs. This eliminates N+1 style repeated backend calls without
// changing the shape of per-item lookup code.
//
// Three compositional layers share the same two-operation contract
// (DataProvider), so they can be nested or substituted for one another:
//
//   - Provider: the base register/load/cache engine.
//   - Aggregator: fans a lookup out to several named providers and
//     merges their results.
//   - Delegate: routes each value to one of a lazily created set of
//     keyed sub-providers.
//
// MutableProvider and MutableDelegate additionally let callers inject
// cache entries that backend fetches can never overwrite.
package flywheel
