// Package lazymap provides a keyed container with memoized, on-demand
// construction of its entries.
package lazymap
