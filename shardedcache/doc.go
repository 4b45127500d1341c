// Package shardedcache provides a bucketed, thread-safe implementation
// of the flywheel Cache interface.
package shardedcache
