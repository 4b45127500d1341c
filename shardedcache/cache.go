package shardedcache

import (
	"sync"

	"github.com/karupanerura/flywheel"
	"github.com/karupanerura/flywheel/internal/keyhash"
)

type bucket[K flywheel.KeyConstraint, V flywheel.ValueConstraint] struct {
	m  map[K]V
	mu sync.RWMutex
}

type shardedCache[K flywheel.KeyConstraint, V flywheel.ValueConstraint] struct {
	buckets []*bucket[K, V]
	options options[K, V]
}

// New creates a sharded in-memory cache.
// The cache distributes keys across multiple buckets using a hash
// function, so that concurrent access to different keys rarely contends
// on the same lock. A Provider already serializes its own cache access;
// this implementation is for caches shared more widely, e.g. between
// several providers or with code outside the library.
func New[K flywheel.KeyConstraint, V flywheel.ValueConstraint](opts ...Option[K, V]) flywheel.Cache[K, V] {
	options := options[K, V]{bucketsSize: DefaultBucketsSize}
	for _, opt := range opts {
		opt.apply(&options)
	}

	if options.bucketsSize == 1 {
		return &singleCache[K, V]{
			bucket: bucket[K, V]{m: map[K]V{}},
		}
	}

	// Resolve the default hash only when buckets actually need one, so
	// a caller-supplied hash works for key types keyhash cannot handle.
	if options.hashKey == nil {
		options.hashKey = keyhash.ForType[K]()
	}

	buckets := make([]*bucket[K, V], options.bucketsSize)
	for i := range buckets {
		buckets[i] = &bucket[K, V]{m: map[K]V{}}
	}

	return &shardedCache[K, V]{
		buckets: buckets,
		options: options,
	}
}

var _ flywheel.Cache[uint8, struct{}] = (*shardedCache[uint8, struct{}])(nil)

// resolveBucket returns the bucket that corresponds to the given key.
func (c *shardedCache[K, V]) resolveBucket(key K) *bucket[K, V] {
	index := c.options.hashKey(key) % len(c.buckets)
	if index < 0 {
		index *= -1
	}
	return c.buckets[index]
}

// Get retrieves the value stored under the key.
func (c *shardedCache[K, V]) Get(key K) (V, bool) {
	bucket := c.resolveBucket(key)
	bucket.mu.RLock()
	defer bucket.mu.RUnlock()

	v, ok := bucket.m[key]
	return v, ok
}

// Set stores a value under the key.
func (c *shardedCache[K, V]) Set(key K, value V) {
	bucket := c.resolveBucket(key)
	bucket.mu.Lock()
	defer bucket.mu.Unlock()

	bucket.m[key] = value
}

type singleCache[K flywheel.KeyConstraint, V flywheel.ValueConstraint] struct {
	bucket[K, V]
}

var _ flywheel.Cache[uint8, struct{}] = (*singleCache[uint8, struct{}])(nil)

// Get retrieves the value stored under the key.
func (c *singleCache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v, ok := c.m[key]
	return v, ok
}

// Set stores a value under the key.
func (c *singleCache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.m[key] = value
}

// Option is the interface for the options of the sharded cache.
type Option[K flywheel.KeyConstraint, V flywheel.ValueConstraint] interface {
	apply(*options[K, V])
}

type optionFunc[K flywheel.KeyConstraint, V flywheel.ValueConstraint] func(*options[K, V])

func (f optionFunc[K, V]) apply(o *options[K, V]) {
	f(o)
}

// DefaultBucketsSize is the default number of buckets in the cache.
var DefaultBucketsSize = 256

// WithKeyHash sets the key hash function of the cache.
func WithKeyHash[K flywheel.KeyConstraint, V flywheel.ValueConstraint](f func(K) int) Option[K, V] {
	return optionFunc[K, V](func(o *options[K, V]) {
		o.hashKey = func(key any) int {
			return f(key.(K))
		}
	})
}

// WithBucketsSize sets the number of buckets in the cache.
// The number of buckets must be a natural number.
func WithBucketsSize[K flywheel.KeyConstraint, V flywheel.ValueConstraint](bucketsSize int) Option[K, V] {
	if bucketsSize <= 0 {
		panic("bucketsSize must be natural number")
	}
	return optionFunc[K, V](func(o *options[K, V]) {
		o.bucketsSize = bucketsSize
	})
}

type options[K flywheel.KeyConstraint, V flywheel.ValueConstraint] struct {
	hashKey     func(any) int
	bucketsSize int
}
