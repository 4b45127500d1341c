// Package keyhash provides hash functions for cache shard selection.
package keyhash

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"
	"sync"

	"github.com/goccy/go-reflect"
)

var (
	registryMutex sync.RWMutex

	// registry caches hash functions per concrete key type.
	registry = map[string]func(any) int{}
)

// ForType returns a hash function for the given key type.
// The function is created once per type and cached.
func ForType[K comparable]() func(any) int {
	var zero K
	return forTypeAny(zero)
}

func forTypeAny(t any) func(any) int {
	name := reflect.TypeOf(t).String()

	registryMutex.RLock()
	if f, ok := registry[name]; ok {
		registryMutex.RUnlock()
		return f
	}

	registryMutex.RUnlock()
	registryMutex.Lock()
	defer registryMutex.Unlock()
	if f, ok := registry[name]; ok {
		return f
	}

	f := createKeyHash(t)
	registry[name] = f
	return f
}

// createKeyHash creates a FNV-1a hash function for the given type.
func createKeyHash(t any) func(any) int {
	switch t.(type) {
	case int:
		return func(v any) int { return hashUint64(uint64(v.(int))) }
	case int8:
		return func(v any) int { return hashUint64(uint64(v.(int8))) }
	case int16:
		return func(v any) int { return hashUint64(uint64(v.(int16))) }
	case int32:
		return func(v any) int { return hashUint64(uint64(v.(int32))) }
	case int64:
		return func(v any) int { return hashUint64(uint64(v.(int64))) }
	case uint:
		return func(v any) int { return hashUint64(uint64(v.(uint))) }
	case uint8:
		return func(v any) int { return hashUint64(uint64(v.(uint8))) }
	case uint16:
		return func(v any) int { return hashUint64(uint64(v.(uint16))) }
	case uint32:
		return func(v any) int { return hashUint64(uint64(v.(uint32))) }
	case uint64:
		return func(v any) int { return hashUint64(v.(uint64)) }
	case uintptr:
		panic("keyhash: uintptr cannot be a hash key")
	case float32:
		return func(v any) int { return hashUint64(uint64(math.Float32bits(v.(float32)))) }
	case float64:
		return func(v any) int { return hashUint64(math.Float64bits(v.(float64))) }
	case string:
		return func(v any) int { return hashString(v.(string)) }
	default:
		panic(fmt.Sprintf("keyhash: unsupported key type: %T", t))
	}
}

// hashUint64 computes a 64-bit FNV-1a hash of the big-endian encoding of
// the value.
func hashUint64(v uint64) int {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	h := fnv.New64a()
	_, _ = h.Write(b[:])
	return int(h.Sum64())
}

// hashString computes a 64-bit FNV-1a hash of the string.
func hashString(s string) int {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return int(h.Sum64())
}
