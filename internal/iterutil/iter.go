package iterutil

import (
	"iter"
)

// Concat2 returns an iterator that yields the pairs of each input
// iterator in turn.
func Concat2[K, V any](seqs ...iter.Seq2[K, V]) iter.Seq2[K, V] {
	return iter.Seq2[K, V](func(yield func(K, V) bool) {
		for _, seq := range seqs {
			for k, v := range seq {
				if !yield(k, v) {
					return
				}
			}
		}
	})
}

// Empty2 returns an iterator that yields nothing.
func Empty2[K, V any]() iter.Seq2[K, V] {
	return iter.Seq2[K, V](func(yield func(K, V) bool) {})
}
