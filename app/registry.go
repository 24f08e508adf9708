package app

import "iter"

// registry is a map that remembers the order in which its keys were first inserted.
// Overwriting a key replaces the value but keeps its position. Entries are never removed.
type registry[K comparable, V any] struct {
	keys   []K
	values map[K]V
}

func newRegistry[K comparable, V any]() *registry[K, V] {
	return &registry[K, V]{values: make(map[K]V)}
}

// put stores value under key and reports whether it replaced an earlier value.
func (r *registry[K, V]) put(key K, value V) bool {
	_, exists := r.values[key]
	if !exists {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
	return exists
}

func (r *registry[K, V]) get(key K) (V, bool) {
	value, ok := r.values[key]
	return value, ok
}

func (r *registry[K, V]) len() int {
	return len(r.keys)
}

// all iterates over the entries in insertion order.
func (r *registry[K, V]) all() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, key := range r.keys {
			if !yield(key, r.values[key]) {
				return
			}
		}
	}
}

func (r *registry[K, V]) list() []V {
	values := make([]V, 0, len(r.keys))
	for _, value := range r.all() {
		values = append(values, value)
	}
	return values
}
