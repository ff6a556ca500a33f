// Package registry provides a concurrency-safe session registry built on
// sync.Map. Registry supports arbitrary comparable keys and any value type,
// with exactly-once insert and exactly-once remove semantics per key so that
// a session is never double-registered or double-deregistered under
// concurrent accepts and concurrent shutdown.
package registry

import "sync"

// Registry is a concurrent key-value registry that is safe for use by
// multiple goroutines. It wraps sync.Map and exposes a generic, type-safe
// API. Keys must be comparable; values may be any type.
//
// Registry must not be copied after first use. Add, Remove, and Get are
// amortized O(1). Count, Range, and Snapshot are O(n) in the number of
// entries.
type Registry[K comparable, V any] struct {
	m sync.Map
}

// NewRegistry returns a new, empty Registry ready for use.
//
// Returns:
//   - A pointer to a new Registry[K, V]
func NewRegistry[K comparable, V any]() *Registry[K, V] {
	return &Registry[K, V]{}
}

// Add inserts the value for key k only if k is not already present.
// It never overwrites; the first concurrent caller for a given key wins.
//
// Parameters:
//   - k: The key to insert
//   - v: The value to associate with k
//
// Returns:
//   - true if the value was inserted, false if k was already registered
func (r *Registry[K, V]) Add(k K, v V) bool {
	_, loaded := r.m.LoadOrStore(k, v)
	return !loaded
}

// Remove deletes the entry for key k, if present. At most one concurrent
// caller observes the removal for a given registration.
//
// Parameters:
//   - k: The key to remove
//
// Returns:
//   - true if an entry was removed, false if k was not registered
func (r *Registry[K, V]) Remove(k K) bool {
	_, loaded := r.m.LoadAndDelete(k)
	return loaded
}

// Get returns the value for key k and a boolean indicating whether the key
// was present. If the key is not in the registry, the value is the zero
// value for V and the boolean is false.
//
// Parameters:
//   - k: The key to look up
//
// Returns:
//   - The value associated with k, or the zero value of V if not found
//   - true if the key was present, false otherwise
func (r *Registry[K, V]) Get(k K) (V, bool) {
	v, found := r.m.Load(k)
	if !found {
		var empty V
		return empty, found
	}

	return v.(V), found
}

// Has reports whether key k is present in the registry.
//
// Parameters:
//   - k: The key to check
//
// Returns:
//   - true if the key is registered, false otherwise
func (r *Registry[K, V]) Has(k K) bool {
	_, found := r.Get(k)
	return found
}

// Range calls f sequentially for each key and value present in the registry.
// If f returns false, Range stops the iteration. Entries added or removed
// concurrently may or may not be visited.
//
// Parameters:
//   - f: Function called for each entry; return false to stop iteration
func (r *Registry[K, V]) Range(f func(k K, v V) bool) {
	r.m.Range(func(k, v interface{}) bool {
		return f(k.(K), v.(V))
	})
}

// Snapshot returns the values registered at the moment of the call, in
// registry iteration order. The returned slice is owned by the caller;
// later registry mutation does not affect it. Use Snapshot when iteration
// must cover a stable set, such as a broadcast or a shutdown sweep.
//
// Returns:
//   - A slice of the currently registered values
func (r *Registry[K, V]) Snapshot() []V {
	values := make([]V, 0)
	r.Range(func(k K, v V) bool {
		values = append(values, v)
		return true
	})

	return values
}

// Count returns the number of entries in the registry. It iterates over all
// entries to compute the count; use sparingly on large registries.
//
// Returns:
//   - The number of registered entries
func (r *Registry[K, V]) Count() int {
	count := 0
	r.Range(func(k K, v V) bool {
		count++
		return true
	})

	return count
}
