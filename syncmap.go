package meetsync

import (
	"sync"
)

// SyncMap is a synchronized map that can be accessed concurrently.
//
// It provides thread-safe methods for setting, getting, deleting, updating and
// iterating over key-value pairs.
type SyncMap[K comparable, V any] struct {
	sync.RWMutex
	M map[K]V
}

// Set adds or updates a key-value pair in the SyncMap.
func (sm *SyncMap[K, V]) Set(key K, val V) {
	sm.Lock()
	defer sm.Unlock()

	sm.M[key] = val
}

// Get retrieves the value associated with the specified key from the SyncMap.
//
// Returns:
//   - V: The value associated with the key.
//   - bool: True if the key exists in the map, false otherwise.
func (sm *SyncMap[K, V]) Get(key K) (val V, ok bool) {
	sm.RLock()
	defer sm.RUnlock()

	val, ok = sm.M[key]

	return
}

// Del removes the key-value pair with the specified key from the SyncMap.
func (sm *SyncMap[K, V]) Del(key K) {
	sm.Lock()
	defer sm.Unlock()

	delete(sm.M, key)
}

// Update atomically replaces the value of key with the result of fun.
//
// fun receives the current value and whether it exists. When fun returns keep = false the
// key is deleted instead.
//
// Returns:
//   - V: The value before the update.
//   - bool: True if the key existed before the update.
func (sm *SyncMap[K, V]) Update(key K, fun func(old V, ok bool) (val V, keep bool)) (old V, existed bool) {
	sm.Lock()
	defer sm.Unlock()

	old, existed = sm.M[key]
	val, keep := fun(old, existed)
	if keep {
		sm.M[key] = val
	} else {
		delete(sm.M, key)
	}

	return
}

// Len returns the number of key-value pairs in the SyncMap.
func (sm *SyncMap[K, V]) Len() int {
	sm.RLock()
	defer sm.RUnlock()

	return len(sm.M)
}

// Range iterates over each key-value pair in the SyncMap and calls the specified function.
//
// If the function returns false, the iteration stops.
func (sm *SyncMap[K, V]) Range(fun func(K, V) bool) {
	sm.RLock()
	defer sm.RUnlock()

	for k, v := range sm.M {
		if !fun(k, v) {
			return
		}
	}
}

// Clear removes all key-value pairs from the SyncMap.
func (sm *SyncMap[K, V]) Clear() {
	sm.Lock()
	defer sm.Unlock()

	sm.M = make(map[K]V)
}

// Keys returns a slice of keys in the SyncMap.
func (sm *SyncMap[K, V]) Keys() (keys []K) {
	sm.RLock()
	defer sm.RUnlock()

	for k := range sm.M {
		keys = append(keys, k)
	}

	return
}

// Snapshot returns a shallow copy of the underlying map.
func (sm *SyncMap[K, V]) Snapshot() map[K]V {
	sm.RLock()
	defer sm.RUnlock()

	m := make(map[K]V, len(sm.M))
	for k, v := range sm.M {
		m[k] = v
	}

	return m
}

// NewSyncMap creates a new instance of SyncMap.
func NewSyncMap[K comparable, V any]() SyncMap[K, V] {
	return SyncMap[K, V]{M: map[K]V{}}
}
