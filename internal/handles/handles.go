// Package handles maps Go values to integer IDs that can travel through
// native user_data pointers.
//
// Native code may keep a user_data pointer for as long as it likes, so Go
// pointers are never stored there. A callback is registered in a Table and
// its ID is passed instead; the trampoline looks the value up again when
// native code calls back.
package handles

import "sync"

// Table is a thread-safe ID to value map. The zero value is ready to use.
// IDs start at 1 and are never reused, so 0 never names a value.
type Table[T any] struct {
	mu     sync.RWMutex
	values map[uintptr]T
	nextID uintptr
}

// Register stores v and returns its ID. v stays reachable until Unregister.
func (t *Table[T]) Register(v T) uintptr {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.values == nil {
		t.values = make(map[uintptr]T)
	}
	t.nextID++
	t.values[t.nextID] = v
	return t.nextID
}

// Lookup returns the value registered under id.
func (t *Table[T]) Lookup(id uintptr) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.values[id]
	return v, ok
}

// Unregister forgets id and returns the value it named.
func (t *Table[T]) Unregister(id uintptr) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.values[id]
	delete(t.values, id)
	return v, ok
}

// Len returns the number of registered values.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.values)
}
