// Package registry maps native handles to their live Go proxies.
//
// Entries hold weak pointers, so the table never keeps a proxy alive. A stale
// entry (the proxy was collected) behaves like a missing one and is dropped
// the next time it is touched.
package registry

import (
	"sync"
	"weak"

	"github.com/obinnaokechukwu/gstgo/internal/native"
)

// Table is a concurrent weak identity map. The zero value is not usable; use
// New.
type Table[T any] struct {
	mu      sync.Mutex
	entries map[native.Handle]weak.Pointer[T]
}

// New returns an empty table.
func New[T any]() *Table[T] {
	return &Table[T]{entries: make(map[native.Handle]weak.Pointer[T])}
}

// Load returns the live proxy for h, or nil.
func (t *Table[T]) Load(h native.Handle) *T {
	if h == 0 {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loadLocked(h)
}

func (t *Table[T]) loadLocked(h native.Handle) *T {
	wp, ok := t.entries[h]
	if !ok {
		return nil
	}
	v := wp.Value()
	if v == nil {
		delete(t.entries, h)
	}
	return v
}

// LoadOrCreate returns the live proxy for h. If there is none, create is
// called while the table is locked and its result is stored, so concurrent
// callers for the same handle always get the same proxy. create must not
// call back into the table.
func (t *Table[T]) LoadOrCreate(h native.Handle, create func() *T) (v *T, created bool) {
	if h == 0 {
		return nil, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if v := t.loadLocked(h); v != nil {
		return v, false
	}
	v = create()
	if v == nil {
		return nil, false
	}
	t.entries[h] = weak.Make(v)
	return v, true
}

// Delete removes the entry for h if it still refers to the same proxy as wp.
// A newer proxy registered for a reused handle is left alone.
func (t *Table[T]) Delete(h native.Handle, wp weak.Pointer[T]) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	cur, ok := t.entries[h]
	if !ok || cur != wp {
		return false
	}
	delete(t.entries, h)
	return true
}

// Len returns the number of entries, stale ones included.
func (t *Table[T]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Reap drops every stale entry and returns how many were removed.
func (t *Table[T]) Reap() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for h, wp := range t.entries {
		if wp.Value() == nil {
			delete(t.entries, h)
			n++
		}
	}
	return n
}
