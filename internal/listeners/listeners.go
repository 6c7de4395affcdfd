// Package listeners implements a copy-on-write listener list keyed by an
// event kind.
//
// Readers take a snapshot without locking and iterate it while writers
// install a fresh slice, so a listener may add or remove listeners from
// inside a callback. A listener removed during a dispatch still runs for that
// dispatch if it had not run yet; a listener added during a dispatch first
// sees the next event.
package listeners

import (
	"sync"
	"sync/atomic"
)

// ID identifies a registered listener. Zero is never issued.
type ID uint64

// Entry is one registered listener.
type Entry[K comparable, F any] struct {
	ID     ID
	Filter K
	Fn     F
}

// List is a set of listeners in registration order.
type List[K comparable, F any] struct {
	all      K
	onActive func(active bool)

	mu      sync.Mutex
	nextID  ID
	entries atomic.Pointer[[]Entry[K, F]]
}

// New creates an empty list. Listeners registered with filter all match every
// kind. onActive, if not nil, is called with true when the list goes from
// empty to non-empty and with false on the way back, exactly once per
// transition. It runs with the list locked and must not modify the list.
func New[K comparable, F any](all K, onActive func(active bool)) *List[K, F] {
	l := &List[K, F]{all: all, onActive: onActive}
	l.entries.Store(&[]Entry[K, F]{})
	return l
}

// Add appends a listener and returns its ID.
func (l *List[K, F]) Add(filter K, fn F) ID {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextID++
	id := l.nextID
	old := *l.entries.Load()
	next := make([]Entry[K, F], len(old), len(old)+1)
	copy(next, old)
	next = append(next, Entry[K, F]{ID: id, Filter: filter, Fn: fn})
	l.entries.Store(&next)

	if len(old) == 0 && l.onActive != nil {
		l.onActive(true)
	}
	return id
}

// Remove unregisters the listener with the given ID. Unknown IDs are ignored.
func (l *List[K, F]) Remove(id ID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	old := *l.entries.Load()
	idx := -1
	for i := range old {
		if old[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	next := make([]Entry[K, F], 0, len(old)-1)
	next = append(next, old[:idx]...)
	next = append(next, old[idx+1:]...)
	l.entries.Store(&next)

	if len(next) == 0 && l.onActive != nil {
		l.onActive(false)
	}
	return true
}

// Clear removes every listener and returns how many there were.
func (l *List[K, F]) Clear() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := len(*l.entries.Load())
	if n == 0 {
		return 0
	}
	l.entries.Store(&[]Entry[K, F]{})
	if l.onActive != nil {
		l.onActive(false)
	}
	return n
}

// Snapshot returns the current listeners. The slice must not be modified.
func (l *List[K, F]) Snapshot() []Entry[K, F] {
	return *l.entries.Load()
}

// Matching returns the listeners, in registration order, whose filter is kind
// or the catch-all kind.
func (l *List[K, F]) Matching(kind K) []Entry[K, F] {
	snap := l.Snapshot()
	out := make([]Entry[K, F], 0, len(snap))
	for _, e := range snap {
		if e.Filter == l.all || e.Filter == kind {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of listeners.
func (l *List[K, F]) Len() int {
	return len(*l.entries.Load())
}

// Active reports whether the list is non-empty.
func (l *List[K, F]) Active() bool {
	return l.Len() > 0
}
