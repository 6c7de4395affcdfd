// Package refs pairs native reference counts with Go lifetimes.
//
// A Ref remembers whether it owns a native reference. Ownership is given up
// exactly once, either by Release or by Dispose, so a native object is never released twice through the same
// Ref no matter how many goroutines race to do it.
package refs

import (
	"runtime"
	"sync/atomic"

	"github.com/obinnaokechukwu/gstgo/internal/native"
)

// Counter increments and decrements a native reference count.
type Counter interface {
	Ref(h native.Handle)
	Unref(h native.Handle)
}

// CounterFuncs adapts a pair of functions to the Counter interface.
type CounterFuncs struct {
	RefFunc   func(native.Handle)
	UnrefFunc func(native.Handle)
}

func (c CounterFuncs) Ref(h native.Handle)   { c.RefFunc(h) }
func (c CounterFuncs) Unref(h native.Handle) { c.UnrefFunc(h) }

// Ref is the bridge-side view of one native reference.
type Ref struct {
	handle   native.Handle
	counter  Counter
	owned    atomic.Bool
	disposed atomic.Bool
}

// New wraps h according to the transfer mode. TransferRef takes a new native
// reference before returning.
func New(c Counter, h native.Handle, transfer native.Transfer) *Ref {
	r := &Ref{handle: h, counter: c}
	switch transfer {
	case native.TransferRef:
		c.Ref(h)
		acquired.Add(1)
		r.owned.Store(true)
	case native.TransferFull:
		adopted.Add(1)
		r.owned.Store(true)
	}
	return r
}

// Adopt wraps a reference the caller already owns.
func Adopt(c Counter, h native.Owned) *Ref {
	return New(c, h.Handle, native.TransferFull)
}

// Borrow wraps a handle without owning a reference. The caller must keep
// the native object alive for as long as it uses the Ref.
func Borrow(c Counter, h native.Borrowed) *Ref {
	return New(c, h.Handle, native.TransferNone)
}

// Handle returns the native handle. It stays valid only while the Ref owns a
// reference or the caller holds one by other means.
func (r *Ref) Handle() native.Handle { return r.handle }

// Owned reports whether the Ref still owns a native reference.
func (r *Ref) Owned() bool { return r.owned.Load() }

// Disposed reports whether Dispose has been called.
func (r *Ref) Disposed() bool { return r.disposed.Load() }

// Release drops the owned reference. It reports whether a reference was
// actually released; a second call, or a call on a borrowed Ref, is a no-op.
func (r *Ref) Release() bool {
	if !r.owned.CompareAndSwap(true, false) {
		return false
	}
	r.counter.Unref(r.handle)
	released.Add(1)
	return true
}

// Dispose marks the Ref unusable and releases its reference if it owns one.
// Only the first call does anything; it reports whether this was that call.
func (r *Ref) Dispose() bool {
	if !r.disposed.CompareAndSwap(false, true) {
		return false
	}
	r.Release()
	return true
}

// Stats counts reference traffic through the bridge since process start.
type Stats struct {
	Acquired uint64 // references taken by New with TransferRef
	Adopted  uint64 // references adopted with TransferFull
	Released uint64 // references released by Release or Dispose
	Surplus  uint64 // adopted references found redundant and dropped
}

// Outstanding is the number of references the bridge currently owns.
func (s Stats) Outstanding() int64 {
	return int64(s.Acquired+s.Adopted) - int64(s.Released)
}

var acquired, adopted, released, surplus atomic.Uint64

// NoteSurplus records that an adopted reference was dropped because a proxy
// for the handle already existed.
func NoteSurplus() { surplus.Add(1) }

// ReadStats returns the current counters.
func ReadStats() Stats {
	return Stats{
		Acquired: acquired.Load(),
		Adopted:  adopted.Load(),
		Released: released.Load(),
		Surplus:  surplus.Load(),
	}
}

// KeepAlive keeps target reachable for as long as owner is reachable. Several
// owners may keep the same target alive. target must not reference owner,
// otherwise neither is ever collected.
func KeepAlive[O, T any](owner *O, target *T) {
	if owner == nil || target == nil || any(owner) == any(target) {
		return
	}
	runtime.AddCleanup(owner, func(t *T) { runtime.KeepAlive(t) }, target)
}
