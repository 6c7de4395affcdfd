//go:build !ios && !android && (amd64 || arm64)

// Package gstgo provides bindings to GStreamer's object model without CGO,
// using purego.
//
// Every native object is represented by exactly one live *Object at a time;
// resolving the same handle twice yields the same pointer, so proxies can be
// compared with ==. Native reference counts are tied to proxy lifetimes:
// a proxy releases its reference when it is disposed or garbage collected,
// and never more than once.
//
// Bus messages posted on GStreamer streaming threads are funnelled into a
// single process-wide dispatch goroutine. Listeners therefore run one at a
// time and see the messages of a bus in the order they were posted.
package gstgo

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"k8s.io/klog"

	"github.com/obinnaokechukwu/gstgo/internal/bindings"
	"github.com/obinnaokechukwu/gstgo/internal/dispatch"
	"github.com/obinnaokechukwu/gstgo/internal/native"
	"github.com/obinnaokechukwu/gstgo/internal/refs"
	"github.com/obinnaokechukwu/gstgo/internal/registry"
)

// runtimeState is everything the proxies of one initialized library share.
type runtimeState struct {
	lib     native.Library
	objects *registry.Table[Object]
	queue   *dispatch.Queue
	objRefs refs.Counter
	msgRefs refs.Counter
	// Bus proxies with an active subscription, by handle.
	pinned sync.Map
}

var (
	initMu  sync.Mutex
	current atomic.Pointer[runtimeState]
	// Set while a timed-out Deinit waits for the dispatch goroutine before
	// shutting GStreamer down.
	deinitPending atomic.Bool
)

func newRuntime(lib native.Library) *runtimeState {
	return &runtimeState{
		lib:     lib,
		objects: registry.New[Object](),
		queue:   dispatch.NewQueue(dispatch.WithName("gstgo-dispatch")),
		objRefs: refs.CounterFuncs{RefFunc: lib.ObjectRef, UnrefFunc: lib.ObjectUnref},
		msgRefs: refs.CounterFuncs{RefFunc: lib.MessageRef, UnrefFunc: lib.MessageUnref},
	}
}

// Init loads the GStreamer libraries, initializes GStreamer and starts the
// dispatch goroutine. It is safe to call multiple times; once initialized,
// later calls return nil and ignore their options.
func Init(opts ...Option) error {
	initMu.Lock()
	defer initMu.Unlock()
	if current.Load() != nil {
		return nil
	}
	if deinitPending.Load() || bindings.Deinitialized() {
		return ErrDeinitialized
	}
	cfg := newConfig(opts)
	if err := bindings.Load(bindings.Config{LibraryDirs: cfg.libraryDirs}); err != nil {
		return fmt.Errorf("%w: %w", ErrNotLoaded, err)
	}
	return startLocked(bindings.Library(), cfg)
}

// startLocked brings up a runtime on lib. initMu must be held.
func startLocked(lib native.Library, cfg *config) error {
	rt := newRuntime(lib)
	if err := rt.queue.Start(); err != nil {
		return err
	}
	if cfg.debugLevelSet {
		lib.SetDebugThreshold(int32(cfg.debugLevel))
	}
	current.Store(rt)

	cb := cfg.logCallback
	if cb == nil && cfg.klog {
		cb = KlogCallback
	}
	if cb != nil {
		if err := SetLogCallback(cb); err != nil {
			klog.Warningf("gstgo: could not install log callback: %v", err)
		}
	}
	major, minor, micro, _ := lib.Version()
	klog.V(1).Infof("gstgo: GStreamer %d.%d.%d initialized", major, minor, micro)
	return nil
}

// Deinit drains the dispatch goroutine, stops routing debug output and shuts
// GStreamer down. Messages already queued are delivered before it returns.
// GStreamer cannot be initialized again afterwards.
//
// If ctx ends first, Deinit returns its error and leaves GStreamer running
// until the dispatch goroutine has finished, so listeners still in flight
// never see a deinitialized library.
func Deinit(ctx context.Context) error {
	initMu.Lock()
	defer initMu.Unlock()
	rt := current.Swap(nil)
	if rt == nil {
		return nil
	}
	err := rt.queue.Stop(ctx)
	rt.pinned.Clear()
	logCallbackMu.Lock()
	logCallback = nil
	logCallbackMu.Unlock()
	if lerr := rt.lib.SetLogFunc(nil); lerr != nil {
		klog.Warningf("gstgo: removing log callback: %v", lerr)
	}
	if err != nil {
		deinitPending.Store(true)
		go func() {
			<-rt.queue.Stopped()
			rt.lib.Deinit()
			deinitPending.Store(false)
			klog.V(1).Info("gstgo: deferred deinit done")
		}()
		return fmt.Errorf("gstgo: dispatch still draining, deinit deferred: %w", err)
	}
	rt.lib.Deinit()
	return nil
}

// IsLoaded reports whether Init has succeeded and Deinit has not been called.
func IsLoaded() bool {
	return current.Load() != nil
}

// Version returns the runtime GStreamer version.
func Version() (major, minor, micro, nano uint32) {
	rt := current.Load()
	if rt == nil {
		return 0, 0, 0, 0
	}
	return rt.lib.Version()
}

func loadedRuntime() (*runtimeState, error) {
	rt := current.Load()
	if rt == nil {
		return nil, ErrNotLoaded
	}
	return rt, nil
}

// ReferenceStats counts native references taken and released by proxies
// and messages since process start.
type ReferenceStats struct {
	Acquired uint64 // new references taken for borrowed handles
	Adopted  uint64 // references handed over by GStreamer
	Released uint64
	Surplus  uint64 // adopted references dropped because a proxy existed
}

// Outstanding is the number of references currently held.
func (s ReferenceStats) Outstanding() int64 {
	return int64(s.Acquired+s.Adopted) - int64(s.Released)
}

// DispatchStats counts dispatch goroutine activity.
type DispatchStats struct {
	Posted   uint64
	Executed uint64
	Panicked uint64
	Pending  int
}

// Stats describes the proxy runtime.
type Stats struct {
	// LiveProxies is the number of proxies the registry still tracks.
	LiveProxies int
	// PinnedBuses is the number of buses kept alive by their listeners or
	// sync handler.
	PinnedBuses int
	References  ReferenceStats
	Dispatch    DispatchStats
}

// ReadStats returns a snapshot of runtime counters.
func ReadStats() Stats {
	r := refs.ReadStats()
	st := Stats{References: ReferenceStats{
		Acquired: r.Acquired,
		Adopted:  r.Adopted,
		Released: r.Released,
		Surplus:  r.Surplus,
	}}
	if rt := current.Load(); rt != nil {
		rt.objects.Reap()
		st.LiveProxies = rt.objects.Len()
		rt.pinned.Range(func(any, any) bool {
			st.PinnedBuses++
			return true
		})
		d := rt.queue.Stats()
		st.Dispatch = DispatchStats{
			Posted:   d.Posted,
			Executed: d.Executed,
			Panicked: d.Panicked,
			Pending:  d.Pending,
		}
	}
	return st
}
