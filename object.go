//go:build !ios && !android && (amd64 || arm64)

package gstgo

import (
	"fmt"
	"runtime"
	"weak"

	"k8s.io/klog"

	"github.com/obinnaokechukwu/gstgo/internal/native"
	"github.com/obinnaokechukwu/gstgo/internal/refs"
)

// ObjectKind is the most derived type a proxy was created for.
type ObjectKind = native.ObjectKind

// Object kinds.
const (
	KindObject   = native.KindObject
	KindElement  = native.KindElement
	KindBin      = native.KindBin
	KindPipeline = native.KindPipeline
	KindBus      = native.KindBus
)

// Object is the Go proxy of a native GstObject. There is at most one live
// Object per native object; the typed views Element, Bin, Pipeline and Bus
// all wrap the same *Object.
//
// An Object owns a native reference unless it was created for a borrowed
// handle. The reference is released by Dispose or, failing that, when the
// Object is garbage collected. A bus with listeners or a sync handler is not
// collected until they are removed or it is disposed.
type Object struct {
	rt   *runtimeState
	ref  *refs.Ref
	kind ObjectKind
	bus  *busState
}

// objectCleanup must not reference the Object it cleans up after.
type objectCleanup struct {
	rt    *runtimeState
	ref   *refs.Ref
	self  weak.Pointer[Object]
	watch *busWatch
}

func collectObject(c objectCleanup) {
	h := c.ref.Handle()
	if c.watch != nil && c.ref.Owned() && !c.ref.Disposed() {
		// Only this proxy's own subscription; a newer proxy for the same
		// bus may have installed one since.
		c.watch.detach()
	}
	if c.ref.Dispose() {
		klog.V(5).Infof("gstgo: collected %s", h)
	}
	c.rt.objects.Delete(h, c.self)
}

// resolve returns the proxy for h, creating it if needed. The transfer mode
// says what the caller hands over. When a proxy already exists it is
// returned unchanged, and an adopted reference it does not need is released
// straight away.
func (rt *runtimeState) resolve(h native.Handle, fallback ObjectKind, transfer native.Transfer) *Object {
	if h.IsNull() {
		return nil
	}
	kind := rt.lib.ObjectKind(h)
	if kind == native.KindUnknown {
		kind = fallback
	}
	obj, created := rt.objects.LoadOrCreate(h, func() *Object {
		return rt.newObject(h, kind, transfer)
	})
	if !created && transfer == native.TransferFull {
		rt.lib.ObjectUnref(h)
		refs.NoteSurplus()
	}
	return obj
}

// adopt wraps a reference the caller owns.
func (rt *runtimeState) adopt(h native.Owned, fallback ObjectKind) *Object {
	return rt.resolve(h.Handle, fallback, native.TransferFull)
}

// borrow wraps a handle the caller does not own; a new proxy takes its own
// reference.
func (rt *runtimeState) borrow(h native.Borrowed, fallback ObjectKind) *Object {
	return rt.resolve(h.Handle, fallback, native.TransferRef)
}

// peek returns the registered proxy for h if there is one, and otherwise an
// unregistered proxy that holds no reference. Such a proxy is only valid
// while whatever lent h keeps the native object alive.
func (rt *runtimeState) peek(h native.Borrowed, fallback ObjectKind) *Object {
	if h.IsNull() {
		return nil
	}
	if obj := rt.objects.Load(h.Handle); obj != nil && !obj.ref.Disposed() {
		return obj
	}
	kind := rt.lib.ObjectKind(h.Handle)
	if kind == native.KindUnknown {
		kind = fallback
	}
	return &Object{rt: rt, ref: refs.Borrow(rt.objRefs, h), kind: kind}
}

func (rt *runtimeState) newObject(h native.Handle, kind ObjectKind, transfer native.Transfer) *Object {
	obj := &Object{
		rt:   rt,
		ref:  refs.New(rt.objRefs, h, transfer),
		kind: kind,
	}
	self := weak.Make(obj)
	if kind == KindBus {
		obj.bus = newBusState(rt, h, self)
	}
	cleanup := objectCleanup{rt: rt, ref: obj.ref, self: self}
	if obj.bus != nil {
		cleanup.watch = obj.bus.watch
	}
	runtime.AddCleanup(obj, collectObject, cleanup)
	klog.V(5).Infof("gstgo: new %s proxy for %s (transfer %s)", kind, h, transfer)
	return obj
}

// handle returns the native handle, or an error for a nil or disposed proxy.
func (o *Object) handle() (native.Handle, error) {
	if o == nil || o.ref == nil {
		return 0, ErrInvalidHandle
	}
	if o.ref.Disposed() {
		return 0, ErrDisposed
	}
	return o.ref.Handle(), nil
}

// Native returns the address of the native object. It panics if the proxy is
// nil or disposed.
func (o *Object) Native() uintptr {
	h, err := o.handle()
	if err != nil {
		panic(err)
	}
	return uintptr(h)
}

// Kind returns the proxy's kind.
func (o *Object) Kind() ObjectKind {
	if o == nil {
		return native.KindUnknown
	}
	return o.kind
}

// OwnsReference reports whether the proxy holds a native reference.
func (o *Object) OwnsReference() bool {
	return o != nil && o.ref != nil && o.ref.Owned()
}

// IsDisposed reports whether Dispose was called.
func (o *Object) IsDisposed() bool {
	return o == nil || o.ref == nil || o.ref.Disposed()
}

// Name returns the object name, or "" for a nil or disposed proxy.
func (o *Object) Name() string {
	h, err := o.handle()
	if err != nil {
		return ""
	}
	defer runtime.KeepAlive(o)
	return o.rt.lib.ObjectName(h)
}

// Dispose releases the native reference now instead of at garbage collection
// and removes the proxy from the registry. A bus stops delivering messages
// and forgets its listeners and sync handler. Dispose is idempotent; any
// later use of the proxy reports ErrDisposed.
func (o *Object) Dispose() {
	if o == nil || o.ref == nil || o.ref.Disposed() {
		return
	}
	if o.bus != nil {
		o.bus.shutdown()
	}
	o.rt.objects.Delete(o.ref.Handle(), weak.Make(o))
	if o.ref.Dispose() {
		klog.V(5).Infof("gstgo: disposed %s %s", o.kind, o.ref.Handle())
	}
}

func (o *Object) String() string {
	if o == nil || o.ref == nil {
		return "<nil>"
	}
	if o.ref.Disposed() {
		return fmt.Sprintf("%s (disposed)", o.kind)
	}
	return fmt.Sprintf("%s %q (%s)", o.kind, o.Name(), o.ref.Handle())
}

// AsElement returns the element view of o.
func (o *Object) AsElement() (Element, bool) {
	if !o.Kind().IsA(KindElement) {
		return Element{}, false
	}
	return Element{o}, true
}

// AsBin returns the bin view of o.
func (o *Object) AsBin() (Bin, bool) {
	if !o.Kind().IsA(KindBin) {
		return Bin{}, false
	}
	return Bin{Element{o}}, true
}

// AsPipeline returns the pipeline view of o.
func (o *Object) AsPipeline() (Pipeline, bool) {
	if o.Kind() != KindPipeline {
		return Pipeline{}, false
	}
	return Pipeline{Bin{Element{o}}}, true
}

// AsBus returns the bus view of o.
func (o *Object) AsBus() (Bus, bool) {
	if o.Kind() != KindBus {
		return Bus{}, false
	}
	return Bus{o}, true
}
