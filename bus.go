//go:build !ios && !android && (amd64 || arm64)

package gstgo

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
	"weak"

	"k8s.io/klog"

	"github.com/obinnaokechukwu/gstgo/internal/listeners"
	"github.com/obinnaokechukwu/gstgo/internal/native"
)

// Bus is the view of an Object that is a GstBus.
//
// Listeners registered with Connect run on the dispatch goroutine, one at a
// time, in registration order, for every message of a matching kind. While a
// bus has at least one listener it intercepts everything posted on it;
// without listeners, messages stay in the native queue for Pop and TimedPop.
//
// A bus with listeners or a sync handler stays alive until they are removed
// or the bus is disposed, even if nothing else references it.
type Bus struct{ *Object }

// MessageHandler receives a bus message on the dispatch goroutine. The
// message is released when the handler returns; call Retain to keep it.
type MessageHandler func(bus Bus, msg *Message)

// SyncHandler inspects a message on the thread that posted it, before it is
// queued for the listeners. It must not block.
type SyncHandler func(bus Bus, msg *Message) BusSyncReply

// ListenerID identifies a registered listener.
type ListenerID uint64

type busState struct {
	listeners *listeners.List[MessageType, MessageHandler]
	hook      atomic.Pointer[SyncHandler]
	flushing  atomic.Bool
	watch     *busWatch
	// Elements whose Bus() returned this bus and are kept alive by it.
	kept sync.Map
}

// busWatch owns the native sync handler subscription of one bus proxy. It
// holds no user callbacks, so the proxy's cleanup can use it.
type busWatch struct {
	rt   *runtimeState
	h    native.Handle
	self weak.Pointer[Object]

	mu     sync.Mutex
	token  native.Subscription
	closed bool
}

func newBusState(rt *runtimeState, h native.Handle, self weak.Pointer[Object]) *busState {
	bs := &busState{watch: &busWatch{rt: rt, h: h, self: self}}
	bs.listeners = listeners.New[MessageType, MessageHandler](MessageAny, func(bool) {
		bs.refresh()
	})
	return bs
}

func (bs *busState) syncHandler() SyncHandler {
	if p := bs.hook.Load(); p != nil {
		return *p
	}
	return nil
}

// refresh subscribes while the bus has listeners or a sync handler and
// unsubscribes otherwise.
func (bs *busState) refresh() {
	w := bs.watch
	w.mu.Lock()
	defer w.mu.Unlock()
	if bs.listeners.Active() || bs.hook.Load() != nil {
		w.attachLocked()
	} else {
		w.detachLocked()
	}
}

func (bs *busState) shutdown() {
	bs.hook.Store(nil)
	bs.listeners.Clear()
	w := bs.watch
	w.mu.Lock()
	w.detachLocked()
	w.closed = true
	w.mu.Unlock()
}

func (w *busWatch) attachLocked() {
	if w.token != 0 || w.closed {
		return
	}
	obj := w.self.Value()
	if obj == nil {
		return
	}
	token, err := w.rt.lib.BusSubscribe(w.h, func(msg native.Owned) int {
		return w.rt.onSyncMessage(w.self.Value(), msg)
	})
	if err != nil {
		klog.Errorf("gstgo: bus %s: installing sync handler: %v", w.h, err)
		return
	}
	w.token = token
	w.rt.pinned.Store(w.h, obj)
	klog.V(3).Infof("gstgo: bus %s watch added", w.h)
}

func (w *busWatch) detachLocked() {
	if w.token == 0 {
		return
	}
	w.rt.lib.BusUnsubscribe(w.h, w.token)
	w.token = 0
	if obj := w.self.Value(); obj != nil {
		w.rt.pinned.CompareAndDelete(w.h, obj)
	}
	klog.V(3).Infof("gstgo: bus %s watch removed", w.h)
}

func (w *busWatch) detach() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.detachLocked()
}

// onSyncMessage runs on the posting thread and returns the reply for the
// native bus. Messages handed to the listeners are dropped natively; with no
// listeners they stay queued for Pop.
func (rt *runtimeState) onSyncMessage(obj *Object, owned native.Owned) int {
	if obj == nil || obj.bus == nil || obj.ref.Disposed() {
		rt.lib.MessageUnref(owned.Handle)
		return native.BusPass
	}
	if obj.bus.flushing.Load() {
		rt.lib.MessageUnref(owned.Handle)
		return native.BusDrop
	}
	msg := rt.adoptMessage(owned)
	if hook := obj.bus.syncHandler(); hook != nil {
		if rt.callSyncHandler(hook, Bus{obj}, msg) == BusDrop {
			msg.release()
			return native.BusDrop
		}
	}
	if !obj.bus.listeners.Active() {
		msg.release()
		return native.BusPass
	}
	if err := rt.queue.Post(func() { rt.deliver(obj, msg) }); err != nil {
		klog.V(2).Infof("gstgo: bus %s: leaving %s message queued: %v", obj.ref.Handle(), msg.Type(), err)
		msg.release()
		return native.BusPass
	}
	return native.BusDrop
}

func (rt *runtimeState) callSyncHandler(hook SyncHandler, bus Bus, msg *Message) (reply BusSyncReply) {
	defer func() {
		if r := recover(); r != nil {
			klog.Errorf("gstgo: sync handler panicked on %s message: %v\n%s", msg.Type(), r, debug.Stack())
			reply = BusPass
		}
	}()
	return hook(bus, msg)
}

// deliver runs on the dispatch goroutine. Messages for a bus that was
// disposed after posting are released without being delivered.
func (rt *runtimeState) deliver(obj *Object, msg *Message) {
	defer msg.release()
	if obj.ref.Disposed() {
		klog.V(4).Infof("gstgo: bus %s disposed, skipping %s message", obj.ref.Handle(), msg.Type())
		return
	}
	bus := Bus{obj}
	for _, e := range obj.bus.listeners.Matching(msg.Type()) {
		rt.callListener(bus, ListenerID(e.ID), e.Fn, msg)
	}
}

func (rt *runtimeState) callListener(bus Bus, id ListenerID, fn MessageHandler, msg *Message) {
	defer func() {
		if r := recover(); r != nil {
			klog.Errorf("gstgo: bus listener %d panicked on %s message: %v\n%s", id, msg.Type(), r, debug.Stack())
		}
	}()
	fn(bus, msg)
}

func (b Bus) state() (*busState, error) {
	if _, err := b.handle(); err != nil {
		return nil, err
	}
	if b.bus == nil {
		return nil, ErrNotBus
	}
	return b.bus, nil
}

// Connect registers fn for messages of the given kind; MessageAny matches
// every kind. The same function may be registered several times, each
// registration has its own ID.
func (b Bus) Connect(kind MessageType, fn MessageHandler) (ListenerID, error) {
	if fn == nil {
		return 0, ErrNilHandler
	}
	bs, err := b.state()
	if err != nil {
		return 0, err
	}
	return ListenerID(bs.listeners.Add(kind, fn)), nil
}

// ConnectSignal registers fn for a signal such as "message::state-changed"
// or "message" (every kind).
func (b Bus) ConnectSignal(signal string, fn MessageHandler) (ListenerID, error) {
	kind, err := ParseSignal(signal)
	if err != nil {
		return 0, err
	}
	return b.Connect(kind, fn)
}

// Disconnect removes a listener. Unknown IDs are ignored. It is safe to call
// from inside a listener; see Connect for what the current dispatch sees.
func (b Bus) Disconnect(id ListenerID) bool {
	if b.Object == nil || b.bus == nil {
		return false
	}
	return b.bus.listeners.Remove(listeners.ID(id))
}

// ListenerCount returns the number of registered listeners.
func (b Bus) ListenerCount() int {
	if b.Object == nil || b.bus == nil {
		return 0
	}
	return b.bus.listeners.Len()
}

// WatchActive reports whether the bus is intercepting messages for its
// listeners, which is the case exactly when it has any. A sync handler alone
// sees every message but does not keep it from the native queue.
func (b Bus) WatchActive() bool {
	return b.ListenerCount() > 0
}

// SetSyncHandler installs fn as the bus sync handler, replacing any previous
// one. It applies to every message intercepted after it returns.
func (b Bus) SetSyncHandler(fn SyncHandler) error {
	if fn == nil {
		return ErrNilHandler
	}
	bs, err := b.state()
	if err != nil {
		return err
	}
	bs.hook.Store(&fn)
	bs.refresh()
	return nil
}

// ClearSyncHandler removes the sync handler.
func (b Bus) ClearSyncHandler() {
	if b.Object != nil && b.bus != nil {
		b.bus.hook.Store(nil)
		b.bus.refresh()
	}
}

// HasSyncHandler reports whether a sync handler is installed.
func (b Bus) HasSyncHandler() bool {
	return b.Object != nil && b.bus != nil && b.bus.syncHandler() != nil
}

// Post posts m on the bus. It reports false when the bus is flushing. The
// message stays usable by the caller.
func (b Bus) Post(m *Message) (bool, error) {
	bs, err := b.state()
	if err != nil {
		return false, err
	}
	mh, err := m.handle()
	if err != nil {
		return false, err
	}
	if bs.flushing.Load() {
		return false, nil
	}
	defer runtime.KeepAlive(b.Object)
	defer runtime.KeepAlive(m)
	b.rt.lib.MessageRef(mh)
	return b.rt.lib.BusPost(b.ref.Handle(), native.Owned{Handle: mh}), nil
}

// SetFlushing makes the bus drop queued messages and refuse new ones until
// it is called again with false.
func (b Bus) SetFlushing(flushing bool) error {
	bs, err := b.state()
	if err != nil {
		return err
	}
	defer runtime.KeepAlive(b.Object)
	bs.flushing.Store(flushing)
	b.rt.lib.BusSetFlushing(b.ref.Handle(), flushing)
	return nil
}

// IsFlushing reports whether SetFlushing(true) is in effect.
func (b Bus) IsFlushing() bool {
	return b.Object != nil && b.bus != nil && b.bus.flushing.Load()
}

// Pop returns the next queued message, or nil if there is none.
func (b Bus) Pop() (*Message, error) {
	return b.TimedPop(0)
}

// TimedPop waits up to timeout for a queued message and returns nil if none
// arrives. A negative timeout waits forever. Only buses without listeners
// queue messages.
func (b Bus) TimedPop(timeout time.Duration) (*Message, error) {
	if _, err := b.state(); err != nil {
		return nil, err
	}
	defer runtime.KeepAlive(b.Object)
	mh := b.rt.lib.BusTimedPop(b.ref.Handle(), clockTimeout(timeout))
	if mh.IsNull() {
		return nil, nil
	}
	return b.rt.adoptMessage(mh), nil
}

// OnMessage registers fn for every message.
func (b Bus) OnMessage(fn MessageHandler) (ListenerID, error) {
	return b.Connect(MessageAny, fn)
}

// OnEOS registers fn for end-of-stream messages.
func (b Bus) OnEOS(fn func(src *Object)) (ListenerID, error) {
	if fn == nil {
		return 0, ErrNilHandler
	}
	return b.Connect(MessageEOS, func(_ Bus, m *Message) { fn(m.Source()) })
}

func (b Bus) onGError(kind MessageType, parse func(*Message) (*GError, error), fn func(src *Object, err *GError)) (ListenerID, error) {
	if fn == nil {
		return 0, ErrNilHandler
	}
	return b.Connect(kind, func(_ Bus, m *Message) {
		gerr, err := parse(m)
		if err != nil {
			klog.Warningf("gstgo: parsing %s message: %v", kind, err)
			return
		}
		fn(m.Source(), gerr)
	})
}

// OnError registers fn for error messages.
func (b Bus) OnError(fn func(src *Object, err *GError)) (ListenerID, error) {
	return b.onGError(MessageError, (*Message).ParseError, fn)
}

// OnWarning registers fn for warning messages.
func (b Bus) OnWarning(fn func(src *Object, err *GError)) (ListenerID, error) {
	return b.onGError(MessageWarning, (*Message).ParseWarning, fn)
}

// OnInfo registers fn for info messages.
func (b Bus) OnInfo(fn func(src *Object, err *GError)) (ListenerID, error) {
	return b.onGError(MessageInfo, (*Message).ParseInfo, fn)
}

// OnStateChanged registers fn for state-changed messages.
func (b Bus) OnStateChanged(fn func(src *Object, old, current, pending State)) (ListenerID, error) {
	if fn == nil {
		return 0, ErrNilHandler
	}
	return b.Connect(MessageStateChanged, func(_ Bus, m *Message) {
		old, cur, pending, err := m.ParseStateChanged()
		if err != nil {
			return
		}
		fn(m.Source(), old, cur, pending)
	})
}

// OnTag registers fn for tag messages. tags is the serialized tag list.
func (b Bus) OnTag(fn func(src *Object, tags string)) (ListenerID, error) {
	if fn == nil {
		return 0, ErrNilHandler
	}
	return b.Connect(MessageTag, func(_ Bus, m *Message) {
		tags, err := m.ParseTag()
		if err != nil {
			return
		}
		fn(m.Source(), tags)
	})
}

// OnBuffering registers fn for buffering messages.
func (b Bus) OnBuffering(fn func(src *Object, percent int)) (ListenerID, error) {
	if fn == nil {
		return 0, ErrNilHandler
	}
	return b.Connect(MessageBuffering, func(_ Bus, m *Message) {
		percent, err := m.ParseBuffering()
		if err != nil {
			return
		}
		fn(m.Source(), percent)
	})
}

// OnDurationChanged registers fn for duration-changed messages.
func (b Bus) OnDurationChanged(fn func(src *Object)) (ListenerID, error) {
	if fn == nil {
		return 0, ErrNilHandler
	}
	return b.Connect(MessageDurationChanged, func(_ Bus, m *Message) { fn(m.Source()) })
}

// OnSegmentStart registers fn for segment-start messages.
func (b Bus) OnSegmentStart(fn func(src *Object, format Format, position int64)) (ListenerID, error) {
	if fn == nil {
		return 0, ErrNilHandler
	}
	return b.Connect(MessageSegmentStart, func(_ Bus, m *Message) {
		format, pos, err := m.ParseSegmentStart()
		if err != nil {
			return
		}
		fn(m.Source(), format, pos)
	})
}

// OnSegmentDone registers fn for segment-done messages.
func (b Bus) OnSegmentDone(fn func(src *Object, format Format, position int64)) (ListenerID, error) {
	if fn == nil {
		return 0, ErrNilHandler
	}
	return b.Connect(MessageSegmentDone, func(_ Bus, m *Message) {
		format, pos, err := m.ParseSegmentDone()
		if err != nil {
			return
		}
		fn(m.Source(), format, pos)
	})
}

// OnAsyncDone registers fn for async-done messages.
func (b Bus) OnAsyncDone(fn func(src *Object, runningTime time.Duration)) (ListenerID, error) {
	if fn == nil {
		return 0, ErrNilHandler
	}
	return b.Connect(MessageAsyncDone, func(_ Bus, m *Message) {
		rt, err := m.ParseAsyncDone()
		if err != nil {
			return
		}
		fn(m.Source(), rt)
	})
}

func (b Bus) String() string {
	if b.Object == nil {
		return "bus <nil>"
	}
	return fmt.Sprintf("%s with %d listeners", b.Object, b.ListenerCount())
}
