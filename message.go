//go:build !ios && !android && (amd64 || arm64)

package gstgo

import (
	"fmt"
	"runtime"
	"time"

	"k8s.io/klog"

	"github.com/obinnaokechukwu/gstgo/internal/native"
	"github.com/obinnaokechukwu/gstgo/internal/refs"
)

// Message is a GstMessage envelope. Messages are not shared through the
// object registry: each envelope owns one native reference, released by
// Dispose, after delivery, or at garbage collection, whichever comes first.
//
// A message handed to a listener or sync handler is released once every
// listener has seen it. Use Retain to keep it past that point.
type Message struct {
	rt  *runtimeState
	ref *refs.Ref
	typ MessageType
}

func collectMessage(r *refs.Ref) {
	if r.Dispose() {
		klog.V(5).Infof("gstgo: collected message %s", r.Handle())
	}
}

func (rt *runtimeState) adoptMessage(h native.Owned) *Message {
	return rt.wrapMessage(refs.Adopt(rt.msgRefs, h))
}

func (rt *runtimeState) newMessage(h native.Handle, transfer native.Transfer) *Message {
	return rt.wrapMessage(refs.New(rt.msgRefs, h, transfer))
}

func (rt *runtimeState) wrapMessage(ref *refs.Ref) *Message {
	m := &Message{
		rt:  rt,
		ref: ref,
		typ: MessageType(rt.lib.MessageType(ref.Handle())),
	}
	runtime.AddCleanup(m, collectMessage, m.ref)
	return m
}

func (m *Message) handle() (native.Handle, error) {
	if m == nil || m.ref == nil {
		return 0, ErrInvalidHandle
	}
	if m.ref.Disposed() {
		return 0, ErrDisposed
	}
	return m.ref.Handle(), nil
}

func (m *Message) release() {
	if m != nil && m.ref != nil {
		m.ref.Dispose()
	}
}

// Type returns the message kind. It stays valid after Dispose.
func (m *Message) Type() MessageType {
	if m == nil {
		return MessageUnknown
	}
	return m.typ
}

// Native returns the address of the GstMessage. It panics if the message is
// nil or disposed.
func (m *Message) Native() uintptr {
	h, err := m.handle()
	if err != nil {
		panic(err)
	}
	return uintptr(h)
}

// IsDisposed reports whether the message was released.
func (m *Message) IsDisposed() bool {
	return m == nil || m.ref == nil || m.ref.Disposed()
}

// Dispose releases the message now. It is idempotent.
func (m *Message) Dispose() { m.release() }

// Retain returns a new envelope for the same native message, holding its own
// reference. The result stays valid after the original is released.
func (m *Message) Retain() (*Message, error) {
	h, err := m.handle()
	if err != nil {
		return nil, err
	}
	defer runtime.KeepAlive(m)
	return m.rt.newMessage(h, native.TransferRef), nil
}

// Source returns the proxy of the object that posted the message, or nil.
func (m *Message) Source() *Object {
	h, err := m.handle()
	if err != nil {
		return nil
	}
	defer runtime.KeepAlive(m)
	return m.rt.borrow(m.rt.lib.MessageSource(h), KindObject)
}

// PeekSource returns the source without taking a reference when no proxy
// for it exists yet. The result is the registered proxy if there is one;
// otherwise it is an unregistered view whose OwnsReference is false and
// which is only valid while m is. Use Source to keep the object.
func (m *Message) PeekSource() *Object {
	h, err := m.handle()
	if err != nil {
		return nil
	}
	defer runtime.KeepAlive(m)
	return m.rt.peek(m.rt.lib.MessageSource(h), KindObject)
}

// Seqnum returns the message sequence number.
func (m *Message) Seqnum() uint32 {
	h, err := m.handle()
	if err != nil {
		return 0
	}
	defer runtime.KeepAlive(m)
	return m.rt.lib.MessageSeqnum(h)
}

// Timestamp returns the message timestamp. ok is false when none was set.
func (m *Message) Timestamp() (ts time.Duration, ok bool) {
	h, err := m.handle()
	if err != nil {
		return 0, false
	}
	defer runtime.KeepAlive(m)
	t := m.rt.lib.MessageTimestamp(h)
	if t == native.ClockTimeNone {
		return 0, false
	}
	return time.Duration(t), true
}

// StructureName returns the name of the message structure, or "".
func (m *Message) StructureName() string {
	h, err := m.handle()
	if err != nil {
		return ""
	}
	defer runtime.KeepAlive(m)
	return m.rt.lib.MessageStructureName(h)
}

// expect returns the handle if m is of the given kind.
func (m *Message) expect(kind MessageType) (native.Handle, error) {
	h, err := m.handle()
	if err != nil {
		return 0, err
	}
	if m.typ != kind {
		return 0, fmt.Errorf("%w: have %s, want %s", ErrWrongMessageType, m.typ, kind)
	}
	return h, nil
}

func (m *Message) parseGError(kind MessageType, parse func(native.Handle) *GError) (*GError, error) {
	h, err := m.expect(kind)
	if err != nil {
		return nil, err
	}
	defer runtime.KeepAlive(m)
	gerr := parse(h)
	if gerr == nil {
		gerr = &GError{Message: "unknown " + kind.String()}
	}
	return gerr, nil
}

// ParseError returns the error carried by an error message.
func (m *Message) ParseError() (*GError, error) {
	if m == nil || m.rt == nil {
		return nil, ErrInvalidHandle
	}
	return m.parseGError(MessageError, m.rt.lib.ParseError)
}

// ParseWarning returns the error carried by a warning message.
func (m *Message) ParseWarning() (*GError, error) {
	if m == nil || m.rt == nil {
		return nil, ErrInvalidHandle
	}
	return m.parseGError(MessageWarning, m.rt.lib.ParseWarning)
}

// ParseInfo returns the error carried by an info message.
func (m *Message) ParseInfo() (*GError, error) {
	if m == nil || m.rt == nil {
		return nil, ErrInvalidHandle
	}
	return m.parseGError(MessageInfo, m.rt.lib.ParseInfo)
}

// ParseStateChanged returns the states of a state-changed message.
func (m *Message) ParseStateChanged() (old, current, pending State, err error) {
	h, err := m.expect(MessageStateChanged)
	if err != nil {
		return StateVoidPending, StateVoidPending, StateVoidPending, err
	}
	defer runtime.KeepAlive(m)
	sc := m.rt.lib.ParseStateChanged(h)
	return State(sc.Old), State(sc.Current), State(sc.Pending), nil
}

// ParseBuffering returns the fill level of a buffering message, 0 to 100.
func (m *Message) ParseBuffering() (int, error) {
	h, err := m.expect(MessageBuffering)
	if err != nil {
		return 0, err
	}
	defer runtime.KeepAlive(m)
	return int(m.rt.lib.ParseBuffering(h)), nil
}

// ParseSegmentStart returns the format and position of a segment-start
// message.
func (m *Message) ParseSegmentStart() (Format, int64, error) {
	h, err := m.expect(MessageSegmentStart)
	if err != nil {
		return FormatUndefined, 0, err
	}
	defer runtime.KeepAlive(m)
	seg := m.rt.lib.ParseSegmentStart(h)
	return Format(seg.Format), seg.Position, nil
}

// ParseSegmentDone returns the format and position of a segment-done message.
func (m *Message) ParseSegmentDone() (Format, int64, error) {
	h, err := m.expect(MessageSegmentDone)
	if err != nil {
		return FormatUndefined, 0, err
	}
	defer runtime.KeepAlive(m)
	seg := m.rt.lib.ParseSegmentDone(h)
	return Format(seg.Format), seg.Position, nil
}

// ParseTag returns the serialized tag list of a tag message.
func (m *Message) ParseTag() (string, error) {
	h, err := m.expect(MessageTag)
	if err != nil {
		return "", err
	}
	defer runtime.KeepAlive(m)
	return m.rt.lib.ParseTag(h), nil
}

// ParseAsyncDone returns the running time of an async-done message, or -1
// when it carries none.
func (m *Message) ParseAsyncDone() (time.Duration, error) {
	h, err := m.expect(MessageAsyncDone)
	if err != nil {
		return 0, err
	}
	defer runtime.KeepAlive(m)
	t := m.rt.lib.ParseAsyncDone(h)
	if t == native.ClockTimeNone {
		return -1, nil
	}
	return time.Duration(t), nil
}

func (m *Message) String() string {
	if m == nil || m.ref == nil {
		return "<nil message>"
	}
	if m.ref.Disposed() {
		return fmt.Sprintf("%s message (disposed)", m.typ)
	}
	src := "<none>"
	if o := m.Source(); o != nil {
		src = o.Name()
	}
	return fmt.Sprintf("%s message from %s (seqnum %d)", m.typ, src, m.Seqnum())
}

// newMessageFrom runs build with the source handle and wraps the result.
func newMessageFrom(src *Object, build func(lib native.Library, h native.Handle) (native.Owned, error)) (*Message, error) {
	rt, err := loadedRuntime()
	if err != nil {
		return nil, err
	}
	var sh native.Handle
	if src != nil {
		if sh, err = src.handle(); err != nil {
			return nil, err
		}
		defer runtime.KeepAlive(src)
	}
	mh, err := build(rt.lib, sh)
	if err != nil {
		return nil, err
	}
	if mh.IsNull() {
		return nil, fmt.Errorf("gstgo: creating message: %w", ErrInvalidHandle)
	}
	return rt.adoptMessage(mh), nil
}

func plain(fn func(native.Library, native.Handle) native.Owned) func(native.Library, native.Handle) (native.Owned, error) {
	return func(lib native.Library, h native.Handle) (native.Owned, error) {
		return fn(lib, h), nil
	}
}

// NewEOSMessage creates an end-of-stream message. src may be nil.
func NewEOSMessage(src *Object) (*Message, error) {
	return newMessageFrom(src, plain(native.Library.NewEOSMessage))
}

// NewErrorMessage creates an error message carrying err.
func NewErrorMessage(src *Object, err *GError) (*Message, error) {
	if err == nil {
		return nil, fmt.Errorf("gstgo: error message without error: %w", ErrInvalidHandle)
	}
	return newMessageFrom(src, plain(func(lib native.Library, h native.Handle) native.Owned {
		return lib.NewErrorMessage(h, err)
	}))
}

// NewWarningMessage creates a warning message carrying err.
func NewWarningMessage(src *Object, err *GError) (*Message, error) {
	if err == nil {
		return nil, fmt.Errorf("gstgo: warning message without error: %w", ErrInvalidHandle)
	}
	return newMessageFrom(src, plain(func(lib native.Library, h native.Handle) native.Owned {
		return lib.NewWarningMessage(h, err)
	}))
}

// NewInfoMessage creates an info message carrying err.
func NewInfoMessage(src *Object, err *GError) (*Message, error) {
	if err == nil {
		return nil, fmt.Errorf("gstgo: info message without error: %w", ErrInvalidHandle)
	}
	return newMessageFrom(src, plain(func(lib native.Library, h native.Handle) native.Owned {
		return lib.NewInfoMessage(h, err)
	}))
}

// NewStateChangedMessage creates a state-changed message.
func NewStateChangedMessage(src *Object, old, current, pending State) (*Message, error) {
	sc := native.StateChange{Old: int32(old), Current: int32(current), Pending: int32(pending)}
	return newMessageFrom(src, plain(func(lib native.Library, h native.Handle) native.Owned {
		return lib.NewStateChangedMessage(h, sc)
	}))
}

// NewBufferingMessage creates a buffering message. percent is clamped to
// 0..100.
func NewBufferingMessage(src *Object, percent int) (*Message, error) {
	percent = max(0, min(percent, 100))
	return newMessageFrom(src, plain(func(lib native.Library, h native.Handle) native.Owned {
		return lib.NewBufferingMessage(h, int32(percent))
	}))
}

// NewDurationChangedMessage creates a duration-changed message.
func NewDurationChangedMessage(src *Object) (*Message, error) {
	return newMessageFrom(src, plain(native.Library.NewDurationChangedMessage))
}

// NewSegmentStartMessage creates a segment-start message.
func NewSegmentStartMessage(src *Object, format Format, position int64) (*Message, error) {
	seg := native.Segment{Format: int32(format), Position: position}
	return newMessageFrom(src, plain(func(lib native.Library, h native.Handle) native.Owned {
		return lib.NewSegmentStartMessage(h, seg)
	}))
}

// NewSegmentDoneMessage creates a segment-done message.
func NewSegmentDoneMessage(src *Object, format Format, position int64) (*Message, error) {
	seg := native.Segment{Format: int32(format), Position: position}
	return newMessageFrom(src, plain(func(lib native.Library, h native.Handle) native.Owned {
		return lib.NewSegmentDoneMessage(h, seg)
	}))
}

// NewAsyncDoneMessage creates an async-done message. A negative running time
// means none.
func NewAsyncDoneMessage(src *Object, runningTime time.Duration) (*Message, error) {
	rt := clockTimeout(runningTime)
	return newMessageFrom(src, plain(func(lib native.Library, h native.Handle) native.Owned {
		return lib.NewAsyncDoneMessage(h, rt)
	}))
}

// NewTagMessage creates a tag message from a serialized tag list such as
// "taglist, title=(string)Intro".
func NewTagMessage(src *Object, tags string) (*Message, error) {
	return newMessageFrom(src, func(lib native.Library, h native.Handle) (native.Owned, error) {
		return lib.NewTagMessage(h, tags)
	})
}

// NewApplicationMessage creates an application message from a serialized
// structure such as "my-event, count=(int)3".
func NewApplicationMessage(src *Object, structure string) (*Message, error) {
	return newMessageFrom(src, func(lib native.Library, h native.Handle) (native.Owned, error) {
		return lib.NewApplicationMessage(h, structure)
	})
}
