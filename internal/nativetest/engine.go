// Package nativetest provides an in-memory stand-in for the GStreamer
// libraries. It keeps real reference counts, so tests can assert that the
// proxy runtime neither leaks nor over-releases native objects, and its buses
// call sync handlers on the posting goroutine the way GStreamer does.
package nativetest

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/obinnaokechukwu/gstgo/internal/native"
)

var defaultFactories = []string{
	"fakesrc", "fakesink", "identity", "queue", "tee",
	"videotestsrc", "audiotestsrc", "videoconvert", "audioconvert",
	"autovideosink", "autoaudiosink", "capsfilter", "appsrc", "appsink",
}

type object struct {
	kind   native.ObjectKind
	name   string
	refs   int32
	freed  bool
	parent native.Handle

	// bins
	children []native.Handle
	// pipelines
	bus native.Handle
	// elements
	state    int32
	links    []native.Handle
	position int64
	duration int64

	// buses
	sync        native.SyncFunc
	syncID      native.Subscription
	flushing    bool
	queue       []native.Handle
	subscribes  int
	unsubscribe int
}

type message struct {
	typ    uint32
	src    native.Handle
	refs   int32
	freed  bool
	seqnum uint32

	structure   string
	gerr        *native.GError
	change      native.StateChange
	percent     int32
	segment     native.Segment
	tags        string
	runningTime uint64
}

// Engine implements native.Library in memory.
type Engine struct {
	mu        sync.Mutex
	next      native.Handle
	seqnum    uint32
	nextSub   native.Subscription
	objects   map[native.Handle]*object
	messages  map[native.Handle]*message
	factories map[string]bool
	names     map[string]int
	problems  []string
	threshold int32
	logFn     native.LogFunc
	deinit    bool
}

var _ native.Library = (*Engine)(nil)

// NewEngine returns an engine that knows the usual core and base factories.
func NewEngine() *Engine {
	e := &Engine{
		next:      0x1000,
		objects:   make(map[native.Handle]*object),
		messages:  make(map[native.Handle]*message),
		factories: make(map[string]bool),
		names:     make(map[string]int),
	}
	for _, f := range defaultFactories {
		e.factories[f] = true
	}
	return e
}

// RegisterFactory makes ElementFactoryMake accept name.
func (e *Engine) RegisterFactory(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.factories[name] = true
}

func (e *Engine) allocLocked() native.Handle {
	e.next += 0x10
	return e.next
}

func (e *Engine) problemf(format string, args ...any) {
	e.problems = append(e.problems, fmt.Sprintf(format, args...))
}

func (e *Engine) newObjectLocked(kind native.ObjectKind, name string) native.Handle {
	h := e.allocLocked()
	e.objects[h] = &object{kind: kind, name: name, refs: 1, state: native.StateNull}
	return h
}

func (e *Engine) autoNameLocked(prefix string) string {
	n := e.names[prefix]
	e.names[prefix] = n + 1
	return fmt.Sprintf("%s%d", prefix, n)
}

func (e *Engine) liveObjectLocked(h native.Handle, op string) *object {
	o, ok := e.objects[h]
	if !ok {
		e.problemf("%s: unknown object %s", op, h)
		return nil
	}
	if o.freed {
		e.problemf("%s: use of freed object %s (%s)", op, h, o.name)
		return nil
	}
	return o
}

func (e *Engine) liveMessageLocked(m native.Handle, op string) *message {
	msg, ok := e.messages[m]
	if !ok {
		e.problemf("%s: unknown message %s", op, m)
		return nil
	}
	if msg.freed {
		e.problemf("%s: use of freed message %s", op, m)
		return nil
	}
	return msg
}

func (e *Engine) unrefObjectLocked(h native.Handle) {
	o := e.liveObjectLocked(h, "gst_object_unref")
	if o == nil {
		return
	}
	o.refs--
	if o.refs > 0 {
		return
	}
	o.freed = true
	for _, c := range o.children {
		e.unrefObjectLocked(c)
	}
	o.children = nil
	if o.bus != 0 {
		e.unrefObjectLocked(o.bus)
		o.bus = 0
	}
	for _, m := range o.queue {
		e.unrefMessageLocked(m)
	}
	o.queue = nil
	o.sync = nil
	o.syncID = 0
}

func (e *Engine) unrefMessageLocked(m native.Handle) {
	msg := e.liveMessageLocked(m, "gst_message_unref")
	if msg == nil {
		return
	}
	msg.refs--
	if msg.refs > 0 {
		return
	}
	msg.freed = true
	if msg.src != 0 {
		e.unrefObjectLocked(msg.src)
	}
}

// Version implements native.Library.
func (e *Engine) Version() (major, minor, micro, nano uint32) { return 1, 24, 0, 0 }

// Deinit implements native.Library.
func (e *Engine) Deinit() {
	e.mu.Lock()
	e.deinit = true
	e.mu.Unlock()
}

// ObjectRef implements native.Library.
func (e *Engine) ObjectRef(h native.Handle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if o := e.liveObjectLocked(h, "gst_object_ref"); o != nil {
		o.refs++
	}
}

// ObjectUnref implements native.Library.
func (e *Engine) ObjectUnref(h native.Handle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.unrefObjectLocked(h)
}

// ObjectKind implements native.Library.
func (e *Engine) ObjectKind(h native.Handle) native.ObjectKind {
	e.mu.Lock()
	defer e.mu.Unlock()
	if o, ok := e.objects[h]; ok && !o.freed {
		return o.kind
	}
	return native.KindUnknown
}

// ObjectName implements native.Library.
func (e *Engine) ObjectName(h native.Handle) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if o := e.liveObjectLocked(h, "gst_object_get_name"); o != nil {
		return o.name
	}
	return ""
}

// MessageRef implements native.Library.
func (e *Engine) MessageRef(m native.Handle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if msg := e.liveMessageLocked(m, "gst_message_ref"); msg != nil {
		msg.refs++
	}
}

// MessageUnref implements native.Library.
func (e *Engine) MessageUnref(m native.Handle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.unrefMessageLocked(m)
}

func (e *Engine) withMessage(m native.Handle, op string, fn func(*message)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if msg := e.liveMessageLocked(m, op); msg != nil {
		fn(msg)
	}
}

// MessageType implements native.Library.
func (e *Engine) MessageType(m native.Handle) (t uint32) {
	e.withMessage(m, "GST_MESSAGE_TYPE", func(msg *message) { t = msg.typ })
	return t
}

// MessageSource implements native.Library.
func (e *Engine) MessageSource(m native.Handle) (b native.Borrowed) {
	e.withMessage(m, "GST_MESSAGE_SRC", func(msg *message) { b.Handle = msg.src })
	return b
}

// MessageSeqnum implements native.Library.
func (e *Engine) MessageSeqnum(m native.Handle) (n uint32) {
	e.withMessage(m, "gst_message_get_seqnum", func(msg *message) { n = msg.seqnum })
	return n
}

// MessageTimestamp implements native.Library.
func (e *Engine) MessageTimestamp(native.Handle) uint64 { return native.ClockTimeNone }

// MessageStructureName implements native.Library.
func (e *Engine) MessageStructureName(m native.Handle) (s string) {
	e.withMessage(m, "gst_message_get_structure", func(msg *message) { s = msg.structure })
	return s
}

func (e *Engine) parseGError(m native.Handle, want uint32, op string) (out *native.GError) {
	e.withMessage(m, op, func(msg *message) {
		if msg.typ != want {
			e.problemf("%s: message %s has type %#x", op, m, msg.typ)
			return
		}
		if msg.gerr != nil {
			cp := *msg.gerr
			out = &cp
		}
	})
	return out
}

// ParseError implements native.Library.
func (e *Engine) ParseError(m native.Handle) *native.GError {
	return e.parseGError(m, native.MessageError, "gst_message_parse_error")
}

// ParseWarning implements native.Library.
func (e *Engine) ParseWarning(m native.Handle) *native.GError {
	return e.parseGError(m, native.MessageWarning, "gst_message_parse_warning")
}

// ParseInfo implements native.Library.
func (e *Engine) ParseInfo(m native.Handle) *native.GError {
	return e.parseGError(m, native.MessageInfo, "gst_message_parse_info")
}

// ParseStateChanged implements native.Library.
func (e *Engine) ParseStateChanged(m native.Handle) (c native.StateChange) {
	e.withMessage(m, "gst_message_parse_state_changed", func(msg *message) { c = msg.change })
	return c
}

// ParseBuffering implements native.Library.
func (e *Engine) ParseBuffering(m native.Handle) (p int32) {
	e.withMessage(m, "gst_message_parse_buffering", func(msg *message) { p = msg.percent })
	return p
}

// ParseSegmentStart implements native.Library.
func (e *Engine) ParseSegmentStart(m native.Handle) (s native.Segment) {
	e.withMessage(m, "gst_message_parse_segment_start", func(msg *message) { s = msg.segment })
	return s
}

// ParseSegmentDone implements native.Library.
func (e *Engine) ParseSegmentDone(m native.Handle) (s native.Segment) {
	e.withMessage(m, "gst_message_parse_segment_done", func(msg *message) { s = msg.segment })
	return s
}

// ParseTag implements native.Library.
func (e *Engine) ParseTag(m native.Handle) (tags string) {
	e.withMessage(m, "gst_message_parse_tag", func(msg *message) { tags = msg.tags })
	return tags
}

// ParseAsyncDone implements native.Library.
func (e *Engine) ParseAsyncDone(m native.Handle) (rt uint64) {
	e.withMessage(m, "gst_message_parse_async_done", func(msg *message) { rt = msg.runningTime })
	return rt
}

func (e *Engine) newMessage(src native.Handle, typ uint32, structure string, fill func(*message)) native.Owned {
	e.mu.Lock()
	defer e.mu.Unlock()
	if src != 0 {
		o := e.liveObjectLocked(src, "gst_message_new")
		if o == nil {
			return native.Owned{}
		}
		o.refs++
	}
	e.seqnum++
	msg := &message{typ: typ, src: src, refs: 1, seqnum: e.seqnum, structure: structure}
	if fill != nil {
		fill(msg)
	}
	h := e.allocLocked()
	e.messages[h] = msg
	return native.Owned{Handle: h}
}

func copyGError(err *native.GError) *native.GError {
	if err == nil {
		return nil
	}
	cp := *err
	return &cp
}

// NewEOSMessage implements native.Library.
func (e *Engine) NewEOSMessage(src native.Handle) native.Owned {
	return e.newMessage(src, native.MessageEOS, "", nil)
}

// NewErrorMessage implements native.Library.
func (e *Engine) NewErrorMessage(src native.Handle, err *native.GError) native.Owned {
	return e.newMessage(src, native.MessageError, "GstMessageError", func(m *message) { m.gerr = copyGError(err) })
}

// NewWarningMessage implements native.Library.
func (e *Engine) NewWarningMessage(src native.Handle, err *native.GError) native.Owned {
	return e.newMessage(src, native.MessageWarning, "GstMessageWarning", func(m *message) { m.gerr = copyGError(err) })
}

// NewInfoMessage implements native.Library.
func (e *Engine) NewInfoMessage(src native.Handle, err *native.GError) native.Owned {
	return e.newMessage(src, native.MessageInfo, "GstMessageInfo", func(m *message) { m.gerr = copyGError(err) })
}

// NewStateChangedMessage implements native.Library.
func (e *Engine) NewStateChangedMessage(src native.Handle, change native.StateChange) native.Owned {
	return e.newMessage(src, native.MessageStateChanged, "GstMessageStateChanged", func(m *message) { m.change = change })
}

// NewBufferingMessage implements native.Library.
func (e *Engine) NewBufferingMessage(src native.Handle, percent int32) native.Owned {
	return e.newMessage(src, native.MessageBuffering, "GstMessageBuffering", func(m *message) { m.percent = percent })
}

// NewDurationChangedMessage implements native.Library.
func (e *Engine) NewDurationChangedMessage(src native.Handle) native.Owned {
	return e.newMessage(src, native.MessageDurationChanged, "GstMessageDurationChanged", nil)
}

// NewSegmentStartMessage implements native.Library.
func (e *Engine) NewSegmentStartMessage(src native.Handle, seg native.Segment) native.Owned {
	return e.newMessage(src, native.MessageSegmentStart, "GstMessageSegmentStart", func(m *message) { m.segment = seg })
}

// NewSegmentDoneMessage implements native.Library.
func (e *Engine) NewSegmentDoneMessage(src native.Handle, seg native.Segment) native.Owned {
	return e.newMessage(src, native.MessageSegmentDone, "GstMessageSegmentDone", func(m *message) { m.segment = seg })
}

// NewAsyncDoneMessage implements native.Library.
func (e *Engine) NewAsyncDoneMessage(src native.Handle, runningTime uint64) native.Owned {
	return e.newMessage(src, native.MessageAsyncDone, "GstMessageAsyncDone", func(m *message) { m.runningTime = runningTime })
}

// NewTagMessage implements native.Library.
func (e *Engine) NewTagMessage(src native.Handle, tags string) (native.Owned, error) {
	if strings.TrimSpace(tags) == "" {
		return native.Owned{}, errors.New("nativetest: empty tag list")
	}
	return e.newMessage(src, native.MessageTag, "GstMessageTag", func(m *message) { m.tags = tags }), nil
}

// NewApplicationMessage implements native.Library.
func (e *Engine) NewApplicationMessage(src native.Handle, structure string) (native.Owned, error) {
	name, _, _ := strings.Cut(structure, ",")
	name = strings.TrimSpace(name)
	if name == "" {
		return native.Owned{}, fmt.Errorf("nativetest: invalid structure %q", structure)
	}
	return e.newMessage(src, native.MessageApplication, name, nil), nil
}

// BusSubscribe implements native.Library.
func (e *Engine) BusSubscribe(bus native.Handle, fn native.SyncFunc) (native.Subscription, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	o := e.liveObjectLocked(bus, "gst_bus_set_sync_handler")
	if o == nil || o.kind != native.KindBus {
		return 0, fmt.Errorf("nativetest: %s is not a bus", bus)
	}
	e.nextSub++
	o.sync = fn
	o.syncID = e.nextSub
	o.subscribes++
	return o.syncID, nil
}

// BusUnsubscribe implements native.Library.
func (e *Engine) BusUnsubscribe(bus native.Handle, sub native.Subscription) {
	e.mu.Lock()
	defer e.mu.Unlock()
	o, ok := e.objects[bus]
	if !ok || o.sync == nil || sub == 0 || o.syncID != sub {
		return
	}
	o.sync = nil
	o.syncID = 0
	o.unsubscribe++
}

// BusPost implements native.Library. The sync handler, if any, runs on the
// calling goroutine without the engine lock held.
func (e *Engine) BusPost(bus native.Handle, msg native.Owned) bool {
	e.mu.Lock()
	o := e.liveObjectLocked(bus, "gst_bus_post")
	if o == nil {
		e.unrefMessageLocked(msg.Handle)
		e.mu.Unlock()
		return false
	}
	if o.flushing {
		e.unrefMessageLocked(msg.Handle)
		e.mu.Unlock()
		return false
	}
	fn := o.sync
	if fn == nil {
		o.queue = append(o.queue, msg.Handle)
		e.mu.Unlock()
		return true
	}
	// The handler gets its own reference. On DROP the bus releases its
	// reference; on PASS it queues the message with it.
	if m := e.liveMessageLocked(msg.Handle, "gst_bus_post"); m != nil {
		m.refs++
	}
	e.mu.Unlock()

	if fn(native.Owned{Handle: msg.Handle}) == native.BusDrop {
		e.MessageUnref(msg.Handle)
		return true
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if o.freed || o.flushing {
		e.unrefMessageLocked(msg.Handle)
		return true
	}
	o.queue = append(o.queue, msg.Handle)
	return true
}

// BusSetFlushing implements native.Library.
func (e *Engine) BusSetFlushing(bus native.Handle, flushing bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	o := e.liveObjectLocked(bus, "gst_bus_set_flushing")
	if o == nil {
		return
	}
	o.flushing = flushing
	if flushing {
		for _, m := range o.queue {
			e.unrefMessageLocked(m)
		}
		o.queue = nil
	}
}

// BusTimedPop implements native.Library.
func (e *Engine) BusTimedPop(bus native.Handle, timeout uint64) native.Owned {
	var deadline time.Time
	if timeout != native.ClockTimeNone {
		deadline = time.Now().Add(time.Duration(timeout))
	}
	for {
		e.mu.Lock()
		o := e.liveObjectLocked(bus, "gst_bus_timed_pop")
		if o == nil {
			e.mu.Unlock()
			return native.Owned{}
		}
		if len(o.queue) > 0 {
			m := o.queue[0]
			o.queue = o.queue[1:]
			e.mu.Unlock()
			return native.Owned{Handle: m}
		}
		e.mu.Unlock()
		if !deadline.IsZero() && !time.Now().Before(deadline) {
			return native.Owned{}
		}
		time.Sleep(time.Millisecond)
	}
}

// ElementFactoryMake implements native.Library. Unknown factories yield the
// null handle.
func (e *Engine) ElementFactoryMake(factory, name string) native.Owned {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.factories[factory] {
		return native.Owned{}
	}
	if name == "" {
		name = e.autoNameLocked(factory)
	}
	return native.Owned{Handle: e.newObjectLocked(native.KindElement, name)}
}

func (e *Engine) newBinLocked(kind native.ObjectKind, name string) native.Handle {
	if name == "" {
		name = e.autoNameLocked(kind.String())
	}
	h := e.newObjectLocked(kind, name)
	if kind == native.KindPipeline {
		e.objects[h].bus = e.newObjectLocked(native.KindBus, e.autoNameLocked("bus"))
	}
	return h
}

// PipelineNew implements native.Library.
func (e *Engine) PipelineNew(name string) native.Owned {
	e.mu.Lock()
	defer e.mu.Unlock()
	return native.Owned{Handle: e.newBinLocked(native.KindPipeline, name)}
}

// BinNew implements native.Library.
func (e *Engine) BinNew(name string) native.Owned {
	e.mu.Lock()
	defer e.mu.Unlock()
	return native.Owned{Handle: e.newBinLocked(native.KindBin, name)}
}

// ParseLaunch implements native.Library for linear descriptions of the form
// "factory [name=x] ! factory ...".
func (e *Engine) ParseLaunch(description string) (native.Owned, error) {
	if strings.TrimSpace(description) == "" {
		return native.Owned{}, &native.GError{Domain: "gst_parse_error", Code: 4, Message: "empty pipeline not allowed"}
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	var elems []native.Handle
	for _, seg := range strings.Split(description, "!") {
		fields := strings.Fields(seg)
		if len(fields) == 0 {
			return native.Owned{}, &native.GError{Domain: "gst_parse_error", Code: 0, Message: "syntax error"}
		}
		factory := fields[0]
		if !e.factories[factory] {
			for _, h := range elems {
				e.unrefObjectLocked(h)
			}
			return native.Owned{}, &native.GError{Domain: "gst_parse_error", Code: 1, Message: fmt.Sprintf("no element %q", factory)}
		}
		name := ""
		for _, f := range fields[1:] {
			if v, ok := strings.CutPrefix(f, "name="); ok {
				name = v
			}
		}
		if name == "" {
			name = e.autoNameLocked(factory)
		}
		elems = append(elems, e.newObjectLocked(native.KindElement, name))
	}

	p := e.newBinLocked(native.KindPipeline, "")
	po := e.objects[p]
	for i, h := range elems {
		e.objects[h].parent = p
		po.children = append(po.children, h)
		if i > 0 {
			e.objects[elems[i-1]].links = append(e.objects[elems[i-1]].links, h)
		}
	}
	return native.Owned{Handle: p}, nil
}

// BinAdd implements native.Library. The bin takes its own reference.
func (e *Engine) BinAdd(bin, element native.Handle) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	b := e.liveObjectLocked(bin, "gst_bin_add")
	el := e.liveObjectLocked(element, "gst_bin_add")
	if b == nil || el == nil || !b.kind.IsA(native.KindBin) || el.parent != 0 || bin == element {
		return false
	}
	el.parent = bin
	el.refs++
	b.children = append(b.children, element)
	return true
}

func (e *Engine) findLocked(bin native.Handle, name string) native.Handle {
	b := e.objects[bin]
	for _, c := range b.children {
		co := e.objects[c]
		if co.name == name {
			return c
		}
		if co.kind.IsA(native.KindBin) {
			if h := e.findLocked(c, name); h != 0 {
				return h
			}
		}
	}
	return 0
}

// BinByName implements native.Library.
func (e *Engine) BinByName(bin native.Handle, name string) native.Owned {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.liveObjectLocked(bin, "gst_bin_get_by_name") == nil {
		return native.Owned{}
	}
	h := e.findLocked(bin, name)
	if h != 0 {
		e.objects[h].refs++
	}
	return native.Owned{Handle: h}
}

// ElementLink implements native.Library.
func (e *Engine) ElementLink(src, dst native.Handle) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.liveObjectLocked(src, "gst_element_link")
	d := e.liveObjectLocked(dst, "gst_element_link")
	if s == nil || d == nil || s.parent == 0 || s.parent != d.parent || src == dst {
		return false
	}
	s.links = append(s.links, dst)
	return true
}

func (e *Engine) busOfLocked(h native.Handle) native.Handle {
	for h != 0 {
		o := e.objects[h]
		if o.bus != 0 {
			return o.bus
		}
		h = o.parent
	}
	return 0
}

// ElementSetState implements native.Library. The transition completes
// immediately and a state-changed message is posted on the owning pipeline's
// bus.
func (e *Engine) ElementSetState(element native.Handle, state int32) int32 {
	e.mu.Lock()
	o := e.liveObjectLocked(element, "gst_element_set_state")
	if o == nil {
		e.mu.Unlock()
		return native.StateChangeFailure
	}
	old := o.state
	o.state = state
	for _, c := range o.children {
		e.objects[c].state = state
	}
	bus := e.busOfLocked(element)
	if bus != 0 {
		e.objects[bus].refs++
	}
	e.mu.Unlock()

	if bus != 0 {
		if old != state {
			msg := e.NewStateChangedMessage(element, native.StateChange{Old: old, Current: state, Pending: native.StateVoidPending})
			e.BusPost(bus, msg)
		}
		e.ObjectUnref(bus)
	}
	return native.StateChangeSuccess
}

// ElementGetState implements native.Library.
func (e *Engine) ElementGetState(element native.Handle, _ uint64) (ret, current, pending int32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	o := e.liveObjectLocked(element, "gst_element_get_state")
	if o == nil {
		return native.StateChangeFailure, native.StateVoidPending, native.StateVoidPending
	}
	return native.StateChangeSuccess, o.state, native.StateVoidPending
}

// ElementBus implements native.Library.
func (e *Engine) ElementBus(element native.Handle) native.Owned {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.liveObjectLocked(element, "gst_element_get_bus") == nil {
		return native.Owned{}
	}
	bus := e.busOfLocked(element)
	if bus != 0 {
		e.objects[bus].refs++
	}
	return native.Owned{Handle: bus}
}

// ElementPostMessage implements native.Library.
func (e *Engine) ElementPostMessage(element native.Handle, msg native.Owned) bool {
	e.mu.Lock()
	bus := native.Handle(0)
	if e.liveObjectLocked(element, "gst_element_post_message") != nil {
		bus = e.busOfLocked(element)
	}
	if bus == 0 {
		e.unrefMessageLocked(msg.Handle)
		e.mu.Unlock()
		return false
	}
	e.objects[bus].refs++
	e.mu.Unlock()

	ok := e.BusPost(bus, msg)
	e.ObjectUnref(bus)
	return ok
}

func (e *Engine) query(element native.Handle, format int32, pick func(*object) int64) (int64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	o := e.liveObjectLocked(element, "gst_element_query")
	if o == nil || format != native.FormatTime || o.state < native.StatePaused {
		return 0, false
	}
	return pick(o), true
}

// ElementQueryPosition implements native.Library.
func (e *Engine) ElementQueryPosition(element native.Handle, format int32) (int64, bool) {
	return e.query(element, format, func(o *object) int64 { return o.position })
}

// ElementQueryDuration implements native.Library.
func (e *Engine) ElementQueryDuration(element native.Handle, format int32) (int64, bool) {
	return e.query(element, format, func(o *object) int64 { return o.duration })
}

// SetDebugThreshold implements native.Library.
func (e *Engine) SetDebugThreshold(level int32) {
	e.mu.Lock()
	e.threshold = level
	e.mu.Unlock()
}

// SetLogFunc implements native.Library.
func (e *Engine) SetLogFunc(fn native.LogFunc) error {
	e.mu.Lock()
	e.logFn = fn
	e.mu.Unlock()
	return nil
}
