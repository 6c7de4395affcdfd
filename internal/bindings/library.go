//go:build !ios && !android && (amd64 || arm64)

package bindings

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/obinnaokechukwu/gstgo/internal/native"
)

// gstLibrary implements native.Library on top of the registered functions.
type gstLibrary struct{}

var _ native.Library = gstLibrary{}

func owned(p uintptr) native.Owned { return native.Owned{Handle: native.Handle(p)} }

// sunk takes ownership of a floating reference.
func sunk(p uintptr) native.Owned {
	if p == 0 {
		return native.Owned{}
	}
	return owned(gstObjectRefSink(p))
}

func gbool(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

func (gstLibrary) Version() (major, minor, micro, nano uint32) {
	gstVersion(&major, &minor, &micro, &nano)
	return
}

func (gstLibrary) Deinit() {
	if deinitialized.Swap(true) {
		return
	}
	loaded.Store(false)
	gstDeinit()
}

func (gstLibrary) ObjectRef(h native.Handle)   { gstObjectRef(uintptr(h)) }
func (gstLibrary) ObjectUnref(h native.Handle) { gstObjectUnref(uintptr(h)) }

func isA(h native.Handle, gtype func() uintptr) bool {
	return gTypeCheckIsA(uintptr(h), gtype()) != 0
}

func (gstLibrary) ObjectKind(h native.Handle) native.ObjectKind {
	switch {
	case h.IsNull() || !isA(h, gstObjectGetType):
		return native.KindUnknown
	case isA(h, gstPipelineGetType):
		return native.KindPipeline
	case isA(h, gstBinGetType):
		return native.KindBin
	case isA(h, gstElementGetType):
		return native.KindElement
	case isA(h, gstBusGetType):
		return native.KindBus
	}
	return native.KindObject
}

func (gstLibrary) ObjectName(h native.Handle) string {
	return takeString(gstObjectGetName(uintptr(h)))
}

func (gstLibrary) MessageRef(m native.Handle)   { gstMiniObjectRef(uintptr(m)) }
func (gstLibrary) MessageUnref(m native.Handle) { gstMiniObjectUnref(uintptr(m)) }

func (gstLibrary) MessageType(m native.Handle) uint32 {
	return messageField[uint32](m, offMessageType)
}

func (gstLibrary) MessageSource(m native.Handle) native.Borrowed {
	return native.Borrowed{Handle: messageField[native.Handle](m, offMessageSrc)}
}

func (gstLibrary) MessageSeqnum(m native.Handle) uint32 {
	return gstMessageGetSeqnum(uintptr(m))
}

func (gstLibrary) MessageTimestamp(m native.Handle) uint64 {
	return messageField[uint64](m, offMessageTimestamp)
}

func (gstLibrary) MessageStructureName(m native.Handle) string {
	s := gstMessageGetStructure(uintptr(m))
	if s == 0 {
		return ""
	}
	return gstStructureGetName(s)
}

type parseGErrorFunc func(msg uintptr, err **gerrorC, debug *unsafe.Pointer)

func parseGError(parse parseGErrorFunc, m native.Handle) *native.GError {
	var (
		gerr *gerrorC
		dbg  unsafe.Pointer
	)
	parse(uintptr(m), &gerr, &dbg)
	out := takeGError(gerr)
	debug := takeString(dbg)
	if out != nil {
		out.Debug = debug
	}
	return out
}

func (gstLibrary) ParseError(m native.Handle) *native.GError {
	return parseGError(gstMessageParseError, m)
}

func (gstLibrary) ParseWarning(m native.Handle) *native.GError {
	return parseGError(gstMessageParseWarning, m)
}

func (gstLibrary) ParseInfo(m native.Handle) *native.GError {
	return parseGError(gstMessageParseInfo, m)
}

func (gstLibrary) ParseStateChanged(m native.Handle) (sc native.StateChange) {
	gstMessageParseStateChanged(uintptr(m), &sc.Old, &sc.Current, &sc.Pending)
	return sc
}

func (gstLibrary) ParseBuffering(m native.Handle) (percent int32) {
	gstMessageParseBuffering(uintptr(m), &percent)
	return percent
}

func (gstLibrary) ParseSegmentStart(m native.Handle) (seg native.Segment) {
	gstMessageParseSegmentStart(uintptr(m), &seg.Format, &seg.Position)
	return seg
}

func (gstLibrary) ParseSegmentDone(m native.Handle) (seg native.Segment) {
	gstMessageParseSegmentDone(uintptr(m), &seg.Format, &seg.Position)
	return seg
}

func (gstLibrary) ParseTag(m native.Handle) string {
	var list uintptr
	gstMessageParseTag(uintptr(m), &list)
	if list == 0 {
		return ""
	}
	defer gstMiniObjectUnref(list)
	return takeString(gstTagListToString(list))
}

func (gstLibrary) ParseAsyncDone(m native.Handle) (rt uint64) {
	gstMessageParseAsyncDone(uintptr(m), &rt)
	return rt
}

func (gstLibrary) NewEOSMessage(src native.Handle) native.Owned {
	return owned(gstMessageNewEOS(uintptr(src)))
}

type newGErrorFunc func(src uintptr, err *gerrorC, debug *byte) uintptr

// newGErrorMessage builds a GError for the duration of the call; the message
// constructors copy it.
func newGErrorMessage(build newGErrorFunc, src native.Handle, err *native.GError) native.Owned {
	domain := err.Domain
	if domain == "" {
		domain = "gstgo-error-quark"
	}
	gerr := gErrorNewLit(gQuarkFromStr(domain), err.Code, err.Message)
	defer gErrorFree(gerr)
	debug := cString(err.Debug)
	msg := build(uintptr(src), gerr, debug)
	runtime.KeepAlive(debug)
	return owned(msg)
}

func (gstLibrary) NewErrorMessage(src native.Handle, err *native.GError) native.Owned {
	return newGErrorMessage(gstMessageNewError, src, err)
}

func (gstLibrary) NewWarningMessage(src native.Handle, err *native.GError) native.Owned {
	return newGErrorMessage(gstMessageNewWarning, src, err)
}

func (gstLibrary) NewInfoMessage(src native.Handle, err *native.GError) native.Owned {
	return newGErrorMessage(gstMessageNewInfo, src, err)
}

func (gstLibrary) NewStateChangedMessage(src native.Handle, sc native.StateChange) native.Owned {
	return owned(gstMessageNewStateChanged(uintptr(src), sc.Old, sc.Current, sc.Pending))
}

func (gstLibrary) NewBufferingMessage(src native.Handle, percent int32) native.Owned {
	return owned(gstMessageNewBuffering(uintptr(src), percent))
}

func (gstLibrary) NewDurationChangedMessage(src native.Handle) native.Owned {
	return owned(gstMessageNewDurationChanged(uintptr(src)))
}

func (gstLibrary) NewSegmentStartMessage(src native.Handle, seg native.Segment) native.Owned {
	return owned(gstMessageNewSegmentStart(uintptr(src), seg.Format, seg.Position))
}

func (gstLibrary) NewSegmentDoneMessage(src native.Handle, seg native.Segment) native.Owned {
	return owned(gstMessageNewSegmentDone(uintptr(src), seg.Format, seg.Position))
}

func (gstLibrary) NewAsyncDoneMessage(src native.Handle, runningTime uint64) native.Owned {
	return owned(gstMessageNewAsyncDone(uintptr(src), runningTime))
}

func (gstLibrary) NewTagMessage(src native.Handle, tags string) (native.Owned, error) {
	list := gstTagListFromString(tags)
	if list == 0 {
		return native.Owned{}, fmt.Errorf("gstgo: invalid tag list %q", tags)
	}
	return owned(gstMessageNewTag(uintptr(src), list)), nil
}

func (gstLibrary) NewApplicationMessage(src native.Handle, structure string) (native.Owned, error) {
	s := gstStructureFromString(structure, nil)
	if s == 0 {
		return native.Owned{}, fmt.Errorf("gstgo: invalid structure %q", structure)
	}
	return owned(gstMessageNewApplication(uintptr(src), s)), nil
}

func (gstLibrary) BusSubscribe(bus native.Handle, fn native.SyncFunc) (native.Subscription, error) {
	return subscribe(uintptr(bus), fn)
}

func (gstLibrary) BusUnsubscribe(bus native.Handle, sub native.Subscription) {
	unsubscribe(uintptr(bus), sub)
}

func (gstLibrary) BusPost(bus native.Handle, msg native.Owned) bool {
	return gstBusPost(uintptr(bus), uintptr(msg.Handle)) != 0
}

func (gstLibrary) BusSetFlushing(bus native.Handle, flushing bool) {
	gstBusSetFlushing(uintptr(bus), gbool(flushing))
}

func (gstLibrary) BusTimedPop(bus native.Handle, timeout uint64) native.Owned {
	return owned(gstBusTimedPop(uintptr(bus), timeout))
}

func (gstLibrary) ElementFactoryMake(factory, name string) native.Owned {
	n := cString(name)
	el := gstElementFactoryMake(factory, n)
	runtime.KeepAlive(n)
	return sunk(el)
}

func (gstLibrary) PipelineNew(name string) native.Owned {
	n := cString(name)
	p := gstPipelineNew(n)
	runtime.KeepAlive(n)
	return sunk(p)
}

func (gstLibrary) BinNew(name string) native.Owned {
	n := cString(name)
	b := gstBinNew(n)
	runtime.KeepAlive(n)
	return sunk(b)
}

func (gstLibrary) ParseLaunch(description string) (native.Owned, error) {
	var gerr *gerrorC
	el := gstParseLaunch(description, &gerr)
	var err error
	if e := takeGError(gerr); e != nil {
		err = e
	}
	return sunk(el), err
}

func (gstLibrary) BinAdd(bin, element native.Handle) bool {
	return gstBinAdd(uintptr(bin), uintptr(element)) != 0
}

func (gstLibrary) BinByName(bin native.Handle, name string) native.Owned {
	return owned(gstBinGetByName(uintptr(bin), name))
}

func (gstLibrary) ElementLink(src, dst native.Handle) bool {
	return gstElementLink(uintptr(src), uintptr(dst)) != 0
}

func (gstLibrary) ElementSetState(element native.Handle, state int32) int32 {
	return gstElementSetState(uintptr(element), state)
}

func (gstLibrary) ElementGetState(element native.Handle, timeout uint64) (ret, current, pending int32) {
	ret = gstElementGetState(uintptr(element), &current, &pending, timeout)
	return ret, current, pending
}

func (gstLibrary) ElementBus(element native.Handle) native.Owned {
	return owned(gstElementGetBus(uintptr(element)))
}

func (gstLibrary) ElementPostMessage(element native.Handle, msg native.Owned) bool {
	return gstElementPostMessage(uintptr(element), uintptr(msg.Handle)) != 0
}

func (gstLibrary) ElementQueryPosition(element native.Handle, format int32) (pos int64, ok bool) {
	ok = gstElementQueryPos(uintptr(element), format, &pos) != 0
	return pos, ok
}

func (gstLibrary) ElementQueryDuration(element native.Handle, format int32) (dur int64, ok bool) {
	ok = gstElementQueryDur(uintptr(element), format, &dur) != 0
	return dur, ok
}

func (gstLibrary) SetDebugThreshold(level int32) {
	gstDebugSetDefaultThreshold(level)
}

func (gstLibrary) SetLogFunc(fn native.LogFunc) error {
	return setLogFunc(fn)
}
