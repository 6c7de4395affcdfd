package native

// Library is the set of GStreamer entry points the proxy runtime uses. The
// purego implementation lives in internal/bindings; tests use the in-memory
// engine from internal/nativetest.
//
// Implementations must be safe for concurrent use. No method may call back
// into Go while holding a lock that another method needs.
type Library interface {
	Version() (major, minor, micro, nano uint32)
	Deinit()

	// GstObject reference counting and introspection.
	ObjectRef(h Handle)
	ObjectUnref(h Handle)
	ObjectKind(h Handle) ObjectKind
	ObjectName(h Handle) string

	// GstMessage reference counting and accessors.
	MessageRef(m Handle)
	MessageUnref(m Handle)
	MessageType(m Handle) uint32
	MessageSource(m Handle) Borrowed
	MessageSeqnum(m Handle) uint32
	MessageTimestamp(m Handle) uint64
	MessageStructureName(m Handle) string
	ParseError(m Handle) *GError
	ParseWarning(m Handle) *GError
	ParseInfo(m Handle) *GError
	ParseStateChanged(m Handle) StateChange
	ParseBuffering(m Handle) int32
	ParseSegmentStart(m Handle) Segment
	ParseSegmentDone(m Handle) Segment
	ParseTag(m Handle) string
	ParseAsyncDone(m Handle) uint64

	// Message constructors. src may be null.
	NewEOSMessage(src Handle) Owned
	NewErrorMessage(src Handle, err *GError) Owned
	NewWarningMessage(src Handle, err *GError) Owned
	NewInfoMessage(src Handle, err *GError) Owned
	NewStateChangedMessage(src Handle, change StateChange) Owned
	NewBufferingMessage(src Handle, percent int32) Owned
	NewDurationChangedMessage(src Handle) Owned
	NewSegmentStartMessage(src Handle, seg Segment) Owned
	NewSegmentDoneMessage(src Handle, seg Segment) Owned
	NewAsyncDoneMessage(src Handle, runningTime uint64) Owned
	NewTagMessage(src Handle, tags string) (Owned, error)
	NewApplicationMessage(src Handle, structure string) (Owned, error)

	// Bus. BusSubscribe replaces any previous subscription of the same bus.
	// BusUnsubscribe removes sub only while it is still the installed one,
	// so a stale subscription never detaches a newer handler.
	BusSubscribe(bus Handle, fn SyncFunc) (Subscription, error)
	BusUnsubscribe(bus Handle, sub Subscription)
	BusPost(bus Handle, msg Owned) bool
	BusSetFlushing(bus Handle, flushing bool)
	BusTimedPop(bus Handle, timeout uint64) Owned

	// Elements, bins and pipelines.
	ElementFactoryMake(factory, name string) Owned
	PipelineNew(name string) Owned
	BinNew(name string) Owned
	ParseLaunch(description string) (Owned, error)
	BinAdd(bin, element Handle) bool
	BinByName(bin Handle, name string) Owned
	ElementLink(src, dst Handle) bool
	ElementSetState(element Handle, state int32) int32
	ElementGetState(element Handle, timeout uint64) (ret, current, pending int32)
	ElementBus(element Handle) Owned
	ElementPostMessage(element Handle, msg Owned) bool
	ElementQueryPosition(element Handle, format int32) (int64, bool)
	ElementQueryDuration(element Handle, format int32) (int64, bool)

	// Debug log routing. A nil fn restores the default stderr logger.
	SetDebugThreshold(level int32)
	SetLogFunc(fn LogFunc) error
}
