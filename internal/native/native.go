// Package native describes the boundary between Go proxies and the GStreamer
// C libraries.
//
// Everything that crosses the boundary is a raw Handle. Functions that hand a
// reference to the caller return Owned, functions that lend one return
// Borrowed, so the ownership contract is visible in the signature instead of
// being a convention the caller has to remember.
package native

import "fmt"

// Handle is the address of a native GstObject or GstMessage.
type Handle uintptr

// IsNull reports whether h is the null handle.
func (h Handle) IsNull() bool { return h == 0 }

func (h Handle) String() string { return fmt.Sprintf("0x%x", uintptr(h)) }

// Owned is a handle whose reference now belongs to the receiver. The receiver
// must either adopt it into a proxy or release it.
type Owned struct{ Handle }

// Borrowed is a handle the receiver may use for the duration of the call but
// must not release.
type Borrowed struct{ Handle }

// Transfer says what happens to the native reference count when a handle is
// wrapped by a proxy.
type Transfer int

const (
	// TransferNone wraps the handle without taking or owning a reference.
	TransferNone Transfer = iota
	// TransferRef takes a new reference that the proxy owns.
	TransferRef
	// TransferFull adopts the reference the caller already holds.
	TransferFull
)

func (t Transfer) String() string {
	switch t {
	case TransferNone:
		return "none"
	case TransferRef:
		return "ref"
	case TransferFull:
		return "full"
	}
	return fmt.Sprintf("Transfer(%d)", int(t))
}

// ObjectKind is the most derived proxy type a native object maps onto.
type ObjectKind int

const (
	KindUnknown ObjectKind = iota
	KindObject
	KindElement
	KindBin
	KindPipeline
	KindBus
)

var kindNames = [...]string{"unknown", "object", "element", "bin", "pipeline", "bus"}

func (k ObjectKind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("ObjectKind(%d)", int(k))
}

// IsA reports whether an object of kind k can be viewed as want.
func (k ObjectKind) IsA(want ObjectKind) bool {
	switch want {
	case KindObject:
		return k != KindUnknown
	case KindElement:
		return k == KindElement || k == KindBin || k == KindPipeline
	case KindBin:
		return k == KindBin || k == KindPipeline
	default:
		return k == want
	}
}

// GstBusSyncReply values.
const (
	BusDrop  = 0
	BusPass  = 1
	BusAsync = 2
)

// ClockTimeNone is GST_CLOCK_TIME_NONE.
const ClockTimeNone = ^uint64(0)

// GError is the payload of error, warning and info messages.
type GError struct {
	Domain  string
	Code    int32
	Message string
	Debug   string
}

// Error implements the error interface.
func (e *GError) Error() string {
	if e.Domain == "" {
		return fmt.Sprintf("gstreamer: %s (code %d)", e.Message, e.Code)
	}
	return fmt.Sprintf("gstreamer %s: %s (code %d)", e.Domain, e.Message, e.Code)
}

// StateChange is the payload of a state-changed message.
type StateChange struct {
	Old, Current, Pending int32
}

// Segment is the payload of segment-start and segment-done messages.
type Segment struct {
	Format   int32
	Position int64
}

// SyncFunc receives every message posted on a subscribed bus, on the thread
// that posted it. The message reference is owned by the callee. The returned
// BusDrop, BusPass or BusAsync is handed back to GStreamer; with BusPass the
// bus keeps its own reference and queues the message for polling.
type SyncFunc func(msg Owned) int

// Subscription identifies one installed sync handler. The zero value means
// none.
type Subscription uintptr

// LogFunc receives one line of GStreamer debug output.
type LogFunc func(level int32, category, file, function string, line int32, message string)
