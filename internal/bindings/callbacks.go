//go:build !ios && !android && (amd64 || arm64)

package bindings

import (
	"errors"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/obinnaokechukwu/gstgo/internal/handles"
	"github.com/obinnaokechukwu/gstgo/internal/native"
)

var errCallbacksMissing = errors.New("gstgo: native callbacks not installed")

// purego callbacks are a limited resource, so each trampoline is created
// once and routed through user_data.
var (
	syncHandlers      handles.Table[native.SyncFunc]
	syncTrampolinePtr uintptr
	syncNotifyPtr     uintptr
	logTrampolinePtr  uintptr

	subMu         sync.Mutex
	subscriptions = map[uintptr]uintptr{} // bus -> user_data of its handler

	logMu        sync.Mutex
	logFn        atomic.Pointer[native.LogFunc]
	logInstalled bool
)

func installCallbacks() {
	syncTrampolinePtr = purego.NewCallback(syncTrampoline)
	syncNotifyPtr = purego.NewCallback(syncNotify)
	logTrampolinePtr = purego.NewCallback(logTrampoline)
}

// syncTrampoline is the GstBusSyncHandler for every subscribed bus.
// Signature: GstBusSyncReply (*)(GstBus *bus, GstMessage *message, gpointer user_data)
//
// The message is handed to Go with a reference of its own. GStreamer keeps
// its reference on PASS and releases it on DROP.
func syncTrampoline(_ uintptr, msg uintptr, userData uintptr) uintptr {
	fn, ok := syncHandlers.Lookup(userData)
	if !ok || fn == nil || msg == 0 {
		return native.BusPass
	}
	gstMiniObjectRef(msg)
	return uintptr(fn(native.Owned{Handle: native.Handle(msg)}))
}

// syncNotify is the GDestroyNotify of a sync handler's user_data.
func syncNotify(userData uintptr) {
	syncHandlers.Unregister(userData)
}

// logTrampoline is the GstLogFunction installed by SetLogFunc.
// Signature: void (*)(GstDebugCategory *category, GstDebugLevel level,
// const gchar *file, const gchar *function, gint line, GObject *object,
// GstDebugMessage *message, gpointer user_data)
func logTrampoline(category uintptr, level int32, file, function unsafe.Pointer, line int32, _ uintptr, message uintptr, _ uintptr) {
	p := logFn.Load()
	if p == nil {
		return
	}
	cat := ""
	if category != 0 {
		cat = gstDebugCategoryGetName(category)
	}
	(*p)(level, cat, goString(file), goString(function), line, gstDebugMessageGet(message))
}

func setLogFunc(fn native.LogFunc) error {
	if logTrampolinePtr == 0 {
		return errCallbacksMissing
	}
	logMu.Lock()
	defer logMu.Unlock()

	if fn == nil {
		logFn.Store(nil)
		if logInstalled {
			gstDebugRemoveLogFunction(logTrampolinePtr)
			gstDebugAddLogFunction(gstDebugLogDefault, 0, 0)
			logInstalled = false
		}
		return nil
	}
	logFn.Store(&fn)
	if !logInstalled {
		gstDebugRemoveLogFunction(gstDebugLogDefault)
		gstDebugAddLogFunction(logTrampolinePtr, 0, 0)
		logInstalled = true
	}
	return nil
}

// subscribe installs the sync trampoline on bus. GStreamer refuses to
// replace a sync handler, so the old one is cleared first; clearing runs its
// destroy notify, which frees the old registration.
func subscribe(bus uintptr, fn native.SyncFunc) (native.Subscription, error) {
	if syncTrampolinePtr == 0 {
		return 0, errCallbacksMissing
	}
	subMu.Lock()
	defer subMu.Unlock()
	id := syncHandlers.Register(fn)
	gstBusSetSyncHandler(bus, 0, 0, 0)
	gstBusSetSyncHandler(bus, syncTrampolinePtr, id, syncNotifyPtr)
	subscriptions[bus] = id
	return native.Subscription(id), nil
}

// unsubscribe clears the handler of bus if sub is the one installed.
func unsubscribe(bus uintptr, sub native.Subscription) {
	subMu.Lock()
	defer subMu.Unlock()
	if sub == 0 || subscriptions[bus] != uintptr(sub) {
		return
	}
	delete(subscriptions, bus)
	gstBusSetSyncHandler(bus, 0, 0, 0)
}
