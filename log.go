//go:build !ios && !android && (amd64 || arm64)

package gstgo

import (
	"sync"

	"k8s.io/klog"
)

// DebugLevel represents GStreamer debug levels.
type DebugLevel int32

// Debug level constants matching GstDebugLevel.
const (
	LevelNone    DebugLevel = 0
	LevelError   DebugLevel = 1
	LevelWarning DebugLevel = 2
	LevelFixme   DebugLevel = 3
	LevelInfo    DebugLevel = 4
	LevelDebug   DebugLevel = 5
	LevelLog     DebugLevel = 6
	LevelTrace   DebugLevel = 7
	LevelMemdump DebugLevel = 9
)

// String returns the string representation of the debug level.
func (l DebugLevel) String() string {
	switch {
	case l <= LevelNone:
		return "none"
	case l == LevelError:
		return "error"
	case l == LevelWarning:
		return "warning"
	case l == LevelFixme:
		return "fixme"
	case l == LevelInfo:
		return "info"
	case l == LevelDebug:
		return "debug"
	case l == LevelLog:
		return "log"
	case l == LevelTrace:
		return "trace"
	default:
		return "memdump"
	}
}

// LogCallback is called for each GStreamer debug line, on the thread that
// produced it.
type LogCallback func(level DebugLevel, category, file, function string, line int, message string)

var (
	logCallbackMu sync.Mutex
	logCallback   LogCallback
)

// SetDebugLevel sets the default GStreamer debug threshold.
func SetDebugLevel(level DebugLevel) error {
	rt, err := loadedRuntime()
	if err != nil {
		return err
	}
	rt.lib.SetDebugThreshold(int32(level))
	return nil
}

// SetLogCallback sets a custom handler for GStreamer debug output.
// Pass nil to restore GStreamer's default stderr logger.
func SetLogCallback(cb LogCallback) error {
	rt, err := loadedRuntime()
	if err != nil {
		return err
	}

	logCallbackMu.Lock()
	defer logCallbackMu.Unlock()

	logCallback = cb
	if cb == nil {
		return rt.lib.SetLogFunc(nil)
	}
	return rt.lib.SetLogFunc(logTrampoline)
}

// logTrampoline forwards a native debug line to the Go callback.
func logTrampoline(level int32, category, file, function string, line int32, message string) {
	logCallbackMu.Lock()
	cb := logCallback
	logCallbackMu.Unlock()

	if cb == nil {
		return
	}
	cb(DebugLevel(level), category, file, function, int(line), message)
}

// KlogCallback writes GStreamer debug output through klog. Errors and
// warnings are always logged; info needs -v=2 and everything more verbose
// needs -v=4.
func KlogCallback(level DebugLevel, category, file, function string, line int, message string) {
	switch {
	case level <= LevelNone:
		return
	case level == LevelError:
		klog.Errorf("gst %s %s:%d:%s: %s", category, file, line, function, message)
	case level <= LevelFixme:
		klog.Warningf("gst %s %s:%d:%s: %s", category, file, line, function, message)
	case level == LevelInfo:
		klog.V(2).Infof("gst %s %s:%d:%s: %s", category, file, line, function, message)
	default:
		klog.V(4).Infof("gst %s [%s] %s:%d:%s: %s", category, level, file, line, function, message)
	}
}
