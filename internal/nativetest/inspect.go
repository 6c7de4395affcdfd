package nativetest

import (
	"github.com/obinnaokechukwu/gstgo/internal/native"
)

// Refs returns the reference count of an object, or -1 if it was never
// allocated. Freed objects report 0.
func (e *Engine) Refs(h native.Handle) int32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	o, ok := e.objects[h]
	if !ok {
		return -1
	}
	return o.refs
}

// MessageRefs returns the reference count of a message, or -1 if it was
// never allocated.
func (e *Engine) MessageRefs(m native.Handle) int32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	msg, ok := e.messages[m]
	if !ok {
		return -1
	}
	return msg.refs
}

// Freed reports whether the object's last reference was dropped.
func (e *Engine) Freed(h native.Handle) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	o, ok := e.objects[h]
	return ok && o.freed
}

// LiveObjects counts objects that still hold references.
func (e *Engine) LiveObjects() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, o := range e.objects {
		if !o.freed {
			n++
		}
	}
	return n
}

// LiveMessages counts messages that still hold references.
func (e *Engine) LiveMessages() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, m := range e.messages {
		if !m.freed {
			n++
		}
	}
	return n
}

// Problems returns every misuse the engine detected: unknown handles, use
// after free and unbalanced unrefs.
func (e *Engine) Problems() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.problems...)
}

// Subscribed reports whether bus has a sync handler installed.
func (e *Engine) Subscribed(bus native.Handle) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	o, ok := e.objects[bus]
	return ok && o.sync != nil
}

// Subscription returns the token of the sync handler installed on bus, or
// zero.
func (e *Engine) Subscription(bus native.Handle) native.Subscription {
	e.mu.Lock()
	defer e.mu.Unlock()
	if o, ok := e.objects[bus]; ok {
		return o.syncID
	}
	return 0
}

// SubscribeCounts returns how often a sync handler was installed on and
// removed from bus.
func (e *Engine) SubscribeCounts(bus native.Handle) (installed, removed int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if o, ok := e.objects[bus]; ok {
		return o.subscribes, o.unsubscribe
	}
	return 0, 0
}

// Queued returns the number of messages waiting in the bus queue.
func (e *Engine) Queued(bus native.Handle) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if o, ok := e.objects[bus]; ok {
		return len(o.queue)
	}
	return 0
}

// Links returns the elements src was linked to.
func (e *Engine) Links(src native.Handle) []native.Handle {
	e.mu.Lock()
	defer e.mu.Unlock()
	if o, ok := e.objects[src]; ok {
		return append([]native.Handle(nil), o.links...)
	}
	return nil
}

// SetTimes sets what position and duration queries report for element.
func (e *Engine) SetTimes(element native.Handle, position, duration int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if o, ok := e.objects[element]; ok {
		o.position, o.duration = position, duration
	}
}

// DebugThreshold returns the level last passed to SetDebugThreshold.
func (e *Engine) DebugThreshold() int32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.threshold
}

// Log delivers a debug line to the installed log function, if any, the way
// GStreamer does from whatever thread produced it.
func (e *Engine) Log(level int32, category, file, function string, line int32, message string) bool {
	e.mu.Lock()
	fn := e.logFn
	e.mu.Unlock()
	if fn == nil {
		return false
	}
	fn(level, category, file, function, line, message)
	return true
}

// Deinitialized reports whether Deinit was called.
func (e *Engine) Deinitialized() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.deinit
}
