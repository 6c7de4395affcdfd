//go:build !ios && !android && (amd64 || arm64)

package bindings

import (
	"unsafe"

	"github.com/obinnaokechukwu/gstgo/internal/native"
)

// goString copies a NUL-terminated C string. A nil pointer yields "".
func goString(p unsafe.Pointer) string {
	if p == nil {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Add(p, n)) != 0 {
		n++
	}
	return string(unsafe.Slice((*byte)(p), n))
}

// takeString copies a C string the caller owns and frees it with g_free.
func takeString(p unsafe.Pointer) string {
	if p == nil {
		return ""
	}
	s := goString(p)
	gFree(p)
	return s
}

// cString returns a NUL-terminated copy of s, or nil for "" so that optional
// name arguments become NULL.
func cString(s string) *byte {
	if s == "" {
		return nil
	}
	b := make([]byte, len(s)+1)
	copy(b, s)
	return &b[0]
}

// readGError copies a GError without freeing it.
func readGError(e *gerrorC) *native.GError {
	if e == nil {
		return nil
	}
	out := &native.GError{
		Code:    e.code,
		Message: goString(unsafe.Pointer(e.message)),
	}
	if e.domain != 0 {
		out.Domain = gQuarkToString(e.domain)
	}
	return out
}

// takeGError copies a GError and frees it.
func takeGError(e *gerrorC) *native.GError {
	if e == nil {
		return nil
	}
	out := readGError(e)
	gErrorFree(e)
	return out
}

// messageField reads a field of the public GstMessage struct. The offsets
// hold for 64-bit targets: GstMiniObject takes 64 bytes, followed by type,
// timestamp, src and seqnum.
func messageField[T any](m native.Handle, offset uintptr) T {
	return *(*T)(unsafe.Add(unsafe.Pointer(uintptr(m)), offset))
}

const (
	offMessageType      = 64
	offMessageTimestamp = 72
	offMessageSrc       = 80
)
