//go:build !ios && !android && (amd64 || arm64)

package gstgo

import (
	"errors"

	"github.com/obinnaokechukwu/gstgo/internal/native"
)

// GError is the error payload carried by error, warning and info messages.
// It is also returned, wrapped, when GStreamer reports a GError directly.
type GError = native.GError

// Common errors
var (
	// ErrNotLoaded indicates Init has not been called or failed.
	ErrNotLoaded = errors.New("gstgo: GStreamer not initialized; call gstgo.Init() first")

	// ErrDeinitialized indicates GStreamer was shut down with Deinit and
	// cannot be initialized again in this process.
	ErrDeinitialized = errors.New("gstgo: GStreamer was deinitialized")

	// ErrDisposed indicates the proxy was disposed.
	ErrDisposed = errors.New("gstgo: object is disposed")

	// ErrInvalidHandle indicates a zero-value proxy or a null native handle.
	ErrInvalidHandle = errors.New("gstgo: invalid handle")

	// ErrNotBus indicates a bus operation on an object that is not a bus.
	ErrNotBus = errors.New("gstgo: object is not a bus")

	// ErrNoBus indicates the element is not inside a pipeline.
	ErrNoBus = errors.New("gstgo: element has no bus")

	// ErrUnknownSignal indicates a signal name that maps to no message kind.
	ErrUnknownSignal = errors.New("gstgo: unknown signal")

	// ErrNilHandler indicates a nil listener or sync handler.
	ErrNilHandler = errors.New("gstgo: nil handler")

	// ErrNoSuchFactory indicates an element factory that is not installed.
	ErrNoSuchFactory = errors.New("gstgo: no such element factory")

	// ErrElementNotFound indicates a bin has no child with the given name.
	ErrElementNotFound = errors.New("gstgo: element not found")

	// ErrAddFailed indicates an element could not be added to a bin.
	ErrAddFailed = errors.New("gstgo: could not add element to bin")

	// ErrLinkFailed indicates two elements could not be linked.
	ErrLinkFailed = errors.New("gstgo: could not link elements")

	// ErrParseLaunch indicates a pipeline description could not be parsed.
	ErrParseLaunch = errors.New("gstgo: could not parse pipeline description")

	// ErrStateChangeFailed indicates an element refused a state change.
	ErrStateChangeFailed = errors.New("gstgo: state change failed")

	// ErrQueryFailed indicates a position or duration query was not answered.
	ErrQueryFailed = errors.New("gstgo: query failed")

	// ErrWrongMessageType indicates a payload accessor called on a message of
	// another kind.
	ErrWrongMessageType = errors.New("gstgo: wrong message type")
)
