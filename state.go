//go:build !ios && !android && (amd64 || arm64)

package gstgo

import (
	"fmt"

	"github.com/obinnaokechukwu/gstgo/internal/native"
)

// State is an element state.
type State int32

// Element states matching GstState.
const (
	StateVoidPending State = State(native.StateVoidPending)
	StateNull        State = State(native.StateNull)
	StateReady       State = State(native.StateReady)
	StatePaused      State = State(native.StatePaused)
	StatePlaying     State = State(native.StatePlaying)
)

// String returns the GStreamer name of the state.
func (s State) String() string {
	switch s {
	case StateVoidPending:
		return "VOID_PENDING"
	case StateNull:
		return "NULL"
	case StateReady:
		return "READY"
	case StatePaused:
		return "PAUSED"
	case StatePlaying:
		return "PLAYING"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// StateChangeReturn is the result of a state change request.
type StateChangeReturn int32

const (
	StateChangeFailure   StateChangeReturn = StateChangeReturn(native.StateChangeFailure)
	StateChangeSuccess   StateChangeReturn = StateChangeReturn(native.StateChangeSuccess)
	StateChangeAsync     StateChangeReturn = StateChangeReturn(native.StateChangeAsync)
	StateChangeNoPreroll StateChangeReturn = StateChangeReturn(native.StateChangeNoPreroll)
)

func (r StateChangeReturn) String() string {
	switch r {
	case StateChangeFailure:
		return "FAILURE"
	case StateChangeSuccess:
		return "SUCCESS"
	case StateChangeAsync:
		return "ASYNC"
	case StateChangeNoPreroll:
		return "NO_PREROLL"
	}
	return fmt.Sprintf("StateChangeReturn(%d)", int32(r))
}

// Format is a GstFormat, the unit of segment positions and queries.
type Format int32

const (
	FormatUndefined Format = Format(native.FormatUndefined)
	FormatDefault   Format = Format(native.FormatDefault)
	FormatBytes     Format = Format(native.FormatBytes)
	FormatTime      Format = Format(native.FormatTime)
	FormatBuffers   Format = Format(native.FormatBuffers)
	FormatPercent   Format = Format(native.FormatPercent)
)

func (f Format) String() string {
	switch f {
	case FormatUndefined:
		return "undefined"
	case FormatDefault:
		return "default"
	case FormatBytes:
		return "bytes"
	case FormatTime:
		return "time"
	case FormatBuffers:
		return "buffers"
	case FormatPercent:
		return "percent"
	}
	return fmt.Sprintf("Format(%d)", int32(f))
}

// BusSyncReply is what a sync handler decides for a message.
type BusSyncReply int

const (
	// BusDrop releases the message; listeners never see it.
	BusDrop BusSyncReply = native.BusDrop
	// BusPass queues the message for the listeners.
	BusPass BusSyncReply = native.BusPass
	// BusAsync behaves like BusPass.
	BusAsync BusSyncReply = native.BusAsync
)

func (r BusSyncReply) String() string {
	switch r {
	case BusDrop:
		return "DROP"
	case BusPass:
		return "PASS"
	case BusAsync:
		return "ASYNC"
	}
	return fmt.Sprintf("BusSyncReply(%d)", int(r))
}
