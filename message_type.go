//go:build !ios && !android && (amd64 || arm64)

package gstgo

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/obinnaokechukwu/gstgo/internal/native"
)

// MessageType is the kind of a bus message. Listener filters match by
// equality, with MessageAny matching everything.
type MessageType uint32

// Message kinds matching GstMessageType.
const (
	MessageUnknown         = MessageType(native.MessageUnknown)
	MessageEOS             = MessageType(native.MessageEOS)
	MessageError           = MessageType(native.MessageError)
	MessageWarning         = MessageType(native.MessageWarning)
	MessageInfo            = MessageType(native.MessageInfo)
	MessageTag             = MessageType(native.MessageTag)
	MessageBuffering       = MessageType(native.MessageBuffering)
	MessageStateChanged    = MessageType(native.MessageStateChanged)
	MessageStateDirty      = MessageType(native.MessageStateDirty)
	MessageStepDone        = MessageType(native.MessageStepDone)
	MessageClockProvide    = MessageType(native.MessageClockProvide)
	MessageClockLost       = MessageType(native.MessageClockLost)
	MessageNewClock        = MessageType(native.MessageNewClock)
	MessageStructureChange = MessageType(native.MessageStructureChange)
	MessageStreamStatus    = MessageType(native.MessageStreamStatus)
	MessageApplication     = MessageType(native.MessageApplication)
	MessageElement         = MessageType(native.MessageElement)
	MessageSegmentStart    = MessageType(native.MessageSegmentStart)
	MessageSegmentDone     = MessageType(native.MessageSegmentDone)
	MessageDurationChanged = MessageType(native.MessageDurationChanged)
	MessageLatency         = MessageType(native.MessageLatency)
	MessageAsyncStart      = MessageType(native.MessageAsyncStart)
	MessageAsyncDone       = MessageType(native.MessageAsyncDone)
	MessageRequestState    = MessageType(native.MessageRequestState)
	MessageStepStart       = MessageType(native.MessageStepStart)
	MessageQOS             = MessageType(native.MessageQOS)
	MessageProgress        = MessageType(native.MessageProgress)
	MessageTOC             = MessageType(native.MessageTOC)
	MessageResetTime       = MessageType(native.MessageResetTime)
	MessageStreamStart     = MessageType(native.MessageStreamStart)
	MessageNeedContext     = MessageType(native.MessageNeedContext)
	MessageHaveContext     = MessageType(native.MessageHaveContext)
	MessageExtended        = MessageType(native.MessageExtended)

	MessageDeviceAdded        = MessageType(native.MessageDeviceAdded)
	MessageDeviceRemoved      = MessageType(native.MessageDeviceRemoved)
	MessagePropertyNotify     = MessageType(native.MessagePropertyNotify)
	MessageStreamCollection   = MessageType(native.MessageStreamCollection)
	MessageStreamsSelected    = MessageType(native.MessageStreamsSelected)
	MessageRedirect           = MessageType(native.MessageRedirect)
	MessageDeviceChanged      = MessageType(native.MessageDeviceChanged)
	MessageInstantRateRequest = MessageType(native.MessageInstantRateRequest)

	MessageAny = MessageType(native.MessageAny)
)

var messageTypeNames = map[MessageType]string{
	MessageUnknown:            "unknown",
	MessageEOS:                "eos",
	MessageError:              "error",
	MessageWarning:            "warning",
	MessageInfo:               "info",
	MessageTag:                "tag",
	MessageBuffering:          "buffering",
	MessageStateChanged:       "state-changed",
	MessageStateDirty:         "state-dirty",
	MessageStepDone:           "step-done",
	MessageClockProvide:       "clock-provide",
	MessageClockLost:          "clock-lost",
	MessageNewClock:           "new-clock",
	MessageStructureChange:    "structure-change",
	MessageStreamStatus:       "stream-status",
	MessageApplication:        "application",
	MessageElement:            "element",
	MessageSegmentStart:       "segment-start",
	MessageSegmentDone:        "segment-done",
	MessageDurationChanged:    "duration-changed",
	MessageLatency:            "latency",
	MessageAsyncStart:         "async-start",
	MessageAsyncDone:          "async-done",
	MessageRequestState:       "request-state",
	MessageStepStart:          "step-start",
	MessageQOS:                "qos",
	MessageProgress:           "progress",
	MessageTOC:                "toc",
	MessageResetTime:          "reset-time",
	MessageStreamStart:        "stream-start",
	MessageNeedContext:        "need-context",
	MessageHaveContext:        "have-context",
	MessageExtended:           "extended",
	MessageDeviceAdded:        "device-added",
	MessageDeviceRemoved:      "device-removed",
	MessagePropertyNotify:     "property-notify",
	MessageStreamCollection:   "stream-collection",
	MessageStreamsSelected:    "streams-selected",
	MessageRedirect:           "redirect",
	MessageDeviceChanged:      "device-changed",
	MessageInstantRateRequest: "instant-rate-request",
	MessageAny:                "any",
}

var messageTypesByName = func() map[string]MessageType {
	m := make(map[string]MessageType, len(messageTypeNames))
	for t, name := range messageTypeNames {
		m[name] = t
	}
	return m
}()

// String returns the GStreamer nick of the kind, e.g. "state-changed".
func (t MessageType) String() string {
	if name, ok := messageTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("MessageType(%#x)", uint32(t))
}

// MessageTypes returns every named kind, MessageAny excluded, in bit order.
func MessageTypes() []MessageType {
	out := make([]MessageType, 0, len(messageTypeNames))
	for t := range messageTypeNames {
		if t != MessageAny && t != MessageUnknown {
			out = append(out, t)
		}
	}
	slices.Sort(out)
	return out
}

func foldName(s string) string {
	return strings.ReplaceAll(cases.Fold().String(strings.TrimSpace(s)), "_", "-")
}

// ParseMessageType maps a kind name to a MessageType. Matching ignores case
// and treats '-' and '_' alike, so "STATE_CHANGED" and "state-changed" are
// the same kind.
func ParseMessageType(name string) (MessageType, error) {
	if t, ok := messageTypesByName[foldName(name)]; ok {
		return t, nil
	}
	return MessageUnknown, fmt.Errorf("%w: %q", ErrUnknownSignal, name)
}

// ParseSignal maps a bus signal name to the message kind it selects.
// "message" alone selects every kind; "message::<kind>" selects one.
func ParseSignal(signal string) (MessageType, error) {
	category, detail, found := strings.Cut(signal, "::")
	if foldName(category) != "message" {
		return MessageUnknown, fmt.Errorf("%w: %q", ErrUnknownSignal, signal)
	}
	if !found {
		return MessageAny, nil
	}
	t, err := ParseMessageType(detail)
	if err != nil || t == MessageUnknown {
		return MessageUnknown, fmt.Errorf("%w: %q", ErrUnknownSignal, signal)
	}
	return t, nil
}
