//go:build !ios && !android && (amd64 || arm64)

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/obinnaokechukwu/gstgo"
)

// Event is one bus message as printed by the monitor.
type Event struct {
	Seqnum uint32 `json:"seqnum"`
	Type   string `json:"type"`
	Source string `json:"source,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// NewEvent extracts the printable fields of msg. It must run while msg is
// still valid, i.e. inside the listener.
func NewEvent(msg *gstgo.Message) Event {
	ev := Event{
		Seqnum: msg.Seqnum(),
		Type:   msg.Type().String(),
		Detail: describe(msg),
	}
	if src := msg.PeekSource(); src != nil {
		ev.Source = src.Name()
	}
	return ev
}

func describe(msg *gstgo.Message) string {
	switch msg.Type() {
	case gstgo.MessageError:
		return describeParsed(msg.ParseError())
	case gstgo.MessageWarning:
		return describeParsed(msg.ParseWarning())
	case gstgo.MessageInfo:
		return describeParsed(msg.ParseInfo())
	case gstgo.MessageStateChanged:
		old, cur, pending, err := msg.ParseStateChanged()
		if err != nil {
			return ""
		}
		return DescribeStateChange(old, cur, pending)
	case gstgo.MessageBuffering:
		if p, err := msg.ParseBuffering(); err == nil {
			return fmt.Sprintf("%d%%", p)
		}
	case gstgo.MessageTag:
		if tags, err := msg.ParseTag(); err == nil {
			return tags
		}
	case gstgo.MessageSegmentStart:
		if f, pos, err := msg.ParseSegmentStart(); err == nil {
			return DescribePosition(f, pos)
		}
	case gstgo.MessageSegmentDone:
		if f, pos, err := msg.ParseSegmentDone(); err == nil {
			return DescribePosition(f, pos)
		}
	case gstgo.MessageAsyncDone:
		if rt, err := msg.ParseAsyncDone(); err == nil && rt >= 0 {
			return "running-time " + rt.String()
		}
	case gstgo.MessageApplication, gstgo.MessageElement:
		return msg.StructureName()
	}
	return ""
}

func describeParsed(gerr *gstgo.GError, err error) string {
	if err != nil {
		return ""
	}
	return DescribeGError(gerr)
}

// DescribeStateChange renders a transition as "OLD -> NEW", adding the
// pending state when there is one.
func DescribeStateChange(old, cur, pending gstgo.State) string {
	s := old.String() + " -> " + cur.String()
	if pending != gstgo.StateVoidPending {
		s += " (pending " + pending.String() + ")"
	}
	return s
}

// DescribeGError renders the message of an error, warning or info payload
// with its debug string, if any, in brackets.
func DescribeGError(gerr *gstgo.GError) string {
	if gerr == nil {
		return ""
	}
	if gerr.Debug == "" {
		return gerr.Message
	}
	return gerr.Message + " [" + strings.TrimSpace(gerr.Debug) + "]"
}

// DescribePosition renders a segment position in its format's unit.
func DescribePosition(f gstgo.Format, pos int64) string {
	if f == gstgo.FormatTime {
		return time.Duration(pos).String()
	}
	return fmt.Sprintf("%d %s", pos, f)
}

// EventWriter prints events one per line, as text or JSON lines.
type EventWriter struct {
	Format string
	Writer io.Writer
}

// Write prints ev in the configured format.
func (w *EventWriter) Write(ev Event) error {
	if w.Format == "json" {
		enc := json.NewEncoder(w.Writer)
		enc.SetEscapeHTML(false)
		return enc.Encode(ev)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[%d] %s", ev.Seqnum, ev.Type)
	if ev.Source != "" {
		fmt.Fprintf(&b, " from %s", ev.Source)
	}
	if ev.Detail != "" {
		fmt.Fprintf(&b, ": %s", ev.Detail)
	}
	b.WriteByte('\n')
	_, err := io.WriteString(w.Writer, b.String())
	return err
}
