//go:build !ios && !android && (amd64 || arm64)

package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obinnaokechukwu/gstgo"
)

func sampleEvents() []Event {
	return []Event{
		{Seqnum: 1, Type: "state-changed", Source: "pipeline0",
			Detail: DescribeStateChange(gstgo.StateNull, gstgo.StateReady, gstgo.StateVoidPending)},
		{Seqnum: 2, Type: "state-changed", Source: "pipeline0",
			Detail: DescribeStateChange(gstgo.StateReady, gstgo.StatePaused, gstgo.StatePlaying)},
		{Seqnum: 7, Type: "buffering", Source: "queue0", Detail: "42%"},
		{Seqnum: 9, Type: "warning", Source: "src",
			Detail: DescribeGError(&gstgo.GError{Message: "falling behind", Debug: "gstbasesrc.c(3072)\n"})},
		{Seqnum: 11, Type: "segment-start", Source: "src",
			Detail: DescribePosition(gstgo.FormatTime, int64(1500*time.Millisecond))},
		{Seqnum: 12, Type: "async-done", Source: "pipeline0", Detail: "running-time 0s"},
		{Seqnum: 15, Type: "eos", Source: "pipeline0"},
		{Seqnum: 16, Type: "error",
			Detail: DescribeGError(&gstgo.GError{Domain: "gst-stream-error-quark", Code: 1, Message: "Internal data stream error."})},
	}
}

func TestEventWriterGolden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	for _, format := range ValidFormats {
		t.Run(format, func(t *testing.T) {
			buf := &bytes.Buffer{}
			w := &EventWriter{Format: format, Writer: buf}
			for _, ev := range sampleEvents() {
				require.NoError(t, w.Write(ev))
			}
			g.Assert(t, "events_"+format, buf.Bytes())
		})
	}
}

func TestDescribeHelpers(t *testing.T) {
	assert.Equal(t, "READY -> PLAYING",
		DescribeStateChange(gstgo.StateReady, gstgo.StatePlaying, gstgo.StateVoidPending))
	assert.Equal(t, "", DescribeGError(nil))
	assert.Equal(t, "oops", DescribeGError(&gstgo.GError{Message: "oops"}))
	assert.Equal(t, "4096 bytes", DescribePosition(gstgo.FormatBytes, 4096))
	assert.Equal(t, "2s", DescribePosition(gstgo.FormatTime, int64(2*time.Second)))
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		name    string
		values  []string
		want    []gstgo.MessageType
		wantErr bool
	}{
		{name: "empty selects all", values: nil, want: []gstgo.MessageType{gstgo.MessageAny}},
		{name: "kind names", values: []string{"eos", "STATE_CHANGED"},
			want: []gstgo.MessageType{gstgo.MessageEOS, gstgo.MessageStateChanged}},
		{name: "signals", values: []string{"message::error", "Message::Async-Done"},
			want: []gstgo.MessageType{gstgo.MessageError, gstgo.MessageAsyncDone}},
		{name: "duplicates collapse", values: []string{"eos", "message::eos"},
			want: []gstgo.MessageType{gstgo.MessageEOS}},
		{name: "any wins", values: []string{"eos", "any"}, want: []gstgo.MessageType{gstgo.MessageAny}},
		{name: "bare message signal", values: []string{"message"}, want: []gstgo.MessageType{gstgo.MessageAny}},
		{name: "unknown kind", values: []string{"eos", "nope"}, wantErr: true},
		{name: "unknown is not a filter", values: []string{"unknown"}, wantErr: true},
		{name: "wrong signal", values: []string{"sync-message::eos"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFilter(tt.values)
			if tt.wantErr {
				assert.ErrorIs(t, err, gstgo.ErrUnknownSignal)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
