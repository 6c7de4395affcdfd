//go:build !ios && !android && (amd64 || arm64)

package gstgo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSignal(t *testing.T) {
	tests := []struct {
		signal string
		want   MessageType
	}{
		{"message", MessageAny},
		{"message::state-changed", MessageStateChanged},
		{"message::state_changed", MessageStateChanged},
		{"message::STATE-CHANGED", MessageStateChanged},
		{"Message::Eos", MessageEOS},
		{"message::error", MessageError},
		{"message::async-done", MessageAsyncDone},
		{"message::instant_rate_request", MessageInstantRateRequest},
		{" message :: buffering ", MessageBuffering},
	}
	for _, tt := range tests {
		t.Run(tt.signal, func(t *testing.T) {
			got, err := ParseSignal(tt.signal)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSignalRejects(t *testing.T) {
	for _, signal := range []string{
		"",
		"notify",
		"message::",
		"message::nope",
		"message::unknown",
		"sync-message::eos",
	} {
		_, err := ParseSignal(signal)
		assert.ErrorIs(t, err, ErrUnknownSignal, "signal %q", signal)
	}
}

func TestMessageTypeNames(t *testing.T) {
	assert.Equal(t, "state-changed", MessageStateChanged.String())
	assert.Equal(t, "eos", MessageEOS.String())
	assert.Equal(t, "any", MessageAny.String())
	assert.Equal(t, "MessageType(0x3)", MessageType(3).String())

	kinds := MessageTypes()
	assert.NotContains(t, kinds, MessageAny)
	assert.NotContains(t, kinds, MessageUnknown)
	assert.Equal(t, MessageEOS, kinds[0])
	for i := 1; i < len(kinds); i++ {
		assert.Less(t, kinds[i-1], kinds[i])
	}
	for _, k := range kinds {
		back, err := ParseMessageType(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, back)
	}
}

func TestStateNames(t *testing.T) {
	assert.Equal(t, "VOID_PENDING", StateVoidPending.String())
	assert.Equal(t, "PLAYING", StatePlaying.String())
	assert.Equal(t, "State(9)", State(9).String())
	assert.Equal(t, "ASYNC", StateChangeAsync.String())
}
