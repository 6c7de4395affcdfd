//go:build !ios && !android && (amd64 || arm64)

package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Success(map[string]string{"result": "eos"}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
	assert.Nil(t, resp.Error)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Error("pipeline-error", "no such element", nil))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "pipeline-error", resp.Error.Code)
	assert.Equal(t, "no such element", resp.Error.Message)
}

func TestOutputFormatter_Text(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf, Verbose: true}

	require.NoError(t, formatter.Success(Summary{Result: ResultEOS, Messages: 3}))
	require.NoError(t, formatter.Error("timeout", "no EOS within 1s", Summary{Result: ResultTimeout}))

	assert.Equal(t,
		"eos after 3 messages\nError [timeout]: no EOS within 1s\nDetails: timeout after 0 messages\n",
		buf.String())
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	out, diag := &bytes.Buffer{}, &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: out, ErrWriter: diag}

	formatter.VerboseLog("hidden")
	assert.Empty(t, diag.String())

	formatter.Verbose = true
	formatter.VerboseLog("GStreamer %d.%d", 1, 24)
	assert.Equal(t, "GStreamer 1.24\n", diag.String())
	assert.Empty(t, out.String())
}

func TestGetExitCode(t *testing.T) {
	cause := errors.New("boom")
	wrapped := fmt.Errorf("running: %w", WrapExitError(ExitCommandError, "loading GStreamer", cause))

	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(cause))
	assert.Equal(t, ExitFailure, GetExitCode(NewExitError(ExitFailure, "timed out")))
	assert.Equal(t, ExitCommandError, GetExitCode(wrapped))
	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, "running: loading GStreamer: boom", wrapped.Error())
}

func TestSummaryString(t *testing.T) {
	assert.Equal(t, "eos after 12 messages", Summary{Result: ResultEOS, Messages: 12}.String())
	assert.Equal(t, "error after 4 messages: not negotiated",
		Summary{Result: ResultError, Messages: 4, Error: "not negotiated"}.String())
}
