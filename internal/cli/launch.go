//go:build !ios && !android && (amd64 || arm64)

package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"k8s.io/klog"

	"github.com/obinnaokechukwu/gstgo"
)

// Launch results reported in the summary.
const (
	ResultEOS         = "eos"
	ResultError       = "error"
	ResultTimeout     = "timeout"
	ResultInterrupted = "interrupted"
)

type launchOptions struct {
	filters []string
	timeout time.Duration
}

// Summary is printed once the pipeline stops.
type Summary struct {
	Result   string `json:"result"`
	Messages int64  `json:"messages"`
	Error    string `json:"error,omitempty"`
}

func (s Summary) String() string {
	out := fmt.Sprintf("%s after %d messages", s.Result, s.Messages)
	if s.Error != "" {
		out += ": " + s.Error
	}
	return out
}

// NewLaunchCommand creates the launch command.
func NewLaunchCommand(root *RootOptions) *cobra.Command {
	opts := &launchOptions{}

	cmd := &cobra.Command{
		Use:   "launch <pipeline-description>",
		Short: "Run a pipeline and print its bus messages",
		Long: `Builds a pipeline from a gst-launch style description, sets it to PLAYING
and prints every bus message until EOS, an error, the timeout or an interrupt.

Examples:
  gst-busmon launch fakesrc num-buffers=10 ! fakesink
  gst-busmon launch --filter state-changed,message::eos videotestsrc num-buffers=30 ! fakesink`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLaunch(cmd.Context(), root, opts, strings.Join(args, " "), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringSliceVar(&opts.filters, "filter", nil, "message kinds to print, e.g. state-changed or message::eos (default all)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "give up when no EOS arrives in time (0 waits forever)")

	return cmd
}

// ParseFilter turns --filter values into message kinds. Values are kind
// names or "message::<kind>" signals. An empty filter, or one naming "any"
// or the bare "message" signal, selects every kind.
func ParseFilter(values []string) ([]gstgo.MessageType, error) {
	var kinds []gstgo.MessageType
	seen := map[gstgo.MessageType]bool{}
	for _, v := range values {
		var (
			kind gstgo.MessageType
			err  error
		)
		if strings.Contains(v, "::") || strings.EqualFold(strings.TrimSpace(v), "message") {
			kind, err = gstgo.ParseSignal(v)
		} else {
			kind, err = gstgo.ParseMessageType(v)
		}
		if err != nil {
			return nil, err
		}
		if kind == gstgo.MessageUnknown {
			return nil, fmt.Errorf("%w: %q", gstgo.ErrUnknownSignal, v)
		}
		if kind == gstgo.MessageAny {
			return []gstgo.MessageType{gstgo.MessageAny}, nil
		}
		if !seen[kind] {
			seen[kind] = true
			kinds = append(kinds, kind)
		}
	}
	if len(kinds) == 0 {
		return []gstgo.MessageType{gstgo.MessageAny}, nil
	}
	return kinds, nil
}

// monitor collects the listener side of a launch run.
type monitor struct {
	events  *EventWriter
	printed atomic.Int64
	done    chan *gstgo.GError
}

func newMonitor(events *EventWriter) *monitor {
	return &monitor{events: events, done: make(chan *gstgo.GError, 1)}
}

func (m *monitor) print(_ gstgo.Bus, msg *gstgo.Message) {
	m.printed.Add(1)
	if err := m.events.Write(NewEvent(msg)); err != nil {
		klog.Warningf("writing event: %v", err)
	}
}

// finish records the first terminal message; later ones are ignored.
func (m *monitor) finish(gerr *gstgo.GError) {
	select {
	case m.done <- gerr:
	default:
	}
}

func (m *monitor) connect(bus gstgo.Bus, kinds []gstgo.MessageType) error {
	for _, k := range kinds {
		if _, err := bus.Connect(k, m.print); err != nil {
			return err
		}
	}
	if _, err := bus.OnEOS(func(*gstgo.Object) { m.finish(nil) }); err != nil {
		return err
	}
	_, err := bus.OnError(func(src *gstgo.Object, gerr *gstgo.GError) {
		klog.V(2).Infof("error from %s: %v", src, gerr)
		if gerr == nil {
			gerr = &gstgo.GError{Message: "unknown error"}
		}
		m.finish(gerr)
	})
	return err
}

func runLaunch(ctx context.Context, root *RootOptions, opts *launchOptions, desc string, out, errOut io.Writer) error {
	kinds, err := ParseFilter(opts.filters)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --filter", err)
	}

	formatter := &OutputFormatter{
		Format:    root.Format,
		Writer:    out,
		ErrWriter: errOut,
		Verbose:   root.Verbose,
	}

	var initOpts []gstgo.Option
	if root.LibDir != "" {
		initOpts = append(initOpts, gstgo.WithLibraryDir(root.LibDir))
	}
	if err := gstgo.Init(initOpts...); err != nil {
		return WrapExitError(ExitCommandError, "loading GStreamer", err)
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := gstgo.Deinit(dctx); err != nil {
			klog.Warningf("shutting down GStreamer: %v", err)
		}
	}()
	major, minor, micro, _ := gstgo.Version()
	formatter.VerboseLog("GStreamer %d.%d.%d", major, minor, micro)

	pipeline, err := gstgo.ParseLaunch(desc)
	if err != nil {
		return WrapExitError(ExitCommandError, "parsing pipeline", err)
	}
	defer pipeline.Dispose()

	bus, err := pipeline.Bus()
	if err != nil {
		return WrapExitError(ExitFailure, "getting pipeline bus", err)
	}
	defer bus.Dispose()

	mon := newMonitor(&EventWriter{Format: root.Format, Writer: out})
	if err := mon.connect(bus, kinds); err != nil {
		return WrapExitError(ExitFailure, "connecting to bus", err)
	}

	formatter.VerboseLog("playing %q", desc)
	if err := pipeline.Play(); err != nil {
		return WrapExitError(ExitFailure, "starting pipeline", err)
	}

	var timeout <-chan time.Time
	if opts.timeout > 0 {
		timer := time.NewTimer(opts.timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	var summary Summary
	select {
	case gerr := <-mon.done:
		summary.Result = ResultEOS
		if gerr != nil {
			summary.Result = ResultError
			summary.Error = DescribeGError(gerr)
		}
	case <-timeout:
		summary.Result = ResultTimeout
	case <-ctx.Done():
		summary.Result = ResultInterrupted
	}

	if err := pipeline.Stop(); err != nil {
		klog.Warningf("stopping pipeline: %v", err)
	}
	fctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := gstgo.Flush(fctx); err != nil {
		klog.Warningf("draining bus listeners: %v", err)
	}
	summary.Messages = mon.printed.Load()

	switch summary.Result {
	case ResultError:
		if err := formatter.Error("pipeline-error", summary.Error, summary); err != nil {
			return err
		}
		return NewExitError(ExitFailure, "pipeline reported an error")
	case ResultTimeout:
		if err := formatter.Error("timeout", fmt.Sprintf("no EOS within %s", opts.timeout), summary); err != nil {
			return err
		}
		return NewExitError(ExitFailure, "timed out waiting for EOS")
	}
	return formatter.Success(summary)
}
