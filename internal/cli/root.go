//go:build !ios && !android && (amd64 || arm64)

package cli

import (
	"flag"
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"k8s.io/klog"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	LibDir  string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for gst-busmon.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	klogFlags := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(klogFlags)

	cmd := &cobra.Command{
		Use:           "gst-busmon",
		Short:         "gst-busmon - watch a GStreamer pipeline bus",
		Long:          "Runs GStreamer pipelines and prints the messages posted on their bus.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			if opts.Verbose && !bool(klog.V(4)) {
				if err := klogFlags.Set("v", "4"); err != nil {
					return WrapExitError(ExitCommandError, "enabling verbose logging", err)
				}
			}
			return nil
		},
	}

	// Global flags. -v belongs to klog's verbosity level.
	cmd.PersistentFlags().BoolVar(&opts.Verbose, "verbose", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.LibDir, "lib-dir", "", "directory holding the GStreamer shared libraries")
	cmd.PersistentFlags().AddGoFlagSet(klogFlags)

	cmd.AddCommand(NewLaunchCommand(opts))
	cmd.AddCommand(NewKindsCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
