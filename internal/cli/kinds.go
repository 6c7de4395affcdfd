//go:build !ios && !android && (amd64 || arm64)

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/obinnaokechukwu/gstgo"
)

// NewKindsCommand creates the kinds command, which lists the signal names
// accepted by launch --filter.
func NewKindsCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the message kinds accepted by --filter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			signals := Signals()
			formatter := &OutputFormatter{Format: root.Format, Writer: cmd.OutOrStdout()}
			if root.Format == "json" {
				return formatter.Success(signals)
			}
			for _, s := range signals {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), s); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// Signals returns the detailed bus signal name of every message kind.
func Signals() []string {
	kinds := gstgo.MessageTypes()
	out := make([]string, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, "message::"+k.String())
	}
	return out
}
