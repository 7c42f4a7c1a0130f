// internal/cli/modes.go
package cli

import (
	"github.com/spf13/cobra"

	"lovefi-matcher/internal/compatibility"
	"lovefi-matcher/internal/output"
)

func newModesCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "modes",
		Short: "List the scoring configurations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return output.Write(cmd.OutOrStdout(), root.outputFmt, compatibility.Modes())
		},
	}
}
