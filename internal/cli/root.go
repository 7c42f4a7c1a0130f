// internal/cli/root.go

// Package cli implements matchctl, the offline front end to the scoring
// engine.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"lovefi-matcher/internal/common/logger"
	"lovefi-matcher/internal/output"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// SetVersionInfo sets version information from build flags
func SetVersionInfo(v, c, b string) {
	version = v
	commit = c
	buildTime = b
}

type rootOptions struct {
	outputFmt string
	verbose   bool
	log       logger.Logger
}

// NewRootCmd builds the matchctl command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "matchctl",
		Short: "Score dating profile compatibility from the command line",
		Long: `matchctl runs the compatibility engine against profile files.

Each profile is a JSON document with optional name, age, interests,
location and preferences.max_age_diff fields.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch opts.outputFmt {
			case output.FormatTable, output.FormatJSON:
			default:
				return fmt.Errorf("unsupported output format %q (use table or json)", opts.outputFmt)
			}

			opts.log = logger.NewZapAdapter(logger.New(zapLevel(opts.verbose), "console", "stderr")).
				WithFields(map[string]interface{}{"component": "cli"})
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.outputFmt, "output", "o", output.FormatTable,
		"output format (table, json)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging on stderr")

	cmd.AddCommand(newScoreCmd(opts))
	cmd.AddCommand(newModesCmd(opts))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "matchctl %s\n", version)
			fmt.Fprintf(out, "  commit: %s\n", commit)
			fmt.Fprintf(out, "  built:  %s\n", buildTime)
		},
	}
}

func zapLevel(verbose bool) string {
	if verbose {
		return zap.DebugLevel.String()
	}
	return zap.WarnLevel.String()
}
