// Package cli provides the command-line interface for quantsweep.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/quantsweep/internal/version"
)

// NewRootCmd builds the command tree. Each call returns a fresh tree so tests
// can execute commands independently.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "quantsweep",
		Short: "Sweep ImageMagick colour quantisation across a range of levels",
		Long: `quantsweep runs a containerised ImageMagick once per quantisation level,
reducing one input image to 1, 2, 3 ... N colours with Floyd-Steinberg
dithering and writing output_<N>.png for each level.

Failed levels are logged and the sweep carries on. Use verify to check the
outputs and sheet to lay them out side by side.`,
		Version:      version.Short(),
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress non-error output")

	rootCmd.SetVersionTemplate(version.String() + "\n")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newPlanCmd())
	rootCmd.AddCommand(newVerifyCmd())
	rootCmd.AddCommand(newSheetCmd())

	return rootCmd
}

// Execute runs the root command and exits 1 on error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including build date, commit hash, and Go version.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

// newLogger builds the command's logger from the global verbosity flags.
// Logs go to stderr so stdout stays clean for tables and plans.
func newLogger(cmd *cobra.Command) hclog.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	quiet, _ := cmd.Flags().GetBool("quiet")

	level := hclog.Info
	switch {
	case quiet:
		level = hclog.Error
	case verbose:
		level = hclog.Debug
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:   "quantsweep",
		Output: cmd.ErrOrStderr(),
		Level:  level,
		Color:  hclog.AutoColor,
	})
}

// isQuiet reports whether --quiet was given.
func isQuiet(cmd *cobra.Command) bool {
	quiet, _ := cmd.Flags().GetBool("quiet")
	return quiet
}

// outputWidth returns the terminal width of the command's stdout, or a
// default when stdout is redirected.
func outputWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if width, ok := terminalWidth(f); ok {
			return width
		}
	}
	return defaultTermWidth
}
