package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/quantsweep/internal/sweep"
)

func newPlanCmd() *cobra.Command {
	flags := &sweepFlags{}
	var format string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the commands a sweep would run",
		Long: `Print every command the run command would issue, without running them.

The shell format prints one command per line and can be piped to sh.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			tmpl, err := cfg.Template()
			if err != nil {
				return err
			}

			commands := sweep.NewRunner(tmpl, cfg.Range, nil, nil).Plan()
			out := cmd.OutOrStdout()

			switch format {
			case "shell":
				for _, c := range commands {
					fmt.Fprintln(out, c.String())
				}
			case "table":
				table := NewTable("LEVEL", "OUTPUT", "COMMAND")
				for _, c := range commands {
					table.AddRow(strconv.Itoa(c.Level), c.Output, c.String())
				}
				table.FitColumn(2, outputWidth(out))
				fmt.Fprint(out, table.Render())
			default:
				return fmt.Errorf("invalid format: %s (valid: table, shell)", format)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format (table, shell)")

	return cmd
}
