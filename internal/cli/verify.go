package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/quantsweep/internal/image"
	"github.com/jmylchreest/quantsweep/internal/sweep"
)

func newVerifyCmd() *cobra.Command {
	flags := &sweepFlags{}

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check the outputs of a sweep",
		Long: `Check that every level produced its output file, that the file decodes,
and that it holds no more distinct colours than its level.`,
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

			logger := newLogger(cmd)
			results := sweep.Verify(tmpl, cfg.Range, image.NewFileLoader())

			table := NewTable("LEVEL", "OUTPUT", "COLOURS", "STATUS")
			failed := 0
			for _, v := range results {
				status, colours := "ok", strconv.Itoa(v.Colours)
				switch {
				case !v.Exists && v.Err == nil:
					status, colours = "missing", "-"
				case v.Err != nil:
					status = v.Err.Error()
				}
				if !v.OK() {
					failed++
					logger.Debug("verification failed", "level", v.Level, "path", v.Path, "status", status)
				}
				table.AddRow(strconv.Itoa(v.Level), tmpl.OutputName(v.Level), colours, status)
			}
			table.FitColumn(3, outputWidth(cmd.OutOrStdout()))

			if !isQuiet(cmd) {
				fmt.Fprint(cmd.OutOrStdout(), table.Render())
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d outputs failed verification", failed, len(results))
			}
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
