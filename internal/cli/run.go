package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/quantsweep/internal/compression"
	"github.com/jmylchreest/quantsweep/internal/executor"
	"github.com/jmylchreest/quantsweep/internal/preflight"
	"github.com/jmylchreest/quantsweep/internal/security"
	"github.com/jmylchreest/quantsweep/internal/sweep"
)

var (
	// newProcessRunner creates the runner used by the run command.
	newProcessRunner = func(dir string) executor.ProcessRunner {
		r := executor.NewRealProcessRunner()
		r.Dir = dir
		return r
	}

	// newPreflightChecker creates the checker used by the run command.
	newPreflightChecker = func(logger hclog.Logger) *preflight.Checker {
		return preflight.New(logger)
	}
)

type runOptions struct {
	sweepFlags
	strict        bool
	archive       string
	preflightOnly bool
	skipPreflight bool
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the quantisation sweep",
		Long: `Run one containerised ImageMagick invocation per quantisation level.

Each level resizes the input, converts it to linear RGB, quantises it to
that many colours with dithering, converts back to sRGB and writes the
output file. Levels run one at a time in ascending order. A level that
fails is logged and the sweep continues with the next one.

Examples:
  # Levels 1-49 on ./input.png using docker (the defaults)
  quantsweep run

  # Levels 2-16 with podman, failing the command if any level fails
  quantsweep run --runtime podman --range 2:17 --strict

  # Archive every output afterwards
  quantsweep run --archive sweep.tar.xz

  # Only check that the runtime and input look usable
  quantsweep run --preflight-only`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(cmd, opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "exit non-zero if any level fails")
	cmd.Flags().StringVar(&opts.archive, "archive", "", "write successful outputs to this .tar.xz after the sweep")
	cmd.Flags().BoolVar(&opts.preflightOnly, "preflight-only", false, "run host checks and exit")
	cmd.Flags().BoolVar(&opts.skipPreflight, "skip-preflight", false, "skip host checks")

	return cmd
}

func runSweep(cmd *cobra.Command, opts *runOptions) error {
	cfg, err := opts.load(cmd)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	cfg.Strict = opts.strict
	cfg.Archive = opts.archive

	tmpl, err := cfg.Template()
	if err != nil {
		return err
	}

	logger := newLogger(cmd)
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !opts.skipPreflight || opts.preflightOnly {
		findings := newPreflightChecker(logger).Check(ctx, tmpl)
		warnings := preflight.Warnings(findings)
		if opts.preflightOnly {
			table := NewTable("CHECK", "STATUS", "DETAIL")
			for _, f := range findings {
				table.AddRow(f.Check, string(f.Severity), f.Message)
			}
			table.FitColumn(2, outputWidth(cmd.OutOrStdout()))
			fmt.Fprint(cmd.OutOrStdout(), table.Render())
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %d checks passed\n", len(findings)-len(warnings), len(findings))
			return nil
		}
		if len(warnings) > 0 {
			logger.Warn("continuing despite preflight warnings", "warnings", len(warnings))
		}
	}

	runner := sweep.NewRunner(tmpl, cfg.Range, newProcessRunner(tmpl.HostDir), logger)
	var progress *progressLine
	if w := progressWriter(cmd); w != nil {
		progress = &progressLine{w: w, total: cfg.Range.Len()}
		runner.OnResult = progress.update
	}

	report := runner.Run(ctx)
	if progress != nil {
		progress.finish()
	}

	if !isQuiet(cmd) {
		fmt.Fprintf(cmd.OutOrStdout(), "Sweep complete: %d of %d levels attempted, %d succeeded, %d failed (%s)\n",
			report.Attempted(), cfg.Range.Len(), report.Succeeded(), report.Failed(),
			report.Elapsed.Round(time.Millisecond))
	}

	if cfg.Archive != "" {
		if err := archiveOutputs(cmd, logger, cfg.Archive, tmpl.HostDir, report); err != nil {
			return err
		}
	}

	if report.Cancelled || cfg.Strict {
		return report.Err()
	}
	return nil
}

// archiveOutputs packs every output of a successful level that is present on
// disk. A command can exit 0 without writing its file.
func archiveOutputs(cmd *cobra.Command, logger hclog.Logger, dest, hostDir string, report *sweep.Report) error {
	var names []string
	for _, name := range report.Outputs() {
		path := filepath.Join(hostDir, name)
		if err := security.ValidateWithinDir(path, hostDir); err != nil {
			return err
		}
		if _, err := os.Stat(path); err != nil {
			logger.Warn("output missing, not archived", "output", name)
			continue
		}
		names = append(names, name)
	}

	if len(names) == 0 {
		logger.Warn("no outputs to archive", "archive", dest)
		return nil
	}

	if err := compression.PackTarXz(dest, hostDir, names); err != nil {
		return fmt.Errorf("failed to archive outputs: %w", err)
	}

	// Read the archive back; a short entry list means a truncated write.
	entries, err := compression.ListTarXz(dest)
	if err != nil {
		return fmt.Errorf("failed to read back archive: %w", err)
	}
	if len(entries) != len(names) {
		return fmt.Errorf("archive %s holds %d entries, expected %d", dest, len(entries), len(names))
	}
	var size int64
	for _, e := range entries {
		logger.Debug("archived", "entry", e.Name, "bytes", e.Size)
		size += e.Size
	}

	logger.Info("archived outputs", "archive", dest, "files", len(entries), "bytes", size)
	if !isQuiet(cmd) {
		fmt.Fprintf(cmd.OutOrStdout(), "Archived %d outputs to %s (%d bytes uncompressed)\n", len(entries), dest, size)
	}
	return nil
}

// progressLine redraws a single status line as levels complete.
type progressLine struct {
	w       io.Writer
	total   int
	done    int
	written bool
}

func (p *progressLine) update(r sweep.Result) {
	p.done++
	status := "ok"
	if !r.OK() {
		status = "failed"
	}
	fmt.Fprintf(p.w, "\r[%3d/%d] %-24s %-6s", p.done, p.total, r.Command.Output, status)
	p.written = true
}

// finish ends the line so later output starts on a fresh one. It is a no-op
// when nothing was drawn.
func (p *progressLine) finish() {
	if p.written {
		fmt.Fprintln(p.w)
		p.written = false
	}
}

// progressWriter returns stderr when it is an interactive terminal and neither
// --quiet nor --verbose is set; nil otherwise.
func progressWriter(cmd *cobra.Command) io.Writer {
	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose || isQuiet(cmd) {
		return nil
	}
	f, ok := cmd.ErrOrStderr().(*os.File)
	if !ok {
		return nil
	}
	if _, ok := terminalWidth(f); !ok {
		return nil
	}
	return f
}
