package sweep

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/quantsweep/internal/executor"
)

// Result is the outcome of one level's invocation.
type Result struct {
	Level    int
	Command  Command
	ExitCode int
	Err      error
	Stderr   []byte
	Duration time.Duration
}

// OK reports whether the invocation exited cleanly.
func (r Result) OK() bool {
	return r.Err == nil
}

// Runner issues one command per level, sequentially.
type Runner struct {
	template Template
	levels   Range
	process  executor.ProcessRunner
	logger   hclog.Logger

	// OnResult, if set, is called after every invocation returns.
	OnResult func(Result)
}

// NewRunner creates a Runner. A nil logger discards output.
func NewRunner(template Template, levels Range, process executor.ProcessRunner, logger hclog.Logger) *Runner {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Runner{
		template: template,
		levels:   levels,
		process:  process,
		logger:   logger.Named("sweep"),
	}
}

// Plan returns the commands Run would issue, in order.
func (r *Runner) Plan() []Command {
	var commands []Command
	for level := r.levels.Start; level < r.levels.End; level++ {
		commands = append(commands, r.template.Command(level))
	}
	return commands
}

// Run issues every command in the range. A failing invocation is recorded and
// the sweep moves on; only cancellation of ctx stops it early.
func (r *Runner) Run(ctx context.Context) *Report {
	report := &Report{Range: r.levels}
	start := time.Now()

	r.logger.Info("starting sweep",
		"levels", r.levels.String(),
		"runtime", r.template.Runtime,
		"image", r.template.Image)

	for level := r.levels.Start; level < r.levels.End; level++ {
		if ctx.Err() != nil {
			report.Cancelled = true
			r.logger.Warn("sweep cancelled", "next_level", level, "error", ctx.Err())
			break
		}

		result := r.runLevel(ctx, level)
		report.Results = append(report.Results, result)

		if r.OnResult != nil {
			r.OnResult(result)
		}
	}

	report.Elapsed = time.Since(start)
	r.logger.Info("sweep finished",
		"attempted", report.Attempted(),
		"succeeded", report.Succeeded(),
		"failed", report.Failed(),
		"elapsed", report.Elapsed.Round(time.Millisecond))

	return report
}

func (r *Runner) runLevel(ctx context.Context, level int) Result {
	cmd := r.template.Command(level)
	r.logger.Debug("invoking", "level", level, "command", cmd.String())

	began := time.Now()
	_, stderr, err := r.process.Run(ctx, cmd.Path, cmd.Args, nil)
	result := Result{
		Level:    level,
		Command:  cmd,
		ExitCode: executor.ExitCode(err),
		Err:      err,
		Stderr:   stderr,
		Duration: time.Since(began),
	}

	if err != nil {
		r.logger.Warn("level failed",
			"level", level,
			"exit_code", result.ExitCode,
			"error", err,
			"stderr", strings.TrimSpace(string(stderr)))
	} else {
		r.logger.Debug("level done", "level", level, "output", cmd.Output, "duration", result.Duration)
	}

	return result
}
