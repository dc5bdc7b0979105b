// Package preflight inspects the host before a sweep. Findings are advisory:
// a sweep runs regardless, and each failing level is recorded on its own.
package preflight

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/go-ps"

	"github.com/jmylchreest/quantsweep/internal/image"
	"github.com/jmylchreest/quantsweep/internal/sweep"
)

// Severity grades a finding.
type Severity string

const (
	SeverityOK   Severity = "ok"
	SeverityWarn Severity = "warn"
)

// Finding is the result of one check.
type Finding struct {
	Check    string
	Severity Severity
	Message  string
}

// daemons lists process names that indicate a usable container engine, keyed
// by runtime binary name.
var daemons = map[string][]string{
	"docker":  {"dockerd", "containerd", "com.docker.backend", "Docker Desktop"},
	"podman":  {"podman", "conmon"},
	"nerdctl": {"containerd"},
}

// Checker runs preflight checks. The lookup functions are fields so tests can
// replace them.
type Checker struct {
	LookPath  func(file string) (string, error)
	Processes func() ([]ps.Process, error)
	Logger    hclog.Logger
}

// New creates a Checker bound to the real PATH and process table.
func New(logger hclog.Logger) *Checker {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Checker{
		LookPath:  exec.LookPath,
		Processes: ps.Processes,
		Logger:    logger.Named("preflight"),
	}
}

// Check runs every check for tmpl and returns the findings in a fixed order.
func (c *Checker) Check(ctx context.Context, tmpl sweep.Template) []Finding {
	findings := []Finding{
		c.checkRuntime(tmpl.Runtime),
	}
	if ctx.Err() != nil {
		return findings
	}
	findings = append(findings, c.checkDaemon(tmpl.Runtime), c.checkInput(tmpl))

	for _, f := range findings {
		if f.Severity == SeverityWarn {
			c.Logger.Warn("preflight check failed", "check", f.Check, "message", f.Message)
		} else {
			c.Logger.Debug("preflight check passed", "check", f.Check, "message", f.Message)
		}
	}
	return findings
}

// Warnings returns only the findings with SeverityWarn.
func Warnings(findings []Finding) []Finding {
	var out []Finding
	for _, f := range findings {
		if f.Severity == SeverityWarn {
			out = append(out, f)
		}
	}
	return out
}

func (c *Checker) checkRuntime(runtime string) Finding {
	path, err := c.LookPath(runtime)
	if err != nil {
		return Finding{
			Check:    "runtime",
			Severity: SeverityWarn,
			Message:  fmt.Sprintf("%s not found on PATH: every level will fail", runtime),
		}
	}
	return Finding{Check: "runtime", Severity: SeverityOK, Message: path}
}

// checkDaemon looks for a container engine process. Remote engines
// (DOCKER_HOST) are invisible here, hence a warning rather than an error.
func (c *Checker) checkDaemon(runtime string) Finding {
	names, known := daemons[filepath.Base(runtime)]
	if !known {
		return Finding{
			Check:    "daemon",
			Severity: SeverityOK,
			Message:  fmt.Sprintf("no daemon probe for runtime %q", runtime),
		}
	}

	procs, err := c.Processes()
	if err != nil {
		return Finding{
			Check:    "daemon",
			Severity: SeverityWarn,
			Message:  fmt.Sprintf("failed to list processes: %v", err),
		}
	}

	for _, p := range procs {
		if slices.Contains(names, p.Executable()) {
			return Finding{
				Check:    "daemon",
				Severity: SeverityOK,
				Message:  fmt.Sprintf("%s running (pid %d)", p.Executable(), p.Pid()),
			}
		}
	}

	return Finding{
		Check:    "daemon",
		Severity: SeverityWarn,
		Message:  fmt.Sprintf("none of %s is running; the engine may be remote or stopped", strings.Join(names, ", ")),
	}
}

func (c *Checker) checkInput(tmpl sweep.Template) Finding {
	path := filepath.Join(tmpl.HostDir, tmpl.Input)
	if err := image.ValidateImagePath(path); err != nil {
		return Finding{Check: "input", Severity: SeverityWarn, Message: err.Error()}
	}
	w, h, err := image.GetImageDimensions(path)
	if err != nil {
		return Finding{Check: "input", Severity: SeverityWarn, Message: err.Error()}
	}
	return Finding{Check: "input", Severity: SeverityOK, Message: fmt.Sprintf("%s (%dx%d)", path, w, h)}
}
