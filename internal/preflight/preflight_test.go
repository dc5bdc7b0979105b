package preflight

import (
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-ps"

	"github.com/jmylchreest/quantsweep/internal/sweep"
)

// fakeProcess implements ps.Process.
type fakeProcess struct {
	pid  int
	name string
}

func (p fakeProcess) Pid() int           { return p.pid }
func (p fakeProcess) PPid() int          { return 1 }
func (p fakeProcess) Executable() string { return p.name }

func processes(names ...string) func() ([]ps.Process, error) {
	return func() ([]ps.Process, error) {
		out := make([]ps.Process, 0, len(names))
		for i, n := range names {
			out = append(out, fakeProcess{pid: 100 + i, name: n})
		}
		return out, nil
	}
}

func newTestChecker(found bool, procs func() ([]ps.Process, error)) *Checker {
	c := New(nil)
	c.LookPath = func(file string) (string, error) {
		if found {
			return "/usr/bin/" + file, nil
		}
		return "", errors.New("executable file not found in $PATH")
	}
	c.Processes = procs
	return c
}

func writeInput(t *testing.T, dir string) {
	t.Helper()
	f, err := os.Create(filepath.Join(dir, "input.png"))
	if err != nil {
		t.Fatalf("Failed to create input: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 12, 9))); err != nil {
		t.Fatalf("Failed to encode input: %v", err)
	}
}

func template(dir, runtime string) sweep.Template {
	return sweep.Template{Runtime: runtime, HostDir: dir, Input: "input.png"}
}

func TestCheckAllPass(t *testing.T) {
	dir := t.TempDir()
	writeInput(t, dir)

	c := newTestChecker(true, processes("bash", "dockerd"))
	findings := c.Check(context.Background(), template(dir, "docker"))

	if len(findings) != 3 {
		t.Fatalf("Expected 3 findings, got %d", len(findings))
	}
	if w := Warnings(findings); len(w) != 0 {
		t.Errorf("Expected no warnings, got %+v", w)
	}
	if findings[2].Message != filepath.Join(dir, "input.png")+" (12x9)" {
		t.Errorf("Unexpected input message: %q", findings[2].Message)
	}
}

func TestCheckMissingRuntimeAndInput(t *testing.T) {
	c := newTestChecker(false, processes("bash"))
	findings := c.Check(context.Background(), template(t.TempDir(), "docker"))

	warnings := Warnings(findings)
	if len(warnings) != 3 {
		t.Fatalf("Expected 3 warnings, got %+v", findings)
	}
	for i, want := range []string{"runtime", "daemon", "input"} {
		if warnings[i].Check != want {
			t.Errorf("Warning %d: expected check %q, got %q", i, want, warnings[i].Check)
		}
	}
}

func TestCheckDaemonUnknownRuntime(t *testing.T) {
	c := newTestChecker(true, processes())
	f := c.checkDaemon("/opt/bin/custom-runtime")
	if f.Severity != SeverityOK {
		t.Errorf("Expected unknown runtime to pass, got %+v", f)
	}
}

func TestCheckDaemonPodman(t *testing.T) {
	c := newTestChecker(true, processes("conmon"))
	if f := c.checkDaemon("/usr/bin/podman"); f.Severity != SeverityOK {
		t.Errorf("Expected podman daemon to be detected, got %+v", f)
	}
}

func TestCheckDaemonListError(t *testing.T) {
	c := newTestChecker(true, func() ([]ps.Process, error) {
		return nil, errors.New("permission denied")
	})
	if f := c.checkDaemon("docker"); f.Severity != SeverityWarn {
		t.Errorf("Expected warning when listing fails, got %+v", f)
	}
}

func TestCheckCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newTestChecker(true, processes("dockerd"))
	if findings := c.Check(ctx, template(t.TempDir(), "docker")); len(findings) != 1 {
		t.Errorf("Expected only the runtime check after cancellation, got %d", len(findings))
	}
}
