package sweep

import (
	"fmt"
	"path"
	"strconv"
	"strings"
)

// Template describes the containerised ImageMagick invocation for one level.
type Template struct {
	// Runtime is the container CLI binary (docker, podman).
	Runtime string
	// Image is the container image carrying ImageMagick.
	Image string
	// HostDir is the absolute directory bind-mounted into the container.
	HostDir string
	// MountPoint is where HostDir appears inside the container.
	MountPoint string
	// Input is the input filename, relative to HostDir.
	Input string
	// OutputPattern names the output file; it must contain exactly one %d.
	OutputPattern string
	// Resize is the ImageMagick -resize geometry.
	Resize string
	// Dither is the ImageMagick -dither method.
	Dither string
	// RemoveContainer adds --rm so finished containers are not kept.
	RemoveContainer bool
}

// Command is one fully-built invocation.
type Command struct {
	Level  int
	Path   string
	Args   []string
	Output string
}

// OutputName returns the output filename for level.
func (t Template) OutputName(level int) string {
	return fmt.Sprintf(t.OutputPattern, level)
}

// Validate checks that a template can produce commands.
func (t Template) Validate() error {
	switch {
	case t.Runtime == "":
		return fmt.Errorf("container runtime cannot be empty")
	case t.Image == "":
		return fmt.Errorf("container image cannot be empty")
	case t.HostDir == "":
		return fmt.Errorf("host directory cannot be empty")
	case t.MountPoint == "" || !strings.HasPrefix(t.MountPoint, "/"):
		return fmt.Errorf("mount point must be an absolute container path, got %q", t.MountPoint)
	case t.Input == "":
		return fmt.Errorf("input filename cannot be empty")
	case t.Resize == "":
		return fmt.Errorf("resize geometry cannot be empty")
	case t.Dither == "":
		return fmt.Errorf("dither method cannot be empty")
	}
	return ValidateOutputPattern(t.OutputPattern)
}

// ValidateOutputPattern checks that pattern holds exactly one %d verb and no other verbs.
func ValidateOutputPattern(pattern string) error {
	if pattern == "" {
		return fmt.Errorf("output pattern cannot be empty")
	}
	verbs := 0
	for i := 0; i < len(pattern); i++ {
		if pattern[i] != '%' {
			continue
		}
		if i+1 >= len(pattern) {
			return fmt.Errorf("output pattern %q ends with a bare %%", pattern)
		}
		switch pattern[i+1] {
		case '%':
		case 'd':
			verbs++
		default:
			return fmt.Errorf("output pattern %q contains unsupported verb %%%c", pattern, pattern[i+1])
		}
		i++
	}
	if verbs != 1 {
		return fmt.Errorf("output pattern %q must contain exactly one %%d, found %d", pattern, verbs)
	}
	return nil
}

// Command builds the invocation for level. It is pure: the same template and
// level always give the same command.
func (t Template) Command(level int) Command {
	output := t.OutputName(level)

	args := []string{"run"}
	if t.RemoveContainer {
		args = append(args, "--rm")
	}
	args = append(args,
		"-v", t.HostDir+":"+t.MountPoint,
		t.Image,
		path.Join(t.MountPoint, t.Input),
		"-resize", t.Resize,
		"-colorspace", "RGB",
		"-channel", "RGB",
		"-quantize", "RGB",
		"-colors", strconv.Itoa(level),
		"-dither", t.Dither,
		"+channel",
		"-colorspace", "sRGB",
		path.Join(t.MountPoint, output),
	)

	return Command{
		Level:  level,
		Path:   t.Runtime,
		Args:   args,
		Output: output,
	}
}

// String renders the command as a single shell-quoted line.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, shellQuote(c.Path))
	for _, a := range c.Args {
		parts = append(parts, shellQuote(a))
	}
	return strings.Join(parts, " ")
}

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	safe := true
	for _, r := range s {
		if !isShellSafe(r) {
			safe = false
			break
		}
	}
	if safe {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func isShellSafe(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune("-_./:=+,@%", r)
}
