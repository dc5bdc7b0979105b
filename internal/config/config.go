// Package config assembles sweep settings from defaults and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jmylchreest/quantsweep/internal/image"
	"github.com/jmylchreest/quantsweep/internal/sweep"
)

// Environment variables read by WithEnvConfig.
const (
	EnvRuntime       = "QUANTSWEEP_RUNTIME"
	EnvImage         = "QUANTSWEEP_IMAGE"
	EnvInput         = "QUANTSWEEP_INPUT"
	EnvOutputPattern = "QUANTSWEEP_OUTPUT_PATTERN"
	EnvWorkDir       = "QUANTSWEEP_WORKDIR"
	EnvRange         = "QUANTSWEEP_RANGE"
	EnvRemove        = "QUANTSWEEP_RM"
)

// Defaults matching the reference sweep.
const (
	DefaultRuntime       = "docker"
	DefaultImage         = "dpokidov/imagemagick"
	DefaultMountPoint    = "/imgs"
	DefaultInput         = "input.png"
	DefaultOutputPattern = "output_%d.png"
	DefaultResize        = "500x500"
	DefaultDither        = "FloydSteinberg"
)

// Sweep holds everything needed to plan, run and verify a sweep.
type Sweep struct {
	Runtime         string
	Image           string
	WorkDir         string
	MountPoint      string
	Input           string
	OutputPattern   string
	Resize          string
	Dither          string
	RemoveContainer bool
	Range           sweep.Range

	// Strict turns any failed level into a command error.
	Strict bool
	// Archive, if set, is the .tar.xz written after the sweep.
	Archive string
}

// Template converts the settings into a command template. WorkDir is made
// absolute because bind mounts require it.
func (s *Sweep) Template() (sweep.Template, error) {
	workDir := s.WorkDir
	if workDir == "" {
		workDir = "."
	}
	abs, err := filepath.Abs(workDir)
	if err != nil {
		return sweep.Template{}, fmt.Errorf("failed to resolve work directory: %w", err)
	}

	return sweep.Template{
		Runtime:         s.Runtime,
		Image:           s.Image,
		HostDir:         abs,
		MountPoint:      s.MountPoint,
		Input:           s.Input,
		OutputPattern:   s.OutputPattern,
		Resize:          s.Resize,
		Dither:          s.Dither,
		RemoveContainer: s.RemoveContainer,
	}, nil
}

// Validate checks the settings.
func (s *Sweep) Validate() error {
	if err := s.Range.Validate(); err != nil {
		return fmt.Errorf("invalid range: %w", err)
	}
	if strings.ContainsAny(s.Input, `/\`) {
		return fmt.Errorf("input must be a filename inside the work directory, got %q", s.Input)
	}
	if strings.ContainsAny(s.OutputPattern, `/\`) {
		return fmt.Errorf("output pattern must be a filename inside the work directory, got %q", s.OutputPattern)
	}
	// Input and outputs must be formats FileLoader decodes.
	for _, name := range []string{s.Input, s.OutputPattern} {
		if !image.IsImageFile(name) {
			return fmt.Errorf("%q must have one of the extensions %s",
				name, strings.Join(image.SupportedImageExtensions(), ", "))
		}
	}
	tmpl, err := s.Template()
	if err != nil {
		return err
	}
	return tmpl.Validate()
}

// Builder provides a fluent interface for constructing Sweep settings.
type Builder struct {
	sweep  Sweep
	useEnv bool
	getenv func(string) string
}

// NewBuilder creates a builder seeded with the reference defaults.
func NewBuilder() *Builder {
	return &Builder{
		sweep:  Defaults(),
		getenv: os.Getenv,
	}
}

// Defaults returns the reference sweep settings.
func Defaults() Sweep {
	return Sweep{
		Runtime:         DefaultRuntime,
		Image:           DefaultImage,
		WorkDir:         ".",
		MountPoint:      DefaultMountPoint,
		Input:           DefaultInput,
		OutputPattern:   DefaultOutputPattern,
		Resize:          DefaultResize,
		Dither:          DefaultDither,
		RemoveContainer: true,
		Range:           sweep.DefaultRange(),
	}
}

// WithEnvConfig applies QUANTSWEEP_* environment overrides at Build time.
func (b *Builder) WithEnvConfig() *Builder {
	b.useEnv = true
	return b
}

// WithGetenv replaces the environment lookup (useful for testing).
func (b *Builder) WithGetenv(getenv func(string) string) *Builder {
	b.getenv = getenv
	return b
}

// Build returns the assembled settings. Malformed environment values are
// reported rather than silently dropped.
func (b *Builder) Build() (*Sweep, error) {
	s := b.sweep
	if b.useEnv {
		if errs := b.applyEnv(&s); len(errs) > 0 {
			return nil, errs[0]
		}
	}
	return &s, nil
}

func (b *Builder) applyEnv(s *Sweep) []error {
	var errs []error
	setString := func(key string, dst *string) {
		if v := strings.TrimSpace(b.getenv(key)); v != "" {
			*dst = v
		}
	}
	setString(EnvRuntime, &s.Runtime)
	setString(EnvImage, &s.Image)
	setString(EnvInput, &s.Input)
	setString(EnvOutputPattern, &s.OutputPattern)
	setString(EnvWorkDir, &s.WorkDir)

	if v := strings.TrimSpace(b.getenv(EnvRange)); v != "" {
		r, err := sweep.ParseRange(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvRange, err))
		} else {
			s.Range = r
		}
	}

	if v := strings.TrimSpace(b.getenv(EnvRemove)); v != "" {
		rm, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvRemove, err))
		} else {
			s.RemoveContainer = rm
		}
	}
	return errs
}
