package config

import (
	"path/filepath"
	"testing"

	"github.com/jmylchreest/quantsweep/internal/sweep"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestDefaults(t *testing.T) {
	s, err := NewBuilder().Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if s.Runtime != "docker" {
		t.Errorf("Expected runtime 'docker', got %q", s.Runtime)
	}
	if s.Image != "dpokidov/imagemagick" {
		t.Errorf("Expected image 'dpokidov/imagemagick', got %q", s.Image)
	}
	if s.Range != sweep.DefaultRange() {
		t.Errorf("Expected default range, got %v", s.Range)
	}
	if s.Input != "input.png" || s.OutputPattern != "output_%d.png" {
		t.Errorf("Unexpected input/output: %q %q", s.Input, s.OutputPattern)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Defaults should validate: %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	env := envMap(map[string]string{
		EnvRuntime:       "podman",
		EnvImage:         "docker.io/library/imagemagick",
		EnvInput:         "photo.jpg",
		EnvOutputPattern: "q%d.png",
		EnvWorkDir:       "/srv/images",
		EnvRange:         "2:9",
		EnvRemove:        "false",
	})

	s, err := NewBuilder().WithGetenv(env).WithEnvConfig().Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if s.Runtime != "podman" || s.Image != "docker.io/library/imagemagick" {
		t.Errorf("Runtime/image not overridden: %q %q", s.Runtime, s.Image)
	}
	if s.Input != "photo.jpg" || s.OutputPattern != "q%d.png" || s.WorkDir != "/srv/images" {
		t.Errorf("Paths not overridden: %+v", s)
	}
	if s.Range != (sweep.Range{Start: 2, End: 9}) {
		t.Errorf("Expected range 2:9, got %v", s.Range)
	}
	if s.RemoveContainer {
		t.Error("Expected RemoveContainer false")
	}
}

func TestEnvIgnoredWithoutWithEnvConfig(t *testing.T) {
	env := envMap(map[string]string{EnvRuntime: "podman"})
	s, err := NewBuilder().WithGetenv(env).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if s.Runtime != DefaultRuntime {
		t.Errorf("Expected default runtime, got %q", s.Runtime)
	}
}

func TestEnvInvalidValues(t *testing.T) {
	tests := map[string]string{
		EnvRange:  "zero:one",
		EnvRemove: "perhaps",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			env := envMap(map[string]string{key: value})
			if _, err := NewBuilder().WithGetenv(env).WithEnvConfig().Build(); err == nil {
				t.Errorf("Expected error for %s=%q", key, value)
			}
		})
	}
}

func TestBuildIsRepeatable(t *testing.T) {
	env := map[string]string{EnvRange: "bad"}
	b := NewBuilder().WithGetenv(envMap(env)).WithEnvConfig()

	if _, err := b.Build(); err == nil {
		t.Fatal("Expected error for malformed range")
	}

	env[EnvRange] = "3:6"
	s, err := b.Build()
	if err != nil {
		t.Fatalf("Expected second Build to succeed once the env is fixed, got %v", err)
	}
	if s.Range != (sweep.Range{Start: 3, End: 6}) {
		t.Errorf("Expected range 3:6, got %v", s.Range)
	}
}

func TestTemplateResolvesWorkDir(t *testing.T) {
	dir := t.TempDir()
	s := Defaults()
	s.WorkDir = dir

	tmpl, err := s.Template()
	if err != nil {
		t.Fatalf("Template failed: %v", err)
	}
	if !filepath.IsAbs(tmpl.HostDir) {
		t.Errorf("Expected absolute host dir, got %q", tmpl.HostDir)
	}
	if tmpl.HostDir != dir {
		t.Errorf("Expected host dir %q, got %q", dir, tmpl.HostDir)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Sweep)
	}{
		{"bad range", func(s *Sweep) { s.Range = sweep.Range{Start: 5, End: 1} }},
		{"input with dir", func(s *Sweep) { s.Input = "../input.png" }},
		{"pattern with dir", func(s *Sweep) { s.OutputPattern = "out/%d.png" }},
		{"pattern without verb", func(s *Sweep) { s.OutputPattern = "out.png" }},
		{"empty image", func(s *Sweep) { s.Image = "" }},
		{"output not an image", func(s *Sweep) { s.OutputPattern = "output_%d.miff" }},
		{"input not an image", func(s *Sweep) { s.Input = "input.txt" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Defaults()
			tt.mutate(&s)
			if err := s.Validate(); err == nil {
				t.Errorf("Expected validation error for %s", tt.name)
			}
		})
	}
}
