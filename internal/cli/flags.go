package cli

import (
	"github.com/spf13/cobra"

	"github.com/jmylchreest/quantsweep/internal/config"
	"github.com/jmylchreest/quantsweep/internal/sweep"
)

// sweepFlags are the template flags shared by run, plan, verify and sheet.
type sweepFlags struct {
	levels        sweep.Range
	runtime       string
	image         string
	input         string
	outputPattern string
	workDir       string
	resize        string
	dither        string
	remove        bool
}

func (f *sweepFlags) register(cmd *cobra.Command) {
	d := config.Defaults()
	f.levels = d.Range

	flags := cmd.Flags()
	flags.VarP(&f.levels, "range", "r", "quantisation levels as start:end (end exclusive)")
	flags.StringVar(&f.runtime, "runtime", d.Runtime, "container runtime binary (docker, podman)")
	flags.StringVar(&f.image, "image", d.Image, "container image providing ImageMagick")
	flags.StringVarP(&f.input, "input", "i", d.Input, "input image filename inside the work directory")
	flags.StringVar(&f.outputPattern, "output-pattern", d.OutputPattern, "output filename pattern with one %d for the level")
	flags.StringVarP(&f.workDir, "workdir", "w", d.WorkDir, "directory mounted into the container")
	flags.StringVar(&f.resize, "resize", d.Resize, "ImageMagick -resize geometry")
	flags.StringVar(&f.dither, "dither", d.Dither, "ImageMagick -dither method (None, FloydSteinberg, Riemersma)")
	flags.BoolVar(&f.remove, "rm", d.RemoveContainer, "remove each container after it exits")
}

// load builds the settings: defaults, then QUANTSWEEP_* environment, then
// any flag the user set explicitly.
func (f *sweepFlags) load(cmd *cobra.Command) (*config.Sweep, error) {
	cfg, err := config.NewBuilder().WithEnvConfig().Build()
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	if changed("range") {
		cfg.Range = f.levels
	}
	overrides := []struct {
		flag string
		dst  *string
		val  string
	}{
		{"runtime", &cfg.Runtime, f.runtime},
		{"image", &cfg.Image, f.image},
		{"input", &cfg.Input, f.input},
		{"output-pattern", &cfg.OutputPattern, f.outputPattern},
		{"workdir", &cfg.WorkDir, f.workDir},
		{"resize", &cfg.Resize, f.resize},
		{"dither", &cfg.Dither, f.dither},
	}
	for _, o := range overrides {
		if changed(o.flag) {
			*o.dst = o.val
		}
	}
	if changed("rm") {
		cfg.RemoveContainer = f.remove
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
