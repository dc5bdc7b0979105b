package sweep

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmylchreest/quantsweep/internal/image"
)

// Verification is the check result for one level's output file.
type Verification struct {
	Level   int
	Path    string
	Exists  bool
	Colours int
	Err     error
}

// OK reports whether the output exists, decodes and holds no more colours
// than its level.
func (v Verification) OK() bool {
	return v.Exists && v.Err == nil && v.Colours <= v.Level
}

// OutputPath returns the host path of the output for level.
func (t Template) OutputPath(level int) string {
	return filepath.Join(t.HostDir, t.OutputName(level))
}

// Verify inspects the output file of every level in levels.
func Verify(t Template, levels Range, loader image.Loader) []Verification {
	if loader == nil {
		loader = image.NewFileLoader()
	}

	results := make([]Verification, 0, levels.Len())
	for _, level := range levels.Levels() {
		v := Verification{Level: level, Path: t.OutputPath(level)}

		if _, err := os.Stat(v.Path); err != nil {
			if !os.IsNotExist(err) {
				v.Err = fmt.Errorf("failed to stat output: %w", err)
			}
			results = append(results, v)
			continue
		}
		v.Exists = true

		img, err := loader.Load(v.Path)
		if err != nil {
			v.Err = err
			results = append(results, v)
			continue
		}

		v.Colours = image.CountColours(img)
		if v.Colours > level {
			v.Err = fmt.Errorf("found %d colours, expected at most %d", v.Colours, level)
		}
		results = append(results, v)
	}

	return results
}
