// Package sweep drives a colour-quantisation sweep: one external command per
// quantisation level, issued strictly in order, with every outcome recorded.
package sweep

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// Default sweep bounds: levels 1 through 49.
const (
	DefaultStart = 1
	DefaultEnd   = 50
)

// MaxLevel is the highest level a range may include. ImageMagick cannot
// usefully quantise to more colours than a 500x500 image has pixels.
const MaxLevel = 1 << 16

// Range is a half-open interval of quantisation levels [Start, End).
type Range struct {
	Start int
	End   int
}

var _ pflag.Value = (*Range)(nil)

// DefaultRange returns the range [1, 50).
func DefaultRange() Range {
	return Range{Start: DefaultStart, End: DefaultEnd}
}

// ParseRange parses "start:end". A bare "end" means "1:end".
func ParseRange(s string) (Range, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Range{}, fmt.Errorf("empty range")
	}

	startStr, endStr, found := strings.Cut(s, ":")
	if !found {
		startStr, endStr = strconv.Itoa(DefaultStart), s
	}

	start, err := strconv.Atoi(strings.TrimSpace(startStr))
	if err != nil {
		return Range{}, fmt.Errorf("invalid range start %q: %w", startStr, err)
	}
	end, err := strconv.Atoi(strings.TrimSpace(endStr))
	if err != nil {
		return Range{}, fmt.Errorf("invalid range end %q: %w", endStr, err)
	}

	r := Range{Start: start, End: end}
	if err := r.Validate(); err != nil {
		return Range{}, err
	}
	return r, nil
}

// Validate checks the range bounds.
func (r Range) Validate() error {
	if r.Start < 1 {
		return fmt.Errorf("range start must be at least 1, got %d", r.Start)
	}
	if r.End <= r.Start {
		return fmt.Errorf("range end (%d) must be greater than start (%d)", r.End, r.Start)
	}
	if r.End-1 > MaxLevel {
		return fmt.Errorf("range end (%d) exceeds the maximum level %d", r.End, MaxLevel)
	}
	return nil
}

// Len returns the number of levels in the range.
func (r Range) Len() int {
	if r.End <= r.Start {
		return 0
	}
	return r.End - r.Start
}

// Levels returns every level in ascending order.
func (r Range) Levels() []int {
	levels := make([]int, 0, r.Len())
	for i := r.Start; i < r.End; i++ {
		levels = append(levels, i)
	}
	return levels
}

// String implements pflag.Value.
func (r *Range) String() string {
	return fmt.Sprintf("%d:%d", r.Start, r.End)
}

// Set implements pflag.Value.
func (r *Range) Set(s string) error {
	parsed, err := ParseRange(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Type implements pflag.Value.
func (r *Range) Type() string {
	return "range"
}
