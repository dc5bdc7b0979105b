package sweep

import (
	"fmt"
	"strings"
	"time"
)

// Report collects the results of a sweep in level order.
type Report struct {
	Range     Range
	Results   []Result
	Cancelled bool
	Elapsed   time.Duration
}

// Attempted returns the number of levels that were invoked.
func (r *Report) Attempted() int {
	return len(r.Results)
}

// Succeeded returns the number of levels whose command exited cleanly.
func (r *Report) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if res.OK() {
			n++
		}
	}
	return n
}

// Failed returns the number of levels whose command failed.
func (r *Report) Failed() int {
	return r.Attempted() - r.Succeeded()
}

// Failures returns the failed results.
func (r *Report) Failures() []Result {
	var failed []Result
	for _, res := range r.Results {
		if !res.OK() {
			failed = append(failed, res)
		}
	}
	return failed
}

// Outputs returns the output filenames of levels that succeeded.
func (r *Report) Outputs() []string {
	var outputs []string
	for _, res := range r.Results {
		if res.OK() {
			outputs = append(outputs, res.Command.Output)
		}
	}
	return outputs
}

// Err summarises failures as an error, or returns nil when every attempted
// level succeeded and the sweep was not cancelled.
func (r *Report) Err() error {
	if r.Cancelled {
		return fmt.Errorf("sweep cancelled after %d of %d levels", r.Attempted(), r.Range.Len())
	}
	failed := r.Failures()
	if len(failed) == 0 {
		return nil
	}
	levels := make([]string, 0, len(failed))
	for _, res := range failed {
		levels = append(levels, fmt.Sprint(res.Level))
	}
	return fmt.Errorf("%d of %d levels failed (levels: %s)", len(failed), r.Attempted(), strings.Join(levels, ", "))
}
