// Package report collects the outcome of every task of a build and renders it as a summary, CSV or JSON.
package report

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kilnworks/kiln/internal/errors"
)

// Report captures the runs of a build.
type Report struct {
	ID      string
	Target  string
	Started time.Time

	runs        []*Run
	shouldColor bool

	mu sync.RWMutex
}

// Run captures the outcome of a single task.
type Run struct {
	Name     string
	Started  time.Time
	Ended    time.Time
	Duration time.Duration
	Result   Result
	Reason   *Reason
	Error    string

	mu sync.RWMutex
}

// Result captures the result of a run.
type Result string

// Reason captures the reason for a run result.
type Reason string

const (
	ResultSucceeded Result = "succeeded"
	ResultFailed    Result = "failed"
	ResultSkipped   Result = "skipped"
)

const (
	ReasonCriteriaNotMet Reason = "criteria not met"
	ReasonErrorIgnored   Reason = "error ignored"
	ReasonRunError       Reason = "run error"
	ReasonSetupError     Reason = "setup error"
)

var (
	// ErrRunAlreadyExists is returned when a run already exists in the report.
	ErrRunAlreadyExists = errors.New("run already exists")
	// ErrRunNotFound is returned when a run is not found in the report.
	ErrRunNotFound = errors.New("run not found")
)

// Option configures a report.
type Option func(*Report)

// WithColor enables colors in the summary.
func WithColor(shouldColor bool) Option {
	return func(r *Report) {
		r.shouldColor = shouldColor
	}
}

// NewReport creates a new report for a build of the given target.
func NewReport(target string, opts ...Option) *Report {
	r := &Report{
		ID:      uuid.NewString(),
		Target:  target,
		Started: time.Now(),
		runs:    make([]*Run, 0),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// NewRun creates a new run.
func NewRun(name string) *Run {
	return &Run{
		Name:    name,
		Started: time.Now(),
	}
}

// AddRun adds a run to the report.
// If the run already exists, it returns the ErrRunAlreadyExists error.
func (r *Report) AddRun(run *Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existingRun := range r.runs {
		if existingRun.Name == run.Name {
			return errors.Errorf("%w: %s", ErrRunAlreadyExists, run.Name)
		}
	}

	r.runs = append(r.runs, run)

	return nil
}

// GetRun returns a run from the report, or nil.
func (r *Report) GetRun(name string) *Run {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, run := range r.runs {
		if run.Name == name {
			return run
		}
	}

	return nil
}

// Runs returns the runs in execution order.
func (r *Report) Runs() []*Run {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.runs)
}

// EndRun ends a run.
// If the run does not exist, it returns the ErrRunNotFound error.
// By default, the run is assumed to have succeeded. To change this, pass WithResult to the function.
func (r *Report) EndRun(name string, endOptions ...EndOption) error {
	run := r.GetRun(name)
	if run == nil {
		return errors.Errorf("%w: %s", ErrRunNotFound, name)
	}

	run.mu.Lock()
	defer run.mu.Unlock()

	run.Ended = time.Now()
	run.Duration = run.Ended.Sub(run.Started)
	run.Result = ResultSucceeded

	for _, endOption := range endOptions {
		endOption(run)
	}

	return nil
}

// EndOption are optional configurations for ending a run.
type EndOption func(*Run)

// WithResult sets the result of a run.
func WithResult(result Result) EndOption {
	return func(run *Run) {
		run.Result = result

		if result == ResultSkipped {
			run.Duration = 0
		}
	}
}

// WithReason sets the reason of a run.
func WithReason(reason Reason) EndOption {
	return func(run *Run) {
		run.Reason = &reason
	}
}

// WithDuration overrides the measured duration with the time spent in the task actions.
func WithDuration(duration time.Duration) EndOption {
	return func(run *Run) {
		run.Duration = duration
	}
}

// WithError records the error message of a failed run.
func WithError(err error) EndOption {
	return func(run *Run) {
		if err != nil {
			run.Error = err.Error()
		}
	}
}

// Snapshot returns a copy of the run fields, safe to read while the run is being ended.
func (run *Run) Snapshot() JSONRun {
	run.mu.RLock()
	defer run.mu.RUnlock()

	jsonRun := JSONRun{
		Name:       run.Name,
		Started:    run.Started,
		Ended:      run.Ended,
		DurationMS: run.Duration.Milliseconds(),
		Result:     string(run.Result),
		Error:      run.Error,
	}

	if run.Reason != nil {
		reason := string(*run.Reason)
		jsonRun.Reason = &reason
	}

	return jsonRun
}
