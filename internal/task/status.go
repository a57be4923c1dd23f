package task

// Status is the execution status of a task within a run.
type Status int

const (
	StatusNotRun Status = iota
	StatusSkipped
	StatusSucceeded
	StatusFailed
)

var statusNames = map[Status]string{
	StatusNotRun:    "not run",
	StatusSkipped:   "skipped",
	StatusSucceeded: "succeeded",
	StatusFailed:    "failed",
}

func (status Status) String() string {
	return statusNames[status]
}

// IsTerminal returns true for every status except StatusNotRun.
func (status Status) IsTerminal() bool {
	return status != StatusNotRun
}
