// Package task contains the build task model: tasks, their definition surface and the registry that owns them.
package task

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/kilnworks/kiln/internal/errors"
)

// Action is a unit of work of a task.
type Action func(ctx context.Context, tc *Context) error

// Criteria decides whether a task runs. All criteria of a task must hold.
type Criteria func(ctx context.Context, tc *Context) bool

// ErrorHandler is called when a task fails and the run is about to stop.
type ErrorHandler func(ctx context.Context, tc *Context, err error) error

// FinallyHandler is called after the task was executed, whether it failed or not.
type FinallyHandler func(ctx context.Context, tc *Context) error

// Task is a named unit of work in the build graph.
type Task struct {
	registry *Registry

	name            string
	description     string
	dependencies    []string
	criteria        []Criteria
	actions         []Action
	continueOnError bool
	errorHandler    ErrorHandler
	finallyHandler  FinallyHandler

	mu       sync.Mutex
	status   Status
	duration time.Duration
}

// Name returns the name the task was registered with.
func (task *Task) Name() string {
	return task.name
}

// Description returns the task description.
func (task *Task) Description() string {
	return task.description
}

// Dependencies returns the names of the tasks this task depends on, in declaration order.
func (task *Task) Dependencies() []string {
	return slices.Clone(task.dependencies)
}

// Criteria returns the task criteria.
func (task *Task) Criteria() []Criteria {
	return slices.Clone(task.criteria)
}

// Actions returns the task actions, in execution order.
func (task *Task) Actions() []Action {
	return slices.Clone(task.actions)
}

// ContinueOnError returns true if a failure of this task must not stop the run.
func (task *Task) ContinueOnError() bool {
	return task.continueOnError
}

// ErrorHandler returns the error handler, or nil.
func (task *Task) ErrorHandler() ErrorHandler {
	return task.errorHandler
}

// FinallyHandler returns the finally handler, or nil.
func (task *Task) FinallyHandler() FinallyHandler {
	return task.finallyHandler
}

// Status returns the current status.
func (task *Task) Status() Status {
	task.mu.Lock()
	defer task.mu.Unlock()

	return task.status
}

// Duration returns the time spent executing the task actions.
func (task *Task) Duration() time.Duration {
	task.mu.Lock()
	defer task.mu.Unlock()

	return task.duration
}

// Transition moves the task from StatusNotRun to a terminal status and records its duration.
// Any other move is rejected.
func (task *Task) Transition(status Status, duration time.Duration) error {
	task.mu.Lock()
	defer task.mu.Unlock()

	if task.status.IsTerminal() || !status.IsTerminal() {
		return errors.Errorf("task %q: %s -> %s: %w", task.name, task.status, status, ErrInvalidTransition)
	}

	if status == StatusSkipped {
		duration = 0
	}

	task.status = status
	task.duration = duration

	return nil
}

func (task *Task) String() string {
	return task.name
}
