package engine

import (
	"fmt"

	"github.com/kilnworks/kiln/internal/errors"
	"github.com/kilnworks/kiln/internal/task"
)

// TaskExecutionError is returned when a task fails and stops the run.
type TaskExecutionError struct {
	Err  error
	Task string
}

func (err TaskExecutionError) Error() string {
	return fmt.Sprintf("task %q failed: %v", err.Task, err.Err)
}

func (err TaskExecutionError) Unwrap() error {
	return err.Err
}

// TaskAlreadyRunError is returned when a run reaches a task that an earlier run already executed.
type TaskAlreadyRunError struct {
	Task   string
	Status task.Status
}

func (err TaskAlreadyRunError) Error() string {
	return fmt.Sprintf("task %q was already run (%s), a build can only be run once", err.Task, err.Status)
}

// SetupError is returned when the setup hook fails.
type SetupError struct {
	Err error
}

func (err SetupError) Error() string {
	return fmt.Sprintf("setup failed: %v", err.Err)
}

func (err SetupError) Unwrap() error {
	return err.Err
}

// TeardownError is returned when the teardown hook fails after all tasks completed.
type TeardownError struct {
	Err error
}

func (err TeardownError) Error() string {
	return fmt.Sprintf("teardown failed: %v", err.Err)
}

func (err TeardownError) Unwrap() error {
	return err.Err
}

// RunError carries the failure that stopped the run together with the errors raised while
// handling it. Unwrap returns the original failure only.
type RunError struct {
	Err         error
	HandlerErr  error
	TeardownErr error
}

func (err RunError) Error() string {
	msg := err.Err.Error()

	if err.HandlerErr != nil {
		msg += fmt.Sprintf("; error handler: %v", err.HandlerErr)
	}

	if err.TeardownErr != nil {
		msg += fmt.Sprintf("; teardown: %v", err.TeardownErr)
	}

	return msg
}

func (err RunError) Unwrap() error {
	return err.Err
}

// ExitStatus returns the exit code of the failure that stopped the run.
func (err RunError) ExitStatus() (int, error) {
	var exitStatus interface{ ExitStatus() (int, error) }

	if errors.As(err.Err, &exitStatus) {
		return exitStatus.ExitStatus()
	}

	return 1, nil
}

func newRunError(err, handlerErr, teardownErr error) error {
	if handlerErr == nil && teardownErr == nil {
		return err
	}

	return errors.New(RunError{Err: err, HandlerErr: handlerErr, TeardownErr: teardownErr})
}
