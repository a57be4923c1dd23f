package task

import (
	"fmt"

	"github.com/kilnworks/kiln/internal/errors"
)

var (
	// ErrInvalidTransition is returned when a task status is changed more than once.
	ErrInvalidTransition = errors.New("invalid task status transition")
	// ErrRegistryFrozen is the panic value for task definition changes after the registry was frozen.
	ErrRegistryFrozen = errors.New("task registry is frozen, tasks cannot be changed once a run started")
)

// DuplicateTaskError is returned when two tasks are registered under the same name.
type DuplicateTaskError struct {
	Name string
}

func (err DuplicateTaskError) Error() string {
	return fmt.Sprintf("Another task with the name %q has already been added", err.Name)
}

// ConfigurationError marks the error as a configuration error.
func (DuplicateTaskError) ConfigurationError() {}

// EmptyTaskNameError is returned when a task is registered without a name.
type EmptyTaskNameError struct{}

func (EmptyTaskNameError) Error() string {
	return "Task name cannot be empty"
}

// ConfigurationError marks the error as a configuration error.
func (EmptyTaskNameError) ConfigurationError() {}
