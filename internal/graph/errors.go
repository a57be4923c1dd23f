package graph

import (
	"fmt"
	"strings"
)

// TaskNotFoundError is returned when the target task is not registered.
type TaskNotFoundError struct {
	Name string
}

func (err TaskNotFoundError) Error() string {
	return fmt.Sprintf("The target %q was not found", err.Name)
}

// ConfigurationError marks the error as a configuration error.
func (TaskNotFoundError) ConfigurationError() {}

// DependencyNotFoundError is returned when a task depends on a task that is not registered.
type DependencyNotFoundError struct {
	Task       string
	Dependency string
}

func (err DependencyNotFoundError) Error() string {
	return fmt.Sprintf("Task %q is dependent on task %q which does not exist", err.Task, err.Dependency)
}

// ConfigurationError marks the error as a configuration error.
func (DependencyNotFoundError) ConfigurationError() {}

// DependencyCycleError holds the chain of tasks forming a cycle, the first and last entries being the same task.
type DependencyCycleError []string

func (err DependencyCycleError) Error() string {
	return "Found a dependency cycle between tasks: " + strings.Join([]string(err), " -> ")
}

// ConfigurationError marks the error as a configuration error.
func (DependencyCycleError) ConfigurationError() {}
