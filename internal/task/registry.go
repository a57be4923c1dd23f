package task

import (
	"strings"
	"sync"

	"github.com/kilnworks/kiln/internal/errors"
)

// Registry owns the tasks of a build. Task names are case-insensitive.
type Registry struct {
	mu     sync.RWMutex
	tasks  map[string]*Task
	order  []*Task
	errs   *errors.MultiError
	frozen bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tasks: make(map[string]*Task),
	}
}

// Register adds a task and returns its builder. Registering a name twice is recorded as a
// DuplicateTaskError, returned by Err, and the returned builder defines a task that is never run.
func (registry *Registry) Register(name string) *Builder {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	if registry.frozen {
		panic(ErrRegistryFrozen)
	}

	task := &Task{registry: registry, name: name}

	if strings.TrimSpace(name) == "" {
		registry.errs = registry.errs.Append(errors.New(EmptyTaskNameError{}))
		return &Builder{task: task}
	}

	key := strings.ToLower(name)

	if _, ok := registry.tasks[key]; ok {
		registry.errs = registry.errs.Append(errors.New(DuplicateTaskError{Name: name}))
		return &Builder{task: task}
	}

	registry.tasks[key] = task
	registry.order = append(registry.order, task)

	return &Builder{task: task}
}

// Lookup returns the task registered under the given name.
func (registry *Registry) Lookup(name string) (*Task, bool) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	task, ok := registry.tasks[strings.ToLower(name)]

	return task, ok
}

// Tasks returns all tasks in registration order.
func (registry *Registry) Tasks() []*Task {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	return append([]*Task(nil), registry.order...)
}

// Err returns the registration errors, or nil.
func (registry *Registry) Err() error {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	return registry.errs.ErrorOrNil()
}

// Freeze forbids any further change of task definitions.
func (registry *Registry) Freeze() {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	registry.frozen = true
}

// IsFrozen returns true once Freeze was called.
func (registry *Registry) IsFrozen() bool {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	return registry.frozen
}
