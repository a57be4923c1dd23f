package engine

import (
	"context"

	"github.com/kilnworks/kiln/internal/envfacts"
	"github.com/kilnworks/kiln/internal/task"
	"github.com/kilnworks/kiln/pkg/log"
)

// SetupHook is called once, before the first task that is not skipped.
type SetupHook func(ctx context.Context, sc *SetupContext) error

// TeardownHook is called once when the run ends, if the setup hook was reached.
type TeardownHook func(ctx context.Context, tc *TeardownContext) error

// TaskSetupHook is called before the actions of every task that is not skipped.
type TaskSetupHook func(ctx context.Context, tc *task.Context) error

// TaskTeardownHook is called after the actions of every task that is not skipped. taskErr is the
// task failure, or nil.
type TaskTeardownHook func(ctx context.Context, tc *task.Context, taskErr error) error

// SetupContext is handed to the setup hook.
type SetupContext struct {
	Logger   log.Logger
	Launcher task.Launcher
	Facts    *envfacts.Facts
	Target   string
	// Tasks holds the tasks to be executed, in order.
	Tasks []*task.Task
}

// TeardownContext is handed to the teardown hook.
type TeardownContext struct {
	Logger   log.Logger
	Launcher task.Launcher
	Facts    *envfacts.Facts
	// Err is the failure that stopped the run, or nil.
	Err    error
	Target string
}

// Successful returns true if the run completed without stopping on a failure.
func (tc *TeardownContext) Successful() bool {
	return tc.Err == nil
}
