package task

import (
	"github.com/kilnworks/kiln/internal/envfacts"
	"github.com/kilnworks/kiln/internal/os/exec"
	"github.com/kilnworks/kiln/pkg/log"
)

// Launcher starts processes on behalf of tasks.
type Launcher interface {
	Start(path string, settings *exec.Settings) (*exec.Process, error)
}

// Context is handed to task actions, criteria and handlers.
type Context struct {
	Task     *Task
	Logger   log.Logger
	Launcher Launcher
	Facts    *envfacts.Facts
	// WorkingDir is the directory processes are started in unless their settings say otherwise.
	WorkingDir string
	// Env holds extra variables passed to every process started through the shell runner.
	Env map[string]string
}

// Name returns the name of the task being executed.
func (tc *Context) Name() string {
	if tc.Task == nil {
		return ""
	}

	return tc.Task.Name()
}
