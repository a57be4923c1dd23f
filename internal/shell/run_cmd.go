// Package shell runs processes on behalf of tasks and turns their failures into errors.
package shell

import (
	"context"
	"maps"
	"path/filepath"
	"strings"

	"github.com/kilnworks/kiln/internal/errors"
	"github.com/kilnworks/kiln/internal/os/exec"
	"github.com/kilnworks/kiln/internal/task"
	"github.com/kilnworks/kiln/internal/telemetry"
	"github.com/kilnworks/kiln/internal/util"
	"golang.org/x/sync/errgroup"
)

// TraceParentEnv is the variable the trace parent is passed to child processes in.
const TraceParentEnv = "TRACEPARENT"

// ErrNoLauncher is returned when the task context carries no process launcher.
var ErrNoLauncher = errors.New("no process launcher")

// RunCommand starts path through the launcher of the task context and waits until it exits.
//
// Redirected output that is not consumed by a data event is captured in the returned CmdOutput.
// A non-zero exit code is returned as util.ProcessExecutionError, a process killed after
// Settings.Timeout as util.ProcessTimeoutError. Canceling ctx kills the process.
func RunCommand(ctx context.Context, tc *task.Context, path string, settings *exec.Settings) (*util.CmdOutput, error) {
	output := new(util.CmdOutput)

	if tc.Launcher == nil {
		return output, errors.New(ErrNoLauncher)
	}

	settings = prepareSettings(tc, settings)

	attrs := map[string]any{
		"command": path,
		"args":    settings.Arguments.RenderSafe(),
		"dir":     settings.WorkingDirectory,
	}

	err := telemetry.TelemeterFromContext(ctx).Collect(ctx, "run_"+filepath.Base(path), attrs, func(ctx context.Context) error {
		if traceParent := telemetry.TraceParentFromContext(ctx); traceParent != "" {
			tc.Logger.Debugf("Setting trace parent=%q for command %s", traceParent, path)
			settings.EnvironmentVariables[TraceParentEnv] = traceParent
		}

		return runCommand(ctx, tc, path, settings, output)
	})

	return output, err
}

func runCommand(ctx context.Context, tc *task.Context, path string, settings *exec.Settings, output *util.CmdOutput) error {
	tc.Logger.Debugf("Running command: %s %s", path, settings.Arguments.RenderSafe())

	proc, err := tc.Launcher.Start(path, settings)
	if err != nil {
		return err
	}

	stop := context.AfterFunc(ctx, func() {
		if err := proc.Kill(); err != nil {
			tc.Logger.Errorf("Error killing process %d: %v", proc.PID(), err)
		}
	})
	defer stop()

	var readers errgroup.Group

	if settings.RedirectStandardOutput && settings.OnOutputDataReceived == nil {
		lines, err := proc.StandardOutput()
		if err != nil {
			return err
		}

		readers.Go(func() error {
			for line := range lines {
				output.Stdout.WriteString(line + "\n")
			}

			return nil
		})
	}

	if settings.RedirectStandardError && settings.OnErrorDataReceived == nil {
		lines, err := proc.StandardError()
		if err != nil {
			return err
		}

		readers.Go(func() error {
			for line := range lines {
				output.Stderr.WriteString(line + "\n")
			}

			return nil
		})
	}

	exited := true

	if settings.Timeout > 0 {
		exited = proc.WaitForExitTimeout(settings.Timeout)
	} else {
		proc.WaitForExit()
	}

	readers.Wait() //nolint:errcheck

	safeArgs := renderSafeArgs(settings)

	if proc.State() == exec.StateKilled && ctx.Err() != nil {
		return errors.New(context.Cause(ctx))
	}

	if !exited {
		return errors.New(util.ProcessTimeoutError{
			Command: path,
			Args:    safeArgs,
			Timeout: settings.Timeout,
		})
	}

	exitCode, err := proc.ExitCode()
	if err != nil {
		return err
	}

	if exitCode != 0 {
		return errors.New(util.ProcessExecutionError{
			Output:     *output,
			WorkingDir: settings.WorkingDirectory,
			Command:    path,
			Args:       safeArgs,
			ExitCode:   exitCode,
		})
	}

	return nil
}

// prepareSettings returns a copy of settings with the task working directory and environment applied.
func prepareSettings(tc *task.Context, settings *exec.Settings) *exec.Settings {
	prepared := new(exec.Settings)

	if settings != nil {
		*prepared = *settings
	}

	if prepared.WorkingDirectory == "" {
		prepared.WorkingDirectory = tc.WorkingDir
	}

	env := make(map[string]string, len(tc.Env)+len(prepared.EnvironmentVariables)+1)
	maps.Copy(env, tc.Env)
	maps.Copy(env, prepared.EnvironmentVariables)
	prepared.EnvironmentVariables = env

	return prepared
}

func renderSafeArgs(settings *exec.Settings) []string {
	if rendered := strings.TrimSpace(settings.Arguments.RenderSafe()); rendered != "" {
		return []string{rendered}
	}

	return nil
}
