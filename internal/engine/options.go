package engine

import (
	"github.com/kilnworks/kiln/internal/envfacts"
	"github.com/kilnworks/kiln/internal/task"
	"github.com/kilnworks/kiln/internal/telemetry"
	"github.com/kilnworks/kiln/pkg/log"
)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Task loggers are derived from it with the task name as prefix.
func WithLogger(logger log.Logger) Option {
	return func(engine *Engine) {
		engine.logger = logger
	}
}

// WithLauncher sets the process launcher handed to tasks.
func WithLauncher(launcher task.Launcher) Option {
	return func(engine *Engine) {
		engine.launcher = launcher
	}
}

// WithFacts sets the environment facts handed to tasks.
func WithFacts(facts *envfacts.Facts) Option {
	return func(engine *Engine) {
		engine.facts = facts
	}
}

// WithTelemeter traces the run and each task.
func WithTelemeter(telemeter *telemetry.Telemeter) Option {
	return func(engine *Engine) {
		engine.telemeter = telemeter
	}
}

// WithReportColor colors the report summary.
func WithReportColor(shouldColor bool) Option {
	return func(engine *Engine) {
		engine.reportColor = shouldColor
	}
}

// WithWorkingDir sets the directory processes started by tasks run in.
func WithWorkingDir(dir string) Option {
	return func(engine *Engine) {
		engine.workingDir = dir
	}
}

// WithEnv sets extra environment variables for processes started by tasks.
func WithEnv(env map[string]string) Option {
	return func(engine *Engine) {
		engine.env = env
	}
}

// WithExclusive runs the target only, without its dependencies.
func WithExclusive(exclusive bool) Option {
	return func(engine *Engine) {
		engine.exclusive = exclusive
	}
}

// WithDryRun evaluates criteria and reports what would run, without running any action or hook.
func WithDryRun(dryRun bool) Option {
	return func(engine *Engine) {
		engine.dryRun = dryRun
	}
}
