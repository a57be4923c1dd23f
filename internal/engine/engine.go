// Package engine executes a target task and its dependencies in order, honoring criteria,
// failure policies and the setup and teardown hooks of the build.
package engine

import (
	"context"
	"time"

	"github.com/kilnworks/kiln/internal/envfacts"
	"github.com/kilnworks/kiln/internal/errors"
	"github.com/kilnworks/kiln/internal/graph"
	"github.com/kilnworks/kiln/internal/report"
	"github.com/kilnworks/kiln/internal/task"
	"github.com/kilnworks/kiln/internal/telemetry"
	"github.com/kilnworks/kiln/pkg/log"
)

// Engine runs the tasks of a registry.
type Engine struct {
	registry  *task.Registry
	logger    log.Logger
	launcher  task.Launcher
	facts     *envfacts.Facts
	telemeter *telemetry.Telemeter
	env       map[string]string

	setup        SetupHook
	teardown     TeardownHook
	taskSetup    TaskSetupHook
	taskTeardown TaskTeardownHook

	workingDir  string
	reportColor bool
	exclusive   bool
	dryRun      bool
}

// New returns an engine running the tasks of the given registry.
func New(registry *task.Registry, opts ...Option) *Engine {
	engine := &Engine{
		registry: registry,
		logger:   log.Default(),
	}

	for _, opt := range opts {
		opt(engine)
	}

	if engine.facts == nil {
		engine.facts = envfacts.New(nil)
	}

	return engine
}

// RegisterSetup sets the hook called before the first task that is not skipped.
func (engine *Engine) RegisterSetup(hook SetupHook) {
	engine.setup = hook
}

// RegisterTeardown sets the hook called when the run ends.
func (engine *Engine) RegisterTeardown(hook TeardownHook) {
	engine.teardown = hook
}

// RegisterTaskSetup sets the hook called before every task that is not skipped.
func (engine *Engine) RegisterTaskSetup(hook TaskSetupHook) {
	engine.taskSetup = hook
}

// RegisterTaskTeardown sets the hook called after every task that is not skipped.
func (engine *Engine) RegisterTaskTeardown(hook TaskTeardownHook) {
	engine.taskTeardown = hook
}

// Tasks returns the registered tasks in registration order.
func (engine *Engine) Tasks() []*task.Task {
	return engine.registry.Tasks()
}

// Resolve returns the tasks a run of target executes, in order.
func (engine *Engine) Resolve(target string) ([]*task.Task, error) {
	if err := engine.registry.Err(); err != nil {
		return nil, err
	}

	tasks, err := graph.Resolve[*task.Task](target, engine.registry.Lookup)
	if err != nil {
		return nil, err
	}

	if engine.exclusive {
		tasks = tasks[len(tasks)-1:]
	}

	return tasks, nil
}

// Run executes target and its dependencies. The returned report is never nil and holds the
// runs of every task reached, even when an error is returned.
func (engine *Engine) Run(ctx context.Context, target string) (*report.Report, error) {
	r := report.NewReport(target, report.WithColor(engine.reportColor))

	tasks, err := engine.Resolve(target)
	if err != nil {
		return r, err
	}

	for _, t := range tasks {
		if status := t.Status(); status != task.StatusNotRun {
			return r, errors.New(TaskAlreadyRunError{Task: t.Name(), Status: status})
		}
	}

	engine.registry.Freeze()

	attrs := map[string]any{
		"run.id":     r.ID,
		"run.target": target,
		"run.tasks":  graph.Names(tasks),
	}

	err = engine.telemeter.Collect(ctx, "kiln_run", attrs, func(ctx context.Context) error {
		return engine.run(ctx, r, target, tasks)
	})

	return r, err
}

func (engine *Engine) run(ctx context.Context, r *report.Report, target string, tasks []*task.Task) error {
	if engine.dryRun {
		engine.logger.Infof("Performing dry run of %s", target)
	}

	var (
		setupEntered bool
		runErr       error
		handlerErr   error
	)

	for _, t := range tasks {
		if ctx.Err() != nil {
			runErr = errors.New(context.Cause(ctx))
			break
		}

		tc := engine.taskContext(t)

		ok, err := engine.evalCriteria(ctx, tc)
		if err != nil {
			if runErr, handlerErr = engine.handleFailure(ctx, r, tc, time.Now(), 0, err); runErr != nil {
				break
			}

			continue
		}

		if !ok {
			engine.skipTask(r, tc)
			continue
		}

		if engine.dryRun {
			engine.dryRunTask(r, tc)
			continue
		}

		if !setupEntered {
			setupEntered = true

			if err := engine.performSetup(ctx, target, tasks); err != nil {
				runErr = errors.New(SetupError{Err: err})
				engine.failSetup(r, tc, runErr)

				break
			}
		}

		if runErr, handlerErr = engine.executeTask(ctx, r, tc); runErr != nil {
			break
		}
	}

	var teardownErr error

	if setupEntered {
		teardownErr = engine.performTeardown(context.WithoutCancel(ctx), target, runErr)
	}

	if runErr == nil {
		if teardownErr != nil {
			return errors.New(TeardownError{Err: teardownErr})
		}

		return nil
	}

	if teardownErr != nil {
		engine.logger.Errorf("Teardown failed: %v", teardownErr)
	}

	return newRunError(runErr, handlerErr, teardownErr)
}

func (engine *Engine) taskContext(t *task.Task) *task.Context {
	return &task.Context{
		Task:       t,
		Logger:     engine.logger.WithField(log.FieldKeyPrefix, t.Name()),
		Launcher:   engine.launcher,
		Facts:      engine.facts,
		WorkingDir: engine.workingDir,
		Env:        engine.env,
	}
}

// evalCriteria returns true if all criteria of the task hold. A panicking criteria is a task failure.
func (engine *Engine) evalCriteria(ctx context.Context, tc *task.Context) (ok bool, err error) {
	defer errors.Recover(func(cause error) {
		err = cause
	})

	for _, criteria := range tc.Task.Criteria() {
		if !criteria(ctx, tc) {
			return false, nil
		}
	}

	return true, nil
}

func (engine *Engine) skipTask(r *report.Report, tc *task.Context) {
	tc.Logger.Infof("Skipping task: criteria not met")

	engine.transition(tc, task.StatusSkipped, 0)
	engine.endRun(r, tc, time.Now(), report.WithResult(report.ResultSkipped), report.WithReason(report.ReasonCriteriaNotMet))
}

func (engine *Engine) dryRunTask(r *report.Report, tc *task.Context) {
	tc.Logger.Infof("Would execute task with %d action(s)", len(tc.Task.Actions()))

	engine.transition(tc, task.StatusSucceeded, 0)
	engine.endRun(r, tc, time.Now(), report.WithDuration(0))
}

func (engine *Engine) failSetup(r *report.Report, tc *task.Context, err error) {
	engine.transition(tc, task.StatusFailed, 0)
	engine.endRun(r, tc, time.Now(),
		report.WithResult(report.ResultFailed),
		report.WithReason(report.ReasonSetupError),
		report.WithDuration(0),
		report.WithError(err),
	)
}

// executeTask runs a task that is not skipped. It returns the error that must stop the run, if
// any, and the errors of the handlers called while handling it.
func (engine *Engine) executeTask(ctx context.Context, r *report.Report, tc *task.Context) (runErr, handlerErr error) {
	var (
		started  = time.Now()
		duration time.Duration
		attrs    = map[string]any{"task.name": tc.Name()}
	)

	tc.Logger.Infof("Executing task")

	err := engine.telemeter.Collect(ctx, "kiln_task", attrs, func(ctx context.Context) error {
		var err error

		duration, err = engine.performTask(ctx, tc)

		return err
	})
	if err != nil {
		return engine.handleFailure(ctx, r, tc, started, duration, err)
	}

	if err := engine.performFinally(ctx, tc); err != nil {
		tc.Logger.Errorf("Finally handler failed: %v", err)
	}

	tc.Logger.Debugf("Task succeeded in %s", duration)

	engine.transition(tc, task.StatusSucceeded, duration)
	engine.endRun(r, tc, started, report.WithDuration(duration))

	return nil, nil
}

// performTask runs the task setup hook, the actions and the task teardown hook, and returns the
// time spent in the actions.
func (engine *Engine) performTask(ctx context.Context, tc *task.Context) (time.Duration, error) {
	var taskErr error

	ctx = log.ContextWithLogger(ctx, tc.Logger)

	if engine.taskSetup != nil {
		taskErr = safeCall(func() error {
			return engine.taskSetup(ctx, tc)
		})
	}

	started := time.Now()

	if taskErr == nil {
		for _, action := range tc.Task.Actions() {
			if taskErr = safeCall(func() error { return action(ctx, tc) }); taskErr != nil {
				break
			}
		}
	}

	duration := time.Since(started)

	if engine.taskTeardown != nil {
		err := safeCall(func() error {
			return engine.taskTeardown(ctx, tc, taskErr)
		})
		if err != nil {
			if taskErr != nil {
				tc.Logger.Errorf("Task teardown failed: %v", err)
			} else {
				taskErr = err
			}
		}
	}

	return duration, taskErr
}

// handleFailure applies the failure policy of the task.
func (engine *Engine) handleFailure(ctx context.Context, r *report.Report, tc *task.Context, started time.Time, duration time.Duration, err error) (runErr, handlerErr error) {
	err = errors.New(TaskExecutionError{Task: tc.Name(), Err: err})

	if tc.Task.ContinueOnError() {
		tc.Logger.Warnf("Task failed, continuing: %v", err)

		if finallyErr := engine.performFinally(ctx, tc); finallyErr != nil {
			tc.Logger.Errorf("Finally handler failed: %v", finallyErr)
		}

		engine.transition(tc, task.StatusFailed, duration)
		engine.endRun(r, tc, started,
			report.WithResult(report.ResultFailed),
			report.WithReason(report.ReasonErrorIgnored),
			report.WithDuration(duration),
			report.WithError(err),
		)

		return nil, nil
	}

	tc.Logger.Errorf("Task failed after %s: %v", time.Since(started).Round(time.Millisecond), err)

	var errs *errors.MultiError

	if handler := tc.Task.ErrorHandler(); handler != nil {
		if handlerErr := safeCall(func() error { return handler(ctx, tc, err) }); handlerErr != nil {
			tc.Logger.Errorf("Error handler failed: %v", handlerErr)
			errs = errs.Append(handlerErr)
		}
	}

	if finallyErr := engine.performFinally(ctx, tc); finallyErr != nil {
		tc.Logger.Errorf("Finally handler failed: %v", finallyErr)
		errs = errs.Append(finallyErr)
	}

	engine.transition(tc, task.StatusFailed, duration)
	engine.endRun(r, tc, started,
		report.WithResult(report.ResultFailed),
		report.WithReason(report.ReasonRunError),
		report.WithDuration(duration),
		report.WithError(err),
	)

	return err, errs.ErrorOrNil()
}

func (engine *Engine) performFinally(ctx context.Context, tc *task.Context) error {
	handler := tc.Task.FinallyHandler()
	if handler == nil {
		return nil
	}

	return safeCall(func() error {
		return handler(ctx, tc)
	})
}

func (engine *Engine) performSetup(ctx context.Context, target string, tasks []*task.Task) error {
	if engine.setup == nil {
		return nil
	}

	engine.logger.Debugf("Executing setup")

	return safeCall(func() error {
		return engine.setup(ctx, &SetupContext{
			Logger:   engine.logger,
			Launcher: engine.launcher,
			Facts:    engine.facts,
			Target:   target,
			Tasks:    tasks,
		})
	})
}

func (engine *Engine) performTeardown(ctx context.Context, target string, runErr error) error {
	if engine.teardown == nil {
		return nil
	}

	engine.logger.Debugf("Executing teardown")

	return safeCall(func() error {
		return engine.teardown(ctx, &TeardownContext{
			Logger:   engine.logger,
			Launcher: engine.launcher,
			Facts:    engine.facts,
			Target:   target,
			Err:      runErr,
		})
	})
}

func (engine *Engine) transition(tc *task.Context, status task.Status, duration time.Duration) {
	if err := tc.Task.Transition(status, duration); err != nil {
		tc.Logger.Errorf("Error updating task status: %v", err)
	}
}

// endRun records the outcome of a task in the report.
func (engine *Engine) endRun(r *report.Report, tc *task.Context, started time.Time, opts ...report.EndOption) {
	run := report.NewRun(tc.Name())
	run.Started = started

	if err := r.AddRun(run); err != nil {
		tc.Logger.Errorf("Error adding run for task %s: %v", tc.Name(), err)
		return
	}

	if err := r.EndRun(tc.Name(), opts...); err != nil {
		tc.Logger.Errorf("Error ending run for task %s: %v", tc.Name(), err)
	}
}

// safeCall calls fn and converts a panic into an error.
func safeCall(fn func() error) (err error) {
	defer errors.Recover(func(cause error) {
		err = cause
	})

	return fn()
}
