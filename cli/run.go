package cli

import (
	"context"
	"os"

	"github.com/kilnworks/kiln/internal/engine"
	"github.com/kilnworks/kiln/internal/errors"
	"github.com/kilnworks/kiln/internal/locks"
	"github.com/kilnworks/kiln/internal/options"
	"github.com/kilnworks/kiln/internal/os/exec"
	"github.com/kilnworks/kiln/internal/os/signal"
	"github.com/kilnworks/kiln/internal/report"
	"github.com/kilnworks/kiln/internal/task"
	"github.com/kilnworks/kiln/internal/telemetry"
	"github.com/kilnworks/kiln/pkg/log"
	"github.com/urfave/cli/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const RunCommandName = "run"

// NewRunCommand returns the command running a target.
func NewRunCommand(opts *options.Options) *cli.Command {
	return &cli.Command{
		Name:      RunCommandName,
		Usage:     "Run a target and its dependencies.",
		UsageText: "kiln run [target]",
		Action: errors.WithPanicHandling(func(c *cli.Context) error {
			return Run(c.Context, opts, c.Args().Slice())
		}),
	}
}

// Run runs the target named by args, the options or the build file, in that order.
func Run(ctx context.Context, opts *options.Options, args []string) error {
	b, err := loadBuild(opts)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	signal.NotifierWithContext(ctx, func(sig os.Signal) {
		opts.Logger.Infof("%s signal received. Gracefully shutting down...", cases.Title(language.English).String(sig.String()))
		cancel(signal.NewContextCanceledError(sig))
	}, signal.InterruptSignals...)

	if !opts.DisableLock && !opts.DryRun {
		lock := locks.NewRunLock(opts.Logger, opts.WorkingDir)

		if opts.WaitForLock {
			err = lock.Lock(ctx)
		} else {
			err = lock.TryLock()
		}

		if err != nil {
			return err
		}

		defer lock.Unlock()
	}

	tlm, err := telemetry.NewTelemeter(ctx, AppName, Version, opts.ErrWriter, opts.Telemetry)
	if err != nil {
		return err
	}

	defer func() {
		if err := tlm.Shutdown(context.WithoutCancel(ctx)); err != nil {
			opts.Logger.Warnf("Failed to flush traces: %v", err)
		}
	}()

	ctx = telemetry.ContextWithTelemeter(ctx, tlm)
	ctx = log.ContextWithLogger(ctx, opts.Logger)

	launcher := exec.NewLauncher(
		exec.WithLogger(opts.Logger),
		exec.WithStdout(opts.Writer),
		exec.WithStderr(opts.ErrWriter),
	)

	unregister := launcher.RegisterGracefulShutdown(ctx)
	defer unregister()

	eng := engine.New(b.registry,
		engine.WithLogger(opts.Logger),
		engine.WithLauncher(launcher),
		engine.WithFacts(b.facts),
		engine.WithTelemeter(tlm),
		engine.WithReportColor(shouldColor(opts, opts.ErrWriter)),
		engine.WithWorkingDir(opts.WorkingDir),
		engine.WithExclusive(opts.Exclusive),
		engine.WithDryRun(opts.DryRun),
	)

	hookCtx := task.Context{
		Logger:     opts.Logger,
		Launcher:   launcher,
		Facts:      b.facts,
		WorkingDir: opts.WorkingDir,
	}

	if err := b.file.RegisterHooks(eng, hookCtx); err != nil {
		return err
	}

	r, runErr := eng.Run(ctx, b.target(opts, args))

	if len(r.Runs()) > 0 {
		if err := r.WriteSummary(opts.ErrWriter); err != nil {
			opts.Logger.Warnf("Failed to write the build summary: %v", err)
		}
	}

	if opts.ReportFile != "" {
		if err := writeReport(opts, r); err != nil {
			return new(errors.MultiError).Append(runErr, err).ErrorOrNil()
		}

		opts.Logger.Debugf("Report written to %s", opts.ReportFile)
	}

	return runErr
}

func writeReport(opts *options.Options, r *report.Report) error {
	format, err := report.ParseFormat(opts.ReportFormat, opts.ReportFile)
	if err != nil {
		return err
	}

	return r.WriteToFile(opts.ReportFile, format)
}
