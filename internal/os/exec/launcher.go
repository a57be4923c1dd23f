// Package exec starts external processes and manages their lifecycle: output redirection, lifecycle
// events, timeouts and forced termination.
package exec

import (
	"context"
	"io"
	"os"
	"os/exec"
	"runtime"
	"slices"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/kilnworks/kiln/internal/errors"
	"github.com/kilnworks/kiln/internal/os/exec/args"
	"github.com/kilnworks/kiln/internal/os/signal"
	"github.com/kilnworks/kiln/pkg/env"
	"github.com/kilnworks/kiln/pkg/log"
	"github.com/mitchellh/go-homedir"
	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	defaultWaitDelay          = 5 * time.Second
	defaultForwardSignalDelay = 15 * time.Second
)

// Launcher starts processes and keeps track of the ones still running.
type Launcher struct {
	logger log.Logger

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	environ            func() []string
	waitDelay          time.Duration
	forwardSignalDelay time.Duration

	processes *xsync.MapOf[int, *Process]
}

// Option configures a Launcher.
type Option func(*Launcher)

// WithLogger sets the logger that receives command lines and mirrored output.
func WithLogger(logger log.Logger) Option {
	return func(launcher *Launcher) {
		launcher.logger = logger
	}
}

// WithStdout sets where the standard output of processes that do not redirect it goes.
func WithStdout(writer io.Writer) Option {
	return func(launcher *Launcher) {
		launcher.stdout = writer
	}
}

// WithStderr sets where the standard error of processes that do not redirect it goes.
func WithStderr(writer io.Writer) Option {
	return func(launcher *Launcher) {
		launcher.stderr = writer
	}
}

// WithStdin sets the standard input of started processes.
func WithStdin(reader io.Reader) Option {
	return func(launcher *Launcher) {
		launcher.stdin = reader
	}
}

// WithEnviron sets the function returning the inherited environment, `os.Environ` by default.
func WithEnviron(environ func() []string) Option {
	return func(launcher *Launcher) {
		launcher.environ = environ
	}
}

// WithWaitDelay sets how long redirected output may stay open after the process exited.
func WithWaitDelay(delay time.Duration) Option {
	return func(launcher *Launcher) {
		if delay > 0 {
			launcher.waitDelay = delay
		}
	}
}

// WithForwardSignalDelay sets how long a received interrupt signal is held before being forwarded.
func WithForwardSignalDelay(delay time.Duration) Option {
	return func(launcher *Launcher) {
		launcher.forwardSignalDelay = delay
	}
}

// NewLauncher returns a new Launcher.
func NewLauncher(opts ...Option) *Launcher {
	launcher := &Launcher{
		logger:             log.Default(),
		stdin:              os.Stdin,
		stdout:             os.Stdout,
		stderr:             os.Stderr,
		environ:            os.Environ,
		waitDelay:          defaultWaitDelay,
		forwardSignalDelay: defaultForwardSignalDelay,
		processes:          xsync.NewMapOf[int, *Process](),
	}

	for _, opt := range opts {
		opt(launcher)
	}

	return launcher
}

// Start locates the executable and starts it with the given settings. Invalid settings are rejected
// before anything is started.
func (launcher *Launcher) Start(path string, settings *Settings) (*Process, error) {
	if settings == nil {
		settings = &Settings{}
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}

	resolved, err := lookPath(path)
	if err != nil {
		return nil, errors.New(ProcessLaunchError{Path: path, Err: err})
	}

	builder := settings.Arguments
	if builder == nil {
		builder = &args.Builder{}
	}

	cmd := exec.Command(resolved, builder.Render()...)
	cmd.Stdin = launcher.stdin
	cmd.WaitDelay = launcher.waitDelay
	setSysProcAttr(cmd)

	if settings.WorkingDirectory != "" {
		if cmd.Dir, err = homedir.Expand(settings.WorkingDirectory); err != nil {
			return nil, errors.New(ProcessLaunchError{Path: path, Err: err})
		}
	}

	if cmd.Env, err = launcher.mergeEnv(settings.EnvironmentVariables); err != nil {
		return nil, errors.New(ProcessLaunchError{Path: path, Err: err})
	}

	proc := &Process{
		cmd:       cmd,
		path:      resolved,
		args:      builder,
		settings:  settings,
		logger:    launcher.logger,
		waitDelay: launcher.waitDelay,
		exited:    make(chan struct{}),
		done:      make(chan struct{}),
		onExit: func(proc *Process) {
			launcher.processes.Delete(proc.PID())
		},
	}

	var (
		pumps   errgroup.Group
		writers []*os.File
	)

	closeWriters := func() {
		for _, writer := range writers {
			writer.Close() //nolint:errcheck
		}
	}

	// Output that is not redirected goes through a pipe owned by the process unless it goes to a file.
	// Wait must not depend on a grandchild closing its copy of the output.
	passthrough := func(w io.Writer) (io.Writer, error) {
		if w == nil {
			return nil, nil
		}

		if _, ok := w.(*os.File); ok {
			return w, nil
		}

		reader, writer, err := os.Pipe()
		if err != nil {
			return nil, err
		}

		writers = append(writers, writer)
		proc.copies = append(proc.copies, &outputCopy{reader: reader, writer: w})

		return writer, nil
	}

	if !settings.RedirectStandardOutput {
		if cmd.Stdout, err = passthrough(launcher.stdout); err != nil {
			return nil, errors.New(ProcessLaunchError{Path: path, Err: err})
		}
	}

	if !settings.RedirectStandardError {
		if cmd.Stderr, err = passthrough(launcher.stderr); err != nil {
			closeWriters()
			proc.closeReaders()

			return nil, errors.New(ProcessLaunchError{Path: path, Err: err})
		}
	}

	filter := settings.filter()

	if settings.RedirectStandardOutput {
		reader, writer, err := os.Pipe()
		if err != nil {
			closeWriters()
			proc.closeReaders()

			return nil, errors.New(ProcessLaunchError{Path: path, Err: err})
		}

		cmd.Stdout = writer
		writers = append(writers, writer)
		proc.stdout = newStream("standard output", reader, settings.OnOutputDataReceived, func(line string) {
			proc.logger.Debugf("%s", filter(line))
		})
	}

	if settings.RedirectStandardError {
		reader, writer, err := os.Pipe()
		if err != nil {
			closeWriters()
			proc.closeReaders()

			return nil, errors.New(ProcessLaunchError{Path: path, Err: err})
		}

		cmd.Stderr = writer
		writers = append(writers, writer)
		proc.stderr = newStream("standard error", reader, settings.OnErrorDataReceived, func(line string) {
			proc.logger.Warnf("%s", filter(line))
		})
	}

	if !settings.Silent {
		launcher.logger.Debugf("Executing: %s %s", resolved, builder.RenderSafe())
	}

	err = proc.start()

	// The child holds its own copies of the write ends.
	closeWriters()

	if err != nil {
		proc.closeReaders()
		return nil, err
	}

	launcher.processes.Store(proc.PID(), proc)

	for _, stream := range []*stream{proc.stdout, proc.stderr} {
		if stream != nil {
			pumps.Go(stream.pump)
		}
	}

	for _, output := range proc.copies {
		pumps.Go(output.pump)
	}

	go proc.wait(&pumps)

	return proc, nil
}

// Running returns the processes that have not exited yet.
func (launcher *Launcher) Running() []*Process {
	var procs []*Process

	launcher.processes.Range(func(_ int, proc *Process) bool {
		procs = append(procs, proc)
		return true
	})

	slices.SortFunc(procs, func(a, b *Process) int {
		return a.PID() - b.PID()
	})

	return procs
}

// KillAll kills every running process and waits for them to terminate.
func (launcher *Launcher) KillAll() {
	for _, proc := range launcher.Running() {
		if err := proc.Kill(); err != nil {
			launcher.logger.Errorf("%v", err)
		}
	}
}

// SignalAll sends the given signal to every running process.
func (launcher *Launcher) SignalAll(sig os.Signal) {
	for _, proc := range launcher.Running() {
		if err := proc.Signal(sig); err != nil {
			launcher.logger.Errorf("%v", err)
		}
	}
}

// RegisterGracefulShutdown stops running processes once ctx is done, in two ways:
//  1. If the context cancel cause carries a signal, kiln received it from the OS. The processes run in their own
//     process groups, so the signal is forwarded to them, after a delay that gives them the chance to finish on
//     their own, or immediately if the same signal is received again.
//  2. Otherwise, the run was aborted and all processes are killed.
//
// The returned function unregisters the shutdown.
func (launcher *Launcher) RegisterGracefulShutdown(ctx context.Context) func() {
	ctxShutdown, cancelShutdown := context.WithCancel(context.Background())

	go func() {
		select {
		case <-ctxShutdown.Done():
		case <-ctx.Done():
			if cause := new(signal.ContextCanceledError); errors.As(context.Cause(ctx), &cause) && cause.Signal != nil {
				launcher.forwardSignal(ctxShutdown, cause.Signal)

				return
			}

			launcher.KillAll()
		}
	}()

	return cancelShutdown
}

func (launcher *Launcher) forwardSignal(ctx context.Context, sig os.Signal) {
	ctxDelay, cancelDelay := context.WithCancel(ctx)
	defer cancelDelay()

	signal.NotifierWithContext(ctxDelay, func(_ os.Signal) {
		cancelDelay()
	}, sig)

	if launcher.forwardSignalDelay > 0 {
		launcher.logger.Debugf("%s signal will be forwarded to %d running processes with delay %s",
			cases.Title(language.English).String(sig.String()),
			len(launcher.Running()),
			launcher.forwardSignalDelay,
		)
	}

	select {
	case <-ctx.Done():
		return
	case <-time.After(launcher.forwardSignalDelay):
	case <-ctxDelay.Done():
	}

	launcher.SignalAll(sig)
}

// mergeEnv merges the explicit variables onto the inherited environment. Keys are case-insensitive on Windows.
func (launcher *Launcher) mergeEnv(vars map[string]string) ([]string, error) {
	merged := env.Parse(launcher.environ())

	if len(vars) == 0 {
		return envList(merged), nil
	}

	if runtime.GOOS == "windows" {
		for key := range vars {
			for existing := range merged {
				if existing != key && strings.EqualFold(existing, key) {
					delete(merged, existing)
				}
			}
		}
	}

	if err := mergo.Merge(&merged, vars, mergo.WithOverride, mergo.WithOverwriteWithEmptyValue); err != nil {
		return nil, errors.Errorf("failed to merge environment variables: %w", err)
	}

	return envList(merged), nil
}

func envList(vars map[string]string) []string {
	environ := make([]string, 0, len(vars))
	for key, val := range vars {
		environ = append(environ, key+"="+val)
	}

	slices.Sort(environ)

	return environ
}

func lookPath(path string) (string, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return "", err
	}

	return exec.LookPath(path)
}

func (proc *Process) closeReaders() {
	for _, reader := range proc.readers() {
		reader.Close() //nolint:errcheck
	}
}
