package exec

import (
	"iter"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/kilnworks/kiln/internal/errors"
	"github.com/kilnworks/kiln/internal/os/exec/args"
	"github.com/kilnworks/kiln/pkg/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// KilledExitCode is reported for processes that were terminated by Kill.
const KilledExitCode = -1

// Process is a handle to a started OS process.
type Process struct {
	cmd      *exec.Cmd
	path     string
	args     *args.Builder
	settings *Settings
	logger   log.Logger

	stdout *stream
	stderr *stream
	copies []*outputCopy

	waitDelay time.Duration
	onExit    func(*Process)

	// exited is closed once the process is reaped and its terminal state is set.
	exited chan struct{}
	// done is closed once OnExited returned and the output streams are drained.
	done chan struct{}

	mu            sync.Mutex
	state         State
	exitCode      int
	killRequested bool
}

// PID returns the OS process id.
func (proc *Process) PID() int {
	return proc.cmd.Process.Pid
}

// Path returns the resolved executable path.
func (proc *Process) Path() string {
	return proc.path
}

// Args returns the arguments the process was started with.
func (proc *Process) Args() *args.Builder {
	return proc.args
}

// Settings returns the settings the process was started with.
func (proc *Process) Settings() *Settings {
	return proc.settings
}

// State returns the current lifecycle state.
func (proc *Process) State() State {
	proc.mu.Lock()
	defer proc.mu.Unlock()

	return proc.state
}

// HasExited asks the OS whether the process has terminated. It does not wait for the output streams,
// which stay open as long as any process holding them, e.g. a background grandchild, is alive.
func (proc *Process) HasExited() bool {
	select {
	case <-proc.exited:
		return true
	default:
	}

	exited, err := processExited(proc.cmd.Process)
	if err != nil {
		proc.logger.Debugf("Failed to query the state of %s: %v", proc.name(), err)
	}

	if exited {
		// The wait goroutine is reaping it, the terminal state follows.
		<-proc.exited
	}

	return exited
}

// WaitForExit blocks until the process reaches a terminal state, OnExited returned and the redirected
// output is drained. Draining is bounded by the launcher wait delay.
func (proc *Process) WaitForExit() {
	<-proc.done
}

// WaitForExitTimeout blocks for up to timeout. If the process is still running when it expires,
// it is killed and false is returned. It does not wait for the redirected output.
func (proc *Process) WaitForExitTimeout(timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-proc.exited:
		return proc.State() == StateExited
	case <-timer.C:
	}

	killed, err := proc.kill()
	if err != nil {
		proc.logger.Errorf("Failed to kill process %s after %s: %v", proc.name(), timeout, err)
	}

	<-proc.exited

	return !killed && proc.State() == StateExited
}

// ExitCode returns the exit code once the process is in a terminal state. Killed processes report -1,
// processes terminated by any other signal on Unix report 128 plus the signal number.
func (proc *Process) ExitCode() (int, error) {
	proc.mu.Lock()
	defer proc.mu.Unlock()

	if !proc.state.IsTerminal() {
		return 0, ErrNotExited
	}

	return proc.exitCode, nil
}

// StandardOutput returns the lines of the redirected standard output. The sequence can be consumed once,
// each line is mirrored to the log at debug level through the output filter.
func (proc *Process) StandardOutput() (iter.Seq[string], error) {
	if proc.stdout == nil {
		return nil, errors.New(StreamNotRedirectedError{Stream: "standard output"})
	}

	return proc.stdout.seq()
}

// StandardError returns the lines of the redirected standard error. The sequence can be consumed once,
// each line is mirrored to the log at warn level through the output filter.
func (proc *Process) StandardError() (iter.Seq[string], error) {
	if proc.stderr == nil {
		return nil, errors.New(StreamNotRedirectedError{Stream: "standard error"})
	}

	return proc.stderr.seq()
}

// Kill terminates the process, and on Unix its whole process group, then waits for it to reach a
// terminal state. It is a no-op for processes that already exited.
func (proc *Process) Kill() error {
	_, err := proc.kill()

	<-proc.exited

	return err
}

// Signal sends the given signal to the process.
func (proc *Process) Signal(sig os.Signal) error {
	proc.mu.Lock()
	defer proc.mu.Unlock()

	if proc.state != StateRunning {
		return nil
	}

	proc.logger.Debugf("%s signal is forwarded to %s", cases.Title(language.English).String(sig.String()), proc.name())

	if err := signalProcess(proc.cmd.Process, sig); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return errors.Errorf("failed to send signal %s to %s: %w", sig, proc.name(), err)
	}

	return nil
}

// kill reports whether this call terminated a live process.
func (proc *Process) kill() (bool, error) {
	proc.mu.Lock()
	defer proc.mu.Unlock()

	if proc.state != StateRunning || proc.killRequested {
		return false, nil
	}

	// An exited process that is not reaped yet still accepts signals.
	if exited, err := processExited(proc.cmd.Process); err != nil {
		proc.logger.Debugf("Failed to query the state of %s: %v", proc.name(), err)
	} else if exited {
		return false, nil
	}

	if err := killProcess(proc.cmd.Process); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			return false, nil
		}

		return false, errors.Errorf("failed to kill %s: %w", proc.name(), err)
	}

	proc.killRequested = true
	proc.logger.Debugf("Killed process %s", proc.name())

	return true, nil
}

func (proc *Process) start() error {
	proc.mu.Lock()
	defer proc.mu.Unlock()

	if err := proc.cmd.Start(); err != nil {
		return errors.New(ProcessLaunchError{Path: proc.path, Err: err})
	}

	proc.state = StateRunning
	proc.logger = proc.logger.WithField(log.FieldKeyPID, proc.cmd.Process.Pid)

	return nil
}

// wait runs in its own goroutine for the lifetime of the process.
func (proc *Process) wait(pumps *errgroup.Group) {
	waitErr := proc.cmd.Wait()

	proc.mu.Lock()

	if proc.killRequested {
		proc.state = StateKilled
		proc.exitCode = KilledExitCode
	} else {
		proc.state = StateExited
		proc.exitCode = exitCodeOf(proc.cmd.ProcessState)
	}

	exitCode := proc.exitCode
	state := proc.state
	proc.mu.Unlock()

	if proc.onExit != nil {
		proc.onExit(proc)
	}

	close(proc.exited)

	if exitErr := new(exec.ExitError); waitErr != nil && !errors.As(waitErr, &exitErr) {
		proc.logger.Warnf("Waiting for %s failed: %v", proc.name(), waitErr)
	}

	proc.logger.Debugf("Process %s %s with exit code %d", proc.name(), state, exitCode)

	if proc.settings.OnExited != nil {
		proc.settings.OnExited(exitCode)
	}

	proc.drain(pumps)

	close(proc.done)
}

// drain waits for the output pumps. Pipes still held open by other processes are closed after the wait delay.
func (proc *Process) drain(pumps *errgroup.Group) {
	pumpsDone := make(chan error, 1)
	go func() { pumpsDone <- pumps.Wait() }()

	var pumpErr error

	select {
	case pumpErr = <-pumpsDone:
	case <-time.After(proc.waitDelay):
		proc.logger.Debugf("Output of %s is still open %s after exit, closing it", proc.name(), proc.waitDelay)

		for _, reader := range proc.readers() {
			reader.Close() //nolint:errcheck
		}

		pumpErr = <-pumpsDone
	}

	if pumpErr != nil {
		proc.logger.Warnf("%v", pumpErr)
	}
}

// readers returns the read ends of every pipe the process output is pumped from.
func (proc *Process) readers() []*os.File {
	var readers []*os.File

	for _, stream := range []*stream{proc.stdout, proc.stderr} {
		if stream != nil {
			readers = append(readers, stream.reader)
		}
	}

	for _, output := range proc.copies {
		readers = append(readers, output.reader)
	}

	return readers
}

func (proc *Process) name() string {
	return proc.cmd.Path
}
