//go:build !windows

package exec

import (
	"os"
	"os/exec"
	"syscall"

	"github.com/kilnworks/kiln/internal/errors"
	"golang.org/x/sys/unix"
)

const signaledExitCodeBase = 128

// setSysProcAttr starts the process in its own process group so that Kill reaches its children too.
func setSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func signalProcess(proc *os.Process, sig os.Signal) error {
	// os.ErrProcessDone once the process has been reaped.
	if err := proc.Signal(syscall.Signal(0)); err != nil {
		return err
	}

	unixSig, ok := sig.(syscall.Signal)
	if !ok {
		return proc.Signal(sig)
	}

	if err := unix.Kill(-proc.Pid, unixSig); err != nil {
		if errors.Is(err, unix.ESRCH) {
			return proc.Signal(sig)
		}

		return err
	}

	return nil
}

func killProcess(proc *os.Process) error {
	return signalProcess(proc, syscall.SIGKILL)
}

// exitCodeOf reports 128 plus the signal number for processes terminated by a signal.
func exitCodeOf(state *os.ProcessState) int {
	if status, ok := state.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return signaledExitCodeBase + int(status.Signal())
	}

	return state.ExitCode()
}
