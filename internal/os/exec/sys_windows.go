//go:build windows

package exec

import (
	"os"
	"os/exec"
)

func setSysProcAttr(_ *exec.Cmd) {}

// signalProcess only supports os.Kill on Windows.
func signalProcess(proc *os.Process, sig os.Signal) error {
	return proc.Signal(sig)
}

func killProcess(proc *os.Process) error {
	return proc.Kill()
}

func exitCodeOf(state *os.ProcessState) int {
	return state.ExitCode()
}

// processExited relies on the wait goroutine on Windows.
func processExited(_ *os.Process) (bool, error) {
	return false, nil
}
