//go:build linux

package exec

import (
	"os"

	"github.com/kilnworks/kiln/internal/errors"
	"golang.org/x/sys/unix"
)

// processExited checks without reaping whether the process has terminated. Unlike signal 0, it reports
// exited processes that are not reaped yet.
func processExited(proc *os.Process) (bool, error) {
	var info unix.Siginfo

	if err := unix.Waitid(unix.P_PID, proc.Pid, &info, unix.WEXITED|unix.WNOHANG|unix.WNOWAIT, nil); err != nil {
		// Already reaped by the wait goroutine.
		if errors.Is(err, unix.ECHILD) {
			return true, nil
		}

		return false, errors.New(err)
	}

	return info.Signo != 0, nil
}
