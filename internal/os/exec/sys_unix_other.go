//go:build !windows && !linux

package exec

import (
	"os"
	"syscall"

	"github.com/kilnworks/kiln/internal/errors"
)

// processExited can only tell reaped processes apart on this platform.
func processExited(proc *os.Process) (bool, error) {
	if err := proc.Signal(syscall.Signal(0)); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			return true, nil
		}

		return false, errors.New(err)
	}

	return false, nil
}
