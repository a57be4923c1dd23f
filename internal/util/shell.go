package util

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/kilnworks/kiln/internal/errors"
	"github.com/urfave/cli/v2"
)

// CmdOutput holds the captured output of a process.
type CmdOutput struct {
	Stdout bytes.Buffer
	Stderr bytes.Buffer
}

// GetExitCode returns the exit code of a command. If the error does not
// implement ExitStatus or is not an exec.ExitError
// or *errors.MultiError type, the error is returned.
func GetExitCode(err error) (int, error) {
	var exitStatus interface {
		ExitStatus() (int, error)
	}

	if errors.As(err, &exitStatus) {
		return exitStatus.ExitStatus()
	}

	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		return exitCoder.ExitCode(), nil
	}

	var exiterr *exec.ExitError
	if ok := errors.As(err, &exiterr); ok {
		return exiterr.ExitCode(), nil
	}

	var multiErr *errors.MultiError
	if ok := errors.As(err, &multiErr); ok {
		for _, err := range multiErr.WrappedErrors() {
			exitCode, exitCodeErr := GetExitCode(err)
			if exitCodeErr == nil {
				return exitCode, nil
			}
		}
	}

	return 0, err
}

// ProcessExecutionError is returned when a process exits with a non-zero code. It carries the captured output.
type ProcessExecutionError struct {
	Output     CmdOutput
	WorkingDir string
	Command    string
	Args       []string
	ExitCode   int
}

func (err ProcessExecutionError) Error() string {
	msg := fmt.Sprintf("Failed to execute \"%s %s\" in %s: exit code %d",
		err.Command,
		strings.Join(err.Args, " "),
		err.WorkingDir,
		err.ExitCode,
	)

	if stderr := strings.TrimSpace(err.Output.Stderr.String()); stderr != "" {
		msg += "\n" + stderr
	}

	return msg
}

// ExitStatus returns the exit code of the process.
func (err ProcessExecutionError) ExitStatus() (int, error) {
	return err.ExitCode, nil
}

// ProcessTimeoutError is returned when a process did not exit within its timeout and was killed.
type ProcessTimeoutError struct {
	Command string
	Args    []string
	Timeout time.Duration
}

func (err ProcessTimeoutError) Error() string {
	return fmt.Sprintf("Process \"%s %s\" did not exit within %s and was killed",
		err.Command,
		strings.Join(err.Args, " "),
		err.Timeout,
	)
}

// ExitStatus returns -1, the exit code reported for killed processes.
func (err ProcessTimeoutError) ExitStatus() (int, error) {
	return -1, nil
}
