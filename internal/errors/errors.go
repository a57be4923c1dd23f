// Package errors contains helper functions for wrapping errors with stack traces, stack output, and panic recovery.
package errors

import (
	"errors"
	"fmt"

	goerrors "github.com/go-errors/errors"
	"github.com/urfave/cli/v2"
)

// New creates a new instance of Error.
// If the given value does not contain a stack trace, it will be created.
func New(val any) error {
	if val == nil {
		return nil
	}

	if err, ok := val.(error); ok && ContainsStackTrace(err) {
		return err
	}

	return goerrors.Wrap(val, 1)
}

// Errorf creates a new error with the given format and values.
// It can be used as a drop-in replacement for fmt.Errorf() to provide descriptive errors in return values.
// If none of the given values contains a stack trace, it will be created.
func Errorf(format string, vals ...any) error {
	err := fmt.Errorf(format, vals...) //nolint:err113

	for _, val := range vals {
		if val, ok := val.(error); ok && val != nil && ContainsStackTrace(val) {
			return err
		}
	}

	return goerrors.Wrap(err, 1)
}

// ErrorWithExitCode is a custom error that is used to specify the app exit code.
type ErrorWithExitCode struct {
	Err      error
	ExitCode int
}

func (err ErrorWithExitCode) Error() string {
	return err.Err.Error()
}

// ExitStatus returns the exit code carried by the error.
func (err ErrorWithExitCode) ExitStatus() (int, error) {
	return err.ExitCode, nil
}

func (err ErrorWithExitCode) Unwrap() error {
	return err.Err
}

// StackTrace returns the callstack formatted the same way that go does in runtime/debug.Stack().
func StackTrace(err error) string {
	if err == nil {
		return ""
	}

	return string(goError(err).Stack())
}

func goError(err error) *goerrors.Error {
	goerr := &goerrors.Error{Err: err}

	for {
		if goError := new(goerrors.Error); errors.As(err, &goError) {
			goerr = goError
		}

		if err = errors.Unwrap(err); err == nil {
			break
		}
	}

	return goerr
}

// WithPanicHandling wraps every command you add to *cli.App to handle panics by logging them with a stack trace and returning
// an error up the chain.
func WithPanicHandling(action func(c *cli.Context) error) func(c *cli.Context) error {
	return func(context *cli.Context) (err error) {
		defer Recover(func(cause error) {
			err = cause
		})

		return action(context)
	}
}
