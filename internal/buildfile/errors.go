package buildfile

import (
	"fmt"
	"reflect"
)

// PanicWhileParsingError is returned when the HCL parser or a cty conversion panics.
type PanicWhileParsingError struct {
	RecoveredValue any
	Path           string
}

func (err PanicWhileParsingError) Error() string {
	return fmt.Sprintf("Recovering panic while parsing '%s'. Got error of type '%v': %v", err.Path, reflect.TypeOf(err.RecoveredValue), err.RecoveredValue)
}

func (PanicWhileParsingError) ConfigurationError() {}

// InvalidExecError is returned for an exec block that cannot be turned into a command.
type InvalidExecError struct {
	Owner  string
	Reason string
}

func (err InvalidExecError) Error() string {
	return fmt.Sprintf("invalid exec block in %s: %s", err.Owner, err.Reason)
}

func (InvalidExecError) ConfigurationError() {}

// BuildFileNotFoundError is returned when no build file exists at the given path.
type BuildFileNotFoundError struct {
	Path string
}

func (err BuildFileNotFoundError) Error() string {
	return fmt.Sprintf("build file %s does not exist", err.Path)
}

func (BuildFileNotFoundError) ConfigurationError() {}

// DiagnosticsError wraps HCL diagnostics of an invalid build file.
type DiagnosticsError struct {
	Err error
}

func (err DiagnosticsError) Error() string {
	return err.Err.Error()
}

func (err DiagnosticsError) Unwrap() error {
	return err.Err
}

func (DiagnosticsError) ConfigurationError() {}
