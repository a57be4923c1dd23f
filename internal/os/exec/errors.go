package exec

import (
	"fmt"

	"github.com/kilnworks/kiln/internal/errors"
)

var (
	// ErrNotExited is returned when the exit code is requested before the process reached a terminal state.
	ErrNotExited = errors.New("process has not exited yet")
	// ErrStreamConsumed is returned when a stream has already been handed to another consumer.
	ErrStreamConsumed = errors.New("stream has already been consumed")
)

// ProcessLaunchError is returned when the executable cannot be located or the OS refuses to start it.
type ProcessLaunchError struct {
	Path string
	Err  error
}

func (err ProcessLaunchError) Error() string {
	return fmt.Sprintf("Failed to start process %q: %v", err.Path, err.Err)
}

func (err ProcessLaunchError) Unwrap() error {
	return err.Err
}

// EventSubscriptionError is returned when an event callback is set without the flags the event requires.
type EventSubscriptionError struct {
	Event               string
	EnableRaisingEvents bool
	// Redirect is the name of the redirect flag the event requires, empty for the Exited event.
	Redirect   string
	Redirected bool
}

func (err EventSubscriptionError) Error() string {
	if err.Redirect == "" {
		return fmt.Sprintf("%s event requires EnableRaisingEvents to be true", err.Event)
	}

	return fmt.Sprintf("%s event requires EnableRaisingEvents and %s to be true. In this instance, EnableRaisingEvents is %t and %s is %t",
		err.Event, err.Redirect, err.EnableRaisingEvents, err.Redirect, err.Redirected)
}

// ConfigurationError marks the error as a configuration error.
func (EventSubscriptionError) ConfigurationError() {}

// StreamNotRedirectedError is returned when a stream is read that was not redirected.
type StreamNotRedirectedError struct {
	Stream string
}

func (err StreamNotRedirectedError) Error() string {
	return fmt.Sprintf("%s was not redirected", err.Stream)
}

// ConfigurationError marks the error as a configuration error.
func (StreamNotRedirectedError) ConfigurationError() {}
