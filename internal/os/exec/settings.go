package exec

import (
	"time"

	"github.com/kilnworks/kiln/internal/errors"
	"github.com/kilnworks/kiln/internal/os/exec/args"
)

// DataReceived is delivered for every line written to a redirected stream. The last notification for a
// stream has EOF set and no data.
type DataReceived struct {
	Data string
	EOF  bool
}

// FilterFunc transforms a line of output before it is mirrored to the log. It never alters the line
// returned to the caller.
type FilterFunc func(line string) string

// RedactAll is the filter used when none is set: every mirrored line is replaced by args.Redacted.
func RedactAll(string) string {
	return args.Redacted
}

// Settings describes how a process is started.
type Settings struct {
	Arguments        *args.Builder
	WorkingDirectory string
	// EnvironmentVariables are merged onto the inherited environment, explicit values win.
	EnvironmentVariables map[string]string

	RedirectStandardOutput bool
	RedirectStandardError  bool
	EnableRaisingEvents    bool

	// Timeout is how long callers should wait for the process before killing it. Zero means no limit.
	Timeout time.Duration

	// OutputFilter is applied to every line mirrored to the log, RedactAll when nil.
	OutputFilter FilterFunc

	// Silent suppresses logging of the command line.
	Silent bool

	// OnExited requires EnableRaisingEvents. It is called exactly once, before WaitForExit returns.
	OnExited func(exitCode int)
	// OnOutputDataReceived requires EnableRaisingEvents and RedirectStandardOutput.
	OnOutputDataReceived func(data DataReceived)
	// OnErrorDataReceived requires EnableRaisingEvents and RedirectStandardError.
	OnErrorDataReceived func(data DataReceived)
}

// Validate checks that every event callback has the flags it requires.
func (settings *Settings) Validate() error {
	if settings.OnExited != nil && !settings.EnableRaisingEvents {
		return errors.New(EventSubscriptionError{Event: "Exited"})
	}

	if settings.OnOutputDataReceived != nil && (!settings.EnableRaisingEvents || !settings.RedirectStandardOutput) {
		return errors.New(EventSubscriptionError{
			Event:               "OutputDataReceived",
			EnableRaisingEvents: settings.EnableRaisingEvents,
			Redirect:            "RedirectStandardOutput",
			Redirected:          settings.RedirectStandardOutput,
		})
	}

	if settings.OnErrorDataReceived != nil && (!settings.EnableRaisingEvents || !settings.RedirectStandardError) {
		return errors.New(EventSubscriptionError{
			Event:               "ErrorDataReceived",
			EnableRaisingEvents: settings.EnableRaisingEvents,
			Redirect:            "RedirectStandardError",
			Redirected:          settings.RedirectStandardError,
		})
	}

	if settings.Timeout < 0 {
		return errors.Errorf("invalid process timeout %s", settings.Timeout)
	}

	return nil
}

func (settings *Settings) filter() FilterFunc {
	if settings.OutputFilter == nil {
		return RedactAll
	}

	return settings.OutputFilter
}
