// Package format contains the log formatters: a human-readable text formatter and a JSON formatter.
package format

import (
	"strings"

	"github.com/kilnworks/kiln/internal/errors"
	"github.com/kilnworks/kiln/pkg/log"
)

const (
	PrettyFormatName = "pretty"
	JSONFormatName   = "json"
)

// AllFormatNames lists the names accepted by ParseFormat.
var AllFormatNames = []string{PrettyFormatName, JSONFormatName}

// Options configures formatters created by ParseFormat.
type Options struct {
	// DisableColors strips all colors from the output, including colors emitted by subprocesses.
	DisableColors bool
	// TimestampFormat is the Go time layout used for the time column.
	TimestampFormat string
}

// ParseFormat returns the formatter registered under the given name.
func ParseFormat(name string, opts Options) (log.Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case PrettyFormatName, "":
		return NewPrettyFormatter(opts), nil
	case JSONFormatName:
		return NewJSONFormatter(opts), nil
	}

	return nil, errors.Errorf("invalid log format %q, supported formats: %s", name, strings.Join(AllFormatNames, ", "))
}
