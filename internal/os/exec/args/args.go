// Package args builds process argument lists that know which of their values are secrets, so command
// lines can be logged without leaking them.
package args

import (
	"strings"

	"github.com/google/shlex"
	"github.com/kilnworks/kiln/internal/errors"
)

// Redacted replaces secret values when an argument list is rendered for display.
const Redacted = "[REDACTED]"

// Argument is a single process argument.
type Argument struct {
	value  string
	quoted bool
	secret bool
}

// Value returns the raw value passed to the process.
func (arg Argument) Value() string {
	return arg.value
}

// IsSecret returns true if the argument must not be displayed.
func (arg Argument) IsSecret() bool {
	return arg.secret
}

// String returns the display form of the argument, redacted if secret.
func (arg Argument) String() string {
	if arg.secret {
		return Redacted
	}

	if arg.quoted || arg.value == "" || strings.ContainsAny(arg.value, " \t\"") {
		return quote(arg.value)
	}

	return arg.value
}

func quote(str string) string {
	return `"` + strings.ReplaceAll(str, `"`, `\"`) + `"`
}

// Builder accumulates arguments in order. The zero value is ready to use.
type Builder struct {
	args []Argument
}

// New returns a builder holding the given plain arguments.
func New(vals ...string) *Builder {
	builder := &Builder{}

	return builder.Append(vals...)
}

// Append adds plain arguments.
func (builder *Builder) Append(vals ...string) *Builder {
	for _, val := range vals {
		builder.args = append(builder.args, Argument{value: val})
	}

	return builder
}

// AppendQuoted adds an argument that is always displayed quoted.
func (builder *Builder) AppendQuoted(val string) *Builder {
	builder.args = append(builder.args, Argument{value: val, quoted: true})

	return builder
}

// AppendSecret adds an argument that is displayed as [REDACTED].
func (builder *Builder) AppendSecret(val string) *Builder {
	builder.args = append(builder.args, Argument{value: val, secret: true})

	return builder
}

// AppendSwitch adds a `name<separator>value` argument, e.g. `--configuration=Release`.
func (builder *Builder) AppendSwitch(name, separator, val string) *Builder {
	return builder.Append(name + separator + val)
}

// AppendSwitchSecret adds a switch whose value is displayed as [REDACTED].
func (builder *Builder) AppendSwitchSecret(name, separator, val string) *Builder {
	builder.args = append(builder.args, Argument{value: name + separator + val, secret: true})

	return builder
}

// AppendString splits a shell-like command line into words and appends them.
func (builder *Builder) AppendString(cmdline string) error {
	words, err := shlex.Split(cmdline)
	if err != nil {
		return errors.Errorf("invalid arguments %q: %w", cmdline, err)
	}

	builder.Append(words...)

	return nil
}

// Len returns the number of arguments.
func (builder *Builder) Len() int {
	if builder == nil {
		return 0
	}

	return len(builder.args)
}

// Arguments returns a copy of the accumulated arguments.
func (builder *Builder) Arguments() []Argument {
	if builder == nil {
		return nil
	}

	return append([]Argument(nil), builder.args...)
}

// Render returns the raw argument values to pass to the process.
func (builder *Builder) Render() []string {
	if builder == nil {
		return nil
	}

	vals := make([]string, 0, len(builder.args))
	for _, arg := range builder.args {
		vals = append(vals, arg.value)
	}

	return vals
}

// RenderSafe returns the arguments as a single display string with secrets redacted.
func (builder *Builder) RenderSafe() string {
	if builder == nil {
		return ""
	}

	vals := make([]string, 0, len(builder.args))
	for _, arg := range builder.args {
		vals = append(vals, arg.String())
	}

	return strings.Join(vals, " ")
}

// String implements fmt.Stringer and never reveals secrets.
func (builder *Builder) String() string {
	return builder.RenderSafe()
}
