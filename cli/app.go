// Package cli provides the kiln command line application.
package cli

import (
	"io"
	"os"

	"github.com/kilnworks/kiln/internal/errors"
	"github.com/kilnworks/kiln/internal/options"
	"github.com/kilnworks/kiln/pkg/log"
	"github.com/kilnworks/kiln/pkg/log/format"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"
)

// AppName is the name of the application, also used as the service name of traces.
const AppName = "kiln"

// Version is set at build time with -ldflags "-X github.com/kilnworks/kiln/cli.Version=...".
var Version = "dev" //nolint:gochecknoglobals

// NewApp creates the kiln CLI app.
func NewApp(opts *options.Options) *cli.App {
	return &cli.App{
		Name:      AppName,
		Usage:     "Runs build tasks in dependency order.",
		UsageText: "kiln [global options] [command] [target]",
		Description: `kiln reads the tasks of a build from build.hcl and runs a target task after its
dependencies, skipping tasks whose criteria do not hold.`,
		Version:   Version,
		Writer:    opts.Writer,
		ErrWriter: opts.ErrWriter,
		Flags:     NewGlobalFlags(opts),
		// Without a command, the arguments name the target, as for `kiln run`.
		Action: errors.WithPanicHandling(func(c *cli.Context) error {
			return Run(c.Context, opts, c.Args().Slice())
		}),
		Commands: []*cli.Command{
			NewRunCommand(opts),
			NewTasksCommand(opts),
			NewGraphCommand(opts),
			NewVersionCommand(opts),
		},
		Before: initialSetup(opts),
		// Exit codes are handled by main.
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

// initialSetup configures the logger and resolves paths once the flags are parsed.
func initialSetup(opts *options.Options) cli.BeforeFunc {
	return func(_ *cli.Context) error {
		level, err := log.ParseLevel(opts.LogLevel)
		if err != nil {
			return err
		}

		formatter, err := format.ParseFormat(opts.LogFormat, format.Options{
			DisableColors: !shouldColor(opts, opts.ErrWriter),
		})
		if err != nil {
			return err
		}

		opts.Logger = log.New(
			log.WithOutput(opts.ErrWriter),
			log.WithLevel(level),
			log.WithFormatter(formatter),
		)

		return errors.New(opts.Normalize())
	}
}

// shouldColor returns true if colors are enabled and w is a terminal.
func shouldColor(opts *options.Options, w io.Writer) bool {
	if opts.NoColor {
		return false
	}

	file, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}
