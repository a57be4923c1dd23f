package cli

import (
	"fmt"

	"github.com/kilnworks/kiln/internal/errors"
	"github.com/kilnworks/kiln/internal/options"
	"github.com/urfave/cli/v2"
)

const VersionCommandName = "version"

// NewVersionCommand returns the command printing the kiln version.
func NewVersionCommand(opts *options.Options) *cli.Command {
	return &cli.Command{
		Name:  VersionCommandName,
		Usage: "Show the kiln version.",
		Action: func(_ *cli.Context) error {
			if _, err := fmt.Fprintf(opts.Writer, "%s version %s\n", AppName, Version); err != nil {
				return errors.New(err)
			}

			return nil
		},
	}
}
