package main

import (
	"context"
	"os"

	"github.com/kilnworks/kiln/cli"
	"github.com/kilnworks/kiln/internal/errors"
	"github.com/kilnworks/kiln/internal/options"
	"github.com/kilnworks/kiln/internal/util"
	"github.com/kilnworks/kiln/pkg/log"
)

// The main entrypoint for kiln
func main() {
	opts := options.NewOptions()

	defer errors.Recover(checkForErrorsAndExit(opts))

	app := cli.NewApp(opts)

	ctx := log.ContextWithLogger(context.Background(), opts.Logger)
	err := app.RunContext(ctx, os.Args)

	checkForErrorsAndExit(opts)(err)
}

// If there is an error, display it in the console and exit with a non-zero exit code. Otherwise, exit 0.
func checkForErrorsAndExit(opts *options.Options) func(error) {
	return func(err error) {
		if err == nil {
			os.Exit(0)
		}

		logger := opts.Logger
		logger.Error(err.Error())

		if errStack := errors.ErrorStack(err); errStack != "" {
			logger.Trace(errStack)
		}

		// exit with the underlying error code
		exitCode, exitCodeErr := util.GetExitCode(err)
		if exitCodeErr != nil || exitCode == 0 {
			exitCode = 1
		}

		os.Exit(exitCode)
	}
}
