// Package options provides the set of options that configure a kiln invocation.
package options

import (
	"io"
	"os"
	"path/filepath"

	"github.com/kilnworks/kiln/internal/buildfile"
	"github.com/kilnworks/kiln/internal/errors"
	"github.com/kilnworks/kiln/internal/report"
	"github.com/kilnworks/kiln/internal/telemetry"
	"github.com/kilnworks/kiln/pkg/env"
	"github.com/kilnworks/kiln/pkg/log"
	"github.com/mitchellh/go-homedir"
)

const (
	// DefaultTarget is run when neither the command line nor the build file name a target.
	DefaultTarget = "default"

	defaultLogLevel = log.InfoLevel
)

// Options configures a kiln invocation.
type Options struct {
	Writer    io.Writer
	ErrWriter io.Writer
	Logger    log.Logger
	Telemetry *telemetry.Options
	// Env holds the environment of the kiln process.
	Env map[string]string

	WorkingDir   string
	BuildFile    string
	Target       string
	LogLevel     string
	LogFormat    string
	ReportFile   string
	ReportFormat string

	NoColor     bool
	DisableLock bool
	WaitForLock bool
	Exclusive   bool
	DryRun      bool
}

// NewOptions returns options with the default values.
func NewOptions() *Options {
	return &Options{
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		Logger:    log.New(log.WithOutput(os.Stderr), log.WithLevel(defaultLogLevel)),
		Telemetry: new(telemetry.Options),
		Env:       env.Parse(os.Environ()),
		LogLevel:  defaultLogLevel.String(),
	}
}

// Normalize resolves the working directory and the build file path and validates the report settings.
func (opts *Options) Normalize() error {
	var err error

	if opts.WorkingDir == "" {
		if opts.WorkingDir, err = os.Getwd(); err != nil {
			return errors.New(err)
		}
	}

	if opts.WorkingDir, err = homedir.Expand(opts.WorkingDir); err != nil {
		return errors.New(err)
	}

	if opts.WorkingDir, err = filepath.Abs(opts.WorkingDir); err != nil {
		return errors.New(err)
	}

	if opts.BuildFile == "" {
		opts.BuildFile = buildfile.DefaultFilename
	}

	if opts.BuildFile, err = homedir.Expand(opts.BuildFile); err != nil {
		return errors.New(err)
	}

	if !filepath.IsAbs(opts.BuildFile) {
		opts.BuildFile = filepath.Join(opts.WorkingDir, opts.BuildFile)
	}

	if opts.ReportFile != "" {
		if _, err := report.ParseFormat(opts.ReportFormat, opts.ReportFile); err != nil {
			return err
		}
	}

	return nil
}

// TargetOr returns the target given on the command line, or fallback.
func (opts *Options) TargetOr(fallback string) string {
	if opts.Target != "" {
		return opts.Target
	}

	if fallback != "" {
		return fallback
	}

	return DefaultTarget
}
