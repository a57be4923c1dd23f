package cli

import (
	"strings"

	"github.com/kilnworks/kiln/internal/options"
	"github.com/urfave/cli/v2"
)

const (
	EnvVarPrefix = "KILN_"

	WorkingDirFlagName   = "working-dir"
	FileFlagName         = "file"
	TargetFlagName       = "target"
	LogLevelFlagName     = "log-level"
	LogFormatFlagName    = "log-format"
	NoColorFlagName      = "no-color"
	ReportFileFlagName   = "report-file"
	ReportFormatFlagName = "report-format"
	NoLockFlagName       = "no-lock"
	WaitForLockFlagName  = "wait-for-lock"
	ExclusiveFlagName    = "exclusive"
	DryRunFlagName       = "dry-run"

	TraceExporterFlagName                 = "telemetry-trace-exporter"
	TraceExporterHTTPEndpointFlagName     = "telemetry-trace-exporter-http-endpoint"
	TraceExporterInsecureEndpointFlagName = "telemetry-trace-exporter-insecure-endpoint"
	TraceParentFlagName                   = "traceparent"
)

// envVars returns the environment variable a flag falls back to, e.g. `log-level` -> `KILN_LOG_LEVEL`.
func envVars(flagName string, extra ...string) []string {
	name := EnvVarPrefix + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))

	return append([]string{name}, extra...)
}

// NewGlobalFlags returns the flags shared by all commands, bound to opts.
func NewGlobalFlags(opts *options.Options) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        WorkingDirFlagName,
			EnvVars:     envVars(WorkingDirFlagName),
			Usage:       "The directory the build runs in. Default is the current directory.",
			Destination: &opts.WorkingDir,
		},
		&cli.StringFlag{
			Name:        FileFlagName,
			Aliases:     []string{"f"},
			EnvVars:     envVars(FileFlagName),
			Usage:       "Path to the build file, relative to the working directory.",
			Value:       "build.hcl",
			Destination: &opts.BuildFile,
		},
		&cli.StringFlag{
			Name:        TargetFlagName,
			Aliases:     []string{"t"},
			EnvVars:     envVars(TargetFlagName),
			Usage:       "The task to run. Default is the `default` attribute of the build file, or `default`.",
			Destination: &opts.Target,
		},
		&cli.StringFlag{
			Name:        LogLevelFlagName,
			EnvVars:     envVars(LogLevelFlagName),
			Usage:       "Sets the logging level: stderr, stdout, error, warn, info, debug, trace.",
			Value:       opts.LogLevel,
			Destination: &opts.LogLevel,
		},
		&cli.StringFlag{
			Name:        LogFormatFlagName,
			EnvVars:     envVars(LogFormatFlagName),
			Usage:       "Sets the log format: pretty, json.",
			Value:       "pretty",
			Destination: &opts.LogFormat,
		},
		&cli.BoolFlag{
			Name:        NoColorFlagName,
			EnvVars:     envVars(NoColorFlagName, "NO_COLOR"),
			Usage:       "Disables colors in logs and in the build summary.",
			Destination: &opts.NoColor,
		},
		&cli.StringFlag{
			Name:        ReportFileFlagName,
			EnvVars:     envVars(ReportFileFlagName),
			Usage:       "Writes the build report to the given file.",
			Destination: &opts.ReportFile,
		},
		&cli.StringFlag{
			Name:        ReportFormatFlagName,
			EnvVars:     envVars(ReportFormatFlagName),
			Usage:       "The report format: csv, json. Default is derived from the report file extension.",
			Destination: &opts.ReportFormat,
		},
		&cli.BoolFlag{
			Name:        NoLockFlagName,
			EnvVars:     envVars(NoLockFlagName),
			Usage:       "Does not lock the working directory against concurrent builds.",
			Destination: &opts.DisableLock,
		},
		&cli.BoolFlag{
			Name:        WaitForLockFlagName,
			EnvVars:     envVars(WaitForLockFlagName),
			Usage:       "Waits for a concurrent build to finish instead of failing.",
			Destination: &opts.WaitForLock,
		},
		&cli.BoolFlag{
			Name:        ExclusiveFlagName,
			Aliases:     []string{"e"},
			EnvVars:     envVars(ExclusiveFlagName),
			Usage:       "Runs the target without its dependencies.",
			Destination: &opts.Exclusive,
		},
		&cli.BoolFlag{
			Name:        DryRunFlagName,
			EnvVars:     envVars(DryRunFlagName),
			Usage:       "Shows the tasks that would run without running them.",
			Destination: &opts.DryRun,
		},
		&cli.StringFlag{
			Name:        TraceExporterFlagName,
			EnvVars:     envVars(TraceExporterFlagName),
			Usage:       "Trace exporter: none, console, otlpHttp, otlpGrpc, http.",
			Destination: &opts.Telemetry.TraceExporter,
		},
		&cli.StringFlag{
			Name:        TraceExporterHTTPEndpointFlagName,
			EnvVars:     envVars(TraceExporterHTTPEndpointFlagName),
			Usage:       "Endpoint of the http trace exporter.",
			Destination: &opts.Telemetry.TraceExporterHTTPEndpoint,
		},
		&cli.BoolFlag{
			Name:        TraceExporterInsecureEndpointFlagName,
			EnvVars:     envVars(TraceExporterInsecureEndpointFlagName),
			Usage:       "Exports traces over an insecure connection.",
			Destination: &opts.Telemetry.TraceExporterInsecureEndpoint,
		},
		&cli.StringFlag{
			Name:        TraceParentFlagName,
			EnvVars:     []string{"TRACEPARENT"},
			Usage:       "Parent span of the build, in W3C traceparent format.",
			Destination: &opts.Telemetry.TraceParent,
		},
	}
}
