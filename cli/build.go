package cli

import (
	"github.com/kilnworks/kiln/internal/buildfile"
	"github.com/kilnworks/kiln/internal/envfacts"
	"github.com/kilnworks/kiln/internal/options"
	"github.com/kilnworks/kiln/internal/task"
	"github.com/kilnworks/kiln/pkg/env"
)

// build is a build file loaded into a task registry.
type build struct {
	facts    *envfacts.Facts
	file     *buildfile.BuildFile
	registry *task.Registry
}

func loadBuild(opts *options.Options) (*build, error) {
	facts := envfacts.New(env.FromMap(opts.Env))

	file, err := buildfile.NewParser(opts.Logger, facts).ParseFromFile(opts.BuildFile)
	if err != nil {
		return nil, err
	}

	registry := task.NewRegistry()

	if err := file.Register(registry); err != nil {
		return nil, err
	}

	opts.Logger.Debugf("Loaded %d tasks from %s", len(registry.Tasks()), opts.BuildFile)

	return &build{
		facts:    facts,
		file:     file,
		registry: registry,
	}, nil
}

func (b *build) target(opts *options.Options, args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}

	return opts.TargetOr(b.file.Target(""))
}
