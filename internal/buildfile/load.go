package buildfile

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/kilnworks/kiln/internal/engine"
	"github.com/kilnworks/kiln/internal/errors"
	"github.com/kilnworks/kiln/internal/task"
	"github.com/kilnworks/kiln/pkg/log"
)

// Target returns the default target of the build file, or the given fallback.
func (buildFile *BuildFile) Target(fallback string) string {
	if buildFile.Default != nil && *buildFile.Default != "" {
		return *buildFile.Default
	}

	return fallback
}

// Register registers the tasks of the build file in registry. Definition errors of all tasks are
// returned together; duplicate names are recorded by the registry itself.
func (buildFile *BuildFile) Register(registry *task.Registry) error {
	var errs *errors.MultiError

	for _, block := range buildFile.Tasks {
		if err := buildFile.registerTask(registry, block); err != nil {
			errs = errs.Append(err)
		}
	}

	return errs.ErrorOrNil()
}

func (buildFile *BuildFile) registerTask(registry *task.Registry, block *TaskBlock) error {
	owner := "task " + block.Name

	cmds, err := newCommands(owner, buildFile.resolveDirs(block.Execs))
	if err != nil {
		return err
	}

	builder := registry.Register(block.Name).DependsOn(block.DependsOn...)

	if block.Description != nil {
		builder.Description(*block.Description)
	}

	if block.ContinueOnError != nil && *block.ContinueOnError {
		builder.ContinueOnError()
	}

	for _, criteria := range block.Criteria {
		builder.WithCriteria(criteria.criteria())
	}

	for _, cmd := range cmds {
		builder.Does(cmd.run)
	}

	if block.OnError != nil {
		onErrorCmds, err := newCommands(owner+" on_error", buildFile.resolveDirs(block.OnError.Execs))
		if err != nil {
			return err
		}

		builder.OnError(func(ctx context.Context, tc *task.Context, _ error) error {
			return runCommands(ctx, tc, onErrorCmds)
		})
	}

	if block.Finally != nil {
		finallyCmds, err := newCommands(owner+" finally", buildFile.resolveDirs(block.Finally.Execs))
		if err != nil {
			return err
		}

		builder.Finally(func(ctx context.Context, tc *task.Context) error {
			return runCommands(ctx, tc, finallyCmds)
		})
	}

	return nil
}

// RegisterHooks registers the setup and teardown blocks of the build file with the engine.
// tc is the template of the context the hook commands run with.
func (buildFile *BuildFile) RegisterHooks(eng *engine.Engine, tc task.Context) error {
	var errs *errors.MultiError

	if buildFile.Setup != nil {
		cmds, err := newCommands("setup", buildFile.resolveDirs(buildFile.Setup.Execs))
		errs = errs.Append(err)

		eng.RegisterSetup(func(ctx context.Context, sc *engine.SetupContext) error {
			hookCtx := tc
			hookCtx.Logger = sc.Logger.WithField(log.FieldKeyPrefix, "setup")

			return runCommands(ctx, &hookCtx, cmds)
		})
	}

	if buildFile.Teardown != nil {
		cmds, err := newCommands("teardown", buildFile.resolveDirs(buildFile.Teardown.Execs))
		errs = errs.Append(err)

		eng.RegisterTeardown(func(ctx context.Context, td *engine.TeardownContext) error {
			hookCtx := tc
			hookCtx.Logger = td.Logger.WithField(log.FieldKeyPrefix, "teardown")

			return runCommands(ctx, &hookCtx, cmds)
		})
	}

	return errs.ErrorOrNil()
}

// resolveDirs returns copies of the blocks with relative working directories resolved against
// the directory of the build file.
func (buildFile *BuildFile) resolveDirs(blocks []*ExecBlock) []*ExecBlock {
	dir := filepath.Dir(buildFile.Path)
	resolved := make([]*ExecBlock, 0, len(blocks))

	for _, block := range blocks {
		block := *block

		switch {
		case block.WorkingDir == "":
			block.WorkingDir = dir
		case filepath.IsAbs(block.WorkingDir), strings.HasPrefix(block.WorkingDir, "~"):
		default:
			block.WorkingDir = filepath.Join(dir, block.WorkingDir)
		}

		resolved = append(resolved, &block)
	}

	return resolved
}
