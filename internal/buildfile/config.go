package buildfile

import (
	"context"
	"strings"
	"time"

	"github.com/google/shlex"
	"github.com/kilnworks/kiln/internal/envfacts"
	"github.com/kilnworks/kiln/internal/errors"
	"github.com/kilnworks/kiln/internal/os/exec"
	"github.com/kilnworks/kiln/internal/os/exec/args"
	"github.com/kilnworks/kiln/internal/shell"
	"github.com/kilnworks/kiln/internal/task"
	"github.com/kilnworks/kiln/internal/util"
)

// BuildFile is the decoded content of a build file.
type BuildFile struct {
	Default  *string      `hcl:"default,optional"`
	Setup    *HookBlock   `hcl:"setup,block"`
	Teardown *HookBlock   `hcl:"teardown,block"`
	Tasks    []*TaskBlock `hcl:"task,block"`

	// Path is the file the build was read from. Relative working directories are resolved against its directory.
	Path string
}

// HookBlock holds the commands of a setup, teardown, on_error or finally block.
type HookBlock struct {
	Execs []*ExecBlock `hcl:"exec,block"`
}

// TaskBlock defines a task.
//
//	task "build" {
//	  description = "Compile"
//	  depends_on  = ["restore"]
//	  exec { command = "go build ./..." }
//	}
type TaskBlock struct {
	Description     *string          `hcl:"description,optional"`
	ContinueOnError *bool            `hcl:"continue_on_error,optional"`
	OnError         *HookBlock       `hcl:"on_error,block"`
	Finally         *HookBlock       `hcl:"finally,block"`
	Name            string           `hcl:"name,label"`
	DependsOn       []string         `hcl:"depends_on,optional"`
	Criteria        []*CriteriaBlock `hcl:"criteria,block"`
	Execs           []*ExecBlock     `hcl:"exec,block"`
}

// CriteriaBlock holds conditions evaluated before the task runs. Every attribute that is set must
// hold; several criteria blocks must all hold.
type CriteriaBlock struct {
	When     *bool    `hcl:"when,optional"`
	CI       *bool    `hcl:"ci,optional"`
	OS       []string `hcl:"os,optional"`
	Provider []string `hcl:"provider,optional"`
	// Env lists variables that must be set to a non-empty value.
	Env []string `hcl:"env,optional"`
}

// ExecBlock runs a command.
type ExecBlock struct {
	Env           map[string]string `hcl:"env,optional"`
	Command       string            `hcl:"command,attr"`
	WorkingDir    string            `hcl:"working_dir,optional"`
	Timeout       string            `hcl:"timeout,optional"`
	Args          []string          `hcl:"args,optional"`
	SecretArgs    []string          `hcl:"secret_args,optional"`
	CaptureOutput bool              `hcl:"capture_output,optional"`
}

// criteria returns the task criteria of the block.
func (block *CriteriaBlock) criteria() task.Criteria {
	return func(_ context.Context, tc *task.Context) bool {
		facts := tc.Facts
		if facts == nil {
			facts = envfacts.New(nil)
		}

		if block.When != nil && !*block.When {
			return false
		}

		if block.CI != nil && facts.IsCI() != *block.CI {
			return false
		}

		if len(block.OS) > 0 && !util.ListContainsFold(block.OS, facts.OS()) {
			return false
		}

		if len(block.Provider) > 0 && !util.ListContainsFold(block.Provider, facts.Provider().String()) {
			return false
		}

		for _, key := range block.Env {
			if _, ok := facts.Env(key); !ok {
				return false
			}
		}

		return true
	}
}

// command is an exec block ready to run.
type command struct {
	block   *ExecBlock
	path    string
	args    []string
	timeout time.Duration
}

func newCommand(owner string, block *ExecBlock) (*command, error) {
	parts, err := shlex.Split(block.Command)
	if err != nil {
		return nil, errors.New(InvalidExecError{Owner: owner, Reason: err.Error()})
	}

	if len(parts) == 0 {
		return nil, errors.New(InvalidExecError{Owner: owner, Reason: "command is empty"})
	}

	cmd := &command{
		block: block,
		path:  parts[0],
		args:  parts[1:],
	}

	if block.Timeout != "" {
		if cmd.timeout, err = time.ParseDuration(block.Timeout); err != nil {
			return nil, errors.New(InvalidExecError{Owner: owner, Reason: "timeout: " + err.Error()})
		}
	}

	return cmd, nil
}

func (cmd *command) settings() *exec.Settings {
	builder := args.New(cmd.args...).Append(cmd.block.Args...)

	for _, secret := range cmd.block.SecretArgs {
		builder.AppendSecret(secret)
	}

	return &exec.Settings{
		Arguments:              builder,
		WorkingDirectory:       cmd.block.WorkingDir,
		EnvironmentVariables:   cmd.block.Env,
		RedirectStandardOutput: cmd.block.CaptureOutput,
		RedirectStandardError:  cmd.block.CaptureOutput,
		Timeout:                cmd.timeout,
		OutputFilter:           redactSecrets(cmd.block.SecretArgs),
	}
}

func (cmd *command) run(ctx context.Context, tc *task.Context) error {
	output, err := shell.RunCommand(ctx, tc, cmd.path, cmd.settings())
	if err != nil {
		return err
	}

	if cmd.block.CaptureOutput {
		tc.Logger.Debugf("Command %s wrote %d bytes to standard output", cmd.path, output.Stdout.Len())
	}

	return nil
}

// redactSecrets returns a filter replacing every secret in a line with args.Redacted.
func redactSecrets(secrets []string) exec.FilterFunc {
	return func(line string) string {
		for _, secret := range secrets {
			if secret != "" {
				line = strings.ReplaceAll(line, secret, args.Redacted)
			}
		}

		return line
	}
}

func newCommands(owner string, blocks []*ExecBlock) ([]*command, error) {
	var (
		cmds []*command
		errs *errors.MultiError
	)

	for _, block := range blocks {
		cmd, err := newCommand(owner, block)
		if err != nil {
			errs = errs.Append(err)
			continue
		}

		cmds = append(cmds, cmd)
	}

	return cmds, errs.ErrorOrNil()
}

// runCommands runs the commands in order and stops at the first failure.
func runCommands(ctx context.Context, tc *task.Context, cmds []*command) error {
	for _, cmd := range cmds {
		if err := cmd.run(ctx, tc); err != nil {
			return err
		}
	}

	return nil
}
