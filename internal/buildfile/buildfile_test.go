package buildfile_test

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/kilnworks/kiln/internal/buildfile"
	"github.com/kilnworks/kiln/internal/engine"
	"github.com/kilnworks/kiln/internal/envfacts"
	"github.com/kilnworks/kiln/internal/errors"
	"github.com/kilnworks/kiln/internal/os/exec"
	"github.com/kilnworks/kiln/internal/report"
	"github.com/kilnworks/kiln/internal/task"
	"github.com/kilnworks/kiln/internal/util"
	"github.com/kilnworks/kiln/pkg/env"
	"github.com/kilnworks/kiln/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const helperEnvVar = "KILN_TEST_HELPER_PROCESS"

// TestHelperProcess is not a real test. It is re-executed by the tests below as a mock process
// exiting with the code given as its last argument.
func TestHelperProcess(t *testing.T) {
	if os.Getenv(helperEnvVar) != "1" {
		return
	}

	var code int

	fmt.Sscanf(os.Args[len(os.Args)-1], "%d", &code) //nolint:errcheck
	os.Exit(code)
}

func newParser(vars map[string]string) *buildfile.Parser {
	return buildfile.NewParser(log.New(), envfacts.New(env.FromMap(vars), envfacts.WithPlatform("linux", "amd64")))
}

const sampleBuildFile = `
default = "package"

task "restore" {
  exec {
    command = "go mod download"
  }
}

task "build" {
  description = "Compile ${get_env("KILN_PROJECT", "everything")}"
  depends_on  = ["restore"]

  exec {
    command     = "go build -v ./..."
    working_dir = "src"
    timeout     = "5m"
  }
}

task "lint" {
  continue_on_error = true
  depends_on        = ["build"]

  criteria {
    os = ["linux", "darwin"]
  }

  exec {
    command = "golangci-lint run"
  }
}

task "package" {
  depends_on = ["lint"]

  criteria {
    ci = true
  }

  finally {
    exec {
      command = "rm -rf dist/tmp"
    }
  }
}
`

func TestParseAndRegister(t *testing.T) {
	t.Parallel()

	buildFile, err := newParser(map[string]string{"KILN_PROJECT": "kiln"}).ParseFromString(sampleBuildFile, "/src/build.hcl")
	require.NoError(t, err)

	assert.Equal(t, "package", buildFile.Target("default"))
	require.Len(t, buildFile.Tasks, 4)

	registry := task.NewRegistry()
	require.NoError(t, buildFile.Register(registry))
	require.NoError(t, registry.Err())

	build, ok := registry.Lookup("build")
	require.True(t, ok)
	assert.Equal(t, "Compile kiln", build.Description())
	assert.Equal(t, []string{"restore"}, build.Dependencies())
	assert.Len(t, build.Actions(), 1)
	assert.False(t, build.ContinueOnError())

	lint, ok := registry.Lookup("lint")
	require.True(t, ok)
	assert.True(t, lint.ContinueOnError())
	assert.Len(t, lint.Criteria(), 1)

	pkg, ok := registry.Lookup("package")
	require.True(t, ok)
	assert.Empty(t, pkg.Actions())
	assert.NotNil(t, pkg.FinallyHandler())
	assert.Nil(t, pkg.ErrorHandler())
}

func TestGetEnvDefault(t *testing.T) {
	t.Parallel()

	buildFile, err := newParser(nil).ParseFromString(sampleBuildFile, "build.hcl")
	require.NoError(t, err)
	assert.Equal(t, "Compile everything", *buildFile.Tasks[1].Description)
}

func TestCriteria(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		vars     map[string]string
		name     string
		criteria string
		goos     string
		expected bool
	}{
		{name: "ci on local", criteria: `ci = true`, goos: "linux", expected: false},
		{name: "ci on github", criteria: `ci = true`, goos: "linux", vars: map[string]string{"GITHUB_ACTIONS": "true"}, expected: true},
		{name: "local only", criteria: `ci = false`, goos: "linux", expected: true},
		{name: "os matches", criteria: `os = ["Windows"]`, goos: "windows", expected: true},
		{name: "os differs", criteria: `os = ["windows"]`, goos: "linux", expected: false},
		{name: "provider", criteria: `provider = ["gitlab-ci"]`, goos: "linux", vars: map[string]string{"GITLAB_CI": "1"}, expected: true},
		{name: "env set", criteria: `env = ["RELEASE"]`, goos: "linux", vars: map[string]string{"RELEASE": "1"}, expected: true},
		{name: "env empty", criteria: `env = ["RELEASE"]`, goos: "linux", vars: map[string]string{"RELEASE": " "}, expected: false},
		{name: "when expression", criteria: `when = os == "linux" && !ci`, goos: "linux", expected: true},
		{name: "all attributes", criteria: "ci = false\n os = [\"linux\"]\n env = [\"MISSING\"]", goos: "linux", expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			facts := envfacts.New(env.FromMap(tc.vars), envfacts.WithPlatform(tc.goos, "amd64"))
			parser := buildfile.NewParser(log.New(), facts)

			content := fmt.Sprintf("task \"t\" {\n criteria {\n %s\n }\n}\n", tc.criteria)

			buildFile, err := parser.ParseFromString(content, "build.hcl")
			require.NoError(t, err)

			registry := task.NewRegistry()
			require.NoError(t, buildFile.Register(registry))

			tsk, _ := registry.Lookup("t")
			criteria := tsk.Criteria()
			require.Len(t, criteria, 1)

			assert.Equal(t, tc.expected, criteria[0](context.Background(), &task.Context{Task: tsk, Facts: facts}))
		})
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		content     string
		registerErr bool
	}{
		{name: "syntax", content: `task "a" {`},
		{name: "unknown attribute", content: `task "a" { colour = "red" }`},
		{name: "missing label", content: `task { }`},
		{name: "empty command", content: "task \"a\" {\n exec {\n command = \"\"\n }\n}\n", registerErr: true},
		{name: "unbalanced quotes", content: "task \"a\" {\n exec {\n command = \"echo 'hi\"\n }\n}\n", registerErr: true},
		{name: "invalid timeout", content: "task \"a\" {\n exec {\n command = \"make\"\n timeout = \"soon\"\n }\n}\n", registerErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			buildFile, err := newParser(nil).ParseFromString(tc.content, "build.hcl")
			if !tc.registerErr {
				require.Error(t, err)
				assert.True(t, errors.IsConfigurationError(err))

				return
			}

			require.NoError(t, err)

			err = buildFile.Register(task.NewRegistry())
			require.Error(t, err)
			assert.True(t, errors.IsConfigurationError(err))
		})
	}
}

func TestParseFromFileNotFound(t *testing.T) {
	t.Parallel()

	_, err := newParser(nil).ParseFromFile(filepath.Join(t.TempDir(), buildfile.DefaultFilename))
	require.Error(t, err)

	var notFoundErr buildfile.BuildFileNotFoundError

	assert.ErrorAs(t, err, &notFoundErr)
}

func TestParseJSON(t *testing.T) {
	t.Parallel()

	content := `{"task": {"build": {"depends_on": ["restore"]}, "restore": {}}}`

	buildFile, err := newParser(nil).ParseFromString(content, "build.hcl.json")
	require.NoError(t, err)
	require.Len(t, buildFile.Tasks, 2)
}

func helperExec(exitCode int) string {
	return fmt.Sprintf(`exec {
    command = %q
    args    = ["-test.run=^TestHelperProcess$", "--", "%d"]
    env     = { %s = "1" }
  }`, os.Args[0], exitCode, helperEnvVar)
}

func TestRunBuildFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, buildfile.DefaultFilename)

	content := fmt.Sprintf(`
default = "test"

setup {
  %[1]s
}

task "build" {
  %[1]s
}

task "vet" {
  continue_on_error = true
  depends_on        = ["build"]
  %[2]s
}

task "test" {
  depends_on = ["vet"]
  %[3]s

  on_error {
    %[1]s
  }
}
`, helperExec(0), helperExec(1), helperExec(3))

	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	logger := log.New(log.WithOutput(new(bytes.Buffer)))

	buildFile, err := buildfile.NewParser(logger, nil).ParseFromFile(path)
	require.NoError(t, err)

	registry := task.NewRegistry()
	require.NoError(t, buildFile.Register(registry))

	launcher := exec.NewLauncher(
		exec.WithLogger(logger),
		exec.WithStdout(new(bytes.Buffer)),
		exec.WithStderr(new(bytes.Buffer)),
		exec.WithStdin(nil),
	)

	eng := engine.New(registry, engine.WithLogger(logger), engine.WithLauncher(launcher))
	require.NoError(t, buildFile.RegisterHooks(eng, task.Context{Logger: logger, Launcher: launcher}))

	r, err := eng.Run(context.Background(), buildFile.Target(""))
	require.Error(t, err)

	var taskErr engine.TaskExecutionError

	require.ErrorAs(t, err, &taskErr)
	assert.Equal(t, "test", taskErr.Task)

	exitCode, err := util.GetExitCode(err)
	require.NoError(t, err)
	assert.Equal(t, 3, exitCode)

	results := make(map[string]report.Result)
	for _, run := range r.Runs() {
		results[run.Name] = run.Result
	}

	assert.Equal(t, map[string]report.Result{
		"build": report.ResultSucceeded,
		"vet":   report.ResultFailed,
		"test":  report.ResultFailed,
	}, results)
}
