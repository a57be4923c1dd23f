package cli_test

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/kilnworks/kiln/cli"
	"github.com/kilnworks/kiln/internal/buildfile"
	"github.com/kilnworks/kiln/internal/errors"
	"github.com/kilnworks/kiln/internal/locks"
	"github.com/kilnworks/kiln/internal/options"
	"github.com/kilnworks/kiln/internal/util"
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

func helperExec(exitCode int) string {
	return fmt.Sprintf(`exec {
    command = %q
    args    = ["-test.run=^TestHelperProcess$", "--", "%d"]
    env     = { %s = "1" }
  }`, os.Args[0], exitCode, helperEnvVar)
}

func writeBuildFile(t *testing.T, testExitCode int) string {
	t.Helper()

	dir := t.TempDir()

	content := fmt.Sprintf(`
default = "test"

task "build" {
  description = "Compile the sources"
  %[1]s
}

task "test" {
  description = "Run the tests"
  depends_on  = ["build"]
  %[2]s
}

task "release" {
  depends_on = ["test"]

  criteria {
    env = ["KILN_RELEASE"]
  }
}
`, helperExec(0), helperExec(testExitCode))

	require.NoError(t, os.WriteFile(filepath.Join(dir, buildfile.DefaultFilename), []byte(content), 0o644))

	return dir
}

func runApp(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer

	opts := options.NewOptions()
	opts.Writer = &stdout
	opts.ErrWriter = &stderr
	opts.Logger = log.New(log.WithOutput(&stderr))
	opts.Env = map[string]string{}

	err := cli.NewApp(opts).RunContext(context.Background(), append([]string{"kiln", "--no-color"}, args...))

	return stdout.String(), stderr.String(), err
}

func TestTasksCommand(t *testing.T) {
	t.Parallel()

	dir := writeBuildFile(t, 0)

	stdout, _, err := runApp(t, "--working-dir", dir, "tasks")
	require.NoError(t, err)

	assert.Equal(t, ""+
		"Task            Description\n"+
		"build           Compile the sources\n"+
		"test (default)  Run the tests\n"+
		"release\n", stdout)
}

func TestGraphCommand(t *testing.T) {
	t.Parallel()

	dir := writeBuildFile(t, 0)

	stdout, _, err := runApp(t, "--working-dir", dir, "graph", "--order", "release")
	require.NoError(t, err)
	assert.Equal(t, "build\ntest\nrelease\n", stdout)

	stdout, _, err = runApp(t, "--working-dir", dir, "graph")
	require.NoError(t, err)
	assert.Contains(t, stdout, "digraph {")
	assert.Contains(t, stdout, `"test" [style=bold];`)
	assert.Contains(t, stdout, `"test" -> "build";`)
}

func TestGraphCommandUnknownTarget(t *testing.T) {
	t.Parallel()

	dir := writeBuildFile(t, 0)

	_, _, err := runApp(t, "--working-dir", dir, "graph", "deploy")
	require.Error(t, err)
	assert.True(t, errors.IsConfigurationError(err))
}

func TestRunCommand(t *testing.T) {
	t.Parallel()

	dir := writeBuildFile(t, 0)
	reportFile := filepath.Join(dir, "out", "report.json")

	_, stderr, err := runApp(t, "--working-dir", dir, "--report-file", reportFile, "run", "release")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Build Summary")

	content, err := os.ReadFile(reportFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"Name": "build"`)
	assert.Contains(t, string(content), `"Result": "skipped"`)
}

func TestRunWithoutCommandUsesDefaultTarget(t *testing.T) {
	t.Parallel()

	dir := writeBuildFile(t, 0)
	reportFile := filepath.Join(dir, "report.csv")

	_, _, err := runApp(t, "--working-dir", dir, "--report-file", reportFile)
	require.NoError(t, err)

	content, err := os.ReadFile(reportFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "test,")
	assert.NotContains(t, string(content), "release,")
}

func TestRunExitCode(t *testing.T) {
	t.Parallel()

	dir := writeBuildFile(t, 4)

	_, _, err := runApp(t, "--working-dir", dir, "run")
	require.Error(t, err)

	exitCode, exitCodeErr := util.GetExitCode(err)
	require.NoError(t, exitCodeErr)
	assert.Equal(t, 4, exitCode)
}

func TestRunMissingBuildFile(t *testing.T) {
	t.Parallel()

	_, _, err := runApp(t, "--working-dir", t.TempDir(), "run")
	require.Error(t, err)

	var notFoundErr buildfile.BuildFileNotFoundError

	assert.ErrorAs(t, err, &notFoundErr)
}

func TestRunLocked(t *testing.T) {
	t.Parallel()

	dir := writeBuildFile(t, 0)

	lock := locks.NewRunLock(log.New(), dir)
	require.NoError(t, lock.TryLock())
	t.Cleanup(lock.Unlock)

	_, _, err := runApp(t, "--working-dir", dir, "run")
	require.Error(t, err)

	var lockedErr locks.AlreadyLockedError

	require.ErrorAs(t, err, &lockedErr)

	_, _, err = runApp(t, "--working-dir", dir, "--no-lock", "run")
	require.NoError(t, err)
}

func TestInvalidLogLevel(t *testing.T) {
	t.Parallel()

	_, _, err := runApp(t, "--log-level", "loud", "version")
	require.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	stdout, _, err := runApp(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "kiln version "+cli.Version+"\n", stdout)
}
