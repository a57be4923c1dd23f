//go:build !windows

package exec_test

import (
	"testing"

	"github.com/kilnworks/kiln/internal/os/exec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignaledProcessExitCode(t *testing.T) {
	t.Parallel()

	launcher, _ := newTestLauncher()

	path, settings := helperProcess("--self-kill")

	proc, err := launcher.Start(path, settings)
	require.NoError(t, err)

	proc.WaitForExit()

	exitCode, err := proc.ExitCode()
	require.NoError(t, err)

	// 128 + SIGKILL
	assert.Equal(t, 137, exitCode)
	assert.NotEqual(t, exec.KilledExitCode, exitCode)
	assert.Equal(t, exec.StateExited, proc.State())
}
