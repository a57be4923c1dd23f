//go:build linux

package exec

import (
	"os"
	osexec "os/exec"
	"testing"
	"time"

	"github.com/kilnworks/kiln/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKillSkipsUnreapedProcess(t *testing.T) {
	t.Parallel()

	cmd := osexec.Command(os.Args[0], "-test.run=^TestHelperProcess$", "--", "--exitcode", "3")
	cmd.Env = append(os.Environ(), "KILN_TEST_HELPER_PROCESS=1")

	require.NoError(t, cmd.Start())

	require.Eventually(t, func() bool {
		exited, err := processExited(cmd.Process)
		return err == nil && exited
	}, 10*time.Second, 10*time.Millisecond)

	proc := &Process{
		cmd:    cmd,
		logger: log.New(),
		state:  StateRunning,
	}

	killed, err := proc.kill()
	require.NoError(t, err)
	assert.False(t, killed)
	assert.False(t, proc.killRequested)

	require.Error(t, cmd.Wait())
	assert.Equal(t, 3, exitCodeOf(cmd.ProcessState))

	exited, err := processExited(cmd.Process)
	require.NoError(t, err)
	assert.True(t, exited)
}
