package locks_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/kilnworks/kiln/internal/locks"
	"github.com/kilnworks/kiln/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunLockIsExclusive(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	logger := log.New()

	first := locks.NewRunLock(logger, dir)
	require.NoError(t, first.TryLock())
	assert.Equal(t, filepath.Join(dir, locks.RunLockFilename), first.Path())

	second := locks.NewRunLock(logger, dir)

	err := second.TryLock()
	require.Error(t, err)

	var lockedErr locks.AlreadyLockedError

	require.ErrorAs(t, err, &lockedErr)
	assert.Contains(t, err.Error(), dir)

	first.Unlock()
	require.NoError(t, second.TryLock())
	second.Unlock()
	second.Unlock()
}

func TestRunLockWaits(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	logger := log.New()

	first := locks.NewRunLock(logger, dir)
	require.NoError(t, first.TryLock())

	time.AfterFunc(300*time.Millisecond, first.Unlock)

	second := locks.NewRunLock(logger, dir)
	require.NoError(t, second.Lock(context.Background()))
	second.Unlock()
}

func TestRunLockCanceled(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	logger := log.New()

	first := locks.NewRunLock(logger, dir)
	require.NoError(t, first.TryLock())
	t.Cleanup(first.Unlock)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	err := locks.NewRunLock(logger, dir).Lock(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
