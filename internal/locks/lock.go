// Package locks contains the run lock, which keeps two builds from running in the same directory at once.
package locks

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/kilnworks/kiln/internal/errors"
	"github.com/kilnworks/kiln/pkg/log"
)

// RunLockFilename is the name of the lock file created in the working directory.
const RunLockFilename = ".kiln.lock"

const defaultRetryDelay = 250 * time.Millisecond

// AlreadyLockedError is returned when another build holds the run lock.
type AlreadyLockedError struct {
	Path string
}

func (err AlreadyLockedError) Error() string {
	return fmt.Sprintf("another build is running in %s, remove %s if you are sure no kiln process is running",
		filepath.Dir(err.Path), err.Path)
}

// RunLock is an exclusive, inter-process lock on a working directory.
type RunLock struct {
	*flock.Flock
	logger log.Logger
}

// NewRunLock returns the run lock of the given working directory. It is not acquired yet.
func NewRunLock(logger log.Logger, workingDir string) *RunLock {
	return &RunLock{
		Flock:  flock.New(filepath.Join(workingDir, RunLockFilename)),
		logger: logger,
	}
}

// TryLock acquires the lock or returns AlreadyLockedError without waiting.
func (lock *RunLock) TryLock() error {
	locked, err := lock.Flock.TryLock()
	if err != nil {
		return errors.New(err)
	}

	if !locked {
		return errors.New(AlreadyLockedError{Path: lock.Path()})
	}

	lock.logger.Tracef("Locked file %s", lock.Path())

	return nil
}

// Lock waits until the lock is acquired or ctx is done.
func (lock *RunLock) Lock(ctx context.Context) error {
	lock.logger.Tracef("Try to lock file %s", lock.Path())

	locked, err := lock.TryLockContext(ctx, defaultRetryDelay)
	if err != nil {
		return errors.New(err)
	}

	if !locked {
		return errors.New(AlreadyLockedError{Path: lock.Path()})
	}

	lock.logger.Tracef("Locked file %s", lock.Path())

	return nil
}

// Unlock releases the lock. It is a no-op if the lock is not held.
func (lock *RunLock) Unlock() {
	if !lock.Locked() {
		return
	}

	lock.logger.Tracef("Unlock file %s", lock.Path())

	if err := lock.Flock.Unlock(); err != nil {
		lock.logger.Warnf("Failed to release run lock %s: %v", lock.Path(), err)
	}
}
