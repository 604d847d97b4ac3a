// FILE: confull/lock.go
package confull

import (
	"context"
	"fmt"
	"os"

	"github.com/gofrs/flock"
)

// fileLock serializes the read-modify-write of the backing file across
// cooperating processes. The lock is advisory and lives in a sidecar
// <file>.lock so editors that replace the target by rename cannot break it.
// A nil *fileLock (process-safe disabled) is a no-op; two processes writing
// the same file then race and the last writer wins — acceptable only for
// single-process deployments.
type fileLock struct {
	fl *flock.Flock
}

func newFileLock(target string, enabled bool) *fileLock {
	if !enabled {
		return nil
	}
	return &fileLock{fl: flock.New(target + ".lock")}
}

// Acquire takes the exclusive lock, waiting at most LockTimeout. Exceeding
// the bound fails with ErrLockTimeout rather than blocking indefinitely.
func (l *fileLock) Acquire() error {
	if l == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), LockTimeout)
	defer cancel()

	ok, err := l.fl.TryLockContext(ctx, LockRetryInterval)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %s", ErrLockTimeout, l.fl.Path())
		}
		return fmt.Errorf("acquire lock %s: %w", l.fl.Path(), err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrLockTimeout, l.fl.Path())
	}
	return nil
}

// Release drops the lock. Safe to call when not held.
func (l *fileLock) Release() error {
	if l == nil {
		return nil
	}
	return l.fl.Unlock()
}

// Remove deletes the sidecar lock file, best effort. Called when the store
// discards its backing file entirely.
func (l *fileLock) Remove() {
	if l == nil {
		return
	}
	_ = os.Remove(l.fl.Path())
}
