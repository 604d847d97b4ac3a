// FILE: confull/timing.go
package confull

import "time"

// Core timing constants. These define the fundamental timing behavior of
// the store's persistence and watching machinery.
const (
	// LockRetryInterval is the poll quantum while waiting on the
	// cross-process lock.
	LockRetryInterval = 10 * time.Millisecond

	// LockTimeout bounds every cross-process lock acquisition.
	LockTimeout = 5 * time.Second

	// DefaultWatchDebounce coalesces bursts of file events (editors often
	// fire several per save) into a single reload.
	DefaultWatchDebounce = 100 * time.Millisecond

	// watchSettleDelay gives an external writer time to finish its rename
	// before a reload reads the file.
	watchSettleDelay = 10 * time.Millisecond
)
