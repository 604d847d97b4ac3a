// FILE: confull/watch.go
package confull

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watcher observes the backing file for external modification. It watches
// the parent directory rather than the file itself: editors and this
// store's own coordinator both replace the file by rename, which drops a
// direct watch.
type watcher struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	fsw    *fsnotify.Watcher

	mu          sync.Mutex
	reloadTimer *time.Timer
}

// EnableWatch starts reloading the tree whenever the backing file is
// modified or renamed-over externally. Enabling an already watching store
// is a no-op.
func (s *Store) EnableWatch() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.watcher != nil {
		s.mu.Unlock()
		return nil
	}
	file := s.file
	s.mu.Unlock()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(file)); err != nil {
		fsw.Close()
		return fmt.Errorf("watch %q: %w", filepath.Dir(file), err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &watcher{ctx: ctx, cancel: cancel, fsw: fsw}

	s.mu.Lock()
	if s.closed || s.watcher != nil {
		s.mu.Unlock()
		w.stop()
		return nil
	}
	s.watcher = w
	s.mu.Unlock()

	w.wg.Add(1)
	go w.run(s, filepath.Clean(file))
	return nil
}

// DisableWatch stops the watcher and joins its goroutine; no background
// work survives the call. Disabling a non-watching store is a no-op.
func (s *Store) DisableWatch() {
	s.mu.Lock()
	w := s.watcher
	s.watcher = nil
	s.mu.Unlock()
	if w != nil {
		w.stop()
	}
}

// IsWatching reports whether the change watcher is active.
func (s *Store) IsWatching() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.watcher != nil
}

func (w *watcher) run(s *Store, file string) {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != file {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			// Editors fire several events per save; coalesce them.
			w.armReload(s, file, DefaultWatchDebounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			s.logger.Warn("config watcher error", "file", file, "error", err)
		}
	}
}

// armReload (re)starts the reload debounce timer. The pending callback is
// counted on the WaitGroup so stop joins it; a timer stopped before firing
// gives its count back here or in stop.
func (w *watcher) armReload(s *Store, file string, d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ctx.Err() != nil {
		return
	}
	if w.reloadTimer != nil && w.reloadTimer.Stop() {
		w.wg.Done()
	}
	w.wg.Add(1)
	w.reloadTimer = time.AfterFunc(d, func() {
		defer w.wg.Done()
		w.maybeReload(s, file)
	})
}

// maybeReload reloads unless the event was caused by this store's own
// flush. An external change detected while a local flush is in flight is
// deferred until that flush completes.
func (w *watcher) maybeReload(s *Store, file string) {
	if w.ctx.Err() != nil {
		return
	}
	if s.flushing.Load() {
		w.armReload(s, file, DefaultWatchDebounce)
		return
	}
	if s.isSelfWrite(file) {
		return
	}

	// Let the external writer finish its rename before reading.
	time.Sleep(watchSettleDelay)

	// The watcher may have been stopped during the sleep.
	if w.ctx.Err() != nil {
		return
	}

	if err := s.Reload(); err != nil {
		s.logger.Warn("config reload after external change failed", "file", file, "error", err)
	}
}

// stop cancels the watch loop, stops any pending reload, and joins the
// goroutine deterministically.
func (w *watcher) stop() {
	w.cancel()
	w.fsw.Close()

	w.mu.Lock()
	if w.reloadTimer != nil {
		if w.reloadTimer.Stop() {
			w.wg.Done()
		}
		w.reloadTimer = nil
	}
	w.mu.Unlock()

	// Joins the event loop and any reload callback already in flight.
	w.wg.Wait()
}
