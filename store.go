// FILE: confull/store.go
package confull

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Options enumerates the construction parameters of a Store. The zero value
// is not useful on its own; start from DefaultOptions or use the Builder.
type Options struct {
	// File is the backing file path. An extension matching a supported
	// format determines the encoding when Format is unset; a missing
	// extension is appended from the format.
	File string

	// Format is the on-disk encoding. When empty it is inferred from the
	// file extension, falling back to TOML.
	Format Format

	// InitialData pre-populates the tree. Ignored when an existing file is
	// loaded (unless Replace is set).
	InitialData map[string]any

	// Replace ignores any existing file content and starts from InitialData.
	Replace bool

	// AutoSave flushes automatically after each mutation.
	AutoSave bool

	// Password enables at-rest encryption with integrity verification.
	Password string

	// ProcessSafe serializes file access across processes with an advisory
	// lock. Without it, concurrent writers race and the last one wins.
	ProcessSafe bool

	// Debounce delays auto-save flushes, coalescing bursts of mutations
	// into a single disk write. Zero means synchronous flush.
	Debounce time.Duration

	// Watch reloads the tree when the backing file changes externally.
	Watch bool

	// Logger receives the rare messages the store cannot surface to a
	// caller (best-effort teardown flushes, debounced flush failures).
	// Defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns the standard construction options.
func DefaultOptions() Options {
	return Options{File: "config", AutoSave: true}
}

// Store is a thread-safe configuration store backed by a file.
//
// The in-process mutex guards the tree and the dirty flag only; critical
// sections are short and never span disk I/O. Flushes snapshot the tree
// under the mutex and write outside it, so mutations are never blocked by
// an in-flight disk write.
type Store struct {
	mu     sync.RWMutex
	tree   map[string]any
	dirty  bool
	mutGen uint64 // bumped on every mutation; flushes clear dirty only when unchanged

	file     string
	format   Format
	cipher   *cipher
	lock     *fileLock
	autoSave bool
	debounce time.Duration
	logger   *slog.Logger

	// flushMu makes flushes single-flight: held across snapshot, write and
	// the dirty-clear, so a slow flush can never rename a stale snapshot
	// over a newer one. Never held together with mu beyond the short
	// snapshot/clear sections.
	flushMu sync.Mutex

	saveTimer *time.Timer
	flushing  atomic.Bool
	lastWrite atomic.Value // writeStamp
	watcher   *watcher
	closed    bool
}

// Open constructs a Store from opts. An existing backing file is loaded
// unless Replace is set; otherwise the tree starts from InitialData (or
// empty) and, with auto-save enabled, is persisted immediately.
func Open(opts Options) (*Store, error) {
	if opts.File == "" {
		opts.File = "config"
	}

	format := opts.Format
	if format == "" {
		if f, ok := detectFormat(opts.File); ok {
			format = f
		} else {
			format = FormatTOML
		}
	} else {
		f, err := ParseFormat(string(format))
		if err != nil {
			return nil, err
		}
		format = f
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	file := ensureExtension(opts.File, format)
	s := &Store{
		tree:     make(map[string]any),
		file:     file,
		format:   format,
		cipher:   newCipher(opts.Password),
		lock:     newFileLock(file, opts.ProcessSafe),
		autoSave: opts.AutoSave,
		debounce: opts.Debounce,
		logger:   logger,
	}

	_, statErr := os.Stat(file)
	if statErr == nil && !opts.Replace {
		tree, err := s.readTarget(file, format, s.lock)
		if err != nil {
			return nil, err
		}
		s.tree = tree
	} else {
		if opts.InitialData != nil {
			for key := range opts.InitialData {
				if err := checkReserved(splitPath(key)[0]); err != nil {
					return nil, err
				}
			}
			// Dotted keys expand to paths, same as Merge.
			if err := deepMerge(s.tree, opts.InitialData, MergeReplace); err != nil {
				return nil, err
			}
		}
		s.dirty = true
		if s.autoSave {
			if err := s.Save(); err != nil {
				return nil, err
			}
		}
	}

	if opts.Watch {
		if err := s.EnableWatch(); err != nil {
			s.Close()
			return nil, err
		}
	}
	return s, nil
}

// reservedKeys lists every store operation name (lowercased). A top-level
// data key matching one of them is rejected on write with ErrReservedKey;
// data never shadows the operation surface.
var reservedKeys = map[string]struct{}{
	"get": {}, "getdefault": {}, "getpath": {}, "set": {}, "setpath": {},
	"update": {}, "merge": {}, "delete": {}, "deletepath": {}, "replace": {},
	"save": {}, "saveas": {}, "reload": {}, "retarget": {}, "path": {},
	"abspath": {}, "tomap": {}, "tojson": {}, "totext": {}, "keys": {},
	"len": {}, "has": {}, "isempty": {}, "scan": {}, "close": {},
	"isautosave": {}, "setautosave": {}, "enablewatch": {}, "disablewatch": {},
	"string": {}, "int64": {}, "bool": {}, "float64": {}, "dirty": {},
	"destroy": {}, "dump": {}, "fileformat": {}, "iswatching": {},
}

func checkReserved(key string) error {
	if _, bad := reservedKeys[strings.ToLower(key)]; bad {
		return fmt.Errorf("%w: %q", ErrReservedKey, key)
	}
	return nil
}

// Get retrieves the value at a dot-path. Nested nodes are returned as
// detached deep copies; mutating them does not affect the store.
func (s *Store) Get(path string) (any, bool) {
	return s.GetPath(splitPath(path))
}

// GetPath is Get for pre-split path segments, the only way to address keys
// that contain a literal dot.
func (s *Store) GetPath(segments []string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := getPath(s.tree, segments)
	if !ok {
		return nil, false
	}
	return copyValue(value), true
}

// GetDefault retrieves the value at a dot-path, returning def when any
// segment is absent or a scalar is hit mid-path.
func (s *Store) GetDefault(path string, def any) any {
	if value, ok := s.Get(path); ok {
		return value
	}
	return def
}

// Set writes value at a dot-path, creating missing intermediate nodes.
// A scalar blocking the path fails with ErrPathConflict unless the optional
// overwrite flag is true, in which case the scalar and everything under it
// is discarded — destructive, and deliberate. The final segment is always
// overwritten regardless of its previous type.
func (s *Store) Set(path string, value any, overwrite ...bool) error {
	return s.SetPath(splitPath(path), value, overwrite...)
}

// SetPath is Set for pre-split path segments.
func (s *Store) SetPath(segments []string, value any, overwrite ...bool) error {
	force := len(overwrite) > 0 && overwrite[0]
	if len(segments) > 0 {
		if err := checkReserved(segments[0]); err != nil {
			return err
		}
	}
	return s.mutate(func() (bool, error) {
		err := setPath(s.tree, segments, value, force)
		return err == nil, err
	})
}

// Update applies a batch of changes. Keys may be dot-paths; a key literally
// "a.b" is treated as Set("a.b", ...), never as a compound key. Nested map
// values merge recursively, with incoming values winning on clash.
func (s *Store) Update(data map[string]any) error {
	return s.Merge(data, MergeReplace)
}

// Merge deep-merges data into the tree under an explicit conflict policy.
func (s *Store) Merge(data map[string]any, policy MergePolicy) error {
	for key := range data {
		if err := checkReserved(splitPath(key)[0]); err != nil {
			return err
		}
	}
	return s.mutate(func() (bool, error) {
		err := deepMerge(s.tree, data, policy)
		return err == nil, err
	})
}

// Delete removes the leaf at a dot-path and prunes parent nodes the removal
// left empty. A missing path is a no-op, not an error.
func (s *Store) Delete(path string) error {
	return s.DeletePath(splitPath(path))
}

// DeletePath is Delete for pre-split path segments.
func (s *Store) DeletePath(segments []string) error {
	return s.mutate(func() (bool, error) {
		return deletePath(s.tree, segments), nil
	})
}

// Replace swaps the entire tree for data atomically.
func (s *Store) Replace(data map[string]any) error {
	for key := range data {
		if err := checkReserved(key); err != nil {
			return err
		}
	}
	return s.mutate(func() (bool, error) {
		s.tree = normalizeTree(data)
		return true, nil
	})
}

// mutate runs fn under the write lock and, when fn reports a change, marks
// the store dirty and kicks the coordinator: synchronous flush when
// auto-save has no debounce window, timer (re)start otherwise. fn failing
// leaves the state untouched.
func (s *Store) mutate(fn func() (bool, error)) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	changed, err := fn()
	if err != nil || !changed {
		s.mu.Unlock()
		return err
	}
	s.dirty = true
	s.mutGen++
	autoSave, debounce := s.autoSave, s.debounce
	s.mu.Unlock()

	if !autoSave {
		return nil
	}
	if debounce == 0 {
		return s.Save()
	}
	s.armSaveTimer(debounce)
	return nil
}

// armSaveTimer (re)starts the debounce timer. Each new mutation cancels the
// pending timer, so the flush fires only after a quiet window.
func (s *Store) armSaveTimer(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.saveTimer != nil {
		s.saveTimer.Stop()
	}
	s.saveTimer = time.AfterFunc(d, s.debouncedSave)
}

// debouncedSave is the timer callback. It has no caller to surface an error
// to, so failures are logged; the store stays dirty and a later Save can
// retry.
func (s *Store) debouncedSave() {
	if err := s.Save(); err != nil {
		s.logger.Warn("debounced config flush failed", "file", s.Path(), "error", err)
	}
}

// Save flushes the tree to the backing file: snapshot under the lock,
// encode, seal, atomic write under the cross-process lock. A failed flush
// leaves the tree unchanged and the store dirty, so Save can be retried
// without data loss. Saving a clean store is a no-op. Flushes are
// single-flight: a Save that arrives while another is writing waits and
// then snapshots the newest tree.
func (s *Store) Save() error {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.saveTimer != nil {
		s.saveTimer.Stop()
		s.saveTimer = nil
	}
	if !s.dirty {
		s.mu.Unlock()
		return nil
	}
	snapshot := deepCopy(s.tree)
	gen := s.mutGen
	file, format := s.file, s.format
	s.mu.Unlock()

	s.flushing.Store(true)
	err := s.writeTarget(file, format, s.lock, snapshot)
	s.flushing.Store(false)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.mutGen == gen {
		s.dirty = false
	} else if s.autoSave && !s.closed {
		// Mutations landed while the write was in flight; schedule the
		// follow-up flush.
		d := s.debounce
		if d == 0 {
			d = time.Millisecond
		}
		if s.saveTimer != nil {
			s.saveTimer.Stop()
		}
		s.saveTimer = time.AfterFunc(d, s.debouncedSave)
	}
	s.mu.Unlock()
	return nil
}

// SaveAs writes the current tree to a different file and format without
// retargeting the store. The format may be empty to reuse the file's
// extension or the store's format.
func (s *Store) SaveAs(file string, format Format) error {
	if file == "" {
		return fmt.Errorf("save as: empty file path")
	}
	if format == "" {
		if f, ok := detectFormat(file); ok {
			format = f
		} else {
			s.mu.RLock()
			format = s.format
			s.mu.RUnlock()
		}
	} else {
		f, err := ParseFormat(string(format))
		if err != nil {
			return err
		}
		format = f
	}
	file = ensureExtension(file, format)

	// Serialized with regular flushes; the target may be the backing file.
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return ErrClosed
	}
	snapshot := deepCopy(s.tree)
	processSafe := s.lock != nil
	s.mu.RUnlock()

	return s.writeTarget(file, format, newFileLock(file, processSafe), snapshot)
}

// Reload discards the in-memory tree and re-reads the backing file,
// dropping any unsaved changes. Waits out any in-flight flush first, so a
// slow write cannot land after the tree was already replaced from disk.
func (s *Store) Reload() error {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return ErrClosed
	}
	file, format, lock := s.file, s.format, s.lock
	s.mu.RUnlock()

	tree, err := s.readTarget(file, format, lock)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.tree = tree
	s.dirty = false
	s.mutGen++
	s.mu.Unlock()
	return nil
}

// Retarget switches the backing file and/or format without loading content;
// the next flush writes the current tree to the new target. Either argument
// may be empty to keep the current value. An active watcher follows the new
// file.
func (s *Store) Retarget(file string, format Format) error {
	if format != "" {
		f, err := ParseFormat(string(format))
		if err != nil {
			return err
		}
		format = f
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if format == "" {
		format = s.format
		if file != "" {
			if f, ok := detectFormat(file); ok {
				format = f
			}
		}
	}
	if file == "" {
		file = s.file
	}
	file = ensureExtension(file, format)

	processSafe := s.lock != nil
	wasWatching := s.watcher != nil
	s.file = file
	s.format = format
	s.lock = newFileLock(file, processSafe)
	s.dirty = true
	s.mutGen++
	s.lastWrite.Store(writeStamp{})
	s.mu.Unlock()

	if wasWatching {
		s.DisableWatch()
		return s.EnableWatch()
	}
	return nil
}

// Destroy wipes the tree and removes the backing file and its lock sidecar
// from disk. The store stays usable afterwards: it is empty and clean, and
// a later flush recreates the file.
func (s *Store) Destroy() error {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.saveTimer != nil {
		s.saveTimer.Stop()
		s.saveTimer = nil
	}
	s.tree = make(map[string]any)
	s.dirty = false
	s.mutGen++
	s.lastWrite.Store(writeStamp{})
	file, lock := s.file, s.lock
	s.mu.Unlock()

	if err := os.Remove(file); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove config file %q: %w", file, err)
	}
	lock.Remove()
	return nil
}

// Path returns the backing file path as configured.
func (s *Store) Path() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.file
}

// AbsPath returns the backing file's absolute path.
func (s *Store) AbsPath() string {
	path := s.Path()
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

// FileFormat returns the on-disk encoding in use.
func (s *Store) FileFormat() Format {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.format
}

// IsAutoSave reports whether mutations flush automatically.
func (s *Store) IsAutoSave() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.autoSave
}

// SetAutoSave toggles automatic flushing.
func (s *Store) SetAutoSave(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.autoSave = enabled
}

// Dirty reports whether unsaved mutations exist.
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// Keys returns the top-level keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.tree))
	for key := range s.tree {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of top-level keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tree)
}

// Has reports whether a dot-path resolves to a value.
func (s *Store) Has(path string) bool {
	_, ok := s.Get(path)
	return ok
}

// IsEmpty reports whether the tree holds no keys.
func (s *Store) IsEmpty() bool {
	return s.Len() == 0
}

// Close tears the store down: the watcher is joined, a best-effort final
// flush runs when auto-save is enabled and unsaved changes exist (failures
// are logged, not raised — there is no caller to observe them), and the
// store rejects further operations. Callers must pair every Open with a
// Close; the store never relies on finalizers.
func (s *Store) Close() error {
	s.DisableWatch()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	if s.saveTimer != nil {
		s.saveTimer.Stop()
		s.saveTimer = nil
	}
	needFlush := s.autoSave && s.dirty
	s.mu.Unlock()

	if needFlush {
		if err := s.Save(); err != nil {
			s.logger.Warn("final config flush on close failed", "file", s.Path(), "error", err)
		}
	}

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}
