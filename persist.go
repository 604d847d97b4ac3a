// FILE: confull/persist.go
package confull

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// writeStamp records the backing file's stat after one of the store's own
// flushes, so the watcher can tell its own writes from external ones.
type writeStamp struct {
	modTime time.Time
	size    int64
}

// writeTarget runs the full outbound pipeline for a snapshot: codec encode,
// cipher seal, cross-process lock, atomic write. Never called with the tree
// mutex held.
func (s *Store) writeTarget(path string, format Format, lock *fileLock, tree map[string]any) error {
	codec, err := codecFor(format)
	if err != nil {
		return err
	}
	data, err := codec.Encode(tree)
	if err != nil {
		return err
	}
	sealed, err := s.cipher.Seal(data)
	if err != nil {
		return err
	}

	if err := lock.Acquire(); err != nil {
		return err
	}
	defer lock.Release()

	if err := atomicWriteFile(path, sealed); err != nil {
		return err
	}
	s.recordSelfWrite(path)
	return nil
}

// readTarget runs the inbound pipeline: cross-process lock, read, cipher
// open, codec decode, normalize. A missing or empty file yields an empty
// tree.
func (s *Store) readTarget(path string, format Format, lock *fileLock) (map[string]any, error) {
	if err := lock.Acquire(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	lock.Release()

	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return make(map[string]any), nil
		}
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return make(map[string]any), nil
	}

	plain, err := s.cipher.Open(data)
	if err != nil {
		return nil, err
	}
	codec, err := codecFor(format)
	if err != nil {
		return nil, err
	}
	return codec.Decode(plain)
}

// recordSelfWrite stamps the file state produced by our own flush.
func (s *Store) recordSelfWrite(path string) {
	if info, err := os.Stat(path); err == nil {
		s.lastWrite.Store(writeStamp{modTime: info.ModTime(), size: info.Size()})
	}
}

// isSelfWrite reports whether the file's current state matches the last
// flush this store performed.
func (s *Store) isSelfWrite(path string) bool {
	stamp, ok := s.lastWrite.Load().(writeStamp)
	if !ok || stamp.modTime.IsZero() {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.ModTime().Equal(stamp.modTime) && info.Size() == stamp.size
}

// atomicWriteFile writes data to a temporary file in the target directory
// and renames it over the destination, so readers never observe a partially
// written file, even across a crash.
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory '%s': %w", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	tempPath := tempFile.Name()
	defer os.Remove(tempPath) // Clean up on any error

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err := os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}
