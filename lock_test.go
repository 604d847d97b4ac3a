// FILE: confull/lock_test.go
package confull

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFileLock tests the advisory sidecar lock
func TestFileLock(t *testing.T) {
	t.Run("AcquireRelease", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "config.json")
		l := newFileLock(target, true)

		require.NoError(t, l.Acquire())
		require.NoError(t, l.Release())

		// Reacquirable after release
		require.NoError(t, l.Acquire())
		require.NoError(t, l.Release())
	})

	t.Run("SidecarPath", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "config.json")
		l := newFileLock(target, true)
		require.NoError(t, l.Acquire())
		defer l.Release()

		assert.FileExists(t, target+".lock")
	})

	t.Run("DisabledIsNoOp", func(t *testing.T) {
		l := newFileLock("whatever", false)
		assert.Nil(t, l)
		assert.NoError(t, l.Acquire())
		assert.NoError(t, l.Release())
		l.Remove()
	})

	t.Run("Remove", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "config.json")
		l := newFileLock(target, true)
		require.NoError(t, l.Acquire())
		require.NoError(t, l.Release())

		l.Remove()
		assert.NoFileExists(t, target+".lock")
	})
}
