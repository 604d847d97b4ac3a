// FILE: confull/builder_test.go
package confull

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBuilder tests the fluent construction chain
func TestBuilder(t *testing.T) {
	t.Run("FullChain", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "app.yaml")
		s, err := NewBuilder().
			WithFile(file).
			WithFormat("yaml").
			WithInitialData(map[string]any{"server.port": 8080}).
			WithAutoSave(true).
			WithDebounce(50 * time.Millisecond).
			Build()
		require.NoError(t, err)
		defer s.Close()

		assert.Equal(t, FormatYAML, s.FileFormat())
		port, ok := s.Get("server.port")
		require.True(t, ok)
		assert.Equal(t, int64(8080), port)
	})

	t.Run("InvalidFormatLatchesError", func(t *testing.T) {
		_, err := NewBuilder().
			WithFormat("csv").
			WithFile("x.json"). // later calls don't clear the error
			Build()
		assert.ErrorIs(t, err, ErrUnknownFormat)
	})

	t.Run("EmptyFormatMeansInference", func(t *testing.T) {
		s, err := NewBuilder().
			WithFile(filepath.Join(t.TempDir(), "c.ini")).
			WithFormat("").
			Build()
		require.NoError(t, err)
		defer s.Close()
		assert.Equal(t, FormatINI, s.FileFormat())
	})

	t.Run("NegativeDebounceClamped", func(t *testing.T) {
		b := NewBuilder().WithDebounce(-time.Second)
		assert.Equal(t, time.Duration(0), b.opts.Debounce)
	})

	t.Run("Defaults", func(t *testing.T) {
		b := NewBuilder()
		assert.Equal(t, "config", b.opts.File)
		assert.True(t, b.opts.AutoSave)
	})

	t.Run("MustBuildPanics", func(t *testing.T) {
		assert.Panics(t, func() {
			NewBuilder().WithFormat("nope").MustBuild()
		})
	})
}

// TestFileDiscovery tests env-var and path search resolution
func TestFileDiscovery(t *testing.T) {
	t.Run("EnvVarWins", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "from-env.json")
		t.Setenv("MYAPP_CONFIG", target)

		b := NewBuilder().WithFileDiscovery(DefaultDiscoveryOptions("myapp"))
		assert.Equal(t, target, b.opts.File)
	})

	t.Run("CustomPathHit", func(t *testing.T) {
		dir := t.TempDir()
		seed, err := Open(Options{File: filepath.Join(dir, "myapp.toml"), AutoSave: true})
		require.NoError(t, err)
		require.NoError(t, seed.Close())

		opts := DefaultDiscoveryOptions("myapp")
		opts.EnvVar = ""
		opts.Paths = []string{dir}
		opts.UseCurrentDir = false
		opts.UseXDG = false

		b := NewBuilder().WithFileDiscovery(opts)
		assert.Equal(t, filepath.Join(dir, "myapp.toml"), b.opts.File)
	})

	t.Run("NoHitKeepsFile", func(t *testing.T) {
		opts := DefaultDiscoveryOptions("definitely-not-present")
		opts.EnvVar = ""
		opts.UseCurrentDir = false
		opts.UseXDG = false
		opts.Paths = []string{t.TempDir()}

		b := NewBuilder().WithFile("fallback.json").WithFileDiscovery(opts)
		assert.Equal(t, "fallback.json", b.opts.File)
	})
}
