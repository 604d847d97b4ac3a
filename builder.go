// File: confull/builder.go
package confull

import (
	"fmt"
	"log/slog"
	"time"
)

// Builder provides a fluent interface for constructing a Store.
type Builder struct {
	opts Options
	err  error
}

// NewBuilder creates a new store builder with default options.
func NewBuilder() *Builder {
	return &Builder{opts: DefaultOptions()}
}

// WithFile sets the backing file path.
func (b *Builder) WithFile(path string) *Builder {
	b.opts.File = path
	return b
}

// WithFormat sets the on-disk encoding. Accepts any supported tag string;
// an empty string keeps extension-based inference.
func (b *Builder) WithFormat(format string) *Builder {
	if format == "" {
		return b
	}
	f, err := ParseFormat(format)
	if err != nil && b.err == nil {
		b.err = err
		return b
	}
	b.opts.Format = f
	return b
}

// WithInitialData pre-populates the tree.
func (b *Builder) WithInitialData(data map[string]any) *Builder {
	b.opts.InitialData = data
	return b
}

// WithReplace ignores existing file content on open.
func (b *Builder) WithReplace() *Builder {
	b.opts.Replace = true
	return b
}

// WithAutoSave toggles automatic flushing after mutations.
func (b *Builder) WithAutoSave(enabled bool) *Builder {
	b.opts.AutoSave = enabled
	return b
}

// WithPassword enables at-rest encryption.
func (b *Builder) WithPassword(password string) *Builder {
	b.opts.Password = password
	return b
}

// WithProcessSafe enables the cross-process advisory file lock.
func (b *Builder) WithProcessSafe() *Builder {
	b.opts.ProcessSafe = true
	return b
}

// WithDebounce sets the auto-save coalescing window. Zero flushes
// synchronously.
func (b *Builder) WithDebounce(d time.Duration) *Builder {
	if d < 0 {
		d = 0
	}
	b.opts.Debounce = d
	return b
}

// WithWatch starts the external-change watcher on open.
func (b *Builder) WithWatch() *Builder {
	b.opts.Watch = true
	return b
}

// WithLogger sets the logger for best-effort failure reporting.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.opts.Logger = logger
	return b
}

// Build opens the store with all specified options.
func (b *Builder) Build() (*Store, error) {
	if b.err != nil {
		return nil, b.err
	}
	return Open(b.opts)
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() *Store {
	s, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("confull build failed: %v", err))
	}
	return s
}
