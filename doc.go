// FILE: confull/doc.go

// Package confull provides a concurrent, format-agnostic configuration store:
// a nested key-value tree addressed by dot-separated paths, transparently
// persisted to JSON, TOML, YAML, INI, or XML, optionally encrypted at rest,
// and kept in sync across goroutines, cooperating processes, and out-of-band
// file edits.
//
// Features:
//   - Dot-path access with autovivification (Set("a.b.c", v) creates a and a.b)
//   - Five interchangeable on-disk formats, inferred from the file extension
//   - Dirty tracking with debounced, atomic auto-save
//   - Optional at-rest encryption (Argon2id + XChaCha20-Poly1305) with
//     integrity detection on load
//   - Cross-process file locking via a sidecar lock file
//   - External-change watcher that reloads when another writer touches the file
//   - Builder pattern and XDG-aware file discovery for easy initialization
//
// Quick Start:
//
//	store, err := confull.Open(confull.Options{
//	    File:     "app.toml",
//	    AutoSave: true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	store.Set("server.host", "localhost")
//	store.Set("server.port", 8080)
//
//	host, _ := store.String("server.host")
//	port, _ := store.Int64("server.port")
//
// Or with the builder:
//
//	store, err := confull.NewBuilder().
//	    WithFile("app.json").
//	    WithPassword(os.Getenv("APP_SECRET")).
//	    WithProcessSafe().
//	    WithWatch().
//	    Build()
//
// Thread Safety:
// All operations are thread-safe. The store uses a read-write mutex to allow
// concurrent reads while protecting writes; file I/O happens outside the lock.
package confull
