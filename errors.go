// FILE: confull/errors.go
package confull

import "errors"

// Errors returned by store operations.
var (
	// ErrPathConflict indicates a write hit a scalar where a nested node was
	// required and overwrite was not requested.
	ErrPathConflict = errors.New("path conflict: segment holds a non-node value")

	// ErrUnknownFormat indicates a format tag outside the supported set.
	ErrUnknownFormat = errors.New("unknown configuration format")

	// ErrIntegrity indicates the sealed payload failed authentication:
	// wrong password, or the file was tampered with or corrupted.
	ErrIntegrity = errors.New("integrity check failed: wrong password or corrupted data")

	// ErrPasswordRequired indicates the backing file is sealed but the store
	// was opened without a password.
	ErrPasswordRequired = errors.New("file is encrypted, password required")

	// ErrLockTimeout indicates the cross-process lock could not be acquired
	// within the configured bound.
	ErrLockTimeout = errors.New("cross-process lock acquisition timed out")

	// ErrReservedKey indicates a top-level key collides with a store
	// operation name. Reserved names are rejected on write.
	ErrReservedKey = errors.New("top-level key is a reserved store operation name")

	// ErrClosed indicates an operation on a store after Close.
	ErrClosed = errors.New("store is closed")
)
