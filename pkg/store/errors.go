package store

import "errors"

var (
	// ErrIncompatibleVersion is returned when a collection blob's encoded
	// version does not match the version this build knows how to decode.
	ErrIncompatibleVersion = errors.New("incompatible collection blob version")

	// ErrCorruptBlob is returned when a collection blob fails a structural
	// check while being decoded (bad magic, early end, invalid config).
	ErrCorruptBlob = errors.New("corrupt collection blob")

	// ErrUnknownCollection is returned when a named collection does not
	// exist in the database.
	ErrUnknownCollection = errors.New("unknown collection")

	// ErrIoError is returned when an underlying filesystem operation
	// (create, open, read, write, rename, remove) fails for reasons other
	// than the blob's own structure being invalid.
	ErrIoError = errors.New("storage i/o error")
)
