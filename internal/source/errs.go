package source

import "errors"

var (
	// ErrNotFound indicates that the process exited before its counters
	// could be read.
	ErrNotFound = errors.New("source: process not found")

	// ErrMalformed indicates that a counter record had an unexpected format.
	ErrMalformed = errors.New("source: malformed record")

	// ErrUnsupported indicates that the requested source kind is not
	// available on this platform.
	ErrUnsupported = errors.New("source: unsupported on this platform")
)
