// Package dirstream provides the platform-specific directory iterator
// (DirIter in spec terms): it opens one directory and yields DirEntry
// values by parsing the raw kernel record buffer, doing the fewest possible
// syscalls per platform.
package dirstream

import (
	"github.com/dl/findcore/internal/direntry"
)

// State is the DirIter state machine described in spec.md §4.8.
type State int

const (
	Unread State = iota
	HasBuffer
	Exhausted
)

// Options tunes the behavior of an Iterator.
type Options struct {
	// BufferSize is the kernel read buffer size for getdents-family
	// iterators. Zero selects the default (32 KiB).
	BufferSize int
	// DisableShortReadTermination forces the Linux iterator to keep
	// calling getdents64 until it observes a zero-byte return, instead of
	// treating a short (but nonzero) read as end-of-stream. Some
	// network-mounted filesystems have been observed to violate the
	// short-read-means-done invariant; see spec.md §9.
	DisableShortReadTermination bool
}

// DefaultBufferSize is used when Options.BufferSize is zero.
const DefaultBufferSize = 32 * 1024

func (o Options) bufferSize() int {
	if o.BufferSize > 0 {
		return o.BufferSize
	}
	return DefaultBufferSize
}

// Iterator enumerates one open directory, yielding entries in kernel return
// order. "." and ".." are never yielded. Callers must call Close exactly
// once, in all paths including early termination and errors, to release the
// directory file descriptor.
type Iterator interface {
	// Next advances to the next entry. It returns false at end-of-stream
	// or on error; callers should check Err() to distinguish the two.
	Next() bool
	// Entry returns the entry produced by the most recent successful Next.
	Entry() direntry.Entry
	// Err returns the first error encountered, if any.
	Err() error
	// Close releases the directory file descriptor. Safe to call multiple
	// times.
	Close() error
	// State reports the iterator's current position in the Unread /
	// HasBuffer / Exhausted state machine.
	State() State
}

// OpenError wraps a failed directory open with the path it concerned,
// matching the OpenFailed{path, errno} taxonomy entry.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string { return "open " + e.Path + ": " + e.Err.Error() }
func (e *OpenError) Unwrap() error { return e.Err }

// ReadError wraps a failed enumerate syscall mid-iteration, matching the
// ReadFailed{path, errno} taxonomy entry.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string { return "readdir " + e.Path + ": " + e.Err.Error() }
func (e *ReadError) Unwrap() error { return e.Err }
