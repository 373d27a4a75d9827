// Package pathbuf provides a stack-bounded byte buffer for composing child
// paths under a parent prefix without a heap allocation per visited entry.
package pathbuf

import (
	"errors"
	"unsafe"
)

// PathMax is the host path length limit assumed throughout the traversal
// core. 4096 matches PATH_MAX on Linux and most other POSIX systems.
const PathMax = 4096

// ErrTooLong is returned when composing a path would exceed PathMax.
var ErrTooLong = errors.New("pathbuf: path too long")

// PrevLen is a checkpoint returned by PushChild, to be passed to PopTo to
// restore the buffer to its prior content (stack discipline).
type PrevLen int

// Buffer is a fixed-capacity byte buffer holding one full path at a time.
// It is not safe for concurrent use; each traversal worker owns one.
type Buffer struct {
	buf [PathMax + 1]byte // +1 so as_cstr always has room for a null byte
	len int
}

// New creates a Buffer seeded with initial, which must fit within PathMax.
func New(initial []byte) (*Buffer, error) {
	b := &Buffer{}
	if len(initial) >= PathMax {
		return nil, ErrTooLong
	}
	copy(b.buf[:], initial)
	b.len = len(initial)
	return b, nil
}

// Reset reinitializes the buffer's content to initial, reusing the backing
// array. Used by scheduler workers to switch to a new root without a new
// allocation.
func (b *Buffer) Reset(initial []byte) error {
	if len(initial) >= PathMax {
		return ErrTooLong
	}
	copy(b.buf[:], initial)
	b.len = len(initial)
	return nil
}

// Len reports the current content length.
func (b *Buffer) Len() int { return b.len }

// PushChild appends "/" + name to the buffer (unless the buffer already ends
// in "/"), returning the previous length so the caller can restore it with
// PopTo. Returns ErrTooLong without modifying the buffer if the result would
// overflow.
func (b *Buffer) PushChild(name []byte) (PrevLen, error) {
	prev := b.len
	needSep := b.len == 0 || b.buf[b.len-1] != '/'
	extra := len(name)
	if needSep {
		extra++
	}
	if b.len+extra >= PathMax {
		return PrevLen(prev), ErrTooLong
	}
	if needSep {
		b.buf[b.len] = '/'
		b.len++
	}
	copy(b.buf[b.len:], name)
	b.len += len(name)
	return PrevLen(prev), nil
}

// PopTo restores the buffer's length to a checkpoint returned by PushChild.
// The bytes beyond prev are left in place but are no longer part of the
// logical content; the next PushChild will overwrite them.
func (b *Buffer) PopTo(prev PrevLen) {
	b.len = int(prev)
}

// Bytes returns the buffer's current content. The returned slice aliases the
// Buffer's internal storage and is invalidated by the next PushChild/PopTo.
func (b *Buffer) Bytes() []byte {
	return b.buf[:b.len]
}

// String returns the buffer's current content, copied into an owned string.
func (b *Buffer) String() string {
	return string(b.buf[:b.len])
}

// AsCStr temporarily null-terminates the buffer and returns a pointer usable
// for syscalls expecting a C string. The pointer is valid only until the next
// mutation of the buffer.
func (b *Buffer) AsCStr() *byte {
	b.buf[b.len] = 0
	return &b.buf[0]
}

// UnsafeString returns the buffer's current content as a string that aliases
// the buffer's storage without copying. Callers must not retain the result
// past the next PushChild/PopTo/Reset — used on the hot path where the
// string is consumed immediately (e.g. handed to a Sink write) before the
// buffer is reused.
func (b *Buffer) UnsafeString() string {
	if b.len == 0 {
		return ""
	}
	return unsafe.String(&b.buf[0], b.len)
}
