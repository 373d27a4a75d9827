// Package direntry defines the DirEntry record produced while walking a
// directory tree: the entry's path, its filename, its file-type tag, its
// depth, and lazily-resolved stat metadata.
package direntry

import (
	"errors"
	"strconv"

	"golang.org/x/sys/unix"
)

// FileType tags an entry the way the kernel directory record (or a stat
// call) classifies it. Unknown means the directory record did not carry a
// type byte and a stat call is required to resolve it.
type FileType uint8

const (
	Unknown FileType = iota
	Regular
	Directory
	Symlink
	Block
	Char
	Fifo
	Socket
)

func (t FileType) String() string {
	switch t {
	case Regular:
		return "file"
	case Directory:
		return "directory"
	case Symlink:
		return "symlink"
	case Block:
		return "block"
	case Char:
		return "char"
	case Fifo:
		return "fifo"
	case Socket:
		return "socket"
	default:
		return "unknown"
	}
}

// FromDType converts the kernel's d_type byte (Linux dirent64, or a value
// synthesized by a BSD/portable iterator) into a FileType.
func FromDType(dtype uint8) FileType {
	switch dtype {
	case dtReg:
		return Regular
	case dtDir:
		return Directory
	case dtLnk:
		return Symlink
	case dtBlk:
		return Block
	case dtChr:
		return Char
	case dtFifo:
		return Fifo
	case dtSock:
		return Socket
	default:
		return Unknown
	}
}

// FromStatMode converts a POSIX st_mode value into a FileType.
func FromStatMode(mode uint32) FileType {
	switch mode & unix.S_IFMT {
	case unix.S_IFREG:
		return Regular
	case unix.S_IFDIR:
		return Directory
	case unix.S_IFLNK:
		return Symlink
	case unix.S_IFBLK:
		return Block
	case unix.S_IFCHR:
		return Char
	case unix.S_IFIFO:
		return Fifo
	case unix.S_IFSOCK:
		return Socket
	default:
		return Unknown
	}
}

// Kernel d_type constants shared by every platform's directory-record layout.
const (
	dtUnknown = 0
	dtFifo    = 1
	dtChr     = 2
	dtDir     = 4
	dtBlk     = 6
	dtReg     = 8
	dtLnk     = 10
	dtSock    = 12
)

// Entry is one filesystem entry discovered during traversal.
//
// path is owned and holds the full path; filenameOffset marks where the
// filename begins within it. metadata is populated lazily, once, the first
// time a filter or caller demands it.
type Entry struct {
	path           string
	filenameOffset int
	depth          int
	fileType       FileType
	inode          uint64
	metadata       *unix.Stat_t
	metaErr        error
}

// New constructs an Entry. filenameOffset must point at the first byte of
// the filename within path (0 for the root itself).
func New(path string, filenameOffset int, depth int, fileType FileType, inode uint64) Entry {
	return Entry{
		path:           path,
		filenameOffset: filenameOffset,
		depth:          depth,
		fileType:       fileType,
		inode:          inode,
	}
}

// FullPath returns the entry's complete path.
func (e *Entry) FullPath() string { return e.path }

// FileName returns the filename portion of the path (no separators).
func (e *Entry) FileName() string { return e.path[e.filenameOffset:] }

// Depth reports how many path separators separate this entry from the
// search root (the root's direct children are at depth 0).
func (e *Entry) Depth() int { return e.depth }

// Inode returns the 64-bit inode number reported by the directory read.
func (e *Entry) Inode() uint64 { return e.inode }

// Type returns the entry's file-type tag, without resolving metadata even
// if the tag is Unknown. Use IsDir/EnsureMetadata to force resolution.
func (e *Entry) Type() FileType { return e.fileType }

// SetType overrides the cached type tag. EnsureMetadata and SetMetadata
// fill in an Unknown tag themselves and do not go through SetType.
func (e *Entry) SetType(t FileType) { e.fileType = t }

var errNoDot = errors.New("direntry: no extension")

// Extension returns the filename bytes after the last '.', or "" if there is
// none. A filename that starts with '.' and has no further '.' has no
// extension (".gitignore" -> ""), matching the deliberate rule spec.md locks
// down in preference to a naive suffix regex.
func (e *Entry) Extension() string {
	name := e.FileName()
	dot := lastIndexByte(name, '.')
	if dot <= 0 || dot == len(name)-1 {
		return ""
	}
	return name[dot+1:]
}

func lastIndexByte(s string, c byte) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == c {
			return i
		}
	}
	return -1
}

// IsDir reports whether the entry is a directory, resolving metadata via
// lstat/stat if the type tag is Unknown, or — when followSymlinks is set —
// if the type tag is Symlink, since a symlink's own d_type/lstat mode is
// never Directory even when its target is one; only a stat of the target
// can tell. followSymlinks=false never resolves a Symlink tag: the entry
// itself is not a directory regardless of what it points to.
func (e *Entry) IsDir(followSymlinks bool) bool {
	if e.fileType == Unknown || (followSymlinks && e.fileType == Symlink) {
		st, err := e.EnsureMetadata(followSymlinks)
		if err != nil {
			return false
		}
		return FromStatMode(st.Mode) == Directory
	}
	return e.fileType == Directory
}

// EnsureMetadata triggers a stat (follow) or lstat (no-follow) call the
// first time it is invoked and caches the result; subsequent calls return
// the cached value without a syscall. followSymlinks selects lstat vs stat,
// matching spec.md's DirEntry.ensure_metadata contract.
func (e *Entry) EnsureMetadata(followSymlinks bool) (*unix.Stat_t, error) {
	if e.metadata != nil || e.metaErr != nil {
		return e.metadata, e.metaErr
	}
	var st unix.Stat_t
	var err error
	if followSymlinks {
		err = unix.Stat(e.path, &st)
	} else {
		err = unix.Lstat(e.path, &st)
	}
	if err != nil {
		e.metaErr = &StatError{Path: e.path, Err: err}
		return nil, e.metaErr
	}
	e.metadata = &st
	if e.fileType == Unknown {
		e.fileType = FromStatMode(st.Mode)
	}
	return e.metadata, nil
}

// CachedMetadata returns previously resolved metadata without triggering a
// stat call; ok is false if metadata has not yet been resolved.
func (e *Entry) CachedMetadata() (st *unix.Stat_t, ok bool) {
	return e.metadata, e.metadata != nil
}

// SetMetadata seeds the metadata cache from an externally resolved stat
// result — e.g. a batched io_uring statx call the scheduler ran ahead of
// the filter pipeline — so EnsureMetadata's first call finds a cache hit
// instead of issuing its own syscall. A no-op once metadata is already
// resolved, so a batch result can never overwrite a fresher lstat/stat.
func (e *Entry) SetMetadata(st *unix.Stat_t) {
	if e.metadata != nil || e.metaErr != nil {
		return
	}
	e.metadata = st
	if e.fileType == Unknown {
		e.fileType = FromStatMode(st.Mode)
	}
}

// StatError wraps a failed on-demand metadata call with the path it
// concerned, matching the StatFailed{path, errno} taxonomy entry.
type StatError struct {
	Path string
	Err  error
}

func (e *StatError) Error() string {
	return "stat " + e.Path + ": " + e.Err.Error()
}
func (e *StatError) Unwrap() error { return e.Err }

// PathTooLongError is returned when composing a child path would exceed the
// host path limit.
type PathTooLongError struct {
	Path string
}

func (e *PathTooLongError) Error() string {
	return "path too long: " + strconv.Quote(e.Path) + "..."
}
