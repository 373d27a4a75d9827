//go:build darwin || freebsd

package dirstream

import (
	"golang.org/x/sys/unix"

	"github.com/dl/findcore/internal/direntry"
	"github.com/dl/findcore/internal/pathbuf"
)

// bsdIterator drives the position-tracking directory-entries call available
// on macOS and FreeBSD via golang.org/x/sys/unix's ReadDirent/ParseDirent,
// which already exposes each record's name length directly (BSD dirents
// carry d_namlen), so no SWAR trick is needed on these platforms per
// spec.md §4.3.
type bsdIterator struct {
	fd     int
	opts   Options
	dir    *pathbuf.Buffer
	depth  int
	kbuf   []byte
	names  []string
	types  []uint8
	pos    int
	state  State
	err    error
	cur    direntry.Entry
	shortRead bool
}

func OpenBSD(dirPath string, dir *pathbuf.Buffer, depth int, opts Options) (Iterator, error) {
	fd, err := unix.Open(dirPath, unix.O_RDONLY|unix.O_DIRECTORY|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, &OpenError{Path: dirPath, Err: err}
	}
	return &bsdIterator{
		fd:    fd,
		opts:  opts,
		dir:   dir,
		depth: depth,
		kbuf:  make([]byte, opts.bufferSize()),
		state: Unread,
	}, nil
}

func Open(dirPath string, dir *pathbuf.Buffer, depth int, opts Options) (Iterator, error) {
	return OpenBSD(dirPath, dir, depth, opts)
}

func (it *bsdIterator) fillBuffer() bool {
	if it.state == Exhausted {
		return false
	}
	if it.shortRead {
		it.state = Exhausted
		return false
	}

	n, err := unix.ReadDirent(it.fd, it.kbuf)
	if err != nil {
		it.err = &ReadError{Path: it.dir.UnsafeString(), Err: err}
		it.state = Exhausted
		return false
	}
	if n == 0 {
		it.state = Exhausted
		return false
	}
	it.shortRead = n < len(it.kbuf)

	// ParseDirent gives us names directly; d_type isn't exposed uniformly
	// across BSD variants via this helper, so entries start as Unknown and
	// resolve their type lazily via lstat on first use (still zero extra
	// syscalls for callers that never need the type, e.g. a pure name
	// search with types unfiltered).
	_, _, names := unix.ParseDirent(it.kbuf[:n], -1, it.names[:0])
	it.names = names
	it.pos = 0
	it.state = HasBuffer
	return len(it.names) > 0 || it.fillBuffer()
}

func (it *bsdIterator) Next() bool {
	for {
		if it.state == Exhausted {
			return false
		}
		if it.state == Unread || it.pos >= len(it.names) {
			if !it.fillBuffer() {
				return false
			}
			continue
		}

		name := it.names[it.pos]
		it.pos++
		if name == "." || name == ".." {
			continue
		}

		prev, perr := it.dir.PushChild([]byte(name))
		if perr != nil {
			it.dir.PopTo(prev)
			continue
		}
		fullPath := it.dir.String()
		it.dir.PopTo(prev)

		it.cur = direntry.New(fullPath, len(fullPath)-len(name), it.depth+1, direntry.Unknown, 0)
		return true
	}
}

func (it *bsdIterator) Entry() direntry.Entry { return it.cur }
func (it *bsdIterator) Err() error            { return it.err }
func (it *bsdIterator) State() State          { return it.state }

func (it *bsdIterator) Close() error {
	if it.fd < 0 {
		return nil
	}
	err := unix.Close(it.fd)
	it.fd = -1
	return err
}
