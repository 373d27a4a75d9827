//go:build !linux && !darwin && !freebsd

package dirstream

import (
	"io"
	"os"

	"github.com/dl/findcore/internal/direntry"
	"github.com/dl/findcore/internal/pathbuf"
)

// fallbackIterator wraps the portable os.File directory-stream API
// (equivalent to libc's opendir/readdir) for platforms with no dedicated
// fast path (OpenBSD, NetBSD, Illumos, Solaris and anything else Go's
// unix package doesn't special-case here).
type fallbackIterator struct {
	f     *os.File
	dir   *pathbuf.Buffer
	depth int
	names []string
	pos   int
	state State
	err   error
	cur   direntry.Entry
}

const fallbackChunk = 512

func OpenFallback(dirPath string, dir *pathbuf.Buffer, depth int, opts Options) (Iterator, error) {
	f, err := os.Open(dirPath)
	if err != nil {
		return nil, &OpenError{Path: dirPath, Err: err}
	}
	return &fallbackIterator{f: f, dir: dir, depth: depth, state: Unread}, nil
}

func Open(dirPath string, dir *pathbuf.Buffer, depth int, opts Options) (Iterator, error) {
	return OpenFallback(dirPath, dir, depth, opts)
}

func (it *fallbackIterator) fillBuffer() bool {
	if it.state == Exhausted {
		return false
	}
	names, err := it.f.Readdirnames(fallbackChunk)
	if err != nil && len(names) == 0 {
		if err != io.EOF {
			it.err = &ReadError{Path: it.dir.UnsafeString(), Err: err}
		}
		it.state = Exhausted
		return false
	}
	it.names = names
	it.pos = 0
	if len(names) < fallbackChunk {
		// last chunk; stream will exhaust on the following call
	}
	it.state = HasBuffer
	return len(it.names) > 0
}

func (it *fallbackIterator) Next() bool {
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

func (it *fallbackIterator) Entry() direntry.Entry { return it.cur }
func (it *fallbackIterator) Err() error            { return it.err }
func (it *fallbackIterator) State() State          { return it.state }

func (it *fallbackIterator) Close() error {
	if it.f == nil {
		return nil
	}
	err := it.f.Close()
	it.f = nil
	return err
}
