//go:build linux

package dirstream

import (
	"golang.org/x/sys/unix"

	"github.com/dl/findcore/internal/direntry"
	"github.com/dl/findcore/internal/pathbuf"
)

// linuxIterator drives getdents64 directly, bypassing the stdlib's
// per-entry stat. Grounded on the teacher's walker.parallelWalker.processDir
// (internal/scheduler no longer does this — it lived in the walker package),
// restructured into the explicit Unread/HasBuffer/Exhausted state machine
// spec.md §4.8 requires and augmented with the short-read termination
// optimisation and its disable switch (spec.md §9).
type linuxIterator struct {
	fd                int
	opts              Options
	disableShortRead  bool // opts.DisableShortReadTermination || ShortReadUnsafe(dirPath)
	dir               *pathbuf.Buffer
	depth             int
	kbuf              []byte
	parsed            []direntry.ParsedRecord
	pos               int
	off               int
	n                 int
	state             State
	err               error
	cur               direntry.Entry
	shortRead         bool // last read returned fewer bytes than requested
}

// OpenLinux opens dirPath for enumeration. dir is the caller's reusable path
// buffer, already positioned to hold dirPath's bytes; depth is dirPath's
// depth relative to the search root. Per spec.md §9, a directory living on
// a filesystem type ShortReadUnsafe flags (CIFS, NFS, FUSE) has the
// short-read termination optimisation disabled for it even when the
// caller's Options leave it enabled everywhere else.
func OpenLinux(dirPath string, dir *pathbuf.Buffer, depth int, opts Options) (Iterator, error) {
	fd, err := unix.Open(dirPath, unix.O_RDONLY|unix.O_DIRECTORY|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, &OpenError{Path: dirPath, Err: err}
	}
	return &linuxIterator{
		fd:               fd,
		opts:             opts,
		disableShortRead: opts.DisableShortReadTermination || ShortReadUnsafe(dirPath),
		dir:              dir,
		depth:            depth,
		kbuf:             make([]byte, opts.bufferSize()),
		state:            Unread,
	}, nil
}

// Open dispatches to the platform-appropriate iterator. On Linux this is
// OpenLinux; other platforms shadow this function from their own file.
func Open(dirPath string, dir *pathbuf.Buffer, depth int, opts Options) (Iterator, error) {
	return OpenLinux(dirPath, dir, depth, opts)
}

func (it *linuxIterator) fillBuffer() bool {
	if it.state == Exhausted {
		return false
	}
	// Short-read termination: the previous read returned fewer bytes than
	// the buffer could hold, and the caller has not disabled the
	// optimisation (e.g. because the filesystem is a known-broken network
	// mount) — treat that as end of stream without another syscall.
	if it.shortRead && !it.disableShortRead {
		it.state = Exhausted
		return false
	}

	n, err := unix.Getdents(it.fd, it.kbuf)
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
	it.parsed = direntry.ParseGetdents64(it.kbuf, n, it.parsed)
	it.pos = 0
	it.state = HasBuffer
	return len(it.parsed) > 0 || it.fillBuffer()
}

func (it *linuxIterator) Next() bool {
	for {
		if it.state == Exhausted {
			return false
		}
		if it.state == Unread || it.pos >= len(it.parsed) {
			if !it.fillBuffer() {
				return false
			}
			continue
		}

		rec := it.parsed[it.pos]
		it.pos++

		prev, perr := it.dir.PushChild([]byte(rec.Name))
		if perr != nil {
			// Path too long for this one entry: skip it, keep iterating
			// siblings (per-entry errors are locally recovered).
			it.dir.PopTo(prev)
			continue
		}
		fullPath := it.dir.String()
		it.dir.PopTo(prev)

		it.cur = direntry.New(fullPath, len(fullPath)-len(rec.Name), it.depth+1, rec.Type, rec.Inode)
		return true
	}
}

func (it *linuxIterator) Entry() direntry.Entry { return it.cur }
func (it *linuxIterator) Err() error            { return it.err }
func (it *linuxIterator) State() State          { return it.state }

func (it *linuxIterator) Close() error {
	if it.fd < 0 {
		return nil
	}
	err := unix.Close(it.fd)
	it.fd = -1
	return err
}
