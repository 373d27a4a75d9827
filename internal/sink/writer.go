// Package sink implements the two output modes spec.md §4.7 describes:
// a streaming writer that decorates and flushes matches as they arrive,
// and a collecting mode that buffers them for a final sort. Both share the
// teacher's writev-based Writer so a full path plus separator is written in
// one atomic syscall per flush.
package sink

import (
	"os"
	"sort"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/dl/findcore/internal/config"
)

// Writer writes formatted output to stdout using writev, so a flushed
// batch is never interleaved with another writer's flush.
type Writer struct {
	fd int
}

// NewWriter creates a Writer that writes to stdout.
func NewWriter() *Writer {
	return &Writer{fd: int(os.Stdout.Fd())}
}

// Write writes data to stdout via Writev, retrying on a short write.
func (w *Writer) Write(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	for len(data) > 0 {
		n, err := unix.Writev(w.fd, [][]byte{data})
		if err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}

// Sink is the thread-safe output collector every scheduler worker writes
// matches through. In streaming mode each Emit call formats and flushes
// immediately, under a mutex so writes never interleave. In collecting mode
// (config.Sort) Emit buffers and Finish sorts and flushes once traversal
// completes.
type Sink struct {
	mu        sync.Mutex
	writer    *Writer
	formatter Formatter
	separator byte
	collect   bool
	buffered  []Result
	onMatch   func(Result)
	count     int
}

// New builds a Sink from a validated config. onMatch, if non-nil, is called
// once per emitted entry before formatting — the hook the supplemental
// --exec/--exec-batch feature uses to run a companion command per match,
// grounded on the teacher's OrderedWriter.WriteOrdered onMatch callback.
func New(cfg *config.Config, formatter Formatter, onMatch func(Result)) *Sink {
	return &Sink{
		writer:    NewWriter(),
		formatter: formatter,
		separator: byte(cfg.OutputSeparator),
		collect:   cfg.Sort,
		onMatch:   onMatch,
	}
}

// Emit records one matched entry. Safe for concurrent use by scheduler
// workers.
func (s *Sink) Emit(r Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count++
	if s.onMatch != nil {
		s.onMatch(r)
	}
	if s.collect {
		s.buffered = append(s.buffered, r)
		return
	}
	buf := s.formatter.Format(nil, r, s.separator)
	s.writer.Write(buf)
}

// Count returns the number of entries emitted so far.
func (s *Sink) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Finish flushes any buffered (sorted) output. A no-op in streaming mode,
// since every Emit already reached stdout.
func (s *Sink) Finish() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.collect {
		return nil
	}
	sort.Slice(s.buffered, func(i, j int) bool { return s.buffered[i].Path < s.buffered[j].Path })
	var buf []byte
	for _, r := range s.buffered {
		buf = s.formatter.Format(buf, r, s.separator)
	}
	return s.writer.Write(buf)
}
