// Package scheduler implements the work-stealing parallel traversal
// engine: a pool of workers, each with a local LIFO deque of pending
// directories, backed by a shared FIFO injector and terminating when a
// global in-flight counter reaches zero and every deque is empty.
//
// Grounded on original_source/src/walk/finder.rs's use of
// crossbeam_deque::{Injector, Worker, Stealer} — reimplemented with
// mutex-guarded slices (deque.go, injector.go) since the pack carries no
// lock-free deque library — and on the teacher's own
// internal/scheduler.Scheduler for the surrounding worker-pool shape
// (fixed thread count, atomic sequencing, a WaitGroup joining completion).
//
// A worker that finds no task anywhere blocks on a sync.Cond
// (Scheduler.waitForWork) instead of spinning, the same idle-wait idiom as
// the teacher's parallelWalker.mu/cond in internal/walker/walker.go; every
// push and every in-flight transition calls Scheduler.wake to broadcast.
//
// When config.Gitignore is set, each task additionally carries an
// internal/ignorefile.Stack: processDir pushes the directory's own layer
// before iterating, and a child directory's task gets a Clone of that
// stack, so two sibling subtrees never share a mutable stack across
// goroutines.
package scheduler

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"github.com/dl/findcore/internal/config"
	"github.com/dl/findcore/internal/direntry"
	"github.com/dl/findcore/internal/dirstream"
	"github.com/dl/findcore/internal/filter"
	"github.com/dl/findcore/internal/ignorefile"
	"github.com/dl/findcore/internal/metadata"
	"github.com/dl/findcore/internal/pathbuf"
	"github.com/dl/findcore/internal/sink"
	"github.com/dl/findcore/internal/visited"
)

// ErrorHandler is invoked for a per-entry error (OpenFailed, ReadFailed,
// StatFailed) so the caller can decide whether to surface it, matching
// spec.md's show_errors knob without the scheduler importing a logger.
type ErrorHandler func(err error)

// Scheduler owns the worker pool and shared traversal state for one run.
type Scheduler struct {
	cfg       *config.Config
	pipeline  *filter.Pipeline
	sink      *sink.Sink
	onError   ErrorHandler
	dirOpts   dirstream.Options

	injector  *injector
	deques    []*localDeque
	inFlight   atomic.Int64
	cancelled  atomic.Bool
	rootFailed atomic.Bool
	remaining  atomic.Int64 // max_results countdown; unused (<=0) when unset

	// mu/cond back the idle-wait: a worker that finds no work anywhere
	// blocks on cond.Wait() instead of spinning, mirroring the teacher's
	// parallelWalker.mu/cond pair (internal/walker/walker.go). Every push
	// to the injector or a local deque, and every in-flight transition,
	// broadcasts to wake blocked workers.
	mu   sync.Mutex
	cond *sync.Cond

	visitedSet *visited.Set
}

// New builds a Scheduler for one traversal run.
func New(cfg *config.Config, pipeline *filter.Pipeline, s *sink.Sink, onError ErrorHandler) *Scheduler {
	sch := &Scheduler{
		cfg:      cfg,
		pipeline: pipeline,
		sink:     s,
		onError:  onError,
		dirOpts: dirstream.Options{
			BufferSize:                  dirstream.DefaultBufferSize,
			DisableShortReadTermination: cfg.DisableShortReadTerminate,
		},
		injector: newInjector(),
	}
	sch.cond = sync.NewCond(&sch.mu)
	if cfg.FollowSymlinks {
		sch.visitedSet = visited.New()
	}
	if cfg.MaxResults != nil {
		sch.remaining.Store(int64(*cfg.MaxResults))
	} else {
		sch.remaining.Store(-1)
	}
	return sch
}

// Run traverses every configured root path to completion.
func (s *Scheduler) Run() {
	n := s.cfg.Threads
	if n <= 0 {
		n = 1
	}
	s.deques = make([]*localDeque, n)
	for i := range s.deques {
		s.deques[i] = newLocalDeque()
	}

	if s.cfg.SameFilesystem && len(s.cfg.RootPaths) > 0 {
		if dev, err := rootDevice(s.cfg.RootPaths[0]); err == nil {
			s.pipeline.SetRootDevice(dev)
		}
	}

	for _, root := range s.cfg.RootPaths {
		s.inFlight.Add(1)
		t := task{path: root, depth: -1, isRoot: true}
		if s.cfg.Gitignore {
			t.ignore = ignorefile.NewStack()
		}
		s.injector.Push(t)
	}
	s.wake()

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			s.workerLoop(id)
		}(i)
	}
	wg.Wait()
}

func (s *Scheduler) workerLoop(id int) {
	local := s.deques[id]

	// Each worker owns its own batch resolver rather than sharing one ring
	// across goroutines, since io_uring submission isn't safe for
	// concurrent callers without its own locking. Absent on non-Linux
	// builds or if ring setup fails; processDir falls back to per-entry
	// stat in either case.
	var batch *metadata.BatchResolver
	if s.cfg.BatchStat && s.pipeline.NeedsMetadata() {
		if r, err := metadata.NewBatchResolver(64); err == nil {
			batch = r
			defer batch.Close()
		}
	}

	for {
		if s.cancelled.Load() {
			return
		}
		t, ok := local.Pop()
		if !ok {
			t, ok = s.findTask(id)
		}
		if !ok {
			if s.inFlight.Load() == 0 {
				return
			}
			s.waitForWork()
			continue
		}
		s.processDir(t, local, batch)
	}
}

// wake broadcasts to every worker blocked in waitForWork, called whenever
// new work becomes available (a push to the injector or a local deque) or
// the run may be finishing (an in-flight decrement or cancellation).
func (s *Scheduler) wake() {
	s.mu.Lock()
	s.cond.Broadcast()
	s.mu.Unlock()
}

// waitForWork blocks the calling worker until wake is called, mirroring
// the teacher's parallelWalker.dequeue's cond.Wait() loop: a worker that
// just failed to find any task (its own deque empty, injector empty, every
// other deque empty) sleeps here instead of hot-spinning across every
// worker's deque, and is woken by the next push or in-flight transition.
func (s *Scheduler) waitForWork() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelled.Load() || s.inFlight.Load() == 0 {
		return
	}
	s.cond.Wait()
}

// findTask implements the same fallback order as the original's find_task:
// try the injector first, then steal from every other worker's deque.
func (s *Scheduler) findTask(id int) (task, bool) {
	if t, ok := s.injector.Steal(); ok {
		return t, true
	}
	for i, d := range s.deques {
		if i == id {
			continue
		}
		if t, ok := d.Steal(); ok {
			return t, true
		}
	}
	return task{}, false
}

func (s *Scheduler) processDir(t task, local *localDeque, batch *metadata.BatchResolver) {
	defer func() {
		s.inFlight.Add(-1)
		s.wake()
	}()

	buf, err := pathbuf.New([]byte(t.path))
	if err != nil {
		s.reportError(err)
		if t.isRoot {
			s.rootFailed.Store(true)
		}
		return
	}

	if t.ignore != nil {
		t.ignore.Push(t.path)
	}

	it, err := dirstream.Open(t.path, buf, t.depth, s.dirOpts)
	if err != nil {
		s.reportError(&dirstream.OpenError{Path: t.path, Err: err})
		if t.isRoot {
			s.rootFailed.Store(true)
		}
		return
	}
	defer it.Close()

	var entries []direntry.Entry
	for it.Next() {
		if s.cancelled.Load() {
			return
		}
		entries = append(entries, it.Entry())
	}
	if err := it.Err(); err != nil {
		s.reportError(&dirstream.ReadError{Path: t.path, Err: err})
	}

	if batch != nil && len(entries) > 0 {
		paths := make([]string, len(entries))
		for i := range entries {
			paths[i] = entries[i].FullPath()
		}
		infos, errs := batch.Resolve(paths, s.cfg.FollowSymlinks)
		for i := range entries {
			if errs[i] == nil {
				entries[i].SetMetadata(infos[i].ToStatT())
			}
		}
	}

	for i := range entries {
		if s.cancelled.Load() {
			return
		}
		s.handleEntry(&entries[i], local, t.ignore)
	}
}

func (s *Scheduler) handleEntry(entry *direntry.Entry, local *localDeque, ignore *ignorefile.Stack) {
	if ignore != nil && ignore.IsIgnored(entry.FullPath(), entry.Type() == direntry.Directory) {
		return
	}

	decision := s.pipeline.Evaluate(entry, s.cfg.FollowSymlinks)

	if decision.Descend && entry.Type() == direntry.Symlink && s.cfg.FollowSymlinks {
		if !s.shouldDescendSymlink(entry) {
			decision.Descend = false
		}
	}

	if decision.Emit {
		if !s.consumeResultBudget() {
			s.cancelled.Store(true)
			s.wake()
			return
		}
		st, _ := entry.CachedMetadata()
		s.sink.Emit(sink.FromEntry(entry, st))
	}

	if decision.Descend {
		s.inFlight.Add(1)
		next := task{path: entry.FullPath(), depth: entry.Depth()}
		if ignore != nil {
			next.ignore = ignore.Clone()
		}
		local.Push(next)
		s.wake()
	}
}

// shouldDescendSymlink resolves the link target's (device, inode) and
// consults the VisitedSet to guarantee termination on a cyclic link graph.
func (s *Scheduler) shouldDescendSymlink(entry *direntry.Entry) bool {
	st, err := entry.EnsureMetadata(true)
	if err != nil {
		s.reportError(err)
		return false
	}
	if direntry.FromStatMode(st.Mode) != direntry.Directory {
		return false
	}
	key := visited.Key{Dev: uint64(st.Dev), Ino: st.Ino}
	return s.visitedSet.InsertIfNew(key)
}

func (s *Scheduler) consumeResultBudget() bool {
	remaining := s.remaining.Load()
	if remaining < 0 {
		return true
	}
	for {
		if remaining <= 0 {
			return false
		}
		if s.remaining.CompareAndSwap(remaining, remaining-1) {
			return true
		}
		remaining = s.remaining.Load()
	}
}

func (s *Scheduler) reportError(err error) {
	if s.onError != nil {
		s.onError(err)
	}
}

// rootDevice stats path to seed the same_filesystem check.
func rootDevice(path string) (uint64, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return 0, err
	}
	return uint64(st.Dev), nil
}

// RootDevice exposes rootDevice outside the package. Run already primes
// the pipeline's SetRootDevice from the first root path itself.
func RootDevice(path string) (uint64, error) { return rootDevice(path) }

// RootOpenFailed reports whether one of the caller's original search roots
// (as opposed to a subdirectory discovered while descending) could not be
// opened. spec.md §7 recovers subtree errors locally and keeps traversing,
// but a root the caller named explicitly and that never opens at all is the
// one case cmd/fc treats as an unrecoverable run, distinct from ordinary
// per-entry errors reported through ErrorHandler.
func (s *Scheduler) RootOpenFailed() bool { return s.rootFailed.Load() }
