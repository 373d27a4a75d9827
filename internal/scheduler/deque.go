package scheduler

import (
	"sync"

	"github.com/dl/findcore/internal/ignorefile"
)

// task is one unit of scheduler work: a directory to open and walk.
type task struct {
	path   string
	depth  int
	ignore *ignorefile.Stack // nil unless config.Gitignore is set
	isRoot bool              // one of the caller's original search roots, not a discovered subdirectory
}

// localDeque is a per-worker LIFO deque of directories to process, with a
// steal operation that other workers use to take work from the opposite
// end. Grounded on crossbeam_deque::Worker/Stealer from
// original_source/src/walk/finder.rs; reimplemented with a mutex-guarded
// slice since the pack carries no lock-free deque library. Pop operates
// LIFO (depth-first, good cache locality for the owning worker); Steal
// operates FIFO (oldest work first, favouring larger stolen batches).
type localDeque struct {
	mu    sync.Mutex
	items []task
}

func newLocalDeque() *localDeque {
	return &localDeque{}
}

// Push adds a task to the tail, the owning worker's push end.
func (d *localDeque) Push(t task) {
	d.mu.Lock()
	d.items = append(d.items, t)
	d.mu.Unlock()
}

// Pop removes and returns the most recently pushed task (LIFO), for the
// owning worker only.
func (d *localDeque) Pop() (task, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := len(d.items)
	if n == 0 {
		return task{}, false
	}
	t := d.items[n-1]
	d.items = d.items[:n-1]
	return t, true
}

// Steal removes and returns the oldest task (FIFO), for use by any other
// worker whose own deque and the injector are both empty.
func (d *localDeque) Steal() (task, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.items) == 0 {
		return task{}, false
	}
	t := d.items[0]
	d.items = d.items[1:]
	return t, true
}

func (d *localDeque) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.items)
}
