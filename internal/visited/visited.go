// Package visited implements the VisitedSet used to guarantee termination
// when symlinks are followed: a synchronized set of (device, inode) pairs.
//
// The example pack's only concurrent-map library is dgraph-io/ristretto (via
// marmos91-dnfs), but Ristretto is a probabilistic, evicting cache — wrong
// for an exact-membership cycle guard, since an evicted entry would silently
// let a symlink cycle recur. This package instead uses a fixed number of
// plain maps, each guarded by its own mutex.
package visited

import "sync"

const shardCount = 32

// Key identifies one filesystem object by (device, inode).
type Key struct {
	Dev uint64
	Ino uint64
}

type shard struct {
	mu sync.Mutex
	m  map[Key]struct{}
}

// Set is a sharded concurrent (device, inode) set. The zero value is not
// usable; construct with New.
type Set struct {
	shards [shardCount]shard
}

// New creates an empty VisitedSet.
func New() *Set {
	s := &Set{}
	for i := range s.shards {
		s.shards[i].m = make(map[Key]struct{})
	}
	return s
}

func (s *Set) shardFor(k Key) *shard {
	h := k.Dev*1099511628211 ^ k.Ino
	return &s.shards[h%shardCount]
}

// InsertIfNew inserts k and returns true if it was not already present. A
// caller sees false exactly when another goroutine (or an earlier call from
// the same goroutine) already recorded this (device, inode) pair — the
// signal to skip descending into that directory again.
func (s *Set) InsertIfNew(k Key) bool {
	sh := s.shardFor(k)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if _, ok := sh.m[k]; ok {
		return false
	}
	sh.m[k] = struct{}{}
	return true
}

// Len returns the total number of recorded entries. Intended for tests and
// diagnostics; not on the traversal hot path.
func (s *Set) Len() int {
	n := 0
	for i := range s.shards {
		s.shards[i].mu.Lock()
		n += len(s.shards[i].m)
		s.shards[i].mu.Unlock()
	}
	return n
}
