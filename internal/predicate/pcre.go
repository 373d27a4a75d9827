package predicate

import (
	"sync"

	"go.elara.ws/pcre"
)

// pcreMatcher backs patterns RE2 cannot compile (backreferences, lookahead,
// lookbehind), grounded on the teacher's own PCRE escape hatch
// (internal/matcher/pcre.go), which reached for go.elara.ws/pcre for the
// same reason: RE2 trades those features away for its linear-time
// guarantee, and some patterns genuinely need them.
//
// The teacher's own PCREMatcher shares one compiled *pcre.Regexp across
// calls with no pooling and no documented thread-safety guarantee from
// go.elara.ws/pcre for concurrent Match calls on the same instance — safe
// for the teacher, since grep only ever calls it from one file's serial
// match loop. This package's Matcher interface is used concurrently by
// every scheduler worker, so pcreMatcher instead pools one compiled
// *pcre.Regexp per concurrent caller: Match borrows an exclusive instance
// for its duration and returns it afterward, compiling a new one only on a
// pool miss.
type pcreMatcher struct {
	pool sync.Pool
}

// NewPCREMatcher compiles pattern with the PCRE engine.
func NewPCREMatcher(pattern string, ignoreCase bool) (Matcher, error) {
	var opts pcre.CompileOption
	if ignoreCase {
		opts |= pcre.Caseless
	}
	// Compile once up front so a bad pattern is reported here rather than
	// on a worker's first match.
	re, err := pcre.CompileOpts(pattern, opts)
	if err != nil {
		return nil, err
	}
	m := &pcreMatcher{}
	m.pool.New = func() any {
		re, err := pcre.CompileOpts(pattern, opts)
		if err != nil {
			// pattern already compiled successfully above with the same
			// options; a later compile of it cannot fail.
			panic(err)
		}
		return re
	}
	m.pool.Put(re)
	return m, nil
}

func (m *pcreMatcher) Match(name []byte) bool {
	re := m.pool.Get().(*pcre.Regexp)
	defer m.pool.Put(re)
	return re.Match(name)
}
