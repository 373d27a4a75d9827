package predicate

import "bytes"

// fixedMatcher does plain substring search for FixedString patterns. The
// teacher's boyermoore.go dispatched straight to simd.Index/IndexAll for
// this; that dependency required the experimental simd/archsimd build and
// was dropped, so this reimplements Horspool's variant of Boyer-Moore
// scalar-style: bad-character shift table only (no good-suffix table),
// which is the same tradeoff grep implementations like GNU grep's simple
// matcher make for short patterns typically seen in filename search.
type fixedMatcher struct {
	pattern    []byte
	ignoreCase bool
	shift      [256]int
}

// NewFixedMatcher builds a Matcher that reports whether name contains
// pattern as a substring.
func NewFixedMatcher(pattern string, ignoreCase bool) Matcher {
	p := []byte(pattern)
	if ignoreCase {
		p = bytes.ToLower(p)
	}
	m := &fixedMatcher{pattern: p, ignoreCase: ignoreCase}
	m.buildShiftTable()
	return m
}

func (m *fixedMatcher) buildShiftTable() {
	n := len(m.pattern)
	for i := range m.shift {
		m.shift[i] = n
	}
	if n == 0 {
		return
	}
	for i := 0; i < n-1; i++ {
		m.shift[m.pattern[i]] = n - 1 - i
	}
}

func (m *fixedMatcher) Match(name []byte) bool {
	if len(m.pattern) == 0 {
		return true
	}
	if m.ignoreCase {
		name = bytes.ToLower(name)
	}
	return horspoolIndex(name, m.pattern, &m.shift) >= 0
}

// horspoolIndex returns the index of the first occurrence of pattern in
// text, or -1 if absent, scanning right-to-left within each window and
// skipping ahead using the bad-character shift table.
func horspoolIndex(text, pattern []byte, shift *[256]int) int {
	n, k := len(text), len(pattern)
	if k == 0 {
		return 0
	}
	if n < k {
		return -1
	}
	i := 0
	last := k - 1
	for i <= n-k {
		j := last
		for j >= 0 && text[i+j] == pattern[j] {
			j--
		}
		if j < 0 {
			return i
		}
		i += shift[text[i+last]]
	}
	return -1
}
