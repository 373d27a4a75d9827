// Package predicate implements the name-matcher external collaborator
// spec.md §6 describes: a boolean matches(bytes) -> bool operation over
// three pattern kinds (Regex, Glob→Regex, FixedString), shared by reference
// across scheduler workers without lock contention.
//
// Grounded on the teacher's internal/matcher package, which solved the same
// "one predicate, several engines, chosen by a factory" problem for
// line-oriented content search; this package strips the line/context
// machinery (spec.md's core never inspects file contents) and keeps the
// engine selection strategy and the individual algorithms.
package predicate

import "fmt"

// Matcher tests a filename or full path (depending on config.MatchTarget)
// for a match. Implementations must be safe for concurrent use by multiple
// goroutines without external locking, per spec.md §5.
type Matcher interface {
	Match(name []byte) bool
}

// Kind selects which engine backs a Matcher, mirroring spec.md §6's
// pattern_kind enum.
type Kind int

const (
	Regex Kind = iota
	Glob
	FixedString
)

// New builds a Matcher for pattern per kind and case sensitivity. Glob
// patterns are translated to a regex first (internal/glob), then handed to
// the same regex engine used for Kind == Regex.
func New(kind Kind, pattern string, caseSensitive bool) (Matcher, error) {
	ignoreCase := !caseSensitive
	switch kind {
	case FixedString:
		return NewFixedMatcher(pattern, ignoreCase), nil
	case Glob, Regex:
		re := pattern
		if kind == Glob {
			translated, err := globToRegex(pattern)
			if err != nil {
				return nil, fmt.Errorf("predicate: invalid glob %q: %w", pattern, err)
			}
			re = translated
		}
		m, err := NewRegexMatcher(re, ignoreCase)
		if err == nil {
			return m, nil
		}
		// RE2 (Go's regexp) rejects backreferences and lookaround, which
		// PCRE-flavoured patterns sometimes use. Fall back to the PCRE
		// engine rather than failing outright, mirroring the teacher's own
		// explicit -P/PCRE escape hatch (internal/matcher/factory.go),
		// just entered automatically instead of by an extra flag.
		if pm, pcreErr := NewPCREMatcher(re, ignoreCase); pcreErr == nil {
			return pm, nil
		}
		return nil, fmt.Errorf("predicate: invalid pattern %q: %w", pattern, err)
	default:
		return nil, fmt.Errorf("predicate: unknown pattern kind %v", kind)
	}
}

// globToRegex is filled in by internal/predicate's glob translator hookup;
// see glob_bridge.go. Kept as a package-level func var so predicate.go and
// glob_bridge.go can live in separate files without an import cycle back
// into internal/glob (predicate depends on glob, not the reverse).
var globToRegex func(pattern string) (string, error)
