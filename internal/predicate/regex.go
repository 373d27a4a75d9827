package predicate

import (
	"bytes"
	"regexp"
)

// regexMatcher wraps stdlib RE2 with the teacher's literal-prefilter trick:
// when a required literal substring can be extracted from the pattern's
// AST, a cheap substring scan rejects the overwhelming majority of
// non-matching names before the regex engine ever runs, the same
// short-circuit internal/matcher/regex.go used ahead of full-line regex
// evaluation.
type regexMatcher struct {
	re       *regexp.Regexp
	prefix   literalInfo
	hasPre   bool
	fold     bool
}

// NewRegexMatcher compiles pattern with Go's RE2 engine.
func NewRegexMatcher(pattern string, ignoreCase bool) (Matcher, error) {
	src := pattern
	if ignoreCase {
		src = "(?i)" + src
	}
	re, err := regexp.Compile(src)
	if err != nil {
		return nil, err
	}
	pre, ok := extractLiteral(pattern, ignoreCase)
	return &regexMatcher{re: re, prefix: pre, hasPre: ok, fold: ignoreCase}, nil
}

func (m *regexMatcher) Match(name []byte) bool {
	if m.hasPre {
		haystack := name
		if m.prefix.ignoreCase {
			haystack = bytes.ToLower(name)
		}
		if !bytes.Contains(haystack, []byte(m.prefix.literal)) {
			return false
		}
	}
	return m.re.Match(name)
}
