package predicate

import (
	"sync"
	"testing"
)

func TestFixedMatcherSubstring(t *testing.T) {
	m := NewFixedMatcher("main", false)
	if !m.Match([]byte("main.go")) {
		t.Error("expected match")
	}
	if m.Match([]byte("cli.go")) {
		t.Error("expected no match")
	}
}

func TestFixedMatcherIgnoreCase(t *testing.T) {
	m := NewFixedMatcher("MAIN", true)
	if !m.Match([]byte("main.go")) {
		t.Error("expected case-insensitive match")
	}
}

func TestFixedMatcherEmptyPatternMatchesEverything(t *testing.T) {
	m := NewFixedMatcher("", false)
	if !m.Match([]byte("anything")) {
		t.Error("expected empty pattern to match everything")
	}
}

func TestHorspoolIndexAgreesWithBruteForce(t *testing.T) {
	texts := []string{"", "a", "abcabcabc", "aaaaaaaaaa", "the quick brown fox"}
	patterns := []string{"a", "ab", "abc", "aaaa", "fox", "zzz", "quick"}
	for _, text := range texts {
		for _, pat := range patterns {
			m := NewFixedMatcher(pat, false).(*fixedMatcher)
			got := horspoolIndex([]byte(text), m.pattern, &m.shift) >= 0
			want := bruteContains(text, pat)
			if got != want {
				t.Errorf("text=%q pattern=%q: got %v, want %v", text, pat, got, want)
			}
		}
	}
}

func bruteContains(text, pattern string) bool {
	if len(pattern) == 0 {
		return true
	}
	for i := 0; i+len(pattern) <= len(text); i++ {
		if text[i:i+len(pattern)] == pattern {
			return true
		}
	}
	return false
}

func TestRegexMatcherLiteralPrefilterAgreesWithoutPrefilter(t *testing.T) {
	m, err := NewRegexMatcher(`^config_[0-9]+\.yaml$`, false)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	cases := map[string]bool{
		"config_1.yaml":  true,
		"config_42.yaml": true,
		"config.yaml":    false,
		"other_1.yaml":   false,
	}
	for name, want := range cases {
		if got := m.Match([]byte(name)); got != want {
			t.Errorf("Match(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestRegexMatcherIgnoreCase(t *testing.T) {
	m, err := NewRegexMatcher("readme", true)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !m.Match([]byte("README.md")) {
		t.Error("expected case-insensitive match")
	}
}

func TestNewFactoryGlobFallsThroughToRegex(t *testing.T) {
	m, err := New(Glob, "*.go", true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !m.Match([]byte("main.go")) {
		t.Error("expected main.go to match *.go")
	}
	if m.Match([]byte("main.py")) {
		t.Error("expected main.py to not match *.go")
	}
}

func TestNewFactoryFixedString(t *testing.T) {
	m, err := New(FixedString, "test", true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !m.Match([]byte("mytest.go")) {
		t.Error("expected substring match")
	}
}

func TestExtensionSetSmallVsTrieAgree(t *testing.T) {
	small := NewExtensionSet([]string{"go", "rs"}, true)
	large := NewExtensionSet([]string{"go", "rs", "py", "js", "ts"}, true)

	for _, ext := range []string{"go", "GO", "rs", "py", "cpp"} {
		wantSmall := ext == "go" || ext == "GO" || ext == "rs"
		if got := small.Contains(ext); got != wantSmall {
			t.Errorf("small.Contains(%q) = %v, want %v", ext, got, wantSmall)
		}
	}

	for _, ext := range []string{"go", "js", "ts", "cpp", "gopher"} {
		want := ext == "go" || ext == "js" || ext == "ts"
		if got := large.Contains(ext); got != want {
			t.Errorf("large.Contains(%q) = %v, want %v", ext, got, want)
		}
	}
}

func TestPCREMatcherBackreference(t *testing.T) {
	m, err := NewPCREMatcher(`(\w+)_\1`, false)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !m.Match([]byte("foo_foo")) {
		t.Error("expected backreference match")
	}
	if m.Match([]byte("foo_bar")) {
		t.Error("expected no match")
	}
}

func TestPCREMatcherConcurrentUseAcrossGoroutines(t *testing.T) {
	m, err := NewPCREMatcher(`(\w+)_\1\.txt$`, false)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	var wg sync.WaitGroup
	for g := 0; g < 32; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				if !m.Match([]byte("dup_dup.txt")) {
					t.Error("expected match under concurrent load")
				}
				if m.Match([]byte("dup_other.txt")) {
					t.Error("expected no match under concurrent load")
				}
			}
		}()
	}
	wg.Wait()
}

func TestExtensionSetRequiresWholeStringMatch(t *testing.T) {
	s := NewExtensionSet([]string{"go", "rs", "py"}, true)
	if s.Contains("mango") {
		t.Error("extension set should not match a substring of a longer word")
	}
	if !s.Contains("go") {
		t.Error("expected exact match to succeed")
	}
}
