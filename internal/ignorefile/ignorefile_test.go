package ignorefile

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStackBasicMatching(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("*.log\nbuild/\n!important.log\n"), 0o644)

	s := NewStack()
	s.Push(dir)

	tests := []struct {
		name  string
		path  string
		isDir bool
		want  bool
	}{
		{"matches glob", filepath.Join(dir, "app.log"), false, true},
		{"no match", filepath.Join(dir, "app.txt"), false, false},
		{"dir pattern matches dir", filepath.Join(dir, "build"), true, true},
		{"dir pattern skips file", filepath.Join(dir, "build"), false, false},
		{"negation", filepath.Join(dir, "important.log"), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.IsIgnored(tt.path, tt.isDir); got != tt.want {
				t.Errorf("IsIgnored(%q, isDir=%v) = %v, want %v", tt.path, tt.isDir, got, tt.want)
			}
		})
	}

	s.Pop()
}

func TestStackNestedGitignore(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "sub")
	os.Mkdir(sub, 0o755)

	os.WriteFile(filepath.Join(root, ".gitignore"), []byte("*.tmp\n"), 0o644)
	os.WriteFile(filepath.Join(sub, ".gitignore"), []byte("*.dat\n"), 0o644)

	s := NewStack()
	s.Push(root)
	s.Push(sub)

	if !s.IsIgnored(filepath.Join(root, "test.tmp"), false) {
		t.Error("expected root .gitignore to match *.tmp")
	}
	if !s.IsIgnored(filepath.Join(sub, "test.dat"), false) {
		t.Error("expected sub .gitignore to match *.dat")
	}
	if s.IsIgnored(filepath.Join(sub, "test.txt"), false) {
		t.Error("expected test.txt to not be ignored")
	}

	s.Pop()
	s.Pop()
}

func TestStackNoGitignore(t *testing.T) {
	dir := t.TempDir()
	s := NewStack()
	s.Push(dir)

	if s.IsIgnored(filepath.Join(dir, "anything.txt"), false) {
		t.Error("expected no ignoring when .gitignore doesn't exist")
	}

	s.Pop()
}

func TestCloneIsIndependentOfSubsequentPushes(t *testing.T) {
	root := t.TempDir()
	os.WriteFile(filepath.Join(root, ".gitignore"), []byte("*.tmp\n"), 0o644)

	s := NewStack()
	s.Push(root)
	clone := s.Clone()

	sub := filepath.Join(root, "sub")
	os.Mkdir(sub, 0o755)
	os.WriteFile(filepath.Join(sub, ".gitignore"), []byte("*.dat\n"), 0o644)
	s.Push(sub)

	if clone.IsIgnored(filepath.Join(sub, "x.dat"), false) {
		t.Error("clone taken before Push(sub) must not see the sub layer's rules")
	}
	if !s.IsIgnored(filepath.Join(sub, "x.dat"), false) {
		t.Error("the live stack should see the sub layer's rules after Push")
	}
}
