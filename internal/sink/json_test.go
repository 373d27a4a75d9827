package sink

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestJSONFormatterBasicEntry(t *testing.T) {
	f := NewJSONFormatter()
	result := Result{Path: "/r/a.txt"}

	got := string(f.Format(nil, result, '\n'))
	lines := strings.Split(strings.TrimSpace(got), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}

	var jm map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &jm); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if jm["path"] != "/r/a.txt" {
		t.Errorf("path = %v, want /r/a.txt", jm["path"])
	}
	if jm["type"] != "file" {
		t.Errorf("type = %v, want file", jm["type"])
	}
}

func TestJSONFormatterDirectoryType(t *testing.T) {
	f := NewJSONFormatter()
	result := Result{Path: "/r/sub", IsDir: true}

	got := string(f.Format(nil, result, '\n'))
	var jm map[string]interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(got)), &jm); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if jm["type"] != "directory" {
		t.Errorf("type = %v, want directory", jm["type"])
	}
}

func TestJSONFormatterOmitsSizeWhenUnresolved(t *testing.T) {
	f := NewJSONFormatter()
	result := Result{Path: "/r/a.txt"}

	got := string(f.Format(nil, result, '\n'))
	if strings.Contains(got, "size_bytes") {
		t.Errorf("expected size_bytes to be omitted when HasSize is false, got %q", got)
	}
}

func TestJSONFormatterIncludesSizeWhenResolved(t *testing.T) {
	f := NewJSONFormatter()
	result := Result{Path: "/r/a.txt", Size: 42, HasSize: true}

	got := string(f.Format(nil, result, '\n'))
	var jm map[string]interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(got)), &jm); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if jm["size_bytes"].(float64) != 42 {
		t.Errorf("size_bytes = %v, want 42", jm["size_bytes"])
	}
}

func TestJSONFormatterIncludesModTimeWhenResolved(t *testing.T) {
	f := NewJSONFormatter()
	mtime := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	result := Result{Path: "/r/a.txt", ModTime: mtime, HasModTime: true}

	got := string(f.Format(nil, result, '\n'))
	var jm map[string]interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(got)), &jm); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if jm["mtime"] != "2026-01-02T03:04:05Z" {
		t.Errorf("mtime = %v, want 2026-01-02T03:04:05Z", jm["mtime"])
	}
}

func TestJSONFormatterOmitsModTimeWhenUnresolved(t *testing.T) {
	f := NewJSONFormatter()
	got := string(f.Format(nil, Result{Path: "/r/a.txt"}, '\n'))
	if strings.Contains(got, "mtime") {
		t.Errorf("expected mtime to be omitted when HasModTime is false, got %q", got)
	}
}

func TestJSONFormatterAppendsSeparator(t *testing.T) {
	f := NewJSONFormatter()
	got := f.Format(nil, Result{Path: "a"}, 0)
	if len(got) == 0 || got[len(got)-1] != 0 {
		t.Errorf("expected trailing null separator byte")
	}
}
