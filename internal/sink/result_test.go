package sink

import (
	"testing"

	"golang.org/x/sys/unix"

	"github.com/dl/findcore/internal/direntry"
)

func TestFromEntryWithoutMetadataOmitsSizeAndModTime(t *testing.T) {
	e := direntry.New("/r/a.txt", 3, 0, direntry.Regular, 1)
	r := FromEntry(&e, nil)
	if r.HasSize || r.HasModTime {
		t.Errorf("expected no size/mtime when metadata is nil, got %+v", r)
	}
	if r.Path != "/r/a.txt" {
		t.Errorf("Path = %q, want /r/a.txt", r.Path)
	}
}

func TestFromEntryWithMetadataFillsSizeAndModTime(t *testing.T) {
	e := direntry.New("/r/a.txt", 3, 0, direntry.Regular, 1)
	st := &unix.Stat_t{Size: 42, Mtim: unix.Timespec{Sec: 1700000000}}
	r := FromEntry(&e, st)
	if !r.HasSize || r.Size != 42 {
		t.Errorf("Size = %v (has=%v), want 42", r.Size, r.HasSize)
	}
	if !r.HasModTime || r.ModTime.Unix() != 1700000000 {
		t.Errorf("ModTime = %v (has=%v), want unix 1700000000", r.ModTime, r.HasModTime)
	}
}

func TestFromEntryReportsDirectoryType(t *testing.T) {
	e := direntry.New("/r/sub", 3, 0, direntry.Directory, 1)
	r := FromEntry(&e, nil)
	if !r.IsDir {
		t.Error("expected IsDir to be true for a directory entry")
	}
}
