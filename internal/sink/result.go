package sink

import (
	"time"

	"golang.org/x/sys/unix"

	"github.com/dl/findcore/internal/direntry"
)

// Result is one matched entry handed to a Formatter, carrying the fields a
// formatter might want without forcing it to hold a live direntry.Entry
// (whose metadata pointer becomes invalid once the worker moves on).
type Result struct {
	Path       string
	IsDir      bool
	Category   Category
	SeqNum     int
	Size       int64
	HasSize    bool
	ModTime    time.Time
	HasModTime bool
}

// FromEntry builds a Result from a matched entry. st is the entry's
// already-resolved metadata, or nil if nothing forced a stat call for it
// (e.g. it matched on name alone with no size/time/JSON output pending) —
// the caller passes exactly what CachedMetadata returned rather than
// forcing a fresh stat here.
func FromEntry(e *direntry.Entry, st *unix.Stat_t) Result {
	r := Result{
		Path:     e.FullPath(),
		IsDir:    e.Type() == direntry.Directory,
		Category: CategoryForName(e.FileName()),
	}
	if st != nil {
		r.Size = st.Size
		r.HasSize = true
		r.ModTime = time.Unix(st.Mtim.Sec, st.Mtim.Nsec)
		r.HasModTime = true
	}
	return r
}
