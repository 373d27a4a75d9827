// Package metadata resolves on-demand file metadata (size, mtime, device)
// for entries the filter pipeline needs to inspect beyond the directory
// record's type byte.
package metadata

import "golang.org/x/sys/unix"

// Info is the subset of stat(2) fields the filter pipeline consumes.
type Info struct {
	Size    int64
	ModTime int64 // seconds since epoch
	Dev     uint64
	Mode    uint32
	UID     uint32
	GID     uint32
}

// FromStatT adapts a raw unix.Stat_t into an Info.
func FromStatT(st *unix.Stat_t) Info {
	return Info{
		Size:    st.Size,
		ModTime: int64(st.Mtim.Sec),
		Dev:     uint64(st.Dev),
		Mode:    st.Mode,
		UID:     st.Uid,
		GID:     st.Gid,
	}
}

// ToStatT builds a minimal unix.Stat_t carrying just the fields Info
// captured, so a resolver that never touched the real inode (a batched
// io_uring statx, say) can still seed direntry.Entry's metadata cache for
// the filter pipeline's size/time/owner/type checks.
func (i Info) ToStatT() *unix.Stat_t {
	st := &unix.Stat_t{
		Size: i.Size,
		Mode: i.Mode,
		Uid:  i.UID,
		Gid:  i.GID,
	}
	st.Mtim.Sec = i.ModTime
	st.Dev = i.Dev
	return st
}

// Stat resolves metadata for path, following symlinks iff followSymlinks.
func Stat(path string, followSymlinks bool) (Info, error) {
	var st unix.Stat_t
	var err error
	if followSymlinks {
		err = unix.Stat(path, &st)
	} else {
		err = unix.Lstat(path, &st)
	}
	if err != nil {
		return Info{}, err
	}
	return FromStatT(&st), nil
}
