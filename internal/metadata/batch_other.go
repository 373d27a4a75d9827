//go:build !linux

package metadata

import "fmt"

// BatchResolver is the non-Linux stand-in: io_uring is Linux-only, so
// NewBatchResolver always fails here and callers fall back to the scalar
// Stat path, exactly as they would if ring setup failed on Linux.
type BatchResolver struct{}

func NewBatchResolver(entries uint32) (*BatchResolver, error) {
	return nil, fmt.Errorf("metadata: batch statx unsupported on this platform")
}

func (b *BatchResolver) Close() {}

func (b *BatchResolver) Resolve(paths []string, followSymlinks bool) ([]Info, []error) {
	infos := make([]Info, len(paths))
	errs := make([]error, len(paths))
	for i, p := range paths {
		infos[i], errs[i] = Stat(p, followSymlinks)
	}
	return infos, errs
}
