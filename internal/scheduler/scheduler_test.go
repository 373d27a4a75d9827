package scheduler

import (
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/dl/findcore/internal/config"
	"github.com/dl/findcore/internal/filter"
	"github.com/dl/findcore/internal/sink"
)

type collectingFormatter struct {
	mu    sync.Mutex
	paths []string
}

func (c *collectingFormatter) Format(buf []byte, r sink.Result, sep byte) []byte {
	c.mu.Lock()
	c.paths = append(c.paths, r.Path)
	c.mu.Unlock()
	return buf
}

func buildTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	must := func(err error) {
		if err != nil {
			t.Fatal(err)
		}
	}
	must(os.MkdirAll(filepath.Join(root, "a", "b"), 0o755))
	must(os.WriteFile(filepath.Join(root, "a", "b", "c.txt"), nil, 0o644))
	must(os.WriteFile(filepath.Join(root, "a", "d.txt"), nil, 0o644))
	must(os.WriteFile(filepath.Join(root, "e.txt"), nil, 0o644))
	return root
}

func runScheduler(t *testing.T, cfg config.Config) []string {
	t.Helper()
	cfg.RootPaths = []string{cfg.RootPaths[0]}
	f := &collectingFormatter{}
	s := sink.New(&cfg, f, nil)
	pipeline := filter.New(&cfg, nil)
	sch := New(&cfg, pipeline, s, nil)
	sch.Run()
	s.Finish()
	sort.Strings(f.paths)
	return f.paths
}

func TestSchedulerEnumeratesEveryReachableEntry(t *testing.T) {
	root := buildTree(t)
	cfg := config.Default()
	cfg.RootPaths = []string{root}
	cfg.IncludeHidden = true

	got := runScheduler(t, cfg)
	want := []string{
		filepath.Join(root, "a", "b", "c.txt"),
		filepath.Join(root, "a", "d.txt"),
		filepath.Join(root, "e.txt"),
	}
	sort.Strings(want)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSchedulerMaxDepthZeroEmitsOnlyDirectChildren(t *testing.T) {
	root := buildTree(t)
	cfg := config.Default()
	cfg.RootPaths = []string{root}
	cfg.IncludeHidden = true
	zero := 0
	cfg.MaxDepth = &zero

	got := runScheduler(t, cfg)
	want := []string{filepath.Join(root, "e.txt")}
	if len(got) != len(want) || got[0] != want[0] {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestSchedulerMaxResultsStopsEarly(t *testing.T) {
	root := buildTree(t)
	cfg := config.Default()
	cfg.RootPaths = []string{root}
	cfg.IncludeHidden = true
	one := 1
	cfg.MaxResults = &one

	got := runScheduler(t, cfg)
	if len(got) != 1 {
		t.Fatalf("got %d results, want exactly 1", len(got))
	}
}

func TestSchedulerEmptyDirectoryProducesNoEmissionsOrPanic(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default()
	cfg.RootPaths = []string{root}

	got := runScheduler(t, cfg)
	if len(got) != 0 {
		t.Fatalf("expected no emissions from an empty directory, got %v", got)
	}
}

func TestSchedulerGitignorePrunesMatchingSubtree(t *testing.T) {
	root := buildTree(t)
	must := func(err error) {
		if err != nil {
			t.Fatal(err)
		}
	}
	must(os.WriteFile(filepath.Join(root, ".gitignore"), []byte("b/\n"), 0o644))

	cfg := config.Default()
	cfg.RootPaths = []string{root}
	cfg.IncludeHidden = true
	cfg.Gitignore = true

	got := runScheduler(t, cfg)
	for _, p := range got {
		if filepath.Base(filepath.Dir(p)) == "b" {
			t.Errorf("expected the b/ subtree to be pruned by .gitignore, got %q", p)
		}
	}
	want := []string{
		filepath.Join(root, ".gitignore"),
		filepath.Join(root, "a", "d.txt"),
		filepath.Join(root, "e.txt"),
	}
	sort.Strings(want)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSchedulerBatchStatMatchesScalarStatResults(t *testing.T) {
	root := buildTree(t)
	must := func(err error) {
		if err != nil {
			t.Fatal(err)
		}
	}
	must(os.WriteFile(filepath.Join(root, "big.bin"), make([]byte, 1024), 0o644))

	scalar := config.Default()
	scalar.RootPaths = []string{root}
	scalar.IncludeHidden = true
	scalar.SizeFilters = []config.SizeFilter{{Op: config.SizeAtLeast, Bytes: 1}}

	batched := scalar
	batched.BatchStat = true

	got := runScheduler(t, batched)
	want := runScheduler(t, scalar)
	if len(got) != len(want) {
		t.Fatalf("batch-stat result set differs in size: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSchedulerFollowSymlinksDescendsIntoLinkedDirectory(t *testing.T) {
	root := buildTree(t)
	must := func(err error) {
		if err != nil {
			t.Fatal(err)
		}
	}
	outside := t.TempDir()
	must(os.WriteFile(filepath.Join(outside, "linked.txt"), nil, 0o644))
	must(os.Symlink(outside, filepath.Join(root, "link")))

	noFollow := config.Default()
	noFollow.RootPaths = []string{root}
	noFollow.IncludeHidden = true

	got := runScheduler(t, noFollow)
	for _, p := range got {
		if filepath.Base(p) == "linked.txt" {
			t.Fatalf("expected the symlinked directory not to be descended into without --follow, got %v", got)
		}
	}

	follow := noFollow
	follow.FollowSymlinks = true

	got = runScheduler(t, follow)
	found := false
	for _, p := range got {
		if p == filepath.Join(root, "link", "linked.txt") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected --follow to descend into the symlinked directory, got %v", got)
	}
}

func TestSchedulerRootOpenFailedWhenRootItselfCannotOpen(t *testing.T) {
	cfg := config.Default()
	cfg.RootPaths = []string{filepath.Join(t.TempDir(), "does-not-exist")}
	f := &collectingFormatter{}
	s := sink.New(&cfg, f, nil)
	pipeline := filter.New(&cfg, nil)
	sch := New(&cfg, pipeline, s, nil)
	sch.Run()
	s.Finish()

	if !sch.RootOpenFailed() {
		t.Error("expected RootOpenFailed to be true when a search root itself cannot be opened")
	}
}

func TestSchedulerRootOpenFailedFalseWhenOnlyASubtreeFailsToOpen(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission-denied subtree is not enforceable while running as root")
	}
	root := buildTree(t)
	unreadable := filepath.Join(root, "a", "b")
	if err := os.Chmod(unreadable, 0o000); err != nil {
		t.Fatal(err)
	}
	defer os.Chmod(unreadable, 0o755)

	cfg := config.Default()
	cfg.RootPaths = []string{root}
	var errs []error
	onError := func(err error) { errs = append(errs, err) }
	f := &collectingFormatter{}
	s := sink.New(&cfg, f, nil)
	pipeline := filter.New(&cfg, nil)
	sch := New(&cfg, pipeline, s, onError)
	sch.Run()
	s.Finish()

	if len(errs) == 0 {
		t.Fatal("expected the unreadable subdirectory to produce a reported error")
	}
	if sch.RootOpenFailed() {
		t.Error("expected RootOpenFailed to stay false: only a subtree failed to open, not the root itself")
	}
}

func TestSchedulerResultSetIndependentOfThreadCount(t *testing.T) {
	root := buildTree(t)
	var results [][]string
	for _, threads := range []int{1, 4} {
		cfg := config.Default()
		cfg.RootPaths = []string{root}
		cfg.IncludeHidden = true
		cfg.Threads = threads
		results = append(results, runScheduler(t, cfg))
	}
	if len(results[0]) != len(results[1]) {
		t.Fatalf("thread count changed result count: %v vs %v", results[0], results[1])
	}
	for i := range results[0] {
		if results[0][i] != results[1][i] {
			t.Errorf("mismatch at %d: %q vs %q", i, results[0][i], results[1][i])
		}
	}
}
