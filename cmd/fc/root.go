// Package main is fc's command-line front end: flag parsing, exit-code
// mapping, and wiring a validated internal/config.Config into the
// traversal core. None of the packages under internal/ import this
// package or parse flags themselves, per spec.md's "CLI is an external
// collaborator" boundary.
package main

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/dl/findcore/internal/config"
)

// flags mirrors config.Config field-for-field in the raw, unvalidated
// shape pflag hands back; buildConfig turns it into a validated
// config.Config.
type flags struct {
	glob          bool
	fixedString   bool
	fullPath      bool
	caseSensitive bool
	ignoreCase    bool
	hidden        bool
	gitignore     bool
	batchStat     bool
	directories   bool
	followSymlink bool
	sameFS        bool
	maxDepth      int
	minDepth      int
	maxResults    int
	types         []string
	extensions    []string
	sizes         []string
	changedWithin string
	changedBefore string
	owner         string
	threads       int
	print0        bool
	color         string
	jsonOutput    bool
	sort          bool
	absolute      bool
	showErrors    bool
	execCmd       []string
	execBatchCmd  []string
}

// newRootCmd builds the cobra command tree. run's exit code is written into
// code, since cobra's RunE contract only distinguishes success from error
// but spec.md needs a four-way 0/1/2/3 split.
func newRootCmd(f *flags, code *int, run func(*flags, []string) (int, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fc [flags] <pattern> [paths...]",
		Short: "fc searches directory trees for entries matching a pattern",
		Long: `fc walks one or more directory trees in parallel and prints every entry
whose name (or full path) matches a pattern, filtered by type, extension,
size, modification time, and depth.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := run(f, args)
			*code = c
			return err
		},
	}

	fl := cmd.Flags()
	fl.BoolVarP(&f.glob, "glob", "g", false, "treat pattern as a shell glob instead of a regex")
	fl.BoolVarP(&f.fixedString, "fixed-strings", "F", false, "treat pattern as a literal substring")
	fl.BoolVarP(&f.fullPath, "full-path", "p", false, "match against the full path instead of the filename")
	fl.BoolVarP(&f.caseSensitive, "case-sensitive", "s", false, "force case-sensitive matching")
	fl.BoolVarP(&f.ignoreCase, "ignore-case", "i", false, "force case-insensitive matching")
	fl.BoolVarP(&f.hidden, "hidden", "H", false, "include hidden entries (dotfiles)")
	fl.BoolVar(&f.gitignore, "gitignore", false, "respect .gitignore files while descending (off by default)")
	fl.BoolVar(&f.batchStat, "batch-stat", false, "resolve entry metadata in io_uring batches instead of one stat call per entry (Linux only, falls back silently)")
	fl.BoolVarP(&f.directories, "type-dirs", "d", false, "include directories themselves in the output")
	fl.BoolVarP(&f.followSymlink, "follow", "L", false, "follow symbolic links")
	fl.BoolVar(&f.sameFS, "one-file-system", false, "don't descend into other filesystems")
	fl.IntVar(&f.maxDepth, "max-depth", -1, "descend at most this many levels (-1 = unlimited)")
	fl.IntVar(&f.minDepth, "min-depth", -1, "only print entries at least this many levels deep (-1 = unset)")
	fl.IntVarP(&f.maxResults, "max-results", "m", -1, "stop after this many matches (-1 = unlimited)")
	fl.StringSliceVarP(&f.types, "type", "t", nil, "filter by type: f,d,l,p,char,block,socket,empty,x,unknown")
	fl.StringSliceVarP(&f.extensions, "extension", "e", nil, "filter by extension (repeatable)")
	fl.StringSliceVarP(&f.sizes, "size", "S", nil, "filter by size, e.g. +100k, -1M, 4096 (repeatable)")
	fl.StringVar(&f.changedWithin, "changed-within", "", "only entries modified within this window (RFC3339 or e.g. 10min, 2days)")
	fl.StringVar(&f.changedBefore, "changed-before", "", "only entries modified before this window (RFC3339 or e.g. 10min, 2days)")
	fl.StringVar(&f.owner, "owner", "", "filter by owner, uid[:gid]")
	fl.IntVarP(&f.threads, "threads", "j", 0, "number of worker goroutines (0 = GOMAXPROCS)")
	fl.BoolVar(&f.print0, "print0", false, "separate results with a NUL byte instead of a newline")
	fl.StringVar(&f.color, "color", "auto", "when to colourize output: auto, always, never")
	fl.BoolVar(&f.jsonOutput, "json", false, "print one JSON object per matched entry instead of a plain path")
	fl.BoolVar(&f.sort, "sort", false, "sort results lexicographically before printing")
	fl.BoolVar(&f.absolute, "absolute-path", false, "print absolute paths")
	fl.BoolVar(&f.showErrors, "show-errors", false, "print per-entry traversal errors to stderr")
	fl.StringSliceVarP(&f.execCmd, "exec", "x", nil, "run a command per match, {} substituted with the path")
	fl.StringSliceVarP(&f.execBatchCmd, "exec-batch", "X", nil, "run a command once with all matches appended")

	return cmd
}

func invalidArgs(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

// buildExecHook adapts --exec/--exec-batch into the sink's onMatch
// callback, grounded on the teacher's OrderedWriter.WriteOrdered(onMatch
// func()) idiom: run a companion process per match (ExecPerMatch), or
// collect paths and run one process at the end (ExecBatch). The returned
// wait function is nil unless batching, in which case main must call it
// after traversal completes.
func buildExecHook(mode config.ExecMode, argv []string, logger *log.Logger) (func(path string), func()) {
	if mode == config.ExecNone {
		return nil, nil
	}
	if mode == config.ExecPerMatch {
		return func(path string) {
			runExec(substitutePlaceholder(argv, path), logger)
		}, nil
	}

	var batch []string
	onMatch := func(path string) { batch = append(batch, path) }
	wait := func() {
		if len(batch) == 0 {
			return
		}
		runExec(append(append([]string{}, argv...), batch...), logger)
	}
	return onMatch, wait
}

func substitutePlaceholder(argv []string, path string) []string {
	out := make([]string, len(argv))
	replaced := false
	for i, a := range argv {
		if a == "{}" {
			out[i] = path
			replaced = true
		} else {
			out[i] = a
		}
	}
	if !replaced {
		out = append(out, path)
	}
	return out
}

func runExec(argv []string, logger *log.Logger) {
	if len(argv) == 0 {
		return
	}
	c := exec.Command(argv[0], argv[1:]...)
	if err := c.Run(); err != nil {
		logger.Warn("exec failed", "cmd", strings.Join(argv, " "), "err", err)
	}
}

// buildConfig translates raw flags into a config.Config plus the search
// pattern string, without validating: Validate is the caller's job so
// invalid-argument reporting stays uniform.
func buildConfig(f *flags, args []string) (config.Config, string, error) {
	cfg := config.Default()

	var pattern string
	var roots []string
	if len(args) > 0 {
		pattern = args[0]
		roots = args[1:]
	}
	if len(roots) > 0 {
		cfg.RootPaths = roots
	}
	cfg.Pattern = pattern

	switch {
	case f.glob:
		cfg.PatternKind = config.Glob
	case f.fixedString:
		cfg.PatternKind = config.FixedString
	default:
		cfg.PatternKind = config.Regex
	}

	if f.fullPath {
		cfg.MatchTarget = config.FullPath
	}

	switch {
	case f.caseSensitive:
		cfg.CaseSensitive = true
		cfg.SmartCase = false
	case f.ignoreCase:
		cfg.CaseSensitive = false
		cfg.SmartCase = false
	default:
		cfg.SmartCase = true
		cfg.CaseSensitive = hasUppercase(pattern)
	}

	cfg.IncludeHidden = f.hidden
	cfg.Gitignore = f.gitignore
	cfg.BatchStat = f.batchStat
	cfg.IncludeDirectoriesInOutput = f.directories
	cfg.FollowSymlinks = f.followSymlink
	cfg.SameFilesystem = f.sameFS
	cfg.Absolute = f.absolute
	cfg.ShowErrors = f.showErrors
	cfg.Sort = f.sort

	if cfg.Absolute {
		abs, err := canonicalizeRoots(cfg.RootPaths)
		if err != nil {
			return cfg, pattern, err
		}
		cfg.RootPaths = abs
	}

	if f.maxDepth >= 0 {
		d := f.maxDepth
		cfg.MaxDepth = &d
	}
	if f.minDepth >= 0 {
		d := f.minDepth
		cfg.MinDepth = &d
	}
	if f.maxResults > 0 {
		m := f.maxResults
		cfg.MaxResults = &m
	}

	if f.threads > 0 {
		cfg.Threads = f.threads
	}
	if f.print0 {
		cfg.OutputSeparator = config.SeparatorNull
	}
	cfg.JSON = f.jsonOutput

	switch strings.ToLower(f.color) {
	case "always":
		cfg.Color = config.ColorAlways
	case "never":
		cfg.Color = config.ColorNever
	default:
		cfg.Color = config.ColorAuto
	}

	cfg.Extensions = f.extensions

	types, err := parseTypes(f.types)
	if err != nil {
		return cfg, pattern, err
	}
	cfg.Types = types

	sizes, err := parseSizes(f.sizes)
	if err != nil {
		return cfg, pattern, err
	}
	cfg.SizeFilters = sizes

	tf, err := parseTimeFilter(f.changedWithin, f.changedBefore)
	if err != nil {
		return cfg, pattern, err
	}
	cfg.TimeFilter = tf

	owner, err := parseOwner(f.owner)
	if err != nil {
		return cfg, pattern, err
	}
	cfg.Owner = owner

	switch {
	case len(f.execCmd) > 0:
		cfg.Exec = config.ExecPerMatch
		cfg.ExecArgv = f.execCmd
	case len(f.execBatchCmd) > 0:
		cfg.Exec = config.ExecBatch
		cfg.ExecArgv = f.execBatchCmd
	}

	return cfg, pattern, nil
}

// canonicalizeRoots resolves every root to its absolute, cleaned form
// before traversal begins, backing --absolute-path: since every discovered
// entry's path is built by appending onto the root path it started from,
// making the roots absolute up front is enough to make every path fc
// prints absolute, without touching internal/pathbuf or internal/direntry.
func canonicalizeRoots(roots []string) ([]string, error) {
	out := make([]string, len(roots))
	for i, r := range roots {
		abs, err := filepath.Abs(r)
		if err != nil {
			return nil, fmt.Errorf("resolving absolute path for %q: %w", r, err)
		}
		out[i] = abs
	}
	return out, nil
}

func hasUppercase(s string) bool {
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			return true
		}
	}
	return false
}

func parseTypes(raw []string) ([]config.EntryType, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]config.EntryType, 0, len(raw))
	for _, t := range raw {
		switch strings.ToLower(t) {
		case "f", "file":
			out = append(out, config.TypeFile)
		case "d", "dir", "directory":
			out = append(out, config.TypeDirectory)
		case "l", "symlink":
			out = append(out, config.TypeSymlink)
		case "p", "pipe", "fifo":
			out = append(out, config.TypePipe)
		case "char", "char-device":
			out = append(out, config.TypeCharDevice)
		case "block", "block-device":
			out = append(out, config.TypeBlockDevice)
		case "socket":
			out = append(out, config.TypeSocket)
		case "empty":
			out = append(out, config.TypeEmpty)
		case "x", "executable":
			out = append(out, config.TypeExecutable)
		case "unknown":
			out = append(out, config.TypeUnknown)
		default:
			return nil, fmt.Errorf("unknown --type %q", t)
		}
	}
	return out, nil
}

func parseSizes(raw []string) ([]config.SizeFilter, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]config.SizeFilter, 0, len(raw))
	for _, s := range raw {
		sf, err := parseSize(s)
		if err != nil {
			return nil, err
		}
		out = append(out, sf)
	}
	return out, nil
}

// parseSize accepts fd-style size expressions: an optional leading + (at
// least) or - (at most), a number, and an optional unit suffix
// (k/M/G/T, byte-multiples of 1024).
func parseSize(s string) (config.SizeFilter, error) {
	if s == "" {
		return config.SizeFilter{}, fmt.Errorf("empty --size expression")
	}
	op := config.SizeExact
	rest := s
	switch s[0] {
	case '+':
		op = config.SizeAtLeast
		rest = s[1:]
	case '-':
		op = config.SizeAtMost
		rest = s[1:]
	}

	mult := int64(1)
	if n := len(rest); n > 0 {
		switch rest[n-1] {
		case 'k', 'K':
			mult, rest = 1024, rest[:n-1]
		case 'm', 'M':
			mult, rest = 1024*1024, rest[:n-1]
		case 'g', 'G':
			mult, rest = 1024*1024*1024, rest[:n-1]
		case 't', 'T':
			mult, rest = 1024*1024*1024*1024, rest[:n-1]
		}
	}

	n, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return config.SizeFilter{}, fmt.Errorf("invalid --size expression %q: %w", s, err)
	}
	return config.SizeFilter{Op: op, Bytes: n * mult}, nil
}

// parseTimeFilter accepts either an RFC3339 timestamp or a relative
// duration like "10min"/"2days" for --changed-within/--changed-before —
// the one supplemented feature genuinely built on the stdlib time
// package alone (see DESIGN.md).
func parseTimeFilter(within, before string) (*config.TimeFilter, error) {
	if within == "" && before == "" {
		return nil, nil
	}
	tf := &config.TimeFilter{}
	if within != "" {
		t, err := parseTimeExpr(within)
		if err != nil {
			return nil, fmt.Errorf("invalid --changed-within: %w", err)
		}
		tf.Since = t
	}
	if before != "" {
		t, err := parseTimeExpr(before)
		if err != nil {
			return nil, fmt.Errorf("invalid --changed-before: %w", err)
		}
		tf.Until = t
	}
	return tf, nil
}

func parseTimeExpr(expr string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, expr); err == nil {
		return t, nil
	}
	d, err := parseRelativeDuration(expr)
	if err != nil {
		return time.Time{}, err
	}
	return time.Now().Add(-d), nil
}

// parseRelativeDuration extends time.ParseDuration with fd's min/day/week
// units, which the stdlib doesn't recognise.
func parseRelativeDuration(expr string) (time.Duration, error) {
	trimmed := strings.TrimSpace(expr)
	for _, unit := range []struct {
		suffix string
		scale  time.Duration
	}{
		{"mins", time.Minute},
		{"min", time.Minute},
		{"days", 24 * time.Hour},
		{"day", 24 * time.Hour},
		{"weeks", 7 * 24 * time.Hour},
		{"week", 7 * 24 * time.Hour},
	} {
		if strings.HasSuffix(trimmed, unit.suffix) {
			numPart := strings.TrimSuffix(trimmed, unit.suffix)
			n, err := strconv.ParseFloat(numPart, 64)
			if err != nil {
				return 0, fmt.Errorf("bad relative duration %q: %w", expr, err)
			}
			return time.Duration(n * float64(unit.scale)), nil
		}
	}
	return time.ParseDuration(trimmed)
}

func parseOwner(raw string) (*config.OwnerSpec, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.SplitN(raw, ":", 2)
	spec := &config.OwnerSpec{}
	if parts[0] != "" {
		uid, err := strconv.ParseUint(parts[0], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid --owner uid %q: %w", parts[0], err)
		}
		u := uint32(uid)
		spec.UID = &u
	}
	if len(parts) == 2 && parts[1] != "" {
		gid, err := strconv.ParseUint(parts[1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid --owner gid %q: %w", parts[1], err)
		}
		g := uint32(gid)
		spec.GID = &g
	}
	return spec, nil
}
