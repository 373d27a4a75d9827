package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/dl/findcore/internal/config"
	"github.com/dl/findcore/internal/filter"
	"github.com/dl/findcore/internal/predicate"
	"github.com/dl/findcore/internal/scheduler"
	"github.com/dl/findcore/internal/sink"
)

func main() {
	os.Exit(run())
}

// run parses arguments, executes the search, and maps the outcome onto
// spec.md §6's exit codes: 0 = matches found, 1 = completed with no
// matches, 2 = invalid arguments, 3 = one of the caller's search roots
// could not be opened at all, or the output could not be written. Ordinary
// per-entry errors under a root that
// did open (an unreadable subdirectory, a broken stat) are recovered
// locally per spec.md §7 and never affect the exit code on their own.
func run() int {
	f := &flags{}
	var code int
	cmd := newRootCmd(f, &code, runSearch)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "fc:", err)
		if code == 0 {
			code = 2
		}
		return code
	}
	return code
}

func runSearch(f *flags, args []string) (int, error) {
	logger := log.NewWithOptions(os.Stderr, log.Options{Level: log.WarnLevel})

	cfg, pattern, err := buildConfig(f, args)
	if err != nil {
		return 2, invalidArgs("%w", err)
	}
	if err := cfg.Validate(); err != nil {
		return 2, invalidArgs("%w", err)
	}
	patternKind := predicate.Regex
	switch cfg.PatternKind {
	case config.Glob:
		patternKind = predicate.Glob
	case config.FixedString:
		patternKind = predicate.FixedString
	}

	var matcher predicate.Matcher
	if pattern != "" {
		matcher, err = predicate.New(patternKind, pattern, cfg.CaseSensitive)
		if err != nil {
			return 2, invalidArgs("%w", err)
		}
	}

	useColor := false
	switch cfg.Color {
	case config.ColorAlways:
		useColor = true
	case config.ColorNever:
		useColor = false
	case config.ColorAuto:
		useColor = sink.StdoutIsTerminal()
	}

	var formatter sink.Formatter
	switch {
	case cfg.JSON:
		formatter = sink.NewJSONFormatter()
	case useColor:
		formatter = sink.NewTextFormatter(sink.NewStyles(), true)
	default:
		formatter = sink.NewTextFormatter(sink.NoStyles(), false)
	}

	execHook, waitExec := buildExecHook(cfg.Exec, cfg.ExecArgv, logger)
	var onMatch func(sink.Result)
	if execHook != nil {
		onMatch = func(r sink.Result) { execHook(r.Path) }
	}

	s := sink.New(&cfg, formatter, onMatch)
	pipeline := filter.New(&cfg, matcher)

	onError := func(err error) {
		if cfg.ShowErrors {
			logger.Warn("traversal error", "err", err)
		}
	}

	sch := scheduler.New(&cfg, pipeline, s, onError)
	sch.Run()

	if err := s.Finish(); err != nil {
		logger.Error("failed to write output", "err", err)
		return 3, nil
	}

	if waitExec != nil {
		waitExec()
	}

	if sch.RootOpenFailed() {
		return 3, nil
	}
	if s.Count() > 0 {
		return 0, nil
	}
	return 1, nil
}
