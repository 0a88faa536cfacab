package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/texlog/texlog-go/internal/config"
	"github.com/texlog/texlog-go/pkg/texlog"
)

// tailFlags holds the flags of the tail command.
type tailFlags struct {
	format        string
	includeKinds  []string
	excludeKinds  []string
	separator     string
	poll          bool
	fromEnd       bool
	flushInterval time.Duration
}

var tailCmd = newTailCmd()

func newTailCmd() *cobra.Command {
	f := &tailFlags{}
	cmd := &cobra.Command{
		Use:   "tail [file]",
		Short: "Follow a TeX log while it is written",
		Long: `Follow a TeX log file while the engine writes it and print each
diagnostic as soon as it is complete.

The argument may be a .log file, a .tex source or a directory, as for
'parse'. A log that does not exist yet is waited for. Each new engine run
(the "This is ...TeX, Version" banner) starts a new summary.

Examples:
  # Follow the log of a document during latexmk -pvc
  texlog tail thesis.tex

  # Only errors, as JSON Lines
  texlog tail --format jsonl --include-kinds error main.log`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTail(cmd, args, f)
		},
	}

	cmd.Flags().StringVarP(&f.format, "format", "f", config.DefaultFormat,
		"Output format: "+strings.Join(formatNames(ValidTailFormats), ", "))
	cmd.Flags().StringSliceVar(&f.includeKinds, "include-kinds", nil,
		"Kinds to print (comma-separated: error,warning,badbox)")
	cmd.Flags().StringSliceVar(&f.excludeKinds, "exclude-kinds", nil,
		"Kinds not to print (comma-separated)")
	cmd.Flags().StringVar(&f.separator, "separator", config.DefaultSeparator,
		"Text joining continuation lines onto a message")
	cmd.Flags().BoolVar(&f.poll, "poll", false,
		"Poll for changes instead of using filesystem notifications")
	cmd.Flags().BoolVar(&f.fromEnd, "from-end", false,
		"Skip the content already in the log")
	cmd.Flags().DurationVar(&f.flushInterval, "flush-interval", texlog.DefaultFlushInterval,
		"Release the last diagnostic after the log is quiet this long (0 = never)")

	registerKindCompletion(cmd, "include-kinds")
	registerKindCompletion(cmd, "exclude-kinds")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats(ValidTailFormats))

	return cmd
}

func runTail(cmd *cobra.Command, args []string, f *tailFlags) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	changed := cmd.Flags().Changed

	format := cfg.GetFormat()
	if changed("format") {
		format = f.format
	}
	if !ValidTailFormats[format] {
		return fmt.Errorf("invalid format %q: must be one of: %s", format, strings.Join(formatNames(ValidTailFormats), ", "))
	}

	include, exclude := cfg.IncludeKinds, cfg.ExcludeKinds
	if changed("include-kinds") {
		include = f.includeKinds
	}
	if changed("exclude-kinds") {
		exclude = f.excludeKinds
	}
	includes, excludes, err := kindFilters(include, exclude)
	if err != nil {
		return err
	}

	separator := cfg.GetSeparator()
	if changed("separator") {
		separator = f.separator
	}
	poll := cfg.Tail.Poll
	if changed("poll") {
		poll = f.poll
	}
	fromEnd := cfg.Tail.FromEnd
	if changed("from-end") {
		fromEnd = f.fromEnd
	}

	var target string
	if len(args) > 0 {
		target = args[0]
	}
	path, err := resolveTailPath(target)
	if err != nil {
		return err
	}

	// Setup context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	watchOpts := []texlog.WatchOption{
		texlog.WithPoll(poll),
		texlog.WithFromStart(!fromEnd),
		texlog.WithFlushInterval(f.flushInterval),
		texlog.WithWatchSeparator(separator),
	}
	if logger := newLogger(); logger != nil {
		watchOpts = append(watchOpts, texlog.WithWatchLogger(logger))
	}
	// Use library-level filtering
	if len(includes) > 0 {
		watchOpts = append(watchOpts, texlog.WithWatchIncludeKinds(includes...))
	}
	if len(excludes) > 0 {
		watchOpts = append(watchOpts, texlog.WithWatchExcludeKinds(excludes...))
	}

	watcher, err := texlog.NewWatcher(path, watchOpts...)
	if err != nil {
		return err
	}
	defer watcher.Close()

	out := cmd.OutOrStdout()
	format = resolveFormat(format, writerIsTerminal(out))

	diags, errs := watcher.Watch(ctx)
	for diags != nil || errs != nil {
		select {
		case d, ok := <-diags:
			if !ok {
				diags = nil
				continue
			}
			if err := OutputDiagnostic(format, path, d, out); err != nil {
				return fmt.Errorf("output error: %w", err)
			}

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			// Always output errors to stderr
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
	}

	if err := watcher.Close(); err != nil {
		return err
	}
	if report := watcher.Report(); report != nil && format == "pretty" {
		return outputSummaryLine(report, out)
	}
	return nil
}

// resolveTailPath picks the log to follow. Unlike parse, a log named
// directly or derived from a source may not exist yet.
func resolveTailPath(target string) (string, error) {
	if target == "" {
		return texlog.FindLog("")
	}
	if info, err := os.Stat(target); err == nil && info.IsDir() {
		return texlog.FindLog(target)
	}
	if path, err := texlog.FindLog(target); err == nil {
		return path, nil
	}
	return texlog.LogPathFor(target), nil
}
