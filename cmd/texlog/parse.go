package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/texlog/texlog-go/internal/config"
	"github.com/texlog/texlog-go/pkg/texlog"
)

// parseFlags holds the flags of the parse command.
type parseFlags struct {
	format       string
	includeKinds []string
	excludeKinds []string
	failOn       []string
	separator    string
	jobs         int
}

// parseSettings is the merged result of config file and flags.
type parseSettings struct {
	format       string
	separator    string
	contextLines int
	jobs         int
	include      []texlog.Kind
	exclude      []texlog.Kind
	failOn       []texlog.Kind
}

var parseCmd = newParseCmd()

func newParseCmd() *cobra.Command {
	f := &parseFlags{}
	cmd := &cobra.Command{
		Use:   "parse [files...]",
		Short: "Parse TeX log files",
		Long: `Parse one or more TeX log files and print their diagnostics.

Arguments may be .log files, .tex sources (the log next to the source, or
in $TEXLOG_OUTDIR) or directories (their newest .log). With no arguments
the log named by $TEXLOG_LOG, or the newest .log in the working directory,
is parsed.

Examples:
  # Parse the log of a document
  texlog parse thesis.tex

  # Only errors and undefined references, as JSON Lines
  texlog parse --format jsonl --include-kinds error,missing_reference main.log

  # Fail a CI job when the build produced errors or undefined citations
  texlog parse --format summary --fail-on error,missing_citation build/

  # Pipe to jq for filtering
  texlog parse -f jsonl main.log | jq 'select(.kind == "badbox")'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, args, f)
		},
	}

	cmd.Flags().StringVarP(&f.format, "format", "f", config.DefaultFormat,
		"Output format: "+strings.Join(formatNames(ValidFormats), ", "))
	cmd.Flags().StringSliceVar(&f.includeKinds, "include-kinds", nil,
		"Kinds to print (comma-separated: error,warning,badbox)")
	cmd.Flags().StringSliceVar(&f.excludeKinds, "exclude-kinds", nil,
		"Kinds not to print (comma-separated)")
	cmd.Flags().StringSliceVar(&f.failOn, "fail-on", nil,
		"Exit with an error if any diagnostic of these kinds is found")
	cmd.Flags().StringVar(&f.separator, "separator", config.DefaultSeparator,
		"Text joining continuation lines onto a message")
	cmd.Flags().IntVarP(&f.jobs, "jobs", "j", 0,
		"Logs parsed concurrently (0 = number of CPUs)")

	registerKindCompletion(cmd, "include-kinds")
	registerKindCompletion(cmd, "exclude-kinds")
	registerKindCompletion(cmd, "fail-on")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats(ValidFormats))

	return cmd
}

func runParse(cmd *cobra.Command, args []string, f *parseFlags) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	s, err := resolveParseSettings(cmd, f, cfg)
	if err != nil {
		return err
	}

	paths, err := resolveLogPaths(args)
	if err != nil {
		return err
	}

	// Setup context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := []texlog.ParseOption{
		texlog.WithSeparator(s.separator),
		texlog.WithContextLines(s.contextLines),
		texlog.WithJobs(s.jobs),
	}
	if logger := newLogger(); logger != nil {
		opts = append(opts, texlog.WithLogger(logger))
	}

	reports, err := texlog.ParseFiles(ctx, paths, opts...)
	if err != nil {
		// Ctrl+C: exit silently
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("parse error: %w", err)
	}

	out := cmd.OutOrStdout()
	format := resolveFormat(s.format, writerIsTerminal(out))
	if err := OutputReports(format, reports, selection{include: s.include, exclude: s.exclude}, out); err != nil {
		return fmt.Errorf("output error: %w", err)
	}

	return checkFailOn(reports, s.failOn)
}

// resolveParseSettings merges cfg with the flags set on cmd. Flags win.
func resolveParseSettings(cmd *cobra.Command, f *parseFlags, cfg *config.Config) (*parseSettings, error) {
	changed := cmd.Flags().Changed

	s := &parseSettings{
		format:       cfg.GetFormat(),
		separator:    cfg.GetSeparator(),
		contextLines: cfg.GetContextLines(),
		jobs:         cfg.Jobs,
	}
	if changed("format") {
		s.format = f.format
	}
	if changed("separator") {
		s.separator = f.separator
	}
	if changed("jobs") {
		s.jobs = f.jobs
	}

	if !ValidFormats[s.format] {
		return nil, fmt.Errorf("invalid format %q: must be one of: %s", s.format, strings.Join(formatNames(ValidFormats), ", "))
	}
	if s.jobs < 0 {
		return nil, fmt.Errorf("invalid --jobs %d: must be non-negative", s.jobs)
	}

	include, exclude := cfg.IncludeKinds, cfg.ExcludeKinds
	if changed("include-kinds") {
		include = f.includeKinds
	}
	if changed("exclude-kinds") {
		exclude = f.excludeKinds
	}
	var err error
	s.include, s.exclude, err = kindFilters(include, exclude)
	if err != nil {
		return nil, err
	}

	failOn := cfg.FailOn
	if changed("fail-on") {
		failOn = f.failOn
	}
	s.failOn, err = NormalizeKinds(failOn)
	if err != nil {
		return nil, fmt.Errorf("fail-on: %w", err)
	}

	return s, nil
}

// resolveLogPaths maps each argument to a log file. No arguments means
// the default log (see texlog.FindLog).
func resolveLogPaths(args []string) ([]string, error) {
	if len(args) == 0 {
		path, err := texlog.FindLog("")
		if err != nil {
			return nil, err
		}
		return []string{path}, nil
	}

	paths := make([]string, 0, len(args))
	for _, arg := range args {
		path, err := texlog.FindLog(arg)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// checkFailOn returns an error naming the failOn kinds present in reports.
func checkFailOn(reports []texlog.FileReport, failOn []texlog.Kind) error {
	var found []string
	for _, k := range failOn {
		n := 0
		for _, fr := range reports {
			n += fr.Report.Count(k)
		}
		if n > 0 {
			found = append(found, fmt.Sprintf("%d %s", n, k))
		}
	}
	if len(found) == 0 {
		return nil
	}
	return fmt.Errorf("found %s", strings.Join(found, ", "))
}

// writerIsTerminal reports whether w is a terminal file.
func writerIsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isTerminal(f)
}
