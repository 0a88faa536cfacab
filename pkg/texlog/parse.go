package texlog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/texlog/texlog-go/internal/logfinder"
	"github.com/texlog/texlog-go/internal/parser"
)

// ParseLine classifies a single log line.
//
// Return values:
//   - (*Diagnostic, nil): the line is an error, warning, info, badbox,
//     missing citation or missing reference
//   - (nil, nil): the line is not a recognized diagnostic (not an error)
//   - (nil, error): internal pattern drift (see ErrPatternDrift)
//
// ParseLine has no knowledge of preceding lines, so continuation lines
// are not merged.
func ParseLine(line string) (*Diagnostic, error) {
	return parser.Classify(line)
}

// Parse reads a complete log from r and returns its report.
//
// Lines that are not diagnostics are skipped. If reading fails part way the
// partial report is returned with Truncated set, and err is nil.
//
// Example:
//
//	report, err := texlog.Parse(os.Stdin)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(report)
func Parse(r io.Reader, opts ...ParseOption) (*Report, error) {
	cfg := applyParseOptions(opts)
	return parser.Parse(r, cfg.parserOptions())
}

// ParseFile parses the log at path.
func ParseFile(path string, opts ...ParseOption) (*Report, error) {
	if path == "" {
		return nil, errors.New("texlog: path required")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	report, err := Parse(file, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return report, nil
}

// FileReport pairs a log path with its report.
type FileReport struct {
	Path   string  `json:"path"`
	Report *Report `json:"report"`
}

// ParseFiles parses several logs concurrently, each in its own pass, and
// returns their reports in the order of paths. The first failure cancels
// the files not yet started and is returned.
//
// Example:
//
//	reports, err := texlog.ParseFiles(ctx, []string{"a.log", "b.log"},
//	    texlog.WithJobs(2),
//	)
func ParseFiles(ctx context.Context, paths []string, opts ...ParseOption) ([]FileReport, error) {
	cfg := applyParseOptions(opts)

	jobs := cfg.jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	results := make([]FileReport, len(paths))
	if len(paths) == 0 {
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			report, err := ParseFile(path, opts...)
			if err != nil {
				return err
			}
			results[i] = FileReport{Path: path, Report: report}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Diagnostics parses the log at path and returns an iterator over its
// diagnostics. Each diagnostic is yielded once its continuation lines have
// been merged. The file is opened lazily on first iteration.
//
// The iterator yields (Diagnostic, error) pairs. When an error occurs:
//   - File open errors: yields (Diagnostic{}, error) once and stops
//   - Read errors: yields the diagnostics seen so far, then the error
//   - Context cancellation: yields (Diagnostic{}, ctx.Err()) and stops
//
// Example:
//
//	for d, err := range texlog.Diagnostics(ctx, "main.log",
//	    texlog.WithIncludeKinds(texlog.KindError),
//	) {
//	    if err != nil {
//	        log.Printf("error: %v", err)
//	        break
//	    }
//	    fmt.Println(d.Message())
//	}
func Diagnostics(ctx context.Context, path string, opts ...ParseOption) iter.Seq2[Diagnostic, error] {
	if path == "" {
		return func(yield func(Diagnostic, error) bool) {
			yield(Diagnostic{}, errors.New("texlog: path required"))
		}
	}

	cfg := applyParseOptions(opts)

	return func(yield func(Diagnostic, error) bool) {
		file, err := os.Open(path)
		if err != nil {
			yield(Diagnostic{}, err)
			return
		}
		defer file.Close()

		stream := parser.NewStream(cfg.parserOptions())
		emit := func(ds []Diagnostic) bool {
			for _, d := range ds {
				if !cfg.filter.Allows(d.Kind) {
					continue
				}
				if !yield(d, nil) {
					return false
				}
			}
			return true
		}

		lines := parser.NewLineReader(file)
		for {
			line, err := lines.Next()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				if emit(stream.Flush()) {
					yield(Diagnostic{}, err)
				}
				return
			}
			if err := ctx.Err(); err != nil {
				yield(Diagnostic{}, err)
				return
			}

			sealed, err := stream.Push(line)
			if err != nil {
				yield(Diagnostic{}, err)
				return
			}
			if !emit(sealed) {
				return
			}
		}

		emit(stream.Flush())
	}
}

// FindLog returns the engine log for target: a .log file, a .tex source
// (looked up next to the source or in TEXLOG_OUTDIR), or a directory (its
// newest *.log). An empty target uses TEXLOG_LOG or the working directory.
func FindLog(target string) (string, error) {
	return logfinder.FindLogFile(target)
}

// LogPathFor returns where the engine writes the log for target without
// requiring it to exist yet.
func LogPathFor(target string) string {
	return logfinder.LogPathFor(target)
}
