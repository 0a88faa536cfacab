// Package parser implements the line classification engine for TeX engine logs.
//
// A pass feeds lines in log order to a Parser. Each line is first offered to
// the continuation merger, which folds "(component) text" lines into the
// message of the previous diagnostic, and otherwise to Classify. Matched
// lines are accumulated into a diag.Report; all other lines are dropped.
package parser

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode"

	"github.com/texlog/texlog-go/pkg/texlog/diag"
)

// ErrPatternDrift is returned when a recognizer matches but a capture group
// it guarantees is absent. It indicates a programming error, not bad input.
var ErrPatternDrift = errors.New("pattern drift")

// DefaultSeparator joins continuation text onto a message.
const DefaultSeparator = " "

// DefaultContextLines is the reserved trailing context line count.
const DefaultContextLines = 2

// Options configures a parse pass.
type Options struct {
	// Separator is inserted between a message and each continuation text.
	// An empty separator concatenates them directly.
	Separator string

	// ContextLines is the number of trailing context lines to retain.
	// Reserved: no lines are collected yet.
	ContextLines int

	// Logger receives debug and warning output. Nil disables logging.
	Logger *slog.Logger
}

// DefaultOptions returns the default pass configuration.
func DefaultOptions() Options {
	return Options{
		Separator:    DefaultSeparator,
		ContextLines: DefaultContextLines,
	}
}

// Action reports what a Parser did with a line.
type Action int

const (
	// Dropped means the line matched nothing and was discarded.
	Dropped Action = iota
	// Merged means the line continued the previous diagnostic's message.
	Merged
	// Appended means the line produced a new diagnostic.
	Appended
)

func (a Action) String() string {
	switch a {
	case Dropped:
		return "dropped"
	case Merged:
		return "merged"
	case Appended:
		return "appended"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Parser accumulates diagnostics for a single pass. It is not safe for
// concurrent use; run one Parser per log.
type Parser struct {
	report       *diag.Report
	sep          string
	contextLines int
	logger       *slog.Logger
	lineno       int
}

// New returns a Parser with an empty report.
func New(opts Options) *Parser {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Parser{
		report:       diag.NewReport(),
		sep:          opts.Separator,
		contextLines: opts.ContextLines,
		logger:       logger,
	}
}

// Report returns the report accumulated so far.
func (p *Parser) Report() *diag.Report {
	return p.report
}

// Lines returns the number of lines fed so far.
func (p *Parser) Lines() int {
	return p.lineno
}

// Feed processes the next line of the log.
func (p *Parser) Feed(line string) (Action, error) {
	p.lineno++

	if p.merge(line) {
		return Merged, nil
	}

	d, err := Classify(line)
	if err != nil {
		return Dropped, fmt.Errorf("line %d: %w", p.lineno, err)
	}
	if d == nil {
		return Dropped, nil
	}
	p.report.Add(*d)
	return Appended, nil
}

// merge folds line into the last diagnostic when it is a continuation of
// that diagnostic's component, e.g. "(hyperref)   removing `math shift'".
func (p *Parser) merge(line string) bool {
	last := p.report.Last()
	if last == nil {
		return false
	}
	name, ok := last.Component()
	if !ok {
		return false
	}

	prefix := "(" + name + ") "
	if !strings.HasPrefix(line, prefix) {
		return false
	}
	rest := line
	for strings.HasPrefix(rest, prefix) {
		rest = rest[len(prefix):]
	}
	last.Record.Extend(strings.TrimLeftFunc(rest, unicode.IsSpace), p.sep)
	return true
}

// Parse reads r line by line and returns the finished report.
//
// A read failure ends the pass early: the partial report is returned with
// Truncated set and a nil error. The only error returned is ErrPatternDrift.
func Parse(r io.Reader, opts Options) (*diag.Report, error) {
	p := New(opts)

	lines := NewLineReader(r)
	for {
		line, err := lines.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			p.report.Truncated = true
			p.logger.Warn("log read failed, report is partial",
				"line", p.lineno, "error", err)
			break
		}
		if _, err := p.Feed(line); err != nil {
			return nil, err
		}
	}

	p.logger.Debug("parsed log",
		"lines", p.lineno,
		"diagnostics", len(p.report.Diagnostics),
		"summary", p.report.String())

	return p.report, nil
}
