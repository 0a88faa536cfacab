package parser

import "github.com/texlog/texlog-go/pkg/texlog/diag"

// Stream wraps a Parser for incremental consumers such as a file follower.
//
// A diagnostic is released only once it is sealed: when a later line
// produces a new diagnostic, or when Flush is called. Continuation lines
// are therefore merged before the diagnostic is handed out. Released
// diagnostics are copies and may be shared across goroutines.
type Stream struct {
	p      *Parser
	sealed int
}

// NewStream returns a Stream over a fresh Parser.
func NewStream(opts Options) *Stream {
	return &Stream{p: New(opts)}
}

// Push feeds line and returns the diagnostics it sealed, if any.
func (s *Stream) Push(line string) ([]diag.Diagnostic, error) {
	action, err := s.p.Feed(line)
	if err != nil {
		return nil, err
	}
	if action != Appended {
		return nil, nil
	}
	all := s.p.report.Diagnostics
	return s.release(len(all) - 1), nil
}

// Flush seals and returns every diagnostic not yet released.
func (s *Stream) Flush() []diag.Diagnostic {
	return s.release(len(s.p.report.Diagnostics))
}

// Report returns the report accumulated so far.
func (s *Stream) Report() *diag.Report {
	return s.p.Report()
}

// Lines returns the number of lines pushed so far.
func (s *Stream) Lines() int {
	return s.p.Lines()
}

func (s *Stream) release(upto int) []diag.Diagnostic {
	if upto <= s.sealed {
		return nil
	}
	out := make([]diag.Diagnostic, 0, upto-s.sealed)
	for _, d := range s.p.report.Diagnostics[s.sealed:upto] {
		out = append(out, d.Clone())
	}
	s.sealed = upto
	return out
}
