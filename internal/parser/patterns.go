package parser

import (
	"fmt"
	"regexp"
)

// Named capture groups shared by the recognizers.
const (
	groupType      = "type"
	groupName      = "name"
	groupExtra     = "extra"
	groupMessage   = "message"
	groupBare      = "bare"
	groupDirection = "direction"
	groupBadness   = "badness"
	groupSize      = "size"
	groupStartLine = "start"
	groupEndLine   = "end"
	groupLine      = "line"
	groupPage      = "page"
	groupLabel     = "label"
)

// Compiled once at package initialization and shared read-only by every pass.
var (
	// errorPattern matches "! LaTeX Error: ...", "! Package foo Error: ...",
	// "! pdfTeX error (\cmd): ..." and bare TeX errors such as
	// "! Undefined control sequence.".
	errorPattern = newRecognizer("error",
		`^(?:! (?P<type>(?:La|pdf)TeX|Package|Class)(?: (?P<name>\w+))? [eE]rror(?: \((?P<extra>\\?\w+)\))?: (?P<message>.*)|! (?P<bare>.*))`)

	// warningPattern matches "LaTeX Font Warning: ...", "Package hyperref Warning: ...".
	warningPattern = newRecognizer("warning",
		`^(?P<type>(?:La|pdf)TeX|Package|Class)(?: (?P<name>\w+))? [wW]arning(?: \((?P<extra>\\?\w+)\))?: (?P<message>.*)`)

	// infoPattern has the warning shape with "Info" as the keyword.
	infoPattern = newRecognizer("info",
		`^(?P<type>(?:La|pdf)TeX|Package|Class)(?: (?P<name>\w+))? [iI]nfo(?: \((?P<extra>\\?\w+)\))?: (?P<message>.*)`)

	// badboxPattern matches overfull/underfull box reports with their location clause.
	badboxPattern = newRecognizer("badbox",
		`^(?P<type>Over|Under)full \\(?P<direction>[hv])box \((?:badness (?P<badness>\d+)|(?P<size>\d+(?:\.\d+)?pt) too \w+)\) `+
			`(?:(?:in paragraph|in alignment|detected) (?:at lines (?P<start>\d+)--(?P<end>\d+)|at line (?P<line>\d+))`+
			`|has occurred while \\output is active \[(?P<page>\d+)?\])`)

	// missingPattern is applied to the message of a classified warning.
	missingPattern = newRecognizer("missing reference",
		"^(?P<type>Citation|Reference) `(?P<label>[^']+)' on page \\d+ undefined on input line \\d+.")
)

// recognizer is a compiled line-shape pattern with named capture groups.
type recognizer struct {
	name string
	re   *regexp.Regexp
}

func newRecognizer(name, expr string) *recognizer {
	return &recognizer{name: name, re: regexp.MustCompile(expr)}
}

// match holds the capture positions of one successful recognizer match.
type match struct {
	rz   *recognizer
	text string
	loc  []int
}

// find returns the match of line, or nil if the recognizer does not apply.
func (rz *recognizer) find(line string) *match {
	loc := rz.re.FindStringSubmatchIndex(line)
	if loc == nil {
		return nil
	}
	return &match{rz: rz, text: line, loc: loc}
}

// full returns the entire matched text.
func (m *match) full() string {
	return m.text[m.loc[0]:m.loc[1]]
}

// group returns the text of an optional named group and whether it participated.
func (m *match) group(name string) (string, bool) {
	i := m.rz.re.SubexpIndex(name)
	if i < 0 || m.loc[2*i] < 0 {
		return "", false
	}
	return m.text[m.loc[2*i]:m.loc[2*i+1]], true
}

// must returns a group that the pattern guarantees to be present.
// A missing group means extraction and pattern definitions disagree.
func (m *match) must(name string) (string, error) {
	v, ok := m.group(name)
	if !ok {
		return "", fmt.Errorf("%w: %s pattern has no %q group for %q", ErrPatternDrift, m.rz.name, name, m.full())
	}
	return v, nil
}
