package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/texlog/texlog-go/pkg/texlog/diag"
)

// parseLine runs a one-line pass, the way a log with a single line would be parsed.
func parseLine(t *testing.T, line string) *diag.Report {
	t.Helper()
	p := New(DefaultOptions())
	_, err := p.Feed(line)
	require.NoError(t, err)
	return p.Report()
}

func TestClassify_Badboxes(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		fields map[string]string
	}{
		{
			name: "underfull vbox while output active",
			line: `Underfull \vbox (badness 1234) has occurred while \output is active []`,
			fields: map[string]string{
				"type": "Under", "direction": "v", "by": "1234",
			},
		},
		{
			name: "underfull vbox while output active with page",
			line: `Underfull \vbox (badness 10000) has occurred while \output is active [38]`,
			fields: map[string]string{
				"type": "Under", "direction": "v", "by": "10000", "page": "38",
			},
		},
		{
			name: "underfull vbox detected at line",
			line: `Underfull \vbox (badness 10000) detected at line 19`,
			fields: map[string]string{
				"type": "Under", "direction": "v", "by": "10000", "line": "19",
			},
		},
		{
			name: "underfull hbox at lines",
			line: `Underfull \hbox (badness 1234) in paragraph at lines 9--10`,
			fields: map[string]string{
				"type": "Under", "direction": "h", "by": "1234", "start_line": "9", "end_line": "10",
			},
		},
		{
			name: "overfull vbox while output active",
			line: `Overfull \vbox (19.05511pt too high) has occurred while \output is active []`,
			fields: map[string]string{
				"type": "Over", "direction": "v", "by": "19.05511pt",
			},
		},
		{
			name: "overfull hbox in paragraph",
			line: `Overfull \hbox (54.95697pt too wide) in paragraph at lines 397--397`,
			fields: map[string]string{
				"type": "Over", "direction": "h", "by": "54.95697pt", "start_line": "397", "end_line": "397",
			},
		},
		{
			name: "overfull hbox in alignment",
			line: `Overfull \hbox (3.2pt too wide) in alignment at lines 41--58`,
			fields: map[string]string{
				"type": "Over", "direction": "h", "by": "3.2pt", "start_line": "41", "end_line": "58",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := parseLine(t, tt.line)

			assert.Equal(t, 1, r.Badboxes)
			assert.Zero(t, r.Errors)
			assert.Zero(t, r.Warnings)
			assert.Zero(t, r.Info)
			require.Len(t, r.Diagnostics, 1)

			d := r.Diagnostics[0]
			assert.Equal(t, diag.Badbox, d.Kind)
			assert.Equal(t, tt.line, d.Record.Full)
			assert.Equal(t, tt.fields, d.Record.Fields)
			assert.Empty(t, d.Record.ContextLines)
		})
	}
}

func TestClassify_Errors(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		fields map[string]string
	}{
		{
			name: "latex file not found",
			line: "! LaTeX Error: File `foobar.sty' not found.",
			fields: map[string]string{
				"type": "LaTeX", "message": "File `foobar.sty' not found.",
			},
		},
		{
			name:   "undefined control sequence",
			line:   "! Undefined control sequence.",
			fields: map[string]string{"message": "Undefined control sequence."},
		},
		{
			name:   "too many braces",
			line:   "! Too many }'s.",
			fields: map[string]string{"message": "Too many }'s."},
		},
		{
			name:   "missing math shift",
			line:   "! Missing $ inserted",
			fields: map[string]string{"message": "Missing $ inserted"},
		},
		{
			name: "package error",
			line: "! Package babel Error: Unknown option `latin'. Either you misspelled it",
			fields: map[string]string{
				"type": "Package", "package": "babel", "message": "Unknown option `latin'. Either you misspelled it",
			},
		},
		{
			name: "pdftex error with extra",
			line: `! pdfTeX error (\pdfsetmatrix): Unrecognized format..`,
			fields: map[string]string{
				"type": "pdfTeX", "extra": `\pdfsetmatrix`, "message": "Unrecognized format..",
			},
		},
		{
			name: "class error",
			line: `! Class article Error: Unrecognized argument for \macro.`,
			fields: map[string]string{
				"type": "Class", "class": "article", "message": `Unrecognized argument for \macro.`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := parseLine(t, tt.line)

			assert.Equal(t, 1, r.Errors)
			require.Len(t, r.Diagnostics, 1)
			d := r.Diagnostics[0]
			assert.Equal(t, diag.Error, d.Kind)
			assert.Equal(t, tt.line, d.Record.Full)
			assert.Equal(t, tt.fields, d.Record.Fields)
		})
	}
}

func TestClassify_Warnings(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		fields map[string]string
	}{
		{
			name: "latex font warning",
			line: "LaTeX Font Warning: Font shape `OT1/cmr/bx/sc' undefined",
			fields: map[string]string{
				"type": "LaTeX", "component": "Font", "message": "Font shape `OT1/cmr/bx/sc' undefined",
			},
		},
		{
			name: "package warning",
			line: "Package hyperref Warning: Draft mode on.",
			fields: map[string]string{
				"type": "Package", "package": "hyperref", "message": "Draft mode on.",
			},
		},
		{
			name: "class warning",
			line: "Class article Warning: Unknown option `foo'.",
			fields: map[string]string{
				"type": "Class", "class": "article", "message": "Unknown option `foo'.",
			},
		},
		{
			name: "lowercase keyword with extra",
			line: `pdfTeX warning (\pdffontattr): font not found`,
			fields: map[string]string{
				"type": "pdfTeX", "extra": `\pdffontattr`, "message": "font not found",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := parseLine(t, tt.line)

			assert.Equal(t, 1, r.Warnings)
			assert.Zero(t, r.MissingReferences)
			assert.Zero(t, r.MissingCitations)
			require.Len(t, r.Diagnostics, 1)
			assert.Equal(t, diag.Warning, r.Diagnostics[0].Kind)
			assert.Equal(t, tt.fields, r.Diagnostics[0].Record.Fields)
		})
	}
}

func TestClassify_InfoBeforeWarning(t *testing.T) {
	r := parseLine(t, "Package hyperref Info: Option `colorlinks' set `true' on input line 12.")

	assert.Equal(t, 1, r.Info)
	assert.Zero(t, r.Warnings)
	require.Len(t, r.Diagnostics, 1)
	assert.Equal(t, diag.Info, r.Diagnostics[0].Kind)
	assert.Equal(t, "hyperref", r.Diagnostics[0].Record.Fields["package"])
}

func TestClassify_MissingReference(t *testing.T) {
	r := parseLine(t, "LaTeX Warning: Reference `not present' on page 1 undefined on input line 7.")

	assert.Equal(t, 1, r.MissingReferences)
	assert.Zero(t, r.Warnings)
	require.Len(t, r.Diagnostics, 1)
	assert.Equal(t, diag.MissingReference, r.Diagnostics[0].Kind)
	assert.Equal(t, "not present", r.Diagnostics[0].Label)
	assert.Nil(t, r.Diagnostics[0].Record)
}

func TestClassify_MissingCitation(t *testing.T) {
	r := parseLine(t, "LaTeX Warning: Citation `X' on page 1 undefined on input line 7.")

	assert.Equal(t, 1, r.MissingCitations)
	assert.Zero(t, r.Warnings)
	require.Len(t, r.Diagnostics, 1)
	assert.Equal(t, diag.MissingCitation, r.Diagnostics[0].Kind)
	assert.Equal(t, "X", r.Diagnostics[0].Label)
}

func TestClassify_RecodingOnlyForWarnings(t *testing.T) {
	r := parseLine(t, "! LaTeX Error: Reference `x' on page 1 undefined on input line 7.")
	assert.Equal(t, 1, r.Errors)
	assert.Zero(t, r.MissingReferences)

	r = parseLine(t, "LaTeX Info: Citation `x' on page 1 undefined on input line 7.")
	assert.Equal(t, 1, r.Info)
	assert.Zero(t, r.MissingCitations)
}

func TestClassify_Unrecognized(t *testing.T) {
	lines := []string{
		"",
		"This is pdfTeX, Version 3.141592653-2.6-1.40.25 (TeX Live 2023) (preloaded format=pdflatex)",
		"(./main.aux)",
		"[1{/usr/local/texlive/2023/texmf-var/fonts/map/pdftex/updmap/pdftex.map}]",
		"Output written on main.pdf (12 pages, 345678 bytes).",
		"Overfull \\hbox (1.0pt too wide) somewhere else",
	}

	for _, line := range lines {
		d, err := Classify(line)
		require.NoError(t, err)
		assert.Nil(t, d, "line %q", line)
	}
}

func TestMatch_MustReportsDrift(t *testing.T) {
	m := warningPattern.find("Package foo Warning: bar")
	require.NotNil(t, m)

	_, err := m.must(groupBadness)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPatternDrift)

	_, err = m.must(groupExtra)
	assert.ErrorIs(t, err, ErrPatternDrift)

	v, err := m.must(groupName)
	require.NoError(t, err)
	assert.Equal(t, "foo", v)
}
