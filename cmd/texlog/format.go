package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/term"

	"github.com/texlog/texlog-go/pkg/texlog"
)

// ValidFormats lists the output formats accepted by parse.
var ValidFormats = map[string]bool{
	"auto":    true,
	"pretty":  true,
	"jsonl":   true,
	"json":    true,
	"summary": true,
	"msgpack": true,
}

// ValidTailFormats lists the output formats accepted by tail, which prints
// diagnostics one at a time.
var ValidTailFormats = map[string]bool{
	"auto":   true,
	"pretty": true,
	"jsonl":  true,
}

var (
	headerColor  = color.New(color.Bold)
	summaryColor = color.New(color.Bold)
	kindColors   = map[texlog.Kind]*color.Color{
		texlog.KindError:            color.New(color.FgRed, color.Bold),
		texlog.KindWarning:          color.New(color.FgYellow),
		texlog.KindInfo:             color.New(color.FgCyan),
		texlog.KindBadbox:           color.New(color.FgMagenta),
		texlog.KindMissingCitation:  color.New(color.FgBlue),
		texlog.KindMissingReference: color.New(color.FgBlue),
	}
)

// formatNames returns the sorted names in formats.
func formatNames(formats map[string]bool) []string {
	names := make([]string, 0, len(formats))
	for name := range formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// isTerminal reports whether f is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// resolveFormat turns "auto" into pretty on a terminal and jsonl otherwise.
func resolveFormat(format string, tty bool) string {
	if format != "auto" {
		return format
	}
	if tty {
		return "pretty"
	}
	return "jsonl"
}

// selection is the kind filter applied to printed diagnostics.
// Counters are always printed from the complete report.
type selection struct {
	include []texlog.Kind
	exclude []texlog.Kind
}

func (s selection) apply(ds []texlog.Diagnostic) []texlog.Diagnostic {
	return texlog.Select(ds, s.include, s.exclude)
}

// filtered returns copies of reports whose diagnostics pass sel.
func (s selection) filtered(reports []texlog.FileReport) []texlog.FileReport {
	out := make([]texlog.FileReport, len(reports))
	for i, fr := range reports {
		r := *fr.Report
		r.Diagnostics = s.apply(r.Diagnostics)
		out[i] = texlog.FileReport{Path: fr.Path, Report: &r}
	}
	return out
}

// fileDiagnostic is one line of jsonl output.
type fileDiagnostic struct {
	File string `json:"file"`
	texlog.Diagnostic
}

// OutputReports writes reports in the given (resolved) format.
func OutputReports(format string, reports []texlog.FileReport, sel selection, w io.Writer) error {
	switch format {
	case "jsonl":
		for _, fr := range reports {
			for _, d := range sel.apply(fr.Report.Diagnostics) {
				if err := OutputJSONL(fr.Path, d, w); err != nil {
					return err
				}
			}
		}
		return nil
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(sel.filtered(reports))
	case "msgpack":
		return OutputMsgpack(sel.filtered(reports), w)
	case "summary":
		return OutputSummary(reports, w)
	case "pretty":
		for i, fr := range reports {
			if len(reports) > 1 {
				if i > 0 {
					fmt.Fprintln(w)
				}
				headerColor.Fprintf(w, "==> %s <==\n", fr.Path)
			}
			for _, d := range sel.apply(fr.Report.Diagnostics) {
				if err := OutputPretty(d, w); err != nil {
					return err
				}
			}
			if err := outputSummaryLine(fr.Report, w); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// OutputDiagnostic writes a single diagnostic in jsonl or pretty format.
func OutputDiagnostic(format, path string, d texlog.Diagnostic, w io.Writer) error {
	switch format {
	case "jsonl":
		return OutputJSONL(path, d, w)
	case "pretty":
		return OutputPretty(d, w)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// OutputJSONL writes d as one JSON object tagged with its file.
func OutputJSONL(path string, d texlog.Diagnostic, w io.Writer) error {
	data, err := json.Marshal(fileDiagnostic{File: path, Diagnostic: d})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// OutputPretty writes d as one human-readable line, colored by kind.
func OutputPretty(d texlog.Diagnostic, w io.Writer) error {
	c, ok := kindColors[d.Kind]
	if !ok {
		c = color.New(color.Reset)
	}
	_, err := fmt.Fprintf(w, "%s %s\n", c.Sprintf("%-17s", d.Kind), describe(d))
	return err
}

// describe renders the text of d for pretty output.
func describe(d texlog.Diagnostic) string {
	switch d.Kind {
	case texlog.KindError, texlog.KindWarning, texlog.KindInfo:
		msg := d.Message()
		if msg == "" {
			return d.String()
		}
		if name, ok := d.Component(); ok {
			return name + ": " + msg
		}
		return msg
	default:
		return d.String()
	}
}

// OutputSummary writes one summary line per report.
func OutputSummary(reports []texlog.FileReport, w io.Writer) error {
	for _, fr := range reports {
		if _, err := fmt.Fprintf(w, "%s: %s\n", fr.Path, summaryText(fr.Report)); err != nil {
			return err
		}
	}
	return nil
}

func outputSummaryLine(r *texlog.Report, w io.Writer) error {
	_, err := summaryColor.Fprintln(w, summaryText(r))
	return err
}

func summaryText(r *texlog.Report) string {
	s := r.String()
	if r.Truncated {
		s += " (truncated)"
	}
	return s
}

// OutputMsgpack writes reports as a single MessagePack array, using the
// same field names as the JSON output.
func OutputMsgpack(reports []texlog.FileReport, w io.Writer) error {
	enc := msgpack.NewEncoder(w)
	enc.SetCustomStructTag("json")
	return enc.Encode(reports)
}
