package diag

import "fmt"

// Report is the aggregate result of one parse pass.
//
// Each counter equals the number of diagnostics of its kind. Missing
// citations and references are counted only by their own counters,
// never as warnings.
type Report struct {
	Errors            int `json:"errors"`
	Warnings          int `json:"warnings"`
	Badboxes          int `json:"badboxes"`
	Info              int `json:"info"`
	MissingReferences int `json:"missing_references"`
	MissingCitations  int `json:"missing_citations"`

	// Diagnostics holds every classified entry in log order.
	Diagnostics []Diagnostic `json:"diagnostics"`

	// Truncated is set when the line source failed before end of input.
	Truncated bool `json:"truncated,omitempty"`
}

// NewReport returns an empty report.
func NewReport() *Report {
	return &Report{Diagnostics: []Diagnostic{}}
}

// Add appends d and increments the counter for its kind.
func (r *Report) Add(d Diagnostic) {
	switch d.Kind {
	case Error:
		r.Errors++
	case Warning:
		r.Warnings++
	case Info:
		r.Info++
	case Badbox:
		r.Badboxes++
	case MissingCitation:
		r.MissingCitations++
	case MissingReference:
		r.MissingReferences++
	default:
		panic(fmt.Sprintf("diag: unknown kind %q", d.Kind))
	}
	r.Diagnostics = append(r.Diagnostics, d)
}

// Last returns the most recently added diagnostic, addressed by index so
// callers may mutate its record in place. It returns nil for an empty report.
func (r *Report) Last() *Diagnostic {
	if len(r.Diagnostics) == 0 {
		return nil
	}
	return &r.Diagnostics[len(r.Diagnostics)-1]
}

// Count returns the counter for kind.
func (r *Report) Count(kind Kind) int {
	switch kind {
	case Error:
		return r.Errors
	case Warning:
		return r.Warnings
	case Info:
		return r.Info
	case Badbox:
		return r.Badboxes
	case MissingCitation:
		return r.MissingCitations
	case MissingReference:
		return r.MissingReferences
	default:
		return 0
	}
}

// String returns the one-line summary "Errors: E, Warnings: W, Badboxes: B".
func (r *Report) String() string {
	return fmt.Sprintf("Errors: %d, Warnings: %d, Badboxes: %d", r.Errors, r.Warnings, r.Badboxes)
}
