package texlog

import "github.com/texlog/texlog-go/pkg/texlog/diag"

// Re-export the data model for convenience.
// Users can import just "github.com/texlog/texlog-go/pkg/texlog"
// and use texlog.Report, texlog.KindError, etc.

// Diagnostic is one classified log entry.
type Diagnostic = diag.Diagnostic

// Record holds the fields extracted from a matched line.
type Record = diag.Record

// Report is the result of one parse pass.
type Report = diag.Report

// Kind is the kind of a diagnostic.
type Kind = diag.Kind

// Diagnostic kind constants.
const (
	KindError            = diag.Error
	KindWarning          = diag.Warning
	KindInfo             = diag.Info
	KindBadbox           = diag.Badbox
	KindMissingCitation  = diag.MissingCitation
	KindMissingReference = diag.MissingReference
)
