package diag

import "fmt"

// Field names used in Record.Fields.
const (
	FieldType      = "type"
	FieldComponent = "component"
	FieldPackage   = "package"
	FieldClass     = "class"
	FieldExtra     = "extra"
	FieldMessage   = "message"
	FieldDirection = "direction"
	FieldBy        = "by"
	FieldLine      = "line"
	FieldStartLine = "start_line"
	FieldEndLine   = "end_line"
	FieldPage      = "page"
)

// componentFields lists the fields identifying the emitting component,
// in lookup order. At most one of them is set on a record.
var componentFields = []string{FieldComponent, FieldPackage, FieldClass}

// Record is the structured extraction of one matched log line.
type Record struct {
	// Full is the raw matched text.
	Full string `json:"full"`

	// Fields maps field names (see the Field constants) to values.
	Fields map[string]string `json:"fields"`

	// ContextLines is reserved for trailing context and is currently never populated.
	ContextLines []string `json:"context_lines"`
}

// NewRecord returns a record for the matched text with no fields set.
func NewRecord(full string) *Record {
	return &Record{
		Full:         full,
		Fields:       make(map[string]string),
		ContextLines: []string{},
	}
}

// Component returns the name of the package, class or engine component
// that emitted the record.
func (r *Record) Component() (string, bool) {
	for _, key := range componentFields {
		if name, ok := r.Fields[key]; ok {
			return name, true
		}
	}
	return "", false
}

// Message returns the free-text message, or "" if none was extracted.
func (r *Record) Message() string {
	return r.Fields[FieldMessage]
}

// Extend appends continuation text to the message, joined by sep.
// A record without a message takes text as its message.
func (r *Record) Extend(text, sep string) {
	current, ok := r.Fields[FieldMessage]
	if !ok {
		r.Fields[FieldMessage] = text
		return
	}
	r.Fields[FieldMessage] = current + sep + text
}

// Diagnostic is one classified log entry.
//
// It is a closed union discriminated by Kind: Error, Warning, Info and
// Badbox carry a Record; MissingCitation and MissingReference carry only
// a Label. The kind never changes after creation.
type Diagnostic struct {
	// Kind is the diagnostic kind.
	Kind Kind `json:"kind"`

	// Record holds the extracted fields (record kinds only).
	Record *Record `json:"record,omitempty"`

	// Label is the undefined citation key or reference label (label kinds only).
	Label string `json:"label,omitempty"`
}

// NewRecordDiagnostic wraps rec in a diagnostic of a record kind.
// It panics if kind does not carry a record.
func NewRecordDiagnostic(kind Kind, rec *Record) Diagnostic {
	if !kind.HasRecord() {
		panic(fmt.Sprintf("diag: kind %q does not carry a record", kind))
	}
	return Diagnostic{Kind: kind, Record: rec}
}

// NewMissingCitation returns a MissingCitation diagnostic for label.
func NewMissingCitation(label string) Diagnostic {
	return Diagnostic{Kind: MissingCitation, Label: label}
}

// NewMissingReference returns a MissingReference diagnostic for label.
func NewMissingReference(label string) Diagnostic {
	return Diagnostic{Kind: MissingReference, Label: label}
}

// Component returns the emitting component of an Error, Warning or Info
// diagnostic. Badboxes and label kinds have no component identity.
func (d Diagnostic) Component() (string, bool) {
	switch d.Kind {
	case Error, Warning, Info:
		if d.Record == nil {
			return "", false
		}
		return d.Record.Component()
	default:
		return "", false
	}
}

// Message returns the record message, or "" for label kinds.
func (d Diagnostic) Message() string {
	if d.Record == nil {
		return ""
	}
	return d.Record.Message()
}

// String renders the diagnostic for display.
func (d Diagnostic) String() string {
	switch d.Kind {
	case MissingCitation:
		return "Missing citation: " + d.Label
	case MissingReference:
		return "Missing reference: " + d.Label
	default:
		if d.Record == nil {
			return ""
		}
		return d.Record.Full
	}
}

// Clone returns a deep copy that shares no state with d.
func (d Diagnostic) Clone() Diagnostic {
	if d.Record == nil {
		return d
	}
	rec := &Record{
		Full:         d.Record.Full,
		Fields:       make(map[string]string, len(d.Record.Fields)),
		ContextLines: append([]string{}, d.Record.ContextLines...),
	}
	for k, v := range d.Record.Fields {
		rec.Fields[k] = v
	}
	d.Record = rec
	return d
}
