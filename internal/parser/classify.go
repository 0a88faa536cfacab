package parser

import (
	"github.com/texlog/texlog-go/pkg/texlog/diag"
)

// Classify turns one log line into a diagnostic.
//
// Recognizers are tried in the order Info, Badbox, Warning, Error and the
// first match wins. Info precedes Warning because both share one shape, and
// Error goes last because a bare "! message" matches almost any "! " line.
// Warnings about undefined citations or references are recoded into
// MissingCitation or MissingReference.
//
// Return values:
//   - (*Diagnostic, nil): the line was classified
//   - (nil, nil): the line matches no recognizer (not an error)
//   - (nil, error): a recognizer matched without a group it guarantees
func Classify(line string) (*diag.Diagnostic, error) {
	if m := infoPattern.find(line); m != nil {
		return extractGeneric(diag.Info, m)
	}
	if m := badboxPattern.find(line); m != nil {
		return extractBadbox(m)
	}
	if m := warningPattern.find(line); m != nil {
		d, err := extractGeneric(diag.Warning, m)
		if err != nil {
			return nil, err
		}
		return recodeWarning(d)
	}
	if m := errorPattern.find(line); m != nil {
		return extractError(m)
	}
	return nil, nil
}

// extractGeneric builds the record shared by the Info, Warning and Error shapes.
func extractGeneric(kind diag.Kind, m *match) (*diag.Diagnostic, error) {
	rec := diag.NewRecord(m.full())

	typeName, err := m.must(groupType)
	if err != nil {
		return nil, err
	}
	rec.Fields[diag.FieldType] = typeName

	if name, ok := m.group(groupName); ok {
		rec.Fields[componentKey(typeName)] = name
	}
	if extra, ok := m.group(groupExtra); ok {
		rec.Fields[diag.FieldExtra] = extra
	}

	message, err := m.must(groupMessage)
	if err != nil {
		return nil, err
	}
	rec.Fields[diag.FieldMessage] = message

	d := diag.NewRecordDiagnostic(kind, rec)
	return &d, nil
}

// componentKey picks the field naming the emitter for a given type word.
func componentKey(typeName string) string {
	switch typeName {
	case "Package":
		return diag.FieldPackage
	case "Class":
		return diag.FieldClass
	default:
		return diag.FieldComponent
	}
}

// extractError handles both named and bare TeX errors.
// A bare error carries only the text after "! " as its message.
func extractError(m *match) (*diag.Diagnostic, error) {
	if bare, ok := m.group(groupBare); ok {
		rec := diag.NewRecord(m.full())
		rec.Fields[diag.FieldMessage] = bare
		d := diag.NewRecordDiagnostic(diag.Error, rec)
		return &d, nil
	}
	return extractGeneric(diag.Error, m)
}

func extractBadbox(m *match) (*diag.Diagnostic, error) {
	rec := diag.NewRecord(m.full())

	boxType, err := m.must(groupType)
	if err != nil {
		return nil, err
	}
	direction, err := m.must(groupDirection)
	if err != nil {
		return nil, err
	}
	rec.Fields[diag.FieldType] = boxType
	rec.Fields[diag.FieldDirection] = direction

	// Overfull boxes report a size, underfull boxes a badness.
	byGroup := groupBadness
	if boxType == "Over" {
		byGroup = groupSize
	}
	by, err := m.must(byGroup)
	if err != nil {
		return nil, err
	}
	rec.Fields[diag.FieldBy] = by

	if line, ok := m.group(groupLine); ok {
		rec.Fields[diag.FieldLine] = line
	} else if start, ok := m.group(groupStartLine); ok {
		end, err := m.must(groupEndLine)
		if err != nil {
			return nil, err
		}
		rec.Fields[diag.FieldStartLine] = start
		rec.Fields[diag.FieldEndLine] = end
	}

	if page, ok := m.group(groupPage); ok {
		rec.Fields[diag.FieldPage] = page
	}

	d := diag.NewRecordDiagnostic(diag.Badbox, rec)
	return &d, nil
}

// recodeWarning replaces an undefined citation/reference warning by its
// dedicated label diagnostic. Other warnings are returned unchanged.
func recodeWarning(d *diag.Diagnostic) (*diag.Diagnostic, error) {
	m := missingPattern.find(d.Message())
	if m == nil {
		return d, nil
	}

	what, err := m.must(groupType)
	if err != nil {
		return nil, err
	}
	label, err := m.must(groupLabel)
	if err != nil {
		return nil, err
	}

	var out diag.Diagnostic
	if what == "Citation" {
		out = diag.NewMissingCitation(label)
	} else {
		out = diag.NewMissingReference(label)
	}
	return &out, nil
}
