// Package diag defines the diagnostic data model for TeX log parsing.
//
// This package is separated from the main texlog package to avoid import cycles
// between pkg/texlog and internal/parser.
package diag

import (
	"sort"
	"strings"
)

// Kind represents the kind of a classified log diagnostic.
type Kind string

const (
	// Error is a fatal engine, package or class error ("! ..." lines).
	Error Kind = "error"

	// Warning is an engine, package or class warning.
	Warning Kind = "warning"

	// Info is an informational engine, package or class message.
	Info Kind = "info"

	// Badbox is an overfull or underfull box report.
	Badbox Kind = "badbox"

	// MissingCitation is an undefined citation, recoded from a warning.
	MissingCitation Kind = "missing_citation"

	// MissingReference is an undefined cross-reference, recoded from a warning.
	MissingReference Kind = "missing_reference"
)

// allKinds is the canonical list of all diagnostic kinds.
var allKinds = []Kind{Error, Warning, Info, Badbox, MissingCitation, MissingReference}

// Kinds returns all diagnostic kinds in report order.
func Kinds() []Kind {
	out := make([]Kind, len(allKinds))
	copy(out, allKinds)
	return out
}

// KindNames returns a sorted list of all valid kind names.
func KindNames() []string {
	names := make([]string, len(allKinds))
	for i, k := range allKinds {
		names[i] = string(k)
	}
	sort.Strings(names)
	return names
}

var kindByName = func() map[string]Kind {
	m := make(map[string]Kind, len(allKinds))
	for _, k := range allKinds {
		m[string(k)] = k
	}
	return m
}()

// ParseKind converts a string to Kind if valid.
// It is case-insensitive and trims leading/trailing whitespace.
func ParseKind(name string) (Kind, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	k, ok := kindByName[name]
	return k, ok
}

// HasRecord reports whether diagnostics of this kind wrap a Record.
// MissingCitation and MissingReference carry only a label.
func (k Kind) HasRecord() bool {
	switch k {
	case Error, Warning, Info, Badbox:
		return true
	default:
		return false
	}
}
