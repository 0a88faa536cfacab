package texlog

import (
	"github.com/texlog/texlog-go/internal/logfinder"
	"github.com/texlog/texlog-go/internal/parser"
)

// Sentinel errors returned by this package.
var (
	// ErrLogNotFound is returned when no log file exists for a target.
	ErrLogNotFound = logfinder.ErrLogNotFound

	// ErrNoLogFiles is returned when a directory contains no *.log files.
	ErrNoLogFiles = logfinder.ErrNoLogFiles

	// ErrPatternDrift is returned when a recognizer matched without a capture
	// group it guarantees. It indicates a bug in this package, not bad input.
	ErrPatternDrift = parser.ErrPatternDrift
)
