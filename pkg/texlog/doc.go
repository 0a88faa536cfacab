// Package texlog turns TeX and LaTeX engine logs into structured reports.
//
// This package allows you to:
//   - Count errors, warnings, badboxes, missing citations and references
//   - Inspect each diagnostic with the fields the engine printed
//   - Follow a log while a build runs and receive diagnostics as they appear
//
// # Basic Usage
//
// To parse a finished build:
//
//	report, err := texlog.ParseFile("main.log")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(report) // Errors: 1, Warnings: 3, Badboxes: 2
//
//	for _, d := range report.Diagnostics {
//	    switch d.Kind {
//	    case texlog.KindError:
//	        fmt.Println("error:", d.Message())
//	    case texlog.KindMissingCitation:
//	        fmt.Println("undefined citation:", d.Label)
//	    }
//	}
//
// To classify a single line:
//
//	d, err := texlog.ParseLine(line)
//	if err != nil {
//	    log.Printf("parse error: %v", err)
//	} else if d != nil {
//	    // process diagnostic
//	}
//
// # Continuation Lines
//
// Packages wrap long messages onto lines prefixed with "(name)". These are
// folded into the message of the diagnostic they continue, joined by a single
// space unless WithSeparator says otherwise. Streaming APIs hand out a
// diagnostic only after its continuation lines have been merged.
package texlog
