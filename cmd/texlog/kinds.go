package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/texlog/texlog-go/pkg/texlog"
	"github.com/texlog/texlog-go/pkg/texlog/diag"
)

// kindDescriptions is shown by the kinds command.
var kindDescriptions = map[texlog.Kind]string{
	texlog.KindError:            `engine, package or class error ("! ..." lines)`,
	texlog.KindWarning:          "engine, package or class warning",
	texlog.KindInfo:             "engine, package or class info message",
	texlog.KindBadbox:           "overfull or underfull \\hbox or \\vbox",
	texlog.KindMissingCitation:  "undefined citation key",
	texlog.KindMissingReference: "undefined cross-reference label",
}

var kindsCmd = &cobra.Command{
	Use:   "kinds",
	Short: "List diagnostic kinds",
	Long: `List the diagnostic kinds accepted by --include-kinds, --exclude-kinds
and --fail-on.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		for _, name := range ValidKindNames() {
			k, _ := diag.ParseKind(name)
			fmt.Fprintf(out, "%-18s %s\n", name, kindDescriptions[k])
		}
	},
}

// ValidKindNames returns a sorted list of valid kind names.
// Delegates to diag.KindNames() as the single source of truth.
func ValidKindNames() []string {
	return diag.KindNames()
}

// NormalizeKinds converts CLI string values to a texlog.Kind slice.
// It handles case-insensitivity, whitespace trimming, and duplicate removal.
func NormalizeKinds(values []string) ([]texlog.Kind, error) {
	if len(values) == 0 {
		return nil, nil
	}

	result := make([]texlog.Kind, 0, len(values))
	seen := make(map[texlog.Kind]struct{})

	for _, raw := range values {
		if strings.TrimSpace(raw) == "" {
			return nil, fmt.Errorf("empty kind provided (input: %q); valid kinds: %s", raw, strings.Join(ValidKindNames(), ", "))
		}

		k, ok := diag.ParseKind(raw)
		if !ok {
			return nil, fmt.Errorf("unknown kind %q (valid: %s)", raw, strings.Join(ValidKindNames(), ", "))
		}

		if _, dup := seen[k]; dup {
			continue // ignore duplicates silently
		}
		seen[k] = struct{}{}
		result = append(result, k)
	}

	return result, nil
}

// RejectOverlap returns an error if any kind is in both includes and excludes.
func RejectOverlap(includes, excludes []texlog.Kind) error {
	ex := make(map[texlog.Kind]struct{}, len(excludes))
	for _, k := range excludes {
		ex[k] = struct{}{}
	}
	for _, k := range includes {
		if _, ok := ex[k]; ok {
			return fmt.Errorf("kind %q cannot be both included and excluded", k)
		}
	}
	return nil
}

// kindFilters normalizes include and exclude kinds and rejects overlap.
func kindFilters(include, exclude []string) ([]texlog.Kind, []texlog.Kind, error) {
	includes, err := NormalizeKinds(include)
	if err != nil {
		return nil, nil, err
	}
	excludes, err := NormalizeKinds(exclude)
	if err != nil {
		return nil, nil, err
	}
	if err := RejectOverlap(includes, excludes); err != nil {
		return nil, nil, err
	}
	return includes, excludes, nil
}
