package texlog

// compiledFilter holds pre-compiled kind filters.
type compiledFilter struct {
	include map[Kind]struct{}
	exclude map[Kind]struct{}
}

// newCompiledFilter creates a new compiledFilter from include and exclude slices.
// Returns nil if both slices are empty (no filtering needed).
func newCompiledFilter(include, exclude []Kind) *compiledFilter {
	if len(include) == 0 && len(exclude) == 0 {
		return nil
	}
	return &compiledFilter{
		include: kindSet(include),
		exclude: kindSet(exclude),
	}
}

func kindSet(kinds []Kind) map[Kind]struct{} {
	if len(kinds) == 0 {
		return nil
	}
	m := make(map[Kind]struct{}, len(kinds))
	for _, k := range kinds {
		m[k] = struct{}{}
	}
	return m
}

// Allows returns true if the given kind passes the filter.
// If include is non-empty, only kinds in include are allowed.
// Kinds in exclude are always rejected (exclude takes precedence).
func (f *compiledFilter) Allows(k Kind) bool {
	if f == nil {
		return true
	}

	if len(f.include) > 0 {
		if _, ok := f.include[k]; !ok {
			return false
		}
	}

	if _, ok := f.exclude[k]; ok {
		return false
	}

	return true
}

// Select returns the diagnostics whose kind passes the include/exclude
// filter, in their original order. Empty filters select everything.
func Select(diagnostics []Diagnostic, include, exclude []Kind) []Diagnostic {
	f := newCompiledFilter(include, exclude)
	if f == nil {
		return diagnostics
	}
	out := make([]Diagnostic, 0, len(diagnostics))
	for _, d := range diagnostics {
		if f.Allows(d.Kind) {
			out = append(out, d)
		}
	}
	return out
}
