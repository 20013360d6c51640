package diff

// Index is a read-only view over a parsed diff: for each file path, the set
// of line numbers an inline comment may be anchored to. It is built once per
// Diff so repeated lookups during validation are O(1).
type Index struct {
	lines map[string]map[int]struct{}
}

// NewIndex precomputes the eligible-line sets for every file in d. Both
// Added and Context lines are eligible; the review API accepts comments on
// any line visible within a hunk.
func NewIndex(d Diff) Index {
	ix := Index{lines: make(map[string]map[int]struct{}, len(d.Files))}

	for _, f := range d.Files {
		set, ok := ix.lines[f.Path]
		if !ok {
			set = make(map[int]struct{}, len(f.Lines))
			ix.lines[f.Path] = set
		}
		for _, l := range f.Lines {
			set[l.Number] = struct{}{}
		}
	}

	return ix
}

// HasPath reports whether any parsed file matches path.
func (ix Index) HasPath(path string) bool {
	_, ok := ix.lines[path]
	return ok
}

// Contains reports whether line is eligible for comment placement in path.
func (ix Index) Contains(path string, line int) bool {
	set, ok := ix.lines[path]
	if !ok {
		return false
	}
	_, ok = set[line]
	return ok
}

// Eligible returns the eligible line numbers for path. The returned set is
// empty (never nil) for unknown paths and must not be mutated.
func (ix Index) Eligible(path string) map[int]struct{} {
	if set, ok := ix.lines[path]; ok {
		return set
	}
	return map[int]struct{}{}
}
