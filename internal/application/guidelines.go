package application

import (
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// extToGuide maps file extensions seen in the diff to the guideline file that
// covers the language.
var extToGuide = map[string]string{
	".go":    "go.md",
	".py":    "python.md",
	".swift": "swift.md",
	".ts":    "typescript.md",
	".tsx":   "typescript.md",
	".js":    "javascript.md",
	".jsx":   "javascript.md",
	".nix":   "nix.md",
}

// alwaysInclude is loaded for every review regardless of languages touched.
var alwaysInclude = []string{"universal.md", "security.md"}

// loadGuidelines assembles the guideline text for a review: the always-on
// guides plus one per language present in the diff, determined from the file
// header lines. Missing files are skipped; they are deployment content, not
// code, and their absence should never block a review.
func loadGuidelines(rawDiff, dir string) string {
	names := slices.Clone(alwaysInclude)

	for line := range strings.Lines(rawDiff) {
		path, ok := strings.CutPrefix(line, "+++ b/")
		if !ok {
			path, ok = strings.CutPrefix(line, "--- a/")
		}
		if !ok {
			continue
		}
		guide, ok := extToGuide[filepath.Ext(strings.TrimSpace(path))]
		if ok && !slices.Contains(names, guide) {
			names = append(names, guide)
		}
	}
	slices.Sort(names)

	var sections []string
	for _, name := range names {
		body, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			slog.Warn("guideline file not loaded", "file", name, "error", err)
			continue
		}
		sections = append(sections, strings.TrimSpace(string(body)))
	}

	return strings.Join(sections, "\n\n---\n\n")
}
