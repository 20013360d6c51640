// Package diff turns raw unified-diff text into an addressable per-file line
// model and reconciles model-proposed comments against it. Everything here is
// a pure transformation; the package does no I/O and holds no state.
package diff

import (
	"regexp"
	"strconv"
	"strings"
)

// LineKind classifies an addressable line in the new version of a file.
type LineKind int

const (
	// Context is a line that is unchanged but visible within a hunk. The
	// review API accepts comments on these, so they are indexed too.
	Context LineKind = iota

	// Added is a line introduced or modified by the diff.
	Added
)

// String returns the lower-case name of the kind.
func (k LineKind) String() string {
	if k == Added {
		return "added"
	}
	return "context"
}

// Line is one addressable line in the new version of a file.
type Line struct {
	Number  int // 1-based line number in the file's new version.
	Content string
	Kind    LineKind
}

// File holds the addressable lines of one file chunk. Lines are in document
// order with strictly increasing numbers; gaps may exist between hunks.
type File struct {
	Path  string
	Lines []Line
}

// Diff is the parsed form of one unified diff, one File per file chunk in
// source order. A File is only present when it has at least one line.
type Diff struct {
	Files []File
}

// Empty reports whether the diff contains no addressable lines at all.
func (d Diff) Empty() bool {
	return len(d.Files) == 0
}

var (
	newPathRE = regexp.MustCompile(`(?m)^\+\+\+ b/(.+)$`)
	nullDevRE = regexp.MustCompile(`(?m)^\+\+\+ /dev/null`)
	hunkRE    = regexp.MustCompile(`(?m)^@@ -\d+(?:,\d+)? \+(\d+)(?:,\d+)? @@.*$`)
)

// Parse converts raw unified-diff text into a Diff. It is total over
// arbitrary input: malformed or unrecognized sections are skipped, never
// reported as errors. Skipped per file chunk: binary diffs and other chunks
// without a "+++ b/" header, deletions (+++ /dev/null), and chunks that
// produce no lines (for example pure renames with no hunks).
func Parse(raw string) Diff {
	var d Diff

	for _, chunk := range splitChunks(raw) {
		f, ok := parseChunk(chunk)
		if !ok {
			continue
		}
		d.Files = append(d.Files, f)
	}

	return d
}

// splitChunks splits the raw text into per-file chunks at each "diff --git"
// marker. Text before the first marker is discarded.
func splitChunks(raw string) []string {
	var chunks []string
	var cur *strings.Builder

	for line := range strings.Lines(raw) {
		if strings.HasPrefix(line, "diff --git ") {
			if cur != nil {
				chunks = append(chunks, cur.String())
			}
			cur = &strings.Builder{}
		}
		if cur != nil {
			cur.WriteString(line)
		}
	}
	if cur != nil {
		chunks = append(chunks, cur.String())
	}

	return chunks
}

// parseChunk parses one file chunk. ok is false when the chunk must be
// skipped entirely.
func parseChunk(chunk string) (File, bool) {
	pathMatch := newPathRE.FindStringSubmatch(chunk)
	if pathMatch == nil {
		return File{}, false
	}
	if nullDevRE.MatchString(chunk) {
		return File{}, false
	}

	f := File{Path: pathMatch[1]}

	hunks := hunkRE.FindAllStringSubmatchIndex(chunk, -1)
	for i, h := range hunks {
		// Group 1 is the new-file start line; only the start is load-bearing,
		// the ,count suffix is not used.
		start, err := strconv.Atoi(chunk[h[2]:h[3]])
		if err != nil {
			continue
		}

		bodyEnd := len(chunk)
		if i+1 < len(hunks) {
			bodyEnd = hunks[i+1][0]
		}
		// h[1] sits on the newline that terminates the header line; that
		// newline is not a body line.
		body := strings.TrimPrefix(chunk[h[1]:bodyEnd], "\n")

		f.Lines = append(f.Lines, parseHunkBody(body, start)...)
	}

	if len(f.Lines) == 0 {
		return File{}, false
	}
	return f, true
}

// parseHunkBody walks one hunk body, classifying each line and advancing the
// new-file line counter. The three-way outcome per line:
//
//	"+" prefix  -> emit Added, advance
//	"-" prefix  -> old-version only, no emit, no advance
//	"\" prefix  -> no-newline marker, no emit, no advance
//	anything else (space-prefixed context or a bare empty line) -> emit
//	Context with the prefix stripped, advance
func parseHunkBody(body string, start int) []Line {
	var lines []Line
	number := start

	for raw := range strings.Lines(body) {
		line := strings.TrimSuffix(strings.TrimSuffix(raw, "\n"), "\r")

		switch {
		case strings.HasPrefix(line, "+"):
			lines = append(lines, Line{Number: number, Content: line[1:], Kind: Added})
			number++
		case strings.HasPrefix(line, "-"):
			// Deleted in the old version; does not exist in the new one.
		case strings.HasPrefix(line, `\`):
			// "\ No newline at end of file".
		default:
			content := strings.TrimPrefix(line, " ")
			lines = append(lines, Line{Number: number, Content: content, Kind: Context})
			number++
		}
	}

	return lines
}
