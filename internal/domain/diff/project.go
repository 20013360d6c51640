package diff

import (
	"fmt"
	"strings"
)

// Project renders a parsed diff as compact model-input text. Each file is a
// "File:" header followed by one line per entry, labeled with its new-version
// line number so the model can anchor comments exactly. Added lines carry a
// "+" marker, context lines a space. Ordering mirrors the Diff; nothing is
// resequenced or filtered.
func Project(d Diff) string {
	if d.Empty() {
		return "(no changed lines found)"
	}

	var b strings.Builder

	for i, f := range d.Files {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "File: %s\n", f.Path)

		for j, l := range f.Lines {
			if j > 0 {
				b.WriteByte('\n')
			}
			marker := " "
			if l.Kind == Added {
				marker = "+"
			}
			fmt.Fprintf(&b, "  L%d: %s %s", l.Number, marker, l.Content)
		}
	}

	return b.String()
}
