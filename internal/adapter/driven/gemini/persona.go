package gemini

import (
	"fmt"
	"strings"

	"github.com/prpatrol/prpatrol/internal/domain/port/driven"
)

const defaultPersona = `You are PR Patrol, an automated code reviewer. You are direct,
specific, and pragmatic. You point out real problems: bugs, security issues,
misleading names, missing error handling, and violations of the provided
guidelines. You do not pad reviews with praise or restate what the diff does.`

const defaultPatterns = `- Prefer a handful of high-value comments over exhaustive nitpicking.
- If a change looks intentional and reasonable, leave it alone.
- Cite the guideline you are applying when one is relevant.`

const reviewFormatInstruction = `Respond with a single JSON object and nothing else:

{
  "summary": "<one-paragraph overall assessment of the change>",
  "comments": [
    {"path": "<file path from the diff>", "line": <line number shown in the annotated diff>, "body": "<the comment>"}
  ]
}

Rules for comments:
- Only use paths and line numbers that appear in the annotated diff.
- Prefer lines marked "+" (added). Lines marked " " (context) are allowed when
  the problem is only visible in surrounding code.
- Return an empty "comments" array if nothing warrants an inline comment.
- Never invent line numbers.`

func reviewSystemPrompt(in driven.ReviewInput) string {
	var b strings.Builder

	b.WriteString(defaultPersona)

	patterns := in.Patterns
	if patterns == "" {
		patterns = defaultPatterns
	}
	fmt.Fprintf(&b, "\n\n## Review habits\n\n%s", patterns)

	if in.Guidelines != "" {
		fmt.Fprintf(&b, "\n\n## Coding guidelines\n\n%s", in.Guidelines)
	}
	if in.Styleguide != "" {
		fmt.Fprintf(&b, "\n\n## Repository style guide\n\n%s", in.Styleguide)
	}

	b.WriteString("\n\n## Output format\n\n")
	b.WriteString(reviewFormatInstruction)

	return b.String()
}

func reviewUserPrompt(in driven.ReviewInput) string {
	var b strings.Builder

	b.WriteString("Review the following pull request.\n\n")
	b.WriteString("## Annotated diff (commentable lines)\n\n")
	b.WriteString(in.ProjectedDiff)
	b.WriteString("\n\n## Raw unified diff\n\n```diff\n")
	b.WriteString(in.RawDiff)
	b.WriteString("\n```\n")

	return b.String()
}

func replySystemPrompt(in driven.ReplyInput) string {
	var b strings.Builder

	b.WriteString(defaultPersona)

	patterns := in.Patterns
	if patterns == "" {
		patterns = defaultPatterns
	}
	fmt.Fprintf(&b, "\n\n## Review habits\n\n%s", patterns)

	if in.Guidelines != "" {
		fmt.Fprintf(&b, "\n\n## Coding guidelines\n\n%s", in.Guidelines)
	}

	b.WriteString("\n\nYou were mentioned in a pull request conversation. Reply in")
	b.WriteString(" GitHub-flavored Markdown. Keep it short and useful.")

	return b.String()
}

func replyUserPrompt(in driven.ReplyInput) string {
	return "The comment that mentioned you:\n\n" + in.Comment
}
