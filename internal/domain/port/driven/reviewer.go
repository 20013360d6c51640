package driven

import (
	"context"

	"github.com/prpatrol/prpatrol/internal/domain/model"
)

// ReviewInput carries everything the model needs for one review generation.
type ReviewInput struct {
	ProjectedDiff string // Line-annotated rendering of the parsed diff.
	RawDiff       string // Raw diff for broader context, pre-truncated by the caller.
	Guidelines    string // Concatenated guideline documents.
	Styleguide    string // Repo style guide; appended to the built-in guidance when present.
	Patterns      string // Repo pattern reference override; empty selects the default.
}

// ReplyInput carries the context for a mention reply.
type ReplyInput struct {
	Comment    string
	Guidelines string
	Patterns   string
}

// Reviewer defines the driven port for the language model.
type Reviewer interface {
	// GenerateReview produces a summary and candidate inline comments for a
	// diff. Candidates are untrusted; the caller validates placement.
	GenerateReview(ctx context.Context, in ReviewInput) (model.ReviewResult, error)

	// GenerateReply produces a conversational reply to a comment mention.
	GenerateReply(ctx context.Context, in ReplyInput) (string, error)
}
