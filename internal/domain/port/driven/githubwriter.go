package driven

import "context"

// DraftLineComment represents a single inline comment to be submitted as part
// of a pull request review.
type DraftLineComment struct {
	Path string // File path relative to repository root.
	Line int    // Line number in the new version of the file.
	Side string // "RIGHT": the comment refers to the new file version.
	Body string // Comment body text.
}

// ReviewRequest is the input to GitHubWriter.SubmitReview.
type ReviewRequest struct {
	CommitID string             // HEAD SHA to attach the review to; refetched by the adapter when empty.
	Event    string             // "APPROVE", "REQUEST_CHANGES", or "COMMENT".
	Body     string             // Top-level review body.
	Comments []DraftLineComment // Optional inline comments.
}

// GitHubWriter defines the driven port for GitHub write operations. It is
// intentionally separate from GitHubClient (read operations).
type GitHubWriter interface {
	// SubmitReview creates a pull request review with optional inline
	// comments as one batched submission. The batch is atomic upstream: a
	// single invalid inline entry rejects the whole request.
	SubmitReview(ctx context.Context, installationID int64, repoFullName string, prNumber int, req ReviewRequest) error

	// CreateIssueComment creates a top-level (non-diff) comment on a pull
	// request or issue.
	CreateIssueComment(ctx context.Context, installationID int64, repoFullName string, issueNumber int, body string) error
}
