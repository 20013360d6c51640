package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prpatrol/prpatrol/internal/domain/model"
	"github.com/prpatrol/prpatrol/internal/domain/port/driven"
)

// Poster publishes a review to GitHub. The protocol is bounded: one batched
// attempt with inline comments, and on failure one summary-only retry. A
// second failure is terminal.
type Poster struct {
	writer driven.GitHubWriter
}

// NewPoster creates a Poster writing through the given GitHubWriter.
func NewPoster(writer driven.GitHubWriter) *Poster {
	return &Poster{writer: writer}
}

// Publish submits the summary and validated comments as a single review. When
// the batched submission fails and inline comments were present, it retries
// once with the summary alone. The returned error is non-nil exactly when the
// outcome is OutcomeRejected.
func (p *Poster) Publish(
	ctx context.Context,
	installationID int64,
	repoFullName string,
	prNumber int,
	summary string,
	comments []model.CandidateComment,
) (model.Outcome, error) {
	req := driven.ReviewRequest{
		Event:    "COMMENT",
		Body:     summary,
		Comments: make([]driven.DraftLineComment, 0, len(comments)),
	}
	for _, c := range comments {
		req.Comments = append(req.Comments, driven.DraftLineComment{
			Path: c.Path,
			Line: c.Line,
			Side: "RIGHT",
			Body: c.Body,
		})
	}

	err := p.writer.SubmitReview(ctx, installationID, repoFullName, prNumber, req)
	if err == nil {
		return model.OutcomeAccepted, nil
	}

	if len(comments) == 0 {
		return model.OutcomeRejected, fmt.Errorf("submitting review for %s#%d: %w", repoFullName, prNumber, err)
	}

	slog.Warn("batched review submission failed, retrying summary-only",
		"repo", repoFullName,
		"pr", prNumber,
		"comments", len(comments),
		"error", err,
	)

	req.Comments = nil
	if retryErr := p.writer.SubmitReview(ctx, installationID, repoFullName, prNumber, req); retryErr != nil {
		return model.OutcomeRejected, fmt.Errorf("summary-only retry for %s#%d: %w", repoFullName, prNumber, retryErr)
	}

	return model.OutcomeSummaryOnly, nil
}
