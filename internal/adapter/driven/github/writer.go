package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	gh "github.com/google/go-github/v82/github"

	"github.com/prpatrol/prpatrol/internal/domain/port/driven"
)

// SubmitReview creates a pull request review with optional inline comments as
// one batched request. If the CommitID in req is empty, the current PR head
// SHA is fetched first to avoid submitting against a stale commit.
func (c *Client) SubmitReview(ctx context.Context, installationID int64, repoFullName string, prNumber int, req driven.ReviewRequest) error {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return err
	}

	client, err := c.clientFor(ctx, installationID)
	if err != nil {
		return err
	}

	commitID := req.CommitID
	if commitID == "" {
		pr, _, err := client.PullRequests.Get(ctx, owner, repo, prNumber)
		if err != nil {
			return fmt.Errorf("fetching PR head SHA before review submit: %w", err)
		}
		commitID = pr.GetHead().GetSHA()
	}

	var draftComments []*gh.DraftReviewComment
	for _, dlc := range req.Comments {
		draftComments = append(draftComments, &gh.DraftReviewComment{
			Path: gh.Ptr(dlc.Path),
			Body: gh.Ptr(dlc.Body),
			Line: gh.Ptr(dlc.Line),
			Side: gh.Ptr(dlc.Side),
		})
	}

	reviewReq := &gh.PullRequestReviewRequest{
		CommitID: gh.Ptr(commitID),
		Event:    gh.Ptr(req.Event),
		Body:     gh.Ptr(req.Body),
		Comments: draftComments,
	}

	_, resp, err := client.PullRequests.CreateReview(ctx, owner, repo, prNumber, reviewReq)
	if err != nil {
		var ghErr *gh.ErrorResponse
		if errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusUnprocessableEntity {
			return fmt.Errorf("review rejected for %s#%d (diff view no longer current): %w", repoFullName, prNumber, err)
		}
		return fmt.Errorf("submitting review for %s#%d: %w", repoFullName, prNumber, err)
	}

	logRateLimit(resp, repoFullName+"/create-review", 0, len(draftComments))
	return nil
}

// CreateIssueComment creates a top-level (non-diff) comment on a pull request
// or issue via the Issues API.
func (c *Client) CreateIssueComment(ctx context.Context, installationID int64, repoFullName string, issueNumber int, body string) error {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return err
	}

	client, err := c.clientFor(ctx, installationID)
	if err != nil {
		return err
	}

	_, resp, err := client.Issues.CreateComment(ctx, owner, repo, issueNumber, &gh.IssueComment{
		Body: gh.Ptr(body),
	})
	if err != nil {
		return fmt.Errorf("creating comment on %s#%d: %w", repoFullName, issueNumber, err)
	}

	logRateLimit(resp, repoFullName+"/create-comment", 0, 1)
	return nil
}
