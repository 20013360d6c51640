// Package application contains use-case orchestration services.
package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/prpatrol/prpatrol/internal/domain/diff"
	"github.com/prpatrol/prpatrol/internal/domain/model"
	"github.com/prpatrol/prpatrol/internal/domain/port/driven"
)

// Repo-side override files, fetched from the PR head ref. Either may be
// absent, in which case the reviewer falls back to its built-in texts.
const (
	styleguidePath = ".prpatrol/styleguide.md"
	patternsPath   = ".prpatrol/patterns.md"
)

// ReviewService runs one review cycle per qualifying pull_request webhook
// event: fetch diff, parse, project, generate, validate, publish, record.
// A cycle always runs to a terminal outcome; it is never interrupted by a
// newer event for the same pull request.
type ReviewService struct {
	gh           driven.GitHubClient
	reviewer     driven.Reviewer
	poster       *Poster
	cycles       driven.CycleStore
	guidelineDir string
	maxDiffChars int
}

// NewReviewService creates a ReviewService with all required dependencies.
func NewReviewService(
	gh driven.GitHubClient,
	reviewer driven.Reviewer,
	poster *Poster,
	cycles driven.CycleStore,
	guidelineDir string,
	maxDiffChars int,
) *ReviewService {
	return &ReviewService{
		gh:           gh,
		reviewer:     reviewer,
		poster:       poster,
		cycles:       cycles,
		guidelineDir: guidelineDir,
		maxDiffChars: maxDiffChars,
	}
}

// HandlePullRequest executes a full review cycle for the event. The returned
// error is non-nil only when the cycle ended rejected (both publish attempts
// failed); all data-shape anomalies along the way are values, not errors.
func (s *ReviewService) HandlePullRequest(ctx context.Context, ev model.WebhookEvent) error {
	slog.Info("review cycle started",
		"repo", ev.RepoFullName(),
		"pr", ev.PRNumber,
		"action", ev.Action,
	)

	rawDiff, err := s.gh.FetchPullRequestDiff(ctx, ev.InstallationID, ev.RepoFullName(), ev.PRNumber)
	if err != nil {
		s.record(ctx, ev, model.ReviewCycle{Outcome: model.OutcomeRejected, Error: err.Error()})
		return err
	}

	parsed := diff.Parse(rawDiff)
	if parsed.Empty() {
		slog.Info("no reviewable lines in diff", "repo", ev.RepoFullName(), "pr", ev.PRNumber)
		s.record(ctx, ev, model.ReviewCycle{Outcome: model.OutcomeSkipped})
		return nil
	}

	in := driven.ReviewInput{
		ProjectedDiff: diff.Project(parsed),
		RawDiff:       truncate(rawDiff, s.maxDiffChars),
		Guidelines:    loadGuidelines(rawDiff, s.guidelineDir),
		Styleguide:    s.fetchOverride(ctx, ev, styleguidePath),
		Patterns:      s.fetchOverride(ctx, ev, patternsPath),
	}

	result, err := s.reviewer.GenerateReview(ctx, in)
	if err != nil {
		s.record(ctx, ev, model.ReviewCycle{Outcome: model.OutcomeRejected, Error: err.Error()})
		return err
	}
	if result.Empty() {
		slog.Info("model returned nothing to publish", "repo", ev.RepoFullName(), "pr", ev.PRNumber)
		s.record(ctx, ev, model.ReviewCycle{Outcome: model.OutcomeSkipped})
		return nil
	}

	accepted, dropped := diff.ValidateComments(diff.NewIndex(parsed), result.Comments)
	for _, d := range dropped {
		slog.Warn("candidate comment dropped",
			"repo", ev.RepoFullName(),
			"pr", ev.PRNumber,
			"path", d.Comment.Path,
			"line", d.Comment.Line,
			"reason", string(d.Reason),
		)
	}

	outcome, pubErr := s.poster.Publish(ctx, ev.InstallationID, ev.RepoFullName(), ev.PRNumber, result.Summary, accepted)

	cycle := model.ReviewCycle{
		Outcome:         outcome,
		Summary:         result.Summary,
		CommentsDropped: len(dropped),
	}
	switch outcome {
	case model.OutcomeAccepted:
		cycle.CommentsPosted = len(accepted)
	case model.OutcomeSummaryOnly:
		cycle.CommentsDropped = len(dropped) + len(accepted)
	case model.OutcomeRejected:
		cycle.Error = pubErr.Error()
	}
	s.record(ctx, ev, cycle)

	return pubErr
}

// fetchOverride loads a repo-side override file from the PR head ref,
// returning "" when the file is absent or the fetch fails. Overrides are a
// convenience, never a reason to abort a cycle.
func (s *ReviewService) fetchOverride(ctx context.Context, ev model.WebhookEvent, path string) string {
	ref := ev.PRHeadRef
	if ref == "" {
		ref = ev.DefaultBranch
	}

	content, err := s.gh.FetchFileContents(ctx, ev.InstallationID, ev.RepoFullName(), path, ref)
	if err != nil {
		slog.Warn("override fetch failed",
			"repo", ev.RepoFullName(),
			"path", path,
			"error", err,
		)
		return ""
	}
	return content
}

// record persists the cycle audit row; persistence failures are logged and
// swallowed so bookkeeping can never change a cycle's outcome.
func (s *ReviewService) record(ctx context.Context, ev model.WebhookEvent, cycle model.ReviewCycle) {
	cycle.RepoFullName = ev.RepoFullName()
	cycle.PRNumber = ev.PRNumber
	cycle.CreatedAt = time.Now().UTC()

	if _, err := s.cycles.Insert(ctx, cycle); err != nil {
		slog.Error("recording review cycle failed",
			"repo", cycle.RepoFullName,
			"pr", cycle.PRNumber,
			"error", err,
		)
	}
}

func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max]
}
