package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prpatrol/prpatrol/internal/domain/model"
	"github.com/prpatrol/prpatrol/internal/domain/port/driven"
)

// MentionService replies to bot mentions in PR and issue comments.
type MentionService struct {
	gh           driven.GitHubClient
	writer       driven.GitHubWriter
	reviewer     driven.Reviewer
	guidelineDir string
}

// NewMentionService creates a MentionService with all required dependencies.
func NewMentionService(
	gh driven.GitHubClient,
	writer driven.GitHubWriter,
	reviewer driven.Reviewer,
	guidelineDir string,
) *MentionService {
	return &MentionService{
		gh:           gh,
		writer:       writer,
		reviewer:     reviewer,
		guidelineDir: guidelineDir,
	}
}

// HandleMention generates a reply to the mentioning comment and posts it as
// an issue comment.
func (s *MentionService) HandleMention(ctx context.Context, ev model.WebhookEvent) error {
	slog.Info("mention received",
		"repo", ev.RepoFullName(),
		"issue", ev.IssueNumber,
	)

	patterns, err := s.gh.FetchFileContents(ctx, ev.InstallationID, ev.RepoFullName(), patternsPath, ev.DefaultBranch)
	if err != nil {
		slog.Warn("override fetch failed", "repo", ev.RepoFullName(), "path", patternsPath, "error", err)
		patterns = ""
	}

	reply, err := s.reviewer.GenerateReply(ctx, driven.ReplyInput{
		Comment:    ev.CommentBody,
		Guidelines: loadGuidelines("", s.guidelineDir),
		Patterns:   patterns,
	})
	if err != nil {
		return fmt.Errorf("generating mention reply for %s#%d: %w", ev.RepoFullName(), ev.IssueNumber, err)
	}

	if err := s.writer.CreateIssueComment(ctx, ev.InstallationID, ev.RepoFullName(), ev.IssueNumber, reply); err != nil {
		return err
	}

	slog.Info("mention reply posted", "repo", ev.RepoFullName(), "issue", ev.IssueNumber)
	return nil
}
