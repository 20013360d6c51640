package model

import "strings"

// WebhookEvent is the flattened context extracted from a GitHub webhook
// payload. The driving HTTP adapter maps the nested event types onto this
// struct so the application layer never touches raw payloads.
type WebhookEvent struct {
	EventType      string // "pull_request" or "issue_comment".
	Action         string
	Owner          string
	RepoName       string
	DefaultBranch  string
	InstallationID int64

	// Pull request fields (pull_request events only).
	PRNumber  int
	PRHeadRef string

	// Comment fields (issue_comment events only).
	IssueNumber int
	CommentBody string
}

// RepoFullName returns the "owner/repo" form used by the driven ports.
func (e WebhookEvent) RepoFullName() string {
	return e.Owner + "/" + e.RepoName
}

// IsReviewTrigger reports whether the event should start a review cycle.
func (e WebhookEvent) IsReviewTrigger() bool {
	if e.EventType != "pull_request" {
		return false
	}
	switch e.Action {
	case "opened", "synchronize", "reopened":
		return true
	}
	return false
}

// IsMention reports whether the event is a newly created comment that
// mentions the given bot handle (case-insensitive).
func (e WebhookEvent) IsMention(handle string) bool {
	if e.EventType != "issue_comment" || e.Action != "created" {
		return false
	}
	if handle == "" || e.CommentBody == "" {
		return false
	}
	return strings.Contains(strings.ToLower(e.CommentBody), strings.ToLower(handle))
}
