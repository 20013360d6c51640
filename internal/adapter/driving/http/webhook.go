package httphandler

import (
	"context"
	"net/http"

	gh "github.com/google/go-github/v82/github"

	"github.com/prpatrol/prpatrol/internal/domain/model"
)

// HandleWebhook verifies the event signature, maps the payload onto the
// domain event, and dispatches qualifying events to a detached goroutine.
// The 202 is returned before the review cycle runs so GitHub's delivery
// timeout never races a model call.
func (h *Handler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := gh.ValidatePayload(r, h.webhookSecret)
	if err != nil {
		h.logger.Warn("webhook signature rejected", "error", err)
		writeError(w, http.StatusUnauthorized, "invalid signature")
		return
	}

	event, err := gh.ParseWebHook(gh.WebHookType(r), payload)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unparseable payload")
		return
	}

	ev, ok := mapEvent(event)
	if !ok {
		writeJSON(w, http.StatusAccepted, WebhookResponse{Status: "ignored"})
		return
	}

	switch {
	case ev.IsReviewTrigger():
		// The request context dies with the response; the cycle gets its own.
		go func() {
			if err := h.reviews.HandlePullRequest(context.Background(), ev); err != nil {
				h.logger.Error("review cycle failed",
					"repo", ev.RepoFullName(), "pr", ev.PRNumber, "error", err)
			}
		}()
		writeJSON(w, http.StatusAccepted, WebhookResponse{Status: "queued"})

	case ev.IsMention(h.botHandle):
		go func() {
			if err := h.mentions.HandleMention(context.Background(), ev); err != nil {
				h.logger.Error("mention reply failed",
					"repo", ev.RepoFullName(), "issue", ev.IssueNumber, "error", err)
			}
		}()
		writeJSON(w, http.StatusAccepted, WebhookResponse{Status: "queued"})

	default:
		writeJSON(w, http.StatusAccepted, WebhookResponse{Status: "ignored"})
	}
}

// mapEvent flattens the webhook payload types the service cares about.
func mapEvent(event any) (model.WebhookEvent, bool) {
	switch e := event.(type) {
	case *gh.PullRequestEvent:
		return model.WebhookEvent{
			EventType:      "pull_request",
			Action:         e.GetAction(),
			Owner:          e.GetRepo().GetOwner().GetLogin(),
			RepoName:       e.GetRepo().GetName(),
			DefaultBranch:  e.GetRepo().GetDefaultBranch(),
			InstallationID: e.GetInstallation().GetID(),
			PRNumber:       e.GetPullRequest().GetNumber(),
			PRHeadRef:      e.GetPullRequest().GetHead().GetRef(),
		}, true

	case *gh.IssueCommentEvent:
		return model.WebhookEvent{
			EventType:      "issue_comment",
			Action:         e.GetAction(),
			Owner:          e.GetRepo().GetOwner().GetLogin(),
			RepoName:       e.GetRepo().GetName(),
			DefaultBranch:  e.GetRepo().GetDefaultBranch(),
			InstallationID: e.GetInstallation().GetID(),
			IssueNumber:    e.GetIssue().GetNumber(),
			CommentBody:    e.GetComment().GetBody(),
		}, true
	}

	return model.WebhookEvent{}, false
}
