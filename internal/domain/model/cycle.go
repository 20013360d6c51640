package model

import "time"

// Outcome is the terminal result of one review cycle's publish attempt.
type Outcome string

const (
	// OutcomeAccepted means the batched submission (summary plus all inline
	// comments) was published.
	OutcomeAccepted Outcome = "accepted"

	// OutcomeSummaryOnly means the batch was rejected but the summary-only
	// fallback landed.
	OutcomeSummaryOnly Outcome = "accepted_summary_only"

	// OutcomeRejected means both the batch and the fallback failed; nothing
	// was published this cycle.
	OutcomeRejected Outcome = "rejected"

	// OutcomeSkipped means the cycle ended before any publish attempt
	// (empty diff, or the model returned nothing).
	OutcomeSkipped Outcome = "skipped"
)

// ReviewCycle is the audit record of one webhook-triggered review run.
type ReviewCycle struct {
	ID              int64
	RepoFullName    string
	PRNumber        int
	Outcome         Outcome
	Summary         string
	CommentsPosted  int
	CommentsDropped int
	Error           string // Non-empty only for rejected cycles.
	CreatedAt       time.Time
}
