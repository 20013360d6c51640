package diff

import "github.com/prpatrol/prpatrol/internal/domain/model"

// DropReason explains why a candidate comment was excluded from publication.
type DropReason string

const (
	DropUnknownPath    DropReason = "unknown path"
	DropLineNotVisible DropReason = "line not visible in diff"
)

// DroppedComment pairs an excluded candidate with its reason, for logging.
type DroppedComment struct {
	Comment model.CandidateComment
	Reason  DropReason
}

// ValidateComments partitions candidates into those safe to publish and those
// that reference paths or lines the diff does not expose. The accepted slice
// preserves candidate order (downstream consumers may rely on the model's
// intended ordering). Dropping is the designed outcome for a mismatched
// candidate, not a failure; this function cannot error.
func ValidateComments(ix Index, candidates []model.CandidateComment) (accepted []model.CandidateComment, dropped []DroppedComment) {
	for _, c := range candidates {
		switch {
		case !ix.HasPath(c.Path):
			dropped = append(dropped, DroppedComment{Comment: c, Reason: DropUnknownPath})
		case !ix.Contains(c.Path, c.Line):
			dropped = append(dropped, DroppedComment{Comment: c, Reason: DropLineNotVisible})
		default:
			accepted = append(accepted, c)
		}
	}
	return accepted, dropped
}
