package model

// CandidateComment is one line-anchored comment proposed by the model. It is
// untrusted input: the path may not exist in the diff and the line may not be
// visible within any hunk. Candidates only become publishable after passing
// the diff validator.
type CandidateComment struct {
	Path string `json:"path"`
	Line int    `json:"line"`
	Body string `json:"body"`
}

// ReviewResult is the parsed output of one model invocation: a free-form
// summary plus zero or more candidate inline comments.
type ReviewResult struct {
	Summary  string
	Comments []CandidateComment
}

// Empty reports whether the model produced neither a summary nor comments,
// in which case the cycle has nothing to publish.
func (r ReviewResult) Empty() bool {
	return r.Summary == "" && len(r.Comments) == 0
}
