package gemini

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/prpatrol/prpatrol/internal/domain/model"
)

// reviewWire matches the JSON object the model is instructed to emit. The
// comments are kept raw so one malformed entry does not sink the rest.
type reviewWire struct {
	Summary  string            `json:"summary"`
	Comments []json.RawMessage `json:"comments"`
}

// parseReviewResponse extracts a ReviewResult from model output. Models wrap
// JSON in code fences or prose often enough that this tries, in order: the
// whole text, the contents of a fenced block, and the outermost brace pair.
// When no parse succeeds the full text becomes the summary so the review is
// never silently lost.
func parseReviewResponse(raw string) model.ReviewResult {
	text := strings.TrimSpace(raw)

	for _, candidate := range jsonCandidates(text) {
		var wire reviewWire
		if err := json.Unmarshal([]byte(candidate), &wire); err != nil {
			continue
		}
		return model.ReviewResult{
			Summary:  strings.TrimSpace(wire.Summary),
			Comments: decodeComments(wire.Comments),
		}
	}

	slog.Warn("model response was not valid JSON, using it as the summary",
		slog.Int("length", len(text)))
	return model.ReviewResult{Summary: text}
}

// jsonCandidates returns progressively more aggressive extractions of a JSON
// object from the text.
func jsonCandidates(text string) []string {
	candidates := []string{text}

	if fenced, ok := stripFence(text); ok {
		candidates = append(candidates, fenced)
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		candidates = append(candidates, text[start:end+1])
	}

	return candidates
}

// stripFence unwraps a ```json ... ``` (or bare ```) block.
func stripFence(text string) (string, bool) {
	if !strings.HasPrefix(text, "```") {
		return "", false
	}
	inner := strings.TrimPrefix(text, "```json")
	inner = strings.TrimPrefix(inner, "```")
	inner, found := strings.CutSuffix(strings.TrimSpace(inner), "```")
	if !found {
		return "", false
	}
	return strings.TrimSpace(inner), true
}

// decodeComments decodes each candidate comment individually, dropping
// entries that are malformed or incomplete.
func decodeComments(raws []json.RawMessage) []model.CandidateComment {
	comments := make([]model.CandidateComment, 0, len(raws))
	for _, raw := range raws {
		var c model.CandidateComment
		if err := json.Unmarshal(raw, &c); err != nil {
			slog.Warn("dropping malformed model comment", slog.String("error", err.Error()))
			continue
		}
		if c.Path == "" || c.Line <= 0 || strings.TrimSpace(c.Body) == "" {
			slog.Warn("dropping incomplete model comment",
				slog.String("path", c.Path), slog.Int("line", c.Line))
			continue
		}
		comments = append(comments, c)
	}
	return comments
}
