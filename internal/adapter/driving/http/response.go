package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/prpatrol/prpatrol/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// WebhookResponse acknowledges a webhook delivery.
type WebhookResponse struct {
	Status string `json:"status"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// CycleResponse is the JSON representation of a review cycle in list output.
type CycleResponse struct {
	ID              int64  `json:"id"`
	Repository      string `json:"repository"`
	PRNumber        int    `json:"pr_number"`
	Outcome         string `json:"outcome"`
	CommentsPosted  int    `json:"comments_posted"`
	CommentsDropped int    `json:"comments_dropped"`
	Error           string `json:"error,omitempty"`
	CreatedAt       string `json:"created_at"`
}

// CycleDetailResponse adds the summary text, raw and rendered, to the list
// representation.
type CycleDetailResponse struct {
	CycleResponse
	Summary     string `json:"summary"`
	SummaryHTML string `json:"summary_html"`
}

// toCycleResponse converts a domain ReviewCycle to its JSON list representation.
func toCycleResponse(cycle model.ReviewCycle) CycleResponse {
	return CycleResponse{
		ID:              cycle.ID,
		Repository:      cycle.RepoFullName,
		PRNumber:        cycle.PRNumber,
		Outcome:         string(cycle.Outcome),
		CommentsPosted:  cycle.CommentsPosted,
		CommentsDropped: cycle.CommentsDropped,
		Error:           cycle.Error,
		CreatedAt:       cycle.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// toCycleDetailResponse converts a domain ReviewCycle to its JSON detail
// representation, rendering the markdown summary to sanitized HTML.
func toCycleDetailResponse(cycle model.ReviewCycle) CycleDetailResponse {
	return CycleDetailResponse{
		CycleResponse: toCycleResponse(cycle),
		Summary:       cycle.Summary,
		SummaryHTML:   RenderMarkdown(cycle.Summary),
	}
}
