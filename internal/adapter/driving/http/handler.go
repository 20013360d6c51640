// Package httphandler is the HTTP driving adapter: the webhook receiver and
// the audit API.
package httphandler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prpatrol/prpatrol/internal/domain/model"
	"github.com/prpatrol/prpatrol/internal/domain/port/driven"
)

const (
	defaultCycleListLimit = 50
	maxCycleListLimit     = 200
)

// ReviewDispatcher runs a review cycle for a qualifying pull request event.
type ReviewDispatcher interface {
	HandlePullRequest(ctx context.Context, ev model.WebhookEvent) error
}

// MentionDispatcher replies to a bot mention.
type MentionDispatcher interface {
	HandleMention(ctx context.Context, ev model.WebhookEvent) error
}

// Handler serves the webhook endpoint and the REST API.
type Handler struct {
	webhookSecret []byte
	botHandle     string
	reviews       ReviewDispatcher
	mentions      MentionDispatcher
	cycles        driven.CycleStore
	logger        *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	webhookSecret []byte,
	botHandle string,
	reviews ReviewDispatcher,
	mentions MentionDispatcher,
	cycles driven.CycleStore,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		webhookSecret: webhookSecret,
		botHandle:     botHandle,
		reviews:       reviews,
		mentions:      mentions,
		cycles:        cycles,
		logger:        logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /webhook", h.HandleWebhook)
	mux.HandleFunc("GET /api/v1/health", h.Health)
	mux.HandleFunc("GET /api/v1/cycles", h.ListCycles)
	mux.HandleFunc("GET /api/v1/cycles/{id}", h.GetCycle)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// ListCycles returns the most recent review cycles, newest first. The limit
// query parameter caps the page size.
func (h *Handler) ListCycles(w http.ResponseWriter, r *http.Request) {
	limit := defaultCycleListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = min(n, maxCycleListLimit)
	}

	cycles, err := h.cycles.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list review cycles", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]CycleResponse, 0, len(cycles))
	for _, cycle := range cycles {
		resp = append(resp, toCycleResponse(cycle))
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetCycle returns a single review cycle with its summary rendered to
// sanitized HTML.
func (h *Handler) GetCycle(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid cycle id")
		return
	}

	cycle, err := h.cycles.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get review cycle", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if cycle == nil {
		writeError(w, http.StatusNotFound, "review cycle not found")
		return
	}

	writeJSON(w, http.StatusOK, toCycleDetailResponse(*cycle))
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}
