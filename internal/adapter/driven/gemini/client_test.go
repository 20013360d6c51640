package gemini_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/prpatrol/prpatrol/internal/adapter/driven/gemini"
	"github.com/prpatrol/prpatrol/internal/domain/port/driven"
)

func newTestClient(t *testing.T, handler http.Handler) *gemini.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := gemini.Config{
		ProjectID:       "test-project",
		Model:           "gemini-2.5-pro",
		Temperature:     0.2,
		MaxOutputTokens: 8192,
	}
	tokens := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "gcp-token"})

	return gemini.NewClientWithBaseURL(cfg, tokens, server.Client(), server.URL)
}

func candidateResponse(text string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
		},
	}
}

func TestGenerateReview(t *testing.T) {
	var gotReq struct {
		Contents []struct {
			Role  string `json:"role"`
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"contents"`
		SystemInstruction struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"systemInstruction"`
		GenerationConfig struct {
			Temperature     float64 `json:"temperature"`
			MaxOutputTokens int     `json:"maxOutputTokens"`
		} `json:"generationConfig"`
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1beta1/projects/test-project/locations/global/publishers/google/models/gemini-2.5-pro:generateContent",
		func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer gcp-token", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
			json.NewEncoder(w).Encode(candidateResponse(
				`{"summary":"solid change","comments":[{"path":"a.py","line":11,"body":"nit"}]}`))
		})

	client := newTestClient(t, mux)

	result, err := client.GenerateReview(context.Background(), driven.ReviewInput{
		ProjectedDiff: "File: a.py\n  L11: + foo",
		RawDiff:       "diff --git a/a.py b/a.py\n",
		Guidelines:    "always be kind",
		Styleguide:    "tabs not spaces",
	})

	require.NoError(t, err)
	assert.Equal(t, "solid change", result.Summary)
	require.Len(t, result.Comments, 1)
	assert.Equal(t, 11, result.Comments[0].Line)

	require.Len(t, gotReq.Contents, 1)
	assert.Equal(t, "user", gotReq.Contents[0].Role)
	assert.Contains(t, gotReq.Contents[0].Parts[0].Text, "L11: + foo")

	require.NotEmpty(t, gotReq.SystemInstruction.Parts)
	sys := gotReq.SystemInstruction.Parts[0].Text
	assert.Contains(t, sys, "always be kind")
	assert.Contains(t, sys, "tabs not spaces")

	assert.Equal(t, 0.2, gotReq.GenerationConfig.Temperature)
	assert.Equal(t, 8192, gotReq.GenerationConfig.MaxOutputTokens)
}

func TestGenerateReview_APIErrorSurfaces(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"quota exceeded"}}`, http.StatusTooManyRequests)
	})

	client := newTestClient(t, mux)

	_, err := client.GenerateReview(context.Background(), driven.ReviewInput{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestGenerateReview_EmptyCandidates(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	})

	client := newTestClient(t, mux)

	_, err := client.GenerateReview(context.Background(), driven.ReviewInput{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no candidates")
}

func TestGenerateReply(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(candidateResponse("Good question, the loop is bounded."))
	})

	client := newTestClient(t, mux)

	reply, err := client.GenerateReply(context.Background(), driven.ReplyInput{
		Comment: "@prpatrol is this loop bounded?",
	})

	require.NoError(t, err)
	assert.Equal(t, "Good question, the loop is bounded.", reply)
}
