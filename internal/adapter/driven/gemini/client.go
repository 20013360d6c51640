// Package gemini implements the Reviewer port against the Vertex AI Gemini
// REST API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/prpatrol/prpatrol/internal/domain/model"
	"github.com/prpatrol/prpatrol/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.Reviewer = (*Client)(nil)

const (
	defaultBaseURL     = "https://aiplatform.googleapis.com"
	cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"
)

// Config holds the model invocation settings.
type Config struct {
	ProjectID       string
	Model           string
	Temperature     float64
	MaxOutputTokens int
}

// Client calls the Vertex AI generateContent endpoint, authorizing each
// request with a token from the injected source.
type Client struct {
	cfg        Config
	tokens     oauth2.TokenSource
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a Client with the production endpoint and a generous
// request timeout (model calls are slow).
func NewClient(cfg Config, tokens oauth2.TokenSource) *Client {
	return &Client{
		cfg:        cfg,
		tokens:     tokens,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		baseURL:    defaultBaseURL,
	}
}

// NewClientWithBaseURL creates a Client targeting the given base URL. This
// constructor is intended for testing against an httptest server.
func NewClientWithBaseURL(cfg Config, tokens oauth2.TokenSource, httpClient *http.Client, baseURL string) *Client {
	return &Client{
		cfg:        cfg,
		tokens:     tokens,
		httpClient: httpClient,
		baseURL:    baseURL,
	}
}

// TokenSourceFromServiceAccountKey builds a cloud-platform token source from
// a GCP service account key file's JSON contents.
func TokenSourceFromServiceAccountKey(ctx context.Context, keyJSON []byte) (oauth2.TokenSource, error) {
	jwtCfg, err := google.JWTConfigFromJSON(keyJSON, cloudPlatformScope)
	if err != nil {
		return nil, fmt.Errorf("parsing service account key: %w", err)
	}
	return jwtCfg.TokenSource(ctx), nil
}

// Wire types for the generateContent request/response.

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateRequest struct {
	Contents          []content        `json:"contents"`
	SystemInstruction *content         `json:"systemInstruction,omitempty"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// generate performs one generateContent call and returns the text of the
// first candidate.
func (c *Client) generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	reqBody := generateRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: userPrompt}}},
		},
		SystemInstruction: &content{Parts: []part{{Text: systemPrompt}}},
		GenerationConfig: generationConfig{
			Temperature:     c.cfg.Temperature,
			MaxOutputTokens: c.cfg.MaxOutputTokens,
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling generate request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta1/projects/%s/locations/global/publishers/google/models/%s:generateContent",
		c.baseURL, c.cfg.ProjectID, c.cfg.Model)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating generate request: %w", err)
	}

	token, err := c.tokens.Token()
	if err != nil {
		return "", fmt.Errorf("fetching gcp access token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling gemini: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading gemini response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini returned HTTP %d: %s", resp.StatusCode, truncateBody(body))
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("unmarshaling gemini response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini response contained no candidates")
	}

	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

// GenerateReview asks the model for a structured review of the diff.
func (c *Client) GenerateReview(ctx context.Context, in driven.ReviewInput) (model.ReviewResult, error) {
	raw, err := c.generate(ctx, reviewSystemPrompt(in), reviewUserPrompt(in))
	if err != nil {
		return model.ReviewResult{}, err
	}
	return parseReviewResponse(raw), nil
}

// GenerateReply asks the model for a conversational reply to a mention.
func (c *Client) GenerateReply(ctx context.Context, in driven.ReplyInput) (string, error) {
	return c.generate(ctx, replySystemPrompt(in), replyUserPrompt(in))
}

func truncateBody(body []byte) string {
	const max = 500
	if len(body) > max {
		return string(body[:max])
	}
	return string(body)
}
