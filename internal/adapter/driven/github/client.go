// Package github implements the GitHubClient and GitHubWriter ports using
// the go-github library with GitHub App authentication.
package github

import (
	"context"
	"crypto/rsa"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	jwt "github.com/golang-jwt/jwt/v5"
	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/prpatrol/prpatrol/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.GitHubClient = (*Client)(nil)
	_ driven.GitHubWriter = (*Client)(nil)
)

// Client implements the GitHubClient and GitHubWriter ports. It authenticates
// as a GitHub App: every API call runs under an installation token minted
// from the App's RS256 JWT and cached per installation through the injected
// TokenCache. The underlying HTTP transport stack is:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client)
type Client struct {
	appID      string
	privateKey *rsa.PrivateKey
	tokens     driven.TokenCache
	httpClient *http.Client
	baseURL    string // Empty in production; set by the test constructor.
}

// NewClient creates a Client from the App ID and its PEM-encoded RSA private
// key.
func NewClient(appID string, privateKeyPEM []byte, tokens driven.TokenCache) (*Client, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("parsing github app private key: %w", err)
	}

	cacheTransport := httpcache.NewMemoryCacheTransport()

	return &Client{
		appID:      appID,
		privateKey: key,
		tokens:     tokens,
		httpClient: github_ratelimit.NewClient(cacheTransport),
	}, nil
}

// NewClientWithBaseURL creates a Client whose API calls target the given base
// URL through the given http.Client. This constructor is intended for
// testing, allowing injection of an httptest server.
func NewClientWithBaseURL(appID string, privateKeyPEM []byte, tokens driven.TokenCache, httpClient *http.Client, baseURL string) (*Client, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("parsing github app private key: %w", err)
	}

	return &Client{
		appID:      appID,
		privateKey: key,
		tokens:     tokens,
		httpClient: httpClient,
		baseURL:    baseURL,
	}, nil
}

// newGHClient builds a go-github client carrying the given bearer token,
// honoring the test base URL override when set.
func (c *Client) newGHClient(token string) (*gh.Client, error) {
	client := gh.NewClient(c.httpClient).WithAuthToken(token)

	if c.baseURL != "" {
		u, err := url.Parse(c.baseURL)
		if err != nil {
			return nil, fmt.Errorf("parsing base URL: %w", err)
		}
		client.BaseURL = u
	}

	return client, nil
}

// FetchPullRequestDiff returns the raw unified diff of a pull request via the
// diff media type.
func (c *Client) FetchPullRequestDiff(ctx context.Context, installationID int64, repoFullName string, prNumber int) (string, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return "", err
	}

	client, err := c.clientFor(ctx, installationID)
	if err != nil {
		return "", err
	}

	raw, resp, err := client.PullRequests.GetRaw(ctx, owner, repo, prNumber, gh.RawOptions{Type: gh.Diff})
	if err != nil {
		return "", fmt.Errorf("fetching diff for %s#%d: %w", repoFullName, prNumber, err)
	}

	logRateLimit(resp, repoFullName+"/diff", 0, len(raw))
	return raw, nil
}

// FetchFileContents returns the decoded contents of a file at the given ref.
// A missing file (404) or a directory path is not an error: both return
// "", nil.
func (c *Client) FetchFileContents(ctx context.Context, installationID int64, repoFullName, path, ref string) (string, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return "", err
	}

	client, err := c.clientFor(ctx, installationID)
	if err != nil {
		return "", err
	}

	file, _, resp, err := client.Repositories.GetContents(ctx, owner, repo, path, &gh.RepositoryContentGetOptions{Ref: ref})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return "", nil
		}
		return "", fmt.Errorf("fetching contents of %s@%s in %s: %w", path, ref, repoFullName, err)
	}
	if file == nil {
		return "", nil
	}

	content, err := file.GetContent()
	if err != nil {
		return "", fmt.Errorf("decoding contents of %s in %s: %w", path, repoFullName, err)
	}

	logRateLimit(resp, repoFullName+"/contents", 0, 1)
	return content, nil
}

// logRateLimit logs the GitHub API rate limit status after each call.
func logRateLimit(resp *gh.Response, endpoint string, page, count int) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"endpoint", endpoint,
		"page", page,
		"count", count,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Remaining < 100 {
		slog.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}

// splitRepo splits a "owner/repo" string into its two components.
func splitRepo(fullName string) (string, string, error) {
	parts := strings.SplitN(fullName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repo name %q: expected owner/repo", fullName)
	}
	return parts[0], parts[1], nil
}
