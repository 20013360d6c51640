package github_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ghadapter "github.com/prpatrol/prpatrol/internal/adapter/driven/github"
	"github.com/prpatrol/prpatrol/internal/adapter/driven/memory"
)

// testKeyPEM generates a throwaway RSA key in PKCS#1 PEM form.
func testKeyPEM(t *testing.T) []byte {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	return pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
}

// newTestClient creates a Client backed by the given httptest handler. The
// handler receives both the token-exchange call and the API calls.
func newTestClient(t *testing.T, handler http.Handler) *ghadapter.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := ghadapter.NewClientWithBaseURL(
		"12345",
		testKeyPEM(t),
		memory.NewTokenCache(),
		server.Client(),
		server.URL+"/",
	)
	require.NoError(t, err)

	return client
}

// serveTokenExchange answers the installation-token endpoint and counts how
// many times it was hit.
func serveTokenExchange(t *testing.T, mux *http.ServeMux, exchanges *atomic.Int32) {
	t.Helper()
	mux.HandleFunc("POST /app/installations/{id}/access_tokens", func(w http.ResponseWriter, r *http.Request) {
		exchanges.Add(1)
		assert.NotEmpty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"token":      "inst-token",
			"expires_at": time.Now().Add(time.Hour).Format(time.RFC3339),
		})
	})
}

func TestFetchPullRequestDiff(t *testing.T) {
	const rawDiff = "diff --git a/a.go b/a.go\n--- a/a.go\n+++ b/a.go\n@@ -1 +1 @@\n+x\n"

	var exchanges atomic.Int32
	mux := http.NewServeMux()
	serveTokenExchange(t, mux, &exchanges)
	mux.HandleFunc("GET /repos/owner/repo/pulls/7", func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("Accept"), "diff")
		assert.Equal(t, "Bearer inst-token", r.Header.Get("Authorization"))
		io.WriteString(w, rawDiff)
	})

	client := newTestClient(t, mux)

	got, err := client.FetchPullRequestDiff(context.Background(), 42, "owner/repo", 7)
	require.NoError(t, err)
	assert.Equal(t, rawDiff, got)

	// Second call reuses the cached installation token.
	_, err = client.FetchPullRequestDiff(context.Background(), 42, "owner/repo", 7)
	require.NoError(t, err)
	assert.Equal(t, int32(1), exchanges.Load())
}

func TestFetchFileContents(t *testing.T) {
	var exchanges atomic.Int32
	mux := http.NewServeMux()
	serveTokenExchange(t, mux, &exchanges)
	mux.HandleFunc("GET /repos/owner/repo/contents/.prpatrol/styleguide.md", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "feature", r.URL.Query().Get("ref"))
		json.NewEncoder(w).Encode(map[string]any{
			"type":     "file",
			"encoding": "base64",
			"content":  "YmUgbmljZQ==", // "be nice"
		})
	})

	client := newTestClient(t, mux)

	got, err := client.FetchFileContents(context.Background(), 42, "owner/repo", ".prpatrol/styleguide.md", "feature")
	require.NoError(t, err)
	assert.Equal(t, "be nice", got)
}

func TestFetchFileContents_MissingIsNotAnError(t *testing.T) {
	var exchanges atomic.Int32
	mux := http.NewServeMux()
	serveTokenExchange(t, mux, &exchanges)
	mux.HandleFunc("GET /repos/owner/repo/contents/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
	})

	client := newTestClient(t, mux)

	got, err := client.FetchFileContents(context.Background(), 42, "owner/repo", "missing.md", "main")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestInvalidRepoName(t *testing.T) {
	client := newTestClient(t, http.NewServeMux())

	_, err := client.FetchPullRequestDiff(context.Background(), 42, "not-a-full-name", 1)
	assert.Error(t, err)
}
