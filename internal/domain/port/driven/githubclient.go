package driven

import "context"

// GitHubClient defines the driven port for GitHub read operations. All calls
// are scoped to a GitHub App installation; the adapter resolves installation
// tokens transparently.
type GitHubClient interface {
	// FetchPullRequestDiff returns the unified diff of a pull request.
	FetchPullRequestDiff(ctx context.Context, installationID int64, repoFullName string, prNumber int) (string, error)

	// FetchFileContents returns the decoded contents of a file at the given
	// ref. A missing file is not an error: it returns "", nil.
	FetchFileContents(ctx context.Context, installationID int64, repoFullName, path, ref string) (string, error)
}
