package driven

import (
	"context"
	"time"
)

// TokenCache defines the driven port for caching GitHub App installation
// tokens. Entries carry an explicit expiry and are keyed per installation;
// tokens are never shared across unrelated installations. The lifecycle is
// populate on miss, reuse until expiry.
type TokenCache interface {
	// Get returns the cached token for an installation if present and not
	// yet expired.
	Get(ctx context.Context, installationID int64) (token string, ok bool)

	// Put stores a token with its expiry timestamp, replacing any existing
	// entry for the installation.
	Put(ctx context.Context, installationID int64, token string, expiresAt time.Time)
}
