// Package memory provides in-process implementations of driven ports.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/prpatrol/prpatrol/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.TokenCache = (*TokenCache)(nil)

type entry struct {
	token     string
	expiresAt time.Time
}

// TokenCache is a mutex-guarded in-memory TokenCache. Expired entries are
// treated as misses and overwritten on the next Put; the map stays small (one
// entry per installation) so no sweeping is needed.
type TokenCache struct {
	mu      sync.Mutex
	entries map[int64]entry
	now     func() time.Time // Injectable for tests.
}

// NewTokenCache creates an empty TokenCache.
func NewTokenCache() *TokenCache {
	return &TokenCache{
		entries: make(map[int64]entry),
		now:     time.Now,
	}
}

// Get returns the cached token for an installation if present and unexpired.
func (c *TokenCache) Get(_ context.Context, installationID int64) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[installationID]
	if !ok || !c.now().Before(e.expiresAt) {
		return "", false
	}
	return e.token, true
}

// Put stores a token with its expiry, replacing any existing entry.
func (c *TokenCache) Put(_ context.Context, installationID int64, token string, expiresAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[installationID] = entry{token: token, expiresAt: expiresAt}
}
