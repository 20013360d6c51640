package github

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	gh "github.com/google/go-github/v82/github"
)

// refreshMargin is subtracted from a token's upstream expiry before caching,
// so a token is always re-minted comfortably ahead of GitHub's one-hour
// deadline.
const refreshMargin = 10 * time.Minute

// appJWT signs a short-lived RS256 JWT identifying the GitHub App. The
// issued-at claim is backdated 60s to tolerate clock skew.
func (c *Client) appJWT() (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now.Add(-60 * time.Second)),
		ExpiresAt: jwt.NewNumericDate(now.Add(10 * time.Minute)),
		Issuer:    c.appID,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(c.privateKey)
	if err != nil {
		return "", fmt.Errorf("signing app JWT: %w", err)
	}
	return signed, nil
}

// installationToken returns an access token for the installation, reusing
// the cached one until it nears expiry.
func (c *Client) installationToken(ctx context.Context, installationID int64) (string, error) {
	if token, ok := c.tokens.Get(ctx, installationID); ok {
		return token, nil
	}

	appJWT, err := c.appJWT()
	if err != nil {
		return "", err
	}

	appClient, err := c.newGHClient(appJWT)
	if err != nil {
		return "", err
	}

	token, _, err := appClient.Apps.CreateInstallationToken(ctx, installationID, nil)
	if err != nil {
		return "", fmt.Errorf("creating installation token for %d: %w", installationID, err)
	}

	expiresAt := token.GetExpiresAt().Time.Add(-refreshMargin)
	c.tokens.Put(ctx, installationID, token.GetToken(), expiresAt)
	slog.Info("minted installation token",
		"installation_id", installationID,
		"expires_at", token.GetExpiresAt().Time,
	)

	return token.GetToken(), nil
}

// clientFor builds a go-github client authorized for the installation.
func (c *Client) clientFor(ctx context.Context, installationID int64) (*gh.Client, error) {
	token, err := c.installationToken(ctx, installationID)
	if err != nil {
		return nil, err
	}
	return c.newGHClient(token)
}
