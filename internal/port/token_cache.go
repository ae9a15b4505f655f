package port

import "context"

// TokenCache holds a secondary copy of the session token, keyed by user id.
// The cookie is the authoritative store; this cache is only ever written
// from it and may be rebuilt at any time.
type TokenCache interface {
	// Save stores the token for a user.
	Save(ctx context.Context, userID, token string) error

	// Get returns the cached token, or "" when none is cached.
	Get(ctx context.Context, userID string) (string, error)

	// Delete removes the cached token.
	Delete(ctx context.Context, userID string) error
}
