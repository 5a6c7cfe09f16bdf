// Package sessions provides the server-side session store mapping opaque
// session handles to the token payload obtained at login time.
package sessions

import (
	"context"
	"time"

	"github.com/lefeverd/openid-proxy/internal/errors"
	"github.com/lefeverd/openid-proxy/oauth2"
)

// Store defines the contract for session storage backends.
// Implementations must make Create/Get/Destroy atomic per session ID, and an
// entry whose TTL has elapsed must behave exactly as if it had been destroyed.
type Store interface {
	// Create persists the token payload under the session ID. A ttl <= 0
	// means the entry never expires (local development only).
	Create(ctx context.Context, sessionID string, tokens oauth2.TokenResponse, ttl time.Duration) error

	// Get retrieves the token payload for a session ID. Returns
	// errors.ErrSessionNotFound when the session is absent or expired.
	Get(ctx context.Context, sessionID string) (*oauth2.TokenResponse, error)

	// Destroy removes the session, reporting whether an entry existed.
	Destroy(ctx context.Context, sessionID string) bool
}

// ErrNotFound is returned by Get when no live session exists for the handle.
var ErrNotFound = errors.ErrSessionNotFound
