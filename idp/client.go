// Package idp abstracts the identity provider behind a small client
// interface with two variants: a provider-backed client speaking real OAuth2,
// and a deterministic mock used for development and tests. The active variant
// is selected once at startup.
package idp

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/lefeverd/openid-proxy/internal/config"
	"github.com/lefeverd/openid-proxy/oauth2"
	"github.com/lefeverd/openid-proxy/sessions"
	"github.com/lefeverd/openid-proxy/token"
)

// Client is the capability set the gateway needs from an identity provider.
type Client interface {
	// AuthCodeURL builds the authorization redirect target for /login.
	AuthCodeURL(state string) string

	// Exchange trades an authorization code for tokens.
	Exchange(ctx context.Context, code string) (*oauth2.TokenResponse, error)

	// LogoutURL builds the provider logout redirect target. An empty returnTo
	// falls back to the configured post-logout URL.
	LogoutURL(returnTo string) string

	// DeleteUser removes the user from the identity provider.
	DeleteUser(ctx context.Context, subject string) error

	// Decoder returns the token decoder matching this client's keys, so
	// callers never branch on the client variant.
	Decoder() token.Decoder
}

// New selects the client variant from configuration. The session store is
// used by the provider-backed client to cache its management token.
func New(ctx context.Context, cfg config.Config, store sessions.Store) (Client, error) {
	if cfg.GetMockOAuth() {
		log.Info().Msg("MOCK_OAUTH set, using mock identity client")
		return NewMockClient(cfg)
	}
	return NewProviderClient(ctx, cfg, store)
}
