// Package oauth2 holds the wire types exchanged with the identity provider's
// token endpoint.
package oauth2

import "time"

// DefaultExpiresIn is applied when the provider omits expires_in from the
// token response. 24 hours matches the longest token lifetime the gateway is
// willing to keep a session alive for.
const DefaultExpiresIn = 24 * 3600

// TokenResponse represents the response from an OAuth2 token request, as
// defined in RFC 6749. It is the payload persisted server-side under the
// opaque session handle.
type TokenResponse struct {
	// AccessToken is the token used to access protected resources. It may be
	// a JWT or opaque, depending on the provider and requested audience.
	AccessToken string `json:"access_token"`

	// IDToken is the OpenID Connect ID token containing user identity claims.
	// Only present when the "openid" scope was requested.
	IDToken string `json:"id_token,omitempty"`

	// TokenType indicates how to use the access token (typically "Bearer").
	TokenType string `json:"token_type,omitempty"`

	// ExpiresIn is the lifetime in seconds of the access token. This is a
	// hint; the authoritative expiration is the JWT's "exp" claim.
	ExpiresIn int `json:"expires_in,omitempty"`

	// Scope is the space-separated list of granted scopes. May be less than
	// requested if some scopes were denied.
	Scope string `json:"scope,omitempty"`
}

// TTL returns the session lifetime derived from the token response, falling
// back to DefaultExpiresIn when the provider did not say.
func (t *TokenResponse) TTL() time.Duration {
	expiresIn := t.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = DefaultExpiresIn
	}
	return time.Duration(expiresIn) * time.Second
}
