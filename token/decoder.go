// Package token verifies the JWTs issued by the identity provider.
//
// Two decoder variants exist: JWKSDecoder resolves verification keys from the
// provider's published JWKS, StaticDecoder uses a single fixed key. Both run
// the same verification (signature, issuer, audience, expiry) and report
// failures through the typed errors in internal/errors.
package token

import (
	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/lefeverd/openid-proxy/internal/errors"
)

// Claims holds the verified token claims.
type Claims = jwtlib.MapClaims

// Decoder verifies a raw token against the given audience and returns its
// claims. The audience is per-call because access tokens are verified against
// the API audience while ID tokens are verified against the client ID.
type Decoder interface {
	Decode(rawToken, audience string) (Claims, error)
}

// verify runs the shared verification path. The key is resolved by keyFunc so
// both decoder variants share the exact same claim checks and error mapping.
func verify(rawToken, audience, issuer, algorithm string, keyFunc jwtlib.Keyfunc) (Claims, error) {
	claims := Claims{}
	parser := jwtlib.NewParser(
		jwtlib.WithValidMethods([]string{algorithm}),
		jwtlib.WithIssuer(issuer),
		jwtlib.WithAudience(audience),
		jwtlib.WithExpirationRequired(),
	)

	_, err := parser.ParseWithClaims(rawToken, claims, keyFunc)
	if err != nil {
		return nil, mapVerificationError(err)
	}
	return claims, nil
}

// mapVerificationError reduces the jwt library's error chain to the gateway's
// stable taxonomy. Callers only branch on HTTP status, but the distinct kinds
// are kept for diagnostics.
func mapVerificationError(err error) error {
	switch {
	case errors.Is(err, errors.ErrJWKSKeyNotFound):
		return errors.ErrJWKSKeyNotFound
	case errors.Is(err, jwtlib.ErrTokenExpired):
		return errors.ErrTokenExpired
	case errors.Is(err, jwtlib.ErrTokenInvalidIssuer),
		errors.Is(err, jwtlib.ErrTokenInvalidAudience),
		errors.Is(err, jwtlib.ErrTokenRequiredClaimMissing),
		errors.Is(err, jwtlib.ErrTokenUsedBeforeIssued),
		errors.Is(err, jwtlib.ErrTokenNotValidYet):
		return errors.ErrTokenClaimsInvalid.WithDescription(err.Error())
	default:
		// Bad signature, malformed token, unexpected signing method.
		return errors.ErrTokenSignature
	}
}
