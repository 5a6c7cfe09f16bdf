package token

import (
	jwtlib "github.com/golang-jwt/jwt/v5"
)

// StaticDecoder verifies tokens against a single fixed public key. It is used
// by the mock identity client and by deployments with a statically configured
// signing key; key resolution is the only difference from JWKSDecoder.
type StaticDecoder struct {
	key       interface{}
	issuer    string
	algorithm string
}

// NewStaticDecoder creates a decoder using the given verification key.
func NewStaticDecoder(key interface{}, issuer, algorithm string) *StaticDecoder {
	return &StaticDecoder{
		key:       key,
		issuer:    issuer,
		algorithm: algorithm,
	}
}

// Decode verifies the token and returns its claims.
func (d *StaticDecoder) Decode(rawToken, audience string) (Claims, error) {
	keyFunc := func(*jwtlib.Token) (interface{}, error) {
		return d.key, nil
	}
	return verify(rawToken, audience, d.issuer, d.algorithm, keyFunc)
}

var _ Decoder = (*StaticDecoder)(nil)
