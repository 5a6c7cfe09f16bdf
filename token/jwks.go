package token

import (
	"context"
	"fmt"
	"sync"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/rs/zerolog/log"

	"github.com/lefeverd/openid-proxy/internal/errors"
)

const jwksFetchTimeout = 10 * time.Second

// JWKSDecoder verifies tokens using the identity provider's published JWKS.
//
// The key set is fetched once and kept for the process lifetime: key rotation
// requires a restart. A kid with no matching cached key is a hard verification
// failure, never a refresh trigger.
type JWKSDecoder struct {
	url       string
	issuer    string
	algorithm string

	mu   sync.RWMutex
	keys jwk.Set
}

// NewJWKSDecoder creates a decoder fetching keys from the given JWKS URL.
// The issuer must match the token's `iss` claim exactly.
func NewJWKSDecoder(url, issuer, algorithm string) *JWKSDecoder {
	return &JWKSDecoder{
		url:       url,
		issuer:    issuer,
		algorithm: algorithm,
	}
}

// Decode verifies the token and returns its claims.
func (d *JWKSDecoder) Decode(rawToken, audience string) (Claims, error) {
	keys, err := d.keySet()
	if err != nil {
		return nil, err
	}

	keyFunc := func(t *jwtlib.Token) (interface{}, error) {
		kid, _ := t.Header["kid"].(string)
		key, found := keys.LookupKeyID(kid)
		if !found {
			return nil, errors.ErrJWKSKeyNotFound
		}
		var rawKey interface{}
		if err := jwk.Export(key, &rawKey); err != nil {
			return nil, fmt.Errorf("failed to export JWKS key %q: %w", kid, err)
		}
		return rawKey, nil
	}
	return verify(rawToken, audience, d.issuer, d.algorithm, keyFunc)
}

// keySet returns the cached key set, fetching it on first use. Concurrent
// first calls may each fetch; the read is idempotent and racing a redundant
// round trip is preferable to holding a lock across network I/O.
func (d *JWKSDecoder) keySet() (jwk.Set, error) {
	d.mu.RLock()
	keys := d.keys
	d.mu.RUnlock()
	if keys != nil {
		return keys, nil
	}

	fetched, err := d.fetch()
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	if d.keys == nil {
		d.keys = fetched
	}
	keys = d.keys
	d.mu.Unlock()
	return keys, nil
}

func (d *JWKSDecoder) fetch() (jwk.Set, error) {
	ctx, cancel := context.WithTimeout(context.Background(), jwksFetchTimeout)
	defer cancel()

	set, err := jwk.Fetch(ctx, d.url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS from %s: %w", d.url, err)
	}
	log.Debug().Int("keys", set.Len()).Str("url", d.url).Msg("Cached JWKS key set")
	return set, nil
}

var _ Decoder = (*JWKSDecoder)(nil)
