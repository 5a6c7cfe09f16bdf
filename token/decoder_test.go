package token_test

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	apperrors "github.com/lefeverd/openid-proxy/internal/errors"
	"github.com/lefeverd/openid-proxy/token"
)

const (
	testIssuer   = "https://gateway.fakeidp.test/"
	testAudience = "https://127.0.0.1:8080"
	testKid      = "test-kid-1"
)

func generateKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func tokenClaims() jwtlib.MapClaims {
	now := time.Now()
	return jwtlib.MapClaims{
		"iss":   testIssuer,
		"sub":   "idp|123456789",
		"aud":   []string{testAudience, testIssuer + "userinfo"},
		"iat":   now.Unix(),
		"exp":   now.Add(24 * time.Hour).Unix(),
		"scope": "openid profile",
	}
}

func mintToken(t *testing.T, claims jwtlib.MapClaims, key *rsa.PrivateKey, kid string) string {
	t.Helper()
	tok := jwtlib.NewWithClaims(jwtlib.SigningMethodRS256, claims)
	if kid != "" {
		tok.Header["kid"] = kid
	}
	signed, err := tok.SignedString(key)
	require.NoError(t, err)
	return signed
}

// jwksServer serves the public half of key under the given kid and counts how
// many times the document was fetched.
func jwksServer(t *testing.T, key *rsa.PrivateKey, kid string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var fetches atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fetches.Add(1)
		document := map[string]interface{}{
			"keys": []map[string]string{{
				"kty": "RSA",
				"kid": kid,
				"use": "sig",
				"n":   base64.RawURLEncoding.EncodeToString(key.PublicKey.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.PublicKey.E)).Bytes()),
			}},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(document))
	}))
	t.Cleanup(server.Close)
	return server, &fetches
}

func requireErrorCode(t *testing.T, err error, code int) {
	t.Helper()
	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, code, appErr.Code)
	require.Equal(t, http.StatusUnauthorized, appErr.Status)
}

func TestStaticDecoder(t *testing.T) {
	key := generateKey(t)
	decoder := token.NewStaticDecoder(&key.PublicKey, testIssuer, "RS256")

	claims, err := decoder.Decode(mintToken(t, tokenClaims(), key, ""), testAudience)
	require.NoError(t, err)
	require.Equal(t, "idp|123456789", claims["sub"])
}

func TestStaticDecoderBadAudience(t *testing.T) {
	key := generateKey(t)
	decoder := token.NewStaticDecoder(&key.PublicKey, testIssuer, "RS256")

	_, err := decoder.Decode(mintToken(t, tokenClaims(), key, ""), "bad_audience")
	requireErrorCode(t, err, 2)
}

func TestStaticDecoderBadIssuer(t *testing.T) {
	key := generateKey(t)
	decoder := token.NewStaticDecoder(&key.PublicKey, "https://other-issuer.test/", "RS256")

	_, err := decoder.Decode(mintToken(t, tokenClaims(), key, ""), testAudience)
	requireErrorCode(t, err, 2)
}

func TestStaticDecoderExpired(t *testing.T) {
	key := generateKey(t)
	decoder := token.NewStaticDecoder(&key.PublicKey, testIssuer, "RS256")

	claims := tokenClaims()
	claims["iat"] = time.Now().Add(-48 * time.Hour).Unix()
	claims["exp"] = time.Now().Add(-24 * time.Hour).Unix()

	_, err := decoder.Decode(mintToken(t, claims, key, ""), testAudience)
	requireErrorCode(t, err, 1)
}

func TestStaticDecoderBadSignature(t *testing.T) {
	signingKey := generateKey(t)
	otherKey := generateKey(t)
	decoder := token.NewStaticDecoder(&otherKey.PublicKey, testIssuer, "RS256")

	_, err := decoder.Decode(mintToken(t, tokenClaims(), signingKey, ""), testAudience)
	requireErrorCode(t, err, 3)
}

func TestStaticDecoderMalformedToken(t *testing.T) {
	key := generateKey(t)
	decoder := token.NewStaticDecoder(&key.PublicKey, testIssuer, "RS256")

	_, err := decoder.Decode("not-a-token", testAudience)
	requireErrorCode(t, err, 3)
}

func TestJWKSDecoder(t *testing.T) {
	key := generateKey(t)
	server, fetches := jwksServer(t, key, testKid)
	decoder := token.NewJWKSDecoder(server.URL, testIssuer, "RS256")

	claims, err := decoder.Decode(mintToken(t, tokenClaims(), key, testKid), testAudience)
	require.NoError(t, err)
	require.Equal(t, "idp|123456789", claims["sub"])
	require.EqualValues(t, 1, fetches.Load())
}

func TestJWKSDecoderCachesKeySet(t *testing.T) {
	key := generateKey(t)
	server, fetches := jwksServer(t, key, testKid)
	decoder := token.NewJWKSDecoder(server.URL, testIssuer, "RS256")

	for i := 0; i < 5; i++ {
		_, err := decoder.Decode(mintToken(t, tokenClaims(), key, testKid), testAudience)
		require.NoError(t, err)
	}
	require.EqualValues(t, 1, fetches.Load())
}

func TestJWKSDecoderUnknownKid(t *testing.T) {
	key := generateKey(t)
	server, fetches := jwksServer(t, key, testKid)
	decoder := token.NewJWKSDecoder(server.URL, testIssuer, "RS256")

	_, err := decoder.Decode(mintToken(t, tokenClaims(), key, "unknown-kid"), testAudience)
	requireErrorCode(t, err, 4)

	// An unknown kid must not trigger a re-fetch within the same process.
	_, err = decoder.Decode(mintToken(t, tokenClaims(), key, "unknown-kid"), testAudience)
	requireErrorCode(t, err, 4)
	require.EqualValues(t, 1, fetches.Load())
}

func TestJWKSDecoderEndpointUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	key := generateKey(t)
	decoder := token.NewJWKSDecoder(server.URL, testIssuer, "RS256")

	_, err := decoder.Decode(mintToken(t, tokenClaims(), key, testKid), testAudience)
	require.Error(t, err)

	var appErr *apperrors.Error
	require.False(t, apperrors.As(err, &appErr), "fetch failures are not part of the token error taxonomy")
}
