package server

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

// sessionCookieName is the cookie carrying the sealed session handle. The
// cookie never holds tokens, only the opaque reference to the server-side
// session.
const sessionCookieName = "session_id"

// cookieCodec seals and opens the session cookie value with a key derived
// from the configured secret. Sealing keeps the handle opaque and makes
// forged or tampered cookies indistinguishable from absent ones.
type cookieCodec struct {
	key [32]byte
}

func newCookieCodec(secret string) *cookieCodec {
	codec := &cookieCodec{}
	reader := hkdf.New(sha256.New, []byte(secret), nil, []byte("openid-proxy session cookie"))
	if _, err := io.ReadFull(reader, codec.key[:]); err != nil {
		panic("failed to derive cookie key: " + err.Error())
	}
	return codec
}

func (c *cookieCodec) seal(value string) string {
	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		panic("failed to generate cookie nonce: " + err.Error())
	}
	sealed := secretbox.Seal(nonce[:], []byte(value), &nonce, &c.key)
	return base64.RawURLEncoding.EncodeToString(sealed)
}

func (c *cookieCodec) open(encoded string) (string, error) {
	sealed, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("invalid cookie encoding: %w", err)
	}
	if len(sealed) < 24 {
		return "", fmt.Errorf("cookie value too short")
	}
	var nonce [24]byte
	copy(nonce[:], sealed[:24])
	value, ok := secretbox.Open(nil, sealed[24:], &nonce, &c.key)
	if !ok {
		return "", fmt.Errorf("cookie authentication failed")
	}
	return string(value), nil
}

// SetSessionCookie attaches the sealed session handle to the response. The
// cookie lives as long as the server-side session.
func (s *Server) SetSessionCookie(w http.ResponseWriter, r *http.Request, sessionID string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    s.cookies.seal(sessionID),
		Path:     "/",
		HttpOnly: true,
		Secure:   getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
	})
}

// ClearSessionCookie instructs the client to drop the session cookie.
func (s *Server) ClearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
