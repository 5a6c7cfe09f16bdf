package idp

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"github.com/lefeverd/openid-proxy/internal/config"
	"github.com/lefeverd/openid-proxy/oauth2"
	"github.com/lefeverd/openid-proxy/token"
)

const (
	mockKid       = "1234"
	mockSubject   = "idp|123456789"
	mockExpiresIn = 24 * 3600
)

// MockClient is a deterministic identity client that signs its own tokens
// with a generated RSA key and never touches the network. Calling /callback
// directly creates a session, which makes the whole login, session and proxy
// chain testable without a live identity provider.
type MockClient struct {
	callbackURL string
	logoutURL   string
	tokens      oauth2.TokenResponse
	decoder     token.Decoder
}

// NewMockClient builds the mock client, pre-signing an access token and an ID
// token shaped like the ones the real provider would issue.
func NewMockClient(cfg config.Config) (*MockClient, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("failed to generate mock signing key: %w", err)
	}

	now := time.Now()
	expiry := now.Add(mockExpiresIn * time.Second)

	accessToken, err := signMockToken(key, jwtlib.MapClaims{
		"iss":   cfg.GetIssuer(),
		"sub":   mockSubject,
		"aud":   []string{cfg.GetAudience(), cfg.GetBaseURL() + "/userinfo"},
		"iat":   now.Unix(),
		"exp":   expiry.Unix(),
		"azp":   cfg.GetClientID(),
		"scope": "openid profile",
	})
	if err != nil {
		return nil, err
	}

	idToken, err := signMockToken(key, jwtlib.MapClaims{
		"iss":        cfg.GetIssuer(),
		"sub":        mockSubject,
		"aud":        cfg.GetClientID(),
		"iat":        now.Unix(),
		"exp":        expiry.Unix(),
		"nickname":   "name.lastname",
		"name":       "name.lastname@mailprovider.com",
		"updated_at": now.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, err
	}

	log.Info().Msg("You can call /callback to create the session.")
	log.Info().Msg("It will return a cookie containing the session ID.")

	return &MockClient{
		callbackURL: cfg.GetCallbackURL(),
		logoutURL:   cfg.GetLogoutRedirectURL(),
		tokens: oauth2.TokenResponse{
			AccessToken: accessToken,
			IDToken:     idToken,
			TokenType:   "Bearer",
			ExpiresIn:   mockExpiresIn,
			Scope:       "openid profile",
		},
		decoder: token.NewStaticDecoder(&key.PublicKey, cfg.GetIssuer(), cfg.GetSigningAlgorithm()),
	}, nil
}

func signMockToken(key *rsa.PrivateKey, claims jwtlib.MapClaims) (string, error) {
	tok := jwtlib.NewWithClaims(jwtlib.SigningMethodRS256, claims)
	tok.Header["kid"] = mockKid
	signed, err := tok.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("failed to sign mock token: %w", err)
	}
	return signed, nil
}

// AuthCodeURL redirects straight to the callback, skipping the provider.
func (c *MockClient) AuthCodeURL(string) string {
	return c.callbackURL
}

// Exchange returns the pre-signed token set without any network call.
func (c *MockClient) Exchange(context.Context, string) (*oauth2.TokenResponse, error) {
	tokens := c.tokens
	return &tokens, nil
}

// LogoutURL skips the provider logout endpoint and redirects directly.
func (c *MockClient) LogoutURL(returnTo string) string {
	if returnTo != "" {
		return returnTo
	}
	return c.logoutURL
}

// DeleteUser is a no-op success.
func (c *MockClient) DeleteUser(_ context.Context, subject string) error {
	log.Info().Str("subject", subject).Msg("Mock client ignoring user deletion")
	return nil
}

// Decoder returns a static decoder over the mock public key.
func (c *MockClient) Decoder() token.Decoder {
	return c.decoder
}

var _ Client = (*MockClient)(nil)
