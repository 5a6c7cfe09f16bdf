package idp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/rs/zerolog/log"
	xoauth2 "golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/lefeverd/openid-proxy/internal/config"
	"github.com/lefeverd/openid-proxy/internal/errors"
	"github.com/lefeverd/openid-proxy/oauth2"
	"github.com/lefeverd/openid-proxy/sessions"
	"github.com/lefeverd/openid-proxy/token"
)

// managementSessionID is the fixed store handle under which the
// machine-to-machine management token is cached, so repeated admin calls skip
// the client-credentials grant.
const managementSessionID = "idp-management-token"

const providerCallTimeout = 30 * time.Second

// ProviderClient talks to a real OAuth2/OIDC identity provider.
type ProviderClient struct {
	oauthConfig *xoauth2.Config
	baseURL     string
	audience    string
	logoutURL   string
	decoder     token.Decoder
	store       sessions.Store
	management  *clientcredentials.Config
	httpClient  *http.Client
}

// NewProviderClient builds the provider-backed client. Endpoints come from
// OIDC discovery when enabled, otherwise from the Auth0-style paths under the
// provider base URL.
func NewProviderClient(ctx context.Context, cfg config.Config, store sessions.Store) (*ProviderClient, error) {
	httpClient := &http.Client{Timeout: providerCallTimeout}

	endpoint := xoauth2.Endpoint{
		AuthURL:  cfg.GetBaseURL() + "/authorize",
		TokenURL: cfg.GetBaseURL() + "/oauth/token",
	}
	if cfg.GetIssuerDiscovery() {
		provider, err := oidc.NewProvider(oidc.ClientContext(ctx, httpClient), cfg.GetIssuer())
		if err != nil {
			return nil, fmt.Errorf("failed to discover provider endpoints: %w", err)
		}
		endpoint = provider.Endpoint()
		log.Info().Str("issuer", cfg.GetIssuer()).Msg("Resolved provider endpoints via OIDC discovery")
	}

	return &ProviderClient{
		oauthConfig: &xoauth2.Config{
			ClientID:     cfg.GetClientID(),
			ClientSecret: cfg.GetClientSecret(),
			Endpoint:     endpoint,
			RedirectURL:  cfg.GetCallbackURL(),
			Scopes:       []string{"openid", "profile"},
		},
		baseURL:   cfg.GetBaseURL(),
		audience:  cfg.GetAudience(),
		logoutURL: cfg.GetLogoutRedirectURL(),
		decoder:   token.NewJWKSDecoder(cfg.GetJWKSURL(), cfg.GetIssuer(), cfg.GetSigningAlgorithm()),
		store:     store,
		management: &clientcredentials.Config{
			ClientID:     cfg.GetManagementClientID(),
			ClientSecret: cfg.GetManagementClientSecret(),
			TokenURL:     endpoint.TokenURL,
			EndpointParams: url.Values{
				"audience": {cfg.GetManagementAudience()},
			},
		},
		httpClient: httpClient,
	}, nil
}

// AuthCodeURL builds the authorization redirect with the configured callback
// URL and audience.
func (c *ProviderClient) AuthCodeURL(state string) string {
	return c.oauthConfig.AuthCodeURL(state, xoauth2.SetAuthURLParam("audience", c.audience))
}

// Exchange trades the authorization code for tokens at the provider's token
// endpoint.
func (c *ProviderClient) Exchange(ctx context.Context, code string) (*oauth2.TokenResponse, error) {
	tok, err := c.oauthConfig.Exchange(c.clientContext(ctx), code)
	if err != nil {
		return nil, fmt.Errorf("authorization code exchange failed: %w", err)
	}

	response := &oauth2.TokenResponse{
		AccessToken: tok.AccessToken,
		TokenType:   tok.TokenType,
	}
	if idToken, ok := tok.Extra("id_token").(string); ok {
		response.IDToken = idToken
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		response.Scope = scope
	}
	if !tok.Expiry.IsZero() {
		response.ExpiresIn = int(time.Until(tok.Expiry).Seconds())
	}
	return response, nil
}

// LogoutURL builds the provider logout redirect, defaulting returnTo to the
// configured post-logout URL.
func (c *ProviderClient) LogoutURL(returnTo string) string {
	if returnTo == "" {
		returnTo = c.logoutURL
	}
	params := url.Values{
		"returnTo":  {returnTo},
		"client_id": {c.oauthConfig.ClientID},
	}
	return c.baseURL + "/v2/logout?" + params.Encode()
}

// DeleteUser removes the user from the provider via its management API.
func (c *ProviderClient) DeleteUser(ctx context.Context, subject string) error {
	managementToken, err := c.managementToken(ctx)
	if err != nil {
		return err
	}

	endpoint := c.baseURL + "/api/v2/users/" + url.PathEscape(subject)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build management API request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+managementToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.ErrManagementAPIFailed.WithDescription(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Error().Int("status", resp.StatusCode).Bytes("body", body).Str("subject", subject).
			Msg("Management API user deletion failed")
		return errors.ErrManagementAPIFailed.WithDescription(
			fmt.Sprintf("management API returned status %d", resp.StatusCode))
	}
	log.Info().Str("subject", subject).Msg("Deleted user via management API")
	return nil
}

// Decoder returns the JWKS-backed token decoder.
func (c *ProviderClient) Decoder() token.Decoder {
	return c.decoder
}

// managementToken returns a cached management token, obtaining a fresh one
// through the client-credentials grant when none is cached. Concurrent first
// calls may each fetch; the extra round trip is harmless and the last write
// wins.
func (c *ProviderClient) managementToken(ctx context.Context) (string, error) {
	if cached, err := c.store.Get(ctx, managementSessionID); err == nil {
		return cached.AccessToken, nil
	}

	tok, err := c.management.Token(c.clientContext(ctx))
	if err != nil {
		return "", errors.ErrManagementAPIFailed.WithDescription(err.Error())
	}
	if tok.AccessToken == "" {
		return "", errors.ErrManagementAPIFailed.WithDescription("token response contains no access_token")
	}

	cached := oauth2.TokenResponse{
		AccessToken: tok.AccessToken,
		TokenType:   tok.TokenType,
	}
	if !tok.Expiry.IsZero() {
		cached.ExpiresIn = int(time.Until(tok.Expiry).Seconds())
	}
	if err := c.store.Create(ctx, managementSessionID, cached, cached.TTL()); err != nil {
		// Caching is an optimization; the token itself is still usable.
		log.Warn().Err(err).Msg("Failed to cache management token")
	}
	return tok.AccessToken, nil
}

// clientContext makes the oauth2 library use the timeout-bounded HTTP client.
func (c *ProviderClient) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, xoauth2.HTTPClient, c.httpClient)
}

var _ Client = (*ProviderClient)(nil)
