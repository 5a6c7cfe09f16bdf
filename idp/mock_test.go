package idp_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lefeverd/openid-proxy/idp"
	"github.com/lefeverd/openid-proxy/internal/config/configtest"
)

func TestMockClientExchangeAndDecode(t *testing.T) {
	cfg := configtest.New()
	client, err := idp.NewMockClient(cfg)
	require.NoError(t, err)

	tokens, err := client.Exchange(context.Background(), "any-code")
	require.NoError(t, err)
	require.NotEmpty(t, tokens.AccessToken)
	require.NotEmpty(t, tokens.IDToken)
	require.Equal(t, "Bearer", tokens.TokenType)
	require.Equal(t, 24*3600, tokens.ExpiresIn)

	// The access token verifies against the API audience, the ID token
	// against the client ID.
	accessClaims, err := client.Decoder().Decode(tokens.AccessToken, cfg.GetAudience())
	require.NoError(t, err)
	require.Equal(t, "idp|123456789", accessClaims["sub"])

	idClaims, err := client.Decoder().Decode(tokens.IDToken, cfg.GetClientID())
	require.NoError(t, err)
	require.Equal(t, "idp|123456789", idClaims["sub"])
	require.Equal(t, "name.lastname", idClaims["nickname"])
}

func TestMockClientRedirects(t *testing.T) {
	cfg := configtest.New()
	client, err := idp.NewMockClient(cfg)
	require.NoError(t, err)

	// The mock skips the provider entirely.
	require.Equal(t, cfg.GetCallbackURL(), client.AuthCodeURL("some-state"))
	require.Equal(t, cfg.GetLogoutRedirectURL(), client.LogoutURL(""))
	require.Equal(t, "http://example.com/after-logout", client.LogoutURL("http://example.com/after-logout"))
}

func TestMockClientDeleteUser(t *testing.T) {
	client, err := idp.NewMockClient(configtest.New())
	require.NoError(t, err)

	require.NoError(t, client.DeleteUser(context.Background(), "idp|123456789"))
}

func TestNewSelectsMockClient(t *testing.T) {
	cfg := configtest.New()
	cfg.MockOAuth = true

	client, err := idp.New(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.IsType(t, &idp.MockClient{}, client)
}
