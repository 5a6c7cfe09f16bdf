package config

import "os"

type OAuthConfig interface {
	GetClientID() string
	GetClientSecret() string
	GetCallbackURL() string
	GetDomain() string
	GetBaseURL() string
	GetIssuer() string
	GetAudience() string
	GetJWKSURL() string
	GetSigningAlgorithm() string
	GetIssuerDiscovery() bool
	GetMockOAuth() bool
	GetManagementClientID() string
	GetManagementClientSecret() string
	GetManagementAudience() string
	GetLoginRedirectURL() string
	GetLoggedInRedirectURL() string
	GetLogoutRedirectURL() string
}

type OAuth struct{}

var _ OAuthConfig = OAuth{}

func (OAuth) GetClientID() string {
	return GetEnv("OAUTH_CLIENT_ID", "")
}

func (OAuth) GetClientSecret() string {
	return GetEnv("OAUTH_CLIENT_SECRET", "")
}

func (OAuth) GetCallbackURL() string {
	return GetEnv("OAUTH_CALLBACK_URL", "")
}

func (OAuth) GetDomain() string {
	return GetEnv("OAUTH_DOMAIN", "")
}

// GetBaseURL returns the identity provider base URL, derived from the domain.
func (o OAuth) GetBaseURL() string {
	return "https://" + o.GetDomain()
}

// GetIssuer returns the expected `iss` claim value. Auth0-style providers
// issue tokens with a trailing slash on the issuer.
func (o OAuth) GetIssuer() string {
	return o.GetBaseURL() + "/"
}

func (o OAuth) GetAudience() string {
	return GetEnv("OAUTH_AUDIENCE", o.GetBaseURL()+"/userinfo")
}

func (OAuth) GetJWKSURL() string {
	return GetEnv("OAUTH_JWKS_URL", "")
}

func (OAuth) GetSigningAlgorithm() string {
	return GetEnv("OAUTH_SIGNING_ALGORITHM", "RS256")
}

// GetIssuerDiscovery reports whether provider endpoints should be resolved via
// OIDC discovery rather than the Auth0-style computed endpoints.
func (OAuth) GetIssuerDiscovery() bool {
	return os.Getenv("OAUTH_ISSUER_DISCOVERY") != ""
}

func (OAuth) GetMockOAuth() bool {
	return os.Getenv("MOCK_OAUTH") != ""
}

func (o OAuth) GetManagementClientID() string {
	return GetEnv("OAUTH_MANAGEMENT_CLIENT_ID", o.GetClientID())
}

func (o OAuth) GetManagementClientSecret() string {
	return GetEnv("OAUTH_MANAGEMENT_CLIENT_SECRET", o.GetClientSecret())
}

func (o OAuth) GetManagementAudience() string {
	return GetEnv("OAUTH_MANAGEMENT_AUDIENCE", o.GetBaseURL()+"/api/v2/")
}

func (OAuth) GetLoginRedirectURL() string {
	return GetEnv("REDIRECT_LOGIN_URL", "")
}

func (OAuth) GetLoggedInRedirectURL() string {
	return GetEnv("REDIRECT_LOGGED_IN_URL", "")
}

func (OAuth) GetLogoutRedirectURL() string {
	return GetEnv("REDIRECT_LOGOUT_URL", "")
}
