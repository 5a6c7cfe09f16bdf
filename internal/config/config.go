package config

import "fmt"

type Config interface {
	EnvConfig
	OAuthConfig
	SessionConfig
	CorsConfig
}

type EnvConfig interface {
	GetPort() string
	GetHost() string
	GetAppName() string
	GetEnv() string
	GetDebug() bool
	GetRoutesFile() string
}

type mainConfig struct {
	EnvVars
	OAuth
	Session
	Cors
}

// New builds the configuration from the environment. Mandatory parameters are
// validated here so a misconfigured deployment fails at startup, not on the
// first request.
func New() (Config, error) {
	c := mainConfig{}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c mainConfig) validate() error {
	mandatory := map[string]string{
		"OAUTH_CLIENT_ID":        c.GetClientID(),
		"OAUTH_CLIENT_SECRET":    c.GetClientSecret(),
		"OAUTH_CALLBACK_URL":     c.GetCallbackURL(),
		"OAUTH_DOMAIN":           c.GetDomain(),
		"SECRET_KEY":             c.GetSecretKey(),
		"REDIRECT_LOGIN_URL":     c.GetLoginRedirectURL(),
		"REDIRECT_LOGGED_IN_URL": c.GetLoggedInRedirectURL(),
		"REDIRECT_LOGOUT_URL":    c.GetLogoutRedirectURL(),
	}
	// The mock client signs its own tokens, so a JWKS endpoint is only
	// mandatory when talking to a real provider.
	if !c.GetMockOAuth() {
		mandatory["OAUTH_JWKS_URL"] = c.GetJWKSURL()
	}
	for name, value := range mandatory {
		if value == "" {
			return fmt.Errorf("mandatory parameter %s not set", name)
		}
	}
	return nil
}
