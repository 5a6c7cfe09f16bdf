// Package configtest provides a fully settable config.Config implementation
// for tests.
package configtest

import (
	"strings"

	"github.com/lefeverd/openid-proxy/internal/config"
)

// Config implements config.Config with plain fields instead of environment
// variables.
type Config struct {
	Port                   string
	Host                   string
	AppName                string
	Env                    string
	Debug                  bool
	RoutesFile             string
	ClientID               string
	ClientSecret           string
	CallbackURL            string
	Domain                 string
	BaseURL                string
	Issuer                 string
	Audience               string
	JWKSURL                string
	SigningAlgorithm       string
	IssuerDiscovery        bool
	MockOAuth              bool
	ManagementClientID     string
	ManagementClientSecret string
	ManagementAudience     string
	LoginRedirectURL       string
	LoggedInRedirectURL    string
	LogoutRedirectURL      string
	SecretKey              string
	RedisHost              string
	RedisPort              string
	RedisPassword          string
	AllowedOrigins         []string
}

var _ config.Config = (*Config)(nil)

// New returns a config with defaults that satisfy validation and mirror a
// typical deployment.
func New() *Config {
	return &Config{
		Port:                "8080",
		Host:                "127.0.0.1",
		AppName:             "OpenID Proxy",
		Env:                 "TEST",
		ClientID:            "test-client-id",
		ClientSecret:        "test-client-secret",
		CallbackURL:         "http://127.0.0.1:8080/callback",
		Domain:              "gateway.fakeidp.test",
		Audience:            "https://127.0.0.1:8080",
		SigningAlgorithm:    "RS256",
		MockOAuth:           true,
		LoginRedirectURL:    "http://127.0.0.1:3000/login",
		LoggedInRedirectURL: "http://127.0.0.1:3000/",
		LogoutRedirectURL:   "http://127.0.0.1:3000/bye",
		SecretKey:           "test-secret-key",
		RoutesFile:          "routes.yaml",
	}
}

func (c *Config) GetPort() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func (c *Config) GetHost() string       { return c.Host }
func (c *Config) GetAppName() string    { return c.AppName }
func (c *Config) GetEnv() string        { return c.Env }
func (c *Config) GetDebug() bool        { return c.Debug }
func (c *Config) GetRoutesFile() string { return c.RoutesFile }

func (c *Config) GetClientID() string     { return c.ClientID }
func (c *Config) GetClientSecret() string { return c.ClientSecret }
func (c *Config) GetCallbackURL() string  { return c.CallbackURL }
func (c *Config) GetDomain() string       { return c.Domain }

func (c *Config) GetBaseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return "https://" + c.Domain
}

func (c *Config) GetIssuer() string {
	if c.Issuer != "" {
		return c.Issuer
	}
	return c.GetBaseURL() + "/"
}

func (c *Config) GetAudience() string         { return c.Audience }
func (c *Config) GetJWKSURL() string          { return c.JWKSURL }
func (c *Config) GetSigningAlgorithm() string { return c.SigningAlgorithm }
func (c *Config) GetIssuerDiscovery() bool    { return c.IssuerDiscovery }
func (c *Config) GetMockOAuth() bool          { return c.MockOAuth }

func (c *Config) GetManagementClientID() string {
	if c.ManagementClientID != "" {
		return c.ManagementClientID
	}
	return c.ClientID
}

func (c *Config) GetManagementClientSecret() string {
	if c.ManagementClientSecret != "" {
		return c.ManagementClientSecret
	}
	return c.ClientSecret
}

func (c *Config) GetManagementAudience() string {
	if c.ManagementAudience != "" {
		return c.ManagementAudience
	}
	return c.GetBaseURL() + "/api/v2/"
}

func (c *Config) GetLoginRedirectURL() string    { return c.LoginRedirectURL }
func (c *Config) GetLoggedInRedirectURL() string { return c.LoggedInRedirectURL }
func (c *Config) GetLogoutRedirectURL() string   { return c.LogoutRedirectURL }

func (c *Config) GetSecretKey() string     { return c.SecretKey }
func (c *Config) GetRedisHost() string     { return c.RedisHost }
func (c *Config) GetRedisPort() string     { return c.RedisPort }
func (c *Config) GetRedisPassword() string { return c.RedisPassword }

func (c *Config) GetAllowedOrigins() config.AllowedOrigins {
	origins := config.AllowedOrigins{}
	for _, origin := range c.AllowedOrigins {
		origins[origin] = struct{}{}
	}
	return origins
}

func (c *Config) GetAllowedMethods() string {
	return "GET, HEAD, POST, PUT, PATCH, DELETE, OPTIONS"
}

func (c *Config) GetAllowedHeaders() string {
	return "Content-Type, Authorization"
}
