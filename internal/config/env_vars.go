package config

import (
	"fmt"
	"os"
)

const (
	portEnvVar   = "PORT"
	hostEnvVar   = "HOST"
	appNameVar   = "APP_NAME"
	routesEnvVar = "ROUTES_FILE"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetHost() string {
	return GetEnv(hostEnvVar, "127.0.0.1")
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "OpenID Proxy")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func (EnvVars) GetDebug() bool {
	return os.Getenv("DEBUG") != ""
}

func (EnvVars) GetRoutesFile() string {
	return GetEnv(routesEnvVar, "routes.yaml")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
