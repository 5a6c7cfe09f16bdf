// Package routes loads the proxy route table from the routes.yaml
// configuration file.
package routes

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Route maps a path prefix to an upstream base URL. The table is loaded once
// at startup and never mutated afterwards.
type Route struct {
	Name     string `yaml:"name"`
	Path     string `yaml:"path"`
	Upstream string `yaml:"upstream"`

	// Protected pairs the route with the auth gate: requests without a valid
	// session are redirected to login before any upstream call.
	Protected bool `yaml:"protected"`
}

type routesFile struct {
	Routes []Route `yaml:"routes"`
}

// Load reads the route table from the given file. A missing file is not an
// error: it means nothing will be proxied.
func Load(path string) ([]Route, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		log.Warn().Str("path", path).Msg("No routes file found, nothing will be proxied")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read routes file %s: %w", path, err)
	}

	var file routesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse routes file %s: %w", path, err)
	}

	for _, route := range file.Routes {
		if route.Name == "" || route.Path == "" || route.Upstream == "" {
			return nil, fmt.Errorf("invalid route %+v in %s: name, path and upstream are required", route, path)
		}
		log.Debug().Str("name", route.Name).Str("path", route.Path).Str("upstream", route.Upstream).
			Msg("Loaded proxy route")
	}
	return file.Routes, nil
}
