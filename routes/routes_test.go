package routes_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lefeverd/openid-proxy/routes"
)

func writeRoutesFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "routes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeRoutesFile(t, `
routes:
  - name: api
    path: /api
    upstream: http://127.0.0.1:9999
  - name: search
    path: /search
    upstream: http://search.internal:8080
`)

	loaded, err := routes.Load(path)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	require.Equal(t, routes.Route{Name: "api", Path: "/api", Upstream: "http://127.0.0.1:9999"}, loaded[0])
	require.Equal(t, routes.Route{Name: "search", Path: "/search", Upstream: "http://search.internal:8080"}, loaded[1])
}

func TestLoadMissingFileIsNotFatal(t *testing.T) {
	loaded, err := routes.Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	require.Empty(t, loaded)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeRoutesFile(t, "routes: [\n")

	_, err := routes.Load(path)
	require.Error(t, err)
}

func TestLoadIncompleteRoute(t *testing.T) {
	path := writeRoutesFile(t, `
routes:
  - name: api
    path: /api
`)

	_, err := routes.Load(path)
	require.Error(t, err)
}
