// Package server exposes the gateway's HTTP surface: the session lifecycle
// endpoints, the auth-gate middleware and the authenticated proxy.
package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lefeverd/openid-proxy/idp"
	"github.com/lefeverd/openid-proxy/internal/config"
	"github.com/lefeverd/openid-proxy/routes"
	"github.com/lefeverd/openid-proxy/sessions"
)

const upstreamCallTimeout = 30 * time.Second

type Server struct {
	env            string
	mux            *http.ServeMux
	routes         []string
	config         config.Config
	store          sessions.Store
	idp            idp.Client
	cookies        *cookieCodec
	proxyRoutes    map[string]routes.Route
	upstreamClient *http.Client
}

func New(cfg config.Config, store sessions.Store, idpClient idp.Client, proxyRoutes []routes.Route) *Server {
	s := &Server{
		env:            cfg.GetEnv(),
		mux:            http.NewServeMux(),
		config:         cfg,
		store:          store,
		idp:            idpClient,
		cookies:        newCookieCodec(cfg.GetSecretKey()),
		proxyRoutes:    make(map[string]routes.Route),
		upstreamClient: &http.Client{Timeout: upstreamCallTimeout},
	}

	s.initRoutes()
	s.registerProxyRoutes(proxyRoutes)
	s.logRoutes()

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET /{$}", s.IndexHandler())
	s.RegisterRouteFunc("GET /login", s.LoginHandler())
	s.RegisterRouteFunc("GET /callback", s.CallbackHandler())
	s.RegisterRouteHandler("GET /me", ChainMiddleware(s.MeHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET /logout", s.LogoutHandler())
	s.RegisterRouteFunc("POST /logout", s.LogoutHandler())
	s.RegisterRouteHandler("OPTIONS /delete", ChainMiddleware(s.DeleteHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST /delete", ChainMiddleware(s.DeleteHandler(), s.APIMiddleware()...))
}

// registerProxyRoutes mounts every configured route under its path prefix.
// Handlers resolve the route by name at request time, so a registration that
// somehow outlives its configuration entry surfaces as a logged 500 instead
// of a panic.
func (s *Server) registerProxyRoutes(proxyRoutes []routes.Route) {
	for _, route := range proxyRoutes {
		s.proxyRoutes[route.Name] = route

		middleware := s.APIMiddleware()
		if route.Protected {
			middleware = append(middleware, s.RequiresAuth())
		}
		pattern := strings.TrimSuffix(route.Path, "/") + "/{path...}"
		s.RegisterRouteHandler(pattern, ChainMiddleware(s.ProxyHandler(route.Name), middleware...))
	}
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Debug().Msgf("[%-19s] %s", displayMethod, path)
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
