package server

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/lefeverd/openid-proxy/internal/errors"
	"github.com/lefeverd/openid-proxy/oauth2"
	"github.com/lefeverd/openid-proxy/sessions"
)

// sessionID extracts and unseals the session handle from the request cookie.
func (s *Server) sessionID(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return "", false
	}
	sessionID, err := s.cookies.open(cookie.Value)
	if err != nil {
		log.Debug().Err(err).Msg("Rejected session cookie")
		return "", false
	}
	return sessionID, true
}

// sessionData resolves the request's session to its stored tokens. A missing
// cookie, an unsealable cookie or an expired session all yield nil.
func (s *Server) sessionData(r *http.Request) *oauth2.TokenResponse {
	sessionID, ok := s.sessionID(r)
	if !ok {
		return nil
	}
	tokens, err := s.store.Get(r.Context(), sessionID)
	if err != nil {
		if !errors.Is(err, sessions.ErrNotFound) {
			log.Error().Err(err).Msg("Failed to load session from store")
		}
		return nil
	}
	return tokens
}
