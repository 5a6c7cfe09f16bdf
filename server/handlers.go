package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/lefeverd/openid-proxy/internal/errors"
)

// IndexHandler reports that the gateway is up.
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "running"})
	}
}

// LoginHandler starts the authorization-code flow by redirecting the browser
// to the identity provider.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := uuid.New().String()
		http.Redirect(w, r, s.idp.AuthCodeURL(state), http.StatusFound)
	}
}

// CallbackHandler finishes the authorization-code flow: it exchanges the code
// for tokens, creates the server-side session and hands the browser a sealed
// cookie referencing it.
func (s *Server) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.FormValue("code")
		tokens, err := s.idp.Exchange(r.Context(), code)
		if err != nil {
			log.Error().Err(err).Msg("Authorization code exchange failed")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte("{}"))
			return
		}

		sessionID := uuid.New().String()
		ttl := tokens.TTL()
		if err := s.store.Create(r.Context(), sessionID, *tokens, ttl); err != nil {
			log.Error().Err(err).Msg("Failed to create session")
			errors.WriteJSON(w, err)
			return
		}

		s.SetSessionCookie(w, r, sessionID, ttl)
		http.Redirect(w, r, s.config.GetLoggedInRedirectURL(), http.StatusFound)
	}
}

// MeHandler returns the verified ID token claims of the current session.
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokens := s.sessionData(r)
		if tokens == nil {
			errors.WriteJSON(w, errors.ErrSessionNotFound)
			return
		}

		claims, err := s.idp.Decoder().Decode(tokens.IDToken, s.config.GetClientID())
		if err != nil {
			errors.WriteJSON(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(claims)
	}
}

// LogoutHandler tears down the session on both sides: the server-side store,
// the browser cookie, and finally the identity provider's own session via its
// logout endpoint.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sessionID, ok := s.sessionID(r); ok {
			// Best effort: an already-gone session must not block logout.
			if !s.store.Destroy(r.Context(), sessionID) {
				log.Debug().Msg("No session to destroy during logout")
			}
		}
		s.ClearSessionCookie(w, r)

		returnTo := r.URL.Query().Get("redirect_url")
		http.Redirect(w, r, s.idp.LogoutURL(returnTo), http.StatusFound)
	}
}

// DeleteHandler removes the current user's account at the identity provider
// and tears down the session.
func (s *Server) DeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		tokens := s.sessionData(r)
		if tokens == nil {
			errors.WriteJSON(w, errors.ErrSessionNotFound)
			return
		}

		claims, err := s.idp.Decoder().Decode(tokens.IDToken, s.config.GetClientID())
		if err != nil {
			errors.WriteJSON(w, err)
			return
		}

		subject, _ := claims["sub"].(string)
		if err := s.idp.DeleteUser(r.Context(), subject); err != nil {
			log.Error().Err(err).Str("subject", subject).Msg("User deletion failed")
			errors.WriteJSON(w, err)
			return
		}

		if sessionID, ok := s.sessionID(r); ok {
			s.store.Destroy(r.Context(), sessionID)
		}
		s.ClearSessionCookie(w, r)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"success": "true"})
	}
}
