package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/lefeverd/openid-proxy/internal/errors"
)

// hopByHopHeaders never travel through a proxy. Stripped from both the
// upstream request and the relayed response.
var hopByHopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// ProxyHandler forwards requests to the upstream of the named route, adding
// identity headers when the caller has a valid session. The route is resolved
// at request time so a stale registration fails loudly instead of panicking.
func (s *Server) ProxyHandler(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		route, ok := s.proxyRoutes[name]
		if !ok {
			log.Error().Str("route", name).Msg("No route configuration could be found")
			w.WriteHeader(errors.ErrNoRouteConfigured.Status)
			return
		}

		// Sanitize before anything else so forged identity headers get
		// audit-logged even on requests that never reach the upstream.
		headers := sanitizeHeaders(r)

		if r.Method == http.MethodOptions || r.Method == http.MethodHead {
			w.WriteHeader(http.StatusOK)
			return
		}

		if tokens := s.sessionData(r); tokens != nil {
			if _, err := s.idp.Decoder().Decode(tokens.AccessToken, s.config.GetAudience()); err != nil {
				log.Debug().Err(err).Msg("Session token rejected, forwarding request anonymously")
			} else {
				headers.Set("Authorization", "Bearer "+tokens.AccessToken)
				if userinfo := s.userinfoHeader(tokens.IDToken); userinfo != "" {
					headers.Set("X-Userinfo", userinfo)
				}
			}
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error().Err(err).Msg("Failed to read request body")
			errors.WriteJSON(w, errors.ErrUpstreamCallFailed)
			return
		}

		// The escaped path keeps percent-encoded octets intact on their way
		// to the upstream.
		rest := strings.TrimPrefix(r.URL.EscapedPath(), strings.TrimSuffix(route.Path, "/")+"/")
		upstreamURL := strings.TrimSuffix(route.Upstream, "/") + "/" + rest
		if r.URL.RawQuery != "" {
			upstreamURL += "?" + r.URL.RawQuery
		}

		req, err := http.NewRequestWithContext(r.Context(), r.Method, upstreamURL, bytes.NewReader(body))
		if err != nil {
			log.Error().Err(err).Str("upstream", upstreamURL).Msg("Failed to build upstream request")
			errors.WriteJSON(w, errors.ErrUpstreamCallFailed)
			return
		}
		req.Header = headers

		resp, err := s.upstreamClient.Do(req)
		if err != nil {
			log.Error().Err(err).Str("upstream", upstreamURL).Msg("Upstream call failed")
			errors.WriteJSON(w, errors.ErrUpstreamCallFailed.WithDescription(err.Error()))
			return
		}
		defer resp.Body.Close()

		relayResponse(w, resp)
	}
}

// sanitizeHeaders clones the inbound headers, dropping identity headers the
// gateway owns and hop-by-hop headers. A client sending its own identity
// headers is either misconfigured or probing, so it gets logged.
func sanitizeHeaders(r *http.Request) http.Header {
	headers := r.Header.Clone()
	for _, header := range []string{"Authorization", "X-Userinfo"} {
		if headers.Get(header) != "" {
			log.Warn().Str("header", header).Str("remote", r.RemoteAddr).
				Msg("Stripped client-supplied identity header")
			headers.Del(header)
		}
	}
	for _, header := range hopByHopHeaders {
		headers.Del(header)
	}
	return headers
}

// userinfoHeader verifies the ID token and renders its claims as the
// base64-encoded JSON payload carried in X-Userinfo.
func (s *Server) userinfoHeader(idToken string) string {
	claims, err := s.idp.Decoder().Decode(idToken, s.config.GetClientID())
	if err != nil {
		log.Debug().Err(err).Msg("ID token rejected, omitting userinfo header")
		return ""
	}
	payload, err := json.Marshal(claims)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal userinfo claims")
		return ""
	}
	return base64.StdEncoding.EncodeToString(payload)
}

func relayResponse(w http.ResponseWriter, resp *http.Response) {
	header := w.Header()
	for key, values := range resp.Header {
		for _, value := range values {
			header.Add(key, value)
		}
	}
	for _, hopHeader := range hopByHopHeaders {
		header.Del(hopHeader)
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		log.Error().Err(err).Msg("Failed to relay upstream response body")
	}
}
