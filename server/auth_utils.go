package server

import (
	"net/http"
	"net/url"

	"github.com/rs/zerolog/log"
	"github.com/trackvision/portal-web/gateway"
	"github.com/trackvision/portal-web/internal/errors"
)

const sessionExpiredMessage = "Your session has expired. Please log in again."

// redirectSuccess helper for htmx-aware success redirects
func redirectSuccess(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusNoContent) // 204 - no content, just redirect instruction
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// redirectWithError helper for htmx-aware error redirects
func redirectWithError(w http.ResponseWriter, r *http.Request, path, errorMsg string) {
	redirectSuccess(w, r, withQuery(path, "error", errorMsg))
}

// redirectWithMessage redirects with an informational message.
func redirectWithMessage(w http.ResponseWriter, r *http.Request, path, msg string) {
	redirectSuccess(w, r, withQuery(path, "message", msg))
}

func withQuery(path, key, value string) string {
	return path + "?" + key + "=" + url.QueryEscape(value)
}

// isHTMXRequest checks if the request was initiated by HTMX
func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// handleAPIError reports a failed backend call. A 401 means the backend no longer accepts the
// session, which is treated as a logout.
func (s *Server) handleAPIError(w http.ResponseWriter, r *http.Request, returnTo string, err error) {
	if errors.Is(err, errors.ErrUnauthorized) {
		if clearErr := s.sessions(r).Clear(r.Context()); clearErr != nil {
			log.Err(clearErr).Msg("failed to clear rejected session")
		}
		redirectWithError(w, r, RouteLogin, sessionExpiredMessage)
		return
	}

	log.Err(err).Str("path", r.URL.Path).Msg("backend call failed")
	redirectWithError(w, r, returnTo, gateway.MessageOf(err))
}
