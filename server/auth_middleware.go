package server

import (
	"context"
	"net/http"

	"github.com/trackvision/portal-web/guard"
	"github.com/trackvision/portal-web/recovery"
	"github.com/trackvision/portal-web/session"
)

type sessionContextKey struct{}

// sessions returns the session manager over the requesting browser's storage.
func (s *Server) sessions(r *http.Request) *session.Manager {
	return session.New(clientStore(r))
}

// recoveryFlow returns the password-recovery flow over the requesting browser's storage.
func (s *Server) recoveryFlow(r *http.Request) *recovery.Flow {
	return recovery.New(clientStore(r), s.api)
}

// RequireRole guards a UI route. The session is read again on every request; a denied
// request is redirected without an error message.
func (s *Server) RequireRole(req guard.Requirement) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			sess, ok := s.sessions(r).Current(r.Context())
			decision := guard.Evaluate(req, sess, ok)
			if !decision.Allow {
				redirectSuccess(w, r, decision.RedirectTo)
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey{}, sess)
			next(w, r.WithContext(ctx))
		}
	}
}

// currentSession returns the session RequireRole admitted.
func currentSession(r *http.Request) (session.Session, bool) {
	sess, ok := r.Context().Value(sessionContextKey{}).(session.Session)
	return sess, ok
}
