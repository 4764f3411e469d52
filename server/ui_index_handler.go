package server

import (
	"net/http"

	"github.com/trackvision/portal-web/session"
)

// IndexHandler sends the browser to its dashboard, or to login when there is no session
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.sessions(r).Current(r.Context())
		if !ok {
			redirectSuccess(w, r, RouteLogin)
			return
		}
		redirectSuccess(w, r, session.LandingRoute(sess.User.Role))
	}
}

// DashboardRedirectHandler serves /{role}/dashboard, which has no page of its own.
func (s *Server) DashboardRedirectHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := currentSession(r)
		redirectSuccess(w, r, session.LandingRoute(sess.User.Role))
	}
}
