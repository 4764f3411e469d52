package server

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/trackvision/portal-web/gateway"
	"github.com/trackvision/portal-web/session"
)

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	Email string // Preserve email on error
}

// LoginPageUIHandler displays the login page (GET /login). A browser that already has a
// session goes straight to its dashboard.
func (s *Server) LoginPageUIHandler() http.HandlerFunc {
	loginTmpl := mustParseTemplate("login.html")

	return func(w http.ResponseWriter, r *http.Request) {
		if sess, ok := s.sessions(r).Current(r.Context()); ok {
			redirectSuccess(w, r, session.LandingRoute(sess.User.Role))
			return
		}

		data := LoginPageData{Email: r.URL.Query().Get("email")}
		renderPage(w, loginTmpl, s.newPageData(r, "Login", data))
	}
}

// LoginSubmissionHandler processes the login form submission. Only a complete login result
// establishes a session; anything else leaves the browser where it was with an error.
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		email := strings.TrimSpace(r.FormValue("email"))
		password := r.FormValue("password")
		if email == "" || password == "" {
			s.renderLoginError(w, r, "Email and password are required", email)
			return
		}

		res, err := s.api.Login(r.Context(), email, password)
		if err != nil {
			log.Err(err).Str("email", email).Msg("login failed")
			s.renderLoginError(w, r, gateway.MessageOf(err), email)
			return
		}

		sess, err := s.sessions(r).Establish(r.Context(), session.LoginResult{
			User:    res.User,
			Access:  res.Access,
			Refresh: res.Refresh,
		})
		if err != nil {
			log.Err(err).Str("email", email).Msg("login response did not carry a usable session")
			s.renderLoginError(w, r, "Login failed. Please try again.", email)
			return
		}

		redirectSuccess(w, r, session.LandingRoute(sess.User.Role))
	}
}

// LogoutHandler clears the browser's storage: the session and any pending password reset.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.sessions(r).Clear(r.Context()); err != nil {
			log.Err(err).Msg("Logout: failed to clear session")
		}
		if err := s.recoveryFlow(r).Abandon(r.Context()); err != nil {
			log.Err(err).Msg("Logout: failed to clear pending password reset")
		}
		redirectSuccess(w, r, RouteLogin)
	}
}

// renderLoginError redirects to login page with an error message
func (s *Server) renderLoginError(w http.ResponseWriter, r *http.Request, errorMsg, email string) {
	redirectURL := withQuery(RouteLogin, "error", errorMsg)
	if email != "" {
		redirectURL += "&email=" + url.QueryEscape(email)
	}
	redirectSuccess(w, r, redirectURL)
}
