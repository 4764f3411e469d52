package server

import (
	"fmt"
	"html"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/trackvision/portal-web/gateway"
	"github.com/trackvision/portal-web/users"
)

// ValidatePasswordHandler validates password strength for htmx inline feedback
func (s *Server) ValidatePasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		password := r.FormValue("password")
		if password == "" {
			password = r.FormValue("new_password")
		}

		w.Header().Set("Content-Type", contentTypeHTML)
		if password == "" {
			w.WriteHeader(http.StatusOK)
			return
		}

		if err := users.ValidatePasswordStrength(password); err != nil {
			w.Header().Set("HX-Trigger", fmt.Sprintf(`{"passwordInvalid": %q}`, err.Error()))
			w.WriteHeader(http.StatusOK)
			fmt.Fprintf(w, `<span class="text-danger">%s</span>`, html.EscapeString(err.Error()))
			return
		}

		w.Header().Set("HX-Trigger", `{"passwordValid": ""}`)
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `<span class="text-success">Looks good</span>`)
	}
}

// SignupChooserHandler lets the visitor pick between user and admin registration
func (s *Server) SignupChooserHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("signup_choose.html")
	return func(w http.ResponseWriter, r *http.Request) {
		renderPage(w, tmpl, s.newPageData(r, "Sign up", nil))
	}
}

// SignupFormData drives the per-role signup form.
type SignupFormData struct {
	Role    string
	IsAdmin bool
}

// SignupGetHandler renders the signup form for role
func (s *Server) SignupGetHandler(role users.Role) http.HandlerFunc {
	tmpl := mustParseTemplate("signup.html")
	return func(w http.ResponseWriter, r *http.Request) {
		data := SignupFormData{Role: role.String(), IsAdmin: role == users.RoleAdmin}
		renderPage(w, tmpl, s.newPageData(r, "Sign up", data))
	}
}

// SignupPostHandler forwards the registration to the backend; on success the visitor logs in.
func (s *Server) SignupPostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		role, err := users.ParseRole(r.FormValue("role"))
		if err != nil {
			redirectWithError(w, r, RouteSignup, "Please choose whether you are signing up as a user or an admin.")
			return
		}
		formRoute := RouteSignupUser
		if role == users.RoleAdmin {
			formRoute = RouteSignupAdmin
		}

		req := gateway.SignupRequest{
			FullName:         strings.TrimSpace(r.FormValue("fullName")),
			Email:            strings.TrimSpace(r.FormValue("email")),
			PhoneNumber:      strings.TrimSpace(r.FormValue("phoneNumber")),
			Password:         r.FormValue("password"),
			Role:             role,
			CNIC:             strings.TrimSpace(r.FormValue("cnic")),
			OrganizationName: strings.TrimSpace(r.FormValue("organization_name")),
			OrganizationCode: strings.TrimSpace(r.FormValue("organization_code")),
		}

		res, err := s.api.Signup(r.Context(), req)
		if err != nil {
			log.Err(err).Str("email", req.Email).Str("role", role.String()).Msg("signup failed")
			redirectWithError(w, r, formRoute, gateway.MessageOf(err))
			return
		}

		msg := res.Message
		if msg == "" {
			msg = "Registered successfully. Please log in."
		}
		redirectWithMessage(w, r, RouteLogin, msg)
	}
}
