package server

import (
	"html/template"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/trackvision/portal-web/gateway"
	"github.com/trackvision/portal-web/internal/errors"
	"github.com/trackvision/portal-web/recovery"
)

// RecoveryPageData is shared by the three password recovery pages.
type RecoveryPageData struct {
	Email string
	State string
}

func (s *Server) recoveryPage(name, title string) http.HandlerFunc {
	tmpl := mustParseTemplate(name)
	return func(w http.ResponseWriter, r *http.Request) {
		s.renderRecoveryPage(w, r, tmpl, title)
	}
}

func (s *Server) renderRecoveryPage(w http.ResponseWriter, r *http.Request, tmpl *template.Template, title string) {
	flow := s.recoveryFlow(r)
	state, err := flow.State(r.Context())
	if err != nil {
		log.Err(err).Msg("failed to read password recovery state")
	}
	email, _ := flow.Email(r.Context())
	renderPage(w, tmpl, s.newPageData(r, title, RecoveryPageData{Email: email, State: state.String()}))
}

// ForgotPasswordGetHandler renders the forgot-password page
func (s *Server) ForgotPasswordGetHandler() http.HandlerFunc {
	return s.recoveryPage("forgot_password.html", "Forgot password")
}

// VerifyOTPGetHandler renders the OTP page
func (s *Server) VerifyOTPGetHandler() http.HandlerFunc {
	return s.recoveryPage("verify_otp.html", "Verify OTP")
}

// ResetPasswordGetHandler renders the new password page
func (s *Server) ResetPasswordGetHandler() http.HandlerFunc {
	return s.recoveryPage("reset_password.html", "Reset password")
}

// ForgotPasswordPostHandler requests an OTP for the submitted email
func (s *Server) ForgotPasswordPostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		if _, err := s.recoveryFlow(r).RequestOTP(r.Context(), r.FormValue("email")); err != nil {
			log.Err(err).Msg("forgot password request failed")
			redirectWithError(w, r, RouteForgotPassword, recoveryErrorMessage(err, "Failed to send OTP, please try again."))
			return
		}
		redirectWithMessage(w, r, RouteVerifyOTP, "OTP sent to your email.")
	}
}

// VerifyOTPPostHandler checks the OTP for the pending email
func (s *Server) VerifyOTPPostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		_, err := s.recoveryFlow(r).VerifyOTP(r.Context(), r.FormValue("otp"))
		switch {
		case err == nil:
			redirectWithMessage(w, r, RouteResetPassword, "OTP verified. Choose a new password.")
		case errors.Is(err, errors.ErrNoPendingReset):
			redirectWithError(w, r, RouteForgotPassword, "Please request an OTP first.")
		case errors.Is(err, errors.ErrRecoveryOutOfOrder):
			redirectWithError(w, r, RouteResetPassword, "OTP already verified. Choose a new password.")
		default:
			log.Err(err).Msg("otp verification failed")
			redirectWithError(w, r, RouteVerifyOTP, recoveryErrorMessage(err, "Invalid OTP or expired."))
		}
	}
}

// ResetPasswordPostHandler sets the new password and ends the recovery
func (s *Server) ResetPasswordPostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		state, err := s.recoveryFlow(r).ResetPassword(r.Context(), r.FormValue("new_password"))
		switch {
		case err == nil && state == recovery.StateCompleted:
			redirectWithMessage(w, r, RouteLogin, "Password reset successful. Please log in.")
		case errors.Is(err, errors.ErrNoPendingReset):
			redirectWithError(w, r, RouteForgotPassword, "Please request an OTP first.")
		case errors.Is(err, errors.ErrRecoveryOutOfOrder):
			redirectWithError(w, r, RouteVerifyOTP, "Please verify your OTP first.")
		default:
			log.Err(err).Msg("password reset failed")
			redirectWithError(w, r, RouteResetPassword, recoveryErrorMessage(err, "Failed to reset password, please try again."))
		}
	}
}

// recoveryErrorMessage prefers the backend's own explanation.
func recoveryErrorMessage(err error, fallback string) string {
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
