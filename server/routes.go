package server

import (
	"fmt"

	"github.com/trackvision/portal-web/guard"
	"github.com/trackvision/portal-web/users"
)

func (s *Server) initRoutes() error {
	s.RegisterRouteHandler("GET /{$}", ChainMiddleware(s.IndexHandler(), s.HTMLMiddleWare()...))

	// LOGIN
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginPageUIHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteAuthLogin, ChainMiddleware(s.LoginSubmissionHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))

	// SIGNUP
	s.RegisterRouteHandler("GET "+RouteSignup, ChainMiddleware(s.SignupChooserHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteSignupUser, ChainMiddleware(s.SignupGetHandler(users.RoleUser), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteSignupAdmin, ChainMiddleware(s.SignupGetHandler(users.RoleAdmin), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteSignup, ChainMiddleware(s.SignupPostHandler(), s.HTMLMiddleWare()...))

	// PASSWORD RECOVERY
	s.RegisterRouteHandler("GET "+RouteForgotPassword, ChainMiddleware(s.ForgotPasswordGetHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteForgotPassword, ChainMiddleware(s.ForgotPasswordPostHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteVerifyOTP, ChainMiddleware(s.VerifyOTPGetHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteVerifyOTP, ChainMiddleware(s.VerifyOTPPostHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteResetPassword, ChainMiddleware(s.ResetPasswordGetHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteResetPassword, ChainMiddleware(s.ResetPasswordPostHandler(), s.HTMLMiddleWare()...))

	// API routes
	s.RegisterRouteHandler("POST "+RouteAPIValidatePassword, ChainMiddleware(s.ValidatePasswordHandler(), s.APIMiddleware()...))

	// Dashboards (require a session of the dashboard's role)
	for _, role := range users.Roles {
		if err := s.registerDashboard(role); err != nil {
			return err
		}
	}
	adminOnly := s.HTMLMiddleWare(s.RequireRole(guard.Role(users.RoleAdmin)))
	s.RegisterRouteHandler("GET "+RouteAdminCameraConfigure, ChainMiddleware(s.ConfigureCameraGetHandler(), adminOnly...))
	s.RegisterRouteHandler("POST "+RouteAdminCameraConfigure, ChainMiddleware(s.ConfigureCameraPostHandler(), adminOnly...))

	s.RegisterRouteHandler("GET "+RouteStaticCSS, ChainMiddleware(s.serveFileHandler(), s.StaticMiddleware()...))
	return nil
}

func (s *Server) registerDashboard(role users.Role) error {
	if !role.Valid() {
		return fmt.Errorf("cannot register dashboard for role %d", int(role))
	}
	mw := s.HTMLMiddleWare(s.RequireRole(guard.Role(role)))

	s.RegisterRouteHandler("GET "+rolePath(role, RouteDashboard), ChainMiddleware(s.DashboardRedirectHandler(), mw...))
	s.RegisterRouteHandler("GET "+rolePath(role, RouteDashboardHome), ChainMiddleware(s.DashboardHomeHandler(), mw...))
	s.RegisterRouteHandler("GET "+rolePath(role, RouteDashboardComplain), ChainMiddleware(s.ComplainMenuHandler(), mw...))
	s.RegisterRouteHandler("GET "+rolePath(role, RouteDashboardSearch), ChainMiddleware(s.SearchComplaintsHandler(), mw...))
	s.RegisterRouteHandler("GET "+rolePath(role, RouteDashboardSubmit), ChainMiddleware(s.SubmitComplaintGetHandler(), mw...))
	s.RegisterRouteHandler("POST "+rolePath(role, RouteDashboardSubmit), ChainMiddleware(s.SubmitComplaintPostHandler(), mw...))
	s.RegisterRouteHandler("GET "+rolePath(role, RouteDashboardVehicle), ChainMiddleware(s.VehicleDetailsHandler(), mw...))
	s.RegisterRouteHandler("GET "+rolePath(role, RouteDashboardCamera), ChainMiddleware(s.CameraMenuHandler(), mw...))
	s.RegisterRouteHandler("GET "+rolePath(role, RouteDashboardProfile), ChainMiddleware(s.ProfileGetHandler(), mw...))
	s.RegisterRouteHandler("POST "+rolePath(role, RouteDashboardProfile), ChainMiddleware(s.ProfilePostHandler(), mw...))
	return nil
}
