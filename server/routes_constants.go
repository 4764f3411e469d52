package server

import (
	"strconv"

	"github.com/trackvision/portal-web/users"
)

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	RouteIndex = "/"

	// Auth Routes - Login & Logout
	RouteLogin     = "/login"
	RouteAuthLogin = "/auth/login"
	RouteLogout    = "/logout"

	// Auth Routes - Signup
	RouteSignup      = "/signup"
	RouteSignupUser  = "/signup/user"
	RouteSignupAdmin = "/signup/admin"

	// Auth Routes - Password Recovery
	RouteForgotPassword = "/forgot-password"
	RouteVerifyOTP      = "/verify-otp"
	RouteResetPassword  = "/reset-password"

	// API Routes
	RouteAPIValidatePassword = "/api/validate-password"

	// Dashboard Routes, registered once per role under /{role}/dashboard
	RouteDashboard            = "/dashboard"
	RouteDashboardHome        = "/dashboard/home"
	RouteDashboardComplain    = "/dashboard/complain"
	RouteDashboardSearch      = "/dashboard/complain/search"
	RouteDashboardSubmit      = "/dashboard/complain/submit"
	RouteDashboardVehicle     = "/dashboard/vehicle-details/{id}"
	RouteDashboardCamera      = "/dashboard/camera"
	RouteDashboardProfile     = "/dashboard/profile"
	RouteAdminCameraConfigure = "/admin/dashboard/camera/configure"

	// Static Asset Routes (patterns)
	RouteStaticCSS = "/css/{file}"
)

// rolePath prefixes a dashboard route with the role it belongs to.
func rolePath(role users.Role, route string) string {
	return "/" + role.String() + route
}

func vehicleDetailsPath(role users.Role, id int64) string {
	return rolePath(role, "/dashboard/vehicle-details/"+strconv.FormatInt(id, 10))
}
