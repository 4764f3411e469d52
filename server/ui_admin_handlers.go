package server

import (
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/trackvision/portal-web/cameras"
	"github.com/trackvision/portal-web/internal/errors"
	"github.com/trackvision/portal-web/users"
)

// ConfigureCameraGetHandler renders the IP camera form (admin only)
func (s *Server) ConfigureCameraGetHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("camera_configure.html")
	return func(w http.ResponseWriter, r *http.Request) {
		renderPage(w, tmpl, s.newPageData(r, "Connect with IP camera", nil))
	}
}

// ConfigureCameraPostHandler checks the form and hands it to the backend
func (s *Server) ConfigureCameraPostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := currentSession(r)
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		cfg := cameras.Config{
			CameraID: r.FormValue("cameraID"),
			RTSPURL:  r.FormValue("rtspURL"),
		}.Normalize()
		if err := cfg.Validate(); err != nil {
			redirectWithError(w, r, RouteAdminCameraConfigure, err.Error())
			return
		}

		res, err := s.api.ConfigureCamera(r.Context(), sess.AccessToken, cfg)
		if err != nil {
			if errors.Is(err, errors.ErrInvalidCameraConfig) {
				redirectWithError(w, r, RouteAdminCameraConfigure, err.Error())
				return
			}
			s.handleAPIError(w, r, RouteAdminCameraConfigure, err)
			return
		}

		log.Info().Str("camera", cfg.CameraID).Str("rtsp", cfg.Redacted()).Msg("camera configured")
		msg := res.Message
		if msg == "" {
			msg = "Camera configured successfully!"
		}
		redirectWithMessage(w, r, rolePath(users.RoleAdmin, RouteDashboardCamera), msg)
	}
}
