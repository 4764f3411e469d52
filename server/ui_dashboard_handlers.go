package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/trackvision/portal-web/complaints"
	"github.com/trackvision/portal-web/gateway"
	"github.com/trackvision/portal-web/internal/errors"
	"github.com/trackvision/portal-web/session"
	"github.com/trackvision/portal-web/users"
)

const (
	emptySearchMessage = "Please enter Plate Number, CNIC or Chassis Number."
	noMatchMessage     = "No matching vehicle found."
	maxUploadBytes     = 10 << 20
)

// DashboardHomeData is the overview shown on the landing page.
type DashboardHomeData struct {
	Stats      complaints.Stats
	Complaints []complaints.Complaint
}

// DashboardHomeHandler shows the complaint counters. Admins see every complaint, users their own.
func (s *Server) DashboardHomeHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("dashboard_home.html")
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := currentSession(r)
		page := s.newPageData(r, "Dashboard", nil)

		list, err := s.api.ListComplaints(r.Context(), sess.AccessToken, complaints.ListFilterFor(sess.User))
		if err != nil {
			if errors.Is(err, errors.ErrUnauthorized) {
				s.handleAPIError(w, r, RouteLogin, err)
				return
			}
			log.Err(err).Msg("failed to fetch complaints")
			page.Error = "Failed to fetch complaints."
		}

		page.Data = DashboardHomeData{Stats: complaints.Summarize(list), Complaints: list}
		renderPage(w, tmpl, page)
	}
}

// ComplainMenuHandler offers search and submit
func (s *Server) ComplainMenuHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("complain.html")
	return func(w http.ResponseWriter, r *http.Request) {
		renderPage(w, tmpl, s.newPageData(r, "Complaints", nil))
	}
}

// SearchPageData carries the search box and its results.
type SearchPageData struct {
	Query    string
	Searched bool
	Results  []SearchResult
}

type SearchResult struct {
	complaints.Complaint
	DetailsURL string
}

// SearchComplaintsHandler renders the search box and, when a query is given, the matches.
// An empty query is rejected here and never reaches the backend.
func (s *Server) SearchComplaintsHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("search.html")
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := currentSession(r)
		page := s.newPageData(r, "Search complaints", nil)
		data := SearchPageData{}

		if !r.URL.Query().Has("query") {
			page.Data = data
			renderPage(w, tmpl, page)
			return
		}
		data.Query = r.URL.Query().Get("query")

		q, err := complaints.NewSearchQuery(sess.User.Role, sess.User.Email, data.Query)
		if err != nil {
			page.Error = emptySearchMessage
			page.Data = data
			renderPage(w, tmpl, page)
			return
		}

		found, err := s.api.SearchComplaints(r.Context(), sess.AccessToken, q)
		if err != nil {
			if errors.Is(err, errors.ErrUnauthorized) {
				s.handleAPIError(w, r, RouteLogin, err)
				return
			}
			log.Err(err).Str("query", q.Text).Msg("complaint search failed")
			page.Error = noMatchMessage
			page.Data = data
			renderPage(w, tmpl, page)
			return
		}

		data.Searched = true
		for _, c := range found {
			data.Results = append(data.Results, SearchResult{Complaint: c, DetailsURL: vehicleDetailsPath(sess.User.Role, c.ID)})
		}
		if len(data.Results) == 0 {
			page.Error = noMatchMessage
		}
		page.Data = data
		renderPage(w, tmpl, page)
	}
}

// SubmitPageData drives the complaint form. Owner fields are only asked of admins.
type SubmitPageData struct {
	AskOwner bool
}

func (s *Server) SubmitComplaintGetHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("submit.html")
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := currentSession(r)
		renderPage(w, tmpl, s.newPageData(r, "Submit a complaint", SubmitPageData{AskOwner: sess.User.IsAdmin()}))
	}
}

// SubmitComplaintPostHandler registers a complaint. A plain user's own details are used as the
// owner regardless of what was posted.
func (s *Server) SubmitComplaintPostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := currentSession(r)
		formRoute := rolePath(sess.User.Role, RouteDashboardSubmit)

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			redirectWithError(w, r, formRoute, "The complaint could not be read. Is the picture under 10MB?")
			return
		}

		sub := complaints.Submission{
			Owner: complaints.Owner{
				Name:  strings.TrimSpace(r.FormValue("ownerName")),
				Email: strings.TrimSpace(r.FormValue("ownerEmail")),
				Phone: strings.TrimSpace(r.FormValue("ownerPhone")),
				CNIC:  strings.TrimSpace(r.FormValue("ownerCnic")),
			},
			Vehicle: complaints.Vehicle{
				Make:          strings.TrimSpace(r.FormValue("vehicleMake")),
				Model:         strings.TrimSpace(r.FormValue("vehicleModel")),
				Variant:       strings.TrimSpace(r.FormValue("vehicleVariant")),
				Color:         strings.TrimSpace(r.FormValue("vehicleColor")),
				PlateNumber:   strings.TrimSpace(r.FormValue("plateNumber")),
				ChassisNumber: strings.TrimSpace(r.FormValue("chassisNumber")),
			},
			Description: strings.TrimSpace(r.FormValue("complaintDescription")),
		}.Autofill(sess.User)

		if r.MultipartForm != nil {
			file, header, err := r.FormFile("vehiclePicture")
			switch {
			case err == nil:
				defer file.Close()
				sub.Picture = &complaints.Picture{Filename: header.Filename, Content: file}
			case !errors.Is(err, http.ErrMissingFile):
				log.Warn().Err(err).Msg("ignoring unreadable vehicle picture")
			}
		}

		res, err := s.api.SubmitComplaint(r.Context(), sess.AccessToken, sub)
		if err != nil {
			s.handleAPIError(w, r, formRoute, err)
			return
		}

		msg := "Complaint registered successfully and email sent!"
		if !res.EmailSent() {
			msg = "Complaint registered successfully, but email could not be sent."
		}
		redirectWithMessage(w, r, formRoute, msg)
	}
}

// VehicleDetailsData is one complaint with its picture resolved.
type VehicleDetailsData struct {
	Complaint  complaints.Complaint
	Found      bool
	PictureURL string
}

func (s *Server) VehicleDetailsHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("vehicle_details.html")
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := currentSession(r)
		page := s.newPageData(r, "Vehicle details", VehicleDetailsData{})

		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil || id <= 0 {
			page.Error = "No vehicle found."
			renderPage(w, tmpl, page)
			return
		}

		c, err := s.api.GetComplaint(r.Context(), sess.AccessToken, id)
		switch {
		case err == nil:
			page.Data = VehicleDetailsData{Complaint: c, Found: true, PictureURL: c.PictureURL(s.api.BaseURL())}
		case errors.Is(err, errors.ErrUnauthorized):
			s.handleAPIError(w, r, RouteLogin, err)
			return
		case errors.Is(err, errors.ErrNotFound):
			page.Error = "No vehicle found."
		default:
			log.Err(err).Int64("id", id).Msg("failed to fetch vehicle details")
			page.Error = "Failed to fetch vehicle details."
		}
		renderPage(w, tmpl, page)
	}
}

// CameraMenuHandler lists the ways to scan vehicles; only admins can connect an IP camera.
func (s *Server) CameraMenuHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("camera.html")
	return func(w http.ResponseWriter, r *http.Request) {
		renderPage(w, tmpl, s.newPageData(r, "Scan vehicle live", nil))
	}
}

// ProfileGetHandler shows the backend's current record of the user.
func (s *Server) ProfileGetHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("profile.html")
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := currentSession(r)
		page := s.newPageData(r, "Profile", sess.User)

		profile, err := s.api.GetProfile(r.Context(), sess.AccessToken, sess.User.Email)
		switch {
		case err == nil:
			page.Data = profile
		case errors.Is(err, errors.ErrUnauthorized):
			s.handleAPIError(w, r, RouteLogin, err)
			return
		default:
			log.Err(err).Msg("failed to fetch profile")
			page.Error = "Failed to load your profile."
		}
		renderPage(w, tmpl, page)
	}
}

// ProfilePostHandler updates name and phone number and refreshes the stored user.
func (s *Server) ProfilePostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := currentSession(r)
		profileRoute := rolePath(sess.User.Role, RouteDashboardProfile)

		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		updated, err := s.api.UpdateProfile(r.Context(), sess.AccessToken, gateway.ProfileUpdate{
			Email:       sess.User.Email,
			FullName:    strings.TrimSpace(r.FormValue("fullName")),
			PhoneNumber: strings.TrimSpace(r.FormValue("phoneNumber")),
		})
		if err != nil {
			s.handleAPIError(w, r, profileRoute, err)
			return
		}

		if err := s.refreshSessionUser(r, sess, updated); err != nil {
			log.Err(err).Msg("profile updated but stored user not refreshed")
		}
		redirectWithMessage(w, r, profileRoute, "Profile updated successfully.")
	}
}

// refreshSessionUser stores the updated profile in the session. Identity and role are kept
// from the session.
func (s *Server) refreshSessionUser(r *http.Request, sess session.Session, updated users.User) error {
	user := sess.User
	if updated.FullName != "" {
		user.FullName = updated.FullName
	}
	if updated.PhoneNumber != "" {
		user.PhoneNumber = updated.PhoneNumber
	}
	_, err := s.sessions(r).Establish(r.Context(), session.LoginResult{
		User:    &user,
		Access:  sess.AccessToken,
		Refresh: sess.RefreshToken,
	})
	return err
}
