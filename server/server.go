package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/trackvision/portal-web/cameras"
	"github.com/trackvision/portal-web/complaints"
	"github.com/trackvision/portal-web/gateway"
	"github.com/trackvision/portal-web/internal/config"
	"github.com/trackvision/portal-web/users"
)

// Gateway is the backend API as the web server uses it. *gateway.Client implements it.
type Gateway interface {
	BaseURL() string

	Signup(ctx context.Context, in gateway.SignupRequest) (gateway.SignupResponse, error)
	Login(ctx context.Context, email, password string) (gateway.LoginResponse, error)
	ForgotPassword(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, otp string) error
	ResetPassword(ctx context.Context, email, newPassword string) error

	ListComplaints(ctx context.Context, accessToken string, filter complaints.ListFilter) ([]complaints.Complaint, error)
	SearchComplaints(ctx context.Context, accessToken string, q complaints.SearchQuery) ([]complaints.Complaint, error)
	GetComplaint(ctx context.Context, accessToken string, id int64) (complaints.Complaint, error)
	SubmitComplaint(ctx context.Context, accessToken string, s complaints.Submission) (complaints.SubmitResult, error)
	ConfigureCamera(ctx context.Context, accessToken string, cfg cameras.Config) (gateway.Message, error)
	GetProfile(ctx context.Context, accessToken, email string) (users.User, error)
	UpdateProfile(ctx context.Context, accessToken string, in gateway.ProfileUpdate) (users.User, error)
}

var _ Gateway = (*gateway.Client)(nil)

type Server struct {
	env           string // Environment (e.g., "DEV", "PROD")
	mux           *http.ServeMux
	routes        []string
	config        config.Config
	api           Gateway
	clientStorage ClientStorage
}

func New(config config.Config, api Gateway, clientStorage ClientStorage) (*Server, error) {
	if api == nil {
		return nil, fmt.Errorf("[Server New] backend gateway is required")
	}
	if clientStorage == nil {
		return nil, fmt.Errorf("[Server New] client storage is required")
	}

	s := &Server{
		mux:           http.NewServeMux(),
		config:        config,
		api:           api,
		clientStorage: clientStorage,
	}
	s.env = config.GetEnv()

	if err := s.initRoutes(); err != nil {
		return nil, fmt.Errorf("[Server New] failed to register routes: %w", err)
	}
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

// Routes lists the registered patterns in registration order.
func (s *Server) Routes() []string {
	return append([]string(nil), s.routes...)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Info().Msgf("[%-19s] %s", coloredMethod(method), path)
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
