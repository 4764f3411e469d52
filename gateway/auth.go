package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/trackvision/portal-web/internal/errors"
	"github.com/trackvision/portal-web/users"
)

// SignupRequest is the registration form. Users register with a CNIC; admins with their
// organization's name and code.
type SignupRequest struct {
	FullName         string     `json:"fullName"`
	Email            string     `json:"email"`
	PhoneNumber      string     `json:"phoneNumber"`
	Password         string     `json:"password"`
	Role             users.Role `json:"role"`
	CNIC             string     `json:"cnic,omitempty"`
	OrganizationName string     `json:"organization_name,omitempty"`
	OrganizationCode string     `json:"organization_code,omitempty"`
}

// ForRole drops the fields that do not belong to the request's role.
func (r SignupRequest) ForRole() SignupRequest {
	switch r.Role {
	case users.RoleAdmin:
		r.CNIC = ""
	case users.RoleUser:
		r.OrganizationName, r.OrganizationCode = "", ""
	}
	return r
}

type SignupResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	User    *users.User `json:"user"`
}

func (c *Client) Signup(ctx context.Context, in SignupRequest) (SignupResponse, error) {
	in = in.ForRole()
	if !in.Role.Valid() {
		return SignupResponse{}, errors.Wrapf(errors.ErrUnknownRole, "[gateway Signup] invalid role")
	}
	req, err := jsonRequest(http.MethodPost, "signup/", in)
	if err != nil {
		return SignupResponse{}, err
	}
	var out SignupResponse
	if err := c.do(ctx, req, &out); err != nil {
		return SignupResponse{}, err
	}
	return out, nil
}

// LoginResponse is the backend's answer to a successful login. User is nil when the backend
// returned no usable user record.
type LoginResponse struct {
	Message string
	User    *users.User
	Access  string
	Refresh string
}

type loginBody struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	User    json.RawMessage `json:"user"`
	Access  string          `json:"access"`
	Refresh string          `json:"refresh"`
}

// Login exchanges credentials for a user record and a token pair. The payload may be flat or
// wrapped in a {"data": {...}} envelope.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	req, err := jsonRequest(http.MethodPost, "login/", map[string]string{
		"email":    strings.TrimSpace(email),
		"password": password,
	})
	if err != nil {
		return LoginResponse{}, err
	}

	var envelope struct {
		loginBody
		Data *loginBody `json:"data"`
	}
	if err := c.do(ctx, req, &envelope); err != nil {
		return LoginResponse{}, err
	}

	body := envelope.loginBody
	if envelope.Data != nil {
		body = *envelope.Data
	}

	res := LoginResponse{Message: body.Message, Access: body.Access, Refresh: body.Refresh}
	if len(body.User) > 0 && string(body.User) != "null" {
		var u users.User
		if err := json.Unmarshal(body.User, &u); err != nil {
			log.Warn().Err(err).Msg("gateway: login returned an unusable user record")
		} else {
			res.User = &u
		}
	}
	return res, nil
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	req, err := jsonRequest(http.MethodPost, "forgot-password/", map[string]string{"email": email})
	if err != nil {
		return err
	}
	return c.do(ctx, req, nil)
}

func (c *Client) VerifyOTP(ctx context.Context, email, otp string) error {
	req, err := jsonRequest(http.MethodPost, "verify-otp/", map[string]string{"otp": otp, "email": email})
	if err != nil {
		return err
	}
	return c.do(ctx, req, nil)
}

func (c *Client) ResetPassword(ctx context.Context, email, newPassword string) error {
	req, err := jsonRequest(http.MethodPost, "reset-password/", map[string]string{"new_password": newPassword, "email": email})
	if err != nil {
		return err
	}
	return c.do(ctx, req, nil)
}
