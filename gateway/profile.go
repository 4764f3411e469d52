package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/trackvision/portal-web/users"
)

// ProfileUpdate carries the editable profile fields.
type ProfileUpdate struct {
	Email       string `json:"email"`
	FullName    string `json:"fullName"`
	PhoneNumber string `json:"phoneNumber"`
}

// GetProfile fetches the user record for email. The record may come bare or under "user".
func (c *Client) GetProfile(ctx context.Context, accessToken, email string) (users.User, error) {
	req := request{method: http.MethodGet, path: "user/", query: url.Values{"email": {email}}, accessToken: accessToken}
	var raw json.RawMessage
	if err := c.do(ctx, req, &raw); err != nil {
		return users.User{}, err
	}
	return decodeUser(raw)
}

func (c *Client) UpdateProfile(ctx context.Context, accessToken string, in ProfileUpdate) (users.User, error) {
	req, err := jsonRequest(http.MethodPut, "update-profile/", in)
	if err != nil {
		return users.User{}, err
	}
	req.accessToken = accessToken

	var raw json.RawMessage
	if err := c.do(ctx, req, &raw); err != nil {
		return users.User{}, err
	}
	return decodeUser(raw)
}

func decodeUser(raw json.RawMessage) (users.User, error) {
	var wrapped struct {
		User *users.User `json:"user"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.User != nil {
		return *wrapped.User, nil
	}
	var u users.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return users.User{}, err
	}
	return u, nil
}
