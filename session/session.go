// Package session owns the authenticated state of one browser: who is logged in, as which
// role, and with which backend credentials.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"github.com/trackvision/portal-web/internal/errors"
	"github.com/trackvision/portal-web/storage"
	"github.com/trackvision/portal-web/users"
)

// Client storage keys owned by the session.
const (
	KeyUser    = "user"
	KeyAccess  = "access"
	KeyRefresh = "refresh"
)

var sessionKeys = []string{KeyUser, KeyAccess, KeyRefresh}

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Session is all three of user, access token and refresh token, or nothing.
type Session struct {
	User         users.User
	AccessToken  string
	RefreshToken string
}

// LoginResult is what a successful backend login yields.
type LoginResult struct {
	User    *users.User
	Access  string
	Refresh string
}

// Manager is the only writer of the session keys in a browser's storage.
type Manager struct {
	store storage.Store
}

func New(store storage.Store) *Manager {
	return &Manager{store: store}
}

// Establish persists the session carried by a login result, replacing any previous one.
// Nothing is written unless the result is complete.
func (m *Manager) Establish(ctx context.Context, res LoginResult) (Session, error) {
	switch {
	case res.User == nil:
		return Session{}, fmt.Errorf("%w: user missing", errors.ErrMalformedSession)
	case !res.User.Role.Valid():
		return Session{}, fmt.Errorf("%w: user has no role", errors.ErrMalformedSession)
	case res.Access == "":
		return Session{}, fmt.Errorf("%w: access token missing", errors.ErrMalformedSession)
	case res.Refresh == "":
		return Session{}, fmt.Errorf("%w: refresh token missing", errors.ErrMalformedSession)
	}

	userJSON, err := json.Marshal(res.User)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", errors.ErrMalformedSession, err)
	}

	if err := m.store.Set(ctx, map[string]string{
		KeyUser:    string(userJSON),
		KeyAccess:  res.Access,
		KeyRefresh: res.Refresh,
	}); err != nil {
		return Session{}, errors.Wrapf(err, "[session Establish] failed to persist session")
	}

	return Session{User: *res.User, AccessToken: res.Access, RefreshToken: res.Refresh}, nil
}

// Current reads the session back. Any missing, empty or unreadable part means no session;
// it never reports an error to the caller.
func (m *Manager) Current(ctx context.Context) (Session, bool) {
	values := make(map[string]string, len(sessionKeys))
	for _, key := range sessionKeys {
		v, ok, err := m.store.Get(ctx, key)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("session: client storage read failed")
			return Session{}, false
		}
		if !ok || v == "" {
			return Session{}, false
		}
		values[key] = v
	}

	var user users.User
	if err := json.Unmarshal([]byte(values[KeyUser]), &user); err != nil {
		return Session{}, false
	}
	if !user.Role.Valid() {
		return Session{}, false
	}
	if accessTokenExpired(values[KeyAccess]) {
		return Session{}, false
	}

	return Session{User: user, AccessToken: values[KeyAccess], RefreshToken: values[KeyRefresh]}, true
}

// Clear removes the session keys. Clearing an absent session succeeds.
func (m *Manager) Clear(ctx context.Context) error {
	if err := m.store.Remove(ctx, sessionKeys...); err != nil {
		return errors.Wrapf(err, "[session Clear] failed to remove session")
	}
	return nil
}

// RoleOf projects the role of a session.
func RoleOf(s Session) (users.Role, bool) {
	return s.User.Role, s.User.Role.Valid()
}

// Landing routes after login.
const (
	AdminLandingRoute = "/admin/dashboard/home"
	UserLandingRoute  = "/user/dashboard/home"
)

// LandingRoute is where a session of the given role starts.
func LandingRoute(role users.Role) string {
	if role == users.RoleAdmin {
		return AdminLandingRoute
	}
	return UserLandingRoute
}

// accessTokenExpired reports whether token is a JWT whose exp claim has passed.
// Tokens that are not JWTs are opaque and never considered expired here.
func accessTokenExpired(token string) bool {
	claims := jwtlib.MapClaims{}
	if _, _, err := jwtlib.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !NowTimeFunc().Before(exp.Time)
}
