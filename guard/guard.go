// Package guard decides whether a route may render for the current session.
package guard

import (
	"github.com/trackvision/portal-web/session"
	"github.com/trackvision/portal-web/users"
)

// LoginRoute is where every denied request is sent.
const LoginRoute = "/login"

// Requirement is what a route demands of the session: any authenticated user, or one role.
type Requirement struct {
	role users.Role
}

// Any admits every authenticated session.
func Any() Requirement {
	return Requirement{}
}

// Role admits only sessions whose user holds role.
func Role(role users.Role) Requirement {
	return Requirement{role: role}
}

// Role returns the required role, if the requirement names one.
func (r Requirement) Role() (users.Role, bool) {
	return r.role, r.role.Valid()
}

func (r Requirement) String() string {
	if !r.role.Valid() {
		return "any"
	}
	return r.role.String()
}

// Decision is Allow, or a redirect to RedirectTo.
type Decision struct {
	Allow      bool
	RedirectTo string
}

func allow() Decision {
	return Decision{Allow: true}
}

func redirectTo(path string) Decision {
	return Decision{RedirectTo: path}
}

// Evaluate applies req to the session as read by session.Manager.Current.
// It is pure; callers re-read the session on every request.
func Evaluate(req Requirement, sess session.Session, ok bool) Decision {
	if !ok {
		return redirectTo(LoginRoute)
	}

	role, present := session.RoleOf(sess)
	if !present {
		return redirectTo(LoginRoute)
	}

	required, specific := req.Role()
	if !specific {
		return allow()
	}

	switch required {
	case users.RoleAdmin, users.RoleUser:
		if role == required {
			return allow()
		}
	}
	return redirectTo(LoginRoute)
}
