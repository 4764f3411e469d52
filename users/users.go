package users

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/trackvision/portal-web/internal/errors"
)

// Role is the closed set of portal roles. The zero value is not a valid role.
type Role int

const (
	RoleUser Role = iota + 1
	RoleAdmin
)

// Roles lists every valid role.
var Roles = []Role{RoleUser, RoleAdmin}

func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user":
		return RoleUser, nil
	case "admin":
		return RoleAdmin, nil
	}
	return 0, fmt.Errorf("%w: %q", errors.ErrUnknownRole, s)
}

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleAdmin:
		return "admin"
	}
	return ""
}

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

func (r Role) MarshalJSON() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %d", errors.ErrUnknownRole, int(r))
	}
	return json.Marshal(r.String())
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", errors.ErrUnknownRole, string(data))
	}
	role, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = role
	return nil
}

// User is the identity record returned by the backend on login and kept in client storage.
type User struct {
	ID          int64  `json:"id"`
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Role        Role   `json:"role"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	CNIC        string `json:"cnic,omitempty"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Initials returns up to three upper-case initials of the full name.
func (u User) Initials() string {
	var initials []rune
	for _, word := range strings.Fields(u.FullName) {
		if len(initials) == 3 {
			break
		}
		r, _ := utf8.DecodeRuneInString(word)
		initials = append(initials, unicode.ToUpper(r))
	}
	return string(initials)
}

const MinPasswordLength = 6

// ValidatePasswordStrength mirrors the backend's rule for new passwords.
func ValidatePasswordStrength(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
	}
	return nil
}
