// Package complaints holds the complaint records the portal reads from the backend and the
// role-dependent queries and submissions it sends there.
package complaints

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/trackvision/portal-web/internal/errors"
	"github.com/trackvision/portal-web/users"
)

type Status int

const (
	StatusInvestigating Status = iota + 1
	StatusResolved
	StatusClosed
)

var Statuses = []Status{StatusInvestigating, StatusResolved, StatusClosed}

func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "investigating":
		return StatusInvestigating, nil
	case "resolved":
		return StatusResolved, nil
	case "closed":
		return StatusClosed, nil
	}
	return 0, fmt.Errorf("%w: %q", errors.ErrUnknownStatus, s)
}

func (s Status) String() string {
	switch s {
	case StatusInvestigating:
		return "investigating"
	case StatusResolved:
		return "resolved"
	case StatusClosed:
		return "closed"
	}
	return ""
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts any string; an unknown status decodes to the zero Status rather than
// failing the whole record.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %s", errors.ErrUnknownStatus, string(data))
	}
	*s, _ = ParseStatus(raw)
	return nil
}

// Owner identifies whoever the vehicle belongs to.
type Owner struct {
	Name  string `json:"ownerName"`
	Email string `json:"ownerEmail"`
	Phone string `json:"ownerPhone"`
	CNIC  string `json:"ownerCnic"`
}

type Vehicle struct {
	Make          string `json:"vehicleMake"`
	Model         string `json:"vehicleModel"`
	Variant       string `json:"vehicleVariant"`
	Color         string `json:"vehicleColor"`
	PlateNumber   string `json:"plateNumber"`
	ChassisNumber string `json:"chassisNumber"`
}

// Complaint is a complaint record as returned by the backend.
type Complaint struct {
	ID int64 `json:"id"`
	Owner
	Vehicle
	Description    string `json:"complaintDescription"`
	Status         Status `json:"status"`
	VehiclePicture string `json:"vehiclePicture,omitempty"`
}

// PictureURL resolves the stored picture path against the backend's base URL.
func (c Complaint) PictureURL(base string) string {
	if c.VehiclePicture == "" {
		return ""
	}
	if strings.HasPrefix(c.VehiclePicture, "http://") || strings.HasPrefix(c.VehiclePicture, "https://") {
		return c.VehiclePicture
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(c.VehiclePicture, "/")
}

// SearchQuery is what the search box sends. Users only search within their own complaints.
type SearchQuery struct {
	Text  string
	Role  users.Role
	Email string
}

// NewSearchQuery builds the query for a session of role with email. Blank text is rejected
// before anything is sent.
func NewSearchQuery(role users.Role, email, text string) (SearchQuery, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return SearchQuery{}, errors.ErrEmptySearch
	}

	switch role {
	case users.RoleAdmin:
		return SearchQuery{Text: text, Role: role}, nil
	case users.RoleUser:
		return SearchQuery{Text: text, Role: role, Email: email}, nil
	}
	return SearchQuery{}, fmt.Errorf("%w: %d", errors.ErrUnknownRole, int(role))
}

func (q SearchQuery) Values() url.Values {
	v := url.Values{}
	v.Set("query", q.Text)
	v.Set("role", q.Role.String())
	if q.Role == users.RoleUser {
		v.Set("email", q.Email)
	}
	return v
}

// ListFilter narrows the complaint list. An empty filter lists everything.
type ListFilter struct {
	Email string
}

// ListFilterFor returns the list a user may see: admins see all complaints, users their own.
func ListFilterFor(u users.User) ListFilter {
	if u.IsAdmin() {
		return ListFilter{}
	}
	return ListFilter{Email: u.Email}
}

func (f ListFilter) Values() url.Values {
	v := url.Values{}
	if f.Email != "" {
		v.Set("email", f.Email)
	}
	return v
}

// Picture is an optional image uploaded with a submission.
type Picture struct {
	Filename string
	Content  io.Reader
}

// Submission is a new complaint as entered on the submit form.
type Submission struct {
	Owner
	Vehicle
	Description string
	Picture     *Picture
}

// Autofill replaces the owner fields with the submitter's own details when the submitter is a
// plain user. Admins file complaints on someone else's behalf and keep what they typed.
func (s Submission) Autofill(u users.User) Submission {
	if u.Role != users.RoleUser {
		return s
	}
	s.Owner = Owner{
		Name:  u.FullName,
		Email: u.Email,
		Phone: u.PhoneNumber,
		CNIC:  u.CNIC,
	}
	return s
}

// Fields returns the text form fields of the submission in a stable order.
func (s Submission) Fields() [][2]string {
	return [][2]string{
		{"ownerName", s.Name},
		{"ownerEmail", s.Email},
		{"ownerPhone", s.Phone},
		{"ownerCnic", s.CNIC},
		{"vehicleMake", s.Make},
		{"vehicleModel", s.Model},
		{"vehicleVariant", s.Variant},
		{"vehicleColor", s.Color},
		{"plateNumber", s.PlateNumber},
		{"chassisNumber", s.ChassisNumber},
		{"complaintDescription", s.Description},
	}
}

// SubmitResult is the backend's answer to a registered complaint.
type SubmitResult struct {
	Message     string `json:"message"`
	EmailStatus string `json:"email_status"`
}

// EmailSent reports whether the backend managed to send the confirmation email.
func (r SubmitResult) EmailSent() bool {
	return !strings.Contains(strings.ToLower(r.EmailStatus), "failed")
}

// Stats are the dashboard counters.
type Stats struct {
	Total         int
	Investigating int
	Resolved      int
	Closed        int
}

func Summarize(list []Complaint) Stats {
	st := Stats{Total: len(list)}
	for _, c := range list {
		switch c.Status {
		case StatusInvestigating:
			st.Investigating++
		case StatusResolved:
			st.Resolved++
		case StatusClosed:
			st.Closed++
		}
	}
	return st
}
