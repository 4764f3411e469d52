package complaints_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/trackvision/portal-web/complaints"
	"github.com/trackvision/portal-web/internal/errors"
	"github.com/trackvision/portal-web/users"
)

func TestParseStatus(t *testing.T) {
	for _, s := range complaints.Statuses {
		parsed, err := complaints.ParseStatus(s.String())
		require.NoError(t, err)
		require.Equal(t, s, parsed)
	}

	parsed, err := complaints.ParseStatus(" Resolved ")
	require.NoError(t, err)
	require.Equal(t, complaints.StatusResolved, parsed)

	_, err = complaints.ParseStatus("stolen")
	require.ErrorIs(t, err, errors.ErrUnknownStatus)
}

func TestComplaint_Decode(t *testing.T) {
	body := `{
		"id": 12,
		"ownerName": "Umar", "ownerEmail": "u@x.com", "ownerPhone": "0300", "ownerCnic": "35202",
		"vehicleMake": "Honda", "vehicleModel": "Civic", "vehicleVariant": "Oriel", "vehicleColor": "White",
		"plateNumber": "LEA-1234", "chassisNumber": "CH-9",
		"complaintDescription": "taken from market",
		"status": "investigating",
		"vehiclePicture": "media/vehicle_pictures/civic.jpg"
	}`

	var c complaints.Complaint
	require.NoError(t, json.Unmarshal([]byte(body), &c))
	require.Equal(t, int64(12), c.ID)
	require.Equal(t, "Umar", c.Owner.Name)
	require.Equal(t, "LEA-1234", c.PlateNumber)
	require.Equal(t, complaints.StatusInvestigating, c.Status)
	require.Equal(t, "http://127.0.0.1:8000/media/vehicle_pictures/civic.jpg", c.PictureURL("http://127.0.0.1:8000/"))

	t.Run("unknown status does not fail the record", func(t *testing.T) {
		var c complaints.Complaint
		require.NoError(t, json.Unmarshal([]byte(`{"id":1,"status":"archived"}`), &c))
		require.Equal(t, complaints.Status(0), c.Status)
	})

	t.Run("absolute picture url kept", func(t *testing.T) {
		c := complaints.Complaint{VehiclePicture: "https://cdn.example.com/a.jpg"}
		require.Equal(t, "https://cdn.example.com/a.jpg", c.PictureURL("http://127.0.0.1:8000/"))
		require.Empty(t, complaints.Complaint{}.PictureURL("http://127.0.0.1:8000/"))
	})
}

func TestNewSearchQuery(t *testing.T) {
	t.Run("blank text rejected locally", func(t *testing.T) {
		for _, text := range []string{"", "   ", "\t"} {
			_, err := complaints.NewSearchQuery(users.RoleAdmin, "a@x.com", text)
			require.ErrorIs(t, err, errors.ErrEmptySearch)
		}
	})

	t.Run("admin searches everything", func(t *testing.T) {
		q, err := complaints.NewSearchQuery(users.RoleAdmin, "a@x.com", " LEA-1234 ")
		require.NoError(t, err)
		v := q.Values()
		require.Equal(t, "LEA-1234", v.Get("query"))
		require.Equal(t, "admin", v.Get("role"))
		require.False(t, v.Has("email"))
	})

	t.Run("user searches own complaints", func(t *testing.T) {
		q, err := complaints.NewSearchQuery(users.RoleUser, "u@x.com", "35202")
		require.NoError(t, err)
		v := q.Values()
		require.Equal(t, "35202", v.Get("query"))
		require.Equal(t, "user", v.Get("role"))
		require.Equal(t, "u@x.com", v.Get("email"))
	})

	t.Run("unknown role", func(t *testing.T) {
		_, err := complaints.NewSearchQuery(0, "", "x")
		require.ErrorIs(t, err, errors.ErrUnknownRole)
	})
}

func TestListFilterFor(t *testing.T) {
	admin := users.User{Email: "a@x.com", Role: users.RoleAdmin}
	user := users.User{Email: "u@x.com", Role: users.RoleUser}

	require.Empty(t, complaints.ListFilterFor(admin).Values())
	require.Equal(t, "u@x.com", complaints.ListFilterFor(user).Values().Get("email"))
}

func TestSubmission_Autofill(t *testing.T) {
	typed := complaints.Submission{
		Owner:       complaints.Owner{Name: "Typed", Email: "typed@x.com"},
		Vehicle:     complaints.Vehicle{PlateNumber: "LEA-1"},
		Description: "stolen",
	}

	t.Run("user owner fields come from the session", func(t *testing.T) {
		u := users.User{FullName: "Umar", Email: "u@x.com", PhoneNumber: "0300", CNIC: "35202", Role: users.RoleUser}
		got := typed.Autofill(u)
		require.Equal(t, complaints.Owner{Name: "Umar", Email: "u@x.com", Phone: "0300", CNIC: "35202"}, got.Owner)
		require.Equal(t, "LEA-1", got.PlateNumber)
		require.Equal(t, "Typed", typed.Name, "input left untouched")
	})

	t.Run("admin keeps typed owner", func(t *testing.T) {
		got := typed.Autofill(users.User{FullName: "Ayesha", Role: users.RoleAdmin})
		require.Equal(t, typed.Owner, got.Owner)
	})

	t.Run("fields", func(t *testing.T) {
		fields := typed.Fields()
		require.Len(t, fields, 11)
		require.Equal(t, [2]string{"ownerName", "Typed"}, fields[0])
		require.Equal(t, [2]string{"complaintDescription", "stolen"}, fields[10])
	})
}

func TestSubmitResult_EmailSent(t *testing.T) {
	require.True(t, complaints.SubmitResult{EmailStatus: "Email sent"}.EmailSent())
	require.False(t, complaints.SubmitResult{EmailStatus: "Failed to send email: timeout"}.EmailSent())
}

func TestSummarize(t *testing.T) {
	list := []complaints.Complaint{
		{Status: complaints.StatusInvestigating},
		{Status: complaints.StatusInvestigating},
		{Status: complaints.StatusResolved},
		{Status: complaints.StatusClosed},
		{},
	}
	require.Equal(t, complaints.Stats{Total: 5, Investigating: 2, Resolved: 1, Closed: 1}, complaints.Summarize(list))
	require.Equal(t, complaints.Stats{}, complaints.Summarize(nil))
}
