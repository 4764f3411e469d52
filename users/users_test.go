package users_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/trackvision/portal-web/internal/errors"
	"github.com/trackvision/portal-web/users"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    users.Role
		wantErr bool
	}{
		{in: "user", want: users.RoleUser},
		{in: "admin", want: users.RoleAdmin},
		{in: " Admin ", want: users.RoleAdmin},
		{in: "", wantErr: true},
		{in: "super_admin", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := users.ParseRole(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, errors.ErrUnknownRole)
				require.False(t, got.Valid())
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.Equal(t, got, mustParse(t, got.String()))
		})
	}
}

func mustParse(t *testing.T, s string) users.Role {
	t.Helper()
	r, err := users.ParseRole(s)
	require.NoError(t, err)
	return r
}

func TestUser_JSON(t *testing.T) {
	t.Run("backend payload", func(t *testing.T) {
		var u users.User
		err := json.Unmarshal([]byte(`{"id":7,"fullName":"Ali Khan","email":"a@x.com","role":"admin","cnic":"35202-1234567-1"}`), &u)
		require.NoError(t, err)
		require.Equal(t, int64(7), u.ID)
		require.True(t, u.IsAdmin())
		require.Equal(t, "35202-1234567-1", u.CNIC)
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		var u users.User
		err := json.Unmarshal([]byte(`{"id":1,"email":"a@x.com","role":"guest"}`), &u)
		require.ErrorIs(t, err, errors.ErrUnknownRole)
	})

	t.Run("zero role cannot be encoded", func(t *testing.T) {
		_, err := json.Marshal(users.User{Email: "a@x.com"})
		require.Error(t, err)
	})
}

func TestUser_Initials(t *testing.T) {
	require.Equal(t, "AK", users.User{FullName: "ali  khan"}.Initials())
	require.Equal(t, "MAB", users.User{FullName: "Muhammad Ali Bin Qasim"}.Initials())
	require.Equal(t, "", users.User{}.Initials())
	require.Equal(t, "ÉØ", users.User{FullName: "Élodie Øster"}.Initials())
	require.Equal(t, "ŞÇÜ", users.User{FullName: "şule çelik ünal yıldız"}.Initials())
}

func TestValidatePasswordStrength(t *testing.T) {
	require.NoError(t, users.ValidatePasswordStrength("secret"))
	err := users.ValidatePasswordStrength("12345")
	require.Error(t, err)
	require.Contains(t, err.Error(), "at least 6 characters")
}
