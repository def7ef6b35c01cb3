package dto

import (
	"testing"

	customErrors "github.com/Miraines/MoonyAndStarry/blog-auth/internal/domain/auth/errors"
	"github.com/stretchr/testify/require"
)

func validSignup() SignupDTO {
	return SignupDTO{
		Username:       "alice",
		Email:          "a@x.com",
		Password:       "secret123",
		RepeatPassword: "secret123",
	}
}

func TestValidate_Signup(t *testing.T) {
	v := NewValidator()
	require.NoError(t, Validate(v, validSignup()))

	cases := []struct {
		name  string
		edit  func(*SignupDTO)
		field string
		rule  string
	}{
		{"short username", func(d *SignupDTO) { d.Username = "bob" }, "username", "min"},
		{"long username", func(d *SignupDTO) { d.Username = "abcdefghijklmnopq" }, "username", "max"},
		{"uppercase username", func(d *SignupDTO) { d.Username = "Alice" }, "username", "username"},
		{"digit username", func(d *SignupDTO) { d.Username = "alice1" }, "username", "username"},
		{"bad email", func(d *SignupDTO) { d.Email = "nope" }, "email", "email"},
		{"short password", func(d *SignupDTO) {
			d.Password, d.RepeatPassword = "short", "short"
		}, "password", "min"},
		{"mismatch", func(d *SignupDTO) { d.RepeatPassword = "secret124" }, "repeat_password", "eqfield"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validSignup()
			tc.edit(&in)
			err := Validate(v, in)
			require.True(t, customErrors.IsInvalidArgument(err))
			require.Equal(t, tc.rule, customErrors.ValidationFields(err)[tc.field])
		})
	}
}

func TestValidate_UsernameUnderscore(t *testing.T) {
	in := validSignup()
	in.Username = "al_ice"
	require.NoError(t, Validate(NewValidator(), in))
}

func TestValidate_EditProfile(t *testing.T) {
	v := NewValidator()
	age := 129
	err := Validate(v, EditProfileDTO{Age: &age})
	require.Equal(t, "max", customErrors.ValidationFields(err)["age"])

	zero := 0
	require.NoError(t, Validate(v, EditProfileDTO{Age: &zero}))
}
