package user

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func validSignup() SignupRequest {
	return SignupRequest{
		FullName: "Ada Lovelace",
		Email:    "ada@example.com",
		Password: "supersecret",
		Gender:   "female",
		Age:      30,
		Country:  "gb",
	}
}

func fieldsOf(errs []FieldError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Field)
	}
	return out
}

func TestSignupRequestValid(t *testing.T) {
	req := validSignup()
	require.Empty(t, req.Validate())
}

func TestSignupRequestInvalid(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*SignupRequest)
		field  string
	}{
		{"empty name", func(r *SignupRequest) { r.FullName = "" }, "fullName"},
		{"short name", func(r *SignupRequest) { r.FullName = "Al" }, "fullName"},
		{"bad email", func(r *SignupRequest) { r.Email = "not-an-email" }, "email"},
		{"missing email", func(r *SignupRequest) { r.Email = "" }, "email"},
		{"short password", func(r *SignupRequest) { r.Password = "short" }, "password"},
		{"bad gender", func(r *SignupRequest) { r.Gender = "robot" }, "gender"},
		{"underage", func(r *SignupRequest) { r.Age = 17 }, "age"},
		{"overage", func(r *SignupRequest) { r.Age = 101 }, "age"},
		{"bad country", func(r *SignupRequest) { r.Country = "zz" }, "country"},
		{"missing country", func(r *SignupRequest) { r.Country = "" }, "country"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validSignup()
			tc.mutate(&req)
			require.Contains(t, fieldsOf(req.Validate()), tc.field)
		})
	}
}

func TestSignupRequestGenderCaseInsensitive(t *testing.T) {
	req := validSignup()
	req.Gender = "Female"
	require.Empty(t, req.Validate())
}

func TestLoginRequestValidate(t *testing.T) {
	req := LoginRequest{Email: "ada@example.com", Password: "supersecret"}
	require.Empty(t, req.Validate())

	req = LoginRequest{Email: "nope", Password: "short"}
	require.ElementsMatch(t, []string{"email", "password"}, fieldsOf(req.Validate()))
}

func TestUpdateUserRequestValidate(t *testing.T) {
	name := "Ada"
	age := 31
	country := "br"
	req := UpdateUserRequest{FullName: &name, Age: &age, Country: &country}
	require.Empty(t, req.Validate())

	// absent fields are not validated
	require.Empty(t, (&UpdateUserRequest{}).Validate())

	bad := "x"
	badAge := 5
	badCountry := "zz"
	req = UpdateUserRequest{FullName: &bad, Age: &badAge, Country: &badCountry}
	require.ElementsMatch(t, []string{"fullName", "age", "country"}, fieldsOf(req.Validate()))
}
