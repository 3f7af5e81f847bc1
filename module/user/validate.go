package user

import (
	"regexp"
	"strings"

	"WChat/module/user/model"
	"WChat/tools/countries"
)

// FieldError mirrors the per-field validation shape the frontend renders.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type SignupRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Gender   string `json:"gender"`
	Age      int    `json:"age"`
	Country  string `json:"country"`
}

func (r *SignupRequest) Validate() []FieldError {
	var out []FieldError

	name := strings.TrimSpace(r.FullName)
	if name == "" {
		out = append(out, FieldError{"fullName", "Full name is required"})
	} else if len(name) < 3 || len(name) > 50 {
		out = append(out, FieldError{"fullName", "Full name must be between 3 and 50 characters"})
	}

	email := strings.TrimSpace(r.Email)
	if email == "" {
		out = append(out, FieldError{"email", "Email is required"})
	} else if !emailRe.MatchString(email) {
		out = append(out, FieldError{"email", "Email must be valid"})
	}

	if r.Password == "" {
		out = append(out, FieldError{"password", "Password is required"})
	} else if len(r.Password) < 8 {
		out = append(out, FieldError{"password", "Password must be at least 8 characters"})
	}

	switch strings.ToLower(r.Gender) {
	case model.GenderMale, model.GenderFemale:
	default:
		out = append(out, FieldError{"gender", "Gender must be either male or female"})
	}

	if r.Age < 18 || r.Age > 100 {
		out = append(out, FieldError{"age", "Age must be between 18 and 100"})
	}

	if strings.TrimSpace(r.Country) == "" {
		out = append(out, FieldError{"country", "Country is required"})
	} else if !countries.IsValidCode(r.Country) {
		out = append(out, FieldError{"country", "Invalid country code"})
	}

	return out
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() []FieldError {
	var out []FieldError
	if !emailRe.MatchString(strings.TrimSpace(r.Email)) {
		out = append(out, FieldError{"email", "Email must be valid"})
	}
	if len(r.Password) < 8 {
		out = append(out, FieldError{"password", "Password must be at least 8 characters"})
	}
	return out
}

type UpdateUserRequest struct {
	FullName *string `json:"fullName"`
	Age      *int    `json:"age"`
	Country  *string `json:"country"`
}

func (r *UpdateUserRequest) Validate() []FieldError {
	var out []FieldError
	if r.FullName != nil {
		name := strings.TrimSpace(*r.FullName)
		if len(name) < 3 || len(name) > 50 {
			out = append(out, FieldError{"fullName", "Full name must be between 3 and 50 characters"})
		}
	}
	if r.Age != nil && (*r.Age < 18 || *r.Age > 100) {
		out = append(out, FieldError{"age", "Age must be between 18 and 100"})
	}
	if r.Country != nil && !countries.IsValidCode(*r.Country) {
		out = append(out, FieldError{"country", "Invalid country code"})
	}
	return out
}
