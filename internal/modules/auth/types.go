package auth

import "errors"

// Clients may send credential fields at the top level or wrapped under
// "user"; the wrapped form wins when both are present.

type signUpFields struct {
	Email                string  `json:"email"`
	Password             string  `json:"password"`
	PasswordConfirmation *string `json:"password_confirmation"`
	FirstName            string  `json:"first_name"`
	LastName             string  `json:"last_name"`
}

type SignUpDTO struct {
	signUpFields
	User *signUpFields `json:"user"`
}

func (d *SignUpDTO) fields() signUpFields {
	if d.User != nil {
		return *d.User
	}
	return d.signUpFields
}

type signInFields struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignInDTO struct {
	signInFields
	User *signInFields `json:"user"`
}

func (d *SignInDTO) fields() signInFields {
	if d.User != nil {
		return *d.User
	}
	return d.signInFields
}

// errInvalidCredentials deliberately covers both an unknown address
// and a wrong password; callers must not be able to tell them apart.
var errInvalidCredentials = errors.New("invalid email or password")
