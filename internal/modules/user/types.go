package user

import (
	"errors"

	"github.com/althea-labs/ident/internal/models"
)

// UpdateProfileDTO carries the PATCH /users/me payload. Only fields
// present in the request are applied.
type UpdateProfileDTO struct {
	User struct {
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
	} `json:"user"`
}

type ChangeEmailDTO struct {
	Email           string `json:"email"`
	CurrentPassword string `json:"current_password"`
}

type ChangePasswordDTO struct {
	CurrentPassword      string `json:"current_password"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// Response is the account shape returned by every endpoint that echoes
// a user. The stored password hash never leaves the service layer.
type Response struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// ToResponse converts a persisted account into its API shape.
func ToResponse(u *models.UserModel) *Response {
	if u == nil {
		return nil
	}
	return &Response{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

var (
	errCredentialRequired = errors.New("current_password is required")
	errInvalidCredential  = errors.New("current password is incorrect")
)
