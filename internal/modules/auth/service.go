package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/althea-labs/ident/internal/models"
	"github.com/althea-labs/ident/internal/modules/user"
	"github.com/althea-labs/ident/internal/pkg/denylist"
	"github.com/althea-labs/ident/internal/pkg/jwt"
	"github.com/althea-labs/ident/internal/pkg/password"
	"github.com/althea-labs/ident/internal/pkg/validate"
	"gorm.io/gorm"
)

type Service struct {
	users  user.Repository
	tokens *jwt.Issuer
	ledger *denylist.Ledger
}

func NewService(users user.Repository, tokens *jwt.Issuer, ledger *denylist.Ledger) *Service {
	return &Service{users: users, tokens: tokens, ledger: ledger}
}

// SignUp registers a new account. The address is stored normalized, so
// uniqueness is case-insensitive.
func (s *Service) SignUp(ctx context.Context, dto *SignUpDTO) (*models.UserModel, error) {
	f := dto.fields()
	email := validate.NormalizeEmail(f.Email)
	firstName := strings.TrimSpace(f.FirstName)
	lastName := strings.TrimSpace(f.LastName)

	var msgs []string
	if email == "" {
		msgs = append(msgs, "Email can't be blank")
	} else if !validate.EmailFormat(email) {
		msgs = append(msgs, "Email is invalid")
	}
	if firstName == "" {
		msgs = append(msgs, "First name can't be blank")
	}
	if lastName == "" {
		msgs = append(msgs, "Last name can't be blank")
	}
	if f.Password == "" {
		msgs = append(msgs, "Password can't be blank")
	} else if len(f.Password) < validate.MinPasswordLength {
		msgs = append(msgs, fmt.Sprintf("Password is too short (minimum is %d characters)", validate.MinPasswordLength))
	}
	if f.PasswordConfirmation != nil && *f.PasswordConfirmation != f.Password {
		msgs = append(msgs, "Password confirmation doesn't match Password")
	}
	if len(msgs) > 0 {
		return nil, validate.NewError(msgs...)
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, validate.NewError("Email has already been taken")
	}

	hash, err := password.Hash(f.Password)
	if err != nil {
		return nil, err
	}
	u := &models.UserModel{
		Email:     email,
		Password:  hash,
		FirstName: firstName,
		LastName:  lastName,
	}
	if err := s.users.Create(ctx, u); err != nil {
		// The unique index is the authority; the lookup above only
		// gives the common case a friendlier path.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, validate.NewError("Email has already been taken")
		}
		return nil, err
	}
	return u, nil
}

// SignIn verifies the credentials and issues a fresh token. The hash
// comparison runs even when no account matches the address, so an
// unknown address costs the same as a wrong password.
func (s *Service) SignIn(ctx context.Context, dto *SignInDTO) (*models.UserModel, string, error) {
	f := dto.fields()
	u, err := s.users.FindByEmail(ctx, validate.NormalizeEmail(f.Email))
	if err != nil {
		return nil, "", err
	}
	stored := ""
	if u != nil {
		stored = u.Password
	}
	if !password.Verify(stored, f.Password) || u == nil {
		return nil, "", errInvalidCredentials
	}
	token, _, err := s.tokens.Sign(u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// SignOut retires the presented token for the remainder of its
// lifetime. Signing out twice with the same token is a no-op.
func (s *Service) SignOut(ctx context.Context, claims *jwt.Claims) error {
	return s.ledger.Revoke(ctx, claims.TokenID(), claims.ExpiresAt.Time)
}
