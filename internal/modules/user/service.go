package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/althea-labs/ident/internal/models"
	"github.com/althea-labs/ident/internal/pkg/jwt"
	"github.com/althea-labs/ident/internal/pkg/mail"
	"github.com/althea-labs/ident/internal/pkg/password"
	"github.com/althea-labs/ident/internal/pkg/validate"
	"go.uber.org/zap"
)

// Mailer sends account-security notices. A nil Mailer disables them.
type Mailer interface {
	SendEmailChanged(to []string, data mail.EmailChangedData) error
	SendPasswordChanged(to string, data mail.PasswordChangedData) error
}

type Service struct {
	repo   Repository
	tokens *jwt.Issuer
	mailer Mailer
	log    *zap.Logger
}

func NewService(repo Repository, tokens *jwt.Issuer, mailer Mailer, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, tokens: tokens, mailer: mailer, log: log}
}

func (s *Service) Get(ctx context.Context, id string) (*models.UserModel, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdateProfile applies the name fields present in dto. Names may
// change but never to blank. Email and password have their own guarded
// operations and are never touched here.
func (s *Service) UpdateProfile(ctx context.Context, u *models.UserModel, dto *UpdateProfileDTO) (*models.UserModel, error) {
	var msgs []string
	updates := map[string]interface{}{}
	if dto.User.FirstName != nil {
		if v := strings.TrimSpace(*dto.User.FirstName); v == "" {
			msgs = append(msgs, "First name can't be blank")
		} else {
			updates["first_name"] = v
			u.FirstName = v
		}
	}
	if dto.User.LastName != nil {
		if v := strings.TrimSpace(*dto.User.LastName); v == "" {
			msgs = append(msgs, "Last name can't be blank")
		} else {
			updates["last_name"] = v
			u.LastName = v
		}
	}
	if len(msgs) > 0 {
		return nil, validate.NewError(msgs...)
	}
	if len(updates) == 0 {
		return u, nil
	}
	return u, s.repo.Update(ctx, u.ID, updates)
}

// ChangeEmail rebinds the account to a new address. The caller must
// re-prove the current password; presenting a valid token alone is not
// enough for this operation.
func (s *Service) ChangeEmail(ctx context.Context, u *models.UserModel, dto *ChangeEmailDTO) (*models.UserModel, error) {
	if strings.TrimSpace(dto.CurrentPassword) == "" {
		return nil, errCredentialRequired
	}
	if !password.Verify(u.Password, dto.CurrentPassword) {
		return nil, errInvalidCredential
	}

	email := validate.NormalizeEmail(dto.Email)
	if email == "" {
		return nil, validate.NewError("Email can't be blank")
	}
	if !validate.EmailFormat(email) {
		return nil, validate.NewError("Email is invalid")
	}
	if email == u.Email {
		return u, nil
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.ID != u.ID {
		return nil, validate.NewError("Email has already been taken")
	}

	prev := u.Email
	if err := s.repo.Update(ctx, u.ID, map[string]interface{}{"email": email}); err != nil {
		return nil, err
	}
	u.Email = email

	s.notify(func() error {
		return s.mailer.SendEmailChanged([]string{prev, email}, mail.EmailChangedData{NewEmail: email})
	})
	return u, nil
}

// ChangePassword rotates the stored credential and issues a fresh
// token for the session that made the change. Tokens issued before the
// change keep working until they expire or are revoked.
func (s *Service) ChangePassword(ctx context.Context, u *models.UserModel, dto *ChangePasswordDTO) (*models.UserModel, string, error) {
	if strings.TrimSpace(dto.CurrentPassword) == "" {
		return nil, "", errCredentialRequired
	}
	if !password.Verify(u.Password, dto.CurrentPassword) {
		return nil, "", errInvalidCredential
	}

	var msgs []string
	if dto.Password == "" {
		msgs = append(msgs, "Password can't be blank")
	} else if len(dto.Password) < validate.MinPasswordLength {
		msgs = append(msgs, fmt.Sprintf("Password is too short (minimum is %d characters)", validate.MinPasswordLength))
	}
	if dto.PasswordConfirmation != dto.Password {
		msgs = append(msgs, "Password confirmation doesn't match Password")
	}
	if len(msgs) > 0 {
		return nil, "", validate.NewError(msgs...)
	}

	hash, err := password.Hash(dto.Password)
	if err != nil {
		return nil, "", err
	}
	if err := s.repo.Update(ctx, u.ID, map[string]interface{}{"password": hash}); err != nil {
		return nil, "", err
	}
	u.Password = hash

	token, _, err := s.tokens.Sign(u.ID)
	if err != nil {
		return nil, "", err
	}

	email := u.Email
	s.notify(func() error {
		return s.mailer.SendPasswordChanged(email, mail.PasswordChangedData{})
	})
	return u, token, nil
}

// notify sends a security notice off the request path. Delivery
// failures are logged, never surfaced to the client.
func (s *Service) notify(send func() error) {
	if s.mailer == nil {
		return
	}
	go func() {
		if err := send(); err != nil {
			s.log.Warn("send security notice", zap.Error(err))
		}
	}()
}
