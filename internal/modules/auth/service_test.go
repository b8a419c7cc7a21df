package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/althea-labs/ident/internal/models"
	"github.com/althea-labs/ident/internal/pkg/denylist"
	"github.com/althea-labs/ident/internal/pkg/jwt"
	"github.com/althea-labs/ident/internal/pkg/password"
	"github.com/althea-labs/ident/internal/pkg/validate"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type memRepo struct {
	mu    sync.Mutex
	users map[string]*models.UserModel
}

func newMemRepo() *memRepo {
	return &memRepo{users: map[string]*models.UserModel{}}
}

func (r *memRepo) FindByID(_ context.Context, id string) (*models.UserModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *memRepo) FindByEmail(_ context.Context, email string) (*models.UserModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memRepo) Create(_ context.Context, u *models.UserModel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memRepo) Update(_ context.Context, id string, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for k, v := range fields {
		switch k {
		case "email":
			u.Email = v.(string)
		case "password":
			u.Password = v.(string)
		case "first_name":
			u.FirstName = v.(string)
		case "last_name":
			u.LastName = v.(string)
		}
	}
	return nil
}

type memStore struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func newMemStore() *memStore {
	return &memStore{keys: map[string]struct{}{}}
}

func (s *memStore) SetNX(_ context.Context, key string, _ interface{}, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key] = struct{}{}
	return nil
}

func (s *memStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.keys[key]
	return ok, nil
}

func newTestService(repo *memRepo) (*Service, *jwt.Issuer, *denylist.Ledger) {
	tokens := jwt.NewIssuer("test-secret", time.Hour)
	ledger := denylist.New(newMemStore())
	return NewService(repo, tokens, ledger), tokens, ledger
}

func signUpDTO(email, pwd string) *SignUpDTO {
	var dto SignUpDTO
	dto.Email = email
	dto.Password = pwd
	dto.FirstName = "Ada"
	dto.LastName = "Lovelace"
	return &dto
}

func signInDTO(email, pwd string) *SignInDTO {
	var dto SignInDTO
	dto.Email = email
	dto.Password = pwd
	return &dto
}

func TestSignUp(t *testing.T) {
	repo := newMemRepo()
	svc, _, _ := newTestService(repo)

	dto := signUpDTO("  Ada@Example.COM ", "password123")
	dto.FirstName = "Ada"
	dto.LastName = "Lovelace"

	u, err := svc.SignUp(context.Background(), dto)
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.Equal(t, "Ada", u.FirstName)
	assert.True(t, password.Verify(u.Password, "password123"))
	assert.False(t, password.Verify(u.Password, "wrong"))
}

func TestSignUpWrappedParams(t *testing.T) {
	repo := newMemRepo()
	svc, _, _ := newTestService(repo)

	dto := &SignUpDTO{User: &signUpFields{
		Email:     "ada@example.com",
		Password:  "password123",
		FirstName: "Ada",
		LastName:  "Lovelace",
	}}
	u, err := svc.SignUp(context.Background(), dto)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", u.Email)
}

func TestSignUpValidation(t *testing.T) {
	confirmation := "different"
	tests := []struct {
		name string
		dto  *SignUpDTO
		want string
	}{
		{"blank email", signUpDTO("", "password123"), "Email can't be blank"},
		{"invalid email", signUpDTO("nope", "password123"), "Email is invalid"},
		{"blank password", signUpDTO("ada@example.com", ""), "Password can't be blank"},
		{"short password", signUpDTO("ada@example.com", "short"), "Password is too short (minimum is 6 characters)"},
		{"blank first name", func() *SignUpDTO {
			d := signUpDTO("ada@example.com", "password123")
			d.FirstName = "   "
			return d
		}(), "First name can't be blank"},
		{"blank last name", func() *SignUpDTO {
			d := signUpDTO("ada@example.com", "password123")
			d.LastName = ""
			return d
		}(), "Last name can't be blank"},
		{"confirmation mismatch", func() *SignUpDTO {
			d := signUpDTO("ada@example.com", "password123")
			d.PasswordConfirmation = &confirmation
			return d
		}(), "Password confirmation doesn't match Password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newTestService(newMemRepo())
			_, err := svc.SignUp(context.Background(), tt.dto)
			var vErr *validate.Error
			require.ErrorAs(t, err, &vErr)
			assert.Contains(t, vErr.Messages, tt.want)
		})
	}
}

func TestSignUpDuplicateEmail(t *testing.T) {
	repo := newMemRepo()
	svc, _, _ := newTestService(repo)

	_, err := svc.SignUp(context.Background(), signUpDTO("ada@example.com", "password123"))
	require.NoError(t, err)

	// Uniqueness is case-insensitive; the address normalizes to the
	// same stored value.
	_, err = svc.SignUp(context.Background(), signUpDTO("ADA@EXAMPLE.COM", "password123"))
	var vErr *validate.Error
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, []string{"Email has already been taken"}, vErr.Messages)
}

func TestSignIn(t *testing.T) {
	repo := newMemRepo()
	svc, tokens, _ := newTestService(repo)

	created, err := svc.SignUp(context.Background(), signUpDTO("ada@example.com", "password123"))
	require.NoError(t, err)

	u, token, err := svc.SignIn(context.Background(), signInDTO("Ada@Example.com", "password123"))
	require.NoError(t, err)
	assert.Equal(t, created.ID, u.ID)

	claims, err := tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, claims.UserID)
	assert.NotEmpty(t, claims.TokenID())
}

func TestSignInFailureIsUniform(t *testing.T) {
	repo := newMemRepo()
	svc, _, _ := newTestService(repo)

	_, err := svc.SignUp(context.Background(), signUpDTO("ada@example.com", "password123"))
	require.NoError(t, err)

	// Unknown address and wrong password fail with the exact same
	// error value.
	_, _, unknownErr := svc.SignIn(context.Background(), signInDTO("ghost@example.com", "password123"))
	_, _, wrongErr := svc.SignIn(context.Background(), signInDTO("ada@example.com", "wrong-password"))
	assert.ErrorIs(t, unknownErr, errInvalidCredentials)
	assert.ErrorIs(t, wrongErr, errInvalidCredentials)
	assert.Equal(t, unknownErr, wrongErr)
}

func TestSignInIssuesUniqueTokens(t *testing.T) {
	repo := newMemRepo()
	svc, tokens, _ := newTestService(repo)

	_, err := svc.SignUp(context.Background(), signUpDTO("ada@example.com", "password123"))
	require.NoError(t, err)

	_, first, err := svc.SignIn(context.Background(), signInDTO("ada@example.com", "password123"))
	require.NoError(t, err)
	_, second, err := svc.SignIn(context.Background(), signInDTO("ada@example.com", "password123"))
	require.NoError(t, err)

	a, err := tokens.Parse(first)
	require.NoError(t, err)
	b, err := tokens.Parse(second)
	require.NoError(t, err)
	assert.NotEqual(t, a.TokenID(), b.TokenID())
}

func TestSignOut(t *testing.T) {
	repo := newMemRepo()
	svc, tokens, ledger := newTestService(repo)

	_, err := svc.SignUp(context.Background(), signUpDTO("ada@example.com", "password123"))
	require.NoError(t, err)
	_, token, err := svc.SignIn(context.Background(), signInDTO("ada@example.com", "password123"))
	require.NoError(t, err)

	claims, err := tokens.Parse(token)
	require.NoError(t, err)

	revoked, err := ledger.IsRevoked(context.Background(), claims.TokenID())
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, svc.SignOut(context.Background(), claims))
	revoked, err = ledger.IsRevoked(context.Background(), claims.TokenID())
	require.NoError(t, err)
	assert.True(t, revoked)

	// A second sign-out with the same token changes nothing.
	require.NoError(t, svc.SignOut(context.Background(), claims))
}
