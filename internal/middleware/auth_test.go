package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/althea-labs/ident/internal/models"
	"github.com/althea-labs/ident/internal/pkg/denylist"
	"github.com/althea-labs/ident/internal/pkg/jwt"
)

type fakeStore struct {
	mu   sync.Mutex
	keys map[string]bool
}

func newFakeStore() *fakeStore { return &fakeStore{keys: map[string]bool{}} }

func (f *fakeStore) SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys[key] = true
	return nil
}

func (f *fakeStore) Exists(ctx context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.keys[key], nil
}

type fakeUsers struct {
	byID map[string]*models.UserModel
	err  error
}

func (f *fakeUsers) FindByID(ctx context.Context, id string) (*models.UserModel, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byID[id], nil
}

func newTestGuard(t *testing.T, secret string) (*Guard, *jwt.Issuer, *denylist.Ledger, *fakeUsers) {
	t.Helper()
	tokens := jwt.NewIssuer(secret, time.Hour)
	ledger := denylist.New(newFakeStore())
	users := &fakeUsers{byID: map[string]*models.UserModel{}}
	return NewGuard(tokens, ledger, users), tokens, ledger, users
}

func TestAuthenticate_Success(t *testing.T) {
	t.Parallel()

	guard, tokens, _, users := newTestGuard(t, "k1")
	users.byID["u1"] = &models.UserModel{Base: models.Base{ID: "u1"}, Email: "a@x.com"}

	raw, _, err := tokens.Sign("u1")
	if err != nil {
		t.Fatalf("Sign error: %v", err)
	}

	u, claims, err := guard.Authenticate(context.Background(), "Bearer "+raw)
	if err != nil {
		t.Fatalf("Authenticate error: %v", err)
	}
	if u.ID != "u1" || claims.UserID != "u1" {
		t.Fatalf("resolved wrong subject: user %q claims %q", u.ID, claims.UserID)
	}
}

func TestAuthenticate_Malformed(t *testing.T) {
	t.Parallel()

	guard, _, _, _ := newTestGuard(t, "k1")
	for _, raw := range []string{"", "Bearer ", "garbage", "Bearer not.a.jwt"} {
		if _, _, err := guard.Authenticate(context.Background(), raw); !errors.Is(err, jwt.ErrMalformed) {
			t.Fatalf("Authenticate(%q): expected ErrMalformed, got %v", raw, err)
		}
	}
}

func TestAuthenticate_WrongSecret(t *testing.T) {
	t.Parallel()

	guard, _, _, _ := newTestGuard(t, "k1")
	raw, _, err := jwt.NewIssuer("other-secret", time.Hour).Sign("u1")
	if err != nil {
		t.Fatalf("Sign error: %v", err)
	}

	if _, _, err := guard.Authenticate(context.Background(), raw); !errors.Is(err, jwt.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestAuthenticate_Expired(t *testing.T) {
	t.Parallel()

	guard, _, ledger, users := newTestGuard(t, "k1")
	users.byID["u1"] = &models.UserModel{Base: models.Base{ID: "u1"}}

	expired := jwt.NewIssuer("k1", -time.Minute)
	raw, claims, err := expired.Sign("u1")
	if err != nil {
		t.Fatalf("Sign error: %v", err)
	}

	// Even revoked, an expired token reports Expired: expiry is checked
	// before the ledger.
	_ = ledger.Revoke(context.Background(), claims.TokenID(), claims.ExpiresAt.Time)
	if _, _, err := guard.Authenticate(context.Background(), raw); !errors.Is(err, jwt.ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestAuthenticate_Revoked(t *testing.T) {
	t.Parallel()

	guard, tokens, ledger, users := newTestGuard(t, "k1")
	users.byID["u1"] = &models.UserModel{Base: models.Base{ID: "u1"}}

	raw, claims, err := tokens.Sign("u1")
	if err != nil {
		t.Fatalf("Sign error: %v", err)
	}
	if _, _, err := guard.Authenticate(context.Background(), raw); err != nil {
		t.Fatalf("token should be valid before revocation: %v", err)
	}

	if err := ledger.Revoke(context.Background(), claims.TokenID(), claims.ExpiresAt.Time); err != nil {
		t.Fatalf("Revoke error: %v", err)
	}
	if _, _, err := guard.Authenticate(context.Background(), raw); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("expected ErrTokenRevoked, got %v", err)
	}
}

func TestAuthenticate_UnknownSubject(t *testing.T) {
	t.Parallel()

	guard, tokens, _, _ := newTestGuard(t, "k1")
	raw, _, err := tokens.Sign("deleted-user")
	if err != nil {
		t.Fatalf("Sign error: %v", err)
	}

	if _, _, err := guard.Authenticate(context.Background(), raw); !errors.Is(err, ErrUnknownSubject) {
		t.Fatalf("expected ErrUnknownSubject, got %v", err)
	}
}

func TestAuthenticate_StorageErrorIsNotAuthFailure(t *testing.T) {
	t.Parallel()

	guard, tokens, _, users := newTestGuard(t, "k1")
	users.err = errors.New("connection refused")

	raw, _, err := tokens.Sign("u1")
	if err != nil {
		t.Fatalf("Sign error: %v", err)
	}

	_, _, err = guard.Authenticate(context.Background(), raw)
	if err == nil {
		t.Fatal("expected storage error")
	}
	if IsAuthFailure(err) {
		t.Fatalf("storage error must not classify as auth failure: %v", err)
	}
}

func TestNormalizeToken(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"":                "",
		"  ":              "",
		"abc":             "abc",
		"Bearer abc":      "abc",
		"bearer abc":      "abc",
		"  Bearer  abc  ": "abc",
		"Bearerabc":       "Bearerabc",
	}
	for in, want := range cases {
		if got := NormalizeToken(in); got != want {
			t.Fatalf("NormalizeToken(%q) = %q, want %q", in, got, want)
		}
	}
}
