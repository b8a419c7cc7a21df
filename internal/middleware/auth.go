package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/althea-labs/ident/internal/models"
	"github.com/althea-labs/ident/internal/pkg/denylist"
	"github.com/althea-labs/ident/internal/pkg/jwt"
	"github.com/althea-labs/ident/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

const (
	ContextKeyUser   = "current_user"
	ContextKeyClaims = "token_claims"
)

var (
	ErrTokenRevoked   = errors.New("token revoked")
	ErrUnknownSubject = errors.New("token subject unknown")
)

// UserFinder resolves a token subject to an account. A missing account
// is (nil, nil), not an error.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*models.UserModel, error)
}

// Guard is the single chokepoint in front of every protected operation.
type Guard struct {
	tokens *jwt.Issuer
	ledger *denylist.Ledger
	users  UserFinder
}

func NewGuard(tokens *jwt.Issuer, ledger *denylist.Ledger, users UserFinder) *Guard {
	return &Guard{tokens: tokens, ledger: ledger, users: users}
}

// Authenticate validates a raw bearer token and resolves its subject.
// Checks run in a fixed order, short-circuiting on the first failure:
// structure, signature, expiry, revocation, subject resolution. The
// revocation check runs even though expiry alone rejects most stale
// tokens, so that a sign-out takes effect immediately.
func (g *Guard) Authenticate(ctx context.Context, raw string) (*models.UserModel, *jwt.Claims, error) {
	token := NormalizeToken(raw)
	if token == "" {
		return nil, nil, jwt.ErrMalformed
	}

	claims, err := g.tokens.Parse(token)
	if err != nil {
		return nil, nil, err
	}

	revoked, err := g.ledger.IsRevoked(ctx, claims.TokenID())
	if err != nil {
		return nil, nil, err
	}
	if revoked {
		return nil, nil, ErrTokenRevoked
	}

	u, err := g.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, nil, err
	}
	if u == nil {
		return nil, nil, ErrUnknownSubject
	}
	return u, claims, nil
}

// IsAuthFailure distinguishes an authentication decision from an
// infrastructure error, which must surface as a server error instead.
func IsAuthFailure(err error) bool {
	return errors.Is(err, jwt.ErrMalformed) ||
		errors.Is(err, jwt.ErrInvalidSignature) ||
		errors.Is(err, jwt.ErrExpired) ||
		errors.Is(err, ErrTokenRevoked) ||
		errors.Is(err, ErrUnknownSubject)
}

// Auth returns a middleware that enforces bearer-token authentication.
func Auth(g *Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, claims, err := g.Authenticate(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			if IsAuthFailure(err) {
				response.Unauthorized(c)
			} else {
				response.InternalError(c)
			}
			return
		}
		c.Set(ContextKeyUser, u)
		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// CurrentUser extracts the authenticated user from context.
func CurrentUser(c *gin.Context) *models.UserModel {
	v, _ := c.Get(ContextKeyUser)
	u, _ := v.(*models.UserModel)
	return u
}

// CurrentClaims extracts the authenticated token claims from context.
func CurrentClaims(c *gin.Context) *jwt.Claims {
	v, _ := c.Get(ContextKeyClaims)
	claims, _ := v.(*jwt.Claims)
	return claims
}

// NormalizeToken trims spaces and strips the optional Bearer prefix.
func NormalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if token == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return token
}
